package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/lysyi3m/blocos-bh/app/textfold"
)

var errMissingNameColumn = errors.New("events sheet has no " + HeaderName + " column")

// ReadEvents decodes the CSV export of the events sheet, preserving row order.
// Rows whose cells are all blank are dropped.
func ReadEvents(r io.Reader) ([]EventRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := indexHeader(header)
	if _, ok := columns[textfold.Fold(HeaderName)]; !ok {
		return nil, errMissingNameColumn
	}

	var rows []EventRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(rows)+2, err)
		}

		if isBlank(record) {
			continue
		}

		get := func(name string) string {
			idx, ok := columns[textfold.Fold(name)]
			if !ok || idx >= len(record) {
				return ""
			}
			return record[idx]
		}

		rows = append(rows, EventRow{
			Name:         get(HeaderName),
			Neighborhood: get(HeaderNeighborhood),
			Address:      get(HeaderAddress),
			Time:         get(HeaderTime),
			Date:         get(HeaderDate),
			Style:        get(HeaderStyle),
			Size:         get(HeaderSize),
			Notes:        get(HeaderNotes),
		})
	}

	return rows, nil
}

// indexHeader maps folded header names to their column. The first occurrence
// of a duplicated header wins.
func indexHeader(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		key := textfold.Fold(strings.TrimSpace(name))
		if _, exists := columns[key]; !exists {
			columns[key] = i
		}
	}
	return columns
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
