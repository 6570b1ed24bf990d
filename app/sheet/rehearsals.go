package sheet

import (
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var hyperlinkFormula = regexp.MustCompile(`"(http[^"]+)"`)

type rehearsalColumns struct {
	name, date, time, place, value int
}

// ReadRehearsals decodes the active sheet of the rehearsals workbook. Rows
// before the header (the first row mentioning both BLOCO and DATA) are ignored.
func ReadRehearsals(r io.Reader) ([]RehearsalRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(f.GetActiveSheetIndex())
	if sheetName == "" {
		return nil, fmt.Errorf("workbook has no active sheet")
	}

	iter, err := f.Rows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
	}
	defer iter.Close()

	var (
		result    []RehearsalRow
		columns   rehearsalColumns
		hasHeader bool
		rowNum    int
	)

	for iter.Next() {
		rowNum++
		cells, err := iter.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", rowNum, err)
		}

		if !hasHeader {
			if c, ok := detectHeader(cells); ok {
				columns = c
				hasHeader = true
			}
			continue
		}

		name := strings.TrimSpace(cellAt(cells, columns.name))
		if name == "" || strings.Contains(strings.ToLower(name), "responsável") || strings.Contains(strings.ToUpper(name), "VOU PRO BLOCO") {
			continue
		}

		row := RehearsalRow{
			Name:  name,
			Date:  dateCell(cellAt(cells, columns.date)),
			Time:  timeCell(cellAt(cells, columns.time)),
			Place: strings.TrimSpace(cellAt(cells, columns.place)),
		}

		if columns.value >= 0 {
			row.Link = extractLink(f, sheetName, columns.value, rowNum)
		}

		result = append(result, row)
	}

	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to iterate sheet %s: %w", sheetName, err)
	}

	return result, nil
}

func detectHeader(cells []string) (rehearsalColumns, bool) {
	upper := make([]string, len(cells))
	hasName, hasDate := false, false
	for i, cell := range cells {
		upper[i] = strings.ToUpper(cell)
		hasName = hasName || strings.Contains(upper[i], "BLOCO")
		hasDate = hasDate || strings.Contains(upper[i], "DATA")
	}
	if !hasName || !hasDate {
		return rehearsalColumns{}, false
	}

	c := rehearsalColumns{name: -1, date: -1, time: -1, place: -1, value: -1}
	for i, text := range upper {
		switch {
		case strings.Contains(text, "BLOCO"):
			c.name = i
		case strings.Contains(text, "DATA"):
			c.date = i
		case strings.Contains(text, "HORÁRIO"), strings.Contains(text, "HORARIO"):
			c.time = i
		case strings.Contains(text, "LOCAL"):
			c.place = i
		case strings.Contains(text, "VALOR"):
			c.value = i
		}
	}
	return c, true
}

func cellAt(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return cells[idx]
}

// dateCell renders spreadsheet date serials as "dd/mm"; text passes through.
func dateCell(raw string) string {
	raw = strings.TrimSpace(raw)
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil || serial < 1 {
		return raw
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return raw
	}
	return t.Format("02/01")
}

// timeCell renders day fractions (how spreadsheets store times) as "HH:MM".
func timeCell(raw string) string {
	raw = strings.TrimSpace(raw)
	fraction, err := strconv.ParseFloat(raw, 64)
	if err != nil || fraction <= 0 || fraction >= 1 || !strings.Contains(raw, ".") {
		return raw
	}
	minutes := int(math.Round(fraction * 24 * 60))
	return fmt.Sprintf("%02d:%02d", (minutes/60)%24, minutes%60)
}

// extractLink returns the target of a direct cell hyperlink or of a
// HYPERLINK("url", "text") formula.
func extractLink(f *excelize.File, sheetName string, col, rowNum int) string {
	cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
	if err != nil {
		return ""
	}

	if ok, target, err := f.GetCellHyperLink(sheetName, cell); err == nil && ok && target != "" {
		return target
	}

	formula, err := f.GetCellFormula(sheetName, cell)
	if err != nil {
		return ""
	}
	formula = strings.TrimPrefix(strings.TrimSpace(formula), "=")
	if !strings.HasPrefix(strings.ToUpper(formula), "HYPERLINK") {
		return ""
	}
	if m := hyperlinkFormula.FindStringSubmatch(formula); m != nil {
		return m[1]
	}
	return ""
}
