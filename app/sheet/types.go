package sheet

// EventRow is one data row of the events spreadsheet, addressed by header
// name. Missing columns read as empty strings.
type EventRow struct {
	Name         string
	Neighborhood string
	Address      string
	Time         string
	Date         string
	Style        string
	Size         string
	Notes        string
}

// RehearsalRow is one data row of the rehearsals workbook. Date is "dd/mm"
// when the cell held a spreadsheet date, otherwise the cell text.
type RehearsalRow struct {
	Name  string
	Date  string
	Time  string
	Place string
	Link  string
}

// Events spreadsheet headers.
const (
	HeaderName         = "NOME DO BLOCO"
	HeaderNeighborhood = "Bairro"
	HeaderAddress      = "LOCAL DA CONCENTRAÇÃO"
	HeaderTime         = "HORÁRIO DA CONCENTRAÇÃO"
	HeaderDate         = "DATA"
	HeaderStyle        = "ESTILO MUSICAL"
	HeaderSize         = "TAMANHO"
	HeaderNotes        = "OBS"
)
