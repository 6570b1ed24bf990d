package sheet

import (
	"strings"
	"testing"
)

const eventsCSV = "\ufeffNOME DO BLOCO,Bairro,LOCAL DA CONCENTRAÇÃO,HORÁRIO DA CONCENTRAÇÃO,DATA,ESTILO MUSICAL,TAMANHO,OBS\n" +
	"Então Brilha,Centro,\"Rua Guaicurus, 100\",06:00,14/02/2026,Marchinhas,Grande,\n" +
	",,,,,,,\n" +
	"Baianas Ozadas,Centro,Praça da Estação,14:00,15/02/2026 00:00:00,\"Axé, Samba\",Médio,Bloco infantil 👶\n"

func TestReadEvents(t *testing.T) {
	rows, err := ReadEvents(strings.NewReader(eventsCSV))
	if err != nil {
		t.Fatalf("ReadEvents failed: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}

	first := rows[0]
	if first.Name != "Então Brilha" {
		t.Errorf("Expected name 'Então Brilha', got %q", first.Name)
	}
	if first.Address != "Rua Guaicurus, 100" {
		t.Errorf("Expected quoted address to keep its comma, got %q", first.Address)
	}
	if first.Time != "06:00" || first.Date != "14/02/2026" {
		t.Errorf("Unexpected schedule %q %q", first.Date, first.Time)
	}
	if first.Size != "Grande" {
		t.Errorf("Expected size 'Grande', got %q", first.Size)
	}

	second := rows[1]
	if second.Name != "Baianas Ozadas" {
		t.Errorf("Expected input order to be preserved, got %q", second.Name)
	}
	if second.Style != "Axé, Samba" {
		t.Errorf("Expected style 'Axé, Samba', got %q", second.Style)
	}
	if second.Notes != "Bloco infantil 👶" {
		t.Errorf("Expected notes to be read, got %q", second.Notes)
	}
}

func TestReadEventsHeaderMatchingIgnoresCaseAndAccents(t *testing.T) {
	data := "nome do bloco,BAIRRO,Local da Concentracao,horario da concentracao,data\n" +
		"Bloco X,Floresta,Rua A,10:00,01/02/2026\n"

	rows, err := ReadEvents(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ReadEvents failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}

	row := rows[0]
	if row.Neighborhood != "Floresta" || row.Address != "Rua A" || row.Time != "10:00" {
		t.Errorf("Unexpected row %+v", row)
	}
	if row.Style != "" || row.Notes != "" {
		t.Errorf("Expected missing columns to read as empty, got %+v", row)
	}
}

func TestReadEventsShortRows(t *testing.T) {
	data := "NOME DO BLOCO,Bairro,OBS\nBloco Y\n"

	rows, err := ReadEvents(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ReadEvents failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "Bloco Y" || rows[0].Notes != "" {
		t.Errorf("Unexpected rows %+v", rows)
	}
}

func TestReadEventsMissingNameColumn(t *testing.T) {
	_, err := ReadEvents(strings.NewReader("<html><body>Sign in</body></html>\n"))
	if err == nil {
		t.Error("Expected error when the name column is missing")
	}
}

func TestReadEventsEmpty(t *testing.T) {
	rows, err := ReadEvents(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Expected no error for empty input, got %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Expected no rows, got %d", len(rows))
	}
}
