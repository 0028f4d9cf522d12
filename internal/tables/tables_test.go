package tables

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"balanca/internal/model"
)

const twoTables = `<html><body>
<div><table id="sem">
  <tr><th>Período</th><th>Exportações</th><th>Importações</th></tr>
  <tr><td>2024-01-01</td><td>1.000,00</td><td>500,00</td></tr>
</table></div>
<table id="mes">
  <tr><th> MÊS </th><th>Exportações</th><th>Importações</th></tr>
  <tr><td>Janeiro</td><td>30.000,50</td><td>20.000,00</td></tr>
  <tr><td>Fevereiro</td><td>31.000,00</td><td>21.000,00</td></tr>
</table>
</body></html>`

func TestLocate_FingerprintFindsBothTables(t *testing.T) {
	weekly, monthly, err := Locate(twoTables, ModeFingerprint)
	if err != nil {
		t.Fatalf("Locate error: %v", err)
	}
	if id, _ := weekly.Table.Attr("id"); id != "sem" {
		t.Fatalf("expected weekly table #sem, got %q", id)
	}
	if id, _ := monthly.Table.Attr("id"); id != "mes" {
		t.Fatalf("expected monthly table #mes, got %q", id)
	}
	if weekly.Kind != model.Semanal || monthly.Kind != model.Mensal {
		t.Fatalf("unexpected kinds %q / %q", weekly.Kind, monthly.Kind)
	}
}

func TestLocate_SkipsUnrelatedTables(t *testing.T) {
	html := `<table id="menu"><tr><td>Início</td><td>Contato</td></tr></table>` + twoTables
	weekly, monthly, err := Locate(html, ModeFingerprint)
	if err != nil {
		t.Fatalf("Locate error: %v", err)
	}
	if id, _ := weekly.Table.Attr("id"); id != "sem" {
		t.Fatalf("expected weekly table #sem, got %q", id)
	}
	if id, _ := monthly.Table.Attr("id"); id != "mes" {
		t.Fatalf("expected monthly table #mes, got %q", id)
	}
}

func TestLocate_OneTableIsStructureFailure(t *testing.T) {
	html := `<table><tr><th>Período</th></tr><tr><td>x</td></tr></table>`
	_, _, err := Locate(html, ModeFingerprint)
	if !errors.Is(err, model.ErrStructure) {
		t.Fatalf("expected ErrStructure, got %v", err)
	}
	if !strings.Contains(err.Error(), "encontradas 1") {
		t.Fatalf("expected message with actual table count, got %q", err.Error())
	}
}

func TestLocate_MissingFingerprintFails(t *testing.T) {
	html := `<table><tr><td>a</td></tr></table><table><tr><td>b</td></tr></table>`
	_, _, err := Locate(html, ModeFingerprint)
	if !errors.Is(err, model.ErrStructure) {
		t.Fatalf("expected ErrStructure, got %v", err)
	}
}

func TestLocate_PositionalIgnoresHeaders(t *testing.T) {
	html := `<table id="a"><tr><td>a</td></tr></table><table id="b"><tr><td>b</td></tr></table>`
	weekly, monthly, err := Locate(html, ModePositional)
	if err != nil {
		t.Fatalf("Locate error: %v", err)
	}
	if id, _ := weekly.Table.Attr("id"); id != "a" {
		t.Fatalf("expected first table as weekly, got %q", id)
	}
	if id, _ := monthly.Table.Attr("id"); id != "b" {
		t.Fatalf("expected second table as monthly, got %q", id)
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]LocateMode{"": ModeFingerprint, "fingerprint": ModeFingerprint, " Positional ": ModePositional}
	for in, want := range cases {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseMode("chute"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestExtract_PadsTruncatesAndSkipsSpacers(t *testing.T) {
	html := `<table><tr><th>Mês</th><th>Exportações</th><th>Importações</th></tr>
<tr><td>Jan</td><td>1</td></tr>
<tr><th>separador</th></tr>
<tr></tr>
<tr><td>Fev</td><td>2</td><td>3</td><td>extra</td></tr>
</table>`
	doc, err := parseDocument(html)
	if err != nil {
		t.Fatal(err)
	}
	block, err := Extract(Block{Kind: model.Mensal, Table: doc.Find("table").First()})
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	wantHeaders := []string{"Mês", "Exportações", "Importações"}
	if !reflect.DeepEqual(block.Headers, wantHeaders) {
		t.Fatalf("headers = %v, want %v", block.Headers, wantHeaders)
	}
	wantRows := [][]string{{"Jan", "1", ""}, {"Fev", "2", "3"}}
	if !reflect.DeepEqual(block.Rows, wantRows) {
		t.Fatalf("rows = %v, want %v", block.Rows, wantRows)
	}
}

func TestExtract_NoDataRows(t *testing.T) {
	doc, _ := parseDocument(`<table><tr><th>Período</th></tr><tr><th>x</th></tr></table>`)
	_, err := Extract(Block{Kind: model.Semanal, Table: doc.Find("table")})
	if !errors.Is(err, model.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
}

func TestExtract_EmptyHeader(t *testing.T) {
	doc, _ := parseDocument(`<table><tr></tr><tr><td>x</td></tr></table>`)
	_, err := Extract(Block{Kind: model.Semanal, Table: doc.Find("table")})
	if !errors.Is(err, model.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
}

func TestLocateThenExtract_OneRowPerBodyRow(t *testing.T) {
	weekly, monthly, err := Locate(twoTables, ModeFingerprint)
	if err != nil {
		t.Fatal(err)
	}
	w, err := Extract(weekly)
	if err != nil {
		t.Fatal(err)
	}
	m, err := Extract(monthly)
	if err != nil {
		t.Fatal(err)
	}
	if len(w.Rows) != 1 || len(m.Rows) != 2 {
		t.Fatalf("expected 1 weekly and 2 monthly rows, got %d / %d", len(w.Rows), len(m.Rows))
	}
	if w.Rows[0][1] != "1.000,00" {
		t.Fatalf("unexpected cell %q", w.Rows[0][1])
	}
}
