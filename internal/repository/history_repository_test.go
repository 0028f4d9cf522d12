package repository

import (
	"testing"

	"balanca/internal/model"
)

func TestMirrorRows_SkipsRowsWithoutKey(t *testing.T) {
	ds := model.NewDataset(model.Semanal)
	ds.Records = []model.Record{
		{Periodo: "2024-01-01", Exportacoes: model.Float(1000), Data: "2024-01-08 14:30:05"},
		{Periodo: "  ", Exportacoes: model.Float(1), Data: "2024-01-08 14:30:05"},
		{Periodo: "2024-01-02", Data: "ontem"},
		{Periodo: " 2024-01-03 ", Importacoes: model.Float(7), Data: "2024-01-09 10:00:00"},
	}

	rows := mirrorRows(ds)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].tipo != "semanal" || rows[0].periodo != "2024-01-01" {
		t.Errorf("unexpected first row: %+v", rows[0])
	}
	if rows[0].exportacoes == nil || *rows[0].exportacoes != 1000 || rows[0].importacoes != nil {
		t.Errorf("unexpected values: %+v", rows[0])
	}
	if rows[1].periodo != "2024-01-03" {
		t.Errorf("period should be trimmed, got %q", rows[1].periodo)
	}
	if got := rows[1].capturadoEm.Format(model.TimestampLayout); got != "2024-01-09 10:00:00" {
		t.Errorf("capturadoEm = %s", got)
	}
}
