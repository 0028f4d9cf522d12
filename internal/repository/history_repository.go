package repository

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"balanca/internal/model"
)

// HistoryRepository espelha os históricos locais numa tabela do Postgres.
// O arquivo local continua sendo a fonte de verdade; o espelho só recebe
// linhas cujo carimbo é igual ou mais novo que o já gravado.
type HistoryRepository struct {
	DB *pgxpool.Pool
}

const historySchema = `
CREATE TABLE IF NOT EXISTS balanca_historico (
	tipo          TEXT NOT NULL,
	periodo       TEXT NOT NULL,
	exportacoes   DOUBLE PRECISION,
	importacoes   DOUBLE PRECISION,
	capturado_em  TIMESTAMP NOT NULL,
	PRIMARY KEY (tipo, periodo)
)`

const upsertHistory = `
	INSERT INTO balanca_historico (tipo, periodo, exportacoes, importacoes, capturado_em)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (tipo, periodo) DO UPDATE
	SET exportacoes = EXCLUDED.exportacoes,
	    importacoes = EXCLUDED.importacoes,
	    capturado_em = EXCLUDED.capturado_em
	WHERE balanca_historico.capturado_em <= EXCLUDED.capturado_em`

func (r *HistoryRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.Exec(ctx, historySchema)
	return err
}

// Sync envia o dataset inteiro num único batch.
func (r *HistoryRepository) Sync(ctx context.Context, ds model.Dataset) (int, error) {
	rows := mirrorRows(ds)
	if len(rows) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(upsertHistory, row.tipo, row.periodo, row.exportacoes, row.importacoes, row.capturadoEm)
	}

	br := r.DB.SendBatch(ctx, batch)
	defer br.Close()

	for i := range rows {
		if _, err := br.Exec(); err != nil {
			return i, fmt.Errorf("espelho %s, período %q: %w", ds.Kind, rows[i].periodo, err)
		}
	}
	log.Printf("[Repository] %d linha(s) do histórico %s espelhadas no Postgres", len(rows), ds.Kind)
	return len(rows), nil
}

type mirrorRow struct {
	tipo        string
	periodo     string
	exportacoes *float64
	importacoes *float64
	capturadoEm time.Time
}

// mirrorRows descarta linhas sem período ou sem carimbo válido, que não
// teriam chave no espelho.
func mirrorRows(ds model.Dataset) []mirrorRow {
	out := make([]mirrorRow, 0, len(ds.Records))
	for _, rec := range ds.Records {
		periodo := strings.TrimSpace(rec.Periodo)
		if periodo == "" {
			continue
		}
		ts, ok := rec.CapturedAt()
		if !ok {
			continue
		}
		out = append(out, mirrorRow{
			tipo:        string(ds.Kind),
			periodo:     periodo,
			exportacoes: rec.Exportacoes,
			importacoes: rec.Importacoes,
			capturadoEm: ts,
		})
	}
	return out
}
