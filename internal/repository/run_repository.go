package repository

import (
	"database/sql"

	"balanca/internal/model"
)

// RunRepository registra cada execução do pipeline no Postgres.
type RunRepository struct {
	DB *sql.DB
}

const runSchema = `
CREATE TABLE IF NOT EXISTS balanca_execucoes (
	id              TEXT PRIMARY KEY,
	url             TEXT NOT NULL,
	iniciado_em     TIMESTAMPTZ NOT NULL,
	finalizado_em   TIMESTAMPTZ NOT NULL,
	status          TEXT NOT NULL,
	etapa           TEXT NOT NULL DEFAULT '',
	mensagem        TEXT NOT NULL DEFAULT '',
	linhas_semanal  INTEGER NOT NULL DEFAULT 0,
	linhas_mensal   INTEGER NOT NULL DEFAULT 0
)`

func (r *RunRepository) EnsureSchema() error {
	_, err := r.DB.Exec(runSchema)
	return err
}

func (r *RunRepository) Save(run model.Run) error {
	_, err := r.DB.Exec(`
		INSERT INTO balanca_execucoes
		(id, url, iniciado_em, finalizado_em, status, etapa, mensagem, linhas_semanal, linhas_mensal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE
		SET finalizado_em = EXCLUDED.finalizado_em, status = EXCLUDED.status,
		    etapa = EXCLUDED.etapa, mensagem = EXCLUDED.mensagem,
		    linhas_semanal = EXCLUDED.linhas_semanal, linhas_mensal = EXCLUDED.linhas_mensal
	`, run.ID, run.URL, run.IniciadoEm, run.FinalizadoEm, run.Status, run.Etapa, run.Mensagem,
		run.LinhasSemanal, run.LinhasMensal)
	return err
}

// Recent devolve as últimas execuções, mais novas primeiro.
func (r *RunRepository) Recent(limit int) ([]model.Run, error) {
	rows, err := r.DB.Query(`
		SELECT id, url, iniciado_em, finalizado_em, status, etapa, mensagem, linhas_semanal, linhas_mensal
		FROM balanca_execucoes
		ORDER BY iniciado_em DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []model.Run{}
	for rows.Next() {
		var run model.Run
		if err := rows.Scan(&run.ID, &run.URL, &run.IniciadoEm, &run.FinalizadoEm, &run.Status,
			&run.Etapa, &run.Mensagem, &run.LinhasSemanal, &run.LinhasMensal); err != nil {
			return nil, err
		}
		list = append(list, run)
	}
	return list, rows.Err()
}
