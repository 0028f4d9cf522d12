package history

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"balanca/internal/model"
)

// SQLiteStore guarda os históricos num arquivo SQLite, uma tabela por tipo.
// A ordem das linhas é preservada pela coluna seq.
type SQLiteStore struct {
	DB *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// database/sql + sqlite: um único escritor
	db.SetMaxOpenConns(1)

	for _, kind := range model.Kinds {
		_, err := db.Exec(fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (
			seq INTEGER PRIMARY KEY,
			periodo TEXT NOT NULL,
			exportacoes REAL,
			importacoes REAL,
			data TEXT NOT NULL
		)`, tableName(kind)))
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("erro ao criar tabela %s: %w", tableName(kind), err)
		}
	}
	return &SQLiteStore{DB: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.DB.Close()
}

func tableName(kind model.TableKind) string {
	return strings.TrimSuffix(kind.HistoryFile(), ".csv")
}

func (s *SQLiteStore) Load(kind model.TableKind) (model.Dataset, error) {
	ds := model.NewDataset(kind)
	rows, err := s.DB.Query(fmt.Sprintf(`SELECT periodo, exportacoes, importacoes, data FROM %q ORDER BY seq`, tableName(kind)))
	if err != nil {
		return ds, fmt.Errorf("erro ao ler histórico %s: %w", kind, err)
	}
	defer rows.Close()

	for rows.Next() {
		var r model.Record
		var exp, imp sql.NullFloat64
		if err := rows.Scan(&r.Periodo, &exp, &imp, &r.Data); err != nil {
			return ds, err
		}
		if exp.Valid {
			r.Exportacoes = model.Float(exp.Float64)
		}
		if imp.Valid {
			r.Importacoes = model.Float(imp.Float64)
		}
		ds.Records = append(ds.Records, r)
	}
	return ds, rows.Err()
}

// Save troca o conteúdo da tabela inteira dentro de uma transação.
func (s *SQLiteStore) Save(ds model.Dataset) error {
	tx, err := s.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	table := tableName(ds.Kind)
	if _, err := tx.Exec(fmt.Sprintf(`DELETE FROM %q`, table)); err != nil {
		return err
	}
	stmt, err := tx.Prepare(fmt.Sprintf(`INSERT INTO %q (seq, periodo, exportacoes, importacoes, data) VALUES (?, ?, ?, ?, ?)`, table))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range ds.Records {
		if _, err := stmt.Exec(i, r.Periodo, nullable(r.Exportacoes), nullable(r.Importacoes), r.Data); err != nil {
			return fmt.Errorf("erro ao gravar histórico %s: %w", ds.Kind, err)
		}
	}
	return tx.Commit()
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
