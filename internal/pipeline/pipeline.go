package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"balanca/internal/model"
	"balanca/internal/normalizer"
	"balanca/internal/tables"
)

// DefaultURL é a página de principais resultados da balança comercial.
const DefaultURL = "https://balanca.economia.gov.br/balanca/pg_principal_bc/principais_resultados.html"

type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

type Merger interface {
	Merge(kind model.TableKind, incoming []model.Record) (model.Dataset, error)
}

// Observer recebe um evento ao fim de cada etapa. O pipeline não depende dele.
type Observer interface {
	StageCompleted(ev model.StageEvent)
}

type Runner struct {
	Fetcher    Fetcher
	Merger     Merger
	Observer   Observer
	URL        string
	LocateMode tables.LocateMode
	Now        func() time.Time
}

type Result struct {
	RunID      string
	CapturedAt time.Time
	Semanal    model.Dataset
	Mensal     model.Dataset
}

type batch struct {
	block   model.TableBlock
	records []model.Record
}

// Run executa fetch -> locate -> extract -> normalize -> merge. Qualquer
// falha interrompe a execução; os dois lotes só são gravados depois que
// ambos foram extraídos e normalizados.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	res := Result{RunID: uuid.New().String()}
	url := r.URL
	if url == "" {
		url = DefaultURL
	}

	var html string
	err := r.stage(res.RunID, model.StageFetch, "", func() (int, error) {
		var err error
		html, err = r.Fetcher.Fetch(ctx, url)
		return 1, err
	})
	if err != nil {
		return res, err
	}

	var weekly, monthly tables.Block
	err = r.stage(res.RunID, model.StageLocate, "", func() (int, error) {
		var err error
		weekly, monthly, err = tables.Locate(html, r.LocateMode)
		return 2, err
	})
	if err != nil {
		return res, err
	}

	batches := map[model.TableKind]*batch{}
	for _, b := range []tables.Block{weekly, monthly} {
		b := b
		bt := &batch{}
		err := r.stage(res.RunID, model.StageExtract, b.Kind, func() (int, error) {
			var err error
			bt.block, err = tables.Extract(b)
			return len(bt.block.Rows), err
		})
		if err != nil {
			return res, err
		}
		batches[b.Kind] = bt
	}

	res.CapturedAt = r.now()
	for _, kind := range model.Kinds {
		bt := batches[kind]
		err := r.stage(res.RunID, model.StageNormalize, kind, func() (int, error) {
			var err error
			bt.records, err = normalizer.Normalize(bt.block.Headers, bt.block.Rows, kind, res.CapturedAt)
			return len(bt.records), err
		})
		if err != nil {
			return res, err
		}
	}

	for _, kind := range model.Kinds {
		var ds model.Dataset
		err := r.stage(res.RunID, model.StageMerge, kind, func() (int, error) {
			var err error
			ds, err = r.Merger.Merge(kind, batches[kind].records)
			return ds.Len(), err
		})
		if err != nil {
			return res, err
		}
		if kind == model.Mensal {
			res.Mensal = ds
		} else {
			res.Semanal = ds
		}
	}
	return res, nil
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// stage mede a etapa, emite o evento e garante que o erro saia como *StageError.
func (r *Runner) stage(runID, name string, kind model.TableKind, fn func() (int, error)) error {
	start := time.Now()
	rows, err := fn()
	if err != nil {
		var se *model.StageError
		if !errors.As(err, &se) {
			err = &model.StageError{Stage: name, Kind: kind, Err: err}
		} else if se.Kind == "" && kind != "" {
			se.Kind = kind
		}
		rows = 0
	}
	if r.Observer != nil {
		r.Observer.StageCompleted(model.StageEvent{
			RunID:    runID,
			Stage:    name,
			Kind:     kind,
			Rows:     rows,
			Duration: time.Since(start),
			Err:      err,
		})
	}
	return err
}
