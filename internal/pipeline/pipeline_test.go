package pipeline

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"balanca/internal/history"
	"balanca/internal/model"
	"balanca/internal/tables"
)

const page = `<html><body>
<table><tr><th>Período</th><th>Exportações</th><th>Importações</th></tr>
<tr><td>2024-01-01</td><td>1.000,00</td><td>500,00</td></tr></table>
<table><tr><th>Mês</th><th>Exportações</th><th>Importações</th></tr>
<tr><td>jan/2024</td><td>30.000,00</td><td>20.000,00</td></tr>
<tr><td>fev/2024</td><td>31.000,00</td><td>-</td></tr></table>
</body></html>`

type fakeFetcher struct {
	html string
	err  error
	urls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.urls = append(f.urls, url)
	return f.html, f.err
}

type recorder struct {
	events []model.StageEvent
}

func (r *recorder) StageCompleted(ev model.StageEvent) {
	r.events = append(r.events, ev)
}

func newRunner(t *testing.T, html string) (*Runner, *history.CSVStore, *recorder) {
	store := &history.CSVStore{Dir: t.TempDir()}
	rec := &recorder{}
	return &Runner{
		Fetcher:    &fakeFetcher{html: html},
		Merger:     &history.Merger{Store: store},
		Observer:   rec,
		LocateMode: tables.ModeFingerprint,
		Now:        func() time.Time { return time.Date(2024, 1, 8, 14, 30, 5, 0, time.Local) },
	}, store, rec
}

func TestRun_EndToEnd(t *testing.T) {
	r, store, rec := newRunner(t, page)

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if res.RunID == "" {
		t.Fatal("expected a run id")
	}
	if got := r.Fetcher.(*fakeFetcher).urls; len(got) != 1 || got[0] != DefaultURL {
		t.Fatalf("expected default url to be fetched, got %v", got)
	}

	if res.Semanal.Len() != 1 {
		t.Fatalf("expected 1 weekly record, got %d", res.Semanal.Len())
	}
	w := res.Semanal.Records[0]
	if w.Periodo != "2024-01-01" || *w.Exportacoes != 1000 || *w.Importacoes != 500 || w.Data != "2024-01-08 14:30:05" {
		t.Fatalf("unexpected weekly record %+v", w)
	}

	if res.Mensal.Len() != 2 {
		t.Fatalf("expected 2 monthly records, got %d", res.Mensal.Len())
	}
	if res.Mensal.Records[1].Importacoes != nil {
		t.Fatalf("expected missing import value for fev/2024")
	}

	if _, err := os.Stat(store.Path(model.Semanal)); err != nil {
		t.Fatalf("weekly history not written: %v", err)
	}
	if len(rec.events) != 8 {
		t.Fatalf("expected 8 stage events, got %d", len(rec.events))
	}
	for _, ev := range rec.events {
		if ev.Err != nil || ev.RunID != res.RunID {
			t.Fatalf("unexpected event %+v", ev)
		}
	}
}

func TestRun_SingleTableIsStructureFailure(t *testing.T) {
	html := `<table><tr><th>Período</th><th>Exportações</th><th>Importações</th></tr><tr><td>a</td><td>1</td><td>2</td></tr></table>`
	r, store, rec := newRunner(t, html)

	_, err := r.Run(context.Background())
	if !errors.Is(err, model.ErrStructure) {
		t.Fatalf("expected ErrStructure, got %v", err)
	}
	var se *model.StageError
	if !errors.As(err, &se) || se.Stage != model.StageLocate {
		t.Fatalf("expected locate StageError, got %v", err)
	}
	if !strings.Contains(err.Error(), "locate") {
		t.Fatalf("message should name the stage: %q", err.Error())
	}
	if _, statErr := os.Stat(store.Path(model.Semanal)); !os.IsNotExist(statErr) {
		t.Fatal("no history must be written on failure")
	}
	last := rec.events[len(rec.events)-1]
	if last.Stage != model.StageLocate || last.Err == nil {
		t.Fatalf("expected failing locate event, got %+v", last)
	}
}

func TestRun_NoPartialMergeWhenMonthlyFails(t *testing.T) {
	html := `<table><tr><th>Período</th><th>Exportações</th><th>Importações</th></tr><tr><td>a</td><td>1</td><td>2</td></tr></table>
<table><tr><th>Mês</th><th>Exportações</th><th>Saldo</th></tr><tr><td>jan</td><td>1</td><td>2</td></tr></table>`
	r, store, _ := newRunner(t, html)

	_, err := r.Run(context.Background())
	var se *model.StageError
	if !errors.As(err, &se) || se.Stage != model.StageNormalize || se.Kind != model.Mensal {
		t.Fatalf("expected monthly normalize failure, got %v", err)
	}
	if _, statErr := os.Stat(store.Path(model.Semanal)); !os.IsNotExist(statErr) {
		t.Fatal("weekly history must not be merged when the monthly batch fails")
	}
}

func TestRun_FetchFailure(t *testing.T) {
	r, _, _ := newRunner(t, "")
	r.Fetcher = &fakeFetcher{err: errors.Join(model.ErrPageLoad, errors.New("timeout"))}

	_, err := r.Run(context.Background())
	var se *model.StageError
	if !errors.As(err, &se) || se.Stage != model.StageFetch || !errors.Is(err, model.ErrPageLoad) {
		t.Fatalf("expected fetch StageError wrapping ErrPageLoad, got %v", err)
	}
}

type failingMerger struct {
	inner Merger
	kind  model.TableKind
}

func (m *failingMerger) Merge(kind model.TableKind, incoming []model.Record) (model.Dataset, error) {
	if kind == m.kind {
		return model.Dataset{}, errors.New("disco cheio")
	}
	return m.inner.Merge(kind, incoming)
}

func TestRun_MonthlyMergeFailureKeepsWeeklyResult(t *testing.T) {
	r, _, _ := newRunner(t, page)
	r.Merger = &failingMerger{inner: r.Merger, kind: model.Mensal}

	res, err := r.Run(context.Background())
	var se *model.StageError
	if !errors.As(err, &se) || se.Stage != model.StageMerge || se.Kind != model.Mensal {
		t.Fatalf("expected monthly merge failure, got %v", err)
	}
	if res.Semanal.Kind != model.Semanal || res.Semanal.Len() != 1 {
		t.Fatalf("weekly dataset already persisted should be returned, got %+v", res.Semanal)
	}
	if res.Mensal.Kind != "" {
		t.Fatalf("monthly dataset should be empty, got %+v", res.Mensal)
	}
}
