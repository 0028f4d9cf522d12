package app

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"balanca/internal/history"
	"balanca/internal/model"
	"balanca/internal/observability"
	"balanca/internal/pipeline"
)

type Pipeline interface {
	Run(ctx context.Context) (pipeline.Result, error)
}

type Locker interface {
	Acquire(ctx context.Context) (func(), error)
}

type ViewCache interface {
	Get(ctx context.Context, kind model.TableKind) (history.View, bool)
	Set(ctx context.Context, v history.View) error
}

// RunLog grava o resumo de cada execução e lista as mais recentes.
type RunLog interface {
	Save(run model.Run) error
	Recent(limit int) ([]model.Run, error)
}

// Mirror recebe o histórico reconciliado depois de cada merge.
type Mirror interface {
	Sync(ctx context.Context, ds model.Dataset) (int, error)
}

// Service junta pipeline, histórico e os serviços opcionais (lock, cache,
// log de execuções e espelho). Campos opcionais nil são ignorados.
type Service struct {
	Pipeline Pipeline
	Store    history.Store
	URL      string

	Lock   Locker
	Cache  ViewCache
	RunLog RunLog
	Mirror Mirror

	Now func() time.Time

	mu sync.Mutex
}

// Update executa o pipeline uma vez, com um único escritor por processo e,
// se houver redis, entre processos.
func (s *Service) Update(ctx context.Context) (pipeline.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Lock != nil {
		release, err := s.Lock.Acquire(ctx)
		if err != nil {
			return pipeline.Result{}, err
		}
		defer release()
	}

	started := s.now()
	res, err := s.Pipeline.Run(ctx)
	observability.RecordRun(err)
	s.logRun(res, started, err)
	// um merge que falha no mensal já gravou o semanal; cache e espelho
	// acompanham o que está no disco
	s.refresh(ctx, res)
	return res, err
}

// refresh atualiza cache e espelho para cada histórico gravado na execução.
func (s *Service) refresh(ctx context.Context, res pipeline.Result) {
	for _, ds := range []model.Dataset{res.Semanal, res.Mensal} {
		if ds.Kind == "" {
			continue
		}
		if s.Cache != nil {
			if err := s.Cache.Set(ctx, history.NewView(ds)); err != nil {
				log.Printf("[App] Erro ao atualizar cache da visão %s: %v", ds.Kind, err)
			}
		}
		if s.Mirror != nil {
			if _, err := s.Mirror.Sync(ctx, ds); err != nil {
				log.Printf("[App] Erro ao espelhar histórico %s: %v", ds.Kind, err)
			}
		}
	}
}

func (s *Service) logRun(res pipeline.Result, started time.Time, err error) {
	if s.RunLog == nil {
		return
	}
	run := model.Run{
		ID:            res.RunID,
		URL:           s.URL,
		IniciadoEm:    started,
		FinalizadoEm:  s.now(),
		Status:        "ok",
		LinhasSemanal: res.Semanal.Len(),
		LinhasMensal:  res.Mensal.Len(),
	}
	if err != nil {
		run.Status = "erro"
		run.Mensagem = err.Error()
		var se *model.StageError
		if errors.As(err, &se) {
			run.Etapa = se.Stage
		}
	}
	if err := s.RunLog.Save(run); err != nil {
		log.Printf("[App] Erro ao gravar execução %s: %v", run.ID, err)
	}
}

// Runs devolve as últimas execuções registradas. Sem log de execuções a
// lista vem vazia.
func (s *Service) Runs(ctx context.Context, limit int) ([]model.Run, error) {
	if s.RunLog == nil {
		return []model.Run{}, nil
	}
	return s.RunLog.Recent(limit)
}

// Dataset lê o histórico persistido de kind.
func (s *Service) Dataset(ctx context.Context, kind model.TableKind) (model.Dataset, error) {
	return s.Store.Load(kind)
}

// View devolve a visão do histórico, do cache quando disponível.
func (s *Service) View(ctx context.Context, kind model.TableKind) (history.View, error) {
	if s.Cache != nil {
		if v, ok := s.Cache.Get(ctx, kind); ok {
			return v, nil
		}
	}
	ds, err := s.Store.Load(kind)
	if err != nil {
		return history.View{}, err
	}
	v := history.NewView(ds)
	if s.Cache != nil {
		if err := s.Cache.Set(ctx, v); err != nil {
			log.Printf("[App] Erro ao gravar cache da visão %s: %v", kind, err)
		}
	}
	return v, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
