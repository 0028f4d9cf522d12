package model

import (
	"errors"
	"fmt"
	"time"
)

// Falhas terminais de cada etapa. Apenas ErrDriverInit e ErrPageLoad são
// repetidas pelo fetcher.
var (
	ErrDriverInit = errors.New("falha ao iniciar o navegador")
	ErrPageLoad   = errors.New("falha ao carregar a página")
	ErrStructure  = errors.New("estrutura da página inesperada")
	ErrExtraction = errors.New("dados não encontrados na tabela")
)

// Nomes das etapas do pipeline
const (
	StageFetch     = "fetch"
	StageLocate    = "locate"
	StageExtract   = "extract"
	StageNormalize = "normalize"
	StageMerge     = "merge"
)

// StageError identifica em qual etapa a execução parou.
type StageError struct {
	Stage string
	Kind  TableKind
	Err   error
}

func (e *StageError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("etapa %s (%s): %v", e.Stage, e.Kind.Label(), e.Err)
	}
	return fmt.Sprintf("etapa %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Retryable indica falhas transitórias de navegador/rede.
func Retryable(err error) bool {
	return errors.Is(err, ErrDriverInit) || errors.Is(err, ErrPageLoad)
}

// StageEvent é emitido ao fim de cada etapa, com ou sem erro.
type StageEvent struct {
	RunID    string
	Stage    string
	Kind     TableKind
	Rows     int
	Duration time.Duration
	Err      error
}
