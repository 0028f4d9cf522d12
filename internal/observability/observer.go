package observability

import (
	"log"

	"balanca/internal/model"
)

// LogObserver escreve uma linha por etapa concluída.
type LogObserver struct {
	Logger *log.Logger
}

func (o LogObserver) StageCompleted(ev model.StageEvent) {
	logf := log.Printf
	if o.Logger != nil {
		logf = o.Logger.Printf
	}
	name := ev.Stage
	if ev.Kind != "" {
		name += "/" + string(ev.Kind)
	}
	if ev.Err != nil {
		logf("[Pipeline] run=%s etapa=%s falhou em %s: %v", ev.RunID, name, ev.Duration, ev.Err)
		return
	}
	logf("[Pipeline] run=%s etapa=%s ok em %s (%d itens)", ev.RunID, name, ev.Duration, ev.Rows)
}

// MetricsObserver alimenta os coletores do prometheus.
type MetricsObserver struct{}

func (MetricsObserver) StageCompleted(ev model.StageEvent) {
	status := "ok"
	if ev.Err != nil {
		status = "erro"
	}
	StageDuration.WithLabelValues(ev.Stage, status).Observe(ev.Duration.Seconds())
	if ev.Stage == model.StageMerge && ev.Err == nil {
		HistoryRows.WithLabelValues(string(ev.Kind)).Set(float64(ev.Rows))
	}
}

// RecordRun conta uma execução completa do pipeline.
func RecordRun(err error) {
	status := "ok"
	if err != nil {
		status = "erro"
	}
	RunsTotal.WithLabelValues(status).Inc()
}

// Multi repassa o evento para vários observers.
type Multi []interface {
	StageCompleted(model.StageEvent)
}

func (m Multi) StageCompleted(ev model.StageEvent) {
	for _, o := range m {
		o.StageCompleted(ev)
	}
}
