package observability

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "balanca_pipeline_runs_total",
			Help: "Execuções do pipeline por resultado",
		},
		[]string{"status"},
	)
	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "balanca_stage_duration_seconds",
			Help:    "Duração de cada etapa do pipeline",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 10, 20, 30, 60, 120},
		},
		[]string{"stage", "status"},
	)
	HistoryRows = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "balanca_history_rows",
			Help: "Linhas no histórico após o último merge",
		},
		[]string{"kind"},
	)
)

var registerOnce sync.Once

func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RunsTotal, StageDuration, HistoryRows)
	})
}

// Handler expõe as métricas para quem já tem um mux.
func Handler() http.Handler {
	Register()
	return promhttp.Handler()
}

// Start sobe um servidor só para /metrics na porta informada.
func Start(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	go http.ListenAndServe(":"+port, mux)
}
