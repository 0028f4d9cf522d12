package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"strconv"

	"balanca/internal/export"
	"balanca/internal/history"
	"balanca/internal/lock"
	"balanca/internal/model"
	"balanca/internal/observability"
	"balanca/internal/pipeline"
)

type Backend interface {
	Update(ctx context.Context) (pipeline.Result, error)
	View(ctx context.Context, kind model.TableKind) (history.View, error)
	Dataset(ctx context.Context, kind model.TableKind) (model.Dataset, error)
	Runs(ctx context.Context, limit int) ([]model.Run, error)
}

const defaultRunsLimit = 20

type Server struct {
	Backend  Backend
	ViewsDir string
}

type updateResponse struct {
	RunID    string        `json:"run_id,omitempty"`
	Mensagem string        `json:"mensagem"`
	Etapa    string        `json:"etapa,omitempty"`
	Semanal  *history.View `json:"semanal,omitempty"`
	Mensal   *history.View `json:"mensal,omitempty"`
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /dados/{kind}", s.handleView)
	mux.HandleFunc("GET /dados/{kind}/serie", s.handleSeries)
	mux.HandleFunc("POST /atualizar", s.handleUpdate)
	mux.HandleFunc("GET /exportar.xlsx", s.handleExport)
	mux.HandleFunc("GET /execucoes", s.handleRuns)
	mux.HandleFunc("GET /view", s.handlePage)
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.Handle("GET /metrics", observability.Handler())
	return mux
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	v, err := s.Backend.View(r.Context(), kind)
	if err != nil {
		log.Printf("[Dashboard] Erro ao carregar histórico %s: %v", kind, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	ds, err := s.Backend.Dataset(r.Context(), kind)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, history.Series(ds))
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	res, err := s.Backend.Update(r.Context())
	if err != nil {
		log.Printf("[Dashboard] Atualização falhou: %v", err)
		resp := updateResponse{RunID: res.RunID, Mensagem: "Falha na atualização: " + err.Error()}
		status := http.StatusBadGateway
		var se *model.StageError
		if errors.As(err, &se) {
			resp.Etapa = se.Stage
		}
		if errors.Is(err, lock.ErrBusy) {
			status = http.StatusConflict
		}
		writeJSON(w, status, resp)
		return
	}

	weekly, monthly := history.NewView(res.Semanal), history.NewView(res.Mensal)
	writeJSON(w, http.StatusOK, updateResponse{
		RunID:    res.RunID,
		Mensagem: "Dados atualizados em " + res.CapturedAt.Format(model.TimestampLayout),
		Semanal:  &weekly,
		Mensal:   &monthly,
	})
}

// handleRuns lista as últimas execuções; ?limite=N muda a quantidade.
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunsLimit
	if v := r.URL.Query().Get("limite"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "limite inválido: "+v, http.StatusBadRequest)
			return
		}
		limit = n
	}
	runs, err := s.Backend.Runs(r.Context(), limit)
	if err != nil {
		log.Printf("[Dashboard] Erro ao listar execuções: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	views := make([]history.View, 0, len(model.Kinds))
	for _, kind := range model.Kinds {
		v, err := s.Backend.View(r.Context(), kind)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		views = append(views, v)
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="balanca_comercial.xlsx"`)
	if err := export.WriteXLSX(w, views...); err != nil {
		log.Printf("[Dashboard] Erro ao gerar planilha: %v", err)
	}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	dir := s.ViewsDir
	if dir == "" {
		dir = "./views"
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	http.ServeFile(w, r, filepath.Join(dir, "index.html"))
}

func kindParam(w http.ResponseWriter, r *http.Request) (model.TableKind, bool) {
	kind, err := model.ParseKind(r.PathValue("kind"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return "", false
	}
	return kind, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
