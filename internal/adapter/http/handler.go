package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bnema/segbench/internal/adapter/http/templates"
	"github.com/bnema/segbench/internal/domain"
	"github.com/bnema/segbench/internal/infrastructure/logger"
)

// RunReader is the read side of the run history.
type RunReader interface {
	Get(id string) (*domain.Run, error)
	List(limit int) ([]*domain.Run, error)
}

const dashboardLimit = 50

type Handlers struct {
	runs RunReader
}

func NewHandlers(runs RunReader) *Handlers {
	return &Handlers{runs: runs}
}

func (h *Handlers) Dashboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runs, err := h.runs.List(dashboardLimit)
		if err != nil {
			logger.Error.Printf("dashboard list error: %v", err)
			runs = []*domain.Run{}
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = templates.RunsPage(runs).Render(r.Context(), w)
	}
}

func (h *Handlers) RunInfo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		run, err := h.runs.Get(id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeJSONError(w, http.StatusNotFound, "run not found")
				return
			}
			logger.Error.Printf("get run %s: %v", logger.SanitizeForLog(id), err)
			writeJSONError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, run)
	}
}

func (h *Handlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error.Printf("encode response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
