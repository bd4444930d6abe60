package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/segbench/internal/domain"
	"github.com/bnema/segbench/internal/service"
)

const keepAliveInterval = 15 * time.Second

type SSEHandler struct {
	eventBus *service.EventBus
	runs     RunReader
}

func NewSSEHandler(eventBus *service.EventBus, runs RunReader) *SSEHandler {
	return &SSEHandler{
		eventBus: eventBus,
		runs:     runs,
	}
}

// sseWrite writes an SSE event, handling multi-line data correctly.
func sseWrite(w http.ResponseWriter, eventName string, data string) {
	_, _ = fmt.Fprintf(w, "event: %s\n", eventName)
	for _, line := range strings.Split(data, "\n") {
		_, _ = fmt.Fprintf(w, "data: %s\n", line)
	}
	_, _ = fmt.Fprint(w, "\n")
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func sendProgress(w http.ResponseWriter, event domain.ProgressEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	sseWrite(w, "progress", string(data))
	return nil
}

// sendKeepAlive writes an SSE comment to keep the connection active.
func sendKeepAlive(w http.ResponseWriter) {
	_, _ = fmt.Fprint(w, ": keep-alive\n\n")
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// Events streams a run's progress. Runs already in the history get their final state
// as a single event; otherwise events are relayed from the bus until a terminal phase.
func (h *SSEHandler) Events() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if id == "" {
			http.Error(w, "Missing run ID", http.StatusBadRequest)
			return
		}

		// Subscribe before checking the history so no terminal event slips between the two.
		ch := h.eventBus.Subscribe(id)
		defer h.eventBus.Unsubscribe(id, ch)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")

		if run, err := h.runs.Get(id); err == nil && run.State.IsTerminal() {
			_ = sendProgress(w, domain.ProgressEvent{RunID: run.ID, Phase: run.State, Fraction: 1, Message: run.ErrorMessage})
			return
		} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Run lookup failed", http.StatusInternalServerError)
			return
		}
		sendKeepAlive(w)

		ctx := r.Context()
		keepAlive := time.NewTicker(keepAliveInterval)
		defer keepAlive.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-keepAlive.C:
				sendKeepAlive(w)
			case event, ok := <-ch:
				if !ok {
					return
				}
				if err := sendProgress(w, event); err != nil {
					return
				}
				if event.Phase.IsTerminal() {
					return
				}
			}
		}
	}
}
