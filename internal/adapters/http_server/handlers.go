package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/Alice-Macchia/hotel-data-pipeline-project/internal/app"
)

type Handlers struct{ Runner *app.Runner }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.mux.Post("/v1/runs", h.startRun)
	s.mux.Get("/v1/runs/{id}", h.getRun)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func (h *Handlers) startRun(w http.ResponseWriter, r *http.Request) {
	id := h.Runner.StartAsync(r.Context())
	status, _ := h.Runner.Status(id)
	writeJSON(w, http.StatusAccepted, status)
}

func (h *Handlers) getRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	status, ok := h.Runner.Status(id)
	if !ok {
		writeProblem(w, http.StatusNotFound, "Not Found", "unknown run id")
		return
	}
	writeJSON(w, http.StatusOK, status)
}
