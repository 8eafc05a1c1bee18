package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/handiism/musicq/internal/download"
	"github.com/handiism/musicq/internal/model"
	"github.com/handiism/musicq/internal/status"
)

// Coordinator is the part of download.Coordinator the API uses.
type Coordinator interface {
	Submit(sourceRef string) (string, error)
	StatusSnapshot() status.Snapshot
	Item(id string) (model.WorkItem, bool)
}

// SubmitRequest is the body of POST /api/jobs.
type SubmitRequest struct {
	URL string `json:"url"`
}

// SubmitResponse is returned for an accepted submission.
type SubmitResponse struct {
	ID string `json:"id"`
}

// StatusResponse is returned by GET /api/status.
type StatusResponse struct {
	Counts status.Counts `json:"counts"`
	status.Snapshot
}

// Server exposes a Coordinator over HTTP.
type Server struct {
	coord Coordinator
}

// NewServer creates a Server for coord.
func NewServer(coord Coordinator) *Server {
	return &Server{coord: coord}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Post("/jobs", s.handleSubmit)
		r.Get("/jobs/{id}", s.handleJob)
	})
	return r
}

// ListenAndServe serves the API on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	snap := s.coord.StatusSnapshot()
	writeJSON(w, http.StatusOK, StatusResponse{Counts: snap.Counts(), Snapshot: snap})
}

func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, ok := s.coord.Item(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown job "+id)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := s.coord.Submit(req.URL)
	switch {
	case errors.Is(err, download.ErrEmptySource):
		writeError(w, http.StatusBadRequest, "url is required")
	case errors.Is(err, download.ErrShuttingDown):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusAccepted, SubmitResponse{ID: id})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
