// Package web exposes the frame loop over HTTP: start/stop control, status
// and the MJPEG preview.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/genert/emotion"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

// Loop is the part of emotion.FrameLoop the server drives.
type Loop interface {
	Start() error
	Stop() error
	Status() string
	State() emotion.State
	Stats() emotion.Stats
}

// Server HTTP control surface
type Server struct {
	loop   Loop
	board  *Board
	labels func() emotion.LabelSet
	stream http.Handler
	log    logrus.FieldLogger
}

// NewServer wires the handlers. stream may be nil when the preview is disabled.
func NewServer(loop Loop, board *Board, labels func() emotion.LabelSet, stream http.Handler, log logrus.FieldLogger) *Server {
	return &Server{loop: loop, board: board, labels: labels, stream: stream, log: log}
}

// Handler returns the CORS wrapped router.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	api.HandleFunc("/labels", s.handleLabels).Methods(http.MethodGet)
	api.HandleFunc("/start", s.handleStart).Methods(http.MethodPost)
	api.HandleFunc("/stop", s.handleStop).Methods(http.MethodPost)
	if s.stream != nil {
		router.Handle("/", s.stream)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowCredentials: true,
	})
	return c.Handler(router)
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.WithField("addr", srv.Addr).Info("serving control API")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "http server")
	}
	return nil
}

type statusResponse struct {
	State  string        `json:"state"`
	Status string        `json:"status"`
	Stats  emotion.Stats `json:"stats"`
	Last   *LastResult   `json:"last,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, statusResponse{
		State:  s.loop.State().String(),
		Status: s.loop.Status(),
		Stats:  s.loop.Stats(),
		Last:   s.board.Last(),
	})
}

func (s *Server) handleLabels(w http.ResponseWriter, _ *http.Request) {
	labels := s.labels()
	if labels == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: s.loop.Status()})
		return
	}
	s.writeJSON(w, http.StatusOK, labels)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	err := s.loop.Start()
	switch {
	case err == nil:
		s.handleStatus(w, r)
	case errors.Cause(err) == emotion.ErrAlreadyRunning:
		s.writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case emotion.IsNotReady(err), emotion.IsConfigurationError(err):
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	default:
		s.log.WithError(err).Error("failed to start frame loop")
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if err := s.loop.Stop(); err != nil {
		s.log.WithError(err).Warn("frame source did not stop cleanly")
	}
	s.handleStatus(w, r)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Warn("Failed to encode JSON response")
	}
}
