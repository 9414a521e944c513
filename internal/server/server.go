package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"picframe/internal/config"
	"picframe/internal/frame"
)

// Server is the HTTP front end over a FrameService.
type Server struct {
	bind              string
	maxUploadBytes    int64
	trustForwardedFor bool
	logger            *slog.Logger
	svc               *frame.FrameService

	listener net.Listener
	server   *http.Server
}

// New creates a Server from the server config. logger may be nil.
func New(cfg config.ServerConfig, svc *frame.FrameService, logger *slog.Logger) *Server {
	bind := strings.TrimSpace(cfg.Bind)
	if bind == "" {
		bind = config.DefaultBind
	}
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = config.DefaultMaxUploadBytes
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		bind:              bind,
		maxUploadBytes:    maxUpload,
		trustForwardedFor: cfg.TrustForwardedFor,
		logger:            logger.With("component", "http"),
		svc:               svc,
	}
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		// Panel refreshes can take tens of seconds.
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the request router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/images", s.handleImages)
	mux.HandleFunc("GET /api/users", s.handleUsers)
	mux.HandleFunc("POST /api/user/name", s.handleSetName)
	mux.HandleFunc("POST /api/upload", s.handleUpload)
	mux.HandleFunc("DELETE /api/delete/{filename}", s.handleDelete)
	mux.HandleFunc("POST /api/display/{filename}", s.handleDisplay)
	mux.HandleFunc("POST /api/rotate", s.handleRotate)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /api/server-info", s.handleServerInfo)
	mux.HandleFunc("GET /uploads/{filename}", s.handleUploadedFile)
	return mux
}

// Start listens on the configured address and serves in the background
// until ctx is cancelled or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("http listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("http server listening", "address", listener.Addr().String())
	return nil
}

// Addr returns the bound listener address, or the configured one before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.bind
}

// Stop shuts the server down, waiting briefly for in-flight requests.
func (s *Server) Stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("http shutdown incomplete", "error", err)
	}
}

// clientAddress identifies the uploader. The first X-Forwarded-For entry
// wins when forwarding headers are trusted.
func (s *Server) clientAddress(r *http.Request) string {
	if s.trustForwardedFor {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if first = strings.TrimSpace(first); first != "" {
				return first
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// statusFor maps the frame error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, frame.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, frame.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, frame.ErrNoImages):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// writeFrameError reports err with its mapped status. Server-side failures
// are logged; client errors are not.
func (s *Server) writeFrameError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	if message == "" || status < http.StatusInternalServerError {
		message = err.Error()
	}
	if status == http.StatusNotFound {
		message = "File not found"
	}
	s.writeError(w, status, message)
}
