package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/go-chi/chi/v5"
)

// Loader is the part of arbor.Loader the server reads from.
type Loader interface {
	List(ctx context.Context) ([]string, error)
	Resolve(ctx context.Context, names ...string) (domain.Tree, error)
}

// Server exposes parameter sets and an active run over HTTP.
type Server struct {
	Loader  Loader
	Session *session.Session // optional; enables /run and /params
	Metrics http.Handler     // optional; mounted at /metrics
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithSession serves the given run session.
func WithSession(s *session.Session) Option {
	return func(srv *Server) {
		srv.Session = s
	}
}

// WithMetrics mounts a metrics handler at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(srv *Server) {
		srv.Metrics = h
	}
}

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(srv *Server) {
		srv.logger = logger
	}
}

// NewHandler creates the HTTP handler for loader.
func NewHandler(loader Loader, opts ...Option) http.Handler {
	s := &Server{
		Loader: loader,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/sets", s.ListSets)
	r.Get("/resolve", s.Resolve)

	r.Route("/run", func(r chi.Router) {
		r.Use(s.requireSession)
		r.Get("/", s.GetRun)
		r.Get("/params", s.GetParams)
		r.Get("/params/*", s.GetParam)
		r.Post("/log", s.AppendLog)
	})

	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics)
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Session == nil {
			s.writeError(w, http.StatusNotFound, errors.New("no active run"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "arbor-http",
		"version": strings.TrimSpace(arbor.Version),
	})
}

// ListSets handles the GET /sets request.
func (s *Server) ListSets(w http.ResponseWriter, r *http.Request) {
	names, err := s.Loader.List(r.Context())
	if err != nil {
		s.logger.Error("list parameter sets failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	s.writeJSON(w, http.StatusOK, names)
}

// Resolve handles GET /resolve?names=a,b and returns the resolved tree.
func (s *Server) Resolve(w http.ResponseWriter, r *http.Request) {
	var names []string
	for _, v := range r.URL.Query()["names"] {
		for _, n := range strings.Split(v, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
	}

	tree, err := s.Loader.Resolve(r.Context(), names...)
	if err != nil {
		s.logger.Warn("resolve failed", "names", names, "error", err)
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, tree.Plain())
}

// GetRun handles the GET /run request.
func (s *Server) GetRun(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"run":   s.Session.RunName(),
		"names": s.Session.Names(),
		"stamp": s.Session.Stamp(),
	})
}

// GetParams handles the GET /run/params request.
func (s *Server) GetParams(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Session.Params().Plain())
}

// GetParam handles GET /run/params/<path>, where path segments are separated by "/".
func (s *Server) GetParam(w http.ResponseWriter, r *http.Request) {
	raw := strings.Trim(chi.URLParam(r, "*"), "/")
	var path []string
	if raw != "" {
		path = strings.Split(raw, "/")
	}

	v, ok := s.Session.Lookup(path...)
	if !ok {
		s.writeError(w, http.StatusNotFound, errors.New("parameter not found: "+raw))
		return
	}
	if tree, isTree := v.(domain.Tree); isTree {
		v = tree.Plain()
	}
	s.writeJSON(w, http.StatusOK, v)
}

// LogRequest is the body of POST /run/log.
type LogRequest struct {
	Line string `json:"line"`
}

// AppendLog handles the POST /run/log request.
func (s *Server) AppendLog(w http.ResponseWriter, r *http.Request) {
	var body LogRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.logger.Warn("AppendLog: Invalid request body", "error", err)
		s.writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if err := s.Session.Log(r.Context(), body.Line); err != nil {
		s.logger.Error("AppendLog failed", "error", err)
		s.writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNoParamSetNames),
		errors.Is(err, domain.ErrInvalidSetName),
		errors.Is(err, session.ErrLineTooLarge),
		errors.Is(err, session.ErrInvalidUTF8):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNoRunLog):
		return http.StatusConflict
	case errors.Is(err, domain.ErrMissingInclude),
		errors.Is(err, domain.ErrIncludeCycle),
		errors.Is(err, domain.ErrInvalidInclude),
		errors.Is(err, domain.ErrReference):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
