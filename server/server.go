// Package server exposes scoring over HTTP.
//
//	POST /v1/score    {"metric", "query": [..], "candidates": [{"id", "vector"}]}
//	POST /v1/compare  {"metric", "query": "text", "candidates": ["text", ...]}
//	GET  /v1/metrics
//	GET  /healthz
//
// Errors are returned as {"error": kind, "message": text}.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/botirk38/embedscore"
	"github.com/botirk38/embedscore/logger"
	"github.com/botirk38/embedscore/similarity"
	"github.com/botirk38/embedscore/types"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const maxBodyBytes = 8 << 20

var errEmbeddingDisabled = errors.New("no embedding provider configured")

// Config holds the server's dependencies. Provider may be nil, in which case
// /v1/compare answers 503.
type Config struct {
	Provider       types.EmbeddingProvider
	Metric         similarity.Metric
	Concurrency    int
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

type Server struct {
	cfg    Config
	log    *slog.Logger
	router *chi.Mux
}

func New(cfg Config) *Server {
	if cfg.Metric == "" {
		cfg.Metric = similarity.DefaultMetric
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}

	s := &Server{cfg: cfg, log: log}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))
	r.Use(recoverer(s.log))
	r.Use(requestLogger(s.log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Route("/v1", func(r chi.Router) {
		r.Get("/metrics", s.handleMetrics)
		r.Post("/score", s.handleScore)
		r.Post("/compare", s.handleCompare)
	})
	return r
}

type scoreRequest struct {
	Metric     string                 `json:"metric"`
	Query      similarity.Vector      `json:"query"`
	Candidates []similarity.Candidate `json:"candidates"`
}

type compareRequest struct {
	Metric     string   `json:"metric"`
	Query      string   `json:"query"`
	Candidates []string `json:"candidates"`
}

type rankResponse struct {
	Metric  similarity.Metric   `json:"metric"`
	Results []similarity.Result `json:"results"`
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"default":   similarity.DefaultMetric,
		"supported": similarity.Supported(),
	})
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	metric, err := s.metric(req.Metric)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	results, err := similarity.Rank(req.Query, req.Candidates, metric)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rankResponse{Metric: metric, Results: results})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Provider == nil {
		s.fail(w, r, errEmbeddingDisabled)
		return
	}

	var req compareRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	metric, err := s.metric(req.Metric)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Query == "" || len(req.Candidates) == 0 {
		s.fail(w, r, fmt.Errorf("%w: query and candidates are required", similarity.ErrInvalidInput))
		return
	}
	for i, c := range req.Candidates {
		if c == "" {
			s.fail(w, r, fmt.Errorf("%w: candidate %d is empty", similarity.ErrInvalidInput, i))
			return
		}
	}

	texts := append([]string{req.Query}, req.Candidates...)
	vectors, err := embedscore.EmbedAll(r.Context(), s.cfg.Provider, texts, s.cfg.Concurrency)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	cands := make([]similarity.Candidate, len(req.Candidates))
	for i, text := range req.Candidates {
		cands[i] = similarity.Candidate{ID: text, Vector: vectors[i+1]}
	}
	results, err := similarity.Rank(vectors[0], cands, metric)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rankResponse{Metric: metric, Results: results})
}

func (s *Server) metric(name string) (similarity.Metric, error) {
	if name == "" {
		return s.cfg.Metric, nil
	}
	return similarity.ParseMetric(name)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", similarity.ErrInvalidInput, err)
	}
	return nil
}

// status maps an error to its HTTP status and kind.
func status(err error) (int, string) {
	switch {
	case errors.Is(err, similarity.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, similarity.ErrUnsupportedMetric):
		return http.StatusBadRequest, "unsupported_metric"
	case errors.Is(err, similarity.ErrDegenerateVector):
		return http.StatusUnprocessableEntity, "degenerate_vector"
	case errors.Is(err, types.ErrRemoteService):
		return http.StatusBadGateway, "remote_service"
	case errors.Is(err, errEmbeddingDisabled):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code, kind := status(err)
	log := s.log.With("path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()))
	if code >= http.StatusInternalServerError {
		log.Error("request failed", "kind", kind, "err", err)
	} else {
		log.Debug("request rejected", "kind", kind, "err", err)
	}
	writeJSON(w, code, map[string]string{"error": kind, "message": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(body)
}

func requestLogger(log *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

func recoverer(log *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error("panic recovered", "panic", rec, "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()))
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
