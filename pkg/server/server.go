package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/pario-ai/ipstrategy/pkg/models"
)

const maxBodyBytes = 64 << 10

// Generator is the gateway surface the HTTP API needs.
type Generator interface {
	Generate(ctx context.Context, p models.BusinessProfile) (models.Result, error)
	Stats(ctx context.Context) (models.CacheStats, error)
	Purge(ctx context.Context) error
}

// Server exposes the strategy gateway over HTTP.
type Server struct {
	listen string
	gen    Generator
	logger *slog.Logger
	router chi.Router
}

// New creates a Server for the given generator.
func New(listen string, gen Generator, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		listen: listen,
		gen:    gen,
		logger: logger,
		router: chi.NewRouter(),
	}

	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(chimw.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Route("/v1", func(r chi.Router) {
		r.Post("/strategies", s.handleGenerate)
		r.Post("/strategies/download", s.handleDownload)
		r.Get("/business-types", s.handleBusinessTypes)
		r.Get("/cache/stats", s.handleCacheStats)
		r.Delete("/cache", s.handleCachePurge)
	})
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe starts the server with graceful shutdown support.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.listen,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("ipstrategy listening", "addr", s.listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	_, res, ok := s.generate(w, r)
	if !ok {
		return
	}
	w.Header().Set("X-IPStrategy-Cache", cacheHeader(res.Cached))
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	p, res, ok := s.generate(w, r)
	if !ok {
		return
	}
	name := models.StrategyFileName(p.Name)
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("X-IPStrategy-Cache", cacheHeader(res.Cached))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(res.Strategy.Text))
}

// generate decodes the profile and runs the gateway. On failure it writes
// the error response and returns false.
func (s *Server) generate(w http.ResponseWriter, r *http.Request) (models.BusinessProfile, models.Result, bool) {
	var p models.BusinessProfile
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		writeFailure(w, models.Validationf("invalid request body: %v", err))
		return p, models.Result{}, false
	}

	res, err := s.gen.Generate(r.Context(), p)
	if err != nil {
		writeFailure(w, models.AsFailure(err))
		return p, models.Result{}, false
	}
	return p, res, true
}

func (s *Server) handleBusinessTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"business_types": models.BusinessTypes})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.gen.Stats(r.Context())
	if err != nil {
		s.logger.Error("cache stats failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "cache stats failed", "internal")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleCachePurge(w http.ResponseWriter, r *http.Request) {
	if err := s.gen.Purge(r.Context()); err != nil {
		s.logger.Error("cache purge failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "cache purge failed", "internal")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}

func cacheHeader(cached bool) string {
	if cached {
		return "hit"
	}
	return "miss"
}

// statusFor maps a failure kind to the HTTP status shown to clients.
func statusFor(kind models.FailureKind) int {
	switch kind {
	case models.KindValidation:
		return http.StatusBadRequest
	case models.KindConfiguration:
		return http.StatusServiceUnavailable
	case models.KindNetwork:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func writeFailure(w http.ResponseWriter, f *models.Failure) {
	writeJSONError(w, statusFor(f.Kind), f.Error(), string(f.Kind))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Message string `json:"message"`
	Kind    string `json:"kind"`
	Code    int    `json:"code"`
}

func writeJSONError(w http.ResponseWriter, code int, message, kind string) {
	writeJSON(w, code, errorBody{Error: errorDetail{Message: message, Kind: kind, Code: code}})
}
