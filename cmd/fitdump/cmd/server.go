package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/ksuid"

	"github.com/twinfer/fit-plugin/pkg/fit"
	"github.com/twinfer/fit-plugin/pkg/fitkit"
)

const requestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Success   bool   `json:"success"`
	RequestID string `json:"requestId,omitempty"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ServerConfig configures the decode service.
type ServerConfig struct {
	Addr         string
	ProfilePath  string
	MaxBodyBytes int64
}

// Server serves FIT decoding over HTTP.
type Server struct {
	config   ServerConfig
	decoder  *fitkit.Decoder
	registry *prometheus.Registry
	logger   *slog.Logger
}

// NewServer creates a server with its own metrics registry.
func NewServer(config ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &Server{
		config: config,
		decoder: fitkit.NewDecoder(
			fitkit.WithLogger(logger),
			fitkit.WithProfilePath(config.ProfilePath),
			fitkit.WithMetrics(fitkit.NewMetrics(registry)),
		),
		registry: registry,
		logger:   logger,
	}
}

// Routes returns the HTTP handler of the service.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(s.logMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/decode", s.handleDecode)
		r.Post("/check", s.handleCheck)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting FIT decode service", "addr", s.config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("Shutting down FIT decode service")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, r, map[string]string{"status": "ok"})
}

// handleDecode decodes the request body. Read options are taken from query
// parameters named like the config keys, e.g. ?include_unknown_data=true.
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	data, ok := s.readBody(w, r)
	if !ok {
		return
	}

	cfg, err := configFromQuery(r)
	if err != nil {
		sendError(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	filter := r.URL.Query().Get("filter")
	if filter != "" {
		if err := s.decoder.ValidateFilter(filter); err != nil {
			sendError(w, r, err.Error(), http.StatusBadRequest)
			return
		}
	}

	result, err := s.decoder.Decode(r.Context(), data,
		fitkit.WithReadOptions(cfg.Options()...),
		fitkit.WithFilter(filter))
	if err != nil {
		s.logger.WarnContext(r.Context(), "Decode failed", "request_id", requestID(r.Context()), "error", err)
		sendError(w, r, err.Error(), decodeStatus(err))
		return
	}
	sendSuccess(w, r, result.Messages)
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	data, ok := s.readBody(w, r)
	if !ok {
		return
	}
	sendSuccess(w, r, s.decoder.Check(data))
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body := r.Body
	if s.config.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			sendError(w, r, "request body too large", http.StatusRequestEntityTooLarge)
			return nil, false
		}
		sendError(w, r, "failed to read request body", http.StatusBadRequest)
		return nil, false
	}
	if len(data) == 0 {
		sendError(w, r, "request body is empty", http.StatusBadRequest)
		return nil, false
	}
	return data, true
}

func configFromQuery(r *http.Request) (fit.Config, error) {
	cfg := fit.DefaultConfig()
	query := r.URL.Query()
	for _, f := range optionFlags {
		key := configKey(f.name)
		raw := query.Get(key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return cfg, fmt.Errorf("invalid value %q for %s", raw, key)
		}
		*f.field(&cfg) = v
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// configKey turns a flag name into its config key: expand-sub-fields -> expand_sub_fields.
func configKey(flag string) string {
	return strings.ReplaceAll(flag, "-", "_")
}

func decodeStatus(err error) int {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	case errors.Is(err, fit.ErrInvalidOptions):
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = ksuid.New().String()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.InfoContext(r.Context(), "Handled request",
			"request_id", requestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}

// sendSuccess sends a successful JSON response
func sendSuccess(w http.ResponseWriter, r *http.Request, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(APIResponse{
		Success:   true,
		RequestID: requestID(r.Context()),
		Data:      data,
	})
}

// sendError sends an error JSON response
func sendError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{
		Success:   false,
		RequestID: requestID(r.Context()),
		Error:     message,
	})
}
