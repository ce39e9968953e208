package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	agentdirectory "agentdesk/contexts/identity-access/agent-directory"
	distributionservice "agentdesk/contexts/list-distribution/distribution-service"
	"agentdesk/internal/platform/httpserver/docs"
	"agentdesk/internal/platform/metrics"

	httpSwagger "github.com/swaggo/http-swagger"
)

const (
	defaultMaxUploadBytes int64 = 5 * 1024 * 1024
	multipartOverhead     int64 = 1 << 20
	shutdownTimeout             = 10 * time.Second
)

// Options carries the transport settings that do not belong to a context module.
type Options struct {
	Addr           string
	MaxUploadBytes int64
	EnableSwagger  bool
	Metrics        *metrics.Registry
	Logger         *slog.Logger
}

type Server struct {
	mux            *http.ServeMux
	logger         *slog.Logger
	addr           string
	maxUploadBytes int64
	metrics        *metrics.Registry
	identity       agentdirectory.Module
	distribution   distributionservice.Module
}

func New(
	identity agentdirectory.Module,
	distribution distributionservice.Module,
	opts Options,
) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	addr := opts.Addr
	if addr == "" {
		addr = ":8080"
	}
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}

	s := &Server{
		mux:            http.NewServeMux(),
		logger:         logger,
		addr:           addr,
		maxUploadBytes: maxUpload,
		metrics:        opts.Metrics,
		identity:       identity,
		distribution:   distribution,
	}
	s.registerRoutes(opts.EnableSwagger)
	return s
}

// Handler returns the routed mux wrapped with request metrics.
func (s *Server) Handler() http.Handler {
	if s.metrics == nil {
		return s.mux
	}
	return s.instrument(s.mux)
}

// Start serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server starting",
			"event", "http_server_starting",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"addr", s.addr,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("http server stopping",
		"event", "http_server_stopping",
		"module", "internal/platform/httpserver",
		"layer", "platform",
	)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) registerRoutes(enableSwagger bool) {
	if enableSwagger {
		docs.SwaggerInfo.BasePath = "/"
		s.mux.Handle("/swagger/", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler())
	}
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	s.mux.HandleFunc("GET /api/agents", s.authenticated(s.handleListAgents))
	s.mux.HandleFunc("POST /api/agents", s.authenticated(s.handleCreateAgent))
	s.mux.HandleFunc("DELETE /api/agents/{agent_id}", s.authenticated(s.handleDeleteAgent))

	s.mux.HandleFunc("POST /api/lists/upload", s.authenticated(s.handleUploadList))
	s.mux.HandleFunc("GET /api/lists/distributed", s.authenticated(s.handleListBatches))
	s.mux.HandleFunc("GET /api/lists/distributed/{batch_id}", s.authenticated(s.handleGetBatch))
	s.mux.HandleFunc("GET /api/lists/distributed/{batch_id}/export", s.authenticated(s.handleExportBatch))
	s.mux.HandleFunc("GET /api/dashboard/summary", s.authenticated(s.handleDashboardSummary))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// instrument records method, matched route and status for every request.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		} else if _, path, found := strings.Cut(route, " "); found {
			route = path
		}
		s.metrics.ObserveRequest(r.Method, route, rec.status, time.Since(started))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
