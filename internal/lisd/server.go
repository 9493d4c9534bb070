package lisd

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Server hosts the daemon endpoints: /offload, /healthz, /metrics.
type Server struct {
	config   *Config
	logger   *slog.Logger
	metrics  *metrics
	registry *prometheus.Registry
	tracer   trace.Tracer
	upgrader websocket.Upgrader

	httpServer *http.Server
}

// NewServer creates a daemon server. A nil cfg uses Default(); a nil logger
// uses slog.Default(). Each server owns its own metrics registry so two
// servers in one process never collide on collector registration.
func NewServer(cfg *Config, logger *slog.Logger) *Server {
	if cfg == nil {
		cfg = Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()

	return &Server{
		config:   cfg,
		logger:   logger,
		metrics:  newMetrics(registry),
		registry: registry,
		tracer:   otel.Tracer("skein.lisd"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Clients are process peers, not browsers; origin checks
			// do not apply.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the daemon's router. Useful for mounting the daemon into
// an existing server or an httptest harness.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	r.Get("/offload", s.handleOffload)

	return r
}

// Start runs the daemon until an interrupt, SIGTERM, or listener error.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.config.Server.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.config.Server.ReadHeaderTimeout(),
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("lisd starting", "address", s.config.Server.Address)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return err
		}
		return nil

	case <-shutdown:
		s.logger.Info("lisd shutting down")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully stops the daemon.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout())
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("lisd shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("lisd shutdown complete")
	return nil
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
