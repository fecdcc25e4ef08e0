package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/redscorpix/npf-sub003/pkg/metrics"
	"github.com/redscorpix/npf-sub003/pkg/session"
)

// Config configures a Server.
type Config struct {
	// Addr is the listen address. Default: ":8080".
	Addr string

	// ReadTimeout bounds reading a request. Default: 10s.
	ReadTimeout time.Duration

	// WriteTimeout bounds writing one response or frame. Default: 10s.
	WriteTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown. Default: 5s.
	ShutdownTimeout time.Duration

	// MaxBodyBytes limits request bodies and WebSocket messages.
	// Default: 4MB.
	MaxBodyBytes int64

	// Assertions enables protocol checks in every patcher.
	Assertions bool

	// Sessions configures the live session manager.
	Sessions session.ManagerConfig

	// MetricsNamespace prefixes metric names. Default: "incdom".
	MetricsNamespace string

	// DisableMetrics turns off collection and the /metrics route.
	DisableMetrics bool

	// Registry receives the metrics. Default: a new registry.
	Registry *prometheus.Registry

	// Logger is the server logger. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:             ":8080",
		ReadTimeout:      10 * time.Second,
		WriteTimeout:     10 * time.Second,
		ShutdownTimeout:  5 * time.Second,
		MaxBodyBytes:     4 << 20,
		Assertions:       true,
		Sessions:         session.DefaultManagerConfig(),
		MetricsNamespace: "incdom",
	}
}

// Server serves the patch API and live sessions.
type Server struct {
	config   Config
	router   chi.Router
	sessions *session.Manager
	metrics  *metrics.Metrics
	registry *prometheus.Registry
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// New creates a server. Zero fields of config take their defaults.
func New(config Config) *Server {
	def := DefaultConfig()
	if config.Addr == "" {
		config.Addr = def.Addr
	}
	if config.ReadTimeout <= 0 {
		config.ReadTimeout = def.ReadTimeout
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = def.WriteTimeout
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = def.ShutdownTimeout
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = def.MaxBodyBytes
	}
	if config.MetricsNamespace == "" {
		config.MetricsNamespace = def.MetricsNamespace
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	config.Sessions.Assertions = config.Assertions

	s := &Server{
		config: config,
		logger: config.Logger.With("component", "server"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	if !config.DisableMetrics {
		s.registry = config.Registry
		if s.registry == nil {
			s.registry = prometheus.NewRegistry()
		}
		s.metrics = metrics.New(
			metrics.WithNamespace(config.MetricsNamespace),
			metrics.WithRegistry(s.registry),
		)
	}
	s.sessions = session.NewManager(config.Sessions, s.metrics, config.Logger)
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/healthz", s.handleHealth)
	r.Post("/api/patch", s.handlePatch)
	r.Get("/live", s.handleLive)
	if s.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Sessions returns the live session manager.
func (s *Server) Sessions() *session.Manager {
	return s.sessions
}

// Metrics returns the server metrics, nil when disabled.
func (s *Server) Metrics() *metrics.Metrics {
	return s.metrics
}

// ListenAndServe serves on config.Addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: s.config.ReadTimeout,
		ReadTimeout:       s.config.ReadTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	s.sessions.Start()
	defer s.sessions.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// requestLogger logs one line per request.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
