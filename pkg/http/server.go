package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"CryptoCast/pkg/http/middleware"
	applogger "CryptoCast/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServerOption configures Server.
type ServerOption func(*ServerConfig)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	SlowRequest     time.Duration
	CORS            bool
	MetricsPath     string // empty disables the scrape endpoint
	Logger          *applogger.Logger
	Registerer      prometheus.Registerer
	Gatherer        prometheus.Gatherer
}

// Server wraps Echo HTTP server.
type Server struct {
	echo   *echo.Echo
	config *ServerConfig
	errCh  chan error
}

// NewServer creates a new HTTP server with Echo.
func NewServer(handler Handler, opts ...ServerOption) *Server {
	cfg := &ServerConfig{
		Host:            "0.0.0.0",
		Port:            8080,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		SlowRequest:     2 * time.Second,
		CORS:            true,
		MetricsPath:     "/metrics",
		Registerer:      prometheus.DefaultRegisterer,
		Gatherer:        prometheus.DefaultGatherer,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.ReadHeaderTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout

	// Middleware
	e.Use(middleware.Recover(cfg.Logger))
	e.Use(middleware.Metrics(cfg.Registerer, cfg.Logger, cfg.SlowRequest))
	e.Use(middleware.RequestLogging(cfg.Logger, "/healthz", cfg.MetricsPath))

	if cfg.CORS {
		e.Use(middleware.CORS(middleware.CORSConfig{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{
				http.MethodGet,
				http.MethodPost,
				http.MethodOptions,
			},
			AllowHeaders: []string{
				echo.HeaderOrigin,
				echo.HeaderContentType,
				echo.HeaderAccept,
			},
			MaxAge: 600,
		}))
	}

	// Register routes
	if handler != nil {
		handler.RegisterRoutes(e)
	}

	// Expose Prometheus metrics endpoint for scraping
	if cfg.MetricsPath != "" {
		e.GET(cfg.MetricsPath, echo.WrapHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	return &Server{
		echo:   e,
		config: cfg,
		errCh:  make(chan error, 1),
	}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
}

// Start starts the HTTP server in the background. A listen failure is
// reported on Errors.
func (s *Server) Start() error {
	addr := s.Addr()
	go func() {
		s.info("http server: listening", applogger.String("addr", addr))
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			if s.config.Logger != nil {
				s.config.Logger.Error("http server error", applogger.Error(err))
			}
			s.errCh <- err
		}
	}()

	return nil
}

// Errors delivers a fatal listen error, if any.
func (s *Server) Errors() <-chan error {
	return s.errCh
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	s.info("http server: stopped gracefully")
	return nil
}

// ShutdownTimeout returns the configured graceful shutdown budget.
func (s *Server) ShutdownTimeout() time.Duration {
	return s.config.ShutdownTimeout
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) info(msg string, fields ...applogger.Field) {
	if s.config.Logger != nil {
		s.config.Logger.Info(msg, fields...)
	}
}

// WithHost sets server host.
func WithHost(host string) ServerOption {
	return func(c *ServerConfig) {
		c.Host = host
	}
}

// WithPort sets server port.
func WithPort(port int) ServerOption {
	return func(c *ServerConfig) {
		c.Port = port
	}
}

// WithTimeouts sets read/write timeouts.
func WithTimeouts(read, write, shutdown time.Duration) ServerOption {
	return func(c *ServerConfig) {
		c.ReadTimeout = read
		c.WriteTimeout = write
		c.ShutdownTimeout = shutdown
	}
}

// WithCORS enables/disables CORS.
func WithCORS(enabled bool) ServerOption {
	return func(c *ServerConfig) {
		c.CORS = enabled
	}
}

// WithLogger routes request, panic and lifecycle logs through l.
func WithLogger(l *applogger.Logger) ServerOption {
	return func(c *ServerConfig) {
		c.Logger = l
	}
}

// WithSlowRequest sets the latency above which requests are logged as slow.
func WithSlowRequest(d time.Duration) ServerOption {
	return func(c *ServerConfig) {
		c.SlowRequest = d
	}
}

// WithMetrics sets the scrape path and the registry backing it.
// An empty path disables the endpoint; middleware metrics are still recorded.
func WithMetrics(path string, reg prometheus.Registerer, gatherer prometheus.Gatherer) ServerOption {
	return func(c *ServerConfig) {
		c.MetricsPath = path
		if reg != nil {
			c.Registerer = reg
		}
		if gatherer != nil {
			c.Gatherer = gatherer
		}
	}
}
