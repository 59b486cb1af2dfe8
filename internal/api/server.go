package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"PriceSentinel/internal/logger"
	"PriceSentinel/internal/metrics"
	"PriceSentinel/internal/prediction"

	"github.com/labstack/echo/v4"
)

// ServerOption configures Server.
type ServerOption func(*ServerConfig)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host            string        `yaml:"host" default:"0.0.0.0"`
	Port            int           `yaml:"port" default:"3010" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"120s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
}

// Server wraps the echo HTTP server exposing the prediction endpoint.
type Server struct {
	echo   *echo.Echo
	config *ServerConfig
	log    *logger.Logger
}

// NewServer creates the server and registers its routes.
func NewServer(source prediction.Source, log *logger.Logger, rec *metrics.Recorder, opts ...ServerOption) *Server {
	cfg := &ServerConfig{
		Host:            "0.0.0.0",
		Port:            3010,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    120 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if log == nil {
		log = logger.Nop()
	}
	log = log.With("http")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout

	e.Use(Recover(log))
	e.Use(RequestLogging(log))
	e.Use(RequestMetrics(rec))

	h := &Handler{source: source, log: log}
	h.RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(rec.Handler()))

	return &Server{echo: e, config: cfg, log: log}
}

// Start binds the listen address and serves in the background. A bind
// failure is returned; later serve errors other than a clean shutdown are
// logged.
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	s.echo.Listener = ln

	go func() {
		s.log.Info("listening", logger.String("addr", ln.Addr().String()))
		if err := s.echo.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("http server error", logger.Error(err))
		}
	}()
	return nil
}

// Stop gracefully shuts the server down within the configured timeout.
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	s.log.Info("stopped gracefully")
	return nil
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// WithConfig replaces the whole configuration; zero fields keep defaults.
func WithConfig(c ServerConfig) ServerOption {
	return func(cfg *ServerConfig) {
		if c.Host != "" {
			cfg.Host = c.Host
		}
		if c.Port != 0 {
			cfg.Port = c.Port
		}
		if c.ReadTimeout > 0 {
			cfg.ReadTimeout = c.ReadTimeout
		}
		if c.WriteTimeout > 0 {
			cfg.WriteTimeout = c.WriteTimeout
		}
		if c.ShutdownTimeout > 0 {
			cfg.ShutdownTimeout = c.ShutdownTimeout
		}
	}
}

// WithPort sets server port.
func WithPort(port int) ServerOption {
	return func(c *ServerConfig) {
		c.Port = port
	}
}

// WithHost sets server host.
func WithHost(host string) ServerOption {
	return func(c *ServerConfig) {
		c.Host = host
	}
}
