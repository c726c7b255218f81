// Package server exposes the generation pipeline over HTTP: a
// generate endpoint, cache lookups, stats, prometheus metrics, and a
// websocket event stream for scene integration.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Elarwei001/ocean-forest-3d-sub000/cache"
	"github.com/Elarwei001/ocean-forest-3d-sub000/config"
	"github.com/Elarwei001/ocean-forest-3d-sub000/history"
	"github.com/Elarwei001/ocean-forest-3d-sub000/internal/metrics"
	"github.com/Elarwei001/ocean-forest-3d-sub000/pipeline"
	"github.com/Elarwei001/ocean-forest-3d-sub000/types"
)

// Server wires the coordinator and its observability surfaces behind
// an http.Server with the standard middleware chain.
type Server struct {
	cfg         config.ServerConfig
	coordinator *pipeline.Coordinator
	history     *history.Store
	events      *EventHub
	collector   *metrics.Collector
	registry    prometheus.Gatherer
	logger      *zap.Logger
	httpServer  *http.Server
}

// Option customizes a Server.
type Option func(*Server)

// WithHistory attaches a history store, enabling GET /v1/history.
func WithHistory(store *history.Store) Option {
	return func(s *Server) { s.history = store }
}

// WithRegistry sets the prometheus gatherer backing GET /metrics.
// Defaults to the global registry.
func WithRegistry(reg prometheus.Gatherer) Option {
	return func(s *Server) { s.registry = reg }
}

// New builds a Server around the coordinator. The event hub is owned
// by the server and registered with the coordinator on Start.
func New(cfg config.ServerConfig, coord *pipeline.Coordinator, collector *metrics.Collector, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:         cfg,
		coordinator: coord,
		events:      NewEventHub(logger),
		collector:   collector,
		registry:    prometheus.DefaultGatherer,
		logger:      logger.With(zap.String("component", "server")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Events returns the websocket hub so callers can register it as a
// coordinator event handler.
func (s *Server) Events() *EventHub {
	return s.events
}

// Handler assembles the route table and middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/generate", s.handleGenerate)
	mux.HandleFunc("GET /v1/models/{fingerprint}", s.handleModel)
	mux.HandleFunc("GET /v1/stats", s.handleStats)
	mux.HandleFunc("GET /v1/history", s.handleHistory)
	mux.Handle("GET /v1/events", s.events)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	chain := []Middleware{
		Recovery(s.logger),
		RequestID(),
	}
	if s.cfg.RateLimit > 0 {
		chain = append(chain, RateLimiter(context.Background(), s.cfg.RateLimit, s.cfg.RateBurst))
	}
	if s.cfg.JWTSecret != "" {
		chain = append(chain, JWTAuth(s.cfg.JWTSecret, []string{"/healthz", "/metrics"}, s.logger))
	}
	if s.collector != nil {
		chain = append(chain, MetricsMiddleware(s.collector))
	}
	return Chain(mux, chain...)
}

// Start begins serving. It blocks until the listener fails or Stop
// is called.
func (s *Server) Start() error {
	s.coordinator.OnModelReady(s.events.Handler())
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.HTTPPort),
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
	s.logger.Info("http server listening", zap.Int("port", s.cfg.HTTPPort))
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop drains in-flight requests and closes the event hub.
func (s *Server) Stop(ctx context.Context) error {
	s.events.Close()
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// fingerprintOf mirrors the coordinator's request identity so the
// accepted response carries a pollable handle.
func (s *Server) fingerprintOf(req *types.GenerationRequest) string {
	normalized := req.Clone()
	normalized.Normalize()
	return cache.Fingerprint(normalized)
}
