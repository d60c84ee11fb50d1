/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/devtoolbox/mockapi/fixtures"
	"github.com/devtoolbox/mockapi/httpserver/middleware"
	"github.com/devtoolbox/mockapi/internal/ratelimit"
	"github.com/devtoolbox/mockapi/log"
	"github.com/devtoolbox/mockapi/service"
)

// DefaultErrorDomain is used in error responses when Opts.ErrorDomain is empty.
const DefaultErrorDomain = "MockAPI"

const networkTCP = "tcp"

// Opts represents options for creating HTTPServer.
type Opts struct {
	// ErrorDomain is used for error response formatting.
	ErrorDomain string
	// Store contains collections served under APIPathPrefix.
	Store *fixtures.Store
	// MaxLimit returns the page size cap of a resource.
	MaxLimit MaxLimitFunc
	// RateLimiter limits requests to the resource routes. Rate limiting is disabled if nil.
	RateLimiter   ratelimit.Limiter
	RateLimitOpts middleware.RateLimitOpts
	// HealthCheck is called by the /healthz handler. FixturesHealthCheck of the Store is used if nil.
	HealthCheck HealthCheck
	// MetricsNamespace is prepended to names of the HTTP request metrics.
	MetricsNamespace string
	// MetricsHandler is a custom handler for the /metrics endpoint.
	MetricsHandler http.Handler
	// Listener is a pre-configured network listener to use instead of creating a new one.
	Listener net.Listener
}

// HTTPServer represents a wrapper around http.Server with additional fields and methods.
// It also implements service.Unit and service.MetricsRegisterer interfaces.
type HTTPServer struct {
	HTTPServer      *http.Server
	HTTPRouter      chi.Router
	Logger          log.FieldLogger
	ShutdownTimeout time.Duration

	listener         net.Listener
	port             int32
	httpServerDone   atomic.Value
	metricsCollector *middleware.HTTPRequestMetricsCollector
}

var _ service.Unit = (*HTTPServer)(nil)
var _ service.MetricsRegisterer = (*HTTPServer)(nil)

// New creates a new HTTPServer with predefined logging, metrics collecting,
// recovering after panics, rate limiting and health-checking functionality.
func New(cfg *Config, logger log.FieldLogger, opts Opts) (*HTTPServer, error) { //nolint // hugeParam: opts is heavy, it's ok in this case.
	if opts.Store == nil {
		return nil, fmt.Errorf("fixtures store is required")
	}
	if opts.ErrorDomain == "" {
		opts.ErrorDomain = DefaultErrorDomain
	}
	if opts.HealthCheck == nil {
		opts.HealthCheck = FixturesHealthCheck(opts.Store)
	}

	collector := middleware.NewHTTPRequestMetricsCollector(middleware.HTTPRequestMetricsCollectorOpts{
		Namespace: opts.MetricsNamespace,
	})
	router := chi.NewRouter()
	applyDefaultMiddlewaresToRouter(router, cfg, logger, opts.ErrorDomain, collector)

	routerOpts := RouterOpts{
		ErrorDomain:    opts.ErrorDomain,
		Resources:      NewResourceHandlers(opts.Store, opts.MaxLimit, opts.ErrorDomain),
		HealthCheck:    opts.HealthCheck,
		MetricsHandler: opts.MetricsHandler,
	}
	if opts.RateLimiter != nil {
		routerOpts.APIMiddlewares = append(routerOpts.APIMiddlewares,
			middleware.RateLimitWithOpts(opts.RateLimiter, opts.ErrorDomain, opts.RateLimitOpts))
	}
	configureRouter(router, logger, routerOpts)

	return &HTTPServer{
		HTTPServer: &http.Server{
			Addr:              cfg.Address,
			WriteTimeout:      time.Duration(cfg.Timeouts.Write),
			ReadTimeout:       time.Duration(cfg.Timeouts.Read),
			ReadHeaderTimeout: time.Duration(cfg.Timeouts.ReadHeader),
			IdleTimeout:       time.Duration(cfg.Timeouts.Idle),
			Handler:           router,
		},
		HTTPRouter:       router,
		Logger:           logger,
		ShutdownTimeout:  time.Duration(cfg.Timeouts.Shutdown),
		listener:         opts.Listener,
		metricsCollector: collector,
	}, nil
}

// Start starts application HTTP server in a blocking way.
// It's supposed that this method will be called in a separate goroutine.
// If a fatal error occurs, it will be sent to the fatalError channel.
func (s *HTTPServer) Start(fatalError chan<- error) {
	done := make(chan struct{})
	defer close(done)
	s.httpServerDone.Store(done)

	logger := s.Logger.With(
		log.String("address", s.HTTPServer.Addr),
		log.Duration("write_timeout", s.HTTPServer.WriteTimeout),
		log.Duration("read_timeout", s.HTTPServer.ReadTimeout),
		log.Duration("read_header_timeout", s.HTTPServer.ReadHeaderTimeout),
		log.Duration("idle_timeout", s.HTTPServer.IdleTimeout),
		log.Duration("shutdown_timeout", s.ShutdownTimeout),
	)
	logger.Info("starting application HTTP server...")

	var err error
	if s.listener == nil {
		if s.listener, err = net.Listen(networkTCP, s.HTTPServer.Addr); err != nil {
			logger.Error("application HTTP server error", log.Error(err))
			fatalError <- err
			return
		}
	}

	if s.listener.Addr().Network() == networkTCP {
		var portStr string
		if _, portStr, err = net.SplitHostPort(s.listener.Addr().String()); err != nil {
			logger.Error("unexpected format of TCP listener address: unable to split host and port", log.Error(err))
			fatalError <- err
			return
		}
		var port int64
		if port, err = strconv.ParseInt(portStr, 10, 32); err != nil {
			logger.Error("unexpected format of TCP listener address: no numeric port", log.Error(err))
			fatalError <- err
			return
		}
		atomic.StoreInt32(&s.port, int32(port))
	}

	if err = s.HTTPServer.Serve(s.listener); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			logger.Info("application HTTP server closed")
			return
		}
		logger.Error("application HTTP server error", log.Error(err))
		fatalError <- err
	}
}

// Stop stops application HTTP server (gracefully or not).
func (s *HTTPServer) Stop(gracefully bool) error {
	if !gracefully {
		s.Logger.Info("closing application HTTP server...")
		if err := s.HTTPServer.Close(); err != nil {
			s.Logger.Error("application HTTP server closing error", log.Error(err))
			return err
		}
		s.waitServeDone()
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.ShutdownTimeout)
	defer cancel()

	s.Logger.Info("shutting down application HTTP server...", log.Duration("timeout", s.ShutdownTimeout))
	if err := s.HTTPServer.Shutdown(ctx); err != nil {
		s.Logger.Error("application HTTP server shutting down error", log.Error(err))
		return err
	}
	s.Logger.Info("application HTTP server shut down")
	s.waitServeDone()
	return nil
}

func (s *HTTPServer) waitServeDone() {
	if done, ok := s.httpServerDone.Load().(chan struct{}); ok && done != nil {
		<-done
	}
}

// MustRegisterMetrics registers metrics in Prometheus client and panics if any error occurs.
func (s *HTTPServer) MustRegisterMetrics() {
	s.metricsCollector.MustRegister()
}

// UnregisterMetrics unregisters metrics in Prometheus client.
func (s *HTTPServer) UnregisterMetrics() {
	s.metricsCollector.Unregister()
}

// GetPort returns the port the server listens on. It's 0 until the server is started.
func (s *HTTPServer) GetPort() int {
	return int(atomic.LoadInt32(&s.port))
}
