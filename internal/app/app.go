/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package app

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/devtoolbox/mockapi/fixtures"
	"github.com/devtoolbox/mockapi/httpserver"
	"github.com/devtoolbox/mockapi/httpserver/middleware"
	"github.com/devtoolbox/mockapi/internal/ratelimit"
	"github.com/devtoolbox/mockapi/log"
	"github.com/devtoolbox/mockapi/restapi"
	"github.com/devtoolbox/mockapi/service"
)

// DefaultMetricsNamespace is prepended to names of all Prometheus metrics.
const DefaultMetricsNamespace = "mockapi"

const janitorWorkerName = "rate_limit_janitor"

// Opts represents options for New.
type Opts struct {
	MetricsNamespace string
	// Listener is passed to the HTTP server instead of listening on the configured address.
	Listener net.Listener
	// Clock is used by the rate limiter. time.Now is used if nil.
	Clock ratelimit.Clock
}

// App is the mock API service: the HTTP server plus the rate limiter janitor.
// It implements service.Unit and service.MetricsRegisterer.
type App struct {
	Store     *fixtures.Store
	Server    *httpserver.HTTPServer
	RateLimit *ratelimit.Instance

	unit             *service.CompositeUnit
	metricsNamespace string
}

var _ service.Unit = (*App)(nil)
var _ service.MetricsRegisterer = (*App)(nil)

// New loads fixtures and builds all units of the application.
func New(cfg *Config, logger log.FieldLogger, opts Opts) (*App, error) {
	if opts.MetricsNamespace == "" {
		opts.MetricsNamespace = DefaultMetricsNamespace
	}

	store, err := fixtures.Load(cfg.Fixtures)
	if err != nil {
		return nil, fmt.Errorf("load fixtures: %w", err)
	}
	a := &App{Store: store, metricsNamespace: opts.MetricsNamespace}

	srvOpts := httpserver.Opts{
		ErrorDomain:      httpserver.DefaultErrorDomain,
		Store:            store,
		MaxLimit:         cfg.Fixtures.MaxLimit,
		MetricsNamespace: opts.MetricsNamespace,
		Listener:         opts.Listener,
	}
	if cfg.RateLimit.Enabled {
		a.RateLimit, err = ratelimit.NewInstance(cfg.RateLimit, ratelimit.InstanceOpts{
			MetricsNamespace: opts.MetricsNamespace,
			Clock:            opts.Clock,
		})
		if err != nil {
			return nil, fmt.Errorf("create rate limiter: %w", err)
		}
		srvOpts.RateLimiter = a.RateLimit.Limiter
		srvOpts.RateLimitOpts = middleware.RateLimitOpts{
			ResponseStatusCode: cfg.RateLimit.ResponseStatusCode,
			DryRun:             cfg.RateLimit.DryRun,
		}
	}

	if a.Server, err = httpserver.New(cfg.Server, logger, srvOpts); err != nil {
		return nil, fmt.Errorf("create HTTP server: %w", err)
	}

	units := []service.Unit{a.Server}
	if a.RateLimit != nil && a.RateLimit.SlidingLog != nil && cfg.RateLimit.SweepInterval > 0 {
		units = append(units, newJanitorUnit(a.RateLimit, time.Duration(cfg.RateLimit.SweepInterval), logger))
	}
	a.unit = service.NewCompositeUnit(units...)
	return a, nil
}

func newJanitorUnit(inst *ratelimit.Instance, interval time.Duration, logger log.FieldLogger) *service.WorkerUnit {
	sweep := service.WorkerFunc(func(ctx context.Context) error {
		if removed := inst.Sweep(); removed > 0 {
			logger.Debug("expired rate limit identities removed", log.String("worker", janitorWorkerName), log.Int("removed", removed))
		}
		return nil
	})
	worker := service.NewPeriodicWorkerWithOpts(sweep, interval, logger, service.PeriodicWorkerOpts{
		InitialDelay: interval,
		Name:         janitorWorkerName,
	})
	return service.NewWorkerUnitWithOpts(worker, service.WorkerUnitOpts{GracefulStopTimeout: time.Second * 5})
}

// Start implements service.Unit.
func (a *App) Start(fatalError chan<- error) {
	a.unit.Start(fatalError)
}

// Stop implements service.Unit.
func (a *App) Stop(gracefully bool) error {
	return a.unit.Stop(gracefully)
}

// MustRegisterMetrics implements service.MetricsRegisterer.
func (a *App) MustRegisterMetrics() {
	restapi.MustInitAndRegisterMetrics(a.metricsNamespace)
	a.unit.MustRegisterMetrics()
	if a.RateLimit != nil {
		a.RateLimit.MustRegisterMetrics()
	}
}

// UnregisterMetrics implements service.MetricsRegisterer.
func (a *App) UnregisterMetrics() {
	if a.RateLimit != nil {
		a.RateLimit.UnregisterMetrics()
	}
	a.unit.UnregisterMetrics()
	restapi.UnregisterMetrics()
}

// Run runs the application until ctx is done or a shutdown signal is received.
func Run(ctx context.Context, cfg *Config, logger log.FieldLogger) error {
	a, err := New(cfg, logger, Opts{})
	if err != nil {
		return err
	}
	return service.New(logger, a).StartContext(ctx)
}
