package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/kilianp07/quarterplan/config"
	coremetrics "github.com/kilianp07/quarterplan/core/metrics"
	"github.com/kilianp07/quarterplan/core/planlog"
	"github.com/kilianp07/quarterplan/infra/logger"
	"github.com/kilianp07/quarterplan/infra/metrics"
	"github.com/kilianp07/quarterplan/infra/mqtt"
)

// Service wires the planner to the sinks, run log and publisher described
// by the configuration.
type Service struct {
	Planner  *Planner
	cfg      *config.Config
	log      logger.Logger
	store    planlog.Store
	sink     coremetrics.MetricsSink
	pub      *mqtt.PlanPublisher
	promAddr string
}

// Options selects optional outputs when building a Service.
type Options struct {
	// Publish connects to the MQTT broker.
	Publish bool
}

// New creates a Service from the configuration.
func New(cfg *config.Config, opts Options) (*Service, error) {
	logg := logger.New("service")
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	svc := &Service{cfg: cfg, log: logg, sink: sink, promAddr: cfg.Metrics.PrometheusAddr}
	planOpts := []Option{WithLogger(logger.New("planner")), WithMetrics(sink)}

	if cfg.Planlog.Enabled() {
		store, err := planlog.Open(planlog.Options{
			Backend:    cfg.Planlog.Backend,
			Path:       cfg.Planlog.Path,
			MaxSizeMB:  cfg.Planlog.MaxSizeMB,
			MaxBackups: cfg.Planlog.MaxBackups,
			MaxAgeDays: cfg.Planlog.MaxAgeDays,
		})
		if err != nil {
			return nil, fmt.Errorf("plan log: %w", err)
		}
		svc.store = store
		planOpts = append(planOpts, WithStore(store))
	}
	if opts.Publish {
		if cfg.MQTT.Broker == "" {
			_ = svc.Close()
			return nil, fmt.Errorf("mqtt: %w", ErrNoPublisher)
		}
		pub, err := mqtt.NewPlanPublisher(cfg.MQTT)
		if err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.pub = pub
		planOpts = append(planOpts, WithPublisher(pub))
	}
	svc.Planner = NewPlanner(planOpts...)
	return svc, nil
}

// ScenarioPath returns path, or the configured default scenario when empty.
func (s *Service) ScenarioPath(path string) string {
	if path != "" {
		return path
	}
	return s.cfg.Scenario.Path
}

// Serve exposes the Prometheus endpoint and blocks until the context is
// cancelled. When a scenario is configured it is planned once at startup so
// the gauges carry values.
func (s *Service) Serve(ctx context.Context) error {
	if path := s.cfg.Scenario.Path; path != "" {
		if _, err := s.Planner.PlanFile(ctx, path); err != nil {
			s.log.Errorf("initial plan of %s: %v", path, err)
		}
	}
	s.log.Infof("serving metrics on %s", s.promAddr)
	return metrics.StartPromServer(ctx, s.promAddr)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	var errs []error
	if s.pub != nil {
		errs = append(errs, s.pub.Close())
	}
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	return errors.Join(errs...)
}
