package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/quarterplan/core/analysis"
	"github.com/kilianp07/quarterplan/core/logger"
	coremetrics "github.com/kilianp07/quarterplan/core/metrics"
	"github.com/kilianp07/quarterplan/core/model"
	"github.com/kilianp07/quarterplan/core/planlog"
	"github.com/kilianp07/quarterplan/core/scheduler"
	"github.com/kilianp07/quarterplan/pkg/export"
	"github.com/kilianp07/quarterplan/qa/scenarios"
)

var (
	// ErrNoScenario is returned when no scenario file was given.
	ErrNoScenario = errors.New("no scenario given")
	// ErrNoPublisher is returned by Publish when MQTT is not configured.
	ErrNoPublisher = errors.New("plan publishing is not configured")
)

// PlanPublisher sends a computed plan to subscribers.
type PlanPublisher interface {
	PublishPlan(ctx context.Context, scenario string, plan any) error
}

// Run is the outcome of planning one scenario.
type Run struct {
	ID       string
	Scenario string
	Config   model.ScenarioConfig
	Deps     model.Dependencies
	Result   model.ScheduleResult
	Slack    analysis.SlackReport
}

// Document returns the exported form of the run.
func (r *Run) Document() export.Document {
	return export.NewDocument(r.Scenario, r.Result, r.Slack)
}

// Planner schedules scenarios and reports each run to the configured
// metrics sink and run log.
type Planner struct {
	log       logger.Logger
	sink      coremetrics.MetricsSink
	store     planlog.Store
	publisher PlanPublisher
	now       func() time.Time
}

// Option configures a Planner.
type Option func(*Planner)

func WithLogger(l logger.Logger) Option { return func(p *Planner) { p.log = logger.OrNop(l) } }

func WithMetrics(s coremetrics.MetricsSink) Option { return func(p *Planner) { p.sink = s } }

func WithStore(s planlog.Store) Option { return func(p *Planner) { p.store = s } }

func WithPublisher(pub PlanPublisher) Option { return func(p *Planner) { p.publisher = pub } }

func WithClock(now func() time.Time) Option { return func(p *Planner) { p.now = now } }

func NewPlanner(opts ...Option) *Planner {
	p := &Planner{log: logger.Nop{}, sink: coremetrics.NopSink{}, now: time.Now}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Source names a scenario file and an optional standalone scenario
// config file (YAML, JSON or JSONC) that replaces the document's config
// block.
type Source struct {
	Scenario string
	Config   string
}

// Sources pairs scenario files with config files. Without configs every
// scenario is planned as written. A single scenario with configs is planned
// as written first, then once per config. Otherwise configs pair with
// scenarios by position.
func Sources(scenarioPaths, configPaths []string) ([]Source, error) {
	var out []Source
	switch {
	case len(configPaths) == 0:
		for _, p := range scenarioPaths {
			out = append(out, Source{Scenario: p})
		}
	case len(scenarioPaths) == 1:
		out = append(out, Source{Scenario: scenarioPaths[0]})
		for _, c := range configPaths {
			out = append(out, Source{Scenario: scenarioPaths[0], Config: c})
		}
	case len(scenarioPaths) == len(configPaths):
		for i, p := range scenarioPaths {
			out = append(out, Source{Scenario: p, Config: configPaths[i]})
		}
	default:
		return nil, fmt.Errorf("%d scenario configs for %d scenarios", len(configPaths), len(scenarioPaths))
	}
	return out, nil
}

// PlanFile loads and plans the scenario stored at path.
func (p *Planner) PlanFile(ctx context.Context, path string) (*Run, error) {
	return p.PlanSource(ctx, Source{Scenario: path})
}

// PlanSource loads and plans src. A config override renames the run to
// <scenario>@<config file name>.
func (p *Planner) PlanSource(ctx context.Context, src Source) (*Run, error) {
	if src.Scenario == "" {
		return nil, ErrNoScenario
	}
	sc, err := scenarios.Load(src.Scenario)
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}
	if src.Config != "" {
		cfg, err := scheduler.LoadConfig(src.Config)
		if err != nil {
			return nil, fmt.Errorf("load scenario config %s: %w", src.Config, err)
		}
		sc.OverrideConfig(cfg)
		base := filepath.Base(src.Config)
		sc.Name = fmt.Sprintf("%s@%s", sc.Name, strings.TrimSuffix(base, filepath.Ext(base)))
	}
	return p.Plan(ctx, sc)
}

// Plan schedules the scenario, computes slack and records the run. Metrics
// failures are logged; run log failures are returned.
func (p *Planner) Plan(ctx context.Context, sc *scenarios.Scenario) (*Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	issues, deps, cfg, err := sc.Inputs()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	began := p.now()
	s := scheduler.Scheduler{Config: cfg, Logger: p.log}
	res := s.Plan(issues, deps)
	slack := analysis.ComputeSlack(res.Scheduled, deps, cfg.QuarterEndDate)
	elapsed := p.now().Sub(began)

	rec := planlog.NewRunRecord(sc.Name, cfg, res, slack, began)
	run := &Run{ID: rec.ID, Scenario: sc.Name, Config: cfg, Deps: deps, Result: res, Slack: slack}

	ev := coremetrics.NewRunEvent(sc.Name, cfg, res, len(slack.Critical))
	ev.RunID = rec.ID
	ev.Duration = elapsed
	ev.Time = began
	if err := p.sink.RecordRun(ev); err != nil {
		p.log.Warnf("record run metrics: %v", err)
	}
	if lr, ok := p.sink.(coremetrics.LaneLoadRecorder); ok {
		if err := lr.RecordLaneLoad(coremetrics.LaneLoads(sc.Name, cfg, res)); err != nil {
			p.log.Warnf("record lane load: %v", err)
		}
	}
	if p.store != nil {
		if err := p.store.Append(ctx, rec); err != nil {
			return run, fmt.Errorf("append run log: %w", err)
		}
	}
	p.log.Infof("scenario %s planned: run %s, %d critical issues", sc.Name, rec.ID, len(slack.Critical))
	return run, nil
}

// Publish sends the run's document to the configured publisher.
func (p *Planner) Publish(ctx context.Context, run *Run) error {
	if p.publisher == nil {
		return ErrNoPublisher
	}
	return p.publisher.PublishPlan(ctx, run.Scenario, run.Document())
}

// Compare plans several sources concurrently. Runs are returned in the
// order of sources.
func (p *Planner) Compare(ctx context.Context, sources []Source) ([]*Run, error) {
	if len(sources) == 0 {
		return nil, ErrNoScenario
	}
	runs := make([]*Run, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			run, err := p.PlanSource(ctx, src)
			if err != nil {
				return fmt.Errorf("%s: %w", src.Scenario, err)
			}
			runs[i] = run
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return runs, nil
}

// History returns recorded runs matching q.
func (p *Planner) History(ctx context.Context, q planlog.Query) ([]planlog.RunRecord, error) {
	if p.store == nil {
		return nil, nil
	}
	return p.store.Query(ctx, q)
}
