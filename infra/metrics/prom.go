package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/quarterplan/core/metrics"
	"github.com/kilianp07/quarterplan/core/model"
)

// PromSink records planning runs in Prometheus metrics.
type PromSink struct {
	runs     *prometheus.CounterVec
	issues   *prometheus.GaugeVec
	critical *prometheus.GaugeVec
	makespan *prometheus.GaugeVec
	late     *prometheus.GaugeVec
	duration *prometheus.HistogramVec
	laneEnd  *prometheus.GaugeVec
}

// NewPromSink registers planning metrics on the default Prometheus registerer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	s, err := NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planner_runs_total",
			Help: "Total number of scheduling runs",
		}, []string{"scenario"}),
		issues: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "planner_issues",
			Help: "Issues of the last run per scheduling outcome",
		}, []string{"scenario", "reason"}),
		critical: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "planner_critical_issues",
			Help: "Issues on the critical path in the last run",
		}, []string{"scenario"}),
		makespan: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "planner_makespan_weeks",
			Help: "Weeks from the start date to the last planned end date",
		}, []string{"scenario"}),
		late: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "planner_late_weeks",
			Help: "Weeks the plan overshoots the quarter end",
		}, []string{"scenario"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "planner_run_duration_seconds",
			Help:    "Wall time of a scheduling run",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"scenario"}),
		laneEnd: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "planner_lane_end_weeks",
			Help: "Planned end of each lane in weeks from the start date",
		}, []string{"scenario", "lane"}),
	}

	var err error
	if s.runs, err = register(reg, s.runs); err != nil {
		return nil, err
	}
	if s.issues, err = register(reg, s.issues); err != nil {
		return nil, err
	}
	if s.critical, err = register(reg, s.critical); err != nil {
		return nil, err
	}
	if s.makespan, err = register(reg, s.makespan); err != nil {
		return nil, err
	}
	if s.late, err = register(reg, s.late); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, s.duration); err != nil {
		return nil, err
	}
	if s.laneEnd, err = register(reg, s.laneEnd); err != nil {
		return nil, err
	}
	return s, nil
}

// register adds c to reg, reusing an identical collector registered earlier.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordRun updates the run counter and the last-run gauges.
func (s *PromSink) RecordRun(ev coremetrics.RunEvent) error {
	s.runs.WithLabelValues(ev.Scenario).Inc()
	for _, r := range model.Reasons {
		s.issues.WithLabelValues(ev.Scenario, string(r)).Set(float64(ev.Reasons[r]))
	}
	s.critical.WithLabelValues(ev.Scenario).Set(float64(ev.Critical))
	s.makespan.WithLabelValues(ev.Scenario).Set(ev.MakespanWeeks)
	s.late.WithLabelValues(ev.Scenario).Set(ev.LateWeeks)
	s.duration.WithLabelValues(ev.Scenario).Observe(ev.Duration.Seconds())
	return nil
}

// RecordLaneLoad sets the lane end gauge for every lane.
func (s *PromSink) RecordLaneLoad(loads []coremetrics.LaneLoad) error {
	for _, l := range loads {
		s.laneEnd.WithLabelValues(l.Scenario, l.Lane).Set(l.EndWeeks)
	}
	return nil
}
