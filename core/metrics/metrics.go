package metrics

import (
	"slices"
	"time"

	"github.com/kilianp07/quarterplan/core/model"
)

// RunEvent summarises one scheduling run.
type RunEvent struct {
	RunID    string
	Scenario string
	Issues   int
	Reasons  map[model.ScheduledReason]int
	// Critical is the number of issues on the critical path.
	Critical int
	// MakespanWeeks is the distance from the start date to the last end date.
	MakespanWeeks float64
	// LateWeeks is how far the last end date overshoots the quarter end, 0 when on time.
	LateWeeks float64
	Duration  time.Duration
	Time      time.Time
}

// NewRunEvent builds a RunEvent from a schedule and the number of critical issues.
func NewRunEvent(scenario string, cfg model.ScenarioConfig, res model.ScheduleResult, critical int) RunEvent {
	ev := RunEvent{
		Scenario: scenario,
		Issues:   len(res.Issues),
		Reasons:  res.Counts(),
		Critical: critical,
	}
	if end := res.End(); !end.IsZero() {
		ev.MakespanWeeks = model.WeeksBetween(cfg.StartDate, end)
		if late := model.WeeksBetween(cfg.QuarterEndDate, end); late > 0 {
			ev.LateWeeks = late
		}
	}
	return ev
}

// MetricsSink records planning runs for observability purposes.
type MetricsSink interface {
	RecordRun(ev RunEvent) error
}

// LaneLoad is the planned end of a lane, in weeks from the start date.
type LaneLoad struct {
	Scenario string
	Lane     string
	EndWeeks float64
	Issues   int
}

// LaneLoadRecorder is implemented by sinks able to record per-lane load.
type LaneLoadRecorder interface {
	RecordLaneLoad(loads []LaneLoad) error
}

// LaneLoads aggregates the scheduled issues of a run per lane, sorted by lane.
func LaneLoads(scenario string, cfg model.ScenarioConfig, res model.ScheduleResult) []LaneLoad {
	byLane := map[string]*LaneLoad{}
	var lanes []string
	for _, rec := range res.Issues {
		if rec.ScheduledReason != model.ReasonScheduled {
			continue
		}
		l, ok := byLane[rec.Lane]
		if !ok {
			l = &LaneLoad{Scenario: scenario, Lane: rec.Lane}
			byLane[rec.Lane] = l
			lanes = append(lanes, rec.Lane)
		}
		l.Issues++
		if end := model.WeeksBetween(cfg.StartDate, *rec.EndDate); end > l.EndWeeks {
			l.EndWeeks = end
		}
	}
	slices.Sort(lanes)
	out := make([]LaneLoad, 0, len(lanes))
	for _, lane := range lanes {
		out = append(out, *byLane[lane])
	}
	return out
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunEvent) error        { return nil }
func (NopSink) RecordLaneLoad([]LaneLoad) error { return nil }
