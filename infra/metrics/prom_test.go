package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/kilianp07/quarterplan/core/metrics"
	"github.com/kilianp07/quarterplan/core/model"
)

func TestPromSinkRecordRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	ev := coremetrics.RunEvent{
		Scenario:      "baseline",
		Reasons:       map[model.ScheduledReason]int{model.ReasonScheduled: 4, model.ReasonMissingDependency: 1},
		Critical:      3,
		MakespanWeeks: 6.5,
		Duration:      2 * time.Millisecond,
	}
	if err := sink.RecordRun(ev); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := sink.RecordRun(ev); err != nil {
		t.Fatalf("record: %v", err)
	}
	if got := testutil.ToFloat64(sink.runs.WithLabelValues("baseline")); got != 2 {
		t.Fatalf("runs %v", got)
	}
	if got := testutil.ToFloat64(sink.issues.WithLabelValues("baseline", "missing_dependency")); got != 1 {
		t.Fatalf("missing_dependency gauge %v", got)
	}
	if got := testutil.ToFloat64(sink.critical.WithLabelValues("baseline")); got != 3 {
		t.Fatalf("critical gauge %v", got)
	}
	if got := testutil.ToFloat64(sink.makespan.WithLabelValues("baseline")); got != 6.5 {
		t.Fatalf("makespan gauge %v", got)
	}
	if n := testutil.CollectAndCount(sink.duration); n != 1 {
		t.Fatalf("expected one histogram series got %d", n)
	}
}

func TestPromSinkLaneLoad(t *testing.T) {
	sink, err := NewPromSinkWithRegistry(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	if err := sink.RecordLaneLoad([]coremetrics.LaneLoad{{Scenario: "s", Lane: "Alpha", EndWeeks: 3}}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if got := testutil.ToFloat64(sink.laneEnd.WithLabelValues("s", "Alpha")); got != 3 {
		t.Fatalf("lane gauge %v", got)
	}
}

func TestPromSinkReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if err := first.RecordRun(coremetrics.RunEvent{Scenario: "x"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if got := testutil.ToFloat64(second.runs.WithLabelValues("x")); got != 1 {
		t.Fatalf("collectors not shared, got %v", got)
	}
}
