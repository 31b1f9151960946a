package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/quarterplan/core/metrics"
	"github.com/kilianp07/quarterplan/core/model"
)

func TestInfluxSink_RecordRun(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()
	now := time.Unix(1767225600, 0)
	ev := coremetrics.RunEvent{
		RunID:         "run-1",
		Scenario:      "baseline",
		Issues:        3,
		Reasons:       map[model.ScheduledReason]int{model.ReasonScheduled: 2, model.ReasonAlreadyDone: 1},
		Critical:      2,
		MakespanWeeks: 4.12345,
		Duration:      1500 * time.Microsecond,
		Time:          now,
	}
	if err := sink.RecordRun(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	expected := strings.TrimSpace(write.PointToLineProtocol(runPoint(ev), time.Nanosecond))
	if strings.TrimSpace(body) != expected {
		t.Errorf("unexpected body: %s", body)
	}
	for _, want := range []string{"planning_run", "scenario=baseline", "run_id=run-1", "scheduled=2i", "critical=2i", "makespan_weeks=4.123"} {
		if !strings.Contains(body, want) {
			t.Errorf("body %q misses %q", body, want)
		}
	}
}

func TestInfluxSink_RecordLaneLoad(t *testing.T) {
	var mu sync.Mutex
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(data))
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()
	loads := []coremetrics.LaneLoad{{Scenario: "s", Lane: "Alpha", EndWeeks: 2, Issues: 3}, {Scenario: "s", Lane: "Beta", EndWeeks: 1, Issues: 1}}
	if err := sink.RecordLaneLoad(loads); err != nil {
		t.Fatalf("record error: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(bodies) != 2 || !strings.Contains(bodies[0], "lane=Alpha") {
		t.Fatalf("unexpected writes %v", bodies)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
