package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/quarterplan/core/model"
)

func dated(key, lane string, start, end time.Time, reason model.ScheduledReason) model.ScheduledIssue {
	return model.ScheduledIssue{Key: key, Lane: lane, StartDate: &start, EndDate: &end, ScheduledReason: reason}
}

func TestNewRunEventAndLaneLoads(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := model.ScenarioConfig{StartDate: start, QuarterEndDate: start.AddDate(0, 0, 14)}
	a := dated("A", "Beta", start, start.AddDate(0, 0, 21), model.ReasonScheduled)
	b := dated("B", "Alpha", start, start.AddDate(0, 0, 7), model.ReasonScheduled)
	c := dated("C", "Alpha", start, start, model.ReasonAlreadyDone)
	d := model.ScheduledIssue{Key: "D", Lane: "Alpha", ScheduledReason: model.ReasonMissingStoryPoints}
	res := model.ScheduleResult{
		Issues:    []model.ScheduledIssue{a, b, c, d},
		Scheduled: map[string]model.ScheduledIssue{"A": a, "B": b, "C": c},
	}

	ev := NewRunEvent("base", cfg, res, 2)
	assert.Equal(t, 4, ev.Issues)
	assert.Equal(t, 2, ev.Reasons[model.ReasonScheduled])
	assert.Equal(t, 1, ev.Reasons[model.ReasonMissingStoryPoints])
	assert.InDelta(t, 3, ev.MakespanWeeks, 1e-9)
	assert.InDelta(t, 1, ev.LateWeeks, 1e-9)

	loads := LaneLoads("base", cfg, res)
	assert.Equal(t, []LaneLoad{
		{Scenario: "base", Lane: "Alpha", EndWeeks: 1, Issues: 1},
		{Scenario: "base", Lane: "Beta", EndWeeks: 3, Issues: 1},
	}, loads)
}

func TestNewRunEventEmpty(t *testing.T) {
	ev := NewRunEvent("empty", model.ScenarioConfig{}, model.ScheduleResult{}, 0)
	assert.Zero(t, ev.MakespanWeeks)
	assert.Zero(t, ev.LateWeeks)
}
