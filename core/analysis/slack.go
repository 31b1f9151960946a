// Package analysis post-processes a schedule. ComputeSlack runs a critical
// path backward pass over the scheduled issues and reports how many weeks
// each of them could slip before the quarter end moves.
package analysis

import (
	"math"
	"slices"
	"time"

	"github.com/kilianp07/quarterplan/core/model"
)

// CriticalTolerance is the slack, in weeks, at or below which an issue is critical.
const CriticalTolerance = 0.01

// SlackReport holds the result of ComputeSlack.
type SlackReport struct {
	// Slack maps each scheduled key to its slack in weeks.
	Slack map[string]float64 `json:"slack"`
	// Critical lists critical keys in topological order. Keys the
	// topological pass could not reach (cycles among finished work) follow
	// in key order.
	Critical []string `json:"critical"`
	// HorizonWeeks is the distance from the earliest start to the quarter end.
	HorizonWeeks float64 `json:"horizon_weeks"`
}

// IsCritical reports whether key is on the critical path.
func (r SlackReport) IsCritical(key string) bool {
	return slices.Contains(r.Critical, key)
}

// ComputeSlack computes the slack of every scheduled issue against
// quarterEnd. Unscheduled issues must not be part of scheduled; edges to
// them are ignored.
func ComputeSlack(scheduled map[string]model.ScheduledIssue, deps model.Dependencies, quarterEnd time.Time) SlackReport {
	report := SlackReport{Slack: map[string]float64{}, Critical: []string{}}
	earliest, ok := earliestStart(scheduled)
	if !ok {
		return report
	}
	horizon := math.Max(1, model.WeeksBetween(earliest, quarterEnd))
	report.HorizonWeeks = horizon

	inSet := deps.Restrict(func(k string) bool {
		_, ok := scheduled[k]
		return ok
	})
	successors := inSet.Successors()
	order := kahn(scheduled, inSet, successors)

	latest := make(map[string]float64, len(scheduled))
	for key := range scheduled {
		latest[key] = horizon
	}
	for i := len(order) - 1; i >= 0; i-- {
		key := order[i]
		finish := horizon
		for _, s := range successors[key] {
			finish = math.Min(finish, latest[s])
		}
		latest[key] = finish - scheduled[key].Duration()
	}

	for _, key := range withLeftovers(order, scheduled) {
		rec := scheduled[key]
		if rec.StartDate == nil {
			continue
		}
		slack := latest[key] - model.WeeksBetween(earliest, *rec.StartDate)
		report.Slack[key] = slack
		if slack <= CriticalTolerance {
			report.Critical = append(report.Critical, key)
		}
	}
	return report
}

func earliestStart(scheduled map[string]model.ScheduledIssue) (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, rec := range scheduled {
		if rec.StartDate == nil {
			continue
		}
		if !found || rec.StartDate.Before(earliest) {
			earliest = *rec.StartDate
			found = true
		}
	}
	return earliest, found
}

// kahn returns a plain FIFO topological order over the scheduled keys.
// Initially ready keys are taken in key order. Keys on a cycle are left out.
func kahn(scheduled map[string]model.ScheduledIssue, deps model.Dependencies, successors map[string][]string) []string {
	indegree := make(map[string]int, len(scheduled))
	keys := make([]string, 0, len(scheduled))
	for key := range scheduled {
		keys = append(keys, key)
		indegree[key] = len(deps[key])
	}
	slices.Sort(keys)

	queue := make([]string, 0, len(keys))
	for _, key := range keys {
		if indegree[key] == 0 {
			queue = append(queue, key)
		}
	}
	order := make([]string, 0, len(keys))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)
		for _, next := range successors[node] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	return order
}

func withLeftovers(order []string, scheduled map[string]model.ScheduledIssue) []string {
	if len(order) == len(scheduled) {
		return order
	}
	seen := make(map[string]bool, len(order))
	for _, k := range order {
		seen[k] = true
	}
	var rest []string
	for k := range scheduled {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	return append(slices.Clone(order), rest...)
}
