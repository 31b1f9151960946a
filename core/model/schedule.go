package model

import "time"

// ScheduledReason records how the scheduler resolved an issue.
type ScheduledReason string

const (
	ReasonScheduled          ScheduledReason = "scheduled"
	ReasonAlreadyDone        ScheduledReason = "already_done"
	ReasonMissingStoryPoints ScheduledReason = "missing_story_points"
	ReasonMissingDependency  ScheduledReason = "missing_dependency"
	ReasonCircularDependency ScheduledReason = "circular_dependency"
)

// Reasons lists every reason in a stable order.
var Reasons = []ScheduledReason{
	ReasonScheduled,
	ReasonAlreadyDone,
	ReasonMissingStoryPoints,
	ReasonMissingDependency,
	ReasonCircularDependency,
}

// ScheduledIssue is the scheduler output for one input issue. StartDate and
// EndDate are either both set or both nil.
type ScheduledIssue struct {
	Key             string          `json:"key"`
	Summary         string          `json:"summary"`
	Lane            string          `json:"lane"`
	StartDate       *time.Time      `json:"start_date"`
	EndDate         *time.Time      `json:"end_date"`
	BlockedBy       []string        `json:"blocked_by"`
	ScheduledReason ScheduledReason `json:"scheduled_reason"`
	DurationWeeks   *float64        `json:"duration_weeks,omitempty"`
}

// Dated reports whether the issue received dates.
func (s ScheduledIssue) Dated() bool { return s.StartDate != nil && s.EndDate != nil }

// Duration returns the duration in weeks, 0 when absent.
func (s ScheduledIssue) Duration() float64 {
	if s.DurationWeeks == nil {
		return 0
	}
	return *s.DurationWeeks
}

// ScheduleResult is the output of a scheduling run.
type ScheduleResult struct {
	// Issues holds one record per input issue, in input order.
	Issues []ScheduledIssue
	// Scheduled indexes the dated records by key.
	Scheduled map[string]ScheduledIssue
}

// Unschedulable returns the records without dates, in input order.
func (r ScheduleResult) Unschedulable() []ScheduledIssue {
	var out []ScheduledIssue
	for _, s := range r.Issues {
		if !s.Dated() {
			out = append(out, s)
		}
	}
	return out
}

// Counts returns the number of records per reason.
func (r ScheduleResult) Counts() map[ScheduledReason]int {
	out := make(map[ScheduledReason]int, len(Reasons))
	for _, s := range r.Issues {
		out[s.ScheduledReason]++
	}
	return out
}

// Lookup returns the record for key regardless of its reason.
func (r ScheduleResult) Lookup(key string) (ScheduledIssue, bool) {
	for _, s := range r.Issues {
		if s.Key == key {
			return s, true
		}
	}
	return ScheduledIssue{}, false
}

// End returns the latest end date among scheduled issues, or the zero time.
func (r ScheduleResult) End() time.Time {
	var end time.Time
	for _, s := range r.Scheduled {
		if s.EndDate != nil && s.EndDate.After(end) {
			end = *s.EndDate
		}
	}
	return end
}
