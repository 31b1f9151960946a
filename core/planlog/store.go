// Package planlog keeps a history of scheduling runs so that what-if
// scenarios can be compared over time.
package planlog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/quarterplan/core/analysis"
	"github.com/kilianp07/quarterplan/core/model"
)

// RunRecord captures one scheduling run and its outcome.
type RunRecord struct {
	ID            string                        `json:"id"`
	Timestamp     time.Time                     `json:"timestamp"`
	Scenario      string                        `json:"scenario"`
	Reasons       map[model.ScheduledReason]int `json:"reasons"`
	Critical      []string                      `json:"critical"`
	MakespanWeeks float64                       `json:"makespan_weeks"`
	Issues        []model.ScheduledIssue        `json:"issues"`
}

// NewRunRecord builds a record with a fresh run ID.
func NewRunRecord(scenario string, cfg model.ScenarioConfig, res model.ScheduleResult, slack analysis.SlackReport, now time.Time) RunRecord {
	rec := RunRecord{
		ID:        uuid.NewString(),
		Timestamp: now,
		Scenario:  scenario,
		Reasons:   res.Counts(),
		Critical:  slack.Critical,
		Issues:    res.Issues,
	}
	if end := res.End(); !end.IsZero() {
		rec.MakespanWeeks = model.WeeksBetween(cfg.StartDate, end)
	}
	return rec
}

// Query defines filters for retrieving records. Zero values match everything.
type Query struct {
	Start    time.Time
	End      time.Time
	Scenario string
	// Limit keeps only the most recent records when positive.
	Limit int
}

func (q Query) match(r RunRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	return q.Scenario == "" || r.Scenario == q.Scenario
}

func (q Query) trim(recs []RunRecord) []RunRecord {
	if q.Limit > 0 && len(recs) > q.Limit {
		return recs[len(recs)-q.Limit:]
	}
	return recs
}

// Store persists RunRecords and supports querying. Records are returned
// oldest first.
type Store interface {
	Append(ctx context.Context, rec RunRecord) error
	Query(ctx context.Context, q Query) ([]RunRecord, error)
	Close() error
}

// Options selects and configures a store backend.
type Options struct {
	// Backend is "jsonl" or "sqlite".
	Backend string
	Path    string
	// MaxSizeMB enables rotation of the JSONL file when positive.
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Open returns the store described by opts.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case "jsonl":
		if opts.MaxSizeMB > 0 {
			return NewRotatingJSONLStore(opts.Path, opts.MaxSizeMB, opts.MaxBackups, opts.MaxAgeDays)
		}
		return NewJSONLStore(opts.Path)
	case "sqlite":
		return NewSQLiteStore(opts.Path)
	default:
		return nil, fmt.Errorf("unknown plan log backend %s", opts.Backend)
	}
}
