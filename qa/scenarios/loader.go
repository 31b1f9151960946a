// Package scenarios loads planning scenario documents and checks scheduling
// results against the expectations they declare.
package scenarios

import (
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/quarterplan/core/analysis"
	"github.com/kilianp07/quarterplan/core/model"
	"github.com/kilianp07/quarterplan/core/scheduler"
)

// IssueDef is the exported form of a tracker issue.
type IssueDef struct {
	Key      string   `yaml:"key"`
	Summary  string   `yaml:"summary,omitempty"`
	Type     string   `yaml:"type,omitempty"`
	Team     string   `yaml:"team,omitempty"`
	Assignee string   `yaml:"assignee,omitempty"`
	SP       *float64 `yaml:"sp,omitempty"`
	Priority string   `yaml:"priority,omitempty"`
	Status   string   `yaml:"status,omitempty"`
	EpicKey  string   `yaml:"epicKey,omitempty"`
}

func (d IssueDef) ToModel() model.Issue {
	return model.Issue{
		Key:         d.Key,
		Summary:     d.Summary,
		IssueType:   d.Type,
		Team:        d.Team,
		Assignee:    d.Assignee,
		StoryPoints: d.SP,
		Priority:    d.Priority,
		Status:      d.Status,
		EpicKey:     d.EpicKey,
	}
}

// DependencyDef states that To cannot start before From ends.
type DependencyDef struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Expected lists assertions about the schedule of a scenario. Dates use
// the YYYY-MM-DD layout.
type Expected struct {
	Reasons    map[string]string `yaml:"reasons,omitempty"`
	StartDates map[string]string `yaml:"start_dates,omitempty"`
	EndDates   map[string]string `yaml:"end_dates,omitempty"`
	// Before holds pairs where the first issue ends before the second starts.
	Before   [][2]string `yaml:"before,omitempty"`
	Critical []string    `yaml:"critical,omitempty"`
}

type Scenario struct {
	Name         string              `yaml:"name"`
	Description  string              `yaml:"description,omitempty"`
	Config       scheduler.ConfigDef `yaml:"config"`
	Issues       []IssueDef          `yaml:"issues"`
	Dependencies []DependencyDef     `yaml:"dependencies,omitempty"`
	Expected     Expected            `yaml:"expected,omitempty"`

	override *model.ScenarioConfig
}

// OverrideConfig replaces the document's config block for Inputs.
func (s *Scenario) OverrideConfig(cfg model.ScenarioConfig) {
	s.override = &cfg
}

func Load(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	sc, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Decode reads a scenario document from r.
func Decode(r io.Reader) (*Scenario, error) {
	var sc Scenario
	if err := yaml.NewDecoder(r).Decode(&sc); err != nil {
		return nil, err
	}
	if len(sc.Issues) == 0 {
		return nil, fmt.Errorf("scenario %q has no issues", sc.Name)
	}
	return &sc, nil
}

// Inputs converts the document into scheduler inputs.
func (s *Scenario) Inputs() ([]model.Issue, model.Dependencies, model.ScenarioConfig, error) {
	cfg, err := s.scenarioConfig()
	if err != nil {
		return nil, nil, model.ScenarioConfig{}, fmt.Errorf("config: %w", err)
	}
	issues := make([]model.Issue, len(s.Issues))
	seen := make(map[string]bool, len(s.Issues))
	for i, d := range s.Issues {
		if d.Key == "" {
			return nil, nil, model.ScenarioConfig{}, fmt.Errorf("issue %d has no key", i)
		}
		if seen[d.Key] {
			return nil, nil, model.ScenarioConfig{}, fmt.Errorf("duplicate issue key %s", d.Key)
		}
		seen[d.Key] = true
		issues[i] = d.ToModel()
	}
	deps := model.Dependencies{}
	for _, d := range s.Dependencies {
		deps[d.To] = append(deps[d.To], d.From)
	}
	return issues, deps, cfg, nil
}

func (s *Scenario) scenarioConfig() (model.ScenarioConfig, error) {
	if s.override != nil {
		return *s.override, nil
	}
	return s.Config.ToModel()
}

// Check compares a result with the scenario expectations and returns one
// message per violated expectation.
func (s *Scenario) Check(res model.ScheduleResult, slack analysis.SlackReport) []string {
	var failures []string
	fail := func(format string, args ...any) {
		failures = append(failures, fmt.Sprintf(format, args...))
	}
	lookup := func(key string) (model.ScheduledIssue, bool) {
		rec, ok := res.Lookup(key)
		if !ok {
			fail("%s: not in result", key)
		}
		return rec, ok
	}
	for _, key := range sortedKeys(s.Expected.Reasons) {
		if rec, ok := lookup(key); ok && string(rec.ScheduledReason) != s.Expected.Reasons[key] {
			fail("%s: reason %s, want %s", key, rec.ScheduledReason, s.Expected.Reasons[key])
		}
	}
	checkDates := func(want map[string]string, field string, get func(model.ScheduledIssue) *time.Time) {
		for _, key := range sortedKeys(want) {
			rec, ok := lookup(key)
			if !ok {
				continue
			}
			got := "null"
			if d := get(rec); d != nil {
				got = d.Format(time.DateOnly)
			}
			if got != want[key] {
				fail("%s: %s %s, want %s", key, field, got, want[key])
			}
		}
	}
	checkDates(s.Expected.StartDates, "start_date", func(r model.ScheduledIssue) *time.Time { return r.StartDate })
	checkDates(s.Expected.EndDates, "end_date", func(r model.ScheduledIssue) *time.Time { return r.EndDate })
	for _, pair := range s.Expected.Before {
		a, okA := lookup(pair[0])
		b, okB := lookup(pair[1])
		if !okA || !okB {
			continue
		}
		if !a.Dated() || !b.Dated() {
			fail("%s before %s: both must be scheduled", pair[0], pair[1])
			continue
		}
		if b.StartDate.Before(*a.EndDate) {
			fail("%s starts %s before %s ends %s", pair[1], b.StartDate.Format(time.DateOnly), pair[0], a.EndDate.Format(time.DateOnly))
		}
	}
	for _, key := range s.Expected.Critical {
		if !slack.IsCritical(key) {
			fail("%s: not critical (slack %.2f)", key, slack.Slack[key])
		}
	}
	return failures
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
