package model

import (
	"slices"
	"strings"
)

// DefaultLane is used when an issue carries neither a team nor an assignee.
const DefaultLane = "Unassigned"

// Issue is a unit of work exported by the issue tracker. It is an
// immutable input record: the scheduler never modifies it.
type Issue struct {
	Key       string
	Summary   string
	IssueType string
	Team      string
	Assignee  string
	// StoryPoints is nil when the issue has not been estimated.
	StoryPoints *float64
	Priority    string
	Status      string
	EpicKey     string
}

// Points returns the story points or 0 when the issue is not estimated.
func (i Issue) Points() float64 {
	if i.StoryPoints == nil {
		return 0
	}
	return *i.StoryPoints
}

// Estimated reports whether story points are present.
func (i Issue) Estimated() bool { return i.StoryPoints != nil }

// Terminal reports whether the issue status means the work is finished
// (done or killed). The comparison is case-insensitive.
func (i Issue) Terminal() bool {
	switch strings.ToLower(strings.TrimSpace(i.Status)) {
	case "done", "killed":
		return true
	}
	return false
}

// Lane returns the resource lane the issue is planned on. In assignee mode
// the assignee is used, falling back to the team; in team mode only the team
// is considered.
func (i Issue) Lane(mode LaneMode) string {
	if mode == LaneModeAssignee && i.Assignee != "" {
		return i.Assignee
	}
	if i.Team != "" {
		return i.Team
	}
	return DefaultLane
}

// Estimate returns a pointer to v, for building estimated issues.
func Estimate(v float64) *float64 { return &v }

// Dependencies maps a dependent issue key to its ordered prerequisite keys.
// A prerequisite must finish before its dependent starts.
type Dependencies map[string][]string

// Successors returns the reverse adjacency: prerequisite key to the keys
// depending on it, in deterministic order.
func (d Dependencies) Successors() map[string][]string {
	out := make(map[string][]string)
	for _, dependent := range d.sortedKeys() {
		for _, prereq := range d[dependent] {
			out[prereq] = append(out[prereq], dependent)
		}
	}
	return out
}

// Restrict keeps only the edges whose both ends satisfy keep.
// Duplicate prerequisites are collapsed.
func (d Dependencies) Restrict(keep func(string) bool) Dependencies {
	out := make(Dependencies, len(d))
	for dependent, prereqs := range d {
		if !keep(dependent) {
			continue
		}
		seen := make(map[string]struct{}, len(prereqs))
		var kept []string
		for _, p := range prereqs {
			if !keep(p) {
				continue
			}
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			kept = append(kept, p)
		}
		if len(kept) > 0 {
			out[dependent] = kept
		}
	}
	return out
}

// Of returns a copy of the prerequisites declared for key.
func (d Dependencies) Of(key string) []string {
	deps := d[key]
	if len(deps) == 0 {
		return []string{}
	}
	out := make([]string, len(deps))
	copy(out, deps)
	return out
}

func (d Dependencies) sortedKeys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
