package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// LaneMode selects how an issue's lane is derived.
type LaneMode string

const (
	// LaneModeTeam plans every issue on its team lane.
	LaneModeTeam LaneMode = "team"
	// LaneModeAssignee plans issues on their assignee, falling back to the team.
	LaneModeAssignee LaneMode = "assignee"
)

// ErrUnknownLaneMode is returned by ParseLaneMode for unsupported labels.
var ErrUnknownLaneMode = errors.New("unknown lane mode")

// ParseLaneMode converts a case-insensitive label to a LaneMode. An empty
// label selects LaneModeTeam.
func ParseLaneMode(s string) (LaneMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(LaneModeTeam):
		return LaneModeTeam, nil
	case string(LaneModeAssignee):
		return LaneModeAssignee, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownLaneMode, s)
	}
}

// ScenarioConfig holds the planning parameters of one what-if scenario.
// StartDate <= QuarterEndDate is a precondition the caller guarantees.
type ScenarioConfig struct {
	StartDate      time.Time
	QuarterEndDate time.Time
	// AnchorDate, when set, is the "today" marker: unfinished work may not
	// start before it.
	AnchorDate *time.Time
	// SPToWeeks converts one story point to weeks of work.
	SPToWeeks float64
	// TeamSizes maps a lane to its headcount.
	TeamSizes map[string]float64
	// VacationWeeks maps a lane to the weeks it is unavailable within the horizon.
	VacationWeeks map[string]float64
	// SickleaveBuffer is the fraction of capacity reserved for absences.
	SickleaveBuffer float64
	// WIPLimit caps the number of issues a lane works on concurrently.
	WIPLimit int
	LaneMode LaneMode
}

// HorizonWeeks is the length of the planning window, never below one week.
func (c ScenarioConfig) HorizonWeeks() float64 {
	return math.Max(1, WeeksBetween(c.StartDate, c.QuarterEndDate))
}

// AnchorWeeks returns the anchor offset from StartDate in weeks, or 0 when
// no anchor is set or the anchor precedes the start.
func (c ScenarioConfig) AnchorWeeks() float64 {
	if c.AnchorDate == nil {
		return 0
	}
	return math.Max(0, WeeksBetween(c.StartDate, *c.AnchorDate))
}

// LaneCapacity is the per-run concurrency model of one lane. AvailableAt
// holds, for every concurrency slot, the week offset at which the slot is
// free again.
type LaneCapacity struct {
	CapacityFactor float64
	AvailableAt    []float64
}

// NextSlot returns the index of the slot that frees up first. Ties go to
// the lowest index.
func (l *LaneCapacity) NextSlot() int {
	best := 0
	for i := 1; i < len(l.AvailableAt); i++ {
		if l.AvailableAt[i] < l.AvailableAt[best] {
			best = i
		}
	}
	return best
}

const day = 24 * time.Hour

// WeeksBetween returns the number of calendar weeks from a to b.
func WeeksBetween(a, b time.Time) float64 {
	return float64(calendarDays(a, b)) / 7
}

// AddWeeks adds a fractional number of weeks to t, truncated to whole days.
// Truncation is monotonic, so ordering between offsets is preserved.
func AddWeeks(t time.Time, weeks float64) time.Time {
	days := math.Floor(weeks*7 + 1e-9)
	return t.AddDate(0, 0, int(days))
}

func calendarDays(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(math.Round(float64(ub.Sub(ua)) / float64(day)))
}
