// Package capacity turns lane staffing into the concurrency model used by
// the scheduler. Every call allocates fresh state so that independent
// scenarios can be planned in parallel.
package capacity

import (
	"math"

	"github.com/kilianp07/quarterplan/core/model"
)

// MinCapacityFactor is the floor applied to every lane's capacity factor.
const MinCapacityFactor = 0.1

// Input carries the staffing configuration for a run.
type Input struct {
	TeamSizes       map[string]float64
	VacationWeeks   map[string]float64
	SickleaveBuffer float64
	WIPLimit        int
	LaneMode        model.LaneMode
	HorizonWeeks    float64
}

// FromScenario extracts the capacity input from a scenario.
func FromScenario(cfg model.ScenarioConfig) Input {
	return Input{
		TeamSizes:       cfg.TeamSizes,
		VacationWeeks:   cfg.VacationWeeks,
		SickleaveBuffer: cfg.SickleaveBuffer,
		WIPLimit:        cfg.WIPLimit,
		LaneMode:        cfg.LaneMode,
		HorizonWeeks:    cfg.HorizonWeeks(),
	}
}

// Build returns one LaneCapacity per lane with every slot free at week 0.
func Build(lanes []string, in Input) map[string]*model.LaneCapacity {
	out := make(map[string]*model.LaneCapacity, len(lanes))
	for _, lane := range lanes {
		out[lane] = buildLane(lane, in)
	}
	return out
}

func buildLane(lane string, in Input) *model.LaneCapacity {
	head := Headcount(lane, in)
	slots := Slots(head, in.WIPLimit)
	return &model.LaneCapacity{
		CapacityFactor: Factor(lane, head, slots, in),
		AvailableAt:    make([]float64, slots),
	}
}

// Headcount returns the staffing of a lane. Assignee lanes are one person;
// team lanes use the configured size, defaulting to one.
func Headcount(lane string, in Input) float64 {
	if in.LaneMode == model.LaneModeAssignee {
		return 1
	}
	if n, ok := in.TeamSizes[lane]; ok && n > 0 {
		return n
	}
	return 1
}

// Slots returns the number of concurrency slots. A positive WIP limit wins;
// otherwise every person works one item at a time.
func Slots(headcount float64, wipLimit int) int {
	n := wipLimit
	if n <= 0 {
		n = int(math.Ceil(headcount))
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Factor computes the per-slot throughput of a lane after vacation and
// sick leave. The result is never below MinCapacityFactor.
func Factor(lane string, headcount float64, slots int, in Input) float64 {
	horizon := math.Max(1, in.HorizonWeeks)
	availability := clamp01(1 - in.VacationWeeks[lane]/horizon)
	effective := headcount * availability * (1 - clamp01(in.SickleaveBuffer))
	return math.Max(MinCapacityFactor, effective/float64(slots))
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
