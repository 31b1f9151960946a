package scheduler

import "strings"

// UnknownPriorityRank is assigned to empty or unrecognised priority labels.
const UnknownPriorityRank = 999

var priorityRanks = map[string]int{
	"blocker":  0,
	"highest":  0,
	"critical": 1,
	"high":     2,
	"major":    3,
	"medium":   3,
	"minor":    4,
	"low":      5,
	"trivial":  6,
	"lowest":   6,
}

// PriorityRank maps a priority label to its rank. Lower ranks are planned
// first. Labels are matched case-insensitively.
func PriorityRank(label string) int {
	if r, ok := priorityRanks[strings.ToLower(strings.TrimSpace(label))]; ok {
		return r
	}
	return UnknownPriorityRank
}
