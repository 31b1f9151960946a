package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/quarterplan/core/model"
)

func TestPriorityRank(t *testing.T) {
	cases := map[string]int{
		"Blocker":  0,
		"HIGHEST":  0,
		"critical": 1,
		"High":     2,
		"Major":    3,
		"medium":   3,
		"Minor":    4,
		"Low":      5,
		"Trivial":  6,
		"lowest":   6,
		"":         UnknownPriorityRank,
		"Urgent":   UnknownPriorityRank,
	}
	for label, want := range cases {
		assert.Equal(t, want, PriorityRank(label), label)
	}
}

func TestReadyBefore(t *testing.T) {
	cases := []struct {
		name string
		a, b readyItem
	}{
		{"rank wins", readyItem{key: "Z", rank: 1, points: 1}, readyItem{key: "A", rank: 2, points: 8}},
		{"larger estimate wins", readyItem{key: "Z", rank: 3, points: 5}, readyItem{key: "A", rank: 3, points: 2}},
		{"key breaks ties", readyItem{key: "A", rank: 3, points: 2}, readyItem{key: "B", rank: 3, points: 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, readyBefore(tc.a, tc.b))
			assert.False(t, readyBefore(tc.b, tc.a))
		})
	}
	it := readyItem{key: "A", rank: 1, points: 1}
	assert.False(t, readyBefore(it, it))
}

func TestReadyQueuePopsInOrder(t *testing.T) {
	q := &readyQueue{}
	for _, it := range []readyItem{
		{key: "C", rank: UnknownPriorityRank},
		{key: "B", rank: 2, points: 1},
		{key: "A", rank: 2, points: 1},
		{key: "D", rank: 2, points: 3},
		{key: "E", rank: 0},
	} {
		q.push(it)
	}
	var got []string
	for q.Len() > 0 {
		got = append(got, q.pop().key)
	}
	assert.Equal(t, []string{"E", "D", "A", "B", "C"}, got)
}

func TestTopoOrder(t *testing.T) {
	issues := map[string]model.Issue{
		"A": {Key: "A", Priority: "Low", StoryPoints: model.Estimate(1)},
		"B": {Key: "B", Priority: "Blocker", StoryPoints: model.Estimate(1)},
		"C": {Key: "C", Priority: "Blocker", StoryPoints: model.Estimate(1)},
		"D": {Key: "D", Priority: "Critical"},
	}
	// C waits for A even though it outranks everything.
	order := TopoOrder(issues, model.Dependencies{"C": {"A"}})
	assert.Equal(t, []string{"B", "D", "A", "C"}, order)
}

func TestTopoOrderSkipsCycles(t *testing.T) {
	issues := map[string]model.Issue{"A": {Key: "A"}, "B": {Key: "B"}, "C": {Key: "C"}, "D": {Key: "D"}}
	order := TopoOrder(issues, model.Dependencies{"A": {"B"}, "B": {"A"}, "C": {"A"}})
	assert.Equal(t, []string{"D"}, order)
}

func TestCycles(t *testing.T) {
	deps := model.Dependencies{
		"A": {"C"},
		"B": {"A"},
		"C": {"B"},
		"D": {"A"},
		"E": {"E"},
		"F": {"X"},
	}
	got := Cycles([]string{"F", "E", "D", "C", "B", "A"}, deps)
	assert.Equal(t, [][]string{{"A", "B", "C"}, {"E"}}, got)
	assert.Empty(t, Cycles([]string{"D", "F"}, deps))
}
