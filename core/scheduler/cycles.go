package scheduler

import (
	"slices"
	"strings"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/kilianp07/quarterplan/core/model"
)

// Cycles returns the dependency cycles among keys. Each cycle is sorted and
// the cycles are ordered by their first key. Self-dependencies count as a
// cycle of one. Edges to keys outside the set are ignored.
func Cycles(keys []string, deps model.Dependencies) [][]string {
	sorted := slices.Clone(keys)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	ids := make(map[string]int64, len(sorted))
	g := simple.NewDirectedGraph()
	for i, k := range sorted {
		ids[k] = int64(i)
		g.AddNode(simple.Node(i))
	}

	selfLoops := make(map[string]bool)
	for dependent, prereqs := range deps {
		to, ok := ids[dependent]
		if !ok {
			continue
		}
		for _, p := range prereqs {
			from, ok := ids[p]
			if !ok {
				continue
			}
			if from == to {
				selfLoops[dependent] = true
				continue
			}
			g.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
		}
	}

	var cycles [][]string
	for _, scc := range topo.TarjanSCC(g) {
		if len(scc) == 1 && !selfLoops[sorted[scc[0].ID()]] {
			continue
		}
		members := make([]string, len(scc))
		for i, n := range scc {
			members[i] = sorted[n.ID()]
		}
		slices.Sort(members)
		cycles = append(cycles, members)
	}
	slices.SortFunc(cycles, func(a, b []string) int {
		return strings.Compare(a[0], b[0])
	})
	return cycles
}
