package scheduler

import (
	"slices"

	"github.com/kilianp07/quarterplan/core/model"
)

// TopoOrder returns the visitation order of issues: an issue becomes ready
// once all of its prerequisites have been visited, and among ready issues
// the highest priority, largest estimate and smallest key goes first.
//
// deps must only reference keys present in issues. Issues on or behind a
// dependency cycle never become ready and are absent from the result.
func TopoOrder(issues map[string]model.Issue, deps model.Dependencies) []string {
	indegree := make(map[string]int, len(issues))
	for key := range issues {
		indegree[key] = 0
	}
	for dependent, prereqs := range deps {
		if _, ok := indegree[dependent]; ok {
			indegree[dependent] += len(prereqs)
		}
	}
	successors := deps.Successors()

	keys := make([]string, 0, len(issues))
	for key := range issues {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	q := &readyQueue{}
	for _, key := range keys {
		if indegree[key] == 0 {
			q.push(newReadyItem(key, issues[key]))
		}
	}
	order := make([]string, 0, len(issues))
	for q.Len() > 0 {
		cur := q.pop()
		order = append(order, cur.key)
		for _, next := range successors[cur.key] {
			if _, ok := indegree[next]; !ok {
				continue
			}
			indegree[next]--
			if indegree[next] == 0 {
				q.push(newReadyItem(next, issues[next]))
			}
		}
	}
	return order
}
