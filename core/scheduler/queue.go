package scheduler

import (
	"container/heap"

	"github.com/kilianp07/quarterplan/core/model"
)

type readyItem struct {
	key    string
	rank   int
	points float64
}

func newReadyItem(key string, is model.Issue) readyItem {
	return readyItem{key: key, rank: PriorityRank(is.Priority), points: is.Points()}
}

// readyBefore orders ready issues by priority rank, then larger estimates
// first, then key.
func readyBefore(a, b readyItem) bool {
	if a.rank != b.rank {
		return a.rank < b.rank
	}
	if a.points != b.points {
		return a.points > b.points
	}
	return a.key < b.key
}

// readyQueue is a min-heap over readyBefore.
type readyQueue []readyItem

func (q readyQueue) Len() int           { return len(q) }
func (q readyQueue) Less(i, j int) bool { return readyBefore(q[i], q[j]) }
func (q readyQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }

func (q *readyQueue) Push(x any) { *q = append(*q, x.(readyItem)) }

func (q *readyQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}

func (q *readyQueue) push(it readyItem) { heap.Push(q, it) }

func (q *readyQueue) pop() readyItem { return heap.Pop(q).(readyItem) }
