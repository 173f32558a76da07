package complete

import (
	"container/heap"
	"context"

	"github.com/campusplan/scheduler/internal/engine"
	"github.com/campusplan/scheduler/internal/evaluator"
	"github.com/campusplan/scheduler/internal/schedule"
	"github.com/campusplan/scheduler/internal/scorer"
)

func init() {
	engine.Register(astarScheduler{})
}

// astarScheduler is best-first search over the same group-ordered tree
// as DFS/BFS, expanding the partial schedule with the highest f = g + h
// first. g is the preference score of the courses already committed;
// h sums each remaining group's best standalone option estimate, an
// optimistic bound on what those groups could still contribute. The
// bound is an approximation rather than a proven admissible one for
// every preference component (components like prefer_fewer_conflicts
// are schedule-wide, not additive per group), which trades search
// completeness-of-order for a useful, cheap-to-compute priority.
type astarScheduler struct{}

func (astarScheduler) Name() string { return "astar" }

type astarNode struct {
	groupIdx int
	partial  schedule.Schedule
	f        float64
	index    int
}

type astarHeap []*astarNode

func (h astarHeap) Len() int            { return len(h) }
func (h astarHeap) Less(i, j int) bool  { return h[i].f > h[j].f } // max-heap: highest f first
func (h astarHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *astarHeap) Push(x interface{}) {
	n := x.(*astarNode)
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *astarHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func (s astarScheduler) Run(ctx context.Context, in engine.RunInput) ([]schedule.Schedule, error) {
	groups := in.Prepared.Groups

	remainingBound := make([]float64, len(groups)+1)
	for i := len(groups) - 1; i >= 0; i-- {
		remainingBound[i] = remainingBound[i+1] + groups[i].BestEstimate()
	}

	var results []schedule.Schedule
	explored := 0
	bestScore := 0.0

	frontier := &astarHeap{}
	heap.Init(frontier)
	heap.Push(frontier, &astarNode{groupIdx: 0, partial: schedule.New(nil), f: remainingBound[0]})

	for frontier.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return results, nil
		}
		if reachedLimit(results, in.Limits) {
			return results, nil
		}

		node := heap.Pop(frontier).(*astarNode)
		explored++
		emitProgress(in.Progress, "astar", explored, frontier.Len(), bestScore)

		if node.groupIdx == len(groups) {
			if ok, _ := evaluator.IsFeasibleFinal(node.partial, in.Limits, in.MandatoryCodes, in.Completed, in.PrereqsRequired); ok {
				results = append(results, node.partial)
				if g := scorer.Score(node.partial, in.Prefs); g > bestScore {
					bestScore = g
				}
			}
			continue
		}

		for _, opt := range groups[node.groupIdx].Options {
			child := withOption(node.partial, opt)
			if ok, _ := evaluator.IsFeasiblePartial(child, in.Limits, in.Completed, in.PrereqsRequired); !ok {
				continue
			}
			g := scorer.Score(child, in.Prefs)
			f := g + remainingBound[node.groupIdx+1]
			heap.Push(frontier, &astarNode{groupIdx: node.groupIdx + 1, partial: child, f: f})
		}
	}

	return results, nil
}
