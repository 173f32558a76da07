package complete

import (
	"context"

	"github.com/campusplan/scheduler/internal/engine"
	"github.com/campusplan/scheduler/internal/evaluator"
	"github.com/campusplan/scheduler/internal/schedule"
)

func init() {
	engine.Register(bfsScheduler{})
}

type bfsNode struct {
	groupIdx int
	partial  schedule.Schedule
}

// bfsScheduler expands the same group-ordered option tree as DFS, but
// level by level: every partial schedule assigned through group k is
// produced before any through group k+1. Memory scales with frontier
// width rather than depth, the opposite tradeoff from DFS.
type bfsScheduler struct{}

func (bfsScheduler) Name() string { return "bfs" }

func (bfsScheduler) Run(ctx context.Context, in engine.RunInput) ([]schedule.Schedule, error) {
	var results []schedule.Schedule
	explored := 0

	frontier := []bfsNode{{groupIdx: 0, partial: schedule.New(nil)}}
	groups := in.Prepared.Groups

	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			return results, nil
		}
		if reachedLimit(results, in.Limits) {
			return results, nil
		}

		var next []bfsNode
		for _, node := range frontier {
			if err := ctx.Err(); err != nil {
				return results, nil
			}
			explored++
			emitProgress(in.Progress, "bfs", explored, len(frontier), 0)

			if node.groupIdx == len(groups) {
				if ok, _ := evaluator.IsFeasibleFinal(node.partial, in.Limits, in.MandatoryCodes, in.Completed, in.PrereqsRequired); ok {
					results = append(results, node.partial)
				}
				continue
			}

			for _, opt := range groups[node.groupIdx].OptionsBySectionCode() {
				child := withOption(node.partial, opt)
				if ok, _ := evaluator.IsFeasiblePartial(child, in.Limits, in.Completed, in.PrereqsRequired); !ok {
					continue
				}
				next = append(next, bfsNode{groupIdx: node.groupIdx + 1, partial: child})
			}

			if reachedLimit(results, in.Limits) {
				break
			}
		}
		frontier = next
	}

	return results, nil
}
