package complete

import (
	"context"

	"github.com/campusplan/scheduler/internal/engine"
	"github.com/campusplan/scheduler/internal/evaluator"
	"github.com/campusplan/scheduler/internal/schedule"
)

func init() {
	engine.Register(dfsScheduler{})
}

// dfsScheduler is plain recursive backtracking: groups are visited in
// the PreparedSearch's most-constrained-first order, options within a
// group in section-code order, pruning the instant a partial schedule
// fails evaluator.IsFeasiblePartial.
type dfsScheduler struct{}

func (dfsScheduler) Name() string { return "dfs" }

func (s dfsScheduler) Run(ctx context.Context, in engine.RunInput) ([]schedule.Schedule, error) {
	var results []schedule.Schedule
	explored := 0
	best := 0.0

	var visit func(groupIdx int, partial schedule.Schedule) error
	visit = func(groupIdx int, partial schedule.Schedule) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if reachedLimit(results, in.Limits) {
			return nil
		}
		explored++
		emitProgress(in.Progress, "dfs", explored, 0, best)

		if groupIdx == len(in.Prepared.Groups) {
			if ok, _ := evaluator.IsFeasibleFinal(partial, in.Limits, in.MandatoryCodes, in.Completed, in.PrereqsRequired); ok {
				results = append(results, partial)
			}
			return nil
		}

		g := in.Prepared.Groups[groupIdx]
		for _, opt := range g.OptionsBySectionCode() {
			child := withOption(partial, opt)
			if ok, _ := evaluator.IsFeasiblePartial(child, in.Limits, in.Completed, in.PrereqsRequired); !ok {
				continue
			}
			if err := visit(groupIdx+1, child); err != nil {
				return err
			}
			if reachedLimit(results, in.Limits) {
				return nil
			}
		}
		return nil
	}

	if err := visit(0, schedule.New(nil)); err != nil && err != context.Canceled && err != context.DeadlineExceeded {
		return results, err
	}
	return results, nil
}
