package complete

import (
	"context"
	"strconv"

	"github.com/campusplan/scheduler/internal/engine"
	"github.com/campusplan/scheduler/internal/evaluator"
	"github.com/campusplan/scheduler/internal/schedule"
)

func init() {
	engine.Register(iddfsScheduler{})
}

// iddfsScheduler runs repeated depth-first passes under a growing
// node-expansion budget, doubling the budget each pass. Because every
// complete search here has the same fixed depth (one decision per
// group), the budget — not the tree depth — is what iterative
// deepening bounds: an early pass with a small budget finds whatever
// feasible schedules sit along the first-explored branches cheaply,
// and later passes pay for the rest only if the caller still wants
// more results. A pass that explores fewer nodes than its budget
// allowed has exhausted the tree, so iddfsScheduler stops there.
type iddfsScheduler struct{}

func (iddfsScheduler) Name() string { return "iddfs" }

func (s iddfsScheduler) Run(ctx context.Context, in engine.RunInput) ([]schedule.Schedule, error) {
	var results []schedule.Schedule
	seen := map[string]struct{}{}

	const initialBudget = 64
	budget := initialBudget

	for {
		if err := ctx.Err(); err != nil {
			return results, nil
		}

		explored, exhausted := runBounded(ctx, in, budget, &results, seen)
		if ctx.Err() != nil || reachedLimit(results, in.Limits) || exhausted {
			return results, nil
		}
		_ = explored
		budget *= 2
	}
}

// runBounded performs one depth-first pass, stopping early once it has
// expanded budget nodes. It reports how many nodes it actually
// expanded and whether the pass finished the whole tree before hitting
// that budget.
func runBounded(ctx context.Context, in engine.RunInput, budget int, results *[]schedule.Schedule, seen map[string]struct{}) (explored int, exhausted bool) {
	exhausted = true

	var visit func(groupIdx int, partial schedule.Schedule) bool
	visit = func(groupIdx int, partial schedule.Schedule) bool {
		if ctx.Err() != nil {
			return false
		}
		if explored >= budget {
			exhausted = false
			return false
		}
		if reachedLimit(*results, in.Limits) {
			return false
		}
		explored++
		emitProgress(in.Progress, "iddfs", explored, 0, 0)

		if groupIdx == len(in.Prepared.Groups) {
			if ok, _ := evaluator.IsFeasibleFinal(partial, in.Limits, in.MandatoryCodes, in.Completed, in.PrereqsRequired); ok {
				if fp, err := partial.Fingerprint(); err == nil {
					key := strconv.FormatUint(fp, 16)
					if _, dup := seen[key]; !dup {
						seen[key] = struct{}{}
						*results = append(*results, partial)
					}
				}
			}
			return true
		}

		g := in.Prepared.Groups[groupIdx]
		for _, opt := range g.OptionsBySectionCode() {
			child := withOption(partial, opt)
			if ok, _ := evaluator.IsFeasiblePartial(child, in.Limits, in.Completed, in.PrereqsRequired); !ok {
				continue
			}
			if !visit(groupIdx+1, child) {
				if ctx.Err() != nil || explored >= budget || reachedLimit(*results, in.Limits) {
					return false
				}
			}
		}
		return true
	}

	visit(0, schedule.New(nil))
	return explored, exhausted
}
