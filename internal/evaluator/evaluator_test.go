package evaluator_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campusplan/scheduler/internal/course"
	"github.com/campusplan/scheduler/internal/evaluator"
	"github.com/campusplan/scheduler/internal/schedule"
	"github.com/campusplan/scheduler/internal/timeslot"
)

func mon(period int) timeslot.Slot { return timeslot.Slot{Day: timeslot.Monday, Period: period} }

func TestNormalizeEnforcesZeroConflictBudget(t *testing.T) {
	limits := evaluator.Limits{AllowConflicts: false, MaxConflicts: 5}
	require.Equal(t, 0, limits.Normalize().MaxConflicts)

	limits = evaluator.Limits{AllowConflicts: true, MaxConflicts: 5}
	require.Equal(t, 5, limits.Normalize().MaxConflicts)
}

func TestIsFeasiblePartialRejectsEctsCapExceeded(t *testing.T) {
	partial := schedule.New([]course.Course{{Code: "A.1", ECTS: 10}})
	limits := evaluator.Limits{MaxECTS: 5}

	ok, reason := evaluator.IsFeasiblePartial(partial, limits, nil, false)
	require.False(t, ok)
	require.Equal(t, evaluator.EctsCapExceeded, reason.Kind)
}

func TestIsFeasiblePartialRejectsConflictBudgetExceeded(t *testing.T) {
	a := course.Course{Code: "A.1", ECTS: 1, Slots: []timeslot.Slot{mon(1)}}
	b := course.Course{Code: "B.1", ECTS: 1, Slots: []timeslot.Slot{mon(1)}}
	partial := schedule.New([]course.Course{a, b})
	limits := evaluator.Limits{MaxECTS: 100, AllowConflicts: false}

	ok, reason := evaluator.IsFeasiblePartial(partial, limits, nil, false)
	require.False(t, ok)
	require.Equal(t, evaluator.ConflictBudgetExceeded, reason.Kind)
}

func TestIsFeasiblePartialRejectsDuplicateGroup(t *testing.T) {
	partial := schedule.New([]course.Course{{Code: "A.1", ECTS: 1}, {Code: "A.2", ECTS: 1}})
	limits := evaluator.Limits{MaxECTS: 100}

	ok, reason := evaluator.IsFeasiblePartial(partial, limits, nil, false)
	require.False(t, ok)
	require.Equal(t, evaluator.DuplicateGroup, reason.Kind)
}

func TestIsFeasiblePartialRejectsUnmetPrerequisite(t *testing.T) {
	partial := schedule.New([]course.Course{{Code: "A.1", ECTS: 1, Prerequisites: []string{"B"}}})
	limits := evaluator.Limits{MaxECTS: 100}

	ok, reason := evaluator.IsFeasiblePartial(partial, limits, map[string]struct{}{}, true)
	require.False(t, ok)
	require.Equal(t, evaluator.PrerequisiteUnmet, reason.Kind)
}

func TestIsFeasibleFinalRequiresMandatoryGroups(t *testing.T) {
	s := schedule.New([]course.Course{{Code: "A.1", ECTS: 1}})
	limits := evaluator.Limits{MaxECTS: 100}

	ok, reason := evaluator.IsFeasibleFinal(s, limits, []string{"A", "B"}, nil, false)
	require.False(t, ok)
	require.Equal(t, evaluator.MandatoryMissing, reason.Kind)
	require.Equal(t, "B", reason.Code)
}

func TestIsFeasibleFinalAcceptsCompleteSchedule(t *testing.T) {
	s := schedule.New([]course.Course{{Code: "A.1", ECTS: 1}})
	limits := evaluator.Limits{MaxECTS: 100}

	ok, reason := evaluator.IsFeasibleFinal(s, limits, []string{"A"}, nil, false)
	require.True(t, ok)
	require.Nil(t, reason)
}
