package search_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campusplan/scheduler/internal/course"
	"github.com/campusplan/scheduler/internal/evaluator"
	"github.com/campusplan/scheduler/internal/scorer"
	"github.com/campusplan/scheduler/internal/search"
	"github.com/campusplan/scheduler/internal/timeslot"
)

func mon(period int) timeslot.Slot { return timeslot.Slot{Day: timeslot.Monday, Period: period} }

func TestBuildMandatoryMissingRaisesImmediately(t *testing.T) {
	catalog := []course.Course{{Code: "B.1", Type: course.Lecture}}
	selection := map[string]course.SelectionPolicy{"A": course.Mandatory}

	prepared, reason := search.Build(catalog, selection, scorer.Prefs{}, evaluator.Limits{MaxECTS: 1000}, nil)
	require.Nil(t, prepared)
	require.NotNil(t, reason)
	require.Equal(t, evaluator.MandatoryMissing, reason.Kind)
}

func TestBuildOptionalGroupGetsSkipOption(t *testing.T) {
	catalog := []course.Course{{Code: "A.1", Type: course.Lecture}}
	selection := map[string]course.SelectionPolicy{"A": course.Optional}

	prepared, reason := search.Build(catalog, selection, scorer.Prefs{}, evaluator.Limits{MaxECTS: 1000}, nil)
	require.Nil(t, reason)
	require.Len(t, prepared.Groups, 1)

	hasSkip := false
	for _, opt := range prepared.Groups[0].Options {
		if opt.IsSkip {
			hasSkip = true
		}
	}
	require.True(t, hasSkip)
}

func TestBuildEnumeratesLectureLabCombosAndDropsConflicts(t *testing.T) {
	catalog := []course.Course{
		{Code: "A.1", Type: course.Lecture, Slots: []timeslot.Slot{mon(1)}},
		{Code: "A.L1", Type: course.Lab, Slots: []timeslot.Slot{mon(2)}},
		{Code: "A.L2", Type: course.Lab, Slots: []timeslot.Slot{mon(1)}}, // conflicts with lecture
	}
	selection := map[string]course.SelectionPolicy{"A": course.Mandatory}

	prepared, reason := search.Build(catalog, selection, scorer.Prefs{}, evaluator.Limits{MaxECTS: 1000}, nil)
	require.Nil(t, reason)
	require.Len(t, prepared.Groups, 1)
	require.Len(t, prepared.Groups[0].Options, 1) // only the non-conflicting lab combo survives
}

func TestBuildOrdersGroupsMostConstrainedFirst(t *testing.T) {
	catalog := []course.Course{
		{Code: "A.1", Type: course.Lecture},
		{Code: "B.1", Type: course.Lecture},
		{Code: "B.2", Type: course.Lecture},
	}
	selection := map[string]course.SelectionPolicy{"A": course.Mandatory, "B": course.Mandatory}

	prepared, reason := search.Build(catalog, selection, scorer.Prefs{}, evaluator.Limits{MaxECTS: 1000}, nil)
	require.Nil(t, reason)
	require.Len(t, prepared.Groups, 2)
	require.LessOrEqual(t, len(prepared.Groups[0].Options), len(prepared.Groups[1].Options))
}

func TestBuildAllExcludedYieldsOptionProductEmpty(t *testing.T) {
	catalog := []course.Course{{Code: "A.1", Type: course.Lecture}}
	selection := map[string]course.SelectionPolicy{"A": course.Excluded}

	prepared, reason := search.Build(catalog, selection, scorer.Prefs{}, evaluator.Limits{MaxECTS: 1000}, nil)
	require.Nil(t, prepared)
	require.Equal(t, evaluator.OptionProductEmpty, reason.Kind)
}

func TestBuildEctsCapUnreachableWhenMandatoryFloorExceedsCap(t *testing.T) {
	catalog := []course.Course{
		{Code: "A.1", Type: course.Lecture, ECTS: 5},
		{Code: "B.1", Type: course.Lecture, ECTS: 5},
	}
	selection := map[string]course.SelectionPolicy{"A": course.Mandatory, "B": course.Mandatory}

	prepared, reason := search.Build(catalog, selection, scorer.Prefs{}, evaluator.Limits{MaxECTS: 0}, nil)
	require.Nil(t, prepared)
	require.NotNil(t, reason)
	require.Equal(t, evaluator.EctsCapUnreachable, reason.Kind)
}

func TestBuildMandatoryGroupFilteredByPrereqsReportsPrerequisiteUnmet(t *testing.T) {
	// Y.1 required prerequisite X, but the catalog handed to Build has
	// already had every Y section removed by transcript.Filter; only the
	// bookkeeping map tells Build why the group is missing (§4.2 Scenario D).
	catalog := []course.Course{{Code: "Z.1", Type: course.Lecture}}
	selection := map[string]course.SelectionPolicy{"Y": course.Mandatory}
	removedByPrereq := map[string]string{"Y": "X"}

	prepared, reason := search.Build(catalog, selection, scorer.Prefs{}, evaluator.Limits{MaxECTS: 1000}, removedByPrereq)
	require.Nil(t, prepared)
	require.NotNil(t, reason)
	require.Equal(t, evaluator.PrerequisiteUnmet, reason.Kind)
	require.Equal(t, "X", reason.Code)
}
