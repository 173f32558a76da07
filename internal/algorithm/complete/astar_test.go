package complete_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	_ "github.com/campusplan/scheduler/internal/algorithm/complete"
	"github.com/campusplan/scheduler/internal/course"
	"github.com/campusplan/scheduler/internal/engine"
	"github.com/campusplan/scheduler/internal/evaluator"
	"github.com/campusplan/scheduler/internal/scorer"
	"github.com/campusplan/scheduler/internal/timeslot"
)

func TestAStarPrefersHigherScoringFeasibleSchedule(t *testing.T) {
	catalog := []course.Course{
		{Code: "A.1", Type: course.Lecture, ECTS: 3, Slots: []timeslot.Slot{mon(1)}},
		{Code: "A.2", Type: course.Lecture, ECTS: 8, Slots: []timeslot.Slot{mon(2)}},
		{Code: "B.1", Type: course.Lecture, ECTS: 5, Slots: []timeslot.Slot{mon(3)}},
	}
	req := engine.Request{
		Catalog:   catalog,
		Selection: map[string]course.SelectionPolicy{"A": course.Mandatory, "B": course.Mandatory},
		Prefs:     scorer.Prefs{Weights: map[scorer.Option]float64{scorer.PreferMoreECTS: 1}, MaxECTS: 60},
		Limits:    evaluator.Limits{MaxECTS: 60, MaxResults: 10},
		Choice:    engine.AlgorithmChoice{Mode: engine.Named, Name: "astar"},
	}

	result, err := engine.Generate(context.Background(), req)
	require.Nil(t, err)
	require.NotEmpty(t, result.Candidates)

	top := result.Candidates[0].Schedule
	codes := map[string]bool{}
	for _, c := range top.Sorted() {
		codes[c.Code] = true
	}
	require.True(t, codes["A.2"], "A* should favor the higher-ECTS option under prefer_more_ects")
}
