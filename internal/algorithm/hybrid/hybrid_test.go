package hybrid_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	_ "github.com/campusplan/scheduler/internal/algorithm/hybrid"
	"github.com/campusplan/scheduler/internal/course"
	"github.com/campusplan/scheduler/internal/engine"
	"github.com/campusplan/scheduler/internal/evaluator"
	"github.com/campusplan/scheduler/internal/scorer"
	"github.com/campusplan/scheduler/internal/timeslot"
)

func mon(period int) timeslot.Slot { return timeslot.Slot{Day: timeslot.Monday, Period: period} }

func TestHybridFindsFeasibleSchedule(t *testing.T) {
	catalog := []course.Course{
		{Code: "A.1", Type: course.Lecture, ECTS: 5, Slots: []timeslot.Slot{mon(1)}},
		{Code: "A.2", Type: course.Lecture, ECTS: 5, Slots: []timeslot.Slot{mon(2)}},
		{Code: "B.1", Type: course.Lecture, ECTS: 5, Slots: []timeslot.Slot{mon(3)}},
	}
	req := engine.Request{
		Catalog:   catalog,
		Selection: map[string]course.SelectionPolicy{"A": course.Mandatory, "B": course.Mandatory},
		Prefs:     scorer.Prefs{Weights: map[scorer.Option]float64{scorer.PreferFewerConflicts: 1}, MaxECTS: 60},
		Limits:    evaluator.Limits{MaxECTS: 60, MaxResults: 5},
		Choice:    engine.AlgorithmChoice{Mode: engine.Named, Name: "hybrid"},
	}

	result, err := engine.Generate(context.Background(), req)
	require.Nil(t, err)
	require.NotEmpty(t, result.Candidates)
	require.Equal(t, 0, result.Candidates[0].Schedule.ConflictCount())
}

func TestHybridDeterministicGivenSameSeed(t *testing.T) {
	catalog := []course.Course{
		{Code: "A.1", Type: course.Lecture, ECTS: 5, Slots: []timeslot.Slot{mon(1)}},
		{Code: "A.2", Type: course.Lecture, ECTS: 5, Slots: []timeslot.Slot{mon(2)}},
		{Code: "B.1", Type: course.Lecture, ECTS: 5, Slots: []timeslot.Slot{mon(3)}},
	}
	req := engine.Request{
		Catalog:   catalog,
		Selection: map[string]course.SelectionPolicy{"A": course.Mandatory, "B": course.Mandatory},
		Prefs:     scorer.Prefs{Weights: map[scorer.Option]float64{scorer.PreferFewerConflicts: 1}, MaxECTS: 60},
		Limits:    evaluator.Limits{MaxECTS: 60, MaxResults: 5},
		Choice:    engine.AlgorithmChoice{Mode: engine.Named, Name: "hybrid"},
		Seed:      5,
	}

	first, err1 := engine.Generate(context.Background(), req)
	second, err2 := engine.Generate(context.Background(), req)
	require.Nil(t, err1)
	require.Nil(t, err2)
	require.Equal(t, len(first.Candidates), len(second.Candidates))
	for i := range first.Candidates {
		require.Equal(t, first.Candidates[i].Schedule.CodeTuple(), second.Candidates[i].Schedule.CodeTuple())
	}
}
