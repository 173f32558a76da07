package local_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	_ "github.com/campusplan/scheduler/internal/algorithm/local"
	"github.com/campusplan/scheduler/internal/course"
	"github.com/campusplan/scheduler/internal/engine"
	"github.com/campusplan/scheduler/internal/evaluator"
	"github.com/campusplan/scheduler/internal/scorer"
	"github.com/campusplan/scheduler/internal/timeslot"
)

func mon(period int) timeslot.Slot { return timeslot.Slot{Day: timeslot.Monday, Period: period} }

func TestHillClimbFindsFeasibleSchedule(t *testing.T) {
	catalog := []course.Course{
		{Code: "A.1", Type: course.Lecture, ECTS: 5, Slots: []timeslot.Slot{mon(1)}},
		{Code: "B.1", Type: course.Lecture, ECTS: 5, Slots: []timeslot.Slot{mon(2)}},
	}
	req := engine.Request{
		Catalog:   catalog,
		Selection: map[string]course.SelectionPolicy{"A": course.Mandatory, "B": course.Mandatory},
		Prefs:     scorer.Prefs{Weights: map[scorer.Option]float64{scorer.PreferFewerConflicts: 1}, MaxECTS: 60},
		Limits:    evaluator.Limits{MaxECTS: 60, MaxResults: 5},
		Choice:    engine.AlgorithmChoice{Mode: engine.Named, Name: "hillclimb"},
	}

	result, err := engine.Generate(context.Background(), req)
	require.Nil(t, err)
	require.NotEmpty(t, result.Candidates)
	require.Equal(t, 0, result.Candidates[0].Schedule.ConflictCount())
}

func TestAnnealingFindsFeasibleSchedule(t *testing.T) {
	catalog := []course.Course{
		{Code: "A.1", Type: course.Lecture, ECTS: 5, Slots: []timeslot.Slot{mon(1)}},
		{Code: "B.1", Type: course.Lecture, ECTS: 5, Slots: []timeslot.Slot{mon(2)}},
	}
	req := engine.Request{
		Catalog:   catalog,
		Selection: map[string]course.SelectionPolicy{"A": course.Mandatory, "B": course.Mandatory},
		Prefs:     scorer.Prefs{Weights: map[scorer.Option]float64{scorer.PreferFewerConflicts: 1}, MaxECTS: 60},
		Limits:    evaluator.Limits{MaxECTS: 60, MaxResults: 5},
		Choice:    engine.AlgorithmChoice{Mode: engine.Named, Name: "annealing"},
	}

	result, err := engine.Generate(context.Background(), req)
	require.Nil(t, err)
	require.NotEmpty(t, result.Candidates)
}

func TestTabuFindsFeasibleSchedule(t *testing.T) {
	catalog := []course.Course{
		{Code: "A.1", Type: course.Lecture, ECTS: 5, Slots: []timeslot.Slot{mon(1)}},
		{Code: "B.1", Type: course.Lecture, ECTS: 5, Slots: []timeslot.Slot{mon(2)}},
	}
	req := engine.Request{
		Catalog:   catalog,
		Selection: map[string]course.SelectionPolicy{"A": course.Mandatory, "B": course.Mandatory},
		Prefs:     scorer.Prefs{Weights: map[scorer.Option]float64{scorer.PreferFewerConflicts: 1}, MaxECTS: 60},
		Limits:    evaluator.Limits{MaxECTS: 60, MaxResults: 5},
		Choice:    engine.AlgorithmChoice{Mode: engine.Named, Name: "tabu"},
	}

	result, err := engine.Generate(context.Background(), req)
	require.Nil(t, err)
	require.NotEmpty(t, result.Candidates)
}
