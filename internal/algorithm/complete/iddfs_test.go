package complete_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	_ "github.com/campusplan/scheduler/internal/algorithm/complete"
	"github.com/campusplan/scheduler/internal/course"
	"github.com/campusplan/scheduler/internal/engine"
	"github.com/campusplan/scheduler/internal/evaluator"
	"github.com/campusplan/scheduler/internal/timeslot"
)

func TestIDDFSFindsFeasibleSchedule(t *testing.T) {
	catalog := []course.Course{
		{Code: "A.1", Type: course.Lecture, ECTS: 5, Slots: []timeslot.Slot{mon(1)}},
		{Code: "B.1", Type: course.Lecture, ECTS: 5, Slots: []timeslot.Slot{mon(2)}},
	}
	req := engine.Request{
		Catalog:   catalog,
		Selection: map[string]course.SelectionPolicy{"A": course.Mandatory, "B": course.Mandatory},
		Limits:    evaluator.Limits{MaxECTS: 60, MaxResults: 10},
		Choice:    engine.AlgorithmChoice{Mode: engine.Named, Name: "iddfs"},
	}

	result, err := engine.Generate(context.Background(), req)
	require.Nil(t, err)
	require.NotEmpty(t, result.Candidates)
	require.Equal(t, 0, result.Candidates[0].Schedule.ConflictCount())
}

func TestIDDFSInfeasibleWhenNoCombinationAvoidsConflict(t *testing.T) {
	catalog := []course.Course{
		{Code: "A.1", Type: course.Lecture, Slots: []timeslot.Slot{mon(1)}},
		{Code: "B.1", Type: course.Lecture, Slots: []timeslot.Slot{mon(1)}},
	}
	req := engine.Request{
		Catalog:   catalog,
		Selection: map[string]course.SelectionPolicy{"A": course.Mandatory, "B": course.Mandatory},
		Limits:    evaluator.Limits{MaxECTS: 60, MaxResults: 10, AllowConflicts: false},
		Choice:    engine.AlgorithmChoice{Mode: engine.Named, Name: "iddfs"},
	}

	result, err := engine.Generate(context.Background(), req)
	require.NotNil(t, err)
	require.Equal(t, engine.NoFeasibleSchedule, err.Kind)
	require.Nil(t, result)
}
