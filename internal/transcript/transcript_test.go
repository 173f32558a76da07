package transcript_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campusplan/scheduler/internal/course"
	"github.com/campusplan/scheduler/internal/transcript"
)

func TestEffectiveMaxECTSAppliesGPARule(t *testing.T) {
	high := transcript.NewView(nil, 3.8)
	mid := transcript.NewView(nil, 3.0)
	low := transcript.NewView(nil, 1.5)

	require.Equal(t, 42, transcript.EffectiveMaxECTS(&high, nil))
	require.Equal(t, 37, transcript.EffectiveMaxECTS(&mid, nil))
	require.Equal(t, 31, transcript.EffectiveMaxECTS(&low, nil))
}

func TestEffectiveMaxECTSExplicitOverrideWins(t *testing.T) {
	high := transcript.NewView(nil, 3.8)
	override := 20
	require.Equal(t, 20, transcript.EffectiveMaxECTS(&high, &override))
}

func TestFilterDropsUnmetPrerequisites(t *testing.T) {
	catalog := []course.Course{
		{Code: "A.1", Prerequisites: nil},
		{Code: "B.1", Prerequisites: []string{"A"}},
	}
	view := transcript.NewView(nil, 0)

	filtered, removed := transcript.Filter(catalog, &view, true)
	require.Len(t, filtered, 1)
	require.Equal(t, "A.1", filtered[0].Code)
	require.Equal(t, "A", removed["B"])
}

func TestFilterDisabledPassesCatalogThrough(t *testing.T) {
	catalog := []course.Course{{Code: "B.1", Prerequisites: []string{"A"}}}
	view := transcript.NewView(nil, 0)

	filtered, removed := transcript.Filter(catalog, &view, false)
	require.Len(t, filtered, 1)
	require.Nil(t, removed)
}

func TestFilterAllowsSatisfiedPrerequisite(t *testing.T) {
	catalog := []course.Course{{Code: "B.1", Prerequisites: []string{"A"}}}
	view := transcript.NewView([]string{"A"}, 0)

	filtered, removed := transcript.Filter(catalog, &view, true)
	require.Len(t, filtered, 1)
	require.Empty(t, removed)
}

func TestFilterReportsUnmetPrereqForFullyRemovedGroup(t *testing.T) {
	catalog := []course.Course{{Code: "Y.1", Prerequisites: []string{"X"}}}
	view := transcript.NewView(nil, 0)

	filtered, removed := transcript.Filter(catalog, &view, true)
	require.Empty(t, filtered)
	require.Equal(t, "X", removed["Y"])
}
