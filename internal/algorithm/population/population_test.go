package population

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campusplan/scheduler/internal/algorithm/common"
	"github.com/campusplan/scheduler/internal/course"
	"github.com/campusplan/scheduler/internal/engine"
	"github.com/campusplan/scheduler/internal/search"
)

func onePrepared() *search.PreparedSearch {
	return &search.PreparedSearch{
		Groups: []search.GroupOptions{
			{
				MainCode: "A",
				Policy:   course.Mandatory,
				Options: []search.Option{
					{Sections: []course.Course{{Code: "A.1", ECTS: 5}}},
				},
			},
		},
	}
}

func TestResultPoolDedupesByFingerprint(t *testing.T) {
	prepared := onePrepared()
	pool := newResultPool(prepared, 0)

	pool.offer(common.Assignment{0}, true)
	pool.offer(common.Assignment{0}, true)

	require.Len(t, pool.results, 1)
}

func TestResultPoolIgnoresInfeasible(t *testing.T) {
	prepared := onePrepared()
	pool := newResultPool(prepared, 0)

	pool.offer(common.Assignment{0}, false)
	require.Empty(t, pool.results)
}

func TestResultPoolRespectsMax(t *testing.T) {
	prepared := &search.PreparedSearch{
		Groups: []search.GroupOptions{
			{
				MainCode: "A",
				Policy:   course.Mandatory,
				Options: []search.Option{
					{Sections: []course.Course{{Code: "A.1", ECTS: 5}}},
					{Sections: []course.Course{{Code: "A.2", ECTS: 5}}},
				},
			},
		},
	}
	pool := newResultPool(prepared, 1)
	require.False(t, pool.full())
	pool.offer(common.Assignment{0}, true)
	require.True(t, pool.full())
	pool.offer(common.Assignment{1}, true)
	require.Len(t, pool.results, 1)
}

func TestFingerprintStringDistinct(t *testing.T) {
	require.NotEqual(t, fingerprintString(1), fingerprintString(2))
}

func TestEmitProgressDeliversWhenRoom(t *testing.T) {
	ch := make(chan engine.ProgressEvent, 1)
	emitProgress(ch, "genetic", 5, 10, 0.9)
	evt := <-ch
	require.Equal(t, "genetic", evt.Algorithm)
}
