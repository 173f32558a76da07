package local

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campusplan/scheduler/internal/engine"
)

func TestFingerprintStringIsStableAndDistinct(t *testing.T) {
	require.Equal(t, fingerprintString(255), fingerprintString(255))
	require.NotEqual(t, fingerprintString(255), fingerprintString(256))
}

func TestEmitProgressNilChannelNoops(t *testing.T) {
	require.NotPanics(t, func() {
		emitProgress(nil, "dfs", 1, 2, 0.5)
	})
}

func TestEmitProgressDropsWhenChannelFull(t *testing.T) {
	ch := make(chan engine.ProgressEvent, 1)
	ch <- engine.ProgressEvent{Algorithm: "existing"}

	require.NotPanics(t, func() {
		emitProgress(ch, "dfs", 1, 2, 0.5)
	})
	require.Len(t, ch, 1)
	evt := <-ch
	require.Equal(t, "existing", evt.Algorithm)
}

func TestEmitProgressDeliversWhenChannelHasRoom(t *testing.T) {
	ch := make(chan engine.ProgressEvent, 1)
	emitProgress(ch, "dfs", 3, 4, 0.75)
	evt := <-ch
	require.Equal(t, "dfs", evt.Algorithm)
	require.Equal(t, 3, evt.Explored)
	require.Equal(t, 0.75, evt.BestScore)
}
