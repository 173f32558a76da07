package local

import (
	"strconv"

	"github.com/campusplan/scheduler/internal/engine"
)

// fingerprintString renders a schedule fingerprint as a map key.
func fingerprintString(fp uint64) string {
	return strconv.FormatUint(fp, 16)
}

// emitProgress sends a non-blocking progress update, dropping it
// silently if the channel isn't ready.
func emitProgress(ch chan<- engine.ProgressEvent, algorithm string, explored, frontier int, best float64) {
	if ch == nil {
		return
	}
	select {
	case ch <- engine.ProgressEvent{Algorithm: algorithm, Explored: explored, Frontier: frontier, BestScore: best}:
	default:
	}
}
