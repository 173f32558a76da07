// Package population implements the population-based algorithm
// family: a Genetic Algorithm over assignment chromosomes and a
// discrete Particle Swarm Optimizer, both operating on the same
// full-assignment representation as the local-search family (spec
// §5.1's "Population-Based" category).
package population

import (
	"strconv"

	"github.com/campusplan/scheduler/internal/algorithm/common"
	"github.com/campusplan/scheduler/internal/engine"
	"github.com/campusplan/scheduler/internal/schedule"
	"github.com/campusplan/scheduler/internal/search"
)

func emitProgress(ch chan<- engine.ProgressEvent, algorithm string, explored, frontier int, best float64) {
	if ch == nil {
		return
	}
	select {
	case ch <- engine.ProgressEvent{Algorithm: algorithm, Explored: explored, Frontier: frontier, BestScore: best}:
	default:
	}
}

func fingerprintString(fp uint64) string {
	return strconv.FormatUint(fp, 16)
}

// resultPool collects distinct feasible assignments found across
// generations/iterations, deduplicated by schedule fingerprint.
type resultPool struct {
	prepared *search.PreparedSearch
	seen     map[string]bool
	results  []schedule.Schedule
	max      int
}

func newResultPool(prepared *search.PreparedSearch, max int) *resultPool {
	return &resultPool{prepared: prepared, seen: map[string]bool{}, max: max}
}

func (p *resultPool) offer(a common.Assignment, feasible bool) {
	if !feasible || (p.max > 0 && len(p.results) >= p.max) {
		return
	}
	s := common.Assemble(p.prepared, a)
	fp, err := s.Fingerprint()
	if err != nil {
		return
	}
	key := fingerprintString(fp)
	if p.seen[key] {
		return
	}
	p.seen[key] = true
	p.results = append(p.results, s)
}

func (p *resultPool) full() bool {
	return p.max > 0 && len(p.results) >= p.max
}
