// Package evolve owns one GA run: the Evolver, its EvolveResult snapshot,
// and summary Stats. Configuration types live in the sibling evolve/cfg
// package to avoid an import cycle with gen (see DESIGN.md).
package evolve

import (
	"fmt"

	"github.com/evolab/engine/gen"
)

// Stats summarizes one evaluated generation for logging/reporting.
type Stats struct {
	BestFitness  float64
	MeanFitness  float64
	PopSize      int
	NumDup       int
	MeanDistance float64
	Stagnant     bool
	Species      uint64
}

// EvolveResult is returned from one Evolver iteration: the next
// unevaluated generation to run, plus the fully evaluated current
// generation and whether the run is judged stagnant this round.
type EvolveResult[S gen.State[S]] struct {
	Unevaluated *gen.UnevaluatedGen[S]
	Gen         *gen.EvaluatedGen[S]
	StagnantVal bool
}

// Size returns the population size of the evaluated generation.
func (r *EvolveResult[S]) Size() int { return len(r.Gen.Mems) }

// Nth returns the nth-ranked member (0 = best) of the evaluated generation.
func (r *EvolveResult[S]) Nth(n int) gen.Member[S] { return r.Gen.Mems[n] }

// MeanFitness returns the arithmetic mean fitness of the evaluated
// generation.
func (r *EvolveResult[S]) MeanFitness() float64 {
	sum := 0.0
	for _, m := range r.Gen.Mems {
		sum += m.Fitness
	}
	return sum / float64(len(r.Gen.Mems))
}

// MeanDistance returns dist.mean() for the generation's DistCache; zero if
// the cache was never filled (speciation/niching disabled).
func (r *EvolveResult[S]) MeanDistance() float64 {
	return r.Unevaluated.Dists.Mean()
}

// NumDup returns how many adjacent-equal-state members the generation
// would drop under deduplication, regardless of whether Duplicates is
// currently disallowed.
func (r *EvolveResult[S]) NumDup() int {
	return gen.NumDup(r.Gen.Mems)
}

func (s Stats) String() string {
	return fmt.Sprintf(
		"pop=%d best=%.4f mean=%.4f dup=%d meandist=%.4f stagnant=%v species=%d",
		s.PopSize, s.BestFitness, s.MeanFitness, s.NumDup, s.MeanDistance, s.Stagnant, s.Species,
	)
}
