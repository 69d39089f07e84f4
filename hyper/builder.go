package hyper

import (
	"math/rand"
	"time"

	"github.com/evolab/engine/eval"
	"github.com/evolab/engine/evolve"
	"github.com/evolab/engine/evolve/cfg"
	"github.com/evolab/engine/gen"
)

// Builder accumulates StatFns for one or more domains and assembles the
// meta-GA Evolver that tunes a hyperparameter set common to all of them.
// Grounded on _examples/original_source/src/evaluators/hyper/builder.rs.
type Builder struct {
	statFns      []StatFn
	popSize      int
	numCrossover int
	numMutation  int
	sampleDur    time.Duration
}

// NewBuilder starts a Builder for a meta-GA population of popSize
// individuals, each inner Evolver sampled for up to sampleDur per
// fitness evaluation.
func NewBuilder(popSize int, sampleDur time.Duration) *Builder {
	return &Builder{popSize: popSize, sampleDur: sampleDur}
}

// AddRunner registers one domain: newEvolver builds a fresh inner Evolver
// from a candidate EvolveCfg, and maxFitness normalizes its best/mean
// fitness into a comparable [0,1]-ish range across domains.
//
// This is a free function, not a Builder method, because it introduces
// type parameters (S, D) of its own — Go does not allow a method to add
// type parameters beyond those already bound to its receiver.
func AddRunner[S gen.State[S], D eval.Data](b *Builder, maxFitness float64, newEvolver func(cfg.EvolveCfg) (*evolve.Evolver[S, D], error), numCrossover, numMutation int) {
	if numCrossover > b.numCrossover {
		b.numCrossover = numCrossover
	}
	if numMutation > b.numMutation {
		b.numMutation = numMutation
	}
	sampleDur := b.sampleDur
	b.statFns = append(b.statFns, func(c cfg.EvolveCfg) (float64, float64, bool) {
		ev, err := newEvolver(c)
		if err != nil {
			return 0, 0, false
		}

		// Keep one generation behind the most recently completed run, so
		// a run that only just crossed the deadline is never counted.
		var last *evolve.EvolveResult[S]
		deadline := time.Now().Add(sampleDur)
		for time.Now().Before(deadline) {
			result, err := ev.RunIter()
			if err != nil || time.Now().After(deadline) {
				break
			}
			last = result
		}
		if last == nil {
			return 0, 0, false
		}

		stats := ev.Summary(last)
		return stats.BestFitness / maxFitness, stats.MeanFitness / maxFitness, true
	})
}

// Build assembles the meta-GA Evolver over the registered domains, using
// the fixed outer-loop policy from the original hyper-evolver: adaptive
// weights, top-25% survival, SUS selection, no niching or speciation, and
// parallel fitness (each domain's sampling runs independently) but
// sequential distance (cheap compared to a fitness sample).
func (b *Builder) Build(seed int64) (*evolve.Evolver[State, struct{}], error) {
	c := cfg.New(b.popSize)
	c.Mutation = cfg.AdaptiveMutation()
	c.Crossover = cfg.AdaptiveCrossover()
	c.Survival = cfg.NewTopProportion(0.25)
	c.Selection = cfg.Sus
	c.Species = cfg.Species{Kind: cfg.NoSpecies}
	c.Niching = cfg.Niching{Kind: cfg.NoNiching}
	c.ParFitness = true
	c.ParDist = false

	popSize, numCrossover, numMutation := b.popSize, b.numCrossover, b.numMutation
	randState := func(r *rand.Rand) State {
		return RandState(r, popSize, numCrossover, numMutation)
	}
	return evolve.New[State, struct{}](Alg{StatFns: b.statFns}, c, seed, randState)
}
