package gen

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/evolab/engine/eval"
	"github.com/evolab/engine/evolve/cfg"
)

const speciesSearchTolerance = 1.0e-6
const sharedFitnessAlpha = 6.0 // published default in [5,10]

// UnevaluatedGen is a generation whose members have not yet had fitness
// computed this round: the output of reproduction, or the initial random
// population.
type UnevaluatedGen[S State[S]] struct {
	Mems    []Member[S]
	Species SpeciesInfo
	Dists   *DistCache
}

// NewUnevaluatedGen wraps an already-built member slice. Panics if empty,
// matching the Rust original's assert!(!mems.is_empty()).
func NewUnevaluatedGen[S State[S]](mems []Member[S]) *UnevaluatedGen[S] {
	if len(mems) == 0 {
		panic("gen: generation must not be empty")
	}
	return &UnevaluatedGen[S]{Mems: mems, Species: NewSpeciesInfo(), Dists: NewDistCache()}
}

// InitialGen builds the initial generation from freshly generated states.
func InitialGen[S State[S], D eval.Data](r *rand.Rand, states []S, c cfg.EvolveCfg, e eval.Evaluator[S, D]) *UnevaluatedGen[S] {
	mems := make([]Member[S], len(states))
	for i, s := range states {
		mems[i] = NewMember(r, s, c, e.NumMutation(), e.NumCrossover())
	}
	return NewUnevaluatedGen(mems)
}

// Evaluate runs the generation pipeline steps 1-4 (fitness, sort,
// speciate, niche) and returns the resulting EvaluatedGen. Mirrors
// unevaluated.rs::evaluate exactly, including the binary-search bracket
// update directions.
func Evaluate[S State[S], D eval.Data](g *UnevaluatedGen[S], inputs []D, c cfg.EvolveCfg, e eval.Evaluator[S, D]) (*EvaluatedGen[S], error) {
	if err := computeFitness(g.Mems, inputs, c, e); err != nil {
		return nil, err
	}

	for _, m := range g.Mems {
		if !(m.Fitness >= 0) || math.IsInf(m.Fitness, 0) || math.IsNaN(m.Fitness) {
			return nil, fmt.Errorf("gen: got negative or non-finite fitness %v", m.Fitness)
		}
	}

	sort.SliceStable(g.Mems, func(i, j int) bool {
		return g.Mems[i].Fitness > g.Mems[j].Fitness
	})

	switch c.Species.Kind {
	case cfg.NoSpecies:
	case cfg.TargetNumber:
		if err := EnsureDistCache(g.Dists, g.Mems, c.ParDist, e); err != nil {
			return nil, err
		}
		target := c.Species.Target
		lo, hi := 0.0, g.Dists.Max()
		var ids []SpeciesID
		for !relativeEq(lo, hi, speciesSearchTolerance) {
			radius := (lo + hi) / 2.0
			ids, g.Species = Speciate(g.Dists, g.Mems, radius)
			switch {
			case int(g.Species.Num) < target:
				hi = g.Species.Radius
			case int(g.Species.Num) == target:
				goto done
			default:
				lo = g.Species.Radius
			}
		}
	done:
		for i, id := range ids {
			g.Mems[i].Species = id
		}
	}

	switch c.Niching.Kind {
	case cfg.NoNiching:
		for i := range g.Mems {
			g.Mems[i].SelectionFitness = g.Mems[i].Fitness
		}
	case cfg.SharedFitness:
		if err := EnsureDistCache(g.Dists, g.Mems, c.ParDist, e); err != nil {
			return nil, err
		}
		SharedFitness(g.Dists, g.Mems, c.Niching.Radius, sharedFitnessAlpha)
	case cfg.SpeciesSharedFitness:
		if err := EnsureDistCache(g.Dists, g.Mems, c.ParDist, e); err != nil {
			return nil, err
		}
		SpeciesSharedFitness(g.Dists, g.Mems, g.Species)
	}

	cloned := make([]Member[S], len(g.Mems))
	for i, m := range g.Mems {
		cloned[i] = m.Clone()
	}
	return NewEvaluatedGen(cloned), nil
}

func computeFitness[S State[S], D eval.Data](mems []Member[S], inputs []D, c cfg.EvolveCfg, e eval.Evaluator[S, D]) error {
	compute := func(i int) error {
		f, err := eval.MultiFitness(e, &mems[i].State, inputs, c.FitnessReduction)
		if err != nil {
			return err
		}
		mems[i].Fitness = f
		return nil
	}
	if !c.ParFitness {
		for i := range mems {
			if err := compute(i); err != nil {
				return err
			}
		}
		return nil
	}
	return parForEach(len(mems), compute)
}

// relativeEq mirrors approx::relative_eq!(lo, hi, epsilon) used by the
// binary search termination check.
func relativeEq(a, b, epsilon float64) bool {
	if a == b {
		return true
	}
	diff := math.Abs(a - b)
	largest := math.Max(math.Abs(a), math.Abs(b))
	return diff <= largest*epsilon
}
