// Package hyper implements the hyper-evolver: a meta-GA whose individuals
// are themselves GA configurations, evolved to maximize how well they
// drive a battery of inner Evolvers. Grounded on
// _examples/original_source/src/evaluators/hyper/{eval,builder}.rs.
package hyper

import (
	"fmt"
	"math/rand"

	"github.com/evolab/engine/evolve/cfg"
	"github.com/evolab/engine/ops"
)

// State is one meta-GA individual: a full EvolveCfg plus the adaptive
// crossover/mutation weight vectors used when Cfg.Crossover.Adaptive or
// Cfg.Mutation.Adaptive is set (the Rust original keeps these alongside
// the Fixed/Adaptive cfg so mutation idx 0 can toggle between them without
// losing either representation).
type State struct {
	Cfg       cfg.EvolveCfg
	Crossover []float64
	Mutation  []float64
}

// RandState builds a random hyperparameter individual for a meta-GA whose
// population size is popSize and whose inner evaluators need at most
// numCrossover/numMutation weights.
func RandState(r *rand.Rand, popSize, numCrossover, numMutation int) State {
	c := cfg.New(popSize)
	c.Survival = randSurvival(r)
	c.Selection = randSelection(r)
	c.Niching = randNiching(r)
	c.Species = randSpecies(r)
	c.Stagnation = randStagnation(r)
	c.StagnationCondition = randStagnationCondition(r)
	c.Duplicates = randDuplicates(r)
	return State{
		Cfg:       c,
		Crossover: randWeights(r, numCrossover),
		Mutation:  randWeights(r, numMutation),
	}
}

func randWeights(r *rand.Rand, n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = r.Float64()
	}
	return w
}

func randSurvival(r *rand.Rand) cfg.Survival {
	switch r.Intn(4) {
	case 0:
		return cfg.NewTopProportion(r.Float64())
	case 1:
		return cfg.NewSpeciesTopProportion(r.Float64())
	case 2:
		return cfg.NewYoungest()
	default:
		return cfg.NewTournament(1 + r.Intn(8))
	}
}

func randSelection(r *rand.Rand) cfg.Selection {
	if r.Intn(2) == 0 {
		return cfg.Sus
	}
	return cfg.Roulette
}

func randNiching(r *rand.Rand) cfg.Niching {
	switch r.Intn(3) {
	case 0:
		return cfg.Niching{Kind: cfg.NoNiching}
	case 1:
		return cfg.NewSharedFitness(0.1 + r.Float64()*10)
	default:
		return cfg.NewSpeciesSharedFitness()
	}
}

func randSpecies(r *rand.Rand) cfg.Species {
	if r.Intn(2) == 0 {
		return cfg.Species{Kind: cfg.NoSpecies}
	}
	return cfg.NewTargetNumber(1 + r.Intn(20))
}

func randStagnation(r *rand.Rand) cfg.Stagnation {
	switch r.Intn(3) {
	case 0:
		return cfg.Stagnation{Kind: cfg.NoStagnation}
	case 1:
		return cfg.NewOneShotAfter(1 + r.Intn(20))
	default:
		return cfg.NewContinuousAfter(1 + r.Intn(20))
	}
}

func randStagnationCondition(r *rand.Rand) cfg.StagnationCondition {
	if r.Intn(2) == 0 {
		return cfg.StagnationCondition{Kind: cfg.DefaultCondition}
	}
	return cfg.NewEpsilonCondition(r.Float64() * 0.1)
}

func randDuplicates(r *rand.Rand) cfg.Duplicates {
	return cfg.Duplicates(r.Intn(2) == 0)
}

func (s State) Clone() State {
	return State{
		Cfg:       cloneCfg(s.Cfg),
		Crossover: append([]float64(nil), s.Crossover...),
		Mutation:  append([]float64(nil), s.Mutation...),
	}
}

func cloneCfg(c cfg.EvolveCfg) cfg.EvolveCfg {
	out := c
	out.Crossover.Weights = append([]float64(nil), c.Crossover.Weights...)
	out.Mutation.Weights = append([]float64(nil), c.Mutation.Weights...)
	return out
}

func (s State) Equal(o State) bool {
	return fmt.Sprint(s.Cfg) == fmt.Sprint(o.Cfg) &&
		ops.CountDifferent(s.Crossover, o.Crossover) == 0 &&
		ops.CountDifferent(s.Mutation, o.Mutation) == 0
}

func (s State) Less(o State) bool {
	return s.String() < o.String()
}

func (s State) String() string {
	return fmt.Sprintf("%+v", s.Cfg)
}

// effectiveCrossover returns the weight vector actually driving crossover
// selection: the adaptive vector when Cfg.Crossover is adaptive, else the
// fixed weights carried on Cfg itself.
func (s State) effectiveCrossover() []float64 {
	if s.Cfg.Crossover.Adaptive {
		return s.Crossover
	}
	return s.Cfg.Crossover.Weights
}

func (s State) effectiveMutation() []float64 {
	if s.Cfg.Mutation.Adaptive {
		return s.Mutation
	}
	return s.Cfg.Mutation.Weights
}
