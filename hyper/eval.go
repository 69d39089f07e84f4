package hyper

import (
	"math/rand"

	"github.com/evolab/engine/evolve/cfg"
	"github.com/evolab/engine/ops"
)

const fitnessSamples = 30

// StatFn runs one inner Evolver configured with c and reports summary
// stats, or false if no iteration completed within its sampling budget.
type StatFn func(c cfg.EvolveCfg) (BestFitness, MeanFitness float64, ok bool)

// Alg evaluates hyperparameter State individuals by how well they drive a
// battery of inner Evolvers (one StatFn per registered domain), normalized
// against each domain's expected maximum fitness and averaged across
// fitnessSamples independent reruns. Grounded on
// _examples/original_source/src/evaluators/hyper/eval.rs.
type Alg struct {
	StatFns []StatFn
}

func (Alg) NumCrossover() int { return 4 }
func (Alg) NumMutation() int  { return 10 }

// Crossover: idx 0 is identity; idx 1 independently swaps each policy field
// of the two individuals' cfgs with probability 0.5; idx 2/3 blend the
// crossover/mutation adaptive weight vectors via BLX-alpha.
func (Alg) Crossover(s1, s2 *State, idx int) {
	r := rand.New(rand.NewSource(rand.Int63()))
	switch idx {
	case 0:
		return
	case 1:
		if r.Intn(2) == 0 {
			s1.Cfg.Crossover, s2.Cfg.Crossover = s2.Cfg.Crossover, s1.Cfg.Crossover
		}
		if r.Intn(2) == 0 {
			s1.Cfg.Mutation, s2.Cfg.Mutation = s2.Cfg.Mutation, s1.Cfg.Mutation
		}
		if r.Intn(2) == 0 {
			s1.Cfg.Survival, s2.Cfg.Survival = s2.Cfg.Survival, s1.Cfg.Survival
		}
		if r.Intn(2) == 0 {
			s1.Cfg.Selection, s2.Cfg.Selection = s2.Cfg.Selection, s1.Cfg.Selection
		}
		if r.Intn(2) == 0 {
			s1.Cfg.Niching, s2.Cfg.Niching = s2.Cfg.Niching, s1.Cfg.Niching
		}
		if r.Intn(2) == 0 {
			s1.Cfg.Species, s2.Cfg.Species = s2.Cfg.Species, s1.Cfg.Species
		}
		if r.Intn(2) == 0 {
			s1.Cfg.Stagnation, s2.Cfg.Stagnation = s2.Cfg.Stagnation, s1.Cfg.Stagnation
		}
		if r.Intn(2) == 0 {
			s1.Cfg.Duplicates, s2.Cfg.Duplicates = s2.Cfg.Duplicates, s1.Cfg.Duplicates
		}
	case 2:
		ops.CrossoverBlx(r, s1.Crossover, s2.Crossover, 0.5)
	case 3:
		ops.CrossoverBlx(r, s1.Mutation, s2.Mutation, 0.5)
	}
}

// Mutate: idx 0/2 toggle the crossover/mutation policy between Fixed and
// Adaptive (carrying the active weights across); idx 1/3 perturb the
// active crossover/mutation weights; idx 4-9 re-randomize one non-weight
// policy field with probability rate.
func (a Alg) Mutate(s *State, rate float64, idx int) {
	r := rand.New(rand.NewSource(rand.Int63()))
	switch idx {
	case 0:
		if r.Float64() < rate {
			if s.Cfg.Crossover.Adaptive {
				s.Cfg.Crossover = cfg.FixedCrossover(append([]float64(nil), s.Crossover...))
			} else {
				s.Crossover = append([]float64(nil), s.Cfg.Crossover.Weights...)
				s.Cfg.Crossover = cfg.AdaptiveCrossover()
			}
		}
	case 1:
		mutateWeightsInPlace(r, crossoverWeightsPtr(s), rate)
	case 2:
		if r.Float64() < rate {
			if s.Cfg.Mutation.Adaptive {
				s.Cfg.Mutation = cfg.FixedMutation(append([]float64(nil), s.Mutation...))
			} else {
				s.Mutation = append([]float64(nil), s.Cfg.Mutation.Weights...)
				s.Cfg.Mutation = cfg.AdaptiveMutation()
			}
		}
	case 3:
		mutateWeightsInPlace(r, mutationWeightsPtr(s), rate)
	case 4:
		if r.Float64() < rate {
			s.Cfg.Survival = randSurvival(r)
		}
	case 5:
		if r.Float64() < rate {
			s.Cfg.Selection = randSelection(r)
		}
	case 6:
		if r.Float64() < rate {
			s.Cfg.Niching = randNiching(r)
		}
	case 7:
		if r.Float64() < rate {
			s.Cfg.Species = randSpecies(r)
		}
	case 8:
		if r.Float64() < rate {
			s.Cfg.Stagnation = randStagnation(r)
		}
	case 9:
		if r.Float64() < rate {
			s.Cfg.Duplicates = randDuplicates(r)
		}
	}
}

func crossoverWeightsPtr(s *State) *[]float64 {
	if s.Cfg.Crossover.Adaptive {
		return &s.Crossover
	}
	return &s.Cfg.Crossover.Weights
}

func mutationWeightsPtr(s *State) *[]float64 {
	if s.Cfg.Mutation.Adaptive {
		return &s.Mutation
	}
	return &s.Cfg.Mutation.Weights
}

func mutateWeightsInPlace(r *rand.Rand, w *[]float64, rate float64) {
	for i := range *w {
		(*w)[i] = max0(ops.MutateNormal(r, (*w)[i], rate))
	}
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// Fitness averages each registered StatFn's (already max-normalized) best
// fitness over fitnessSamples independent inner-Evolver runs. StatFns that
// fail to complete an iteration within their budget contribute nothing.
func (a Alg) Fitness(s *State, _ struct{}) (float64, error) {
	var score float64
	for i := 0; i < fitnessSamples; i++ {
		for _, f := range a.StatFns {
			if best, _, ok := f(s.Cfg); ok {
				score += best
			}
		}
	}
	return score / fitnessSamples, nil
}

// Distance is the sum of Euclidean distances between the two individuals'
// effective crossover and mutation weight vectors.
func (Alg) Distance(s1, s2 *State) (float64, error) {
	d := ops.Dist2(s1.effectiveCrossover(), s2.effectiveCrossover())
	d += ops.Dist2(s1.effectiveMutation(), s2.effectiveMutation())
	return d, nil
}
