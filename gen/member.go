package gen

import (
	"math/rand"

	"github.com/evolab/engine/evolve/cfg"
)

// SpeciesID is an unsigned species tag; 0 means unassigned.
type SpeciesID uint64

// Params holds the two adaptive operator-weight vectors for one member:
// mutation[0..M) and crossover[0..C), where M and C are declared by the
// Evaluator via NumMutation/NumCrossover.
type Params struct {
	Mutation  []float64
	Crossover []float64
}

// NewParams builds the initial Params for a freshly created member. Under
// the Adaptive policy weights start uniform random in [0,1); under Fixed
// they are copied from the configured weight vector.
func NewParams(r *rand.Rand, c cfg.EvolveCfg, numMutation, numCrossover int) Params {
	p := Params{}
	if c.Mutation.Adaptive {
		p.Mutation = randVec(r, numMutation)
	} else {
		p.Mutation = append([]float64(nil), c.Mutation.Weights...)
	}
	if c.Crossover.Adaptive {
		p.Crossover = randVec(r, numCrossover)
	} else {
		p.Crossover = append([]float64(nil), c.Crossover.Weights...)
	}
	return p
}

func randVec(r *rand.Rand, n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = r.Float64()
	}
	return v
}

func (p Params) Clone() Params {
	return Params{
		Mutation:  append([]float64(nil), p.Mutation...),
		Crossover: append([]float64(nil), p.Crossover...),
	}
}

// Member is one individual: its state, adaptive parameters, species tag,
// raw and selection fitness, and age.
type Member[S State[S]] struct {
	State            S
	Params           Params
	Species          SpeciesID
	Fitness          float64
	SelectionFitness float64
	Age              uint
}

// NewMember wraps a freshly generated state with initial Params.
func NewMember[S State[S]](r *rand.Rand, state S, c cfg.EvolveCfg, numMutation, numCrossover int) Member[S] {
	return Member[S]{State: state, Params: NewParams(r, c, numMutation, numCrossover)}
}

// Clone deep-copies a member, including its state and params.
func (m Member[S]) Clone() Member[S] {
	return Member[S]{
		State:            m.State.Clone(),
		Params:           m.Params.Clone(),
		Species:          m.Species,
		Fitness:          m.Fitness,
		SelectionFitness: m.SelectionFitness,
		Age:              m.Age,
	}
}
