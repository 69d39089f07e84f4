package gen

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/evolab/engine/eval"
	"github.com/evolab/engine/evolve/cfg"
	"github.com/evolab/engine/ops"
)

const numTries = 3 // reproduction-then-dedup refill rounds, per evaluated.rs

// EvaluatedGen is a generation whose members are sorted by fitness
// descending and whose selection_fitness has been set by niching.
type EvaluatedGen[S State[S]] struct {
	Mems []Member[S]
}

// NewEvaluatedGen wraps an already fitness-sorted member slice.
func NewEvaluatedGen[S State[S]](mems []Member[S]) *EvaluatedGen[S] {
	return &EvaluatedGen[S]{Mems: mems}
}

// Survivors produces the carry-over cohort per the configured survival
// policy, incrementing age on every survivor.
func Survivors[S State[S]](g *EvaluatedGen[S], c cfg.EvolveCfg, r *rand.Rand) []Member[S] {
	var out []Member[S]
	switch c.Survival.Kind {
	case cfg.TopProportion:
		n := int(math.Ceil(float64(c.PopSize) * c.Survival.Prop))
		if n > len(g.Mems) {
			n = len(g.Mems)
		}
		out = cloneAll(g.Mems[:n])
	case cfg.SpeciesTopProportion:
		bySpecies := map[SpeciesID][]Member[S]{}
		numSpecies := 0
		for _, m := range g.Mems {
			if _, ok := bySpecies[m.Species]; !ok {
				numSpecies++
			}
			bySpecies[m.Species] = append(bySpecies[m.Species], m)
		}
		if numSpecies == 0 {
			numSpecies = 1
		}
		perSpecies := int(math.Ceil(float64(c.PopSize) * c.Survival.Prop / float64(numSpecies)))
		taken := map[SpeciesID]int{}
		for _, m := range g.Mems {
			if taken[m.Species] < perSpecies {
				out = append(out, m.Clone())
				taken[m.Species]++
			}
		}
	case cfg.Youngest:
		byAge := cloneAll(g.Mems)
		sort.SliceStable(byAge, func(i, j int) bool { return byAge[i].Age < byAge[j].Age })
		n := c.PopSize
		if n > len(byAge) {
			n = len(byAge)
		}
		out = byAge[:n]
	case cfg.Tournament:
		out = tournamentSurvivors(g.Mems, c.Survival.Q, c.PopSize, r)
	}
	for i := range out {
		out[i].Age++
	}
	return out
}

func cloneAll[S State[S]](mems []Member[S]) []Member[S] {
	out := make([]Member[S], len(mems))
	for i, m := range mems {
		out[i] = m.Clone()
	}
	return out
}

func tournamentSurvivors[S State[S]](mems []Member[S], q, popSize int, r *rand.Rand) []Member[S] {
	wins := make([]int, len(mems))
	for i := range mems {
		for t := 0; t < q; t++ {
			opp := r.Intn(len(mems))
			if mems[i].Fitness > mems[opp].Fitness {
				wins[i]++
			}
		}
	}
	idx := make([]int, len(mems))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return wins[idx[a]] > wins[idx[b]] })
	n := popSize
	if n > len(idx) {
		n = len(idx)
	}
	out := make([]Member[S], n)
	for i := 0; i < n; i++ {
		out[i] = mems[idx[i]].Clone()
	}
	return out
}

// Selection picks two parents via SUS or roulette over selection_fitness.
func Selection[S State[S]](mems []Member[S], c cfg.EvolveCfg, r *rand.Rand) [2]Member[S] {
	fitness := make([]float64, len(mems))
	for i, m := range mems {
		fitness[i] = m.SelectionFitness
	}
	var idx []int
	switch c.Selection {
	case cfg.Sus:
		idx = ops.Sus(r, fitness, 2)
	case cfg.Roulette:
		idx = ops.MultiRws(r, fitness, 2)
	}
	return [2]Member[S]{mems[idx[0]].Clone(), mems[idx[1]].Clone()}
}

// CheckWeights validates a Params weight vector against the Evaluator's
// declared length, returning ErrConfig-wrapped errors on mismatch or
// negative weights.
func CheckWeights(weights []float64, declaredLen int) error {
	if len(weights) != declaredLen {
		return fmt.Errorf("%w: weight vector length %d, want %d", cfg.ErrConfig, len(weights), declaredLen)
	}
	for _, w := range weights {
		if w < 0 {
			return fmt.Errorf("%w: negative weight %v", cfg.ErrConfig, w)
		}
	}
	return nil
}

// Crossover applies adaptive/fixed weight evolution to both parents' Params
// and then applies exactly one crossover strategy (chosen by roulette over
// s1's crossover weights) to the pair.
func Crossover[S State[S], D eval.Data](s1, s2 *Member[S], c cfg.EvolveCfg, popSize int, r *rand.Rand, e eval.Evaluator[S, D]) error {
	learnRate := 1.0 / math.Sqrt(float64(popSize))
	evolveCrossoverWeights(s1, c, learnRate, r)
	evolveCrossoverWeights(s2, c, learnRate, r)

	if err := CheckWeights(s1.Params.Crossover, e.NumCrossover()); err != nil {
		return err
	}
	if err := CheckWeights(s2.Params.Crossover, e.NumCrossover()); err != nil {
		return err
	}

	idx := ops.Rws(r, s1.Params.Crossover)
	e.Crossover(&s1.State, &s2.State, idx)
	return nil
}

func evolveCrossoverWeights[S State[S]](m *Member[S], c cfg.EvolveCfg, learnRate float64, r *rand.Rand) {
	if c.Crossover.Adaptive {
		for i, w := range m.Params.Crossover {
			nw := w + learnRate*r.NormFloat64()
			if nw < 0 {
				nw = 0
			}
			m.Params.Crossover[i] = nw
		}
	} else {
		m.Params.Crossover = append([]float64(nil), c.Crossover.Weights...)
	}
}

// Mutation applies adaptive/fixed weight evolution to a member's Params and
// then invokes every mutation strategy (each interprets its own rate).
func Mutation[S State[S], D eval.Data](m *Member[S], c cfg.EvolveCfg, popSize int, r *rand.Rand, e eval.Evaluator[S, D]) error {
	learnRate := 1.0 / math.Sqrt(float64(popSize))
	if c.Mutation.Adaptive {
		for i, w := range m.Params.Mutation {
			nw := w * math.Exp(learnRate*r.NormFloat64())
			if nw < 0 {
				nw = 0
			}
			if nw > 1 {
				nw = 1
			}
			m.Params.Mutation[i] = nw
		}
	} else {
		m.Params.Mutation = append([]float64(nil), c.Mutation.Weights...)
	}

	if err := CheckWeights(m.Params.Mutation, e.NumMutation()); err != nil {
		return err
	}
	for i, rate := range m.Params.Mutation {
		e.Mutate(&m.State, rate, i)
	}
	return nil
}

// NextGen runs reproduction (steps 6-8 of the pipeline): stagnation top-up,
// up to numTries rounds of {select, crossover, mutate, dedup}, returning
// the next UnevaluatedGen.
func NextGen[S State[S], D eval.Data](g *EvaluatedGen[S], c cfg.EvolveCfg, stagnant bool, r *rand.Rand, e eval.Evaluator[S, D], randState func(*rand.Rand) S) (*UnevaluatedGen[S], error) {
	survivors := Survivors(g, c, r)

	if stagnant {
		remaining := c.PopSize - len(survivors)
		if remaining < 0 {
			remaining = 0
		}
		nNew := int(math.Ceil(float64(remaining) * c.Replacement.Prop))
		for i := 0; i < nNew; i++ {
			survivors = append(survivors, NewMember(r, randState(r), c, e.NumMutation(), e.NumCrossover()))
		}
	}

	newMems := survivors
	for try := 0; try < numTries && len(newMems) < c.PopSize; try++ {
		for len(newMems) < c.PopSize {
			parents := Selection(g.Mems, c, r)
			c1, c2 := parents[0], parents[1]
			if err := Crossover(&c1, &c2, c, c.PopSize, r, e); err != nil {
				return nil, err
			}
			if err := Mutation(&c1, c, c.PopSize, r, e); err != nil {
				return nil, err
			}
			if err := Mutation(&c2, c, c.PopSize, r, e); err != nil {
				return nil, err
			}
			newMems = append(newMems, c1, c2)
		}
		if c.Duplicates == cfg.DisallowDuplicates {
			newMems = dedupByState(newMems)
		}
	}

	if len(newMems) > c.PopSize {
		newMems = newMems[:c.PopSize]
	}
	return NewUnevaluatedGen(newMems), nil
}

func dedupByState[S State[S]](mems []Member[S]) []Member[S] {
	sort.SliceStable(mems, func(i, j int) bool { return mems[i].State.Less(mems[j].State) })
	out := mems[:0]
	for i, m := range mems {
		if i == 0 || !mems[i-1].State.Equal(m.State) {
			out = append(out, m)
		}
	}
	return out
}

// NumDup returns the number of adjacent-equal-state members a dedup pass
// would remove, used for Stats without mutating the generation.
func NumDup[S State[S]](mems []Member[S]) int {
	cp := cloneAll(mems)
	before := len(cp)
	after := len(dedupByState(cp))
	return before - after
}
