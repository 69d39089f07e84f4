package evolve

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"github.com/evolab/engine/eval"
	"github.com/evolab/engine/evolve/cfg"
	"github.com/evolab/engine/gen"
)

// RandStateFn generates a fresh random state, used both for the initial
// population and for stagnation-triggered replacement members.
type RandStateFn[S any] func(*rand.Rand) S

// Evolver owns one GA run: the current unevaluated generation, the config,
// evaluator, RNG, and stagnation counter. Grounded on the teacher's
// EvolutionEngine (evolution/engine.go) for the logging/Verbose-gate idiom
// and on evolve/evolver.rs for the stagnation/run_iter algorithm.
type Evolver[S gen.State[S], D eval.Data] struct {
	RunID   string
	Cfg     cfg.EvolveCfg
	Eval    eval.Evaluator[S, D]
	Rand    *rand.Rand
	Verbose bool

	current        *gen.UnevaluatedGen[S]
	randState      RandStateFn[S]
	stagnantCount  int
	lastBestFitness float64
	haveLast       bool
}

// New constructs an Evolver with a freshly randomized initial population of
// size cfg.PopSize.
func New[S gen.State[S], D eval.Data](e eval.Evaluator[S, D], c cfg.EvolveCfg, seed int64, randState RandStateFn[S]) (*Evolver[S, D], error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	r := rand.New(rand.NewSource(seed))
	states := make([]S, c.PopSize)
	for i := range states {
		states[i] = randState(r)
	}
	return FromInitial(e, c, seed, states, randState)
}

// FromInitial starts from a user-provided seed population, filled out to
// cfg.PopSize with freshly randomized states if the seed is shorter.
func FromInitial[S gen.State[S], D eval.Data](e eval.Evaluator[S, D], c cfg.EvolveCfg, seed int64, seedStates []S, randState RandStateFn[S]) (*Evolver[S, D], error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	r := rand.New(rand.NewSource(seed))
	states := append([]S(nil), seedStates...)
	for len(states) < c.PopSize {
		states = append(states, randState(r))
	}
	if len(states) > c.PopSize {
		states = states[:c.PopSize]
	}
	return &Evolver[S, D]{
		RunID:     uuid.NewString(),
		Cfg:       c,
		Eval:      e,
		Rand:      r,
		current:   gen.InitialGen(r, states, c, e),
		randState: randState,
	}, nil
}

// Current returns the evolver's not-yet-evaluated generation, the one
// RunIter/RunData will evaluate next. Used by callers that checkpoint
// between generations.
func (ev *Evolver[S, D]) Current() *gen.UnevaluatedGen[S] {
	return ev.current
}

// RunIter advances one generation against no external data (D must be
// instantiated with a zero-value-usable type, typically struct{}).
func (ev *Evolver[S, D]) RunIter() (*EvolveResult[S], error) {
	var zero D
	return ev.RunData([]D{zero})
}

// RunData advances one generation using the given training inputs.
func (ev *Evolver[S, D]) RunData(inputs []D) (*EvolveResult[S], error) {
	evaluated, err := gen.Evaluate(ev.current, inputs, ev.Cfg, ev.Eval)
	if err != nil {
		return nil, fmt.Errorf("evolve: generation %s failed: %w", ev.RunID, err)
	}

	bestFitness := evaluated.Mems[0].Fitness
	stagnant := ev.detectStagnation(bestFitness)

	next, err := gen.NextGen(evaluated, ev.Cfg, stagnant, ev.Rand, ev.Eval, ev.randState)
	if err != nil {
		return nil, fmt.Errorf("evolve: reproduction failed: %w", err)
	}
	ev.current = next

	if ev.Verbose {
		log.Printf("evolve[%s]: best=%.4f stagnant=%v", ev.RunID, bestFitness, stagnant)
	}

	return &EvolveResult[S]{Unevaluated: next, Gen: evaluated, StagnantVal: stagnant}, nil
}

func (ev *Evolver[S, D]) detectStagnation(bestFitness float64) bool {
	improved := true
	if ev.haveLast {
		switch ev.Cfg.StagnationCondition.Kind {
		case cfg.EpsilonCondition:
			improved = math.Abs(bestFitness-ev.lastBestFitness) > ev.Cfg.StagnationCondition.Epsilon
		default:
			improved = !relativeEq(bestFitness, ev.lastBestFitness, 1e-6)
		}
	}
	ev.lastBestFitness = bestFitness
	ev.haveLast = true

	if improved {
		ev.stagnantCount = 0
	} else {
		ev.stagnantCount++
	}

	switch ev.Cfg.Stagnation.Kind {
	case cfg.OneShotAfter:
		if ev.stagnantCount >= ev.Cfg.Stagnation.Count {
			ev.stagnantCount = 0
			return true
		}
		return false
	case cfg.ContinuousAfter:
		return ev.stagnantCount >= ev.Cfg.Stagnation.Count
	default:
		return false
	}
}

func relativeEq(a, b, epsilon float64) bool {
	if a == b {
		return true
	}
	diff := math.Abs(a - b)
	largest := math.Max(math.Abs(a), math.Abs(b))
	return diff <= largest*epsilon
}

// Summary returns best/mean fitness, population size, duplicate count,
// mean distance, species count and the stagnant flag for result. It does
// not report the members' adaptive operator weights.
func (ev *Evolver[S, D]) Summary(result *EvolveResult[S]) Stats {
	return Stats{
		BestFitness:  result.Nth(0).Fitness,
		MeanFitness:  result.MeanFitness(),
		PopSize:      result.Size(),
		NumDup:       result.NumDup(),
		MeanDistance: result.MeanDistance(),
		Stagnant:     result.StagnantVal,
		Species:      speciesCount(result),
	}
}

func speciesCount[S gen.State[S]](result *EvolveResult[S]) uint64 {
	seen := map[gen.SpeciesID]bool{}
	for _, m := range result.Gen.Mems {
		seen[m.Species] = true
	}
	return uint64(len(seen))
}

// SummarySample returns up to n top individuals spread across species:
// each species contributes an equal share of n / numSpecies (at least one)
// of its best members, capped by its size, and overflow is trimmed from
// the weakest additions. Fewer than n are returned when small species
// cannot fill their share; the whole generation is returned when n is at
// least its size. Grounded on evolve/evolver.rs summary_sample.
func (ev *Evolver[S, D]) SummarySample(result *EvolveResult[S], n int) []gen.Member[S] {
	mems := result.Gen.Mems
	if n >= len(mems) {
		return append([]gen.Member[S](nil), mems...)
	}

	bySpecies := map[gen.SpeciesID][]gen.Member[S]{}
	var order []gen.SpeciesID
	for _, m := range mems {
		if _, ok := bySpecies[m.Species]; !ok {
			order = append(order, m.Species)
		}
		bySpecies[m.Species] = append(bySpecies[m.Species], m)
	}

	perSpecies := n / len(order)
	if perSpecies < 1 {
		perSpecies = 1
	}

	var out []gen.Member[S]
	for _, sp := range order {
		group := bySpecies[sp]
		k := perSpecies
		if k > len(group) {
			k = len(group)
		}
		out = append(out, group[:k]...)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Fitness > out[j].Fitness })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
