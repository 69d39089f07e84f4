// Package cfg declares EvolveCfg and its constituent policy types. It
// depends only on eval, not on gen, so that gen may depend on it without a
// cycle, mirroring the Rust original's evolve::cfg module which is
// likewise a leaf relative to gen::*.
package cfg

import (
	"errors"
	"fmt"

	"github.com/evolab/engine/eval"
)

// ErrConfig is the sentinel wrapped by every configuration validation
// error (pop_size 0, negative weight, wrong-length weight vector, ...).
var ErrConfig = errors.New("evolve: invalid configuration")

// Crossover selects whether crossover weights are fixed or self-adaptive.
type Crossover struct {
	Adaptive bool
	Weights  []float64 // used when !Adaptive
}

func FixedCrossover(weights []float64) Crossover { return Crossover{Weights: weights} }
func AdaptiveCrossover() Crossover                { return Crossover{Adaptive: true} }

// Mutation selects whether mutation weights are fixed or self-adaptive.
type Mutation struct {
	Adaptive bool
	Weights  []float64
}

func FixedMutation(weights []float64) Mutation { return Mutation{Weights: weights} }
func AdaptiveMutation() Mutation                { return Mutation{Adaptive: true} }

// SurvivalKind enumerates survival policies.
type SurvivalKind int

const (
	TopProportion SurvivalKind = iota
	SpeciesTopProportion
	Youngest
	Tournament
)

// Survival is a survival policy plus its parameter (proportion p, or
// tournament size q, depending on Kind).
type Survival struct {
	Kind  SurvivalKind
	Prop  float64 // TopProportion, SpeciesTopProportion
	Q     int     // Tournament
}

func NewTopProportion(p float64) Survival        { return Survival{Kind: TopProportion, Prop: p} }
func NewSpeciesTopProportion(p float64) Survival { return Survival{Kind: SpeciesTopProportion, Prop: p} }
func NewYoungest() Survival                      { return Survival{Kind: Youngest} }
func NewTournament(q int) Survival               { return Survival{Kind: Tournament, Q: q} }

// Selection chooses between SUS and roulette-wheel selection.
type Selection int

const (
	Sus Selection = iota
	Roulette
)

// Niching selects the fitness-sharing transform applied before selection.
type NichingKind int

const (
	NoNiching NichingKind = iota
	SharedFitness
	SpeciesSharedFitness
)

type Niching struct {
	Kind   NichingKind
	Radius float64 // SharedFitness
}

func NewSharedFitness(radius float64) Niching { return Niching{Kind: SharedFitness, Radius: radius} }
func NewSpeciesSharedFitness() Niching        { return Niching{Kind: SpeciesSharedFitness} }

// Species selects whether speciation is enabled and its target count.
type SpeciesKind int

const (
	NoSpecies SpeciesKind = iota
	TargetNumber
)

type Species struct {
	Kind   SpeciesKind
	Target int
}

func NewTargetNumber(n int) Species { return Species{Kind: TargetNumber, Target: n} }

// StagnationKind enumerates stagnation policies.
type StagnationKind int

const (
	NoStagnation StagnationKind = iota
	OneShotAfter
	ContinuousAfter
)

type Stagnation struct {
	Kind  StagnationKind
	Count int
}

func NewOneShotAfter(n int) Stagnation    { return Stagnation{Kind: OneShotAfter, Count: n} }
func NewContinuousAfter(n int) Stagnation { return Stagnation{Kind: ContinuousAfter, Count: n} }

// StagnationCondition determines how "no improvement" is detected.
type StagnationConditionKind int

const (
	DefaultCondition StagnationConditionKind = iota
	EpsilonCondition
)

type StagnationCondition struct {
	Kind    StagnationConditionKind
	Epsilon float64
}

func NewEpsilonCondition(eps float64) StagnationCondition {
	return StagnationCondition{Kind: EpsilonCondition, Epsilon: eps}
}

// Replacement is the stagnation-triggered random-refill policy.
type Replacement struct {
	Prop float64
}

func NewReplaceChildren(p float64) Replacement { return Replacement{Prop: p} }

// Duplicates toggles post-reproduction deduplication.
type Duplicates bool

const (
	AllowDuplicates    Duplicates = false
	DisallowDuplicates Duplicates = true
)

// EvolveCfg is the full engine configuration record (spec.md §6).
type EvolveCfg struct {
	PopSize             int
	Crossover           Crossover
	Mutation            Mutation
	Survival            Survival
	Selection           Selection
	Niching             Niching
	Species             Species
	Stagnation          Stagnation
	StagnationCondition StagnationCondition
	Replacement         Replacement
	Duplicates          Duplicates
	FitnessReduction    eval.FitnessReduction
	ParFitness          bool
	ParDist             bool
}

// New returns an EvolveCfg with the given population size and conservative
// defaults: self-adaptive crossover and mutation weights, top 25%
// survival, SUS selection, no niching/speciation/stagnation, replacement
// proportion 0.5, duplicates disallowed, arithmetic-mean fitness reduction.
func New(popSize int) EvolveCfg {
	return EvolveCfg{
		PopSize:             popSize,
		Crossover:           AdaptiveCrossover(),
		Mutation:            AdaptiveMutation(),
		Survival:            NewTopProportion(0.25),
		Selection:           Sus,
		Niching:             Niching{Kind: NoNiching},
		Species:             Species{Kind: NoSpecies},
		Stagnation:          Stagnation{Kind: NoStagnation},
		StagnationCondition: StagnationCondition{Kind: DefaultCondition},
		Replacement:         NewReplaceChildren(0.5),
		Duplicates:          DisallowDuplicates,
		FitnessReduction:    eval.ArithmeticMean,
	}
}

// Validate checks structural invariants that don't depend on a concrete
// Evaluator's NumCrossover/NumMutation (those are checked by CheckWeights
// in package gen, once the weight vectors are known).
func (c EvolveCfg) Validate() error {
	if c.PopSize < 1 {
		return fmt.Errorf("%w: pop_size must be >= 1, got %d", ErrConfig, c.PopSize)
	}
	if c.Niching.Kind == SharedFitness && c.Niching.Radius <= 0 {
		return fmt.Errorf("%w: SharedFitness radius must be > 0", ErrConfig)
	}
	if c.Species.Kind == TargetNumber && c.Species.Target < 1 {
		return fmt.Errorf("%w: species target number must be >= 1", ErrConfig)
	}
	if c.Survival.Kind == Tournament && c.Survival.Q < 1 {
		return fmt.Errorf("%w: tournament size must be >= 1", ErrConfig)
	}
	return nil
}
