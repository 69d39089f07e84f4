package evolve

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evolab/engine/evolve/cfg"
)

// bitVec is a minimal gen.State implementation for these tests: a fixed
// length boolean vector maximized by the "all ones" fitness function,
// loosely following spec.md Scenario A's target-string shape.
type bitVec []bool

func (v bitVec) Clone() bitVec { return append(bitVec(nil), v...) }
func (v bitVec) Equal(o bitVec) bool {
	if len(v) != len(o) {
		return false
	}
	for i := range v {
		if v[i] != o[i] {
			return false
		}
	}
	return true
}
func (v bitVec) Less(o bitVec) bool {
	for i := 0; i < len(v) && i < len(o); i++ {
		if v[i] != o[i] {
			return !v[i]
		}
	}
	return len(v) < len(o)
}
func (v bitVec) String() string { return fmt.Sprint([]bool(v)) }

type allOnesEvaluator struct{}

func (allOnesEvaluator) NumCrossover() int { return 2 }
func (allOnesEvaluator) NumMutation() int  { return 1 }
func (allOnesEvaluator) Crossover(a, b *bitVec, idx int) {
	if idx == 0 {
		return
	}
	n := len(*a)
	if n < 2 {
		return
	}
	pt := n / 2
	for i := pt; i < n; i++ {
		(*a)[i], (*b)[i] = (*b)[i], (*a)[i]
	}
}
func (allOnesEvaluator) Mutate(s *bitVec, rate float64, idx int) {
	r := rand.New(rand.NewSource(99))
	for i := range *s {
		if r.Float64() < rate {
			(*s)[i] = !(*s)[i]
		}
	}
}
func (allOnesEvaluator) Fitness(s *bitVec, d struct{}) (float64, error) {
	count := 0.0
	for _, b := range *s {
		if b {
			count++
		}
	}
	return count + 1, nil
}
func (allOnesEvaluator) Distance(a, b *bitVec) (float64, error) {
	diff := 0.0
	for i := range *a {
		if (*a)[i] != (*b)[i] {
			diff++
		}
	}
	return diff, nil
}

func randBitVec(r *rand.Rand) bitVec {
	v := make(bitVec, 8)
	for i := range v {
		v[i] = r.Intn(2) == 1
	}
	return v
}

func TestEvolverRunIterAdvancesPopulation(t *testing.T) {
	c := cfg.New(20)
	c.Mutation = cfg.FixedMutation([]float64{0.05})
	c.Crossover = cfg.FixedCrossover([]float64{0.3, 0.7})

	ev, err := New[bitVec, struct{}](allOnesEvaluator{}, c, 1, randBitVec)
	require.NoError(t, err)

	result, err := ev.RunIter()
	require.NoError(t, err)
	assert.Len(t, result.Gen.Mems, 20)
	for i := 1; i < len(result.Gen.Mems); i++ {
		assert.GreaterOrEqual(t, result.Gen.Mems[i-1].Fitness, result.Gen.Mems[i].Fitness)
	}
}

func TestEvolverMonotoneBestFitnessUnderElitism(t *testing.T) {
	c := cfg.New(30)
	c.Mutation = cfg.FixedMutation([]float64{0.02})
	c.Crossover = cfg.FixedCrossover([]float64{0.2, 0.8})
	c.Survival = cfg.NewTopProportion(0.2)
	c.Duplicates = cfg.AllowDuplicates

	ev, err := New[bitVec, struct{}](allOnesEvaluator{}, c, 2, randBitVec)
	require.NoError(t, err)

	best := 0.0
	for i := 0; i < 25; i++ {
		result, err := ev.RunIter()
		require.NoError(t, err)
		b := result.Nth(0).Fitness
		assert.GreaterOrEqual(t, b, best-1e-9, "best fitness regressed at generation %d", i)
		best = b
	}
}

func TestEvolverRejectsZeroPopSize(t *testing.T) {
	c := cfg.New(0)
	_, err := New[bitVec, struct{}](allOnesEvaluator{}, c, 1, randBitVec)
	require.Error(t, err)
}

func TestSummaryReportsPopSize(t *testing.T) {
	c := cfg.New(10)
	c.Mutation = cfg.FixedMutation([]float64{0.05})
	c.Crossover = cfg.FixedCrossover([]float64{1, 0})

	ev, err := New[bitVec, struct{}](allOnesEvaluator{}, c, 3, randBitVec)
	require.NoError(t, err)
	result, err := ev.RunIter()
	require.NoError(t, err)

	stats := ev.Summary(result)
	assert.Equal(t, 10, stats.PopSize)
}
