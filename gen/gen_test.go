package gen

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evolab/engine/eval"
	"github.com/evolab/engine/evolve/cfg"
)

// intVec is a minimal State implementation used only by this package's
// tests: a fixed-length vector of ints compared lexicographically.
type intVec []int

func (v intVec) Clone() intVec { return append(intVec(nil), v...) }
func (v intVec) Equal(o intVec) bool {
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
func (v intVec) Less(o intVec) bool {
	for i := 0; i < len(v) && i < len(o); i++ {
		if v[i] != o[i] {
			return v[i] < o[i]
		}
	}
	return len(v) < len(o)
}
func (v intVec) String() string { return fmt.Sprint([]int(v)) }

// sumEvaluator treats fitness as the sum of the vector (so all-ones of
// length n has fitness n) and distance as the count of differing indices.
type sumEvaluator struct{ n int }

func (sumEvaluator) NumCrossover() int { return 1 }
func (sumEvaluator) NumMutation() int  { return 1 }
func (sumEvaluator) Crossover(a, b *intVec, idx int) {}
func (e sumEvaluator) Mutate(s *intVec, rate float64, idx int) {
	r := rand.New(rand.NewSource(1))
	for i := range *s {
		if r.Float64() < rate {
			(*s)[i] = 1 - (*s)[i]
		}
	}
}
func (sumEvaluator) Fitness(s *intVec, d struct{}) (float64, error) {
	sum := 0
	for _, v := range *s {
		sum += v
	}
	return float64(sum), nil
}
func (e sumEvaluator) Distance(a, b *intVec) (float64, error) {
	diff := 0
	for i := range *a {
		if (*a)[i] != (*b)[i] {
			diff++
		}
	}
	return float64(diff), nil
}

func randState(r *rand.Rand) intVec {
	v := make(intVec, 4)
	for i := range v {
		v[i] = r.Intn(2)
	}
	return v
}

var _ eval.Evaluator[intVec, struct{}] = sumEvaluator{}

func TestEvaluateSortsDescending(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	e := sumEvaluator{n: 4}
	c := cfg.New(8)
	c.Mutation = cfg.FixedMutation([]float64{0})
	c.Crossover = cfg.FixedCrossover([]float64{1})

	states := make([]intVec, 8)
	for i := range states {
		states[i] = randState(r)
	}
	ug := InitialGen(r, states, c, e)
	eg, err := Evaluate(ug, []struct{}{{}}, c, e)
	require.NoError(t, err)

	for i := 1; i < len(eg.Mems); i++ {
		assert.GreaterOrEqual(t, eg.Mems[i-1].Fitness, eg.Mems[i].Fitness)
	}
}

func TestDistCacheSingleMember(t *testing.T) {
	e := sumEvaluator{n: 4}
	mems := []Member[intVec]{{State: intVec{1, 1, 1, 1}}}
	d := NewDistCache()
	require.NoError(t, EnsureDistCache(d, mems, false, e))
	assert.Equal(t, 0.0, d.Max())
	assert.Equal(t, 0.0, d.Mean())
}

func TestSpeciateSplitsByRadius(t *testing.T) {
	// 5 members with d[i,j] = |i-j|, pre-sorted by "fitness" (index order).
	d := &DistCache{n: 5, cache: make([]float64, 25), filled: true}
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			dist := float64(i - j)
			if dist < 0 {
				dist = -dist
			}
			d.cache[i*5+j] = dist
		}
	}
	mems := make([]Member[intVec], 5)
	for i := range mems {
		mems[i] = Member[intVec]{State: intVec{i}}
	}
	ids, info := Speciate(d, mems, 2.0)
	assert.Equal(t, uint64(2), info.Num)
	assert.Equal(t, []SpeciesID{1, 1, 1, 2, 2}, ids)

	ids2, info2 := Speciate(d, mems, 1.0)
	assert.Equal(t, uint64(3), info2.Num)
	assert.Equal(t, ids2[0], ids2[1])
	assert.NotEqual(t, ids2[0], ids2[4])
}

func TestCheckWeightsRejectsWrongLength(t *testing.T) {
	err := CheckWeights([]float64{1, 2}, 3)
	require.Error(t, err)
}

func TestCheckWeightsRejectsNegative(t *testing.T) {
	err := CheckWeights([]float64{1, -1}, 2)
	require.Error(t, err)
}

func TestDedupRemovesEqualStates(t *testing.T) {
	mems := []Member[intVec]{
		{State: intVec{1, 1}},
		{State: intVec{0, 0}},
		{State: intVec{1, 1}},
	}
	deduped := dedupByState(mems)
	assert.Len(t, deduped, 2)
}

func TestNextGenProducesPopSize(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	e := sumEvaluator{n: 4}
	c := cfg.New(6)
	c.Mutation = cfg.FixedMutation([]float64{0.1})
	c.Crossover = cfg.FixedCrossover([]float64{1})
	c.Duplicates = cfg.AllowDuplicates

	states := make([]intVec, 6)
	for i := range states {
		states[i] = randState(r)
	}
	ug := InitialGen(r, states, c, e)
	eg, err := Evaluate(ug, []struct{}{{}}, c, e)
	require.NoError(t, err)

	next, err := NextGen(eg, c, false, r, e, randState)
	require.NoError(t, err)
	assert.Len(t, next.Mems, 6)
}
