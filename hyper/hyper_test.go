package hyper

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evolab/engine/evolve"
	"github.com/evolab/engine/evolve/cfg"
)

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
	sv, so := 0, 0
	for _, x := range v {
		sv += x
	}
	for _, x := range o {
		so += x
	}
	return sv < so
}
func (v intVec) String() string { return "intVec" }

type sumEvaluator struct{}

func (sumEvaluator) NumCrossover() int { return 1 }
func (sumEvaluator) NumMutation() int  { return 1 }
func (sumEvaluator) Crossover(a, b *intVec, idx int) {
	n := len(*a)
	if n == 0 {
		return
	}
	(*a)[0], (*b)[0] = (*b)[0], (*a)[0]
}
func (sumEvaluator) Mutate(s *intVec, rate float64, idx int) {
	r := rand.New(rand.NewSource(1))
	for i := range *s {
		if r.Float64() < rate {
			(*s)[i]++
		}
	}
}
func (sumEvaluator) Fitness(s *intVec, _ struct{}) (float64, error) {
	total := 0
	for _, x := range *s {
		total += x
	}
	return float64(total), nil
}
func (sumEvaluator) Distance(a, b *intVec) (float64, error) {
	return 0, nil
}

func randIntVec(r *rand.Rand) intVec {
	v := make(intVec, 4)
	for i := range v {
		v[i] = r.Intn(10)
	}
	return v
}

func TestRandStateProducesValidCfg(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	s := RandState(r, 20, 2, 3)
	require.NoError(t, s.Cfg.Validate())
	assert.Len(t, s.Crossover, 2)
	assert.Len(t, s.Mutation, 3)
}

func TestStateCloneIsIndependent(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	s := RandState(r, 10, 2, 2)
	c := s.Clone()
	c.Crossover[0] = -99
	assert.NotEqual(t, s.Crossover[0], c.Crossover[0])
}

func TestMutateTogglesCrossoverAdaptivity(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	s := RandState(r, 10, 2, 2)
	s.Cfg.Crossover = cfg.AdaptiveCrossover()
	a := Alg{}
	a.Mutate(&s, 1.0, 0)
	assert.False(t, s.Cfg.Crossover.Adaptive)
	a.Mutate(&s, 1.0, 0)
	assert.True(t, s.Cfg.Crossover.Adaptive)
}

func TestDistanceZeroForIdenticalWeights(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	s1 := RandState(r, 10, 2, 2)
	s2 := s1.Clone()
	a := Alg{}
	d, err := a.Distance(&s1, &s2)
	require.NoError(t, err)
	assert.Equal(t, 0.0, d)
}

func TestBuilderAssemblesRunnableEvolver(t *testing.T) {
	b := NewBuilder(6, 5*time.Millisecond)
	AddRunner(b, 40.0, func(c cfg.EvolveCfg) (*evolve.Evolver[intVec, struct{}], error) {
		c.PopSize = 8
		return evolve.New[intVec, struct{}](sumEvaluator{}, c, 42, randIntVec)
	}, 1, 1)

	ev, err := b.Build(7)
	require.NoError(t, err)
	result, err := ev.RunIter()
	require.NoError(t, err)
	assert.Len(t, result.Gen.Mems, 6)
}
