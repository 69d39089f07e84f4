package train

import (
	"fmt"
	"math/rand"
	"testing"

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
func (v intVec) Less(o intVec) bool { return len(v) < len(o) }
func (v intVec) String() string     { return fmt.Sprint([]int(v)) }

type sumEvaluator struct{}

func (sumEvaluator) NumCrossover() int        { return 1 }
func (sumEvaluator) NumMutation() int         { return 1 }
func (sumEvaluator) Crossover(a, b *intVec, idx int) {}
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
func (sumEvaluator) Distance(a, b *intVec) (float64, error) { return 0, nil }

func randIntVec(r *rand.Rand) intVec {
	v := make(intVec, 4)
	for i := range v {
		v[i] = r.Intn(5)
	}
	return v
}

func TestEvolveRunsFixedGenerations(t *testing.T) {
	c := cfg.New(10)
	c.Mutation = cfg.FixedMutation([]float64{0.5})
	c.Crossover = cfg.FixedCrossover([]float64{1})

	ev, err := evolve.New[intVec, struct{}](sumEvaluator{}, c, 1, randIntVec)
	require.NoError(t, err)

	tr := New(NewCfg("sum-test"))
	tr.Cfg.Termination = NewFixedGenerations(5)

	result, err := Evolve(tr, ev)
	require.NoError(t, err)
	assert.Len(t, result.Gen.Mems, 10)
}

func TestEvolveRejectsZeroGenerations(t *testing.T) {
	c := cfg.New(5)
	c.Mutation = cfg.FixedMutation([]float64{0.1})
	c.Crossover = cfg.FixedCrossover([]float64{1})

	ev, err := evolve.New[intVec, struct{}](sumEvaluator{}, c, 1, randIntVec)
	require.NoError(t, err)

	tr := New(NewCfg("empty-test"))
	tr.Cfg.Termination = NewFixedGenerations(0)

	_, err = Evolve(tr, ev)
	require.Error(t, err)
}
