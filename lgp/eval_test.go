package lgp

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evolab/engine/eval"
)

func sumOfSquaresEvaluator() Evaluator[float64] {
	return Evaluator[float64]{
		Cfg: Cfg{
			NumReg:     2,
			Constants:  nil,
			OutputRegs: []uint8{0},
			MinLen:     2,
			MaxLen:     8,
			RandOp: func(r *rand.Rand) Op {
				return Op{Code: Mul, Operands: Operands{Ri: 0, Ra: 1, Rb: 1}}
			},
		},
		Setup: func(regs []float64, d float64) {
			regs[1] = d
		},
		Score: func(outputs []float64, d float64) (float64, error) {
			target := d * d
			diff := outputs[0] - target
			return -diff * diff, nil
		},
	}
}

func TestLgpEvaluatorSatisfiesEvaluatorInterface(t *testing.T) {
	var _ eval.Evaluator[State, float64] = sumOfSquaresEvaluator()
}

func TestLgpEvaluatorFitnessComputesSquare(t *testing.T) {
	e := sumOfSquaresEvaluator()
	s := State{Code: []Op{{Code: Mul, Operands: Operands{Ri: 0, Ra: 1, Rb: 1}}}}
	score, err := e.Fitness(&s, 3.0)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, score, 1e-9)
}

func TestLgpEvaluatorDistanceZeroForIdenticalOptimizedPrograms(t *testing.T) {
	e := sumOfSquaresEvaluator()
	a := State{Code: []Op{{Code: Mul, Operands: Operands{Ri: 0, Ra: 1, Rb: 1}}}}
	b := State{Code: []Op{
		{Code: Mul, Operands: Operands{Ri: 5, Ra: 1, Rb: 1}}, // dead, writes unused reg 5
		{Code: Mul, Operands: Operands{Ri: 0, Ra: 1, Rb: 1}},
	}}
	d, err := e.Distance(&a, &b)
	require.NoError(t, err)
	assert.Equal(t, 0.0, d)
}

func TestLgpStateEqualAndClone(t *testing.T) {
	s := State{Code: []Op{add(0, 1, 2)}}
	c := s.Clone()
	assert.True(t, s.Equal(c))
	c.Code[0].Operands.Ri = 9
	assert.False(t, s.Equal(c))
}

func TestLgpStateStringRoundTrips(t *testing.T) {
	s := State{Code: []Op{add(0, 1, 2), iflt(1, 2)}}
	code, err := Assemble(s.String())
	require.NoError(t, err)
	assert.Equal(t, s.Code, code)
}

func TestLgpRandStateRespectsLengthBounds(t *testing.T) {
	e := sumOfSquaresEvaluator()
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		s := e.RandState(r)
		assert.GreaterOrEqual(t, len(s.Code), 1)
		assert.LessOrEqual(t, len(s.Code), e.Cfg.MaxLen)
	}
}

func TestLgpMutateDeleteRespectsMinLen(t *testing.T) {
	e := sumOfSquaresEvaluator()
	s := State{Code: []Op{add(0, 1, 2), add(0, 1, 2)}}
	for i := 0; i < 50; i++ {
		e.Mutate(&s, 1.0, mutDelete)
	}
	assert.GreaterOrEqual(t, len(s.Code), e.Cfg.MinLen)
}
