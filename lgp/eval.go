package lgp

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/evolab/engine/ops"
)

// State is an individual LGP program. Clone/Equal/Less/String satisfy
// gen.State; Less is only used to break ties deterministically, not for
// any fitness semantics.
type State struct {
	Code []Op
}

func (s State) Clone() State {
	return State{Code: append([]Op(nil), s.Code...)}
}

func (s State) Equal(o State) bool {
	if len(s.Code) != len(o.Code) {
		return false
	}
	for i := range s.Code {
		if s.Code[i] != o.Code[i] {
			return false
		}
	}
	return true
}

func (s State) Less(o State) bool {
	if len(s.Code) != len(o.Code) {
		return len(s.Code) < len(o.Code)
	}
	for i := range s.Code {
		if s.Code[i] == o.Code[i] {
			continue
		}
		if s.Code[i].Code != o.Code[i].Code {
			return s.Code[i].Code < o.Code[i].Code
		}
		return opLess(s.Code[i].Operands, o.Code[i].Operands)
	}
	return false
}

func opLess(a, b Operands) bool {
	if a.Ri != b.Ri {
		return a.Ri < b.Ri
	}
	if a.Ra != b.Ra {
		return a.Ra < b.Ra
	}
	if a.Rb != b.Rb {
		return a.Rb < b.Rb
	}
	return a.Imm < b.Imm
}

func (s State) String() string {
	return Disassemble(s.Code)
}

// RandOpFn samples a single random instruction for a program of the given
// register/constant layout. Evaluators supply this so that domain-specific
// restrictions (e.g. forbidding IfLt near the program start) can be
// layered on without lgp itself knowing about them.
type RandOpFn func(r *rand.Rand) Op

// Cfg describes the fixed machine shape and scoring contract shared by
// every individual in a run: number of read-write registers, constant
// pool, which registers are read out as the program's outputs, the length
// bounds enforced by the length-changing mutation operators, and the
// immediate-operand micro-mutation parameters (significant figures to
// round to, and the (lo,hi) range used to derive its perturbation sigma).
type Cfg struct {
	NumReg     int
	Constants  []float64
	OutputRegs []uint8
	MinLen     int
	MaxLen     int
	RandOp     RandOpFn

	ImmSf int     // significant figures immediates are rounded to after micro-mutation
	ImmLo float64 // immediate value range, used to derive micro-mutation sigma
	ImmHi float64
}

// Evaluator binds the LGP VM into an eval.Evaluator[State, D]. Setup maps a
// training input into the VM's initial register contents; Score maps the
// VM's output registers (read after Run, in Cfg.OutputRegs order) plus the
// same input back to a fitness value. Grounded on
// _examples/original_source/src/evaluators/lgp/eval.rs.
type Evaluator[D any] struct {
	Cfg   Cfg
	Setup func(regs []float64, d D)
	Score func(outputs []float64, d D) (float64, error)
}

func (e Evaluator[D]) NumCrossover() int { return 2 }
func (e Evaluator[D]) NumMutation() int  { return 7 }

// Crossover index 0 is identity (no-op, preserving each parent unchanged);
// index 1 swaps two randomly chosen contiguous runs between the programs'
// overlapping prefix via k-point crossover.
//
// Crossover and Mutate each draw their own *rand.Rand from the global
// source rather than threading the engine's seeded Rand through, mirroring
// the Rust original's thread_rng() use here; runs are reproducible at the
// generation/selection level but not bit-for-bit within LGP operators.
func (e Evaluator[D]) Crossover(s1, s2 *State, idx int) {
	switch idx {
	case 0:
		return
	case 1:
		r := rand.New(rand.NewSource(rand.Int63()))
		ops.CrossoverKpx(r, s1.Code, s2.Code, 2)
	}
}

const (
	mutSwap = iota
	mutInsert
	mutReset
	mutScramble
	mutInsertNew
	mutDelete
	mutMicro
)

// Mutate applies one of seven structural or parametric mutations, selected
// by idx: swap two instructions, insert a copy of an existing instruction,
// reset an instruction to a fresh random one, scramble a contiguous run,
// insert a brand new random instruction, delete an instruction, or
// micro-mutate a single operand of an existing instruction.
func (e Evaluator[D]) Mutate(s *State, rate float64, idx int) {
	r := rand.New(rand.NewSource(rand.Int63()))
	n := len(s.Code)
	if n == 0 && idx != mutInsertNew {
		return
	}

	switch idx {
	case mutSwap:
		if r.Float64() < rate {
			ops.MutateSwap(r, s.Code)
		}
	case mutInsert:
		if n >= e.Cfg.MaxLen || n == 0 {
			return
		}
		if r.Float64() < rate {
			i := r.Intn(n)
			s.Code = insertAt(s.Code, i, s.Code[r.Intn(n)])
		}
	case mutReset:
		if r.Float64() < rate {
			ops.MutateGen(r, s.Code, e.Cfg.RandOp)
		}
	case mutScramble:
		if n < 2 {
			return
		}
		if r.Float64() < rate {
			ops.MutateScramble(r, s.Code)
		}
	case mutInsertNew:
		if n >= e.Cfg.MaxLen {
			return
		}
		if r.Float64() < rate {
			pos := 0
			if n > 0 {
				pos = r.Intn(n + 1)
			}
			s.Code = insertAt(s.Code, pos, e.Cfg.RandOp(r))
		}
	case mutDelete:
		if n <= e.Cfg.MinLen {
			return
		}
		if r.Float64() < rate {
			i := r.Intn(n)
			s.Code = append(s.Code[:i], s.Code[i+1:]...)
		}
	case mutMicro:
		if r.Float64() < rate {
			i := r.Intn(n)
			e.microMutateOperand(r, &s.Code[i])
		}
	}
}

func insertAt(code []Op, pos int, op Op) []Op {
	out := make([]Op, 0, len(code)+1)
	out = append(out, code[:pos]...)
	out = append(out, op)
	out = append(out, code[pos:]...)
	return out
}

// microMutateOperand perturbs one operand of op without changing its
// opcode. Register operands are replaced with a new uniformly random
// valid register; the immediate operand of a Load is nudged by gaussian
// noise (sigma a coin flip between √range and log10(range) of
// Cfg.ImmLo/ImmHi) and rounded to Cfg.ImmSf significant figures.
func (e Evaluator[D]) microMutateOperand(r *rand.Rand, op *Op) {
	memSize := e.Cfg.NumReg + len(e.Cfg.Constants)
	switch op.Code.Shape() {
	case Reg3Assign:
		switch r.Intn(3) {
		case 0:
			op.Operands.Ri = uint8(r.Intn(memSize))
		case 1:
			op.Operands.Ra = uint8(r.Intn(memSize))
		default:
			op.Operands.Rb = uint8(r.Intn(memSize))
		}
	case Reg2Assign:
		if r.Intn(2) == 0 {
			op.Operands.Ri = uint8(r.Intn(memSize))
		} else {
			op.Operands.Ra = uint8(r.Intn(memSize))
		}
	case Reg2Cmp:
		if r.Intn(2) == 0 {
			op.Operands.Ra = uint8(r.Intn(memSize))
		} else {
			op.Operands.Rb = uint8(r.Intn(memSize))
		}
	case ImmAssign:
		rng := e.Cfg.ImmHi - e.Cfg.ImmLo
		sigma := math.Sqrt(rng)
		if r.Intn(2) == 1 {
			sigma = math.Log10(rng)
		}
		v := ops.MutateNormal(r, op.Operands.Imm, sigma)
		op.Operands.Imm = roundToSigFigs(v, e.Cfg.ImmSf)
	}
}

// roundToSigFigs rounds v to sf significant decimal figures.
func roundToSigFigs(v float64, sf int) float64 {
	if v == 0 || sf <= 0 {
		return v
	}
	mag := math.Floor(math.Log10(math.Abs(v))) + 1
	factor := math.Pow(10, float64(sf)-mag)
	return math.Round(v*factor) / factor
}

func (e Evaluator[D]) Fitness(s *State, d D) (float64, error) {
	regs := make([]float64, e.Cfg.NumReg)
	if e.Setup != nil {
		e.Setup(regs, d)
	}
	vm := NewVm(VmCfg{Regs: regs, Constants: e.Cfg.Constants, Code: s.Code})
	vm.Run()

	outputs := make([]float64, len(e.Cfg.OutputRegs))
	for i, reg := range e.Cfg.OutputRegs {
		outputs[i] = vm.Mem(reg)
	}
	score, err := e.Score(outputs, d)
	if err != nil {
		return 0, fmt.Errorf("lgp: fitness: %w", err)
	}
	return score, nil
}

// Distance compares the optimized (dead-code-eliminated) forms of the two
// programs, so structurally different but behaviorally identical programs
// score as close.
func (e Evaluator[D]) Distance(s1, s2 *State) (float64, error) {
	opt := NewOptimizer(e.Cfg.OutputRegs)
	c1 := opt.Optimize(s1.Code)
	c2 := opt.Optimize(s2.Code)
	return ops.DistFn(c1, c2, 1.0, Dist), nil
}

// RandState builds a random program of length round(N(10,2)) clamped to
// [1, Cfg.MaxLen].
func (e Evaluator[D]) RandState(r *rand.Rand) State {
	n := int(math.Round(r.NormFloat64()*2 + 10))
	if n < 1 {
		n = 1
	}
	if n > e.Cfg.MaxLen {
		n = e.Cfg.MaxLen
	}
	code := make([]Op, n)
	for i := range code {
		code[i] = e.Cfg.RandOp(r)
	}
	return State{Code: code}
}
