package lgp

// Optimizer removes instructions that cannot affect any of a program's
// declared output registers. Grounded on
// _examples/original_source/src/evaluators/lgp/vm/optimize.rs.
type Optimizer struct {
	OutputRegs []uint8
}

// NewOptimizer returns an Optimizer that keeps only instructions reachable,
// by data dependency, from outputRegs.
func NewOptimizer(outputRegs []uint8) *Optimizer {
	return &Optimizer{OutputRegs: append([]uint8(nil), outputRegs...)}
}

// Optimize performs one reverse pass over code, tracking the set of
// registers whose current value is still "effective" (needed by some kept
// instruction later in program order). An instruction is kept if it writes
// an effective register; keeping it replaces that register's membership in
// the effective set with its own input registers.
//
// Branch instructions (IfLt) have no output register of their own, so they
// are kept only by resurrection: if the instruction immediately following
// in program order was kept, the branch is kept too, since the branch
// might skip that instruction and the value it would have written must
// survive from before the branch. Resurrection also re-adds the
// following instruction's output registers to the effective set, because
// on the branch-taken path those registers keep whatever value they held
// before the branch. A kept branch also adds its own input registers (the
// compare operands) to the effective set, same as any other kept
// instruction, since eliminating whatever feeds the compare would change
// which path the branch takes.
func (o *Optimizer) Optimize(code []Op) []Op {
	effective := make(map[uint8]bool, len(o.OutputRegs))
	for _, r := range o.OutputRegs {
		effective[r] = true
	}

	keep := make([]bool, len(code))
	for i := len(code) - 1; i >= 0; i-- {
		op := code[i]
		if op.Code.IsBranch() {
			if i+1 < len(code) && keep[i+1] {
				keep[i] = true
				for _, r := range code[i+1].OutputRegs() {
					effective[r] = true
				}
				for _, r := range op.InputRegs() {
					effective[r] = true
				}
			}
			continue
		}

		live := false
		for _, r := range op.OutputRegs() {
			if effective[r] {
				live = true
				break
			}
		}
		if !live {
			continue
		}
		keep[i] = true
		for _, r := range op.OutputRegs() {
			delete(effective, r)
		}
		for _, r := range op.InputRegs() {
			effective[r] = true
		}
	}

	out := make([]Op, 0, len(code))
	for i, op := range code {
		if keep[i] {
			out = append(out, op)
		}
	}
	return out
}
