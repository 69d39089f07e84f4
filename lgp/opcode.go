// Package lgp implements the linear-genetic-programming subsystem: the
// register-machine opcode set and VM, the dead-code-elimination optimizer,
// the text assembler/disassembler, and the LgpEvaluator binding it all into
// an eval.Evaluator. Grounded throughout on
// _examples/original_source/src/evaluators/lgp/vm/*.rs.
package lgp

import "fmt"

// Opcode is the closed set of LGP instructions. Register indices are
// 8-bit; accessing a register beyond num_reg maps into the constant range
// read-only; [0, num_reg) is read-write, [num_reg, num_reg+num_const) is
// read-only (the VM enforces this, not the opcode set).
type Opcode int

const (
	Add Opcode = iota // rx, ry, rz: rx = ry + rz
	Sub               // rx, ry, rz: rx = ry - rz
	Mul               // rx, ry, rz: rx = ry * rz
	Div               // rx, ry, rz: rx = ry / rz
	Pow               // rx, ry, rz: rx = ry ^ rz
	Abs               // rx, ry: rx = |ry|
	Neg               // rx, ry: rx = -ry
	Ln                // rx, ry: rx = ln(ry)
	Sin               // rx, ry: rx = sin(ry)
	Cos               // rx, ry: rx = cos(ry)
	Copy              // rx, ry: rx = ry
	Load              // rx, imm: rx = imm
	IfLt              // rx, ry: if rx >= ry, skip the next guarded instruction run
)

// NumOpcodes is the size of the enabled opcode set for sampling.
const NumOpcodes = int(IfLt) + 1

func (op Opcode) String() string {
	switch op {
	case Add:
		return "add"
	case Sub:
		return "sub"
	case Mul:
		return "mul"
	case Div:
		return "div"
	case Pow:
		return "pow"
	case Abs:
		return "abs"
	case Neg:
		return "neg"
	case Ln:
		return "ln"
	case Sin:
		return "sin"
	case Cos:
		return "cos"
	case Copy:
		return "copy"
	case Load:
		return "load"
	case IfLt:
		return "iflt"
	default:
		return fmt.Sprintf("opcode(%d)", int(op))
	}
}

// OperandShape is the operand layout an Opcode requires.
type OperandShape int

const (
	Reg3Assign OperandShape = iota // ri, ra, rb — rx = f(ra, rb)
	Reg2Assign                     // ri, ra — rx = f(ra)
	Reg2Cmp                        // ra, rb — comparison only, no write
	ImmAssign                      // ri, imm
)

// Shape returns the operand layout for op.
func (op Opcode) Shape() OperandShape {
	switch op {
	case Add, Sub, Mul, Div, Pow:
		return Reg3Assign
	case Abs, Neg, Ln, Sin, Cos, Copy:
		return Reg2Assign
	case Load:
		return ImmAssign
	case IfLt:
		return Reg2Cmp
	default:
		panic(fmt.Sprintf("lgp: unknown opcode %d", op))
	}
}

// IsBranch reports whether op is a guard instruction (only IfLt today; the
// historical labeled-jump variants are not implemented, see DESIGN.md).
func (op Opcode) IsBranch() bool {
	return op == IfLt
}
