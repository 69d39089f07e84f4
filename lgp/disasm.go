package lgp

import (
	"strconv"
	"strings"
)

// Disassemble renders code as the text format Assemble parses.
func Disassemble(code []Op) string {
	var b strings.Builder
	for _, op := range code {
		b.WriteString(disasmLine(op))
		b.WriteByte('\n')
	}
	return b.String()
}

func disasmLine(op Op) string {
	mnemonic := op.Code.String()
	o := op.Operands
	switch op.Code.Shape() {
	case Reg3Assign:
		return mnemonic + " " + reg(o.Ri) + ", " + reg(o.Ra) + ", " + reg(o.Rb)
	case Reg2Assign:
		return mnemonic + " " + reg(o.Ri) + ", " + reg(o.Ra)
	case Reg2Cmp:
		return mnemonic + " " + reg(o.Ra) + ", " + reg(o.Rb)
	case ImmAssign:
		return mnemonic + " " + reg(o.Ri) + ", " + strconv.FormatFloat(o.Imm, 'g', -1, 64)
	default:
		return mnemonic
	}
}

func reg(idx uint8) string {
	return "r" + strconv.Itoa(int(idx))
}
