package lgp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleDisassembleRoundTrip(t *testing.T) {
	code := []Op{
		add(0, 1, 2),
		{Code: Abs, Operands: Operands{Ri: 3, Ra: 0}},
		load(4, 3.5),
		iflt(1, 2),
	}
	text := Disassemble(code)
	parsed, err := Assemble(text)
	require.NoError(t, err)
	assert.Equal(t, code, parsed)
}

func TestAssembleRejectsUnknownMnemonic(t *testing.T) {
	_, err := Assemble("frobnicate r0, r1, r2")
	require.Error(t, err)
}

func TestAssembleRejectsWrongOperandCount(t *testing.T) {
	_, err := Assemble("add r0, r1")
	require.Error(t, err)
}

func TestAssembleIgnoresBlankAndCommentLines(t *testing.T) {
	text := "# a comment\n\nadd r0, r1, r2\n"
	code, err := Assemble(text)
	require.NoError(t, err)
	assert.Equal(t, []Op{add(0, 1, 2)}, code)
}
