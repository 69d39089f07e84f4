package lgp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVmAddWritesRegister(t *testing.T) {
	vm := NewVm(VmCfg{
		Regs:      []float64{0, 0},
		Constants: []float64{2, 3},
		Code:      []Op{add(0, 2, 3)},
	})
	vm.Run()
	assert.Equal(t, 5.0, vm.Mem(0))
}

func TestVmDivByZeroLeavesRegisterUnchanged(t *testing.T) {
	vm := NewVm(VmCfg{
		Regs:      []float64{1, 0},
		Constants: []float64{0},
		Code:      []Op{{Code: Div, Operands: Operands{Ri: 0, Ra: 0, Rb: 2}}},
	})
	vm.Run()
	assert.Equal(t, 1.0, vm.Mem(0))
}

func TestVmConstantWritesAreDropped(t *testing.T) {
	vm := NewVm(VmCfg{
		Regs:      []float64{1},
		Constants: []float64{9},
		Code:      []Op{load(1, 42.0)},
	})
	vm.Run()
	assert.Equal(t, 9.0, vm.Mem(1))
}

func TestVmLnOfNegativeLeavesRegisterUnchanged(t *testing.T) {
	vm := NewVm(VmCfg{
		Regs: []float64{5, -1},
		Code: []Op{{Code: Ln, Operands: Operands{Ri: 0, Ra: 1}}},
	})
	vm.Run()
	assert.Equal(t, 5.0, vm.Mem(0))
	assert.True(t, math.IsNaN(math.Log(-1)))
}

func TestVmIfLtRunsGuardedInstructionWhenTrue(t *testing.T) {
	vm := NewVm(VmCfg{
		Regs: []float64{5, 1, 2},
		Code: []Op{
			iflt(1, 2),     // 1 < 2 is true, so condition "mem[ra] >= mem[rb]" is false: do not skip
			add(0, 1, 2),
		},
	})
	vm.Run()
	assert.Equal(t, 3.0, vm.Mem(0))
}

func TestVmIfLtTakesSkipWhenGuardFails(t *testing.T) {
	vm := NewVm(VmCfg{
		Regs: []float64{5, 2, 1},
		Code: []Op{
			iflt(1, 2), // mem[1]=2 >= mem[2]=1: skip the next instruction
			add(0, 1, 2),
		},
	})
	vm.Run()
	assert.Equal(t, 5.0, vm.Mem(0))
}

func TestVmIfLtSkipsChainOfBranchesPlusOneInstruction(t *testing.T) {
	vm := NewVm(VmCfg{
		Regs: []float64{5, 2, 1, 2, 1},
		Code: []Op{
			iflt(1, 2), // guard fails (2>=1): triggers skip of the chain below
			iflt(3, 4), // part of the chained run, skipped entirely
			add(0, 1, 2),
			load(0, 99),
		},
	})
	vm.Run()
	assert.Equal(t, 99.0, vm.Mem(0))
}
