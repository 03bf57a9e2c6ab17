package vm

import "rvm/isa"

// Registers holds the 16 user-visible general-purpose registers plus the
// hidden comparison flags Test sets and the conditional jumps read. The
// stack-length, call-stack-length, and program-counter pseudo-registers
// are not stored here: they are always read live off the MachineContext
// they describe.
type Registers struct {
	General [isa.NumRegisters]uint64
	Equal   bool
	Greater bool
	Less    bool
}

// Get returns the value of r.
func (regs *Registers) Get(r isa.Register) uint64 {
	return regs.General[r]
}

// Set stores v into r.
func (regs *Registers) Set(r isa.Register, v uint64) {
	regs.General[r] = v
}

// SetFlagsFromCompare sets Equal/Greater/Less from comparing a against b,
// the semantics of the Test opcode.
func (regs *Registers) SetFlagsFromCompare(a, b uint64) {
	regs.Equal = a == b
	regs.Greater = a > b
	regs.Less = a < b
}
