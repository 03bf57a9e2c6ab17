// Package isa defines the primitive types shared by the assembler, encoder,
// and dispatch loop: registers, opcodes, and operands.
package isa

import "fmt"

// Register identifies one of the 16 user-visible general-purpose registers.
// Flags, the program counter, and the two stack-length pseudo-registers are
// not addressable by user code and so have no Register value of their own;
// they are exposed only through dedicated opcodes and plugin host calls.
type Register uint8

const (
	Ra Register = iota
	Rb
	Rc
	Rd
	Re
	Rf
	R0
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	R8
	R9

	NumRegisters = 16
)

var registerNames = [NumRegisters]string{
	"ra", "rb", "rc", "rd", "re", "rf",
	"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7", "r8", "r9",
}

func (r Register) String() string {
	if int(r) < len(registerNames) {
		return registerNames[r]
	}
	return fmt.Sprintf("reg(%d)", uint8(r))
}

// LookupRegister returns the Register named by s (case-sensitive, lowercase
// only) and whether it is a valid register name.
func LookupRegister(s string) (Register, bool) {
	for i, name := range registerNames {
		if name == s {
			return Register(i), true
		}
	}
	return 0, false
}

// Valid reports whether r names one of the 16 user-visible registers.
func (r Register) Valid() bool {
	return uint8(r) < NumRegisters
}
