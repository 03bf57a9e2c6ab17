package isa

import "fmt"

// Opcode is the closed arithmetic/flow instruction set, plus the open
// Plugin variant that carries a name (pre-encode) or address (post-encode)
// into the memory region holding the plugin's handler name string.
type Opcode uint8

const (
	Mov Opcode = iota
	Add
	Sub
	Mul
	Div
	Mod
	Xor
	Inc
	Dec
	Push
	Pop
	Dup
	Test
	Jmp
	Je
	Jne
	Jle
	Jge
	Jl
	Jg
	Call
	Return
	Assert
	Print
	Sleep
	Nop
	Halt
	Plugin

	numOpcodes
)

var opcodeNames = [numOpcodes]string{
	"mov", "add", "sub", "mul", "div", "mod", "xor", "inc", "dec",
	"push", "pop", "dup",
	"test", "jmp", "je", "jne", "jle", "jge", "jl", "jg", "call", "ret",
	"assert", "print", "sleep", "nop", "halt",
	"plugin",
}

func (o Opcode) String() string {
	if uint8(o) < uint8(numOpcodes) {
		return opcodeNames[o]
	}
	return fmt.Sprintf("opcode(%d)", uint8(o))
}

// LookupOpcode returns the Opcode named by the lowercased mnemonic s. "ret"
// is accepted as the mnemonic for Return; every other opcode's mnemonic is
// its String() form.
func LookupOpcode(s string) (Opcode, bool) {
	if s == "ret" {
		return Return, true
	}
	for i, name := range opcodeNames {
		if Opcode(i) == Return {
			continue // "ret" handled above; avoid also matching literal "ret" twice
		}
		if name == s {
			return Opcode(i), true
		}
	}
	return 0, false
}

// Valid reports whether o is one of the closed-set opcodes or Plugin.
func (o Opcode) Valid() bool {
	return o < numOpcodes
}

// IsPlugin reports whether o is the open Plugin variant.
func (o Opcode) IsPlugin() bool {
	return o == Plugin
}

// OperandCount returns how many operands the closed-set opcode o takes.
// Plugin instructions may take up to two operands as well; the assembler
// determines their count from the parsed operand list, not from this table.
func (o Opcode) OperandCount() int {
	switch o {
	case Nop, Halt, Return, Dup:
		return 0
	case Inc, Dec, Push, Pop, Jmp, Je, Jne, Jle, Jge, Jl, Jg, Call, Print, Sleep:
		return 1
	case Mov, Add, Sub, Mul, Div, Mod, Xor, Test, Assert:
		return 2
	default:
		return 2
	}
}
