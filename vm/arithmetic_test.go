package vm_test

import (
	"testing"

	"rvm/isa"
)

func TestArithmetic_AddSubMulXor(t *testing.T) {
	m := run(t, `
mov ra, 10
mov rb, 3
add ra, rb
mov rc, 10
sub rc, rb
mov rd, 6
mul rd, rb
mov re, 0xFF
xor re, rb
halt
`)
	if got := m.Registers.Get(isa.Ra); got != 13 {
		t.Errorf("add: got %d, want 13", got)
	}
	if got := m.Registers.Get(isa.Rc); got != 7 {
		t.Errorf("sub: got %d, want 7", got)
	}
	if got := m.Registers.Get(isa.Rd); got != 18 {
		t.Errorf("mul: got %d, want 18", got)
	}
	if got := m.Registers.Get(isa.Re); got != 0xFF^3 {
		t.Errorf("xor: got %d, want %d", got, 0xFF^3)
	}
}

func TestArithmetic_DivAndMod(t *testing.T) {
	m := run(t, `
mov ra, 17
mov rb, 5
mov rc, 17
mov rd, 5
div ra, rb
mod rc, rd
halt
`)
	if got := m.Registers.Get(isa.Ra); got != 3 {
		t.Errorf("div: got %d, want 3", got)
	}
	if got := m.Registers.Get(isa.Rc); got != 2 {
		t.Errorf("mod: got %d, want 2", got)
	}
}

func TestArithmetic_DivisionByZeroIsRuntimeError(t *testing.T) {
	m := newMachine(t, `
mov ra, 1
mov rb, 0
div ra, rb
halt
`)
	err := m.Run()
	if err == nil {
		t.Fatal("expected a runtime error for division by zero")
	}
}

func TestArithmetic_ModulusByZeroIsRuntimeError(t *testing.T) {
	m := newMachine(t, `
mov ra, 1
mov rb, 0
mod ra, rb
halt
`)
	if err := m.Run(); err == nil {
		t.Fatal("expected a runtime error for modulus by zero")
	}
}

func TestArithmetic_IncDec(t *testing.T) {
	m := run(t, `
mov ra, 5
inc ra
mov rb, 5
dec rb
halt
`)
	if got := m.Registers.Get(isa.Ra); got != 6 {
		t.Errorf("inc: got %d, want 6", got)
	}
	if got := m.Registers.Get(isa.Rb); got != 4 {
		t.Errorf("dec: got %d, want 4", got)
	}
}
