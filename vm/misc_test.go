package vm_test

import (
	"bytes"
	"testing"

	"rvm/isa"
)

func TestMisc_MovCopiesValue(t *testing.T) {
	m := run(t, "mov ra, 42\nmov rb, ra\nhalt")
	if got := m.Registers.Get(isa.Rb); got != 42 {
		t.Errorf("got %d, want 42", got)
	}
}

func TestMisc_PrintWritesDecimalToOutput(t *testing.T) {
	m := newMachine(t, "mov ra, 123\nprint ra\nhalt")
	var buf bytes.Buffer
	m.SetOutput(&buf)
	if err := m.Run(); err != nil {
		t.Fatalf("run error: %v", err)
	}
	if buf.String() != "123" {
		t.Errorf("got %q, want %q", buf.String(), "123")
	}
}

func TestMisc_NopDoesNotChangeRegisters(t *testing.T) {
	m := run(t, "mov ra, 1\nnop\nhalt")
	if got := m.Registers.Get(isa.Ra); got != 1 {
		t.Errorf("got %d, want 1", got)
	}
}

func TestMisc_HaltStopsTheMachine(t *testing.T) {
	m := run(t, "halt\nmov ra, 99")
	if !m.Halted {
		t.Error("expected machine to be halted")
	}
	if got := m.Registers.Get(isa.Ra); got != 0 {
		t.Errorf("expected instruction after halt to never run, ra=%d", got)
	}
}
