package vm_test

import (
	"testing"

	"rvm/isa"
	"rvm/plugin"
)

func TestDispatch_PluginOpcodeRunsRegisteredHandler(t *testing.T) {
	m := run(t, "life ra\nhalt", plugin.Life{})
	if got := m.Registers.Get(isa.Ra); got != 42 {
		t.Errorf("got %d, want 42", got)
	}
}

// countingHook is a plugin whose HandleInstruction claims only the first
// instruction it sees and retargets pc to a fixed address, proving the dispatch
// loop skips normal execution and the +16 advance when a hook fires.
type countingHook struct {
	target uint32
	seen   int
}

func (h *countingHook) Name() string      { return "counting-hook" }
func (h *countingHook) Handlers() []string { return nil }

func (h *countingHook) HandleInstruction(_ plugin.HostCapabilities, _ isa.Instruction, _ uint32) (uint32, bool) {
	h.seen++
	if h.seen == 1 {
		return h.target, true
	}
	return 0, false
}

func (h *countingHook) Dispatch(plugin.HostCapabilities, string, isa.Instruction) (bool, error) {
	return false, nil
}

func TestDispatch_HookOverrideSkipsNormalExecutionAndAdvance(t *testing.T) {
	// The hook fires on the very first instruction and redirects pc
	// straight to "target"; "mov ra, 1" must never run.
	src := "mov ra, 1\nhalt\ntarget: mov rb, 2\nhalt"
	compiled := assemble(t, src, nil)
	hook := &countingHook{target: compiled.StartAddress + 2*16}

	m := newMachine(t, src, hook)
	if err := m.Run(); err != nil {
		t.Fatalf("run error: %v", err)
	}
	if got := m.Registers.Get(isa.Ra); got != 0 {
		t.Errorf("expected the hooked instruction to never execute, ra=%d", got)
	}
	if got := m.Registers.Get(isa.Rb); got != 2 {
		t.Errorf("expected pc redirect to land on target, rb=%d", got)
	}
	if hook.seen < 2 {
		t.Errorf("expected the hook to be consulted more than once, saw %d", hook.seen)
	}
}

func TestRun_RunningOffTheEndTerminatesNormally(t *testing.T) {
	// No halt: pc must reach memory_end and exit cleanly rather than
	// decoding the zero-filled scratch tail as an instruction.
	m := run(t, "mov ra, 1\nadd ra, ra")
	if got := m.Registers.Get(isa.Ra); got != 2 {
		t.Errorf("got ra=%d, want 2", got)
	}
	if m.PC < m.MemoryEnd {
		t.Errorf("expected pc >= memory_end, got pc=0x%x memory_end=0x%x", m.PC, m.MemoryEnd)
	}
}

func TestStep_AtMemoryEndHaltsWithoutFetching(t *testing.T) {
	m := newMachine(t, "mov ra, 1")
	m.PC = m.MemoryEnd
	if err := m.Step(); err != nil {
		t.Fatalf("step error: %v", err)
	}
	if !m.Halted {
		t.Error("expected Step at pc==memory_end to halt the machine")
	}
}

func TestRun_ExceedingMaxStepsIsRuntimeError(t *testing.T) {
	m := newMachine(t, "loop: jmp loop")
	err := m.Run()
	if err == nil {
		t.Fatal("expected an infinite loop to be caught by the step limit")
	}
}
