// Package plugin defines the extension boundary between the dispatch loop
// and in-process extension code: a Plugin only ever sees HostCapabilities,
// never the concrete machine it is extending.
package plugin

import "rvm/isa"

// HostCapabilities is the narrow surface the dispatch loop exposes to a
// Plugin. A Plugin must never be handed anything but this interface.
type HostCapabilities interface {
	// AllRegisters returns a snapshot of every general-purpose register,
	// indexed by isa.Register.
	AllRegisters() [isa.NumRegisters]uint64
	// GetRegister returns the current value of r.
	GetRegister(r isa.Register) uint64
	// SetRegister stores v into r.
	SetRegister(r isa.Register, v uint64)
	// PushStack pushes v onto the operand stack.
	PushStack(v uint64)
	// PopStack pops and returns the top of the operand stack, or an error
	// if it is empty.
	PopStack() (uint64, error)
	// GetInput reads the next line from the machine's input source.
	GetInput() (string, error)
	// JmpToLabel resolves name against the memory-scanned label table and
	// sets the program counter to it, unvalidated. Fails only if no label
	// named name is found.
	JmpToLabel(name string) error
	// GetLabels reconstructs the label table by scanning the memory region
	// before the code segment for NUL-terminated strings.
	GetLabels() map[string]uint32
	// Quit halts the machine after the current step completes.
	Quit()
	// Print writes s to the machine's configured output.
	Print(s string)
	// Execute injects inst for immediate re-entrant execution, appending it
	// (followed by a return jump) into a capped scratch region.
	Execute(inst isa.Instruction) error
}

// Plugin is an extension that can back one or more Opcode.Plugin handlers
// and optionally observe every instruction before it executes.
type Plugin interface {
	// Name identifies the plugin for -plugin CLI flags and config files.
	Name() string
	// Handlers lists the handler names this plugin backs (the part of a
	// Plugin opcode's mnemonic after "handle_" is never used directly; the
	// mnemonic itself, e.g. "life", is matched verbatim against this list).
	Handlers() []string
	// HandleInstruction is the pre-execution hook broadcast to every
	// loaded plugin before each instruction (built-in or Plugin-opcode)
	// runs. Returning ok=true with a newPC reassigns the program counter
	// instead of falling through to the normal +16 advance.
	HandleInstruction(host HostCapabilities, inst isa.Instruction, pc uint32) (newPC uint32, ok bool)
	// Dispatch runs handler against inst's operands. ran is false if this
	// plugin does not back handler; the dispatch loop tries every loaded
	// plugin whose Handlers lists handler, in load order, and fails only if
	// none of them ran it.
	Dispatch(host HostCapabilities, handler string, inst isa.Instruction) (ran bool, err error)
}

// Error is a PluginError: a plugin-reported failure, fatal to the step that
// produced it. The wrapped error is the plugin's own, unmodified.
type Error struct {
	Plugin  string
	Handler string
	Err     error
}

func (e *Error) Error() string {
	return e.Plugin + ": " + e.Handler + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CapabilityError reports a HostCapabilities call that could not be
// completed (e.g. a scratch-region budget exceeded, or a jmp_to_label name
// with no matching label).
type CapabilityError struct {
	Message string
}

func (e *CapabilityError) Error() string {
	return e.Message
}
