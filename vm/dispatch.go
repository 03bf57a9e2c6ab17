package vm

import (
	"rvm/encoder"
	"rvm/isa"
)

// MaxSteps bounds Run's loop as a last-resort safety net; it is not part of
// the spec's semantics and exists only so a runaway program under test
// cannot hang the process. The bound is fixed: Run does not consult the
// max_steps value of config.Config's [execution] table.
const MaxSteps = 10_000_000

// Run executes instructions until the machine halts, a plugin calls Quit,
// pc runs off the end of the instruction stream, or a RuntimeError occurs.
func (m *MachineContext) Run() error {
	for steps := 0; !m.Halted && m.PC < m.MemoryEnd; steps++ {
		if steps >= MaxSteps {
			return newRuntimeError(m.PC, "exceeded maximum step count (%d)", MaxSteps)
		}
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Step fetches, decodes, and executes exactly one instruction. If pc has
// already run off the end of the instruction stream, it halts the machine
// normally instead of fetching: running off the end is a clean exit, not a
// fault.
func (m *MachineContext) Step() error {
	if m.PC >= m.MemoryEnd {
		m.Halted = true
		return nil
	}

	hi, lo, err := encoder.ReadInstructionWord(m.Memory, m.PC)
	if err != nil {
		return newRuntimeError(m.PC, "instruction fetch: %v", err)
	}
	inst, err := encoder.Decode(hi, lo)
	if err != nil {
		return newRuntimeError(m.PC, "instruction decode: %v", err)
	}

	if m.Plugins != nil {
		for _, p := range m.Plugins.Plugins() {
			if newPC, ok := p.HandleInstruction(m, inst, m.PC); ok {
				if m.Trace != nil {
					m.Trace.recordHook(m.PC, inst)
				}
				m.PC = newPC
				return nil
			}
		}
	}

	before := m.Registers.General
	pcBefore := m.PC
	pcJumped := false

	if inst.Op.IsPlugin() {
		if err := m.dispatchPlugin(inst); err != nil {
			return err
		}
	} else {
		pcJumped, err = m.executeBuiltin(inst)
		if err != nil {
			return err
		}
	}

	// A plugin handler may retarget pc itself via JmpToLabel or Execute;
	// either counts as having jumped regardless of what executeBuiltin
	// reported, so the +16 advance below must not also fire.
	pcJumped = pcJumped || m.PC != pcBefore

	if m.Trace != nil {
		m.Trace.record(pcBefore, inst, before, m.Registers.General)
	}

	if !pcJumped {
		m.PC += encoder.InstructionSize
	}
	return nil
}

// dispatchPlugin resolves the handler name a Plugin opcode carries (as a
// byte address into the NUL-terminated string table) and runs it against
// every plugin that backs that name, in load order. The step fails only if
// none of them ran it.
func (m *MachineContext) dispatchPlugin(inst isa.Instruction) error {
	name, err := m.readHandlerName(inst.PluginRef.Address)
	if err != nil {
		return newRuntimeError(m.PC, "plugin handler name: %v", err)
	}

	if m.Plugins == nil {
		return newRuntimeError(m.PC, "no plugin registered to handle %q", name)
	}

	ranAny := false
	for _, p := range m.Plugins.Backing(name) {
		ran, err := p.Dispatch(m, name, inst)
		if err != nil {
			return err
		}
		if ran {
			ranAny = true
		}
	}
	if !ranAny {
		return newRuntimeError(m.PC, "no plugin handles %q", name)
	}
	return nil
}

func (m *MachineContext) readHandlerName(addr uint32) (string, error) {
	end := addr
	for int(end) < len(m.Memory) && m.Memory[end] != 0 {
		end++
	}
	if int(end) >= len(m.Memory) {
		return "", newRuntimeError(m.PC, "unterminated plugin handler name at 0x%x", addr)
	}
	return string(m.Memory[addr:end]), nil
}

// executeBuiltin runs one of the closed-set opcodes. pcJumped reports
// whether the opcode already retargeted PC itself (Jmp/Je/.../Call/
// Return), in which case Step must not also advance it by 16.
func (m *MachineContext) executeBuiltin(inst isa.Instruction) (pcJumped bool, err error) {
	switch inst.Op {
	case isa.Mov, isa.Print, isa.Sleep, isa.Nop, isa.Halt:
		return false, m.execMisc(inst)
	case isa.Add, isa.Sub, isa.Mul, isa.Div, isa.Mod, isa.Xor, isa.Inc, isa.Dec:
		return false, m.execArithmetic(inst)
	case isa.Push, isa.Pop, isa.Dup:
		return false, m.execStack(inst)
	case isa.Call, isa.Return:
		return m.execCallReturn(inst)
	case isa.Test:
		return false, m.execTest(inst)
	case isa.Jmp, isa.Je, isa.Jne, isa.Jle, isa.Jge, isa.Jl, isa.Jg:
		return m.execJump(inst)
	case isa.Assert:
		return false, m.execAssert(inst)
	default:
		return false, newRuntimeError(m.PC, "unimplemented opcode %s", inst.Op)
	}
}

// registerOperand extracts a Register operand or fails with a RuntimeError
// naming the opcode that required one.
func (m *MachineContext) registerOperand(op isa.Operand, opcode isa.Opcode) (isa.Register, error) {
	if op.Kind != isa.OperandRegister {
		return 0, newRuntimeError(m.PC, "%s requires a register operand, got %s", opcode, op)
	}
	return op.Register, nil
}

// valueOf resolves an operand to its runtime value: a register's current
// contents, a literal number, or a resolved label address. Offset operands
// have no dispatch-time semantics (reserved, see isa.Offset) and are
// rejected.
func (m *MachineContext) valueOf(op isa.Operand) (uint64, error) {
	switch op.Kind {
	case isa.OperandRegister:
		return m.Registers.Get(op.Register), nil
	case isa.OperandNumber:
		return op.Number, nil
	case isa.OperandLabel:
		return uint64(op.Label.Address), nil
	default:
		return 0, newRuntimeError(m.PC, "operand %s cannot be read as a value", op)
	}
}
