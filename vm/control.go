package vm

import "rvm/isa"

// execTest implements Test: reset flags, then set Equal/Greater/Less from
// comparing [L] against [R].
func (m *MachineContext) execTest(inst isa.Instruction) error {
	lhs, err := m.valueOf(inst.Lhs)
	if err != nil {
		return err
	}
	rhs, err := m.valueOf(inst.Rhs)
	if err != nil {
		return err
	}
	m.Registers.SetFlagsFromCompare(lhs, rhs)
	return nil
}

// execAssert behaves as Test, then fails the run if the equals flag is
// unset; otherwise it resets the flags.
func (m *MachineContext) execAssert(inst isa.Instruction) error {
	if err := m.execTest(inst); err != nil {
		return err
	}
	if !m.Registers.Equal {
		return newRuntimeError(m.PC, "assertion failed")
	}
	m.Registers.Equal = false
	m.Registers.Greater = false
	m.Registers.Less = false
	return nil
}

// execJump implements Jmp and its six conditional variants. All of them
// reassign pc themselves when taken, so the dispatch loop must not also
// advance it; an untaken conditional jump falls through to the normal +16
// advance (pcJumped=false).
func (m *MachineContext) execJump(inst isa.Instruction) (pcJumped bool, err error) {
	taken := false
	switch inst.Op {
	case isa.Jmp:
		taken = true
	case isa.Je:
		taken = m.Registers.Equal
	case isa.Jne:
		taken = !m.Registers.Equal
	case isa.Jle:
		taken = m.Registers.Equal || m.Registers.Less
	case isa.Jge:
		taken = m.Registers.Equal || m.Registers.Greater
	case isa.Jl:
		taken = m.Registers.Less
	case isa.Jg:
		taken = m.Registers.Greater
	default:
		return false, newRuntimeError(m.PC, "unimplemented jump opcode %s", inst.Op)
	}
	if !taken {
		return false, nil
	}

	target, err := m.valueOf(inst.Lhs)
	if err != nil {
		return false, err
	}
	m.PC = m.BaseAddress + uint32(target)
	return true, nil
}
