package vm

import (
	"rvm/encoder"
	"rvm/isa"
)

// execStack implements Push, Pop, and Dup against the operand stack.
func (m *MachineContext) execStack(inst isa.Instruction) error {
	switch inst.Op {
	case isa.Push:
		v, err := m.valueOf(inst.Lhs)
		if err != nil {
			return err
		}
		m.Stack = append(m.Stack, v)
		return nil

	case isa.Pop:
		dst, err := m.registerOperand(inst.Lhs, inst.Op)
		if err != nil {
			return err
		}
		v, err := m.PopStack()
		if err != nil {
			return err
		}
		m.Registers.Set(dst, v)
		return nil

	case isa.Dup:
		if len(m.Stack) == 0 {
			return newRuntimeError(m.PC, "dup on empty stack")
		}
		m.Stack = append(m.Stack, m.Stack[len(m.Stack)-1])
		return nil

	default:
		return newRuntimeError(m.PC, "unimplemented stack opcode %s", inst.Op)
	}
}

// execCallReturn implements Call and Return. Both reassign pc themselves,
// so the dispatch loop must not also advance it by one instruction slot.
func (m *MachineContext) execCallReturn(inst isa.Instruction) (pcJumped bool, err error) {
	switch inst.Op {
	case isa.Call:
		target, err := m.valueOf(inst.Lhs)
		if err != nil {
			return false, err
		}
		m.CallStack = append(m.CallStack, m.PC+encoder.InstructionSize)
		m.PC = m.BaseAddress + uint32(target)
		return true, nil

	case isa.Return:
		if len(m.CallStack) == 0 {
			return false, newRuntimeError(m.PC, "return with empty call stack")
		}
		ret := m.CallStack[len(m.CallStack)-1]
		m.CallStack = m.CallStack[:len(m.CallStack)-1]
		m.PC = ret
		return true, nil

	default:
		return false, newRuntimeError(m.PC, "unimplemented opcode %s", inst.Op)
	}
}
