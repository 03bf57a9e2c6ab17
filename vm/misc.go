package vm

import (
	"fmt"
	"time"

	"rvm/isa"
)

// execMisc implements Mov, Print, Sleep, Nop, and Halt.
func (m *MachineContext) execMisc(inst isa.Instruction) error {
	switch inst.Op {
	case isa.Mov:
		dst, err := m.registerOperand(inst.Lhs, inst.Op)
		if err != nil {
			return err
		}
		v, err := m.valueOf(inst.Rhs)
		if err != nil {
			return err
		}
		m.Registers.Set(dst, v)
		return nil

	case isa.Print:
		v, err := m.valueOf(inst.Lhs)
		if err != nil {
			return err
		}
		m.Print(fmt.Sprintf("%d", v))
		return nil

	case isa.Sleep:
		v, err := m.valueOf(inst.Lhs)
		if err != nil {
			return err
		}
		time.Sleep(time.Duration(v) * time.Millisecond)
		return nil

	case isa.Nop:
		return nil

	case isa.Halt:
		m.Halted = true
		return nil

	default:
		return newRuntimeError(m.PC, "unimplemented opcode %s", inst.Op)
	}
}
