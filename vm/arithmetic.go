package vm

import "rvm/isa"

// execArithmetic implements Add, Sub, Mul, Div, Mod, Xor, Inc, and Dec:
// registers[reg(L)] := [L] <op> [R] for the two-operand forms, or [L] ± 1
// for Inc/Dec.
func (m *MachineContext) execArithmetic(inst isa.Instruction) error {
	dst, err := m.registerOperand(inst.Lhs, inst.Op)
	if err != nil {
		return err
	}
	lhs, err := m.valueOf(inst.Lhs)
	if err != nil {
		return err
	}

	if inst.Op == isa.Inc {
		m.Registers.Set(dst, lhs+1)
		return nil
	}
	if inst.Op == isa.Dec {
		m.Registers.Set(dst, lhs-1)
		return nil
	}

	rhs, err := m.valueOf(inst.Rhs)
	if err != nil {
		return err
	}

	switch inst.Op {
	case isa.Add:
		m.Registers.Set(dst, lhs+rhs)
	case isa.Sub:
		m.Registers.Set(dst, lhs-rhs)
	case isa.Mul:
		m.Registers.Set(dst, lhs*rhs)
	case isa.Div:
		if rhs == 0 {
			return newRuntimeError(m.PC, "division by zero")
		}
		m.Registers.Set(dst, lhs/rhs)
	case isa.Mod:
		if rhs == 0 {
			return newRuntimeError(m.PC, "modulus by zero")
		}
		m.Registers.Set(dst, lhs%rhs)
	case isa.Xor:
		m.Registers.Set(dst, lhs^rhs)
	default:
		return newRuntimeError(m.PC, "unimplemented arithmetic opcode %s", inst.Op)
	}
	return nil
}
