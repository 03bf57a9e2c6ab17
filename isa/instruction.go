package isa

// Instruction is the triple (Opcode, lhs Operand, rhs Operand). When Op is
// Plugin, PluginRef additionally carries the handler's name (pre-encode) or
// the byte address of its NUL-terminated name string in memory
// (post-encode).
type Instruction struct {
	Op        Opcode
	Lhs       Operand
	Rhs       Operand
	PluginRef LabelValue
}

// OperandCount returns how many operands this instruction was parsed with;
// for the closed opcode set it matches Op.OperandCount(), but Plugin
// instructions may carry 0, 1, or 2 operands depending on the handler.
func (i Instruction) OperandCount() int {
	count := 0
	if i.Lhs.Kind != OperandNone {
		count++
	}
	if i.Rhs.Kind != OperandNone {
		count++
	}
	return count
}
