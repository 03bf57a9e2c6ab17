package plugin

import "rvm/isa"

// Life is a sample plugin demonstrating the handle_<name> protocol: the
// "life" opcode sets its first operand register to 42, the answer this
// machine gives to everything.
type Life struct{}

func (Life) Name() string { return "life" }

func (Life) Handlers() []string { return []string{"life"} }

func (Life) HandleInstruction(HostCapabilities, isa.Instruction, uint32) (uint32, bool) {
	return 0, false
}

func (Life) Dispatch(host HostCapabilities, handler string, inst isa.Instruction) (bool, error) {
	if handler != "life" {
		return false, nil
	}
	if inst.Lhs.Kind != isa.OperandRegister {
		return true, &CapabilityError{Message: "life: expected a register operand"}
	}
	host.SetRegister(inst.Lhs.Register, 42)
	return true, nil
}
