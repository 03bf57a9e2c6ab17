package parser

import "rvm/isa"

// Program is the parser's output: an ordered instruction stream, the table
// of label bindings, and the set of plugin handler names the source
// referenced. A bare label binds its name to Address(i), the index of the
// instruction that follows it. A LabelWithLiteral binds its name to
// Address(n) if its literal parses as an unsigned decimal, otherwise to
// Literal(s) holding the literal's string value — the encoder later pushes
// that string into memory and rewrites the binding to the resulting byte
// address. Label operands elsewhere in the program stay symbolic
// (isa.LabelLiteral, naming one of these bindings) until encoding resolves
// them.
type Program struct {
	Instructions []isa.Instruction
	Labels       map[string]isa.LabelValue
	Plugins      []string // plugin handler names referenced, in first-use order
}

// NewProgram returns an empty Program ready to be filled in by the parser.
func NewProgram() *Program {
	return &Program{
		Labels: make(map[string]isa.LabelValue),
	}
}

// addLabel records name as bound to value. Returns false if name is already
// defined (duplicate label).
func (p *Program) addLabel(name string, value isa.LabelValue) bool {
	if _, exists := p.Labels[name]; exists {
		return false
	}
	p.Labels[name] = value
	return true
}

// addInstruction appends inst to the program and returns its index.
func (p *Program) addInstruction(inst isa.Instruction) uint32 {
	idx := uint32(len(p.Instructions))
	p.Instructions = append(p.Instructions, inst)
	return idx
}

// notePlugin records name in Plugins if not already present.
func (p *Program) notePlugin(name string) {
	for _, existing := range p.Plugins {
		if existing == name {
			return
		}
	}
	p.Plugins = append(p.Plugins, name)
}
