package encoder

import (
	"fmt"
	"sort"
	"strings"

	"rvm/isa"
	"rvm/parser"
)

// operandTag is the 2-bit wire-format tag for an operand. Only four values
// fit in 2 bits, so only four of isa's five OperandKind values have a slot:
// None, Register, Number, and Label. Offset has no wire representation — an
// instruction carrying one is rejected at encode time rather than silently
// colliding with another tag.
type operandTag uint64

const (
	tagNone operandTag = iota
	tagRegister
	tagNumber
	tagLabel
)

// CompiledProgram is the output of Encode: a linear memory region holding
// every literal string, plugin handler name, and instruction word the
// program needs, ready to be executed or serialized.
type CompiledProgram struct {
	// StartAddress is the byte offset of the first instruction.
	StartAddress uint32
	// MemoryEnd is the offset of the first free byte.
	MemoryEnd uint32
	// Memory is the linear backing array (length equal to the Memory's
	// capacity, not MemoryEnd; bytes at or beyond MemoryEnd are zero).
	Memory []byte
	// Plugins is the set of plugin handler names the program references,
	// in first-use order.
	Plugins []string
}

// Encode compiles a parsed Program into a CompiledProgram. knownPluginHandlers
// lists every handler name exposed by the plugins that will be loaded at
// run time; every Plugin opcode in program must resolve to one of them, or
// Encode fails listing every handler that does not.
func Encode(program *parser.Program, knownPluginHandlers []string) (*CompiledProgram, error) {
	if err := checkPluginHandlers(program, knownPluginHandlers); err != nil {
		return nil, err
	}

	mem := NewMemory(DefaultMemorySize)

	resolved := make(map[string]uint32, len(program.Labels))
	for name, value := range program.Labels {
		switch value.Kind {
		case isa.LabelLiteral:
			addr, err := mem.PushSpaced([]byte(value.Literal))
			if err != nil {
				return nil, WrapError(fmt.Sprintf("allocating literal for label %q", name), err)
			}
			resolved[name] = addr
		case isa.LabelAddress:
			resolved[name] = value.Address * InstructionSize
		}
	}

	pluginAddrs := make(map[string]uint32, len(program.Plugins))
	for _, name := range program.Plugins {
		addr, err := mem.PushSpaced([]byte(name))
		if err != nil {
			return nil, WrapError(fmt.Sprintf("allocating plugin handler name %q", name), err)
		}
		pluginAddrs[name] = addr
	}

	startAddress := mem.Bump()

	for i, inst := range program.Instructions {
		hi, lo, err := encodeInstruction(inst, resolved, pluginAddrs)
		if err != nil {
			return nil, WrapError(fmt.Sprintf("encoding instruction %d", i), err)
		}
		word := marshalWord(hi, lo)
		if _, err := mem.Push(word); err != nil {
			return nil, WrapError(fmt.Sprintf("emitting instruction %d", i), err)
		}
	}

	return &CompiledProgram{
		StartAddress: startAddress,
		MemoryEnd:    mem.Bump(),
		Memory:       mem.Bytes(),
		Plugins:      program.Plugins,
	}, nil
}

func checkPluginHandlers(program *parser.Program, knownPluginHandlers []string) error {
	known := make(map[string]bool, len(knownPluginHandlers))
	for _, h := range knownPluginHandlers {
		known[h] = true
	}

	var missing []string
	seen := make(map[string]bool)
	for _, inst := range program.Instructions {
		if !inst.Op.IsPlugin() {
			continue
		}
		name := inst.PluginRef.Literal
		if known[name] || seen[name] {
			continue
		}
		seen[name] = true
		missing = append(missing, name)
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return NewError(fmt.Sprintf("no registered plugin handles: %s", strings.Join(missing, ", ")))
}

// EncodeInstruction packs a single already-resolved instruction (no
// Literal-kind label operands, since there is no label table to resolve
// them against) into its 128-bit wire form. Used by the plugin host's
// re-entrant Execute capability to inject instructions built at run time.
func EncodeInstruction(inst isa.Instruction) (hi, lo uint64, err error) {
	return encodeInstruction(inst, nil, nil)
}

// encodeInstruction packs one instruction into its 128-bit wire form,
// returned as two uint64 words: hi holds bits 127..64, lo holds bits 63..0.
func encodeInstruction(inst isa.Instruction, labels map[string]uint32, pluginAddrs map[string]uint32) (hi, lo uint64, err error) {
	lhsTag, lhsPayload, err := encodeOperand(inst.Lhs, labels)
	if err != nil {
		return 0, 0, fmt.Errorf("lhs operand: %w", err)
	}
	rhsTag, rhsPayload, err := encodeOperand(inst.Rhs, labels)
	if err != nil {
		return 0, 0, fmt.Errorf("rhs operand: %w", err)
	}

	var pluginAddr uint32
	if inst.Op.IsPlugin() {
		addr, ok := pluginAddrs[inst.PluginRef.Literal]
		if !ok {
			return 0, 0, fmt.Errorf("no allocated handler name for plugin %q", inst.PluginRef.Literal)
		}
		pluginAddr = addr
	}

	operandCount := uint64(inst.OperandCount())

	hi = uint64(inst.Op) << 58
	hi |= operandCount << 56
	hi |= uint64(lhsTag) << 54
	hi |= uint64(lhsPayload) << 22
	hi |= uint64(rhsTag) << 20
	hi |= uint64(rhsPayload>>12) & 0xFFFFF // high 20 bits of the 32-bit rhs payload

	lo = (uint64(rhsPayload) & 0xFFF) << 52 // low 12 bits of the 32-bit rhs payload
	lo |= uint64(pluginAddr) << 20

	return hi, lo, nil
}

// encodeOperand returns the 2-bit wire tag and 32-bit payload for operand.
func encodeOperand(op isa.Operand, labels map[string]uint32) (operandTag, uint32, error) {
	switch op.Kind {
	case isa.OperandNone:
		return tagNone, 0, nil
	case isa.OperandRegister:
		return tagRegister, uint32(op.Register), nil
	case isa.OperandNumber:
		if op.Number > 0xFFFFFFFF {
			return 0, 0, fmt.Errorf("numeric literal %d does not fit in 32 bits", op.Number)
		}
		return tagNumber, uint32(op.Number), nil
	case isa.OperandLabel:
		switch op.Label.Kind {
		case isa.LabelAddress:
			return tagLabel, op.Label.Address, nil
		case isa.LabelLiteral:
			addr, ok := labels[op.Label.Literal]
			if !ok {
				return 0, 0, fmt.Errorf("unresolved label %q", op.Label.Literal)
			}
			return tagLabel, addr, nil
		}
		return 0, 0, fmt.Errorf("invalid label operand")
	case isa.OperandOffset:
		return 0, 0, fmt.Errorf("offset operands have no wire-format representation and cannot be encoded")
	default:
		return 0, 0, fmt.Errorf("invalid operand kind %d", op.Kind)
	}
}

// marshalWord serializes a 128-bit instruction (hi, lo) into its 16-byte
// little-endian memory form: bytes 0..8 are lo, bytes 8..16 are hi.
func marshalWord(hi, lo uint64) []byte {
	buf := make([]byte, InstructionSize)
	for i := 0; i < 8; i++ {
		buf[i] = byte(lo >> (8 * i))
	}
	for i := 0; i < 8; i++ {
		buf[8+i] = byte(hi >> (8 * i))
	}
	return buf
}

// Decode reconstructs an Instruction from its 128-bit wire form. Label
// operands and Plugin opcodes are always decoded as Address-valued, since
// by the time a program is in wire form every literal name has already been
// resolved to a byte address.
func Decode(hi, lo uint64) (isa.Instruction, error) {
	op := isa.Opcode(hi >> 58)
	if !op.Valid() && !op.IsPlugin() {
		return isa.Instruction{}, NewError(fmt.Sprintf("invalid opcode %d", uint8(op)))
	}

	lhsTag := operandTag((hi >> 54) & 0b11)
	lhsPayload := uint32((hi >> 22) & 0xFFFFFFFF)

	rhsTag := operandTag((hi >> 20) & 0b11)
	rhsPayload := uint32((hi&0xFFFFF)<<12) | uint32((lo>>52)&0xFFF)

	pluginAddr := uint32((lo >> 20) & 0xFFFFFFFF)

	inst := isa.Instruction{
		Op:  op,
		Lhs: decodeOperand(lhsTag, lhsPayload),
		Rhs: decodeOperand(rhsTag, rhsPayload),
	}
	if op.IsPlugin() {
		inst.PluginRef = isa.Address(pluginAddr)
	}
	return inst, nil
}

func decodeOperand(tag operandTag, payload uint32) isa.Operand {
	switch tag {
	case tagRegister:
		return isa.RegisterOperand(isa.Register(payload))
	case tagNumber:
		return isa.NumberOperand(uint64(payload))
	case tagLabel:
		return isa.LabelOperand(isa.Address(payload))
	default:
		return isa.NoneOperand
	}
}
