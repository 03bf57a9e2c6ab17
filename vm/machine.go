package vm

import (
	"bufio"
	"io"
	"os"
	"strings"
	"sync"

	"rvm/encoder"
	"rvm/isa"
	"rvm/plugin"
)

// DefaultScratchBudget is the default byte budget for the re-entrant
// execute() scratch region.
const DefaultScratchBudget = 64 * 1024

// MachineContext is the complete state of one running program: its
// registers, operand stack, call stack, linear memory, and the plugins
// loaded alongside it. It implements plugin.HostCapabilities, exposing
// only the narrow capability surface to loaded plugins.
type MachineContext struct {
	Registers Registers

	Stack     []uint64
	CallStack []uint32

	Memory      []byte
	BaseAddress uint32 // start_address: first byte of the code segment
	MemoryEnd   uint32 // first free byte at load time

	PC     uint32
	Halted bool

	Plugins *plugin.Registry

	Output io.Writer
	input  *bufio.Reader

	Trace *ExecutionTrace

	scratchNext   uint32
	scratchBudget uint32

	mu sync.Mutex
}

// NewMachineContext constructs a MachineContext ready to run compiled,
// starting execution at compiled.StartAddress.
func NewMachineContext(compiled *encoder.CompiledProgram, plugins *plugin.Registry) *MachineContext {
	mem := make([]byte, len(compiled.Memory))
	copy(mem, compiled.Memory)

	return &MachineContext{
		Memory:        mem,
		BaseAddress:   compiled.StartAddress,
		MemoryEnd:     compiled.MemoryEnd,
		PC:            compiled.StartAddress,
		Plugins:       plugins,
		Output:        os.Stdout,
		input:         bufio.NewReader(os.Stdin),
		scratchNext:   compiled.MemoryEnd,
		scratchBudget: DefaultScratchBudget,
	}
}

// SetInput overrides the machine's input source (used by tests and the
// debugger to feed GetInput without touching stdin).
func (m *MachineContext) SetInput(r io.Reader) {
	m.input = bufio.NewReader(r)
}

// SetOutput overrides the machine's output sink.
func (m *MachineContext) SetOutput(w io.Writer) {
	m.Output = w
}

// AllRegisters implements plugin.HostCapabilities.
func (m *MachineContext) AllRegisters() [isa.NumRegisters]uint64 {
	return m.Registers.General
}

// GetRegister implements plugin.HostCapabilities.
func (m *MachineContext) GetRegister(r isa.Register) uint64 {
	return m.Registers.Get(r)
}

// SetRegister implements plugin.HostCapabilities.
func (m *MachineContext) SetRegister(r isa.Register, v uint64) {
	m.Registers.Set(r, v)
}

// PushStack implements plugin.HostCapabilities.
func (m *MachineContext) PushStack(v uint64) {
	m.Stack = append(m.Stack, v)
}

// PopStack implements plugin.HostCapabilities.
func (m *MachineContext) PopStack() (uint64, error) {
	if len(m.Stack) == 0 {
		return 0, newRuntimeError(m.PC, "pop from empty stack")
	}
	v := m.Stack[len(m.Stack)-1]
	m.Stack = m.Stack[:len(m.Stack)-1]
	return v, nil
}

// GetInput implements plugin.HostCapabilities.
func (m *MachineContext) GetInput() (string, error) {
	line, err := m.input.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// GetLabels implements plugin.HostCapabilities by scanning the literal
// region [0, BaseAddress) for NUL-terminated strings. The byte offset of
// each string is its label's resolved address; the string itself is not
// recoverable as a label name from memory alone, so this returns the
// reverse mapping the teacher's symbol_resolver.go builds: address -> name
// is not knowable post-encode, so GetLabels instead returns name -> address
// for every string found, keyed by the string's own bytes.
func (m *MachineContext) GetLabels() map[string]uint32 {
	labels := make(map[string]uint32)
	start := uint32(0)
	for start < m.BaseAddress {
		end := start
		for end < m.BaseAddress && m.Memory[end] != 0 {
			end++
		}
		if end > start {
			labels[string(m.Memory[start:end])] = start
		}
		start = end + 1
	}
	return labels
}

// JmpToLabel implements plugin.HostCapabilities. It sets pc to the
// resolved literal-table offset unvalidated: a plugin that jumps into the
// literal region and resumes dispatch there will fetch literal bytes as an
// instruction, the same way the original VM's unvalidated jmp_to_label
// lets a caller shoot itself in the foot.
func (m *MachineContext) JmpToLabel(name string) error {
	labels := m.GetLabels()
	addr, ok := labels[name]
	if !ok {
		return &plugin.CapabilityError{Message: "jmp_to_label: no such label: " + name}
	}
	m.PC = addr
	return nil
}

// Quit implements plugin.HostCapabilities.
func (m *MachineContext) Quit() {
	m.Halted = true
}

// Print implements plugin.HostCapabilities.
func (m *MachineContext) Print(s string) {
	_, _ = io.WriteString(m.Output, s)
}

// Execute implements plugin.HostCapabilities: it appends two instruction
// slots, the injected instruction followed by a jump back to the
// resumption point, into the scratch region past MemoryEnd, then retargets
// PC to the first of them. Capped
// at scratchBudget bytes total; exceeding it is a CapabilityError rather
// than unbounded memory growth.
func (m *MachineContext) Execute(inst isa.Instruction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Jmp resolves its operand as an offset relative to BaseAddress (pc :=
	// base + [L]), so the landing instruction must encode the resumption
	// point the same way, not as an absolute address.
	resumeOffset := m.PC + encoder.InstructionSize - m.BaseAddress
	jumpBack := isa.Instruction{Op: isa.Jmp, Lhs: isa.LabelOperand(isa.Address(resumeOffset))}

	need := uint32(2 * encoder.InstructionSize)
	used := m.scratchNext - m.MemoryEnd
	if used+need > m.scratchBudget {
		return &plugin.CapabilityError{Message: "execute: scratch region budget exceeded"}
	}
	if int(m.scratchNext)+int(need) > len(m.Memory) {
		return &plugin.CapabilityError{Message: "execute: out of memory for scratch region"}
	}

	landing := m.scratchNext
	for i, ins := range []isa.Instruction{inst, jumpBack} {
		hi, lo, err := encoder.EncodeInstruction(ins)
		if err != nil {
			return &plugin.CapabilityError{Message: "execute: " + err.Error()}
		}
		offset := landing + uint32(i)*encoder.InstructionSize
		writeInstructionWord(m.Memory, offset, hi, lo)
	}
	m.scratchNext += need
	m.PC = landing
	return nil
}

func writeInstructionWord(mem []byte, addr uint32, hi, lo uint64) {
	slot := mem[addr : addr+encoder.InstructionSize]
	for i := 0; i < 8; i++ {
		slot[i] = byte(lo >> (8 * i))
	}
	for i := 0; i < 8; i++ {
		slot[8+i] = byte(hi >> (8 * i))
	}
}
