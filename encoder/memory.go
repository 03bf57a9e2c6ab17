package encoder

import "fmt"

// DefaultMemorySize is the default capacity of a Memory region: 1 MiB.
const DefaultMemorySize = 1 << 20

// InstructionSize is the fixed byte size of one encoded instruction slot.
const InstructionSize = 16

// Memory is a fixed-capacity contiguous byte array with a single
// monotonically increasing bump pointer. There is no general-purpose
// allocator and no reuse of freed space: every Push only ever grows the
// bump pointer.
type Memory struct {
	data    []byte
	pointer uint32
}

// NewMemory allocates a Memory region of the given capacity.
func NewMemory(capacity uint32) *Memory {
	return &Memory{data: make([]byte, capacity)}
}

// Bump returns the current value of the bump pointer: the offset of the
// next free byte.
func (m *Memory) Bump() uint32 {
	return m.pointer
}

// Cap returns the memory region's total capacity in bytes.
func (m *Memory) Cap() uint32 {
	return uint32(len(m.data))
}

// Bytes returns the live backing array. Callers must not retain it past a
// subsequent Push, which may still be within the pre-allocated capacity but
// should otherwise be treated as read-only.
func (m *Memory) Bytes() []byte {
	return m.data
}

// Push copies data into memory at the bump pointer with no terminator
// (used for instruction words) and returns the byte offset it was written
// at.
func (m *Memory) Push(data []byte) (uint32, error) {
	return m.push(data, false)
}

// PushSpaced copies data into memory at the bump pointer followed by a
// single zero byte (used for string literals, so a later byte-scan can
// recover the string's length) and returns the byte offset it was written
// at.
func (m *Memory) PushSpaced(data []byte) (uint32, error) {
	return m.push(data, true)
}

func (m *Memory) push(data []byte, spaced bool) (uint32, error) {
	need := uint32(len(data))
	if spaced {
		need++
	}
	if m.pointer+need > uint32(len(m.data)) {
		return 0, fmt.Errorf("memory exhausted: need %d bytes at offset 0x%x, capacity is 0x%x", need, m.pointer, len(m.data))
	}

	start := m.pointer
	copy(m.data[start:], data)
	m.pointer += uint32(len(data))
	if spaced {
		m.data[m.pointer] = 0
		m.pointer++
	}
	return start, nil
}

// ReadInstruction reads the 16-byte instruction slot at offset addr and
// returns it as two little-endian uint64 words: lo holds bits 63..0, hi
// holds bits 127..64.
func (m *Memory) ReadInstruction(addr uint32) (hi, lo uint64, err error) {
	if addr+InstructionSize > uint32(len(m.data)) {
		return 0, 0, fmt.Errorf("instruction fetch out of bounds at 0x%x", addr)
	}
	slot := m.data[addr : addr+InstructionSize]
	for i := 0; i < 8; i++ {
		lo |= uint64(slot[i]) << (8 * i)
	}
	for i := 0; i < 8; i++ {
		hi |= uint64(slot[8+i]) << (8 * i)
	}
	return hi, lo, nil
}

// ReadInstructionWord reads the 16-byte instruction slot at offset addr out
// of a raw byte slice (typically a CompiledProgram's Memory), without
// needing a Memory wrapper around it.
func ReadInstructionWord(data []byte, addr uint32) (hi, lo uint64, err error) {
	if addr+InstructionSize > uint32(len(data)) {
		return 0, 0, fmt.Errorf("instruction fetch out of bounds at 0x%x", addr)
	}
	slot := data[addr : addr+InstructionSize]
	for i := 0; i < 8; i++ {
		lo |= uint64(slot[i]) << (8 * i)
	}
	for i := 0; i < 8; i++ {
		hi |= uint64(slot[8+i]) << (8 * i)
	}
	return hi, lo, nil
}

// ReadLiteral scans forward from addr for a zero terminator and returns the
// bytes up to (not including) it.
func (m *Memory) ReadLiteral(addr uint32) ([]byte, error) {
	if addr >= uint32(len(m.data)) {
		return nil, fmt.Errorf("literal read out of bounds at 0x%x", addr)
	}
	end := addr
	for end < uint32(len(m.data)) && m.data[end] != 0 {
		end++
	}
	if end >= uint32(len(m.data)) {
		return nil, fmt.Errorf("unterminated literal at 0x%x", addr)
	}
	return m.data[addr:end], nil
}
