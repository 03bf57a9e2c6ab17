package encoder_test

import (
	"strings"
	"testing"

	"rvm/encoder"
	"rvm/isa"
	"rvm/parser"
)

func mustParse(t *testing.T, src string) *parser.Program {
	t.Helper()
	p := parser.NewParser(src, "test.s")
	program, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return program
}

func TestEncode_SimpleInstructionRoundTrips(t *testing.T) {
	program := mustParse(t, "mov ra, 5")
	compiled, err := encoder.Encode(program, nil)
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}

	hi, lo, err := encoder.ReadInstructionWord(compiled.Memory, compiled.StartAddress)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}

	inst, err := encoder.Decode(hi, lo)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if inst.Op != isa.Mov {
		t.Errorf("expected Mov, got %s", inst.Op)
	}
	if inst.Lhs.Kind != isa.OperandRegister || inst.Lhs.Register != isa.Ra {
		t.Errorf("expected lhs ra, got %v", inst.Lhs)
	}
	if inst.Rhs.Kind != isa.OperandNumber || inst.Rhs.Number != 5 {
		t.Errorf("expected rhs 5, got %v", inst.Rhs)
	}
}

func TestEncode_InstructionsAreSixteenBytesApart(t *testing.T) {
	program := mustParse(t, "mov ra, 1\nmov rb, 2\nmov rc, 3")
	compiled, err := encoder.Encode(program, nil)
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}
	if compiled.MemoryEnd-compiled.StartAddress != 3*encoder.InstructionSize {
		t.Errorf("expected 3 instructions of %d bytes, got span %d", encoder.InstructionSize, compiled.MemoryEnd-compiled.StartAddress)
	}
}

func TestEncode_ForwardLabelResolvesToByteAddress(t *testing.T) {
	program := mustParse(t, "jmp end\nnop\nend: halt")
	compiled, err := encoder.Encode(program, nil)
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}

	hi, lo, err := encoder.ReadInstructionWord(compiled.Memory, compiled.StartAddress)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	inst, err := encoder.Decode(hi, lo)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if inst.Op != isa.Jmp {
		t.Fatalf("expected Jmp, got %s", inst.Op)
	}
	// Instruction labels resolve to a byte offset from StartAddress; Jmp
	// adds the machine's base address at run time.
	wantAddr := uint32(2 * encoder.InstructionSize)
	if inst.Lhs.Kind != isa.OperandLabel || inst.Lhs.Label.Kind != isa.LabelAddress || inst.Lhs.Label.Address != wantAddr {
		t.Errorf("expected label resolved to byte offset %d, got %v", wantAddr, inst.Lhs)
	}
}

func TestEncode_StringLiteralIsNulTerminatedInMemory(t *testing.T) {
	program := mustParse(t, "msg: \"hi\"\nnop")
	compiled, err := encoder.Encode(program, nil)
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}
	// The literal is allocated before any instruction, so it lives in
	// [0, StartAddress).
	found := false
	for i := uint32(0); i+3 <= compiled.StartAddress; i++ {
		if compiled.Memory[i] == 'h' && compiled.Memory[i+1] == 'i' && compiled.Memory[i+2] == 0 {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("expected NUL-terminated \"hi\" literal somewhere before address %d", compiled.StartAddress)
	}
}

func TestEncode_OversizedNumberIsHardError(t *testing.T) {
	program := mustParse(t, "mov ra, 0xFFFFFFFFF")
	_, err := encoder.Encode(program, nil)
	if err == nil {
		t.Fatal("expected encode error for a >32-bit numeric literal")
	}
}

func TestEncode_OffsetOperandIsHardError(t *testing.T) {
	program := mustParse(t, "mov ra, [rb + 4]")
	_, err := encoder.Encode(program, nil)
	if err == nil {
		t.Fatal("expected encode error: offset operands cannot be encoded")
	}
}

func TestEncode_MissingPluginHandlerIsHardError(t *testing.T) {
	program := mustParse(t, "life ra")
	_, err := encoder.Encode(program, nil)
	if err == nil {
		t.Fatal("expected encode error for unresolved plugin handler")
	}
	if !strings.Contains(err.Error(), "life") {
		t.Errorf("expected error to name the missing handler %q, got %v", "life", err)
	}
}

func TestEncode_KnownPluginHandlerSucceeds(t *testing.T) {
	program := mustParse(t, "life ra")
	compiled, err := encoder.Encode(program, []string{"life"})
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}

	hi, lo, err := encoder.ReadInstructionWord(compiled.Memory, compiled.StartAddress)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	inst, err := encoder.Decode(hi, lo)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if !inst.Op.IsPlugin() {
		t.Fatalf("expected Plugin opcode, got %s", inst.Op)
	}
	if inst.PluginRef.Kind != isa.LabelAddress {
		t.Errorf("expected plugin ref resolved to an address, got %v", inst.PluginRef)
	}
}

func TestDecode_RejectsInvalidOpcode(t *testing.T) {
	// Opcode field occupies the top 6 bits of hi; 0b111111 (63) is beyond
	// the closed set and not the Plugin value either.
	hi := uint64(0b111111) << 58
	if _, err := encoder.Decode(hi, 0); err == nil {
		t.Fatal("expected decode error for an invalid opcode")
	}
}
