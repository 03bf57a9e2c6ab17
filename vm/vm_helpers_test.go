package vm_test

import (
	"testing"

	"rvm/encoder"
	"rvm/parser"
	"rvm/plugin"
	"rvm/vm"
)

// assemble parses and encodes src, failing the test on any error. handlers
// names the plugin handlers the encoder should accept as known.
func assemble(t *testing.T, src string, handlers []string) *encoder.CompiledProgram {
	t.Helper()
	p := parser.NewParser(src, "test.s")
	program, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	compiled, err := encoder.Encode(program, handlers)
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}
	return compiled
}

// newMachine assembles src and returns a ready-to-run MachineContext backed
// by the given plugins (may be empty).
func newMachine(t *testing.T, src string, plugins ...plugin.Plugin) *vm.MachineContext {
	t.Helper()
	reg := plugin.NewRegistry(plugins...)
	compiled := assemble(t, src, reg.HandlerNames())
	return vm.NewMachineContext(compiled, reg)
}

// run assembles and runs src to completion (Halt, a plugin Quit, or pc
// running off the end of the instruction stream),
// failing the test if Run returns an error.
func run(t *testing.T, src string, plugins ...plugin.Plugin) *vm.MachineContext {
	t.Helper()
	m := newMachine(t, src, plugins...)
	if err := m.Run(); err != nil {
		t.Fatalf("run error: %v", err)
	}
	return m
}
