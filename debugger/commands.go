package debugger

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"rvm/isa"
	"rvm/parser"
	"rvm/plugin"
)

// execute runs one command line. resume reports whether the instruction at
// pc should now be allowed to proceed (step/x/in/q); everything else loops
// back to another prompt.
func (d *Debugger) execute(host plugin.HostCapabilities, inst isa.Instruction, pc uint32, line string) (bool, error) {
	if line == "" {
		line = d.History.GetLast()
	}
	d.History.Add(line)

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	switch fields[0] {
	case "bp":
		return false, d.cmdBreak(fields[1:])
	case "dbp":
		return false, d.cmdDeleteBreak(fields[1:])
	case "set":
		return false, d.cmdSet(host, fields[1:])
	case "step", "s":
		d.Mode = ModeStepping
		return true, nil
	case "x":
		d.Mode = ModeRunning
		return true, nil
	case "p":
		d.cmdPrint(inst, pc)
		return false, nil
	case "r":
		d.cmdRegisters(host)
		return false, nil
	case "l":
		d.cmdLabels(host)
		return false, nil
	case "q":
		d.quit = true
		host.Quit()
		return true, nil
	case "ins":
		return false, d.cmdInline(host, strings.TrimSpace(strings.TrimPrefix(line, fields[0])))
	case "in":
		if err := d.cmdInline(host, strings.TrimSpace(strings.TrimPrefix(line, fields[0]))); err != nil {
			return false, err
		}
		d.Mode = ModeStepping
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q", fields[0])
	}
}

func (d *Debugger) cmdBreak(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: bp <address>")
	}
	addr, err := parseAddress(args[0])
	if err != nil {
		return err
	}
	bp := d.Breakpoints.AddBreakpoint(addr, false, "")
	fmt.Fprintf(d.Out, "breakpoint %d set at pc=0x%08x\n", bp.ID, addr)
	return nil
}

func (d *Debugger) cmdDeleteBreak(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: dbp <address>")
	}
	addr, err := parseAddress(args[0])
	if err != nil {
		return err
	}
	return d.Breakpoints.DeleteBreakpointAt(addr)
}

func (d *Debugger) cmdSet(host plugin.HostCapabilities, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: set <register> <value>")
	}
	reg, ok := isa.LookupRegister(args[0])
	if !ok {
		return fmt.Errorf("unknown register %q", args[0])
	}
	value, err := strconv.ParseUint(args[1], 0, 64)
	if err != nil {
		return fmt.Errorf("invalid value %q: %w", args[1], err)
	}
	host.SetRegister(reg, value)
	return nil
}

func (d *Debugger) cmdPrint(inst isa.Instruction, pc uint32) {
	fmt.Fprintf(d.Out, "0x%08x: %s %s, %s\n", pc, inst.Op, inst.Lhs, inst.Rhs)
}

func (d *Debugger) cmdRegisters(host plugin.HostCapabilities) {
	regs := host.AllRegisters()
	for r := isa.Ra; int(r) < isa.NumRegisters; r++ {
		fmt.Fprintf(d.Out, "%-3s = %d\n", r, regs[r])
	}
}

func (d *Debugger) cmdLabels(host plugin.HostCapabilities) {
	labels := host.GetLabels()
	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(d.Out, "%-20s 0x%08x\n", name, labels[name])
	}
}

// cmdInline parses src as a single assembly instruction and injects it via
// host.Execute, without advancing pc past the instruction that triggered
// the hook.
func (d *Debugger) cmdInline(host plugin.HostCapabilities, src string) error {
	p := parser.NewParser(src, "<debugger>")
	program, err := p.Parse()
	if err != nil {
		return err
	}
	if len(program.Instructions) != 1 {
		return fmt.Errorf("expected exactly one instruction, got %d", len(program.Instructions))
	}
	return host.Execute(program.Instructions[0])
}

func parseAddress(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return uint32(v), nil
}
