// Package debugger is the reference debugger collaborator: a plugin.Plugin
// that drives an interactive session off the handle_instruction hook,
// implementing the bp/dbp/set/step/x/p/r/l/q/ins/in command protocol.
package debugger

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"rvm/isa"
	"rvm/plugin"
)

// Mode selects how HandleInstruction treats the hook point: ModeStepping
// prompts for a command on every instruction, ModeRunning only prompts
// when a breakpoint is hit.
type Mode int

const (
	ModeStepping Mode = iota
	ModeRunning
)

// Debugger is a plugin.Plugin backing no opcode handlers of its own; it
// only observes every instruction through HandleInstruction.
type Debugger struct {
	Breakpoints *BreakpointManager
	History     *CommandHistory

	Mode Mode
	quit bool

	in  *bufio.Scanner
	Out io.Writer
}

// NewDebugger returns a Debugger reading commands from stdin and writing
// to stdout, starting in single-step mode.
func NewDebugger() *Debugger {
	return &Debugger{
		Breakpoints: NewBreakpointManager(),
		History:     NewCommandHistory(),
		Mode:        ModeStepping,
		in:          bufio.NewScanner(os.Stdin),
		Out:         os.Stdout,
	}
}

// SetIO redirects the debugger's command input and output, used by tests
// and the TUI front end to avoid the real stdin/stdout.
func (d *Debugger) SetIO(in io.Reader, out io.Writer) {
	d.in = bufio.NewScanner(in)
	d.Out = out
}

func (d *Debugger) Name() string       { return "debugger" }
func (d *Debugger) Handlers() []string { return nil }

// Dispatch never runs: Handlers returns none, so the dispatch loop never
// routes a Plugin opcode to it.
func (d *Debugger) Dispatch(plugin.HostCapabilities, string, isa.Instruction) (bool, error) {
	return false, nil
}

// HandleInstruction is the handle_instruction hook. It never retargets pc
// itself (ins/in do that through host.Execute/single-stepping instead), so
// it always returns ok=false; its job is deciding whether to block on a
// command prompt before the instruction runs.
func (d *Debugger) HandleInstruction(host plugin.HostCapabilities, inst isa.Instruction, pc uint32) (uint32, bool) {
	if d.quit {
		host.Quit()
		return 0, false
	}

	if bp := d.Breakpoints.GetBreakpoint(pc); bp != nil {
		d.Breakpoints.ProcessHit(pc)
		fmt.Fprintf(d.Out, "breakpoint %d hit at pc=0x%08x\n", bp.ID, pc)
		d.Mode = ModeStepping
	}

	if d.Mode != ModeStepping {
		return 0, false
	}

	for {
		fmt.Fprint(d.Out, "(rvm-dbg) ")
		if !d.in.Scan() {
			d.quit = true
			host.Quit()
			return 0, false
		}

		line := strings.TrimSpace(d.in.Text())
		resume, err := d.execute(host, inst, pc, line)
		if err != nil {
			fmt.Fprintf(d.Out, "error: %v\n", err)
			continue
		}
		if resume {
			return 0, false
		}
	}
}
