// Command rvmgui is a minimal desktop front end over the rvm virtual
// machine: a file picker for a compiled bytecode blob, a register panel,
// and step/run/reset buttons. It carries no VM semantics of its own and
// drives a single vm.MachineContext on the GUI's own goroutine.
package main

import (
	"fmt"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"rvm/bytecode"
	"rvm/isa"
	"rvm/plugin"
	"rvm/vm"
)

type gui struct {
	app    fyne.App
	window fyne.Window

	machine *vm.MachineContext

	registers *widget.TextGrid
	output    *widget.TextGrid
	status    *widget.Label

	outputMu  sync.Mutex
	outputBuf strings.Builder
}

func main() {
	g := &gui{app: app.New()}
	g.window = g.app.NewWindow("rvm")

	g.registers = widget.NewTextGrid()
	g.output = widget.NewTextGrid()
	g.status = widget.NewLabel("no program loaded")
	g.updateRegisters()

	openButton := widget.NewButton("Open...", g.openProgram)
	stepButton := widget.NewButton("Step", g.step)
	runButton := widget.NewButton("Run", g.run)
	resetButton := widget.NewButton("Reset", g.reset)

	toolbar := container.NewHBox(openButton, stepButton, runButton, resetButton)

	layout := container.NewBorder(
		container.NewVBox(toolbar, g.status),
		nil, nil, nil,
		container.NewHSplit(
			container.NewScroll(g.registers),
			container.NewScroll(g.output),
		),
	)

	g.window.SetContent(layout)
	g.window.Resize(fyne.NewSize(720, 480))
	g.window.ShowAndRun()
}

func (g *gui) openProgram() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, g.window)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		compiled, err := bytecode.Read(reader)
		if err != nil {
			dialog.ShowError(err, g.window)
			return
		}

		g.machine = vm.NewMachineContext(compiled, plugin.NewRegistry())
		g.machine.SetOutput(newGUIWriter(g))
		g.status.SetText(fmt.Sprintf("loaded %s", reader.URI().Name()))
		g.updateRegisters()
	}, g.window)
}

func (g *gui) step() {
	if g.machine == nil {
		dialog.ShowInformation("rvm", "open a program first", g.window)
		return
	}
	if g.machine.Halted {
		g.status.SetText("halted")
		return
	}
	if err := g.machine.Step(); err != nil {
		g.status.SetText(err.Error())
	}
	g.updateRegisters()
}

func (g *gui) run() {
	if g.machine == nil {
		dialog.ShowInformation("rvm", "open a program first", g.window)
		return
	}
	if err := g.machine.Run(); err != nil {
		g.status.SetText(err.Error())
	} else {
		g.status.SetText("halted")
	}
	g.updateRegisters()
}

func (g *gui) reset() {
	g.machine = nil
	g.status.SetText("no program loaded")
	g.outputMu.Lock()
	g.outputBuf.Reset()
	g.outputMu.Unlock()
	g.output.SetText("")
	g.updateRegisters()
}

func (g *gui) updateRegisters() {
	if g.machine == nil {
		g.registers.SetText("(no program loaded)")
		return
	}
	var text string
	regs := g.machine.AllRegisters()
	for r := isa.Ra; int(r) < isa.NumRegisters; r++ {
		text += fmt.Sprintf("%-3s = %d\n", r, regs[r])
	}
	text += fmt.Sprintf("pc   = 0x%08x\n", g.machine.PC)
	g.registers.SetText(text)
}

// guiWriter redirects machine Print output into the GUI's output panel.
type guiWriter struct {
	g *gui
}

func newGUIWriter(g *gui) *guiWriter { return &guiWriter{g: g} }

func (w *guiWriter) Write(p []byte) (int, error) {
	w.g.outputMu.Lock()
	w.g.outputBuf.Write(p)
	text := w.g.outputBuf.String()
	w.g.outputMu.Unlock()

	w.g.output.SetText(text)
	return len(p), nil
}
