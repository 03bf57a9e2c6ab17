package debugger

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// TUI is a minimal tcell/tview front end over Debugger: one scrollback
// view fed by Debugger.Out and one input field feeding commands back into
// the same handle_instruction prompt loop, so the command protocol itself
// never has to know whether it is being driven by a plain terminal or the
// TUI.
type TUI struct {
	app    *tview.Application
	output *tview.TextView
	input  *tview.InputField
	lines  chan string
}

// NewTUI builds a TUI wired to dbg: dbg's output is redirected to the
// TUI's scrollback view, and dbg reads commands from the TUI's input
// field instead of stdin.
func NewTUI(dbg *Debugger) *TUI {
	t := &TUI{lines: make(chan string)}

	t.output = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.output.SetBorder(true).SetTitle(" rvm debugger ")

	t.input = tview.NewInputField().SetLabel("(rvm-dbg) ")
	t.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		line := t.input.GetText()
		t.input.SetText("")
		t.lines <- line
	})

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(t.output, 0, 1, false).
		AddItem(t.input, 1, 0, true)

	t.app = tview.NewApplication().SetRoot(layout, true).SetFocus(t.input)

	dbg.SetIO(t, writerFunc(t.write))
	return t
}

// Run starts the TUI event loop. It blocks until Stop is called.
func (t *TUI) Run() error {
	return t.app.Run()
}

// Stop tears down the TUI, called once the machine halts or quits.
func (t *TUI) Stop() {
	t.app.Stop()
}

func (t *TUI) write(p []byte) (int, error) {
	t.app.QueueUpdateDraw(func() {
		fmt.Fprint(t.output, string(p))
	})
	return len(p), nil
}

// Read implements io.Reader by blocking for one line typed into the input
// field and handing it back newline-terminated, the shape bufio.Scanner
// expects of its underlying reader.
func (t *TUI) Read(p []byte) (int, error) {
	line := <-t.lines + "\n"
	n := copy(p, line)
	return n, nil
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }
