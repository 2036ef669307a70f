package debugger

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// TUI is the terminal inspector, adapted from the teacher's TUI: the
// panel/layout/key-binding shape is kept, but every panel renders a
// finished code buffer instead of a live emulation (no Source/Stack
// views, no step/continue commands — there is nothing running).
type TUI struct {
	Debugger *Debugger
	App      *tview.Application
	Pages    *tview.Pages

	MainLayout *tview.Flex
	LeftPanel  *tview.Flex
	RightPanel *tview.Flex

	DisassemblyView *tview.TextView
	LiteralPoolView *tview.TextView
	RegisterView    *tview.TextView
	OutputView      *tview.TextView
	CommandInput    *tview.InputField
}

// NewTUI builds an inspector bound to d. Call Run to start it.
func NewTUI(d *Debugger) *TUI {
	t := &TUI{
		Debugger: d,
		App:      tview.NewApplication(),
	}
	t.initializeViews()
	t.buildLayout()
	t.setupKeyBindings()
	return t
}

func (t *TUI) initializeViews() {
	t.DisassemblyView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.DisassemblyView.SetBorder(true).SetTitle(" Disassembly ")

	t.LiteralPoolView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.LiteralPoolView.SetBorder(true).SetTitle(" Literal Pool ")

	t.RegisterView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	t.RegisterView.SetBorder(true).SetTitle(" Register Mirror ")

	t.OutputView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().
		SetLabel("> ").
		SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
}

func (t *TUI) buildLayout() {
	t.LeftPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.DisassemblyView, 0, 3, false).
		AddItem(t.LiteralPoolView, 0, 1, false)

	t.RightPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.RegisterView, 0, 1, false)

	mainContent := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(t.LeftPanel, 0, 3, false).
		AddItem(t.RightPanel, 0, 1, false)

	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 4, false).
		AddItem(t.OutputView, 6, 0, false).
		AddItem(t.CommandInput, 3, 0, true)

	t.Pages = tview.NewPages().
		AddPage("main", t.MainLayout, true, true)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			t.RefreshAll()
			return nil
		case tcell.KeyPgDn:
			t.Debugger.Cursor += 16
			t.RefreshAll()
			return nil
		case tcell.KeyPgUp:
			t.Debugger.Cursor -= 16
			if t.Debugger.Cursor < 0 {
				t.Debugger.Cursor = 0
			}
			t.RefreshAll()
			return nil
		}
		return event
	})
}

func (t *TUI) handleCommand(key tcell.Key) {
	if key != tcell.KeyEnter {
		return
	}
	cmd := strings.TrimSpace(t.CommandInput.GetText())
	t.CommandInput.SetText("")
	if cmd == "" {
		return
	}
	t.executeCommand(cmd)
}

// executeCommand supports a small command set: "goto <word-index>" and
// "quit"; everything else is treated as a search for the first word
// matching the given hex value.
func (t *TUI) executeCommand(cmd string) {
	fields := strings.Fields(cmd)
	switch fields[0] {
	case "quit", "q":
		t.App.Stop()
		return
	case "goto", "g":
		if len(fields) != 2 {
			t.WriteOutput("[red]usage: goto <word-index>[white]\n")
			return
		}
		var idx int
		if _, err := fmt.Sscanf(fields[1], "%d", &idx); err != nil {
			t.WriteOutput(fmt.Sprintf("[red]bad index: %v[white]\n", err))
			return
		}
		t.Debugger.Cursor = idx
	default:
		var v uint32
		if _, err := fmt.Sscanf(strings.TrimPrefix(fields[0], "0x"), "%x", &v); err != nil {
			t.WriteOutput(fmt.Sprintf("[red]unknown command: %s[white]\n", fields[0]))
			return
		}
		found := -1
		for i := 0; i < t.Debugger.WordCount() && found < 0; i++ {
			if t.Debugger.WordAt(i) == v {
				found = i
			}
		}
		if found < 0 {
			t.WriteOutput(fmt.Sprintf("[red]no word %08x in the buffer[white]\n", v))
			return
		}
		t.Debugger.Cursor = found
	}
	t.RefreshAll()
}

func (t *TUI) WriteOutput(text string) {
	_, _ = t.OutputView.Write([]byte(text))
	t.OutputView.ScrollToEnd()
}

func (t *TUI) RefreshAll() {
	t.updateDisassemblyView()
	t.updateLiteralPoolView()
	t.updateRegisterView()
	t.App.Draw()
}

func (t *TUI) updateDisassemblyView() {
	t.DisassemblyView.Clear()
	count := t.Debugger.WordCount()
	start := t.Debugger.Cursor
	if start < 0 {
		start = 0
	}
	if start > count {
		start = count
	}
	end := start + 32
	if end > count {
		end = count
	}
	var b strings.Builder
	for i := start; i < end; i++ {
		word := t.Debugger.WordAt(i)
		marker := "  "
		if i == t.Debugger.Cursor {
			marker = "[yellow]->[white] "
		}
		fmt.Fprintf(&b, "%s%04d  %08x  %s\n", marker, i, word, Disassemble(word))
	}
	t.DisassemblyView.SetText(b.String())
}

func (t *TUI) updateLiteralPoolView() {
	t.LiteralPoolView.Clear()
	if t.Debugger.Pool == nil {
		t.LiteralPoolView.SetText("[yellow]no pool attached[white]")
		return
	}
	var b strings.Builder
	for i, v := range t.Debugger.Pool.PendingValues() {
		fmt.Fprintf(&b, "[%d] %#08x\n", i, v)
	}
	t.LiteralPoolView.SetText(b.String())
}

func (t *TUI) updateRegisterView() {
	t.RegisterView.Clear()
	names := make([]string, 0, len(t.Debugger.RegMirror))
	for name := range t.Debugger.RegMirror {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%-4s %#08x\n", name, t.Debugger.RegMirror[name])
	}
	t.RegisterView.SetText(b.String())
}

// Run starts the inspector, blocking until the user quits.
func (t *TUI) Run() error {
	t.RefreshAll()
	return t.App.SetRoot(t.Pages, true).SetFocus(t.CommandInput).Run()
}
