// Package repl is an interactive prompt for trying quill expressions
// against a context fixture, intended for entity designers iterating on
// conditions and macros before attaching them.
package repl

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kestrel-rp/quill/lang"
	"github.com/kestrel-rp/quill/log"
)

const prompt = "quill> "

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	resultStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Run starts the REPL against one engine and context fixture.
func Run(ctx context.Context, engine *lang.Engine, ectx lang.Context, logger log.Logger) error {
	logger.Trace("repl start", slog.Int("context_names", len(ectx)))

	p := tea.NewProgram(newModel(engine, ectx), tea.WithContext(ctx))

	_, err := p.Run()

	return err
}

// model is the Bubble Tea model for the REPL.
type model struct {
	input     textinput.Model
	engine    *lang.Engine
	ectx      lang.Context
	completer *completer
	history   []string
	histIdx   int
	quitting  bool
}

const defaultWidth = 80

func newModel(engine *lang.Engine, ectx lang.Context) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(prompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		input:     ti,
		engine:    engine,
		ectx:      ectx,
		completer: newCompleter(engine.Schema().Names()),
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - len(prompt) - 2

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyCtrlD:
		m.quitting = true

		return m, tea.Quit

	case tea.KeyEnter:
		return m.submit()

	case tea.KeyTab:
		m.complete()

		return m, nil

	case tea.KeyUp:
		if m.histIdx > 0 {
			m.histIdx--
			m.input.SetValue(m.history[m.histIdx])
			m.input.CursorEnd()
		}

		return m, nil

	case tea.KeyDown:
		if m.histIdx < len(m.history)-1 {
			m.histIdx++
			m.input.SetValue(m.history[m.histIdx])
			m.input.CursorEnd()
		} else {
			m.histIdx = len(m.history)
			m.input.SetValue("")
		}

		return m, nil
	}

	// Any other key resets tab-completion cycling.
	m.completer.reset()

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

// submit evaluates the current line and prints its result or error.
func (m model) submit() (tea.Model, tea.Cmd) {
	source := m.input.Value()
	if source == "" {
		return m, nil
	}

	m.history = append(m.history, source)
	m.histIdx = len(m.history)
	m.input.SetValue("")
	m.completer.reset()

	echo := promptStyle.Render(prompt) + source

	result, err := m.engine.Eval(source, m.ectx)
	if err != nil {
		return m, tea.Println(echo + "\n" + errorStyle.Render(err.Error()))
	}

	return m, tea.Println(
		echo + "\n" + resultStyle.Render(lang.DisplayString(result)),
	)
}

// complete replaces the identifier fragment at the cursor with the next
// fuzzy-matched schema name and keeps cycling on repeated presses.
func (m *model) complete() {
	line := m.input.Value()
	cursor := m.input.Position()

	replaced, newCursor, ok := m.completer.next(line, cursor)
	if !ok {
		return
	}

	m.input.SetValue(replaced)
	m.input.SetCursor(newCursor)
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	return m.input.View() + "\n" +
		hintStyle.Render("tab: complete names · up/down: history · ctrl+d: quit") + "\n"
}
