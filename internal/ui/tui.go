// Package ui provides the interactive terminal interface.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tasksync/internal/output"
	"tasksync/internal/service"
	"tasksync/internal/store"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	doneStyle     = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	footerStyle   = lipgloss.NewStyle().Faint(true)
	inputStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	pendingMarker = "…"
)

// Run starts the TUI over st and blocks until the user quits or ctx ends.
func Run(ctx context.Context, st *store.Store) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("ui requires a TTY")
	}

	model := NewModel(ctx, st)
	defer model.Close()

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

// Model is the Bubble Tea model of the task list.
type Model struct {
	ctx         context.Context
	st          *store.Store
	feed        *stateFeed
	unsubscribe func()

	state    store.State
	pending  map[string]bool
	cursor   int
	adding   bool
	input    string
	showHelp bool
	opErr    string
}

type stateMsg store.State

type opDoneMsg struct {
	err error
}

// NewModel subscribes to st. Call Close when done with the model.
func NewModel(ctx context.Context, st *store.Store) *Model {
	feed := newStateFeed()
	m := &Model{
		ctx:     ctx,
		st:      st,
		feed:    feed,
		pending: make(map[string]bool),
	}
	m.unsubscribe = st.Subscribe(feed.push)
	return m
}

// Close stops the store subscription.
func (m *Model) Close() {
	m.unsubscribe()
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(waitForState(m.feed), m.load())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.adding {
			return m.updateInput(msg)
		}
		return m.updateList(msg)
	case stateMsg:
		m.setState(store.State(msg))
		return m, waitForState(m.feed)
	case opDoneMsg:
		m.opErr = ""
		if msg.err != nil {
			m.opErr = msg.err.Error()
		}
		m.refreshPending()
		return m, nil
	}
	return m, nil
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "j", "down":
		if m.cursor < len(m.state.Tasks)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case " ", "space", "x":
		if task, ok := m.selected(); ok {
			m.pending[task.ID] = true
			return m, m.run(func(ctx context.Context) error {
				return m.st.ToggleTask(ctx, task.ID, task.IsCompleted)
			})
		}
	case "d":
		if task, ok := m.selected(); ok {
			m.pending[task.ID] = true
			return m, m.run(func(ctx context.Context) error {
				return m.st.DeleteTask(ctx, task.ID)
			})
		}
	case "a":
		m.adding = true
		m.input = ""
	case "r":
		return m, m.load()
	case "?", "h":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.adding = false
		m.input = ""
	case tea.KeyEnter:
		title := strings.TrimSpace(m.input)
		m.adding = false
		m.input = ""
		if title == "" {
			return m, nil
		}
		return m, m.run(func(ctx context.Context) error {
			_, err := m.st.AddTask(ctx, title)
			return err
		})
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
	return m, nil
}

func (m *Model) View() string {
	var b strings.Builder
	writeTitle(&b, m.state)

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b)
		return b.String()
	}

	if m.state.Error != "" {
		b.WriteString(errorStyle.Render("Error loading tasks: "+m.state.Error) + "\n\n")
	}
	if m.opErr != "" {
		b.WriteString(errorStyle.Render("error: "+m.opErr) + "\n\n")
	}

	if len(m.state.Tasks) == 0 && !m.state.Loading {
		b.WriteString("  No tasks.\n")
	}
	for i, task := range m.state.Tasks {
		b.WriteString(m.formatTask(i, task))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.adding {
		b.WriteString(inputStyle.Render("New task: ") + m.input + "█\n\n")
	}
	writeFooter(&b)
	return b.String()
}

// Cursor returns the index of the selected task.
func (m *Model) Cursor() int {
	return m.cursor
}

// State returns the last state the model received.
func (m *Model) State() store.State {
	return m.state
}

func (m *Model) setState(st store.State) {
	m.state = st
	if m.cursor >= len(st.Tasks) {
		m.cursor = max(len(st.Tasks)-1, 0)
	}
	m.refreshPending()
}

// refreshPending marks the tasks with a mutation still in flight.
func (m *Model) refreshPending() {
	m.pending = make(map[string]bool)
	for _, mut := range m.st.Pending() {
		m.pending[mut.TaskID] = true
	}
}

func (m *Model) selected() (service.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.state.Tasks) {
		return service.Task{}, false
	}
	return m.state.Tasks[m.cursor], true
}

func (m *Model) load() tea.Cmd {
	return m.run(func(ctx context.Context) error {
		// Load failures are rendered from State.Error.
		m.st.LoadTasks(ctx)
		return nil
	})
}

// run performs a store operation off the update loop.
func (m *Model) run(op func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{err: op(ctx)}
	}
}

func (m *Model) formatTask(i int, task service.Task) string {
	cursor := "  "
	if i == m.cursor {
		cursor = cursorStyle.Render("> ")
	}
	title := output.Title(task.Title)
	if task.IsCompleted {
		title = doneStyle.Render(title)
	}
	line := fmt.Sprintf("%s%s %s", cursor, output.Checkbox(task.IsCompleted), title)
	if m.pending[task.ID] {
		line += " " + pendingMarker
	}
	return line
}

func writeTitle(b *strings.Builder, st store.State) {
	title := "tasksync"
	done := 0
	for _, t := range st.Tasks {
		if t.IsCompleted {
			done++
		}
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString(fmt.Sprintf("  %d/%d done", done, len(st.Tasks)))
	if st.Loading {
		b.WriteString("  Loading...")
	}
	b.WriteString("\n\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  j, down      Move down\n")
	b.WriteString("  k, up        Move up\n")
	b.WriteString("  space, x     Toggle completed\n")
	b.WriteString("  d            Delete task\n")
	b.WriteString("  a            Add task (enter to save, esc to cancel)\n")
	b.WriteString("  r            Reload\n")
	b.WriteString("  h, ?         Toggle this help screen\n")
	b.WriteString("  q, ctrl+c    Quit\n\n")
}

func writeFooter(b *strings.Builder) {
	b.WriteString(footerStyle.Render("Press ? for help | q to quit") + "\n")
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
