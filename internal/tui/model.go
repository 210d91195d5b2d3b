// Package tui renders the board as three terminal columns.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/BuzzLyutic/task-board/internal/board"
	"github.com/BuzzLyutic/task-board/internal/model"
)

const loadTimeout = 10 * time.Second

type mode int

const (
	modeBoard mode = iota
	modeDetail
	modeForm
)

const (
	fieldTitle = iota
	fieldDetail
)

type form struct {
	editID string // пусто - новая задача
	field  int
	title  []rune
	detail []rune
}

type loadedMsg struct{ err error }

type savedMsg board.SaveState

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	columnStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	activeColumnStyle = columnStyle.
				BorderForeground(lipgloss.Color("62"))

	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type Model struct {
	board *board.Board

	col  int
	rows [3]int
	mode mode
	form form

	save    board.SaveState
	loading bool
	flash   string

	width  int
	height int
}

func New(b *board.Board) Model {
	return Model{
		board:   b,
		loading: true,
	}
}

// Run starts the terminal board and blocks until the user quits.
func Run(ctx context.Context, b *board.Board) error {
	p := tea.NewProgram(New(b), tea.WithAltScreen(), tea.WithContext(ctx))
	b.OnSaveStateChange(func(s board.SaveState) {
		p.Send(savedMsg(s))
	})
	defer b.OnSaveStateChange(nil)

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	b := m.board
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		return loadedMsg{err: b.Load(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			m.flash = "load failed: " + msg.err.Error()
		}
		m.clamp()
		return m, nil

	case savedMsg:
		m.save = board.SaveState(msg)
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		// До первой загрузки список пуст, любая правка перезаписала бы документ
		if m.loading {
			if msg.String() == "q" {
				return m, tea.Quit
			}
			return m, nil
		}
		switch m.mode {
		case modeForm:
			return m.updateForm(msg)
		case modeDetail:
			return m.updateDetail(msg)
		default:
			return m.updateBoard(msg)
		}
	}
	return m, nil
}

func (m Model) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.flash = ""
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "left", "h":
		if m.col > 0 {
			m.col--
		}
	case "right", "l":
		if m.col < len(model.Statuses)-1 {
			m.col++
		}
	case "up", "k":
		if m.rows[m.col] > 0 {
			m.rows[m.col]--
		}
	case "down", "j":
		m.rows[m.col]++
	case "n":
		m.mode = modeForm
		m.form = form{}
	case "e":
		if t, ok := m.selected(); ok {
			m.startEdit(t)
		}
	case "]":
		if t, ok := m.selected(); ok {
			m.apply(m.board.Advance(t.ID))
		}
	case "[":
		if t, ok := m.selected(); ok {
			m.apply(m.board.Retreat(t.ID))
		}
	case "x":
		if t, ok := m.selected(); ok {
			m.apply(m.board.Delete(t.ID))
		}
	case "enter":
		if t, ok := m.selected(); ok {
			if err := m.board.Open(t.ID); err == nil {
				m.mode = modeDetail
			}
		}
	}
	m.clamp()
	return m, nil
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.flash = ""
	t, ok := m.board.Opened()
	if !ok {
		m.mode = modeBoard
		return m, nil
	}

	switch msg.String() {
	case "esc", "q":
		m.board.Close()
	case "e":
		m.startEdit(t)
		return m, nil
	case "]":
		m.apply(m.board.Advance(t.ID))
	case "[":
		m.apply(m.board.Retreat(t.ID))
	case "x":
		m.apply(m.board.Delete(t.ID))
	}

	if _, ok := m.board.Opened(); !ok {
		m.mode = modeBoard
	}
	m.clamp()
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	field := &m.form.title
	if m.form.field == fieldDetail {
		field = &m.form.detail
	}

	switch msg.Type {
	case tea.KeyEsc:
		m.closeForm()
	case tea.KeyTab, tea.KeyShiftTab:
		m.form.field = 1 - m.form.field
	case tea.KeyBackspace:
		if n := len(*field); n > 0 {
			*field = (*field)[:n-1]
		}
	case tea.KeySpace:
		*field = append(*field, ' ')
	case tea.KeyRunes:
		*field = append(*field, msg.Runes...)
	case tea.KeyEnter:
		title, detail := string(m.form.title), string(m.form.detail)
		var err error
		if m.form.editID == "" {
			_, err = m.board.Add(title, detail)
			m.col, m.rows[0] = 0, 0
		} else {
			err = m.board.Edit(m.form.editID, title, detail)
		}
		if err != nil {
			m.flash = err.Error()
			return m, nil
		}
		m.save = m.board.SaveState()
		m.closeForm()
	}
	return m, nil
}

func (m *Model) startEdit(t model.Task) {
	m.mode = modeForm
	m.form = form{
		editID: t.ID,
		title:  []rune(t.Title),
		detail: []rune(t.Detail),
	}
}

// closeForm returns to the detail view when the form was opened from it.
func (m *Model) closeForm() {
	m.form = form{}
	if _, ok := m.board.Opened(); ok {
		m.mode = modeDetail
		return
	}
	m.mode = modeBoard
}

func (m *Model) apply(err error) {
	if err != nil {
		m.flash = err.Error()
		return
	}
	m.save = m.board.SaveState()
}

func (m Model) selected() (model.Task, bool) {
	tasks := m.board.Column(model.Statuses[m.col])
	row := m.rows[m.col]
	if row < 0 || row >= len(tasks) {
		return model.Task{}, false
	}
	return tasks[row], true
}

func (m *Model) clamp() {
	for i, s := range model.Statuses {
		n := len(m.board.Column(s))
		if m.rows[i] >= n {
			m.rows[i] = n - 1
		}
		if m.rows[i] < 0 {
			m.rows[i] = 0
		}
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Task board"))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString("Loading tasks...\n")
	case m.mode == modeForm:
		b.WriteString(m.viewForm())
	case m.mode == modeDetail:
		b.WriteString(m.viewDetail())
	default:
		b.WriteString(m.viewColumns())
	}

	b.WriteString("\n")
	b.WriteString(m.viewStatus())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help()))
	return b.String()
}

func (m Model) viewColumns() string {
	width := 28
	if m.width > 0 {
		width = max(16, m.width/len(model.Statuses)-4)
	}

	cols := make([]string, 0, len(model.Statuses))
	for i, s := range model.Statuses {
		tasks := m.board.Column(s)

		var lines []string
		lines = append(lines, headerStyle.Render(fmt.Sprintf("%s (%d)", s, len(tasks))))
		for j, t := range tasks {
			line := truncate(t.Title, width-2)
			if i == m.col && j == m.rows[i] {
				line = selectedStyle.Render(line)
			}
			lines = append(lines, line)
		}

		style := columnStyle
		if i == m.col {
			style = activeColumnStyle
		}
		cols = append(cols, style.Width(width).Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m Model) viewDetail() string {
	t, ok := m.board.Opened()
	if !ok {
		return ""
	}
	detail := t.Detail
	if detail == "" {
		detail = helpStyle.Render("(no detail)")
	}
	body := fmt.Sprintf("%s\n%s\n\n%s",
		headerStyle.Render(t.Title),
		helpStyle.Render("status: "+string(t.Status)),
		detail,
	)
	return activeColumnStyle.Render(body)
}

func (m Model) viewForm() string {
	heading := "New task"
	if m.form.editID != "" {
		heading = "Edit task"
	}

	title, detail := string(m.form.title), string(m.form.detail)
	if m.form.field == fieldTitle {
		title += "_"
	} else {
		detail += "_"
	}
	body := fmt.Sprintf("%s\n\ntitle:  %s\ndetail: %s", headerStyle.Render(heading), title, detail)
	return activeColumnStyle.Render(body)
}

func (m Model) viewStatus() string {
	switch {
	case m.flash != "":
		return errorStyle.Render(m.flash)
	case m.save.Saving():
		return "saving..."
	case m.save.Err != nil:
		return errorStyle.Render("save failed: " + m.save.Err.Error())
	default:
		return "saved"
	}
}

func (m Model) help() string {
	switch m.mode {
	case modeForm:
		return "tab: switch field • enter: save • esc: cancel"
	case modeDetail:
		keys := []string{"e: edit"}
		if t, ok := m.board.Opened(); ok {
			if t.Status.CanAdvance() {
				keys = append(keys, "]: advance")
			}
			if t.Status.CanRetreat() {
				keys = append(keys, "[: retreat")
			}
		}
		return strings.Join(append(keys, "x: delete", "esc: close"), " • ")
	default:
		return "←/→ column • ↑/↓ task • n: new • e: edit • ]/[: move • x: delete • enter: open • q: quit"
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
