package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"

	"taskboard/internal/board"
	"taskboard/internal/config"
	"taskboard/internal/monitor"
	"taskboard/internal/storage"
)

type tickMsg time.Time

type monitorStoppedMsg struct{}

type formState struct {
	taskID   int64
	name     string
	due      string
	priority string
	index    int
}

type Model struct {
	board      *board.Board
	monitor    *monitor.Monitor
	ticks      <-chan time.Time
	cfg        config.Config
	log        *log.Entry
	focus      int
	cursor     int
	input      textinput.Model
	status     string
	confirmDel bool
	pendingDel *storage.Task
	form       *formState
	width      int
}

// Run shows the board until the user quits. The due-date monitor lives
// exactly as long as the program.
func Run(b *board.Board, mon *monitor.Monitor, cfg config.Config, logger *log.Logger, configPath string, firstLaunch bool) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ticks := mon.Start(ctx)
	defer mon.Stop()

	m := New(b, mon, ticks, cfg, logger)
	if firstLaunch {
		m.status = fmt.Sprintf("Created %s. Press '%s' to add a task.", configPath, cfg.Keys.Add)
	}
	m.log.WithField("interval", mon.Interval()).Info("board started")

	program := tea.NewProgram(m, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// New builds the model around an already started tick channel.
func New(b *board.Board, mon *monitor.Monitor, ticks <-chan time.Time, cfg config.Config, logger *log.Logger) Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40

	focus := 1
	if v, err := board.ParseView(cfg.DefaultView); err == nil {
		focus = viewIndex(v)
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return Model{
		board:   b,
		monitor: mon,
		ticks:   ticks,
		cfg:     cfg,
		log:     logger.WithField("session", b.Session()),
		focus:   focus,
		input:   ti,
		status:  fmt.Sprintf("Press '%s' to add, space to toggle, '%s' to delete.", cfg.Keys.Add, cfg.Keys.Delete),
	}
}

func viewIndex(v board.View) int {
	for i, candidate := range board.AllViews {
		if candidate == v {
			return i
		}
	}
	return 0
}

func (m Model) Init() tea.Cmd {
	return waitForTick(m.ticks)
}

func waitForTick(ticks <-chan time.Time) tea.Cmd {
	if ticks == nil {
		return nil
	}
	return func() tea.Msg {
		t, ok := <-ticks
		if !ok {
			return monitorStoppedMsg{}
		}
		return tickMsg(t)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.form != nil {
			return m.updateFormMode(msg.String(), msg)
		}
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		return m.updateListMode(msg.String())
	case tickMsg:
		if n := m.board.CheckDueDates(); n > 0 {
			m.status = fmt.Sprintf("%d task(s) are now pending", n)
		}
		m.cursor = clampCursor(m.cursor, len(m.page().Tasks))
		return m, waitForTick(m.ticks)
	case monitorStoppedMsg:
		m.log.Debug("due-date monitor stopped")
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - 10
	}
	return m, nil
}

func (m Model) view() board.View {
	return board.AllViews[m.focus]
}

func (m Model) page() board.Page {
	return m.board.Snapshot().Page(m.view())
}

func (m Model) selected() (storage.Task, bool) {
	tasks := m.page().Tasks
	if len(tasks) == 0 {
		return storage.Task{}, false
	}
	return tasks[clampCursor(m.cursor, len(tasks))], true
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	keys := m.cfg.Keys
	switch key {
	case "ctrl+c", keys.Quit:
		if m.monitor != nil {
			m.monitor.Stop()
		}
		return m, tea.Quit
	case keys.Down, "down":
		m.cursor = clampCursor(m.cursor+1, len(m.page().Tasks))
	case keys.Up, "up":
		if m.cursor > 0 {
			m.cursor = clampCursor(m.cursor-1, len(m.page().Tasks))
		}
	case keys.NextColumn, "tab", "right":
		m.focus = (m.focus + 1) % len(board.AllViews)
		m.cursor = clampCursor(m.cursor, len(m.page().Tasks))
	case keys.PrevColumn, "shift+tab", "left":
		m.focus = (m.focus + len(board.AllViews) - 1) % len(board.AllViews)
		m.cursor = clampCursor(m.cursor, len(m.page().Tasks))
	case keys.NextPage, "pgdown":
		if m.board.SetPage(m.view(), m.page().Number+1) {
			m.cursor = 0
		}
	case keys.PrevPage, "pgup":
		if m.board.SetPage(m.view(), m.page().Number-1) {
			m.cursor = 0
		}
	case keys.MoveUp:
		return m.move(-1)
	case keys.MoveDown:
		return m.move(1)
	case keys.Add:
		return m.startForm(&formState{
			due:      m.board.Today(),
			priority: string(storage.PriorityLow),
		})
	case keys.Toggle:
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.board.ToggleDone(t.ID)
		m.status = "Toggled task"
	case keys.Delete:
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.confirmDel = true
		m.pendingDel = &t
		m.status = fmt.Sprintf("Delete \"%s\"? y/n", t.Name)
	case keys.Detail:
		t, ok := m.selected()
		if !ok {
			m.status = "No tasks"
			return m, nil
		}
		m.status = fmt.Sprintf("Task #%d • %s • %s • due:%s • priority:%s • %s",
			t.ID, t.Name, humanDone(t.Done), t.DueDate, t.Priority, t.Status)
	case keys.Edit:
		t, ok := m.selected()
		if !ok {
			m.status = "No tasks to edit"
			return m, nil
		}
		return m.startForm(&formState{
			taskID:   t.ID,
			name:     t.Name,
			due:      t.DueDate,
			priority: string(t.Priority),
		})
	case keys.PriorityUp, keys.PriorityDown:
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		delta := 1
		if key == keys.PriorityDown {
			delta = -1
		}
		m.board.Edit(t.ID, t.Name, t.DueDate, t.Priority.Shift(delta))
		m.status = fmt.Sprintf("Priority: %s", t.Priority.Shift(delta))
	case keys.DueForward, keys.DueBack:
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		days := 1
		if key == keys.DueBack {
			days = -1
		}
		due, err := storage.ShiftDate(t.DueDate, days)
		if err != nil {
			m.status = fmt.Sprintf("due date invalid: %v", err)
			return m, nil
		}
		m.board.Edit(t.ID, t.Name, due, t.Priority)
		m.cursor = clampCursor(m.cursor, len(m.page().Tasks))
		m.status = "Due: " + due
	}
	return m, nil
}

// move shifts the selected task within its view and keeps it selected,
// following it onto another page if needed.
func (m Model) move(delta int) (tea.Model, tea.Cmd) {
	t, ok := m.selected()
	if !ok || !m.board.MoveWithinView(m.view(), t.ID, delta) {
		return m, nil
	}
	list := m.board.Views().Get(m.view())
	size := m.board.Snapshot().PageSize
	for i, candidate := range list {
		if candidate.ID == t.ID {
			m.board.SetPage(m.view(), i/size+1)
			m.cursor = i % size
			break
		}
	}
	m.status = "Moved task"
	return m, nil
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", "esc":
		m.status = "Delete cancelled"
	case "y", "Y":
		if m.pendingDel == nil {
			m.status = "Nothing to delete"
			break
		}
		m.board.Delete(m.pendingDel.ID)
		m.cursor = clampCursor(m.cursor, len(m.page().Tasks))
		m.status = "Deleted task"
	default:
		return m, nil
	}
	m.confirmDel = false
	m.pendingDel = nil
	return m, nil
}

func formFields() []string {
	return []string{"name", "due date (YYYY-MM-DD)", "priority (low/medium/high)"}
}

func (fs formState) currentLabel() string {
	return formFields()[fs.index]
}

func (fs formState) currentValue() string {
	switch fs.index {
	case 0:
		return fs.name
	case 1:
		return fs.due
	case 2:
		return fs.priority
	}
	return ""
}

func (fs *formState) setCurrentValue(v string) {
	switch fs.index {
	case 0:
		fs.name = v
	case 1:
		fs.due = v
	case 2:
		fs.priority = v
	}
}

func (m Model) startForm(fs *formState) (tea.Model, tea.Cmd) {
	m.form = fs
	m.input.SetValue(fs.currentValue())
	m.input.Placeholder = fs.currentLabel()
	m.input.Focus()
	if fs.taskID == 0 {
		m.status = "Add task: enter to advance, tab to move, esc to cancel"
	} else {
		m.status = "Edit task: enter to advance, tab to move, esc to cancel"
	}
	return m, textinput.Blink
}

func (m Model) updateFormMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m = m.closeForm()
		m.status = "Cancelled"
		return m, nil
	case "tab", "down", "shift+tab", "up":
		step := 1
		if key == "shift+tab" || key == "up" {
			step = -1
		}
		m.form.setCurrentValue(m.input.Value())
		m.form.index = wrapIndex(m.form.index+step, len(formFields()))
		m.input.SetValue(m.form.currentValue())
		m.input.Placeholder = m.form.currentLabel()
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.form.setCurrentValue(m.input.Value())
		if m.form.index >= len(formFields())-1 {
			return m.saveForm()
		}
		m.form.index++
		m.input.SetValue(m.form.currentValue())
		m.input.Placeholder = m.form.currentLabel()
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) saveForm() (tea.Model, tea.Cmd) {
	fs := m.form
	name := strings.TrimSpace(fs.name)
	due, err := storage.ParseDate(fs.due)
	if err != nil {
		m.status = fmt.Sprintf("due date invalid: %v", err)
		return m, nil
	}
	prio, err := storage.ParsePriority(fs.priority)
	if err != nil {
		m.status = fmt.Sprintf("priority invalid: %v", err)
		return m, nil
	}

	if fs.taskID == 0 {
		if _, ok := m.board.Add(name, due, prio); !ok {
			m.status = "Name and due date are required"
			return m, nil
		}
		m.status = "Added task"
	} else {
		if name == "" || due == "" {
			m.status = "Name and due date are required"
			return m, nil
		}
		m.board.Edit(fs.taskID, name, due, prio)
		m.status = "Task updated"
	}
	m = m.closeForm()
	m.cursor = clampCursor(m.cursor, len(m.page().Tasks))
	return m, nil
}

func (m Model) closeForm() Model {
	m.form = nil
	m.input.SetValue("")
	m.input.Blur()
	return m
}

func (m Model) View() string {
	var b strings.Builder

	snap := m.board.Snapshot()
	b.WriteString(m.titleStyle().Render("Task Manager"))
	b.WriteString("  " + snap.Today)
	b.WriteString("\n\n")

	columns := make([]string, 0, len(board.AllViews))
	for i, v := range board.AllViews {
		columns = append(columns, m.renderColumn(snap.Page(v), i == m.focus))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, columns...))
	b.WriteString("\n")

	if m.form != nil {
		b.WriteString(m.renderFormBox())
		b.WriteString("\n")
		b.WriteString("Field: " + m.form.currentLabel())
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(renderHelp(m.cfg.Keys))
	return b.String()
}

func (m Model) titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.cfg.Accent()))
}

func (m Model) columnWidth() int {
	if m.width <= 0 {
		return 32
	}
	w := m.width/len(board.AllViews) - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (m Model) renderColumn(p board.Page, focused bool) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(p.View.Title()))
	b.WriteString("\n\n")
	if len(p.Tasks) == 0 {
		b.WriteString(fmt.Sprintf("No %s", p.View.Title()))
		b.WriteString("\n")
	}
	for i, t := range p.Tasks {
		cursor := " "
		if focused && i == clampCursor(m.cursor, len(p.Tasks)) && m.form == nil {
			cursor = ">"
		}
		checkbox := "[ ]"
		if t.Done {
			checkbox = "[x]"
		}
		b.WriteString(fmt.Sprintf("%s %s %s\n", cursor, checkbox, t.Name))
		b.WriteString(fmt.Sprintf("      Due: %s • %s\n", t.DueDate, t.Priority))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Page %d of %d", p.Number, p.Total))
	if dots := pageDots(p, m.board.Snapshot().PageSize); dots != "" {
		b.WriteString("  " + dots)
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Width(m.columnWidth())
	if focused {
		style = style.Border(lipgloss.ThickBorder()).BorderForeground(lipgloss.Color(m.cfg.Accent()))
	}
	return style.Render(b.String())
}

func pageDots(p board.Page, size int) string {
	if p.Total < 2 {
		return ""
	}
	pg := paginator.New()
	pg.Type = paginator.Dots
	pg.PerPage = size
	pg.SetTotalPages(p.Len)
	pg.Page = p.Number - 1
	return pg.View()
}

func (m Model) renderFormBox() string {
	if m.form == nil {
		return ""
	}
	values := []string{m.form.name, m.form.due, m.form.priority}
	var b strings.Builder
	if m.form.taskID == 0 {
		b.WriteString("Add New Task\n")
	} else {
		b.WriteString("Edit Task\n")
	}
	for i, name := range formFields() {
		prefix := " "
		if i == m.form.index {
			prefix = ">"
		}
		val := values[i]
		if strings.TrimSpace(val) == "" {
			val = "(empty)"
		}
		b.WriteString(fmt.Sprintf("%s %-26s : %s\n", prefix, name, val))
	}
	return b.String()
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s/%s column • %s/%s page • %s/%s reorder • %s add • %s edit • %s toggle • %s delete • %s/%s priority • %s/%s due • %s quit",
		k.Up, k.Down, k.PrevColumn, k.NextColumn, k.PrevPage, k.NextPage, k.MoveUp, k.MoveDown,
		k.Add, k.Edit, displayKey(k.Toggle), k.Delete, k.PriorityUp, k.PriorityDown, k.DueBack, k.DueForward, k.Quit)
}

func displayKey(k string) string {
	if k == " " {
		return "space"
	}
	return k
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}

func humanDone(done bool) string {
	if done {
		return "done"
	}
	return "open"
}
