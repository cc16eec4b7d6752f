package ui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus/hooks/test"

	"taskboard/internal/board"
	"taskboard/internal/config"
	"taskboard/internal/monitor"
	"taskboard/internal/storage"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newModel(t *testing.T, pageSize int) (Model, *clock) {
	t.Helper()
	c := &clock{now: time.Date(2024, 1, 10, 9, 0, 0, 0, time.Local)}
	logger, _ := test.NewNullLogger()
	b, err := board.New(board.WithClock(c.Now), board.WithLogger(logger), board.WithPageSize(pageSize))
	if err != nil {
		t.Fatalf("new board: %v", err)
	}
	return New(b, monitor.New(time.Hour), nil, config.Default(), logger), c
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
)

func TestAddTaskThroughForm(t *testing.T) {
	m, _ := newModel(t, 10)
	if m.view() != board.ViewToday {
		t.Fatalf("default focus = %s", m.view())
	}
	m = press(t, m, runes("a"), runes("Write report"), enter, enter, enter)
	if m.form != nil {
		t.Fatalf("form still open, status %q", m.status)
	}
	snap := m.board.Snapshot()
	if snap.Due.Len != 1 || snap.Due.Tasks[0].Name != "Write report" {
		t.Fatalf("today = %+v", snap.Due)
	}
	if snap.Due.Tasks[0].Priority != storage.PriorityLow {
		t.Fatalf("priority = %q", snap.Due.Tasks[0].Priority)
	}
	if !strings.Contains(m.View(), "Write report") {
		t.Fatal("view does not render the new task")
	}
}

func TestAddRejectsEmptyName(t *testing.T) {
	m, _ := newModel(t, 10)
	m = press(t, m, runes("a"), enter, enter, enter)
	if m.form == nil {
		t.Fatal("form should stay open after a rejected add")
	}
	if m.status != "Name and due date are required" {
		t.Fatalf("status = %q", m.status)
	}
	if len(m.board.Snapshot().All) != 0 {
		t.Fatal("empty task added")
	}
	m = press(t, m, esc)
	if m.form != nil || m.status != "Cancelled" {
		t.Fatalf("esc did not close the form: %q", m.status)
	}
}

func TestEditFormValidatesDate(t *testing.T) {
	m, _ := newModel(t, 10)
	task, _ := m.board.Add("a", "2024-01-10", storage.PriorityLow)
	m = press(t, m, runes("e"), enter)
	m.input.SetValue("2024-02-30")
	m = press(t, m, enter, enter)
	if !strings.HasPrefix(m.status, "due date invalid") {
		t.Fatalf("status = %q", m.status)
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	m.input.SetValue("2024-03-01")
	m = press(t, m, enter, enter)
	got, _ := m.board.Task(task.ID)
	if got.DueDate != "2024-03-01" || m.form != nil {
		t.Fatalf("edit not saved: %+v, status %q", got, m.status)
	}
	if m.board.Snapshot().Upcoming.Len != 1 {
		t.Fatal("edited task should move to upcoming")
	}
}

func TestToggleAndDeleteConfirm(t *testing.T) {
	m, _ := newModel(t, 10)
	task, _ := m.board.Add("a", "2024-01-10", storage.PriorityLow)
	m = press(t, m, space)
	if got, _ := m.board.Task(task.ID); !got.Done {
		t.Fatal("toggle did not mark done")
	}
	m = press(t, m, runes("d"), runes("n"))
	if _, ok := m.board.Task(task.ID); !ok || m.confirmDel {
		t.Fatal("declined delete removed the task")
	}
	m = press(t, m, runes("d"), runes("y"))
	if _, ok := m.board.Task(task.ID); ok {
		t.Fatal("confirmed delete kept the task")
	}
}

func TestTickMarksOverdueTasksPending(t *testing.T) {
	m, _ := newModel(t, 10)
	m.board.Add("Pay rent", "2024-01-01", storage.PriorityHigh)
	m = press(t, m, tickMsg(time.Now()))
	if m.board.Snapshot().Pending.Len != 1 {
		t.Fatal("tick did not apply the due-date check")
	}
	if m.status != "1 task(s) are now pending" {
		t.Fatalf("status = %q", m.status)
	}
}

func TestTickCmdDeliversMonitorTicks(t *testing.T) {
	ch := make(chan time.Time, 1)
	now := time.Now()
	ch <- now
	if msg := waitForTick(ch)(); msg != tickMsg(now) {
		t.Fatalf("msg = %#v", msg)
	}
	close(ch)
	if _, ok := waitForTick(ch)().(monitorStoppedMsg); !ok {
		t.Fatal("closed channel should report a stopped monitor")
	}
	if waitForTick(nil) != nil {
		t.Fatal("nil channel should produce no command")
	}
}

func TestPagingAndMoveFollowsTask(t *testing.T) {
	m, _ := newModel(t, 2)
	var added []storage.Task
	for _, name := range []string{"t0", "t1", "t2"} {
		tk, _ := m.board.Add(name, "2024-01-10", storage.PriorityLow)
		added = append(added, tk)
	}
	m = press(t, m, runes("n"))
	if m.page().Number != 2 {
		t.Fatalf("page = %d", m.page().Number)
	}
	m = press(t, m, runes("n"))
	if m.page().Number != 2 {
		t.Fatal("paging past the last page must be ignored")
	}

	// t2 sits alone on page 2; moving it up carries it to page 1.
	m = press(t, m, runes("K"))
	if m.page().Number != 1 {
		t.Fatalf("page = %d, want 1", m.page().Number)
	}
	sel, _ := m.selected()
	if sel.ID != added[2].ID {
		t.Fatalf("selected %q, want t2", sel.Name)
	}
	var order []string
	for _, tk := range m.board.Snapshot().All {
		order = append(order, tk.Name)
	}
	if strings.Join(order, ",") != "t0,t2,t1" {
		t.Fatalf("order = %v", order)
	}
}

func TestColumnNavigationAndPriority(t *testing.T) {
	m, _ := newModel(t, 10)
	task, _ := m.board.Add("later", "2024-02-01", storage.PriorityLow)
	m = press(t, m, runes("l"))
	if m.view() != board.ViewUpcoming {
		t.Fatalf("focus = %s", m.view())
	}
	m = press(t, m, runes("+"), runes("+"), runes("+"))
	if got, _ := m.board.Task(task.ID); got.Priority != storage.PriorityHigh {
		t.Fatalf("priority = %q", got.Priority)
	}
	m = press(t, m, runes("["))
	if got, _ := m.board.Task(task.ID); got.DueDate != "2024-01-31" {
		t.Fatalf("due = %q", got.DueDate)
	}
	m = press(t, m, runes("l"))
	if m.view() != board.ViewPending {
		t.Fatalf("focus should wrap to pending, got %s", m.view())
	}
}

func TestQuitStopsMonitor(t *testing.T) {
	m, _ := newModel(t, 10)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	m.monitor.Start(ctx)
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if m.monitor.Running() {
		t.Fatal("monitor still running after quit")
	}
}

func TestCursorHiddenWhileFormOpen(t *testing.T) {
	m, _ := newModel(t, 10)
	m.board.Add("a", "2024-01-10", storage.PriorityLow)
	if !strings.Contains(m.View(), "> [ ] a") {
		t.Fatal("cursor not shown on the selected task")
	}
	m = press(t, m, runes("a"))
	if strings.Contains(m.View(), "> [ ] a") {
		t.Fatal("cursor shown while the form is open")
	}
	m = press(t, m, esc)
	if m.form != nil || !strings.Contains(m.View(), "> [ ] a") {
		t.Fatal("cursor not restored after closing the form")
	}
}
