// Package board classifies and paginates the task store for one session.
//
// Every command mutates the store and then recomputes the three views and
// re-clamps the page cursors, so the Snapshot is always consistent with the
// last accepted command. A Board is not safe for concurrent use.
package board

import (
	"io"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"taskboard/internal/storage"
)

// Clock supplies the current time for classification and id generation.
type Clock func() time.Time

// Page is one paginated view as handed to the presentation layer.
type Page struct {
	View   View           `json:"view"`
	Tasks  []storage.Task `json:"tasks"`
	Number int            `json:"page"`
	Total  int            `json:"pages"`
	Len    int            `json:"count"`
}

// Snapshot is the outbound view data after a command.
type Snapshot struct {
	Today    string         `json:"today"`
	PageSize int            `json:"pageSize"`
	Pending  Page           `json:"pending"`
	Due      Page           `json:"dueToday"`
	Upcoming Page           `json:"upcoming"`
	All      []storage.Task `json:"all"`
}

// Page returns the page for v.
func (s Snapshot) Page(v View) Page {
	switch v {
	case ViewPending:
		return s.Pending
	case ViewToday:
		return s.Due
	case ViewUpcoming:
		return s.Upcoming
	}
	return Page{View: v}
}

type Option func(*Board)

func WithClock(c Clock) Option {
	return func(b *Board) {
		if c != nil {
			b.clock = c
		}
	}
}

func WithPageSize(n int) Option {
	return func(b *Board) {
		b.pageSize = n
	}
}

func WithLogger(l *log.Logger) Option {
	return func(b *Board) {
		if l != nil {
			b.logger = l
		}
	}
}

type Board struct {
	store    *storage.Store
	pager    *Pager
	clock    Clock
	pageSize int
	logger   *log.Logger
	log      *log.Entry
	session  string

	views Views
	snap  Snapshot
}

func New(opts ...Option) (*Board, error) {
	b := &Board{clock: time.Now, pageSize: DefaultPageSize}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = log.New()
		b.logger.SetOutput(io.Discard)
	}
	store, err := storage.New(b.clock)
	if err != nil {
		return nil, err
	}
	b.store = store
	b.pager = NewPager(b.pageSize)
	b.session = uuid.NewString()
	b.log = b.logger.WithField("session", b.session)
	b.recompute()
	return b, nil
}

// Session identifies this board in log output.
func (b *Board) Session() string {
	return b.session
}

// Today is the clock's current date.
func (b *Board) Today() string {
	return storage.FormatDate(b.clock())
}

func (b *Board) Snapshot() Snapshot {
	return b.snap
}

// Views returns the unpaginated classified lists of the last recompute.
func (b *Board) Views() Views {
	return b.views
}

func (b *Board) Task(id int64) (storage.Task, bool) {
	return b.store.Get(id)
}

// Refresh recomputes against the current date without mutating anything.
func (b *Board) Refresh() Snapshot {
	b.recompute()
	return b.snap
}

func (b *Board) Add(name, dueDate string, priority storage.Priority) (storage.Task, bool) {
	t, ok := b.store.Add(name, dueDate, priority)
	if !ok {
		b.log.WithFields(log.Fields{"name": name, "due": dueDate}).Debug("add rejected")
		return t, false
	}
	b.log.WithFields(log.Fields{"id": t.ID, "due": t.DueDate, "priority": t.Priority}).Debug("task added")
	b.recompute()
	return t, true
}

func (b *Board) Edit(id int64, name, dueDate string, priority storage.Priority) bool {
	if !b.store.Edit(id, name, dueDate, priority) {
		b.log.WithField("id", id).Debug("edit ignored")
		return false
	}
	b.log.WithField("id", id).Debug("task edited")
	b.recompute()
	return true
}

func (b *Board) Delete(id int64) bool {
	if !b.store.Delete(id) {
		b.log.WithField("id", id).Debug("delete ignored")
		return false
	}
	b.log.WithField("id", id).Debug("task deleted")
	b.recompute()
	return true
}

func (b *Board) ToggleDone(id int64) bool {
	if !b.store.ToggleDone(id) {
		b.log.WithField("id", id).Debug("toggle ignored")
		return false
	}
	b.recompute()
	return true
}

// Reorder moves a task between two positions of the full list.
func (b *Board) Reorder(from, to int) bool {
	if !b.store.Reorder(from, to) {
		b.log.WithFields(log.Fields{"from": from, "to": to}).Debug("reorder ignored")
		return false
	}
	b.recompute()
	return true
}

// MoveWithinView moves task id delta places inside view v, past the
// neighbouring tasks of that view, by reordering the full list.
func (b *Board) MoveWithinView(v View, id int64, delta int) bool {
	list := b.views.Get(v)
	pos := -1
	for i, t := range list {
		if t.ID == id {
			pos = i
			break
		}
	}
	target := pos + delta
	if pos < 0 || delta == 0 || target < 0 || target >= len(list) {
		return false
	}
	return b.Reorder(b.store.Index(id), b.store.Index(list[target].ID))
}

// SetPage moves the page cursor of v; out of range pages are ignored.
func (b *Board) SetPage(v View, cursor int) bool {
	if !b.pager.SetPage(v, cursor, len(b.views.Get(v))) {
		return false
	}
	b.recompute()
	return true
}

func (b *Board) SetPageSize(n int) bool {
	if !b.pager.SetPageSize(n) {
		return false
	}
	b.recompute()
	return true
}

// CheckDueDates applies one due-date check and returns the number of tasks
// that became pending.
func (b *Board) CheckDueDates() int {
	today := b.Today()
	n := b.store.MarkPending(today)
	if n > 0 {
		b.log.WithFields(log.Fields{"today": today, "count": n}).Info("tasks became pending")
	}
	b.recompute()
	return n
}

func (b *Board) recompute() {
	today := b.Today()
	all := b.store.Tasks()
	b.views = Classify(all, today)
	b.snap = Snapshot{
		Today:    today,
		PageSize: b.pager.Size(),
		Pending:  b.page(ViewPending),
		Due:      b.page(ViewToday),
		Upcoming: b.page(ViewUpcoming),
		All:      all,
	}
}

func (b *Board) page(v View) Page {
	list := b.views.Get(v)
	b.pager.Clamp(v, len(list))
	cursor := b.pager.Cursor(v)
	tasks := PageOf(list, cursor, b.pager.Size())
	if tasks == nil {
		tasks = []storage.Task{}
	}
	return Page{
		View:   v,
		Tasks:  tasks,
		Number: cursor,
		Total:  PageCount(len(list), b.pager.Size()),
		Len:    len(list),
	}
}
