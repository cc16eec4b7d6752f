// Package storage holds the session's ordered task collection.
package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for due dates.
const DateLayout = "2006-01-02"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// ParsePriority accepts low, medium or high in any case. An empty value is low.
func ParsePriority(v string) (Priority, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return PriorityLow, nil
	}
	for _, p := range priorities {
		if string(p) == v {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown priority %q", v)
}

// Shift steps the priority up or down by delta, saturating at low and high.
func (p Priority) Shift(delta int) Priority {
	idx := 0
	for i, candidate := range priorities {
		if candidate == p {
			idx = i
			break
		}
	}
	idx += delta
	if idx < 0 {
		idx = 0
	}
	if idx >= len(priorities) {
		idx = len(priorities) - 1
	}
	return priorities[idx]
}

type Status string

const (
	StatusOnTime  Status = "on-time"
	StatusPending Status = "pending"
)

// ParseDate validates a YYYY-MM-DD date. An empty value stays empty.
func ParseDate(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", nil
	}
	t, err := time.Parse(DateLayout, v)
	if err != nil {
		return "", err
	}
	return t.Format(DateLayout), nil
}

// FormatDate renders t as a due date in t's own location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ShiftDate moves a YYYY-MM-DD date by days.
func ShiftDate(date string, days int) (string, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, days).Format(DateLayout), nil
}

type Task struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	DueDate  string   `json:"dueDate"`
	Done     bool     `json:"done"`
	Priority Priority `json:"priority"`
	Status   Status   `json:"status"`
}

// Overdue reports whether the task lapsed before today without being done.
// Due dates compare lexically because the layout is zero padded.
func (t Task) Overdue(today string) bool {
	return !t.Done && t.DueDate < today && t.DueDate != today
}

// Store is the ordered, in-memory task collection. It is not safe for
// concurrent use; a single owner applies every mutation.
type Store struct {
	tasks  []Task
	lastID int64
	now    func() time.Time
}

var ErrNoClock = errors.New("store clock is nil")

func New(now func() time.Time) (*Store, error) {
	if now == nil {
		return nil, ErrNoClock
	}
	return &Store{now: now}, nil
}

func (s *Store) nextID() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// Add appends a new on-time task. It does nothing when the name or due date is empty.
func (s *Store) Add(name, dueDate string, priority Priority) (Task, bool) {
	if strings.TrimSpace(name) == "" || dueDate == "" {
		return Task{}, false
	}
	if priority == "" {
		priority = PriorityLow
	}
	t := Task{
		ID:       s.nextID(),
		Name:     name,
		DueDate:  dueDate,
		Priority: priority,
		Status:   StatusOnTime,
	}
	s.tasks = append(s.tasks, t)
	return t, true
}

func (s *Store) Edit(id int64, name, dueDate string, priority Priority) bool {
	i := s.Index(id)
	if i < 0 {
		return false
	}
	if priority == "" {
		priority = PriorityLow
	}
	s.tasks[i].Name = name
	s.tasks[i].DueDate = dueDate
	s.tasks[i].Priority = priority
	return true
}

func (s *Store) Delete(id int64) bool {
	i := s.Index(id)
	if i < 0 {
		return false
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return true
}

func (s *Store) ToggleDone(id int64) bool {
	i := s.Index(id)
	if i < 0 {
		return false
	}
	s.tasks[i].Done = !s.tasks[i].Done
	return true
}

// Reorder moves the task at from to position to. Either index falling outside
// the collection means there is no destination and nothing moves.
func (s *Store) Reorder(from, to int) bool {
	n := len(s.tasks)
	if from < 0 || from >= n || to < 0 || to >= n {
		return false
	}
	if from == to {
		return true
	}
	moved := s.tasks[from]
	s.tasks = append(s.tasks[:from], s.tasks[from+1:]...)
	s.tasks = append(s.tasks[:to], append([]Task{moved}, s.tasks[to:]...)...)
	return true
}

// MarkPending flips every overdue on-time task to pending and returns how many
// changed. Pending never reverts to on-time.
func (s *Store) MarkPending(today string) int {
	changed := 0
	for i := range s.tasks {
		t := &s.tasks[i]
		if t.Status == StatusPending || !t.Overdue(today) {
			continue
		}
		t.Status = StatusPending
		changed++
	}
	return changed
}

// Tasks returns a copy of the collection in its current order.
func (s *Store) Tasks() []Task {
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *Store) Get(id int64) (Task, bool) {
	i := s.Index(id)
	if i < 0 {
		return Task{}, false
	}
	return s.tasks[i], true
}

// Index returns the position of id, or -1.
func (s *Store) Index(id int64) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) Len() int {
	return len(s.tasks)
}
