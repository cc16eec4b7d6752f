package board

import (
	"fmt"
	"strings"

	"taskboard/internal/storage"
)

// View names one of the three derived task lists.
type View string

const (
	ViewPending  View = "pending"
	ViewToday    View = "today"
	ViewUpcoming View = "upcoming"
)

// AllViews lists the views in display order.
var AllViews = []View{ViewPending, ViewToday, ViewUpcoming}

func ParseView(v string) (View, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, candidate := range AllViews {
		if string(candidate) == v {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("unknown view %q", v)
}

// Title is the column heading for the view.
func (v View) Title() string {
	switch v {
	case ViewPending:
		return "Pending Tasks"
	case ViewToday:
		return "Today's Tasks"
	case ViewUpcoming:
		return "Upcoming Tasks"
	}
	return string(v)
}

// Views holds the classified lists, each in store order.
type Views struct {
	Pending  []storage.Task
	Today    []storage.Task
	Upcoming []storage.Task
}

// Get returns the list backing v.
func (vs Views) Get(v View) []storage.Task {
	switch v {
	case ViewPending:
		return vs.Pending
	case ViewToday:
		return vs.Today
	case ViewUpcoming:
		return vs.Upcoming
	}
	return nil
}

// Classify splits tasks into the pending, today and upcoming views for the
// given YYYY-MM-DD date. The upcoming list still excludes pending tasks even
// though an upcoming date cannot be pending.
func Classify(tasks []storage.Task, today string) Views {
	var vs Views
	for _, t := range tasks {
		if t.Status == storage.StatusPending {
			vs.Pending = append(vs.Pending, t)
		}
		if t.DueDate == today {
			vs.Today = append(vs.Today, t)
		}
		if t.DueDate > today && t.Status != storage.StatusPending {
			vs.Upcoming = append(vs.Upcoming, t)
		}
	}
	return vs
}
