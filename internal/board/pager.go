package board

import "taskboard/internal/storage"

const DefaultPageSize = 10

// PageCount is ceil(n/size). An empty view has no pages.
func PageCount(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// PageOf returns the 1-based page cursor of tasks. A page past the end is empty.
func PageOf(tasks []storage.Task, cursor, size int) []storage.Task {
	if cursor < 1 || size <= 0 {
		return nil
	}
	start := (cursor - 1) * size
	if start >= len(tasks) {
		return nil
	}
	end := start + size
	if end > len(tasks) {
		end = len(tasks)
	}
	return tasks[start:end]
}

// Pager tracks the page size and one page cursor per view.
type Pager struct {
	size    int
	cursors map[View]int
}

func NewPager(size int) *Pager {
	if size < 1 {
		size = DefaultPageSize
	}
	p := &Pager{size: size, cursors: make(map[View]int, len(AllViews))}
	for _, v := range AllViews {
		p.cursors[v] = 1
	}
	return p
}

func (p *Pager) Size() int {
	return p.size
}

func (p *Pager) Cursor(v View) int {
	if c, ok := p.cursors[v]; ok {
		return c
	}
	return 1
}

// SetPage moves the cursor of v when 1 <= cursor <= PageCount(length).
func (p *Pager) SetPage(v View, cursor, length int) bool {
	if _, ok := p.cursors[v]; !ok {
		return false
	}
	if cursor < 1 || cursor > PageCount(length, p.size) {
		return false
	}
	p.cursors[v] = cursor
	return true
}

// SetPageSize changes the page size. Cursors are re-clamped on the next recompute.
func (p *Pager) SetPageSize(n int) bool {
	if n < 1 {
		return false
	}
	p.size = n
	return true
}

// Clamp pulls the cursor of v back onto the last page of a view of the given
// length. A view without pages keeps cursor 1.
func (p *Pager) Clamp(v View, length int) {
	pages := PageCount(length, p.size)
	c := p.Cursor(v)
	switch {
	case pages == 0:
		c = 1
	case c > pages:
		c = pages
	case c < 1:
		c = 1
	}
	p.cursors[v] = c
}
