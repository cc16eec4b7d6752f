// Package monitor schedules the periodic due-date check.
//
// The monitor never touches tasks itself. It only delivers tick times on a
// channel; the owner of the board applies each tick from its own event loop,
// so checks are ordered with user commands.
package monitor

import (
	"context"
	"sync"
	"time"
)

const DefaultInterval = time.Minute

type Monitor struct {
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	ticks  chan time.Time
}

func New(interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{interval: interval}
}

func (m *Monitor) Interval() time.Duration {
	return m.interval
}

// Start begins ticking every interval until ctx is done or Stop is called.
// The returned channel is closed when the monitor stops. Calling Start on a
// running monitor returns the existing channel.
func (m *Monitor) Start(ctx context.Context) <-chan time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		select {
		case <-m.done:
			// parent context ended; start afresh
			m.cancel()
		default:
			return m.ticks
		}
	}
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	m.ticks = make(chan time.Time)
	go m.run(ctx, m.ticks, m.done)
	return m.ticks
}

func (m *Monitor) run(ctx context.Context, ticks chan<- time.Time, done chan<- struct{}) {
	defer close(done)
	defer close(ticks)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			select {
			case ticks <- t:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Stop cancels the schedule and waits for the ticking goroutine to exit.
// It is safe to call more than once.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel = nil
	m.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel == nil {
		return false
	}
	select {
	case <-m.done:
		return false
	default:
		return true
	}
}
