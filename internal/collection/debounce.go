package collection

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultDebounce is the quiet period before raw search input is committed.
const DefaultDebounce = 800 * time.Millisecond

// DebounceMsg is delivered when a scheduled value survives its quiet period.
// It still has to pass Debouncer.Accept: a message from a superseded or
// cancelled schedule is rejected there.
type DebounceMsg struct {
	Tag     string
	Version uint64
	Value   string
}

// Debouncer owns at most one pending timer. Each Schedule stops the previous
// timer and bumps the version; only the latest version is accepted.
type Debouncer struct {
	tag   string
	delay time.Duration

	mu      sync.Mutex
	version uint64
	pending bool
	closed  bool
	timer   *time.Timer
	stop    chan struct{}
}

// NewDebouncer returns a debouncer whose messages carry tag.
func NewDebouncer(tag string, delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{tag: tag, delay: delay}
}

// Delay returns the quiet period.
func (d *Debouncer) Delay() time.Duration { return d.delay }

// Schedule replaces any pending value with value and restarts the quiet
// period. The returned command blocks until the timer fires (yielding a
// DebounceMsg) or the schedule is superseded (yielding nil). Returns nil once
// the debouncer is closed.
func (d *Debouncer) Schedule(value string) tea.Cmd {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.stopLocked()
	d.version++
	d.pending = true

	msg := DebounceMsg{Tag: d.tag, Version: d.version, Value: value}
	timer := time.NewTimer(d.delay)
	stop := make(chan struct{})
	d.timer, d.stop = timer, stop

	return func() tea.Msg {
		select {
		case <-timer.C:
			return msg
		case <-stop:
			return nil
		}
	}
}

// Accept reports whether msg is the live schedule and, if so, clears the
// pending state and returns its value.
func (d *Debouncer) Accept(msg DebounceMsg) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed || !d.pending || msg.Tag != d.tag || msg.Version != d.version {
		return "", false
	}
	d.pending = false
	d.timer, d.stop = nil, nil
	return msg.Value, true
}

// Pending reports whether a value is waiting for its quiet period to end.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Cancel drops the pending value, if any. A message already in flight for it
// will be rejected by Accept.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.version++
	d.pending = false
}

// Close cancels and makes every later Schedule a no-op.
func (d *Debouncer) Close() {
	d.Cancel()
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
}

func (d *Debouncer) stopLocked() {
	if d.timer == nil {
		return
	}
	d.timer.Stop()
	close(d.stop)
	d.timer, d.stop = nil, nil
}
