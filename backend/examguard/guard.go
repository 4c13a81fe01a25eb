// Package examguard tracks integrity violations during a timed exam
// session: tab switches, window blur and copy attempts each add one
// warning; a context-menu event is suppressed but never counted.
package examguard

import "sync"

type Event string

const (
	EventTabHidden   Event = "tab_hidden"
	EventWindowBlur  Event = "window_blur"
	EventCopyAttempt Event = "copy_attempt"

	// Notices are acknowledged but never counted.
	NoticeContextMenu      Event = "context_menu"
	NoticeFullscreenDenied Event = "fullscreen_denied"
)

// Counted reports whether the event type increments the warning counter.
func Counted(e Event) bool {
	switch e {
	case EventTabHidden, EventWindowBlur, EventCopyAttempt:
		return true
	}
	return false
}

// Known reports whether the event type is one the guard understands at all.
func Known(e Event) bool {
	switch e {
	case EventTabHidden, EventWindowBlur, EventCopyAttempt,
		NoticeContextMenu, NoticeFullscreenDenied:
		return true
	}
	return false
}

// Sink receives each counted violation synchronously, one call per event.
type Sink func(e Event)

// Guard — машина состояний inactive → active → inactive.
type Guard struct {
	mu       sync.Mutex
	active   bool
	warnings int
	sink     Sink
}

func New(sink Sink) *Guard {
	return &Guard{sink: sink}
}

// Begin activates monitoring. Calling Begin on an already active guard is
// a no-op, so observers are never double-registered.
func (g *Guard) Begin() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.active = true
}

// Record handles one event. Counted events increment the warning counter
// by exactly one and are reported to the sink; notices and events on an
// inactive guard change nothing. Returns whether the event was counted.
func (g *Guard) Record(e Event) bool {
	g.mu.Lock()
	if !g.active || !Counted(e) {
		g.mu.Unlock()
		return false
	}
	g.warnings++
	sink := g.sink
	g.mu.Unlock()

	if sink != nil {
		sink(e)
	}
	return true
}

// End deactivates monitoring. Idempotent; events after End leave the
// counter unchanged.
func (g *Guard) End() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.active = false
}

func (g *Guard) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

func (g *Guard) Warnings() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.warnings
}
