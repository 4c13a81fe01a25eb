package examguard

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// defaultTTL bounds how long an abandoned session keeps its guard in
// memory. Normal sessions are evicted by End at submit time.
const defaultTTL = 2 * time.Hour

type entry struct {
	guard   *Guard
	started time.Time
}

// Registry holds the guard of every active exam session. State lives in
// memory only: a process restart resets all counters, mirroring the
// page-reload behaviour on the client. Guards are evicted by End or,
// for abandoned sessions, once their ttl has passed.
type Registry struct {
	mu     sync.Mutex
	ttl    time.Duration
	guards map[uuid.UUID]*entry
}

func NewRegistry() *Registry {
	return NewRegistryTTL(defaultTTL)
}

func NewRegistryTTL(ttl time.Duration) *Registry {
	return &Registry{ttl: ttl, guards: make(map[uuid.UUID]*entry)}
}

// sweep drops guards whose session outlived the ttl. Caller holds mu.
func (r *Registry) sweep(now time.Time) {
	for token, e := range r.guards {
		if now.Sub(e.started) > r.ttl {
			e.guard.End()
			delete(r.guards, token)
		}
	}
}

// Begin returns the guard for the session, creating and activating it on
// first use. Re-entrant calls return the same guard without resetting it.
func (r *Registry) Begin(token uuid.UUID, sink Sink) *Guard {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.sweep(now)

	e, ok := r.guards[token]
	if !ok {
		e = &entry{guard: New(sink), started: now}
		r.guards[token] = e
	}
	e.guard.Begin()
	return e.guard
}

func (r *Registry) Get(token uuid.UUID) (*Guard, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweep(time.Now())

	e, ok := r.guards[token]
	if !ok {
		return nil, false
	}
	return e.guard, true
}

// End deactivates and evicts the session's guard, returning the final
// warning count. Unknown tokens return 0.
func (r *Registry) End(token uuid.UUID) int {
	r.mu.Lock()
	e, ok := r.guards[token]
	if ok {
		delete(r.guards, token)
	}
	r.mu.Unlock()

	if !ok {
		return 0
	}
	e.guard.End()
	return e.guard.Warnings()
}
