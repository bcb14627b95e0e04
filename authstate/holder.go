// Package authstate holds the in-memory authenticated state derived from
// the session cookie. The Holder is the single in-memory authority: only
// login, refresh, and logout outcomes mutate it, and everything else in the
// application observes it through explicit subscriptions.
package authstate

import (
	"sync"
	"time"

	"github.com/merchantdeck/go-dashboard-auth/session"
)

// State is a snapshot of the current authentication state.
type State struct {
	Session       session.Session
	Authenticated bool
}

// Holder is a mutex-guarded state container with subscriber fan-out. It is
// constructed explicitly and passed to whatever needs it rather than living
// as an ambient global.
type Holder struct {
	mu          sync.RWMutex
	state       State
	subscribers map[int]func(State)
	nextID      int
}

// NewHolder creates an empty, unauthenticated Holder.
func NewHolder() *Holder {
	return &Holder{
		subscribers: make(map[int]func(State)),
	}
}

// Current returns a snapshot of the state.
func (h *Holder) Current() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// Set replaces the held session after a successful login or session check.
func (h *Holder) Set(s session.Session) {
	h.mu.Lock()
	h.state = State{Session: s, Authenticated: true}
	subs := h.snapshotSubscribersLocked()
	state := h.state
	h.mu.Unlock()

	publish(subs, state)
}

// UpdateExpiry mutates only the expiry after a successful refresh. It is a
// no-op when there is no authenticated session.
func (h *Holder) UpdateExpiry(expiresAt time.Time) {
	h.mu.Lock()
	if !h.state.Authenticated {
		h.mu.Unlock()
		return
	}
	h.state.Session.ExpiresAt = expiresAt
	subs := h.snapshotSubscribersLocked()
	state := h.state
	h.mu.Unlock()

	publish(subs, state)
}

// Clear destroys the held session on logout, refresh failure, or expiry
// detection. Clearing an already-empty Holder publishes nothing.
func (h *Holder) Clear() {
	h.mu.Lock()
	if !h.state.Authenticated {
		h.mu.Unlock()
		return
	}
	h.state = State{}
	subs := h.snapshotSubscribersLocked()
	state := h.state
	h.mu.Unlock()

	publish(subs, state)
}

// Subscribe registers a callback invoked on every state transition and
// returns a cancel function. The callback runs outside the Holder's lock.
func (h *Holder) Subscribe(fn func(State)) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subscribers[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.subscribers, id)
		h.mu.Unlock()
	}
}

func (h *Holder) snapshotSubscribersLocked() []func(State) {
	subs := make([]func(State), 0, len(h.subscribers))
	for _, fn := range h.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func publish(subs []func(State), state State) {
	for _, fn := range subs {
		fn(state)
	}
}
