// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package thinking

import (
	"sync"
	"time"
)

// DefaultMinDuration is how long Thinking stays visible at minimum.
const DefaultMinDuration = 1200 * time.Millisecond

// State is the machine state.
type State int

const (
	Idle State = iota
	Thinking
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Thinking:
		return "thinking"
	default:
		return "unknown"
	}
}

// Machine is the thinking state machine. It is safe for concurrent use;
// deferred stops fire on the clock's goroutine.
type Machine struct {
	mu        sync.Mutex
	clock     Clock
	min       time.Duration
	state     State
	startedAt time.Time
	timer     Timer
	gen       uint64

	listeners map[int]func(State)
	nextID    int
}

// New creates a Machine. A nil clock means RealClock; a non-positive min
// means DefaultMinDuration.
func New(clock Clock, min time.Duration) *Machine {
	if clock == nil {
		clock = RealClock{}
	}
	if min <= 0 {
		min = DefaultMinDuration
	}
	return &Machine{
		clock:     clock,
		min:       min,
		listeners: make(map[int]func(State)),
	}
}

// Start enters Thinking. While already Thinking it only cancels a pending
// deferred stop; the original start time is kept.
func (m *Machine) Start() {
	m.mu.Lock()
	m.gen++
	m.cancelTimerLocked()
	if m.state == Thinking {
		m.mu.Unlock()
		return
	}
	m.state = Thinking
	m.startedAt = m.clock.Now()
	fns := m.listenersLocked()
	m.mu.Unlock()

	notify(fns, Thinking)
}

// Stop requests the transition back to Idle. The transition happens once
// the minimum duration since Start has elapsed. Stop while Idle is a no-op.
func (m *Machine) Stop() {
	m.mu.Lock()
	if m.state == Idle {
		m.mu.Unlock()
		return
	}
	m.gen++
	m.cancelTimerLocked()

	remaining := m.min - m.clock.Now().Sub(m.startedAt)
	if remaining > 0 {
		gen := m.gen
		m.timer = m.clock.AfterFunc(remaining, func() { m.finish(gen) })
		m.mu.Unlock()
		return
	}
	m.state = Idle
	fns := m.listenersLocked()
	m.mu.Unlock()

	notify(fns, Idle)
}

func (m *Machine) finish(gen uint64) {
	m.mu.Lock()
	if gen != m.gen || m.state == Idle {
		m.mu.Unlock()
		return
	}
	m.state = Idle
	m.timer = nil
	fns := m.listenersLocked()
	m.mu.Unlock()

	notify(fns, Idle)
}

// IsThinking reports whether the machine is in Thinking.
func (m *Machine) IsThinking() bool {
	return m.State() == Thinking
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// StartedAt returns when the current (or last) Thinking period began.
func (m *Machine) StartedAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startedAt
}

// Elapsed returns the time spent in the current Thinking period, or zero
// while Idle.
func (m *Machine) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Thinking {
		return 0
	}
	return m.clock.Now().Sub(m.startedAt)
}

// StopPending reports whether a deferred stop is scheduled.
func (m *Machine) StopPending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timer != nil
}

// OnChange registers fn to be called after every transition. The returned
// function removes it.
func (m *Machine) OnChange(fn func(State)) (cancel func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

func (m *Machine) cancelTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Machine) listenersLocked() []func(State) {
	fns := make([]func(State), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	return fns
}

func notify(fns []func(State), s State) {
	for _, fn := range fns {
		fn(s)
	}
}
