// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package thinking

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestMachine() (*Machine, *FakeClock) {
	clock := NewFakeClock(epoch)
	return New(clock, 0), clock
}

// =============================================================================
// MINIMUM DURATION
// =============================================================================

func TestMachine_StartStop(t *testing.T) {
	m, clock := newTestMachine()
	assert.Equal(t, Idle, m.State())

	m.Start()
	assert.True(t, m.IsThinking())
	assert.Equal(t, epoch, m.StartedAt())

	clock.Advance(300 * time.Millisecond)
	m.Stop()
	assert.True(t, m.IsThinking(), "fast reply must not end thinking early")
	assert.True(t, m.StopPending())

	clock.Advance(899 * time.Millisecond)
	assert.True(t, m.IsThinking())

	clock.Advance(time.Millisecond)
	assert.False(t, m.IsThinking())
	assert.False(t, m.StopPending())
}

// TestMachine_MinimumDuration checks idle - thinking >= 1200ms for replies
// arriving at any point inside the window.
func TestMachine_MinimumDuration(t *testing.T) {
	for _, reply := range []time.Duration{0, time.Millisecond, 500 * time.Millisecond, 1199 * time.Millisecond} {
		m, clock := newTestMachine()

		var thinkingAt, idleAt time.Time
		m.OnChange(func(s State) {
			if s == Thinking {
				thinkingAt = clock.Now()
			} else {
				idleAt = clock.Now()
			}
		})

		m.Start()
		clock.Advance(reply)
		m.Stop()
		for i := 0; i < 30 && m.IsThinking(); i++ {
			clock.Advance(50 * time.Millisecond)
		}

		require.False(t, idleAt.IsZero(), "reply=%v", reply)
		assert.GreaterOrEqual(t, idleAt.Sub(thinkingAt), DefaultMinDuration, "reply=%v", reply)
	}
}

func TestMachine_SlowReplyStopsImmediately(t *testing.T) {
	m, clock := newTestMachine()
	m.Start()
	clock.Advance(2 * time.Second)
	m.Stop()
	assert.False(t, m.IsThinking())
	assert.Equal(t, 0, clock.Pending())
}

func TestMachine_StopWhileIdle(t *testing.T) {
	m, clock := newTestMachine()
	calls := 0
	m.OnChange(func(State) { calls++ })

	m.Stop()
	assert.Equal(t, Idle, m.State())
	assert.Equal(t, 0, clock.Pending())
	assert.Equal(t, 0, calls)
}

// =============================================================================
// RE-ENTRY
// =============================================================================

func TestMachine_StartCancelsPendingStop(t *testing.T) {
	m, clock := newTestMachine()
	m.Start()
	clock.Advance(100 * time.Millisecond)
	m.Stop()

	clock.Advance(100 * time.Millisecond)
	m.Start()
	assert.Equal(t, epoch, m.StartedAt(), "re-entry keeps the original start")
	assert.False(t, m.StopPending())

	clock.Advance(5 * time.Second)
	assert.True(t, m.IsThinking(), "stale stop must not fire")
}

func TestMachine_StaleTimerIgnored(t *testing.T) {
	// A timer that cannot be stopped still must not end a newer period.
	clock := NewFakeClock(epoch)
	m := New(stubbornClock{clock}, 0)

	m.Start()
	m.Stop()
	m.Start()
	clock.Advance(2 * time.Second)
	assert.True(t, m.IsThinking())
}

func TestMachine_DoubleStop(t *testing.T) {
	m, clock := newTestMachine()
	m.Start()
	m.Stop()
	clock.Advance(600 * time.Millisecond)
	m.Stop()
	clock.Advance(599 * time.Millisecond)
	assert.True(t, m.IsThinking())
	clock.Advance(time.Millisecond)
	assert.False(t, m.IsThinking())
}

// =============================================================================
// OBSERVERS
// =============================================================================

func TestMachine_OnChangeCancel(t *testing.T) {
	m, clock := newTestMachine()
	var got []State
	cancel := m.OnChange(func(s State) { got = append(got, s) })

	m.Start()
	m.Stop()
	clock.Advance(DefaultMinDuration)
	assert.Equal(t, []State{Thinking, Idle}, got)

	cancel()
	m.Start()
	assert.Len(t, got, 2)
}

func TestMachine_Elapsed(t *testing.T) {
	m, clock := newTestMachine()
	assert.Zero(t, m.Elapsed())
	m.Start()
	clock.Advance(750 * time.Millisecond)
	assert.Equal(t, 750*time.Millisecond, m.Elapsed())
}

func TestMachine_CustomMinimum(t *testing.T) {
	clock := NewFakeClock(epoch)
	m := New(clock, 200*time.Millisecond)
	m.Start()
	m.Stop()
	clock.Advance(200 * time.Millisecond)
	assert.False(t, m.IsThinking())
}

func TestMachine_RealClock(t *testing.T) {
	m := New(nil, 20*time.Millisecond)
	done := make(chan struct{})
	var once sync.Once
	m.OnChange(func(s State) {
		if s == Idle {
			once.Do(func() { close(done) })
		}
	})

	m.Start()
	m.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("machine never returned to idle")
	}
	assert.GreaterOrEqual(t, time.Since(m.StartedAt()), 20*time.Millisecond)
}

func TestMachine_Concurrent(t *testing.T) {
	m := New(nil, time.Millisecond)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func() { defer wg.Done(); m.Start() }()
		go func() { defer wg.Done(); m.Stop() }()
		go func() { defer wg.Done(); _ = m.IsThinking(); _ = m.Elapsed() }()
	}
	wg.Wait()
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "thinking", Thinking.String())
	assert.Equal(t, "unknown", State(9).String())
}

// stubbornClock hands out timers whose Stop does nothing.
type stubbornClock struct{ *FakeClock }

func (c stubbornClock) AfterFunc(d time.Duration, f func()) Timer {
	c.FakeClock.AfterFunc(d, f)
	return noopTimer{}
}

type noopTimer struct{}

func (noopTimer) Stop() bool { return false }
