// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/ultron-tui/internal/mandala"
)

// =============================================================================
// TEST DOUBLES
// =============================================================================

// recorder is a Canvas that counts draw calls.
type recorder struct {
	w, h  float64
	calls []string
	discs int
	lines int
	glows int
}

func (r *recorder) Size() (float64, float64) { return r.w, r.h }
func (r *recorder) Clear() {
	r.calls = append(r.calls, "clear")
}
func (r *recorder) Glow(cx, cy, rad, intensity float64) {
	r.glows++
	r.calls = append(r.calls, "glow")
}
func (r *recorder) Disc(x, y, rad, alpha float64) {
	r.discs++
	r.calls = append(r.calls, "disc")
}
func (r *recorder) Line(x1, y1, x2, y2, alpha float64) {
	r.lines++
	r.calls = append(r.calls, "line")
}

func (r *recorder) reset() {
	r.calls = nil
	r.discs, r.lines, r.glows = 0, 0, 0
}

type flag struct{ on atomic.Bool }

func (f *flag) IsThinking() bool { return f.on.Load() }

func newTestLoop(src ThinkingSource) *Loop {
	opts := DefaultOptions()
	opts.Seed = 42
	return NewLoop(src, opts)
}

// =============================================================================
// LOOP TESTS
// =============================================================================

func TestTick_InitializesOnFirstFrame(t *testing.T) {
	l := newTestLoop(&flag{})
	c := &recorder{w: 800, h: 600}

	stats := l.Tick(c)
	assert.True(t, stats.Resized)
	assert.Equal(t, 180, stats.Particles)
	assert.Equal(t, 180, c.discs)
	assert.Equal(t, 400.0, l.Field().Center().X)
	assert.InDelta(t, 600*0.42, l.Field().OuterRadius(), 1e-9)

	stats = l.Tick(c)
	assert.False(t, stats.Resized)
	assert.Equal(t, uint64(1), stats.Frame)
}

func TestTick_DrawOrder(t *testing.T) {
	l := newTestLoop(&flag{})
	c := &recorder{w: 400, h: 400}
	l.Tick(c)

	require.GreaterOrEqual(t, len(c.calls), 3)
	assert.Equal(t, "clear", c.calls[0])
	assert.Equal(t, "glow", c.calls[1])
	assert.Equal(t, "disc", c.calls[2])
	assert.Equal(t, 1, c.glows)
}

func TestTick_ResizeRescales(t *testing.T) {
	l := newTestLoop(&flag{})
	c := &recorder{w: 800, h: 600}
	l.Tick(c)

	c.w, c.h = 400, 300
	stats := l.Tick(c)
	assert.True(t, stats.Resized)
	assert.Equal(t, 180, stats.Particles)
	assert.InDelta(t, 300*0.42, l.Field().OuterRadius(), 1e-9)
}

func TestTick_EmptyCanvasKeepsLayout(t *testing.T) {
	l := newTestLoop(&flag{})
	c := &recorder{w: 800, h: 600}
	l.Tick(c)
	before := append([]mandala.Particle(nil), l.Field().Particles()...)

	c.w, c.h = 800, 0
	stats := l.Tick(c)
	assert.False(t, stats.Resized)
	assert.InDelta(t, 600*0.42, l.Field().OuterRadius(), 1e-9)

	c.w, c.h = 400, 300
	stats = l.Tick(c)
	assert.True(t, stats.Resized)
	after := l.Field().Particles()
	require.Len(t, after, len(before))
	for i := range before {
		assert.InDelta(t, before[i].ScatterRadius/2, after[i].ScatterRadius, 1e-9)
	}
}

func TestTick_NoLinesWhileIdle(t *testing.T) {
	l := newTestLoop(&flag{})
	c := &recorder{w: 800, h: 600}
	for i := 0; i < 100; i++ {
		stats := l.Tick(c)
		require.Zero(t, stats.Lines)
	}
	assert.Zero(t, c.lines)
	assert.Zero(t, l.Progress().Value)
}

func TestTick_LinesOnceFormed(t *testing.T) {
	src := &flag{}
	src.on.Store(true)
	l := newTestLoop(src)
	c := &recorder{w: 800, h: 600}

	// 0.04 then 0.08: lines become possible from the second frame.
	first := l.Tick(c)
	assert.InDelta(t, 0.04, first.Progress, 1e-9)
	assert.Zero(t, first.Lines)

	var last FrameStats
	for i := 0; i < 300; i++ {
		c.reset()
		last = l.Tick(c)
	}
	assert.True(t, last.Thinking)
	assert.Equal(t, 1.0, last.Progress)
	assert.Greater(t, last.Lines, 0)
	assert.Equal(t, last.Lines, c.lines)

	// 180 particles sampled every 12th gives 15, so at most 15*14/2 pairs.
	assert.LessOrEqual(t, last.Lines, 105)
}

func TestTick_RotationFollowsThinking(t *testing.T) {
	src := &flag{}
	l := newTestLoop(src)
	c := &recorder{w: 200, h: 200}

	l.Tick(c)
	assert.Zero(t, l.Progress().Rotation)

	src.on.Store(true)
	l.Tick(c)
	spun := l.Progress().Rotation
	assert.Greater(t, spun, 0.0)

	src.on.Store(false)
	l.Tick(c)
	assert.Equal(t, spun, l.Progress().Rotation)
}

func TestTick_NilSource(t *testing.T) {
	l := NewLoop(nil, Options{Particles: 24, Rings: 3})
	stats := l.Tick(&recorder{w: 100, h: 100})
	assert.False(t, stats.Thinking)
	assert.Equal(t, 24, stats.Particles)
}

func TestPointer(t *testing.T) {
	l := newTestLoop(nil)
	assert.False(t, l.Pointer().Active)

	l.SetPointer(10, 20)
	p := l.Pointer()
	assert.True(t, p.Active)
	assert.Equal(t, 10.0, p.X)

	l.ClearPointer()
	assert.False(t, l.Pointer().Active)
}

func TestReconfigure_RebuildsField(t *testing.T) {
	l := newTestLoop(nil)
	c := &recorder{w: 300, h: 300}
	l.Tick(c)

	opts := l.Options()
	opts.Particles = 60
	opts.Rings = 4
	l.Reconfigure(opts)

	stats := l.Tick(c)
	assert.True(t, stats.Resized)
	assert.Equal(t, 60, stats.Particles)
}

func TestDefaultOptions_Fill(t *testing.T) {
	l := NewLoop(nil, Options{})
	assert.Equal(t, DefaultOptions().Particles, l.Options().Particles)
	assert.Equal(t, DefaultOptions().FPS, l.Options().FPS)
}

// =============================================================================
// BRAILLE CANVAS TESTS
// =============================================================================

func TestBraille_Size(t *testing.T) {
	b := NewBrailleCanvas(10, 5, 4)
	w, h := b.Size()
	assert.Equal(t, 80.0, w)
	assert.Equal(t, 80.0, h)

	cols, rows := b.Cells()
	assert.Equal(t, 10, cols)
	assert.Equal(t, 5, rows)
}

func TestBraille_DiscAndClear(t *testing.T) {
	b := NewBrailleCanvas(4, 2, 1)
	b.Disc(0, 0, 0.2, 1)
	assert.Equal(t, 1, b.Lit())

	out := b.String()
	assert.True(t, strings.ContainsRune(out, rune(0x2801)))
	assert.Equal(t, 1, strings.Count(out, "\n"))

	b.Clear()
	assert.Zero(t, b.Lit())
	assert.Equal(t, "    \n    ", b.String())
}

func TestBraille_Line(t *testing.T) {
	b := NewBrailleCanvas(4, 1, 1)
	b.Line(0, 0, 7, 3, 0.5)
	assert.Equal(t, 8, b.Lit())
}

func TestBraille_ClipsOutside(t *testing.T) {
	b := NewBrailleCanvas(2, 2, 1)
	b.Disc(-10, -10, 3, 1)
	b.Line(-5, 1, -1, 1, 1)
	b.Disc(100, 100, 0.1, 1)
	assert.Zero(t, b.Lit())
}

func TestBraille_ZeroAlphaIgnored(t *testing.T) {
	b := NewBrailleCanvas(2, 2, 1)
	b.Disc(1, 1, 0.1, 0)
	assert.Zero(t, b.Lit())
}

func TestBraille_DrivenByLoop(t *testing.T) {
	b := NewBrailleCanvas(40, 12, 4)
	l := newTestLoop(nil)
	l.Tick(b)
	assert.Greater(t, b.Lit(), 0)
	assert.Equal(t, 11, strings.Count(b.String(), "\n"))
}

// =============================================================================
// TICKER TESTS
// =============================================================================

func TestFrameInterval(t *testing.T) {
	assert.Equal(t, time.Second/30, FrameInterval(0))
	assert.Equal(t, time.Second/60, FrameInterval(60))
}

func TestTickCmd(t *testing.T) {
	assert.NotNil(t, TickCmd(1000))
}
