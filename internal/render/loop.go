// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"math"
	"sync"

	"github.com/jeranaias/ultron-tui/internal/mandala"
)

// =============================================================================
// OPTIONS
// =============================================================================

// LinkStride is the sampling stride for connective lines. Only every
// LinkStride-th particle is tested against every LinkStride-th particle.
const LinkStride = 12

// Options configure a Loop.
type Options struct {
	// Particles requested per field (default: 180)
	Particles int

	// Rings in the mandala (default: 6)
	Rings int

	// RadiusFraction of the shorter canvas side used as the outer ring radius (default: 0.42)
	RadiusFraction float64

	// LinkFactor is the link distance as a fraction of the outer radius (default: 0.55)
	LinkFactor float64

	// FPS used to derive frame time (default: 30)
	FPS int

	// RepelStrength for the pointer (default: mandala.DefaultRepelStrength)
	RepelStrength float64

	// Seed for the particle layout. Zero picks a time-based seed.
	Seed int64

	// Ease selects the progress curve. Nil means mandala.EaseInOut.
	Ease mandala.EasingFunc
}

// DefaultOptions returns the default loop options.
func DefaultOptions() Options {
	return Options{
		Particles:      180,
		Rings:          6,
		RadiusFraction: 0.42,
		LinkFactor:     0.55,
		FPS:            30,
		RepelStrength:  mandala.DefaultRepelStrength,
	}
}

func (o *Options) setDefaults() {
	d := DefaultOptions()
	if o.Particles <= 0 {
		o.Particles = d.Particles
	}
	if o.Rings <= 0 {
		o.Rings = d.Rings
	}
	if o.RadiusFraction <= 0 {
		o.RadiusFraction = d.RadiusFraction
	}
	if o.LinkFactor <= 0 {
		o.LinkFactor = d.LinkFactor
	}
	if o.FPS <= 0 {
		o.FPS = d.FPS
	}
	if o.RepelStrength == 0 {
		o.RepelStrength = d.RepelStrength
	}
}

// ThinkingSource reports whether the assistant is busy.
// *thinking.Machine satisfies it.
type ThinkingSource interface {
	IsThinking() bool
}

// FrameStats summarizes one Tick.
type FrameStats struct {
	Frame     uint64
	Particles int
	Lines     int
	Progress  float64
	Rotation  float64
	Thinking  bool
	Resized   bool
}

// =============================================================================
// LOOP
// =============================================================================

// Loop is the per-frame orchestrator. There is one per process. Tick must be
// called from a single goroutine; SetPointer and ClearPointer may be called
// from any goroutine.
type Loop struct {
	opts     Options
	field    *mandala.Field
	progress mandala.Progress
	source   ThinkingSource
	frame    uint64
	w, h     float64

	pmu     sync.Mutex
	pointer mandala.Pointer
}

// NewLoop creates a Loop reading the thinking flag from src.
func NewLoop(src ThinkingSource, opts Options) *Loop {
	opts.setDefaults()
	var field *mandala.Field
	if opts.Seed != 0 {
		field = mandala.NewField(opts.Seed)
	} else {
		field = &mandala.Field{}
	}
	field.RepelStrength = opts.RepelStrength
	return &Loop{
		opts:     opts,
		field:    field,
		progress: mandala.Progress{Ease: opts.Ease},
		source:   src,
	}
}

// Tick renders one frame onto c.
func (l *Loop) Tick(c Canvas) FrameStats {
	stats := FrameStats{Frame: l.frame}
	l.frame++

	w, h := c.Size()
	center := mandala.Point{X: w / 2, Y: h / 2}
	outer := math.Min(w, h) * l.opts.RadiusFraction
	if (w != l.w || h != l.h) && outer > 0 {
		if l.field.Len() == 0 {
			l.field.Initialize(center, outer, l.opts.Particles, l.opts.Rings)
		} else {
			l.field.Rescale(center, outer)
		}
		l.w, l.h = w, h
		stats.Resized = true
	}

	thinking := l.source != nil && l.source.IsThinking()
	l.progress.Advance(thinking)
	eased := l.progress.Eased()

	c.Clear()
	c.Glow(center.X, center.Y, outer*1.35, 0.18+0.5*eased)

	t := float64(stats.Frame) / float64(l.opts.FPS)
	l.field.Step(t, eased, l.progress.Rotation, l.Pointer(), thinking)

	particles := l.field.Particles()
	alpha := 0.55 + 0.45*eased
	for _, p := range particles {
		c.Disc(p.X, p.Y, p.BaseSize*(1+0.35*eased), alpha)
	}

	if l.progress.Linked() {
		link := outer * l.opts.LinkFactor
		for i := 0; i < len(particles); i += LinkStride {
			a := particles[i]
			for j := i + LinkStride; j < len(particles); j += LinkStride {
				b := particles[j]
				d := math.Hypot(a.X-b.X, a.Y-b.Y)
				if d >= link {
					continue
				}
				c.Line(a.X, a.Y, b.X, b.Y, (1-d/link)*0.35*eased)
				stats.Lines++
			}
		}
	}

	stats.Particles = len(particles)
	stats.Progress = l.progress.Value
	stats.Rotation = l.progress.Rotation
	stats.Thinking = thinking
	return stats
}

// SetPointer records the pointer position in canvas units.
func (l *Loop) SetPointer(x, y float64) {
	l.pmu.Lock()
	l.pointer = mandala.Pointer{X: x, Y: y, Active: true}
	l.pmu.Unlock()
}

// ClearPointer marks the pointer as outside the canvas.
func (l *Loop) ClearPointer() {
	l.pmu.Lock()
	l.pointer.Active = false
	l.pmu.Unlock()
}

// Pointer returns the last pointer state.
func (l *Loop) Pointer() mandala.Pointer {
	l.pmu.Lock()
	defer l.pmu.Unlock()
	return l.pointer
}

// Progress returns the current progress state.
func (l *Loop) Progress() mandala.Progress { return l.progress }

// Field exposes the particle field.
func (l *Loop) Field() *mandala.Field { return l.field }

// Options returns the effective options.
func (l *Loop) Options() Options { return l.opts }

// Reconfigure applies new particle counts. The field is rebuilt on the next
// Tick when the layout changed.
func (l *Loop) Reconfigure(opts Options) {
	opts.setDefaults()
	rebuild := opts.Particles != l.opts.Particles || opts.Rings != l.opts.Rings
	l.opts = opts
	l.field.RepelStrength = opts.RepelStrength
	l.progress.Ease = opts.Ease
	if rebuild {
		l.field.Initialize(l.field.Center(), 0, 0, 0)
		l.w, l.h = 0, 0
	}
}
