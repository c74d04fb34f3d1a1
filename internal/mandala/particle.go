// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mandala

import (
	"math"
	"math/rand"
	"time"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// RepelRadius is the pointer influence radius in canvas units.
	RepelRadius = 120.0

	// DefaultRepelStrength is the push applied at zero distance from the pointer.
	DefaultRepelStrength = 40.0

	// Smoothing is the fraction of the remaining distance covered each frame.
	Smoothing = 0.05

	oscillationFreq = 1.6
	oscillationAmp  = 4.0

	minScatter = 0.15
	maxScatter = 1.25
	minSpeed   = 0.0015
	maxSpeed   = 0.0055
	minSize    = 0.8
	maxSize    = 2.2
)

// =============================================================================
// TYPES
// =============================================================================

// Point is a position on the canvas.
type Point struct {
	X, Y float64
}

// Pointer is the last known pointer position. Active is false when the
// pointer has left the canvas.
type Pointer struct {
	X, Y   float64
	Active bool
}

// Particle is one dot of the field.
type Particle struct {
	X, Y float64

	ScatterAngle  float64
	ScatterRadius float64
	Phase         float64
	Speed         float64

	MandalaRadius float64
	MandalaAngle  float64
	Ring          int

	BaseSize float64
}

// Field owns the particle set and its per-frame physics.
// A Field is not safe for concurrent use; the render loop owns it.
type Field struct {
	particles []Particle
	center    Point
	outer     float64
	count     int
	rings     int
	rng       *rand.Rand

	// RepelStrength overrides DefaultRepelStrength when non-zero.
	RepelStrength float64
}

// NewField returns an empty field seeded for reproducible layouts.
func NewField(seed int64) *Field {
	return &Field{rng: rand.New(rand.NewSource(seed))}
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Initialize replaces the particle set. Particles are spread over ringCount
// rings holding count/ringCount particles each; a trailing partial ring is
// dropped.
func (f *Field) Initialize(center Point, outerRadius float64, count, ringCount int) {
	if f.rng == nil {
		f.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	f.center = center
	f.outer = outerRadius
	f.count = count
	f.rings = ringCount
	f.particles = nil

	if count <= 0 || ringCount <= 0 {
		return
	}
	perRing := count / ringCount
	if perRing == 0 {
		return
	}

	f.particles = make([]Particle, 0, perRing*ringCount)
	for r := 0; r < ringCount; r++ {
		radius := outerRadius * float64(r+1) / float64(ringCount)
		offset := ringOffset(r, perRing)
		for i := 0; i < perRing; i++ {
			p := Particle{
				ScatterAngle:  f.rng.Float64() * 2 * math.Pi,
				ScatterRadius: outerRadius * (minScatter + f.rng.Float64()*(maxScatter-minScatter)),
				Phase:         f.rng.Float64() * 2 * math.Pi,
				Speed:         minSpeed + f.rng.Float64()*(maxSpeed-minSpeed),
				MandalaRadius: radius,
				MandalaAngle:  2*math.Pi*float64(i)/float64(perRing) + offset,
				Ring:          r,
				BaseSize:      minSize + f.rng.Float64()*(maxSize-minSize),
			}
			if f.rng.Intn(2) == 0 {
				p.Speed = -p.Speed
			}
			p.X = center.X + math.Cos(p.ScatterAngle)*p.ScatterRadius
			p.Y = center.Y + math.Sin(p.ScatterAngle)*p.ScatterRadius
			f.particles = append(f.particles, p)
		}
	}
}

// Rescale maps every particle onto a new center and outer radius without
// re-seeding. Distances from the center scale by newOuterRadius/old.
// An empty field is initialized instead, using the last requested counts.
func (f *Field) Rescale(newCenter Point, newOuterRadius float64) {
	if len(f.particles) == 0 || f.outer == 0 {
		f.Initialize(newCenter, newOuterRadius, f.count, f.rings)
		return
	}

	ratio := newOuterRadius / f.outer
	for i := range f.particles {
		p := &f.particles[i]
		p.X = newCenter.X + (p.X-f.center.X)*ratio
		p.Y = newCenter.Y + (p.Y-f.center.Y)*ratio
		p.ScatterRadius *= ratio
		p.MandalaRadius *= ratio
	}
	f.center = newCenter
	f.outer = newOuterRadius
}

// =============================================================================
// PHYSICS
// =============================================================================

// Step advances every particle one frame. t is the frame time in seconds,
// eased the blend between idle (0) and mandala (1), rotation the
// accumulated mandala spin. Pointer repulsion applies only while idle.
func (f *Field) Step(t, eased, rotation float64, pointer Pointer, thinking bool) {
	strength := f.RepelStrength
	if strength == 0 {
		strength = DefaultRepelStrength
	}
	repel := !thinking && pointer.Active
	osc := oscillationAmp * (1 - eased)

	for i := range f.particles {
		p := &f.particles[i]
		p.ScatterAngle += p.Speed

		idleX := f.center.X + math.Cos(p.ScatterAngle)*p.ScatterRadius
		idleY := f.center.Y + math.Sin(p.ScatterAngle)*p.ScatterRadius

		angle := p.MandalaAngle + ringDir(p.Ring)*rotation
		ringX := f.center.X + math.Cos(angle)*p.MandalaRadius
		ringY := f.center.Y + math.Sin(angle)*p.MandalaRadius

		tx := Lerp(idleX, ringX, eased) + math.Sin(t*oscillationFreq+p.Phase)*osc
		ty := Lerp(idleY, ringY, eased) + math.Cos(t*oscillationFreq+p.Phase)*osc

		if repel {
			dx := tx - pointer.X
			dy := ty - pointer.Y
			d := math.Hypot(dx, dy)
			if d > 0 && d < RepelRadius {
				push := (1 - d/RepelRadius) * strength
				tx += dx / d * push
				ty += dy / d * push
			}
		}

		p.X += (tx - p.X) * Smoothing
		p.Y += (ty - p.Y) * Smoothing
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Particles returns the live particle slice. Callers must not retain it
// across frames.
func (f *Field) Particles() []Particle { return f.particles }

// Len returns the number of particles.
func (f *Field) Len() int { return len(f.particles) }

// Center returns the current field center.
func (f *Field) Center() Point { return f.center }

// OuterRadius returns the radius of the outermost ring.
func (f *Field) OuterRadius() float64 { return f.outer }

// Rings returns the requested ring count.
func (f *Field) Rings() int { return f.rings }

// ringOffset staggers odd rings by half a slot.
func ringOffset(ring, perRing int) float64 {
	if ring%2 == 0 {
		return 0
	}
	return math.Pi / float64(perRing)
}

// ringDir alternates spin direction between neighbouring rings.
func ringDir(ring int) float64 {
	if ring%2 == 0 {
		return 1
	}
	return -1
}
