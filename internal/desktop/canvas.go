// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package desktop

import (
	"image/color"
	"math"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Surface receives drawing in pixels. The desktop window implements it
// over an ebiten image.
type Surface interface {
	Fill(c color.Color)
	FillCircle(x, y, r float32, c color.Color)
	StrokeLine(x1, y1, x2, y2, width float32, c color.Color)
}

const (
	glowSteps  = 6
	phaseStep  = 0.002
	lineWidth  = 1
	minDiscPx  = 0.75
	lineSat    = 0.55
	lineValue  = 0.95
	defaultHex = "#0B0B14"
)

// Canvas adapts a Surface to the render loop's canvas. Canvas units are
// pixels.
type Canvas struct {
	surface    Surface
	w, h       float64
	background color.NRGBA
	palette    []color.NRGBA
	next       int
	phase      float64
}

// NewCanvas creates a canvas drawing discs from palette over background.
// Unparseable colours fall back to neutral ones.
func NewCanvas(palette []lipgloss.Color, background lipgloss.Color) *Canvas {
	c := &Canvas{background: ParseColor(string(background), ParseColor(defaultHex, color.NRGBA{A: 255}))}
	for _, p := range palette {
		c.palette = append(c.palette, ParseColor(string(p), color.NRGBA{R: 200, G: 200, B: 255, A: 255}))
	}
	if len(c.palette) == 0 {
		c.palette = []color.NRGBA{{R: 200, G: 200, B: 255, A: 255}}
	}
	return c
}

// Bind points the canvas at s for the next frame.
func (c *Canvas) Bind(s Surface, w, h int) {
	c.surface = s
	c.w, c.h = float64(w), float64(h)
}

// Size implements render.Canvas.
func (c *Canvas) Size() (w, h float64) { return c.w, c.h }

// Clear implements render.Canvas.
func (c *Canvas) Clear() {
	c.next = 0
	c.phase = math.Mod(c.phase+phaseStep, 1)
	if c.surface != nil {
		c.surface.Fill(c.background)
	}
}

// Glow implements render.Canvas with concentric translucent discs.
func (c *Canvas) Glow(cx, cy, r, intensity float64) {
	if c.surface == nil || r <= 0 || intensity <= 0 {
		return
	}
	base := c.palette[len(c.palette)/2]
	for i := glowSteps; i >= 1; i-- {
		frac := float64(i) / glowSteps
		a := intensity * (1 - frac) * 0.35
		c.surface.FillCircle(float32(cx), float32(cy), float32(r*frac), withAlpha(base, a))
	}
}

// Disc implements render.Canvas. Successive discs walk the palette.
func (c *Canvas) Disc(x, y, r, alpha float64) {
	if c.surface == nil {
		return
	}
	col := c.palette[c.next%len(c.palette)]
	c.next++
	c.surface.FillCircle(float32(x), float32(y), float32(math.Max(r, minDiscPx)), withAlpha(col, alpha))
}

// Line implements render.Canvas. Line hue drifts slowly with time.
func (c *Canvas) Line(x1, y1, x2, y2, alpha float64) {
	if c.surface == nil {
		return
	}
	r, g, b := colorful.Hsv(c.phase*360, lineSat, lineValue).Clamped().RGB255()
	col := withAlpha(color.NRGBA{R: r, G: g, B: b, A: 255}, alpha)
	c.surface.StrokeLine(float32(x1), float32(y1), float32(x2), float32(y2), lineWidth, col)
}

// ParseColor parses a #rrggbb colour, returning fallback when s is not one.
func ParseColor(s string, fallback color.NRGBA) color.NRGBA {
	c, err := colorful.Hex(s)
	if err != nil {
		return fallback
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

func withAlpha(c color.NRGBA, a float64) color.NRGBA {
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	c.A = uint8(math.Round(a * 255))
	return c
}
