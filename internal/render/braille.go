// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// BRAILLE CANVAS
// =============================================================================

// Each terminal cell holds a 2x4 grid of braille dots.
const (
	cellDotsX = 2
	cellDotsY = 4

	brailleBase = 0x2800
)

// dotBits maps (x, y) inside a cell to the braille bit.
var dotBits = [cellDotsX][cellDotsY]rune{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// DefaultPalette runs from dim violet to near white.
var DefaultPalette = []lipgloss.Color{
	"#3B2F5C", "#4B3B7A", "#5E4A99", "#7A5FB8",
	"#9A7BD4", "#B79CE6", "#D4C1F2", "#F0E8FF",
}

// BrailleCanvas rasterizes onto braille cells. Canvas units are dots
// multiplied by Scale, so the field keeps pixel-like proportions.
type BrailleCanvas struct {
	cols, rows int
	scale      float64
	dots       []float64 // intensity per dot, row-major
	glow       []float64 // glow per cell
	styles     []lipgloss.Style
}

// NewBrailleCanvas creates a canvas of cols x rows terminal cells.
// A non-positive scale means 4 units per dot.
func NewBrailleCanvas(cols, rows int, scale float64) *BrailleCanvas {
	if scale <= 0 {
		scale = 4
	}
	b := &BrailleCanvas{scale: scale}
	b.SetPalette(DefaultPalette)
	b.Resize(cols, rows)
	return b
}

// Resize changes the cell dimensions and clears the canvas.
func (b *BrailleCanvas) Resize(cols, rows int) {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	b.cols, b.rows = cols, rows
	b.dots = make([]float64, cols*cellDotsX*rows*cellDotsY)
	b.glow = make([]float64, cols*rows)
}

// SetPalette replaces the intensity colour ramp.
func (b *BrailleCanvas) SetPalette(colors []lipgloss.Color) {
	if len(colors) == 0 {
		colors = DefaultPalette
	}
	b.styles = make([]lipgloss.Style, len(colors))
	for i, c := range colors {
		b.styles[i] = lipgloss.NewStyle().Foreground(c)
	}
}

// Cells returns the canvas dimensions in terminal cells.
func (b *BrailleCanvas) Cells() (cols, rows int) { return b.cols, b.rows }

// Size implements Canvas.
func (b *BrailleCanvas) Size() (w, h float64) {
	return float64(b.cols*cellDotsX) * b.scale, float64(b.rows*cellDotsY) * b.scale
}

// Clear implements Canvas.
func (b *BrailleCanvas) Clear() {
	clear(b.dots)
	clear(b.glow)
}

// Glow implements Canvas. The glow tints lit cells; it never lights dots.
func (b *BrailleCanvas) Glow(cx, cy, r, intensity float64) {
	if r <= 0 {
		return
	}
	cellW := cellDotsX * b.scale
	cellH := cellDotsY * b.scale
	for row := 0; row < b.rows; row++ {
		y := (float64(row) + 0.5) * cellH
		for col := 0; col < b.cols; col++ {
			x := (float64(col) + 0.5) * cellW
			d := math.Hypot(x-cx, y-cy)
			if d >= r {
				continue
			}
			v := intensity * (1 - d/r)
			i := row*b.cols + col
			b.glow[i] = math.Max(b.glow[i], v)
		}
	}
}

// Disc implements Canvas. Discs smaller than a dot light a single dot.
func (b *BrailleCanvas) Disc(x, y, r, alpha float64) {
	dx, dy := x/b.scale, y/b.scale
	dr := r / b.scale
	if dr < 0.5 {
		b.plot(int(dx), int(dy), alpha)
		return
	}
	for py := int(dy - dr); py <= int(dy+dr); py++ {
		for px := int(dx - dr); px <= int(dx+dr); px++ {
			if math.Hypot(float64(px)-dx, float64(py)-dy) <= dr {
				b.plot(px, py, alpha)
			}
		}
	}
}

// Line implements Canvas using Bresenham over dots.
func (b *BrailleCanvas) Line(x1, y1, x2, y2, alpha float64) {
	x0, y0 := int(x1/b.scale), int(y1/b.scale)
	xe, ye := int(x2/b.scale), int(y2/b.scale)
	dx := abs(xe - x0)
	dy := -abs(ye - y0)
	sx, sy := 1, 1
	if x0 > xe {
		sx = -1
	}
	if y0 > ye {
		sy = -1
	}
	e := dx + dy
	for {
		b.plot(x0, y0, alpha)
		if x0 == xe && y0 == ye {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func (b *BrailleCanvas) plot(x, y int, alpha float64) {
	w := b.cols * cellDotsX
	h := b.rows * cellDotsY
	if x < 0 || y < 0 || x >= w || y >= h || alpha <= 0 {
		return
	}
	i := y*w + x
	if alpha > b.dots[i] {
		b.dots[i] = alpha
	}
}

// Lit returns the number of lit dots.
func (b *BrailleCanvas) Lit() int {
	n := 0
	for _, v := range b.dots {
		if v > 0 {
			n++
		}
	}
	return n
}

// String renders the canvas as rows of braille runes. Runs of cells sharing
// a colour are styled together.
func (b *BrailleCanvas) String() string {
	var sb strings.Builder
	var run strings.Builder
	w := b.cols * cellDotsX

	for row := 0; row < b.rows; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		runLevel := -1
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runLevel < 0 {
				sb.WriteString(run.String())
			} else {
				sb.WriteString(b.styles[runLevel].Render(run.String()))
			}
			run.Reset()
		}

		for col := 0; col < b.cols; col++ {
			var bits rune
			peak := 0.0
			for cy := 0; cy < cellDotsY; cy++ {
				for cx := 0; cx < cellDotsX; cx++ {
					v := b.dots[(row*cellDotsY+cy)*w+col*cellDotsX+cx]
					if v > 0 {
						bits |= dotBits[cx][cy]
						peak = math.Max(peak, v)
					}
				}
			}

			level := -1
			r := ' '
			if bits != 0 {
				r = brailleBase + bits
				level = b.level(peak + 0.35*b.glow[row*b.cols+col])
			}
			if level != runLevel {
				flush()
				runLevel = level
			}
			run.WriteRune(r)
		}
		flush()
	}
	return sb.String()
}

func (b *BrailleCanvas) level(v float64) int {
	n := len(b.styles)
	i := int(v * float64(n))
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
