// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// imageSurface draws onto an ebiten image.
type imageSurface struct {
	img *ebiten.Image
}

func (s imageSurface) Fill(c color.Color) { s.img.Fill(c) }

func (s imageSurface) FillCircle(x, y, r float32, c color.Color) {
	vector.DrawFilledCircle(s.img, x, y, r, c, true)
}

func (s imageSurface) StrokeLine(x1, y1, x2, y2, width float32, c color.Color) {
	vector.StrokeLine(s.img, x1, y1, x2, y2, width, c, true)
}
