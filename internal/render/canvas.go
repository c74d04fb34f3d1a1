// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

// Canvas is a drawing surface measured in canvas units.
// Alpha and intensity values are in [0, 1].
type Canvas interface {
	Size() (w, h float64)
	Clear()
	Glow(cx, cy, r, intensity float64)
	Disc(x, y, r, alpha float64)
	Line(x1, y1, x2, y2, alpha float64)
}
