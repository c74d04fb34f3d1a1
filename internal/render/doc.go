// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render drives the mandala one frame at a time.
//
// Loop.Tick is the whole per-frame algorithm: it resizes the field when the
// canvas changed, clears the surface, paints the background glow, advances
// the thinking-driven progress, steps the particles and draws them together
// with faint connective lines once the mandala has started to form. Any
// scheduler can call it: the terminal UI through FrameMsg ticks, the desktop
// window from ebiten's Draw, tests directly.
//
// Drawing goes through the Canvas interface. BrailleCanvas renders to a
// string of braille cells for the terminal.
package render
