// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mandala implements the particle field behind the ultron visualizer.
//
// Particles drift on loose idle orbits while the assistant is idle and
// converge onto concentric rings (the mandala) while it is thinking. The
// blend between the two layouts is driven by Progress, whose eased value
// and accumulated rotation are fed to Field.Step once per frame.
//
// # Usage
//
//	var f mandala.Field
//	f.Initialize(mandala.Point{X: 80, Y: 48}, 40, 180, 6)
//
//	var p mandala.Progress
//	p.Advance(thinking)
//	f.Step(t, p.Eased(), p.Rotation, pointer, thinking)
//
// The package has no notion of drawing; see internal/render.
package mandala
