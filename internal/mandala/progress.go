// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mandala

// Progress rates. Formation is fast, dissolution is slow.
const (
	FormRate      = 0.04
	DissolveRate  = 0.01
	BaseSpin      = 0.004
	SpinPerEased  = 0.018
	LinkThreshold = 0.05
)

// Progress tracks how far the mandala has formed and how far it has spun.
// Value stays in [0, 1]. Rotation is unbounded.
type Progress struct {
	Value    float64
	Rotation float64

	// Ease overrides the curve used for Eased and spin-up. Nil means EaseInOut.
	Ease EasingFunc
}

// Advance moves the progress one frame forward.
func (p *Progress) Advance(thinking bool) {
	if thinking {
		p.Value = Clamp01(p.Value + FormRate)
		p.Rotation += BaseSpin + SpinPerEased*p.Eased()
		return
	}
	p.Value = Clamp01(p.Value - DissolveRate)
}

// Eased returns the progress passed through the easing curve.
func (p *Progress) Eased() float64 {
	if p.Ease != nil {
		return Clamp01(p.Ease(p.Value))
	}
	return EaseInOut(p.Value)
}

// Linked reports whether the field is formed enough to draw connective lines.
func (p *Progress) Linked() bool {
	return p.Value > LinkThreshold
}
