// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mandala

// EasingFunc maps progress (0-1) to output (0-1).
type EasingFunc func(t float64) float64

// Lerp interpolates linearly between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Clamp01 limits v to [0, 1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// EaseInOut - quadratic, acceleration until halfway then deceleration.
// Input is clamped to [0, 1].
func EaseInOut(t float64) float64 {
	t = Clamp01(t)
	if t < 0.5 {
		return 2 * t * t
	}
	return -1 + (4-2*t)*t
}

// EaseLinear - constant speed
func EaseLinear(t float64) float64 {
	return Clamp01(t)
}

// EaseOutCubic - decelerating to zero
func EaseOutCubic(t float64) float64 {
	t = Clamp01(t) - 1
	return t*t*t + 1
}

// Easings lists the curves selectable from config by name.
var Easings = map[string]EasingFunc{
	"inout":  EaseInOut,
	"linear": EaseLinear,
	"cubic":  EaseOutCubic,
}

// EasingByName returns the named curve, or EaseInOut when unknown.
func EasingByName(name string) EasingFunc {
	if fn, ok := Easings[name]; ok {
		return fn
	}
	return EaseInOut
}
