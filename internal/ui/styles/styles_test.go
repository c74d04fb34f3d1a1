// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestNewTheme_ForcedModes(t *testing.T) {
	dark := NewThemeWithProfile(ModeDark, termenv.TrueColor)
	assert.True(t, dark.IsDark)
	assert.Equal(t, MandalaDark, dark.Mandala)

	light := NewThemeWithProfile("LIGHT", termenv.TrueColor)
	assert.False(t, light.IsDark)
	assert.Equal(t, MandalaLight, light.Mandala)
}

func TestMandalaPalettes(t *testing.T) {
	assert.Len(t, MandalaDark, 8)
	assert.Len(t, MandalaLight, 8)
}

func TestHyperlink(t *testing.T) {
	th := NewThemeWithProfile(ModeDark, termenv.TrueColor)
	link := th.Hyperlink("https://host/health", "")
	assert.Contains(t, link, "\x1b]8;;https://host/health")
	assert.Contains(t, link, "https://host/health")

	ascii := NewThemeWithProfile(ModeDark, termenv.Ascii)
	plain := ascii.Hyperlink("https://host/health", "health")
	assert.NotContains(t, plain, "\x1b]8;;")
	assert.Contains(t, plain, "health")
}

func TestRenderStatus(t *testing.T) {
	th := NewThemeWithProfile(ModeDark, termenv.Ascii)
	assert.True(t, strings.Contains(th.RenderStatus(true, "saved"), StatusIndicators.Success))
	assert.True(t, strings.Contains(th.RenderStatus(false, "down"), StatusIndicators.Error))
}
