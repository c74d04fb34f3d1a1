// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme modes accepted by NewTheme.
const (
	ModeAuto  = "auto"
	ModeDark  = "dark"
	ModeLight = "light"
)

// Theme holds all the styled components for the application.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// HEADER
	// ==========================================================================

	Header      lipgloss.Style
	HeaderBrand lipgloss.Style
	HeaderMeta  lipgloss.Style

	// ==========================================================================
	// TRANSCRIPT
	// ==========================================================================

	UserLabel      lipgloss.Style
	UserText       lipgloss.Style
	AssistantLabel lipgloss.Style
	AssistantText  lipgloss.Style
	SystemText     lipgloss.Style
	ResumeLink     lipgloss.Style

	// ==========================================================================
	// INPUT
	// ==========================================================================

	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style
	Placeholder    lipgloss.Style

	// ==========================================================================
	// STATUS BANNER
	// ==========================================================================

	BannerInfo    lipgloss.Style
	BannerSuccess lipgloss.Style
	BannerError   lipgloss.Style
	BannerHint    lipgloss.Style

	// ==========================================================================
	// SETTINGS PANEL
	// ==========================================================================

	Panel        lipgloss.Style
	PanelTitle   lipgloss.Style
	PanelLabel   lipgloss.Style
	Button       lipgloss.Style
	ButtonActive lipgloss.Style

	// ==========================================================================
	// MISC
	// ==========================================================================

	ThinkingText lipgloss.Style
	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
	Link         lipgloss.Style
	Muted        lipgloss.Style

	// Mandala is the braille canvas palette for this background.
	Mandala []lipgloss.Color
}

// NewTheme creates a theme for mode ("auto", "dark" or "light").
func NewTheme(mode string) *Theme {
	return NewThemeWithProfile(mode, termenv.ColorProfile())
}

// NewThemeWithProfile is NewTheme with an explicit color profile.
func NewThemeWithProfile(mode string, profile termenv.Profile) *Theme {
	var isDark bool
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ModeDark:
		isDark = true
	case ModeLight:
		isDark = false
	default:
		isDark = termenv.HasDarkBackground()
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{IsDark: isDark, ColorProfile: profile}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)
	t.HeaderBrand = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)
	t.HeaderMeta = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.UserLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)
	t.UserText = lipgloss.NewStyle().
		Foreground(TextPrimary)
	t.AssistantLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Violet)
	t.AssistantText = lipgloss.NewStyle().
		Foreground(TextPrimary)
	t.SystemText = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)
	t.ResumeLink = lipgloss.NewStyle().
		Foreground(Cyan).
		Underline(true)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)
	t.Placeholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	banner := lipgloss.NewStyle().
		Padding(0, 1).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true)
	t.BannerInfo = banner.
		Foreground(TextPrimary).
		BorderForeground(Cyan)
	t.BannerSuccess = banner.
		Foreground(Emerald).
		BorderForeground(Emerald)
	t.BannerError = banner.
		Foreground(Rose).
		BorderForeground(Rose)
	t.BannerHint = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.Panel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Violet).
		Padding(1, 2)
	t.PanelTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Violet).
		MarginBottom(1)
	t.PanelLabel = lipgloss.NewStyle().
		Foreground(TextSecondary)
	t.Button = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(SurfaceBright).
		Padding(0, 2).
		MarginRight(1)
	t.ButtonActive = t.Button.
		Foreground(TextInverse).
		Background(Violet).
		Bold(true)

	t.ThinkingText = lipgloss.NewStyle().
		Foreground(Amber).
		Italic(true)
	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextMuted)
	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)
	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)
	t.Link = lipgloss.NewStyle().
		Foreground(Cyan).
		Underline(true)
	t.Muted = lipgloss.NewStyle().
		Foreground(TextMuted)

	if t.IsDark {
		t.Mandala = MandalaDark
	} else {
		t.Mandala = MandalaLight
	}
}

// Hyperlink renders text as an OSC 8 link to url when the profile has
// color. Plain text is returned for the ASCII profile.
func (t *Theme) Hyperlink(url, text string) string {
	if text == "" {
		text = url
	}
	styled := t.Link.Render(text)
	if url == "" || t.ColorProfile == termenv.Ascii {
		return styled
	}
	return termenv.Hyperlink(url, styled)
}

// RenderStatus renders message with a shape indicator and state color.
func (t *Theme) RenderStatus(success bool, message string) string {
	if success {
		return lipgloss.NewStyle().Foreground(Emerald).Bold(true).
			Render(StatusIndicators.Success + " " + message)
	}
	return lipgloss.NewStyle().Foreground(Rose).Bold(true).
		Render(StatusIndicators.Error + " " + message)
}
