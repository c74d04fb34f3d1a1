// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ultron-tui/internal/ui/styles"
)

// =============================================================================
// THINKING INDICATOR
// =============================================================================

// ThinkingIndicator is the "Thinking" spinner shown while a reply is pending.
type ThinkingIndicator struct {
	spinner   spinner.Model
	theme     *styles.Theme
	label     string
	startTime time.Time
	active    bool
}

// NewThinkingIndicator creates a new thinking indicator.
func NewThinkingIndicator(theme *styles.Theme) ThinkingIndicator {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	s.Style = theme.ThinkingText
	return ThinkingIndicator{spinner: s, theme: theme, label: "Thinking"}
}

// Start begins the animation, counting elapsed time from at.
func (t *ThinkingIndicator) Start(at time.Time) tea.Cmd {
	if t.active {
		return nil
	}
	t.active = true
	t.startTime = at
	return t.spinner.Tick
}

// Stop ends the animation.
func (t *ThinkingIndicator) Stop() {
	t.active = false
}

// IsActive returns whether thinking is active.
func (t ThinkingIndicator) IsActive() bool {
	return t.active
}

// Elapsed returns time spent thinking as of now.
func (t ThinkingIndicator) Elapsed(now time.Time) time.Duration {
	if !t.active || t.startTime.IsZero() {
		return 0
	}
	return now.Sub(t.startTime)
}

// Update advances the spinner. Ticks are dropped while inactive so the
// spinner's own tick chain ends.
func (t ThinkingIndicator) Update(msg tea.Msg) (ThinkingIndicator, tea.Cmd) {
	if _, ok := msg.(spinner.TickMsg); ok && !t.active {
		return t, nil
	}
	var cmd tea.Cmd
	t.spinner, cmd = t.spinner.Update(msg)
	return t, cmd
}

// View renders the indicator, or "" when inactive.
func (t ThinkingIndicator) View(now time.Time) string {
	if !t.active {
		return ""
	}
	return t.spinner.View() + " " + t.theme.ThinkingText.Render(t.label+" "+formatElapsed(t.Elapsed(now)))
}

// formatElapsed formats a duration for display.
func formatElapsed(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	seconds := int(d.Seconds())
	return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
}
