// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/ultron-tui/internal/connect"
	"github.com/jeranaias/ultron-tui/internal/settings"
	"github.com/jeranaias/ultron-tui/internal/ui/styles"
)

func testTheme() *styles.Theme {
	return styles.NewThemeWithProfile(styles.ModeDark, termenv.Ascii)
}

func keyMsg(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

// =============================================================================
// BANNER
// =============================================================================

func TestBanner_TransientExpires(t *testing.T) {
	var b Banner
	cmd := b.Show(BannerSuccess, "Connected", 6*time.Second)
	require.NotNil(t, cmd)
	assert.True(t, b.Visible())
	assert.False(t, b.Persistent())

	first := BannerExpireMsg{Seq: 1}
	b.Show(BannerInfo, "Second note", time.Second)

	// The first timer must not hide the newer note.
	b.Expire(first)
	assert.True(t, b.Visible())
	assert.Equal(t, "Second note", b.Text())

	b.Expire(BannerExpireMsg{Seq: 2})
	assert.False(t, b.Visible())
}

func TestBanner_DiagnosticPersists(t *testing.T) {
	var b Banner
	b.SetWidth(200)
	b.Show(BannerInfo, "note", time.Second)
	d := connect.UnreachableDiagnostic("https://host/health", "connection refused")
	b.ShowDiagnostic(d)

	b.Expire(BannerExpireMsg{Seq: 1})
	b.Expire(BannerExpireMsg{Seq: 2})
	assert.True(t, b.Visible())
	assert.True(t, b.Persistent())
	assert.Equal(t, BannerError, b.Kind())
	assert.Equal(t, "https://host/health", b.HealthURL())

	view := b.View(testTheme())
	assert.Contains(t, view, "Backend unreachable")
	assert.Contains(t, view, "curl -k https://host/health")
	assert.Contains(t, view, "Health check:")

	b.ShowDiagnostic(nil)
	assert.False(t, b.Visible())
	assert.Empty(t, b.View(testTheme()))
}

func TestBanner_TruncatesToWidth(t *testing.T) {
	var b Banner
	b.SetWidth(20)
	b.Show(BannerInfo, "a very long status line that cannot fit", time.Second)
	view := b.View(testTheme())
	assert.Contains(t, view, "…")
	assert.NotContains(t, view, "cannot fit")
}

// =============================================================================
// SETTINGS PANEL
// =============================================================================

func TestSettingsPanel_EditAndSave(t *testing.T) {
	p := NewSettingsPanel()
	assert.False(t, p.IsOpen())
	p.Open(settings.Settings{BackendURL: "https://host", APIKey: "k"})
	require.True(t, p.IsOpen())

	action, _ := p.HandleKey(runes("/api"))
	assert.Equal(t, ActionNone, action)
	assert.Equal(t, "https://host/api", p.Values().BackendURL)

	// enter on the URL moves to the key; enter on the key saves
	action, _ = p.HandleKey(keyMsg(tea.KeyEnter))
	assert.Equal(t, ActionNone, action)
	action, _ = p.HandleKey(keyMsg(tea.KeyEnter))
	assert.Equal(t, ActionSave, action)
}

func TestSettingsPanel_Buttons(t *testing.T) {
	p := NewSettingsPanel()
	p.Open(settings.Settings{})

	p.HandleKey(keyMsg(tea.KeyTab))
	p.HandleKey(keyMsg(tea.KeyTab))
	action, _ := p.HandleKey(keyMsg(tea.KeyEnter))
	assert.Equal(t, ActionSave, action)

	p.HandleKey(keyMsg(tea.KeyRight))
	action, _ = p.HandleKey(keyMsg(tea.KeyEnter))
	assert.Equal(t, ActionReset, action)

	p.HandleKey(keyMsg(tea.KeyTab))
	action, _ = p.HandleKey(keyMsg(tea.KeyEnter))
	assert.Equal(t, ActionClose, action)

	// wraps back to the URL field
	p.HandleKey(keyMsg(tea.KeyTab))
	p.HandleKey(runes("x"))
	assert.Equal(t, "x", p.Values().BackendURL)

	action, _ = p.HandleKey(keyMsg(tea.KeyEsc))
	assert.Equal(t, ActionClose, action)
}

func TestSettingsPanel_FlashLabels(t *testing.T) {
	p := NewSettingsPanel()
	p.Open(settings.Settings{})
	assert.Equal(t, "Save", p.Label(ButtonSave))

	require.NotNil(t, p.Flash(ButtonSave, LabelSaved, DefaultLabelDuration))
	assert.Equal(t, LabelSaved, p.Label(ButtonSave))

	p.Flash(ButtonSave, LabelUnreachable, DefaultLabelDuration)
	p.ExpireLabel(ButtonLabelExpireMsg{Button: ButtonSave, Seq: 1})
	assert.Equal(t, LabelUnreachable, p.Label(ButtonSave))

	p.ExpireLabel(ButtonLabelExpireMsg{Button: ButtonSave, Seq: 2})
	assert.Equal(t, "Save", p.Label(ButtonSave))

	p.Flash(ButtonReset, LabelReset, DefaultLabelDuration)
	view := p.View(testTheme())
	assert.Contains(t, view, LabelReset)
	assert.Contains(t, view, "Backend URL")
}

func TestSettingsPanel_SetValuesAndClose(t *testing.T) {
	p := NewSettingsPanel()
	p.Open(settings.Settings{BackendURL: " https://a ", APIKey: "k"})
	assert.Equal(t, "https://a", p.Values().BackendURL)
	p.SetValues(settings.Settings{})
	assert.Equal(t, settings.Settings{}, p.Values())
	p.Close()
	assert.False(t, p.IsOpen())
	assert.Empty(t, p.View(testTheme()))
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

func TestTranscript_Plain(t *testing.T) {
	tr := NewTranscript(testTheme(), false)
	tr.Append(Entry{Role: RoleUser, Text: "hello"})
	tr.Append(Entry{Role: RoleAssistant, Text: "world", ResumeURL: "https://host/files/r.pdf"})
	tr.Append(Entry{Role: RoleSystem, Text: "note"})
	require.Equal(t, 3, tr.Len())
	assert.False(t, tr.Entries()[0].At.IsZero())

	out := tr.Render()
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "world")
	assert.Contains(t, out, "https://host/files/r.pdf")
	assert.Contains(t, out, "note")

	tr.Clear()
	assert.Zero(t, tr.Len())
}

func TestTranscript_Markdown(t *testing.T) {
	tr := NewTranscript(testTheme(), true)
	tr.SetWidth(60)
	tr.Append(Entry{Role: RoleAssistant, Text: "some **bold** words"})
	out := tr.Render()
	assert.Contains(t, out, "bold")
	assert.NotContains(t, out, "**")
}

// =============================================================================
// THINKING INDICATOR
// =============================================================================

func TestThinkingIndicator(t *testing.T) {
	ind := NewThinkingIndicator(testTheme())
	start := time.Unix(1000, 0)

	assert.Empty(t, ind.View(start))
	require.NotNil(t, ind.Start(start))
	assert.Nil(t, ind.Start(start.Add(time.Second)))
	assert.True(t, ind.IsActive())

	view := ind.View(start.Add(1500 * time.Millisecond))
	assert.Contains(t, view, "Thinking 1.5s")
	assert.Equal(t, 1500*time.Millisecond, ind.Elapsed(start.Add(1500*time.Millisecond)))

	ind.Stop()
	assert.Empty(t, ind.View(start))
	_, cmd := ind.Update(spinner.TickMsg{})
	assert.Nil(t, cmd)
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "0.2s", formatElapsed(200*time.Millisecond))
	assert.Equal(t, "2m 5s", formatElapsed(125*time.Second))
}
