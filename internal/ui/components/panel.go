// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ultron-tui/internal/settings"
	"github.com/jeranaias/ultron-tui/internal/ui/styles"
)

// PanelAction is what a key press in the settings panel asks for.
type PanelAction int

const (
	ActionNone PanelAction = iota
	ActionSave
	ActionReset
	ActionClose
)

// PanelButton identifies a settings panel button.
type PanelButton int

const (
	ButtonSave PanelButton = iota
	ButtonReset
	ButtonClose
)

var buttonNames = [...]string{"Save", "Reset", "Close"}

// Transient button labels.
const (
	LabelSaved       = "Saved ✓"
	LabelUnreachable = "Unreachable"
	LabelReset       = "Reset ✓"
)

// DefaultLabelDuration is how long a transient button label stays.
const DefaultLabelDuration = 2 * time.Second

// ButtonLabelExpireMsg restores a button's label.
type ButtonLabelExpireMsg struct {
	Button PanelButton
	Seq    int
}

// focus order: url, key, then the three buttons
const (
	focusURL = iota
	focusKey
	focusSave
	focusReset
	focusClose
	focusCount
)

// SettingsPanel edits the persisted backend URL and API key.
type SettingsPanel struct {
	url    textinput.Model
	key    textinput.Model
	focus  int
	open   bool
	labels [3]string
	seqs   [3]int
}

// NewSettingsPanel creates a closed panel.
func NewSettingsPanel() SettingsPanel {
	url := textinput.New()
	url.Placeholder = "https://host:5001/api/chat"
	url.CharLimit = 2048
	url.Width = 48

	key := textinput.New()
	key.Placeholder = "shared key"
	key.EchoMode = textinput.EchoPassword
	key.EchoCharacter = '•'
	key.CharLimit = 512
	key.Width = 48

	return SettingsPanel{url: url, key: key}
}

// Open fills the inputs from s and focuses the URL field.
func (p *SettingsPanel) Open(s settings.Settings) tea.Cmd {
	p.open = true
	p.url.SetValue(s.BackendURL)
	p.key.SetValue(s.APIKey)
	p.url.CursorEnd()
	p.key.CursorEnd()
	return p.setFocus(focusURL)
}

// Close closes the panel.
func (p *SettingsPanel) Close() {
	p.open = false
	p.url.Blur()
	p.key.Blur()
}

// IsOpen reports whether the panel is shown.
func (p SettingsPanel) IsOpen() bool { return p.open }

// Values returns the trimmed input values.
func (p SettingsPanel) Values() settings.Settings {
	return settings.Settings{
		BackendURL: strings.TrimSpace(p.url.Value()),
		APIKey:     strings.TrimSpace(p.key.Value()),
	}
}

// SetValues replaces the input values, e.g. after Reset.
func (p *SettingsPanel) SetValues(s settings.Settings) {
	p.url.SetValue(s.BackendURL)
	p.key.SetValue(s.APIKey)
}

// SetWidth fits the inputs into w columns.
func (p *SettingsPanel) SetWidth(w int) {
	inner := w - 8
	if inner < 20 {
		inner = 20
	}
	if inner > 72 {
		inner = 72
	}
	p.url.Width = inner
	p.key.Width = inner
}

func (p *SettingsPanel) setFocus(f int) tea.Cmd {
	p.focus = (f + focusCount) % focusCount
	p.url.Blur()
	p.key.Blur()
	switch p.focus {
	case focusURL:
		return p.url.Focus()
	case focusKey:
		return p.key.Focus()
	}
	return nil
}

// HandleKey routes a key press. Enter on a button or ctrl+s anywhere
// returns that button's action.
func (p *SettingsPanel) HandleKey(msg tea.KeyMsg) (PanelAction, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return ActionClose, nil
	case "tab", "down":
		return ActionNone, p.setFocus(p.focus + 1)
	case "shift+tab", "up":
		return ActionNone, p.setFocus(p.focus - 1)
	case "left":
		if p.focus > focusSave {
			return ActionNone, p.setFocus(p.focus - 1)
		}
	case "right":
		if p.focus >= focusSave && p.focus < focusClose {
			return ActionNone, p.setFocus(p.focus + 1)
		}
	case "enter":
		switch p.focus {
		case focusSave:
			return ActionSave, nil
		case focusReset:
			return ActionReset, nil
		case focusClose:
			return ActionClose, nil
		case focusKey:
			return ActionSave, nil
		default:
			return ActionNone, p.setFocus(p.focus + 1)
		}
	}

	var cmd tea.Cmd
	switch p.focus {
	case focusURL:
		p.url, cmd = p.url.Update(msg)
	case focusKey:
		p.key, cmd = p.key.Update(msg)
	}
	return ActionNone, cmd
}

// Update forwards non-key messages (cursor blink) to the inputs.
func (p *SettingsPanel) Update(msg tea.Msg) tea.Cmd {
	var c1, c2 tea.Cmd
	p.url, c1 = p.url.Update(msg)
	p.key, c2 = p.key.Update(msg)
	return tea.Batch(c1, c2)
}

// Flash shows label on b for d, then restores the button name.
func (p *SettingsPanel) Flash(b PanelButton, label string, d time.Duration) tea.Cmd {
	p.seqs[b]++
	p.labels[b] = label
	seq := p.seqs[b]
	return tea.Tick(d, func(time.Time) tea.Msg { return ButtonLabelExpireMsg{Button: b, Seq: seq} })
}

// ExpireLabel handles a ButtonLabelExpireMsg.
func (p *SettingsPanel) ExpireLabel(msg ButtonLabelExpireMsg) {
	if p.seqs[msg.Button] == msg.Seq {
		p.labels[msg.Button] = ""
	}
}

// Label returns the text currently shown on b.
func (p SettingsPanel) Label(b PanelButton) string {
	if p.labels[b] != "" {
		return p.labels[b]
	}
	return buttonNames[b]
}

// View renders the panel.
func (p SettingsPanel) View(theme *styles.Theme) string {
	if !p.open {
		return ""
	}
	var buttons []string
	for b := ButtonSave; b <= ButtonClose; b++ {
		style := theme.Button
		if p.focus == focusSave+int(b) {
			style = theme.ButtonActive
		}
		buttons = append(buttons, style.Render(p.Label(b)))
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		theme.PanelTitle.Render("Backend settings"),
		theme.PanelLabel.Render("Backend URL"),
		p.url.View(),
		"",
		theme.PanelLabel.Render("API key"),
		p.key.View(),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, buttons...),
		"",
		theme.Muted.Render("tab: next  enter: select  esc: close"),
	)
	return theme.Panel.Render(body)
}
