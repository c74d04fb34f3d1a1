// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/ultron-tui/internal/ui/styles"
)

// Role is who wrote a transcript entry.
type Role int

const (
	RoleUser Role = iota
	RoleAssistant
	RoleSystem
)

// Entry is one transcript line.
type Entry struct {
	Role      Role
	Text      string
	ResumeURL string
	At        time.Time
	// Failed marks assistant entries that carry a diagnostic instead of a reply.
	Failed bool
}

// Transcript is the conversation shown above the input.
type Transcript struct {
	theme    *styles.Theme
	entries  []Entry
	markdown bool
	width    int
	renderer *glamour.TermRenderer
}

// NewTranscript creates an empty transcript. Markdown enables glamour
// rendering of assistant replies.
func NewTranscript(theme *styles.Theme, markdown bool) *Transcript {
	t := &Transcript{theme: theme, markdown: markdown, width: 80}
	t.buildRenderer()
	return t
}

func (t *Transcript) buildRenderer() {
	t.renderer = nil
	if !t.markdown {
		return
	}
	style := "light"
	if t.theme.IsDark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(t.width),
	)
	if err == nil {
		t.renderer = r
	}
}

// SetWidth rewraps to w columns.
func (t *Transcript) SetWidth(w int) {
	if w < 20 {
		w = 20
	}
	if w == t.width {
		return
	}
	t.width = w
	t.buildRenderer()
}

// Append adds an entry.
func (t *Transcript) Append(e Entry) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	t.entries = append(t.entries, e)
}

// Entries returns the entries in order.
func (t *Transcript) Entries() []Entry { return t.entries }

// Len returns the number of entries.
func (t *Transcript) Len() int { return len(t.entries) }

// Clear removes all entries.
func (t *Transcript) Clear() { t.entries = nil }

// Render renders every entry.
func (t *Transcript) Render() string {
	var sb strings.Builder
	for i, e := range t.entries {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(t.renderEntry(e))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Transcript) renderEntry(e Entry) string {
	switch e.Role {
	case RoleUser:
		return t.theme.UserLabel.Render("you") + "  " + t.theme.UserText.Render(e.Text)
	case RoleSystem:
		return t.theme.SystemText.Render(e.Text)
	}

	label := t.theme.AssistantLabel.Render("ultron")
	body := e.Text
	if e.Failed {
		body = t.theme.BannerError.Render(e.Text)
	} else if t.renderer != nil {
		if out, err := t.renderer.Render(e.Text); err == nil {
			body = strings.Trim(out, "\n")
		}
	} else {
		body = t.theme.AssistantText.Render(e.Text)
	}
	out := label + "\n" + body
	if e.ResumeURL != "" {
		out += "\n" + t.theme.Muted.Render("resume: ") + t.theme.Hyperlink(e.ResumeURL, e.ResumeURL)
	}
	return out
}
