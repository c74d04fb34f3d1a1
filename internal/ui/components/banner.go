// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ultron-tui/internal/connect"
	"github.com/jeranaias/ultron-tui/internal/ui/styles"
	"github.com/jeranaias/ultron-tui/internal/util"
)

// BannerKind selects the banner's color.
type BannerKind int

const (
	BannerInfo BannerKind = iota
	BannerSuccess
	BannerError
)

// BannerExpireMsg hides a transient banner. Seq ties it to one Show call
// so a stale timer never hides a newer banner.
type BannerExpireMsg struct {
	Seq int
}

// Banner is the one status region. Notes are transient; diagnostics stay
// until something replaces or hides them.
type Banner struct {
	visible    bool
	persistent bool
	kind       BannerKind
	text       string
	hints      []string
	healthURL  string
	seq        int
	width      int
}

// SetWidth sets the render width.
func (b *Banner) SetWidth(w int) { b.width = w }

// Show displays a transient note that hides itself after d.
func (b *Banner) Show(kind BannerKind, text string, d time.Duration) tea.Cmd {
	b.seq++
	b.visible = true
	b.persistent = false
	b.kind = kind
	b.text = text
	b.hints = nil
	b.healthURL = ""
	seq := b.seq
	return tea.Tick(d, func(time.Time) tea.Msg { return BannerExpireMsg{Seq: seq} })
}

// ShowDiagnostic displays d until replaced. A nil diagnostic hides the banner.
func (b *Banner) ShowDiagnostic(d *connect.Diagnostic) {
	if d == nil {
		b.Hide()
		return
	}
	b.seq++
	b.visible = true
	b.persistent = true
	b.kind = BannerError
	b.text = d.Title
	if d.Message != "" {
		b.text += ": " + d.Message
	}
	b.hints = append([]string(nil), d.Hints...)
	b.healthURL = d.HealthURL
}

// Hide hides the banner.
func (b *Banner) Hide() {
	b.seq++
	b.visible = false
	b.persistent = false
}

// Expire handles a BannerExpireMsg.
func (b *Banner) Expire(msg BannerExpireMsg) {
	if msg.Seq == b.seq && !b.persistent {
		b.visible = false
	}
}

func (b Banner) Visible() bool    { return b.visible }
func (b Banner) Persistent() bool { return b.persistent }
func (b Banner) Kind() BannerKind { return b.kind }
func (b Banner) Text() string     { return b.text }
func (b Banner) HealthURL() string {
	return b.healthURL
}

// View renders the banner, or "" when hidden.
func (b Banner) View(theme *styles.Theme) string {
	if !b.visible {
		return ""
	}
	style := theme.BannerInfo
	switch b.kind {
	case BannerSuccess:
		style = theme.BannerSuccess
	case BannerError:
		style = theme.BannerError
	}

	// Border and padding take three columns.
	inner := b.width - 3
	if inner < 10 {
		inner = 10
	}

	lines := []string{util.TruncateWidth(util.FirstLine(b.text), inner)}
	for _, h := range b.hints {
		lines = append(lines, theme.BannerHint.Render(util.TruncateWidth("- "+h, inner)))
	}
	if b.healthURL != "" {
		label := util.TruncateWidth(b.healthURL, inner-len("Health check: "))
		lines = append(lines, theme.BannerHint.Render("Health check: ")+theme.Hyperlink(b.healthURL, label))
	}
	return style.Render(strings.Join(lines, "\n"))
}
