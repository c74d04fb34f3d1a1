// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ultron-tui/internal/util"
)

// View renders the model.
func (m Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return "Starting ultron…"
	}

	sections := []string{m.renderHeader()}
	if _, rows := m.canvas.Cells(); rows > 0 {
		sections = append(sections, m.canvas.String())
	}
	if m.banner.Visible() {
		sections = append(sections, m.banner.View(m.theme))
	}

	if m.panel.IsOpen() {
		sections = append(sections, lipgloss.Place(m.width, m.viewport.Height,
			lipgloss.Center, lipgloss.Center, m.panel.View(m.theme)))
	} else {
		sections = append(sections, m.viewport.View())
	}

	sections = append(sections,
		m.indicator.View(m.opts.Now()),
		m.theme.InputContainer.Width(m.width).Render(m.input.View()),
		m.renderStatusBar(),
	)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	brand := m.theme.HeaderBrand.Render("ULTRON")
	c := m.app.Active.Get()
	meta := c.BackendURL
	if meta == "" {
		meta = "no backend configured"
	}
	if m.app.Active.PageSecure() {
		meta = "secure page · " + meta
	}
	room := m.width - lipgloss.Width(brand) - 3
	line := brand + "  " + m.theme.HeaderMeta.Render(util.TruncateWidth(meta, room))
	return m.theme.Header.Width(m.width).Render(line)
}

func (m Model) renderStatusBar() string {
	var parts []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return m.theme.StatusBar.Render(util.TruncateWidth(strings.Join(parts, "  "), m.width))
}
