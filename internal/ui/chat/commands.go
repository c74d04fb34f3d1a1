// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ultron-tui/internal/settings"
)

// sendCmd posts text in the background.
func (m Model) sendCmd(seq int, text string) tea.Cmd {
	client := m.app.Client
	ctx := m.ctx
	return func() tea.Msg {
		return SendResultMsg{Seq: seq, Reply: client.Send(ctx, text)}
	}
}

// verifyCmd runs a rate-limited verification.
func (m Model) verifyCmd(reason VerifyReason) tea.Cmd {
	resolver := m.app.Resolver
	ctx := m.ctx
	return func() tea.Msg {
		v, err := resolver.Reverify(ctx)
		return VerifyResultMsg{Reason: reason, Verification: v, Err: err}
	}
}

// saveCmd persists the panel values and re-verifies.
func (m Model) saveCmd(values settings.Settings) tea.Cmd {
	a := m.app
	ctx := m.ctx
	return func() tea.Msg {
		cur, v, err := a.SaveSettings(ctx, values)
		return VerifyResultMsg{Reason: VerifySave, Verification: v, Settings: cur, Err: err}
	}
}

// resetCmd clears the persisted values and re-verifies against defaults.
func (m Model) resetCmd() tea.Cmd {
	a := m.app
	ctx := m.ctx
	return func() tea.Msg {
		cur, v, err := a.ResetSettings(ctx)
		return VerifyResultMsg{Reason: VerifyReset, Verification: v, Settings: cur, Err: err}
	}
}
