// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// FrameMsg is delivered to a bubbletea program once per frame.
type FrameMsg time.Time

// FrameInterval returns the frame period for fps. Non-positive fps means 30.
func FrameInterval(fps int) time.Duration {
	if fps <= 0 {
		fps = 30
	}
	return time.Second / time.Duration(fps)
}

// TickCmd schedules the next FrameMsg. The receiver must issue it again on
// every FrameMsg so the loop never stops.
func TickCmd(fps int) tea.Cmd {
	return tea.Tick(FrameInterval(fps), func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}
