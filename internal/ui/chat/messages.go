// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/ultron-tui/internal/backend"
	"github.com/jeranaias/ultron-tui/internal/config"
	"github.com/jeranaias/ultron-tui/internal/connect"
	"github.com/jeranaias/ultron-tui/internal/settings"
)

// SendResultMsg carries the reply for one submitted message.
type SendResultMsg struct {
	Seq   int
	Reply backend.Reply
}

// VerifyReason says why a verification ran.
type VerifyReason int

const (
	VerifyStartup VerifyReason = iota
	VerifySave
	VerifyReset
)

// VerifyResultMsg carries a verification outcome. Err is set when the
// settings write failed or the verification was cancelled.
type VerifyResultMsg struct {
	Reason       VerifyReason
	Verification connect.Verification
	// Settings are the persisted values after Save or Reset.
	Settings settings.Settings
	Err      error
}

// ConfigReloadedMsg is sent by the config watcher.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}
