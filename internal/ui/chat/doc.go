// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat is the terminal front end: a bubbletea model that draws the
// braille mandala every frame, keeps a transcript, sends messages through
// the backend client and hosts the settings panel and status banner.
//
// Network work runs in tea.Cmd goroutines and comes back as messages, so a
// pending reply never stalls the frame tick.
package chat
