// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package desktop holds the window-independent half of the desktop front
// end: a vector canvas over an abstract drawing surface and the chat
// session driven from the frame loop.
package desktop
