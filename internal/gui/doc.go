// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gui runs the desktop window: an ebiten game drawing the mandala
// with the shared render loop, and zenity dialogs for the settings.
package gui
