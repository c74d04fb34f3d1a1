// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package settings persists the user-edited backend URL and API key.
//
// Values live under three keys (ULTRON_BACKEND, ULTRON_API_KEY and
// ULTRON_CLIENT_ID). PebbleStore keeps them in a small pebble database under
// ~/.ultron/settings; MemoryStore keeps them in memory for tests and
// ephemeral sessions. Both notify OnChanged observers after every Save or
// Reset.
package settings
