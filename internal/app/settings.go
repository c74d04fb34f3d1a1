// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"fmt"

	"github.com/jeranaias/ultron-tui/internal/connect"
	"github.com/jeranaias/ultron-tui/internal/settings"
)

// =============================================================================
// SETTINGS OPERATIONS
// =============================================================================

// SaveSettings persists the backend URL and API key from values, keeping
// the client id, then re-verifies the resulting connectivity. The store
// change re-resolves before verification starts.
func (a *App) SaveSettings(ctx context.Context, values settings.Settings) (settings.Settings, connect.Verification, error) {
	cur, err := a.Store.Get()
	if err != nil {
		return settings.Settings{}, connect.Verification{}, fmt.Errorf("read settings: %w", err)
	}
	cur.BackendURL = values.BackendURL
	cur.APIKey = values.APIKey
	if err := a.Store.Save(cur); err != nil {
		return cur, connect.Verification{}, fmt.Errorf("save settings: %w", err)
	}
	a.Log.Info().Str("backend", cur.BackendURL).Msg("settings saved")

	a.Resolver.Resolve()
	v, err := a.Resolver.Reverify(ctx)
	return cur, v, err
}

// ResetSettings clears the persisted backend URL and API key and
// re-verifies against the remaining sources.
func (a *App) ResetSettings(ctx context.Context) (settings.Settings, connect.Verification, error) {
	if err := a.Store.Reset(); err != nil {
		return settings.Settings{}, connect.Verification{}, fmt.Errorf("reset settings: %w", err)
	}
	cur, err := a.Store.Get()
	if err != nil {
		return settings.Settings{}, connect.Verification{}, fmt.Errorf("read settings: %w", err)
	}
	a.Log.Info().Msg("settings reset")

	a.Resolver.Resolve()
	v, err := a.Resolver.Reverify(ctx)
	return cur, v, err
}
