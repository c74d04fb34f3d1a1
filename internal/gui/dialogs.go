// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gui

import (
	"errors"
	"strings"

	"github.com/ncruces/zenity"

	"github.com/jeranaias/ultron-tui/internal/desktop"
	"github.com/jeranaias/ultron-tui/internal/settings"
)

const dialogTitle = "ultron settings"

// zenityDialogs asks for the backend URL and key with native dialogs.
type zenityDialogs struct{}

// EditSettings implements desktop.Dialogs. Cancelling any step cancels
// the whole edit.
func (zenityDialogs) EditSettings(cur settings.Settings) (settings.Settings, desktop.DialogAction, error) {
	url, err := zenity.Entry("Backend URL (leave empty for the default):",
		zenity.Title(dialogTitle),
		zenity.EntryText(cur.BackendURL),
	)
	if err != nil {
		return cancelOr(cur, err)
	}

	key, err := zenity.Entry("API key:",
		zenity.Title(dialogTitle),
		zenity.EntryText(cur.APIKey),
		zenity.HideText(),
	)
	if err != nil {
		return cancelOr(cur, err)
	}

	next := settings.Settings{
		BackendURL: strings.TrimSpace(url),
		APIKey:     strings.TrimSpace(key),
		ClientID:   cur.ClientID,
	}

	err = zenity.Question("Save these settings, or reset to the defaults?",
		zenity.Title(dialogTitle),
		zenity.OKLabel("Save"),
		zenity.ExtraButton("Reset"),
		zenity.CancelLabel("Cancel"),
	)
	switch {
	case err == nil:
		return next, desktop.DialogSave, nil
	case errors.Is(err, zenity.ErrExtraButton):
		return cur, desktop.DialogReset, nil
	default:
		return cancelOr(cur, err)
	}
}

func cancelOr(cur settings.Settings, err error) (settings.Settings, desktop.DialogAction, error) {
	if errors.Is(err, zenity.ErrCanceled) {
		return cur, desktop.DialogCancel, nil
	}
	return cur, desktop.DialogCancel, err
}
