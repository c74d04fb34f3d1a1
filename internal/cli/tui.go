// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jeranaias/ultron-tui/internal/config"
	"github.com/jeranaias/ultron-tui/internal/ui/chat"
	"github.com/jeranaias/ultron-tui/internal/ui/styles"
)

// runTUI runs the terminal UI. Logs go to a file because the terminal
// belongs to the UI.
func runTUI(cmd *cobra.Command, f *rootFlags) error {
	rt, err := f.open(cmd, logToFile)
	if err != nil {
		return err
	}
	defer rt.close()

	theme := styles.NewTheme(rt.cfg.UI.Theme)
	model := chat.New(rt.app, theme, chat.Options{Version: Version})

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(cmd.Context())}
	if rt.cfg.UI.Mouse {
		opts = append(opts, tea.WithMouseAllMotion())
	}
	p := tea.NewProgram(model, opts...)

	stop := watchConfig(f, rt, func(cfg *config.Config, err error) {
		p.Send(chat.ConfigReloadedMsg{Config: cfg, Err: err})
	})
	defer stop()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run terminal UI: %w", err)
	}
	return nil
}

// watchConfig reloads the config file on change and hands the result to
// fn with the command-line flags reapplied. A missing config directory
// only disables reloading.
func watchConfig(f *rootFlags, rt *runtime, fn func(*config.Config, error)) (stop func()) {
	path, err := f.configFile()
	if err != nil {
		rt.log.Warn().Err(err).Msg("config reload disabled")
		return func() {}
	}
	w, err := config.Watch(path, func(cfg *config.Config, err error) {
		if err == nil {
			f.apply(cfg)
		}
		fn(cfg, err)
	})
	if err != nil {
		rt.log.Warn().Err(err).Str("path", path).Msg("config reload disabled")
		return func() {}
	}
	rt.log.Debug().Str("path", w.Path()).Msg("watching config")
	return func() { _ = w.Close() }
}
