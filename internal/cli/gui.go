// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/spf13/cobra"

	"github.com/jeranaias/ultron-tui/internal/config"
	"github.com/jeranaias/ultron-tui/internal/gui"
)

func newGUICommand(f *rootFlags) *cobra.Command {
	var width, height int
	cmd := &cobra.Command{
		Use:   "gui",
		Short: "Open the desktop window",
		Long:  "Open the desktop window. F2 edits the settings, Esc quits.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := f.open(cmd, logToFile)
			if err != nil {
				return err
			}
			defer rt.close()

			reload := make(chan *config.Config, 1)
			stop := watchConfig(f, rt, func(cfg *config.Config, err error) {
				if err != nil {
					rt.log.Warn().Err(err).Msg("config reload failed")
					return
				}
				select {
				case reload <- cfg:
				default:
				}
			})
			defer stop()

			return gui.Run(cmd.Context(), rt.app, gui.Options{
				Width:  width,
				Height: height,
				Reload: reload,
			})
		},
	}
	cmd.Flags().IntVar(&width, "width", 0, "window width in pixels")
	cmd.Flags().IntVar(&height, "height", 0, "window height in pixels")
	return cmd
}
