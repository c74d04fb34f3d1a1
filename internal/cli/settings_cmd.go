// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jeranaias/ultron-tui/internal/settings"
	"github.com/jeranaias/ultron-tui/internal/util"
)

func printSettings(w io.Writer, s settings.Settings, active string) {
	url := s.BackendURL
	if url == "" {
		url = DimStyle.Render("(not set)")
	}
	key := DimStyle.Render("(not set)")
	if s.APIKey != "" {
		key = "set, fingerprint " + util.Fingerprint(s.APIKey)
	}
	fmt.Fprintln(w, RenderField("Backend URL", url))
	fmt.Fprintln(w, RenderField("API key", key))
	fmt.Fprintln(w, RenderField("Client ID", s.ClientID))
	fmt.Fprintln(w, RenderField("Active backend", active))
}

func newSettingsCommand(f *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the persisted backend settings",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the persisted settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := f.open(cmd, logToStderr)
			if err != nil {
				return err
			}
			defer rt.close()

			s, err := rt.app.Store.Get()
			if err != nil {
				return err
			}
			printSettings(cmd.OutOrStdout(), s, rt.app.Active.Get().BackendURL)
			return nil
		},
	}

	var url, key string
	set := &cobra.Command{
		Use:   "set",
		Short: "Save the backend URL and/or API key, then verify",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("url") && !cmd.Flags().Changed("key") {
				return fmt.Errorf("nothing to set: pass --url and/or --key")
			}
			rt, err := f.open(cmd, logToStderr)
			if err != nil {
				return err
			}
			defer rt.close()

			values, err := rt.app.Store.Get()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("url") {
				values.BackendURL = url
			}
			if cmd.Flags().Changed("key") {
				values.APIKey = key
			}
			saved, v, err := rt.app.SaveSettings(cmd.Context(), values)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Saved"))
			printSettings(cmd.OutOrStdout(), saved, rt.app.Active.Get().BackendURL)
			if !v.Healthy {
				fmt.Fprintln(cmd.OutOrStdout(), WarningStyle.Render("Unreachable"))
				printVerification(cmd.ErrOrStderr(), v, rt.app.Active.PageOrigin())
			}
			return nil
		},
	}
	set.Flags().StringVar(&url, "url", "", "backend chat URL (empty clears it)")
	set.Flags().StringVar(&key, "key", "", "API key (empty clears it)")

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Clear the persisted backend URL and API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := f.open(cmd, logToStderr)
			if err != nil {
				return err
			}
			defer rt.close()

			cur, _, err := rt.app.ResetSettings(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Reset"))
			printSettings(cmd.OutOrStdout(), cur, rt.app.Active.Get().BackendURL)
			return nil
		},
	}

	cmd.AddCommand(show, set, reset)
	return cmd
}
