// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jeranaias/ultron-tui/internal/connect"
)

// healthReport is the --json form of a verification.
type healthReport struct {
	Backend       string `json:"backend"`
	HealthURL     string `json:"health_url"`
	PageOrigin    string `json:"page_origin,omitempty"`
	Healthy       bool   `json:"healthy"`
	Probe         string `json:"probe,omitempty"`
	StatusCode    int    `json:"status_code,omitempty"`
	LatencyMs     int64  `json:"latency_ms"`
	UpgradeTried  bool   `json:"upgrade_attempted"`
	Upgraded      bool   `json:"upgraded"`
	UpgradeTarget string `json:"upgrade_target,omitempty"`
	Diagnostic    string `json:"diagnostic,omitempty"`
}

func newReport(v connect.Verification, pageOrigin string) healthReport {
	r := healthReport{
		Backend:       v.Connectivity.BackendURL,
		HealthURL:     v.HealthURL,
		PageOrigin:    pageOrigin,
		Healthy:       v.Healthy,
		StatusCode:    v.Probe.StatusCode,
		LatencyMs:     v.Probe.Latency.Milliseconds(),
		UpgradeTried:  v.Upgrade.Attempted,
		Upgraded:      v.Upgrade.Upgraded,
		UpgradeTarget: v.Upgrade.To,
	}
	if v.Probe.URL != "" {
		r.Probe = v.Probe.Status.String()
	}
	if v.Diagnostic != nil {
		r.Diagnostic = v.Diagnostic.Text()
	}
	return r
}

// printVerification writes a human-readable verification outcome.
func printVerification(w io.Writer, v connect.Verification, pageOrigin string) {
	r := newReport(v, pageOrigin)
	fmt.Fprintln(w, RenderField("Backend", r.Backend))
	fmt.Fprintln(w, RenderField("Health URL", r.HealthURL))
	if r.PageOrigin != "" {
		fmt.Fprintln(w, RenderField("Page origin", r.PageOrigin))
	}
	if r.UpgradeTried {
		status := RenderStatus("fail")
		if r.Upgraded {
			status = RenderStatus("ok")
		}
		fmt.Fprintln(w, RenderField("HTTPS upgrade", status+" "+r.UpgradeTarget))
	}
	if r.Probe != "" {
		fmt.Fprintln(w, RenderField("Probe", fmt.Sprintf("%s (%d ms)", r.Probe, r.LatencyMs)))
	}
	if r.Healthy {
		fmt.Fprintln(w, RenderField("Status", RenderStatus("ok")))
		return
	}
	fmt.Fprintln(w, RenderField("Status", RenderStatus("fail")))
	if r.Diagnostic != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, ErrorStyle.Render(r.Diagnostic))
	}
}

func newHealthCommand(f *rootFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Verify the backend and print the outcome",
		Long: "Resolve the backend, try the https upgrade when the page is secure,\n" +
			"and probe the health endpoint. Exits non-zero when unhealthy.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := f.open(cmd, logToStderr)
			if err != nil {
				return err
			}
			defer rt.close()

			v := rt.app.Resolver.Verify(cmd.Context())
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(newReport(v, rt.app.Active.PageOrigin())); err != nil {
					return err
				}
			} else {
				printVerification(cmd.OutOrStdout(), v, rt.app.Active.PageOrigin())
			}
			if !v.Healthy {
				return ErrSilent
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}
