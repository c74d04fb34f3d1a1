// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/jeranaias/ultron-tui/internal/backend"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// renderMarkdown renders content for a terminal of the given width.
// It returns content unchanged if rendering fails.
func renderMarkdown(content string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return out
}

// printReply writes a reply. Markdown is rendered only when w is a
// terminal so piped output stays plain.
func printReply(w io.Writer, r backend.Reply, markdown bool) {
	text := r.Text
	if markdown && isTerminalWriter(w) {
		text = strings.TrimRight(renderMarkdown(text, GetTerminalWidth()-4), "\n")
	}
	fmt.Fprintln(w, text)
	if r.ResumeURL != "" {
		fmt.Fprintln(w, DimStyle.Render("Resume: ")+r.ResumeURL)
	}
}

// printFailure writes a failed reply's diagnostic.
func printFailure(w io.Writer, r backend.Reply) {
	fmt.Fprintln(w, ErrorStyle.Render(r.Text))
}

// =============================================================================
// ASK COMMAND
// =============================================================================

func newAskCommand(f *rootFlags) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Send one message and print the reply",
		Long: "Send one message and print the reply. Use \"-\" to read the message\n" +
			"from standard input.",
		Example: `  ultron ask "hello there"
  echo "summarize this" | ultron ask -
  ultron ask --backend https://host:5001/api/chat "ping"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.Join(args, " ")
			if message == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				message = string(data)
			}

			rt, err := f.open(cmd, logToStderr)
			if err != nil {
				return err
			}
			defer rt.close()

			reply := rt.app.Client.Send(cmd.Context(), message)
			rt.log.Debug().Dur("latency", reply.Latency).Bool("ok", reply.OK()).Msg("ask finished")
			if !reply.OK() {
				printFailure(cmd.ErrOrStderr(), reply)
				return ErrSilent
			}
			if reply.Upgraded {
				fmt.Fprintln(cmd.ErrOrStderr(), DimStyle.Render("Switched to "+rt.app.Active.Get().BackendURL))
			}
			printReply(cmd.OutOrStdout(), reply, rt.cfg.UI.Markdown && !raw)
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the reply without markdown rendering")
	return cmd
}
