// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/ultron-tui/internal/app"
	"github.com/jeranaias/ultron-tui/internal/config"
)

const historyFileName = "chat_history"

// =============================================================================
// LINE EDITING
// =============================================================================

// lineReader provides input history and line editing for the REPL.
type lineReader struct {
	line        *liner.State
	historyFile string
}

// newLineReader creates a reader and loads history from the config dir.
func newLineReader() *lineReader {
	l := liner.NewLiner()
	l.SetCtrlCAborts(true)

	r := &lineReader{line: l}
	if dir, err := config.ConfigDir(); err == nil {
		r.historyFile = filepath.Join(dir, historyFileName)
		if f, err := os.Open(r.historyFile); err == nil {
			_, _ = l.ReadHistory(f)
			f.Close()
		}
	}
	return r
}

// Prompt reads one line. Non-empty lines are added to history.
func (r *lineReader) Prompt(p string) (string, error) {
	s, err := r.line.Prompt(p)
	if err == nil && strings.TrimSpace(s) != "" {
		r.line.AppendHistory(s)
	}
	return s, err
}

// Close saves history with owner-only permissions and restores the terminal.
func (r *lineReader) Close() {
	if r.historyFile != "" {
		if err := os.MkdirAll(filepath.Dir(r.historyFile), 0700); err == nil {
			if f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
				_, _ = r.line.WriteHistory(f)
				f.Close()
			}
		}
	}
	r.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

// repl handles lines typed into `ultron chat`.
type repl struct {
	app      *app.App
	out      io.Writer
	errOut   io.Writer
	markdown bool
}

// handle processes one line and reports whether the REPL should exit.
func (s *repl) handle(ctx context.Context, line string) (quit bool) {
	line = strings.TrimSpace(line)
	switch line {
	case "":
		return false
	case "/quit", "/exit", "/q":
		return true
	case "/help", "/?":
		fmt.Fprintln(s.out, DimStyle.Render("/health  verify the backend\n/quit    leave"))
		return false
	case "/health":
		printVerification(s.out, s.app.Resolver.Verify(ctx), s.app.Active.PageOrigin())
		return false
	}

	reply := s.app.Client.Send(ctx, line)
	if !reply.OK() {
		printFailure(s.errOut, reply)
		return false
	}
	if reply.Upgraded {
		fmt.Fprintln(s.errOut, DimStyle.Render("Switched to "+s.app.Active.Get().BackendURL))
	}
	printReply(s.out, reply, s.markdown)
	return false
}

func newChatCommand(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat in a line-based REPL",
		Long:  "Chat in a line-based REPL with history. Type /help for commands.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := f.open(cmd, logToFile)
			if err != nil {
				return err
			}
			defer rt.close()

			s := &repl{
				app:      rt.app,
				out:      cmd.OutOrStdout(),
				errOut:   cmd.ErrOrStderr(),
				markdown: rt.cfg.UI.Markdown,
			}
			fmt.Fprintln(s.out, TitleStyle.Render("ultron")+" "+DimStyle.Render(rt.app.Active.Get().BackendURL))

			lr := newLineReader()
			defer lr.Close()

			ctx := cmd.Context()
			for ctx.Err() == nil {
				line, err := lr.Prompt("you> ")
				if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
					return nil
				}
				if err != nil {
					return fmt.Errorf("read input: %w", err)
				}
				if s.handle(ctx, line) {
					return nil
				}
			}
			return nil
		},
	}
}
