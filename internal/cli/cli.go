// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jeranaias/ultron-tui/internal/app"
	"github.com/jeranaias/ultron-tui/internal/config"
	"github.com/jeranaias/ultron-tui/internal/connect"
	"github.com/jeranaias/ultron-tui/internal/logging"
)

// Version information (set from main)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// ErrSilent marks a failure whose message was already printed.
var ErrSilent = errors.New("silent failure")

// =============================================================================
// FLAGS
// =============================================================================

type rootFlags struct {
	backend    string
	apiKey     string
	query      string
	pageOrigin string
	configPath string
	ephemeral  bool
	logLevel   string
}

// overrides merges --backend/--apikey with --query. Explicit flags win.
func (f *rootFlags) overrides() (connect.Overrides, error) {
	o := connect.Overrides{BackendURL: f.backend, APIKey: f.apiKey}
	if f.query == "" {
		return o, nil
	}
	q, err := connect.ParseOverrides(f.query)
	if err != nil {
		return o, fmt.Errorf("parse --query: %w", err)
	}
	return o.Merge(q), nil
}

// configFile returns the config path in use.
func (f *rootFlags) configFile() (string, error) {
	if f.configPath != "" {
		return f.configPath, nil
	}
	return config.ConfigPathTOML()
}

// loadConfig loads the file config and applies flag values on top.
func (f *rootFlags) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configPath != "" {
		if _, statErr := os.Stat(f.configPath); statErr == nil {
			cfg, err = config.LoadFromPath(f.configPath)
		} else {
			cfg, err = config.Default(), nil
			cfg.ApplyEnvOverrides()
		}
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	f.apply(cfg)
	return cfg, nil
}

// apply copies flag values onto cfg.
func (f *rootFlags) apply(cfg *config.Config) {
	if f.pageOrigin != "" {
		cfg.Page.Origin = f.pageOrigin
	}
	if f.ephemeral {
		cfg.Storage.Ephemeral = true
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
}

// =============================================================================
// RUNTIME
// =============================================================================

// logTarget says where a command logs.
type logTarget int

const (
	logToStderr logTarget = iota
	logToFile
)

type runtime struct {
	cfg    *config.Config
	log    zerolog.Logger
	app    *app.App
	closer io.Closer
}

// open builds the shared runtime for a command.
func (f *rootFlags) open(cmd *cobra.Command, target logTarget) (*runtime, error) {
	cfg, err := f.loadConfig()
	if err != nil {
		return nil, err
	}
	overrides, err := f.overrides()
	if err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg}
	switch target {
	case logToFile:
		l, closer, err := logging.OpenFile(cfg.LogPath(), cfg.Log.Level)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		rt.log, rt.closer = l, closer
	default:
		rt.log = logging.Console(cmd.ErrOrStderr(), cfg.Log.Level)
	}
	logging.SetDefault(rt.log)

	a, err := app.New(app.Options{
		Config:    cfg,
		Overrides: overrides,
		Logger:    rt.log,
		Version:   Version,
	})
	if err != nil {
		rt.close()
		return nil, err
	}
	rt.app = a
	return rt, nil
}

func (rt *runtime) close() {
	if rt.app != nil {
		if err := rt.app.Close(); err != nil {
			rt.log.Warn().Err(err).Msg("close runtime")
		}
	}
	if rt.closer != nil {
		_ = rt.closer.Close()
	}
}

// =============================================================================
// ROOT COMMAND
// =============================================================================

// NewRootCommand builds the ultron command tree.
func NewRootCommand() *cobra.Command {
	f := &rootFlags{}
	root := &cobra.Command{
		Use:   "ultron",
		Short: "Chat front end with a living mandala",
		Long: "ultron talks to a chat backend over HTTP and shows a particle mandala\n" +
			"that gathers while a reply is pending.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, f)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&f.backend, "backend", "", "backend chat URL for this run (not persisted)")
	flags.StringVar(&f.apiKey, "apikey", "", "API key for this run (not persisted)")
	flags.StringVar(&f.query, "query", "", `overrides as a query string, e.g. "backend=https://host/api/chat&apikey=k"`)
	flags.StringVar(&f.pageOrigin, "page-origin", "", "origin the front end is served from; https makes the page secure")
	flags.StringVar(&f.configPath, "config", "", "config file (default ~/.ultron/config.toml)")
	flags.BoolVar(&f.ephemeral, "ephemeral", false, "keep settings in memory only")
	flags.StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newGUICommand(f),
		newAskCommand(f),
		newChatCommand(f),
		newHealthCommand(f),
		newSettingsCommand(f),
		newConfigCommand(f),
		newVersionCommand(),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, ErrSilent) {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		}
		return 1
	}
	return 0
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ultron %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
		},
	}
}
