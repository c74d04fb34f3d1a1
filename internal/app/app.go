// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app wires configuration, settings storage, connectivity, the
// chat transport and the thinking machine into one value shared by the
// terminal, desktop and command-line front ends.
package app

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeranaias/ultron-tui/internal/backend"
	"github.com/jeranaias/ultron-tui/internal/config"
	"github.com/jeranaias/ultron-tui/internal/connect"
	"github.com/jeranaias/ultron-tui/internal/mandala"
	"github.com/jeranaias/ultron-tui/internal/render"
	"github.com/jeranaias/ultron-tui/internal/settings"
	"github.com/jeranaias/ultron-tui/internal/thinking"
)

// Options configure New.
type Options struct {
	Config    *config.Config
	Overrides connect.Overrides
	Logger    zerolog.Logger
	Version   string

	// Store replaces the configured settings store (tests).
	Store settings.Store

	// Transport replaces the default HTTP transport (tests).
	Transport http.RoundTripper

	// Clock drives the thinking machine. Nil means the real clock.
	Clock thinking.Clock
}

// App holds the shared runtime.
type App struct {
	Log      zerolog.Logger
	Store    settings.Store
	Active   *connect.Active
	HTTP     *http.Client
	Resolver *connect.Resolver
	Client   *backend.Client
	Thinking *thinking.Machine
	ClientID string

	mu  sync.RWMutex
	cfg *config.Config

	ownsStore bool
	stopWatch func()
}

// New builds the runtime and resolves the initial connectivity.
func New(opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Logger

	store := opts.Store
	owns := false
	if store == nil {
		var err error
		store, err = OpenStore(cfg)
		if err != nil {
			return nil, err
		}
		owns = true
	}

	clientID, err := settings.ClientID(store)
	if err != nil {
		log.Warn().Err(err).Msg("client id unavailable")
	}

	active := connect.NewActive(cfg.Page.Origin)
	httpClient := connect.NewHTTPClient(opts.Transport, active, cfg.Page.BlockMixedContent)
	userAgent := UserAgent(opts.Version)

	resolver := connect.NewResolver(connect.Options{
		Sources: connect.Sources{
			Overrides: opts.Overrides,
			Settings:  store,
			Defaults:  defaultsFrom(cfg),
		},
		Active:         active,
		Client:         httpClient,
		ProbeTimeout:   cfg.ProbeTimeout(),
		VerifyInterval: time.Duration(cfg.Backend.VerifyIntervalSecs) * time.Second,
		UserAgent:      userAgent,
		Logger:         log,
	})

	client := backend.NewClient(resolver, httpClient, &backend.ClientConfig{
		Timeout:          cfg.ChatTimeout(),
		MaxResponseBytes: cfg.Backend.MaxResponseBytes,
		ClientID:         clientID,
		UserAgent:        userAgent,
		Logger:           log,
	})

	clock := opts.Clock
	if clock == nil {
		clock = thinking.RealClock{}
	}

	a := &App{
		Log:       log,
		Store:     store,
		Active:    active,
		HTTP:      httpClient,
		Resolver:  resolver,
		Client:    client,
		Thinking:  thinking.New(clock, cfg.MinThinking()),
		ClientID:  clientID,
		cfg:       cfg,
		ownsStore: owns,
	}
	resolver.Resolve()
	a.stopWatch = resolver.Watch()

	c := active.Get()
	log.Info().
		Str("backend", c.BackendURL).
		Str("page", active.PageOrigin()).
		Bool("secure_page", active.PageSecure()).
		Msg("runtime ready")
	return a, nil
}

// OpenStore opens the settings store cfg asks for.
func OpenStore(cfg *config.Config) (settings.Store, error) {
	if cfg.Storage.Ephemeral {
		return settings.NewMemoryStore(settings.Settings{}), nil
	}
	dir := cfg.Storage.Dir
	if dir == "" {
		dir = settings.DefaultDir()
	}
	store, err := settings.OpenPebble(dir)
	if err != nil {
		return nil, fmt.Errorf("open settings store: %w", err)
	}
	return store, nil
}

// UserAgent returns the User-Agent sent with every request.
func UserAgent(version string) string {
	if version == "" {
		version = "dev"
	}
	return "ultron/" + version
}

// Config returns the current configuration.
func (a *App) Config() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

// ApplyConfig installs a reloaded configuration. Backend defaults take
// effect immediately; request limits apply to new App values only.
func (a *App) ApplyConfig(cfg *config.Config) {
	a.mu.Lock()
	a.cfg = cfg
	a.mu.Unlock()

	a.Resolver.SetDefaults(defaultsFrom(cfg))
	a.Resolver.Resolve()
	a.Log.Info().Msg("configuration reloaded")
}

// LoopOptions returns render options for the current configuration.
func (a *App) LoopOptions() render.Options {
	return LoopOptions(a.Config())
}

// LoopOptions maps the mandala section onto render options.
func LoopOptions(cfg *config.Config) render.Options {
	m := cfg.Mandala
	return render.Options{
		Particles:      m.Particles,
		Rings:          m.Rings,
		RadiusFraction: m.RadiusFraction,
		LinkFactor:     m.LinkFactor,
		FPS:            m.FPS,
		RepelStrength:  m.RepelStrength,
		Ease:           mandala.EasingByName(m.Easing),
	}
}

// Close stops watching settings and closes the store if New opened it.
func (a *App) Close() error {
	if a.stopWatch != nil {
		a.stopWatch()
	}
	if a.ownsStore {
		return a.Store.Close()
	}
	return nil
}

func defaultsFrom(cfg *config.Config) connect.Defaults {
	return connect.Defaults{
		BackendURL: cfg.Backend.DefaultURL,
		APIKey:     cfg.Backend.DefaultAPIKey,
	}
}
