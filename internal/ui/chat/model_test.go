// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-chi/chi/v5"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/ultron-tui/internal/app"
	"github.com/jeranaias/ultron-tui/internal/config"
	"github.com/jeranaias/ultron-tui/internal/render"
	"github.com/jeranaias/ultron-tui/internal/thinking"
	"github.com/jeranaias/ultron-tui/internal/ui/components"
	"github.com/jeranaias/ultron-tui/internal/ui/styles"
)

type fixture struct {
	m     Model
	app   *app.App
	clock *thinking.FakeClock
	srv   *httptest.Server
}

func newFixture(t *testing.T, chatStatus int, chatBody string) *fixture {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/api/chat", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(chatStatus)
		_, _ = w.Write([]byte(chatBody))
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.Backend.DefaultURL = srv.URL + "/api/chat"
	cfg.Backend.VerifyIntervalSecs = 0
	cfg.Storage.Ephemeral = true
	cfg.UI.Markdown = false

	clock := thinking.NewFakeClock(time.Unix(1000, 0))
	a, err := app.New(app.Options{Config: cfg, Logger: zerolog.Nop(), Clock: clock})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	theme := styles.NewThemeWithProfile(styles.ModeDark, termenv.Ascii)
	m := New(a, theme, Options{Now: clock.Now})
	m, _ = step(m, tea.WindowSizeMsg{Width: 100, Height: 40})
	return &fixture{m: m, app: a, clock: clock, srv: srv}
}

func step(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func keyMsg(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func TestSubmit_ThinkingWrapsRequest(t *testing.T) {
	f := newFixture(t, http.StatusOK, `{"reply":"pong"}`)
	m := f.m

	m.SetInput("  hello  ")
	m, cmd := step(m, keyMsg(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.True(t, m.Pending())
	assert.True(t, f.app.Thinking.IsThinking(), "thinking starts before the request runs")
	require.Equal(t, 1, m.Transcript().Len())
	assert.Equal(t, "hello", m.Transcript().Entries()[0].Text)

	// A second submit while pending is ignored with a notice.
	m.SetInput("again")
	m, again := step(m, keyMsg(tea.KeyEnter))
	assert.NotNil(t, again)
	assert.Equal(t, 1, m.Transcript().Len())
	assert.True(t, m.Banner().Visible())
	assert.Contains(t, m.Banner().Text(), "Still waiting")

	msg := cmd()
	res, ok := msg.(SendResultMsg)
	require.True(t, ok)
	m, _ = step(m, res)

	assert.False(t, m.Pending())
	require.Equal(t, 2, m.Transcript().Len())
	last := m.Transcript().Entries()[1]
	assert.Equal(t, components.RoleAssistant, last.Role)
	assert.Equal(t, "pong", last.Text)
	assert.False(t, last.Failed)

	// The minimum thinking duration keeps the mandala busy a little longer.
	assert.True(t, f.app.Thinking.StopPending())
	f.clock.Advance(thinking.DefaultMinDuration)
	assert.False(t, f.app.Thinking.IsThinking())
}

func TestSubmit_EmptyIgnored(t *testing.T) {
	f := newFixture(t, http.StatusOK, `{}`)
	m := f.m
	m.SetInput("   ")
	m, cmd := step(m, keyMsg(tea.KeyEnter))
	assert.Nil(t, cmd)
	assert.False(t, m.Pending())
	assert.False(t, f.app.Thinking.IsThinking())
}

func TestSendFailure_ShowsDiagnostic(t *testing.T) {
	f := newFixture(t, http.StatusInternalServerError, `{"error":"boom"}`)
	m := f.m

	m.SetInput("hi")
	m, cmd := step(m, keyMsg(tea.KeyEnter))
	m, _ = step(m, cmd())

	b := m.Banner()
	require.True(t, b.Visible())
	assert.True(t, b.Persistent())
	assert.Equal(t, components.BannerError, b.Kind())
	assert.Equal(t, f.srv.URL+"/health", b.HealthURL())

	last := m.Transcript().Entries()[m.Transcript().Len()-1]
	assert.True(t, last.Failed)
	assert.Contains(t, last.Text, "boom")
	assert.Contains(t, last.Text, f.srv.URL+"/health")
}

func TestStartupVerify(t *testing.T) {
	f := newFixture(t, http.StatusOK, `{}`)
	m := f.m

	msg := m.verifyCmd(VerifyStartup)()
	v, ok := msg.(VerifyResultMsg)
	require.True(t, ok)
	require.NoError(t, v.Err)
	assert.True(t, v.Verification.Healthy)

	m, _ = step(m, v)
	assert.False(t, m.Banner().Visible())
}

func TestSecurePage_UpgradesAndHidesBanner(t *testing.T) {
	var secureChats atomic.Int32
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/api/chat", func(w http.ResponseWriter, req *http.Request) {
		if req.TLS != nil {
			secureChats.Add(1)
		}
		_, _ = w.Write([]byte(`{"reply":"pong"}`))
	})
	srv := httptest.NewTLSServer(r)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.Page.Origin = "https://page.example"
	cfg.Backend.DefaultURL = "http://" + srv.Listener.Addr().String() + "/api/chat"
	cfg.Backend.VerifyIntervalSecs = 0
	cfg.Storage.Ephemeral = true
	cfg.UI.Markdown = false

	clock := thinking.NewFakeClock(time.Unix(1000, 0))
	a, err := app.New(app.Options{
		Config:    cfg,
		Logger:    zerolog.Nop(),
		Clock:     clock,
		Transport: srv.Client().Transport,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	theme := styles.NewThemeWithProfile(styles.ModeDark, termenv.Ascii)
	m := New(a, theme, Options{Now: clock.Now})
	m, _ = step(m, tea.WindowSizeMsg{Width: 100, Height: 40})

	msg := m.verifyCmd(VerifyStartup)()
	v, ok := msg.(VerifyResultMsg)
	require.True(t, ok)
	require.NoError(t, v.Err)
	require.True(t, v.Verification.Healthy)
	assert.True(t, v.Verification.Upgrade.Upgraded)

	m, _ = step(m, v)
	assert.False(t, m.Banner().Visible())
	assert.Equal(t, srv.URL+"/api/chat", a.Active.Get().BackendURL)
	saved, err := a.Store.Get()
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/api/chat", saved.BackendURL)

	m.SetInput("hi")
	m, cmd := step(m, keyMsg(tea.KeyEnter))
	require.NotNil(t, cmd)
	m, _ = step(m, cmd())
	assert.Equal(t, "pong", m.Transcript().Entries()[1].Text)
	assert.Equal(t, int32(1), secureChats.Load())
	assert.False(t, m.Banner().Visible())
}

func TestSettingsPanel_SaveAndReset(t *testing.T) {
	f := newFixture(t, http.StatusOK, `{}`)
	m := f.m

	m, _ = step(m, keyMsg(tea.KeyCtrlS))
	require.True(t, m.Panel().IsOpen())

	m, _ = step(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(f.srv.URL + "/api/chat")})
	m, _ = step(m, keyMsg(tea.KeyTab))
	m, _ = step(m, keyMsg(tea.KeyTab))
	m, save := step(m, keyMsg(tea.KeyEnter))
	require.NotNil(t, save)

	m, _ = step(m, save())
	assert.Equal(t, components.LabelSaved, m.Panel().Label(components.ButtonSave))
	saved, err := f.app.Store.Get()
	require.NoError(t, err)
	assert.Equal(t, f.srv.URL+"/api/chat", saved.BackendURL)

	m, _ = step(m, keyMsg(tea.KeyRight))
	m, reset := step(m, keyMsg(tea.KeyEnter))
	require.NotNil(t, reset)
	m, _ = step(m, reset())
	assert.Equal(t, components.LabelReset, m.Panel().Label(components.ButtonReset))
	saved, err = f.app.Store.Get()
	require.NoError(t, err)
	assert.Empty(t, saved.BackendURL)
	assert.NotEmpty(t, saved.ClientID)

	m, _ = step(m, keyMsg(tea.KeyEsc))
	assert.False(t, m.Panel().IsOpen())
}

func TestSettingsPanel_UnreachableLabel(t *testing.T) {
	f := newFixture(t, http.StatusOK, `{}`)
	m := f.m

	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	m, _ = step(m, keyMsg(tea.KeyCtrlS))
	m, _ = step(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(deadURL + "/api/chat")})
	m, _ = step(m, keyMsg(tea.KeyTab))
	m, _ = step(m, keyMsg(tea.KeyTab))
	m, save := step(m, keyMsg(tea.KeyEnter))
	m, _ = step(m, save())

	assert.Equal(t, components.LabelUnreachable, m.Panel().Label(components.ButtonSave))
	assert.True(t, m.Banner().Persistent())
}

func TestSettingsPanel_ResetUnreachableLabel(t *testing.T) {
	f := newFixture(t, http.StatusOK, `{}`)

	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()
	next := f.app.Config().Clone()
	next.Backend.DefaultURL = deadURL + "/api/chat"
	f.app.ApplyConfig(next)
	m := f.m

	m, _ = step(m, keyMsg(tea.KeyCtrlS))
	m, _ = step(m, keyMsg(tea.KeyTab))
	m, _ = step(m, keyMsg(tea.KeyTab))
	m, _ = step(m, keyMsg(tea.KeyRight))
	m, reset := step(m, keyMsg(tea.KeyEnter))
	require.NotNil(t, reset)
	m, _ = step(m, reset())

	assert.Equal(t, components.LabelUnreachable, m.Panel().Label(components.ButtonReset))
	assert.True(t, m.Banner().Persistent())
}

func TestFrameAndPointer(t *testing.T) {
	f := newFixture(t, http.StatusOK, `{}`)
	m := f.m

	m, cmd := step(m, render.FrameMsg(time.Now()))
	assert.NotNil(t, cmd)
	assert.Greater(t, m.Stats().Particles, 0)
	assert.True(t, m.Stats().Resized)

	m, _ = step(m, tea.MouseMsg{X: 10, Y: 2})
	assert.True(t, m.Loop().Pointer().Active)
	m, _ = step(m, tea.MouseMsg{X: 10, Y: 39})
	assert.False(t, m.Loop().Pointer().Active)
}

func TestView(t *testing.T) {
	f := newFixture(t, http.StatusOK, `{}`)
	m, _ := step(f.m, render.FrameMsg(time.Now()))
	view := m.View()
	assert.Contains(t, view, "ULTRON")
	assert.Contains(t, view, f.srv.URL)
	assert.Contains(t, view, "C-s settings")
}

func TestConfigReload(t *testing.T) {
	f := newFixture(t, http.StatusOK, `{}`)
	next := f.app.Config().Clone()
	next.Mandala.Particles = 60

	m, _ := step(f.m, ConfigReloadedMsg{Config: next})
	assert.Equal(t, 60, m.Loop().Options().Particles)
	assert.Contains(t, m.Banner().Text(), "Configuration reloaded")
}

func TestQuit(t *testing.T) {
	f := newFixture(t, http.StatusOK, `{}`)
	_, cmd := step(f.m, keyMsg(tea.KeyCtrlC))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}
