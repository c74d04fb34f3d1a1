// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package desktop

import (
	"context"
	"errors"
	"image/color"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/ultron-tui/internal/app"
	"github.com/jeranaias/ultron-tui/internal/config"
	"github.com/jeranaias/ultron-tui/internal/render"
	"github.com/jeranaias/ultron-tui/internal/settings"
	"github.com/jeranaias/ultron-tui/internal/thinking"
)

// =============================================================================
// CANVAS
// =============================================================================

type recorder struct {
	fills   int
	circles []color.NRGBA
	lines   int
}

func (r *recorder) Fill(color.Color) { r.fills++ }

func (r *recorder) FillCircle(_, _, _ float32, c color.Color) {
	r.circles = append(r.circles, c.(color.NRGBA))
}

func (r *recorder) StrokeLine(_, _, _, _, _ float32, _ color.Color) { r.lines++ }

var _ render.Canvas = (*Canvas)(nil)

func TestParseColor(t *testing.T) {
	fallback := color.NRGBA{R: 1, A: 255}
	assert.Equal(t, color.NRGBA{R: 0x7C, G: 0x3A, B: 0xED, A: 255}, ParseColor("#7C3AED", fallback))
	assert.Equal(t, fallback, ParseColor("violet", fallback))
	assert.Equal(t, fallback, ParseColor("", fallback))
}

func TestCanvas_DrawsThroughSurface(t *testing.T) {
	c := NewCanvas([]lipgloss.Color{"#FF0000", "#00FF00"}, "#000000")
	rec := &recorder{}
	c.Bind(rec, 320, 200)

	w, h := c.Size()
	assert.Equal(t, 320.0, w)
	assert.Equal(t, 200.0, h)

	c.Clear()
	c.Disc(10, 10, 2, 1)
	c.Disc(20, 20, 2, 0.5)
	c.Disc(30, 30, 2, 2)
	c.Line(0, 0, 10, 10, 0.5)

	assert.Equal(t, 1, rec.fills)
	assert.Equal(t, 1, rec.lines)
	require.Len(t, rec.circles, 3)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, rec.circles[0])
	assert.Equal(t, color.NRGBA{G: 255, A: 128}, rec.circles[1])
	assert.Equal(t, uint8(255), rec.circles[2].A, "alpha clamps to 1")
	assert.Equal(t, uint8(255), rec.circles[2].R, "palette wraps")
}

func TestCanvas_GlowAndUnbound(t *testing.T) {
	c := NewCanvas(nil, "bogus")
	c.Disc(1, 1, 1, 1) // unbound: no panic

	rec := &recorder{}
	c.Bind(rec, 100, 100)
	c.Glow(50, 50, 40, 0.5)
	assert.Len(t, rec.circles, glowSteps)
	c.Glow(50, 50, 0, 0.5)
	assert.Len(t, rec.circles, glowSteps)
}

func TestCanvas_RenderLoop(t *testing.T) {
	c := NewCanvas(render.DefaultPalette, "#000000")
	rec := &recorder{}
	c.Bind(rec, 640, 480)

	loop := render.NewLoop(nil, render.Options{Seed: 7})
	stats := loop.Tick(c)
	assert.Greater(t, stats.Particles, 0)
	assert.GreaterOrEqual(t, len(rec.circles), stats.Particles)
}

// =============================================================================
// SESSION
// =============================================================================

type fakeDialogs struct {
	values settings.Settings
	action DialogAction
	err    error
}

func (f fakeDialogs) EditSettings(settings.Settings) (settings.Settings, DialogAction, error) {
	return f.values, f.action, f.err
}

func newSession(t *testing.T, chat http.HandlerFunc) (*Session, *app.App, *httptest.Server) {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Post("/api/chat", chat)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.Backend.DefaultURL = srv.URL + "/api/chat"
	cfg.Backend.VerifyIntervalSecs = 0
	cfg.Storage.Ephemeral = true

	a, err := app.New(app.Options{
		Config: cfg,
		Logger: zerolog.Nop(),
		Clock:  thinking.NewFakeClock(time.Unix(0, 0)),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return NewSession(context.Background(), a, nil), a, srv
}

func waitIdle(t *testing.T, s *Session) {
	t.Helper()
	require.Eventually(t, func() bool {
		s.Poll()
		return !s.Pending()
	}, 5*time.Second, 10*time.Millisecond)
}

func waitNotice(t *testing.T, s *Session) Notice {
	t.Helper()
	var n Notice
	require.Eventually(t, func() bool {
		s.Poll()
		var ok bool
		n, ok = s.Notice()
		return ok
	}, 5*time.Second, 10*time.Millisecond)
	return n
}

func waitApplied(t *testing.T, s *Session) {
	t.Helper()
	require.Eventually(t, func() bool { return s.Poll() > 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestSession_Submit(t *testing.T) {
	s, a, _ := newSession(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"reply":"pong"}`))
	})

	s.TypeRunes([]rune("hi!\n"))
	s.Backspace()
	assert.Equal(t, "hi", s.Input())

	require.True(t, s.Submit())
	assert.True(t, a.Thinking.IsThinking())
	assert.Empty(t, s.Input())

	s.TypeRunes([]rune("again"))
	assert.False(t, s.Submit(), "overlapping submit is ignored")
	n, ok := s.Notice()
	require.True(t, ok)
	assert.Contains(t, n.Text, "Still waiting")

	waitIdle(t, s)
	require.Len(t, s.Lines(), 2)
	assert.Equal(t, Line{Speaker: "you", Text: "hi"}, s.Lines()[0])
	assert.Equal(t, "pong", s.Lines()[1].Text)
	assert.Equal(t, "again", s.Input())
}

func TestSession_EmptySubmit(t *testing.T) {
	s, a, _ := newSession(t, func(http.ResponseWriter, *http.Request) {})
	s.TypeRunes([]rune("   "))
	assert.False(t, s.Submit())
	assert.False(t, a.Thinking.IsThinking())
}

func TestSession_FailureIsPersistent(t *testing.T) {
	s, _, srv := newSession(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	s.TypeRunes([]rune("hi"))
	require.True(t, s.Submit())
	waitIdle(t, s)

	n, ok := s.Notice()
	require.True(t, ok)
	assert.True(t, n.Persistent)
	assert.True(t, n.Error)
	assert.Equal(t, srv.URL+"/health", n.HealthURL)
	assert.True(t, s.Lines()[1].Failed)
}

func TestSession_NoticeExpires(t *testing.T) {
	s, _, _ := newSession(t, func(http.ResponseWriter, *http.Request) {})
	now := time.Unix(100, 0)
	s.now = func() time.Time { return now }

	s.note("hello", false)
	s.Poll()
	_, ok := s.Notice()
	assert.True(t, ok)

	now = now.Add(s.noticeDuration)
	s.Poll()
	_, ok = s.Notice()
	assert.False(t, ok)
}

func TestSession_Verify(t *testing.T) {
	s, _, _ := newSession(t, func(http.ResponseWriter, *http.Request) {})
	s.note("stale", true)
	s.Verify()
	waitApplied(t, s)
	_, ok := s.Notice()
	assert.False(t, ok, "a healthy backend hides the notice")
}

func TestSession_OpenSettings(t *testing.T) {
	t.Run("save", func(t *testing.T) {
		s, a, srv := newSession(t, func(http.ResponseWriter, *http.Request) {})
		url := srv.URL + "/api/v2/chat"
		require.True(t, s.OpenSettings(fakeDialogs{
			values: settings.Settings{BackendURL: url, APIKey: "k"},
			action: DialogSave,
		}))
		waitApplied(t, s)
		r, ok := s.Result()
		require.True(t, ok)
		assert.Equal(t, ResultSaved, r.Text)
		assert.Equal(t, url, a.Active.Get().BackendURL)
		_, ok = s.Notice()
		assert.False(t, ok)
	})

	t.Run("reset", func(t *testing.T) {
		s, a, srv := newSession(t, func(http.ResponseWriter, *http.Request) {})
		require.NoError(t, a.Store.Save(settings.Settings{BackendURL: "http://elsewhere/api/chat"}))
		require.True(t, s.OpenSettings(fakeDialogs{action: DialogReset}))
		waitApplied(t, s)
		r, ok := s.Result()
		require.True(t, ok)
		assert.Equal(t, ResultReset, r.Text)
		assert.Equal(t, srv.URL+"/api/chat", a.Active.Get().BackendURL)
	})

	t.Run("reset to unreachable default", func(t *testing.T) {
		s, a, _ := newSession(t, func(http.ResponseWriter, *http.Request) {})
		dead := httptest.NewServer(http.NotFoundHandler())
		deadURL := dead.URL
		dead.Close()
		next := a.Config().Clone()
		next.Backend.DefaultURL = deadURL + "/api/chat"
		a.ApplyConfig(next)

		require.True(t, s.OpenSettings(fakeDialogs{action: DialogReset}))
		waitApplied(t, s)
		r, ok := s.Result()
		require.True(t, ok)
		assert.Equal(t, ResultUnreachable, r.Text)
		assert.True(t, r.Error)
		n, ok := s.Notice()
		require.True(t, ok)
		assert.True(t, n.Persistent)
	})

	t.Run("dialog error", func(t *testing.T) {
		s, _, _ := newSession(t, func(http.ResponseWriter, *http.Request) {})
		require.True(t, s.OpenSettings(fakeDialogs{err: errors.New("no display")}))
		n := waitNotice(t, s)
		assert.Equal(t, "Settings: no display", n.Text)
		assert.True(t, n.Error)
		_, ok := s.Result()
		assert.False(t, ok)
	})
}

func TestSession_PostAfterCloseDoesNotBlock(t *testing.T) {
	_, a, _ := newSession(t, func(http.ResponseWriter, *http.Request) {})
	ctx, cancel := context.WithCancel(context.Background())
	s := NewSession(ctx, a, nil)
	cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 2*eventBuffer; i++ {
			s.post(replyEvent{})
		}
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("post blocked after the session ended")
	}
}

func TestSession_Transcript(t *testing.T) {
	s, _, _ := newSession(t, func(http.ResponseWriter, *http.Request) {})
	s.lines = []Line{
		{Speaker: "you", Text: "short"},
		{Speaker: "ultron", Text: "one two three four five six", ResumeURL: "https://h/r/abcdefghijklmnop"},
	}

	all := s.Transcript(12, 100)
	assert.Equal(t, "you: short", all[0])
	for _, l := range all {
		assert.LessOrEqual(t, len([]rune(l)), 12, l)
	}
	assert.Contains(t, strings.Join(all, ""), "abcdefghijklmnop")

	tail := s.Transcript(12, 2)
	assert.Len(t, tail, 2)
	assert.Equal(t, all[len(all)-2:], tail)
	assert.Nil(t, s.Transcript(12, 0))
}
