// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package desktop

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/muesli/reflow/wordwrap"

	"github.com/jeranaias/ultron-tui/internal/app"
	"github.com/jeranaias/ultron-tui/internal/backend"
	"github.com/jeranaias/ultron-tui/internal/connect"
	"github.com/jeranaias/ultron-tui/internal/settings"
)

// eventBuffer bounds results waiting for the next frame.
const eventBuffer = 16

// Settings dialog results.
const (
	ResultSaved       = "Saved"
	ResultReset       = "Reset"
	ResultUnreachable = "Unreachable"
)

// =============================================================================
// TYPES
// =============================================================================

// Line is one transcript entry.
type Line struct {
	Speaker   string
	Text      string
	ResumeURL string
	Failed    bool
}

// Notice is the status line shown under the canvas.
type Notice struct {
	Text       string
	Error      bool
	Persistent bool
	HealthURL  string
	until      time.Time
}

// DialogAction is the button chosen in the settings dialogs.
type DialogAction int

const (
	DialogCancel DialogAction = iota
	DialogSave
	DialogReset
)

// Dialogs asks the user for new settings.
type Dialogs interface {
	EditSettings(cur settings.Settings) (settings.Settings, DialogAction, error)
}

type replyEvent struct {
	reply backend.Reply
}

type verifyEvent struct {
	action DialogAction
	v      connect.Verification
	err    error
}

// =============================================================================
// SESSION
// =============================================================================

// Session is the chat state of the desktop window. Every method except
// OpenSettings must be called from the frame loop goroutine; background
// results are applied by Poll.
type Session struct {
	app    *app.App
	ctx    context.Context
	events chan any
	now    func() time.Time

	input   []rune
	lines   []Line
	pending bool
	notice  *Notice
	result  *Notice

	noticeDuration time.Duration
	dialogOpen     atomic.Bool
}

// NewSession creates a session over a. A nil now means time.Now.
func NewSession(ctx context.Context, a *app.App, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{
		app:            a,
		ctx:            ctx,
		events:         make(chan any, eventBuffer),
		now:            now,
		noticeDuration: a.Config().BannerDuration(),
	}
}

// TypeRunes appends typed characters to the input.
func (s *Session) TypeRunes(rs []rune) {
	for _, r := range rs {
		if r == '\n' || r == '\r' {
			continue
		}
		s.input = append(s.input, r)
	}
}

// Backspace removes the last input character.
func (s *Session) Backspace() {
	if len(s.input) > 0 {
		s.input = s.input[:len(s.input)-1]
	}
}

// Input returns the current input text.
func (s *Session) Input() string { return string(s.input) }

// Pending reports whether a reply is outstanding.
func (s *Session) Pending() bool { return s.pending }

// Lines returns the transcript.
func (s *Session) Lines() []Line { return s.lines }

// Notice returns the visible notice, if any.
func (s *Session) Notice() (Notice, bool) {
	if s.notice == nil {
		return Notice{}, false
	}
	return *s.notice, true
}

// Result returns the outcome of the last settings dialog while it is fresh.
func (s *Session) Result() (Notice, bool) {
	if s.result == nil {
		return Notice{}, false
	}
	return *s.result, true
}

// Submit sends the input. It reports whether a request was started.
func (s *Session) Submit() bool {
	text := backend.PrepareMessage(string(s.input))
	if text == "" {
		return false
	}
	if s.pending {
		s.note("Still waiting for the previous reply.", false)
		return false
	}

	s.input = s.input[:0]
	s.lines = append(s.lines, Line{Speaker: "you", Text: text})
	s.pending = true
	s.app.Thinking.Start()

	client := s.app.Client
	go func() {
		s.post(replyEvent{reply: client.Send(s.ctx, text)})
	}()
	return true
}

// Verify re-verifies connectivity in the background.
func (s *Session) Verify() {
	go func() {
		v, err := s.app.Resolver.Reverify(s.ctx)
		s.post(verifyEvent{action: DialogCancel, v: v, err: err})
	}()
}

// OpenSettings runs the settings dialogs in the background and applies
// the chosen action. A second call while dialogs are open is ignored.
func (s *Session) OpenSettings(d Dialogs) bool {
	if !s.dialogOpen.CompareAndSwap(false, true) {
		return false
	}
	go func() {
		defer s.dialogOpen.Store(false)

		cur, err := s.app.Store.Get()
		if err != nil {
			s.post(verifyEvent{action: DialogSave, err: err})
			return
		}
		values, action, err := d.EditSettings(cur)
		if err != nil {
			s.post(verifyEvent{action: action, err: err})
			return
		}

		var v connect.Verification
		switch action {
		case DialogSave:
			_, v, err = s.app.SaveSettings(s.ctx, values)
		case DialogReset:
			_, v, err = s.app.ResetSettings(s.ctx)
		default:
			return
		}
		s.post(verifyEvent{action: action, v: v, err: err})
	}()
	return true
}

// Poll applies finished background work and expires the notice. It never
// blocks and returns the number of results applied.
func (s *Session) Poll() int {
	n := 0
	for {
		select {
		case ev := <-s.events:
			s.apply(ev)
			n++
		default:
			if s.notice != nil && !s.notice.Persistent && !s.now().Before(s.notice.until) {
				s.notice = nil
			}
			if s.result != nil && !s.now().Before(s.result.until) {
				s.result = nil
			}
			return n
		}
	}
}

func (s *Session) apply(ev any) {
	switch ev := ev.(type) {
	case replyEvent:
		s.applyReply(ev.reply)
	case verifyEvent:
		s.applyVerify(ev)
	}
}

func (s *Session) applyReply(r backend.Reply) {
	s.app.Thinking.Stop()
	s.pending = false
	s.lines = append(s.lines, Line{
		Speaker:   "ultron",
		Text:      r.Text,
		ResumeURL: r.ResumeURL,
		Failed:    r.Diagnostic != nil,
	})

	if r.Diagnostic != nil {
		s.diagnose(r.Diagnostic)
	} else {
		s.notice = nil
	}
}

func (s *Session) applyVerify(ev verifyEvent) {
	if ev.err != nil {
		s.report(ev.action, false)
		s.note("Settings: "+ev.err.Error(), true)
		return
	}
	v := ev.v
	s.report(ev.action, v.Healthy)
	if v.Diagnostic != nil {
		s.diagnose(v.Diagnostic)
	} else if v.Healthy {
		s.notice = nil
	}
}

// report records the result of a Save or Reset.
func (s *Session) report(action DialogAction, ok bool) {
	text := ResultUnreachable
	switch {
	case action != DialogSave && action != DialogReset:
		return
	case ok && action == DialogSave:
		text = ResultSaved
	case ok:
		text = ResultReset
	}
	s.result = &Notice{Text: text, Error: !ok, until: s.now().Add(s.noticeDuration)}
}

// post hands ev to the frame loop unless the session is over.
func (s *Session) post(ev any) {
	select {
	case s.events <- ev:
	case <-s.ctx.Done():
	}
}

func (s *Session) note(text string, isErr bool) {
	s.notice = &Notice{Text: text, Error: isErr, until: s.now().Add(s.noticeDuration)}
}

func (s *Session) diagnose(d *connect.Diagnostic) {
	s.notice = &Notice{
		Text:       d.Text(),
		Error:      true,
		Persistent: true,
		HealthURL:  d.HealthURL,
	}
}

// Transcript returns at most rows display lines of the conversation,
// wrapped to cols, newest last.
func (s *Session) Transcript(cols, rows int) []string {
	if rows <= 0 {
		return nil
	}
	if cols < 8 {
		cols = 8
	}
	var out []string
	for _, l := range s.lines {
		text := l.Speaker + ": " + l.Text
		if l.ResumeURL != "" {
			text += "\nresume: " + l.ResumeURL
		}
		for _, para := range strings.Split(text, "\n") {
			out = append(out, hardWrap(wordwrap.String(para, cols), cols)...)
		}
	}
	if len(out) > rows {
		out = out[len(out)-rows:]
	}
	return out
}

// hardWrap splits lines wordwrap could not break, such as long URLs.
func hardWrap(s string, cols int) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		r := []rune(line)
		for len(r) > cols {
			out = append(out, string(r[:cols]))
			r = r[cols:]
		}
		out = append(out, string(r))
	}
	return out
}
