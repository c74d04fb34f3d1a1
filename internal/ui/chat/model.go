// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ultron-tui/internal/app"
	"github.com/jeranaias/ultron-tui/internal/backend"
	"github.com/jeranaias/ultron-tui/internal/render"
	"github.com/jeranaias/ultron-tui/internal/ui/components"
	"github.com/jeranaias/ultron-tui/internal/ui/styles"
)

// Layout constants, in terminal rows.
const (
	headerRows    = 1
	statusRows    = 1
	inputRows     = 2
	thinkingRows  = 1
	minCanvasRows = 4
	maxCanvasRows = 24
)

// Options configure New.
type Options struct {
	Version string
	// Now replaces time.Now (tests).
	Now func() time.Time
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	app   *app.App
	theme *styles.Theme
	keys  KeyMap
	opts  Options

	ctx    context.Context
	cancel context.CancelFunc

	// Dimensions
	width  int
	height int

	// Mandala
	loop      *render.Loop
	canvas    *render.BrailleCanvas
	canvasTop int
	fps       int
	stats     render.FrameStats

	// Conversation
	transcript *components.Transcript
	viewport   viewport.Model
	input      textinput.Model

	banner    components.Banner
	panel     components.SettingsPanel
	indicator components.ThinkingIndicator

	bannerDuration time.Duration
	pending        bool
	sendSeq        int
}

// New creates the chat model over a.
func New(a *app.App, theme *styles.Theme, opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	cfg := a.Config()

	input := textinput.New()
	input.Placeholder = "Ask ultron…"
	input.Prompt = "> "
	input.PromptStyle = theme.InputPrompt
	input.PlaceholderStyle = theme.Placeholder
	input.CharLimit = 8000
	input.Focus()

	canvas := render.NewBrailleCanvas(0, 0, 0)
	canvas.SetPalette(theme.Mandala)

	loop := render.NewLoop(a.Thinking, a.LoopOptions())
	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		app:            a,
		theme:          theme,
		keys:           DefaultKeyMap(),
		opts:           opts,
		ctx:            ctx,
		cancel:         cancel,
		loop:           loop,
		canvas:         canvas,
		canvasTop:      headerRows,
		fps:            loop.Options().FPS,
		transcript:     components.NewTranscript(theme, cfg.UI.Markdown),
		viewport:       viewport.New(80, 10),
		input:          input,
		panel:          components.NewSettingsPanel(),
		indicator:      components.NewThinkingIndicator(theme),
		bannerDuration: cfg.BannerDuration(),
	}
}

// Init starts the frame tick and the startup verification.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		render.TickCmd(m.fps),
		textinput.Blink,
		m.verifyCmd(VerifyStartup),
	)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.layout()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.banner.SetWidth(msg.Width)
		m.panel.SetWidth(msg.Width)
		m.transcript.SetWidth(msg.Width - 2)
		m.refreshTranscript()
		return m, nil

	case render.FrameMsg:
		return m.handleFrame()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case SendResultMsg:
		return m.handleSendResult(msg)

	case VerifyResultMsg:
		return m.handleVerifyResult(msg)

	case ConfigReloadedMsg:
		return m.handleConfigReloaded(msg)

	case components.BannerExpireMsg:
		m.banner.Expire(msg)
		return m, nil

	case components.ButtonLabelExpireMsg:
		m.panel.ExpireLabel(msg)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.indicator, cmd = m.indicator.Update(msg)
		return m, cmd
	}

	// Cursor blink and anything else the inputs understand.
	var cmd tea.Cmd
	if m.panel.IsOpen() {
		cmd = m.panel.Update(msg)
	} else {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

// handleFrame advances the mandala one frame and keeps the thinking
// indicator in step with the machine.
func (m Model) handleFrame() (Model, tea.Cmd) {
	m.stats = m.loop.Tick(m.canvas)

	var cmd tea.Cmd
	thinking := m.app.Thinking.IsThinking()
	switch {
	case thinking && !m.indicator.IsActive():
		cmd = m.indicator.Start(m.app.Thinking.StartedAt())
	case !thinking && m.indicator.IsActive():
		m.indicator.Stop()
	}
	return m, tea.Batch(render.TickCmd(m.fps), cmd)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.cancel()
		return m, tea.Quit
	}
	if key.Matches(msg, m.keys.Settings) {
		return m.toggleSettings()
	}
	if m.panel.IsOpen() {
		return m.handlePanelKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	case key.Matches(msg, m.keys.Clear):
		m.transcript.Clear()
		m.refreshTranscript()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit sends the input. The thinking machine starts before the request
// command is handed to the runtime.
func (m Model) submit() (Model, tea.Cmd) {
	text := backend.PrepareMessage(m.input.Value())
	if text == "" {
		return m, nil
	}
	if m.pending {
		cmd := m.banner.Show(components.BannerInfo, "Still waiting for the previous reply.", m.bannerDuration)
		return m, cmd
	}

	m.input.Reset()
	m.transcript.Append(components.Entry{Role: components.RoleUser, Text: text, At: m.opts.Now()})
	m.refreshTranscript()

	m.pending = true
	m.sendSeq++
	m.app.Thinking.Start()
	return m, m.sendCmd(m.sendSeq, text)
}

func (m Model) handleSendResult(msg SendResultMsg) (Model, tea.Cmd) {
	m.app.Thinking.Stop()
	if msg.Seq == m.sendSeq {
		m.pending = false
	}

	r := msg.Reply
	m.transcript.Append(components.Entry{
		Role:      components.RoleAssistant,
		Text:      r.Text,
		ResumeURL: r.ResumeURL,
		At:        m.opts.Now(),
		Failed:    r.Diagnostic != nil,
	})
	m.refreshTranscript()

	if r.Diagnostic != nil {
		m.banner.ShowDiagnostic(r.Diagnostic)
	} else {
		m.banner.Hide()
	}
	return m, nil
}

func (m Model) handleVerifyResult(msg VerifyResultMsg) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	v := msg.Verification

	if msg.Err != nil {
		if msg.Reason == VerifyStartup {
			return m, nil
		}
		if b, ok := settingsButton(msg.Reason); ok {
			cmds = append(cmds, m.panel.Flash(b, components.LabelUnreachable, components.DefaultLabelDuration))
		}
		cmds = append(cmds, m.banner.Show(components.BannerError, "Settings: "+msg.Err.Error(), m.bannerDuration))
		return m, tea.Batch(cmds...)
	}

	if msg.Reason == VerifyReset {
		m.panel.SetValues(msg.Settings)
	}
	if b, ok := settingsButton(msg.Reason); ok {
		label := components.LabelUnreachable
		if v.Healthy {
			label = components.LabelSaved
			if b == components.ButtonReset {
				label = components.LabelReset
			}
		}
		cmds = append(cmds, m.panel.Flash(b, label, components.DefaultLabelDuration))
	}

	if v.Diagnostic != nil {
		m.banner.ShowDiagnostic(v.Diagnostic)
	} else if v.Healthy {
		m.banner.Hide()
	}
	return m, tea.Batch(cmds...)
}

// settingsButton maps a settings verification to the panel button it reports on.
func settingsButton(r VerifyReason) (components.PanelButton, bool) {
	switch r {
	case VerifySave:
		return components.ButtonSave, true
	case VerifyReset:
		return components.ButtonReset, true
	}
	return 0, false
}

func (m Model) handleConfigReloaded(msg ConfigReloadedMsg) (Model, tea.Cmd) {
	if msg.Err != nil {
		return m, m.banner.Show(components.BannerError, "Config reload failed: "+msg.Err.Error(), m.bannerDuration)
	}
	m.app.ApplyConfig(msg.Config)
	m.loop.Reconfigure(m.app.LoopOptions())
	m.fps = m.loop.Options().FPS
	m.bannerDuration = msg.Config.BannerDuration()
	return m, m.banner.Show(components.BannerInfo, "Configuration reloaded", m.bannerDuration)
}

// =============================================================================
// SETTINGS PANEL
// =============================================================================

func (m Model) toggleSettings() (Model, tea.Cmd) {
	if m.panel.IsOpen() {
		m.panel.Close()
		return m, m.input.Focus()
	}
	cur, err := m.app.Store.Get()
	if err != nil {
		m.app.Log.Warn().Err(err).Msg("read settings for panel")
	}
	m.input.Blur()
	return m, m.panel.Open(cur)
}

func (m Model) handlePanelKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	action, cmd := m.panel.HandleKey(msg)
	switch action {
	case components.ActionSave:
		return m, m.saveCmd(m.panel.Values())
	case components.ActionReset:
		return m, m.resetCmd()
	case components.ActionClose:
		m.panel.Close()
		return m, m.input.Focus()
	}
	return m, cmd
}

// =============================================================================
// MOUSE
// =============================================================================

// handleMouse maps the cell under the pointer to canvas units.
func (m Model) handleMouse(msg tea.MouseMsg) {
	cols, rows := m.canvas.Cells()
	row := msg.Y - m.canvasTop
	if msg.X < 0 || msg.X >= cols || row < 0 || row >= rows {
		m.loop.ClearPointer()
		return
	}
	w, h := m.canvas.Size()
	x := (float64(msg.X) + 0.5) * w / float64(cols)
	y := (float64(row) + 0.5) * h / float64(rows)
	m.loop.SetPointer(x, y)
}

// =============================================================================
// LAYOUT
// =============================================================================

// layout sizes the canvas and transcript around the variable-height banner.
func (m *Model) layout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	bannerRows := 0
	if m.banner.Visible() {
		bannerRows = lipgloss.Height(m.banner.View(m.theme))
	}
	fixed := headerRows + statusRows + inputRows + thinkingRows + bannerRows

	canvasRows := m.height * 2 / 5
	if canvasRows > maxCanvasRows {
		canvasRows = maxCanvasRows
	}
	if canvasRows < minCanvasRows {
		canvasRows = minCanvasRows
	}
	if m.height-fixed-canvasRows < 1 {
		canvasRows = m.height - fixed - 1
		if canvasRows < 0 {
			canvasRows = 0
		}
	}

	if cols, rows := m.canvas.Cells(); cols != m.width || rows != canvasRows {
		m.canvas.Resize(m.width, canvasRows)
	}

	vh := m.height - fixed - canvasRows
	if vh < 1 {
		vh = 1
	}
	m.viewport.Width = m.width
	m.viewport.Height = vh
	m.input.Width = m.width - 4
}

func (m *Model) refreshTranscript() {
	m.viewport.SetContent(m.transcript.Render())
	m.viewport.GotoBottom()
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Pending reports whether a reply is outstanding.
func (m Model) Pending() bool { return m.pending }

// Banner returns the status banner.
func (m Model) Banner() components.Banner { return m.banner }

// Panel returns the settings panel.
func (m Model) Panel() components.SettingsPanel { return m.panel }

// Transcript returns the conversation.
func (m Model) Transcript() *components.Transcript { return m.transcript }

// Stats returns the last frame's statistics.
func (m Model) Stats() render.FrameStats { return m.stats }

// Loop returns the render loop.
func (m Model) Loop() *render.Loop { return m.loop }

// SetInput replaces the input text.
func (m *Model) SetInput(s string) { m.input.SetValue(s) }
