// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gui

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/jeranaias/ultron-tui/internal/app"
	"github.com/jeranaias/ultron-tui/internal/config"
	"github.com/jeranaias/ultron-tui/internal/desktop"
	"github.com/jeranaias/ultron-tui/internal/render"
	"github.com/jeranaias/ultron-tui/internal/ui/styles"
	"github.com/jeranaias/ultron-tui/internal/util"
)

const (
	defaultWidth  = 960
	defaultHeight = 720

	// debug font cell
	glyphW = 6
	glyphH = 16
	margin = 12

	// backspace auto-repeat, in ticks
	repeatDelay    = 30
	repeatInterval = 4
)

// Options configure Run.
type Options struct {
	Width  int
	Height int
	Title  string

	// Reload delivers reloaded configurations (config watcher).
	Reload <-chan *config.Config
}

type game struct {
	app     *app.App
	session *desktop.Session
	loop    *render.Loop
	canvas  *desktop.Canvas
	dialogs desktop.Dialogs
	reload  <-chan *config.Config

	background color.NRGBA
	w, h       int
	runes      []rune
}

// Run opens the window and blocks until it is closed.
func Run(ctx context.Context, a *app.App, opts Options) error {
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = defaultHeight
	}
	if opts.Title == "" {
		opts.Title = "ultron"
	}

	loop := render.NewLoop(a.Thinking, a.LoopOptions())
	ebiten.SetWindowSize(opts.Width, opts.Height)
	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(loop.Options().FPS)

	bg := string(styles.SurfaceDim.Dark)
	g := &game{
		app:        a,
		session:    desktop.NewSession(ctx, a, nil),
		loop:       loop,
		canvas:     desktop.NewCanvas(styles.MandalaDark, lipgloss.Color(bg)),
		dialogs:    zenityDialogs{},
		reload:     opts.Reload,
		background: desktop.ParseColor(bg, color.NRGBA{A: 255}),
		w:          opts.Width,
		h:          opts.Height,
	}
	g.session.Verify()

	a.Log.Info().Int("width", opts.Width).Int("height", opts.Height).Msg("desktop window starting")
	return ebiten.RunGame(g)
}

// =============================================================================
// EBITEN GAME
// =============================================================================

func (g *game) Update() error {
	g.runes = ebiten.AppendInputChars(g.runes[:0])
	g.session.TypeRunes(g.runes)

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter), inpututil.IsKeyJustPressed(ebiten.KeyNumpadEnter):
		g.session.Submit()
	case inpututil.IsKeyJustPressed(ebiten.KeyF2):
		g.session.OpenSettings(g.dialogs)
	case repeating(ebiten.KeyBackspace):
		g.session.Backspace()
	}

	mx, my := ebiten.CursorPosition()
	if mx >= 0 && my >= 0 && mx < g.w && my < g.canvasHeight() {
		g.loop.SetPointer(float64(mx), float64(my))
	} else {
		g.loop.ClearPointer()
	}

	select {
	case cfg := <-g.reload:
		g.app.ApplyConfig(cfg)
		g.loop.Reconfigure(g.app.LoopOptions())
		ebiten.SetTPS(g.loop.Options().FPS)
	default:
	}

	g.session.Poll()
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(g.background)

	ch := g.canvasHeight()
	area := screen.SubImage(image.Rect(0, 0, g.w, ch)).(*ebiten.Image)
	g.canvas.Bind(imageSurface{img: area}, g.w, ch)
	g.loop.Tick(g.canvas)

	cols := (g.w - 2*margin) / glyphW
	ebitenutil.DebugPrintAt(screen, util.TruncateWidth("ULTRON  "+g.app.Active.Get().BackendURL, cols), margin, margin)

	y := ch + margin/2
	if n, ok := g.session.Notice(); ok {
		text := n.Text
		if n.Error {
			text = "! " + text
		}
		ebitenutil.DebugPrintAt(screen, text, margin, y)
		y += glyphH * (strings.Count(text, "\n") + 1)
	}

	// input, thinking and help rows at the bottom
	bottom := g.h - 3*glyphH - margin/2
	rows := (bottom - y) / glyphH
	for i, line := range g.session.Transcript(cols, rows) {
		ebitenutil.DebugPrintAt(screen, line, margin, y+i*glyphH)
	}

	if g.app.Thinking.IsThinking() {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Thinking %.1fs", g.app.Thinking.Elapsed().Seconds()), margin, bottom)
	}
	prompt := "> " + g.session.Input() + "_"
	ebitenutil.DebugPrintAt(screen, util.TruncateWidth(prompt, cols), margin, bottom+glyphH)
	help := "Enter send  F2 settings  Esc quit"
	if r, ok := g.session.Result(); ok {
		help += "  [" + r.Text + "]"
	}
	ebitenutil.DebugPrintAt(screen, help, margin, bottom+2*glyphH)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.w, g.h = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

func (g *game) canvasHeight() int {
	return g.h * 3 / 5
}

func repeating(k ebiten.Key) bool {
	d := inpututil.KeyPressDuration(k)
	return d == 1 || (d >= repeatDelay && (d-repeatDelay)%repeatInterval == 0)
}
