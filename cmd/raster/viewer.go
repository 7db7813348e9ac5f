package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/colorprofile"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/raster/pkg/models"
	"github.com/taigrr/raster/pkg/render"
	"github.com/taigrr/raster/pkg/scene"
)

// view runs the interactive viewer until the user quits or ctx ends.
func view(ctx context.Context, mesh *models.Mesh, cfg scene.Config, opts options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Create terminal
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	profile := colorprofile.Detect(os.Stdout, os.Environ())
	newSurface := func(w, h int) *render.TerminalSurface {
		return render.NewTerminalSurface(term, uv.Rect(0, 0, w, h), cfg.Palette,
			render.WithGlyph(opts.glyph),
			render.WithHalfBlock(opts.halfBlock),
			render.WithProfile(profile),
		)
	}

	surface := newSurface(width, height)
	rows, cols := surface.Size()
	s, err := scene.New(mesh, cols, rows, cfg)
	if err != nil {
		return err
	}
	hud := NewHUD()

	// Events are handled on the frame loop so the scene has one owner.
	events := make(chan uv.Event, 64)
	go func() {
		for ev := range term.Events() {
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(time.Second / time.Duration(cfg.FPS))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				if ev.Width <= 0 || ev.Height <= 0 {
					continue
				}
				width, height = ev.Width, ev.Height
				term.Erase()
				term.Resize(width, height)
				surface = newSurface(width, height)
				rows, cols = surface.Size()
				if err := s.Resize(cols, rows); err != nil {
					return err
				}
			case uv.KeyPressEvent:
				if !s.Handle(scene.DefaultKeyMap.Match(ev.MatchString)) {
					return nil
				}
			}

		case <-ticker.C:
			s.Step()
			if err := s.Render(surface); err != nil {
				return fmt.Errorf("render: %w", err)
			}

			hud.UpdateFPS()
			if s.ShowHelp {
				hud.Draw(term, width, height, s.Status())
			}

			if err := term.Display(); err != nil {
				return fmt.Errorf("flush: %w", err)
			}
			if s.Frames()%(cfg.FPS*5) == 0 {
				render.Logger().Debug("viewer", slog.Float64("fps", hud.FPS()))
			}
		}
	}
}
