package main

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/charmbracelet/x/ansi"
	"github.com/taigrr/raster/pkg/scene"
)

var (
	hudBase  = lipgloss.NewStyle().Background(lipgloss.Color("#000000")).Foreground(lipgloss.Color("#FFFFFF"))
	hudFPS   = hudBase.Foreground(lipgloss.Color("#5FFF87"))
	hudTitle = hudBase.Bold(true)
	hudCount = hudBase.Foreground(lipgloss.Color("#5FD7FF")).Bold(true)
	hudHint  = hudBase.Foreground(lipgloss.Color("#FFD75F")).Faint(true)
)

const helpHint = " a/d spin  w/s pitch  +/- zoom  f shading  z depth  r reset  q quit "

// HUD renders an overlay with frame rate, mesh info and render modes.
type HUD struct {
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

// NewHUD creates a new HUD.
func NewHUD() *HUD {
	return &HUD{fpsTime: time.Now()}
}

// UpdateFPS updates the FPS counter (call once per frame)
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// FPS returns the last measured frame rate.
func (h *HUD) FPS() float64 { return h.fps }

// Lines builds the top and bottom HUD rows, each at most width cells wide.
func (h *HUD) Lines(width int, st scene.Status) (top, bottom string) {
	fps := hudFPS.Render(fmt.Sprintf(" %.0f FPS ", h.fps))
	title := hudTitle.Render(" " + st.Mesh + " ")
	count := hudCount.Render(fmt.Sprintf(" %d faces ", st.Faces))
	top = spread(width, fps, title, count)

	check := func(on bool) string {
		if on {
			return "[✓]"
		}
		return "[ ]"
	}
	modes := hudBase.Render(fmt.Sprintf(" %s Depth  %s  d=%.2f  %d px ",
		check(st.DepthTest), st.Shading, st.Distance, st.Stats.Pixels))
	bottom = spread(width, modes, hudHint.Render(helpHint))
	return top, bottom
}

// spread lays out styled parts left, centre and right on one line and
// truncates the result to width.
func spread(width int, parts ...string) string {
	used := 0
	for _, p := range parts {
		used += ansi.StringWidth(p)
	}
	if len(parts) < 2 || used >= width {
		return ansi.Truncate(strings.Join(parts, ""), width, "…")
	}
	gaps := len(parts) - 1
	free := width - used
	var b strings.Builder
	for i, p := range parts {
		b.WriteString(p)
		if i < gaps {
			n := free / gaps
			if i < free%gaps {
				n++
			}
			b.WriteString(strings.Repeat(" ", n))
		}
	}
	return b.String()
}

// Draw paints the HUD rows onto the first and last lines of scr.
func (h *HUD) Draw(scr uv.Screen, width, height int, st scene.Status) {
	top, bottom := h.Lines(width, st)
	uv.NewStyledString(top).Draw(scr, uv.Rect(0, 0, width, 1))
	if height > 1 {
		uv.NewStyledString(bottom).Draw(scr, uv.Rect(0, height-1, width, 1))
	}
}
