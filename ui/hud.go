package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swarm/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title    string
	Count    int
	Tier     int
	Mode     string
	Shape    string
	Tick     uint64
	FPS      float64
	Scale    float32
	Hands    int
	Tracking bool
	Perf     telemetry.PerfStats
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD in the top-left corner.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Particles: %d (tier %d) | Mode: %s | Shape: %s", data.Count, data.Tier, data.Mode, data.Shape),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Tick: %d | FPS: %.0f | Scale: %.2f", data.Tick, data.FPS, data.Scale),
		10, 55, 16, rl.LightGray,
	)

	status := "No hand"
	color := rl.Gray
	if data.Tracking {
		status = fmt.Sprintf("Tracking %d hand(s)", data.Hands)
		color = rl.Yellow
	}
	rl.DrawText(status, 10, 75, 16, color)
}

// DrawControls renders the key legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, legend string) {
	rl.DrawText(legend, 10, screenHeight-25, 14, rl.Gray)
}

// DrawPerf renders the per-phase timing breakdown at (x, y).
func (h *HUD) DrawPerf(x, y int32, perf telemetry.PerfStats) {
	r := h.renderer
	width := int32(260)
	height := int32(len(telemetry.Phases)+3)*r.Theme.LineHeight + 2*r.Theme.Padding
	r.DrawPanel(x, y, width, height)

	cx := x + r.Theme.Padding
	cy := r.DrawSectionHeader(cx, y+r.Theme.Padding, "Update timing")
	cy = r.DrawLabelValue(cx, cy, "tick", perf.AvgTickDuration.Round(time.Microsecond).String())
	for _, phase := range telemetry.Phases {
		cy = r.DrawBar(cx, cy, phase, float32(perf.PhasePct[phase]/100), width-2*r.Theme.Padding)
	}
}
