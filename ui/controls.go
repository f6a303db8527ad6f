package ui

import (
	"fmt"
	"log/slog"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// PanelState is what the panel displays.
type PanelState struct {
	Shape   string
	Mode    string
	Count   int
	Tiers   []int
	Color   [3]float32
	Opacity float32
}

// Actions are the edits made on the panel during one frame. Zero values
// mean no change.
type Actions struct {
	Shape   string
	Mode    string
	Count   int
	Color   [3]float32
	Opacity float32
	Recolor bool
}

// Target receives panel actions.
type Target interface {
	SetShape(name string) bool
	SetControlMode(mode string)
	SetParticleCount(n int) error
	SetColor(rgb [3]float32, opacity float32)
}

// Apply forwards the actions to t.
func (a Actions) Apply(t Target) {
	if a.Shape != "" {
		t.SetShape(a.Shape)
	}
	if a.Mode != "" {
		t.SetControlMode(a.Mode)
	}
	if a.Count > 0 {
		if err := t.SetParticleCount(a.Count); err != nil {
			slog.Error("failed to set particle count", "count", a.Count, "error", err)
		}
	}
	if a.Recolor {
		t.SetColor(a.Color, a.Opacity)
	}
}

// ControlsPanel renders the right-side panel with shape, mode, count and
// color controls.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Draw renders the panel and returns the edits made this frame.
func (c *ControlsPanel) Draw(state PanelState) Actions {
	var a Actions
	if !c.visible {
		return a
	}

	r := c.renderer
	pad := r.Theme.Padding
	line := r.Theme.LineHeight
	r.DrawPanel(c.x, c.y, c.width, 330)

	x := float32(c.x + pad)
	y := c.y + pad
	inner := float32(c.width - 2*pad)

	// Shape
	y = r.DrawSectionHeader(c.x+pad, y, "Shape: "+state.Shape)
	bw := (inner - 10) / 3
	for i, name := range []string{"sphere", "torus", "mesh"} {
		if gui.Button(rl.Rectangle{X: x + float32(i)*(bw+5), Y: float32(y), Width: bw, Height: 24}, name) {
			a.Shape = name
		}
	}
	y += 24 + line/2

	// Mode
	y = r.DrawSectionHeader(c.x+pad, y, "Mode: "+state.Mode)
	next, label := "boids", "Switch to boids"
	if state.Mode == "boids" {
		next, label = "normal", "Switch to normal"
	}
	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: inner, Height: 24}, label) {
		a.Mode = next
	}
	y += 24 + line/2

	// Particle count, one slider stop per tier
	y = r.DrawSectionHeader(c.x+pad, y, fmt.Sprintf("Particles: %d", state.Count))
	if n := len(state.Tiers); n > 1 {
		cur := float32(tierIndex(state.Tiers, state.Count))
		v := gui.SliderBar(rl.Rectangle{X: x, Y: float32(y), Width: inner, Height: 16}, "", "", cur, 0, float32(n-1))
		if idx := int(v + 0.5); idx != int(cur) {
			a.Count = state.Tiers[idx]
		}
	}
	y += 16 + line/2

	// Color
	y = r.DrawSectionHeader(c.x+pad, y, "Color")
	color := state.Color
	for i, ch := range []string{"R", "G", "B"} {
		color[i] = gui.SliderBar(rl.Rectangle{X: x + 14, Y: float32(y), Width: inner - 14, Height: 14}, ch, "", color[i], 0, 1)
		y += line + 2
	}
	opacity := gui.SliderBar(rl.Rectangle{X: x + 14, Y: float32(y), Width: inner - 14, Height: 14}, "A", "", state.Opacity, 0, 1)
	if color != state.Color || opacity != state.Opacity {
		a.Color = color
		a.Opacity = opacity
		a.Recolor = true
	}
	return a
}

func tierIndex(tiers []int, count int) int {
	for i, t := range tiers {
		if t >= count {
			return i
		}
	}
	return len(tiers) - 1
}
