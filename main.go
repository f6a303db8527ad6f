package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swarm/camera"
	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/game"
	"github.com/pthm-cable/swarm/gesture"
	"github.com/pthm-cable/swarm/renderer"
	"github.com/pthm-cable/swarm/ui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Uint64("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	meshPath := flag.String("mesh", "", "OBJ or CSV vertex file for the mesh shape (overrides config)")
	replayPath := flag.String("replay", "", "Gesture recording (CSV) to feed as hand input")
	replayLoop := flag.Bool("replay-loop", false, "Restart the gesture recording when it ends")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *statsWindow > 0 {
		cfg.Telemetry.StatsWindow = *statsWindow
	}
	if *meshPath != "" {
		cfg.Shape.MeshPath = *meshPath
	}
	cfg.ComputeDerived()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Gesture input arrives on its own goroutine
	var latest gesture.Latest
	if *replayPath != "" {
		frames, err := gesture.LoadFrames(*replayPath)
		if err != nil {
			slog.Error("failed to load gesture recording", "error", err)
			os.Exit(1)
		}
		interval := time.Duration(float64(time.Second) * cfg.Simulation.DT)
		replay := gesture.NewReplay(frames, interval, *replayLoop)
		go func() {
			if err := replay.Run(ctx, &latest); err != nil && ctx.Err() == nil {
				slog.Error("gesture replay stopped", "error", err)
			}
		}()
		slog.Info("replaying gestures", "path", *replayPath, "frames", len(frames))
	}

	opts := game.Options{
		Seed:      rngSeed,
		LogStats:  *logStats,
		OutputDir: *outputDir,
	}

	if *headless {
		s, err := game.New(cfg, opts)
		if err != nil {
			slog.Error("failed to create swarm", "error", err)
			os.Exit(1)
		}
		defer s.Close()

		slog.Info("starting headless simulation",
			"seed", rngSeed,
			"count", s.Count(),
			"shape", s.Shape(),
			"max_ticks", *maxTicks,
		)

		if err := game.RunHeadless(ctx, s, &latest, *maxTicks); err != nil {
			slog.Error("simulation failed", "tick", s.Tick(), "error", err)
			os.Exit(1)
		}
		slog.Info("simulation finished", "tick", s.Tick(), "count", s.Count())
		return
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Swarm")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	s, err := game.New(cfg, opts)
	if err != nil {
		slog.Error("failed to create swarm", "error", err)
		os.Exit(1)
	}
	defer s.Close()

	if err := runWindow(ctx, cfg, s, &latest, *maxTicks); err != nil {
		slog.Error("simulation failed", "tick", s.Tick(), "error", err)
		os.Exit(1)
	}
}

// runWindow is the graphical frame loop: input, one swarm update, draw.
func runWindow(ctx context.Context, cfg *config.Config, s *game.Swarm, latest *gesture.Latest, maxTicks uint64) error {
	orbit := camera.New(float32(3 * cfg.Boids.BoundaryRadius))
	points := renderer.NewPointCloud(orbit)
	hud := ui.NewHUD()
	panel := ui.NewControlsPanel(int32(cfg.Screen.Width)-250, 10, 240)
	showPerf := false

	// Mouse orbit and wheel zoom on top of the gesture transform
	var userYaw, userPitch float32
	userZoom := float32(1)

	for !rl.WindowShouldClose() && ctx.Err() == nil {
		switch {
		case rl.IsKeyPressed(rl.KeyOne):
			s.SetShape("sphere")
		case rl.IsKeyPressed(rl.KeyTwo):
			s.SetShape("torus")
		case rl.IsKeyPressed(rl.KeyThree):
			s.SetShape("mesh")
		case rl.IsKeyPressed(rl.KeyB):
			if s.Mode() == "boids" {
				s.SetControlMode("normal")
			} else {
				s.SetControlMode("boids")
			}
		case rl.IsKeyPressed(rl.KeyTab):
			panel.Toggle()
		case rl.IsKeyPressed(rl.KeyP):
			showPerf = !showPerf
		case rl.IsKeyPressed(rl.KeyG):
			points.ToggleBounds()
		case rl.IsKeyPressed(rl.KeyR):
			userYaw, userPitch, userZoom = 0, 0, 1
		}
		if rl.IsMouseButtonDown(rl.MouseButtonRight) {
			d := rl.GetMouseDelta()
			userYaw -= d.X * 0.005
			userPitch += d.Y * 0.005
		}
		if wheel := rl.GetMouseWheelMove(); wheel != 0 {
			userZoom *= 1 + 0.1*wheel
		}

		snap := latest.Load()
		if err := s.Update(snap); err != nil {
			return err
		}

		yaw, pitch := s.Rotation()
		orbit.SetRotation(userYaw+yaw, userPitch+pitch)
		orbit.SetZoom(userZoom * s.Scale())

		w := int32(rl.GetScreenWidth())
		h := int32(rl.GetScreenHeight())
		panel.SetPosition(w-250, 10)

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)

		points.Draw(s.Store(), s.Opacity(), float32(cfg.Boids.BoundaryRadius))
		s.ClearDirty()

		hud.Draw(ui.HUDData{
			Title:    "Swarm",
			Count:    s.Count(),
			Tier:     s.Tier(),
			Mode:     string(s.Mode()),
			Shape:    string(s.Shape()),
			Tick:     s.Tick(),
			FPS:      s.FPS(),
			Scale:    s.Scale(),
			Hands:    snap.Present(),
			Tracking: s.Controls().Tracking,
		})
		if showPerf {
			hud.DrawPerf(10, 100, s.Perf())
		}
		hud.DrawControls(h, "1/2/3: shape | B: boids | Tab: panel | P: perf | G: bounds | RMB: orbit | Wheel: zoom | R: reset view")

		actions := panel.Draw(ui.PanelState{
			Shape:   string(s.Shape()),
			Mode:    string(s.Mode()),
			Count:   s.Count(),
			Tiers:   cfg.Quality.Tiers,
			Color:   s.Color(),
			Opacity: s.Opacity(),
		})
		rl.EndDrawing()

		actions.Apply(s)

		if maxTicks > 0 && s.Tick() >= maxTicks {
			break
		}
	}
	return nil
}
