package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/mutker/lightctl/internal/config"
	"codeberg.org/mutker/lightctl/internal/engine"
	"codeberg.org/mutker/lightctl/internal/errors"
	"codeberg.org/mutker/lightctl/internal/light"
	"codeberg.org/mutker/lightctl/internal/logger"
	"codeberg.org/mutker/lightctl/internal/monitor"
	"codeberg.org/mutker/lightctl/internal/pid"
	"codeberg.org/mutker/lightctl/internal/priority"
	"codeberg.org/mutker/lightctl/internal/scene"
	"codeberg.org/mutker/lightctl/internal/telegraph"
	"codeberg.org/mutker/lightctl/internal/telemetry"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	hazardInterval = 6.0  // seconds between scripted hazards
	cameraInterval = 20.0 // seconds between zoom flips
	stressPeriod   = 30.0 // seconds per stress on/off cycle
	healthPeriod   = 45.0 // seconds per wound/heal wave
)

var (
	cfg *config.Config
	eng *engine.Engine
)

type tickSnapshot struct {
	Cycle      float64          `json:"cycle"`
	Quality    string           `json:"quality"`
	ZoomMode   string           `json:"zoom_mode"`
	AvgFrameMs float64          `json:"avg_frame_ms"`
	Entities   int              `json:"entities"`
	Hazards    int              `json:"hazards"`
	Overrides  int              `json:"overrides"`
	Emissions  []light.Emission `json:"emissions"`
}

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())
	logger.Debug().Msg("Config loaded")
}

func main() {
	if err := pid.Write(); err != nil {
		logger.FatalWithCode(errors.New().Wrap(errors.ErrInitApp, err)).Msg("failed to write PID file")
	}
	defer pid.Remove()

	eng = engine.New(engine.Options{
		Cooldown:      time.Duration(cfg.Cooldown) * time.Second,
		FocusedScale:  cfg.FocusedScale,
		OverviewScale: cfg.OverviewScale,
		Logger:        logger.Default(),
	})
	if err := populateWorld(eng); err != nil {
		logger.FatalWithCode(errors.New().Wrap(errors.ErrInitApp, err)).Msg("failed to build world")
	}
	if cfg.Overview {
		eng.SetCameraScale(cfg.OverviewScale)
	}

	collector, err := telemetry.NewService(telemetry.Config{
		DBPath:       cfg.TelemetryDB,
		BatchSize:    cfg.TickRate,
		BatchTimeout: 5,
		Enabled:      cfg.Telemetry,
	}, logger.Default())
	if err != nil {
		logger.FatalWithCode(errors.New().Wrap(errors.ErrInitTelemetry, err)).Msg("failed to initialize telemetry")
	}
	defer func() {
		if err := collector.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close telemetry")
		}
	}()

	var mon *monitor.Server
	if cfg.MonitorAddr != "" {
		mon = monitor.NewServer(cfg.MonitorAddr, logger.Default())
		mon.Start()
		defer func() {
			if err := mon.Close(); err != nil {
				logger.Error().Err(err).Msg("failed to close monitor")
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if err := loop(ctx, collector, mon); err != nil {
		logger.Error().Err(err).Msg("error in main loop")
	}
	logger.Info().Msg("Exiting...")
}

func loop(ctx context.Context, collector telemetry.Collector, mon *monitor.Server) error {
	if cfg.TickRate <= 0 {
		return errors.New().WithData(errors.ErrInvalidTickRate, cfg.TickRate)
	}

	interval := time.Second / time.Duration(cfg.TickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if cfg.Monitor {
		logger.Info().Msg("Monitor mode activated. Observing lighting state...")
	}

	dt := 1.0 / float64(cfg.TickRate)
	cycle := 0.0
	nextHazard := 2.0
	hazardSeq := 0

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			cycle += dt

			if !cfg.Monitor {
				driveScript(cycle, &nextHazard, &hazardSeq)
			}

			frame := simulatedFrame(cycle)
			emissions := eng.Tick(frame, cycle, true)
			stats := eng.Stats()

			logState(cycle, stats)

			snapshot := &telemetry.Snapshot{
				Timestamp:      time.Now().UnixNano(),
				AvgFrameMicros: stats.AvgFrame.Microseconds(),
				Quality:        stats.Quality.String(),
				ZoomMode:       stats.Mode.String(),
				Entities:       stats.Entities,
				LitElements:    stats.LitElements,
				ActiveHazards:  stats.ActiveHazards,
				Overrides:      stats.Overrides,
			}
			if err := collector.Record(ctx, snapshot); err != nil {
				logger.Error().Err(err).Msg("failed to record telemetry")
			}

			if mon != nil {
				mon.Broadcast(tickSnapshot{
					Cycle:      cycle,
					Quality:    stats.Quality.String(),
					ZoomMode:   stats.Mode.String(),
					AvgFrameMs: float64(stats.AvgFrame.Microseconds()) / 1000,
					Entities:   stats.Entities,
					Hazards:    stats.ActiveHazards,
					Overrides:  stats.Overrides,
					Emissions:  emissions,
				})
			}
		}
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func populateWorld(e *engine.Engine) error {
	scenes := []scene.Profile{
		{ID: "atrium", Center: light.Vec2{X: 400, Y: 300}, Color: colorful.Hsv(45, 0.4, 1), Intensity: 500, FocusedMultiplier: 1.0, OverviewMultiplier: 0.7},
		{ID: "reactor", Center: light.Vec2{X: 1400, Y: 300}, Color: colorful.Hsv(12, 0.7, 1), Intensity: 550, FocusedMultiplier: 1.0, OverviewMultiplier: 0.6},
		{ID: "gardens", Center: light.Vec2{X: 400, Y: 1100}, Color: colorful.Hsv(110, 0.5, 0.9), Intensity: 450, FocusedMultiplier: 0.9, OverviewMultiplier: 0.8},
		{ID: "vault", Center: light.Vec2{X: 1400, Y: 1100}, Color: colorful.Hsv(230, 0.6, 0.9), Intensity: 400, FocusedMultiplier: 0.9, OverviewMultiplier: 0.5},
	}
	for _, p := range scenes {
		if err := e.AddScene(p); err != nil {
			return err
		}
	}

	members := []struct {
		id    string
		scene string
		pos   light.Vec2
	}{
		{"warden", "atrium", light.Vec2{X: 380, Y: 280}},
		{"scribe", "atrium", light.Vec2{X: 440, Y: 330}},
		{"stoker", "reactor", light.Vec2{X: 1380, Y: 310}},
		{"tender", "gardens", light.Vec2{X: 420, Y: 1080}},
		{"keeper", "vault", light.Vec2{X: 1410, Y: 1120}},
	}
	for _, m := range members {
		ent := priority.Entity{ID: m.id, Scene: m.scene, Health: 100, MaxHealth: 100}
		if err := e.AddEntity(ent, m.pos, colorful.Hsv(50, 0.2, 1), 80); err != nil {
			return err
		}
	}

	if err := e.SetSelected("warden", true); err != nil {
		return err
	}

	return nil
}

// driveScript exercises the pipeline: scripted hazards, zoom flips, health
// waves. Everything is derived from the cycle timer so runs are
// reproducible.
func driveScript(cycle float64, nextHazard *float64, hazardSeq *int) {
	if cycle >= *nextHazard {
		scheduleScriptedHazard(*hazardSeq, cycle)
		*hazardSeq++
		*nextHazard += hazardInterval
	}

	// Flip between focused and overview on a fixed cadence.
	if !cfg.Overview {
		phase := math.Mod(cycle, 2*cameraInterval)
		if phase < cameraInterval {
			eng.SetCameraScale(cfg.FocusedScale)
		} else {
			eng.SetCameraScale(cfg.OverviewScale)
		}
	}

	// Wound and heal one entity so the critical-health tier gets traffic.
	healthPhase := math.Mod(cycle, healthPeriod) / healthPeriod
	health := 100 * math.Abs(math.Cos(math.Pi*healthPhase))
	if err := eng.SetHealth("tender", health, 100); err != nil {
		logger.Debug().Err(err).Msg("failed to set scripted health")
	}
}

func scheduleScriptedHazard(seq int, cycle float64) {
	shapes := []telegraph.Shape{
		telegraph.CircleShape(light.Vec2{X: 420, Y: 300}, 120),
		telegraph.PointShape(light.Vec2{X: 1390, Y: 305}),
		telegraph.LineShape(light.Vec2{X: 300, Y: 1060}, light.Vec2{X: 560, Y: 1130}),
		telegraph.RegionShape(light.Vec2{X: 1300, Y: 1020}, light.Vec2{X: 1520, Y: 1200}),
	}
	drivers := []string{"warden", "stoker", "tender", "keeper"}

	id := fmt.Sprintf("hazard-%d", seq)
	hazardCfg := telegraph.Config{
		Shape:     shapes[seq%len(shapes)],
		Damage:    telegraph.DamageType(seq % 5),
		Start:     cycle + 0.5,
		Buildup:   1.0,
		Warning:   1.5,
		Danger:    0.5,
		Execution: 0.5,
	}

	if err := eng.ScheduleHazard(id, drivers[seq%len(drivers)], hazardCfg); err != nil {
		logger.Debug().Err(err).Msg("failed to schedule scripted hazard")
	}
}

// simulatedFrame synthesizes a frame duration: the nominal budget with a
// little deterministic jitter, plus the configured stress cost during the
// second half of each stress period.
func simulatedFrame(cycle float64) time.Duration {
	frame := 16.67 + 1.2*math.Sin(cycle*2.1)

	if !cfg.Monitor && cfg.StressMillis > 0 {
		if math.Mod(cycle, stressPeriod) > stressPeriod/2 {
			frame += float64(cfg.StressMillis)
		}
	}

	return time.Duration(frame * float64(time.Millisecond))
}

func logState(cycle float64, stats engine.Stats) {
	if cfg.Debug {
		logger.Debug().
			Float64("cycle", cycle).
			Str("quality", stats.Quality.String()).
			Str("zoom_mode", stats.Mode.String()).
			Dur("avg_frame", stats.AvgFrame).
			Bool("avg_ok", stats.AvgFrameOK).
			Int("entities", stats.Entities).
			Int("lit_elements", stats.LitElements).
			Int("active_hazards", stats.ActiveHazards).
			Int("overrides", stats.Overrides).
			Msg("")
	} else if cfg.Verbose || cfg.Monitor {
		logger.Info().
			Str("quality", stats.Quality.String()).
			Str("zoom_mode", stats.Mode.String()).
			Dur("avg_frame", stats.AvgFrame).
			Int("lit_elements", stats.LitElements).
			Int("active_hazards", stats.ActiveHazards).
			Msg("")
	}
}
