// Package runner drives the simulation loop the CLI starts: it owns
// the wall-clock ticker, wires physics, storage, and stats-logging
// collaborators into a world.World, and applies the CLI's load/reset
// startup behaviour. Grounded on the teacher's `cli/orchestrator.go`
// (Orchestrator.Run's initialize-logger/create-network/run-mode/report
// shape), reduced to the spec's single sim mode since flags and
// alternate modes (expose/observe/logutil) have no analogue in a
// closed artificial-life world.
package runner

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Arti-Code/biosynth/common"
	"github.com/Arti-Code/biosynth/config"
	"github.com/Arti-Code/biosynth/physics"
	"github.com/Arti-Code/biosynth/stats"
	"github.com/Arti-Code/biosynth/storage"
	"github.com/Arti-Code/biosynth/world"
)

// tickRate is the wall-clock cadence the runner drives World.Tick at.
// The teacher's own sim loop (cli/orchestrator.go runSimMode) steps a
// fixed number of cycles with no wall-clock pacing at all; this module
// has no rendering frame to piggyback on, so it picks a real-time
// cadence instead, matching original source's own frame-rate-driven
// tick rather than an unthrottled batch loop.
const tickRate = 60

// Logger is the narrow logging surface the runner depends on, matching
// the teacher's own `*log.Logger`-shaped usage in `cli/orchestrator.go`
// (no interface there, but every call site uses exactly this surface).
type Logger interface {
	Printf(format string, v ...interface{})
}

// Run builds a world from app's settings, applies the CLI's startup
// behaviour (load a snapshot if one was named, otherwise reset to a
// fresh population), and drives ticks at tickRate until an OS
// interrupt/termination signal arrives.
func Run(app *config.AppConfig, logger Logger) error {
	if logger == nil {
		logger = log.New(os.Stdout, "", log.LstdFlags)
	}

	settings := app.Settings
	rng := rand.New(rand.NewSource(seedOrTime(app.CLI.Seed)))
	phys := physics.NewGrid(settings.CellSize, common.Vec2{X: settings.WorldWidth, Y: settings.WorldHeight})

	name := app.CLI.SimName
	if name == "" {
		name = "default"
	}
	w := world.New(name, settings, phys, rng)
	logErr := func(op string, err error) error {
		if err != nil {
			logger.Printf("%s failed: %v", op, err)
		}
		return err
	}
	w.SaveFn = func(snap world.Snapshot) error { return logErr("saving simulation", storage.SaveSimulation(snap)) }
	w.LoadFn = func(simName string) (world.Snapshot, error) {
		snap, err := storage.LoadSimulation(simName)
		return snap, logErr("loading simulation "+simName, err)
	}

	var statsLogger *storage.StatsLogger
	if app.CLI.StatsDB != "" {
		l, err := storage.NewStatsLogger(app.CLI.StatsDB)
		if err != nil {
			return fmt.Errorf("initializing stats logger: %w", err)
		}
		statsLogger = l
		defer func() {
			if err := statsLogger.Close(); err != nil {
				logger.Printf("closing stats logger: %v", err)
			}
		}()
	}

	if app.CLI.SimPath != "" {
		snap, err := storage.LoadSimulationPath(app.CLI.SimPath)
		if err != nil {
			logger.Printf("failed to load %s, starting fresh: %v", app.CLI.SimPath, err)
			w.Reset(settings.MinPopulation, settings.MinPopulation*2)
		} else {
			w.LoadSnapshot(snap)
			logger.Printf("resumed simulation %q from %s (elapsed %.1fs)", snap.Name, app.CLI.SimPath, snap.ElapsedTime)
		}
	} else {
		w.Reset(settings.MinPopulation, settings.MinPopulation*2)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	ticker := time.NewTicker(time.Second / tickRate)
	defer ticker.Stop()

	simSpeed := 1.0
	dt := 1.0 / tickRate
	started := time.Now()
	debug := app.CLI.LogLevel == "debug"
	lastBucket := -1.0

	logger.Printf("simulation %q started: %dx%d world, %d agents", w.Name, int(settings.WorldWidth), int(settings.WorldHeight), len(w.Agents))

	heartbeat := time.NewTicker(10 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-stop:
			logger.Printf("shutdown signal received, flushing final snapshot")
			if err := flushFinal(w, statsLogger); err != nil {
				logger.Printf("final flush failed: %v", err)
			}
			logger.Printf("simulation ran for %s", time.Since(started).Round(time.Second))
			return nil
		case <-ticker.C:
			w.Tick(dt, simSpeed)
			if statsLogger != nil {
				if p, ok := w.Stats.Series(stats.SeriesPopulation).Last(); ok && p.Time != lastBucket {
					lastBucket = p.Time
					if err := statsLogger.LogBucket(w.Stats); err != nil {
						logger.Printf("stats flush failed: %v", err)
					}
				}
			}
		case <-heartbeat.C:
			if debug {
				logger.Printf("t=%.1fs agents=%d plants=%d", w.ElapsedTime, len(w.Agents), len(w.Plants))
			}
		}
	}
}

// flushFinal performs one last save so a clean shutdown never loses
// the most recent tick's state (spec §7 "I/O errors on save/load:
// reported to a log sink; simulation continues; no in-memory state is
// lost" generalised to the stop path too).
func flushFinal(w *world.World, statsLogger *storage.StatsLogger) error {
	var errs []error
	if err := storage.SaveSimulation(w.Snapshot()); err != nil {
		errs = append(errs, err)
	}
	if statsLogger != nil {
		if err := statsLogger.LogBucket(w.Stats); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func seedOrTime(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return time.Now().UnixNano()
}
