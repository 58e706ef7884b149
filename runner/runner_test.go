package runner_test

import (
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arti-Code/biosynth/config"
	"github.com/Arti-Code/biosynth/runner"
	"github.com/Arti-Code/biosynth/storage"
)

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Printf(format string, v ...interface{}) {
	l.lines = append(l.lines, format)
}

func withTempCwd(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })
}

// TestRunStopsOnSignalAndSavesSnapshot mirrors the teacher's
// cmd/sim_integration_test.go basic-run shape: construct an AppConfig,
// run it, and assert it terminates cleanly and leaves a snapshot
// behind rather than losing state.
func TestRunStopsOnSignalAndSavesSnapshot(t *testing.T) {
	withTempCwd(t)

	settings := config.DefaultSettings()
	settings.WorldWidth = 400
	settings.WorldHeight = 400
	settings.MinPopulation = 3

	app := &config.AppConfig{
		Settings: settings,
		CLI:      config.CLIConfig{SimName: "smoke-test", Seed: 7},
	}

	logger := &recordingLogger{}
	done := make(chan error, 1)
	go func() { done <- runner.Run(app, logger) }()

	time.Sleep(150 * time.Millisecond)
	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runner.Run did not stop after SIGTERM")
	}

	assert.FileExists(t, storage.SimulationPath("smoke-test"))
}

func TestRunLoadsSnapshotFromSimPath(t *testing.T) {
	withTempCwd(t)

	settings := config.DefaultSettings()
	settings.MinPopulation = 2
	app := &config.AppConfig{Settings: settings, CLI: config.CLIConfig{SimName: "seed-sim"}}

	seedDone := make(chan error, 1)
	go func() { seedDone <- runner.Run(app, &recordingLogger{}) }()
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))
	require.NoError(t, <-seedDone)

	resumeApp := &config.AppConfig{
		Settings: config.DefaultSettings(),
		CLI:      config.CLIConfig{SimPath: storage.SimulationPath("seed-sim")},
	}
	logger := &recordingLogger{}
	resumeDone := make(chan error, 1)
	go func() { resumeDone <- runner.Run(resumeApp, logger) }()
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))

	select {
	case err := <-resumeDone:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("resumed runner.Run did not stop after SIGTERM")
	}

	found := false
	for _, line := range logger.lines {
		if line == "resumed simulation %q from %s (elapsed %.1fs)" {
			found = true
		}
	}
	assert.True(t, found, "expected a log line reporting a resumed simulation")
}
