// Package storage persists simulation snapshots, agent templates, and
// settings exports to disk, and logs rolling statistics to SQLite.
package storage

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Arti-Code/biosynth/agent"
	"github.com/Arti-Code/biosynth/config"
	"github.com/Arti-Code/biosynth/world"
)

// ErrSimulationNotFound is returned by LoadSimulation when the named
// simulation has no saved snapshot on disk.
var ErrSimulationNotFound = errors.New("storage: simulation not found")

const (
	simulationsDir = "saves/simulations"
	agentsDir      = "saves/agents"
	settingsDir    = "saves/settings"
)

// writeBase64JSON marshals v to JSON, base64-encodes it, and writes the
// result to filePath, creating parent directories as needed (spec §6
// "every saved artifact is a base64-encoded UTF-8 JSON document").
func writeBase64JSON(filePath string, v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", filePath, err)
	}

	encoded := base64.StdEncoding.EncodeToString(raw)

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", filePath, err)
	}
	if err := os.WriteFile(filePath, []byte(encoded), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filePath, err)
	}
	return nil
}

// readBase64JSON reads filePath, base64-decodes it, and unmarshals the
// JSON payload into v.
func readBase64JSON(filePath string, v interface{}) error {
	encoded, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	raw, err := base64.StdEncoding.DecodeString(string(encoded))
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", filePath, err)
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", filePath, err)
	}
	return nil
}

// SimulationPath returns the on-disk path for a named simulation's
// autosave (spec §6 "saves/simulations/<name>/last.sim").
func SimulationPath(name string) string {
	return filepath.Join(simulationsDir, name, "last.sim")
}

// SaveSimulation writes a simulation snapshot to its conventional path.
// Its signature matches world.World.SaveFn so it can be assigned there
// directly.
func SaveSimulation(snap world.Snapshot) error {
	return writeBase64JSON(SimulationPath(snap.Name), snap)
}

// LoadSimulation reads a simulation snapshot by name. Its signature
// matches world.World.LoadFn.
func LoadSimulation(name string) (world.Snapshot, error) {
	var snap world.Snapshot
	path := SimulationPath(name)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return snap, fmt.Errorf("%w: %s", ErrSimulationNotFound, name)
		}
		return snap, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	err := readBase64JSON(path, &snap)
	return snap, err
}

// LoadSimulationPath reads a simulation snapshot from an arbitrary
// file path rather than the conventional saves/simulations/<name>
// layout. This backs the CLI's single positional argument (spec §6
// "the path to a .sim file"), which names a file directly instead of
// a simulation name.
func LoadSimulationPath(path string) (world.Snapshot, error) {
	var snap world.Snapshot
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return snap, fmt.Errorf("%w: %s", ErrSimulationNotFound, path)
		}
		return snap, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	err := readBase64JSON(path, &snap)
	return snap, err
}

// agentTemplateName builds the <SPECIES>-<gen>.agent filename (spec §6
// "saves/agents/<SPECIES>-<gen>.agent").
func agentTemplateName(species string, generation int) string {
	return fmt.Sprintf("%s-%d.agent", species, generation)
}

// SaveAgentTemplate writes one agent sketch as a reusable template.
func SaveAgentTemplate(sketch agent.AgentSketch) error {
	path := filepath.Join(agentsDir, agentTemplateName(sketch.Species, sketch.Generation))
	return writeBase64JSON(path, sketch)
}

// LoadAgentTemplate reads back a previously saved agent template.
func LoadAgentTemplate(species string, generation int) (agent.AgentSketch, error) {
	var sketch agent.AgentSketch
	path := filepath.Join(agentsDir, agentTemplateName(species, generation))
	err := readBase64JSON(path, &sketch)
	return sketch, err
}

// settingsPath builds the <name>.set filename (spec §6
// "saves/settings/<name>.set").
func settingsPath(name string) string {
	return filepath.Join(settingsDir, name+".set")
}

// SaveSettings exports a settings record under the given name.
func SaveSettings(name string, settings config.Settings) error {
	return writeBase64JSON(settingsPath(name), settings)
}

// LoadSettings imports a previously exported settings record.
func LoadSettings(name string) (config.Settings, error) {
	var settings config.Settings
	err := readBase64JSON(settingsPath(name), &settings)
	return settings, err
}
