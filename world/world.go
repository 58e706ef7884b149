// Package world implements spec component F: the owner of every agent
// and plant, the PRNG, the physics collaborator, and the ranking and
// stats subsystems, driving the fixed tick order of spec §4.6. No
// teacher analogue exists (`CrowNet` has no spatial world at all); the
// tick order and timer mechanics are grounded directly on spec §4.6
// and, for the signal/terrain plumbing, on original source's
// `signals.rs`/`world.rs` update loop.
package world

import (
	"math/rand"
	"sort"

	"github.com/Arti-Code/biosynth/agent"
	"github.com/Arti-Code/biosynth/common"
	"github.com/Arti-Code/biosynth/config"
	"github.com/Arti-Code/biosynth/interaction"
	"github.com/Arti-Code/biosynth/physics"
	"github.com/Arti-Code/biosynth/plant"
	"github.com/Arti-Code/biosynth/ranking"
	"github.com/Arti-Code/biosynth/stats"
)

// sortedAgentHandles returns agents' keys in ascending order. Every
// loop that draws from w.Rng per-entity must iterate in a fixed order
// rather than a map's randomized range order, or replay from the same
// seed would assign RNG draws to different agents between runs (spec
// §5 "replay ... reproduces identical trajectories", §9 "Centralise
// the PRNG on the World... Determinism").
func sortedAgentHandles(agents map[physics.Handle]*agent.Agent) []physics.Handle {
	handles := make([]physics.Handle, 0, len(agents))
	for h := range agents {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
	return handles
}

// sortedPlantHandles is sortedAgentHandles' counterpart for plants.
func sortedPlantHandles(plants map[physics.Handle]*plant.Plant) []physics.Handle {
	handles := make([]physics.Handle, 0, len(plants))
	for h := range plants {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
	return handles
}

var agentGroupMask = common.GroupMask{
	Membership: common.GroupAgents,
	Filter:     common.GroupAgents | common.GroupPlants,
}

var plantGroupMask = common.GroupMask{
	Membership: common.GroupPlants,
	Filter:     common.GroupAgents | common.GroupPlants,
}

// waterTileRadius is the catchment radius of one water tile centre
// used by the terrain indicator update; terrain physics fidelity is a
// named Non-goal (spec §1), so this is the simplest indicator that
// still exercises the agent's WaterTile sensor slot.
const waterTileRadius = 60.0

// statsHistoryLimit bounds how many stats-bucket samples each rolling
// series keeps (spec §4.6 step 9 "bucketed rolling series").
const statsHistoryLimit = 500

// Snapshot is the persistence payload spec §6 names for a simulation
// save: name, world size, elapsed/autosave times, every living agent's
// sketch, both ranking tiers, the active settings, and a serialised
// terrain — here the list of active water-tile centres, since terrain
// physics itself is out of scope.
type Snapshot struct {
	Name         string
	WorldWidth   float64
	WorldHeight  float64
	ElapsedTime  float64
	LastAutosave float64
	Agents       []agent.AgentSketch
	General      []agent.AgentSketch
	School       []agent.AgentSketch
	Settings     config.Settings
	WaterTiles   []common.Vec2
}

// World owns the agent and plant collections, the physics
// collaborator, the PRNG, and the ranking and stats subsystems (spec
// §5 "Resource ownership").
type World struct {
	Name     string
	Settings config.Settings
	Phys     physics.Collaborator
	Rng      *rand.Rand

	Agents map[physics.Handle]*agent.Agent
	Plants map[physics.Handle]*plant.Plant

	Ranking *ranking.Ranking
	Stats   *stats.Stats
	Signals *Mailbox

	WaterTiles []common.Vec2

	ElapsedTime  float64
	LastAutosave float64

	populationTimer float64
	terrainTimer    float64
	statsTimer      float64

	// SaveFn/LoadFn let the storage/runner layer supply real file I/O
	// while tests inject stubs, mirroring the teacher's injected
	// loadWeightsFn/saveWeightsFn in cli/orchestrator.go.
	SaveFn func(Snapshot) error
	LoadFn func(name string) (Snapshot, error)
}

// New creates an empty world ready to be seeded via signals or Reset.
func New(name string, settings config.Settings, phys physics.Collaborator, rng *rand.Rand) *World {
	return &World{
		Name:     name,
		Settings: settings,
		Phys:     phys,
		Rng:      rng,
		Agents:   make(map[physics.Handle]*agent.Agent),
		Plants:   make(map[physics.Handle]*plant.Plant),
		Ranking:  ranking.New(settings.RankingGeneralCap, settings.RankingSchoolCap, settings.RankingSchoolMaxGen),
		Stats:    stats.New(statsHistoryLimit),
		Signals:  NewMailbox(),
	}
}

// Reset clears every agent and plant and reseeds the population with
// agentCount fresh agents and plantCount fresh plants, at random
// positions across the current world size.
func (w *World) Reset(agentCount, plantCount int) {
	for h := range w.Agents {
		w.Phys.Remove(h)
	}
	for h := range w.Plants {
		w.Phys.Remove(h)
	}
	w.Agents = make(map[physics.Handle]*agent.Agent)
	w.Plants = make(map[physics.Handle]*plant.Plant)
	w.ElapsedTime = 0
	w.LastAutosave = 0

	for i := 0; i < agentCount; i++ {
		w.spawnFreshAgent()
	}
	for i := 0; i < plantCount; i++ {
		pos := common.RandomInBox(w.Rng, w.Settings.WorldWidth, w.Settings.WorldHeight)
		w.registerPlant(plant.New(pos, &w.Settings, w.Rng))
	}
}

// Tick advances the simulation by realDt seconds of wall-clock time,
// scaled to effective simulated time by the current sim speed (spec
// §4.6 "Δt_effective = real_Δt × sim_speed"). The ten numbered steps
// below follow spec §4.6 exactly.
func (w *World) Tick(realDt, simSpeed float64) {
	dt := realDt * simSpeed

	w.drainSignals() // 1. signals
	if dt <= 0 {
		return // sim_speed = 0 pauses without branching through every subsystem below
	}

	w.updateTerrain(dt) // 2. terrain indicators
	w.maintainPopulation(dt) // 3. population maintenance
	w.updatePlants(dt) // 4. plants

	for _, a := range w.Agents {
		a.RefreshContacts(w.Phys, w.isAgentHandle)
	}
	interaction.ResolveAttacks(w.Agents, &w.Settings, dt, w.Rng) // 5. attacks
	interaction.ResolveEating(w.Agents, w.Plants, &w.Settings, dt) // 5. eating

	w.updateAgents(dt) // 6. agents, deaths, reproduction
	w.Ranking.Update()  // 7. ranking re-sort/dedupe
	w.Phys.Step(dt)     // 8. physics

	w.ElapsedTime += dt
	w.accumulateStats(dt) // 9. stats
	w.autosave(dt)        // 10. autosave
}

func (w *World) isAgentHandle(h physics.Handle) bool {
	_, ok := w.Agents[h]
	return ok
}

func (w *World) lookupSpecies(h physics.Handle) (string, [3]float64, bool) {
	a, ok := w.Agents[h]
	if !ok {
		return "", [3]float64{}, false
	}
	return a.Species, a.Mood, true
}

func (w *World) updateTerrain(dt float64) {
	w.terrainTimer += dt
	if w.terrainTimer < w.Settings.CoordinateRefreshPeriod {
		return
	}
	w.terrainTimer -= w.Settings.CoordinateRefreshPeriod
	for _, a := range w.Agents {
		a.WaterTile = w.isOverWater(a.Position)
	}
}

func (w *World) isOverWater(pos common.Vec2) bool {
	for _, tile := range w.WaterTiles {
		if pos.Distance(tile) <= waterTileRadius {
			return true
		}
	}
	return false
}

// maintainPopulation implements spec §4.6 step 3 literally: below
// min_pop, top up immediately every tick with one fresh agent and (if
// the ranking has a template) one from a sketch; at or above min_pop,
// roll independent per-tick probabilities on a slower timer instead.
func (w *World) maintainPopulation(dt float64) {
	if len(w.Agents) < w.Settings.MinPopulation {
		w.spawnFreshAgent()
		if !w.Ranking.IsEmpty() {
			w.spawnFromRanking()
		}
		return
	}

	w.populationTimer += dt
	if w.populationTimer < w.Settings.PopulationCheckPeriod {
		return
	}
	w.populationTimer -= w.Settings.PopulationCheckPeriod

	if w.Rng.Float64() < w.Settings.FreshFromZeroProb {
		w.spawnFreshAgent()
	}
	if w.Rng.Float64() < w.Settings.FreshFromSketchProb {
		w.spawnFromRanking()
	}
}

func (w *World) spawnFreshAgent() {
	pos := common.RandomInBox(w.Rng, w.Settings.WorldWidth, w.Settings.WorldHeight)
	a := agent.New(agent.RandomSpecies(w.Rng), pos, &w.Settings, w.Rng)
	w.registerAgent(a)
}

// spawnFromRanking draws a template from the ranking and spawns it at
// a random position. Per spec §4.5 Failure, an empty chosen tier falls
// back to a fresh-from-scratch agent rather than retrying the other
// tier.
func (w *World) spawnFromRanking() {
	sketch, err := w.Ranking.Sample(w.Rng)
	if err != nil {
		w.spawnFreshAgent()
		return
	}
	pos := common.RandomInBox(w.Rng, w.Settings.WorldWidth, w.Settings.WorldHeight)
	a := agent.FromSketch(sketch, pos, &w.Settings)
	w.registerAgent(a)
}

func (w *World) registerAgent(a *agent.Agent) {
	a.Body = w.Phys.AddDynamic(a.Position, a.Rotation, a.Radius, physics.DefaultMaterial, agentGroupMask)
	w.Agents[a.Body] = a
	w.Stats.RecordBirth()
}

func (w *World) registerPlant(p *plant.Plant) {
	p.Body = w.Phys.AddDynamic(p.Position, 0, p.Radius, physics.DefaultMaterial, plantGroupMask)
	w.Plants[p.Body] = p
}

func (w *World) updatePlants(dt float64) {
	var children []*plant.Plant
	for _, h := range sortedPlantHandles(w.Plants) {
		p := w.Plants[h]
		child, spawned := p.Tick(dt, &w.Settings, w.Rng)
		if spawned {
			children = append(children, child)
		}
		if !p.Alive {
			w.Phys.Remove(h)
			delete(w.Plants, h)
		}
	}
	for _, child := range children {
		w.registerPlant(child)
	}
}

// updateAgents runs every living agent's tick, removes the newly dead
// (handing their sketches to the ranking), and spawns mutated children
// for agents whose reproduction condition fires (spec §4.3.5, §4.6
// step 6).
func (w *World) updateAgents(dt float64) {
	populationBelowCap := len(w.Agents) < w.Settings.SoftPopulationCap

	type pendingChild struct {
		sketch    agent.AgentSketch
		parentPos common.Vec2
	}
	var children []pendingChild
	for _, h := range sortedAgentHandles(w.Agents) {
		a := w.Agents[h]
		a.Tick(dt, &w.Settings, w.Phys, w.lookupSpecies)

		if !a.Alive {
			w.Ranking.Add(a.Sketch())
			w.Stats.RecordDeath(w.ElapsedTime, a.Lifetime, a.Points)
			w.Phys.Remove(h)
			delete(w.Agents, h)
			continue
		}

		if a.ShouldReproduce(&w.Settings, populationBelowCap) {
			children = append(children, pendingChild{sketch: a.Replicate(&w.Settings, w.Rng), parentPos: a.Position})
			a.MarkReproduced()
			a.Points = 0
			a.Children++
		}
	}

	// Child appears within a small offset from the parent (spec §4.3.5).
	for _, c := range children {
		pos := c.parentPos.Add(common.RandomUnit(w.Rng).Scale(20))
		child := agent.FromSketch(c.sketch, pos, &w.Settings)
		w.registerAgent(child)
	}
}

func (w *World) accumulateStats(dt float64) {
	for _, a := range w.Agents {
		w.Stats.RecordSize(w.ElapsedTime, a.Radius)
	}

	w.statsTimer += dt
	if w.statsTimer < w.Settings.StatsBucketPeriod {
		return
	}
	w.statsTimer -= w.Settings.StatsBucketPeriod

	nodeCount, linkCount := 0, 0
	for _, a := range w.Agents {
		w.Stats.RecordSize(w.ElapsedTime, a.Radius)
		nodeCount += a.Net.NodeCount()
		linkCount += a.Net.EdgeCount()
	}
	w.Stats.Flush(w.ElapsedTime, nodeCount, linkCount, len(w.Agents), len(w.Plants))
}

func (w *World) autosave(dt float64) {
	w.LastAutosave += dt
	if w.LastAutosave < w.Settings.AutosavePeriod {
		return
	}
	w.LastAutosave = 0
	if w.SaveFn != nil {
		w.SaveFn(w.Snapshot())
	}
}

// Snapshot captures the full persistence payload of spec §6.
func (w *World) Snapshot() Snapshot {
	agents := make([]agent.AgentSketch, 0, len(w.Agents))
	for _, a := range w.Agents {
		agents = append(agents, a.Sketch())
	}
	return Snapshot{
		Name:         w.Name,
		WorldWidth:   w.Settings.WorldWidth,
		WorldHeight:  w.Settings.WorldHeight,
		ElapsedTime:  w.ElapsedTime,
		LastAutosave: w.LastAutosave,
		Agents:       agents,
		General:      append([]agent.AgentSketch(nil), w.Ranking.General...),
		School:       append([]agent.AgentSketch(nil), w.Ranking.School...),
		Settings:     w.Settings,
		WaterTiles:   append([]common.Vec2(nil), w.WaterTiles...),
	}
}

// LoadSnapshot replaces the world's state with a saved snapshot:
// settings, elapsed/autosave times, ranking tiers, and every agent
// re-spawned from its sketch at a random position (spec §6 "a random
// location" default for fields a sketch does not preserve, applied
// here to position since physics handles are never persisted).
func (w *World) LoadSnapshot(snap Snapshot) {
	for h := range w.Agents {
		w.Phys.Remove(h)
	}
	for h := range w.Plants {
		w.Phys.Remove(h)
	}
	w.Agents = make(map[physics.Handle]*agent.Agent)
	w.Plants = make(map[physics.Handle]*plant.Plant)

	w.Name = snap.Name
	w.Settings = snap.Settings
	w.ElapsedTime = snap.ElapsedTime
	w.LastAutosave = snap.LastAutosave
	w.WaterTiles = append([]common.Vec2(nil), snap.WaterTiles...)

	w.Ranking = ranking.New(w.Settings.RankingGeneralCap, w.Settings.RankingSchoolCap, w.Settings.RankingSchoolMaxGen)
	for _, s := range snap.General {
		w.Ranking.General = append(w.Ranking.General, s)
	}
	for _, s := range snap.School {
		w.Ranking.School = append(w.Ranking.School, s)
	}

	for _, s := range snap.Agents {
		pos := common.RandomInBox(w.Rng, w.Settings.WorldWidth, w.Settings.WorldHeight)
		a := agent.FromSketch(s, pos, &w.Settings)
		w.registerAgent(a)
	}
}

// drainSignals applies every queued external signal (spec §4.6 step
// 1). Save/Load delegate to the injected SaveFn/LoadFn; their absence
// (e.g. in a test world with no storage wired up) is a silent no-op
// rather than a panic, matching §7's "missing collaborator never
// fails the tick" posture used throughout the agent/physics boundary.
func (w *World) drainSignals() {
	for _, sig := range w.Signals.Drain() {
		switch sig.Kind {
		case SpawnAgent:
			w.spawnFreshAgent()
		case Reset:
			w.Reset(w.Settings.MinPopulation, w.Settings.MinPopulation)
		case Resize:
			if sig.Size.X > 0 && sig.Size.Y > 0 {
				w.Settings.WorldWidth = sig.Size.X
				w.Settings.WorldHeight = sig.Size.Y
			}
		case SaveSimulation:
			if w.SaveFn != nil {
				w.SaveFn(w.Snapshot())
			}
		case LoadSimulation:
			if w.LoadFn != nil {
				if snap, err := w.LoadFn(sig.Name); err == nil {
					w.LoadSnapshot(snap)
				}
			}
		case ExportSettings, ImportSettings:
			// The World drains these signals without acting on them:
			// no settings record is written or read here.
		}
	}
}
