// Package agent implements spec component C: the body, traits,
// energy, perception, and sense-think-act tick of one artificial-life
// agent.
package agent

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/Arti-Code/biosynth/common"
	"github.com/Arti-Code/biosynth/config"
	"github.com/Arti-Code/biosynth/network"
	"github.com/Arti-Code/biosynth/neuromap"
	"github.com/Arti-Code/biosynth/physics"
)

// Contact is one other body within sensing range this tick, with its
// bearing relative to the agent's forward direction.
type Contact struct {
	Handle  physics.Handle
	Bearing float64
	IsAgent bool
}

// Agent is one autonomous body: physical state, evolvable traits, a
// neural controller, perception, action intents, and lifetime
// aggregates (spec §3).
type Agent struct {
	Key        uuid.UUID
	Species    string
	Generation int
	Ancestors  []uuid.UUID

	Body     physics.Handle
	Position common.Vec2
	Rotation float64
	Radius   float64
	Mass     float64

	Traits      Traits
	VisionRange float64
	VisionAngle float64
	MaxEnergy   float64
	Energy      float64

	HasEnemy     bool
	EnemyHandle  physics.Handle
	EnemyPos     common.Vec2
	EnemyDir     float64
	EnemyDistance float64
	EnemySize    float64
	EnemyMood    [3]float64
	EnemySpecies string

	HasResource      bool
	ResourceHandle   physics.Handle
	ResourcePos      common.Vec2
	ResourceDir      float64
	ResourceDistance float64

	Contacts []Contact
	WaterTile bool
	WallHit   bool
	Pain      bool

	Forward   float64
	Angular   float64
	Attacking bool
	Eating    bool
	Running   bool
	Mood      [3]float64

	Points   float64
	Kills    int
	Children int
	Lifetime float64

	Net *network.Network
	Map *neuromap.NeuroMap

	thinkTimer float64
	reproTimer float64

	Alive bool
}

// New creates a fresh agent from scratch: random traits, a freshly
// built network, and a spawn position (spec §4.6 step 3 "create one
// from scratch").
func New(species string, pos common.Vec2, settings *config.Settings, rng *rand.Rand) *Agent {
	traits := RandomTraits(rng)
	radius := 6.0 + float64(traits.Shell)*0.6
	net := network.Build(len(SensorLabels), settings.HiddenLayerSizes, len(EffectorLabels), settings.LinkDensity, rng)

	a := &Agent{
		Key:         uuid.New(),
		Species:     species,
		Generation:  0,
		Traits:      traits,
		Radius:      radius,
		Mass:        radius * radius,
		VisionRange: traits.VisionRange(settings.VisionRangeBase, settings.VisionRangeFactor),
		VisionAngle: traits.VisionAngle(settings.VisionAngleBase, settings.VisionAngleFactor),
		MaxEnergy:   MaxEnergy(radius, 40, 4),
		Position:    pos,
		Net:         net,
		Map:         bindNeuroMap(net),
		Alive:       true,
	}
	a.Energy = a.MaxEnergy
	return a
}

// RefreshContacts updates the agent's contact list and bearings from
// the physics collaborator (spec §4.3 step 1). isAgentHandle reports
// whether a contact handle belongs to another agent (as opposed to a
// plant); only the World can answer this, since it owns both
// collections and physics hands back opaque handles.
func (a *Agent) RefreshContacts(phys physics.Collaborator, isAgentHandle func(physics.Handle) bool) {
	handles := phys.ContactsWithin(a.Body, a.Radius*2)
	a.Contacts = a.Contacts[:0]
	for _, h := range handles {
		pos, ok := phys.ObjectPosition(h)
		if !ok {
			continue
		}
		bearing := common.SignedAngleDiff(pos.Sub(a.Position).Angle(), a.Rotation)
		a.Contacts = append(a.Contacts, Contact{Handle: h, Bearing: bearing, IsAgent: isAgentHandle(h)})
	}
}

// refreshPerception finds the closest enemy and resource within the
// vision cone (spec §4.3 step 2).
func (a *Agent) refreshPerception(phys physics.Collaborator) {
	forward := common.FromAngle(a.Rotation)

	a.HasEnemy = false
	if h, ok := phys.ClosestInCone(a.Body, a.VisionRange, a.VisionAngle/2, forward, common.GroupAgents); ok {
		if pos, ok := phys.ObjectPosition(h); ok {
			a.HasEnemy = true
			a.EnemyHandle = h
			a.EnemyPos = pos
			a.EnemyDistance = a.Position.Distance(pos)
			bearing := common.SignedAngleDiff(pos.Sub(a.Position).Angle(), a.Rotation)
			a.EnemyDir = common.Clamp(bearing/(a.VisionAngle/2), -1, 1)
			if size, ok := phys.ObjectSize(h); ok {
				a.EnemySize = size
			}
		}
	}

	a.HasResource = false
	if h, ok := phys.ClosestInCone(a.Body, a.VisionRange, a.VisionAngle/2, forward, common.GroupPlants); ok {
		if pos, ok := phys.ObjectPosition(h); ok {
			a.HasResource = true
			a.ResourceHandle = h
			a.ResourcePos = pos
			a.ResourceDistance = a.Position.Distance(pos)
			bearing := common.SignedAngleDiff(pos.Sub(a.Position).Angle(), a.Rotation)
			a.ResourceDir = common.Clamp(bearing/(a.VisionAngle/2), -1, 1)
		}
	}
}

// Tick runs one world tick of the agent's sense-think-act loop (spec
// §4.3). dt is the effective simulated delta for this tick.
// lookupSpecies resolves an enemy handle's species and mood for
// FAM/E-R/E-G/E-B — it is supplied by the World, which is the only
// component that can map a handle back to an Agent.
func (a *Agent) Tick(dt float64, settings *config.Settings, phys physics.Collaborator, lookupSpecies func(physics.Handle) (species string, mood [3]float64, ok bool)) {
	if !a.Alive {
		return
	}
	a.Lifetime += dt
	a.reproTimer += dt

	a.thinkTimer += dt
	if a.thinkTimer >= settings.ThinkPeriod {
		a.thinkTimer -= settings.ThinkPeriod
		a.think(settings, phys, lookupSpecies)
		a.Contacts = a.Contacts[:0]
		a.Pain = false
		a.WallHit = false
	}

	a.applyIntents(dt, settings, phys)
	a.updateEnergy(dt, settings)

	if pos, ok := phys.ObjectPosition(a.Body); ok {
		a.Position = pos
	}
	if a.Position.IsNaN() || a.Energy <= 0 {
		a.Alive = false
	}
}

func (a *Agent) think(settings *config.Settings, phys physics.Collaborator, lookupSpecies func(physics.Handle) (string, [3]float64, bool)) {
	a.refreshPerception(phys)
	if a.HasEnemy && lookupSpecies != nil {
		if species, mood, ok := lookupSpecies(a.EnemyHandle); ok {
			a.EnemySpecies = species
			a.EnemyMood = mood
		}
	}

	frame := a.buildSensorFrame()
	for _, name := range SensorLabels {
		a.Map.Set(name, frame.values[name])
	}
	a.Map.Commit(a.Net)
	a.Net.Propagate()
	a.Map.ReadActions(a.Net)

	a.Forward = a.Map.Action("MOV")
	if a.Forward < 0 {
		a.Forward = 0
	}
	left := a.Map.Action("LFT")
	right := a.Map.Action("RGT")
	a.Angular = (right - left) * settings.KRotate / float64(a.Traits.Shell)

	a.Attacking = a.Map.Action("ATK") >= settings.AttackThreshold
	a.Eating = a.Map.Action("EAT") >= settings.EatThreshold && !a.Attacking
	a.Running = a.Map.Action("RUN") >= settings.RunThreshold

	a.Mood[0] = a.Mood[0]*(1-settings.MoodBlend) + a.Map.Action("RED")*settings.MoodBlend
	a.Mood[1] = a.Mood[1]*(1-settings.MoodBlend) + a.Map.Action("GRE")*settings.MoodBlend
	a.Mood[2] = a.Mood[2]*(1-settings.MoodBlend) + a.Map.Action("BLU")*settings.MoodBlend
}

func (a *Agent) applyIntents(dt float64, settings *config.Settings, phys physics.Collaborator) {
	speed := a.Forward * float64(a.Traits.Speed) * settings.KSpeed
	if a.Running {
		speed *= settings.RunMultiplier
	}
	linear := common.FromAngle(a.Rotation).Scale(speed)
	phys.SetVelocityIntent(a.Body, linear, a.Angular)
}

// updateEnergy applies the §4.3.3 energy model. Per-second quantities
// are multiplied by dt here, never pre-scaled.
func (a *Agent) updateEnergy(dt float64, settings *config.Settings) {
	basic := (float64(a.Traits.Shell) + a.Radius*settings.KSize) * settings.KBase
	if a.Eating {
		basic += a.Radius * settings.KSize * settings.KBase
	}

	move := a.Forward * (float64(a.Traits.Speed) + a.Radius*settings.KSize) * settings.KMove
	if a.Running {
		move *= 2
	}

	attack := 0.0
	if a.Attacking {
		attack = settings.KAttack * float64(a.Traits.Power)
	}

	loss := (basic + move + attack) * dt
	a.Energy -= loss
	if a.Energy < 0 {
		a.Energy = 0
	}
	if a.Energy > a.MaxEnergy {
		a.Energy = a.MaxEnergy
	}
}

// AttackTargets returns the contacts this agent is attacking this
// tick: agents within the forward cone, per spec §4.3.4.
func (a *Agent) AttackTargets() []physics.Handle {
	return a.coneTargets(a.Attacking, true)
}

// EatTargets returns the plant contacts this agent is eating this
// tick.
func (a *Agent) EatTargets() []physics.Handle {
	return a.coneTargets(a.Eating, false)
}

func (a *Agent) coneTargets(active bool, agents bool) []physics.Handle {
	if !active {
		return nil
	}
	var out []physics.Handle
	for _, c := range a.Contacts {
		if c.IsAgent != agents {
			continue
		}
		if c.Bearing <= -quarterPi || c.Bearing >= quarterPi {
			continue
		}
		out = append(out, c.Handle)
	}
	return out
}

const quarterPi = 0.7853981633974483

// ShouldReproduce reports whether the agent has accumulated enough
// points or elapsed enough time to reproduce, gated by the World's
// population check (spec §4.3.5, §4.6 step 3).
func (a *Agent) ShouldReproduce(settings *config.Settings, populationBelowCap bool) bool {
	if !populationBelowCap {
		return false
	}
	return a.Points >= settings.ReproPoints || a.reproTimer >= settings.ReproTime
}

// MarkReproduced resets the reproduction timer after a child is spawned.
func (a *Agent) MarkReproduced() {
	a.reproTimer = 0
}
