// Package plant implements the passive, regenerating resource body
// agents eat from: growth, life-budget expiry, and clone emission
// (spec §3 Plant, §4.6 step 4).
package plant

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/Arti-Code/biosynth/common"
	"github.com/Arti-Code/biosynth/config"
	"github.com/Arti-Code/biosynth/physics"
)

const energyPerRadiusSquared = 10.0

// Plant is one passive, edible, regenerating body (spec §3). Radius
// tracks stored energy rather than being set independently: it grows
// or shrinks on a slow timer as energy crosses per-radius thresholds,
// following original source's plant.rs growth_timer mechanic.
type Plant struct {
	Key  uuid.UUID
	Body physics.Handle

	Position common.Vec2
	Radius   float64

	Energy    float64
	MaxEnergy float64

	LifeBudget    float64
	CloneEligible bool

	growthTimer float64
	cloneTimer  float64

	Alive bool
}

// New creates a seedling plant at pos, with a life budget jittered by
// up to ±25% around the configured baseline (original source:
// `plant_lifetime + plant_lifetime * random_unit() / 4.0`).
func New(pos common.Vec2, settings *config.Settings, rng *rand.Rand) *Plant {
	radius := 2.0
	energy := radius * radius * energyPerRadiusSquared
	jitter := common.RandomSigned(rng) / 4.0
	lifeBudget := settings.PlantLifeBudget + settings.PlantLifeBudget*jitter

	return &Plant{
		Key:        uuid.New(),
		Position:   pos,
		Radius:     radius,
		Energy:     energy,
		MaxEnergy:  energy,
		LifeBudget: lifeBudget,
		Alive:      true,
	}
}

// DrainEnergy removes energy taken by an eating agent (spec §4.4
// eating), clamping at zero. A plant whose energy reaches zero dies on
// its next Tick.
func (p *Plant) DrainEnergy(amount float64) {
	p.Energy -= amount
	if p.Energy < 0 {
		p.Energy = 0
	}
}

// Tick advances life budget and growth by dt, and, once the growth
// timer fires, adjusts radius to track stored energy. If the clone
// timer fires while the plant has grown to its maximum radius, it
// emits a fresh child plant nearby and returns it.
func (p *Plant) Tick(dt float64, settings *config.Settings, rng *rand.Rand) (child *Plant, spawned bool) {
	if !p.Alive {
		return nil, false
	}

	drained := p.Energy <= 0
	p.LifeBudget -= dt
	p.Energy += settings.PlantGrowthRate * dt

	p.growthTimer += dt
	if p.growthTimer >= settings.PlantGrowthPeriod {
		p.growthTimer -= settings.PlantGrowthPeriod
		p.resize(settings)
	}

	if drained || p.Energy <= 0 || p.LifeBudget <= 0 {
		p.Energy = 0
		p.Alive = false
		return nil, false
	}

	p.cloneTimer += dt
	if p.cloneTimer >= settings.PlantClonePeriod {
		p.cloneTimer -= settings.PlantClonePeriod
		if p.CloneEligible {
			p.CloneEligible = false
			return p.spawnChild(settings, rng), true
		}
	}
	return nil, false
}

func (p *Plant) resize(settings *config.Settings) {
	full := p.Radius * p.Radius * energyPerRadiusSquared
	switch {
	case p.Energy >= full && p.Radius < settings.PlantMaxRadius:
		p.Radius++
		if p.Radius >= settings.PlantMaxRadius {
			p.Radius = settings.PlantMaxRadius
			p.CloneEligible = true
		}
	case p.Radius >= 1:
		shrunk := (p.Radius - 1) * (p.Radius - 1) * energyPerRadiusSquared
		if p.Energy < shrunk {
			p.Radius--
		}
	}
	p.MaxEnergy = p.Radius * p.Radius * energyPerRadiusSquared
	if p.Energy > p.MaxEnergy {
		p.Energy = p.MaxEnergy
	}
}

func (p *Plant) spawnChild(settings *config.Settings, rng *rand.Rand) *Plant {
	offset := common.RandomUnit(rng).Scale(25)
	child := New(p.Position.Add(offset), settings, rng)
	child.Energy = settings.PlantCloneEnergy
	if child.Energy > child.MaxEnergy {
		child.Energy = child.MaxEnergy
	}
	return child
}
