// Package interaction resolves one tick's worth of attacks and eating
// across every agent and its contacts (spec §4.4). It runs after
// plants update and before agents update (spec §4.6 steps 4-5).
package interaction

import (
	"math/rand"
	"sort"

	"github.com/Arti-Code/biosynth/agent"
	"github.com/Arti-Code/biosynth/common"
	"github.com/Arti-Code/biosynth/config"
	"github.com/Arti-Code/biosynth/physics"
	"github.com/Arti-Code/biosynth/plant"
)

// eatPointsFactor converts energy gained from eating into agent
// points ("small points proportional to food", spec §4.4); the spec
// names no exact constant, so a small fixed fraction is used here.
const eatPointsFactor = 0.1

// ResolveAttacks aggregates attack damage across every attacking agent
// and its targets, applies the resulting energy deltas once (not
// per-contact, so final energy is independent of iteration order —
// spec §8 property 5), and credits a kill to the recorded last
// attacker of any agent whose energy reaches zero this call.
func ResolveAttacks(agents map[physics.Handle]*agent.Agent, settings *config.Settings, dt float64, rng *rand.Rand) {
	energyCredit := make(map[physics.Handle]float64)
	damageIn := make(map[physics.Handle]float64)
	lastAttacker := make(map[physics.Handle]physics.Handle)

	// Every attack roll below draws from rng, so attackers must be
	// visited in a fixed order rather than the map's randomized range
	// order: two runs from the same seed must assign the same draws to
	// the same attackers (spec §5 determinism, §9 "Centralise the PRNG
	// on the World").
	handles := make([]physics.Handle, 0, len(agents))
	for h := range agents {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })

	for _, handle := range handles {
		a := agents[handle]
		if !a.Attacking || !a.Alive {
			continue
		}
		for _, targetHandle := range a.AttackTargets() {
			b, ok := agents[targetHandle]
			if !ok || !b.Alive {
				continue
			}

			pa := (0.25*a.Radius + float64(a.Traits.Power)) * (1 + common.RandomSigned(rng))
			pb := (0.25*b.Radius + float64(b.Traits.Power)) * (1 + common.RandomSigned(rng))
			if pa <= pb {
				continue
			}

			dmg := float64(a.Traits.Power)*(1+common.RandomSigned(rng)) - float64(b.Traits.Shell)
			if dmg < 0 {
				dmg = 0
			}
			dmg *= dt * settings.KDamage

			energyCredit[handle] += dmg * settings.KAtkToEng
			damageIn[targetHandle] += dmg * settings.KDmgToHp
			lastAttacker[targetHandle] = handle
		}
	}

	for handle, delta := range energyCredit {
		a, ok := agents[handle]
		if !ok {
			continue
		}
		a.Energy += delta
		if a.Energy > a.MaxEnergy {
			a.Energy = a.MaxEnergy
		}
	}

	for handle, dmg := range damageIn {
		a, ok := agents[handle]
		if !ok {
			continue
		}
		a.Energy -= dmg
		if a.Energy < 0 {
			a.Energy = 0
		}
		a.Pain = true
	}

	for victimHandle, attackerHandle := range lastAttacker {
		attacker, aok := agents[attackerHandle]
		victim, vok := agents[victimHandle]
		if aok && vok && victim.Energy <= 0 {
			attacker.Points += settings.KillPoints
			attacker.Kills++
		}
	}
}

// ResolveEating applies energy transfer from every plant within an
// eating agent's forward cone to that agent, and the reciprocal loss
// to the plant (spec §4.4 Eating).
func ResolveEating(agents map[physics.Handle]*agent.Agent, plants map[physics.Handle]*plant.Plant, settings *config.Settings, dt float64) {
	for _, a := range agents {
		if !a.Eating || a.Attacking || !a.Alive {
			continue
		}
		for _, targetHandle := range a.EatTargets() {
			p, ok := plants[targetHandle]
			if !ok || !p.Alive {
				continue
			}
			food := settings.KEatToEng * (p.Radius/4 + 12) * dt

			a.Energy += food
			if a.Energy > a.MaxEnergy {
				a.Energy = a.MaxEnergy
			}
			a.Points += food * eatPointsFactor

			p.DrainEnergy(food)
		}
	}
}
