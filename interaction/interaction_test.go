package interaction

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arti-Code/biosynth/agent"
	"github.com/Arti-Code/biosynth/config"
	"github.com/Arti-Code/biosynth/physics"
	"github.com/Arti-Code/biosynth/plant"
)

func frozenPair(power, shell int, radius float64) (attacker, defender *agent.Agent, aHandle, bHandle physics.Handle) {
	aHandle, bHandle = physics.Handle(1), physics.Handle(2)
	attacker = &agent.Agent{
		Body:      aHandle,
		Radius:    radius,
		Traits:    agent.Traits{Power: power, Shell: shell},
		Energy:    100,
		MaxEnergy: 100,
		Attacking: true,
		Alive:     true,
		Contacts:  []agent.Contact{{Handle: bHandle, Bearing: 0, IsAgent: true}},
	}
	defender = &agent.Agent{
		Body:      bHandle,
		Radius:    radius,
		Traits:    agent.Traits{Power: power, Shell: shell},
		Energy:    100,
		MaxEnergy: 100,
		Alive:     true,
	}
	return
}

func TestResolveAttacksAppliesDamageWithinBounds(t *testing.T) {
	settings := config.DefaultSettings()
	settings.KDamage = 6
	settings.KDmgToHp = 1
	settings.KAtkToEng = 0.5

	attacker, defender, aHandle, bHandle := frozenPair(5, 5, 0)
	agents := map[physics.Handle]*agent.Agent{aHandle: attacker, bHandle: defender}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		attacker.Attacking = true
		ResolveAttacks(agents, &settings, 1.0, rng)
	}

	assert.Less(t, defender.Energy, 100.0)
	assert.GreaterOrEqual(t, defender.Energy, 0.0)
}

func TestResolveAttacksCreditsKillOnLethalDamage(t *testing.T) {
	settings := config.DefaultSettings()
	settings.KDamage = 1_000_000
	settings.KDmgToHp = 1
	settings.KAtkToEng = 1

	// Attacker vastly outweighs a zero-power, zero-shell defender, so
	// P_A > P_B and the resulting damage roll overwhelms the
	// defender's 1 energy for all but a vanishingly unlikely draw.
	attacker, defender, aHandle, bHandle := frozenPair(10, 0, 0)
	defender.Traits = agent.Traits{Power: 0, Shell: 0}
	defender.Energy = 1
	agents := map[physics.Handle]*agent.Agent{aHandle: attacker, bHandle: defender}

	rng := rand.New(rand.NewSource(7))
	ResolveAttacks(agents, &settings, 1.0, rng)

	assert.Equal(t, 0.0, defender.Energy)
	assert.Equal(t, settings.KillPoints, attacker.Points)
	assert.Equal(t, 1, attacker.Kills)
}

func TestResolveAttacksSkipsDeadOrNonAttacking(t *testing.T) {
	settings := config.DefaultSettings()
	attacker, defender, aHandle, bHandle := frozenPair(5, 5, 0)
	attacker.Attacking = false
	agents := map[physics.Handle]*agent.Agent{aHandle: attacker, bHandle: defender}

	rng := rand.New(rand.NewSource(1))
	ResolveAttacks(agents, &settings, 1.0, rng)

	assert.Equal(t, 100.0, defender.Energy)
}

// TestInteractionCommutesAcrossIterationOrder builds the same
// five-attacker scenario twice as separate maps, whose Go range order
// differs, and resolves both with identically seeded RNGs. Since
// ResolveAttacks visits attackers in ascending handle order and applies
// deltas only after every pair is visited, the final energies match.
func TestInteractionCommutesAcrossIterationOrder(t *testing.T) {
	settings := config.DefaultSettings()
	settings.KDamage = 4
	settings.KDmgToHp = 1
	settings.KAtkToEng = 0.5

	victimHandle := physics.Handle(100)
	makeScenario := func() (map[physics.Handle]*agent.Agent, physics.Handle) {
		victim := &agent.Agent{
			Body: victimHandle, Radius: 0, Traits: agent.Traits{Power: 3, Shell: 1},
			Energy: 100, MaxEnergy: 100, Alive: true,
		}
		agents := map[physics.Handle]*agent.Agent{victimHandle: victim}
		for i := 0; i < 5; i++ {
			h := physics.Handle(i + 1)
			agents[h] = &agent.Agent{
				Body: h, Radius: 0, Traits: agent.Traits{Power: 8, Shell: 1},
				Energy: 100, MaxEnergy: 100, Attacking: true, Alive: true,
				Contacts: []agent.Contact{{Handle: victimHandle, Bearing: 0, IsAgent: true}},
			}
		}
		return agents, victimHandle
	}

	agentsA, vA := makeScenario()
	rngA := rand.New(rand.NewSource(99))
	ResolveAttacks(agentsA, &settings, 1.0, rngA)

	agentsB, vB := makeScenario()
	rngB := rand.New(rand.NewSource(99))
	ResolveAttacks(agentsB, &settings, 1.0, rngB)

	require.InDelta(t, agentsA[vA].Energy, agentsB[vB].Energy, 1e-9)
}

func TestResolveEatingTransfersEnergyBothWays(t *testing.T) {
	settings := config.DefaultSettings()
	settings.KEatToEng = 5

	agentHandle := physics.Handle(1)
	plantHandle := physics.Handle(2)

	a := &agent.Agent{
		Body: agentHandle, Energy: 0, MaxEnergy: 1000, Eating: true, Alive: true,
		Contacts: []agent.Contact{{Handle: plantHandle, Bearing: 0, IsAgent: false}},
	}
	p := &plant.Plant{Body: plantHandle, Radius: 4, Energy: 1000, MaxEnergy: 1000, Alive: true}

	agents := map[physics.Handle]*agent.Agent{agentHandle: a}
	plants := map[physics.Handle]*plant.Plant{plantHandle: p}

	totalGain := 0.0
	for i := 0; i < 10; i++ {
		before := a.Energy
		ResolveEating(agents, plants, &settings, 0.1)
		totalGain += a.Energy - before
	}

	assert.InDelta(t, 65.0, totalGain, 1e-6)
	assert.InDelta(t, 1000-65.0, p.Energy, 1e-6)
}

func TestResolveEatingIgnoresAttackingAgents(t *testing.T) {
	settings := config.DefaultSettings()
	agentHandle := physics.Handle(1)
	plantHandle := physics.Handle(2)

	a := &agent.Agent{
		Body: agentHandle, Energy: 0, MaxEnergy: 1000, Eating: true, Attacking: true, Alive: true,
		Contacts: []agent.Contact{{Handle: plantHandle, Bearing: 0, IsAgent: false}},
	}
	p := &plant.Plant{Body: plantHandle, Radius: 4, Energy: 1000, MaxEnergy: 1000, Alive: true}

	agents := map[physics.Handle]*agent.Agent{agentHandle: a}
	plants := map[physics.Handle]*plant.Plant{plantHandle: p}

	ResolveEating(agents, plants, &settings, 0.1)

	assert.Equal(t, 0.0, a.Energy)
	assert.Equal(t, 1000.0, p.Energy)
}
