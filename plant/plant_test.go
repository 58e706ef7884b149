package plant

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arti-Code/biosynth/common"
	"github.com/Arti-Code/biosynth/config"
)

func TestNewPlantStartsAliveWithEnergyMatchingRadius(t *testing.T) {
	settings := config.DefaultSettings()
	rng := rand.New(rand.NewSource(1))

	p := New(common.Vec2{X: 10, Y: 10}, &settings, rng)

	assert.True(t, p.Alive)
	assert.Equal(t, p.Radius*p.Radius*energyPerRadiusSquared, p.Energy)
	assert.False(t, p.CloneEligible)
}

func TestPlantGrowsAndBecomesCloneEligibleAtMaxRadius(t *testing.T) {
	settings := config.DefaultSettings()
	settings.PlantMaxRadius = 4
	settings.PlantGrowthRate = 1000
	settings.PlantGrowthPeriod = 1.0
	settings.PlantLifeBudget = 10_000
	rng := rand.New(rand.NewSource(2))

	p := New(common.Vec2{X: 0, Y: 0}, &settings, rng)

	for i := 0; i < 20; i++ {
		p.Tick(1.0, &settings, rng)
		if p.CloneEligible {
			break
		}
	}

	assert.True(t, p.CloneEligible)
	assert.Equal(t, settings.PlantMaxRadius, p.Radius)
}

func TestPlantEmitsChildOnceEligibleAndClonePeriodElapses(t *testing.T) {
	settings := config.DefaultSettings()
	settings.PlantMaxRadius = 3
	settings.PlantGrowthRate = 1000
	settings.PlantGrowthPeriod = 1.0
	settings.PlantClonePeriod = 2.0
	settings.PlantCloneEnergy = 5
	settings.PlantLifeBudget = 10_000
	rng := rand.New(rand.NewSource(3))

	p := New(common.Vec2{X: 0, Y: 0}, &settings, rng)

	var child *Plant
	for i := 0; i < 20 && child == nil; i++ {
		c, spawned := p.Tick(1.0, &settings, rng)
		if spawned {
			child = c
		}
	}

	require.NotNil(t, child)
	assert.True(t, child.Alive)
	assert.Equal(t, settings.PlantCloneEnergy, child.Energy)
	assert.False(t, p.CloneEligible, "eligibility resets after emitting a child")
}

func TestPlantDiesWhenLifeBudgetExpires(t *testing.T) {
	settings := config.DefaultSettings()
	settings.PlantLifeBudget = 5
	settings.PlantGrowthRate = 0
	rng := rand.New(rand.NewSource(4))

	p := New(common.Vec2{X: 0, Y: 0}, &settings, rng)
	for i := 0; i < 10 && p.Alive; i++ {
		p.Tick(1.0, &settings, rng)
	}

	assert.False(t, p.Alive)
	assert.Equal(t, 0.0, p.Energy)
}

func TestPlantDiesWhenEnergyDrained(t *testing.T) {
	settings := config.DefaultSettings()
	settings.PlantGrowthRate = 0
	settings.PlantLifeBudget = 10_000
	rng := rand.New(rand.NewSource(5))

	p := New(common.Vec2{X: 0, Y: 0}, &settings, rng)
	p.DrainEnergy(p.Energy + 100)
	p.Tick(1.0, &settings, rng)

	assert.False(t, p.Alive)
}

func TestDrainEnergyNeverNegative(t *testing.T) {
	settings := config.DefaultSettings()
	rng := rand.New(rand.NewSource(6))
	p := New(common.Vec2{X: 0, Y: 0}, &settings, rng)

	p.DrainEnergy(p.Energy * 10)
	assert.Equal(t, 0.0, p.Energy)
}
