package network

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildNoEdgeTargetsInput(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	net := Build(4, []int{6}, 3, 0.5, rng)

	for _, e := range net.edges {
		target := net.neurons[e.Target]
		require.NotNil(t, target)
		assert.NotEqual(t, RoleInput, target.Role)
		assert.Contains(t, net.neurons, e.Source)
	}
}

func TestBuildCachesKeysInCreationOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	net := Build(5, []int{3}, 2, 0.3, rng)

	require.Len(t, net.InputKeys(), 5)
	require.Len(t, net.OutputKeys(), 2)
	for _, k := range net.InputKeys() {
		assert.Equal(t, RoleInput, net.neurons[k].Role)
	}
	for _, k := range net.OutputKeys() {
		assert.Equal(t, RoleOutput, net.neurons[k].Role)
	}
	for i := 1; i < len(net.InputKeys()); i++ {
		assert.True(t, net.InputKeys()[i-1] < net.InputKeys()[i])
	}
	for i := 1; i < len(net.OutputKeys()); i++ {
		assert.True(t, net.OutputKeys()[i-1] < net.OutputKeys()[i])
	}
}

func TestPropagateNeverPanicsOnUnsetInputs(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	net := Build(3, []int{4}, 2, 0.4, rng)

	assert.NotPanics(t, func() {
		net.Propagate()
		for _, k := range net.OutputKeys() {
			_ = net.Output(k)
		}
	})
}

func TestSketchRoundTripPreservesTopology(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	net := Build(4, []int{5}, 3, 0.5, rng)

	sketch := net.Sketch()
	restored := FromSketch(sketch)
	restoredSketch := restored.Sketch()

	assert.Equal(t, sketch, restoredSketch)
}

func TestMutationUnderZeroRatesIsIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	net := Build(4, []int{5}, 3, 0.5, rng)
	before := net.Sketch()

	zero := MutationRates{}
	for i := 0; i < 1000; i++ {
		net.Mutate(zero, rng)
	}

	after := net.Sketch()
	assert.Equal(t, before, after)
}

func TestMutateAddEdgeNeverTargetsInput(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	net := Build(3, []int{2}, 2, 0.0, rng)

	for i := 0; i < 200; i++ {
		net.mutateAddEdge(rng)
	}
	for _, e := range net.edges {
		assert.NotEqual(t, RoleInput, net.neurons[e.Target].Role)
	}
}

func TestDeleteNeuronRemovesIncidentEdges(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	net := Build(3, []int{4}, 2, 1.0, rng)
	require.NotEmpty(t, net.hiddenKeys())

	net.mutateDeleteNeuron(rng)

	for _, e := range net.edges {
		_, sourceExists := net.neurons[e.Source]
		_, targetExists := net.neurons[e.Target]
		assert.True(t, sourceExists)
		assert.True(t, targetExists)
	}
}
