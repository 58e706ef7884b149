package network

import (
	"math"

	"github.com/Arti-Code/biosynth/common"
)

// Role is the functional position of a neuron within its network.
type Role uint8

const (
	RoleInput Role = iota
	RoleHidden
	RoleOutput
)

// memoryRing holds a single low-pass blend of recent activations, used to
// give a neuron one-tick recurrent feedback beyond what insertion-order
// propagation already provides implicitly. Only hidden neurons carry one.
type memoryRing struct {
	value float64
}

func (m *memoryRing) blend(activation, blendFactor float64) {
	m.value = m.value*(1-blendFactor) + activation*blendFactor
}

// Neuron is a single node in a Network. Its key is assigned once at
// creation and never reused for the network's lifetime.
type Neuron struct {
	Key        common.NeuronKey
	Role       Role
	Bias       float64
	Activation float64

	accumulator float64
	memory      *memoryRing
}

// newNeuron creates a neuron with the given role and bias, clamped to
// [-1, 1] per the data model invariant.
func newNeuron(key common.NeuronKey, role Role, bias float64, hasMemory bool) *Neuron {
	n := &Neuron{
		Key:  key,
		Role: role,
		Bias: common.Clamp(bias, -1, 1),
	}
	if hasMemory {
		n.memory = &memoryRing{}
	}
	return n
}

func (n *Neuron) reset() {
	if n.Role == RoleInput {
		return
	}
	n.accumulator = 0
	if n.memory != nil {
		n.accumulator += n.memory.value
	}
}

func (n *Neuron) finalize(memoryBlend float64) {
	if n.Role == RoleInput {
		return
	}
	n.Activation = math.Tanh(n.accumulator + n.Bias)
	if n.memory != nil {
		n.memory.blend(n.Activation, memoryBlend)
	}
}
