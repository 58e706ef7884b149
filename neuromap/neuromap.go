// Package neuromap provides the symbolic indirection layer (spec
// component B) between an Agent's named sensors/effectors and a
// Network's numeric neuron keys.
package neuromap

import (
	"github.com/Arti-Code/biosynth/common"
	"github.com/Arti-Code/biosynth/network"
)

// NeuroMap binds sensor/effector names to network neuron keys and
// carries the per-tick pending-signal and last-action values between
// an Agent and a Network.
type NeuroMap struct {
	sensorKeys   map[string]common.NeuronKey
	effectorKeys map[string]common.NeuronKey

	pending map[string]float64
	actions map[string]float64
}

// New creates an empty NeuroMap.
func New() *NeuroMap {
	return &NeuroMap{
		sensorKeys:   make(map[string]common.NeuronKey),
		effectorKeys: make(map[string]common.NeuronKey),
		pending:      make(map[string]float64),
		actions:      make(map[string]float64),
	}
}

// BindSensors binds each name to the corresponding input neuron key.
// names and keys must be the same length and in the same order.
func (m *NeuroMap) BindSensors(names []string, keys []common.NeuronKey) {
	for i, name := range names {
		m.sensorKeys[name] = keys[i]
		m.pending[name] = 0
	}
}

// BindEffectors binds each name to the corresponding output neuron key.
func (m *NeuroMap) BindEffectors(names []string, keys []common.NeuronKey) {
	for i, name := range names {
		m.effectorKeys[name] = keys[i]
		m.actions[name] = 0
	}
}

// Set stages one named sensor signal for the next Commit. Setting an
// unbound name is a no-op — callers only ever use names they bound.
func (m *NeuroMap) Set(name string, value float64) {
	if _, ok := m.sensorKeys[name]; ok {
		m.pending[name] = value
	}
}

// Commit applies every staged sensor signal into net in one batch,
// then clears the staged values so a caller that forgets to set a
// signal next tick reads 0 rather than a stale value (spec §4.2
// invariant: "a sensor's value is lost after each commit").
func (m *NeuroMap) Commit(net *network.Network) {
	for name, key := range m.sensorKeys {
		net.SetInput(key, m.pending[name])
		m.pending[name] = 0
	}
}

// ReadActions snapshots every bound effector's current activation
// into the action map, for O(1) reads afterward.
func (m *NeuroMap) ReadActions(net *network.Network) {
	for name, key := range m.effectorKeys {
		m.actions[name] = net.Output(key)
	}
}

// Action reads a named effector's last-snapshotted value. Unbound
// names read as 0.
func (m *NeuroMap) Action(name string) float64 {
	return m.actions[name]
}
