// Package network implements the evolvable recurrent neural controller
// (spec component A): building a graph of neurons and edges from
// labelled sizes, propagating activations once per agent think-tick,
// and mutating topology and weights between generations.
package network

import (
	"math/rand"

	"github.com/Arti-Code/biosynth/common"
)

// MemoryBlend controls how strongly a hidden neuron's memory cell
// follows its latest activation. Lower values remember longer.
const MemoryBlend = 0.3

// MutationRates bundles the probabilities §4.1 draws from
// configuration. Callers (agent, world) translate config.Settings
// into this shape rather than network importing config directly,
// keeping the graph engine free of any ambient-stack dependency.
type MutationRates struct {
	AddEdge       float64
	DeleteEdge    float64
	AddNeuron     float64
	DeleteNeuron  float64
	ChangeWeight  float64
	PerturbAmount float64
}

// Network is a directed graph of neurons evaluated once per agent
// tick. Edges are held in a slice, not a map, so propagation order is
// always the order edges were inserted — the single-pass contract
// §4.1/§9 depends on this being stable.
type Network struct {
	neurons map[common.NeuronKey]*Neuron
	edges   []*Edge

	inputKeys  []common.NeuronKey
	outputKeys []common.NeuronKey

	nextNeuronKey common.NeuronKey
	nextEdgeKey   common.EdgeKey
}

// Build constructs a network with numInputs input neurons, one hidden
// layer per entry of hiddenSizes (each entry is that layer's width), and
// numOutputs output neurons, then inserts an edge between every
// ordered pair of distinct neurons (excluding edges into inputs) with
// probability linkDensity and a uniformly random weight.
//
// Input and output neuron keys are returned in creation order so the
// caller can bind them to sensor/effector names in the same order
// (spec §4.2 NeuroMap binds by name, not by position, but the caller
// needs a stable order to zip names against).
func Build(numInputs int, hiddenSizes []int, numOutputs int, linkDensity float64, rng *rand.Rand) *Network {
	net := &Network{neurons: make(map[common.NeuronKey]*Neuron)}

	for i := 0; i < numInputs; i++ {
		key := net.allocNeuron()
		net.neurons[key] = newNeuron(key, RoleInput, 0, false)
		net.inputKeys = append(net.inputKeys, key)
	}

	var hidden []common.NeuronKey
	for _, width := range hiddenSizes {
		for i := 0; i < width; i++ {
			key := net.allocNeuron()
			net.neurons[key] = newNeuron(key, RoleHidden, common.RandomSigned(rng), true)
			hidden = append(hidden, key)
		}
	}

	for i := 0; i < numOutputs; i++ {
		key := net.allocNeuron()
		net.neurons[key] = newNeuron(key, RoleOutput, common.RandomSigned(rng), false)
		net.outputKeys = append(net.outputKeys, key)
	}

	all := make([]common.NeuronKey, 0, numInputs+len(hidden)+numOutputs)
	all = append(all, net.inputKeys...)
	all = append(all, hidden...)
	all = append(all, net.outputKeys...)

	for _, u := range all {
		for _, v := range all {
			if u == v {
				continue
			}
			if net.neurons[v].Role == RoleInput {
				continue
			}
			if rng.Float64() >= linkDensity {
				continue
			}
			net.addEdge(u, v, common.RandomSigned(rng))
		}
	}

	return net
}

func (net *Network) allocNeuron() common.NeuronKey {
	net.nextNeuronKey++
	return net.nextNeuronKey
}

func (net *Network) allocEdge() common.EdgeKey {
	net.nextEdgeKey++
	return net.nextEdgeKey
}

// hasEdge reports whether an edge already connects source to target.
func (net *Network) hasEdge(source, target common.NeuronKey) bool {
	for _, e := range net.edges {
		if e.Source == source && e.Target == target {
			return true
		}
	}
	return false
}

func (net *Network) addEdge(source, target common.NeuronKey, weight float64) *Edge {
	e := newEdge(net.allocEdge(), source, target, weight)
	net.edges = append(net.edges, e)
	return e
}

// InputKeys returns the network's input neuron keys in creation order.
func (net *Network) InputKeys() []common.NeuronKey { return net.inputKeys }

// OutputKeys returns the network's output neuron keys in creation order.
func (net *Network) OutputKeys() []common.NeuronKey { return net.outputKeys }

// NodeCount returns the current number of neurons, for stats
// accumulation (spec §4.6 step 9 "node/link counts").
func (net *Network) NodeCount() int { return len(net.neurons) }

// EdgeCount returns the current number of edges.
func (net *Network) EdgeCount() int { return len(net.edges) }

// SetInput latches an input neuron's activation directly. Unknown keys
// are a no-op, matching §7's "missing signal never fails" policy.
func (net *Network) SetInput(key common.NeuronKey, value float64) {
	if n, ok := net.neurons[key]; ok && n.Role == RoleInput {
		n.Activation = value
	}
}

// Output reads an output neuron's current activation. Unknown keys
// read as 0.
func (net *Network) Output(key common.NeuronKey) float64 {
	if n, ok := net.neurons[key]; ok {
		return n.Activation
	}
	return 0
}

// Propagate runs one evaluation pass (spec §4.1 propagation contract):
// accumulators reset (carrying forward any memory-cell feedback),
// edges processed once in insertion order, then every non-input
// neuron finalises as tanh(accumulator + bias) and folds its result
// into its memory cell if it has one.
func (net *Network) Propagate() {
	for _, n := range net.neurons {
		n.reset()
	}
	for _, e := range net.edges {
		src := net.neurons[e.Source]
		dst := net.neurons[e.Target]
		signal := src.Activation * e.Weight
		e.LastSignal = signal
		dst.accumulator += signal
	}
	for _, n := range net.neurons {
		n.finalize(MemoryBlend)
	}
}

// Mutate applies the §4.1 mutation operators. Every operator is a
// no-op when it cannot find a valid target; mutation never fails.
func (net *Network) Mutate(rates MutationRates, rng *rand.Rand) {
	if rng.Float64() < rates.AddEdge {
		net.mutateAddEdge(rng)
	}
	if rng.Float64() < rates.DeleteEdge {
		net.mutateDeleteEdge(rng)
	}
	if rng.Float64() < rates.AddNeuron {
		net.mutateAddNeuron(rng)
	}
	if rng.Float64() < rates.DeleteNeuron {
		net.mutateDeleteNeuron(rng)
	}
	net.mutatePerturb(rates.ChangeWeight, rates.PerturbAmount, rng)
}

func (net *Network) hiddenKeys() []common.NeuronKey {
	var out []common.NeuronKey
	for k, n := range net.neurons {
		if n.Role == RoleHidden {
			out = append(out, k)
		}
	}
	return out
}

func (net *Network) allKeys() []common.NeuronKey {
	out := make([]common.NeuronKey, 0, len(net.neurons))
	for k := range net.neurons {
		out = append(out, k)
	}
	return out
}

func (net *Network) mutateAddEdge(rng *rand.Rand) {
	keys := net.allKeys()
	if len(keys) < 2 {
		return
	}
	for attempt := 0; attempt < 10; attempt++ {
		u := keys[rng.Intn(len(keys))]
		v := keys[rng.Intn(len(keys))]
		if u == v {
			continue
		}
		if net.neurons[v].Role == RoleInput {
			continue
		}
		if net.hasEdge(u, v) {
			continue
		}
		net.addEdge(u, v, common.RandomSigned(rng))
		return
	}
}

func (net *Network) mutateDeleteEdge(rng *rand.Rand) {
	if len(net.edges) == 0 {
		return
	}
	i := rng.Intn(len(net.edges))
	net.edges = append(net.edges[:i], net.edges[i+1:]...)
}

func (net *Network) mutateAddNeuron(rng *rand.Rand) {
	key := net.allocNeuron()
	n := newNeuron(key, RoleHidden, common.RandomSigned(rng), true)
	net.neurons[key] = n

	if len(net.edges) == 0 {
		return
	}
	i := rng.Intn(len(net.edges))
	old := net.edges[i]
	net.edges = append(net.edges[:i], net.edges[i+1:]...)
	net.addEdge(old.Source, key, old.Weight)
	net.addEdge(key, old.Target, common.RandomSigned(rng))
}

func (net *Network) mutateDeleteNeuron(rng *rand.Rand) {
	hidden := net.hiddenKeys()
	if len(hidden) == 0 {
		return
	}
	victim := hidden[rng.Intn(len(hidden))]
	delete(net.neurons, victim)

	kept := net.edges[:0]
	for _, e := range net.edges {
		if e.Source == victim || e.Target == victim {
			continue
		}
		kept = append(kept, e)
	}
	net.edges = kept
}

func (net *Network) mutatePerturb(pChange, amount float64, rng *rand.Rand) {
	if amount <= 0 {
		amount = 0.2
	}
	for _, n := range net.neurons {
		if n.Role == RoleInput {
			continue
		}
		if rng.Float64() < pChange {
			n.Bias = common.Clamp(n.Bias+common.RandomSigned(rng)*amount, -1, 1)
		}
	}
	for _, e := range net.edges {
		if rng.Float64() < pChange {
			e.Weight = common.Clamp(e.Weight+common.RandomSigned(rng)*amount, -1, 1)
		}
	}
}
