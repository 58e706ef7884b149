package network

import (
	"sort"

	"github.com/Arti-Code/biosynth/common"
)

// NodeSketch is the serialisable form of a Neuron. Transient state
// (accumulator, memory contents) is intentionally absent; FromSketch
// starts it zeroed.
type NodeSketch struct {
	Key       uint64  `json:"key"`
	Role      Role    `json:"role"`
	Bias      float64 `json:"bias"`
	HasMemory bool    `json:"has_memory"`
}

// EdgeSketch is the serialisable form of an Edge.
type EdgeSketch struct {
	Key    uint64  `json:"key"`
	Source uint64  `json:"source"`
	Target uint64  `json:"target"`
	Weight float64 `json:"weight"`
}

// NetworkSketch is the pointer-free snapshot carried inside an
// AgentSketch (spec §3, §4.1). Edges are stored in the same order
// they were created so a loaded network reproduces the original's
// propagation order exactly.
type NetworkSketch struct {
	Nodes      []NodeSketch     `json:"nodes"`
	Edges      []EdgeSketch     `json:"edges"`
	InputKeys  []uint64         `json:"input_keys"`
	OutputKeys []uint64         `json:"output_keys"`
}

// Sketch snapshots the network's topology, weights, and biases.
func (net *Network) Sketch() NetworkSketch {
	s := NetworkSketch{
		Nodes:      make([]NodeSketch, 0, len(net.neurons)),
		Edges:      make([]EdgeSketch, 0, len(net.edges)),
		InputKeys:  keysToUint64(net.inputKeys),
		OutputKeys: keysToUint64(net.outputKeys),
	}
	// Node order must match spec's "round trip lossless" contract, so
	// walk in key order rather than Go's randomised map order.
	ordered := net.allKeys()
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })
	for _, k := range ordered {
		n := net.neurons[k]
		s.Nodes = append(s.Nodes, NodeSketch{
			Key:       uint64(n.Key),
			Role:      n.Role,
			Bias:      n.Bias,
			HasMemory: n.memory != nil,
		})
	}
	for _, e := range net.edges {
		s.Edges = append(s.Edges, EdgeSketch{
			Key:    uint64(e.Key),
			Source: uint64(e.Source),
			Target: uint64(e.Target),
			Weight: e.Weight,
		})
	}
	return s
}

// FromSketch rebuilds a Network from a NetworkSketch. Transient state
// (activations, accumulators, memory contents) starts zeroed.
func FromSketch(s NetworkSketch) *Network {
	net := &Network{neurons: make(map[common.NeuronKey]*Neuron)}

	for _, ns := range s.Nodes {
		key := common.NeuronKey(ns.Key)
		net.neurons[key] = newNeuron(key, ns.Role, ns.Bias, ns.HasMemory)
		if key > net.nextNeuronKey {
			net.nextNeuronKey = key
		}
	}
	for _, es := range s.Edges {
		e := newEdge(common.EdgeKey(es.Key), common.NeuronKey(es.Source), common.NeuronKey(es.Target), es.Weight)
		net.edges = append(net.edges, e)
		if e.Key > net.nextEdgeKey {
			net.nextEdgeKey = e.Key
		}
	}
	for _, k := range s.InputKeys {
		net.inputKeys = append(net.inputKeys, common.NeuronKey(k))
	}
	for _, k := range s.OutputKeys {
		net.outputKeys = append(net.outputKeys, common.NeuronKey(k))
	}
	return net
}

func keysToUint64(keys []common.NeuronKey) []uint64 {
	out := make([]uint64, len(keys))
	for i, k := range keys {
		out[i] = uint64(k)
	}
	return out
}
