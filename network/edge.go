package network

import "github.com/Arti-Code/biosynth/common"

// Edge is a directed, weighted connection from Source to Target. Weight
// is clamped to [-1, 1]. LastSignal is the value the edge carried on
// its most recent propagation; it is display-only and not part of the
// algorithmic state (spec §3 data model).
type Edge struct {
	Key    common.EdgeKey
	Source common.NeuronKey
	Target common.NeuronKey
	Weight float64

	LastSignal float64
}

func newEdge(key common.EdgeKey, source, target common.NeuronKey, weight float64) *Edge {
	return &Edge{
		Key:    key,
		Source: source,
		Target: target,
		Weight: common.Clamp(weight, -1, 1),
	}
}
