package agent

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/Arti-Code/biosynth/common"
	"github.com/Arti-Code/biosynth/config"
	"github.com/Arti-Code/biosynth/network"
	"github.com/Arti-Code/biosynth/neuromap"
)

// AgentSketch is the serialisable snapshot of an agent (spec §3): the
// unit of cross-generation transmission and of file-level persistence.
// New fields default to a sentinel value on load (serde-style
// forward compatibility, spec §6 "Sketches are backward-compatible").
type AgentSketch struct {
	Species    string                `json:"species"`
	Generation int                   `json:"generation"`
	Radius     float64               `json:"radius"`
	Primary    [3]float64            `json:"primary_color"`
	Secondary  [3]float64            `json:"secondary_color"`
	Network    network.NetworkSketch `json:"network"`
	Points     float64               `json:"points"`
	SensorNames   []string `json:"sensor_names"`
	EffectorNames []string `json:"effector_names"`
	Traits     Traits   `json:"traits"`
	Ancestors  []string `json:"ancestors"`
}

// Sketch snapshots a living agent. Transient tick state (contacts,
// perception, action intents) is not part of the sketch.
func (a *Agent) Sketch() AgentSketch {
	ancestors := make([]string, len(a.Ancestors))
	for i, id := range a.Ancestors {
		ancestors[i] = id.String()
	}
	return AgentSketch{
		Species:       a.Species,
		Generation:    a.Generation,
		Radius:        a.Radius,
		Primary:       a.Mood,
		Network:       a.Net.Sketch(),
		Points:        a.Points,
		SensorNames:   append([]string(nil), SensorLabels...),
		EffectorNames: append([]string(nil), EffectorLabels...),
		Traits:        a.Traits,
		Ancestors:     ancestors,
	}
}

// FromSketch reconstructs a living agent from a stored sketch at the
// given position, with a fresh physics-independent state (handle is
// assigned by the caller once the body is registered with physics).
func FromSketch(s AgentSketch, pos common.Vec2, settings *config.Settings) *Agent {
	net := network.FromSketch(s.Network)
	traits := s.Traits
	traits.Clamp()

	radius := s.Radius
	if radius <= 0 {
		radius = 6.0 + float64(traits.Shell)*0.6
	}

	ancestors := make([]uuid.UUID, 0, len(s.Ancestors))
	for _, raw := range s.Ancestors {
		if id, err := uuid.Parse(raw); err == nil {
			ancestors = append(ancestors, id)
		}
	}

	a := &Agent{
		Key:         uuid.New(),
		Species:     s.Species,
		Generation:  s.Generation,
		Ancestors:   ancestors,
		Radius:      radius,
		Mass:        radius * radius,
		Traits:      traits,
		VisionRange: traits.VisionRange(settings.VisionRangeBase, settings.VisionRangeFactor),
		VisionAngle: traits.VisionAngle(settings.VisionAngleBase, settings.VisionAngleFactor),
		MaxEnergy:   MaxEnergy(radius, 40, 4),
		Position:    pos,
		Net:         net,
		Map:         bindNeuroMap(net),
		Points:      s.Points,
		Alive:       true,
	}
	a.Energy = a.MaxEnergy
	return a
}

// Replicate produces a mutated child sketch from a living agent (spec
// §4.3.5): network mutation, integer-trait mutation, capped ancestor
// chain, generation+1, and a small chance of two-character species
// drift (§11 supplemented feature, following original_source's
// two-character drift rather than a single character).
func (a *Agent) Replicate(settings *config.Settings, rng *rand.Rand) AgentSketch {
	childNet := network.FromSketch(a.Net.Sketch())
	rates := network.MutationRates{
		AddEdge:       settings.PAddEdge,
		DeleteEdge:    settings.PDeleteEdge,
		AddNeuron:     settings.PAddNeuron,
		DeleteNeuron:  settings.PDeleteNeuron,
		ChangeWeight:  settings.PChangeWeight,
		PerturbAmount: settings.PerturbAmount,
	}
	childNet.Mutate(rates, rng)

	childTraits := a.Traits.Mutate(rng, settings.TraitMutationProb)

	species := a.Species
	if rng.Float64() < settings.SpeciationDriftProb {
		species = driftSpecies(species, rng)
	}

	ancestors := append([]uuid.UUID(nil), a.Ancestors...)
	ancestors = append(ancestors, a.Key)
	if settings.MaxAncestors > 0 && len(ancestors) > settings.MaxAncestors {
		ancestors = ancestors[len(ancestors)-settings.MaxAncestors:]
	}

	ancestorStrings := make([]string, len(ancestors))
	for i, id := range ancestors {
		ancestorStrings[i] = id.String()
	}

	return AgentSketch{
		Species:       species,
		Generation:    a.Generation + 1,
		Radius:        a.Radius,
		Primary:       a.Mood,
		Network:       childNet.Sketch(),
		Points:        0,
		SensorNames:   append([]string(nil), SensorLabels...),
		EffectorNames: append([]string(nil), EffectorLabels...),
		Traits:        childTraits,
		Ancestors:     ancestorStrings,
	}
}

// driftSpecies rerolls two of the four species-name characters,
// following the original source's speciation mechanic rather than
// resampling the whole name.
func driftSpecies(species string, rng *rand.Rand) string {
	letters := []rune(species)
	if len(letters) != 4 {
		letters = []rune("AAAA")
	}
	first := rng.Intn(len(letters))
	second := (first + 1 + rng.Intn(len(letters)-1)) % len(letters)
	for _, idx := range []int{first, second} {
		letters[idx] = rune('A' + rng.Intn(26))
	}
	return string(letters)
}

func bindNeuroMap(net *network.Network) *neuromap.NeuroMap {
	m := neuromap.New()
	m.BindSensors(SensorLabels, net.InputKeys())
	m.BindEffectors(EffectorLabels, net.OutputKeys())
	return m
}
