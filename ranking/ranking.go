// Package ranking implements the two-tier leaderboard of dead-agent
// sketches (spec §4.5): a gene pool the World draws fresh agents from.
package ranking

import (
	"errors"
	"math"
	"math/rand"
	"sort"

	"github.com/Arti-Code/biosynth/agent"
)

// ErrNoTemplate is returned by Sample when the chosen tier is empty;
// callers substitute a fresh-from-scratch agent (spec §4.5 Failure,
// §7 "Empty ranking on sample").
var ErrNoTemplate = errors.New("ranking: no template available")

// Ranking holds the school (young generations) and general (mature
// generations) leaderboards, each bounded and deduplicated by species.
type Ranking struct {
	General []agent.AgentSketch
	School  []agent.AgentSketch

	generalCap   int
	schoolCap    int
	schoolMaxGen int
}

// New creates an empty ranking. schoolMaxGen is the generation
// threshold routing an incoming sketch to school (<=) or general (>),
// following original `ranking.rs`'s `add_agent` routing rule exactly.
func New(generalCap, schoolCap, schoolMaxGen int) *Ranking {
	return &Ranking{generalCap: generalCap, schoolCap: schoolCap, schoolMaxGen: schoolMaxGen}
}

// Add routes a dead agent's sketch into school or general by
// generation (spec §4.5, §11 "two-tier routing by generation
// threshold, not list identity").
func (r *Ranking) Add(sketch agent.AgentSketch) {
	if sketch.Generation <= r.schoolMaxGen {
		r.School = append(r.School, sketch)
	} else {
		r.General = append(r.General, sketch)
	}
}

// Update re-sorts both tiers descending by points, keeps only the
// best-points entry per species, and truncates to each tier's cap
// (spec §4.5 Insert, §8 property 4).
func (r *Ranking) Update() {
	r.School = dedupeAndCap(r.School, r.schoolCap)
	r.General = dedupeAndCap(r.General, r.generalCap)
}

func dedupeAndCap(list []agent.AgentSketch, cap int) []agent.AgentSketch {
	sort.Slice(list, func(i, j int) bool { return list[i].Points > list[j].Points })

	seen := make(map[string]bool, len(list))
	out := make([]agent.AgentSketch, 0, len(list))
	for _, s := range list {
		if seen[s.Species] {
			continue
		}
		seen[s.Species] = true
		out = append(out, s)
	}
	if len(out) > cap {
		out = out[:cap]
	}
	return out
}

// IsEmpty reports whether both tiers are empty.
func (r *Ranking) IsEmpty() bool { return len(r.General) == 0 && len(r.School) == 0 }

// Sample draws a random sketch from one of the two tiers, chosen
// 50/50, halving and rounding the drawn entry's points in place as a
// usage penalty (spec §4.5 Sample, §11 "usage-penalty halving").
// Following original `ranking.rs`'s `get_random_agent`, there is no
// fallback to the other tier if the chosen one is empty.
func (r *Ranking) Sample(rng *rand.Rand) (agent.AgentSketch, error) {
	if rng.Intn(2) == 0 {
		return r.sampleFrom(r.General, rng)
	}
	return r.sampleFrom(r.School, rng)
}

func (r *Ranking) sampleFrom(list []agent.AgentSketch, rng *rand.Rand) (agent.AgentSketch, error) {
	if len(list) == 0 {
		return agent.AgentSketch{}, ErrNoTemplate
	}
	idx := rng.Intn(len(list))
	out := list[idx]
	list[idx].Points = math.Round(list[idx].Points * 0.5)
	return out, nil
}
