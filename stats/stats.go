// Package stats accumulates bucketed rolling time series for the
// simulation (spec §4.6 step 9): lifetimes, sizes, births, deaths,
// points, node/link counts, populations. Grounded on original
// `stats.rs`'s `Stats` type (a named map of capped double-ended
// queues), reworked as a capped slice per series that drops its first
// element past the limit, instead of a `VecDeque` with a manual
// pop-front.
package stats

// Point is one bucketed sample: the simulated time it was recorded at
// and its value.
type Point struct {
	Time  float64
	Value float64
}

// Series is a fixed-capacity rolling window of points for one named
// metric. Pushing past the limit drops the oldest sample, matching
// original `stats.rs`'s `add_data` eviction.
type Series struct {
	limit int
	data  []Point
}

func newSeries(limit int) *Series {
	return &Series{limit: limit, data: make([]Point, 0, limit)}
}

func (s *Series) push(t, v float64) {
	s.data = append(s.data, Point{Time: t, Value: v})
	if len(s.data) > s.limit {
		s.data = s.data[1:]
	}
}

// Snapshot returns a copy of the series' current points, oldest first.
func (s *Series) Snapshot() []Point {
	out := make([]Point, len(s.data))
	copy(out, s.data)
	return out
}

// Last returns the most recently pushed point and whether one exists.
func (s *Series) Last() (Point, bool) {
	if len(s.data) == 0 {
		return Point{}, false
	}
	return s.data[len(s.data)-1], true
}

// Named series the World accumulates every stats-bucket tick.
const (
	SeriesLifetimes    = "lifetimes"
	SeriesSizes        = "sizes"
	SeriesBirths       = "births"
	SeriesDeaths       = "deaths"
	SeriesPoints       = "points"
	SeriesNodeCounts   = "node_counts"
	SeriesLinkCounts   = "link_counts"
	SeriesPopulation   = "population"
	SeriesPlantCount   = "plant_count"
)

var trackedSeries = []string{
	SeriesLifetimes, SeriesSizes, SeriesBirths, SeriesDeaths, SeriesPoints,
	SeriesNodeCounts, SeriesLinkCounts, SeriesPopulation, SeriesPlantCount,
}

// Stats holds every tracked rolling series, each capped to the same
// bucket limit.
type Stats struct {
	limit  int
	series map[string]*Series

	// Per-bucket accumulators, reset by Flush.
	births int
	deaths int
}

// New creates a Stats with every tracked series capped to limit
// buckets (roughly limit * bucket_period simulated seconds of history).
func New(limit int) *Stats {
	s := &Stats{limit: limit, series: make(map[string]*Series, len(trackedSeries))}
	for _, name := range trackedSeries {
		s.series[name] = newSeries(limit)
	}
	return s
}

// RecordBirth increments the current bucket's birth counter.
func (s *Stats) RecordBirth() { s.births++ }

// RecordDeath increments the current bucket's death counter and logs
// the dying agent's lifetime and points into their own series.
func (s *Stats) RecordDeath(t float64, lifetime, points float64) {
	s.deaths++
	s.series[SeriesLifetimes].push(t, lifetime)
	s.series[SeriesPoints].push(t, points)
}

// RecordSize logs one agent's current radius at time t; called for
// every living agent on each bucket flush so SeriesSizes reflects the
// population's size distribution rather than a single sample.
func (s *Stats) RecordSize(t, radius float64) {
	s.series[SeriesSizes].push(t, radius)
}

// Flush closes out the current bucket at simulated time t: pushes the
// accumulated birth/death counts, the given topology and population
// snapshot, and resets the per-bucket counters.
func (s *Stats) Flush(t float64, nodeCount, linkCount, population, plantCount int) {
	s.series[SeriesBirths].push(t, float64(s.births))
	s.series[SeriesDeaths].push(t, float64(s.deaths))
	s.series[SeriesNodeCounts].push(t, float64(nodeCount))
	s.series[SeriesLinkCounts].push(t, float64(linkCount))
	s.series[SeriesPopulation].push(t, float64(population))
	s.series[SeriesPlantCount].push(t, float64(plantCount))
	s.births = 0
	s.deaths = 0
}

// Series returns the named rolling series, or nil if name is untracked.
func (s *Stats) Series(name string) *Series {
	return s.series[name]
}
