// Package config defines the simulation's tunable parameters and the
// small amount of process-level configuration needed to start it:
// defaults, an optional TOML override file, and validation.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Settings holds every tunable named throughout the simulation's
// component design. It is read-only once a tick begins; the World
// receives a snapshot and never mutates it mid-tick.
type Settings struct {
	// World
	WorldWidth  float64 `toml:"world_width"`
	WorldHeight float64 `toml:"world_height"`
	CellSize    float64 `toml:"cell_size"`

	MinPopulation     int `toml:"min_population"`
	SoftPopulationCap int `toml:"soft_population_cap"`

	// Think cadence
	ThinkPeriod float64 `toml:"think_period"`

	// Vision, derived linearly from the eyes trait (1..=10)
	VisionRangeBase   float64 `toml:"vision_range_base"`
	VisionRangeFactor float64 `toml:"vision_range_factor"`
	VisionAngleBase   float64 `toml:"vision_angle_base"`
	VisionAngleFactor float64 `toml:"vision_angle_factor"`

	// Energy model (§4.3.3)
	KBase   float64 `toml:"k_base"`
	KMove   float64 `toml:"k_move"`
	KAttack float64 `toml:"k_attack"`
	KSize   float64 `toml:"k_size"`

	RunMultiplier float64 `toml:"run_multiplier"`
	KSpeed        float64 `toml:"k_speed"`
	KRotate       float64 `toml:"k_rotate"`

	// Effector thresholds (§4.3.2)
	AttackThreshold float64 `toml:"attack_threshold"`
	EatThreshold    float64 `toml:"eat_threshold"`
	RunThreshold    float64 `toml:"run_threshold"`
	MoodBlend       float64 `toml:"mood_blend"`

	// Interaction resolution (§4.4)
	KDamage    float64 `toml:"k_damage"`
	KAtkToEng  float64 `toml:"k_atk_to_eng"`
	KDmgToHp   float64 `toml:"k_dmg_to_hp"`
	KEatToEng  float64 `toml:"k_eat_to_eng"`
	KillPoints float64 `toml:"kill_points"`

	// Reproduction (§4.3.5)
	ReproPoints         float64 `toml:"repro_points"`
	ReproTime           float64 `toml:"repro_time"`
	SpeciationDriftProb float64 `toml:"speciation_drift_prob"`
	MaxAncestors        int     `toml:"max_ancestors"`

	// Network build/mutate (§4.1)
	LinkDensity       float64 `toml:"link_density"`
	HiddenLayerSizes  []int   `toml:"hidden_layer_sizes"`
	PAddEdge          float64 `toml:"p_add_edge"`
	PDeleteEdge       float64 `toml:"p_delete_edge"`
	PAddNeuron        float64 `toml:"p_add_neuron"`
	PDeleteNeuron     float64 `toml:"p_delete_neuron"`
	PChangeWeight     float64 `toml:"p_change_weight"`
	PerturbAmount     float64 `toml:"perturb_amount"`
	TraitMutationProb float64 `toml:"trait_mutation_prob"`

	// Ranking (§4.5)
	RankingGeneralCap  int `toml:"ranking_general_cap"`
	RankingSchoolCap   int `toml:"ranking_school_cap"`
	RankingSchoolMaxGen int `toml:"ranking_school_max_gen"`

	// Plants (§3, §4.6 step 4)
	PlantMaxRadius    float64 `toml:"plant_max_radius"`
	PlantGrowthRate   float64 `toml:"plant_growth_rate"`
	PlantLifeBudget   float64 `toml:"plant_life_budget"`
	PlantGrowthPeriod float64 `toml:"plant_growth_period"`
	PlantClonePeriod  float64 `toml:"plant_clone_period"`
	PlantCloneEnergy  float64 `toml:"plant_clone_energy"`

	// World timers (§4.6)
	PopulationCheckPeriod   float64 `toml:"population_check_period"`
	FreshFromZeroProb       float64 `toml:"fresh_from_zero_prob"`
	FreshFromSketchProb     float64 `toml:"fresh_from_sketch_prob"`
	StatsBucketPeriod       float64 `toml:"stats_bucket_period"`
	CoordinateRefreshPeriod float64 `toml:"coordinate_refresh_period"`
	AutosavePeriod          float64 `toml:"autosave_period"`
}

// DefaultSettings returns the simulation's built-in defaults. Every
// field named in the component design has a sensible value here so a
// zero-argument run is always valid.
func DefaultSettings() Settings {
	return Settings{
		WorldWidth:  2000,
		WorldHeight: 2000,
		CellSize:    64,

		MinPopulation:     20,
		SoftPopulationCap: 200,

		ThinkPeriod: 0.25,

		VisionRangeBase:   60,
		VisionRangeFactor: 20,
		VisionAngleBase:   2.6,
		VisionAngleFactor: -0.12,

		KBase:   0.06,
		KMove:   0.12,
		KAttack: 0.8,
		KSize:   0.02,

		RunMultiplier: 1.5,
		KSpeed:        24,
		KRotate:       3.2,

		AttackThreshold: 0.75,
		EatThreshold:    0.6,
		RunThreshold:    0.9,
		MoodBlend:       0.15,

		KDamage:    1.0,
		KAtkToEng:  0.5,
		KDmgToHp:   1.0,
		KEatToEng:  5.0,
		KillPoints: 30,

		ReproPoints:         100,
		ReproTime:           60,
		SpeciationDriftProb: 1.0 / 1500.0,
		MaxAncestors:        5,

		LinkDensity:       0.3,
		HiddenLayerSizes:  []int{8},
		PAddEdge:          0.03,
		PDeleteEdge:       0.03,
		PAddNeuron:        0.02,
		PDeleteNeuron:     0.02,
		PChangeWeight:     0.1,
		PerturbAmount:     0.2,
		TraitMutationProb: 0.1,

		RankingGeneralCap:   30,
		RankingSchoolCap:    20,
		RankingSchoolMaxGen: 10,

		PlantMaxRadius:    8,
		PlantGrowthRate:   0.2,
		PlantLifeBudget:   300,
		PlantGrowthPeriod: 1.0,
		PlantClonePeriod:  5.0,
		PlantCloneEnergy:  20,

		PopulationCheckPeriod:   1.0,
		FreshFromZeroProb:       0.2,
		FreshFromSketchProb:     0.2,
		StatsBucketPeriod:       5.0,
		CoordinateRefreshPeriod: 2.0,
		AutosavePeriod:          120,
	}
}

// CLIConfig holds the process-level settings: the spec's single
// optional positional `.sim` path, plus the ambient profiling/logging
// flags the teacher's orchestrator exposes. None of these are
// simulation parameters.
type CLIConfig struct {
	SimPath    string
	SimName    string
	Seed       int64
	StatsDB    string
	ConfigFile string
	CPUProfile string
	MemProfile string
	LogLevel   string
}

// AppConfig aggregates Settings and CLIConfig, mirroring the teacher's
// AppConfig composition.
type AppConfig struct {
	Settings Settings
	CLI      CLIConfig
}

// NewAppConfig builds an AppConfig from defaults and an optional TOML
// override file (the file wins over defaults), then validates it. cli
// is stored as given; none of its fields overrides a Settings value.
func NewAppConfig(cli CLIConfig) (*AppConfig, error) {
	settings := DefaultSettings()

	if cli.ConfigFile != "" {
		if _, err := toml.DecodeFile(cli.ConfigFile, &settings); err != nil {
			return nil, fmt.Errorf("loading settings from %q: %w", cli.ConfigFile, err)
		}
	}

	app := &AppConfig{Settings: settings, CLI: cli}
	if err := app.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return app, nil
}

// Validate checks Settings for the constraints its consumers rely on:
// positivity of rates and periods, caps that make sense relative to
// each other, and probabilities in [0, 1].
func (ac *AppConfig) Validate() error {
	s := &ac.Settings

	if s.WorldWidth <= 0 || s.WorldHeight <= 0 {
		return fmt.Errorf("world dimensions must be positive, got %gx%g", s.WorldWidth, s.WorldHeight)
	}
	if s.CellSize <= 0 {
		return fmt.Errorf("cell_size must be positive, got %g", s.CellSize)
	}
	if s.MinPopulation <= 0 {
		return fmt.Errorf("min_population must be positive, got %d", s.MinPopulation)
	}
	if s.SoftPopulationCap < s.MinPopulation {
		return fmt.Errorf("soft_population_cap (%d) must be >= min_population (%d)", s.SoftPopulationCap, s.MinPopulation)
	}
	if s.ThinkPeriod <= 0 {
		return fmt.Errorf("think_period must be positive, got %g", s.ThinkPeriod)
	}
	if s.LinkDensity < 0 || s.LinkDensity > 1 {
		return fmt.Errorf("link_density must be in [0, 1], got %g", s.LinkDensity)
	}
	for name, p := range map[string]float64{
		"p_add_edge":          s.PAddEdge,
		"p_delete_edge":       s.PDeleteEdge,
		"p_add_neuron":        s.PAddNeuron,
		"p_delete_neuron":     s.PDeleteNeuron,
		"p_change_weight":     s.PChangeWeight,
		"trait_mutation_prob": s.TraitMutationProb,
		"speciation_drift_prob": s.SpeciationDriftProb,
		"fresh_from_zero_prob":  s.FreshFromZeroProb,
		"fresh_from_sketch_prob": s.FreshFromSketchProb,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("%s must be in [0, 1], got %g", name, p)
		}
	}
	if s.RankingGeneralCap <= 0 || s.RankingSchoolCap <= 0 {
		return fmt.Errorf("ranking caps must be positive, got general=%d school=%d", s.RankingGeneralCap, s.RankingSchoolCap)
	}
	if s.RankingSchoolMaxGen < 0 {
		return fmt.Errorf("ranking_school_max_gen must be non-negative, got %d", s.RankingSchoolMaxGen)
	}
	if s.MaxAncestors < 0 {
		return fmt.Errorf("max_ancestors must be non-negative, got %d", s.MaxAncestors)
	}
	if s.PlantMaxRadius <= 0 {
		return fmt.Errorf("plant_max_radius must be positive, got %g", s.PlantMaxRadius)
	}
	if s.AutosavePeriod <= 0 {
		return fmt.Errorf("autosave_period must be positive, got %g", s.AutosavePeriod)
	}
	return nil
}
