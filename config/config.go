// Package config loads the TOML-encoded run configuration shared by
// cmd/evolve: population/operator policy, the LGP machine shape, and
// training/reporting cadence. Grounded on
// _examples/stojg-playlist-sorter/config/config.go (BurntSushi/toml
// Unmarshal/Encode, read-with-fallback-to-defaults, direct non-atomic save).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/evolab/engine/evolve/cfg"
	"github.com/evolab/engine/lgp"
	"github.com/evolab/engine/train"
)

// EvolveConfig is the TOML-friendly projection of cfg.EvolveCfg: policy
// names instead of the Go enums, since toml has no native sum-type
// support.
type EvolveConfig struct {
	PopSize int `toml:"pop_size"`

	CrossoverAdaptive bool      `toml:"crossover_adaptive"`
	CrossoverWeights  []float64 `toml:"crossover_weights"`
	MutationAdaptive  bool      `toml:"mutation_adaptive"`
	MutationWeights   []float64 `toml:"mutation_weights"`

	Survival     string  `toml:"survival"` // "top_proportion" | "species_top_proportion" | "youngest" | "tournament"
	SurvivalProp float64 `toml:"survival_prop"`
	SurvivalQ    int     `toml:"survival_q"`

	Selection string `toml:"selection"` // "sus" | "roulette"

	Niching       string  `toml:"niching"` // "none" | "shared_fitness" | "species_shared_fitness"
	NichingRadius float64 `toml:"niching_radius"`

	Species       string `toml:"species"` // "none" | "target_number"
	SpeciesTarget int    `toml:"species_target"`

	Stagnation      string `toml:"stagnation"` // "none" | "one_shot_after" | "continuous_after"
	StagnationCount int    `toml:"stagnation_count"`

	StagnationCondition        string  `toml:"stagnation_condition"` // "default" | "epsilon"
	StagnationConditionEpsilon float64 `toml:"stagnation_condition_epsilon"`

	ReplacementProp float64 `toml:"replacement_prop"`
	AllowDuplicates bool    `toml:"allow_duplicates"`

	ParFitness bool `toml:"par_fitness"`
	ParDist    bool `toml:"par_dist"`
}

// LgpConfig is the TOML-friendly projection of lgp.Cfg.
type LgpConfig struct {
	NumReg     int       `toml:"num_reg"`
	Constants  []float64 `toml:"constants"`
	OutputRegs []int     `toml:"output_regs"`
	MinLen     int       `toml:"min_len"`
	MaxLen     int       `toml:"max_len"`

	ImmSf int     `toml:"imm_sf"`
	ImmLo float64 `toml:"imm_lo"`
	ImmHi float64 `toml:"imm_hi"`
}

// TrainConfig is the TOML-friendly projection of train.Cfg.
type TrainConfig struct {
	Name                 string `toml:"name"`
	Generations          int    `toml:"generations"`
	PrintGenEvery        int    `toml:"print_gen_every"`
	PrintSummaryEvery    int    `toml:"print_summary_every"`
	PrintSamplesEvery    int    `toml:"print_samples_every"`
	CheckpointEvery      int    `toml:"checkpoint_every"`
	CheckpointPath       string `toml:"checkpoint_path"`
}

// Config is the full on-disk run configuration.
type Config struct {
	Evolve EvolveConfig `toml:"evolve"`
	Lgp    LgpConfig    `toml:"lgp"`
	Train  TrainConfig  `toml:"train"`
}

// Load reads path as TOML. A missing file is not an error: Default() is
// returned instead, so a fresh checkout can run with no config file
// present.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return c, nil
}

// Save writes c to path as TOML, creating parent directories as needed.
func Save(path string, c Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create directory for %s: %w", path, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: create %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// Default returns a conservative starting configuration: adaptive
// crossover/mutation, top-25% survival, SUS selection, no niching or
// speciation, 2000 training generations with best fitness printed every
// 10 generations and a full summary every 100.
func Default() Config {
	return Config{
		Evolve: EvolveConfig{
			PopSize:           200,
			CrossoverAdaptive: true,
			MutationAdaptive:  true,
			Survival:          "top_proportion",
			SurvivalProp:      0.25,
			Selection:         "sus",
			Niching:           "none",
			Species:           "none",
			Stagnation:        "none",
			ReplacementProp:   0.5,
			AllowDuplicates:   false,
			ParFitness:        true,
			ParDist:           true,
		},
		Lgp: LgpConfig{
			NumReg:     8,
			OutputRegs: []int{0},
			MinLen:     4,
			MaxLen:     64,
			ImmSf:      2,
			ImmLo:      -10,
			ImmHi:      10,
		},
		Train: TrainConfig{
			Name:              "run",
			Generations:       2000,
			PrintGenEvery:     10,
			PrintSummaryEvery: 100,
		},
	}
}

// ToEvolveCfg converts the TOML projection into the cfg.EvolveCfg the
// engine actually runs on.
func (c EvolveConfig) ToEvolveCfg() (cfg.EvolveCfg, error) {
	out := cfg.New(c.PopSize)

	if c.CrossoverAdaptive {
		out.Crossover = cfg.AdaptiveCrossover()
	} else {
		out.Crossover = cfg.FixedCrossover(c.CrossoverWeights)
	}
	if c.MutationAdaptive {
		out.Mutation = cfg.AdaptiveMutation()
	} else {
		out.Mutation = cfg.FixedMutation(c.MutationWeights)
	}

	switch c.Survival {
	case "", "top_proportion":
		out.Survival = cfg.NewTopProportion(c.SurvivalProp)
	case "species_top_proportion":
		out.Survival = cfg.NewSpeciesTopProportion(c.SurvivalProp)
	case "youngest":
		out.Survival = cfg.NewYoungest()
	case "tournament":
		out.Survival = cfg.NewTournament(c.SurvivalQ)
	default:
		return cfg.EvolveCfg{}, fmt.Errorf("config: unknown survival policy %q", c.Survival)
	}

	switch c.Selection {
	case "", "sus":
		out.Selection = cfg.Sus
	case "roulette":
		out.Selection = cfg.Roulette
	default:
		return cfg.EvolveCfg{}, fmt.Errorf("config: unknown selection policy %q", c.Selection)
	}

	switch c.Niching {
	case "", "none":
		out.Niching = cfg.Niching{Kind: cfg.NoNiching}
	case "shared_fitness":
		out.Niching = cfg.NewSharedFitness(c.NichingRadius)
	case "species_shared_fitness":
		out.Niching = cfg.NewSpeciesSharedFitness()
	default:
		return cfg.EvolveCfg{}, fmt.Errorf("config: unknown niching policy %q", c.Niching)
	}

	switch c.Species {
	case "", "none":
		out.Species = cfg.Species{Kind: cfg.NoSpecies}
	case "target_number":
		out.Species = cfg.NewTargetNumber(c.SpeciesTarget)
	default:
		return cfg.EvolveCfg{}, fmt.Errorf("config: unknown species policy %q", c.Species)
	}

	switch c.Stagnation {
	case "", "none":
		out.Stagnation = cfg.Stagnation{Kind: cfg.NoStagnation}
	case "one_shot_after":
		out.Stagnation = cfg.NewOneShotAfter(c.StagnationCount)
	case "continuous_after":
		out.Stagnation = cfg.NewContinuousAfter(c.StagnationCount)
	default:
		return cfg.EvolveCfg{}, fmt.Errorf("config: unknown stagnation policy %q", c.Stagnation)
	}

	switch c.StagnationCondition {
	case "", "default":
		out.StagnationCondition = cfg.StagnationCondition{Kind: cfg.DefaultCondition}
	case "epsilon":
		out.StagnationCondition = cfg.NewEpsilonCondition(c.StagnationConditionEpsilon)
	default:
		return cfg.EvolveCfg{}, fmt.Errorf("config: unknown stagnation condition %q", c.StagnationCondition)
	}

	out.Replacement = cfg.NewReplaceChildren(c.ReplacementProp)
	out.Duplicates = cfg.Duplicates(!c.AllowDuplicates)
	out.ParFitness = c.ParFitness
	out.ParDist = c.ParDist

	if err := out.Validate(); err != nil {
		return cfg.EvolveCfg{}, err
	}
	return out, nil
}

// ToLgpCfg converts the TOML projection into lgp.Cfg. RandOp is left for
// the caller to set, since it depends on which opcodes a particular run
// wants to sample from.
func (c LgpConfig) ToLgpCfg() lgp.Cfg {
	outputRegs := make([]uint8, len(c.OutputRegs))
	for i, r := range c.OutputRegs {
		outputRegs[i] = uint8(r)
	}
	return lgp.Cfg{
		NumReg:     c.NumReg,
		Constants:  c.Constants,
		OutputRegs: outputRegs,
		MinLen:     c.MinLen,
		MaxLen:     c.MaxLen,
		ImmSf:      c.ImmSf,
		ImmLo:      c.ImmLo,
		ImmHi:      c.ImmHi,
	}
}

// ToTrainCfg converts the TOML projection into train.Cfg.
func (c TrainConfig) ToTrainCfg() train.Cfg {
	return train.Cfg{
		Name:              c.Name,
		Termination:       train.NewFixedGenerations(c.Generations),
		PrintGenEvery:     c.PrintGenEvery,
		PrintSummaryEvery: c.PrintSummaryEvery,
		PrintSamplesEvery: c.PrintSamplesEvery,
		CheckpointEvery:   c.CheckpointEvery,
		CheckpointPath:    c.CheckpointPath,
	}
}
