// Package config loads and validates the structured document that drives a
// simulation run (§6 of the kernel specification). Parsing uses
// github.com/pelletier/go-toml, the same library dragonfly
// reaches for wherever it persists a small structured document (see
// whitelist handling in the retrieval pack's df-mc/dragonfly tree).
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml"
)

// AssignStrategy selects how newly activated entities are handed to a
// worker by the WorkGroup (§4.F).
type AssignStrategy string

const (
	AssignRoundRobin   AssignStrategy = "round-robin"
	AssignLeastLoaded  AssignStrategy = "least-loaded"
	AssignByPartition  AssignStrategy = "by-partition-id"
)

// MutexStrategy selects the synchronisation discipline used by buffered
// values (§4.A). The "none" strategy is only legal because BufferedValue's
// flip is always invoked from a single goroutine while no reader is
// concurrently active, a guarantee provided by the WorkGroup barrier (§9
// design note). Nothing checks this at construction: Validate accepts all
// three values.
type MutexStrategy string

const (
	MutexNone           MutexStrategy = "none"
	MutexLockPerFlip    MutexStrategy = "lock-per-flip"
	MutexEpochCounter   MutexStrategy = "epoch-counter"
)

// AuraBackend selects the spatial index implementation backing the aura
// manager (§4.H).
type AuraBackend string

const (
	AuraGrid    AuraBackend = "grid"
	AuraRTree   AuraBackend = "rtree"
	AuraSimtree AuraBackend = "simtree"
)

// GroupConfig holds the per-role-group worker count and tick granularity
// named in §6 ({person, signal, communication} groups), recovered in more
// detail from original_source/dev/Basic/medium/config/MT_Config.hpp.
type GroupConfig struct {
	Workers      int `toml:"workers"`
	GranularityMS int `toml:"granularity_ms"`
}

// Config is the structured document the core consumes, never authors. The
// zero value is not valid; call Validate after Load.
type Config struct {
	BaseGranularityMS int `toml:"base_granularity_ms"`
	TotalRuntimeMS    int `toml:"total_runtime_ms"`
	WarmupTicks       int `toml:"warmup_ticks"`

	Person        GroupConfig `toml:"person"`
	Signal        GroupConfig `toml:"signal"`
	Communication GroupConfig `toml:"communication"`

	AssignStrategy AssignStrategy `toml:"assign_strategy"`
	MutexStrategy  MutexStrategy  `toml:"mutex_strategy"`
	AuraBackend    AuraBackend    `toml:"aura_backend"`

	NetworkSource string `toml:"network_source"`
	RNGSeed       int64  `toml:"rng_seed"`

	OutputPath        string `toml:"output_path"`
	OutputCompression bool   `toml:"output_compression"`

	// SingleThreaded forces every worker phase to run sequentially on the
	// driver goroutine instead of fanning out across goroutines (§5's debug
	// mode, used to demonstrate P7: single-threaded and N-worker runs must
	// agree bit-for-bit given the same seed).
	SingleThreaded bool `toml:"single_threaded"`
}

// Load reads and parses the TOML document at path, then applies defaults
// and validates it.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	c = c.withDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// withDefaults fills in sensible defaults for optional knobs. Mirrors the
// redstone.Config.withDefaults: the zero value of most fields is
// usable, but a handful need a concrete default before first use.
func (c Config) withDefaults() Config {
	if c.AssignStrategy == "" {
		c.AssignStrategy = AssignRoundRobin
	}
	if c.MutexStrategy == "" {
		c.MutexStrategy = MutexLockPerFlip
	}
	if c.AuraBackend == "" {
		c.AuraBackend = AuraGrid
	}
	if c.Person.GranularityMS == 0 {
		c.Person.GranularityMS = c.BaseGranularityMS
	}
	if c.Signal.GranularityMS == 0 {
		c.Signal.GranularityMS = c.BaseGranularityMS
	}
	if c.Communication.GranularityMS == 0 {
		c.Communication.GranularityMS = c.BaseGranularityMS
	}
	return c
}

// Validate rejects configurations that violate the tick-granularity
// contract from §6: totalRuntimeMS must divide evenly by baseGranMS, and
// every group granularity must be a positive integer multiple of it.
func (c Config) Validate() error {
	if c.BaseGranularityMS <= 0 {
		return fmt.Errorf("config: base_granularity_ms must be positive")
	}
	if c.TotalRuntimeMS <= 0 {
		return fmt.Errorf("config: total_runtime_ms must be positive")
	}
	if c.TotalRuntimeMS%c.BaseGranularityMS != 0 {
		return fmt.Errorf("config: total_runtime_ms (%d) is not a multiple of base_granularity_ms (%d)",
			c.TotalRuntimeMS, c.BaseGranularityMS)
	}
	for name, g := range map[string]GroupConfig{"person": c.Person, "signal": c.Signal, "communication": c.Communication} {
		if g.GranularityMS <= 0 {
			return fmt.Errorf("config: %s.granularity_ms must be positive", name)
		}
		if g.GranularityMS%c.BaseGranularityMS != 0 {
			return fmt.Errorf("config: %s.granularity_ms (%d) is not a multiple of base_granularity_ms (%d)",
				name, g.GranularityMS, c.BaseGranularityMS)
		}
		if g.Workers <= 0 {
			return fmt.Errorf("config: %s.workers must be positive", name)
		}
	}
	switch c.AssignStrategy {
	case AssignRoundRobin, AssignLeastLoaded, AssignByPartition:
	default:
		return fmt.Errorf("config: unknown assign_strategy %q", c.AssignStrategy)
	}
	switch c.MutexStrategy {
	case MutexNone, MutexLockPerFlip, MutexEpochCounter:
	default:
		return fmt.Errorf("config: unknown mutex_strategy %q", c.MutexStrategy)
	}
	switch c.AuraBackend {
	case AuraGrid, AuraRTree, AuraSimtree:
	default:
		return fmt.Errorf("config: unknown aura_backend %q", c.AuraBackend)
	}
	return nil
}

// TotalTicks returns the number of base ticks the run will execute.
func (c Config) TotalTicks() int {
	return c.TotalRuntimeMS / c.BaseGranularityMS
}
