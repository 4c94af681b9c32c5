package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config fixture: %v", err)
	}
	return path
}

const minimalConfig = `
base_granularity_ms = 100
total_runtime_ms = 1000
network_source = "net.yaml"
rng_seed = 1

[person]
workers = 2

[signal]
workers = 1

[communication]
workers = 1
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AssignStrategy != AssignRoundRobin {
		t.Fatalf("AssignStrategy = %q, want round-robin default", cfg.AssignStrategy)
	}
	if cfg.MutexStrategy != MutexLockPerFlip {
		t.Fatalf("MutexStrategy = %q, want lock-per-flip default", cfg.MutexStrategy)
	}
	if cfg.AuraBackend != AuraGrid {
		t.Fatalf("AuraBackend = %q, want grid default", cfg.AuraBackend)
	}
	if cfg.Person.GranularityMS != cfg.BaseGranularityMS {
		t.Fatalf("Person.GranularityMS = %d, want %d", cfg.Person.GranularityMS, cfg.BaseGranularityMS)
	}
	if cfg.TotalTicks() != 10 {
		t.Fatalf("TotalTicks() = %d, want 10", cfg.TotalTicks())
	}
}

func TestValidateRejectsNonMultipleGranularity(t *testing.T) {
	_, err := Load(writeConfig(t, `
base_granularity_ms = 100
total_runtime_ms = 1000
network_source = "net.yaml"

[person]
workers = 1
granularity_ms = 150

[signal]
workers = 1

[communication]
workers = 1
`))
	if err == nil {
		t.Fatal("Load accepted a person granularity that is not a multiple of the base granularity")
	}
}

func TestValidateRejectsUnknownAssignStrategy(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+"\nassign_strategy = \"bogus\"\n"))
	if err == nil {
		t.Fatal("Load accepted an unknown assign_strategy")
	}
}

func TestValidateRejectsNonDivisibleTotalRuntime(t *testing.T) {
	_, err := Load(writeConfig(t, `
base_granularity_ms = 300
total_runtime_ms = 1000
network_source = "net.yaml"

[person]
workers = 1

[signal]
workers = 1

[communication]
workers = 1
`))
	if err == nil {
		t.Fatal("Load accepted a total_runtime_ms that doesn't divide evenly by base_granularity_ms")
	}
}
