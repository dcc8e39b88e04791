package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"

	"github.com/l1jgo/ecskit/internal/core/handle"
)

type Config struct {
	Registry   RegistryConfig   `toml:"registry"`
	Simulation SimulationConfig `toml:"simulation"`
	Logging    LoggingConfig    `toml:"logging"`
	Profile    ProfileConfig    `toml:"profile"`
}

type RegistryConfig struct {
	Capacity       int    `toml:"capacity"`        // max live entities
	MaxViewTables  int    `toml:"max_view_tables"` // tables one view may span
	ExpiryPolicy   string `toml:"expiry_policy"`   // "recycle" or "discard"
	MemoryBudget   int64  `toml:"memory_budget"`   // bytes; 0 = unbounded
	BudgetFallback bool   `toml:"budget_fallback"` // spill to the heap once the budget is spent
}

type SimulationConfig struct {
	Ticks    int           `toml:"ticks"`     // 0 = run until interrupted
	TickRate time.Duration `toml:"tick_rate"` // simulated tick length
	Scenario string        `toml:"scenario"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type ProfileConfig struct {
	Mode string `toml:"mode"` // "none", "cpu", "mem" or "alloc"
	Path string `toml:"path"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every problem in cfg, not just the first.
func (c *Config) Validate() error {
	var errs error
	if c.Registry.Capacity <= 0 || uint64(c.Registry.Capacity) > uint64(handle.MaxIndex) {
		errs = multierr.Append(errs, fmt.Errorf("registry.capacity %d out of range", c.Registry.Capacity))
	}
	if c.Registry.MaxViewTables <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("registry.max_view_tables must be positive, got %d", c.Registry.MaxViewTables))
	}
	if _, err := handle.ParseExpiryPolicy(c.Registry.ExpiryPolicy); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("registry.expiry_policy: %w", err))
	}
	if c.Registry.MemoryBudget < 0 {
		errs = multierr.Append(errs, fmt.Errorf("registry.memory_budget must not be negative"))
	}
	if c.Registry.BudgetFallback && c.Registry.MemoryBudget == 0 {
		errs = multierr.Append(errs, fmt.Errorf("registry.budget_fallback needs a memory_budget"))
	}
	if c.Simulation.Ticks < 0 {
		errs = multierr.Append(errs, fmt.Errorf("simulation.ticks must not be negative"))
	}
	if c.Simulation.TickRate <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("simulation.tick_rate must be positive"))
	}
	if c.Simulation.Scenario == "" {
		errs = multierr.Append(errs, fmt.Errorf("simulation.scenario is required"))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = multierr.Append(errs, fmt.Errorf("logging.format %q: want json or console", c.Logging.Format))
	}
	switch c.Profile.Mode {
	case "", "none", "cpu", "mem", "alloc":
	default:
		errs = multierr.Append(errs, fmt.Errorf("profile.mode %q: want none, cpu, mem or alloc", c.Profile.Mode))
	}
	return errs
}

func defaults() *Config {
	return &Config{
		Registry: RegistryConfig{
			Capacity:      4096,
			MaxViewTables: 64,
			ExpiryPolicy:  "recycle",
		},
		Simulation: SimulationConfig{
			Ticks:    600,
			TickRate: 50 * time.Millisecond,
			Scenario: "data/yaml/scenario.yaml",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Profile: ProfileConfig{
			Mode: "none",
			Path: ".",
		},
	}
}
