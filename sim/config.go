package sim

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/warehouse-sim/warehouse-sim/sim/episode"
)

// Config is the YAML-loadable knob set for `warehouse-sim run`: episode
// timing, RNG seeding, logging, and telemetry output. When loaded via
// LoadConfig, fields absent from the file keep their DefaultConfig values;
// a field set explicitly to zero stays zero.
type Config struct {
	Duration         float64 `yaml:"duration"`
	Tick             float64 `yaml:"tick"`
	SnapshotInterval float64 `yaml:"snapshot_interval"`
	SeedBase         int64   `yaml:"seed_base"`
	DecayInterval    float64 `yaml:"decay_interval"`
	LowBatteryFloor  float64 `yaml:"low_battery_floor"`
	FleetSize        int     `yaml:"fleet_size"`
	Episodes         int     `yaml:"episodes"`
	LogLevel         string  `yaml:"log_level"`
	LogFile          string  `yaml:"log_file"`
	TelemetryDir     string  `yaml:"telemetry_dir"`
	TelemetryGzip    bool    `yaml:"telemetry_gzip"`
}

// DefaultConfig returns the documented defaults (§6 "Configuration").
func DefaultConfig() Config {
	ec := episode.DefaultConfig()
	return Config{
		Duration:         ec.Duration,
		Tick:             ec.Tick,
		SnapshotInterval: ec.SnapshotInterval,
		SeedBase:         ec.SeedBase,
		DecayInterval:    ec.DecayInterval,
		LowBatteryFloor:  ec.LowBatteryFloor,
		FleetSize:        ec.FleetSize,
		Episodes:         1,
		LogLevel:         "info",
	}
}

// LoadConfig reads a YAML config file at path on top of DefaultConfig, so
// any field the file leaves out keeps its default. Uses strict field checking so a typo'd
// key is a load error rather than a silently ignored one.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("sim: read config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("sim: parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first structurally invalid field, if any.
func (c Config) Validate() error {
	switch {
	case c.Duration <= 0:
		return fmt.Errorf("sim: duration must be positive, got %v", c.Duration)
	case c.Tick <= 0:
		return fmt.Errorf("sim: tick must be positive, got %v", c.Tick)
	case c.Tick > c.Duration:
		return fmt.Errorf("sim: tick (%v) cannot exceed duration (%v)", c.Tick, c.Duration)
	case c.SnapshotInterval <= 0:
		return fmt.Errorf("sim: snapshot_interval must be positive, got %v", c.SnapshotInterval)
	case c.DecayInterval <= 0:
		return fmt.Errorf("sim: decay_interval must be positive, got %v", c.DecayInterval)
	case c.LowBatteryFloor < 0 || c.LowBatteryFloor > 100:
		return fmt.Errorf("sim: low_battery_floor must be in [0,100], got %v", c.LowBatteryFloor)
	case c.FleetSize <= 0:
		return fmt.Errorf("sim: fleet_size must be positive, got %v", c.FleetSize)
	case c.Episodes <= 0:
		return fmt.Errorf("sim: episodes must be positive, got %v", c.Episodes)
	}
	return nil
}

// ToEpisodeConfig converts the loaded config into the episode package's
// runtime knobs.
func (c Config) ToEpisodeConfig() episode.Config {
	return episode.Config{
		Duration:         c.Duration,
		Tick:             c.Tick,
		SnapshotInterval: c.SnapshotInterval,
		SeedBase:         c.SeedBase,
		DecayInterval:    c.DecayInterval,
		LowBatteryFloor:  c.LowBatteryFloor,
		FleetSize:        c.FleetSize,
	}
}
