package cmd

import (
	"github.com/spf13/cobra"

	"github.com/warehouse-sim/warehouse-sim/sim"
)

// loadRunConfig builds the effective sim.Config for `run`: start from
// --config (or the documented defaults if unset), then apply any flag the
// caller explicitly set on top.
func loadRunConfig(cmd *cobra.Command) (sim.Config, error) {
	cfg := sim.DefaultConfig()
	if configPath != "" {
		var err error
		cfg, err = sim.LoadConfig(configPath)
		if err != nil {
			return sim.Config{}, err
		}
	}
	applyFlagOverrides(cmd, &cfg)
	return cfg, nil
}

// applyFlagOverrides copies only the flags the user actually set on the
// command line into cfg, so an unset flag never clobbers a config-file value
// with its zero default.
func applyFlagOverrides(cmd *cobra.Command, cfg *sim.Config) {
	f := cmd.Flags()
	if f.Changed("duration") {
		cfg.Duration = duration
	}
	if f.Changed("tick") {
		cfg.Tick = tick
	}
	if f.Changed("snapshot-interval") {
		cfg.SnapshotInterval = snapshotInterval
	}
	if f.Changed("seed-base") {
		cfg.SeedBase = seedBase
	}
	if f.Changed("decay-interval") {
		cfg.DecayInterval = decayInterval
	}
	if f.Changed("low-battery-floor") {
		cfg.LowBatteryFloor = lowBatteryFloor
	}
	if f.Changed("fleet-size") {
		cfg.FleetSize = fleetSize
	}
	if f.Changed("episodes") {
		cfg.Episodes = episodes
	}
	if f.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if f.Changed("log-file") {
		cfg.LogFile = logFile
	}
	if f.Changed("telemetry-dir") {
		cfg.TelemetryDir = telemetryDir
	}
	if f.Changed("telemetry-gzip") {
		cfg.TelemetryGzip = telemetryGzip
	}
}
