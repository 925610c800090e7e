package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/warehouse-sim/warehouse-sim/sim"
	"github.com/warehouse-sim/warehouse-sim/sim/episode"
	"github.com/warehouse-sim/warehouse-sim/sim/protocol"
)

var (
	configPath string

	// CLI flags mirrored onto sim.Config; see applyFlagOverrides.
	duration         float64
	tick             float64
	snapshotInterval float64
	seedBase         int64
	decayInterval    float64
	lowBatteryFloor  float64
	fleetSize        int
	episodes         int
	logLevel         string
	logFile          string
	telemetryDir     string
	telemetryGzip    bool
)

// rootCmd is the base command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "warehouse-sim",
	Short: "Discrete-event warehouse simulator driving an RL agent over stdio",
}

// runCmd drives episodes against the policy connected on stdin/stdout.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the warehouse simulation, exchanging NDJSON with the policy on stdio",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadRunConfig(cmd)
		if err != nil {
			logrus.Fatalf("unable to load config: %v", err)
		}
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("invalid config: %v", err)
		}

		level, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			logrus.Fatalf("invalid log level: %s", cfg.LogLevel)
		}
		logrus.SetLevel(level)
		if cfg.LogFile != "" {
			f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				logrus.Fatalf("unable to open log file %s: %v", cfg.LogFile, err)
			}
			defer f.Close()
			logrus.SetOutput(f)
		}

		runID := uuid.New().String()
		logrus.WithFields(logrus.Fields{
			"run_id":        runID,
			"duration":      cfg.Duration,
			"tick":          cfg.Tick,
			"fleet_size":    cfg.FleetSize,
			"episode_count": cfg.Episodes,
		}).Info("starting warehouse simulation")

		startTime := time.Now()
		runEpisodes(cfg, runID)
		logrus.WithField("elapsed", time.Since(startTime)).Info("simulation complete")
	},
}

func runEpisodes(cfg sim.Config, runID string) {
	enc := protocol.NewEncoder(os.Stdout)
	dec := protocol.NewDecoder(os.Stdin)
	driver := episode.NewDriver(cfg.ToEpisodeConfig(), enc, dec)

	for i := 0; i < cfg.Episodes; i++ {
		next, err := driver.RunEpisode()
		if err != nil {
			logrus.Fatalf("episode %d failed: %v", i, err)
		}

		if cfg.TelemetryDir != "" {
			writeEpisodeTelemetry(driver, cfg, i)
		}

		m := driver.Logger.Metrics()
		logrus.WithFields(logrus.Fields{
			"run_id":           runID,
			"episode":          i,
			"orders_completed": humanize.Comma(int64(m.OrdersCompleted)),
			"orders_failed":    humanize.Comma(int64(m.OrdersFailed)),
		}).Infof("episode %d complete: %s seconds simulated", i, humanize.Comma(int64(cfg.Duration)))

		if next == -1 {
			logrus.Info("policy closed the channel, exiting cleanly")
			return
		}
	}
}

func writeEpisodeTelemetry(driver *episode.Driver, cfg sim.Config, episodeNumber int) {
	doc := driver.BuildTelemetryDocument(episodeNumber)
	name := fmt.Sprintf("episode_%04d.json", episodeNumber)
	if cfg.TelemetryGzip {
		name += ".gz"
	}
	path := cfg.TelemetryDir + string(os.PathSeparator) + name
	if err := episode.WriteTelemetry(doc, path, cfg.TelemetryGzip); err != nil {
		logrus.WithError(err).Warn("failed to write episode telemetry")
	}
}

// Execute runs the CLI root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file (flags below override its values)")

	runCmd.Flags().Float64Var(&duration, "duration", 0, "Episode duration in seconds")
	runCmd.Flags().Float64Var(&tick, "tick", 0, "Tick size in seconds")
	runCmd.Flags().Float64Var(&snapshotInterval, "snapshot-interval", 0, "Robot snapshot interval in seconds")
	runCmd.Flags().Int64Var(&seedBase, "seed-base", 0, "Base RNG seed; episode N seeds with seed-base+N")
	runCmd.Flags().Float64Var(&decayInterval, "decay-interval", 0, "Popularity decay interval in seconds")
	runCmd.Flags().Float64Var(&lowBatteryFloor, "low-battery-floor", 0, "Battery percentage below which an idle robot reports LOW_BATTERY")
	runCmd.Flags().IntVar(&fleetSize, "fleet-size", 0, "Number of robots in the fleet")
	runCmd.Flags().IntVar(&episodes, "episodes", 0, "Number of episodes to run before exiting")
	runCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&logFile, "log-file", "", "Path to a log file; defaults to stderr")
	runCmd.Flags().StringVar(&telemetryDir, "telemetry-dir", "", "Directory to write per-episode telemetry JSON dumps")
	runCmd.Flags().BoolVar(&telemetryGzip, "telemetry-gzip", false, "Gzip-compress telemetry dumps")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
}
