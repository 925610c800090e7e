package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/warehouse-sim/warehouse-sim/sim"
)

// validateCmd checks a YAML config file against sim.Config.Validate without
// running a simulation, mirroring the teacher's pattern of a standalone
// analysis subcommand separate from `run`.
var validateCmd = &cobra.Command{
	Use:   "validate <config.yaml>",
	Short: "Validate a config file without running the simulation",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := sim.LoadConfig(args[0])
		if err != nil {
			fmt.Println("FAIL:", err)
			os.Exit(1)
		}
		if err := cfg.Validate(); err != nil {
			fmt.Println("FAIL:", err)
			os.Exit(1)
		}
		fmt.Printf("OK: %s is valid (duration=%v tick=%v fleet_size=%d episodes=%d)\n",
			args[0], cfg.Duration, cfg.Tick, cfg.FleetSize, cfg.Episodes)
	},
}
