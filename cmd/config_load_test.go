package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/warehouse-sim/warehouse-sim/sim"
)

func TestApplyFlagOverrides_OnlyAppliesChangedFlags(t *testing.T) {
	cfg := sim.DefaultConfig()
	originalDuration := cfg.Duration

	if err := runCmd.Flags().Set("fleet-size", "9"); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}
	defer runCmd.Flags().Set("fleet-size", "0")

	applyFlagOverrides(runCmd, &cfg)

	assert.Equal(t, 9, cfg.FleetSize)
	assert.Equal(t, originalDuration, cfg.Duration, "unset flags must not clobber the loaded/default value")
}
