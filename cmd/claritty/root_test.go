package main

import (
	"testing"
	"time"

	"github.com/GriffinCanCode/claritty/internal/infrastructure/config"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		rootCmd.Flags().VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	})
}

func TestLoadConfigFlagsOverrideEnvironment(t *testing.T) {
	resetFlags(t)
	t.Setenv("CLARITTY_SHELL", "fish")
	t.Setenv("LOOP_MODE", "tick")
	t.Setenv("PORT", "9999")

	require.NoError(t, rootCmd.ParseFlags([]string{
		"--shell", "bash",
		"--mode", "event",
		"--tick", "8ms",
		"--http",
		"--log-level", "debug",
	}))

	cfg, err := loadConfig(rootCmd)
	require.NoError(t, err)

	assert.Equal(t, "bash", cfg.Terminal.Shell)
	assert.Equal(t, config.ModeEvent, cfg.Loop.Mode)
	assert.Equal(t, 8*time.Millisecond, cfg.Loop.TickInterval)
	assert.True(t, cfg.Server.Enabled)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Unset flags leave the environment alone.
	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Loop.MetricsLogInterval)
}

func TestLoadConfigRejectsInvalidFlag(t *testing.T) {
	resetFlags(t)

	require.NoError(t, rootCmd.ParseFlags([]string{"--mode", "busy"}))

	_, err := loadConfig(rootCmd)
	assert.Error(t, err)
}

func TestLoadConfigFlagsRepairInvalidEnvironment(t *testing.T) {
	resetFlags(t)
	t.Setenv("LOOP_MODE", "busy")
	t.Setenv("TICK_INTERVAL", "0s")

	_, err := loadConfig(rootCmd)
	require.Error(t, err)

	require.NoError(t, rootCmd.ParseFlags([]string{"--mode", "event", "--tick", "10ms"}))

	cfg, err := loadConfig(rootCmd)
	require.NoError(t, err)
	assert.Equal(t, config.ModeEvent, cfg.Loop.Mode)
	assert.Equal(t, 10*time.Millisecond, cfg.Loop.TickInterval)
}

func TestRootCommandRejectsArguments(t *testing.T) {
	assert.Error(t, rootCmd.Args(rootCmd, []string{"extra"}))
}
