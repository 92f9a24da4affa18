package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	cfg, err := Load(home)
	require.NoError(t, err)

	assert.Equal(t, home, cfg.RootDir)
	assert.Equal(t, 15*time.Second, cfg.Chain.Timeout)
	assert.Equal(t, 20.0, cfg.Vote.RegenPerDay)
	assert.Equal(t, 0.01, cfg.Vote.MinWeight)
	assert.Equal(t, "full", cfg.Vote.HistoryFallback)
	assert.Equal(t, filepath.Join(home, "data", "runs.db"), cfg.Store.Path)

	// no agent name yet
	assert.Error(t, cfg.ValidateBasic())
}

func TestWriteConfigFileRoundTrip(t *testing.T) {
	home := t.TempDir()
	cfg := DefaultConfig(home)
	cfg.Agent.Name = "counter.agent"
	cfg.Chain.Timeout = 7 * time.Second
	cfg.Vote.MinWeight = 0.5
	cfg.Vote.DryRun = true
	require.NoError(t, EnsureRoot(cfg))
	WriteConfigFile(cfg.ConfigFile(), cfg)

	loaded, err := Load(home)
	require.NoError(t, err)
	assert.Equal(t, "counter.agent", loaded.Agent.Name)
	assert.Equal(t, 7*time.Second, loaded.Chain.Timeout)
	assert.Equal(t, 0.5, loaded.Vote.MinWeight)
	assert.True(t, loaded.Vote.DryRun)
	assert.Equal(t, cfg.Vote.Args, loaded.Vote.Args)
	assert.NoError(t, loaded.ValidateBasic())
}

func TestLoadEnvOverride(t *testing.T) {
	home := t.TempDir()
	t.Setenv("COUNTERFLAG_AGENT_NAME", "env.agent")
	t.Setenv("COUNTERFLAG_VOTE_REGEN_PER_DAY", "25")

	cfg, err := Load(home)
	require.NoError(t, err)
	assert.Equal(t, "env.agent", cfg.Agent.Name)
	assert.Equal(t, 25.0, cfg.Vote.RegenPerDay)
}

func TestLoadBrokenFile(t *testing.T) {
	home := t.TempDir()
	cfg := DefaultConfig(home)
	require.NoError(t, EnsureRoot(cfg))
	require.NoError(t, os.WriteFile(cfg.ConfigFile(), []byte("[agent\nname ="), 0o600))

	_, err := Load(home)
	assert.Error(t, err)
}

func TestValidateBasic(t *testing.T) {
	assert := assert.New(t)

	cfg := DefaultConfig(t.TempDir())
	cfg.Agent.Name = "agent"
	assert.NoError(cfg.ValidateBasic())

	cfg.Chain.HistoryLimit = MaxHistoryLimit + 1
	assert.Error(cfg.ValidateBasic())
	cfg.Chain.HistoryLimit = 0
	assert.Error(cfg.ValidateBasic())
	cfg.Chain.HistoryLimit = MaxHistoryLimit
	assert.NoError(cfg.ValidateBasic())

	cfg.Vote.MinWeight = 150
	assert.Error(cfg.ValidateBasic())
	cfg.Vote.MinWeight = 0.01

	cfg.Vote.Command = ""
	assert.Error(cfg.ValidateBasic())
	cfg.Vote.DryRun = true
	assert.NoError(cfg.ValidateBasic())

	cfg.Chain.Timeout = 0
	assert.Error(cfg.ValidateBasic())
}
