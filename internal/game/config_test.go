package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig(humans(2)...)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 12, cfg.Slots())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"no players", func(c *Config) { c.Players = nil }, "at least one player"},
		{"empty board", func(c *Config) { c.Rows = 0 }, "at least one row"},
		{"tiny feature", func(c *Config) { c.FeatureSize = 1 }, "feature size"},
		{"set larger than board", func(c *Config) { c.Rows, c.Columns = 1, 2 }, "cannot hold a set"},
		{"negative deck", func(c *Config) { c.DeckSize = -1 }, "deck size"},
		{"zero countdown", func(c *Config) { c.Countdown = 0; c.Warning = 0 }, "countdown must be positive"},
		{"warning past countdown", func(c *Config) { c.Warning = 2 * c.Countdown }, "warning"},
		{"negative freeze", func(c *Config) { c.PenaltyFreeze = -time.Second }, "freeze durations"},
		{"zero tick", func(c *Config) { c.FreezeTick = 0 }, "freeze tick"},
		{"negative ai delay", func(c *Config) { c.AIDelay = -time.Millisecond }, "ai delay"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig(bots(1)...)
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigValidateJoinsErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DeckSize = -3
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deck size")
	assert.Contains(t, err.Error(), "at least one player")
}
