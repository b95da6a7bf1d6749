package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.hcl"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 3, cfg.Game.Rows)
	assert.Equal(t, 81, cfg.Game.DeckSize)
	require.Len(t, cfg.Players, 2)
	assert.True(t, cfg.Players[0].Human)
	assert.Equal(t, "qwerasdfzxcv", cfg.Players[0].Keys)

	gc, err := cfg.GameConfig()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, gc.AIDelay, "computer players are paced by default")
}

func TestLoadFile(t *testing.T) {
	src := `
game {
  rows          = 3
  columns       = 4
  feature_size  = 3
  feature_count = 3
  countdown     = "30s"
  warning       = "3s"
  point_freeze  = "500ms"
  seed          = 42
}

player "alice" {
  human = true
}

player "bob" {
  human = true
}

player "robot" {}

logging {
  level = "debug"
  file  = "setgame.log"
}

feed {
  address = "localhost:9090"
}

results {
  file = "results.json"
}
`
	path := filepath.Join(t.TempDir(), "setgame.hcl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 27, cfg.Game.DeckSize, "deck defaults to every card of the configured dimensions")
	assert.Equal(t, "qwerasdfzxcv", cfg.Players[0].Keys)
	assert.Equal(t, "uiopjkl;m,./", cfg.Players[1].Keys)
	assert.Empty(t, cfg.Players[2].Keys)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "localhost:9090", cfg.Feed.Address)
	assert.Equal(t, "results.json", cfg.Results.File)

	gc, err := cfg.GameConfig()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, gc.Countdown)
	assert.Equal(t, 3*time.Second, gc.Warning)
	assert.Equal(t, 500*time.Millisecond, gc.PointFreeze)
	assert.Equal(t, 3*time.Second, gc.PenaltyFreeze, "unset durations take defaults")
	assert.Equal(t, 900*time.Millisecond, gc.PollInterval)
	assert.Equal(t, int64(42), gc.Seed)
	require.Len(t, gc.Players, 3)
	assert.Equal(t, "robot", gc.Players[2].Name)
	assert.False(t, gc.Players[2].Human)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte(`game {`), "broken.hcl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse HCL file")

	_, err = Parse([]byte(`game { rows = "many" }`), "typed.hcl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode HCL")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad duration", func(c *Config) { c.Game.Countdown = "soon" }, "game.countdown"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging"},
		{"deck too large", func(c *Config) { c.Game.DeckSize = 100 }, "exceeds"},
		{"duplicate name", func(c *Config) { c.Players[1].Name = "you" }, "duplicate player"},
		{"short layout", func(c *Config) { c.Players[0].Keys = "abc" }, "3 keys for 12 slots"},
		{"keys on bot", func(c *Config) { c.Players[1].Keys = "uiopjkl;m,./" }, "only used by human"},
		{"no players", func(c *Config) { c.Players = nil }, "at least one player"},
		{"shared key", func(c *Config) {
			c.Players[1] = PlayerConfig{Name: "two", Human: true, Keys: "qyuiopjklnm,"}
		}, "already bound"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSetPlayers(t *testing.T) {
	cfg := Default()
	cfg.SetPlayers(2, 3)
	require.NoError(t, cfg.Validate())

	require.Len(t, cfg.Players, 5)
	assert.Equal(t, "human1", cfg.Players[0].Name)
	assert.Equal(t, DefaultKeyLayouts[1], cfg.Players[1].Keys)
	assert.Equal(t, "bot3", cfg.Players[4].Name)

	keys := cfg.KeyMap()
	assert.Equal(t, Binding{Player: 0, Slot: 0}, keys["q"])
	assert.Equal(t, Binding{Player: 1, Slot: 11}, keys["/"])
	assert.Len(t, keys, 24)
}

func TestDefaultKeysFitBoard(t *testing.T) {
	tests := []struct {
		name          string
		rows, columns int
		want          []string
	}{
		{"classic", 3, 4, []string{"qwerasdfzxcv", "uiopjkl;m,./"}},
		{"two by three", 2, 3, []string{"qweasd", "uiojkl"}},
		{"single row", 1, 4, []string{"qwer", "uiop"}},
		{"too wide", 3, 5, []string{"", ""}},
		{"too tall", 4, 3, []string{"", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Game.Rows, cfg.Game.Columns = tt.rows, tt.columns
			cfg.SetPlayers(3, 1)

			assert.Equal(t, tt.want[0], cfg.Players[0].Keys)
			assert.Equal(t, tt.want[1], cfg.Players[1].Keys)
			assert.Empty(t, cfg.Players[2].Keys, "only two default layouts")
			assert.Empty(t, cfg.Players[3].Keys)
		})
	}
}

func TestLoadSmallBoardWithoutPlayers(t *testing.T) {
	cfg, err := Parse([]byte(`game {
  rows    = 2
  columns = 3
}`), "small.hcl")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "qweasd", cfg.Players[0].Keys)
	assert.NoError(t, cfg.CheckHumanKeys())
}

func TestAssignKeysSkipsTakenLayout(t *testing.T) {
	cfg := Default()
	cfg.Players = []PlayerConfig{
		{Name: "first", Human: true},
		{Name: "second", Human: true, Keys: "qwerasdfzxcv"},
	}
	cfg.assignKeys()

	assert.Equal(t, "uiopjkl;m,./", cfg.Players[0].Keys)
	require.NoError(t, cfg.Validate())
}

func TestCheckHumanKeys(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.CheckHumanKeys())

	cfg.SetPlayers(3, 0)
	require.NoError(t, cfg.Validate(), "a keyless human is still a valid seat")
	err := cfg.CheckHumanKeys()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "player human3: no keys for a 3x4 board")
	assert.NotContains(t, err.Error(), "human1")
}
