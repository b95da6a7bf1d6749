package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/galkabos/set-card-game/internal/cards"
	"github.com/galkabos/set-card-game/internal/game"
)

// DefaultKeyLayouts are assigned in order to human players without their own
// keys. Each layout is three rows of layoutColumns keys; smaller boards use its
// top-left corner.
var DefaultKeyLayouts = []string{"qwerasdfzxcv", "uiopjkl;m,./"}

const layoutColumns = 4

// Config represents the complete game configuration
type Config struct {
	Game    *GameSettings    `hcl:"game,block"`
	Players []PlayerConfig   `hcl:"player,block"`
	Logging *LoggingSettings `hcl:"logging,block"`
	Feed    *FeedSettings    `hcl:"feed,block"`
	Results *ResultsSettings `hcl:"results,block"`
}

// GameSettings contains table dimensions and timing. Durations are Go
// duration strings such as "60s" or "900ms".
type GameSettings struct {
	Rows         int    `hcl:"rows,optional"`
	Columns      int    `hcl:"columns,optional"`
	FeatureSize  int    `hcl:"feature_size,optional"`
	FeatureCount int    `hcl:"feature_count,optional"`
	DeckSize     int    `hcl:"deck_size,optional"`
	Seed         int64  `hcl:"seed,optional"`
	Countdown    string `hcl:"countdown,optional"`
	Warning      string `hcl:"warning,optional"`

	PointFreeze         string `hcl:"point_freeze,optional"`
	PenaltyFreeze       string `hcl:"penalty_freeze,optional"`
	PollInterval        string `hcl:"poll_interval,optional"`
	WarningPollInterval string `hcl:"warning_poll_interval,optional"`
	FreezeTick          string `hcl:"freeze_tick,optional"`
	AIDelay             string `hcl:"ai_delay,optional"`
}

// PlayerConfig defines one seat at the table
type PlayerConfig struct {
	Name  string `hcl:"name,label"`
	Human bool   `hcl:"human,optional"`
	Keys  string `hcl:"keys,optional"`
}

// LoggingSettings controls log verbosity and destination
type LoggingSettings struct {
	Level string `hcl:"level,optional"`
	File  string `hcl:"file,optional"`
}

// FeedSettings configures the spectator websocket feed. An empty address
// disables it.
type FeedSettings struct {
	Address string `hcl:"address,optional"`
}

// ResultsSettings names the file the final scores are written to
type ResultsSettings struct {
	File string `hcl:"file,optional"`
}

// Default returns the classic table with one human and one computer player
func Default() *Config {
	g := game.DefaultConfig()
	cfg := &Config{
		Game: &GameSettings{
			Rows:                g.Rows,
			Columns:             g.Columns,
			FeatureSize:         g.FeatureSize,
			FeatureCount:        4,
			DeckSize:            g.DeckSize,
			Countdown:           g.Countdown.String(),
			Warning:             g.Warning.String(),
			PointFreeze:         g.PointFreeze.String(),
			PenaltyFreeze:       g.PenaltyFreeze.String(),
			PollInterval:        g.PollInterval.String(),
			WarningPollInterval: g.WarningPollInterval.String(),
			FreezeTick:          g.FreezeTick.String(),
			AIDelay:             g.AIDelay.String(),
		},
		Players: defaultPlayers(),
		Logging: &LoggingSettings{Level: "info"},
		Feed:    &FeedSettings{},
		Results: &ResultsSettings{},
	}
	cfg.assignKeys()
	return cfg
}

func defaultPlayers() []PlayerConfig {
	return []PlayerConfig{
		{Name: "you", Human: true},
		{Name: "bot", Human: false},
	}
}

// Load reads configuration from an HCL file. A missing file yields the
// defaults.
func Load(filename string) (*Config, error) {
	src, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(src, filename)
}

// Parse decodes HCL source and applies defaults for missing values
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()

	if c.Game == nil {
		c.Game = def.Game
	} else {
		g, d := c.Game, def.Game
		setInt(&g.Rows, d.Rows)
		setInt(&g.Columns, d.Columns)
		setInt(&g.FeatureSize, d.FeatureSize)
		setInt(&g.FeatureCount, d.FeatureCount)
		if g.DeckSize == 0 {
			// the full deck for the configured dimensions
			g.DeckSize = cards.NewClassic(g.FeatureSize, g.FeatureCount).DeckSize()
		}
		setString(&g.Countdown, d.Countdown)
		setString(&g.Warning, d.Warning)
		setString(&g.PointFreeze, d.PointFreeze)
		setString(&g.PenaltyFreeze, d.PenaltyFreeze)
		setString(&g.PollInterval, d.PollInterval)
		setString(&g.WarningPollInterval, d.WarningPollInterval)
		setString(&g.FreezeTick, d.FreezeTick)
		setString(&g.AIDelay, d.AIDelay)
	}

	if len(c.Players) == 0 {
		c.Players = defaultPlayers()
	}
	c.assignKeys()

	if c.Logging == nil {
		c.Logging = def.Logging
	}
	setString(&c.Logging.Level, def.Logging.Level)
	if c.Feed == nil {
		c.Feed = def.Feed
	}
	if c.Results == nil {
		c.Results = def.Results
	}
}

// assignKeys gives human players without keys the next default layout that
// fits the board and shares no key with a binding already made.
func (c *Config) assignKeys() {
	if c.Game == nil {
		return
	}
	used := make(map[rune]bool)
	for _, p := range c.Players {
		for _, r := range p.Keys {
			used[r] = true
		}
	}

	layouts := DefaultKeyLayouts
	for i := range c.Players {
		p := &c.Players[i]
		if !p.Human || p.Keys != "" {
			continue
		}
		for len(layouts) > 0 {
			keys, ok := fitLayout(layouts[0], c.Game.Rows, c.Game.Columns)
			layouts = layouts[1:]
			if !ok || strings.ContainsFunc(keys, func(r rune) bool { return used[r] }) {
				continue
			}
			p.Keys = keys
			for _, r := range keys {
				used[r] = true
			}
			break
		}
	}
}

// fitLayout cuts a default layout down to a rows x columns board
func fitLayout(layout string, rows, columns int) (string, bool) {
	keys := []rune(layout)
	if rows < 1 || columns < 1 || columns > layoutColumns || rows*layoutColumns > len(keys) {
		return "", false
	}
	var b strings.Builder
	for r := 0; r < rows; r++ {
		b.WriteString(string(keys[r*layoutColumns : r*layoutColumns+columns]))
	}
	return b.String(), true
}

func setInt(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}

func setString(v *string, def string) {
	if *v == "" {
		*v = def
	}
}

// SetPlayers replaces the configured seats with the given number of humans
// and computer players, in that order.
func (c *Config) SetPlayers(humans, bots int) {
	players := make([]PlayerConfig, 0, humans+bots)
	for i := 0; i < humans; i++ {
		players = append(players, PlayerConfig{Name: fmt.Sprintf("human%d", i+1), Human: true})
	}
	for i := 0; i < bots; i++ {
		players = append(players, PlayerConfig{Name: fmt.Sprintf("bot%d", i+1)})
	}
	c.Players = players
	c.assignKeys()
}

// Rules returns the classic deck rules for the configured dimensions
func (c *Config) Rules() cards.Classic {
	return cards.NewClassic(c.Game.FeatureSize, c.Game.FeatureCount)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Game == nil || c.Logging == nil {
		return errors.New("config is missing defaults")
	}

	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging: %w", err)
	}

	if c.Game.FeatureCount < 1 {
		return fmt.Errorf("feature count must be positive, got %d", c.Game.FeatureCount)
	}
	if full := c.Rules().DeckSize(); c.Game.DeckSize > full {
		return fmt.Errorf("deck size %d exceeds the %d distinct cards", c.Game.DeckSize, full)
	}

	slots := c.Game.Rows * c.Game.Columns
	names := make(map[string]bool)
	keys := make(map[rune]string)
	for _, p := range c.Players {
		if p.Name == "" {
			return errors.New("player name must not be empty")
		}
		if names[p.Name] {
			return fmt.Errorf("duplicate player %q", p.Name)
		}
		names[p.Name] = true

		if p.Keys == "" {
			continue
		}
		if !p.Human {
			return fmt.Errorf("player %s: keys are only used by human players", p.Name)
		}
		if n := len([]rune(p.Keys)); n != slots {
			return fmt.Errorf("player %s: %d keys for %d slots", p.Name, n, slots)
		}
		for _, r := range p.Keys {
			if owner, ok := keys[r]; ok {
				return fmt.Errorf("player %s: key %q already bound to %s", p.Name, r, owner)
			}
			keys[r] = p.Name
		}
	}

	gc, err := c.GameConfig()
	if err != nil {
		return err
	}
	return gc.Validate()
}

// CheckHumanKeys reports human players that have no keys to play with. Run it
// when the terminal UI is the only source of human input.
func (c *Config) CheckHumanKeys() error {
	var errs []error
	for _, p := range c.Players {
		if p.Human && p.Keys == "" {
			errs = append(errs, fmt.Errorf("player %s: no keys for a %dx%d board, set keys explicitly",
				p.Name, c.Game.Rows, c.Game.Columns))
		}
	}
	return errors.Join(errs...)
}

// GameConfig converts the file settings into the runtime game configuration
func (c *Config) GameConfig() (game.Config, error) {
	g := c.Game
	var errs []error
	duration := func(field, value string) time.Duration {
		d, err := time.ParseDuration(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("game.%s: %w", field, err))
		}
		return d
	}

	cfg := game.Config{
		Rows:                g.Rows,
		Columns:             g.Columns,
		FeatureSize:         g.FeatureSize,
		DeckSize:            g.DeckSize,
		Countdown:           duration("countdown", g.Countdown),
		Warning:             duration("warning", g.Warning),
		PointFreeze:         duration("point_freeze", g.PointFreeze),
		PenaltyFreeze:       duration("penalty_freeze", g.PenaltyFreeze),
		PollInterval:        duration("poll_interval", g.PollInterval),
		WarningPollInterval: duration("warning_poll_interval", g.WarningPollInterval),
		FreezeTick:          duration("freeze_tick", g.FreezeTick),
		AIDelay:             duration("ai_delay", g.AIDelay),
		Seed:                g.Seed,
	}
	for _, p := range c.Players {
		cfg.Players = append(cfg.Players, game.PlayerSpec{Name: p.Name, Human: p.Human})
	}

	if err := errors.Join(errs...); err != nil {
		return game.Config{}, err
	}
	return cfg, nil
}

// KeyMap maps each bound key to its player index and slot
func (c *Config) KeyMap() map[string]Binding {
	m := make(map[string]Binding)
	for i, p := range c.Players {
		for slot, r := range []rune(p.Keys) {
			m[strings.ToLower(string(r))] = Binding{Player: i, Slot: slot}
		}
	}
	return m
}

// Binding is the target of a key press
type Binding struct {
	Player int
	Slot   int
}
