package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/galkabos/set-card-game/internal/gameid"
)

// Config holds everything the dealer and players need to run one game
type Config struct {
	ID string // game identifier, generated by New when empty

	Rows        int
	Columns     int
	FeatureSize int
	DeckSize    int

	Countdown     time.Duration // length of one dealing round
	Warning       time.Duration // countdown enters warning mode at or below this
	PointFreeze   time.Duration
	PenaltyFreeze time.Duration

	PollInterval        time.Duration // dealer wait between countdown refreshes
	WarningPollInterval time.Duration // same, inside the warning window
	FreezeTick          time.Duration // freeze display cadence
	AIDelay             time.Duration // pause between synthetic key presses, zero for none

	Seed    int64
	Players []PlayerSpec
}

// PlayerSpec describes one seat
type PlayerSpec struct {
	Name  string
	Human bool
}

// DefaultConfig returns the classic 3x4 table with the given seats
func DefaultConfig(players ...PlayerSpec) Config {
	return Config{
		Rows:                3,
		Columns:             4,
		FeatureSize:         3,
		DeckSize:            81,
		Countdown:           60 * time.Second,
		Warning:             5 * time.Second,
		PointFreeze:         1 * time.Second,
		PenaltyFreeze:       3 * time.Second,
		PollInterval:        900 * time.Millisecond,
		WarningPollInterval: 10 * time.Millisecond,
		FreezeTick:          1 * time.Second,
		AIDelay:             250 * time.Millisecond,
		Players:             players,
	}
}

// Slots returns the number of board positions
func (c Config) Slots() int {
	return c.Rows * c.Columns
}

// Validate reports the first configuration problem found
func (c Config) Validate() error {
	var errs []error

	if c.Rows < 1 || c.Columns < 1 {
		errs = append(errs, fmt.Errorf("board must have at least one row and column, got %dx%d", c.Rows, c.Columns))
	}
	if c.FeatureSize < 2 {
		errs = append(errs, fmt.Errorf("feature size must be at least 2, got %d", c.FeatureSize))
	}
	if c.Slots() < c.FeatureSize {
		errs = append(errs, fmt.Errorf("board of %d slots cannot hold a set of %d", c.Slots(), c.FeatureSize))
	}
	if c.DeckSize < 0 {
		errs = append(errs, fmt.Errorf("deck size must not be negative, got %d", c.DeckSize))
	}
	if c.Countdown <= 0 {
		errs = append(errs, errors.New("countdown must be positive"))
	}
	if c.Warning < 0 || c.Warning > c.Countdown {
		errs = append(errs, fmt.Errorf("warning %v must be between 0 and countdown %v", c.Warning, c.Countdown))
	}
	if c.PointFreeze < 0 || c.PenaltyFreeze < 0 {
		errs = append(errs, errors.New("freeze durations must not be negative"))
	}
	if c.PollInterval <= 0 || c.WarningPollInterval <= 0 || c.FreezeTick <= 0 {
		errs = append(errs, errors.New("poll intervals and freeze tick must be positive"))
	}
	if c.AIDelay < 0 {
		errs = append(errs, errors.New("ai delay must not be negative"))
	}
	if len(c.Players) == 0 {
		errs = append(errs, errors.New("at least one player is required"))
	}
	if c.ID != "" {
		if err := gameid.Validate(c.ID); err != nil {
			errs = append(errs, fmt.Errorf("game id: %w", err))
		}
	}

	return errors.Join(errs...)
}
