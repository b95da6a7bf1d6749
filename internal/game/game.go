// Package game runs the dealer and player actors. The dealer owns the deck and
// the countdown; players race to claim sets on a shared board and block on the
// dealer's verdict after every full selection.
package game

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/galkabos/set-card-game/internal/board"
	"github.com/galkabos/set-card-game/internal/cards"
	"github.com/galkabos/set-card-game/internal/display"
	"github.com/galkabos/set-card-game/internal/gameid"
	"github.com/galkabos/set-card-game/internal/randutil"
	"github.com/galkabos/set-card-game/internal/statistics"
)

// ErrAlreadyRun is returned when Run is called a second time
var ErrAlreadyRun = errors.New("game already run")

// Game wires a board, a dealer and its players together
type Game struct {
	ID string

	cfg     Config
	board   *board.Board
	dealer  *Dealer
	players []*Player
	stats   *statistics.Tracker
	logger  *log.Logger
	ran     atomic.Bool
}

// New validates cfg and builds a game ready to Run. A nil display discards
// notifications; a nil clock uses the real clock.
func New(cfg Config, rules cards.Rules, d display.Display, logger *log.Logger, clock quartz.Clock) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid game config: %w", err)
	}
	if rules == nil {
		return nil, errors.New("rules are required")
	}
	if d == nil {
		d = display.Nop{}
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	id := cfg.ID
	if id == "" {
		id = gameid.Generate()
		cfg.ID = id
	}
	logger = logger.With("game", gameid.Short(id))
	rng := randutil.New(cfg.Seed)

	b := board.New(cfg.Slots(), len(cfg.Players), cfg.FeatureSize, d)
	dealer := newDealer(cfg, b, rules, d, logger, clock, rng)

	g := &Game{
		ID:     id,
		cfg:    cfg,
		board:  b,
		dealer: dealer,
		stats:  statistics.NewTracker(len(cfg.Players)),
		logger: logger,
	}

	for i, spec := range cfg.Players {
		p := newPlayer(i, spec, cfg, b, dealer, d, g.stats, logger, clock)
		if !spec.Human {
			p.generator = newGenerator(p, randutil.Derive(rng), cfg.Slots(), cfg.AIDelay, clock, logger)
		}
		g.players = append(g.players, p)
	}
	dealer.players = g.players

	return g, nil
}

// Run plays the game to completion. It returns when no set remains, or when
// ctx is cancelled or RequestStop is called; a stop is not an error.
func (g *Game) Run(ctx context.Context) error {
	if !g.ran.CompareAndSwap(false, true) {
		return ErrAlreadyRun
	}
	g.logger.Info("Game starting", "id", g.ID, "players", len(g.players))
	winners := g.dealer.Run(ctx)
	g.logger.Info("Game over", "winners", winners, "scores", g.Scores())
	return nil
}

// RequestStop asks the dealer to end the game
func (g *Game) RequestStop() {
	g.dealer.RequestStop()
}

// Board returns the shared board
func (g *Game) Board() *board.Board { return g.board }

// Dealer returns the game's dealer
func (g *Game) Dealer() *Dealer { return g.dealer }

// Config returns the configuration the game was built with
func (g *Game) Config() Config { return g.cfg }

// Players returns every player in seat order
func (g *Game) Players() []*Player { return g.players }

// Player returns the player in seat id, or nil
func (g *Game) Player(id int) *Player {
	if id < 0 || id >= len(g.players) {
		return nil
	}
	return g.players[id]
}

// Scores returns each player's current score in seat order
func (g *Game) Scores() []int {
	scores := make([]int, len(g.players))
	for i, p := range g.players {
		scores[i] = p.Score()
	}
	return scores
}

// CurrentScore returns the score of player id, or zero for an unknown seat
func (g *Game) CurrentScore(id int) int {
	if p := g.Player(id); p != nil {
		return p.Score()
	}
	return 0
}

// Statistics returns one player's adjudication history
func (g *Game) Statistics(id int) statistics.Statistics {
	return g.stats.Player(id)
}

// Winners returns the players tied at the top score after Run returns
func (g *Game) Winners() []int {
	return g.dealer.Winners()
}

// Results summarises a finished game
type Results struct {
	GameID  string         `json:"game_id"`
	Winners []string       `json:"winners"`
	Scores  map[string]int `json:"scores"`

	Stats map[string]statistics.Summary `json:"stats,omitempty"`
}

// Results reports the winners by name and every player's score
func (g *Game) Results() Results {
	r := Results{
		GameID:  g.ID,
		Winners: []string{},
		Scores:  make(map[string]int, len(g.players)),
		Stats:   make(map[string]statistics.Summary, len(g.players)),
	}
	for _, id := range g.Winners() {
		r.Winners = append(r.Winners, g.players[id].Name())
	}
	summaries := g.stats.Summaries()
	for i, p := range g.players {
		r.Scores[p.Name()] = p.Score()
		r.Stats[p.Name()] = summaries[i]
	}
	return r
}
