package game

import (
	"context"
	rand "math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/galkabos/set-card-game/internal/board"
	"github.com/galkabos/set-card-game/internal/cards"
	"github.com/galkabos/set-card-game/internal/display"
)

// Dealer owns the deck and the countdown, and is the only writer of card
// placement. Players hand it candidate sets through a bounded FIFO channel.
type Dealer struct {
	cfg     Config
	board   *board.Board
	rules   cards.Rules
	display display.Display
	logger  *log.Logger
	clock   quartz.Clock
	rng     *rand.Rand

	players  []*Player
	requests chan int

	mu       sync.Mutex // guards deck, deadline and winners
	deck     []cards.Card
	deadline time.Time

	phase    atomic.Int32
	stop     chan struct{}
	stopOnce sync.Once

	winners []int
}

func newDealer(cfg Config, b *board.Board, rules cards.Rules, d display.Display, logger *log.Logger, clock quartz.Clock, rng *rand.Rand) *Dealer {
	return &Dealer{
		cfg:      cfg,
		board:    b,
		rules:    rules,
		display:  d,
		logger:   logger.WithPrefix("dealer"),
		clock:    clock,
		rng:      rng,
		requests: make(chan int, len(cfg.Players)),
		deck:     cards.Deck(cfg.DeckSize),
		stop:     make(chan struct{}),
	}
}

// Run executes the master loop until no set remains or ctx/RequestStop ends
// the game. Players are started on entry and stopped before winners are
// announced.
func (d *Dealer) Run(ctx context.Context) []int {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-d.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	d.logger.Info("Dealer starting", "players", len(d.players), "deck", d.DeckSize(), "slots", d.board.Slots())

	d.reshuffle()
	for _, p := range d.players {
		p.start(ctx)
	}

	for !d.shouldFinish(ctx) {
		d.setPhase(PhaseDealing)
		d.placeCards()

		d.setPhase(PhaseCountingDown)
		d.countdown(ctx)

		d.setPhase(PhaseCollecting)
		d.collect()
	}

	d.setPhase(PhaseFinished)
	d.stopPlayers()
	winners := d.announceWinners()

	d.mu.Lock()
	d.winners = winners
	d.mu.Unlock()

	d.logger.Info("Dealer finished", "winners", winners, "maxScore", d.MaxScore())
	return winners
}

// Winners returns the players tied at the top score once Run has finished
func (d *Dealer) Winners() []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]int(nil), d.winners...)
}

// RequestStop asks the dealer to finish. It is safe to call from any goroutine
// and more than once.
func (d *Dealer) RequestStop() {
	d.stopOnce.Do(func() {
		d.logger.Info("Stop requested")
		close(d.stop)
	})
}

// Submit queues a player's request for adjudication. It blocks while the
// channel is full and returns ctx.Err() if ctx ends first.
func (d *Dealer) Submit(ctx context.Context, playerID int) error {
	select {
	case d.requests <- playerID:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dealer) setPhase(p Phase) {
	d.phase.Store(int32(p))
	d.logger.Debug("Phase", "phase", p)
}

// Phase returns the dealer's current phase
func (d *Dealer) Phase() Phase {
	return Phase(d.phase.Load())
}

func (d *Dealer) shouldFinish(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}

	d.mu.Lock()
	remaining := append(append([]cards.Card(nil), d.deck...), d.board.Cards()...)
	d.mu.Unlock()

	if !d.rules.AnyValidSetExists(remaining, 1) {
		d.logger.Info("No set remains", "cards", len(remaining))
		return true
	}
	return false
}

// placeCards fills every empty slot from the front of the deck until the board
// is full or the deck runs out.
func (d *Dealer) placeCards() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	placed := 0
	for _, slot := range d.board.EmptySlots() {
		for len(d.deck) > 0 {
			card := d.deck[0]
			d.deck = d.deck[1:]
			if d.board.SlotOf(card) >= 0 {
				continue
			}
			if err := d.board.Place(slot, card); err != nil {
				d.logger.Warn("Failed to place card", "card", card, "slot", slot, "error", err)
				continue
			}
			placed++
			break
		}
	}

	if placed > 0 {
		d.logger.Debug("Placed cards", "count", placed, "deck", len(d.deck))
	}
	return placed
}

// collect returns every card on the board to the deck, clears all selections
// and reshuffles.
func (d *Dealer) collect() {
	removed := d.board.RemoveAll()

	d.mu.Lock()
	d.deck = append(d.deck, removed...)
	d.mu.Unlock()

	for _, p := range d.players {
		p.returningFromPenalty.Store(false)
	}
	d.reshuffle()

	d.logger.Debug("Collected cards", "count", len(removed), "deck", d.DeckSize())
}

func (d *Dealer) reshuffle() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rng.Shuffle(len(d.deck), func(i, j int) {
		d.deck[i], d.deck[j] = d.deck[j], d.deck[i]
	})
}

func (d *Dealer) resetDeadline() {
	d.mu.Lock()
	d.deadline = d.clock.Now("dealer", "deadline").Add(d.cfg.Countdown)
	d.mu.Unlock()
	d.display.SetCountdown(d.cfg.Countdown, d.cfg.Countdown <= d.cfg.Warning)
}

func (d *Dealer) remaining() time.Duration {
	d.mu.Lock()
	deadline := d.deadline
	d.mu.Unlock()
	return d.clock.Until(deadline, "dealer", "remaining")
}

// pollInterval is how long the dealer waits for a request before refreshing
// the countdown display.
func (d *Dealer) pollInterval(remaining time.Duration) time.Duration {
	wait := d.cfg.PollInterval
	if remaining <= d.cfg.Warning {
		wait = d.cfg.WarningPollInterval
	}
	if wait > remaining {
		wait = remaining
	}
	return wait
}

// countdown runs one round: it adjudicates requests as they arrive and returns
// when the deadline passes, the board holds no set, or ctx ends.
func (d *Dealer) countdown(ctx context.Context) {
	d.resetDeadline()

	for {
		remaining := d.remaining()
		if remaining <= 0 {
			d.logger.Debug("Countdown elapsed")
			break
		}
		d.display.SetCountdown(remaining, remaining <= d.cfg.Warning)

		timer := d.clock.NewTimer(d.pollInterval(remaining), "dealer", "poll")
		select {
		case <-ctx.Done():
			timer.Stop()
			return

		case id := <-d.requests:
			timer.Stop()
			d.checkCandidate(id)

		case <-timer.C:
			if !d.rules.AnyValidSetExists(d.board.Cards(), 1) {
				d.logger.Debug("No set on the board, collecting early")
				d.display.SetCountdown(0, true)
				return
			}
		}
	}

	d.display.SetCountdown(0, true)
}

// checkCandidate adjudicates the player's live selection and delivers the
// verdict to that player.
func (d *Dealer) checkCandidate(playerID int) Verdict {
	if playerID < 0 || playerID >= len(d.players) {
		d.logger.Warn("Request from unknown player", "player", playerID)
		return VerdictMalformed
	}

	verdict := d.adjudicate(playerID)
	d.logger.Info("Adjudicated", "player", playerID, "verdict", verdict)
	d.players[playerID].deliver(verdict)
	return verdict
}

func (d *Dealer) adjudicate(playerID int) Verdict {
	slots, picked, ok := d.board.Candidate(playerID)
	if !ok {
		d.logger.Debug("Malformed candidate", "player", playerID, "slots", slots)
		return VerdictMalformed
	}
	if !d.rules.IsValidSet(picked) {
		return VerdictInvalid
	}

	for _, slot := range slots {
		d.board.Remove(slot)
	}
	d.placeCards()
	d.resetDeadline()
	return VerdictValid
}

func (d *Dealer) stopPlayers() {
	for i := len(d.players) - 1; i >= 0; i-- {
		d.players[i].stop()
		d.logger.Debug("Player stopped", "player", i)
	}
}

// MaxScore returns the highest score across players
func (d *Dealer) MaxScore() int {
	best := 0
	for _, p := range d.players {
		if s := p.Score(); s > best {
			best = s
		}
	}
	return best
}

func (d *Dealer) announceWinners() []int {
	best := d.MaxScore()
	var winners []int
	for _, p := range d.players {
		if p.Score() == best {
			winners = append(winners, p.ID())
		}
	}
	d.display.AnnounceWinners(winners)
	return winners
}

// DeckSize returns the number of cards neither on the board nor claimed
func (d *Dealer) DeckSize() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.deck)
}

// Remaining returns the number of cards still in play, on or off the board
func (d *Dealer) Remaining() int {
	return d.DeckSize() + d.board.CountOccupiedSlots()
}
