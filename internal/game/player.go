package game

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/galkabos/set-card-game/internal/board"
	"github.com/galkabos/set-card-game/internal/display"
	"github.com/galkabos/set-card-game/internal/statistics"
)

// referee is the dealer as seen by a player
type referee interface {
	Submit(ctx context.Context, playerID int) error
}

// Player consumes slot presses from its intake, toggles tokens on the board,
// and once its selection is full asks the dealer for a verdict.
type Player struct {
	id    int
	name  string
	human bool

	cfg     Config
	board   *board.Board
	referee referee
	display display.Display
	stats   *statistics.Tracker
	logger  *log.Logger
	clock   quartz.Clock

	actions  chan int
	verdicts chan Verdict

	score                atomic.Int64
	returningFromPenalty atomic.Bool

	generator *generator
	started   atomic.Bool
	cancel    context.CancelFunc
	done      chan struct{}
	genDone   chan struct{}
}

func newPlayer(id int, spec PlayerSpec, cfg Config, b *board.Board, ref referee, d display.Display, stats *statistics.Tracker, logger *log.Logger, clock quartz.Clock) *Player {
	return &Player{
		id:       id,
		name:     spec.Name,
		human:    spec.Human,
		cfg:      cfg,
		board:    b,
		referee:  ref,
		display:  d,
		stats:    stats,
		logger:   logger.WithPrefix("player").With("player", id, "name", spec.Name),
		clock:    clock,
		actions:  make(chan int, cfg.FeatureSize),
		verdicts: make(chan Verdict, 1),
		cancel:   func() {},
		done:     make(chan struct{}),
		genDone:  make(chan struct{}),
	}
}

// ID returns the player's seat number
func (p *Player) ID() int { return p.id }

// Name returns the configured display name
func (p *Player) Name() string { return p.name }

// Human reports whether input comes from a person rather than a generator
func (p *Player) Human() bool { return p.human }

// Score returns the number of sets the player has claimed
func (p *Player) Score() int {
	return int(p.score.Load())
}

// Done is closed once the player's loop has exited
func (p *Player) Done() <-chan struct{} {
	return p.done
}

// SubmitAction hands a slot press to the player. It blocks while the intake is
// full and returns false if ctx ends or the player has stopped.
func (p *Player) SubmitAction(ctx context.Context, slot int) bool {
	select {
	case <-p.done:
		return false
	default:
	}

	select {
	case p.actions <- slot:
		return true
	case <-ctx.Done():
		return false
	case <-p.done:
		return false
	}
}

// TrySubmitAction is SubmitAction without blocking: a press is dropped when
// the intake is full.
func (p *Player) TrySubmitAction(slot int) bool {
	select {
	case <-p.done:
		return false
	default:
	}

	select {
	case p.actions <- slot:
		return true
	default:
		p.logger.Debug("Intake full, dropping press", "slot", slot)
		return false
	}
}

func (p *Player) start(parent context.Context) {
	if !p.started.CompareAndSwap(false, true) {
		return
	}
	// Only the dealer's ordered shutdown cancels a player, so a verdict the
	// dealer delivered is always seen before the player exits.
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	p.cancel = cancel

	go func() {
		defer close(p.done)
		p.run(ctx)
	}()

	if p.generator == nil {
		close(p.genDone)
		return
	}
	go func() {
		defer close(p.genDone)
		p.generator.run(ctx)
	}()
}

// stop cancels the player and its generator, then waits for both to exit
func (p *Player) stop() {
	if !p.started.Load() {
		return
	}
	p.cancel()
	<-p.genDone
	<-p.done
}

func (p *Player) run(ctx context.Context) {
	p.logger.Info("Player starting", "human", p.human)
	defer p.logger.Info("Player terminated", "score", p.Score())

	for {
		select {
		case <-ctx.Done():
			return
		case slot := <-p.actions:
			p.consume(ctx, slot)
		}
	}
}

func (p *Player) consume(ctx context.Context, slot int) {
	switch p.board.ToggleToken(p.id, slot) {
	case board.TokenIgnored:
		p.logger.Debug("Ignoring press", "slot", slot)
	case board.TokenPlaced, board.TokenRemoved:
		// a placement only succeeds below the cap, so either way the
		// selection is no longer the one that was penalized
		p.returningFromPenalty.Store(false)
	}

	if p.board.TokenCount(p.id) == p.cfg.FeatureSize && !p.returningFromPenalty.Load() {
		p.requestVerdict(ctx)
	}
}

// requestVerdict submits the player's selection and blocks until the dealer
// answers. The intake is not drained meanwhile, so no token can race the
// adjudication.
func (p *Player) requestVerdict(ctx context.Context) {
	start := p.clock.Now("player", "verdict")
	if err := p.referee.Submit(ctx, p.id); err != nil {
		return
	}

	var verdict Verdict
	select {
	case verdict = <-p.verdicts:
	case <-ctx.Done():
		select {
		case verdict = <-p.verdicts:
		default:
			return
		}
	}

	wait := p.clock.Since(start, "player", "verdict")
	p.logger.Debug("Verdict received", "verdict", verdict, "wait", wait)
	switch verdict {
	case VerdictValid:
		p.stats.Record(p.id, statistics.Claimed, wait)
		p.point(ctx)
	case VerdictInvalid:
		p.stats.Record(p.id, statistics.Penalized, wait)
		p.penalty(ctx)
	default:
		p.stats.Record(p.id, statistics.Malformed, wait)
	}
}

// deliver hands a verdict to the player. At most one request is outstanding
// per player, so the buffered channel never fills under the protocol.
func (p *Player) deliver(v Verdict) {
	select {
	case p.verdicts <- v:
	default:
		p.logger.Warn("Verdict dropped, previous one unread", "verdict", v)
	}
}

// point awards a set and freezes the player for the point duration
func (p *Player) point(ctx context.Context) {
	score := p.score.Add(1)
	p.display.SetScore(p.id, int(score))
	p.freeze(ctx, p.cfg.PointFreeze)
}

// penalty freezes the player for the penalty duration. The selection is left
// as is, so the player is marked as returning from penalty to avoid resubmitting
// the same stale set.
func (p *Player) penalty(ctx context.Context) {
	p.returningFromPenalty.Store(true)
	p.freeze(ctx, p.cfg.PenaltyFreeze)
}

// freeze counts down total on the freeze display. Presses queued while the
// player was waiting or frozen are discarded when the freeze ends.
func (p *Player) freeze(ctx context.Context, total time.Duration) {
	defer p.display.SetFreeze(p.id, 0)

	for remaining := total; remaining > 0; remaining -= p.cfg.FreezeTick {
		p.display.SetFreeze(p.id, remaining)

		step := min(p.cfg.FreezeTick, remaining)
		timer := p.clock.NewTimer(step, "player", "freeze")
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
	p.discardPresses()
}

func (p *Player) discardPresses() {
	dropped := 0
	for {
		select {
		case <-p.actions:
			dropped++
		default:
			if dropped > 0 {
				p.logger.Debug("Discarded presses made while frozen", "count", dropped)
			}
			return
		}
	}
}
