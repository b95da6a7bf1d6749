package game

import (
	"context"
	rand "math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// generator presses random slots on behalf of a computer player. It is
// throttled by the player's intake: when the player stops consuming, the
// generator blocks.
type generator struct {
	player *Player
	rng    *rand.Rand
	slots  int
	delay  time.Duration
	clock  quartz.Clock
	logger *log.Logger
}

func newGenerator(p *Player, rng *rand.Rand, slots int, delay time.Duration, clock quartz.Clock, logger *log.Logger) *generator {
	return &generator{
		player: p,
		rng:    rng,
		slots:  slots,
		delay:  delay,
		clock:  clock,
		logger: logger.WithPrefix("computer").With("player", p.id),
	}
}

func (g *generator) run(ctx context.Context) {
	g.logger.Debug("Generator starting")
	defer g.logger.Debug("Generator terminated")

	for {
		if g.delay > 0 {
			timer := g.clock.NewTimer(g.delay, "computer", "delay")
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}

		if !g.player.SubmitAction(ctx, g.rng.IntN(g.slots)) {
			return
		}
	}
}
