package game

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/galkabos/set-card-game/internal/cards"
	"github.com/galkabos/set-card-game/internal/display"
)

// fakeRules lets a test decide what counts as a set. The zero value accepts
// every candidate and reports a set whenever three cards remain.
type fakeRules struct {
	valid func([]cards.Card) bool
	any   func([]cards.Card, int) bool
}

func (f fakeRules) IsValidSet(c []cards.Card) bool {
	if f.valid == nil {
		return true
	}
	return f.valid(c)
}

func (f fakeRules) AnyValidSetExists(c []cards.Card, minimum int) bool {
	if f.any == nil {
		return len(c) >= 3
	}
	return f.any(c, minimum)
}

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// lockedBuffer collects log output written from several goroutines
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func humans(n int) []PlayerSpec {
	specs := make([]PlayerSpec, n)
	for i := range specs {
		specs[i] = PlayerSpec{Name: fmt.Sprintf("human%d", i), Human: true}
	}
	return specs
}

func bots(n int) []PlayerSpec {
	specs := make([]PlayerSpec, n)
	for i := range specs {
		specs[i] = PlayerSpec{Name: fmt.Sprintf("bot%d", i)}
	}
	return specs
}

// fastConfig keeps rounds long but freezes and polls short, so tests driven by
// the real clock finish quickly without a round expiring underneath them.
func fastConfig(players ...PlayerSpec) Config {
	cfg := DefaultConfig(players...)
	cfg.Countdown = 10 * time.Second
	cfg.Warning = time.Second
	cfg.PointFreeze = 30 * time.Millisecond
	cfg.PenaltyFreeze = 30 * time.Millisecond
	cfg.PollInterval = 5 * time.Millisecond
	cfg.WarningPollInterval = time.Millisecond
	cfg.FreezeTick = 10 * time.Millisecond
	cfg.Seed = 1
	return cfg
}

func newTestGame(t *testing.T, cfg Config, rules cards.Rules) (*Game, *display.Recorder) {
	t.Helper()
	rec := display.NewRecorder()
	g, err := New(cfg, rules, rec, testLogger(), quartz.NewReal())
	require.NoError(t, err)
	return g, rec
}

// startGame runs g in the background and stops it when the test ends. The
// returned channel closes when Run returns.
func startGame(t *testing.T, g *Game) <-chan struct{} {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = g.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return done
}

func waitForDeal(t *testing.T, g *Game) {
	t.Helper()
	require.Eventually(t, func() bool {
		return g.Dealer().Phase() == PhaseCountingDown &&
			g.Board().CountOccupiedSlots() == g.Config().Slots()
	}, 2*time.Second, time.Millisecond)
}

func freezesAtZero(rec *display.Recorder, player int) int {
	n := 0
	for _, e := range rec.Filter(display.EventFreeze) {
		if e.Player == player && e.Remaining == 0 {
			n++
		}
	}
	return n
}
