package tui

import (
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galkabos/set-card-game/internal/cards"
	"github.com/galkabos/set-card-game/internal/config"
	"github.com/galkabos/set-card-game/internal/display"
)

type press struct{ player, slot int }

type fakeProgram struct{ msgs []tea.Msg }

func (f *fakeProgram) Send(msg tea.Msg) { f.msgs = append(f.msgs, msg) }

func newTestModel(t *testing.T) (*Model, *[]press, *bool) {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})

	cfg := config.Default()
	var presses []press
	stopped := false

	m := New(Options{
		GameID:   "test",
		Rows:     3,
		Columns:  4,
		Rules:    cards.NewClassic(3, 4),
		Players:  []PlayerInfo{{Name: "you", Human: true}, {Name: "bot"}},
		Bindings: cfg.KeyMap(),
		Submit: func(player, slot int) bool {
			presses = append(presses, press{player, slot})
			return true
		},
		Stop: func() { stopped = true },
	}, logger)

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, &presses, &stopped
}

func send(m *Model, d func(display.Display)) {
	d(display.Func(func(e display.Event) { m.Update(EventMsg(e)) }))
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelRendersBoard(t *testing.T) {
	m, _, _ := newTestModel(t)

	send(m, func(d display.Display) {
		d.PlaceCard(5, 0) // features 2,1,0,0
		d.PlaceCard(80, 11)
		d.PlaceToken(1, 11)
		d.SetCountdown(42*time.Second, false)
		d.SetFreeze(1, 2*time.Second)
	})

	view := m.View()
	assert.Contains(t, view, "2100")
	assert.Contains(t, view, "2222")
	assert.Contains(t, view, "----", "empty slots render as dashes")
	assert.Contains(t, view, "42s")
	assert.Contains(t, view, "frozen 2s")
	assert.Contains(t, view, "you")

	state := m.State()
	assert.Equal(t, cards.Card(5), state.Cards[0])
	assert.True(t, state.HasToken(1, 11))
}

func TestModelWarningCountdown(t *testing.T) {
	m, _, _ := newTestModel(t)
	send(m, func(d display.Display) { d.SetCountdown(4300*time.Millisecond, true) })
	assert.Contains(t, m.View(), "4.3s")
}

func TestModelMapsKeysToPlayers(t *testing.T) {
	m, presses, _ := newTestModel(t)

	m.Update(runes("q"))
	m.Update(runes("v"))
	m.Update(runes("Q"))
	m.Update(runes("7")) // unbound

	assert.Equal(t, []press{{0, 0}, {0, 11}, {0, 0}}, *presses)
}

func TestModelLogsScoresAndWinners(t *testing.T) {
	m, presses, _ := newTestModel(t)

	send(m, func(d display.Display) {
		d.SetScore(1, 1)
		d.SetScore(1, 1) // repeated, not a new claim
		d.AnnounceWinners([]int{1})
	})

	entries := m.Log()
	require.Len(t, entries, 2)
	assert.Contains(t, entries[0], "bot claims a set (1)")
	assert.Contains(t, entries[1], "Winners: bot")
	assert.Contains(t, m.View(), "Game over")

	m.Update(runes("q"))
	assert.Empty(t, *presses, "presses after the game are ignored")
}

func TestModelQuitStopsGame(t *testing.T) {
	m, _, stopped := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, *stopped)
	assert.Empty(t, m.View())
}

func TestSinkForwardsEvents(t *testing.T) {
	p := &fakeProgram{}
	d := Sink(p)

	d.PlaceCard(3, 2)
	d.AnnounceWinners([]int{0})

	require.Len(t, p.msgs, 2)
	assert.Equal(t, EventMsg{Kind: display.EventPlaceCard, Card: 3, Slot: 2}, p.msgs[0])
	assert.Equal(t, []int{0}, p.msgs[1].(EventMsg).Players)
}
