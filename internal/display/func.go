package display

import (
	"time"

	"github.com/galkabos/set-card-game/internal/cards"
)

// Func adapts a function receiving events into a Display. It is how sinks
// that forward events elsewhere (a terminal program, a websocket feed) plug in.
type Func func(Event)

func (f Func) PlaceCard(card cards.Card, slot int) {
	f(Event{Kind: EventPlaceCard, Card: card, Slot: slot})
}

func (f Func) RemoveCard(slot int) {
	f(Event{Kind: EventRemoveCard, Card: cards.None, Slot: slot})
}

func (f Func) PlaceToken(player, slot int) {
	f(Event{Kind: EventPlaceToken, Player: player, Slot: slot})
}

func (f Func) RemoveToken(player, slot int) {
	f(Event{Kind: EventRemoveToken, Player: player, Slot: slot})
}

func (f Func) RemoveTokens() {
	f(Event{Kind: EventClearTokens})
}

func (f Func) SetCountdown(remaining time.Duration, warning bool) {
	f(Event{Kind: EventCountdown, Remaining: remaining, Warning: warning})
}

func (f Func) SetScore(player, score int) {
	f(Event{Kind: EventScore, Player: player, Score: score})
}

func (f Func) SetFreeze(player int, remaining time.Duration) {
	f(Event{Kind: EventFreeze, Player: player, Remaining: remaining})
}

func (f Func) AnnounceWinners(players []int) {
	f(Event{Kind: EventWinners, Players: append([]int(nil), players...)})
}
