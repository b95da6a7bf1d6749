// Package display defines the output side of the game: every change the board,
// dealer or players make visible is published through a Display.
package display

import (
	"time"

	"github.com/galkabos/set-card-game/internal/cards"
)

// Display receives game notifications. Implementations must be safe for
// concurrent use and must not call back into the game.
type Display interface {
	PlaceCard(card cards.Card, slot int)
	RemoveCard(slot int)
	PlaceToken(player, slot int)
	RemoveToken(player, slot int)
	RemoveTokens()
	SetCountdown(remaining time.Duration, warning bool)
	SetScore(player, score int)
	SetFreeze(player int, remaining time.Duration)
	AnnounceWinners(players []int)
}

// Nop discards every notification
type Nop struct{}

func (Nop) PlaceCard(cards.Card, int) {}
func (Nop) RemoveCard(int) {}
func (Nop) PlaceToken(int, int) {}
func (Nop) RemoveToken(int, int) {}
func (Nop) RemoveTokens() {}
func (Nop) SetCountdown(time.Duration, bool) {}
func (Nop) SetScore(int, int) {}
func (Nop) SetFreeze(int, time.Duration) {}
func (Nop) AnnounceWinners([]int) {}

// Multi fans every notification out to each display in order.
type Multi []Display

func (m Multi) PlaceCard(card cards.Card, slot int) {
	for _, d := range m {
		d.PlaceCard(card, slot)
	}
}

func (m Multi) RemoveCard(slot int) {
	for _, d := range m {
		d.RemoveCard(slot)
	}
}

func (m Multi) PlaceToken(player, slot int) {
	for _, d := range m {
		d.PlaceToken(player, slot)
	}
}

func (m Multi) RemoveToken(player, slot int) {
	for _, d := range m {
		d.RemoveToken(player, slot)
	}
}

func (m Multi) RemoveTokens() {
	for _, d := range m {
		d.RemoveTokens()
	}
}

func (m Multi) SetCountdown(remaining time.Duration, warning bool) {
	for _, d := range m {
		d.SetCountdown(remaining, warning)
	}
}

func (m Multi) SetScore(player, score int) {
	for _, d := range m {
		d.SetScore(player, score)
	}
}

func (m Multi) SetFreeze(player int, remaining time.Duration) {
	for _, d := range m {
		d.SetFreeze(player, remaining)
	}
}

func (m Multi) AnnounceWinners(players []int) {
	for _, d := range m {
		d.AnnounceWinners(players)
	}
}
