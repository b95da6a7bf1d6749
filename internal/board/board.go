// Package board holds the shared table state: which card sits in which slot,
// and which slots each player has tokened. Every operation runs under a single
// mutex so slot occupancy and token membership are never observed half-updated.
package board

import (
	"errors"
	"fmt"
	"sync"

	"github.com/galkabos/set-card-game/internal/cards"
	"github.com/galkabos/set-card-game/internal/display"
)

var (
	ErrSlotOutOfRange = errors.New("slot out of range")
	ErrSlotOccupied   = errors.New("slot already occupied")
	ErrSlotEmpty      = errors.New("slot is empty")
	ErrCardPlaced     = errors.New("card already on the board")
)

// Toggle is the outcome of ToggleToken
type Toggle int

const (
	TokenIgnored Toggle = iota
	TokenPlaced
	TokenRemoved
)

func (t Toggle) String() string {
	switch t {
	case TokenPlaced:
		return "placed"
	case TokenRemoved:
		return "removed"
	default:
		return "ignored"
	}
}

// Board is the slot/card bijection plus per-player selection sets.
type Board struct {
	mu          sync.Mutex
	slotToCard  []cards.Card
	cardToSlot  map[cards.Card]int
	tokens      [][]int
	featureSize int
	display     display.Display
}

// New creates an empty board with the given number of slots and players.
// featureSize caps every player's selection.
func New(slots, players, featureSize int, d display.Display) *Board {
	if d == nil {
		d = display.Nop{}
	}
	b := &Board{
		slotToCard:  make([]cards.Card, slots),
		cardToSlot:  make(map[cards.Card]int, slots),
		tokens:      make([][]int, players),
		featureSize: featureSize,
		display:     d,
	}
	for i := range b.slotToCard {
		b.slotToCard[i] = cards.None
	}
	for i := range b.tokens {
		b.tokens[i] = make([]int, 0, featureSize)
	}
	return b
}

// Slots returns the number of slots on the board
func (b *Board) Slots() int {
	return len(b.slotToCard)
}

// FeatureSize returns the selection cap
func (b *Board) FeatureSize() int {
	return b.featureSize
}

func (b *Board) inRange(slot int) bool {
	return slot >= 0 && slot < len(b.slotToCard)
}

// Place puts card into an empty slot.
func (b *Board) Place(slot int, card cards.Card) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.inRange(slot) {
		return fmt.Errorf("place card %v: %w: %d", card, ErrSlotOutOfRange, slot)
	}
	if b.slotToCard[slot] != cards.None {
		return fmt.Errorf("place card %v: %w: %d", card, ErrSlotOccupied, slot)
	}
	if at, ok := b.cardToSlot[card]; ok {
		return fmt.Errorf("place card %v: %w at slot %d", card, ErrCardPlaced, at)
	}

	b.slotToCard[slot] = card
	b.cardToSlot[card] = slot
	b.display.PlaceCard(card, slot)
	return nil
}

// Remove vacates slot and strips it from every player's selection in the same
// critical section. Removing from an empty slot is a no-op and reports false.
func (b *Board) Remove(slot int) (cards.Card, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.removeLocked(slot)
}

// RemoveCard removes card wherever it sits. A card that is not on the board is
// a no-op.
func (b *Board) RemoveCard(card cards.Card) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	slot, ok := b.cardToSlot[card]
	if !ok {
		return false
	}
	_, removed := b.removeLocked(slot)
	return removed
}

func (b *Board) removeLocked(slot int) (cards.Card, bool) {
	if !b.inRange(slot) || b.slotToCard[slot] == cards.None {
		return cards.None, false
	}

	card := b.slotToCard[slot]
	for player := range b.tokens {
		if b.dropToken(player, slot) {
			b.display.RemoveToken(player, slot)
		}
	}
	b.slotToCard[slot] = cards.None
	delete(b.cardToSlot, card)
	b.display.RemoveCard(slot)
	return card, true
}

// RemoveAll vacates every slot, clears all selections and returns the removed
// cards in slot order.
func (b *Board) RemoveAll() []cards.Card {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.clearTokensLocked()
	var removed []cards.Card
	for slot := range b.slotToCard {
		if card, ok := b.removeLocked(slot); ok {
			removed = append(removed, card)
		}
	}
	return removed
}

func (b *Board) dropToken(player, slot int) bool {
	set := b.tokens[player]
	for i, s := range set {
		if s == slot {
			b.tokens[player] = append(set[:i], set[i+1:]...)
			return true
		}
	}
	return false
}

// ToggleToken removes slot from the player's selection if present, otherwise
// adds it when the selection is below the feature size. Empty or unknown slots
// are ignored.
func (b *Board) ToggleToken(player, slot int) Toggle {
	b.mu.Lock()
	defer b.mu.Unlock()

	if player < 0 || player >= len(b.tokens) || !b.inRange(slot) {
		return TokenIgnored
	}
	if b.slotToCard[slot] == cards.None {
		return TokenIgnored
	}

	if b.dropToken(player, slot) {
		b.display.RemoveToken(player, slot)
		return TokenRemoved
	}
	if len(b.tokens[player]) >= b.featureSize {
		return TokenIgnored
	}

	b.tokens[player] = append(b.tokens[player], slot)
	b.display.PlaceToken(player, slot)
	return TokenPlaced
}

// ClearAllTokens empties every player's selection
func (b *Board) ClearAllTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clearTokensLocked()
}

func (b *Board) clearTokensLocked() {
	for i := range b.tokens {
		b.tokens[i] = b.tokens[i][:0]
	}
	b.display.RemoveTokens()
}

// Tokens returns a copy of the player's selection in the order it was made
func (b *Board) Tokens(player int) []int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if player < 0 || player >= len(b.tokens) {
		return nil
	}
	return append([]int(nil), b.tokens[player]...)
}

// TokenCount returns the size of the player's selection
func (b *Board) TokenCount(player int) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if player < 0 || player >= len(b.tokens) {
		return 0
	}
	return len(b.tokens[player])
}

// Candidate reads the player's selection and resolves it to cards in one
// critical section. ok is false when the selection is not exactly feature size
// or references a vacated slot.
func (b *Board) Candidate(player int) (slots []int, picked []cards.Card, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if player < 0 || player >= len(b.tokens) {
		return nil, nil, false
	}
	slots = append([]int(nil), b.tokens[player]...)
	if len(slots) != b.featureSize {
		return slots, nil, false
	}

	picked = make([]cards.Card, 0, len(slots))
	for _, slot := range slots {
		card := b.slotToCard[slot]
		if card == cards.None {
			return slots, nil, false
		}
		picked = append(picked, card)
	}
	return slots, picked, true
}

// Card returns the card in slot, or cards.None
func (b *Board) Card(slot int) cards.Card {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.inRange(slot) {
		return cards.None
	}
	return b.slotToCard[slot]
}

// SlotOf returns the slot holding card, or -1
func (b *Board) SlotOf(card cards.Card) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if slot, ok := b.cardToSlot[card]; ok {
		return slot
	}
	return -1
}

// Cards returns the cards on the board in slot order
func (b *Board) Cards() []cards.Card {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]cards.Card, 0, len(b.cardToSlot))
	for _, card := range b.slotToCard {
		if card != cards.None {
			out = append(out, card)
		}
	}
	return out
}

// EmptySlots returns the vacant slots in ascending order
func (b *Board) EmptySlots() []int {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []int
	for slot, card := range b.slotToCard {
		if card == cards.None {
			out = append(out, slot)
		}
	}
	return out
}

// CountOccupiedSlots returns how many slots hold a card
func (b *Board) CountOccupiedSlots() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.cardToSlot)
}
