package cards

import (
	"fmt"
	"strings"
)

// Card identifies a card in the deck. Identifiers run from 0 to DeckSize-1.
type Card int

// None marks an empty slot or an unplaced card.
const None Card = -1

// String returns the card identifier, or "--" for None
func (c Card) String() string {
	if c == None {
		return "--"
	}
	return fmt.Sprintf("#%d", int(c))
}

// Rules is the set-validity oracle consumed by the dealer.
type Rules interface {
	// IsValidSet reports whether the cards form a legal set.
	IsValidSet(cards []Card) bool
	// AnyValidSetExists reports whether at least minimum distinct sets can be
	// formed from the collection.
	AnyValidSetExists(cards []Card, minimum int) bool
}

// Classic is the feature-vector deck of the Set card game. Every card is a
// vector of FeatureCount features, each taking one of FeatureSize values, and a
// valid set is FeatureSize cards where every feature is either all equal or
// all different.
type Classic struct {
	FeatureSize  int
	FeatureCount int
}

// NewClassic creates the rules for a deck with the given dimensions
func NewClassic(featureSize, featureCount int) Classic {
	return Classic{FeatureSize: featureSize, FeatureCount: featureCount}
}

// DeckSize returns FeatureSize^FeatureCount, the number of distinct cards
func (c Classic) DeckSize() int {
	n := 1
	for i := 0; i < c.FeatureCount; i++ {
		n *= c.FeatureSize
	}
	return n
}

// Features decodes a card identifier into its feature values.
func (c Classic) Features(card Card) []int {
	features := make([]int, c.FeatureCount)
	v := int(card)
	for i := 0; i < c.FeatureCount; i++ {
		features[i] = v % c.FeatureSize
		v /= c.FeatureSize
	}
	return features
}

// Describe renders a card as its feature digits, e.g. "0120"
func (c Classic) Describe(card Card) string {
	if card == None {
		return strings.Repeat("-", c.FeatureCount)
	}
	var sb strings.Builder
	for _, f := range c.Features(card) {
		sb.WriteByte(byte('0' + f%10))
	}
	return sb.String()
}

// IsValidSet implements Rules
func (c Classic) IsValidSet(cards []Card) bool {
	if len(cards) != c.FeatureSize || c.FeatureSize < 2 {
		return false
	}

	seen := make(map[Card]bool, len(cards))
	decoded := make([][]int, len(cards))
	for i, card := range cards {
		if card == None || int(card) < 0 || int(card) >= c.DeckSize() || seen[card] {
			return false
		}
		seen[card] = true
		decoded[i] = c.Features(card)
	}

	for f := 0; f < c.FeatureCount; f++ {
		values := make(map[int]bool, c.FeatureSize)
		for _, features := range decoded {
			values[features[f]] = true
		}
		// all equal or all different
		if len(values) != 1 && len(values) != c.FeatureSize {
			return false
		}
	}
	return true
}

// FindSets returns up to limit valid sets drawn from cards. A limit of zero or
// less returns every set.
func (c Classic) FindSets(cards []Card, limit int) [][]Card {
	pool := make([]Card, 0, len(cards))
	for _, card := range cards {
		if card != None {
			pool = append(pool, card)
		}
	}

	var found [][]Card
	combo := make([]Card, 0, c.FeatureSize)

	var walk func(start int) bool
	walk = func(start int) bool {
		if len(combo) == c.FeatureSize {
			if c.IsValidSet(combo) {
				found = append(found, append([]Card(nil), combo...))
				if limit > 0 && len(found) >= limit {
					return true
				}
			}
			return false
		}
		for i := start; i <= len(pool)-(c.FeatureSize-len(combo)); i++ {
			combo = append(combo, pool[i])
			if walk(i + 1) {
				return true
			}
			combo = combo[:len(combo)-1]
		}
		return false
	}
	walk(0)

	return found
}

// AnyValidSetExists implements Rules
func (c Classic) AnyValidSetExists(cards []Card, minimum int) bool {
	if minimum < 1 {
		minimum = 1
	}
	return len(c.FindSets(cards, minimum)) >= minimum
}

// Deck returns the identifiers 0..size-1 in order.
func Deck(size int) []Card {
	deck := make([]Card, size)
	for i := range deck {
		deck[i] = Card(i)
	}
	return deck
}
