package display

import (
	"slices"
	"time"

	"github.com/galkabos/set-card-game/internal/cards"
)

// State is the table as seen through display events. Renderers fold events
// into a State instead of querying the game.
type State struct {
	Cards     []cards.Card    `json:"cards"`
	Tokens    [][]int         `json:"tokens"`
	Scores    []int           `json:"scores"`
	Freezes   []time.Duration `json:"freezes"`
	Countdown time.Duration   `json:"countdown"`
	Warning   bool            `json:"warning"`
	Winners   []int           `json:"winners,omitempty"`
	Finished  bool            `json:"finished"`
}

// NewState creates an empty table
func NewState(slots, players int) *State {
	s := &State{
		Cards:   make([]cards.Card, slots),
		Tokens:  make([][]int, players),
		Scores:  make([]int, players),
		Freezes: make([]time.Duration, players),
	}
	for i := range s.Cards {
		s.Cards[i] = cards.None
	}
	return s
}

// Apply folds one event into the state. Events naming an unknown slot or
// player are ignored.
func (s *State) Apply(e Event) {
	switch e.Kind {
	case EventPlaceCard:
		if s.validSlot(e.Slot) {
			s.Cards[e.Slot] = e.Card
		}
	case EventRemoveCard:
		if s.validSlot(e.Slot) {
			s.Cards[e.Slot] = cards.None
		}
	case EventPlaceToken:
		if s.validPlayer(e.Player) && !slices.Contains(s.Tokens[e.Player], e.Slot) {
			s.Tokens[e.Player] = append(s.Tokens[e.Player], e.Slot)
		}
	case EventRemoveToken:
		if s.validPlayer(e.Player) {
			s.Tokens[e.Player] = slices.DeleteFunc(s.Tokens[e.Player], func(slot int) bool { return slot == e.Slot })
		}
	case EventClearTokens:
		for i := range s.Tokens {
			s.Tokens[i] = nil
		}
	case EventCountdown:
		s.Countdown = e.Remaining
		s.Warning = e.Warning
	case EventScore:
		if s.validPlayer(e.Player) {
			s.Scores[e.Player] = e.Score
		}
	case EventFreeze:
		if s.validPlayer(e.Player) {
			s.Freezes[e.Player] = e.Remaining
		}
	case EventWinners:
		s.Winners = append([]int(nil), e.Players...)
		s.Finished = true
	}
}

// HasToken reports whether player has a token on slot
func (s *State) HasToken(player, slot int) bool {
	return s.validPlayer(player) && slices.Contains(s.Tokens[player], slot)
}

// Clone returns a deep copy
func (s *State) Clone() *State {
	c := *s
	c.Cards = slices.Clone(s.Cards)
	c.Scores = slices.Clone(s.Scores)
	c.Freezes = slices.Clone(s.Freezes)
	c.Winners = slices.Clone(s.Winners)
	c.Tokens = make([][]int, len(s.Tokens))
	for i, t := range s.Tokens {
		c.Tokens[i] = slices.Clone(t)
	}
	return &c
}

func (s *State) validSlot(slot int) bool {
	return slot >= 0 && slot < len(s.Cards)
}

func (s *State) validPlayer(player int) bool {
	return player >= 0 && player < len(s.Tokens)
}
