package display

import (
	"sync"
	"time"

	"github.com/galkabos/set-card-game/internal/cards"
)

// EventKind names a display notification
type EventKind string

const (
	EventPlaceCard   EventKind = "place_card"
	EventRemoveCard  EventKind = "remove_card"
	EventPlaceToken  EventKind = "place_token"
	EventRemoveToken EventKind = "remove_token"
	EventClearTokens EventKind = "remove_tokens"
	EventCountdown   EventKind = "countdown"
	EventScore       EventKind = "score"
	EventFreeze      EventKind = "freeze"
	EventWinners     EventKind = "winners"
)

// Event is a single recorded notification. Fields not relevant to Kind are zero.
type Event struct {
	Kind      EventKind     `json:"kind"`
	Card      cards.Card    `json:"card"`
	Slot      int           `json:"slot"`
	Player    int           `json:"player"`
	Score     int           `json:"score"`
	Remaining time.Duration `json:"remaining"`
	Warning   bool          `json:"warning"`
	Players   []int         `json:"players,omitempty"`
}

// Recorder keeps every notification in memory for later inspection.
type Recorder struct {
	Func

	mu     sync.Mutex
	events []Event
	notify chan struct{}
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	r := &Recorder{notify: make(chan struct{}, 1)}
	r.Func = r.record
	return r
}

func (r *Recorder) record(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()

	select {
	case r.notify <- struct{}{}:
	default:
	}
}

// Events returns a copy of everything recorded so far
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Filter returns the recorded events of the given kind
func (r *Recorder) Filter(kind EventKind) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Event
	for _, e := range r.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Changed is signalled (coalesced) whenever a new event is recorded
func (r *Recorder) Changed() <-chan struct{} {
	return r.notify
}
