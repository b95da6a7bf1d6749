package statistics

import (
	"math"
	"sort"
	"sync"
	"time"
)

// Outcome is the dealer's answer to one claim
type Outcome int

const (
	Claimed   Outcome = iota // valid set, point awarded
	Penalized                // invalid set, penalty freeze
	Malformed                // selection changed before adjudication
)

// Statistics tracks one player's claims and how long each verdict took
type Statistics struct {
	Requests  int
	Claims    int
	Penalties int
	Malformed int

	SumWait  float64   // seconds
	SumWait2 float64   // Sum of squares for variance calculation
	Values   []float64 // Store all waits for median/percentile calculation
	MaxWait  time.Duration
}

// Add incorporates one adjudication
func (s *Statistics) Add(outcome Outcome, wait time.Duration) {
	s.Requests++
	switch outcome {
	case Claimed:
		s.Claims++
	case Penalized:
		s.Penalties++
	case Malformed:
		s.Malformed++
	}

	w := wait.Seconds()
	s.SumWait += w
	s.SumWait2 += w * w
	s.Values = append(s.Values, w)
	if wait > s.MaxWait {
		s.MaxWait = wait
	}
}

// Mean returns the mean verdict wait in seconds
func (s *Statistics) Mean() float64 {
	if s.Requests == 0 {
		return 0
	}
	return s.SumWait / float64(s.Requests)
}

// Variance returns the sample variance of verdict waits
func (s *Statistics) Variance() float64 {
	if s.Requests < 2 {
		return 0
	}
	mean := s.Mean()
	return math.Max(0, (s.SumWait2-float64(s.Requests)*mean*mean)/float64(s.Requests-1))
}

// StdDev returns the sample standard deviation of verdict waits
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// Median returns the median verdict wait in seconds
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the wait at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Accuracy is the share of adjudicated claims that were valid sets.
// Malformed requests are not counted against the player.
func (s *Statistics) Accuracy() float64 {
	judged := s.Claims + s.Penalties
	if judged == 0 {
		return 0
	}
	return float64(s.Claims) / float64(judged)
}

// Summary is the reportable form of Statistics
type Summary struct {
	Requests   int     `json:"requests"`
	Claims     int     `json:"claims"`
	Penalties  int     `json:"penalties"`
	Malformed  int     `json:"malformed"`
	Accuracy   float64 `json:"accuracy"`
	MeanWaitMS float64 `json:"mean_wait_ms"`
	P95WaitMS  float64 `json:"p95_wait_ms"`
	MaxWaitMS  float64 `json:"max_wait_ms"`
}

// Summary reports the statistics with waits in milliseconds
func (s *Statistics) Summary() Summary {
	return Summary{
		Requests:   s.Requests,
		Claims:     s.Claims,
		Penalties:  s.Penalties,
		Malformed:  s.Malformed,
		Accuracy:   s.Accuracy(),
		MeanWaitMS: s.Mean() * 1000,
		P95WaitMS:  s.Percentile(0.95) * 1000,
		MaxWaitMS:  float64(s.MaxWait) / float64(time.Millisecond),
	}
}

// Tracker collects Statistics for every player. It is safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	players []Statistics
}

// NewTracker creates a tracker for the given number of players
func NewTracker(players int) *Tracker {
	return &Tracker{players: make([]Statistics, players)}
}

// Record adds one adjudication for player; unknown players are ignored
func (t *Tracker) Record(player int, outcome Outcome, wait time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if player < 0 || player >= len(t.players) {
		return
	}
	t.players[player].Add(outcome, wait)
}

// Player returns a copy of one player's statistics
func (t *Tracker) Player(player int) Statistics {
	t.mu.Lock()
	defer t.mu.Unlock()
	if player < 0 || player >= len(t.players) {
		return Statistics{}
	}
	s := t.players[player]
	s.Values = append([]float64(nil), s.Values...)
	return s
}

// Summaries reports every player in seat order
func (t *Tracker) Summaries() []Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Summary, len(t.players))
	for i := range t.players {
		out[i] = t.players[i].Summary()
	}
	return out
}
