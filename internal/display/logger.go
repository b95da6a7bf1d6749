package display

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/galkabos/set-card-game/internal/cards"
)

// Logger writes notifications to a structured logger. Board traffic is logged
// at debug level; scores and winners at info.
type Logger struct {
	logger *log.Logger
}

// NewLogger creates a display that logs through logger
func NewLogger(logger *log.Logger) *Logger {
	return &Logger{logger: logger.WithPrefix("display")}
}

func (l *Logger) PlaceCard(card cards.Card, slot int) {
	l.logger.Debug("Card placed", "card", card, "slot", slot)
}

func (l *Logger) RemoveCard(slot int) {
	l.logger.Debug("Card removed", "slot", slot)
}

func (l *Logger) PlaceToken(player, slot int) {
	l.logger.Debug("Token placed", "player", player, "slot", slot)
}

func (l *Logger) RemoveToken(player, slot int) {
	l.logger.Debug("Token removed", "player", player, "slot", slot)
}

func (l *Logger) RemoveTokens() {
	l.logger.Debug("All tokens removed")
}

func (l *Logger) SetCountdown(remaining time.Duration, warning bool) {
	l.logger.Debug("Countdown", "remaining", remaining.Round(time.Millisecond), "warning", warning)
}

func (l *Logger) SetScore(player, score int) {
	l.logger.Info("Score", "player", player, "score", score)
}

func (l *Logger) SetFreeze(player int, remaining time.Duration) {
	l.logger.Debug("Freeze", "player", player, "remaining", remaining)
}

func (l *Logger) AnnounceWinners(players []int) {
	l.logger.Info("Winners", "players", players)
}
