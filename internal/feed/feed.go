// Package feed broadcasts display events to read-only websocket spectators.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/galkabos/set-card-game/internal/display"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Spectators send nothing but control frames
	maxMessageSize = 512

	sendBuffer      = 256
	shutdownTimeout = 5 * time.Second
)

// Message types sent to spectators
const (
	TypeSnapshot = "snapshot"
	TypeEvent    = "event"
)

// Message is one frame of the feed. A client first receives a snapshot of the
// table, then every event as it happens.
type Message struct {
	Type     string         `json:"type"`
	GameID   string         `json:"game_id"`
	Snapshot *display.State `json:"snapshot,omitempty"`
	Event    *display.Event `json:"event,omitempty"`
}

// Table describes the game being broadcast
type Table struct {
	GameID  string
	Slots   int
	Players int
}

// Feed is a display that fans events out to websocket clients
type Feed struct {
	display.Func

	addr     string
	table    Table
	upgrader websocket.Upgrader
	logger   *log.Logger

	mu      sync.Mutex // guards state and clients
	state   *display.State
	clients map[*client]bool
}

// New creates a feed for one game. Nothing listens until Start.
func New(addr string, table Table, logger *log.Logger) *Feed {
	f := &Feed{
		addr:  addr,
		table: table,
		upgrader: websocket.Upgrader{
			// Spectating is read-only, any origin may watch
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:  logger.WithPrefix("feed").With("game", table.GameID),
		state:   display.NewState(table.Slots, table.Players),
		clients: make(map[*client]bool),
	}
	f.Func = f.publish
	return f
}

// Handler returns the feed's HTTP routes
func (f *Feed) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", f.handleWebSocket)
	mux.HandleFunc("/state", f.handleState)
	mux.HandleFunc("/health", f.handleHealth)
	return mux
}

// Start serves the feed until ctx ends, then disconnects every client
func (f *Feed) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              f.addr,
		Handler:           f.Handler(),
		ReadHeaderTimeout: writeWait,
	}

	errCh := make(chan error, 1)
	go func() {
		f.logger.Info("Starting spectator feed", "addr", f.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("feed server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	f.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("feed shutdown: %w", err)
	}
	return nil
}

// Close disconnects every client
func (f *Feed) Close() {
	f.mu.Lock()
	clients := f.clients
	f.clients = make(map[*client]bool)
	f.mu.Unlock()

	for c := range clients {
		c.close()
	}
}

// Clients returns the number of connected spectators
func (f *Feed) Clients() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients)
}

// Snapshot returns the table as the feed currently sees it
func (f *Feed) Snapshot() *display.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.Clone()
}

func (f *Feed) publish(e display.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.state.Apply(e)
	msg := &Message{Type: TypeEvent, GameID: f.table.GameID, Event: &e}
	for c := range f.clients {
		if !c.trySend(msg) {
			f.logger.Warn("Spectator too slow, disconnecting")
			delete(f.clients, c)
			go c.close()
		}
	}
}

func (f *Feed) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	c := newClient(conn, f.logger)

	f.mu.Lock()
	c.trySend(&Message{Type: TypeSnapshot, GameID: f.table.GameID, Snapshot: f.state.Clone()})
	f.clients[c] = true
	total := len(f.clients)
	f.mu.Unlock()

	f.logger.Info("Spectator connected", "total", total)
	c.start()

	go func() {
		<-c.ctx.Done()
		f.mu.Lock()
		delete(f.clients, c)
		f.mu.Unlock()
		f.logger.Info("Spectator disconnected")
	}()
}

func (f *Feed) handleState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	msg := Message{Type: TypeSnapshot, GameID: f.table.GameID, Snapshot: f.Snapshot()}
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		f.logger.Debug("Failed to write state", "error", err)
	}
}

func (f *Feed) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}
