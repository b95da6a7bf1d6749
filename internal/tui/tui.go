// Package tui is the terminal front end: it renders the table from display
// events and turns key presses into player actions.
package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/galkabos/set-card-game/internal/cards"
	"github.com/galkabos/set-card-game/internal/config"
	"github.com/galkabos/set-card-game/internal/display"
)

// EventMsg carries one display notification into the program
type EventMsg display.Event

// PlayerInfo holds the static player details for the sidebar
type PlayerInfo struct {
	Name  string
	Human bool
}

// Options configures a Model
type Options struct {
	GameID   string
	Rows     int
	Columns  int
	Rules    cards.Classic
	Players  []PlayerInfo
	Bindings map[string]config.Binding

	// Submit forwards a key press to a player. It must not block.
	Submit func(player, slot int) bool
	// Stop is called once when the user quits.
	Stop func()
}

type keyMap struct {
	Quit       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc", "quit"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("pgup", "up"),
			key.WithHelp("↑/pgup", "scroll log"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("pgdown", "down"),
			key.WithHelp("↓/pgdn", "scroll log"),
		),
	}
}

// Model is the Bubble Tea model for one game
type Model struct {
	opts   Options
	logger *log.Logger
	keys   keyMap

	state  *display.State
	labels map[int][]string // slot -> keys bound to it

	logViewport viewport.Model
	gameLog     []string

	width    int
	height   int
	quitting bool
}

// New creates a model with an empty table
func New(opts Options, logger *log.Logger) *Model {
	if opts.Submit == nil {
		opts.Submit = func(int, int) bool { return false }
	}
	if opts.Stop == nil {
		opts.Stop = func() {}
	}

	labels := make(map[int][]string)
	for k, b := range opts.Bindings {
		labels[b.Slot] = append(labels[b.Slot], k)
	}
	for slot := range labels {
		sort.Strings(labels[slot])
	}

	vp := viewport.New(10, 5)
	vp.SetContent("")

	return &Model{
		opts:        opts,
		logger:      logger.WithPrefix("tui"),
		keys:        defaultKeyMap(),
		state:       display.NewState(opts.Rows*opts.Columns, len(opts.Players)),
		labels:      labels,
		logViewport: vp,
	}
}

// Sink returns a display that forwards every notification to the program
func Sink(p interface{ Send(tea.Msg) }) display.Display {
	return display.Func(func(e display.Event) {
		p.Send(EventMsg(e))
	})
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EventMsg:
		m.apply(display.Event(msg))

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, m.quit()
		case key.Matches(msg, m.keys.ScrollUp):
			m.logViewport.ScrollUp(1)
		case key.Matches(msg, m.keys.ScrollDown):
			m.logViewport.ScrollDown(1)
		default:
			m.press(msg.String())
		}
	}
	return m, nil
}

func (m *Model) quit() tea.Cmd {
	if !m.quitting {
		m.quitting = true
		m.opts.Stop()
	}
	return tea.Quit
}

func (m *Model) press(k string) {
	if m.state.Finished {
		return
	}
	b, ok := m.opts.Bindings[strings.ToLower(k)]
	if !ok {
		return
	}
	if !m.opts.Submit(b.Player, b.Slot) {
		m.logger.Debug("Press dropped", "key", k, "player", b.Player, "slot", b.Slot)
	}
}

func (m *Model) apply(e display.Event) {
	before := m.state.Scores
	prev := 0
	if e.Kind == display.EventScore && e.Player >= 0 && e.Player < len(before) {
		prev = before[e.Player]
	}

	m.state.Apply(e)

	switch e.Kind {
	case display.EventScore:
		if e.Score > prev {
			m.addLogEntry(fmt.Sprintf("%s claims a set (%d)", m.playerName(e.Player), e.Score))
		}
	case display.EventWinners:
		names := make([]string, 0, len(e.Players))
		for _, id := range e.Players {
			names = append(names, m.playerName(id))
		}
		m.addLogEntry(WinnerStyle.Render("Winners: " + strings.Join(names, ", ")))
	}
}

func (m *Model) addLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

func (m *Model) playerName(id int) string {
	if id >= 0 && id < len(m.opts.Players) {
		return m.opts.Players[id].Name
	}
	return fmt.Sprintf("player %d", id)
}

// State returns the table as rendered
func (m *Model) State() *display.State {
	return m.state.Clone()
}

// Log returns the entries shown in the log pane
func (m *Model) Log() []string {
	return append([]string(nil), m.gameLog...)
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := HeaderStyle.Render("SET") + " " + InfoStyle.Render(m.opts.GameID) + "  " + m.renderCountdown()
	board := m.renderBoard()
	sidebar := m.renderSidebar()
	top := lipgloss.JoinHorizontal(lipgloss.Top, board, "  ", sidebar)

	logHeight := m.height - lipgloss.Height(header) - lipgloss.Height(top) - 2
	m.logViewport.Width = max(m.width, 1)
	m.logViewport.Height = max(logHeight, 1)

	help := InfoStyle.Render(fmt.Sprintf("%s %s • %s %s",
		m.keys.Quit.Help().Key, m.keys.Quit.Help().Desc,
		m.keys.ScrollUp.Help().Key, m.keys.ScrollUp.Help().Desc))

	return lipgloss.JoinVertical(lipgloss.Left, header, top, m.logViewport.View(), help)
}

func (m *Model) renderCountdown() string {
	if m.state.Finished {
		return WinnerStyle.Render("Game over")
	}
	if m.state.Warning {
		return WarningStyle.Render(fmt.Sprintf("%.1fs", m.state.Countdown.Seconds()))
	}
	return CountdownStyle.Render(m.state.Countdown.Round(time.Second).String())
}

func (m *Model) renderBoard() string {
	rows := make([]string, 0, m.opts.Rows)
	for r := 0; r < m.opts.Rows; r++ {
		cells := make([]string, 0, m.opts.Columns)
		for c := 0; c < m.opts.Columns; c++ {
			cells = append(cells, m.renderSlot(r*m.opts.Columns+c))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) renderSlot(slot int) string {
	card := m.state.Cards[slot]

	var tokens strings.Builder
	selected := false
	for p := range m.opts.Players {
		if m.state.HasToken(p, slot) {
			tokens.WriteString(tokenStyle(p).Render(fmt.Sprintf("%d", p+1)))
			selected = true
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		KeyStyle.Render(strings.Join(m.labels[slot], " ")),
		CardStyle.Render(m.opts.Rules.Describe(card)),
		tokens.String(),
	)

	if selected {
		return selectedSlotStyle.Render(content)
	}
	return slotStyle.Render(content)
}

func (m *Model) renderSidebar() string {
	var content strings.Builder
	content.WriteString(InfoStyle.Render("Players"))
	content.WriteString("\n")

	winners := make(map[int]bool)
	for _, id := range m.state.Winners {
		winners[id] = true
	}

	for i, p := range m.opts.Players {
		line := fmt.Sprintf("%s %-10s %3d", tokenStyle(i).Render(fmt.Sprintf("%d", i+1)), p.Name, m.state.Scores[i])
		if winners[i] {
			line = WinnerStyle.Render(line + " ★")
		}
		if f := m.state.Freezes[i]; f > 0 {
			line += " " + FrozenStyle.Render(fmt.Sprintf("frozen %s", f.Round(100*time.Millisecond)))
		}
		content.WriteString(line)
		content.WriteString("\n")
	}
	return content.String()
}
