package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/muesli/termenv"
	"golang.org/x/sync/errgroup"

	"github.com/galkabos/set-card-game/internal/config"
	"github.com/galkabos/set-card-game/internal/display"
	"github.com/galkabos/set-card-game/internal/feed"
	"github.com/galkabos/set-card-game/internal/fileutil"
	"github.com/galkabos/set-card-game/internal/game"
	"github.com/galkabos/set-card-game/internal/gameid"
	"github.com/galkabos/set-card-game/internal/tui"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Config   string           `short:"c" default:"setgame.hcl" help:"Path to HCL configuration file"`
	LogLevel string           `short:"l" help:"Log level (overrides config)"`
	Seed     *int64           `help:"Deterministic RNG seed (overrides config)"`
	Humans   int              `help:"Number of human players (replaces configured players)"`
	Bots     int              `short:"b" help:"Number of computer players (replaces configured players)"`
	FeedAddr string           `help:"Address for the spectator websocket feed (overrides config)"`
	Results  string           `help:"Write final scores to this JSON file (overrides config)"`
	NoTUI    bool             `name:"no-tui" help:"Run headless, logging to stderr"`
	NoColor  bool             `help:"Disable colours in the terminal UI"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("setgame"),
		kong.Description("Real-time Set card game for humans and computer players"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := cli.Run()
	ctx.FatalIfErrorf(err)
}

// Run loads configuration, plays one game and writes the results
func (c *CLI) Run() error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	logger, closeLog, err := setupLogger(cfg.Logging, !c.NoTUI)
	if err != nil {
		return err
	}
	defer closeLog()

	if c.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	gc, err := cfg.GameConfig()
	if err != nil {
		return err
	}
	gc.ID = gameid.Generate()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sinks := display.Multi{display.NewLogger(logger)}

	var spectators *feed.Feed
	if cfg.Feed.Address != "" {
		spectators = feed.New(cfg.Feed.Address, feed.Table{
			GameID:  gc.ID,
			Slots:   gc.Slots(),
			Players: len(gc.Players),
		}, logger)
		sinks = append(sinks, spectators)
	}

	var g *game.Game
	var program *tea.Program
	if !c.NoTUI {
		program = tea.NewProgram(newModel(cfg, gc, logger, func() *game.Game { return g }),
			tea.WithAltScreen(), tea.WithContext(ctx))
		sinks = append(sinks, tui.Sink(program))
	}

	g, err = game.New(gc, cfg.Rules(), sinks, logger, quartz.NewReal())
	if err != nil {
		return err
	}

	feedCtx, stopFeed := context.WithCancel(ctx)
	defer stopFeed()
	feedErr := make(chan error, 1)
	if spectators != nil {
		go func() { feedErr <- spectators.Start(feedCtx) }()
	} else {
		feedErr <- nil
	}

	eg, egctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		if err := g.Run(egctx); err != nil {
			return err
		}
		return writeResults(cfg.Results.File, g.Results(), logger)
	})
	if program != nil {
		eg.Go(func() error {
			_, err := program.Run()
			g.RequestStop()
			if errors.Is(err, tea.ErrProgramKilled) {
				return nil
			}
			return err
		})
	}

	err = eg.Wait()
	stopFeed()
	return errors.Join(err, <-feedErr)
}

func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	// Apply command line overrides
	if c.LogLevel != "" {
		cfg.Logging.Level = c.LogLevel
	}
	if c.Seed != nil {
		cfg.Game.Seed = *c.Seed
	}
	if c.Humans > 0 || c.Bots > 0 {
		cfg.SetPlayers(c.Humans, c.Bots)
	}
	if c.FeedAddr != "" {
		cfg.Feed.Address = c.FeedAddr
	}
	if c.Results != "" {
		cfg.Results.File = c.Results
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if !c.NoTUI {
		if err := cfg.CheckHumanKeys(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
	}
	return cfg, nil
}

// setupLogger writes to the configured file, or to stderr when the terminal is
// free. With the TUI on and no file configured, logs are dropped.
func setupLogger(settings *config.LoggingSettings, tuiActive bool) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(settings.Level)
	if err != nil {
		return nil, nil, err
	}

	var out io.Writer = os.Stderr
	closeFn := func() {}
	switch {
	case settings.File != "":
		f, err := os.OpenFile(settings.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
		closeFn = func() { _ = f.Close() }
	case tuiActive:
		out = io.Discard
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.000",
		Level:           level,
	})
	return logger, closeFn, nil
}

func newModel(cfg *config.Config, gc game.Config, logger *log.Logger, current func() *game.Game) *tui.Model {
	players := make([]tui.PlayerInfo, len(cfg.Players))
	for i, p := range cfg.Players {
		players[i] = tui.PlayerInfo{Name: p.Name, Human: p.Human}
	}

	return tui.New(tui.Options{
		GameID:   gameid.Short(gc.ID),
		Rows:     gc.Rows,
		Columns:  gc.Columns,
		Rules:    cfg.Rules(),
		Players:  players,
		Bindings: cfg.KeyMap(),
		Submit: func(player, slot int) bool {
			p := current().Player(player)
			return p != nil && p.TrySubmitAction(slot)
		},
		Stop: func() { current().RequestStop() },
	}, logger)
}

func writeResults(filename string, results game.Results, logger *log.Logger) error {
	if filename == "" {
		return nil
	}
	if err := fileutil.WriteJSONAtomic(filename, results); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	logger.Info("Results written", "file", filename, "winners", results.Winners)
	return nil
}
