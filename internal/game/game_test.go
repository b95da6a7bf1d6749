package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galkabos/set-card-game/internal/cards"
	"github.com/galkabos/set-card-game/internal/gameid"
)

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New(fastConfig(), fakeRules{}, nil, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid game config")

	_, err = New(fastConfig(bots(1)...), nil, nil, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rules are required")

	cfg := fastConfig(bots(1)...)
	cfg.ID = "not-an-id"
	_, err = New(cfg, fakeRules{}, nil, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "game id")
}

func TestNewUsesConfiguredID(t *testing.T) {
	cfg := fastConfig(bots(1)...)
	cfg.ID = gameid.Generate()

	g, err := New(cfg, fakeRules{}, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, cfg.ID, g.ID)

	g2, err := New(fastConfig(bots(1)...), fakeRules{}, nil, nil, nil)
	require.NoError(t, err)
	assert.NoError(t, gameid.Validate(g2.ID))
	assert.Equal(t, g2.ID, g2.Config().ID)
}

func TestComputerPlayersGetGenerators(t *testing.T) {
	g, _ := newTestGame(t, fastConfig(append(humans(1), bots(2)...)...), fakeRules{})
	require.Len(t, g.Players(), 3)

	assert.True(t, g.Player(0).Human())
	assert.Nil(t, g.Player(0).generator)
	assert.False(t, g.Player(2).Human())
	assert.NotNil(t, g.Player(2).generator)
	assert.Equal(t, "bot1", g.Player(2).Name())
	assert.Nil(t, g.Player(3))
}

func TestResults(t *testing.T) {
	g, _ := newTestGame(t, fastConfig(humans(2)...), fakeRules{any: func([]cards.Card, int) bool { return false }})
	g.Player(1).score.Store(2)
	require.NoError(t, g.Run(context.Background()))

	r := g.Results()
	assert.Equal(t, g.ID, r.GameID)
	assert.Equal(t, []string{"human1"}, r.Winners)
	assert.Equal(t, map[string]int{"human0": 0, "human1": 2}, r.Scores)
}
