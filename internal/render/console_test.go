package render

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"voyager.com/cardclient/internal/card"
	"voyager.com/cardclient/internal/config"
	"voyager.com/cardclient/internal/game"
	"voyager.com/cardclient/internal/table"
)

type staticSource struct {
	snap table.Snapshot
}

func (s staticSource) Snapshot() table.Snapshot {
	return s.snap
}

func TestConsoleRendersTable(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, config.NoDelays())
	kingClub := []table.PileEntry{{Card: card.New(card.King, card.Club), PlayerID: 5}}
	c.Attach(staticSource{snap: table.Snapshot{
		SelfID:    2,
		HasSelfID: true,
		Turn:      8,
		HasTurn:   true,
		Self: &table.SelfView{
			ID:   2,
			Hand: []card.Card{card.New(card.Ace, card.Spade), card.New(card.Ten, card.Heart)},
		},
		Opponents: []table.OpponentView{
			{ID: 8, Name: "Player 8", CardCount: 17},
			{ID: 5, Name: "Player 5", CardCount: 0, Finished: true},
		},
		Pile: append(kingClub, table.PileEntry{Card: card.New(card.Two, card.Heart), PlayerID: 8}),
	}})

	c.RenderHand()
	c.RenderOpponents()
	c.RenderPile(kingClub)
	c.RenderTurn()
	c.RenderPile(nil)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{
		"Hand (2): A♠ 10♥",
		"Opponents: *Player 8: 17 cards | Player 5: 0 cards (out)",
		"Pile: K♣(5)",
		"Turn: player 8",
		"Pile: empty",
	}, lines)
}

func TestConsoleWithoutSource(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, config.NoDelays())

	c.RenderHand()
	c.RenderPile(nil)
	assert.Empty(t, out.String())

	c.ShowScreen(game.ScreenResult)
	c.SetStatus("Game over")
	assert.Equal(t, "==== RESULT ====\n> Game over\n", out.String())
	assert.Equal(t, game.ScreenResult, c.Screen())
	assert.Equal(t, "Game over", c.Status())
}

func TestConsoleAnimationsHonourContext(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, config.DefaultDelays())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.AnimateCardPlay(ctx, 2, card.New(card.Ace, card.Spade))
	assert.Equal(t, context.Canceled, err)
	assert.Equal(t, "~ player 2 plays A♠\n", out.String())
}
