package render

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"voyager.com/cardclient/internal/card"
	"voyager.com/cardclient/internal/config"
	"voyager.com/cardclient/internal/game"
	"voyager.com/cardclient/internal/table"
)

// Source is where the console reads the state it draws.
type Source interface {
	Snapshot() table.Snapshot
}

// Console draws the table as plain text lines. It implements both the
// renderer and the animator used by the presentation queue; animations are
// a line of text followed by the configured pause.
type Console struct {
	mu     sync.Mutex
	out    io.Writer
	source Source
	delays config.Delays
	screen game.Screen
	status string
}

func NewConsole(out io.Writer, delays config.Delays) *Console {
	return &Console{out: out, delays: delays, screen: game.ScreenLobby}
}

// Attach sets the state source. Nothing but screens and status lines is drawn
// until a source is attached.
func (c *Console) Attach(source Source) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.source = source
}

func (c *Console) snapshot() (table.Snapshot, bool) {
	if c.source == nil {
		return table.Snapshot{}, false
	}
	return c.source.Snapshot(), true
}

func (c *Console) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

func (c *Console) RenderHand() {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap, ok := c.snapshot()
	if !ok || snap.Self == nil {
		return
	}
	marker := ""
	if snap.HasTurn && snap.Turn == snap.SelfID {
		marker = "  <- your turn"
	}
	c.printf("Hand (%d): %s%s", len(snap.Self.Hand), card.Cards(snap.Self.Hand), marker)
}

func (c *Console) RenderOpponents() {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap, ok := c.snapshot()
	if !ok {
		return
	}
	if len(snap.Opponents) == 0 {
		c.printf("Opponents: none")
		return
	}
	parts := make([]string, 0, len(snap.Opponents))
	for _, o := range snap.Opponents {
		s := fmt.Sprintf("%s: %d cards", o.Name, o.CardCount)
		if o.Finished {
			s += " (out)"
		}
		if snap.HasTurn && snap.Turn == o.ID {
			s = "*" + s
		}
		parts = append(parts, s)
	}
	c.printf("Opponents: %s", strings.Join(parts, " | "))
}

// RenderPile prints the given pile rather than the store's, which may
// already hold cards whose play has not been shown yet.
func (c *Console) RenderPile(pile []table.PileEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.source == nil {
		return
	}
	if len(pile) == 0 {
		c.printf("Pile: empty")
		return
	}
	parts := make([]string, 0, len(pile))
	for _, e := range pile {
		parts = append(parts, fmt.Sprintf("%s(%d)", e.Card, e.PlayerID))
	}
	c.printf("Pile: %s", strings.Join(parts, " "))
}

func (c *Console) RenderTurn() {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap, ok := c.snapshot()
	if !ok || !snap.HasTurn {
		return
	}
	if snap.HasSelfID && snap.Turn == snap.SelfID {
		c.printf("Turn: you")
		return
	}
	c.printf("Turn: player %d", snap.Turn)
}

func (c *Console) ShowScreen(screen game.Screen) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.screen = screen
	c.printf("==== %s ====", strings.ToUpper(string(screen)))
}

func (c *Console) SetStatus(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = status
	c.printf("> %s", status)
}

// Screen is the last screen shown.
func (c *Console) Screen() game.Screen {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.screen
}

// Status is the last status line.
func (c *Console) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Console) pause(ctx context.Context, d time.Duration, format string, args ...interface{}) error {
	c.mu.Lock()
	c.printf(format, args...)
	c.mu.Unlock()
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Console) AnimateCardPlay(ctx context.Context, player game.PlayerID, played card.Card) error {
	return c.pause(ctx, c.delays.CardPlayDuration(), "~ player %d plays %s", player, played)
}

func (c *Console) AnimatePileTo(ctx context.Context, player game.PlayerID, cards int) error {
	return c.pause(ctx, c.delays.FoulCollectDuration(), "~ %d cards go to player %d", cards, player)
}

func (c *Console) AnimateDiscard(ctx context.Context, cards int) error {
	return c.pause(ctx, c.delays.PileDiscardDuration(), "~ %d cards discarded", cards)
}

func (c *Console) HighlightWinner(ctx context.Context, player game.PlayerID) error {
	return c.pause(ctx, 0, "~ player %d is out!", player)
}
