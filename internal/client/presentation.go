package client

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"voyager.com/cardclient/internal/card"
	"voyager.com/cardclient/internal/config"
	"voyager.com/cardclient/internal/game"
	"voyager.com/cardclient/internal/scheduler"
	"voyager.com/cardclient/internal/table"
)

// Renderer draws the current state of the store. Every method is synchronous
// and idempotent: calling it twice draws the same thing. The pile is passed
// in because it is drawn as of the queued step, not as of the store.
type Renderer interface {
	RenderHand()
	RenderOpponents()
	RenderPile(pile []table.PileEntry)
	RenderTurn()
	ShowScreen(screen game.Screen)
	SetStatus(status string)
}

// Animator is implemented by renderers that can show timed effects. Any of
// them may fail; a failure is logged and the queue moves on.
type Animator interface {
	AnimateCardPlay(ctx context.Context, player game.PlayerID, c card.Card) error
	AnimatePileTo(ctx context.Context, player game.PlayerID, cards int) error
	AnimateDiscard(ctx context.Context, cards int) error
	HighlightWinner(ctx context.Context, player game.PlayerID) error
}

// presenter builds the queued tasks that follow each state mutation.
type presenter struct {
	logger   *zerolog.Logger
	store    *table.Store
	renderer Renderer
	animator Animator
	delays   config.Delays
}

func newPresenter(logger *zerolog.Logger, store *table.Store, renderer Renderer, delays config.Delays) *presenter {
	p := &presenter{
		logger:   logger,
		store:    store,
		renderer: renderer,
		delays:   delays,
	}
	if a, ok := renderer.(Animator); ok {
		p.animator = a
	}
	return p
}

func sleep(ctx context.Context, d time.Duration) error {
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

// pile draws the entries played up to mark. Cards applied after the step
// that captured mark are left for their own step.
func (p *presenter) pile(mark uint64) func() {
	return func() {
		p.renderer.RenderPile(p.store.PileThrough(mark))
	}
}

func (p *presenter) render(parts ...func()) scheduler.Task {
	return func(ctx context.Context) error {
		for _, part := range parts {
			part()
		}
		return nil
	}
}

func (p *presenter) status(msg string) scheduler.Task {
	return func(ctx context.Context) error {
		p.renderer.SetStatus(msg)
		return nil
	}
}

func (p *presenter) showGame() scheduler.Task {
	r := p.renderer
	drawPile := p.pile(p.store.PileMark())
	return func(ctx context.Context) error {
		r.ShowScreen(game.ScreenGame)
		r.RenderOpponents()
		r.RenderHand()
		drawPile()
		r.RenderTurn()
		return nil
	}
}

func (p *presenter) showLobby(status string) scheduler.Task {
	return func(ctx context.Context) error {
		p.renderer.ShowScreen(game.ScreenLobby)
		if status != "" {
			p.renderer.SetStatus(status)
		}
		return nil
	}
}

func (p *presenter) turnChanged(player game.PlayerID, mine bool) scheduler.Task {
	return func(ctx context.Context) error {
		p.renderer.RenderTurn()
		p.renderer.RenderHand()
		if mine {
			p.renderer.SetStatus("Your turn")
		} else {
			p.renderer.SetStatus(fmt.Sprintf("Waiting for %s", p.store.PlayerName(player)))
		}
		return nil
	}
}

// cardPlayed moves the card to the pile, then redraws the pile through mark
// and the player's holding. The holding is redrawn even when the animation
// fails.
func (p *presenter) cardPlayed(player game.PlayerID, c card.Card, mark uint64) scheduler.Task {
	return func(ctx context.Context) error {
		var err error
		if p.animator != nil {
			err = p.animator.AnimateCardPlay(ctx, player, c)
		} else {
			err = sleep(ctx, p.delays.CardPlayDuration())
		}
		p.pile(mark)()
		p.renderer.RenderHand()
		p.renderer.RenderOpponents()
		return err
	}
}

// discard clears the pile entries that were on the table when the discard
// was applied. Cards played after it stay.
func (p *presenter) discard(mark uint64, cards int) scheduler.Task {
	return func(ctx context.Context) error {
		var err error
		if p.animator != nil {
			err = p.animator.AnimateDiscard(ctx, cards)
		} else {
			err = sleep(ctx, p.delays.PileDiscardDuration())
		}
		removed := p.store.DiscardPileThrough(mark)
		p.logger.Debug().Msgf("Discarded %d cards from the pile.", removed)
		p.pile(mark)()
		return err
	}
}

// foul shows the pile going to the punished player, then clears it through
// mark.
func (p *presenter) foul(to game.PlayerID, mark uint64, cards int, self bool) scheduler.Task {
	return func(ctx context.Context) error {
		var err error
		if p.animator != nil {
			err = p.animator.AnimatePileTo(ctx, to, cards)
		} else {
			err = sleep(ctx, p.delays.FoulCollectDuration())
		}
		p.store.DiscardPileThrough(mark)
		p.pile(mark)()
		p.renderer.RenderHand()
		p.renderer.RenderOpponents()
		if self {
			p.renderer.SetStatus(fmt.Sprintf("Foul! You pick up %d cards", cards))
		} else {
			p.renderer.SetStatus(fmt.Sprintf("Foul! %s picks up %d cards", p.store.PlayerName(to), cards))
		}
		return err
	}
}

func (p *presenter) winner(player game.PlayerID, self bool) scheduler.Task {
	return func(ctx context.Context) error {
		if self {
			p.renderer.SetStatus("You are out of cards!")
		} else {
			p.renderer.SetStatus(fmt.Sprintf("%s is out of cards", p.store.PlayerName(player)))
		}
		p.renderer.RenderOpponents()
		if p.animator != nil {
			return p.animator.HighlightWinner(ctx, player)
		}
		return nil
	}
}

// finish shows the result screen and, after the configured delay, hands the
// generation to toLobby. toLobby does nothing if a newer game has started.
func (p *presenter) finish(gen uint64, status string, toLobby func(gen uint64) bool) scheduler.Task {
	return func(ctx context.Context) error {
		p.renderer.ShowScreen(game.ScreenResult)
		p.renderer.SetStatus(status)
		if err := sleep(ctx, p.delays.EndGameToLobbyDuration()); err != nil {
			return err
		}
		if toLobby(gen) {
			p.renderer.ShowScreen(game.ScreenLobby)
		}
		return nil
	}
}
