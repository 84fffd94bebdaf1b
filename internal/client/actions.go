package client

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"voyager.com/cardclient/internal/card"
	"voyager.com/cardclient/internal/game"
	"voyager.com/cardclient/internal/protocol"
	"voyager.com/cardclient/internal/table"
	"voyager.com/cardclient/internal/util"
)

// Sender is the outbound half of a transport.
type Sender interface {
	Send(ctx context.Context, frame []byte) error
	IsOpen() bool
}

// Actions turns user intent into outbound frames. Every refusal happens
// before anything touches the network and shows up as a status line.
type Actions struct {
	logger   *zerolog.Logger
	store    *table.Store
	sender   Sender
	renderer Renderer
	limiter  *rate.Limiter
}

// NewActions allows one action per interval. A zero interval disables the
// limit.
func NewActions(logger *zerolog.Logger, store *table.Store, sender Sender, renderer Renderer, interval time.Duration) *Actions {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Actions{
		logger:   logger,
		store:    store,
		sender:   sender,
		renderer: renderer,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// Ready tells the server the local player wants to start.
func (a *Actions) Ready(ctx context.Context) error {
	self, err := a.checkSelf("ready")
	if err != nil {
		return err
	}
	if err := a.checkRate("ready"); err != nil {
		return err
	}
	frame, err := protocol.EncodeReady(self)
	if err != nil {
		return err
	}
	return a.send(ctx, "ready", frame)
}

// Play sends a card. It is refused unless a game is running and it is the
// local player's turn.
func (a *Actions) Play(ctx context.Context, c card.Card) error {
	self, err := a.checkSelf("play")
	if err != nil {
		return err
	}
	if lc := a.store.Lifecycle(); lc != game.Active {
		return a.refuse("play", errors.Wrapf(ErrNotActive, "game is %s", lc), "No game in progress")
	}
	if !a.store.IsMyTurn() {
		return a.refuse("play", ErrNotYourTurn, "Not your turn")
	}
	if err := a.checkRate("play"); err != nil {
		return err
	}
	frame, err := protocol.EncodePlayCard(self, c)
	if err != nil {
		return err
	}
	return a.send(ctx, "play", frame)
}

// EndGame asks the server to go back to waiting for players.
func (a *Actions) EndGame(ctx context.Context) error {
	if !a.sender.IsOpen() {
		return a.refuse("end-game", ErrTransportClosed, "Not connected")
	}
	if err := a.checkRate("end-game"); err != nil {
		return err
	}
	frame, err := protocol.EncodeEndGame()
	if err != nil {
		return err
	}
	return a.send(ctx, "end-game", frame)
}

func (a *Actions) checkSelf(action string) (game.PlayerID, error) {
	if !a.sender.IsOpen() {
		return 0, a.refuse(action, ErrTransportClosed, "Not connected")
	}
	self, ok := a.store.SelfID()
	if !ok {
		return 0, a.refuse(action, ErrNoPlayerID, "Waiting for the server to assign a player id")
	}
	return self, nil
}

func (a *Actions) checkRate(action string) error {
	if !a.limiter.Allow() {
		return a.refuse(action, ErrThrottled, "Slow down")
	}
	return nil
}

func (a *Actions) refuse(action string, err error, status string) error {
	util.Metrics.ActionRejected()
	a.logger.Warn().Msgf("Refusing %s: %s", action, err)
	a.renderer.SetStatus(status)
	return err
}

func (a *Actions) send(ctx context.Context, action string, frame []byte) error {
	if err := a.sender.Send(ctx, frame); err != nil {
		a.renderer.SetStatus("Connection problem")
		return errors.Wrapf(err, "sending %s", action)
	}
	util.Metrics.ActionSent()
	a.logger.Debug().Msgf("Sent %s", string(frame))
	return nil
}
