package client

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voyager.com/cardclient/internal/card"
	"voyager.com/cardclient/internal/game"
	"voyager.com/cardclient/internal/table"
	"voyager.com/cardclient/logging"
)

var actionsTestLogger = logging.GetZeroLogger("client::actions_test", nil)

func newTestActions(interval time.Duration) (*Actions, *table.Store, *fakeTransport, *recordingRenderer) {
	store := table.NewStore(0)
	ft := newFakeTransport()
	r := newRecordingRenderer()
	return NewActions(actionsTestLogger, store, ft, r, interval), store, ft, r
}

func activeStore(t *testing.T, store *table.Store, turn game.PlayerID) {
	require.NoError(t, store.AssignSelfID(2))
	_, err := store.AssignSeats([]game.PlayerID{5, 2, 8})
	require.NoError(t, err)
	store.InitGame(nil)
	store.SetTurn(turn)
}

func TestActionRefusals(t *testing.T) {
	ctx := context.Background()
	testCases := []struct {
		name   string
		setup  func(store *table.Store, ft *fakeTransport)
		act    func(a *Actions) error
		err    error
		status string
	}{
		{
			name:   "ready while disconnected",
			setup:  func(store *table.Store, ft *fakeTransport) { ft.setOpen(false) },
			act:    func(a *Actions) error { return a.Ready(ctx) },
			err:    ErrTransportClosed,
			status: "Not connected",
		},
		{
			name:   "ready without id",
			setup:  func(store *table.Store, ft *fakeTransport) {},
			act:    func(a *Actions) error { return a.Ready(ctx) },
			err:    ErrNoPlayerID,
			status: "Waiting for the server to assign a player id",
		},
		{
			name:   "play in lobby",
			setup:  func(store *table.Store, ft *fakeTransport) { store.AssignSelfID(2) },
			act:    func(a *Actions) error { return a.Play(ctx, aceSpade) },
			err:    ErrNotActive,
			status: "No game in progress",
		},
		{
			name:   "play out of turn",
			setup:  func(store *table.Store, ft *fakeTransport) { activeStore(t, store, 8) },
			act:    func(a *Actions) error { return a.Play(ctx, aceSpade) },
			err:    ErrNotYourTurn,
			status: "Not your turn",
		},
		{
			name:   "end game while disconnected",
			setup:  func(store *table.Store, ft *fakeTransport) { ft.setOpen(false) },
			act:    func(a *Actions) error { return a.EndGame(ctx) },
			err:    ErrTransportClosed,
			status: "Not connected",
		},
	}
	for _, tc := range testCases {
		a, store, ft, r := newTestActions(0)
		tc.setup(store, ft)
		err := tc.act(a)
		assert.True(t, errors.Is(err, tc.err), "%s: got %v", tc.name, err)
		assert.Equal(t, tc.status, r.LastStatus(), tc.name)
		assert.Empty(t, ft.Sent(), tc.name)
	}
}

func TestActionFrames(t *testing.T) {
	ctx := context.Background()
	a, store, ft, _ := newTestActions(0)
	activeStore(t, store, 2)

	require.NoError(t, a.Ready(ctx))
	require.NoError(t, a.Play(ctx, aceSpade))
	require.NoError(t, a.EndGame(ctx))

	sent := ft.Sent()
	require.Len(t, sent, 3)
	assert.JSONEq(t, `{"Ready":{"player_id":2}}`, sent[0])
	assert.JSONEq(t, `{"CardPlayedByPlayer":{"player_id":2,"card":{"rank":"Ace","suit":"Spade"}}}`, sent[1])
	assert.JSONEq(t, `"EndGame"`, sent[2])
}

func TestActionsAreThrottled(t *testing.T) {
	ctx := context.Background()
	a, store, ft, r := newTestActions(time.Hour)
	require.NoError(t, store.AssignSelfID(2))

	require.NoError(t, a.Ready(ctx))
	err := a.Ready(ctx)
	assert.True(t, errors.Is(err, ErrThrottled))
	assert.Equal(t, "Slow down", r.LastStatus())
	assert.Len(t, ft.Sent(), 1)
}

func TestPlayInvalidCardIsNotSent(t *testing.T) {
	a, store, ft, _ := newTestActions(0)
	activeStore(t, store, 2)
	assert.Error(t, a.Play(context.Background(), card.Card{Suit: card.Spade}))
	assert.Empty(t, ft.Sent())
}
