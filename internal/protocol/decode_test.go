package protocol

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voyager.com/cardclient/internal/card"
	"voyager.com/cardclient/internal/game"
)

var (
	aceSpade = card.New(card.Ace, card.Spade)
	kingClub = card.New(card.King, card.Club)
)

func TestDecode(t *testing.T) {
	testCases := []struct {
		frame    string
		expected Message
	}{
		{frame: `{"Id":{"p_id":2}}`, expected: &AssignID{PlayerID: 2}},
		{frame: `{"Id":{"p_id":0}}`, expected: &AssignID{PlayerID: 0}},
		{
			frame:    `{"Hand":{"cards":[{"rank":"Ace","suit":"Spade"},51]}}`,
			expected: &Hand{Cards: []card.Card{aceSpade, kingClub}},
		},
		{frame: `{"Hand":{"cards":[]}}`, expected: &Hand{Cards: []card.Card{}}},
		{frame: `{"SeatOrder":{"seats":[5,2,8]}}`, expected: &SeatOrder{Seats: []game.PlayerID{5, 2, 8}}},
		{frame: `{"MarkReady":{"p_id":3}}`, expected: &MarkReady{PlayerID: 3}},
		{frame: `"StartGame"`, expected: &StartGame{}},
		{frame: `{"StartGame":null}`, expected: &StartGame{}},
		{
			frame:    `{"StartGame":{"players":[{"player_id":4,"name":"ann"}]}}`,
			expected: &StartGame{Players: []RosterEntry{{PlayerID: 4, Name: "ann"}}},
		},
		{
			frame: `{"CardsDistributed":{"player_cards":[{"player_id":1,"cards":[0]}]}}`,
			expected: &CardsDistributed{PlayerCards: []PlayerCards{
				{PlayerID: 1, Cards: []card.Card{aceSpade}},
			}},
		},
		{frame: `{"NextTurn":{"player_id":8}}`, expected: &NextTurn{PlayerID: 8}},
		{frame: `{"TurnChanged":{"player_id":8}}`, expected: &NextTurn{PlayerID: 8}},
		{
			frame:    `{"CardPlayed":{"card":{"rank":"Ace","suit":"Spade"},"p_id":2}}`,
			expected: &CardPlayed{Card: aceSpade, PlayerID: 2},
		},
		{
			frame:    `{"FoulGiven":{"from":1,"to":2,"cards":[51]}}`,
			expected: &FoulGiven{From: 1, To: 2, Cards: []card.Card{kingClub}},
		},
		{frame: `"DiscardPile"`, expected: &DiscardPile{}},
		{frame: `"PileDiscarded"`, expected: &DiscardPile{}},
		{frame: `{"PlayerWon":{"player_id":6}}`, expected: &PlayerWon{PlayerID: 6}},
		{frame: `{"EndGame":{"p_id":6}}`, expected: &EndGame{PlayerID: 6}},
		{frame: `"AbortGame"`, expected: &AbortGame{}},
		{frame: `{"Error":{"message":"nope"}}`, expected: &Error{Message: "nope"}},
		{frame: `{"PlayerAdded":{"p_id":9}}`, expected: &PlayerAdded{PlayerID: 9}},
		{frame: `{"PlayerLeft":{"p_id":9}}`, expected: &PlayerLeft{PlayerID: 9}},
		{
			frame:    `{"SpecialEvent":{"p_id":1,"card":0,"from":2}}`,
			expected: &SpecialEvent{PlayerID: 1, Card: aceSpade, From: 2},
		},
		{frame: `{"InvalidCard":{"p_id":1}}`, expected: &InvalidCard{PlayerID: 1}},
		{frame: `"InvalidPlayer"`, expected: &InvalidPlayer{}},
		{frame: "  \n\"DiscardPile\" ", expected: &DiscardPile{}},
		{frame: `{"NextTurn":{"player_id":8,"extra":true}}`, expected: &NextTurn{PlayerID: 8}},
	}
	for _, tc := range testCases {
		msg, err := Decode([]byte(tc.frame))
		if !assert.NoError(t, err, tc.frame) {
			continue
		}
		if !cmp.Equal(tc.expected, msg) {
			t.Errorf("%s: %s", tc.frame, cmp.Diff(tc.expected, msg))
		}
	}
}

func TestDecodeUnknownKind(t *testing.T) {
	msg, err := Decode([]byte(`{"Chat":{"text":"hi"}}`))
	require.NoError(t, err)
	u, ok := msg.(*Unknown)
	require.True(t, ok)
	assert.Equal(t, "Chat", u.Tag)
	assert.JSONEq(t, `{"text":"hi"}`, string(u.Payload))
	assert.Equal(t, KindUnknown, msg.Kind())

	msg, err = Decode([]byte(`"Shuffle"`))
	require.NoError(t, err)
	assert.Equal(t, &Unknown{Tag: "Shuffle"}, msg)
}

func TestDecodeErrors(t *testing.T) {
	testCases := []struct {
		frame string
		err   error
	}{
		{frame: ``, err: ErrMalformedFrame},
		{frame: `{"Id":`, err: ErrMalformedFrame},
		{frame: `42`, err: ErrInvalidShape},
		{frame: `[]`, err: ErrInvalidShape},
		{frame: `null`, err: ErrInvalidShape},
		{frame: `""`, err: ErrInvalidShape},
		{frame: `{}`, err: ErrInvalidShape},
		{frame: `{"Id":{"p_id":1},"Hand":{"cards":[]}}`, err: ErrInvalidShape},
		{frame: `"Id"`, err: ErrInvalidPayload},
		{frame: `{"Id":null}`, err: ErrInvalidPayload},
		{frame: `{"Id":{}}`, err: ErrInvalidPayload},
		{frame: `{"Id":{"p_id":"two"}}`, err: ErrInvalidPayload},
		{frame: `{"Id":{"p_id":-1}}`, err: ErrInvalidPayload},
		{frame: `{"Hand":[1,2]}`, err: ErrInvalidPayload},
		{frame: `{"Hand":{"cards":[52]}}`, err: ErrInvalidPayload},
		{frame: `{"CardPlayed":{"card":{"rank":"Ace","suit":"Spade"}}}`, err: ErrInvalidPayload},
		{frame: `{"CardPlayed":{"card":{"rank":"One","suit":"Spade"},"p_id":1}}`, err: ErrInvalidPayload},
		{frame: `{"FoulGiven":{"from":1,"cards":[]}}`, err: ErrInvalidPayload},
		{frame: `{"SpecialEvent":{"p_id":1,"card":0}}`, err: ErrInvalidPayload},
	}
	for _, tc := range testCases {
		msg, err := Decode([]byte(tc.frame))
		assert.Nil(t, msg, tc.frame)
		assert.True(t, errors.Is(err, tc.err), "%s: got %v", tc.frame, err)
	}
}

func TestSplit(t *testing.T) {
	tag, payload, err := Split([]byte(`{"NextTurn":{"player_id":1}}`))
	require.NoError(t, err)
	assert.Equal(t, "NextTurn", tag)
	assert.JSONEq(t, `{"player_id":1}`, string(payload))

	tag, payload, err = Split([]byte(`"AbortGame"`))
	require.NoError(t, err)
	assert.Equal(t, "AbortGame", tag)
	assert.Nil(t, payload)
}
