package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voyager.com/cardclient/internal/card"
)

func TestEncodeActions(t *testing.T) {
	b, err := EncodeReady(2)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Ready":{"player_id":2}}`, string(b))

	b, err = EncodePlayCard(0, kingClub)
	require.NoError(t, err)
	assert.JSONEq(t, `{"CardPlayedByPlayer":{"player_id":0,"card":{"rank":"King","suit":"Club"}}}`, string(b))

	b, err = EncodeEndGame()
	require.NoError(t, err)
	assert.Equal(t, `"EndGame"`, string(b))
}

func TestEncodeRejectsInvalid(t *testing.T) {
	_, err := EncodePlayCard(1, card.Card{Rank: card.Ace})
	assert.Error(t, err)

	_, err = Encode("", nil)
	assert.Error(t, err)

	// the payload error surfaces through the envelope
	_, err = Encode(ActionPlayCard, CardPlayedByPlayer{PlayerID: 1})
	assert.Error(t, err)

	// encoding reuses pooled buffers, so earlier results must stay intact
	first, err := EncodeReady(1)
	require.NoError(t, err)
	_, err = EncodeReady(22)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Ready":{"player_id":1}}`, string(first))
}

// Inbound messages re-encode to the shape they were decoded from.
func TestEncodeMatchesDecode(t *testing.T) {
	frames := []string{
		`{"CardPlayed":{"card":{"rank":"Ace","suit":"Spade"},"p_id":2}}`,
		`{"FoulGiven":{"from":1,"to":2,"cards":[{"rank":"King","suit":"Club"}]}}`,
		`{"SeatOrder":{"seats":[5,2,8]}}`,
	}
	for _, f := range frames {
		msg, err := Decode([]byte(f))
		require.NoError(t, err, f)
		b, err := Encode(string(msg.Kind()), msg)
		require.NoError(t, err, f)
		assert.JSONEq(t, f, string(b))
	}
}
