package protocol

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"voyager.com/cardclient/internal/card"
	"voyager.com/cardclient/internal/game"
)

// Outbound action tags.
const (
	ActionReady    = "Ready"
	ActionPlayCard = "CardPlayedByPlayer"
	ActionEndGame  = "EndGame"
)

type Ready struct {
	PlayerID game.PlayerID `json:"player_id"`
}

type CardPlayedByPlayer struct {
	PlayerID game.PlayerID `json:"player_id"`
	Card     card.Card     `json:"card"`
}

// Encode produces the same tagged shape the server uses for its own
// messages: a bare tag string when payload is nil, otherwise {tag: payload}.
func Encode(tag string, payload interface{}) ([]byte, error) {
	if tag == "" {
		return nil, errors.New("empty action tag")
	}
	if payload == nil {
		return jsoniter.Marshal(tag)
	}
	stream := jsoniter.ConfigDefault.BorrowStream(nil)
	defer jsoniter.ConfigDefault.ReturnStream(stream)
	stream.WriteObjectStart()
	stream.WriteObjectField(tag)
	stream.WriteVal(payload)
	stream.WriteObjectEnd()
	if stream.Error != nil {
		return nil, errors.Wrapf(stream.Error, "encoding %s", tag)
	}
	// the buffer goes back to the pool
	return append([]byte(nil), stream.Buffer()...), nil
}

func EncodeReady(playerID game.PlayerID) ([]byte, error) {
	return Encode(ActionReady, Ready{PlayerID: playerID})
}

func EncodePlayCard(playerID game.PlayerID, c card.Card) ([]byte, error) {
	if !c.Valid() {
		return nil, errors.Errorf("cannot play invalid card %+v", c)
	}
	return Encode(ActionPlayCard, CardPlayedByPlayer{PlayerID: playerID, Card: c})
}

func EncodeEndGame() ([]byte, error) {
	return Encode(ActionEndGame, nil)
}
