package protocol

import (
	jsoniter "github.com/json-iterator/go"
	"voyager.com/cardclient/internal/card"
	"voyager.com/cardclient/internal/game"
)

// Kind is the discriminant of an inbound message.
type Kind string

const (
	KindID               Kind = "Id"
	KindHand             Kind = "Hand"
	KindSeatOrder        Kind = "SeatOrder"
	KindMarkReady        Kind = "MarkReady"
	KindStartGame        Kind = "StartGame"
	KindCardsDistributed Kind = "CardsDistributed"
	KindNextTurn         Kind = "NextTurn"
	KindCardPlayed       Kind = "CardPlayed"
	KindFoulGiven        Kind = "FoulGiven"
	KindDiscardPile      Kind = "DiscardPile"
	KindPlayerWon        Kind = "PlayerWon"
	KindEndGame          Kind = "EndGame"
	KindAbortGame        Kind = "AbortGame"
	KindError            Kind = "Error"
	KindPlayerAdded      Kind = "PlayerAdded"
	KindPlayerLeft       Kind = "PlayerLeft"
	KindSpecialEvent     Kind = "SpecialEvent"
	KindInvalidCard      Kind = "InvalidCard"
	KindInvalidPlayer    Kind = "InvalidPlayer"
	KindUnknown          Kind = "Unknown"
)

// Message is one decoded inbound message. The set of implementations is
// closed: every tag the decoder does not recognise becomes *Unknown.
type Message interface {
	Kind() Kind
}

type AssignID struct {
	PlayerID game.PlayerID `json:"p_id"`
}

type Hand struct {
	Cards []card.Card `json:"cards"`
}

type SeatOrder struct {
	Seats []game.PlayerID `json:"seats"`
}

type MarkReady struct {
	PlayerID game.PlayerID `json:"p_id"`
}

// RosterEntry names a player in an optional StartGame roster.
type RosterEntry struct {
	PlayerID game.PlayerID `json:"player_id"`
	Name     string        `json:"name"`
}

// StartGame is usually a bare tag. Some servers include the seated roster.
type StartGame struct {
	Players []RosterEntry `json:"players,omitempty"`
}

type PlayerCards struct {
	PlayerID game.PlayerID `json:"player_id"`
	Cards    []card.Card   `json:"cards"`
}

type CardsDistributed struct {
	PlayerCards []PlayerCards `json:"player_cards"`
}

type NextTurn struct {
	PlayerID game.PlayerID `json:"player_id"`
}

type CardPlayed struct {
	Card     card.Card     `json:"card"`
	PlayerID game.PlayerID `json:"p_id"`
}

// FoulGiven moves the cards on the table to the punished player (To).
type FoulGiven struct {
	From  game.PlayerID `json:"from"`
	To    game.PlayerID `json:"to"`
	Cards []card.Card   `json:"cards"`
}

type DiscardPile struct{}

type PlayerWon struct {
	PlayerID game.PlayerID `json:"player_id"`
}

// EndGame names the last player left holding cards.
type EndGame struct {
	PlayerID game.PlayerID `json:"p_id"`
}

type AbortGame struct{}

type Error struct {
	Message string `json:"message"`
}

type PlayerAdded struct {
	PlayerID game.PlayerID `json:"p_id"`
}

type PlayerLeft struct {
	PlayerID game.PlayerID `json:"p_id"`
}

// SpecialEvent hands one card from From to PlayerID.
type SpecialEvent struct {
	PlayerID game.PlayerID `json:"p_id"`
	Card     card.Card     `json:"card"`
	From     game.PlayerID `json:"from"`
}

type InvalidCard struct {
	PlayerID game.PlayerID `json:"p_id"`
}

type InvalidPlayer struct{}

// Unknown carries a tag this client does not understand.
type Unknown struct {
	Tag     string
	Payload jsoniter.RawMessage
}

func (*AssignID) Kind() Kind         { return KindID }
func (*Hand) Kind() Kind             { return KindHand }
func (*SeatOrder) Kind() Kind        { return KindSeatOrder }
func (*MarkReady) Kind() Kind        { return KindMarkReady }
func (*StartGame) Kind() Kind        { return KindStartGame }
func (*CardsDistributed) Kind() Kind { return KindCardsDistributed }
func (*NextTurn) Kind() Kind         { return KindNextTurn }
func (*CardPlayed) Kind() Kind       { return KindCardPlayed }
func (*FoulGiven) Kind() Kind        { return KindFoulGiven }
func (*DiscardPile) Kind() Kind      { return KindDiscardPile }
func (*PlayerWon) Kind() Kind        { return KindPlayerWon }
func (*EndGame) Kind() Kind          { return KindEndGame }
func (*AbortGame) Kind() Kind        { return KindAbortGame }
func (*Error) Kind() Kind            { return KindError }
func (*PlayerAdded) Kind() Kind      { return KindPlayerAdded }
func (*PlayerLeft) Kind() Kind       { return KindPlayerLeft }
func (*SpecialEvent) Kind() Kind     { return KindSpecialEvent }
func (*InvalidCard) Kind() Kind      { return KindInvalidCard }
func (*InvalidPlayer) Kind() Kind    { return KindInvalidPlayer }
func (*Unknown) Kind() Kind          { return KindUnknown }
