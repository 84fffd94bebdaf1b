package table

import (
	"voyager.com/cardclient/internal/card"
	"voyager.com/cardclient/internal/game"
)

// Holding is everything the local model knows about a player's cards.
// The only implementations are *OwnHand and *OpponentHandle.
type Holding interface {
	CardCount() int
	sealed()
}

// OwnHand holds the exact cards of the local player.
type OwnHand struct {
	cards []card.Card
}

// Cards returns a copy of the hand in the order the server dealt it.
func (h *OwnHand) Cards() []card.Card {
	out := make([]card.Card, len(h.cards))
	copy(out, h.cards)
	return out
}

func (h *OwnHand) CardCount() int {
	return len(h.cards)
}

func (h *OwnHand) Contains(c card.Card) bool {
	for _, held := range h.cards {
		if held == c {
			return true
		}
	}
	return false
}

func (h *OwnHand) replace(cards []card.Card) {
	h.cards = make([]card.Card, len(cards))
	copy(h.cards, cards)
}

func (h *OwnHand) add(cards ...card.Card) {
	h.cards = append(h.cards, cards...)
}

// remove drops the first card equal to c.
func (h *OwnHand) remove(c card.Card) bool {
	for i, held := range h.cards {
		if held == c {
			h.cards = append(h.cards[:i], h.cards[i+1:]...)
			return true
		}
	}
	return false
}

func (*OwnHand) sealed() {}

// OpponentHandle is the only thing known about another player's cards: how
// many there are. It has no way to hold card identities.
type OpponentHandle struct {
	count int
}

func (o *OpponentHandle) CardCount() int {
	return o.count
}

func (o *OpponentHandle) setCount(n int) {
	if n < 0 {
		n = 0
	}
	o.count = n
}

func (o *OpponentHandle) add(n int) {
	o.setCount(o.count + n)
}

// take decrements the count with a floor of zero. It reports false when the
// count was too small.
func (o *OpponentHandle) take(n int) bool {
	ok := o.count >= n
	o.setCount(o.count - n)
	return ok
}

func (*OpponentHandle) sealed() {}

// Player is a seated player. Which holding it carries is decided once, when
// the record is built, by comparing the id with the local player id.
type Player struct {
	ID        game.PlayerID
	Name      string
	SeatIndex int
	holding   Holding
}

func (p *Player) Holding() Holding {
	return p.holding
}

func (p *Player) IsSelf() bool {
	_, ok := p.holding.(*OwnHand)
	return ok
}

func (p *Player) opponent() (*OpponentHandle, bool) {
	o, ok := p.holding.(*OpponentHandle)
	return o, ok
}
