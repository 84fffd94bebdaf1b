package table

import (
	"voyager.com/cardclient/internal/card"
	"voyager.com/cardclient/internal/game"
)

// SelfView is the local player as seen by the UI. It is the only view that
// carries card identities.
type SelfView struct {
	ID        game.PlayerID `json:"id"`
	Name      string        `json:"name"`
	SeatIndex int           `json:"seatIndex"`
	Hand      []card.Card   `json:"hand"`
	Finished  bool          `json:"finished"`
}

// OpponentView exposes how many cards another player holds, never which.
type OpponentView struct {
	ID        game.PlayerID `json:"id"`
	Name      string        `json:"name"`
	SeatIndex int           `json:"seatIndex"`
	CardCount int           `json:"cardCount"`
	Finished  bool          `json:"finished"`
}

type RosterView struct {
	ID    game.PlayerID `json:"id"`
	Name  string        `json:"name,omitempty"`
	Ready bool          `json:"ready"`
}

// Snapshot is a read-only copy of the store. Opponents are listed in
// relative seat order.
type Snapshot struct {
	SelfID        game.PlayerID   `json:"selfId"`
	HasSelfID     bool            `json:"hasSelfId"`
	Lifecycle     game.Lifecycle  `json:"lifecycle"`
	Generation    uint64          `json:"generation"`
	AbsoluteSeats []game.PlayerID `json:"absoluteSeats"`
	RelativeSeats []game.PlayerID `json:"relativeSeats"`
	Self          *SelfView       `json:"self,omitempty"`
	Opponents     []OpponentView  `json:"opponents"`
	Pile          []PileEntry     `json:"pile"`
	Turn          game.PlayerID   `json:"turn"`
	HasTurn       bool            `json:"hasTurn"`
	Winners       []game.PlayerID `json:"winners"`
	Outcome       game.PlayerID   `json:"outcome"`
	HasOutcome    bool            `json:"hasOutcome"`
	Roster        []RosterView    `json:"roster"`
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		SelfID:        s.selfID,
		HasSelfID:     s.hasSelf,
		Lifecycle:     s.lifecycle,
		Generation:    s.generation,
		AbsoluteSeats: append([]game.PlayerID(nil), s.absolute...),
		RelativeSeats: s.copyRelative(),
		Pile:          s.pileLocked(),
		Turn:          s.turn,
		HasTurn:       s.hasTurn,
		Winners:       append([]game.PlayerID(nil), s.winners...),
		Outcome:       s.outcome,
		HasOutcome:    s.hasOutcome,
	}
	for _, id := range s.relative {
		p, ok := s.players[id]
		if !ok {
			continue
		}
		finished := indexOf(s.winners, id) != -1
		if p.IsSelf() {
			snap.Self = &SelfView{
				ID:        p.ID,
				Name:      p.Name,
				SeatIndex: p.SeatIndex,
				Hand:      s.own.Cards(),
				Finished:  finished,
			}
			continue
		}
		snap.Opponents = append(snap.Opponents, OpponentView{
			ID:        p.ID,
			Name:      p.Name,
			SeatIndex: p.SeatIndex,
			CardCount: p.holding.CardCount(),
			Finished:  finished,
		})
	}
	if snap.Self == nil && s.hasSelf && s.lifecycle != game.Lobby {
		// not seated yet
		snap.Self = &SelfView{ID: s.selfID, Name: s.nameLocked(s.selfID, nil), SeatIndex: -1, Hand: s.own.Cards()}
	}
	for _, r := range s.roster {
		snap.Roster = append(snap.Roster, RosterView{ID: r.id, Name: r.name, Ready: r.ready})
	}
	return snap
}

func (s *Store) copyRelative() []game.PlayerID {
	return append([]game.PlayerID(nil), s.relative...)
}

func (s *Store) pileLocked() []PileEntry {
	out := make([]PileEntry, 0, len(s.pile))
	for _, it := range s.pile {
		out = append(out, it.entry)
	}
	return out
}

// SelfID returns the local player id, if the server has assigned one.
func (s *Store) SelfID() (game.PlayerID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selfID, s.hasSelf
}

// Hand returns a copy of the local player's cards.
func (s *Store) Hand() []card.Card {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.own.Cards()
}

func (s *Store) HandAssigned() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handAssigned
}

func (s *Store) Pile() []PileEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pileLocked()
}

func (s *Store) Turn() (game.PlayerID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.turn, s.hasTurn
}

func (s *Store) Lifecycle() game.Lifecycle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lifecycle
}

func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

func (s *Store) RelativeSeats() []game.PlayerID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyRelative()
}

func (s *Store) Seated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seated
}

// IsSeated reports whether id has a player record in the current game.
func (s *Store) IsSeated(id game.PlayerID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.players[id]
	return ok
}

// CardCount returns the number of cards a player holds.
func (s *Store) CardCount(id game.PlayerID) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.hasSelf && id == s.selfID {
		return s.own.CardCount(), true
	}
	p, ok := s.players[id]
	if !ok {
		return 0, false
	}
	return p.holding.CardCount(), true
}

func (s *Store) IsMyTurn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasSelf && s.hasTurn && s.turn == s.selfID
}

// PlayerName returns the display name for id.
func (s *Store) PlayerName(id game.PlayerID) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.players[id]; ok {
		return p.Name
	}
	return s.nameLocked(id, nil)
}
