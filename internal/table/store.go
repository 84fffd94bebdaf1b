package table

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"voyager.com/cardclient/internal/card"
	"voyager.com/cardclient/internal/game"
	"voyager.com/cardclient/logging"
)

var storeLogger = logging.GetZeroLogger("table::store", nil)

// Seat names a player in a game-start roster.
type Seat struct {
	ID   game.PlayerID
	Name string
}

// Deal is one player's share of a CardsDistributed message.
type Deal struct {
	PlayerID game.PlayerID
	Cards    []card.Card
}

// PileEntry is a card on the table and the player who put it there.
type PileEntry struct {
	Card     card.Card     `json:"card"`
	PlayerID game.PlayerID `json:"playerId"`
}

type pileItem struct {
	entry PileEntry
	seq   uint64
}

type rosterEntry struct {
	id    game.PlayerID
	name  string
	ready bool
}

// Store is the local, partial-information model of one table. It is owned by
// a single session; all mutations come from the applicator while presentation
// tasks read it concurrently.
type Store struct {
	mu       sync.RWMutex
	logger   *zerolog.Logger
	deckSize int

	selfID   game.PlayerID
	hasSelf  bool
	selfName string

	seated   bool
	absolute []game.PlayerID
	relative []game.PlayerID
	players  map[game.PlayerID]*Player

	own          *OwnHand
	handAssigned bool
	countsKnown  bool

	pile    []pileItem
	pileSeq uint64

	turn    game.PlayerID
	hasTurn bool

	lifecycle  game.Lifecycle
	generation uint64
	winners    []game.PlayerID
	outcome    game.PlayerID
	hasOutcome bool

	roster []rosterEntry
}

// SetSelfName is the display name used for the local player when the server
// does not provide one.
func (s *Store) SetSelfName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selfName = name
}

// NewStore creates an empty model. deckSize is used to infer opponent card
// counts from a round-robin deal; zero disables the inference.
func NewStore(deckSize int) *Store {
	return &Store{
		logger:    storeLogger,
		deckSize:  deckSize,
		players:   make(map[game.PlayerID]*Player),
		own:       &OwnHand{},
		lifecycle: game.Lobby,
	}
}

func (s *Store) AssignSelfID(id game.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasSelf {
		return errors.Wrapf(ErrSelfIDAssigned, "have %d, got %d", s.selfID, id)
	}
	s.selfID = id
	s.hasSelf = true
	if s.seated {
		// seats arrived first and were kept in server order
		s.relative = Rotate(s.absolute, id)
		if s.lifecycle == game.Active {
			names := make(map[game.PlayerID]string, len(s.players))
			for pid, p := range s.players {
				names[pid] = p.Name
			}
			s.buildPlayersLocked(names)
		}
	}
	return nil
}

// AssignSeats rotates the absolute seat order around the local player and
// returns the relative order.
func (s *Store) AssignSeats(absolute []game.PlayerID) ([]game.PlayerID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seated {
		return nil, errors.Wrapf(ErrSeatsAssigned, "have %v, got %v", s.absolute, absolute)
	}
	if len(absolute) == 0 {
		return nil, ErrEmptySeatOrder
	}
	s.seatLocked(absolute)
	if s.lifecycle == game.Active {
		s.buildPlayersLocked(nil)
	}
	return s.copyRelative(), nil
}

func (s *Store) seatLocked(absolute []game.PlayerID) {
	s.absolute = append([]game.PlayerID(nil), absolute...)
	if s.hasSelf {
		s.relative = Rotate(s.absolute, s.selfID)
	} else {
		s.logger.Warn().Msgf("Seat order %v arrived before the player id. Keeping server order until it does.", absolute)
		s.relative = append([]game.PlayerID(nil), s.absolute...)
	}
	s.seated = true
}

// buildPlayersLocked creates one record per seated player. Opponent counts
// already known for the same id are carried over.
func (s *Store) buildPlayersLocked(names map[game.PlayerID]string) {
	players := make(map[game.PlayerID]*Player, len(s.absolute))
	for i, id := range s.absolute {
		p := &Player{ID: id, SeatIndex: i, Name: s.nameLocked(id, names)}
		if s.hasSelf && id == s.selfID {
			p.holding = s.own
		} else {
			opp := &OpponentHandle{}
			if prev, ok := s.players[id]; ok {
				if o, ok := prev.opponent(); ok {
					opp.setCount(o.CardCount())
				}
			}
			p.holding = opp
		}
		players[id] = p
	}
	s.players = players
}

func (s *Store) nameLocked(id game.PlayerID, names map[game.PlayerID]string) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	for _, r := range s.roster {
		if r.id == id && r.name != "" {
			return r.name
		}
	}
	if s.hasSelf && id == s.selfID && s.selfName != "" {
		return s.selfName
	}
	return fmt.Sprintf("Player %d", id)
}

// InitGame resets every per-game field and marks the game active. Seats
// assigned before the start are kept; otherwise players are seated from the
// given roster or, failing that, from the lobby roster in join order. It
// returns the new game generation.
func (s *Store) InitGame(roster []Seat) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.own = &OwnHand{}
	s.handAssigned = false
	s.countsKnown = false
	s.pile = nil
	s.turn, s.hasTurn = 0, false
	s.winners = nil
	s.outcome, s.hasOutcome = 0, false
	s.players = make(map[game.PlayerID]*Player)
	s.lifecycle = game.Active
	s.generation++

	names := make(map[game.PlayerID]string, len(roster))
	for _, seat := range roster {
		names[seat.ID] = seat.Name
	}
	if !s.seated {
		switch {
		case len(roster) > 0:
			ids := make([]game.PlayerID, 0, len(roster))
			for _, seat := range roster {
				ids = append(ids, seat.ID)
			}
			s.seatLocked(ids)
		case s.hasSelf && s.rosterIndexLocked(s.selfID) != -1:
			ids := make([]game.PlayerID, 0, len(s.roster))
			for _, r := range s.roster {
				ids = append(ids, r.id)
			}
			s.seatLocked(ids)
		}
	}
	if s.seated {
		s.buildPlayersLocked(names)
	}
	s.logger.Debug().
		Uint64(logging.GenerationKey, s.generation).
		Msgf("Game initialized. Seats: %v", s.relative)
	return s.generation
}

// AssignHand stores the local player's hand.
func (s *Store) AssignHand(cards []card.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handAssigned {
		return errors.Wrapf(ErrHandAssigned, "ignoring %d cards", len(cards))
	}
	s.own.replace(cards)
	s.handAssigned = true
	if !s.countsKnown {
		s.inferCountsLocked()
	}
	return nil
}

// inferCountsLocked fills opponent counts assuming the server dealt the deck
// one card at a time in absolute seat order.
func (s *Store) inferCountsLocked() {
	n := len(s.absolute)
	if s.deckSize <= 0 || !s.seated || n == 0 || !s.hasSelf {
		return
	}
	dealt := func(i int) int {
		c := s.deckSize / n
		if i < s.deckSize%n {
			c++
		}
		return c
	}
	selfIdx := indexOf(s.absolute, s.selfID)
	if selfIdx == -1 || dealt(selfIdx) != s.own.CardCount() {
		s.logger.Debug().Msgf("Hand size %d does not match a round-robin deal of %d cards. Not inferring opponent counts.",
			s.own.CardCount(), s.deckSize)
		return
	}
	for i, id := range s.absolute {
		p, ok := s.players[id]
		if !ok {
			continue
		}
		if o, ok := p.opponent(); ok {
			o.setCount(dealt(i))
		}
	}
}

// DistributeHands stores the full hand for self and only the number of cards
// for everybody else. The pile is cleared.
func (s *Store) DistributeHands(deals []Deal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	for _, d := range deals {
		if s.hasSelf && d.PlayerID == s.selfID {
			s.own.replace(d.Cards)
			s.handAssigned = true
			continue
		}
		p, ok := s.players[d.PlayerID]
		if !ok {
			if err == nil {
				err = errors.Wrapf(ErrUnknownPlayer, "cards dealt to player %d", d.PlayerID)
			}
			continue
		}
		if o, ok := p.opponent(); ok {
			o.setCount(len(d.Cards))
		}
	}
	s.countsKnown = true
	s.clearPileLocked()
	return err
}

func (s *Store) SetTurn(id game.PlayerID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turn = id
	s.hasTurn = true
}

// ApplyCardPlayed removes the card from the player's holding and puts it on
// the pile. The pile entry is added even when the holding disagrees.
func (s *Store) ApplyCardPlayed(id game.PlayerID, c card.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.takeLocked(id, c)
	s.pileSeq++
	s.pile = append(s.pile, pileItem{entry: PileEntry{Card: c, PlayerID: id}, seq: s.pileSeq})
	return err
}

func (s *Store) takeLocked(id game.PlayerID, c card.Card) error {
	if s.hasSelf && id == s.selfID {
		if !s.own.remove(c) {
			return errors.Wrapf(ErrCardNotInHand, "%s played by %d", c, id)
		}
		return nil
	}
	p, ok := s.players[id]
	if !ok {
		return errors.Wrapf(ErrUnknownPlayer, "%s played by %d", c, id)
	}
	if o, ok := p.opponent(); ok && !o.take(1) {
		s.logger.Warn().Uint32(logging.PlayerIDKey, uint32(id)).Msg("Opponent played a card with an empty hand.")
	}
	return nil
}

func (s *Store) giveLocked(id game.PlayerID, cards []card.Card) error {
	if s.hasSelf && id == s.selfID {
		s.own.add(cards...)
		return nil
	}
	p, ok := s.players[id]
	if !ok {
		return errors.Wrapf(ErrUnknownPlayer, "%d cards given to %d", len(cards), id)
	}
	if o, ok := p.opponent(); ok {
		o.add(len(cards))
	}
	return nil
}

// ApplyFoul gives the penalty cards to the punished player. The pile itself
// is left for the caller to clear once the collection has been shown.
func (s *Store) ApplyFoul(to game.PlayerID, cards []card.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.giveLocked(to, cards)
}

// TransferCard moves one card from one player to another.
func (s *Store) TransferCard(from, to game.PlayerID, c card.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	errFrom := s.takeLocked(from, c)
	if err := s.giveLocked(to, []card.Card{c}); err != nil {
		return err
	}
	return errFrom
}

// PileMark identifies the current top of the pile for DiscardPileThrough.
func (s *Store) PileMark() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pileSeq
}

// DiscardPileThrough removes the pile entries added up to and including mark
// and returns how many were removed.
func (s *Store) DiscardPileThrough(mark uint64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.pile[:0]
	removed := 0
	for _, it := range s.pile {
		if it.seq <= mark {
			removed++
			continue
		}
		kept = append(kept, it)
	}
	s.pile = kept
	return removed
}

// ClearPile empties the pile unconditionally. Deferred clears that must keep
// later cards use DiscardPileThrough.
func (s *Store) ClearPile() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearPileLocked()
}

func (s *Store) clearPileLocked() {
	s.pile = nil
}

// PileThrough returns the pile entries added up to and including mark that
// are still on the table.
func (s *Store) PileThrough(mark uint64) []PileEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]PileEntry, 0, len(s.pile))
	for _, it := range s.pile {
		if it.seq <= mark {
			out = append(out, it.entry)
		}
	}
	return out
}

// EndGame moves an active game to Ended and reports whether it did.
func (s *Store) EndGame(id game.PlayerID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lifecycle != game.Active {
		return false
	}
	s.lifecycle = game.Ended
	s.outcome, s.hasOutcome = id, true
	return true
}

// RecordWinner adds a finished player. remaining is the number of players
// who have not finished, counted over the seats or, when nobody is seated,
// over the lobby roster. known is false when neither is available.
func (s *Store) RecordWinner(id game.PlayerID) (remaining int, known bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOf(s.winners, id) == -1 {
		s.winners = append(s.winners, id)
	}
	var ids []game.PlayerID
	switch {
	case len(s.players) > 0:
		for pid := range s.players {
			ids = append(ids, pid)
		}
	case len(s.roster) > 0:
		for _, r := range s.roster {
			ids = append(ids, r.id)
		}
	default:
		return 0, false
	}
	for _, pid := range ids {
		if indexOf(s.winners, pid) == -1 {
			remaining++
		}
	}
	return remaining, true
}

// Reset returns to the lobby and clears every per-game field. The self id
// and the lobby roster survive.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// ResetIfGeneration resets only if no game was started since gen.
func (s *Store) ResetIfGeneration(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return false
	}
	s.resetLocked()
	return true
}

func (s *Store) resetLocked() {
	s.seated = false
	s.absolute = nil
	s.relative = nil
	s.players = make(map[game.PlayerID]*Player)
	s.own = &OwnHand{}
	s.handAssigned = false
	s.countsKnown = false
	s.pile = nil
	s.turn, s.hasTurn = 0, false
	s.winners = nil
	s.outcome, s.hasOutcome = 0, false
	s.lifecycle = game.Lobby
	for i := range s.roster {
		s.roster[i].ready = false
	}
}

func (s *Store) rosterIndexLocked(id game.PlayerID) int {
	for i, r := range s.roster {
		if r.id == id {
			return i
		}
	}
	return -1
}

// AddRosterPlayer records a player joining the lobby. It reports false if the
// player was already known.
func (s *Store) AddRosterPlayer(id game.PlayerID, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rosterIndexLocked(id) != -1 {
		return false
	}
	s.roster = append(s.roster, rosterEntry{id: id, name: name})
	return true
}

func (s *Store) RemoveRosterPlayer(id game.PlayerID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.rosterIndexLocked(id)
	if i == -1 {
		return false
	}
	s.roster = append(s.roster[:i], s.roster[i+1:]...)
	return true
}

// MarkReady flags a player as ready, adding it to the roster if needed.
func (s *Store) MarkReady(id game.PlayerID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.rosterIndexLocked(id)
	if i == -1 {
		s.roster = append(s.roster, rosterEntry{id: id, ready: true})
		return
	}
	s.roster[i].ready = true
}
