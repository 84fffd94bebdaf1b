package client

import (
	"fmt"
	"sync"

	"github.com/looplab/fsm"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"voyager.com/cardclient/internal/config"
	"voyager.com/cardclient/internal/game"
	"voyager.com/cardclient/internal/protocol"
	"voyager.com/cardclient/internal/scheduler"
	"voyager.com/cardclient/internal/table"
	"voyager.com/cardclient/internal/util"
	"voyager.com/cardclient/logging"
)

// Applicator applies decoded server messages to the store and queues the
// matching presentation work. Mutations happen synchronously inside Apply;
// only presentation is deferred.
type Applicator struct {
	mu       sync.Mutex
	logger   *zerolog.Logger
	store    *table.Store
	queue    *scheduler.Scheduler
	present  *presenter
	sm       *fsm.FSM
	history  *util.Queue
	printMsg bool
}

type ApplicatorConfig struct {
	Delays      config.Delays
	HistorySize int
	PrintMsg    bool
	PrintState  bool
}

func NewApplicator(logger *zerolog.Logger, store *table.Store, queue *scheduler.Scheduler, renderer Renderer, cfg ApplicatorConfig) *Applicator {
	historySize := cfg.HistorySize
	if historySize <= 0 {
		historySize = config.DefaultHistorySize
	}
	return &Applicator{
		logger:   logger,
		store:    store,
		queue:    queue,
		present:  newPresenter(logger, store, renderer, cfg.Delays),
		sm:       newProtocolFSM(logger, cfg.PrintState),
		history:  util.NewQueue(historySize),
		printMsg: cfg.PrintMsg,
	}
}

// State is the current protocol state.
func (a *Applicator) State() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sm.Current()
}

// History returns the most recently applied messages, oldest first.
func (a *Applicator) History() []string {
	return a.history.Items()
}

// Apply routes one message. The returned error is informational: it has
// already been logged and counted, and the store is consistent either way.
func (a *Applicator) Apply(msg protocol.Message) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.history.Push(describe(msg))
	if a.printMsg {
		a.logger.Info().Str(logging.MsgKindKey, string(msg.Kind())).Msgf("Applying %s", describe(msg))
	}

	var err error
	switch m := msg.(type) {
	case *protocol.AssignID:
		err = a.onAssignID(m)
	case *protocol.Hand:
		err = a.onHand(m)
	case *protocol.SeatOrder:
		err = a.onSeatOrder(m)
	case *protocol.StartGame:
		a.onStartGame(m)
	case *protocol.CardsDistributed:
		err = a.onCardsDistributed(m)
	case *protocol.NextTurn:
		err = a.onNextTurn(m)
	case *protocol.CardPlayed:
		err = a.onCardPlayed(m)
	case *protocol.FoulGiven:
		err = a.onFoulGiven(m)
	case *protocol.DiscardPile:
		err = a.onDiscardPile()
	case *protocol.PlayerWon:
		err = a.onPlayerWon(m)
	case *protocol.EndGame:
		a.onEndGame(m)
	case *protocol.AbortGame:
		a.onAbortGame()
	case *protocol.Error:
		a.logger.Error().Str(logging.MsgKindKey, string(m.Kind())).Msgf("Server error: %s", m.Message)
	case *protocol.MarkReady:
		a.onMarkReady(m)
	case *protocol.PlayerAdded:
		a.onPlayerAdded(m)
	case *protocol.PlayerLeft:
		a.onPlayerLeft(m)
	case *protocol.SpecialEvent:
		err = a.onSpecialEvent(m)
	case *protocol.InvalidCard:
		a.onInvalidCard(m)
	case *protocol.InvalidPlayer:
		a.logger.Warn().Str(logging.MsgKindKey, string(m.Kind())).Msg("Server rejected an action from a player out of turn.")
	case *protocol.Unknown:
		util.Metrics.UnknownKind()
		a.logger.Warn().Str(logging.MsgKindKey, m.Tag).Msg("Ignoring unknown message kind.")
	default:
		util.Metrics.UnknownKind()
		a.logger.Warn().Msgf("No handler for message %T.", msg)
	}
	if err != nil {
		a.classify(msg.Kind(), err)
	}
	return err
}

func (a *Applicator) classify(kind protocol.Kind, err error) {
	l := a.logger.Warn().Str(logging.MsgKindKey, string(kind))
	switch {
	case table.IsRedundant(err):
		util.Metrics.RedundantFact()
		l.Msgf("Ignoring redundant fact: %s", err)
	case table.IsDesync(err):
		util.Metrics.Desync()
		l.Msgf("Local state is out of sync with the server: %s", err)
	case errors.Is(err, ErrNotActive):
		l.Msgf("Ignoring message: %s", err)
	default:
		util.Metrics.ProtocolViolation()
		l.Msgf("Dropping message: %s", err)
	}
}

func describe(msg protocol.Message) string {
	if u, ok := msg.(*protocol.Unknown); ok {
		return fmt.Sprintf("%s(%s)", u.Tag, string(u.Payload))
	}
	b, err := protocol.Encode(string(msg.Kind()), msg)
	if err != nil {
		return string(msg.Kind())
	}
	return string(b)
}

// event fires a state machine event. A self transition is not an error.
func (a *Applicator) event(name string) {
	err := a.sm.Event(name)
	if err == nil {
		return
	}
	if _, ok := err.(fsm.NoTransitionError); ok {
		return
	}
	a.logger.Warn().Msgf("Error from state machine: %s", err.Error())
}

func (a *Applicator) requireActive(kind protocol.Kind) error {
	if lc := a.store.Lifecycle(); lc != game.Active {
		return errors.Wrapf(ErrNotActive, "%s while %s", kind, lc)
	}
	return nil
}

func (a *Applicator) isSelf(id game.PlayerID) bool {
	self, ok := a.store.SelfID()
	return ok && self == id
}

func (a *Applicator) onAssignID(m *protocol.AssignID) error {
	if err := a.store.AssignSelfID(m.PlayerID); err != nil {
		return err
	}
	l := a.logger.With().Uint32(logging.PlayerIDKey, uint32(m.PlayerID)).Logger()
	a.logger = &l
	a.logger.Info().Msg("Player id assigned.")
	return nil
}

func (a *Applicator) onHand(m *protocol.Hand) error {
	if err := a.store.AssignHand(m.Cards); err != nil {
		return err
	}
	r := a.present.renderer
	a.queue.Enqueue("render-hand", a.present.render(r.RenderHand, r.RenderOpponents))
	return nil
}

func (a *Applicator) onSeatOrder(m *protocol.SeatOrder) error {
	relative, err := a.store.AssignSeats(m.Seats)
	if err != nil {
		return err
	}
	if a.sm.Current() == ProtocolState__UNSEATED {
		a.event(ProtocolEvent__SEAT)
	}
	a.logger.Info().Msgf("Seats: %v", relative)
	a.queue.Enqueue("render-opponents", a.present.render(a.present.renderer.RenderOpponents))
	return nil
}

// onStartGame is the only re-initialisation point: every per-game field and
// every pending presentation task is dropped.
func (a *Applicator) onStartGame(m *protocol.StartGame) {
	dropped := a.queue.Clear()
	var roster []table.Seat
	for _, p := range m.Players {
		roster = append(roster, table.Seat{ID: p.PlayerID, Name: p.Name})
	}
	gen := a.store.InitGame(roster)
	a.event(ProtocolEvent__START)
	a.logger.Info().
		Uint64(logging.GenerationKey, gen).
		Msgf("Game started. Dropped %d pending presentation tasks.", dropped)
	a.queue.Enqueue("show-game", a.present.showGame())
}

func (a *Applicator) onCardsDistributed(m *protocol.CardsDistributed) error {
	if err := a.requireActive(m.Kind()); err != nil {
		return err
	}
	deals := make([]table.Deal, 0, len(m.PlayerCards))
	for _, pc := range m.PlayerCards {
		deals = append(deals, table.Deal{PlayerID: pc.PlayerID, Cards: pc.Cards})
	}
	err := a.store.DistributeHands(deals)
	r := a.present.renderer
	a.queue.Enqueue("render-deal", a.present.render(r.RenderHand, r.RenderOpponents, a.present.pile(a.store.PileMark())))
	return err
}

func (a *Applicator) onNextTurn(m *protocol.NextTurn) error {
	if err := a.requireActive(m.Kind()); err != nil {
		return err
	}
	if a.store.Seated() && !a.store.IsSeated(m.PlayerID) {
		return errors.Wrapf(table.ErrUnknownPlayer, "turn given to %d", m.PlayerID)
	}
	a.store.SetTurn(m.PlayerID)
	a.queue.Enqueue("render-turn", a.present.turnChanged(m.PlayerID, a.isSelf(m.PlayerID)))
	return nil
}

func (a *Applicator) onCardPlayed(m *protocol.CardPlayed) error {
	if err := a.requireActive(m.Kind()); err != nil {
		return err
	}
	err := a.store.ApplyCardPlayed(m.PlayerID, m.Card)
	a.queue.Enqueue("card-played", a.present.cardPlayed(m.PlayerID, m.Card, a.store.PileMark()))
	return err
}

// onFoulGiven gives the cards to the punished player (To) right away. The
// pile is cleared by the presentation task, through the entries present now.
func (a *Applicator) onFoulGiven(m *protocol.FoulGiven) error {
	if err := a.requireActive(m.Kind()); err != nil {
		return err
	}
	mark := a.store.PileMark()
	err := a.store.ApplyFoul(m.To, m.Cards)
	a.logger.Info().Msgf("Foul by %d. %d cards go to %d.", m.From, len(m.Cards), m.To)
	a.queue.Enqueue("foul", a.present.foul(m.To, mark, len(m.Cards), a.isSelf(m.To)))
	return err
}

func (a *Applicator) onDiscardPile() error {
	if err := a.requireActive(protocol.KindDiscardPile); err != nil {
		return err
	}
	mark := a.store.PileMark()
	a.queue.Enqueue("discard-pile", a.present.discard(mark, len(a.store.Pile())))
	return nil
}

// onPlayerWon records a player who ran out of cards. The game only ends here
// when at most one player is left holding cards, or when nobody is known to
// be seated.
func (a *Applicator) onPlayerWon(m *protocol.PlayerWon) error {
	if err := a.requireActive(m.Kind()); err != nil {
		return err
	}
	remaining, known := a.store.RecordWinner(m.PlayerID)
	self := a.isSelf(m.PlayerID)
	a.queue.Enqueue("player-won", a.present.winner(m.PlayerID, self))
	if known && remaining > 1 {
		return nil
	}
	if a.store.EndGame(m.PlayerID) {
		a.finish(m.PlayerID, fmt.Sprintf("%s won", a.store.PlayerName(m.PlayerID)))
	}
	return nil
}

func (a *Applicator) onEndGame(m *protocol.EndGame) {
	if !a.store.EndGame(m.PlayerID) {
		a.logger.Debug().Msgf("Ignoring end of game while %s.", a.store.Lifecycle())
		return
	}
	status := fmt.Sprintf("Game over. %s is left holding cards.", a.store.PlayerName(m.PlayerID))
	if a.isSelf(m.PlayerID) {
		status = "Game over. You are left holding cards."
	}
	a.finish(m.PlayerID, status)
}

func (a *Applicator) finish(id game.PlayerID, status string) {
	a.event(ProtocolEvent__END)
	gen := a.store.Generation()
	a.logger.Info().
		Uint64(logging.GenerationKey, gen).
		Uint32(logging.PlayerIDKey, uint32(id)).
		Msg("Game ended.")
	a.queue.Enqueue("end-game", a.present.finish(gen, status, a.returnToLobby))
}

// returnToLobby runs on the scheduler after the result screen. It resets the
// store only if no game has started since gen.
func (a *Applicator) returnToLobby(gen uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.store.ResetIfGeneration(gen) {
		a.logger.Debug().Uint64(logging.GenerationKey, gen).Msg("A newer game started. Staying at the table.")
		return false
	}
	if a.sm.Current() != ProtocolState__UNSEATED {
		a.event(ProtocolEvent__RESET)
	}
	return true
}

func (a *Applicator) onAbortGame() {
	a.store.EndGame(0)
	if a.sm.Current() == ProtocolState__ACTIVE {
		a.event(ProtocolEvent__END)
	}
	a.store.Reset()
	if a.sm.Current() != ProtocolState__UNSEATED {
		a.event(ProtocolEvent__RESET)
	}
	dropped := a.queue.Clear()
	a.logger.Info().Msgf("Game aborted. Dropped %d pending presentation tasks.", dropped)
	a.queue.Enqueue("abort-game", a.present.showLobby("Game aborted"))
}

func (a *Applicator) onMarkReady(m *protocol.MarkReady) {
	a.store.MarkReady(m.PlayerID)
	msg := fmt.Sprintf("%s is ready", a.store.PlayerName(m.PlayerID))
	if a.isSelf(m.PlayerID) {
		msg = "You are ready. Waiting for the others."
	}
	a.queue.Enqueue("mark-ready", a.present.status(msg))
}

func (a *Applicator) onPlayerAdded(m *protocol.PlayerAdded) {
	if !a.store.AddRosterPlayer(m.PlayerID, "") {
		a.logger.Debug().Msgf("Player %d already joined.", m.PlayerID)
		return
	}
	a.queue.Enqueue("player-added", a.present.status(fmt.Sprintf("%s joined", a.store.PlayerName(m.PlayerID))))
}

func (a *Applicator) onPlayerLeft(m *protocol.PlayerLeft) {
	name := a.store.PlayerName(m.PlayerID)
	if !a.store.RemoveRosterPlayer(m.PlayerID) {
		a.logger.Debug().Msgf("Player %d left without joining.", m.PlayerID)
	}
	a.queue.Enqueue("player-left", a.present.status(fmt.Sprintf("%s left", name)))
}

// onSpecialEvent moves one card from From to PlayerID.
func (a *Applicator) onSpecialEvent(m *protocol.SpecialEvent) error {
	if err := a.requireActive(m.Kind()); err != nil {
		return err
	}
	err := a.store.TransferCard(m.From, m.PlayerID, m.Card)
	status := fmt.Sprintf("%s takes a card from %s", a.store.PlayerName(m.PlayerID), a.store.PlayerName(m.From))
	if a.isSelf(m.PlayerID) {
		status = fmt.Sprintf("You take %s from %s", m.Card, a.store.PlayerName(m.From))
	}
	r := a.present.renderer
	a.queue.Enqueue("special-event", a.present.render(r.RenderHand, r.RenderOpponents, func() { r.SetStatus(status) }))
	return err
}

func (a *Applicator) onInvalidCard(m *protocol.InvalidCard) {
	if !a.isSelf(m.PlayerID) {
		a.logger.Debug().Msgf("Server rejected a card from %d.", m.PlayerID)
		return
	}
	a.logger.Warn().Msg("Server rejected our card.")
	a.queue.Enqueue("invalid-card", a.present.status("That card cannot be played now"))
}
