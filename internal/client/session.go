package client

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"voyager.com/cardclient/internal/config"
	"voyager.com/cardclient/internal/protocol"
	"voyager.com/cardclient/internal/scheduler"
	"voyager.com/cardclient/internal/table"
	"voyager.com/cardclient/internal/transport"
	"voyager.com/cardclient/internal/util"
	"voyager.com/cardclient/logging"
)

var sessionLogger = logging.GetZeroLogger("client::session", nil)

// Session owns everything that lives for one connection: the store, the
// presentation queue and the applicator. A new connection gets a new session.
type Session struct {
	ID string

	logger     *zerolog.Logger
	transport  transport.Transport
	store      *table.Store
	queue      *scheduler.Scheduler
	applicator *Applicator
	actions    *Actions
}

func NewSession(cfg config.Config, t transport.Transport, renderer Renderer) *Session {
	id := uuid.New().String()
	logger := sessionLogger.With().Str(logging.SessionIDKey, id).Logger()

	store := table.NewStore(cfg.DeckSize)
	store.SetSelfName(cfg.PlayerName)
	queue := scheduler.New(cfg.Delays.QueueDelayDuration())
	applicator := NewApplicator(&logger, store, queue, renderer, ApplicatorConfig{
		Delays:      cfg.Delays,
		HistorySize: cfg.HistorySize,
		PrintMsg:    util.Env.ShouldPrintMsg(),
		PrintState:  util.Env.ShouldPrintStateMsg(),
	})
	return &Session{
		ID:         id,
		logger:     &logger,
		transport:  t,
		store:      store,
		queue:      queue,
		applicator: applicator,
		actions:    NewActions(&logger, store, t, renderer, cfg.ActionInterval()),
	}
}

func (s *Session) Store() *table.Store {
	return s.store
}

func (s *Session) Actions() *Actions {
	return s.actions
}

func (s *Session) Applicator() *Applicator {
	return s.applicator
}

func (s *Session) Snapshot() table.Snapshot {
	return s.store.Snapshot()
}

func (s *Session) History() []string {
	return s.applicator.History()
}

// WaitIdle blocks until every queued presentation task has run.
func (s *Session) WaitIdle(ctx context.Context) error {
	return s.queue.WaitIdle(ctx)
}

// HandleFrame decodes one inbound frame and applies it. Malformed frames are
// dropped; the connection stays open.
func (s *Session) HandleFrame(frame []byte) error {
	util.Metrics.FrameReceived()
	msg, err := protocol.Decode(frame)
	if err != nil {
		util.Metrics.ProtocolViolation()
		s.logger.Error().Err(err).Msgf("Dropping frame [%s]", string(frame))
		return err
	}
	return s.applicator.Apply(msg)
}

// Run is the message loop. It returns when ctx is done or the transport
// closes its frame channel.
func (s *Session) Run(ctx context.Context) error {
	s.logger.Info().Msg("Session started.")
	frames := s.transport.Frames()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case frame, ok := <-frames:
			if !ok {
				s.logger.Info().Msg("Connection closed by the server.")
				return transport.ErrClosed
			}
			// errors are logged and counted where they are detected
			_ = s.HandleFrame(frame)
		}
	}
}

// Close stops the presentation queue and the transport.
func (s *Session) Close() error {
	s.queue.Close()
	if err := s.transport.Close(); err != nil {
		return errors.Wrap(err, "closing transport")
	}
	return nil
}
