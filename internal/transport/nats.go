package transport

import (
	"context"
	"sync"

	natsgo "github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"voyager.com/cardclient/logging"
)

var natsLogger = logging.GetZeroLogger("transport::nats", nil)

// Nats is a Transport over a pair of NATS subjects: the table publishes on
// inbound and listens on outbound. A single subscription keeps frames in
// publish order.
type Nats struct {
	logger   *zerolog.Logger
	nc       *natsgo.Conn
	sub      *natsgo.Subscription
	outbound string

	mu     sync.RWMutex
	closed bool
	frames chan []byte
	done   chan struct{}
	once   sync.Once
}

func DialNats(url string, inbound string, outbound string) (*Nats, error) {
	logger := natsLogger.With().Str("inbound", inbound).Str("outbound", outbound).Logger()
	n := &Nats{
		logger:   &logger,
		outbound: outbound,
		frames:   make(chan []byte, 64),
		done:     make(chan struct{}),
	}

	nc, err := natsgo.Connect(url,
		natsgo.Name("cardclient"),
		natsgo.ClosedHandler(func(*natsgo.Conn) {
			n.logger.Info().Msg("NATS connection closed.")
			n.shutdown()
		}))
	if err != nil {
		return nil, errors.Wrapf(err, "connecting to NATS at %s", url)
	}
	n.nc = nc

	sub, err := nc.Subscribe(inbound, n.handleMsg)
	if err != nil {
		nc.Close()
		return nil, errors.Wrapf(err, "subscribing to %s", inbound)
	}
	n.sub = sub
	n.logger.Info().Msg("Connected.")
	return n, nil
}

func (n *Nats) handleMsg(msg *natsgo.Msg) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return
	}
	data := make([]byte, len(msg.Data))
	copy(data, msg.Data)
	select {
	case n.frames <- data:
	case <-n.done:
	}
}

func (n *Nats) Send(ctx context.Context, frame []byte) error {
	if !n.IsOpen() {
		return ErrClosed
	}
	if err := n.nc.Publish(n.outbound, frame); err != nil {
		return errors.Wrapf(err, "publishing to %s", n.outbound)
	}
	return nil
}

func (n *Nats) IsOpen() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return !n.closed && n.nc.IsConnected()
}

func (n *Nats) Frames() <-chan []byte {
	return n.frames
}

// shutdown unblocks pending deliveries before closing the frame channel.
func (n *Nats) shutdown() {
	n.once.Do(func() {
		close(n.done)
		n.mu.Lock()
		n.closed = true
		close(n.frames)
		n.mu.Unlock()
	})
}

func (n *Nats) Close() error {
	var err error
	if n.sub != nil {
		err = n.sub.Unsubscribe()
	}
	n.nc.Close()
	n.shutdown()
	if err != nil && err != natsgo.ErrConnectionClosed && err != natsgo.ErrBadSubscription {
		return errors.Wrap(err, "unsubscribing")
	}
	return nil
}
