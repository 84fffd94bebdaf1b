package transport

import (
	"context"

	"github.com/pkg/errors"
)

var ErrClosed = errors.New("transport closed")

// Transport is an ordered, reliable, message-oriented duplex channel to the
// table server. Frames is closed when the connection ends.
type Transport interface {
	Send(ctx context.Context, frame []byte) error
	IsOpen() bool
	Frames() <-chan []byte
	Close() error
}
