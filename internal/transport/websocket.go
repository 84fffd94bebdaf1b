package transport

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"nhooyr.io/websocket"

	"voyager.com/cardclient/logging"
)

const (
	wsReadLimit   = 1 << 20
	wsPingTimeout = 5 * time.Second
)

var websocketLogger = logging.GetZeroLogger("transport::websocket", nil)

// Websocket is a Transport over one websocket connection. Every server
// message arrives as one frame; text and binary frames are both delivered.
type Websocket struct {
	logger *zerolog.Logger
	url    string
	conn   *websocket.Conn
	frames chan []byte

	ctx    context.Context
	cancel context.CancelFunc

	open      int32
	keepalive *Keepalive
	closeOnce sync.Once
}

// DialWebsocket connects to url. A positive keepaliveInterval starts a ping
// loop that closes the connection when the server stops answering.
func DialWebsocket(ctx context.Context, url string, keepaliveInterval time.Duration) (*Websocket, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing %s", url)
	}
	conn.SetReadLimit(wsReadLimit)

	logger := websocketLogger.With().Str("url", url).Logger()
	loopCtx, cancel := context.WithCancel(context.Background())
	w := &Websocket{
		logger: &logger,
		url:    url,
		conn:   conn,
		frames: make(chan []byte, 64),
		ctx:    loopCtx,
		cancel: cancel,
		open:   1,
	}
	go w.readLoop()
	if keepaliveInterval > 0 {
		w.keepalive = NewKeepalive(w.logger, keepaliveInterval, w.ping, func(error) {
			w.Close()
		})
		w.keepalive.Run()
	}
	w.logger.Info().Msg("Connected.")
	return w, nil
}

func (w *Websocket) readLoop() {
	defer close(w.frames)
	defer atomic.StoreInt32(&w.open, 0)
	for {
		_, data, err := w.conn.Read(w.ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				w.logger.Info().Msg("Server closed the connection.")
			default:
				if w.ctx.Err() != nil {
					w.logger.Debug().Msg("Read loop stopped.")
				} else {
					w.logger.Warn().Err(err).Msg("Connection lost.")
				}
			}
			return
		}
		select {
		case w.frames <- data:
		case <-w.ctx.Done():
			return
		}
	}
}

// ping needs the read loop running to receive the pong.
func (w *Websocket) ping() error {
	ctx, cancel := context.WithTimeout(w.ctx, wsPingTimeout)
	defer cancel()
	return w.conn.Ping(ctx)
}

func (w *Websocket) Send(ctx context.Context, frame []byte) error {
	if !w.IsOpen() {
		return ErrClosed
	}
	if err := w.conn.Write(ctx, websocket.MessageText, frame); err != nil {
		return errors.Wrap(err, "websocket write")
	}
	return nil
}

func (w *Websocket) IsOpen() bool {
	return atomic.LoadInt32(&w.open) == 1
}

func (w *Websocket) Frames() <-chan []byte {
	return w.frames
}

func (w *Websocket) Close() error {
	var err error
	w.closeOnce.Do(func() {
		atomic.StoreInt32(&w.open, 0)
		if w.keepalive != nil {
			w.keepalive.Destroy()
		}
		err = w.conn.Close(websocket.StatusNormalClosure, "")
		w.cancel()
	})
	return errors.Wrap(err, "closing websocket")
}
