package transport

import (
	"time"

	"github.com/rs/zerolog"
)

const defaultMaxPingFailures = 3

// Keepalive pings the server on a fixed interval. After maxFailures pings in
// a row fail, onDead is called once and the loop stops.
type Keepalive struct {
	logger      *zerolog.Logger
	interval    time.Duration
	maxFailures int

	chEnd chan bool

	ping   func() error
	onDead func(err error)
}

func NewKeepalive(logger *zerolog.Logger, interval time.Duration, ping func() error, onDead func(err error)) *Keepalive {
	return &Keepalive{
		logger:      logger,
		interval:    interval,
		maxFailures: defaultMaxPingFailures,
		chEnd:       make(chan bool, 10),
		ping:        ping,
		onDead:      onDead,
	}
}

func (k *Keepalive) Run() {
	go k.loop()
}

func (k *Keepalive) Destroy() {
	k.chEnd <- true
}

func (k *Keepalive) loop() {
	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-k.chEnd:
			return
		case <-ticker.C:
			err := k.ping()
			if err == nil {
				failures = 0
				continue
			}
			failures++
			k.logger.Warn().Msgf("Ping failed (%d/%d): %s", failures, k.maxFailures, err)
			if failures >= k.maxFailures {
				k.logger.Error().Msg("Server stopped answering pings.")
				if k.onDead != nil {
					k.onDead(err)
				}
				return
			}
		}
	}
}
