package transport

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"voyager.com/cardclient/logging"
)

func TestKeepaliveReportsDeadServer(t *testing.T) {
	var pings int32
	dead := make(chan error, 1)
	k := NewKeepalive(logging.GetZeroLogger("test", nil), time.Millisecond, func() error {
		atomic.AddInt32(&pings, 1)
		return errors.New("no pong")
	}, func(err error) {
		dead <- err
	})
	k.Run()

	select {
	case err := <-dead:
		assert.EqualError(t, err, "no pong")
	case <-time.After(5 * time.Second):
		t.Fatal("keepalive never gave up")
	}
	assert.Equal(t, int32(defaultMaxPingFailures), atomic.LoadInt32(&pings))
}

func TestKeepaliveResetsFailuresOnPong(t *testing.T) {
	var pings int32
	dead := make(chan error, 1)
	k := NewKeepalive(logging.GetZeroLogger("test", nil), time.Millisecond, func() error {
		// every other ping fails
		if atomic.AddInt32(&pings, 1)%2 == 0 {
			return errors.New("no pong")
		}
		return nil
	}, func(err error) {
		dead <- err
	})
	k.Run()

	time.Sleep(50 * time.Millisecond)
	k.Destroy()
	select {
	case <-dead:
		t.Fatal("keepalive gave up while the server was answering")
	default:
	}
	assert.True(t, atomic.LoadInt32(&pings) > 2)
}
