package client

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"voyager.com/cardclient/internal/config"
	"voyager.com/cardclient/internal/game"
	"voyager.com/cardclient/internal/table"
	"voyager.com/cardclient/internal/transport"
)

type fakeTransport struct {
	mu     sync.Mutex
	open   bool
	sent   []string
	frames chan []byte
	closed int
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{open: true, frames: make(chan []byte, 16)}
}

func (f *fakeTransport) Send(ctx context.Context, frame []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return transport.ErrClosed
	}
	f.sent = append(f.sent, string(frame))
	return nil
}

func (f *fakeTransport) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

func (f *fakeTransport) Frames() <-chan []byte {
	return f.frames
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = false
	f.closed++
	return nil
}

func (f *fakeTransport) setOpen(open bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = open
}

func (f *fakeTransport) Sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

// recordingRenderer keeps every screen, status and pile it was given.
type recordingRenderer struct {
	mu       sync.Mutex
	screens  []game.Screen
	statuses []string
	piles    [][]table.PileEntry
	draws    map[string]int
}

func newRecordingRenderer() *recordingRenderer {
	return &recordingRenderer{draws: make(map[string]int)}
}

func (r *recordingRenderer) draw(part string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.draws[part]++
}

func (r *recordingRenderer) RenderHand()      { r.draw("hand") }
func (r *recordingRenderer) RenderOpponents() { r.draw("opponents") }
func (r *recordingRenderer) RenderTurn()      { r.draw("turn") }

func (r *recordingRenderer) RenderPile(pile []table.PileEntry) {
	r.draw("pile")
	r.mu.Lock()
	defer r.mu.Unlock()
	r.piles = append(r.piles, append([]table.PileEntry{}, pile...))
}

func (r *recordingRenderer) ShowScreen(screen game.Screen) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.screens = append(r.screens, screen)
}

func (r *recordingRenderer) SetStatus(status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
}

func (r *recordingRenderer) Screens() []game.Screen {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]game.Screen(nil), r.screens...)
}

func (r *recordingRenderer) Statuses() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.statuses...)
}

func (r *recordingRenderer) LastStatus() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.statuses) == 0 {
		return ""
	}
	return r.statuses[len(r.statuses)-1]
}

func (r *recordingRenderer) Piles() [][]table.PileEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]table.PileEntry(nil), r.piles...)
}

func (r *recordingRenderer) Draws(part string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.draws[part]
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Delays = config.NoDelays()
	cfg.DeckSize = 0
	cfg.ActionIntervalMs = 0
	return cfg
}

func newTestSession(t *testing.T, cfg config.Config) (*Session, *fakeTransport, *recordingRenderer) {
	ft := newFakeTransport()
	r := newRecordingRenderer()
	s := NewSession(cfg, ft, r)
	t.Cleanup(func() { s.Close() })
	return s, ft, r
}

// feed applies frames in order and fails on the first error.
func feed(t *testing.T, s *Session, frames ...string) {
	t.Helper()
	for _, f := range frames {
		require.NoError(t, s.HandleFrame([]byte(f)), f)
	}
}

func waitIdle(t *testing.T, s *Session) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.WaitIdle(ctx))
}
