package game

import (
	"context"
	"math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/scythe504/sketchroom/internal"
)

// fakeClock hands out tickers that only fire when the test says so.
type fakeClock struct {
	mu      sync.Mutex
	tickers []*fakeTicker
}

type fakeTicker struct {
	ch      chan time.Time
	stopped atomic.Bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }
func (t *fakeTicker) Stop()               { t.stopped.Store(true) }

func (c *fakeClock) NewTicker(time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTicker{ch: make(chan time.Time)}
	c.tickers = append(c.tickers, t)
	return t
}

func (c *fakeClock) live() []*fakeTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*fakeTicker
	for _, t := range c.tickers {
		if !t.stopped.Load() {
			out = append(out, t)
		}
	}
	return out
}

// tick fires the running countdown n times, waiting for the room to finish
// each tick before the next one.
func tick(t *testing.T, r *Room, c *fakeClock, n int) {
	t.Helper()
	for range n {
		live := c.live()
		require.Len(t, live, 1, "expected exactly one running countdown")
		select {
		case live[0].ch <- time.Now():
		case <-time.After(2 * time.Second):
			t.Fatal("room did not take the tick")
		}
		_, err := r.Snapshot(context.Background())
		require.NoError(t, err)
	}
}

type sentMessage struct {
	to  []string
	msg internal.Message[any]
}

// recorder keeps everything a room sends.
type recorder struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (r *recorder) Send(playerIDs []string, msg internal.Message[any]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentMessage{to: slices.Clone(playerIDs), msg: msg})
}

func (r *recorder) ofType(msgType string) []sentMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sentMessage
	for _, s := range r.sent {
		if s.msg.Type == msgType {
			out = append(out, s)
		}
	}
	return out
}

func (r *recorder) to(playerID, msgType string) []sentMessage {
	var out []sentMessage
	for _, s := range r.ofType(msgType) {
		if slices.Contains(s.to, playerID) {
			out = append(out, s)
		}
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}

// staticWords always offers the first n words of its list.
type staticWords []string

func (w staticWords) DrawDistinctWords(_ context.Context, n int) ([]string, error) {
	if n <= 0 {
		return nil, internal.InvalidRequestf("n must be positive")
	}
	if n > len(w) {
		return nil, internal.ErrInsufficientCorpus
	}
	return slices.Clone(w[:n]), nil
}

type mockWords struct {
	mock.Mock
}

func (m *mockWords) DrawDistinctWords(ctx context.Context, n int) ([]string, error) {
	args := m.Called(ctx, n)
	words, _ := args.Get(0).([]string)
	return words, args.Error(1)
}

func testSettings() internal.RoomSettings {
	s := internal.DefaultSettings()
	s.TurnTime = 90
	s.SelectionTime = 3 * time.Second
	s.TurnEndTime = 2 * time.Second
	s.SessionEndTime = 2 * time.Second
	return s
}

type testRoom struct {
	*Room
	clock *fakeClock
	rec   *recorder
}

func newTestRoom(t *testing.T, settings internal.RoomSettings, words WordSource, opts ...func(*RoomOptions)) testRoom {
	t.Helper()
	tr := testRoom{clock: &fakeClock{}, rec: &recorder{}}
	o := RoomOptions{
		ID:          "room-1",
		Settings:    settings,
		Words:       words,
		Broadcaster: tr.rec,
		Clock:       tr.clock,
		Rand:        rand.New(rand.NewPCG(7, 11)),
	}
	for _, fn := range opts {
		fn(&o)
	}
	tr.Room = NewRoom(context.Background(), o)
	t.Cleanup(tr.Room.Close)
	return tr
}

func (tr testRoom) tick(t *testing.T, n int) {
	t.Helper()
	tick(t, tr.Room, tr.clock, n)
}

func (tr testRoom) join(t *testing.T, ids ...string) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, tr.Join(context.Background(), internal.NewPlayer(id, "name-"+id)))
	}
}

// startTurn has the current drawer ask for words and pick word.
func (tr testRoom) startTurn(t *testing.T, word string) string {
	t.Helper()
	ctx := context.Background()
	drawer := tr.snapshot(t).Players[0].ID
	_, err := tr.RequestWordOptions(ctx, drawer, 3)
	require.NoError(t, err)
	require.NoError(t, tr.ChooseWord(ctx, drawer, word))
	require.Equal(t, internal.PhaseDrawing, tr.snapshot(t).Phase)
	return drawer
}

func (tr testRoom) snapshot(t *testing.T) internal.RoomSnapshot {
	t.Helper()
	snap, err := tr.Snapshot(context.Background())
	require.NoError(t, err)
	return snap
}

// inspect runs fn on the room goroutine.
func (tr testRoom) inspect(t *testing.T, fn func(r *Room)) {
	t.Helper()
	require.NoError(t, tr.query(context.Background(), func() { fn(tr.Room) }))
}

func (tr testRoom) score(t *testing.T, playerID string) int {
	t.Helper()
	for _, p := range tr.snapshot(t).Players {
		if p.ID == playerID {
			return p.Score
		}
	}
	t.Fatalf("player %s not in room", playerID)
	return 0
}
