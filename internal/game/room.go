package game

import (
	"context"
	"math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/sketchroom/internal"
	"github.com/scythe504/sketchroom/internal/utils"
)

// =============================================================================
// ROOM MANAGEMENT
// =============================================================================

const inboxSize = 64

// Room is one game session. All of its state is owned by the goroutine
// started in NewRoom; the exported methods post events to that goroutine
// and wait for its answer.
type Room struct {
	id         string
	public     bool // fixed at creation
	visibility internal.Visibility
	ownerID    string
	joinCode   string
	createdAt  time.Time

	settings internal.RoomSettings
	phase    internal.GamePhase

	players  []*internal.Player // players[0] draws
	guessers []string           // in order of arrival

	round            int
	roundLength      int
	roundCurrentTurn int
	turnDrawerID     string

	wordOptions     []string
	wordChosen      string
	hintsRevealed   []int
	elapsedTurnTime int
	drawing         internal.DrawingState

	timer *countdown

	clock   Clock
	rng     *rand.Rand
	out     Broadcaster
	words   WordSource
	onEmpty func(*Room)

	inbox     chan any
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once

	// read without entering the loop
	playerCount atomic.Int32
	desc        atomic.Pointer[internal.RoomDescription]
}

type RoomOptions struct {
	ID         string
	Settings   internal.RoomSettings
	Visibility internal.Visibility
	OwnerID    string
	JoinCode   string

	Words       WordSource
	Broadcaster Broadcaster
	Clock       Clock
	Rand        *rand.Rand

	// OnEmpty runs on its own goroutine once the last player has left.
	OnEmpty func(*Room)
}

// NewRoom creates an empty room in the lobby and starts its loop. The loop
// stops when ctx is cancelled or Close is called.
func NewRoom(ctx context.Context, opts RoomOptions) *Room {
	if opts.ID == "" {
		opts.ID = utils.GenerateID()
	}
	if opts.Settings == (internal.RoomSettings{}) {
		opts.Settings = internal.DefaultSettings()
	}
	if opts.Visibility == "" {
		opts.Visibility = internal.VisibilityPublic
	}
	if opts.Broadcaster == nil {
		opts.Broadcaster = discard{}
	}
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	roomCtx, cancel := context.WithCancel(ctx)
	r := &Room{
		id:         opts.ID,
		public:     opts.Visibility == internal.VisibilityPublic,
		visibility: opts.Visibility,
		ownerID:    opts.OwnerID,
		joinCode:   opts.JoinCode,
		createdAt:  time.Now(),
		settings:   opts.Settings,
		phase:      internal.PhaseLobby,
		round:      1,
		clock:      opts.Clock,
		rng:        opts.Rand,
		out:        opts.Broadcaster,
		words:      opts.Words,
		onEmpty:    opts.OnEmpty,
		inbox:      make(chan any, inboxSize),
		ctx:        roomCtx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	r.publishDescription()

	log.Info().Str("room", r.id).Str("visibility", string(r.visibility)).Msg("[NewRoom] room created")

	go r.run()
	return r
}

func (r *Room) ID() string           { return r.id }
func (r *Room) JoinCode() string     { return r.joinCode }
func (r *Room) Public() bool         { return r.public }
func (r *Room) CreatedAt() time.Time { return r.createdAt }
func (r *Room) PlayerCount() int     { return int(r.playerCount.Load()) }

// Description is the last published summary of the room, safe to read from
// any goroutine.
func (r *Room) Description() internal.RoomDescription {
	return *r.desc.Load()
}

// Done is closed once the room loop has exited.
func (r *Room) Done() <-chan struct{} { return r.done }

// Close stops the room loop and waits for it to exit. Any running countdown
// is cancelled on the way out.
func (r *Room) Close() {
	r.closeOnce.Do(r.cancel)
	<-r.done
}

func (r *Room) run() {
	defer close(r.done)
	defer r.stopCountdown()

	for {
		select {
		case <-r.ctx.Done():
			log.Debug().Str("room", r.id).Msg("[run] room loop stopped")
			return
		case ev := <-r.inbox:
			r.handle(ev)
		case <-r.tickC():
			r.onTick()
			r.publishDescription()
		}
	}
}

// =============================================================================
// EVENTS
// =============================================================================

type joinEvent struct {
	player *internal.Player
	reply  chan error
}

type leaveEvent struct {
	playerID string
	reply    chan error
}

type wordOptionsEvent struct {
	playerID string
	options  []string
	reply    chan optionsResult
}

type optionsResult struct {
	options []string
	err     error
}

type chooseWordEvent struct {
	playerID string
	word     string
	reply    chan error
}

type guessEvent struct {
	playerID string
	text     string
	reply    chan error
}

type drawingEvent struct {
	playerID string
	blob     internal.DrawingState
	reply    chan error
}

type clearDrawingEvent struct {
	playerID string
	reply    chan error
}

type configureEvent struct {
	playerID string
	settings internal.RoomSettings
	reply    chan error
}

// queryEvent reads room state on the loop without mutating it.
type queryEvent struct {
	fn    func()
	reply chan struct{}
}

// handle applies one event. The room description is republished before
// the caller gets its answer.
func (r *Room) handle(ev any) {
	var answer func()

	switch e := ev.(type) {
	case joinEvent:
		err := r.addPlayer(e.player)
		answer = func() { e.reply <- err }
	case leaveEvent:
		err := r.removePlayer(e.playerID)
		answer = func() { e.reply <- err }
	case wordOptionsEvent:
		opts, err := r.offerWordOptions(e.playerID, e.options)
		answer = func() { e.reply <- optionsResult{options: opts, err: err} }
	case chooseWordEvent:
		err := r.chooseWord(e.playerID, e.word)
		answer = func() { e.reply <- err }
	case guessEvent:
		err := r.submitGuess(e.playerID, e.text)
		answer = func() { e.reply <- err }
	case drawingEvent:
		err := r.updateDrawing(e.playerID, e.blob)
		answer = func() { e.reply <- err }
	case clearDrawingEvent:
		err := r.clearDrawing(e.playerID)
		answer = func() { e.reply <- err }
	case configureEvent:
		err := r.configure(e.playerID, e.settings)
		answer = func() { e.reply <- err }
	case queryEvent:
		e.fn()
		answer = func() { close(e.reply) }
	default:
		log.Error().Str("room", r.id).Type("event", ev).Msg("[handle] unknown event")
	}

	r.publishDescription()
	if answer != nil {
		answer()
	}
}

// call posts ev to the loop and waits on reply. A room that has shut down
// answers ErrRoomNotFound.
func call[T any](ctx context.Context, r *Room, ev any, reply chan T) (T, error) {
	var zero T
	select {
	case r.inbox <- ev:
	case <-r.done:
		return zero, internal.ErrRoomNotFound
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	select {
	case v := <-reply:
		return v, nil
	case <-r.done:
		// the loop answers before it can exit
		select {
		case v := <-reply:
			return v, nil
		default:
		}
		return zero, internal.ErrRoomNotFound
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func callErr(ctx context.Context, r *Room, ev any, reply chan error) error {
	err, postErr := call(ctx, r, ev, reply)
	if postErr != nil {
		return postErr
	}
	return err
}

func (r *Room) query(ctx context.Context, fn func()) error {
	reply := make(chan struct{})
	_, err := call(ctx, r, queryEvent{fn: fn, reply: reply}, reply)
	return err
}

// =============================================================================
// PUBLIC API
// =============================================================================

// Join adds a player to the room. Joining twice with the same id is a
// no-op.
func (r *Room) Join(ctx context.Context, player *internal.Player) error {
	reply := make(chan error, 1)
	return callErr(ctx, r, joinEvent{player: player, reply: reply}, reply)
}

func (r *Room) Leave(ctx context.Context, playerID string) error {
	reply := make(chan error, 1)
	return callErr(ctx, r, leaveEvent{playerID: playerID, reply: reply}, reply)
}

// RequestWordOptions draws n distinct words and offers them to the drawer.
// The draw happens before the loop is entered so the room never waits on
// the corpus. A request that no longer applies returns no options and no
// error.
func (r *Room) RequestWordOptions(ctx context.Context, playerID string, n int) ([]string, error) {
	if n <= 0 {
		return nil, internal.InvalidRequestf("word count must be positive, got %d", n)
	}
	if r.words == nil {
		return nil, internal.InvalidRequestf("room %s has no word source", r.id)
	}

	options, err := r.words.DrawDistinctWords(ctx, n)
	if err != nil {
		return nil, err
	}

	reply := make(chan optionsResult, 1)
	res, err := call(ctx, r, wordOptionsEvent{playerID: playerID, options: options, reply: reply}, reply)
	if err != nil {
		return nil, err
	}
	return res.options, res.err
}

func (r *Room) ChooseWord(ctx context.Context, playerID, word string) error {
	reply := make(chan error, 1)
	return callErr(ctx, r, chooseWordEvent{playerID: playerID, word: word, reply: reply}, reply)
}

func (r *Room) SubmitGuess(ctx context.Context, playerID, text string) error {
	reply := make(chan error, 1)
	return callErr(ctx, r, guessEvent{playerID: playerID, text: text, reply: reply}, reply)
}

func (r *Room) UpdateDrawing(ctx context.Context, playerID string, blob internal.DrawingState) error {
	reply := make(chan error, 1)
	return callErr(ctx, r, drawingEvent{playerID: playerID, blob: blob, reply: reply}, reply)
}

func (r *Room) ClearDrawing(ctx context.Context, playerID string) error {
	reply := make(chan error, 1)
	return callErr(ctx, r, clearDrawingEvent{playerID: playerID, reply: reply}, reply)
}

// Configure applies owner supplied settings to a private room still in the
// lobby.
func (r *Room) Configure(ctx context.Context, playerID string, settings internal.RoomSettings) error {
	reply := make(chan error, 1)
	return callErr(ctx, r, configureEvent{playerID: playerID, settings: settings, reply: reply}, reply)
}

// Snapshot returns the sanitized room state.
func (r *Room) Snapshot(ctx context.Context) (internal.RoomSnapshot, error) {
	var snap internal.RoomSnapshot
	err := r.query(ctx, func() { snap = r.snapshot() })
	return snap, err
}

// SendSnapshot delivers the room state to a single player.
func (r *Room) SendSnapshot(ctx context.Context, playerID string) error {
	return r.query(ctx, func() {
		if r.playerIndex(playerID) < 0 {
			return
		}
		r.sendTo(playerID, internal.TypeRoomSnapshot, r.snapshot())
	})
}

// PlayerScores returns players with what they earned in the current turn.
func (r *Room) PlayerScores(ctx context.Context) ([]internal.PlayerSnapshot, error) {
	var scores []internal.PlayerSnapshot
	err := r.query(ctx, func() { scores = internal.SnapshotPlayers(r.players) })
	return scores, err
}

// =============================================================================
// STATE HELPERS
// =============================================================================

func (r *Room) snapshot() internal.RoomSnapshot {
	snap := internal.RoomSnapshot{
		ID:               r.id,
		Phase:            r.phase,
		Players:          internal.SnapshotPlayers(r.players),
		Guessers:         slices.Clone(r.guessers),
		Round:            r.round,
		Rounds:           r.settings.Rounds,
		RoundLength:      r.roundLength,
		RoundCurrentTurn: r.roundCurrentTurn,
		TurnTime:         r.settings.TurnTime,
		MaxPlayers:       r.settings.MaxPlayers,
		WordOptionCount:  r.settings.WordOptionCount,
		NumberOfHints:    r.settings.NumberOfHints,
		Visibility:       r.visibility,
		OwnerID:          r.ownerID,
		JoinCode:         r.joinCode,
	}
	if snap.Guessers == nil {
		snap.Guessers = []string{}
	}
	if r.turnActive() && len(r.players) > 0 {
		snap.DrawerID = r.players[0].ID
	}
	if r.phase == internal.PhaseDrawing && r.wordChosen != "" {
		snap.WordLength = utf8.RuneCountInString(r.wordChosen)
		snap.MaskedWord = utils.GetMaskedWord(r.wordChosen, r.hintsRevealed)
	}
	return snap
}

func (r *Room) publishDescription() {
	r.playerCount.Store(int32(len(r.players)))
	r.desc.Store(&internal.RoomDescription{
		ID:          r.id,
		PlayerCount: len(r.players),
		MaxPlayers:  r.settings.MaxPlayers,
		Phase:       r.phase,
	})
}

func (r *Room) turnActive() bool {
	return r.phase == internal.PhaseWordSelection || r.phase == internal.PhaseDrawing
}

func (r *Room) drawer() *internal.Player {
	if len(r.players) == 0 {
		return nil
	}
	return r.players[0]
}

func (r *Room) isDrawer(playerID string) bool {
	d := r.drawer()
	return d != nil && d.ID == playerID
}

func (r *Room) playerIndex(playerID string) int {
	return slices.IndexFunc(r.players, func(p *internal.Player) bool { return p.ID == playerID })
}

func (r *Room) player(playerID string) *internal.Player {
	if i := r.playerIndex(playerID); i >= 0 {
		return r.players[i]
	}
	return nil
}

func (r *Room) hasGuessed(playerID string) bool {
	return slices.Contains(r.guessers, playerID)
}

// allGuessed reports whether every non-drawer has guessed this turn.
func (r *Room) allGuessed() bool {
	if len(r.players) < 2 {
		return false
	}
	for _, p := range r.players[1:] {
		if !r.hasGuessed(p.ID) {
			return false
		}
	}
	return true
}

func (r *Room) hintData() internal.HintData {
	return internal.HintData{
		Indices:    slices.Clone(r.hintsRevealed),
		MaskedWord: utils.GetMaskedWord(r.wordChosen, r.hintsRevealed),
	}
}

// =============================================================================
// SENDING
// =============================================================================

func (r *Room) playerIDs() []string {
	ids := make([]string, 0, len(r.players))
	for _, p := range r.players {
		ids = append(ids, p.ID)
	}
	return ids
}

func (r *Room) send(to []string, msgType string, data any) {
	if len(to) == 0 {
		return
	}
	r.out.Send(to, internal.Message[any]{Type: msgType, Data: data})
}

func (r *Room) sendTo(playerID, msgType string, data any) {
	r.send([]string{playerID}, msgType, data)
}

func (r *Room) broadcast(msgType string, data any) {
	r.send(r.playerIDs(), msgType, data)
}

func (r *Room) broadcastExcept(playerID, msgType string, data any) {
	ids := slices.DeleteFunc(r.playerIDs(), func(id string) bool { return id == playerID })
	r.send(ids, msgType, data)
}

func (r *Room) broadcastSnapshot() {
	r.broadcast(internal.TypeRoomSnapshot, r.snapshot())
}
