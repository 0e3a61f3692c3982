package game

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/sketchroom/internal"
	"github.com/scythe504/sketchroom/internal/utils"
)

// =============================================================================
// ROOM DIRECTORY
// =============================================================================

const quickplayAttempts = 3

type DirectoryOptions struct {
	Settings    internal.RoomSettings
	Words       WordSource
	Broadcaster Broadcaster
	Clock       Clock
}

// Directory owns every live room. Rooms are created through it and removed
// from it once their last player leaves.
type Directory struct {
	mu    sync.Mutex
	rooms map[string]*Room
	codes map[string]*Room

	opts   DirectoryOptions
	ctx    context.Context
	cancel context.CancelFunc
}

func NewDirectory(ctx context.Context, opts DirectoryOptions) *Directory {
	if opts.Settings == (internal.RoomSettings{}) {
		opts.Settings = internal.DefaultSettings()
	}
	dctx, cancel := context.WithCancel(ctx)
	return &Directory{
		rooms:  make(map[string]*Room),
		codes:  make(map[string]*Room),
		opts:   opts,
		ctx:    dctx,
		cancel: cancel,
	}
}

// FindOrCreateRoomForQuickplay returns the fullest public room that still
// has a seat, creating a new one when there is none.
func (d *Directory) FindOrCreateRoomForQuickplay() *Room {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.quickplayRoomLocked(nil)
}

func (d *Directory) quickplayRoomLocked(skip []*Room) *Room {
	var best *Room
	for _, r := range d.rooms {
		if !r.Public() || slices.Contains(skip, r) {
			continue
		}
		desc := r.Description()
		if desc.PlayerCount >= desc.MaxPlayers {
			continue
		}
		if best == nil || moreAttractive(r, best) {
			best = r
		}
	}
	if best != nil {
		return best
	}
	return d.createRoomLocked(internal.VisibilityPublic, "")
}

func moreAttractive(a, b *Room) bool {
	if ac, bc := a.PlayerCount(), b.PlayerCount(); ac != bc {
		return ac > bc
	}
	return a.CreatedAt().Before(b.CreatedAt())
}

func (d *Directory) createRoomLocked(visibility internal.Visibility, ownerID string) *Room {
	var code string
	if visibility != internal.VisibilityPublic {
		for {
			code = utils.GenerateJoinCode()
			if _, taken := d.codes[code]; !taken {
				break
			}
		}
	}

	room := NewRoom(d.ctx, RoomOptions{
		Settings:    d.opts.Settings,
		Visibility:  visibility,
		OwnerID:     ownerID,
		JoinCode:    code,
		Words:       d.opts.Words,
		Broadcaster: d.opts.Broadcaster,
		Clock:       d.opts.Clock,
		OnEmpty: func(r *Room) {
			d.RemoveRoomIfEmpty(r)
		},
	})

	d.rooms[room.ID()] = room
	if code != "" {
		d.codes[code] = room
	}
	return room
}

// JoinQuickplay seats the player in a public room. A room that fills up or
// closes between lookup and join is skipped.
func (d *Directory) JoinQuickplay(ctx context.Context, player *internal.Player) (*Room, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var skip []*Room
	for range quickplayAttempts {
		room := d.quickplayRoomLocked(skip)
		err := room.Join(ctx, player)
		switch {
		case err == nil:
			return room, nil
		case errors.Is(err, internal.ErrRoomFull), errors.Is(err, internal.ErrRoomNotFound):
			log.Debug().Err(err).Str("room", room.ID()).Msg("[JoinQuickplay] retrying with another room")
			skip = append(skip, room)
		default:
			if room.PlayerCount() == 0 {
				d.removeLocked(room)
				go room.Close()
			}
			return nil, err
		}
	}
	return nil, internal.ErrRoomFull
}

// CreatePrivateRoom makes a room that waits for its owner's settings and
// seats the owner in it.
func (d *Directory) CreatePrivateRoom(ctx context.Context, owner *internal.Player) (*Room, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	room := d.createRoomLocked(internal.VisibilityPrivatePending, owner.ID)
	if err := room.Join(ctx, owner); err != nil {
		d.removeLocked(room)
		go room.Close()
		return nil, err
	}

	log.Info().Str("room", room.ID()).Str("owner", owner.ID).Str("code", room.JoinCode()).
		Msg("[CreatePrivateRoom] private room created")
	return room, nil
}

func (d *Directory) FindRoomByCode(code string) (*Room, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.findByCodeLocked(code)
}

func (d *Directory) findByCodeLocked(code string) (*Room, error) {
	code = utils.NormalizeJoinCode(code)
	if !utils.IsValidJoinCode(code) {
		return nil, internal.InvalidRequestf("malformed join code %q", code)
	}
	room, ok := d.codes[code]
	if !ok {
		return nil, internal.ErrRoomNotFound
	}
	return room, nil
}

func (d *Directory) JoinByCode(ctx context.Context, code string, player *internal.Player) (*Room, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	room, err := d.findByCodeLocked(code)
	if err != nil {
		return nil, err
	}
	if err := room.Join(ctx, player); err != nil {
		return nil, err
	}
	return room, nil
}

func (d *Directory) Room(id string) (*Room, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	room, ok := d.rooms[id]
	return room, ok
}

// RemoveRoomIfEmpty drops the room and stops its loop when nobody is in
// it. Joins hold the directory lock, so a room cannot gain a player between
// the check and the removal.
func (d *Directory) RemoveRoomIfEmpty(room *Room) bool {
	d.mu.Lock()
	if room.PlayerCount() > 0 || d.rooms[room.ID()] != room {
		d.mu.Unlock()
		return false
	}
	d.removeLocked(room)
	d.mu.Unlock()

	room.Close()
	log.Info().Str("room", room.ID()).Msg("[RemoveRoomIfEmpty] empty room removed")
	return true
}

func (d *Directory) removeLocked(room *Room) {
	delete(d.rooms, room.ID())
	if code := room.JoinCode(); code != "" {
		delete(d.codes, code)
	}
}

// PublicRooms lists the public rooms, oldest first.
func (d *Directory) PublicRooms() []internal.RoomDescription {
	d.mu.Lock()
	rooms := make([]*Room, 0, len(d.rooms))
	for _, r := range d.rooms {
		if r.Public() {
			rooms = append(rooms, r)
		}
	}
	d.mu.Unlock()

	slices.SortFunc(rooms, func(a, b *Room) int {
		return cmp.Or(a.CreatedAt().Compare(b.CreatedAt()), cmp.Compare(a.ID(), b.ID()))
	})

	out := make([]internal.RoomDescription, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Description())
	}
	return out
}

func (d *Directory) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.rooms)
}

// Close stops every room and waits for their loops to exit.
func (d *Directory) Close() {
	d.cancel()

	d.mu.Lock()
	rooms := make([]*Room, 0, len(d.rooms))
	for _, r := range d.rooms {
		rooms = append(rooms, r)
	}
	clear(d.rooms)
	clear(d.codes)
	d.mu.Unlock()

	for _, r := range rooms {
		r.Close()
	}
}
