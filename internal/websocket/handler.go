package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/scythe504/sketchroom/internal"
	"github.com/scythe504/sketchroom/internal/game"
	"github.com/scythe504/sketchroom/internal/utils"
)

var errNotInRoom = errors.New("not in a room")

var errSlowDown = errors.New("too many messages, slow down")

type HandlerOptions struct {
	// AllowedOrigin is matched against the Origin header, "*" allows any.
	AllowedOrigin string

	// ChatRate and ChatBurst bound submit-guess messages per connection.
	ChatRate  float64
	ChatBurst int

	RequestTimeout time.Duration
}

// Handler upgrades HTTP requests to websocket connections and turns
// inbound frames into room operations.
type Handler struct {
	hub      *Hub
	rooms    *game.Directory
	upgrader websocket.Upgrader
	opts     HandlerOptions
}

type inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func NewHandler(hub *Hub, rooms *game.Directory, opts HandlerOptions) *Handler {
	if opts.ChatRate <= 0 {
		opts.ChatRate = 4
	}
	if opts.ChatBurst <= 0 {
		opts.ChatBurst = 8
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 5 * time.Second
	}

	h := &Handler{hub: hub, rooms: rooms, opts: opts}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return h.opts.AllowedOrigin == "" || h.opts.AllowedOrigin == "*" || origin == "" || origin == h.opts.AllowedOrigin
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("[ServeHTTP] upgrade failed")
		return
	}

	limiter := rate.NewLimiter(rate.Limit(h.opts.ChatRate), h.opts.ChatBurst)
	c := newClient(utils.GenerateID(), conn, limiter)
	h.hub.register(c)

	log.Info().Str("player", c.id).Str("remote", r.RemoteAddr).Msg("[ServeHTTP] connection opened")

	go c.WritePump()
	c.ReadPump(h.handleMessage)
	h.disconnect(c)
}

func (h *Handler) disconnect(c *Client) {
	if c.room != nil {
		ctx, cancel := context.WithTimeout(context.Background(), h.opts.RequestTimeout)
		if err := c.room.Leave(ctx, c.id); err != nil && !errors.Is(err, internal.ErrRoomNotFound) {
			log.Warn().Err(err).Str("player", c.id).Str("room", c.room.ID()).Msg("[disconnect] leave failed")
		}
		cancel()
		c.room = nil
	}
	h.hub.unregister(c)
	log.Info().Str("player", c.id).Msg("[disconnect] connection closed")
}

func (h *Handler) handleMessage(c *Client, data []byte) {
	var msg inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		h.replyError(c, internal.InvalidRequestf("malformed message"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.opts.RequestTimeout)
	defer cancel()

	if err := h.dispatch(ctx, c, msg); err != nil {
		log.Debug().Err(err).Str("player", c.id).Str("type", msg.Type).Msg("[handleMessage] request failed")
		h.replyError(c, err)
	}
}

func (h *Handler) dispatch(ctx context.Context, c *Client, msg inbound) error {
	switch msg.Type {
	case internal.TypeJoinQuickplay, internal.TypeCreatePrivate, internal.TypeRequestToJoin:
		return h.join(ctx, c, msg)
	}

	if c.room == nil {
		return errNotInRoom
	}
	room := c.room

	switch msg.Type {
	case internal.TypeConfigureRoom:
		settings, err := decode[internal.RoomSettings](msg.Data)
		if err != nil {
			return err
		}
		return room.Configure(ctx, c.id, settings)

	case internal.TypeRequestWordOptions:
		req, err := decode[internal.WordOptionsRequest](msg.Data)
		if err != nil {
			return err
		}
		// the room sends the options to the drawer itself
		_, err = room.RequestWordOptions(ctx, c.id, req.Count)
		return err

	case internal.TypeChooseWord:
		word, err := decode[string](msg.Data)
		if err != nil {
			return err
		}
		return room.ChooseWord(ctx, c.id, word)

	case internal.TypeSubmitGuess:
		if !c.limiter.Allow() {
			return errSlowDown
		}
		text, err := decode[string](msg.Data)
		if err != nil {
			return err
		}
		return room.SubmitGuess(ctx, c.id, text)

	case internal.TypeUpdateDrawing:
		if len(msg.Data) == 0 {
			return internal.InvalidRequestf("missing drawing")
		}
		return room.UpdateDrawing(ctx, c.id, internal.DrawingState(msg.Data))

	case internal.TypeClearDrawing:
		return room.ClearDrawing(ctx, c.id)

	case internal.TypeLeave:
		c.room = nil
		return room.Leave(ctx, c.id)

	case internal.TypeGetRoom:
		return room.SendSnapshot(ctx, c.id)

	case internal.TypeGetPlayerScores:
		scores, err := room.PlayerScores(ctx)
		if err != nil {
			return err
		}
		h.reply(c, internal.TypePlayerScores, scores)
		return nil
	}

	return internal.InvalidRequestf("unknown message type %q", msg.Type)
}

// join seats the connection in a room, leaving the previous one first.
func (h *Handler) join(ctx context.Context, c *Client, msg inbound) error {
	req, err := decode[internal.JoinRequest](msg.Data)
	if err != nil {
		return err
	}

	if c.room != nil {
		if err := c.room.Leave(ctx, c.id); err != nil && !errors.Is(err, internal.ErrRoomNotFound) {
			return err
		}
		c.room = nil
	}

	player := internal.NewPlayer(c.id, req.Player.Name)
	player.Avatar = req.Player.Avatar
	player.Hat = req.Player.Hat

	var room *game.Room
	switch msg.Type {
	case internal.TypeJoinQuickplay:
		room, err = h.rooms.JoinQuickplay(ctx, player)
	case internal.TypeCreatePrivate:
		room, err = h.rooms.CreatePrivateRoom(ctx, player)
	default:
		room, err = h.rooms.JoinByCode(ctx, req.Code, player)
	}
	if err != nil {
		return err
	}

	c.room = room
	log.Info().Str("player", c.id).Str("room", room.ID()).Str("via", msg.Type).Msg("[join] player seated")
	return nil
}

func decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(raw) == 0 {
		return v, internal.InvalidRequestf("missing data")
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, internal.InvalidRequestf("malformed data: %v", err)
	}
	return v, nil
}

// reply queues a message for this connection only.
func (h *Handler) reply(c *Client, msgType string, data any) {
	h.hub.Send([]string{c.id}, internal.Message[any]{Type: msgType, Data: data})
}

func (h *Handler) replyError(c *Client, err error) {
	h.reply(c, internal.TypeError, internal.ErrorData{Message: err.Error()})
}
