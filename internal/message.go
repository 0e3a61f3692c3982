package internal

import "encoding/json"

type Message[T any] struct {
	Type string `json:"type"`
	Data T      `json:"data"`
}

// Outbound message types.
const (
	TypeJoinedRoom    = "joined-room"
	TypeRoomSnapshot  = "room-snapshot"
	TypeCountdown     = "countdown-update"
	TypeTimerStopped  = "timer-stopped"
	TypeWordOptions   = "word-options"
	TypeTurnStarted   = "turn-started"
	TypeTurnChanged   = "turn-changed"
	TypeTurnEnded     = "turn-ended"
	TypeHintRevealed  = "hint-revealed"
	TypeChat          = "message"
	TypeDrawingUpdate = "drawing-update"
	TypeCanvasReset   = "canvas-reset"
	TypeContinueGame  = "continue-game"
	TypeSessionEnded  = "session-ended"
	TypePlayerScores  = "player-scores"
	TypeError         = "error"
)

// Inbound message types.
const (
	TypeJoinQuickplay      = "join-quickplay"
	TypeCreatePrivate      = "create-private"
	TypeRequestToJoin      = "request-to-join"
	TypeConfigureRoom      = "configure-room"
	TypeRequestWordOptions = "request-word-options"
	TypeChooseWord         = "choose-word"
	TypeSubmitGuess        = "submit-guess"
	TypeUpdateDrawing      = "update-drawing"
	TypeClearDrawing       = "clear-drawing"
	TypeLeave              = "leave"
	TypeGetRoom            = "get-room"
	TypeGetPlayerScores    = "get-player-scores"
)

const (
	ChatKindMessage      = "message"
	ChatKindNotification = "notification"
)

// ChatMessage is either a player's chat line or a server notification
// about a player ("Has Joined The Room").
type ChatMessage struct {
	Kind     string `json:"kind"`
	Content  string `json:"content"`
	Sender   string `json:"sender"`
	DidGuess bool   `json:"did_guess"`
}

func NewNotification(content, sender string) ChatMessage {
	return ChatMessage{Kind: ChatKindNotification, Content: content, Sender: sender}
}

type CountdownData struct {
	Phase            GamePhase `json:"phase"`
	SecondsRemaining int       `json:"seconds_remaining"`
}

type WordOptionsData struct {
	Options   []string `json:"options"`
	TimeLimit int      `json:"time_limit"`
}

type TurnStartedData struct {
	DrawerID   string `json:"drawer_id"`
	WordLength int    `json:"word_length"`
	MaskedWord string `json:"masked_word"`
	Word       string `json:"word,omitempty"` // drawer's copy only
	TimeLimit  int    `json:"time_limit"`
}

type TurnEndedData struct {
	Word    string           `json:"word"`
	Round   int              `json:"round"`
	Players []PlayerSnapshot `json:"players"`
}

type HintData struct {
	Indices    []int  `json:"indices"`
	MaskedWord string `json:"masked_word"`
}

type SessionEndedData struct {
	Leaderboard []PlayerSnapshot `json:"leaderboard"`
}

type JoinedRoomData struct {
	PlayerID string       `json:"player_id"`
	Room     RoomSnapshot `json:"room"`
}

type ErrorData struct {
	Message string `json:"message"`
}

// Inbound payloads.

type JoinRequest struct {
	Player PlayerInfo `json:"player"`
	Code   string     `json:"code,omitempty"`
}

type PlayerInfo struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Hat    string `json:"hat,omitempty"`
}

type WordOptionsRequest struct {
	Count int `json:"count"`
}

// DrawingState is the opaque canvas blob relayed between clients.
type DrawingState = json.RawMessage
