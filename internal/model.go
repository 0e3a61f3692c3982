package internal

import (
	"time"
)

const (
	WordSelectionDuration = 15 * time.Second
	TurnEndDuration       = 10 * time.Second
	SessionEndDuration    = 30 * time.Second
	DefaultTurnTime       = 80
	DefaultRounds         = 3
	MaxPlayersPerRoom     = 8
	MinPlayersToStart     = 2
	DefaultWordOptions    = 3
	DefaultHints          = 2
)

type GamePhase string

const (
	PhaseLobby         GamePhase = "lobby"
	PhaseWordSelection GamePhase = "word_selection"
	PhaseDrawing       GamePhase = "drawing"
	PhaseTurnEnd       GamePhase = "turn_end"
	PhaseSessionEnd    GamePhase = "session_end"
)

type Visibility string

const (
	VisibilityPublic         Visibility = "public"
	VisibilityPrivatePending Visibility = "private-pending-config"
	VisibilityPrivate        Visibility = "private"
)

// RoomSettings is the tunable part of a room. Private room owners may
// change it while the room sits in the lobby.
type RoomSettings struct {
	Rounds          int `json:"rounds"`
	TurnTime        int `json:"turn_time"` // seconds per drawing turn
	MaxPlayers      int `json:"max_players"`
	WordOptionCount int `json:"word_option_count"`
	NumberOfHints   int `json:"number_of_hints"`

	SelectionTime  time.Duration `json:"-"`
	TurnEndTime    time.Duration `json:"-"`
	SessionEndTime time.Duration `json:"-"`
}

func DefaultSettings() RoomSettings {
	return RoomSettings{
		Rounds:          DefaultRounds,
		TurnTime:        DefaultTurnTime,
		MaxPlayers:      MaxPlayersPerRoom,
		WordOptionCount: DefaultWordOptions,
		NumberOfHints:   DefaultHints,
		SelectionTime:   WordSelectionDuration,
		TurnEndTime:     TurnEndDuration,
		SessionEndTime:  SessionEndDuration,
	}
}

// Validate checks owner supplied values. Durations are server side only
// and are not validated here.
func (s RoomSettings) Validate() error {
	switch {
	case s.Rounds < 1 || s.Rounds > 10:
		return InvalidRequestf("rounds must be between 1 and 10, got %d", s.Rounds)
	case s.TurnTime < 15 || s.TurnTime > 240:
		return InvalidRequestf("turn time must be between 15 and 240 seconds, got %d", s.TurnTime)
	case s.MaxPlayers < MinPlayersToStart || s.MaxPlayers > 16:
		return InvalidRequestf("max players must be between %d and 16, got %d", MinPlayersToStart, s.MaxPlayers)
	case s.WordOptionCount < 1 || s.WordOptionCount > 5:
		return InvalidRequestf("word options must be between 1 and 5, got %d", s.WordOptionCount)
	case s.NumberOfHints < 0 || s.NumberOfHints > 10:
		return InvalidRequestf("hints must be between 0 and 10, got %d", s.NumberOfHints)
	}
	return nil
}

type RoomSnapshot struct {
	ID               string           `json:"id"`
	Phase            GamePhase        `json:"phase"`
	Players          []PlayerSnapshot `json:"players"`
	Guessers         []string         `json:"guessers"`
	Round            int              `json:"round"`
	Rounds           int              `json:"rounds"`
	RoundLength      int              `json:"round_length"`
	RoundCurrentTurn int              `json:"round_current_turn"`
	TurnTime         int              `json:"turn_time"`
	MaxPlayers       int              `json:"max_players"`
	WordOptionCount  int              `json:"word_option_count"`
	NumberOfHints    int              `json:"number_of_hints"`
	Visibility       Visibility       `json:"visibility"`
	OwnerID          string           `json:"owner_id,omitempty"`
	JoinCode         string           `json:"join_code,omitempty"`
	WordLength       int              `json:"word_length,omitempty"`
	MaskedWord       string           `json:"masked_word,omitempty"`
	DrawerID         string           `json:"drawer_id,omitempty"`
}

type RoomDescription struct {
	ID          string    `json:"id"`
	PlayerCount int       `json:"player_count"`
	MaxPlayers  int       `json:"max_players"`
	Phase       GamePhase `json:"phase"`
}

// Response is the envelope of every HTTP API answer.
type Response struct {
	StatusCode    int   `json:"status_code"`
	RespStartTime int64 `json:"resp_time_start_ms"`
	RespEndTime   int64 `json:"resp_time_end_ms"`
	NetRespTime   int64 `json:"net_resp_time_ms"`
	Data          any   `json:"data"`
}
