package game

import (
	"slices"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/sketchroom/internal"
)

// =============================================================================
// PLAYER MANAGEMENT
// =============================================================================

// addPlayer joins a player to the room and catches them up on a turn in
// progress.
func (r *Room) addPlayer(player *internal.Player) error {
	if player == nil || player.ID == "" {
		return internal.InvalidRequestf("player id is required")
	}
	if r.playerIndex(player.ID) >= 0 {
		log.Debug().Str("room", r.id).Str("player", player.ID).Msg("[addPlayer] already in room")
		return nil
	}
	if len(r.players) >= r.settings.MaxPlayers {
		log.Info().Str("room", r.id).Str("player", player.ID).Int("players", len(r.players)).
			Msg("[addPlayer] room full, rejecting player")
		return internal.ErrRoomFull
	}

	// 1. Add and re-rank
	r.players = append(r.players, player)
	RankPlayers(r.players)
	r.playerCount.Store(int32(len(r.players)))

	log.Info().Str("room", r.id).Str("player", player.ID).Str("name", player.Name).
		Int("players", len(r.players)).Msg("[addPlayer] player joined")

	// 2. Welcome the player, tell the others
	r.sendTo(player.ID, internal.TypeJoinedRoom, internal.JoinedRoomData{PlayerID: player.ID, Room: r.snapshot()})
	r.broadcastSnapshot()
	r.broadcast(internal.TypeChat, internal.NewNotification("Has Joined The Room", player.Name))

	// 3. Replay the turn in progress
	if r.phase == internal.PhaseDrawing && r.wordChosen != "" {
		r.sendTo(player.ID, internal.TypeTurnStarted, internal.TurnStartedData{
			DrawerID:   r.players[0].ID,
			WordLength: utf8.RuneCountInString(r.wordChosen),
			MaskedWord: r.hintData().MaskedWord,
			TimeLimit:  r.settings.TurnTime,
		})
		if r.timer != nil {
			r.sendTo(player.ID, internal.TypeCountdown, internal.CountdownData{
				Phase:            r.phase,
				SecondsRemaining: r.timer.remaining(),
			})
		}
	}
	if len(r.drawing) > 0 {
		r.sendTo(player.ID, internal.TypeDrawingUpdate, r.drawing)
	}
	return nil
}

// removePlayer drops a player from the room. A turn that cannot go on
// without them is ended first so no countdown is left running for it.
func (r *Room) removePlayer(playerID string) error {
	idx := r.playerIndex(playerID)
	if idx < 0 {
		log.Debug().Str("room", r.id).Str("player", playerID).Msg("[removePlayer] not in room")
		return nil
	}
	player := r.players[idx]

	// 1. End a turn that would be orphaned
	if r.turnActive() && (idx == 0 || len(r.players)-1 <= 1) {
		log.Info().Str("room", r.id).Str("player", playerID).Bool("drawer", idx == 0).
			Msg("[removePlayer] forcing end of turn")
		r.endTurn()
	}

	// 2. Remove and re-rank
	r.players = slices.Delete(r.players, idx, idx+1)
	r.guessers = slices.DeleteFunc(r.guessers, func(id string) bool { return id == playerID })
	RankPlayers(r.players)
	r.playerCount.Store(int32(len(r.players)))

	log.Info().Str("room", r.id).Str("player", playerID).Int("players", len(r.players)).
		Msg("[removePlayer] player left")

	if len(r.players) == 0 {
		r.stopCountdown()
		r.phase = internal.PhaseLobby
		r.wordOptions = nil
		r.wordChosen = ""
		if r.onEmpty != nil {
			go r.onEmpty(r)
		}
		return nil
	}

	r.broadcastSnapshot()
	r.broadcast(internal.TypeChat, internal.NewNotification("Has Left The Room", player.Name))

	// 3. The leaver may have been the last one still guessing
	if r.phase == internal.PhaseDrawing && r.allGuessed() {
		log.Info().Str("room", r.id).Msg("[removePlayer] remaining players all guessed, ending turn")
		r.endTurn()
	}
	return nil
}

// configure lets the owner of a private room change its settings before
// the first turn.
func (r *Room) configure(playerID string, settings internal.RoomSettings) error {
	if r.visibility == internal.VisibilityPublic || playerID != r.ownerID {
		return internal.ErrNotAllowed
	}
	if r.phase != internal.PhaseLobby {
		return internal.InvalidRequestf("room can only be configured in the lobby")
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	if settings.MaxPlayers < len(r.players) {
		return internal.InvalidRequestf("max players %d is below the %d players already in the room",
			settings.MaxPlayers, len(r.players))
	}

	// durations stay server side
	settings.SelectionTime = r.settings.SelectionTime
	settings.TurnEndTime = r.settings.TurnEndTime
	settings.SessionEndTime = r.settings.SessionEndTime

	r.settings = settings
	r.visibility = internal.VisibilityPrivate

	log.Info().Str("room", r.id).Interface("settings", settings).Msg("[configure] room configured")

	r.broadcastSnapshot()
	return nil
}
