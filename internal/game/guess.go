package game

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/sketchroom/internal"
)

// =============================================================================
// GUESS HANDLING
// =============================================================================

// submitGuess either scores a correct guess or relays the text as chat.
func (r *Room) submitGuess(playerID, text string) error {
	player := r.player(playerID)
	if player == nil {
		return internal.ErrNotAllowed
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	active := r.phase == internal.PhaseDrawing && r.wordChosen != ""
	correct := active && strings.EqualFold(text, r.wordChosen)

	switch {
	case correct && r.isDrawer(playerID):
		// the drawer typing the word is never relayed
		log.Debug().Str("room", r.id).Str("player", playerID).Msg("[submitGuess] drawer sent the word, dropped")
		return nil
	case correct && !r.hasGuessed(playerID):
		r.addGuesser(player)
		return nil
	}

	r.relayChat(player, text)
	return nil
}

// addGuesser awards the guesser and the drawer, then ends the turn early
// once nobody is left to guess.
func (r *Room) addGuesser(player *internal.Player) {
	k := len(r.guessers)
	guessPoints := GuessPoints(k, r.settings.TurnTime, r.elapsedTurnTime)
	drawerPoints := DrawerPoints(r.settings.TurnTime, r.elapsedTurnTime)

	player.Award(guessPoints)
	drawer := r.drawer()
	drawer.Award(drawerPoints)

	r.guessers = append(r.guessers, player.ID)
	RankPlayers(r.players)

	log.Info().Str("room", r.id).Str("player", player.ID).Int("order", k).
		Int("points", guessPoints).Int("drawer_points", drawerPoints).Int("elapsed", r.elapsedTurnTime).
		Msg("[addGuesser] correct guess")

	r.broadcast(internal.TypeChat, internal.NewNotification("Has Guessed The Word", player.Name))
	r.broadcastSnapshot()

	if r.allGuessed() {
		log.Info().Str("room", r.id).Msg("[addGuesser] everyone guessed, ending turn")
		r.endTurn()
	}
}

// relayChat sends a chat line. Once a player has guessed, their messages
// only reach the other guessers and the drawer.
func (r *Room) relayChat(player *internal.Player, text string) {
	msg := internal.ChatMessage{
		Kind:     internal.ChatKindMessage,
		Content:  text,
		Sender:   player.Name,
		DidGuess: r.hasGuessed(player.ID),
	}

	if !msg.DidGuess || r.phase != internal.PhaseDrawing {
		r.broadcast(internal.TypeChat, msg)
		return
	}

	to := make([]string, 0, len(r.guessers)+1)
	if d := r.drawer(); d != nil {
		to = append(to, d.ID)
	}
	to = append(to, r.guessers...)
	r.send(to, internal.TypeChat, msg)
}
