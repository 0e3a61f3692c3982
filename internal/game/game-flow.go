package game

import (
	"context"
	"slices"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/sketchroom/internal"
	"github.com/scythe504/sketchroom/internal/utils"
)

// =============================================================================
// GAME FLOW - WORD SELECTION
// =============================================================================

// offerWordOptions adopts freshly drawn words as the drawer's choices and
// starts the selection countdown.
func (r *Room) offerWordOptions(playerID string, options []string) ([]string, error) {
	if r.playerIndex(playerID) < 0 {
		return nil, internal.ErrNotAllowed
	}
	if !r.isDrawer(playerID) {
		log.Debug().Str("room", r.id).Str("player", playerID).Msg("[offerWordOptions] non drawer asked for words")
		return nil, internal.ErrNotAllowed
	}

	switch r.phase {
	case internal.PhaseLobby:
		if len(r.players) < internal.MinPlayersToStart {
			return nil, internal.ErrNotEnoughPlayers
		}
	case internal.PhaseWordSelection:
		if len(r.wordOptions) > 0 {
			// duplicate request, keep what the drawer is already looking at
			return slices.Clone(r.wordOptions), nil
		}
	default:
		log.Debug().Str("room", r.id).Str("phase", string(r.phase)).Msg("[offerWordOptions] stale request ignored")
		return nil, nil
	}

	r.phase = internal.PhaseWordSelection
	r.wordOptions = slices.Clone(options)
	r.turnDrawerID = playerID

	total := seconds(r.settings.SelectionTime)
	log.Info().Str("room", r.id).Str("drawer", playerID).Strs("options", options).
		Msg("[offerWordOptions] waiting for drawer to choose")

	r.sendTo(playerID, internal.TypeWordOptions, internal.WordOptionsData{Options: slices.Clone(options), TimeLimit: total})
	r.startCountdown(internal.PhaseWordSelection, total)

	return slices.Clone(options), nil
}

func (r *Room) chooseWord(playerID, word string) error {
	if r.phase != internal.PhaseWordSelection || len(r.wordOptions) == 0 {
		log.Debug().Str("room", r.id).Str("phase", string(r.phase)).Msg("[chooseWord] stale choice ignored")
		return nil
	}
	if !r.isDrawer(playerID) {
		return internal.ErrNotAllowed
	}
	if !slices.Contains(r.wordOptions, word) {
		return internal.InvalidRequestf("%q is not one of the offered words", word)
	}

	r.selectWord(word)
	return nil
}

// autoPickWord stands in for a drawer who let the selection countdown run
// out.
func (r *Room) autoPickWord() {
	if len(r.wordOptions) == 0 {
		log.Warn().Str("room", r.id).Msg("[autoPickWord] no options to pick from")
		r.stopCountdown()
		return
	}
	word := r.wordOptions[r.rng.IntN(len(r.wordOptions))]
	log.Info().Str("room", r.id).Str("word", word).Msg("[autoPickWord] selection timed out, picked a word")
	r.selectWord(word)
}

func (r *Room) selectWord(word string) {
	r.stopCountdown()
	r.wordChosen = word
	r.wordOptions = nil
	r.startTurn()
}

// =============================================================================
// GAME FLOW - TURNS
// =============================================================================

func (r *Room) startTurn() {
	r.stopCountdown()

	// 1. Reset per-turn state
	r.phase = internal.PhaseDrawing
	r.elapsedTurnTime = 0
	r.guessers = nil
	r.hintsRevealed = nil
	for _, p := range r.players {
		p.ResetTurnState()
	}

	// 2. Round bookkeeping
	if r.roundCurrentTurn == 0 {
		r.roundLength = len(r.players)
	}
	r.roundCurrentTurn++

	drawer := r.drawer()
	r.turnDrawerID = drawer.ID

	log.Info().Str("room", r.id).Str("drawer", drawer.ID).Int("round", r.round).
		Int("turn", r.roundCurrentTurn).Int("round_length", r.roundLength).
		Msg("[startTurn] turn started")

	// 3. Tell everyone, the drawer gets the word
	r.broadcastSnapshot()

	started := internal.TurnStartedData{
		DrawerID:   drawer.ID,
		WordLength: utf8.RuneCountInString(r.wordChosen),
		MaskedWord: utils.GetMaskedWord(r.wordChosen, nil),
		TimeLimit:  r.settings.TurnTime,
	}
	r.broadcastExcept(drawer.ID, internal.TypeTurnStarted, started)

	started.Word = r.wordChosen
	r.sendTo(drawer.ID, internal.TypeTurnStarted, started)

	r.startCountdown(internal.PhaseDrawing, r.settings.TurnTime)
	r.recordWordUse(r.wordChosen)
}

// recordWordUse bumps the word's usage counter when the corpus keeps one.
func (r *Room) recordWordUse(word string) {
	counter, ok := r.words.(WordCounter)
	if !ok {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := counter.IncrementCount(ctx, word); err != nil {
			log.Warn().Err(err).Str("room", r.id).Str("word", word).Msg("[recordWordUse] failed to count word")
		}
	}()
}

// endTurn closes the current turn, whether the timer ran out, everyone
// guessed or the drawer left.
func (r *Room) endTurn() {
	if !r.turnActive() {
		log.Debug().Str("room", r.id).Str("phase", string(r.phase)).Msg("[endTurn] no active turn")
		return
	}

	r.stopCountdown()
	r.broadcast(internal.TypeTimerStopped, nil)
	r.broadcast(internal.TypeTurnEnded, internal.TurnEndedData{
		Word:    r.wordChosen,
		Round:   r.round,
		Players: internal.SnapshotPlayers(r.players),
	})
	r.guessers = nil
	r.wordOptions = nil

	if r.roundCurrentTurn > 0 && r.roundCurrentTurn >= r.roundLength {
		r.round++
		r.roundCurrentTurn = 0
		log.Info().Str("room", r.id).Int("round", r.round).Msg("[endTurn] round complete")
	}

	r.phase = internal.PhaseTurnEnd
	r.startCountdown(internal.PhaseTurnEnd, seconds(r.settings.TurnEndTime))
}

// finishTurn runs when the post-turn countdown is over.
func (r *Room) finishTurn() {
	r.stopCountdown()

	r.drawing = nil
	r.hintsRevealed = nil
	r.guessers = nil
	r.wordChosen = ""
	r.elapsedTurnTime = 0
	for _, p := range r.players {
		p.ResetTurnState()
	}

	r.broadcast(internal.TypeCanvasReset, nil)
	r.broadcast(internal.TypeContinueGame, nil)

	if r.round > r.settings.Rounds {
		r.endSession()
		return
	}
	r.changeTurns()
}

// changeTurns hands the pencil to the next player. When the last drawer
// has already left, the next player is at the front and no rotation is
// needed.
func (r *Room) changeTurns() {
	r.stopCountdown()

	if len(r.players) > 1 && r.players[0].ID == r.turnDrawerID {
		r.players = append(r.players[1:], r.players[0])
	}
	r.turnDrawerID = ""
	r.wordChosen = ""
	r.wordOptions = nil

	if len(r.players) < internal.MinPlayersToStart {
		r.phase = internal.PhaseLobby
	} else {
		r.phase = internal.PhaseWordSelection
	}

	var next string
	if d := r.drawer(); d != nil {
		next = d.ID
	}
	log.Info().Str("room", r.id).Str("drawer", next).Str("phase", string(r.phase)).Msg("[changeTurns] next turn")

	r.broadcastSnapshot()
	r.broadcast(internal.TypeTurnChanged, r.snapshot())
}

// =============================================================================
// GAME FLOW - SESSION
// =============================================================================

func (r *Room) endSession() {
	r.stopCountdown()

	r.phase = internal.PhaseSessionEnd
	SortByScore(r.players)

	log.Info().Str("room", r.id).Int("players", len(r.players)).Msg("[endSession] session over")

	r.broadcast(internal.TypeSessionEnded, internal.SessionEndedData{
		Leaderboard: internal.SnapshotPlayers(r.players),
	})
	r.startCountdown(internal.PhaseSessionEnd, seconds(r.settings.SessionEndTime))
}

func (r *Room) finishSession() {
	r.resetToDefault()
	r.broadcastSnapshot()
	r.broadcast(internal.TypeContinueGame, nil)
}

// resetToDefault prepares the room for another session with the same
// players and settings.
func (r *Room) resetToDefault() {
	r.stopCountdown()

	for _, p := range r.players {
		p.Score = 0
		p.ResetTurnState()
	}
	RankPlayers(r.players)

	r.round = 1
	r.roundLength = 0
	r.roundCurrentTurn = 0
	r.turnDrawerID = ""
	r.guessers = nil
	r.hintsRevealed = nil
	r.wordOptions = nil
	r.wordChosen = ""
	r.elapsedTurnTime = 0
	r.drawing = nil
	r.phase = internal.PhaseLobby

	log.Info().Str("room", r.id).Msg("[resetToDefault] room back in lobby")
}
