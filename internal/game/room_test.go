package game

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/scythe504/sketchroom/internal"
)

func TestRoom_CorrectGuessesScoreGuessersAndDrawer(t *testing.T) {
	ctx := context.Background()
	tr := newTestRoom(t, testSettings(), staticWords{"PICTURE", "house", "tree"})
	tr.join(t, "d", "a", "b", "c")

	drawer := tr.startTurn(t, "PICTURE")
	require.Equal(t, "d", drawer)

	var drawerScores []int
	for _, id := range []string{"a", "b", "c"} {
		tr.tick(t, 10)
		require.NoError(t, tr.SubmitGuess(ctx, id, "picture"))
		drawerScores = append(drawerScores, tr.score(t, "d"))
	}

	assert.Equal(t, 250+40, tr.score(t, "a"))
	assert.Equal(t, 220+35, tr.score(t, "b"))
	assert.Equal(t, 190+30, tr.score(t, "c"))
	assert.Equal(t, []int{140, 140 + 135, 140 + 135 + 130}, drawerScores)

	snap := tr.snapshot(t)
	assert.Equal(t, internal.PhaseTurnEnd, snap.Phase, "turn ends once everyone guessed")
	assert.Empty(t, snap.Guessers)
	ranks := map[string]int{}
	for _, p := range snap.Players {
		ranks[p.ID] = p.Rank
	}
	assert.Equal(t, map[string]int{"d": 1, "a": 2, "b": 3, "c": 4}, ranks)

	scores, err := tr.PlayerScores(ctx)
	require.NoError(t, err)
	assert.Equal(t, 405, scores[0].NewScore)

	ended := tr.rec.ofType(internal.TypeTurnEnded)
	require.Len(t, ended, 1)
	assert.Equal(t, "PICTURE", ended[0].msg.Data.(internal.TurnEndedData).Word)
	assert.Len(t, tr.rec.ofType(internal.TypeTimerStopped), 1)
}

func TestRoom_TurnStartedHidesWordFromGuessers(t *testing.T) {
	tr := newTestRoom(t, testSettings(), staticWords{"PICTURE", "house", "tree"})
	tr.join(t, "d", "a")
	tr.startTurn(t, "PICTURE")

	toDrawer := tr.rec.to("d", internal.TypeTurnStarted)
	require.Len(t, toDrawer, 1)
	assert.Equal(t, "PICTURE", toDrawer[0].msg.Data.(internal.TurnStartedData).Word)

	toGuesser := tr.rec.to("a", internal.TypeTurnStarted)
	require.Len(t, toGuesser, 1)
	data := toGuesser[0].msg.Data.(internal.TurnStartedData)
	assert.Empty(t, data.Word)
	assert.Equal(t, 7, data.WordLength)
	assert.Equal(t, "_ _ _ _ _ _ _", data.MaskedWord)
	assert.Equal(t, 90, data.TimeLimit)
}

func TestRoom_SnapshotIsSanitized(t *testing.T) {
	tr := newTestRoom(t, testSettings(), staticWords{"PICTURE", "house", "tree"})
	tr.join(t, "d", "a")
	tr.startTurn(t, "PICTURE")

	snap := tr.snapshot(t)
	assert.Equal(t, "d", snap.DrawerID)
	assert.Equal(t, 7, snap.WordLength)
	assert.Equal(t, "_ _ _ _ _ _ _", snap.MaskedWord)

	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "PICTURE")
}

func TestRoom_NextTurnRotatesDrawer(t *testing.T) {
	ctx := context.Background()
	tr := newTestRoom(t, testSettings(), staticWords{"house", "tree", "sun"})
	tr.join(t, "a", "b", "c")
	tr.startTurn(t, "house")

	require.NoError(t, tr.SubmitGuess(ctx, "b", "house"))
	require.NoError(t, tr.SubmitGuess(ctx, "c", "HOUSE "))
	require.Equal(t, internal.PhaseTurnEnd, tr.snapshot(t).Phase)

	tr.rec.reset()
	tr.tick(t, 2)

	snap := tr.snapshot(t)
	assert.Equal(t, internal.PhaseWordSelection, snap.Phase)
	assert.Equal(t, "b", snap.DrawerID)
	assert.Equal(t, []string{"b", "c", "a"}, playerIDs(snap))
	assert.Equal(t, 1, snap.RoundCurrentTurn)
	assert.Equal(t, 3, snap.RoundLength)

	assert.Len(t, tr.rec.ofType(internal.TypeCanvasReset), 1)
	assert.Len(t, tr.rec.ofType(internal.TypeContinueGame), 1)
	assert.Len(t, tr.rec.ofType(internal.TypeTurnChanged), 1)
	assert.Empty(t, tr.clock.live(), "no countdown until the new drawer asks for words")
}

func TestRoom_LastUnguessedPlayerLeavingEndsTurn(t *testing.T) {
	ctx := context.Background()
	tr := newTestRoom(t, testSettings(), staticWords{"house", "tree", "sun"})
	tr.join(t, "d", "a", "b")
	tr.startTurn(t, "house")

	tr.tick(t, 5)
	require.NoError(t, tr.SubmitGuess(ctx, "a", "house"))
	require.Equal(t, internal.PhaseDrawing, tr.snapshot(t).Phase)

	require.NoError(t, tr.Leave(ctx, "b"))

	snap := tr.snapshot(t)
	assert.Equal(t, internal.PhaseTurnEnd, snap.Phase)
	assert.Equal(t, []string{"d", "a"}, playerIDs(snap))
	assert.Len(t, tr.rec.ofType(internal.TypeTurnEnded), 1)
	tr.inspect(t, func(r *Room) {
		require.NotNil(t, r.timer)
		assert.Equal(t, internal.PhaseTurnEnd, r.timer.phase)
		assert.Equal(t, 5, r.elapsedTurnTime)
	})
	assert.Len(t, tr.clock.live(), 1)
}

func TestRoom_OnlyGuesserLeavingEndsTurn(t *testing.T) {
	ctx := context.Background()
	tr := newTestRoom(t, testSettings(), staticWords{"house", "tree", "sun"})
	tr.join(t, "d", "a")
	tr.startTurn(t, "house")

	require.NoError(t, tr.Leave(ctx, "a"))
	assert.Equal(t, internal.PhaseTurnEnd, tr.snapshot(t).Phase)

	tr.tick(t, 2)
	snap := tr.snapshot(t)
	assert.Equal(t, internal.PhaseLobby, snap.Phase, "a lone player waits in the lobby")
	assert.Empty(t, snap.DrawerID)
	assert.Empty(t, tr.clock.live())
}

func TestRoom_DrawerLeavingHandsTurnToNextPlayer(t *testing.T) {
	ctx := context.Background()
	tr := newTestRoom(t, testSettings(), staticWords{"house", "tree", "sun"})
	tr.join(t, "a", "b", "c")
	tr.startTurn(t, "house")
	tr.tick(t, 5)

	require.NoError(t, tr.Leave(ctx, "a"))
	require.Equal(t, internal.PhaseTurnEnd, tr.snapshot(t).Phase)

	tr.tick(t, 2)
	snap := tr.snapshot(t)
	assert.Equal(t, internal.PhaseWordSelection, snap.Phase)
	assert.Equal(t, "b", snap.DrawerID, "b must not be skipped")
	assert.Equal(t, []string{"b", "c"}, playerIDs(snap))
}

func TestRoom_FinalRoundEndsSession(t *testing.T) {
	ctx := context.Background()
	settings := testSettings()
	settings.Rounds = 3
	tr := newTestRoom(t, settings, staticWords{"house", "tree", "sun"})
	tr.join(t, "a", "b")

	for turn := 1; turn <= 6; turn++ {
		snap := tr.snapshot(t)
		require.Equal(t, (turn+1)/2, snap.Round, "turn %d", turn)
		require.Equal(t, 3, snap.Rounds)

		drawer := tr.startTurn(t, "house")
		guesser := "a"
		if drawer == "a" {
			guesser = "b"
		}
		require.NoError(t, tr.SubmitGuess(ctx, guesser, "house"))
		require.Equal(t, internal.PhaseTurnEnd, tr.snapshot(t).Phase)

		tr.tick(t, 2)
		if turn < 6 {
			require.Equal(t, internal.PhaseWordSelection, tr.snapshot(t).Phase, "turn %d", turn)
		}
	}

	snap := tr.snapshot(t)
	assert.Equal(t, internal.PhaseSessionEnd, snap.Phase)
	assert.Equal(t, 4, snap.Round)

	ended := tr.rec.ofType(internal.TypeSessionEnded)
	require.Len(t, ended, 1)
	board := ended[0].msg.Data.(internal.SessionEndedData).Leaderboard
	require.Len(t, board, 2)
	assert.GreaterOrEqual(t, board[0].Score, board[1].Score)

	tr.tick(t, 2)
	snap = tr.snapshot(t)
	assert.Equal(t, internal.PhaseLobby, snap.Phase)
	assert.Equal(t, 1, snap.Round)
	assert.Zero(t, snap.RoundCurrentTurn)
	for _, p := range snap.Players {
		assert.Zero(t, p.Score)
		assert.Equal(t, 1, p.Rank)
	}
	assert.Len(t, snap.Players, 2, "players stay for the next session")
	assert.Empty(t, tr.clock.live())
}

func TestRoom_SelectionTimeoutPicksAWord(t *testing.T) {
	ctx := context.Background()
	tr := newTestRoom(t, testSettings(), staticWords{"house", "tree", "sun"})
	tr.join(t, "d", "a")

	options, err := tr.RequestWordOptions(ctx, "d", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"house", "tree", "sun"}, options)

	offered := tr.rec.ofType(internal.TypeWordOptions)
	require.Len(t, offered, 1)
	assert.Equal(t, []string{"d"}, offered[0].to)
	assert.Equal(t, 3, offered[0].msg.Data.(internal.WordOptionsData).TimeLimit)

	tr.tick(t, 2)
	require.Equal(t, internal.PhaseWordSelection, tr.snapshot(t).Phase)
	tr.tick(t, 1)

	snap := tr.snapshot(t)
	assert.Equal(t, internal.PhaseDrawing, snap.Phase)
	assert.Equal(t, 1, snap.RoundCurrentTurn)
	assert.Equal(t, 2, snap.RoundLength)

	tr.inspect(t, func(r *Room) {
		assert.Contains(t, options, r.wordChosen)
		assert.Empty(t, r.wordOptions)
		assert.Zero(t, r.elapsedTurnTime)
		require.NotNil(t, r.timer)
		assert.Equal(t, 90, r.timer.total)
	})

	started := tr.rec.to("d", internal.TypeTurnStarted)
	require.Len(t, started, 1)
	assert.Contains(t, options, started[0].msg.Data.(internal.TurnStartedData).Word)
	assert.Len(t, tr.clock.live(), 1)
}

func TestRoom_ChooseWord(t *testing.T) {
	ctx := context.Background()
	tr := newTestRoom(t, testSettings(), staticWords{"house", "tree", "sun"})
	tr.join(t, "d", "a")

	require.NoError(t, tr.ChooseWord(ctx, "d", "house"), "choosing in the lobby is ignored")
	assert.Equal(t, internal.PhaseLobby, tr.snapshot(t).Phase)

	_, err := tr.RequestWordOptions(ctx, "d", 3)
	require.NoError(t, err)

	assert.ErrorIs(t, tr.ChooseWord(ctx, "a", "house"), internal.ErrNotAllowed)
	assert.ErrorIs(t, tr.ChooseWord(ctx, "d", "castle"), internal.ErrInvalidRequest)
	assert.Equal(t, internal.PhaseWordSelection, tr.snapshot(t).Phase)

	require.NoError(t, tr.ChooseWord(ctx, "d", "tree"))
	require.NoError(t, tr.ChooseWord(ctx, "d", "sun"), "a late duplicate choice is ignored")

	snap := tr.snapshot(t)
	assert.Equal(t, internal.PhaseDrawing, snap.Phase)
	assert.Equal(t, 1, snap.RoundCurrentTurn)
	tr.inspect(t, func(r *Room) { assert.Equal(t, "tree", r.wordChosen) })
	assert.Len(t, tr.clock.live(), 1)
}

func TestRoom_RequestWordOptions(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects a non positive count", func(t *testing.T) {
		words := &mockWords{}
		tr := newTestRoom(t, testSettings(), words)
		tr.join(t, "d", "a")

		_, err := tr.RequestWordOptions(ctx, "d", 0)
		assert.ErrorIs(t, err, internal.ErrInvalidRequest)
		words.AssertNotCalled(t, "DrawDistinctWords", mock.Anything, mock.Anything)
	})

	t.Run("needs two players", func(t *testing.T) {
		words := &mockWords{}
		words.On("DrawDistinctWords", mock.Anything, 3).Return([]string{"a", "b", "c"}, nil)
		tr := newTestRoom(t, testSettings(), words)
		tr.join(t, "d")

		_, err := tr.RequestWordOptions(ctx, "d", 3)
		assert.ErrorIs(t, err, internal.ErrNotEnoughPlayers)
		assert.ErrorIs(t, err, internal.ErrInvalidRequest)
		assert.Equal(t, internal.PhaseLobby, tr.snapshot(t).Phase)
	})

	t.Run("only the drawer may ask", func(t *testing.T) {
		words := &mockWords{}
		words.On("DrawDistinctWords", mock.Anything, 3).Return([]string{"a", "b", "c"}, nil)
		tr := newTestRoom(t, testSettings(), words)
		tr.join(t, "d", "a")

		_, err := tr.RequestWordOptions(ctx, "a", 3)
		assert.ErrorIs(t, err, internal.ErrNotAllowed)
		assert.Empty(t, tr.clock.live())
	})

	t.Run("insufficient corpus leaves the room untouched", func(t *testing.T) {
		words := &mockWords{}
		words.On("DrawDistinctWords", mock.Anything, 50).Return(nil, internal.ErrInsufficientCorpus)
		tr := newTestRoom(t, testSettings(), words)
		tr.join(t, "d", "a")

		_, err := tr.RequestWordOptions(ctx, "d", 50)
		assert.ErrorIs(t, err, internal.ErrInsufficientCorpus)
		assert.ErrorIs(t, err, internal.ErrInvalidRequest)
		assert.Equal(t, internal.PhaseLobby, tr.snapshot(t).Phase)
		assert.Empty(t, tr.rec.ofType(internal.TypeWordOptions))
		words.AssertExpectations(t)
	})

	t.Run("a repeated request keeps the first options", func(t *testing.T) {
		words := &mockWords{}
		words.On("DrawDistinctWords", mock.Anything, 3).Return([]string{"a", "b", "c"}, nil).Once()
		words.On("DrawDistinctWords", mock.Anything, 3).Return([]string{"x", "y", "z"}, nil).Once()
		tr := newTestRoom(t, testSettings(), words)
		tr.join(t, "d", "a")

		first, err := tr.RequestWordOptions(ctx, "d", 3)
		require.NoError(t, err)
		second, err := tr.RequestWordOptions(ctx, "d", 3)
		require.NoError(t, err)

		assert.Equal(t, []string{"a", "b", "c"}, first)
		assert.Equal(t, first, second)
		assert.Len(t, tr.clock.live(), 1)
		words.AssertExpectations(t)
	})

	t.Run("stale while drawing", func(t *testing.T) {
		tr := newTestRoom(t, testSettings(), staticWords{"house", "tree", "sun"})
		tr.join(t, "d", "a")
		tr.startTurn(t, "house")

		options, err := tr.RequestWordOptions(ctx, "d", 3)
		assert.NoError(t, err)
		assert.Nil(t, options)
		assert.Equal(t, internal.PhaseDrawing, tr.snapshot(t).Phase)
	})
}

func TestRoom_GuessVisibility(t *testing.T) {
	ctx := context.Background()
	tr := newTestRoom(t, testSettings(), staticWords{"house", "tree", "sun"})
	tr.join(t, "d", "a", "b")
	tr.startTurn(t, "house")
	tr.rec.reset()

	require.NoError(t, tr.SubmitGuess(ctx, "a", "is it a hut"))
	chats := tr.rec.ofType(internal.TypeChat)
	require.Len(t, chats, 1)
	assert.ElementsMatch(t, []string{"d", "a", "b"}, chats[0].to)
	assert.Equal(t, internal.ChatMessage{Kind: internal.ChatKindMessage, Content: "is it a hut", Sender: "name-a"}, chats[0].msg.Data)

	require.NoError(t, tr.SubmitGuess(ctx, "a", "House"))
	tr.rec.reset()

	require.NoError(t, tr.SubmitGuess(ctx, "a", "that was easy"))
	chats = tr.rec.ofType(internal.TypeChat)
	require.Len(t, chats, 1)
	assert.ElementsMatch(t, []string{"d", "a"}, chats[0].to, "guessers only talk to guessers and the drawer")
	assert.True(t, chats[0].msg.Data.(internal.ChatMessage).DidGuess)

	tr.rec.reset()
	require.NoError(t, tr.SubmitGuess(ctx, "b", "a tent?"))
	chats = tr.rec.ofType(internal.TypeChat)
	require.Len(t, chats, 1)
	assert.ElementsMatch(t, []string{"d", "a", "b"}, chats[0].to)
}

func TestRoom_IgnoredGuesses(t *testing.T) {
	ctx := context.Background()
	tr := newTestRoom(t, testSettings(), staticWords{"house", "tree", "sun"})
	tr.join(t, "d", "a", "b")

	require.NoError(t, tr.SubmitGuess(ctx, "a", "house"), "no active word")
	assert.Zero(t, tr.score(t, "a"))

	tr.startTurn(t, "house")
	tr.rec.reset()

	require.NoError(t, tr.SubmitGuess(ctx, "d", "house"))
	assert.Empty(t, tr.rec.ofType(internal.TypeChat), "the drawer's word is never relayed")
	assert.Zero(t, tr.score(t, "d"))

	require.NoError(t, tr.SubmitGuess(ctx, "a", "house"))
	scored := tr.score(t, "a")
	require.NoError(t, tr.SubmitGuess(ctx, "a", "house"))
	assert.Equal(t, scored, tr.score(t, "a"), "a second correct guess scores nothing")

	require.NoError(t, tr.SubmitGuess(ctx, "b", "   "))
	assert.ErrorIs(t, tr.SubmitGuess(ctx, "stranger", "house"), internal.ErrNotAllowed)

	snap := tr.snapshot(t)
	assert.Equal(t, []string{"a"}, snap.Guessers)
	assert.Equal(t, internal.PhaseDrawing, snap.Phase)
}

func TestRoom_HintsStayWithinLimit(t *testing.T) {
	settings := testSettings()
	settings.NumberOfHints = 5
	tr := newTestRoom(t, settings, staticWords{"cat", "dog", "sun"})
	tr.join(t, "d", "a")
	tr.startTurn(t, "cat")

	hints := func() []int {
		var out []int
		tr.inspect(t, func(r *Room) { out = slices.Clone(r.hintsRevealed) })
		return out
	}

	tr.tick(t, 29)
	assert.Empty(t, hints())
	tr.tick(t, 1)
	assert.Len(t, hints(), 1)
	tr.tick(t, 30)
	assert.Len(t, hints(), 2)
	tr.tick(t, 29)

	revealed := hints()
	require.Len(t, revealed, 2, "cat never gives away its last letter")
	assert.NotEqual(t, revealed[0], revealed[1])
	for _, idx := range revealed {
		assert.True(t, idx >= 0 && idx < 3)
	}
	assert.Equal(t, 1, strings.Count(tr.snapshot(t).MaskedWord, "_"))
	assert.Len(t, tr.rec.ofType(internal.TypeHintRevealed), 2)

	tr.tick(t, 1)
	assert.Equal(t, internal.PhaseTurnEnd, tr.snapshot(t).Phase, "timer expiry ends the turn")
}

func TestRoom_HintsSkipWhitespace(t *testing.T) {
	settings := testSettings()
	settings.NumberOfHints = 10
	settings.TurnTime = 80
	tr := newTestRoom(t, settings, staticWords{"ice cream", "dog", "sun"})
	tr.join(t, "d", "a")
	tr.startTurn(t, "ice cream")

	tr.tick(t, 79)
	tr.inspect(t, func(r *Room) {
		assert.Len(t, r.hintsRevealed, 7)
		assert.NotContains(t, r.hintsRevealed, 3)
	})
}

func TestRoom_JoinDuringTurn(t *testing.T) {
	ctx := context.Background()
	tr := newTestRoom(t, testSettings(), staticWords{"house", "tree", "sun"})
	tr.join(t, "a", "b", "c")
	tr.startTurn(t, "house")

	blob := internal.DrawingState(`{"lines":[[1,2],[3,4]]}`)
	require.NoError(t, tr.UpdateDrawing(ctx, "a", blob))
	updates := tr.rec.ofType(internal.TypeDrawingUpdate)
	require.Len(t, updates, 1)
	assert.ElementsMatch(t, []string{"b", "c"}, updates[0].to)

	tr.tick(t, 4)
	tr.join(t, "d")

	snap := tr.snapshot(t)
	assert.Equal(t, 3, snap.RoundLength, "joins do not change the round")
	assert.Len(t, snap.Players, 4)

	joined := tr.rec.to("d", internal.TypeJoinedRoom)
	require.Len(t, joined, 1)
	assert.Equal(t, "d", joined[0].msg.Data.(internal.JoinedRoomData).PlayerID)

	started := tr.rec.to("d", internal.TypeTurnStarted)
	require.Len(t, started, 1)
	assert.Empty(t, started[0].msg.Data.(internal.TurnStartedData).Word)

	replay := tr.rec.to("d", internal.TypeDrawingUpdate)
	require.Len(t, replay, 1)
	assert.Equal(t, blob, replay[0].msg.Data)

	countdowns := tr.rec.to("d", internal.TypeCountdown)
	require.NotEmpty(t, countdowns)
	assert.Equal(t, 86, countdowns[0].msg.Data.(internal.CountdownData).SecondsRemaining)
}

func TestRoom_Drawing(t *testing.T) {
	ctx := context.Background()
	tr := newTestRoom(t, testSettings(), staticWords{"house", "tree", "sun"})
	tr.join(t, "a", "b")

	require.ErrorIs(t, tr.UpdateDrawing(ctx, "b", internal.DrawingState(`{}`)), internal.ErrNotAllowed)
	require.NoError(t, tr.UpdateDrawing(ctx, "a", internal.DrawingState(`{}`)), "ignored outside a turn")
	assert.Empty(t, tr.rec.ofType(internal.TypeDrawingUpdate))

	tr.startTurn(t, "house")
	require.NoError(t, tr.UpdateDrawing(ctx, "a", internal.DrawingState(`{"x":1}`)))
	require.NoError(t, tr.ClearDrawing(ctx, "a"))
	assert.ErrorIs(t, tr.ClearDrawing(ctx, "b"), internal.ErrNotAllowed)

	resets := tr.rec.ofType(internal.TypeCanvasReset)
	require.Len(t, resets, 1)
	assert.Equal(t, []string{"b"}, resets[0].to)
	tr.inspect(t, func(r *Room) { assert.Nil(t, r.drawing) })
}

func TestRoom_Join(t *testing.T) {
	ctx := context.Background()
	settings := testSettings()
	settings.MaxPlayers = 2
	tr := newTestRoom(t, settings, staticWords{"house"})

	tr.join(t, "a", "b")
	require.NoError(t, tr.Join(ctx, internal.NewPlayer("a", "again")), "rejoining is a no-op")
	assert.ErrorIs(t, tr.Join(ctx, internal.NewPlayer("c", "")), internal.ErrRoomFull)
	assert.ErrorIs(t, tr.Join(ctx, internal.NewPlayer("", "")), internal.ErrInvalidRequest)

	assert.Equal(t, 2, tr.PlayerCount())
	assert.Equal(t, internal.RoomDescription{ID: "room-1", PlayerCount: 2, MaxPlayers: 2, Phase: internal.PhaseLobby}, tr.Description())

	var joins []string
	for _, s := range tr.rec.ofType(internal.TypeChat) {
		msg := s.msg.Data.(internal.ChatMessage)
		assert.Equal(t, internal.ChatKindNotification, msg.Kind)
		assert.Equal(t, "Has Joined The Room", msg.Content)
		joins = append(joins, msg.Sender)
	}
	assert.Equal(t, []string{"name-a", "name-b"}, joins)
}

func TestRoom_Configure(t *testing.T) {
	ctx := context.Background()
	private := func(o *RoomOptions) {
		o.Visibility = internal.VisibilityPrivatePending
		o.OwnerID = "owner"
		o.JoinCode = "ABCDEF"
	}
	tr := newTestRoom(t, testSettings(), staticWords{"house", "tree", "sun"}, private)
	tr.join(t, "owner", "guest", "third")

	wanted := internal.RoomSettings{Rounds: 5, TurnTime: 60, MaxPlayers: 4, WordOptionCount: 2, NumberOfHints: 1}

	assert.ErrorIs(t, tr.Configure(ctx, "guest", wanted), internal.ErrNotAllowed)

	bad := wanted
	bad.Rounds = 0
	assert.ErrorIs(t, tr.Configure(ctx, "owner", bad), internal.ErrInvalidRequest)

	tooSmall := wanted
	tooSmall.MaxPlayers = 2
	assert.ErrorIs(t, tr.Configure(ctx, "owner", tooSmall), internal.ErrInvalidRequest)
	assert.Equal(t, internal.VisibilityPrivatePending, tr.snapshot(t).Visibility)

	require.NoError(t, tr.Configure(ctx, "owner", wanted))
	snap := tr.snapshot(t)
	assert.Equal(t, internal.VisibilityPrivate, snap.Visibility)
	assert.Equal(t, 5, snap.Rounds)
	assert.Equal(t, 60, snap.TurnTime)
	assert.Equal(t, 4, snap.MaxPlayers)
	assert.Equal(t, "ABCDEF", snap.JoinCode)
	assert.Equal(t, "owner", snap.OwnerID)
	tr.inspect(t, func(r *Room) {
		assert.Equal(t, testSettings().SelectionTime, r.settings.SelectionTime)
	})

	tr.startTurn(t, "house")
	assert.ErrorIs(t, tr.Configure(ctx, "owner", wanted), internal.ErrInvalidRequest, "only in the lobby")
}

func TestRoom_ConfigurePublicRoom(t *testing.T) {
	tr := newTestRoom(t, testSettings(), staticWords{"house"})
	tr.join(t, "a")
	err := tr.Configure(context.Background(), "a", internal.DefaultSettings())
	assert.ErrorIs(t, err, internal.ErrNotAllowed)
}

func TestRoom_EmptyRoomStopsCountdown(t *testing.T) {
	ctx := context.Background()
	emptied := make(chan string, 1)
	tr := newTestRoom(t, testSettings(), staticWords{"house", "tree", "sun"}, func(o *RoomOptions) {
		o.OnEmpty = func(r *Room) { emptied <- r.ID() }
	})
	tr.join(t, "a", "b")
	tr.startTurn(t, "house")

	require.NoError(t, tr.Leave(ctx, "a"))
	require.NoError(t, tr.Leave(ctx, "b"))
	require.NoError(t, tr.Leave(ctx, "b"), "leaving twice is harmless")

	assert.Equal(t, "room-1", <-emptied)
	assert.Empty(t, tr.clock.live())
	assert.Equal(t, internal.PhaseLobby, tr.snapshot(t).Phase)
	assert.Zero(t, tr.PlayerCount())
}

func TestRoom_ClosedRoom(t *testing.T) {
	tr := newTestRoom(t, testSettings(), staticWords{"house", "tree", "sun"})
	tr.join(t, "a", "b")
	tr.startTurn(t, "house")

	tr.Close()
	<-tr.Done()

	assert.ErrorIs(t, tr.Join(context.Background(), internal.NewPlayer("c", "")), internal.ErrRoomNotFound)
	_, err := tr.Snapshot(context.Background())
	assert.ErrorIs(t, err, internal.ErrRoomNotFound)
	assert.Empty(t, tr.clock.live(), "closing cancels the countdown")
}

func TestRoom_CancelledContext(t *testing.T) {
	tr := newTestRoom(t, testSettings(), staticWords{"house"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// the inbox has room, so the post itself may still go through
	err := tr.SubmitGuess(ctx, "nobody", "x")
	assert.Error(t, err)
}

func TestRoom_ConcurrentGuesses(t *testing.T) {
	ctx := context.Background()
	tr := newTestRoom(t, testSettings(), staticWords{"house", "tree", "sun"})

	guessers := []string{"p1", "p2", "p3", "p4", "p5"}
	tr.join(t, append([]string{"d"}, guessers...)...)
	tr.startTurn(t, "house")

	var wg sync.WaitGroup
	for _, id := range guessers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 10 {
				_ = tr.SubmitGuess(ctx, id, fmt.Sprintf("guess %d", i))
				_ = tr.SubmitGuess(ctx, id, "house")
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 20 {
			_, _ = tr.Snapshot(ctx)
			_, _ = tr.PlayerScores(ctx)
			_ = tr.Description()
		}
	}()
	wg.Wait()

	snap := tr.snapshot(t)
	assert.Equal(t, internal.PhaseTurnEnd, snap.Phase)

	var senders []string
	for _, s := range tr.rec.ofType(internal.TypeChat) {
		if msg := s.msg.Data.(internal.ChatMessage); msg.Content == "Has Guessed The Word" {
			senders = append(senders, msg.Sender)
		}
	}
	assert.Len(t, senders, len(guessers))
	assert.ElementsMatch(t, []string{"name-p1", "name-p2", "name-p3", "name-p4", "name-p5"}, senders)

	var total int
	for _, p := range snap.Players {
		if p.ID != "d" {
			assert.Positive(t, p.Score)
			total += p.Score
		}
	}
	assert.Equal(t, 250+220+190+160+130+5*45, total)
	assert.Equal(t, 5*145, tr.score(t, "d"))
}

func playerIDs(snap internal.RoomSnapshot) []string {
	out := make([]string, 0, len(snap.Players))
	for _, p := range snap.Players {
		out = append(out, p.ID)
	}
	return out
}
