package game

import (
	"context"

	"github.com/scythe504/sketchroom/internal"
)

// Broadcaster delivers a message to the connections of the given players.
// Send must not block the caller; slow or gone connections are the
// transport's problem.
type Broadcaster interface {
	Send(playerIDs []string, msg internal.Message[any])
}

// WordSource returns n distinct words. It fails with an error wrapping
// internal.ErrInvalidRequest when n <= 0 and internal.ErrInsufficientCorpus
// when the corpus holds fewer than n words.
type WordSource interface {
	DrawDistinctWords(ctx context.Context, n int) ([]string, error)
}

// WordCounter is implemented by word sources that track how often a word
// has been drawn.
type WordCounter interface {
	IncrementCount(ctx context.Context, word string) error
}

type discard struct{}

func (discard) Send([]string, internal.Message[any]) {}
