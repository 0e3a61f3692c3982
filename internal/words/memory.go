package words

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"

	"github.com/scythe504/sketchroom/internal"
)

// MemoryCorpus draws words from an in-memory list.
type MemoryCorpus struct {
	mu    sync.Mutex
	words []string
	rng   *rand.Rand
}

// NewMemoryCorpus deduplicates words case-insensitively, keeping the
// first spelling seen.
func NewMemoryCorpus(words []string, rng *rand.Rand) *MemoryCorpus {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	seen := make(map[string]bool, len(words))
	unique := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		key := strings.ToLower(w)
		if w == "" || seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, w)
	}

	return &MemoryCorpus{words: unique, rng: rng}
}

func (c *MemoryCorpus) Size() int {
	return len(c.words)
}

// DrawDistinctWords returns n words drawn without replacement.
func (c *MemoryCorpus) DrawDistinctWords(_ context.Context, n int) ([]string, error) {
	if n <= 0 {
		return nil, internal.InvalidRequestf("word count must be positive, got %d", n)
	}
	if n > len(c.words) {
		return nil, fmt.Errorf("%w: requested %d, corpus has %d", internal.ErrInsufficientCorpus, n, len(c.words))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// partial Fisher-Yates over a copy so the corpus order stays intact
	pool := slices.Clone(c.words)
	for i := range n {
		j := i + c.rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n], nil
}
