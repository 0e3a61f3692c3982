package words

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scythe504/sketchroom/internal"
)

var ErrUnexpectedDatabase = errors.New("unexpected database error")

const schema = `
CREATE TABLE IF NOT EXISTS words (
	id    SERIAL PRIMARY KEY,
	word  TEXT NOT NULL UNIQUE,
	count INTEGER NOT NULL DEFAULT 0
)`

// PostgresCorpus serves word options from a "words" table.
type PostgresCorpus struct {
	pool *pgxpool.Pool
}

func NewPostgresCorpus(ctx context.Context, connString string) (*PostgresCorpus, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %w", ErrUnexpectedDatabase, err)
	}
	return &PostgresCorpus{pool: pool}, nil
}

func (pc *PostgresCorpus) Close() {
	pc.pool.Close()
}

// EnsureSchema creates the words table when it is missing.
func (pc *PostgresCorpus) EnsureSchema(ctx context.Context) error {
	if _, err := pc.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("%w: %w", ErrUnexpectedDatabase, err)
	}
	return nil
}

// Seed inserts words, leaving existing rows untouched.
func (pc *PostgresCorpus) Seed(ctx context.Context, words []Word) error {
	batch := &pgx.Batch{}
	for _, w := range words {
		batch.Queue(`INSERT INTO words(word, count) VALUES($1, $2) ON CONFLICT (word) DO NOTHING`, w.Text, w.Count)
	}

	if err := pc.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnexpectedDatabase, err)
	}
	return nil
}

func (pc *PostgresCorpus) Size(ctx context.Context) (int, error) {
	var n int
	if err := pc.pool.QueryRow(ctx, `SELECT count(*) FROM words`).Scan(&n); err != nil {
		return 0, wrapQueryErr(err)
	}
	return n, nil
}

// DrawDistinctWords picks n random rows. The word column is unique, so the
// result never repeats a word.
func (pc *PostgresCorpus) DrawDistinctWords(ctx context.Context, n int) ([]string, error) {
	if n <= 0 {
		return nil, internal.InvalidRequestf("word count must be positive, got %d", n)
	}

	size, err := pc.Size(ctx)
	if err != nil {
		return nil, err
	}
	if n > size {
		return nil, fmt.Errorf("%w: requested %d, corpus has %d", internal.ErrInsufficientCorpus, n, size)
	}

	rows, err := pc.pool.Query(ctx, `SELECT word FROM words ORDER BY random() LIMIT $1`, n)
	if err != nil {
		return nil, wrapQueryErr(err)
	}

	words, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, wrapQueryErr(err)
	}
	if len(words) < n {
		// rows were deleted between the two queries
		return nil, fmt.Errorf("%w: requested %d, corpus has %d", internal.ErrInsufficientCorpus, n, len(words))
	}
	return words, nil
}

// IncrementCount records that a word was drawn in a turn.
func (pc *PostgresCorpus) IncrementCount(ctx context.Context, word string) error {
	if _, err := pc.pool.Exec(ctx, `UPDATE words SET count = count + 1 WHERE word = $1`, word); err != nil {
		return wrapQueryErr(err)
	}
	return nil
}

func wrapQueryErr(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnexpectedDatabase, err)
}
