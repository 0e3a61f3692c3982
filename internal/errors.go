package internal

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInsufficientCorpus = fmt.Errorf("%w: not enough words available", ErrInvalidRequest)
	ErrNotEnoughPlayers   = fmt.Errorf("%w: not enough players to start", ErrInvalidRequest)
	ErrRoomFull           = errors.New("room full")
	ErrRoomNotFound       = errors.New("room not found")
	ErrNotAllowed         = errors.New("not allowed")
)

func InvalidRequestf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}
