package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCode       = errors.New("invalid game code")
	ErrUnknownCode       = errors.New("unknown game code")
	ErrInvalidNickname   = errors.New("nickname must not be empty")
	ErrDuplicateNickname = errors.New("nickname already taken for this code")
	ErrAlreadyJoined     = errors.New("player already joined this code")

	ErrEmptyRoster     = errors.New("no players joined this code")
	ErrNotCodeCreator  = errors.New("only the code creator can start a session")
	ErrInvalidParams   = errors.New("invalid game parameters")
	ErrSessionNotFound = errors.New("session not found")

	ErrRoundNotFound   = errors.New("round not found")
	ErrRoundNotOpen    = errors.New("round is not open")
	ErrNotAParticipant = errors.New("player is not in the session roster")
	ErrNegativeAmount  = errors.New("amount must not be negative")
	ErrDuplicateMove   = errors.New("player already moved this round")

	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrCollaboratorUnavailable wraps store and cache failures
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
)

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrCollaboratorUnavailable, err)
}
