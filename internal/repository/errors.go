package repository

import (
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrDuplicate is returned when an insert hits a unique index
	ErrDuplicate = errors.New("duplicate record")

	ErrNicknameTaken = errors.New("nickname already taken for this code")
	ErrAlreadyJoined = errors.New("player already joined this code")
)

// duplicateIndex reports whether err is a duplicate key error and, when the
// server said so, which index rejected the write.
func duplicateIndex(err error) (string, bool) {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return indexFromMessage(e.Message), true
			}
		}
	}
	if mongo.IsDuplicateKeyError(err) {
		return "", true
	}
	return "", false
}

func indexFromMessage(msg string) string {
	const marker = "index: "
	i := strings.Index(msg, marker)
	if i < 0 {
		return ""
	}
	rest := msg[i+len(marker):]
	if j := strings.IndexByte(rest, ' '); j >= 0 {
		rest = rest[:j]
	}
	return rest
}
