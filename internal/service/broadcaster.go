package service

import (
	"commons/internal/model"
	"context"
)

// Broadcaster delivers a signal to one player (avoids import cycle with the transport)
type Broadcaster interface {
	Publish(ctx context.Context, playerID string, env *model.SignalEnvelope) error
}
