package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SignalLog remembers which signals were already handed to which player
type SignalLog interface {
	// MarkSent returns true the first time it sees (signalKey, playerID)
	MarkSent(ctx context.Context, signalKey, playerID string) (bool, error)
}

type signalLog struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSignalLog(client *redis.Client) SignalLog {
	return &signalLog{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func (c *signalLog) key(signalKey, playerID string) string {
	return fmt.Sprintf("signal:%s:to:%s", signalKey, playerID)
}

func (c *signalLog) MarkSent(ctx context.Context, signalKey, playerID string) (bool, error) {
	return c.client.SetNX(ctx, c.key(signalKey, playerID), 1, c.ttl).Result()
}
