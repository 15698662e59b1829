package cache

import (
	"commons/internal/model"
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// RosterCache keeps session rosters close to the move path. Rosters never
// change after a session starts, so entries only expire.
type RosterCache interface {
	Set(ctx context.Context, sessionID string, roster []model.RosterEntry) error
	Get(ctx context.Context, sessionID string) ([]model.RosterEntry, error)
}

type rosterCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRosterCache(client *redis.Client) RosterCache {
	return &rosterCache{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func (c *rosterCache) key(sessionID string) string {
	return "session:" + sessionID + ":roster"
}

func (c *rosterCache) Set(ctx context.Context, sessionID string, roster []model.RosterEntry) error {
	data, err := json.Marshal(roster)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(sessionID), data, c.ttl).Err()
}

func (c *rosterCache) Get(ctx context.Context, sessionID string) ([]model.RosterEntry, error) {
	data, err := c.client.Get(ctx, c.key(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var roster []model.RosterEntry
	err = json.Unmarshal([]byte(data), &roster)
	return roster, err
}
