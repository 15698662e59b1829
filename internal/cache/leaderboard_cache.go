package cache

import (
	"commons/internal/model"
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LeaderboardCache handles Redis ZSET operations for cumulative extraction per session
type LeaderboardCache interface {
	// SetTotals overwrites each player's total, so replaying it is harmless
	SetTotals(ctx context.Context, sessionID string, totals map[string]model.ResourceAmount) error
	GetTop(ctx context.Context, sessionID string, limit int) ([]LeaderboardEntry, error)
}

// LeaderboardEntry represents a single leaderboard entry
type LeaderboardEntry struct {
	PlayerID  string               `json:"playerId"`
	Extracted model.ResourceAmount `json:"extracted"`
	Rank      int                  `json:"rank"`
}

type leaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLeaderboardCache creates a new leaderboard cache
func NewLeaderboardCache(client *redis.Client) LeaderboardCache {
	return &leaderboardCache{
		client: client,
		ttl:    7 * 24 * time.Hour,
	}
}

func (c *leaderboardCache) key(sessionID string) string {
	return fmt.Sprintf("session:%s:lb", sessionID)
}

func (c *leaderboardCache) SetTotals(ctx context.Context, sessionID string, totals map[string]model.ResourceAmount) error {
	if len(totals) == 0 {
		return nil
	}
	members := make([]redis.Z, 0, len(totals))
	for playerID, total := range totals {
		members = append(members, redis.Z{Score: float64(total), Member: playerID})
	}

	pipe := c.client.TxPipeline()
	pipe.ZAdd(ctx, c.key(sessionID), members...)
	pipe.Expire(ctx, c.key(sessionID), c.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (c *leaderboardCache) GetTop(ctx context.Context, sessionID string, limit int) ([]LeaderboardEntry, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, c.key(sessionID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(results))
	for i, z := range results {
		entries[i] = LeaderboardEntry{
			PlayerID:  z.Member.(string),
			Extracted: model.ResourceAmount(z.Score),
			Rank:      i + 1,
		}
	}
	return entries, nil
}
