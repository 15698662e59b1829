package cache

import (
	"commons/internal/model"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CloseClaimCache holds the first close decision recorded for each round
type CloseClaimCache interface {
	// ClaimClose stores candidate unless a result is already claimed for the
	// round, and returns whichever result is stored. won is true only for the
	// caller whose candidate was stored.
	ClaimClose(ctx context.Context, roundID string, candidate *model.RoundResult) (stored *model.RoundResult, won bool, err error)
	GetClose(ctx context.Context, roundID string) (*model.RoundResult, error)
}

// SET NX and the read-back happen in one script so a racer can never see
// "not claimed" and "no value" at the same time.
var claimScript = redis.NewScript(`
local ok = redis.call('SET', KEYS[1], ARGV[1], 'NX', 'PX', ARGV[2])
if ok then
	return {1, ARGV[1]}
end
return {0, redis.call('GET', KEYS[1])}
`)

type closeClaimCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCloseClaimCache creates a claim cache; claims expire after ttl
func NewCloseClaimCache(client *redis.Client, ttl time.Duration) CloseClaimCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &closeClaimCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *closeClaimCache) key(roundID string) string {
	return fmt.Sprintf("round:%s:close", roundID)
}

func (c *closeClaimCache) ClaimClose(ctx context.Context, roundID string, candidate *model.RoundResult) (*model.RoundResult, bool, error) {
	data, err := json.Marshal(candidate)
	if err != nil {
		return nil, false, err
	}

	res, err := claimScript.Run(ctx, c.client, []string{c.key(roundID)}, data, c.ttl.Milliseconds()).Slice()
	if err != nil {
		return nil, false, err
	}
	if len(res) != 2 {
		return nil, false, fmt.Errorf("claim round %s: unexpected reply %v", roundID, res)
	}
	won, _ := res[0].(int64)
	raw, ok := res[1].(string)
	if !ok {
		return nil, false, fmt.Errorf("claim round %s: claim vanished", roundID)
	}

	var stored model.RoundResult
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, false, err
	}
	return &stored, won == 1, nil
}

func (c *closeClaimCache) GetClose(ctx context.Context, roundID string) (*model.RoundResult, error) {
	data, err := c.client.Get(ctx, c.key(roundID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var stored model.RoundResult
	if err := json.Unmarshal([]byte(data), &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}
