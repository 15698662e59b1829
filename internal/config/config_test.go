package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 24*time.Hour, cfg.ClaimTTL)
	assert.Equal(t, int64(100), cfg.Game.StartAmount)
	assert.Equal(t, 3, cfg.Game.NumRounds)
	assert.Equal(t, int64(0), cfg.Game.PoolFloor)
}

func TestLoadStripsRedisScheme(t *testing.T) {
	t.Setenv("REDIS_URI", "redis://cache:6379")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", cfg.RedisAddr)
}

func TestLoadGameOverrides(t *testing.T) {
	t.Setenv("GAME_START_AMOUNT", "1000")
	t.Setenv("GAME_NUM_ROUNDS", "5")

	cfg, err := Load()
	require.NoError(t, err)

	params := cfg.Game.Params()
	assert.EqualValues(t, 1000, params.StartAmount)
	assert.Equal(t, 5, params.NumRounds)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("GAME_NUM_ROUNDS", "not-an-int")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestLoadRejectsZeroRounds(t *testing.T) {
	t.Setenv("GAME_NUM_ROUNDS", "0")

	_, err := Load()
	assert.ErrorContains(t, err, "GAME_NUM_ROUNDS")
}
