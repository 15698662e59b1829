package config

import (
	"commons/internal/model"
	"fmt"
)

// GameConfig holds the default parameters for new sessions
type GameConfig struct {
	StartAmount int64 `env:"START_AMOUNT" envDefault:"100"`
	NumRounds   int   `env:"NUM_ROUNDS" envDefault:"3"`
	PoolFloor   int64 `env:"POOL_FLOOR" envDefault:"0"`
}

// Params converts the configuration into session parameters
func (c GameConfig) Params() model.GameParams {
	return model.GameParams{
		StartAmount: model.ResourceAmount(c.StartAmount),
		NumRounds:   c.NumRounds,
		PoolFloor:   model.ResourceAmount(c.PoolFloor),
	}
}

func (c GameConfig) Validate() error {
	if c.NumRounds < 1 {
		return fmt.Errorf("GAME_NUM_ROUNDS must be at least 1, got %d", c.NumRounds)
	}
	if c.PoolFloor < 0 {
		return fmt.Errorf("GAME_POOL_FLOOR must not be negative, got %d", c.PoolFloor)
	}
	if c.StartAmount <= c.PoolFloor {
		return fmt.Errorf("GAME_START_AMOUNT must exceed GAME_POOL_FLOOR, got %d", c.StartAmount)
	}
	return nil
}
