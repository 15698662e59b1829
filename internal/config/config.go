package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	MongoURI      string        `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string        `env:"MONGO_DATABASE" envDefault:"commons"`
	RedisAddr     string        `env:"REDIS_URI" envDefault:"localhost:6379"`
	HTTPPort      string        `env:"PORT" envDefault:"8080"`
	JWTSecret     string        `env:"JWT_SECRET" envDefault:"super-secret-key-change-in-production"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"720h"`
	ClaimTTL      time.Duration `env:"CLAIM_TTL" envDefault:"24h"`
	CORSOrigins   string        `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string        `env:"LOG_FORMAT" envDefault:"json"`
	Game          GameConfig    `envPrefix:"GAME_"`
}

// Load reads the configuration from the environment
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.RedisAddr = strings.TrimPrefix(cfg.RedisAddr, "redis://")
	if err := cfg.Game.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
