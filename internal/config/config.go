package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"
)

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Port     string `env:"PORT"      envDefault:"8080"`
	Env      string `env:"APP_ENV"   envDefault:"local"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`

	// APIKey guards /api. Empty disables the guard for local play.
	APIKey string `env:"API_KEY"`

	SessionStore  string        `env:"SESSION_STORE"  envDefault:"memory"`
	DBPath        string        `env:"DB_PATH"        envDefault:"db.sqlite"`
	RedisAddr     string        `env:"REDIS_ADDR"     envDefault:"localhost:6379"`
	SessionTTL    time.Duration `env:"SESSION_TTL"    envDefault:"24h"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"5m"`

	StartingBalance decimal.Decimal `env:"STARTING_BALANCE"  envDefault:"1000"`
	BlackjackMinBet decimal.Decimal `env:"BLACKJACK_MIN_BET" envDefault:"1"`
	BlackjackMaxBet decimal.Decimal `env:"BLACKJACK_MAX_BET" envDefault:"100"`
	RouletteMinBet  decimal.Decimal `env:"ROULETTE_MIN_BET"  envDefault:"1"`
	RouletteMaxBet  decimal.Decimal `env:"ROULETTE_MAX_BET"  envDefault:"1000"`
	SlotsMinBet     decimal.Decimal `env:"SLOTS_MIN_BET"     envDefault:"0.1"`
	SlotsMaxBet     decimal.Decimal `env:"SLOTS_MAX_BET"     envDefault:"100"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Production() bool { return c.Env == "prod" }

func (c *Config) Validate() error {
	switch c.SessionStore {
	case StoreMemory, StoreSQLite, StoreRedis:
	default:
		return fmt.Errorf("%w: unknown SESSION_STORE %q", ErrInvalidConfig, c.SessionStore)
	}
	if c.StartingBalance.IsNegative() {
		return fmt.Errorf("%w: STARTING_BALANCE is negative", ErrInvalidConfig)
	}
	if c.SessionTTL <= 0 || c.SweepInterval <= 0 {
		return fmt.Errorf("%w: SESSION_TTL and SWEEP_INTERVAL must be positive", ErrInvalidConfig)
	}

	limits := []struct {
		game     string
		min, max decimal.Decimal
	}{
		{"BLACKJACK", c.BlackjackMinBet, c.BlackjackMaxBet},
		{"ROULETTE", c.RouletteMinBet, c.RouletteMaxBet},
		{"SLOTS", c.SlotsMinBet, c.SlotsMaxBet},
	}
	for _, l := range limits {
		if l.min.IsNegative() || l.max.IsNegative() {
			return fmt.Errorf("%w: %s bet limits are negative", ErrInvalidConfig, l.game)
		}
		if l.max.IsPositive() && l.min.GreaterThan(l.max) {
			return fmt.Errorf("%w: %s_MIN_BET above %s_MAX_BET", ErrInvalidConfig, l.game, l.game)
		}
	}
	return nil
}
