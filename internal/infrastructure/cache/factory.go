package cache

import (
	"github.com/resledger/backend/internal/domain/shared"
	"github.com/resledger/backend/internal/infrastructure/config"
)

// NewIdempotencyStore builds the idempotency store selected by
// configuration: "redis" for shared state across instances, anything
// else gets the in-memory store.
func NewIdempotencyStore(cfg *config.Config) (shared.IdempotencyStore, error) {
	if cfg.Ledger.IdempotencyBackend == "redis" {
		return NewRedisIdempotencyStore(RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	return NewInMemoryIdempotencyStore(), nil
}
