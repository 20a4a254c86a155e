package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/citycare/internal/config"
)

// Open builds the store selected by cfg.Backend. The returned func releases
// any connection the store holds.
func Open(ctx context.Context, cfg config.SessionConfig, redisCfg config.RedisConfig, logger *zap.Logger) (Store, func(), error) {
	switch cfg.Backend {
	case config.SessionBackendFile:
		return NewFileStore(cfg.FilePath), func() {}, nil
	case config.SessionBackendRedis:
		rs := NewRedisStore(ctx, redisCfg, logger)
		return rs, rs.Close, nil
	case config.SessionBackendMemory:
		return NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}
