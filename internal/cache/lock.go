package cache

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/nurpe/dumpster-rentals/internal/guard"
)

const lockKeyPrefix = "lock:"

// Guard is a guard.Guard shared by every replica through Redis. The lock ttl
// bounds how long a crashed holder can block a key.
type Guard struct {
	locker *redislock.Client
	ttl    time.Duration
}

func NewGuard(rdb *redis.Client, ttl time.Duration) *Guard {
	return &Guard{locker: redislock.New(rdb), ttl: ttl}
}

func (g *Guard) Acquire(ctx context.Context, key string) (func(), error) {
	lock, err := g.locker.Obtain(ctx, lockKeyPrefix+key, g.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, guard.ErrInFlight
	}
	if err != nil {
		return nil, err
	}
	log := zerolog.Ctx(ctx)
	return func() {
		if err := lock.Release(context.Background()); err != nil {
			log.Warn().Err(err).Str("key", key).Dur("ttl", g.ttl).Msg("failed to release lock, key stays held until ttl")
		}
	}, nil
}
