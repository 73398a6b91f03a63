package infra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrLockNotObtained is returned when another process holds the shop lock.
var ErrLockNotObtained = errors.New("shop lock not obtained")

// ShopLocker takes a short-lived Redis lock per shop around reconciliation
// and edits, so two report submissions for one shop never interleave.
type ShopLocker struct {
	client *redislock.Client
	ttl    time.Duration
}

func NewShopLocker(rdb *redis.Client, ttl time.Duration) *ShopLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &ShopLocker{client: redislock.New(rdb), ttl: ttl}
}

func (l *ShopLocker) Lock(ctx context.Context, shopID uint) (func(), error) {
	key := fmt.Sprintf("lock:shop:%d", shopID)
	lock, err := l.client.Obtain(ctx, key, l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrLockNotObtained
	}
	if err != nil {
		return nil, fmt.Errorf("locker: obtain %s: %w", key, err)
	}
	return func() {
		// Release with a fresh context: the request context may already be done.
		if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			log.Warn().Err(err).Str("key", key).Msg("locker: release failed")
		}
	}, nil
}
