package service

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/altWulff/Not-Detail-Poster-sub000/internal/infra"

	"gorm.io/gorm"
)

// Clock returns the current instant. Services call it on every operation so
// day boundaries are never cached across requests.
type Clock func() time.Time

// Locker serializes mutating operations per shop across processes.
type Locker interface {
	Lock(ctx context.Context, shopID uint) (unlock func(), err error)
}

// NoopLocker is used when no shared lock backend is configured; row locks
// taken inside the transaction still serialize balance writes.
type NoopLocker struct{}

func (NoopLocker) Lock(context.Context, uint) (func(), error) { return func() {}, nil }

func withShopLock(ctx context.Context, l Locker, shopID uint, fn func() error) error {
	if l == nil {
		return fn()
	}
	unlock, err := l.Lock(ctx, shopID)
	if errors.Is(err, infra.ErrLockNotObtained) {
		return ErrConcurrency
	}
	if err != nil {
		return persistence(err)
	}
	defer unlock()
	return fn()
}

// withShopLocks takes the locks of every distinct shop in ascending id order,
// so two callers locking the same pair never wait on each other in a cycle.
func withShopLocks(ctx context.Context, l Locker, shopIDs []uint, fn func() error) error {
	ids := make([]uint, 0, len(shopIDs))
	for _, id := range shopIDs {
		if id != 0 && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	run := fn
	for i := len(ids) - 1; i >= 0; i-- {
		id, inner := ids[i], run
		run = func() error { return withShopLock(ctx, l, id, inner) }
	}
	return run()
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// startOfDay returns local midnight of now in loc, as UTC.
func startOfDay(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).UTC()
}
