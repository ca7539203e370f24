package cache

import (
	"context"
	"errors"
	"time"
)

// Layered reads through a fast local cache into a shared one, backfilling
// the local layer on remote hits. Writes go to both layers.
type Layered struct {
	local  Cache
	shared Cache
}

// NewLayered composes a local and a shared cache. Either may be nil; the
// remaining layer is used alone.
func NewLayered(local, shared Cache) *Layered {
	return &Layered{local: local, shared: shared}
}

func (l *Layered) Get(ctx context.Context, key string, dest interface{}) error {
	if l.local != nil {
		if err := l.local.Get(ctx, key, dest); err == nil {
			return nil
		} else if !errors.Is(err, ErrCacheMiss) {
			return err
		}
	}
	if l.shared == nil {
		return ErrCacheMiss
	}
	if err := l.shared.Get(ctx, key, dest); err != nil {
		return err
	}
	if l.local != nil {
		// backfill with a short TTL; the shared layer stays authoritative
		_ = l.local.Set(ctx, key, dest, time.Minute)
	}
	return nil
}

func (l *Layered) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if l.local != nil {
		if err := l.local.Set(ctx, key, value, ttl); err != nil {
			return err
		}
	}
	if l.shared != nil {
		return l.shared.Set(ctx, key, value, ttl)
	}
	return nil
}

func (l *Layered) Delete(ctx context.Context, key string) error {
	if l.local != nil {
		if err := l.local.Delete(ctx, key); err != nil {
			return err
		}
	}
	if l.shared != nil {
		return l.shared.Delete(ctx, key)
	}
	return nil
}

func (l *Layered) Close() error {
	if l.local != nil {
		_ = l.local.Close()
	}
	if l.shared != nil {
		return l.shared.Close()
	}
	return nil
}
