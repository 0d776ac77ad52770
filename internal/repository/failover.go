package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"labcare/internal/domain"

	"github.com/rs/zerolog"
)

const failoverRetryInterval = time.Minute

// FailoverStore serves from primary and switches to fallback after the first
// primary error. Every value read from or written to primary is mirrored into
// fallback, so fallback always holds the current collections. Keys written
// while degraded are copied back to primary before it is used again.
type FailoverStore struct {
	primary   domain.KeyValueStore
	fallback  domain.KeyValueStore
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
	now       func() time.Time

	mu    sync.Mutex
	dirty map[string]struct{}
}

func NewFailoverStore(primary, fallback domain.KeyValueStore, logger *zerolog.Logger) *FailoverStore {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &FailoverStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
		dirty:    make(map[string]struct{}),
	}
}

// Degraded reports whether requests are currently served by the fallback.
func (r *FailoverStore) Degraded() bool {
	return r.isDown.Load()
}

func (r *FailoverStore) markDown(err error) {
	if !r.isDown.Swap(true) {
		r.logger.Error().Err(err).Msg("Primary store failed, falling back to memory")
	}
	r.lastCheck.Store(r.now().UnixNano())
}

func (r *FailoverStore) shouldRetryPrimary() bool {
	last := time.Unix(0, r.lastCheck.Load())
	return r.now().Sub(last) > failoverRetryInterval
}

// maybeRecover copies keys written during the outage back to primary and
// leaves degraded mode only when all of them made it.
func (r *FailoverStore) maybeRecover(ctx context.Context) {
	if !r.isDown.Load() || !r.shouldRetryPrimary() {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.isDown.Load() {
		return
	}

	for key := range r.dirty {
		val, found, err := r.fallback.Get(ctx, key)
		if err == nil {
			if found {
				err = r.primary.Set(ctx, key, val)
			} else {
				err = r.primary.Delete(ctx, key)
			}
		}
		if err != nil {
			r.lastCheck.Store(r.now().UnixNano())
			r.logger.Warn().Err(err).Str("key", key).Msg("Primary store still unavailable")
			return
		}
		delete(r.dirty, key)
	}

	r.isDown.Store(false)
	r.logger.Info().Msg("Primary store recovered")
}

// mirror keeps fallback in step with a value primary just confirmed.
func (r *FailoverStore) mirror(ctx context.Context, key, value string, found bool) {
	var err error
	if found {
		err = r.fallback.Set(ctx, key, value)
	} else {
		err = r.fallback.Delete(ctx, key)
	}
	if err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("Failed to mirror value into fallback")
	}
}

// writeDegraded applies a write to fallback and remembers the key for recovery.
func (r *FailoverStore) writeDegraded(key string, write func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := write(); err != nil {
		return err
	}
	r.dirty[key] = struct{}{}
	return nil
}

func (r *FailoverStore) Get(ctx context.Context, key string) (string, bool, error) {
	r.maybeRecover(ctx)

	if !r.isDown.Load() {
		val, found, err := r.primary.Get(ctx, key)
		if err == nil {
			r.mirror(ctx, key, val, found)
			return val, found, nil
		}
		r.markDown(err)
	}

	return r.fallback.Get(ctx, key)
}

func (r *FailoverStore) Set(ctx context.Context, key, value string) error {
	r.maybeRecover(ctx)

	if !r.isDown.Load() {
		err := r.primary.Set(ctx, key, value)
		if err == nil {
			r.mirror(ctx, key, value, true)
			return nil
		}
		r.markDown(err)
	}

	return r.writeDegraded(key, func() error { return r.fallback.Set(ctx, key, value) })
}

func (r *FailoverStore) Delete(ctx context.Context, key string) error {
	r.maybeRecover(ctx)

	if !r.isDown.Load() {
		err := r.primary.Delete(ctx, key)
		if err == nil {
			r.mirror(ctx, key, "", false)
			return nil
		}
		r.markDown(err)
	}

	return r.writeDegraded(key, func() error { return r.fallback.Delete(ctx, key) })
}
