package opool

import (
	"context"

	"github.com/opool/opool/internal/core"
)

// KeyedPool multiplexes many independent pools, one per key, behind a
// single KeyedResourceFactory and configuration. Each key's pool is created
// lazily on first use.
//
// It is safe for concurrent use by multiple goroutines.
type KeyedPool[K comparable, R any] struct {
	inner *core.KeyedPool[K, R]
}

// NewKeyed builds a KeyedPool from factory and opts. Panics if factory is
// nil. Returns an error if the assembled configuration is internally
// inconsistent (see Option for which combinations are rejected).
func NewKeyed[K comparable, R any](factory KeyedResourceFactory[K, R], opts ...Option) (*KeyedPool[K, R], error) {
	c := newConfig()
	for _, opt := range opts {
		opt(&c)
	}
	inner, err := core.BuildKeyed[K, R](c.toCoreConfig(), factory)
	if err != nil {
		return nil, err
	}
	return &KeyedPool[K, R]{inner: inner}, nil
}

// Borrow returns a usable resource for key, creating that key's pool on
// first use.
func (kp *KeyedPool[K, R]) Borrow(ctx context.Context, key K) (R, error) {
	return kp.inner.Borrow(ctx, key)
}

// Return gives a borrowed resource back to key's pool.
func (kp *KeyedPool[K, R]) Return(ctx context.Context, key K, resource R) error {
	return kp.inner.Return(ctx, key, resource)
}

// Invalidate removes a borrowed resource for key from circulation.
func (kp *KeyedPool[K, R]) Invalidate(ctx context.Context, key K, resource R) error {
	return kp.inner.Invalidate(ctx, key, resource)
}

// Add eagerly creates one resource for key, creating that key's pool on
// first use.
func (kp *KeyedPool[K, R]) Add(ctx context.Context, key K) error {
	return kp.inner.Add(ctx, key)
}

// Clear destroys every idle resource across every key.
func (kp *KeyedPool[K, R]) Clear(ctx context.Context) error {
	return kp.inner.Clear(ctx)
}

// ClearKey destroys every idle resource for one key. If the key ends up
// with no active and no idle resources, its per-key pool is removed and
// closed, releasing its memory; a later Borrow or Add for the same key
// builds a fresh one.
func (kp *KeyedPool[K, R]) ClearKey(ctx context.Context, key K) error {
	return kp.inner.ClearKey(ctx, key)
}

// Close shuts every per-key pool down. Close is idempotent.
func (kp *KeyedPool[K, R]) Close() error {
	return kp.inner.Close()
}

// NumActive reports the number of resources on loan across every key, or
// UnknownActiveCount if TrackingPolicy is TrackingNull.
func (kp *KeyedPool[K, R]) NumActive() int {
	return kp.inner.NumActive()
}

// NumActiveFor reports the number of resources on loan for one key, or
// UnknownActiveCount if TrackingPolicy is TrackingNull. 0 if key has no
// known pool.
func (kp *KeyedPool[K, R]) NumActiveFor(key K) int {
	return kp.inner.NumActiveFor(key)
}

// NumIdle reports the number of idle resources across every key.
func (kp *KeyedPool[K, R]) NumIdle() int {
	return kp.inner.NumIdle()
}

// NumIdleFor reports the number of idle resources for one key.
func (kp *KeyedPool[K, R]) NumIdleFor(key K) int {
	return kp.inner.NumIdleFor(key)
}
