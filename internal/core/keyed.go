package core

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// KeyedPool is the CompositeKeyedPool multiplexer: a map of per-key Pool
// instances, each built with a perKeyFactory adapter over one shared
// KeyedResourceFactory. There is no thread-local or other ambient
// "current key" state — every per-key Pool carries its key explicitly in
// its factory adapter, per the key-aware-factory redesign.
//
// Lock ordering: mu (the key-map lock) is always released before calling
// into any per-key Pool's methods. mu and a Pool's own mutex are never held
// at the same time by the same goroutine.
type KeyedPool[K comparable, R any] struct {
	mu      sync.Mutex
	closed  bool
	cfg     Config
	factory KeyedResourceFactory[K, R]
	pools   map[K]*Pool[R]
}

// BuildKeyed validates cfg and constructs an empty KeyedPool. Per-key Pool
// instances are created lazily, on first Borrow or Add for a given key.
func BuildKeyed[K comparable, R any](cfg Config, factory KeyedResourceFactory[K, R]) (*KeyedPool[K, R], error) {
	if factory == nil {
		panic("opool: factory must not be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &KeyedPool[K, R]{
		cfg:     cfg,
		factory: factory,
		pools:   make(map[K]*Pool[R]),
	}, nil
}

// poolFor returns the Pool for key, creating it on first use. Returns false
// if the keyed pool has been closed.
func (kp *KeyedPool[K, R]) poolFor(key K) (*Pool[R], bool) {
	kp.mu.Lock()
	defer kp.mu.Unlock()
	if kp.closed {
		return nil, false
	}
	p, ok := kp.pools[key]
	if !ok {
		p = newPool[R](kp.cfg, perKeyFactory[K, R]{key: key, factory: kp.factory})
		kp.pools[key] = p
	}
	return p, true
}

// existingPool returns the Pool for key without creating one.
func (kp *KeyedPool[K, R]) existingPool(key K) (*Pool[R], bool) {
	kp.mu.Lock()
	defer kp.mu.Unlock()
	p, ok := kp.pools[key]
	return p, ok
}

// snapshot returns every currently known per-key Pool.
func (kp *KeyedPool[K, R]) snapshot() []*Pool[R] {
	kp.mu.Lock()
	defer kp.mu.Unlock()
	out := make([]*Pool[R], 0, len(kp.pools))
	for _, p := range kp.pools {
		out = append(out, p)
	}
	return out
}

// Borrow returns a usable resource for key, creating that key's Pool on
// first use.
func (kp *KeyedPool[K, R]) Borrow(ctx context.Context, key K) (R, error) {
	p, ok := kp.poolFor(key)
	if !ok {
		var zero R
		return zero, ErrPoolClosed
	}
	return p.Borrow(ctx)
}

// Return gives a borrowed resource back to key's pool. Returns
// ErrInvariantViolation if key has no known pool.
func (kp *KeyedPool[K, R]) Return(ctx context.Context, key K, resource R) error {
	p, ok := kp.existingPool(key)
	if !ok {
		return ErrInvariantViolation
	}
	return p.Return(ctx, resource)
}

// Invalidate removes a borrowed resource for key from circulation. Returns
// ErrInvariantViolation if key has no known pool.
func (kp *KeyedPool[K, R]) Invalidate(ctx context.Context, key K, resource R) error {
	p, ok := kp.existingPool(key)
	if !ok {
		return ErrInvariantViolation
	}
	return p.Invalidate(ctx, resource)
}

// Add eagerly creates one resource for key, creating that key's Pool on
// first use.
func (kp *KeyedPool[K, R]) Add(ctx context.Context, key K) error {
	p, ok := kp.poolFor(key)
	if !ok {
		return ErrPoolClosed
	}
	return p.Add(ctx)
}

// Clear destroys every idle resource across every key.
func (kp *KeyedPool[K, R]) Clear(ctx context.Context) error {
	pools := kp.snapshot()
	g, _ := errgroup.WithContext(context.Background())
	for _, p := range pools {
		p := p
		g.Go(func() error { return p.Clear(ctx) })
	}
	return g.Wait()
}

// ClearKey destroys every idle resource for one key. A no-op if key has no
// known pool. If the key's pool ends up with no active and no idle
// resources, it is removed and closed, releasing its memory; a later
// Borrow or Add for the same key builds a fresh pool from scratch instead
// of reusing the cleared one.
func (kp *KeyedPool[K, R]) ClearKey(ctx context.Context, key K) error {
	p, ok := kp.existingPool(key)
	if !ok {
		return nil
	}
	if err := p.Clear(ctx); err != nil {
		return err
	}
	if p.NumActive() != 0 || p.NumIdle() != 0 {
		return nil
	}

	kp.mu.Lock()
	if kp.pools[key] == p {
		delete(kp.pools, key)
	}
	kp.mu.Unlock()

	return p.Close()
}

// Close shuts every per-key Pool down and prevents any new key from being
// introduced. Close is idempotent.
func (kp *KeyedPool[K, R]) Close() error {
	kp.mu.Lock()
	if kp.closed {
		kp.mu.Unlock()
		return nil
	}
	kp.closed = true
	pools := make([]*Pool[R], 0, len(kp.pools))
	for _, p := range kp.pools {
		pools = append(pools, p)
	}
	kp.mu.Unlock()

	g, _ := errgroup.WithContext(context.Background())
	for _, p := range pools {
		p := p
		g.Go(p.Close)
	}
	return g.Wait()
}

// NumActive reports the number of resources on loan across every key, or
// UnknownActiveCount if the configured TrackingPolicy is TrackingNull (in
// which case every per-key pool reports the same sentinel, since they all
// share one Config).
func (kp *KeyedPool[K, R]) NumActive() int {
	if kp.cfg.TrackingPolicy == TrackingNull {
		return UnknownActiveCount
	}
	total := 0
	for _, p := range kp.snapshot() {
		total += p.NumActive()
	}
	return total
}

// NumActiveFor reports the number of resources on loan for one key, or
// UnknownActiveCount for TrackingNull. 0 if key has no known pool.
func (kp *KeyedPool[K, R]) NumActiveFor(key K) int {
	p, ok := kp.existingPool(key)
	if !ok {
		return 0
	}
	return p.NumActive()
}

// NumIdle reports the number of idle resources across every key.
func (kp *KeyedPool[K, R]) NumIdle() int {
	total := 0
	for _, p := range kp.snapshot() {
		total += p.NumIdle()
	}
	return total
}

// NumIdleFor reports the number of idle resources for one key. 0 if key
// has no known pool.
func (kp *KeyedPool[K, R]) NumIdleFor(key K) int {
	p, ok := kp.existingPool(key)
	if !ok {
		return 0
	}
	return p.NumIdle()
}
