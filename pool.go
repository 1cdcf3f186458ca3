package opool

import (
	"context"

	"github.com/opool/opool/internal/core"
)

// Pool lends resources of type R, built from a ResourceFactory and a set of
// Options. It wraps an internal/core.Pool so that internal/core's types
// never leak into the public API.
//
// It is safe for concurrent use by multiple goroutines.
type Pool[R any] struct {
	inner *core.Pool[R]
}

// New builds a Pool from factory and opts. Panics if factory is nil.
// Returns an error if the assembled configuration is internally
// inconsistent (see Option for which combinations are rejected).
func New[R any](factory ResourceFactory[R], opts ...Option) (*Pool[R], error) {
	c := newConfig()
	for _, opt := range opts {
		opt(&c)
	}
	inner, err := core.Build[R](c.toCoreConfig(), factory)
	if err != nil {
		return nil, err
	}
	return &Pool[R]{inner: inner}, nil
}

// Borrow returns a usable resource, creating or waiting for one per the
// pool's configured policies. See Option for the knobs that control this.
func (p *Pool[R]) Borrow(ctx context.Context) (R, error) {
	return p.inner.Borrow(ctx)
}

// Return gives a borrowed resource back to the pool.
func (p *Pool[R]) Return(ctx context.Context, resource R) error {
	return p.inner.Return(ctx, resource)
}

// Invalidate removes a borrowed resource from circulation instead of
// returning it to the idle buffer.
func (p *Pool[R]) Invalidate(ctx context.Context, resource R) error {
	return p.inner.Invalidate(ctx, resource)
}

// Add eagerly creates one resource and places it in the idle buffer.
func (p *Pool[R]) Add(ctx context.Context) error {
	return p.inner.Add(ctx)
}

// Clear destroys every currently idle resource, leaving active resources
// untouched.
func (p *Pool[R]) Clear(ctx context.Context) error {
	return p.inner.Clear(ctx)
}

// Close shuts the pool down. Close is idempotent.
func (p *Pool[R]) Close() error {
	return p.inner.Close()
}

// NumActive reports the number of resources currently on loan, or
// UnknownActiveCount if TrackingPolicy is TrackingNull.
func (p *Pool[R]) NumActive() int {
	return p.inner.NumActive()
}

// NumIdle reports the number of resources currently idle.
func (p *Pool[R]) NumIdle() int {
	return p.inner.NumIdle()
}
