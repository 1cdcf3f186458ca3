package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Pool is the composite pool orchestrator: it combines an idleBuffer
// (Lender), an admission (Manager), and a tracker (Tracker) behind one
// mutex, plus a ResourceFactory that actually constructs and destroys
// resources. All exported operations acquire mu only for the bookkeeping
// steps; factory calls, which may block on I/O, always run with mu
// released.
//
// It is safe for concurrent use by multiple goroutines.
type Pool[R any] struct {
	mu     sync.Mutex
	closed bool

	factory ResourceFactory[R]
	idle    *idleBuffer[R]
	adm     *admission[R]
	trk     *tracker[R]

	validateOnReturn bool
}

// newPool assembles a Pool from already-validated configuration. Called
// from Build and, for each per-key pool, from KeyedPool.poolFor.
func newPool[R any](cfg Config, factory ResourceFactory[R]) *Pool[R] {
	soft := cfg.TrackingPolicy == TrackingReference || cfg.TrackingPolicy == TrackingDebug
	p := &Pool[R]{
		factory:          factory,
		idle:             newIdleBuffer[R](cfg.BorrowPolicy, soft, cfg.EvictIdleAfter, cfg.EvictInvalidEvery, cfg.MaxIdle),
		adm:              newAdmission[R](cfg.ExhaustionPolicy, cfg.LimitPolicy, cfg.MaxActive, cfg.MaxWait),
		trk:              newTracker[R](cfg.TrackingPolicy),
		validateOnReturn: cfg.ValidateOnReturn,
	}
	if cfg.EvictIdleAfter > 0 || cfg.EvictInvalidEvery > 0 {
		defaultScheduler().register(p)
	}
	return p
}

// Borrow returns a usable resource, preferring an idle one and falling back
// to creating a new one subject to the pool's exhaustion and limit
// policies. It blocks only when the limit policy is LimitWait and the
// active-resource cap has been reached; the block is bounded by both ctx
// and the configured MaxWait, whichever elapses first.
func (p *Pool[R]) Borrow(ctx context.Context) (R, error) {
	var zero R
	if err := ctx.Err(); err != nil {
		return zero, fmt.Errorf("opool: %w: %w", ErrCancelled, err)
	}

	var waitDeadline <-chan time.Time
	if p.adm.maxWait > 0 {
		timer := time.NewTimer(p.adm.maxWait)
		defer timer.Stop()
		waitDeadline = timer.C
	}

	for {
		r, found, idleErr := p.tryIdle(ctx)
		if found {
			p.trk.borrow(r)
			return r, nil
		}

		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return zero, ErrPoolClosed
		}
		active := p.trk.activeCount()

		switch {
		case p.adm.mayGrow() && !p.adm.atCapacity(active):
			p.mu.Unlock()
			start := time.Now()
			r, err := p.factory.Create(ctx)
			if err != nil {
				return zero, fmt.Errorf("opool: creating resource: %w", err)
			}
			p.adm.recordCreate(time.Since(start))
			p.trk.borrow(r)
			p.maybePrefill()
			return r, nil

		case p.adm.atCapacity(active) && p.adm.waitsOnLimit():
			ch := p.adm.capacitySignal()
			p.mu.Unlock()
			select {
			case <-ch:
				continue
			case <-ctx.Done():
				return zero, fmt.Errorf("opool: %w: %w", ErrCancelled, ctx.Err())
			case <-waitDeadline:
				return zero, &ExhaustedError{Cause: idleErr}
			}

		default:
			p.mu.Unlock()
			return zero, &ExhaustedError{Cause: idleErr}
		}
	}
}

// tryIdle attempts to hand back one usable idle resource, discarding and
// retrying past any that fail Activate or Validate. found is false when the
// idle buffer has nothing usable left; lastErr carries the most recent
// Activate or Validate failure seen, if any, for inclusion in an eventual
// ExhaustedError.
func (p *Pool[R]) tryIdle(ctx context.Context) (resource R, found bool, lastErr error) {
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			var zero R
			return zero, false, lastErr
		}
		p.idle.purgeDead()
		r, ok := p.idle.pop()
		p.mu.Unlock()
		if !ok {
			var zero R
			return zero, false, lastErr
		}

		start := time.Now()
		if err := p.factory.Activate(ctx, r); err != nil {
			lastErr = fmt.Errorf("activating idle resource: %w", err)
			p.destroyOne(r)
			continue
		}
		p.adm.recordActivate(time.Since(start))
		if !p.factory.Validate(ctx, r) {
			lastErr = fmt.Errorf("validating idle resource: resource failed validation")
			p.destroyOne(r)
			continue
		}
		return r, true, nil
	}
}

// maybePrefill kicks off a best-effort background Add when resource
// creation has been running significantly slower than activation, so the
// next Borrow is more likely to find something idle to activate instead of
// paying the creation cost inline.
func (p *Pool[R]) maybePrefill() {
	if !p.adm.creationIsExpensive() {
		return
	}
	if !p.adm.prefillInFlight.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer p.adm.prefillInFlight.Store(false)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := p.Add(ctx); err != nil {
			Logger().Debug("background prefill failed", "error", err)
		}
	}()
}

// Return gives a borrowed resource back to the pool. Returns
// ErrInvariantViolation if the tracking policy can tell the resource was
// not on loan from this pool (TrackingReference or TrackingDebug only;
// TrackingCounting and TrackingNull cannot detect this and always accept
// the return).
func (p *Pool[R]) Return(ctx context.Context, resource R) error {
	if ok := p.trk.release(resource); !ok {
		return ErrInvariantViolation
	}

	valid := true
	if p.validateOnReturn {
		valid = p.factory.Validate(ctx, resource)
	}
	if valid {
		if err := p.factory.Passivate(ctx, resource); err != nil {
			valid = false
		}
	}

	p.mu.Lock()
	closed := p.closed
	var accepted, hasOverflow bool
	var overflow R
	if !closed && valid {
		accepted = p.idle.push(resource, time.Now())
		overflow, hasOverflow = p.idle.popOverflow()
	}
	p.adm.notifyCapacityChanged()
	p.mu.Unlock()

	if closed || !valid || !accepted {
		p.destroyOne(resource)
	}
	if hasOverflow {
		p.destroyOne(overflow)
	}
	return nil
}

// Invalidate removes a borrowed resource from circulation instead of
// returning it to the idle buffer. Returns ErrInvariantViolation under the
// same conditions as Return.
func (p *Pool[R]) Invalidate(_ context.Context, resource R) error {
	if ok := p.trk.release(resource); !ok {
		return ErrInvariantViolation
	}

	p.mu.Lock()
	p.adm.notifyCapacityChanged()
	p.mu.Unlock()

	p.destroyOne(resource)
	return nil
}

// Add eagerly creates one resource and places it in the idle buffer. On a
// BorrowNull pool the idle buffer never accepts anything, so the newly
// created resource is destroyed immediately; Add still reports success
// since resource creation and passivation succeeded.
func (p *Pool[R]) Add(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.mu.Unlock()

	resource, err := p.factory.Create(ctx)
	if err != nil {
		return fmt.Errorf("opool: creating resource: %w", err)
	}
	if err := p.factory.Passivate(ctx, resource); err != nil {
		p.destroyOne(resource)
		return fmt.Errorf("opool: preparing resource for idle storage: %w", err)
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.destroyOne(resource)
		return ErrPoolClosed
	}
	accepted := p.idle.push(resource, time.Now())
	overflow, hasOverflow := p.idle.popOverflow()
	p.mu.Unlock()

	if !accepted {
		p.destroyOne(resource)
	}
	if hasOverflow {
		p.destroyOne(overflow)
	}
	return nil
}

// Clear destroys every currently idle resource, leaving active resources
// untouched. Destruction of the drained resources runs concurrently via
// errgroup.
func (p *Pool[R]) Clear(context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	drained := p.idle.drain()
	p.mu.Unlock()
	return p.destroyAll(drained)
}

// Close shuts the pool down: further Borrow, Add, and Clear calls return
// ErrPoolClosed, every idle resource is destroyed, and any goroutine
// blocked in Borrow's wait loop is woken (to observe p.closed and return
// ErrPoolClosed). Close is idempotent.
func (p *Pool[R]) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	drained := p.idle.drain()
	p.adm.notifyCapacityChanged()
	p.mu.Unlock()

	defaultScheduler().unregister(p)

	return p.destroyAll(drained)
}

func (p *Pool[R]) destroyAll(resources []R) error {
	g, _ := errgroup.WithContext(context.Background())
	for _, r := range resources {
		r := r
		g.Go(func() error {
			p.destroyOne(r)
			return nil
		})
	}
	return g.Wait()
}

// destroyOne destroys a resource that no caller is waiting on. Destroy
// errors are the factory's to log; Pool never surfaces them to a caller
// that has already moved on.
func (p *Pool[R]) destroyOne(resource R) {
	p.factory.Destroy(context.Background(), resource)
}

// NumActive reports the number of resources currently on loan, as tracked
// by the configured TrackingPolicy. Returns UnknownActiveCount for
// TrackingNull, which keeps no bookkeeping to report.
func (p *Pool[R]) NumActive() int {
	return p.trk.activeCount()
}

// NumIdle reports the number of resources currently idle and available to
// Borrow.
func (p *Pool[R]) NumIdle() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.idle.purgeDead()
	return p.idle.len()
}

// runEviction is called by the shared EvictionScheduler. It destroys idle
// resources that have exceeded their idle timeout and revalidates any due
// for a periodic invalid-check by running activate, validate, and passivate
// on each, destroying those that fail any step and requeueing those that
// pass all three.
func (p *Pool[R]) runEviction(ctx context.Context) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	now := time.Now()
	expired, recheck := p.idle.dueForEviction(now)
	p.mu.Unlock()

	for _, r := range expired {
		p.destroyOne(r)
	}
	for _, s := range recheck {
		v, ok := s.value()
		if !ok {
			continue
		}
		if !p.revalidate(ctx, v) {
			p.destroyOne(v)
			continue
		}
		p.mu.Lock()
		closed := p.closed
		if !closed {
			p.idle.requeue(s, now)
		}
		p.mu.Unlock()
		if closed {
			p.destroyOne(v)
		}
	}
}

// revalidate runs the activate → validate → passivate cycle required of a
// periodic invalid-check, reporting whether the resource survives all three
// steps. The resource is left passivated (idle-ready) on success.
func (p *Pool[R]) revalidate(ctx context.Context, resource R) bool {
	if err := p.factory.Activate(ctx, resource); err != nil {
		return false
	}
	if !p.factory.Validate(ctx, resource) {
		return false
	}
	if err := p.factory.Passivate(ctx, resource); err != nil {
		return false
	}
	return true
}
