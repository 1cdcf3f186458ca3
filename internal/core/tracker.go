package core

import (
	"reflect"
	"runtime"
	"runtime/debug"
	"sync"
)

// UnknownActiveCount is returned by activeCount (and, through it,
// Pool.NumActive) for TrackingNull, which keeps no bookkeeping and so has
// no count to report. Negative so it can never be mistaken for a real
// active count, which is always >= 0.
const UnknownActiveCount = -1

// trackEntry records what a tracker needs to remember about one active
// resource between Borrow and Return/Invalidate.
type trackEntry struct {
	stack string // captured at borrow time; only populated for TrackingDebug
}

// lostReport is queued by a finalizer when it fires for a resource that was
// never returned or invalidated. Finalizers run on an arbitrary goroutine at
// an arbitrary time chosen by the garbage collector, so the queue has its
// own mutex independent of Pool's.
type lostReport struct {
	key   uintptr
	stack string
}

// tracker is the Tracker role: it accounts for resources on loan and,
// for TrackingReference and TrackingDebug, detects resources a borrower
// dropped without calling Return or Invalidate.
//
// Identity for Reference/Debug tracking is the resource's pointer address,
// obtained via reflection — the pool has no other caller-independent way to
// name a value of an opaque generic type R, and spec.md explicitly allows
// "a stable identifier assigned at borrow time" that does not rely on
// user-defined equality. This only works for pointer-shaped R; for other
// shapes both policies degrade to TrackingCounting behavior.
type tracker[R any] struct {
	policy TrackingPolicy

	mu      sync.Mutex
	active  map[uintptr]*trackEntry
	count   int // active count for every policy except TrackingNull

	lostMu sync.Mutex
	lost   []lostReport
}

func newTracker[R any](policy TrackingPolicy) *tracker[R] {
	t := &tracker[R]{policy: policy}
	if policy == TrackingReference || policy == TrackingDebug {
		t.active = make(map[uintptr]*trackEntry)
	}
	return t
}

// identity returns the resource's pointer address and whether it could be
// determined (i.e., the resource is pointer-shaped).
func identity[R any](resource R) (uintptr, bool) {
	v := reflect.ValueOf(any(resource))
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return 0, false
	}
	return v.Pointer(), true
}

// borrow records resource as active. Called without Pool's mutex (the
// tracker has its own), immediately before Borrow returns the resource to
// the caller.
func (t *tracker[R]) borrow(resource R) {
	if t.policy == TrackingNull {
		return
	}
	t.sweepLost()

	key, ok := identity(resource)
	if t.policy == TrackingCounting || !ok {
		t.mu.Lock()
		t.count++
		t.mu.Unlock()
		return
	}

	entry := &trackEntry{}
	if t.policy == TrackingDebug {
		entry.stack = string(debug.Stack())
	}
	t.mu.Lock()
	t.active[key] = entry
	t.count++
	t.mu.Unlock()

	runtime.SetFinalizer(any(resource), func(obj any) {
		t.lostMu.Lock()
		t.lost = append(t.lost, lostReport{key: key, stack: entry.stack})
		t.lostMu.Unlock()
	})
}

// release removes resource from the active set, canceling its finalizer if
// one was attached. Called for both Return and Invalidate — the difference
// between a clean return and an invalidation is not the tracker's concern.
//
// The returned bool reports whether the resource was recognized as on loan.
// TrackingCounting and TrackingNull have no per-resource bookkeeping to
// check against, so they always report true; only TrackingReference and
// TrackingDebug can detect that a caller handed back something this tracker
// never borrowed out.
func (t *tracker[R]) release(resource R) bool {
	if t.policy == TrackingNull {
		return true
	}
	t.sweepLost()

	key, ok := identity(resource)
	if t.policy == TrackingCounting || !ok {
		t.mu.Lock()
		if t.count > 0 {
			t.count--
		}
		t.mu.Unlock()
		return true
	}

	t.mu.Lock()
	if _, tracked := t.active[key]; !tracked {
		t.mu.Unlock()
		return false
	}
	delete(t.active, key)
	if t.count > 0 {
		t.count--
	}
	t.mu.Unlock()
	runtime.SetFinalizer(any(resource), nil)
	return true
}

// activeCount returns the number of resources currently believed to be
// active, or UnknownActiveCount for TrackingNull.
func (t *tracker[R]) activeCount() int {
	if t.policy == TrackingNull {
		return UnknownActiveCount
	}
	t.sweepLost()
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

// sweepLost drains finalizer reports queued since the last sweep, logging
// each as a leaked resource and correcting the active count. It is called
// at the start of borrow, release, and activeCount, per the "swept on every
// operation" design used throughout this package instead of a dedicated
// background goroutine.
func (t *tracker[R]) sweepLost() {
	if t.policy != TrackingReference && t.policy != TrackingDebug {
		return
	}
	t.lostMu.Lock()
	if len(t.lost) == 0 {
		t.lostMu.Unlock()
		return
	}
	reports := t.lost
	t.lost = nil
	t.lostMu.Unlock()

	t.mu.Lock()
	for _, r := range reports {
		if _, stillTracked := t.active[r.key]; !stillTracked {
			// Already released through the normal path; the finalizer
			// fired on a stale interface copy after release cleared it.
			continue
		}
		delete(t.active, r.key)
		if t.count > 0 {
			t.count--
		}
		if r.stack != "" {
			Logger().Warn("pooled resource leaked: never returned or invalidated, borrowed at", "stack", r.stack)
		} else {
			Logger().Warn("pooled resource leaked: never returned or invalidated")
		}
	}
	t.mu.Unlock()
}
