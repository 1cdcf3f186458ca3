package core

import (
	"sync"
	"sync/atomic"
	"time"
)

// admission is the Manager role: it decides whether Borrow may create a new
// resource when the idle buffer is empty, and whether a Borrow that would
// exceed the active-resource limit blocks or fails. It also tracks the
// relative cost of creation versus activation to decide when a background
// prefill is worthwhile.
//
// admission owns no mutex of its own for the admission decision itself —
// Pool's mutex guards maxActive accounting — but waitCh is read and swapped
// only under Pool's mutex too, so the only state requiring independent
// protection is the creation/activation timing average, which callers
// record without holding Pool's mutex (factory calls happen outside it).
type admission[R any] struct {
	exhaustion ExhaustionPolicy
	limit      LimitPolicy
	maxActive  int // 0 means unbounded
	maxWait    time.Duration

	// waitCh is closed and replaced every time capacity might have freed
	// up or the pool stops lending (a Return, Invalidate, or Close), waking every
	// goroutine blocked in Borrow's wait loop so each can recheck.
	waitCh chan struct{}

	timingMu     sync.Mutex
	avgCreate    time.Duration
	avgActivate  time.Duration
	haveCreate   bool
	haveActivate bool

	// prefillInFlight prevents more than one background prefill task
	// (triggered by maybePrefill in Pool.Borrow) from running at once.
	prefillInFlight atomic.Bool
}

func newAdmission[R any](exhaustion ExhaustionPolicy, limit LimitPolicy, maxActive int, maxWait time.Duration) *admission[R] {
	return &admission[R]{
		exhaustion: exhaustion,
		limit:      limit,
		maxActive:  maxActive,
		maxWait:    maxWait,
		waitCh:     make(chan struct{}),
	}
}

// atCapacity reports whether active resources already meet the configured
// limit. Call under Pool's mutex.
func (a *admission[R]) atCapacity(active int) bool {
	return a.maxActive > 0 && active >= a.maxActive
}

// mayGrow reports whether the exhaustion policy allows creating a new
// resource when the idle buffer has nothing usable.
func (a *admission[R]) mayGrow() bool {
	return a.exhaustion == ExhaustionGrow
}

// waitsOnLimit reports whether Borrow should block instead of failing
// immediately when atCapacity is true.
func (a *admission[R]) waitsOnLimit() bool {
	return a.limit == LimitWait
}

// capacitySignal returns the channel that closes the next time capacity
// might have freed up. Call under Pool's mutex, then unlock before
// selecting on the returned channel.
func (a *admission[R]) capacitySignal() <-chan struct{} {
	return a.waitCh
}

// notifyCapacityChanged wakes every goroutine waiting in Borrow's wait
// loop. Call under Pool's mutex whenever active count decreases.
func (a *admission[R]) notifyCapacityChanged() {
	close(a.waitCh)
	a.waitCh = make(chan struct{})
}

// recordCreate folds a Create latency sample into the running average using
// the exponential moving average avg' = (9*avg + sample) / 10.
func (a *admission[R]) recordCreate(d time.Duration) {
	a.timingMu.Lock()
	defer a.timingMu.Unlock()
	if !a.haveCreate {
		a.avgCreate, a.haveCreate = d, true
		return
	}
	a.avgCreate = (9*a.avgCreate + d) / 10
}

// recordActivate folds an Activate latency sample into its running average.
func (a *admission[R]) recordActivate(d time.Duration) {
	a.timingMu.Lock()
	defer a.timingMu.Unlock()
	if !a.haveActivate {
		a.avgActivate, a.haveActivate = d, true
		return
	}
	a.avgActivate = (9*a.avgActivate + d) / 10
}

// creationIsExpensive reports whether Create has, on average, been
// significantly slower than Activate, making a background prefill of one
// idle resource worthwhile so the next Borrow can activate instead of
// create. Requires at least one sample of each to avoid acting on an
// incomplete picture: creation is expensive when activation-avg > 0 and
// 3 × activation-avg < creation-avg.
func (a *admission[R]) creationIsExpensive() bool {
	a.timingMu.Lock()
	defer a.timingMu.Unlock()
	if !a.haveCreate || !a.haveActivate {
		return false
	}
	return a.avgActivate > 0 && 3*a.avgActivate < a.avgCreate
}
