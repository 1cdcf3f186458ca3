package core

import (
	"errors"
	"fmt"
	"time"
)

// BorrowPolicy selects the idle buffer's storage discipline.
type BorrowPolicy int

const (
	// BorrowFIFO returns the longest-idle resource first.
	BorrowFIFO BorrowPolicy = iota
	// BorrowLIFO returns the most-recently-idled resource first, keeping
	// a working set warm under bursty load.
	BorrowLIFO
	// BorrowNull disables idle storage entirely: every Return destroys
	// the resource instead of keeping it, and every Borrow must create a
	// new one.
	BorrowNull
)

func (p BorrowPolicy) String() string {
	switch p {
	case BorrowFIFO:
		return "FIFO"
	case BorrowLIFO:
		return "LIFO"
	case BorrowNull:
		return "Null"
	default:
		return fmt.Sprintf("BorrowPolicy(%d)", int(p))
	}
}

func (p BorrowPolicy) isValid() bool {
	return p == BorrowFIFO || p == BorrowLIFO || p == BorrowNull
}

// ExhaustionPolicy selects what happens when Borrow finds no usable idle
// resource and the active-resource limit (if any) has not been reached.
type ExhaustionPolicy int

const (
	// ExhaustionGrow creates a new resource via the factory.
	ExhaustionGrow ExhaustionPolicy = iota
	// ExhaustionFail returns ErrExhausted instead of creating a new
	// resource, even when MaxActive has not been reached. Combined with
	// BorrowNull or MaxIdle == 0 this makes the pool permanently
	// exhausted, so Build rejects that combination.
	ExhaustionFail
)

func (p ExhaustionPolicy) isValid() bool {
	return p == ExhaustionGrow || p == ExhaustionFail
}

// LimitPolicy selects what happens when Borrow is called while the pool
// already has MaxActive resources on loan.
type LimitPolicy int

const (
	// LimitFail returns ErrExhausted immediately.
	LimitFail LimitPolicy = iota
	// LimitWait blocks the caller (bounded by MaxWait and the caller's
	// context) until a resource is returned or invalidated.
	LimitWait
)

func (p LimitPolicy) isValid() bool {
	return p == LimitFail || p == LimitWait
}

// TrackingPolicy selects how the pool accounts for resources on loan.
type TrackingPolicy int

const (
	// TrackingNull performs no bookkeeping at all: NumActive always
	// reports UnknownActiveCount and no active-resource limit can be
	// enforced.
	TrackingNull TrackingPolicy = iota
	// TrackingCounting maintains an active count only.
	TrackingCounting
	// TrackingReference additionally detects resources that were never
	// returned or invalidated and became unreachable, via a finalizer
	// attached at Borrow time. Only effective for pointer-shaped
	// resources; falls back to TrackingCounting behavior otherwise.
	TrackingReference
	// TrackingDebug behaves like TrackingReference but also captures and
	// logs the borrowing goroutine's stack trace when a leak is
	// detected.
	TrackingDebug
)

func (p TrackingPolicy) isValid() bool {
	switch p {
	case TrackingNull, TrackingCounting, TrackingReference, TrackingDebug:
		return true
	default:
		return false
	}
}

// tracksActiveCount reports whether this policy can back an active-count
// limit (MaxActive > 0).
func (p TrackingPolicy) tracksActiveCount() bool {
	return p != TrackingNull
}

// Config is the validated, immutable configuration record assembled by
// Build. Every field corresponds to one knob in the pool's external
// configuration surface; Validate rejects combinations that would leave the
// pool unable to ever satisfy a Borrow.
type Config struct {
	BorrowPolicy     BorrowPolicy
	ExhaustionPolicy ExhaustionPolicy

	// MaxIdle caps the number of idle resources kept around for reuse.
	// Negative means unbounded; 0 means a resource is never buffered idle
	// (every return is destroyed immediately); positive is the cap.
	MaxIdle   int
	MaxActive int

	LimitPolicy       LimitPolicy
	MaxWait           time.Duration
	TrackingPolicy    TrackingPolicy
	ValidateOnReturn  bool
	EvictIdleAfter    time.Duration
	EvictInvalidEvery time.Duration
}

// Validate checks every Config invariant and returns an error describing
// every violation found, joined with errors.Join so a caller can fix every
// problem in one pass instead of one error at a time.
func (c Config) Validate() error {
	var errs []error

	if !c.BorrowPolicy.isValid() {
		errs = append(errs, fmt.Errorf("invalid borrow policy: %v", c.BorrowPolicy))
	}
	if !c.ExhaustionPolicy.isValid() {
		errs = append(errs, fmt.Errorf("invalid exhaustion policy: %v", c.ExhaustionPolicy))
	}
	if !c.LimitPolicy.isValid() {
		errs = append(errs, fmt.Errorf("invalid limit policy: %v", c.LimitPolicy))
	}
	if !c.TrackingPolicy.isValid() {
		errs = append(errs, fmt.Errorf("invalid tracking policy: %v", c.TrackingPolicy))
	}
	if c.MaxActive < 0 {
		errs = append(errs, fmt.Errorf("max active must not be negative, got %d", c.MaxActive))
	}
	if c.LimitPolicy == LimitWait && c.MaxWait < 0 {
		errs = append(errs, fmt.Errorf("max wait must not be negative, got %s", c.MaxWait))
	}
	if c.EvictIdleAfter < 0 {
		errs = append(errs, fmt.Errorf("evict idle after must not be negative, got %s", c.EvictIdleAfter))
	}
	if c.EvictInvalidEvery < 0 {
		errs = append(errs, fmt.Errorf("evict invalid every must not be negative, got %s", c.EvictInvalidEvery))
	}

	// A pool that can never hold an idle resource (BorrowNull, or MaxIdle
	// == 0) and never grows past what it can lend (ExhaustionFail) can
	// never satisfy more than MaxActive == 0 borrows: the first Borrow
	// after the active set drains to zero would exhaust permanently.
	if c.ExhaustionPolicy == ExhaustionFail {
		if c.BorrowPolicy == BorrowNull {
			errs = append(errs, errors.New("exhaustion policy Fail is incompatible with borrow policy Null: no idle resource could ever be lent"))
		} else if c.MaxIdle == 0 {
			errs = append(errs, errors.New("exhaustion policy Fail is incompatible with max idle of 0: no idle resource could ever be lent"))
		}
	}

	// An active-resource cap requires the tracker to actually count
	// active resources.
	if c.MaxActive > 0 && !c.TrackingPolicy.tracksActiveCount() {
		errs = append(errs, errors.New("max active > 0 requires a tracking policy other than Null"))
	}

	return errors.Join(errs...)
}
