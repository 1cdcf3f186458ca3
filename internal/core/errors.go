package core

import (
	"fmt"

	"github.com/opool/opool/internal/sentinel"
)

// Sentinel errors returned by Pool and KeyedPool operations. Declared with
// sentinel.Error so they remain const and compare correctly through wrapped
// chains via errors.Is.
const (
	// ErrPoolClosed is returned by Borrow, Add, and Clear once Close has
	// been called. Return and Invalidate still accept resources that were
	// on loan, destroying them, and a repeated Close returns nil.
	ErrPoolClosed = sentinel.Error("opool: pool is closed")

	// ErrExhausted is returned by Borrow when the pool has no usable idle
	// resource and may not create one: either the exhaustion policy is
	// ExhaustionFail, or the active-resource limit is reached and the
	// limit policy is LimitFail. It is also returned when a LimitWait wait
	// exceeds MaxWait. Use errors.As to recover the wrapped cause, if any.
	ErrExhausted = sentinel.Error("opool: pool exhausted")

	// ErrInvariantViolation is returned when a caller passes a resource
	// to Return or Invalidate that the pool did not lend out, or passes
	// the same resource twice without an intervening Borrow.
	ErrInvariantViolation = sentinel.Error("opool: resource not on loan from this pool")

	// ErrCancelled is returned by Borrow when ctx is cancelled or its
	// deadline elapses while waiting for capacity. Distinct from
	// ErrExhausted: cancellation is the caller's doing, exhaustion is the
	// pool's.
	ErrCancelled = sentinel.Error("opool: borrow cancelled")
)

// ExhaustedError wraps ErrExhausted with the last activation or validation
// failure observed while the pool searched for a usable idle resource, if
// any. errors.Is(err, ErrExhausted) reports true for an *ExhaustedError.
type ExhaustedError struct {
	// Cause is the most recent Activate or Validate failure encountered
	// while draining the idle buffer looking for a usable resource. Nil
	// when the pool was exhausted without ever finding a bad candidate
	// (e.g., the idle buffer was empty and the active limit was already
	// reached).
	Cause error
}

func (e *ExhaustedError) Error() string {
	if e.Cause == nil {
		return string(ErrExhausted)
	}
	return fmt.Sprintf("%s: %s", ErrExhausted, e.Cause)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrExhausted, so that a caller can write
// errors.Is(err, core.ErrExhausted) without a type switch on *ExhaustedError.
func (e *ExhaustedError) Is(target error) bool {
	return target == ErrExhausted
}
