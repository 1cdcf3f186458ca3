package opool

import "github.com/opool/opool/internal/core"

// Sentinel errors for error inspection with errors.Is.
//
// These use the sentinel.Error const pattern instead of errors.New vars.
// sentinel.Error is a string type implementing error, allowing errors to be
// declared as const. This prevents accidental reassignment and enables
// compile-time immutability, while remaining compatible with errors.Is
// through Go's default == comparison on comparable types.
const (
	// ErrPoolClosed is returned by Borrow, Add, and Clear once Close has
	// been called.
	ErrPoolClosed = core.ErrPoolClosed

	// ErrExhausted is returned by Borrow when the pool has no usable
	// idle resource, cannot create a new one, and either has no wait
	// policy or the wait timed out. Use errors.As with an *ExhaustedError
	// to recover the last activation or validation failure observed, if
	// any.
	ErrExhausted = core.ErrExhausted

	// ErrInvariantViolation is returned by Return and Invalidate when the
	// resource was not on loan from this pool. Only detected when the
	// pool's tracking policy is TrackingReference or TrackingDebug.
	// KeyedPool's Return and Invalidate also return it, under any tracking
	// policy, for a key that has no pool.
	ErrInvariantViolation = core.ErrInvariantViolation

	// ErrCancelled is returned by Borrow when ctx is cancelled or its
	// deadline elapses while waiting for capacity.
	ErrCancelled = core.ErrCancelled
)

// ExhaustedError wraps ErrExhausted with the last activation or validation
// failure observed while Borrow searched the idle buffer for a usable resource, if
// any. errors.Is(err, ErrExhausted) reports true for an *ExhaustedError.
type ExhaustedError = core.ExhaustedError
