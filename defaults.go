package opool

import "time"

// Default configuration values applied by New and NewKeyed when no
// corresponding Option is given. These constants are exported so callers
// can reference the defaults when building configurations relative to
// them (e.g. 2 * DefaultMaxWait).
const (
	// DefaultBorrowPolicy returns the most-recently-idled resource first,
	// keeping a working set warm under bursty load.
	DefaultBorrowPolicy = BorrowLIFO

	// DefaultExhaustionPolicy creates a new resource when the idle
	// buffer is empty, up to MaxActive.
	DefaultExhaustionPolicy = ExhaustionGrow

	// DefaultMaxIdle is the maximum number of idle resources kept around
	// for reuse. Returning a resource beyond this limit destroys the
	// least-recently-idled one instead of keeping it.
	DefaultMaxIdle = 8

	// DefaultMaxActive is the maximum number of resources on loan at
	// once. 0 means unlimited.
	DefaultMaxActive = 0

	// DefaultLimitPolicy blocks Borrow when the active limit has been
	// reached, rather than failing immediately. Has no effect when
	// MaxActive is 0.
	DefaultLimitPolicy = LimitWait

	// DefaultMaxWait bounds how long Borrow blocks waiting for capacity
	// when LimitPolicy is LimitWait. 0 means wait indefinitely (still
	// subject to ctx cancellation).
	DefaultMaxWait = 30 * time.Second

	// DefaultTrackingPolicy counts active resources without per-resource
	// leak detection.
	DefaultTrackingPolicy = TrackingCounting

	// DefaultValidateOnReturn does not validate a resource when it comes
	// back from a borrower.
	DefaultValidateOnReturn = false

	// DefaultEvictIdleAfter disables idle-timeout eviction.
	DefaultEvictIdleAfter = 0

	// DefaultEvictInvalidEvery disables periodic revalidation of idle
	// resources.
	DefaultEvictInvalidEvery = 0
)
