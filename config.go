package opool

import (
	"fmt"
	"time"

	"github.com/opool/opool/internal/core"
)

// BorrowPolicy selects the idle buffer's storage discipline.
type BorrowPolicy = core.BorrowPolicy

const (
	BorrowFIFO = core.BorrowFIFO
	BorrowLIFO = core.BorrowLIFO
	BorrowNull = core.BorrowNull
)

// ExhaustionPolicy selects what happens when Borrow finds no usable idle
// resource and the active-resource limit has not been reached.
type ExhaustionPolicy = core.ExhaustionPolicy

const (
	ExhaustionGrow = core.ExhaustionGrow
	ExhaustionFail = core.ExhaustionFail
)

// LimitPolicy selects what happens when Borrow is called while the pool
// already has MaxActive resources on loan.
type LimitPolicy = core.LimitPolicy

const (
	LimitFail = core.LimitFail
	LimitWait = core.LimitWait
)

// TrackingPolicy selects how the pool accounts for resources on loan.
type TrackingPolicy = core.TrackingPolicy

const (
	TrackingNull      = core.TrackingNull
	TrackingCounting  = core.TrackingCounting
	TrackingReference = core.TrackingReference
	TrackingDebug     = core.TrackingDebug
)

// UnknownActiveCount is returned by NumActive and NumActiveFor when the
// pool's TrackingPolicy is TrackingNull, which keeps no bookkeeping and so
// has no active count to report. Negative so it can never be mistaken for
// a real count, which is always >= 0.
const UnknownActiveCount = core.UnknownActiveCount

// config holds the options accumulated by New/NewKeyed before they are
// validated and turned into a core.Config. This unexported type keeps
// internal/core out of the public API signature while avoiding
// field-by-field duplication.
type config struct {
	core.Config
}

func newConfig() config {
	return config{core.Config{
		BorrowPolicy:      DefaultBorrowPolicy,
		ExhaustionPolicy:  DefaultExhaustionPolicy,
		MaxIdle:           DefaultMaxIdle,
		MaxActive:         DefaultMaxActive,
		LimitPolicy:       DefaultLimitPolicy,
		MaxWait:           DefaultMaxWait,
		TrackingPolicy:    DefaultTrackingPolicy,
		ValidateOnReturn:  DefaultValidateOnReturn,
		EvictIdleAfter:    DefaultEvictIdleAfter,
		EvictInvalidEvery: DefaultEvictInvalidEvery,
	}}
}

func (c config) toCoreConfig() core.Config {
	return c.Config
}

// requireNonNegative panics if v < 0 with a descriptive message.
func requireNonNegative[T int | time.Duration](name string, v T) {
	if v < 0 {
		panic(fmt.Sprintf("opool: %s must not be negative, got %v", name, v))
	}
}

// Option configures a Pool or KeyedPool during construction via New or
// NewKeyed. Each With* function returns an Option that sets a specific
// field.
//
// Some With* functions panic on invalid input (negative sizes or
// durations). These panics are intentional: option values are typically
// compile-time constants or package-level variables, so an invalid value
// indicates a programmer error rather than a runtime condition. The
// pattern mirrors [regexp.MustCompile] — fail fast during construction
// instead of returning errors that would be universally fatal anyway.
//
// Combination-level misconfiguration (e.g. ExhaustionFail with
// BorrowNull) cannot be checked by an individual Option, since it depends
// on the whole assembled configuration; New and NewKeyed return an error
// for those instead of panicking.
type Option func(*config)

// WithBorrowPolicy sets the idle buffer's storage discipline.
// Default: DefaultBorrowPolicy.
func WithBorrowPolicy(p BorrowPolicy) Option {
	return func(c *config) {
		c.BorrowPolicy = p
	}
}

// WithExhaustionPolicy sets what happens when Borrow finds no usable idle
// resource. Default: DefaultExhaustionPolicy.
func WithExhaustionPolicy(p ExhaustionPolicy) Option {
	return func(c *config) {
		c.ExhaustionPolicy = p
	}
}

// WithMaxIdle sets the maximum number of idle resources kept around for
// reuse. 0 means the idle buffer never retains anything (every Return
// destroys its resource immediately); negative means unbounded.
// Default: DefaultMaxIdle.
func WithMaxIdle(n int) Option {
	return func(c *config) {
		c.MaxIdle = n
	}
}

// WithMaxActive sets the maximum number of resources on loan at once. 0
// means unlimited. Default: DefaultMaxActive.
//
// Panics if n < 0.
func WithMaxActive(n int) Option {
	requireNonNegative("max active", n)
	return func(c *config) {
		c.MaxActive = n
	}
}

// WithLimitPolicy sets what happens when Borrow is called at the active
// limit. Default: DefaultLimitPolicy.
func WithLimitPolicy(p LimitPolicy) Option {
	return func(c *config) {
		c.LimitPolicy = p
	}
}

// WithMaxWait bounds how long Borrow blocks waiting for capacity when
// LimitPolicy is LimitWait. 0 means wait indefinitely (still subject to
// ctx cancellation). Default: DefaultMaxWait.
//
// Panics if d < 0.
func WithMaxWait(d time.Duration) Option {
	requireNonNegative("max wait", d)
	return func(c *config) {
		c.MaxWait = d
	}
}

// WithTrackingPolicy sets how the pool accounts for resources on loan.
// Default: DefaultTrackingPolicy.
func WithTrackingPolicy(p TrackingPolicy) Option {
	return func(c *config) {
		c.TrackingPolicy = p
	}
}

// WithValidateOnReturn enables validating a resource when it comes back
// from a borrower, destroying it instead of returning it to the idle
// buffer if validation fails. Default: DefaultValidateOnReturn.
func WithValidateOnReturn(validate bool) Option {
	return func(c *config) {
		c.ValidateOnReturn = validate
	}
}

// WithEvictIdleAfter destroys idle resources that have not been borrowed
// within d. 0 disables idle-timeout eviction. Default: disabled.
//
// Panics if d < 0.
func WithEvictIdleAfter(d time.Duration) Option {
	requireNonNegative("evict idle after", d)
	return func(c *config) {
		c.EvictIdleAfter = d
	}
}

// WithEvictInvalidEvery revalidates each idle resource once d has passed
// since it was last validated, destroying it if validation fails. 0
// disables periodic revalidation. Default: disabled.
//
// Panics if d < 0.
func WithEvictInvalidEvery(d time.Duration) Option {
	requireNonNegative("evict invalid every", d)
	return func(c *config) {
		c.EvictInvalidEvery = d
	}
}
