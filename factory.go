package opool

import "github.com/opool/opool/internal/core"

// ResourceFactory creates, destroys, and validates the resources managed by
// a Pool. Implementations must be safe for concurrent use: Pool may invoke
// any method from multiple goroutines at once.
type ResourceFactory[R any] = core.ResourceFactory[R]

// KeyedResourceFactory is the keyed analogue of ResourceFactory: every
// callback additionally receives the key the resource belongs to.
type KeyedResourceFactory[K comparable, R any] = core.KeyedResourceFactory[K, R]
