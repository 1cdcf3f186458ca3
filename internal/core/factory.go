package core

import "context"

// ResourceFactory creates, destroys, and validates the resources managed by
// a Pool. Implementations must be safe for concurrent use: Pool may invoke
// any method from multiple goroutines at once.
type ResourceFactory[R any] interface {
	// Create constructs a new resource. Any error fails the Borrow that
	// triggered the creation and propagates to the caller wrapped with
	// additional context.
	Create(ctx context.Context) (R, error)

	// Destroy releases a resource that will never be used again. It has
	// no error result: any failure is the implementation's to handle or
	// log, since there is no caller left to report it to.
	Destroy(ctx context.Context, resource R)

	// Validate reports whether resource is still usable. Called after
	// Activate before handing an idle resource to a borrower (a false
	// result destroys it and the search continues), during periodic
	// revalidation of idle resources, and, if ValidateOnReturn is set,
	// when a resource comes back from a borrower.
	Validate(ctx context.Context, resource R) bool

	// Activate prepares an idle resource for use by a borrower. Returning
	// an error causes the resource to be destroyed and the search for a
	// usable idle resource to continue.
	Activate(ctx context.Context, resource R) error

	// Passivate prepares a resource for idle storage before it is placed
	// in the idle buffer. Returning an error causes the resource to be
	// destroyed instead of stored.
	Passivate(ctx context.Context, resource R) error
}

// KeyedResourceFactory is the keyed analogue of ResourceFactory: every
// callback additionally receives the key the resource belongs to.
type KeyedResourceFactory[K comparable, R any] interface {
	Create(ctx context.Context, key K) (R, error)
	Destroy(ctx context.Context, key K, resource R)
	Validate(ctx context.Context, key K, resource R) bool
	Activate(ctx context.Context, key K, resource R) error
	Passivate(ctx context.Context, key K, resource R) error
}

// perKeyFactory adapts a KeyedResourceFactory to the unkeyed
// ResourceFactory contract by closing over one fixed key. Each per-key Pool
// inside a KeyedPool is built with its own perKeyFactory instance; per
// spec.md §9's key-aware-factory redesign, there is no thread-local or
// other ambient "current key" state anywhere in this package.
type perKeyFactory[K comparable, R any] struct {
	key     K
	factory KeyedResourceFactory[K, R]
}

func (f perKeyFactory[K, R]) Create(ctx context.Context) (R, error) {
	return f.factory.Create(ctx, f.key)
}

func (f perKeyFactory[K, R]) Destroy(ctx context.Context, resource R) {
	f.factory.Destroy(ctx, f.key, resource)
}

func (f perKeyFactory[K, R]) Validate(ctx context.Context, resource R) bool {
	return f.factory.Validate(ctx, f.key, resource)
}

func (f perKeyFactory[K, R]) Activate(ctx context.Context, resource R) error {
	return f.factory.Activate(ctx, f.key, resource)
}

func (f perKeyFactory[K, R]) Passivate(ctx context.Context, resource R) error {
	return f.factory.Passivate(ctx, f.key, resource)
}
