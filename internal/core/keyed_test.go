package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type keyedFakeResource struct {
	key string
	id  int
}

type fakeKeyedFactory struct {
	mu      sync.Mutex
	nextID  map[string]int
	created int
}

func newFakeKeyedFactory() *fakeKeyedFactory {
	return &fakeKeyedFactory{nextID: make(map[string]int)}
}

func (f *fakeKeyedFactory) Create(ctx context.Context, key string) (*keyedFakeResource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID[key]++
	f.created++
	return &keyedFakeResource{key: key, id: f.nextID[key]}, nil
}

func (f *fakeKeyedFactory) Destroy(ctx context.Context, key string, r *keyedFakeResource) {}

func (f *fakeKeyedFactory) Validate(ctx context.Context, key string, r *keyedFakeResource) bool {
	return true
}

func (f *fakeKeyedFactory) Activate(ctx context.Context, key string, r *keyedFakeResource) error {
	return nil
}

func (f *fakeKeyedFactory) Passivate(ctx context.Context, key string, r *keyedFakeResource) error {
	return nil
}

func keyedTestConfig() Config {
	return Config{
		BorrowPolicy:     BorrowLIFO,
		ExhaustionPolicy: ExhaustionGrow,
		MaxIdle:          8,
		LimitPolicy:      LimitWait,
		MaxWait:          time.Second,
		TrackingPolicy:   TrackingCounting,
	}
}

func TestKeyedPool_IsolatesKeys(t *testing.T) {
	t.Parallel()

	f := newFakeKeyedFactory()
	kp, err := BuildKeyed[string, *keyedFakeResource](keyedTestConfig(), f)
	if err != nil {
		t.Fatalf("BuildKeyed() error = %v", err)
	}
	defer kp.Close()

	ctx := context.Background()
	a, err := kp.Borrow(ctx, "a")
	if err != nil {
		t.Fatalf("Borrow(a) error = %v", err)
	}
	b, err := kp.Borrow(ctx, "b")
	if err != nil {
		t.Fatalf("Borrow(b) error = %v", err)
	}
	if a.key != "a" || b.key != "b" {
		t.Fatalf("got resources for keys %q, %q, want a, b", a.key, b.key)
	}
	if got := kp.NumActiveFor("a"); got != 1 {
		t.Fatalf("NumActiveFor(a) = %d, want 1", got)
	}
	if got := kp.NumActiveFor("b"); got != 1 {
		t.Fatalf("NumActiveFor(b) = %d, want 1", got)
	}
	if got := kp.NumActive(); got != 2 {
		t.Fatalf("NumActive() = %d, want 2", got)
	}
}

func TestKeyedPool_LazyPoolCreation(t *testing.T) {
	t.Parallel()

	f := newFakeKeyedFactory()
	kp, err := BuildKeyed[string, *keyedFakeResource](keyedTestConfig(), f)
	if err != nil {
		t.Fatalf("BuildKeyed() error = %v", err)
	}
	defer kp.Close()

	if got := kp.NumActiveFor("unused"); got != 0 {
		t.Fatalf("NumActiveFor() on unseen key = %d, want 0", got)
	}
	if got := kp.NumIdleFor("unused"); got != 0 {
		t.Fatalf("NumIdleFor() on unseen key = %d, want 0", got)
	}
}

func TestKeyedPool_ReturnAndInvalidateRequireKnownKey(t *testing.T) {
	t.Parallel()

	f := newFakeKeyedFactory()
	kp, err := BuildKeyed[string, *keyedFakeResource](keyedTestConfig(), f)
	if err != nil {
		t.Fatalf("BuildKeyed() error = %v", err)
	}
	defer kp.Close()

	ctx := context.Background()
	r := &keyedFakeResource{key: "ghost", id: 1}
	if err := kp.Return(ctx, "ghost", r); !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("Return() on unknown key error = %v, want ErrInvariantViolation", err)
	}
	if err := kp.Invalidate(ctx, "ghost", r); !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("Invalidate() on unknown key error = %v, want ErrInvariantViolation", err)
	}
}

func TestKeyedPool_ReturnRoutesToCorrectKeyPool(t *testing.T) {
	t.Parallel()

	f := newFakeKeyedFactory()
	kp, err := BuildKeyed[string, *keyedFakeResource](keyedTestConfig(), f)
	if err != nil {
		t.Fatalf("BuildKeyed() error = %v", err)
	}
	defer kp.Close()

	ctx := context.Background()
	r, err := kp.Borrow(ctx, "a")
	if err != nil {
		t.Fatalf("Borrow() error = %v", err)
	}
	if err := kp.Return(ctx, "a", r); err != nil {
		t.Fatalf("Return() error = %v", err)
	}
	if got := kp.NumIdleFor("a"); got != 1 {
		t.Fatalf("NumIdleFor(a) = %d, want 1", got)
	}
	if got := kp.NumIdle(); got != 1 {
		t.Fatalf("NumIdle() = %d, want 1", got)
	}
}

func TestKeyedPool_CloseDrainsEveryKey(t *testing.T) {
	f := newFakeKeyedFactory()
	kp, err := BuildKeyed[string, *keyedFakeResource](keyedTestConfig(), f)
	if err != nil {
		t.Fatalf("BuildKeyed() error = %v", err)
	}

	ctx := context.Background()
	for _, key := range []string{"a", "b", "c"} {
		r, err := kp.Borrow(ctx, key)
		if err != nil {
			t.Fatalf("Borrow(%s) error = %v", key, err)
		}
		if err := kp.Return(ctx, key, r); err != nil {
			t.Fatalf("Return(%s) error = %v", key, err)
		}
	}

	if err := kp.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := kp.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	if _, err := kp.Borrow(ctx, "a"); !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("Borrow() after Close error = %v, want ErrPoolClosed", err)
	}
}

func TestKeyedPool_ClearKeyOnlyAffectsOneKey(t *testing.T) {
	t.Parallel()

	f := newFakeKeyedFactory()
	kp, err := BuildKeyed[string, *keyedFakeResource](keyedTestConfig(), f)
	if err != nil {
		t.Fatalf("BuildKeyed() error = %v", err)
	}
	defer kp.Close()

	ctx := context.Background()
	ra, _ := kp.Borrow(ctx, "a")
	rb, _ := kp.Borrow(ctx, "b")
	_ = kp.Return(ctx, "a", ra)
	_ = kp.Return(ctx, "b", rb)

	if err := kp.ClearKey(ctx, "a"); err != nil {
		t.Fatalf("ClearKey(a) error = %v", err)
	}
	if got := kp.NumIdleFor("a"); got != 0 {
		t.Fatalf("NumIdleFor(a) after ClearKey = %d, want 0", got)
	}
	if got := kp.NumIdleFor("b"); got != 1 {
		t.Fatalf("NumIdleFor(b) after ClearKey(a) = %d, want 1 (untouched)", got)
	}

	if err := kp.ClearKey(ctx, "never-seen"); err != nil {
		t.Fatalf("ClearKey() on unknown key error = %v, want nil", err)
	}
}

func TestKeyedPool_ClearKeyRemovesEmptyPerKeyPool(t *testing.T) {
	t.Parallel()

	f := newFakeKeyedFactory()
	kp, err := BuildKeyed[string, *keyedFakeResource](keyedTestConfig(), f)
	if err != nil {
		t.Fatalf("BuildKeyed() error = %v", err)
	}
	defer kp.Close()

	ctx := context.Background()
	r, err := kp.Borrow(ctx, "a")
	if err != nil {
		t.Fatalf("Borrow() error = %v", err)
	}
	if err := kp.Return(ctx, "a", r); err != nil {
		t.Fatalf("Return() error = %v", err)
	}

	original, ok := kp.existingPool("a")
	if !ok {
		t.Fatal("existingPool(a) = false before ClearKey, want true")
	}

	if err := kp.ClearKey(ctx, "a"); err != nil {
		t.Fatalf("ClearKey(a) error = %v", err)
	}

	if _, ok := kp.existingPool("a"); ok {
		t.Fatal("existingPool(a) = true after ClearKey drained it to empty, want false (pool removed)")
	}

	// A subsequent Borrow must lazily build a brand-new *Pool rather than
	// reuse the one ClearKey removed.
	r2, err := kp.Borrow(ctx, "a")
	if err != nil {
		t.Fatalf("Borrow() after ClearKey error = %v", err)
	}
	if err := kp.Return(ctx, "a", r2); err != nil {
		t.Fatalf("Return() error = %v", err)
	}

	recreated, ok := kp.existingPool("a")
	if !ok {
		t.Fatal("existingPool(a) = false after re-borrow, want true")
	}
	if recreated == original {
		t.Fatal("per-key pool for \"a\" was reused after ClearKey, want a freshly built pool")
	}
}
