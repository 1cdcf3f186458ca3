package opool_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/opool/opool"
)

// TestPublicErrorConstants verifies that every exported error constant:
//   - implements the error interface (Error() returns a non-empty string)
//   - matches itself via errors.Is
//   - matches itself when wrapped via fmt.Errorf %w
//   - does not match a different error constant
func TestPublicErrorConstants(t *testing.T) {
	t.Parallel()

	allErrors := map[string]error{
		"ErrPoolClosed":         opool.ErrPoolClosed,
		"ErrExhausted":          opool.ErrExhausted,
		"ErrInvariantViolation": opool.ErrInvariantViolation,
		"ErrCancelled":          opool.ErrCancelled,
	}

	for name, sentinel := range allErrors {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if sentinel == nil {
				t.Fatalf("%s is nil", name)
			}
			if msg := sentinel.Error(); msg == "" {
				t.Errorf("%s.Error() returned empty string", name)
			}
			if !errors.Is(sentinel, sentinel) {
				t.Errorf("errors.Is(%s, %s) = false, want true (self-match)", name, name)
			}

			wrapped := fmt.Errorf("wrapping: %w", sentinel)
			if !errors.Is(wrapped, sentinel) {
				t.Errorf("errors.Is(wrapped %s) = false, want true", name)
			}

			differentErr := errors.New("some other error")
			if errors.Is(sentinel, differentErr) {
				t.Errorf("errors.Is(%s, errors.New(...)) = true, want false", name)
			}
		})
	}
}

// TestPublicErrorConstantsAreDistinct verifies that no two exported error
// constants are equal to each other.
func TestPublicErrorConstantsAreDistinct(t *testing.T) {
	t.Parallel()

	named := []struct {
		name string
		err  error
	}{
		{"ErrPoolClosed", opool.ErrPoolClosed},
		{"ErrExhausted", opool.ErrExhausted},
		{"ErrInvariantViolation", opool.ErrInvariantViolation},
		{"ErrCancelled", opool.ErrCancelled},
	}

	for i := range named {
		for j := range named {
			if i == j {
				continue
			}
			if errors.Is(named[i].err, named[j].err) {
				t.Errorf("%s matches %s via errors.Is, want distinct", named[i].name, named[j].name)
			}
		}
	}
}

func TestExhaustedError_UnwrapsToCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("activation failed")
	err := &opool.ExhaustedError{Cause: cause}

	if !errors.Is(err, opool.ErrExhausted) {
		t.Fatal("errors.Is(err, ErrExhausted) = false, want true")
	}
	if !errors.Is(err, cause) {
		t.Fatal("errors.Is(err, cause) = false, want true (Unwrap should expose Cause)")
	}
}

func TestExhaustedError_NilCause(t *testing.T) {
	t.Parallel()

	err := &opool.ExhaustedError{}
	if !errors.Is(err, opool.ErrExhausted) {
		t.Fatal("errors.Is(err, ErrExhausted) = false, want true")
	}
	if msg := err.Error(); msg == "" {
		t.Fatal("Error() returned empty string with nil Cause")
	}
}
