package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsValidation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "validation error",
			err:  NewValidationError([]error{ErrItemsRequired}),
			want: true,
		},
		{
			name: "wrapped validation error",
			err:  fmt.Errorf("create order: %w", NewValidationError([]error{ErrTotalMismatch})),
			want: true,
		},
		{
			name: "other error",
			err:  ErrOrderNotFound,
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidation(tt.err); got != tt.want {
				t.Errorf("IsValidation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewValidationError_Empty(t *testing.T) {
	if err := NewValidationError(nil); err != nil {
		t.Fatalf("expected nil for empty list, got %v", err)
	}
}

func TestValidationError_UnwrapsSentinels(t *testing.T) {
	err := NewValidationError([]error{ErrClientNameRequired, ErrTotalMismatch})

	if !errors.Is(err, ErrClientNameRequired) {
		t.Error("expected errors.Is to see ErrClientNameRequired")
	}
	if !errors.Is(err, ErrTotalMismatch) {
		t.Error("expected errors.Is to see ErrTotalMismatch")
	}
	if errors.Is(err, ErrItemsRequired) {
		t.Error("did not expect ErrItemsRequired")
	}
}

func TestIsInsufficientStock(t *testing.T) {
	base := &InsufficientStockError{Item: "Латте"}

	if !IsInsufficientStock(base) {
		t.Error("expected true for InsufficientStockError")
	}
	if !IsInsufficientStock(fmt.Errorf("reserve: %w", base)) {
		t.Error("expected true for wrapped InsufficientStockError")
	}
	if IsInsufficientStock(ErrItemNotFound) {
		t.Error("expected false for unrelated error")
	}
	if IsInsufficientStock(nil) {
		t.Error("expected false for nil")
	}
}

func TestIsInvalidTransition(t *testing.T) {
	base := &InvalidTransitionError{From: OrderStatusPending, To: OrderStatusReady}

	if !IsInvalidTransition(base) {
		t.Error("expected true for InvalidTransitionError")
	}
	if !IsInvalidTransition(fmt.Errorf("update status: %w", base)) {
		t.Error("expected true for wrapped InvalidTransitionError")
	}
	if IsInvalidTransition(ErrOrderNotFound) {
		t.Error("expected false for unrelated error")
	}

	if got := base.Error(); got != `invalid status transition pending -> ready` {
		t.Errorf("unexpected message: %s", got)
	}
}
