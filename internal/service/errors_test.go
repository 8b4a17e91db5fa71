package service

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainErrorsWrapKinds(t *testing.T) {
	cases := []struct {
		err  error
		kind error
	}{
		{ErrEmptyCart, ErrNotFound},
		{ErrInvalidQuantity, ErrValidation},
		{ErrDiscountExpired, ErrValidation},
		{ErrDiscountAlreadyUsed, ErrConflict},
		{ErrOrderForbidden, ErrUnauthorized},
		{ErrPaymentGatewayFailed, ErrExternalService},
		{fmt.Errorf("%w: boom", ErrPaymentGatewayNotConfigured), ErrInternal},
	}
	for _, tc := range cases {
		if !errors.Is(tc.err, tc.kind) {
			t.Fatalf("%v should wrap %v", tc.err, tc.kind)
		}
		if got := ErrorKind(tc.err); got != tc.kind {
			t.Fatalf("ErrorKind(%v) want %v got %v", tc.err, tc.kind, got)
		}
	}
}

func TestDiscountErrorsWrapInvalidDiscount(t *testing.T) {
	for _, err := range []error{ErrDiscountNotFound, ErrDiscountInactive, ErrDiscountNotStarted, ErrDiscountExpired} {
		if !errors.Is(err, ErrInvalidDiscount) {
			t.Fatalf("%v should wrap ErrInvalidDiscount", err)
		}
	}
	if errors.Is(ErrDiscountAlreadyUsed, ErrInvalidDiscount) {
		t.Fatalf("already used is a conflict, not an invalid code")
	}
}

func TestErrorKindDefaultsToInternal(t *testing.T) {
	if got := ErrorKind(errors.New("db down")); got != ErrInternal {
		t.Fatalf("unknown errors should map to internal, got %v", got)
	}
}
