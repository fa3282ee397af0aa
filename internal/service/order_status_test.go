package service

import (
	"errors"
	"testing"

	"github.com/luxdecor-shop/internal/constants"
)

func TestNormalizeOrderStatus(t *testing.T) {
	got, err := NormalizeOrderStatus("  shipping ")
	if err != nil || got != constants.OrderStatusShipping {
		t.Fatalf("want SHIPPING, got %q err=%v", got, err)
	}
	if _, err := NormalizeOrderStatus("returned"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("want ErrInvalidStatus, got %v", err)
	}
	if _, err := NormalizeOrderStatus(""); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("empty status should be invalid, got %v", err)
	}
}

func TestCheckTransition(t *testing.T) {
	cases := []struct {
		from string
		to   string
		noop bool
		err  error
	}{
		{constants.OrderStatusPending, constants.OrderStatusConfirmed, false, nil},
		{constants.OrderStatusPending, constants.OrderStatusDelivered, false, nil},
		{constants.OrderStatusPending, constants.OrderStatusPending, true, nil},
		{constants.OrderStatusConfirmed, constants.OrderStatusPending, false, ErrInvalidTransition},
		{constants.OrderStatusShipping, constants.OrderStatusConfirmed, false, ErrInvalidTransition},
		{constants.OrderStatusShipping, constants.OrderStatusCancelled, false, nil},
		{constants.OrderStatusDelivered, constants.OrderStatusDelivered, false, ErrOrderStatusTerminal},
		{constants.OrderStatusCancelled, constants.OrderStatusPending, false, ErrOrderStatusTerminal},
	}
	for _, tc := range cases {
		noop, err := checkTransition(tc.from, tc.to)
		if tc.err == nil && err != nil {
			t.Fatalf("%s -> %s unexpected error: %v", tc.from, tc.to, err)
		}
		if tc.err != nil && !errors.Is(err, tc.err) {
			t.Fatalf("%s -> %s want %v, got %v", tc.from, tc.to, tc.err, err)
		}
		if noop != tc.noop {
			t.Fatalf("%s -> %s noop want %v, got %v", tc.from, tc.to, tc.noop, noop)
		}
	}
}

func TestIsTerminalStatus(t *testing.T) {
	if !IsTerminalStatus(constants.OrderStatusDelivered) || !IsTerminalStatus(constants.OrderStatusCancelled) {
		t.Fatalf("delivered and cancelled are terminal")
	}
	if IsTerminalStatus(constants.OrderStatusShipping) {
		t.Fatalf("shipping is not terminal")
	}
}

func TestNewOrderCodeUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		code, err := newOrderCode()
		if err != nil {
			t.Fatalf("new order code failed: %v", err)
		}
		if len(code) > 40 {
			t.Fatalf("order code exceeds column width: %s", code)
		}
		if seen[code] {
			t.Fatalf("duplicate order code: %s", code)
		}
		seen[code] = true
	}
}
