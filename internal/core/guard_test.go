package core_test

import (
	"errors"
	"strings"
	"testing"

	"importops/internal/core"
)

func TestCheckReceptionQuantity(t *testing.T) {
	item := core.OrderItem{ID: 1, SKU: "WID-01", Quantity: 100}

	tests := []struct {
		name            string
		alreadyReceived int
		attempted       int
		wantNearLimit   bool
		wantOverReceipt bool
	}{
		{"first partial receipt", 0, 50, false, false},
		{"up to the warning line", 0, 95, false, false}, // exactly 95% is not "near"
		{"into the warning band", 95, 4, true, false},   // 99/100
		{"lands exactly on ordered", 95, 5, false, false},
		{"one unit past ordered", 95, 6, false, true},
		{"well past ordered", 95, 10, false, true},
		{"single shot over-receipt", 0, 101, false, true},
		{"warning band from scratch", 0, 96, true, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			nearLimit, err := core.CheckReceptionQuantity(item, tc.alreadyReceived, tc.attempted)

			if tc.wantOverReceipt {
				var overErr *core.OverReceiptError
				if !errors.As(err, &overErr) {
					t.Fatalf("want OverReceiptError, got %v", err)
				}
				if overErr.Ordered != 100 || overErr.AlreadyReceived != tc.alreadyReceived || overErr.Attempted != tc.attempted {
					t.Errorf("error context: got ordered=%d received=%d attempted=%d",
						overErr.Ordered, overErr.AlreadyReceived, overErr.Attempted)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if nearLimit != tc.wantNearLimit {
				t.Errorf("nearLimit: want %v, got %v", tc.wantNearLimit, nearLimit)
			}
		})
	}
}

func TestOverReceiptError_Message(t *testing.T) {
	item := core.OrderItem{SKU: "WID-01", Quantity: 100}
	_, err := core.CheckReceptionQuantity(item, 95, 10)
	if err == nil {
		t.Fatal("want over-receipt error, got nil")
	}
	msg := err.Error()
	for _, fragment := range []string{"WID-01", "ordered: 100", "already received: 95", "attempting: 10", "total: 105"} {
		if !strings.Contains(msg, fragment) {
			t.Errorf("message missing %q: %s", fragment, msg)
		}
	}
}

func TestCheckReceptionQuantity_SmallOrders(t *testing.T) {
	// Integer percent math must not misfire on tiny ordered quantities.
	item := core.OrderItem{SKU: "S", Quantity: 1}

	if _, err := core.CheckReceptionQuantity(item, 0, 1); err != nil {
		t.Errorf("receiving the only unit should pass, got %v", err)
	}
	if _, err := core.CheckReceptionQuantity(item, 1, 1); err == nil {
		t.Error("second unit of one ordered should be rejected")
	}
}
