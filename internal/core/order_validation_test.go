package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func validInput() OrderInput {
	return OrderInput{
		Supplier:  "Guangzhou Trading Co.",
		OrderDate: "2026-03-15",
		Items: []OrderItemInput{
			{SKU: "WID-01", Name: "Widget", Quantity: 100, UnitPriceUSD: decimal.NewFromInt(10)},
		},
	}
}

func TestValidateOrderInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*OrderInput)
		wantOK bool
	}{
		{"valid order", func(in *OrderInput) {}, true},
		{"missing supplier", func(in *OrderInput) { in.Supplier = "" }, false},
		{"bad date format", func(in *OrderInput) { in.OrderDate = "15/03/2026" }, false},
		{"no items", func(in *OrderInput) { in.Items = nil }, false},
		{"missing sku", func(in *OrderInput) { in.Items[0].SKU = "" }, false},
		{"missing name", func(in *OrderInput) { in.Items[0].Name = "" }, false},
		{"zero quantity", func(in *OrderInput) { in.Items[0].Quantity = 0 }, false},
		{"negative quantity", func(in *OrderInput) { in.Items[0].Quantity = -5 }, false},
		{"zero price", func(in *OrderInput) { in.Items[0].UnitPriceUSD = decimal.Zero }, false},
		{"negative weight", func(in *OrderInput) {
			w := decimal.NewFromInt(-1)
			in.Items[0].UnitWeightKg = &w
		}, false},
		{"subtotal over ceiling", func(in *OrderInput) {
			in.Items[0].Quantity = 2_000_000
			in.Items[0].UnitPriceUSD = decimal.NewFromInt(10)
		}, false},
		{"duplicate sku", func(in *OrderInput) {
			in.Items = append(in.Items, in.Items[0])
		}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			items, err := validateOrderInput(in)

			if tc.wantOK {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if !items[0].SubtotalUSD.Equal(decimal.NewFromInt(1000)) {
					t.Errorf("subtotal: want 1000, got %s", items[0].SubtotalUSD)
				}
				return
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("want ValidationError, got %v", err)
			}
		})
	}
}
