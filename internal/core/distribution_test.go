package core_test

import (
	"testing"

	"importops/internal/core"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// tolerance for share-sum comparisons: decimal division is not exact, so the
// recombined total may drift at the 16th decimal place.
var tolerance = dec("0.000001")

func assertDecimalNear(t *testing.T, want, got decimal.Decimal, label string) {
	t.Helper()
	if want.Sub(got).Abs().GreaterThan(tolerance) {
		t.Errorf("%s: want %s, got %s", label, want, got)
	}
}

func TestDistributeCost_ShareSumMatchesTotal(t *testing.T) {
	items := []core.OrderItem{
		{ID: 1, Quantity: 7, UnitPriceUSD: dec("3.17"), UnitWeightKg: decPtr("0.35"), UnitVolumeCBM: decPtr("0.002")},
		{ID: 2, Quantity: 13, UnitPriceUSD: dec("11.99"), UnitWeightKg: decPtr("1.20"), UnitVolumeCBM: decPtr("0.015")},
		{ID: 3, Quantity: 250, UnitPriceUSD: dec("0.42"), UnitWeightKg: decPtr("0.08"), UnitVolumeCBM: decPtr("0.0004")},
	}
	rate := dec("58.5")

	for _, method := range []core.DistributionMethod{
		core.MethodWeight, core.MethodVolume, core.MethodFOBValue, core.MethodUnits,
	} {
		for _, total := range []decimal.Decimal{dec("1000"), dec("12345.67"), dec("0.03")} {
			shares := core.DistributeCost(items, total, method, rate)
			if len(shares) != len(items) {
				t.Fatalf("%s: want %d shares, got %d", method, len(items), len(shares))
			}
			sum := decimal.Zero
			for i, sh := range shares {
				sum = sum.Add(sh.TotalCost)
				qty := decimal.NewFromInt(int64(items[i].Quantity))
				if !sh.UnitCost.Mul(qty).Equal(sh.TotalCost) {
					t.Errorf("%s item %d: unit×qty = %s, total = %s",
						method, sh.ItemID, sh.UnitCost.Mul(qty), sh.TotalCost)
				}
			}
			assertDecimalNear(t, total, sum, string(method)+" share sum")
		}
	}
}

func TestDistributeCost_ProportionalByUnits(t *testing.T) {
	// 3 items, quantities 100/200/300, equal price, total 600 ⇒ shares
	// 100/200/300 and unit cost 1 across the board.
	items := []core.OrderItem{
		{ID: 1, Quantity: 100, UnitPriceUSD: dec("10")},
		{ID: 2, Quantity: 200, UnitPriceUSD: dec("10")},
		{ID: 3, Quantity: 300, UnitPriceUSD: dec("10")},
	}
	shares := core.DistributeCost(items, dec("600"), core.MethodUnits, dec("58"))

	wantTotals := []string{"100", "200", "300"}
	for i, sh := range shares {
		if !sh.TotalCost.Equal(dec(wantTotals[i])) {
			t.Errorf("item %d: want total %s, got %s", sh.ItemID, wantTotals[i], sh.TotalCost)
		}
		if !sh.UnitCost.Equal(dec("1")) {
			t.Errorf("item %d: want unit cost 1, got %s", sh.ItemID, sh.UnitCost)
		}
	}
}

func TestDistributeCost_WeightBasis(t *testing.T) {
	// Total weights: 10×2kg = 20 vs 20×3kg = 60, so shares split 25%/75%.
	items := []core.OrderItem{
		{ID: 1, Quantity: 10, UnitPriceUSD: dec("5"), UnitWeightKg: decPtr("2")},
		{ID: 2, Quantity: 20, UnitPriceUSD: dec("5"), UnitWeightKg: decPtr("3")},
	}
	shares := core.DistributeCost(items, dec("800"), core.MethodWeight, dec("58"))

	if !shares[0].TotalCost.Equal(dec("200")) {
		t.Errorf("item 1: want 200, got %s", shares[0].TotalCost)
	}
	if !shares[1].TotalCost.Equal(dec("600")) {
		t.Errorf("item 2: want 600, got %s", shares[1].TotalCost)
	}
}

func TestDistributeCost_FOBValueBasis(t *testing.T) {
	// FOB bases: 10×100×rate vs 30×100×rate ⇒ 25%/75% regardless of rate.
	items := []core.OrderItem{
		{ID: 1, Quantity: 100, UnitPriceUSD: dec("10")},
		{ID: 2, Quantity: 100, UnitPriceUSD: dec("30")},
	}
	shares := core.DistributeCost(items, dec("1000"), core.MethodFOBValue, dec("58"))

	if !shares[0].TotalCost.Equal(dec("250")) {
		t.Errorf("item 1: want 250, got %s", shares[0].TotalCost)
	}
	if !shares[1].TotalCost.Equal(dec("750")) {
		t.Errorf("item 2: want 750, got %s", shares[1].TotalCost)
	}
}

func TestDistributeCost_MissingWeightFallsBackForWholeBatch(t *testing.T) {
	// Item 2 has no weight: the whole batch must fall back to even per-unit
	// distribution. No item may be skipped or zeroed while others keep the
	// weight basis.
	tests := []struct {
		name  string
		items []core.OrderItem
	}{
		{
			name: "nil weight on one item",
			items: []core.OrderItem{
				{ID: 1, Quantity: 10, UnitPriceUSD: dec("5"), UnitWeightKg: decPtr("2")},
				{ID: 2, Quantity: 30, UnitPriceUSD: dec("5")},
			},
		},
		{
			name: "zero weight on one item",
			items: []core.OrderItem{
				{ID: 1, Quantity: 10, UnitPriceUSD: dec("5"), UnitWeightKg: decPtr("2")},
				{ID: 2, Quantity: 30, UnitPriceUSD: dec("5"), UnitWeightKg: decPtr("0")},
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			shares := core.DistributeCost(tc.items, dec("400"), core.MethodWeight, dec("58"))
			// unidades basis: 10 vs 30 units ⇒ 100 / 300.
			if !shares[0].TotalCost.Equal(dec("100")) {
				t.Errorf("item 1: want 100 (even fallback), got %s", shares[0].TotalCost)
			}
			if !shares[1].TotalCost.Equal(dec("300")) {
				t.Errorf("item 2: want 300 (even fallback), got %s", shares[1].TotalCost)
			}
			for _, sh := range shares {
				if sh.TotalCost.IsZero() {
					t.Errorf("item %d silently zeroed by fallback", sh.ItemID)
				}
			}
		})
	}
}

func TestDistributeCost_MissingVolumeFallsBackForWholeBatch(t *testing.T) {
	items := []core.OrderItem{
		{ID: 1, Quantity: 50, UnitPriceUSD: dec("5"), UnitVolumeCBM: decPtr("0.01")},
		{ID: 2, Quantity: 50, UnitPriceUSD: dec("5")},
	}
	shares := core.DistributeCost(items, dec("200"), core.MethodVolume, dec("58"))
	if !shares[0].TotalCost.Equal(dec("100")) || !shares[1].TotalCost.Equal(dec("100")) {
		t.Errorf("want even 100/100 fallback, got %s/%s", shares[0].TotalCost, shares[1].TotalCost)
	}
}

func TestDistributeCost_DegenerateInputs(t *testing.T) {
	items := []core.OrderItem{
		{ID: 1, Quantity: 4, UnitPriceUSD: dec("2")},
		{ID: 2, Quantity: 6, UnitPriceUSD: dec("3")},
	}

	t.Run("empty items", func(t *testing.T) {
		shares := core.DistributeCost(nil, dec("500"), core.MethodUnits, dec("58"))
		if len(shares) != 0 {
			t.Errorf("want empty result, got %d shares", len(shares))
		}
	})

	t.Run("zero total cost", func(t *testing.T) {
		for _, method := range []core.DistributionMethod{
			core.MethodWeight, core.MethodVolume, core.MethodFOBValue, core.MethodUnits,
		} {
			for _, sh := range core.DistributeCost(items, decimal.Zero, method, dec("58")) {
				if !sh.TotalCost.IsZero() || !sh.UnitCost.IsZero() {
					t.Errorf("%s item %d: want zero cost, got unit %s total %s",
						method, sh.ItemID, sh.UnitCost, sh.TotalCost)
				}
			}
		}
	})

	t.Run("negative total distributes as credit", func(t *testing.T) {
		shares := core.DistributeCost(items, dec("-100"), core.MethodUnits, dec("58"))
		if !shares[0].TotalCost.Equal(dec("-40")) || !shares[1].TotalCost.Equal(dec("-60")) {
			t.Errorf("want -40/-60, got %s/%s", shares[0].TotalCost, shares[1].TotalCost)
		}
	})

	t.Run("unknown method acts as unidades", func(t *testing.T) {
		shares := core.DistributeCost(items, dec("100"), core.DistributionMethod("por_color"), dec("58"))
		if !shares[0].TotalCost.Equal(dec("40")) || !shares[1].TotalCost.Equal(dec("60")) {
			t.Errorf("want 40/60, got %s/%s", shares[0].TotalCost, shares[1].TotalCost)
		}
	})
}
