package core

import "github.com/shopspring/decimal"

// ItemShare is one item's slice of a distributed shared cost, in RD$.
// UnitCost × the item's quantity always equals TotalCost exactly.
type ItemShare struct {
	ItemID    int             `json:"item_id"`
	UnitCost  decimal.Decimal `json:"costo_unitario"`
	TotalCost decimal.Decimal `json:"costo_total"`
}

// DistributeCost allocates totalCost (RD$) across items proportionally to the
// chosen basis. It is a pure function: no I/O, deterministic for a given input.
//
// Fallback policy: if method is peso or volumen and ANY item lacks that
// attribute (nil or zero), or if the basis denominator sums to zero, the whole
// batch falls back to unidades (even per-unit distribution). The fallback is
// all-or-nothing per call — mixing real weights with guessed ones would skew
// every share, so either every item uses the requested basis or none does.
//
// Degenerate input is not an error: an empty item slice yields an empty
// result, a zero totalCost yields zero shares, and a negative totalCost is
// distributed as a negative correction (credits/adjustments).
func DistributeCost(items []OrderItem, totalCost decimal.Decimal, method DistributionMethod, exchangeRate decimal.Decimal) []ItemShare {
	if len(items) == 0 {
		return []ItemShare{}
	}

	effective := effectiveMethod(items, method)
	bases := make([]decimal.Decimal, len(items))
	denominator := decimal.Zero
	for i, it := range items {
		bases[i] = itemBasis(it, effective, exchangeRate)
		denominator = denominator.Add(bases[i])
	}
	if denominator.IsZero() && effective != MethodUnits {
		// e.g. valor_fob with all-zero prices; quantities are always > 0 so
		// the unidades denominator cannot be zero for a non-empty batch.
		effective = MethodUnits
		denominator = decimal.Zero
		for i, it := range items {
			bases[i] = itemBasis(it, MethodUnits, exchangeRate)
			denominator = denominator.Add(bases[i])
		}
	}

	shares := make([]ItemShare, len(items))
	for i, it := range items {
		qty := decimal.NewFromInt(int64(it.Quantity))
		share := totalCost.Mul(bases[i]).Div(denominator)
		unit := share.Div(qty)
		shares[i] = ItemShare{
			ItemID:    it.ID,
			UnitCost:  unit,
			TotalCost: unit.Mul(qty),
		}
	}
	return shares
}

// effectiveMethod downgrades peso/volumen to unidades when any item in the
// batch is missing the required attribute. Unknown methods also resolve to
// unidades so a bad configuration row degrades instead of failing.
func effectiveMethod(items []OrderItem, method DistributionMethod) DistributionMethod {
	switch method {
	case MethodWeight:
		for _, it := range items {
			if it.UnitWeightKg == nil || it.UnitWeightKg.IsZero() {
				return MethodUnits
			}
		}
		return MethodWeight
	case MethodVolume:
		for _, it := range items {
			if it.UnitVolumeCBM == nil || it.UnitVolumeCBM.IsZero() {
				return MethodUnits
			}
		}
		return MethodVolume
	case MethodFOBValue:
		return MethodFOBValue
	default:
		return MethodUnits
	}
}

func itemBasis(it OrderItem, method DistributionMethod, exchangeRate decimal.Decimal) decimal.Decimal {
	qty := decimal.NewFromInt(int64(it.Quantity))
	switch method {
	case MethodWeight:
		return it.UnitWeightKg.Mul(qty)
	case MethodVolume:
		return it.UnitVolumeCBM.Mul(qty)
	case MethodFOBValue:
		return it.UnitPriceUSD.Mul(qty).Mul(exchangeRate)
	default:
		return qty
	}
}
