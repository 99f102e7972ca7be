package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MethodResolver returns the active distribution method for a cost-type label.
// Injected into the calculator so it stays pure and testable; the DB-backed
// implementation lives in DistributionConfigService. Missing configurations
// resolve to unidades.
type MethodResolver func(costType string) DistributionMethod

// ResolverFromMap adapts a resolved configuration map to a MethodResolver,
// defaulting to unidades for unknown labels.
func ResolverFromMap(methods map[string]DistributionMethod) MethodResolver {
	return func(costType string) DistributionMethod {
		if m, ok := methods[costType]; ok && m.Valid() {
			return m
		}
		return MethodUnits
	}
}

// ItemCost is the landed-cost breakdown for one line item, all values in RD$.
type ItemCost struct {
	ItemID            int             `json:"item_id"`
	SKU               string          `json:"sku"`
	Name              string          `json:"nombre"`
	Quantity          int             `json:"cantidad_total"`
	FOBUnitRD         decimal.Decimal `json:"fob_unitario_rd"`
	PaymentsUnitRD    decimal.Decimal `json:"pagos_unitario_rd"`
	LogisticsUnitRD   decimal.Decimal `json:"logistica_unitario_rd"`
	CommissionsUnitRD decimal.Decimal `json:"comisiones_unitario_rd"`
	UnitCostRD        decimal.Decimal `json:"costo_unitario_rd"`
	TotalCostRD       decimal.Decimal `json:"costo_total_rd"`
}

// AverageExchangeRate is the arithmetic mean of the exchange rates on the
// order's payments. With no payments yet there is nothing to average, so the
// caller-supplied fallback rate is used. This is a deliberate approximation:
// the system has no live rate source.
func AverageExchangeRate(payments []Payment, fallback decimal.Decimal) decimal.Decimal {
	if len(payments) == 0 {
		return fallback
	}
	sum := decimal.Zero
	for _, p := range payments {
		sum = sum.Add(p.ExchangeRate)
	}
	return sum.Div(decimal.NewFromInt(int64(len(payments))))
}

// ComputeItemCosts produces the per-item landed cost for an order: FOB price
// converted at the average exchange rate, plus the item's allocated share of
// supplier payments (net of bank commissions), logistics expenses, and bank
// commissions. Each category is distributed with its own configured method.
//
// expenses must already be scoped to the order, with OrderShareRD carrying the
// portion attributable to it. Returns an error when the order has no items —
// a cost over nothing is meaningless and hints at a broken read.
func ComputeItemCosts(items []OrderItem, payments []Payment, expenses []LogisticsExpense, resolve MethodResolver, fallbackRate decimal.Decimal) ([]ItemCost, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("order has no line items to cost")
	}
	if resolve == nil {
		resolve = ResolverFromMap(nil)
	}

	avgRate := AverageExchangeRate(payments, fallbackRate)

	paymentsTotal := decimal.Zero
	commissionsTotal := decimal.Zero
	for _, p := range payments {
		paymentsTotal = paymentsTotal.Add(p.AmountRD()).Sub(p.BankCommission)
		commissionsTotal = commissionsTotal.Add(p.BankCommission)
	}
	logisticsTotal := decimal.Zero
	for _, e := range expenses {
		logisticsTotal = logisticsTotal.Add(e.OrderShareRD)
	}

	paymentShares := DistributeCost(items, paymentsTotal, resolve(CostTypePayments), avgRate)
	logisticsShares := DistributeCost(items, logisticsTotal, resolve(CostTypeLogistics), avgRate)
	commissionShares := DistributeCost(items, commissionsTotal, resolve(CostTypeCommissions), avgRate)

	costs := make([]ItemCost, len(items))
	for i, it := range items {
		qty := decimal.NewFromInt(int64(it.Quantity))
		fobUnit := it.UnitPriceUSD.Mul(avgRate)
		unit := fobUnit.
			Add(paymentShares[i].UnitCost).
			Add(logisticsShares[i].UnitCost).
			Add(commissionShares[i].UnitCost)
		costs[i] = ItemCost{
			ItemID:            it.ID,
			SKU:               it.SKU,
			Name:              it.Name,
			Quantity:          it.Quantity,
			FOBUnitRD:         fobUnit,
			PaymentsUnitRD:    paymentShares[i].UnitCost,
			LogisticsUnitRD:   logisticsShares[i].UnitCost,
			CommissionsUnitRD: commissionShares[i].UnitCost,
			UnitCostRD:        unit,
			TotalCostRD:       unit.Mul(qty),
		}
	}
	return costs, nil
}

// ReceptionUnitCost picks the unit cost to freeze on a reception. With a
// specific item it is that item's exact landed unit cost; without one (mixed
// or legacy lot) it is the quantity-weighted average across the whole order:
// Σ(unitCost × qty) / Σ(qty).
func ReceptionUnitCost(costs []ItemCost, itemID *int) (decimal.Decimal, error) {
	if len(costs) == 0 {
		return decimal.Zero, fmt.Errorf("no item costs to derive a reception cost from")
	}
	if itemID != nil {
		for _, c := range costs {
			if c.ItemID == *itemID {
				return c.UnitCostRD, nil
			}
		}
		return decimal.Zero, fmt.Errorf("item %d does not belong to the costed order", *itemID)
	}

	totalCost := decimal.Zero
	totalQty := decimal.Zero
	for _, c := range costs {
		qty := decimal.NewFromInt(int64(c.Quantity))
		totalCost = totalCost.Add(c.UnitCostRD.Mul(qty))
		totalQty = totalQty.Add(qty)
	}
	return totalCost.Div(totalQty), nil
}
