package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// CostAnalysisRow is one product's current landed-cost breakdown, computed on
// demand from today's payments, expenses, and configuration. Unlike reception
// costs these are never frozen.
type CostAnalysisRow struct {
	OrderCode string `json:"orden"`
	ItemCost
}

// CostAnalysisReport aggregates the per-product breakdowns for the cost
// analysis view.
type CostAnalysisReport struct {
	Rows              []CostAnalysisRow `json:"filas"`
	TotalProducts     int               `json:"total_productos"`
	TotalUnits        int               `json:"total_unidades"`
	TotalInvestmentRD decimal.Decimal   `json:"inversion_total_rd"`
	AverageUnitCostRD decimal.Decimal   `json:"costo_unitario_promedio_rd"`
}

// InventoryRow is received stock per warehouse and product, valued at the
// frozen reception costs.
type InventoryRow struct {
	Warehouse   string          `json:"almacen"`
	SKU         string          `json:"sku"`
	Name        string          `json:"nombre"`
	QtyReceived int             `json:"cantidad_recibida"`
	ValueRD     decimal.Decimal `json:"valor_rd"`
}

// ReportingService provides read-only cost and inventory views. It never
// mutates persisted records.
type ReportingService interface {
	// CostAnalysis computes the current landed-cost breakdown per product,
	// for one order (code non-nil) or across all active orders.
	CostAnalysis(ctx context.Context, orderCode *string) (*CostAnalysisReport, error)

	// InventorySummary totals received stock by warehouse and product.
	// Receptions not tied to a line item are skipped silently.
	InventorySummary(ctx context.Context) ([]InventoryRow, error)
}

type reportingService struct {
	pool         *pgxpool.Pool
	fallbackRate decimal.Decimal
}

func NewReportingService(pool *pgxpool.Pool, fallbackRate decimal.Decimal) ReportingService {
	return &reportingService{pool: pool, fallbackRate: fallbackRate}
}

func (s *reportingService) CostAnalysis(ctx context.Context, orderCode *string) (*CostAnalysisReport, error) {
	var orders []Order
	if orderCode != nil {
		order, err := fetchOrderByCode(ctx, s.pool, *orderCode)
		if err != nil {
			return nil, err
		}
		orders = []Order{*order}
	} else {
		all, err := NewOrderService(s.pool).ListOrders(ctx)
		if err != nil {
			return nil, err
		}
		orders = all
	}

	resolve, err := activeMethods(ctx, s.pool)
	if err != nil {
		return nil, err
	}

	report := &CostAnalysisReport{Rows: []CostAnalysisRow{}}
	totalUnits := decimal.Zero
	for _, order := range orders {
		items, err := fetchOrderItems(ctx, s.pool, order.ID)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			// Orders saved before line items were mandatory; nothing to cost.
			continue
		}
		payments, err := fetchPaymentsForOrder(ctx, s.pool, order.ID)
		if err != nil {
			return nil, err
		}
		expenses, err := fetchExpensesForOrder(ctx, s.pool, order.ID)
		if err != nil {
			return nil, err
		}

		costs, err := ComputeItemCosts(items, payments, expenses, resolve, s.fallbackRate)
		if err != nil {
			return nil, fmt.Errorf("cost order %s: %w", order.Code, err)
		}
		for _, c := range costs {
			report.Rows = append(report.Rows, CostAnalysisRow{OrderCode: order.Code, ItemCost: c})
			report.TotalProducts++
			report.TotalUnits += c.Quantity
			report.TotalInvestmentRD = report.TotalInvestmentRD.Add(c.TotalCostRD)
			totalUnits = totalUnits.Add(decimal.NewFromInt(int64(c.Quantity)))
		}
	}

	if !totalUnits.IsZero() {
		report.AverageUnitCostRD = report.TotalInvestmentRD.Div(totalUnits)
	}
	return report, nil
}

func (s *reportingService) InventorySummary(ctx context.Context) ([]InventoryRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT r.warehouse, oi.sku, oi.name, SUM(r.quantity), SUM(r.total_cost_rd)
		FROM receptions r
		JOIN order_items oi ON oi.id = r.order_item_id
		GROUP BY r.warehouse, oi.sku, oi.name
		ORDER BY r.warehouse, oi.sku
	`)
	if err != nil {
		return nil, fmt.Errorf("query inventory summary: %w", err)
	}
	defer rows.Close()

	var out []InventoryRow
	for rows.Next() {
		var row InventoryRow
		if err := rows.Scan(&row.Warehouse, &row.SKU, &row.Name, &row.QtyReceived, &row.ValueRD); err != nil {
			return nil, fmt.Errorf("scan inventory row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
