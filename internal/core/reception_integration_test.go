package core_test

import (
	"context"
	"errors"
	"testing"

	"importops/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
)

// seedCostedOrder creates the hand-computed order used by the cost tests:
// WID-01 100 @ $10, GAD-02 300 @ $2, one $2000 payment at 58 with RD$400
// commission, one RD$4000 logistics expense. Unit costs: 880 / 416, weighted
// average 532 (see landed_cost_test.go for the arithmetic).
func seedCostedOrder(t *testing.T, pool *pgxpool.Pool, ctx context.Context) *core.Order {
	t.Helper()
	order := seedOrder(t, core.NewOrderService(pool), ctx)

	if _, err := core.NewPaymentService(pool).RecordPayment(ctx, core.PaymentInput{
		OrderCode:      order.Code,
		Amount:         dec("2000"),
		ExchangeRate:   dec("58"),
		BankCommission: dec("400"),
		PaymentDate:    "2026-01-20",
	}); err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}
	if _, err := core.NewExpenseService(pool).RecordExpense(ctx, core.ExpenseInput{
		Concept:     "Flete marítimo HAI-SDQ",
		AmountRD:    dec("4000"),
		ExpenseDate: "2026-01-25",
		OrderCodes:  []string{order.Code},
	}); err != nil {
		t.Fatalf("RecordExpense failed: %v", err)
	}
	return order
}

func TestReceptionService_FreezesExactItemCost(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	svc := newTestReceptionService(pool)

	order := seedCostedOrder(t, pool, ctx)
	rec, err := svc.CreateReception(ctx, core.ReceptionInput{
		OrderCode: order.Code, ItemSKU: "WID-01", ArrivalDate: "2026-02-01",
		Warehouse: "SD-NORTE", Quantity: 60,
	})
	if err != nil {
		t.Fatalf("CreateReception failed: %v", err)
	}
	if rec.Code != "REC-00001" {
		t.Errorf("reception code: want REC-00001, got %s", rec.Code)
	}
	if !rec.UnitCostRD.Equal(dec("880")) {
		t.Errorf("unit cost: want 880, got %s", rec.UnitCostRD)
	}
	if !rec.TotalCostRD.Equal(dec("52800")) {
		t.Errorf("total cost: want 60×880 = 52800, got %s", rec.TotalCostRD)
	}

	// A later payment must NOT change the frozen cost.
	if _, err := core.NewPaymentService(pool).RecordPayment(ctx, core.PaymentInput{
		OrderCode: order.Code, Amount: dec("5000"), ExchangeRate: dec("61"), PaymentDate: "2026-02-10",
	}); err != nil {
		t.Fatalf("second RecordPayment failed: %v", err)
	}
	frozen, err := svc.GetReception(ctx, rec.Code)
	if err != nil {
		t.Fatalf("GetReception failed: %v", err)
	}
	if !frozen.UnitCostRD.Equal(dec("880")) {
		t.Errorf("frozen cost drifted after new payment: %s", frozen.UnitCostRD)
	}

	// An explicit edit DOES refresh it against current data.
	refreshed, err := svc.UpdateReception(ctx, rec.Code, core.ReceptionInput{
		OrderCode: order.Code, ItemSKU: "WID-01", ArrivalDate: "2026-02-01",
		Warehouse: "SD-NORTE", Quantity: 60,
	})
	if err != nil {
		t.Fatalf("UpdateReception failed: %v", err)
	}
	if refreshed.UnitCostRD.Equal(dec("880")) {
		t.Error("edit should recompute cost with the new payment included")
	}
}

func TestReceptionService_MixedLotUsesWeightedAverage(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	svc := newTestReceptionService(pool)

	order := seedCostedOrder(t, pool, ctx)
	rec, err := svc.CreateReception(ctx, core.ReceptionInput{
		OrderCode: order.Code, ArrivalDate: "2026-02-01", Warehouse: "SD-NORTE", Quantity: 50,
	})
	if err != nil {
		t.Fatalf("CreateReception failed: %v", err)
	}
	if rec.OrderItemID != nil {
		t.Error("mixed-lot reception should have no item link")
	}
	if !rec.UnitCostRD.Equal(dec("532")) {
		t.Errorf("weighted average: want 532, got %s", rec.UnitCostRD)
	}
}

func TestReceptionService_OverReceiptRejected(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	svc := newTestReceptionService(pool)

	order := seedCostedOrder(t, pool, ctx)
	if _, err := svc.CreateReception(ctx, core.ReceptionInput{
		OrderCode: order.Code, ItemSKU: "WID-01", ArrivalDate: "2026-02-01",
		Warehouse: "SD-NORTE", Quantity: 95,
	}); err != nil {
		t.Fatalf("first reception failed: %v", err)
	}

	// 95 received + 10 attempted > 100 ordered.
	_, err := svc.CreateReception(ctx, core.ReceptionInput{
		OrderCode: order.Code, ItemSKU: "WID-01", ArrivalDate: "2026-02-05",
		Warehouse: "SD-NORTE", Quantity: 10,
	})
	var overErr *core.OverReceiptError
	if !errors.As(err, &overErr) {
		t.Fatalf("want OverReceiptError, got %v", err)
	}
	if overErr.Ordered != 100 || overErr.AlreadyReceived != 95 || overErr.Attempted != 10 {
		t.Errorf("error context: %+v", overErr)
	}

	// Exactly completing the order is allowed.
	if _, err := svc.CreateReception(ctx, core.ReceptionInput{
		OrderCode: order.Code, ItemSKU: "WID-01", ArrivalDate: "2026-02-05",
		Warehouse: "SD-NORTE", Quantity: 5,
	}); err != nil {
		t.Fatalf("completing reception failed: %v", err)
	}
}

func TestReceptionService_EditExcludesOwnQuantity(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	svc := newTestReceptionService(pool)

	order := seedCostedOrder(t, pool, ctx)
	rec, err := svc.CreateReception(ctx, core.ReceptionInput{
		OrderCode: order.Code, ItemSKU: "WID-01", ArrivalDate: "2026-02-01",
		Warehouse: "SD-NORTE", Quantity: 80,
	})
	if err != nil {
		t.Fatalf("CreateReception failed: %v", err)
	}

	// 80 already on this reception; raising it to 100 must not double-count
	// the original 80 (80 existing + 100 new would read as 180).
	updated, err := svc.UpdateReception(ctx, rec.Code, core.ReceptionInput{
		OrderCode: order.Code, ItemSKU: "WID-01", ArrivalDate: "2026-02-01",
		Warehouse: "SD-NORTE", Quantity: 100,
	})
	if err != nil {
		t.Fatalf("UpdateReception should exclude own quantity: %v", err)
	}
	if updated.Quantity != 100 {
		t.Errorf("quantity: want 100, got %d", updated.Quantity)
	}

	// But 101 is still one too many.
	if _, err := svc.UpdateReception(ctx, rec.Code, core.ReceptionInput{
		OrderCode: order.Code, ItemSKU: "WID-01", ArrivalDate: "2026-02-01",
		Warehouse: "SD-NORTE", Quantity: 101,
	}); err == nil {
		t.Error("want over-receipt on edit past ordered quantity")
	}
}

func TestReceptionService_UnknownItemRejected(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	svc := newTestReceptionService(pool)

	order := seedCostedOrder(t, pool, ctx)
	_, err := svc.CreateReception(ctx, core.ReceptionInput{
		OrderCode: order.Code, ItemSKU: "NO-SUCH", ArrivalDate: "2026-02-01",
		Warehouse: "SD-NORTE", Quantity: 1,
	})
	var vErr *core.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("want ValidationError for foreign SKU, got %v", err)
	}
}

func TestReportingService_CostAnalysis(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	order := seedCostedOrder(t, pool, ctx)
	report, err := core.NewReportingService(pool, dec("60")).CostAnalysis(ctx, &order.Code)
	if err != nil {
		t.Fatalf("CostAnalysis failed: %v", err)
	}

	if report.TotalProducts != 2 || report.TotalUnits != 400 {
		t.Errorf("aggregates: got products=%d units=%d", report.TotalProducts, report.TotalUnits)
	}
	// 100×880 + 300×416 = 212800; average 532.
	if !report.TotalInvestmentRD.Equal(dec("212800")) {
		t.Errorf("investment: want 212800, got %s", report.TotalInvestmentRD)
	}
	if !report.AverageUnitCostRD.Equal(dec("532")) {
		t.Errorf("average unit cost: want 532, got %s", report.AverageUnitCostRD)
	}
}

func TestDistributionConfigService_SingleActivePerLabel(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	svc := core.NewDistributionConfigService(pool)

	if _, err := svc.SetMethod(ctx, core.CostTypeLogistics, core.MethodWeight); err != nil {
		t.Fatalf("SetMethod failed: %v", err)
	}
	if _, err := svc.SetMethod(ctx, core.CostTypeLogistics, core.MethodVolume); err != nil {
		t.Fatalf("second SetMethod failed: %v", err)
	}

	configs, err := svc.ListConfigs(ctx)
	if err != nil {
		t.Fatalf("ListConfigs failed: %v", err)
	}
	if len(configs) != 1 || configs[0].Method != core.MethodVolume {
		t.Errorf("want one active volumen config, got %+v", configs)
	}

	resolve, err := svc.ActiveMethods(ctx)
	if err != nil {
		t.Fatalf("ActiveMethods failed: %v", err)
	}
	if m := resolve(core.CostTypeLogistics); m != core.MethodVolume {
		t.Errorf("resolver: want volumen, got %s", m)
	}
	if m := resolve(core.CostTypePayments); m != core.MethodUnits {
		t.Errorf("unconfigured label should default to unidades, got %s", m)
	}
}
