package core_test

import (
	"context"
	"errors"
	"testing"

	"importops/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
)

func seedOrder(t *testing.T, svc core.OrderService, ctx context.Context) *core.Order {
	t.Helper()
	order, err := svc.CreateOrder(ctx, core.OrderInput{
		Supplier:  "Yiwu Hardware Co.",
		OrderDate: "2026-01-10",
		Category:  "ferreteria",
		Items: []core.OrderItemInput{
			{SKU: "WID-01", Name: "Widget", Quantity: 100, UnitPriceUSD: dec("10"), UnitWeightKg: decPtr("0.5")},
			{SKU: "GAD-02", Name: "Gadget", Quantity: 300, UnitPriceUSD: dec("2")},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	return order
}

func TestOrderService_CreateAndFetch(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	svc := core.NewOrderService(pool)

	order := seedOrder(t, svc, ctx)
	if order.Code != "ORD-00001" {
		t.Errorf("first order code: want ORD-00001, got %s", order.Code)
	}

	fetched, err := svc.GetOrder(ctx, order.Code)
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if len(fetched.Items) != 2 {
		t.Fatalf("want 2 items, got %d", len(fetched.Items))
	}
	if !fetched.Items[0].SubtotalUSD.Equal(dec("1000")) {
		t.Errorf("subtotal: want 1000, got %s", fetched.Items[0].SubtotalUSD)
	}
	if fetched.Items[1].UnitWeightKg != nil {
		t.Errorf("GAD-02 weight should stay null, got %s", fetched.Items[1].UnitWeightKg)
	}

	second := seedOrder(t, svc, ctx)
	if second.Code != "ORD-00002" {
		t.Errorf("second order code: want ORD-00002, got %s", second.Code)
	}
}

func TestOrderService_SoftDelete(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	svc := core.NewOrderService(pool)

	order := seedOrder(t, svc, ctx)
	if err := svc.DeleteOrder(ctx, order.Code); err != nil {
		t.Fatalf("DeleteOrder failed: %v", err)
	}

	if _, err := svc.GetOrder(ctx, order.Code); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("deleted order should be gone, got %v", err)
	}

	// Row must survive for history.
	var count int
	if err := pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM orders WHERE code = $1 AND deleted_at IS NOT NULL", order.Code).Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("soft-deleted row missing, count = %d", count)
	}
}

func TestOrderService_UpdateProtectsReceivedItems(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	svc := core.NewOrderService(pool)
	recSvc := newTestReceptionService(pool)

	order := seedOrder(t, svc, ctx)
	if _, err := recSvc.CreateReception(ctx, core.ReceptionInput{
		OrderCode: order.Code, ItemSKU: "WID-01", ArrivalDate: "2026-02-01",
		Warehouse: "SD-NORTE", Quantity: 40,
	}); err != nil {
		t.Fatalf("CreateReception failed: %v", err)
	}

	// Shrinking below the received quantity must fail.
	_, err := svc.UpdateOrder(ctx, order.Code, core.OrderInput{
		Supplier:  "Yiwu Hardware Co.",
		OrderDate: "2026-01-10",
		Items: []core.OrderItemInput{
			{SKU: "WID-01", Name: "Widget", Quantity: 30, UnitPriceUSD: dec("10")},
		},
	})
	var vErr *core.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("want ValidationError for shrink below received, got %v", err)
	}

	// Shrinking to the received quantity (and dropping an unreceived item) is fine.
	updated, err := svc.UpdateOrder(ctx, order.Code, core.OrderInput{
		Supplier:  "Yiwu Hardware Co.",
		OrderDate: "2026-01-10",
		Items: []core.OrderItemInput{
			{SKU: "WID-01", Name: "Widget", Quantity: 40, UnitPriceUSD: dec("10")},
		},
	})
	if err != nil {
		t.Fatalf("UpdateOrder failed: %v", err)
	}
	if len(updated.Items) != 1 || updated.Items[0].Quantity != 40 {
		t.Errorf("unexpected items after update: %+v", updated.Items)
	}
}

func newTestReceptionService(pool *pgxpool.Pool) core.ReceptionService {
	return core.NewReceptionService(pool, dec("60"), testLogger())
}
