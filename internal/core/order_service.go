package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// OrderItemInput holds the fields required to create or replace an order line.
type OrderItemInput struct {
	SKU           string
	Name          string
	Quantity      int
	UnitPriceUSD  decimal.Decimal
	UnitWeightKg  *decimal.Decimal
	UnitVolumeCBM *decimal.Decimal
}

// OrderInput holds the header fields for creating or updating an order.
type OrderInput struct {
	Supplier       string
	OrderDate      string // YYYY-MM-DD
	Category       string
	LotDescription string
	Items          []OrderItemInput
}

// OrderService provides purchase order lifecycle operations.
type OrderService interface {
	// CreateOrder creates an order with at least one validated line item and
	// assigns it the next ORD code.
	CreateOrder(ctx context.Context, in OrderInput) (*Order, error)

	// GetOrder returns an active order with its line items, by code.
	GetOrder(ctx context.Context, code string) (*Order, error)

	// ListOrders returns all active orders, newest first, without items.
	ListOrders(ctx context.Context) ([]Order, error)

	// UpdateOrder replaces the order header and its full item set. Items that
	// already have receptions cannot shrink below the received quantity.
	UpdateOrder(ctx context.Context, code string, in OrderInput) (*Order, error)

	// DeleteOrder soft-deletes an order. Its rows stay for history; dependent
	// payments, expenses and receptions are left untouched.
	DeleteOrder(ctx context.Context, code string) error
}

type orderService struct {
	pool *pgxpool.Pool
}

// NewOrderService constructs an OrderService backed by PostgreSQL.
func NewOrderService(pool *pgxpool.Pool) OrderService {
	return &orderService{pool: pool}
}

// validateOrderInput checks header and line fields and computes each line's
// subtotal. Returns *ValidationError on the first problem found.
func validateOrderInput(in OrderInput) ([]OrderItem, error) {
	if in.Supplier == "" {
		return nil, validationErrorf("proveedor", "supplier is required")
	}
	if _, err := time.Parse("2006-01-02", in.OrderDate); err != nil {
		return nil, validationErrorf("fecha_orden", "invalid order date %q, want YYYY-MM-DD", in.OrderDate)
	}
	if len(in.Items) == 0 {
		return nil, validationErrorf("items", "order must have at least one line item")
	}

	items := make([]OrderItem, len(in.Items))
	seen := make(map[string]bool, len(in.Items))
	for i, li := range in.Items {
		if li.SKU == "" {
			return nil, validationErrorf("items", "line %d: sku is required", i+1)
		}
		if seen[li.SKU] {
			return nil, validationErrorf("items", "line %d: duplicate sku %s", i+1, li.SKU)
		}
		seen[li.SKU] = true
		if li.Name == "" {
			return nil, validationErrorf("items", "line %d: name is required", i+1)
		}
		if li.Quantity <= 0 {
			return nil, validationErrorf("items", "line %d: quantity must be > 0, got %d", i+1, li.Quantity)
		}
		if !li.UnitPriceUSD.IsPositive() {
			return nil, validationErrorf("items", "line %d: unit price must be > 0, got %s", i+1, li.UnitPriceUSD)
		}
		if li.UnitWeightKg != nil && li.UnitWeightKg.IsNegative() {
			return nil, validationErrorf("items", "line %d: unit weight cannot be negative", i+1)
		}
		if li.UnitVolumeCBM != nil && li.UnitVolumeCBM.IsNegative() {
			return nil, validationErrorf("items", "line %d: unit volume cannot be negative", i+1)
		}
		subtotal := li.UnitPriceUSD.Mul(decimal.NewFromInt(int64(li.Quantity)))
		if subtotal.GreaterThan(MaxItemSubtotalUSD) {
			return nil, validationErrorf("items",
				"line %d: subtotal US$%s exceeds the US$%s ceiling, check quantity and price",
				i+1, subtotal, MaxItemSubtotalUSD)
		}
		items[i] = OrderItem{
			SKU:           li.SKU,
			Name:          li.Name,
			Quantity:      li.Quantity,
			UnitPriceUSD:  li.UnitPriceUSD,
			SubtotalUSD:   subtotal,
			UnitWeightKg:  li.UnitWeightKg,
			UnitVolumeCBM: li.UnitVolumeCBM,
		}
	}
	return items, nil
}

func (s *orderService) CreateOrder(ctx context.Context, in OrderInput) (*Order, error) {
	items, err := validateOrderInput(in)
	if err != nil {
		return nil, err
	}

	tx, err := beginSerialized(ctx, s.pool)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	code, err := nextCode(ctx, tx, PrefixOrder)
	if err != nil {
		return nil, err
	}

	order := &Order{
		Code:           code,
		Supplier:       in.Supplier,
		OrderDate:      in.OrderDate,
		Category:       in.Category,
		LotDescription: in.LotDescription,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (code, supplier, order_date, category, lot_description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, code, in.Supplier, in.OrderDate, in.Category, in.LotDescription).
		Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	order.Items, err = insertItems(ctx, tx, order.ID, items)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit order: %w", asContention(err))
	}
	return order, nil
}

func insertItems(ctx context.Context, tx pgx.Tx, orderID int, items []OrderItem) ([]OrderItem, error) {
	for i := range items {
		items[i].OrderID = orderID
		err := tx.QueryRow(ctx, `
			INSERT INTO order_items (order_id, sku, name, quantity, unit_price_usd, subtotal_usd, unit_weight_kg, unit_volume_cbm)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id
		`, orderID, items[i].SKU, items[i].Name, items[i].Quantity,
			items[i].UnitPriceUSD, items[i].SubtotalUSD, items[i].UnitWeightKg, items[i].UnitVolumeCBM).
			Scan(&items[i].ID)
		if err != nil {
			return nil, fmt.Errorf("insert item %s: %w", items[i].SKU, err)
		}
	}
	return items, nil
}

func (s *orderService) GetOrder(ctx context.Context, code string) (*Order, error) {
	order, err := fetchOrderByCode(ctx, s.pool, code)
	if err != nil {
		return nil, err
	}
	order.Items, err = fetchOrderItems(ctx, s.pool, order.ID)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// querier covers both pgxpool.Pool and pgx.Tx for shared read helpers.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func fetchOrderByCode(ctx context.Context, q querier, code string) (*Order, error) {
	var o Order
	err := q.QueryRow(ctx, `
		SELECT id, code, supplier, to_char(order_date, 'YYYY-MM-DD'), category, lot_description, created_at, updated_at
		FROM orders
		WHERE code = $1 AND deleted_at IS NULL
	`, code).Scan(&o.ID, &o.Code, &o.Supplier, &o.OrderDate, &o.Category, &o.LotDescription, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %s: %w", code, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch order %s: %w", code, err)
	}
	return &o, nil
}

func fetchOrderItems(ctx context.Context, q querier, orderID int) ([]OrderItem, error) {
	rows, err := q.Query(ctx, `
		SELECT id, order_id, sku, name, quantity, unit_price_usd, subtotal_usd, unit_weight_kg, unit_volume_cbm
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.SKU, &it.Name, &it.Quantity,
			&it.UnitPriceUSD, &it.SubtotalUSD, &it.UnitWeightKg, &it.UnitVolumeCBM); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *orderService) ListOrders(ctx context.Context) ([]Order, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, code, supplier, to_char(order_date, 'YYYY-MM-DD'), category, lot_description, created_at, updated_at
		FROM orders
		WHERE deleted_at IS NULL
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.Code, &o.Supplier, &o.OrderDate, &o.Category,
			&o.LotDescription, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (s *orderService) UpdateOrder(ctx context.Context, code string, in OrderInput) (*Order, error) {
	items, err := validateOrderInput(in)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	order, err := fetchOrderByCode(ctx, tx, code)
	if err != nil {
		return nil, err
	}

	// Existing items that have receptions must survive the replacement with
	// at least the received quantity, or history stops adding up.
	received, err := receivedBySKU(ctx, tx, order.ID)
	if err != nil {
		return nil, err
	}
	newQty := make(map[string]int, len(items))
	for _, it := range items {
		newQty[it.SKU] = it.Quantity
	}
	for sku, recv := range received {
		if recv == 0 {
			continue
		}
		if q, ok := newQty[sku]; !ok {
			return nil, validationErrorf("items", "cannot remove %s: %d units already received", sku, recv)
		} else if q < recv {
			return nil, validationErrorf("items", "cannot set %s quantity to %d: %d units already received", sku, q, recv)
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE orders
		SET supplier = $1, order_date = $2, category = $3, lot_description = $4, updated_at = NOW()
		WHERE id = $5
	`, in.Supplier, in.OrderDate, in.Category, in.LotDescription, order.ID)
	if err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}

	// Replace the item set, keeping row IDs stable for SKUs that survive so
	// receptions pointing at them stay valid.
	if err := replaceItems(ctx, tx, order.ID, items); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit order update: %w", err)
	}

	return s.GetOrder(ctx, code)
}

// receivedBySKU sums reception quantities per item SKU for an order.
func receivedBySKU(ctx context.Context, q querier, orderID int) (map[string]int, error) {
	rows, err := q.Query(ctx, `
		SELECT oi.sku, COALESCE(SUM(r.quantity), 0)
		FROM order_items oi
		LEFT JOIN receptions r ON r.order_item_id = oi.id
		WHERE oi.order_id = $1
		GROUP BY oi.sku
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query received quantities: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var sku string
		var qty int
		if err := rows.Scan(&sku, &qty); err != nil {
			return nil, fmt.Errorf("scan received quantity: %w", err)
		}
		out[sku] = qty
	}
	return out, rows.Err()
}

func replaceItems(ctx context.Context, tx pgx.Tx, orderID int, items []OrderItem) error {
	existing, err := fetchOrderItems(ctx, tx, orderID)
	if err != nil {
		return err
	}
	bySKU := make(map[string]OrderItem, len(existing))
	for _, it := range existing {
		bySKU[it.SKU] = it
	}

	keep := make(map[int]bool, len(items))
	for i := range items {
		if old, ok := bySKU[items[i].SKU]; ok {
			keep[old.ID] = true
			_, err := tx.Exec(ctx, `
				UPDATE order_items
				SET name = $1, quantity = $2, unit_price_usd = $3, subtotal_usd = $4,
				    unit_weight_kg = $5, unit_volume_cbm = $6
				WHERE id = $7
			`, items[i].Name, items[i].Quantity, items[i].UnitPriceUSD, items[i].SubtotalUSD,
				items[i].UnitWeightKg, items[i].UnitVolumeCBM, old.ID)
			if err != nil {
				return fmt.Errorf("update item %s: %w", items[i].SKU, err)
			}
			continue
		}
		if _, err := insertItems(ctx, tx, orderID, items[i:i+1]); err != nil {
			return err
		}
	}

	for _, old := range existing {
		if keep[old.ID] {
			continue
		}
		if _, err := tx.Exec(ctx, "DELETE FROM order_items WHERE id = $1", old.ID); err != nil {
			return fmt.Errorf("delete item %s: %w", old.SKU, err)
		}
	}
	return nil
}

func (s *orderService) DeleteOrder(ctx context.Context, code string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE orders SET deleted_at = NOW(), updated_at = NOW()
		WHERE code = $1 AND deleted_at IS NULL
	`, code)
	if err != nil {
		return fmt.Errorf("delete order %s: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %s: %w", code, ErrNotFound)
	}
	return nil
}
