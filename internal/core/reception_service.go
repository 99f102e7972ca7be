package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ReceptionInput holds the fields required to create or update a reception.
// ItemSKU is empty for mixed/legacy lots that are not tied to one line item.
type ReceptionInput struct {
	OrderCode   string
	ItemSKU     string
	ArrivalDate string // YYYY-MM-DD
	Warehouse   string
	Quantity    int
	Notes       string
}

// ReceptionService records goods arriving at warehouses. Creation and update
// run the consistency guard first, then freeze the landed cost computed at
// that moment onto the row. Later payments or expenses on the order do not
// touch frozen costs; only an explicit edit recomputes them.
type ReceptionService interface {
	CreateReception(ctx context.Context, in ReceptionInput) (*Reception, error)
	UpdateReception(ctx context.Context, code string, in ReceptionInput) (*Reception, error)
	GetReception(ctx context.Context, code string) (*Reception, error)
	ListReceptions(ctx context.Context, orderCode string) ([]Reception, error)
	DeleteReception(ctx context.Context, code string) error
}

type receptionService struct {
	pool         *pgxpool.Pool
	fallbackRate decimal.Decimal
	log          *logrus.Logger
}

// NewReceptionService constructs a ReceptionService. fallbackRate is the RD$
// per USD rate used when an order has no payments yet.
func NewReceptionService(pool *pgxpool.Pool, fallbackRate decimal.Decimal, log *logrus.Logger) ReceptionService {
	return &receptionService{pool: pool, fallbackRate: fallbackRate, log: log}
}

func validateReceptionInput(in ReceptionInput) error {
	if in.Quantity <= 0 {
		return validationErrorf("cantidad", "received quantity must be > 0, got %d", in.Quantity)
	}
	if in.Warehouse == "" {
		return validationErrorf("almacen", "warehouse is required")
	}
	if _, err := time.Parse("2006-01-02", in.ArrivalDate); err != nil {
		return validationErrorf("fecha_llegada", "invalid arrival date %q, want YYYY-MM-DD", in.ArrivalDate)
	}
	return nil
}

func (s *receptionService) CreateReception(ctx context.Context, in ReceptionInput) (*Reception, error) {
	if err := validateReceptionInput(in); err != nil {
		return nil, err
	}

	tx, err := beginSerialized(ctx, s.pool)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	prepared, err := s.prepare(ctx, tx, in, 0)
	if err != nil {
		return nil, err
	}

	code, err := nextCode(ctx, tx, PrefixReception)
	if err != nil {
		return nil, err
	}

	r := &Reception{
		Code:        code,
		OrderID:     prepared.orderID,
		OrderItemID: prepared.itemID,
		ArrivalDate: in.ArrivalDate,
		Warehouse:   in.Warehouse,
		Quantity:    in.Quantity,
		UnitCostRD:  prepared.unitCost,
		TotalCostRD: prepared.unitCost.Mul(decimal.NewFromInt(int64(in.Quantity))),
		Notes:       in.Notes,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO receptions (code, order_id, order_item_id, arrival_date, warehouse, quantity, unit_cost_rd, total_cost_rd, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, code, r.OrderID, r.OrderItemID, r.ArrivalDate, r.Warehouse, r.Quantity, r.UnitCostRD, r.TotalCostRD, r.Notes).
		Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert reception: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit reception: %w", asContention(err))
	}
	return r, nil
}

func (s *receptionService) UpdateReception(ctx context.Context, code string, in ReceptionInput) (*Reception, error) {
	if err := validateReceptionInput(in); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	existing, err := fetchReceptionByCode(ctx, tx, code)
	if err != nil {
		return nil, err
	}

	prepared, err := s.prepare(ctx, tx, in, existing.ID)
	if err != nil {
		return nil, err
	}

	r := &Reception{
		ID:          existing.ID,
		Code:        existing.Code,
		OrderID:     prepared.orderID,
		OrderItemID: prepared.itemID,
		ArrivalDate: in.ArrivalDate,
		Warehouse:   in.Warehouse,
		Quantity:    in.Quantity,
		UnitCostRD:  prepared.unitCost,
		TotalCostRD: prepared.unitCost.Mul(decimal.NewFromInt(int64(in.Quantity))),
		Notes:       in.Notes,
		CreatedAt:   existing.CreatedAt,
	}
	err = tx.QueryRow(ctx, `
		UPDATE receptions
		SET order_id = $1, order_item_id = $2, arrival_date = $3, warehouse = $4,
		    quantity = $5, unit_cost_rd = $6, total_cost_rd = $7, notes = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING updated_at
	`, r.OrderID, r.OrderItemID, r.ArrivalDate, r.Warehouse, r.Quantity, r.UnitCostRD, r.TotalCostRD, r.Notes, r.ID).
		Scan(&r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update reception: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit reception update: %w", err)
	}
	return r, nil
}

// preparedReception carries the guard/cost results shared by create and update.
type preparedReception struct {
	orderID  int
	itemID   *int
	unitCost decimal.Decimal
}

// prepare resolves the order and item, runs the consistency guard excluding
// excludeReceptionID (0 on create), and computes the cost to freeze.
func (s *receptionService) prepare(ctx context.Context, tx pgx.Tx, in ReceptionInput, excludeReceptionID int) (*preparedReception, error) {
	order, err := fetchOrderByCode(ctx, tx, in.OrderCode)
	if err != nil {
		return nil, err
	}
	items, err := fetchOrderItems(ctx, tx, order.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("order %s has no line items to receive against", in.OrderCode)
	}

	var itemID *int
	if in.ItemSKU != "" {
		var item *OrderItem
		for i := range items {
			if items[i].SKU == in.ItemSKU {
				item = &items[i]
				break
			}
		}
		if item == nil {
			return nil, validationErrorf("sku", "item %s does not belong to order %s", in.ItemSKU, in.OrderCode)
		}
		itemID = &item.ID

		already, err := receivedForItem(ctx, tx, order.ID, item.ID, excludeReceptionID)
		if err != nil {
			return nil, err
		}
		nearLimit, err := CheckReceptionQuantity(*item, already, in.Quantity)
		if err != nil {
			return nil, err
		}
		if nearLimit {
			s.log.WithFields(logrus.Fields{
				"order":    in.OrderCode,
				"sku":      item.SKU,
				"ordered":  item.Quantity,
				"received": already + in.Quantity,
			}).Warn("reception near ordered quantity limit")
		}
	}

	payments, err := fetchPaymentsForOrder(ctx, tx, order.ID)
	if err != nil {
		return nil, err
	}
	expenses, err := fetchExpensesForOrder(ctx, tx, order.ID)
	if err != nil {
		return nil, err
	}
	resolve, err := activeMethods(ctx, tx)
	if err != nil {
		return nil, err
	}

	costs, err := ComputeItemCosts(items, payments, expenses, resolve, s.fallbackRate)
	if err != nil {
		return nil, fmt.Errorf("cost order %s: %w", in.OrderCode, err)
	}
	unitCost, err := ReceptionUnitCost(costs, itemID)
	if err != nil {
		return nil, fmt.Errorf("cost order %s: %w", in.OrderCode, err)
	}

	return &preparedReception{orderID: order.ID, itemID: itemID, unitCost: unitCost}, nil
}

// receivedForItem sums reception quantities for an (order, item) pair,
// excluding the reception being edited so its old quantity is not counted
// against its own replacement.
func receivedForItem(ctx context.Context, q querier, orderID, itemID, excludeReceptionID int) (int, error) {
	var total int
	err := q.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity), 0)
		FROM receptions
		WHERE order_id = $1 AND order_item_id = $2 AND id <> $3
	`, orderID, itemID, excludeReceptionID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum prior receptions: %w", err)
	}
	return total, nil
}

func (s *receptionService) GetReception(ctx context.Context, code string) (*Reception, error) {
	return fetchReceptionByCode(ctx, s.pool, code)
}

func fetchReceptionByCode(ctx context.Context, q querier, code string) (*Reception, error) {
	var r Reception
	err := q.QueryRow(ctx, `
		SELECT id, code, order_id, order_item_id, to_char(arrival_date, 'YYYY-MM-DD'),
		       warehouse, quantity, unit_cost_rd, total_cost_rd, notes, created_at, updated_at
		FROM receptions
		WHERE code = $1
	`, code).Scan(&r.ID, &r.Code, &r.OrderID, &r.OrderItemID, &r.ArrivalDate,
		&r.Warehouse, &r.Quantity, &r.UnitCostRD, &r.TotalCostRD, &r.Notes, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("reception %s: %w", code, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch reception %s: %w", code, err)
	}
	return &r, nil
}

func (s *receptionService) ListReceptions(ctx context.Context, orderCode string) ([]Reception, error) {
	order, err := fetchOrderByCode(ctx, s.pool, orderCode)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, code, order_id, order_item_id, to_char(arrival_date, 'YYYY-MM-DD'),
		       warehouse, quantity, unit_cost_rd, total_cost_rd, notes, created_at, updated_at
		FROM receptions
		WHERE order_id = $1
		ORDER BY id
	`, order.ID)
	if err != nil {
		return nil, fmt.Errorf("query receptions: %w", err)
	}
	defer rows.Close()

	var receptions []Reception
	for rows.Next() {
		var r Reception
		if err := rows.Scan(&r.ID, &r.Code, &r.OrderID, &r.OrderItemID, &r.ArrivalDate,
			&r.Warehouse, &r.Quantity, &r.UnitCostRD, &r.TotalCostRD, &r.Notes, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan reception: %w", err)
		}
		receptions = append(receptions, r)
	}
	return receptions, rows.Err()
}

func (s *receptionService) DeleteReception(ctx context.Context, code string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM receptions WHERE code = $1", code)
	if err != nil {
		return fmt.Errorf("delete reception %s: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("reception %s: %w", code, ErrNotFound)
	}
	return nil
}
