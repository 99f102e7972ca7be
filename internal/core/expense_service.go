package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ExpenseInput holds the fields required to record a logistics expense.
// OrderCodes lists the orders the expense applies to; the amount is split
// evenly across them when computing each order's logistics total.
type ExpenseInput struct {
	Concept     string
	AmountRD    decimal.Decimal
	ExpenseDate string // YYYY-MM-DD
	Notes       string
	OrderCodes  []string
}

// ExpenseService records freight/customs/handling expenses and links them to
// orders through the expense_orders join.
type ExpenseService interface {
	// RecordExpense validates and stores an expense linked to one or more
	// orders, assigning the next GAS code.
	RecordExpense(ctx context.Context, in ExpenseInput) (*LogisticsExpense, error)

	// ListExpenses returns all expenses with their linked order IDs.
	ListExpenses(ctx context.Context) ([]LogisticsExpense, error)

	// ListExpensesForOrder returns the expenses linked to an order with
	// OrderShareRD set to amount / linked-order count.
	ListExpensesForOrder(ctx context.Context, orderCode string) ([]LogisticsExpense, error)

	// DeleteExpense removes an expense and its order links by code.
	DeleteExpense(ctx context.Context, code string) error
}

type expenseService struct {
	pool *pgxpool.Pool
}

func NewExpenseService(pool *pgxpool.Pool) ExpenseService {
	return &expenseService{pool: pool}
}

func (s *expenseService) RecordExpense(ctx context.Context, in ExpenseInput) (*LogisticsExpense, error) {
	if in.Concept == "" {
		return nil, validationErrorf("concepto", "expense concept is required")
	}
	if !in.AmountRD.IsPositive() {
		return nil, validationErrorf("monto_rd", "expense amount must be > 0, got %s", in.AmountRD)
	}
	if _, err := time.Parse("2006-01-02", in.ExpenseDate); err != nil {
		return nil, validationErrorf("fecha_gasto", "invalid expense date %q, want YYYY-MM-DD", in.ExpenseDate)
	}
	if len(in.OrderCodes) == 0 {
		return nil, validationErrorf("ordenes", "expense must be linked to at least one order")
	}

	tx, err := beginSerialized(ctx, s.pool)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	orderIDs := make([]int, 0, len(in.OrderCodes))
	seen := make(map[string]bool, len(in.OrderCodes))
	for _, oc := range in.OrderCodes {
		if seen[oc] {
			return nil, validationErrorf("ordenes", "duplicate order code %s", oc)
		}
		seen[oc] = true
		order, err := fetchOrderByCode(ctx, tx, oc)
		if err != nil {
			return nil, err
		}
		orderIDs = append(orderIDs, order.ID)
	}

	code, err := nextCode(ctx, tx, PrefixExpense)
	if err != nil {
		return nil, err
	}

	e := &LogisticsExpense{
		Code:        code,
		Concept:     in.Concept,
		AmountRD:    in.AmountRD,
		ExpenseDate: in.ExpenseDate,
		Notes:       in.Notes,
		OrderIDs:    orderIDs,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO logistics_expenses (code, concept, amount_rd, expense_date, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, code, in.Concept, in.AmountRD, in.ExpenseDate, in.Notes).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert expense: %w", err)
	}

	for _, oid := range orderIDs {
		if _, err := tx.Exec(ctx,
			"INSERT INTO expense_orders (expense_id, order_id) VALUES ($1, $2)", e.ID, oid); err != nil {
			return nil, fmt.Errorf("link expense to order %d: %w", oid, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit expense: %w", asContention(err))
	}
	return e, nil
}

func (s *expenseService) ListExpenses(ctx context.Context) ([]LogisticsExpense, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT e.id, e.code, e.concept, e.amount_rd, to_char(e.expense_date, 'YYYY-MM-DD'), e.notes, e.created_at,
		       COALESCE(array_agg(eo.order_id) FILTER (WHERE eo.order_id IS NOT NULL), '{}')
		FROM logistics_expenses e
		LEFT JOIN expense_orders eo ON eo.expense_id = e.id
		GROUP BY e.id
		ORDER BY e.id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []LogisticsExpense
	for rows.Next() {
		var e LogisticsExpense
		if err := rows.Scan(&e.ID, &e.Code, &e.Concept, &e.AmountRD, &e.ExpenseDate,
			&e.Notes, &e.CreatedAt, &e.OrderIDs); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (s *expenseService) ListExpensesForOrder(ctx context.Context, orderCode string) ([]LogisticsExpense, error) {
	order, err := fetchOrderByCode(ctx, s.pool, orderCode)
	if err != nil {
		return nil, err
	}
	return fetchExpensesForOrder(ctx, s.pool, order.ID)
}

// fetchExpensesForOrder returns the expenses linked to orderID. OrderShareRD
// is the even split of the expense across every order it is linked to.
func fetchExpensesForOrder(ctx context.Context, q querier, orderID int) ([]LogisticsExpense, error) {
	rows, err := q.Query(ctx, `
		SELECT e.id, e.code, e.concept, e.amount_rd, to_char(e.expense_date, 'YYYY-MM-DD'), e.notes, e.created_at,
		       (SELECT COUNT(*) FROM expense_orders c WHERE c.expense_id = e.id)
		FROM logistics_expenses e
		JOIN expense_orders eo ON eo.expense_id = e.id
		WHERE eo.order_id = $1
		ORDER BY e.id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order expenses: %w", err)
	}
	defer rows.Close()

	var expenses []LogisticsExpense
	for rows.Next() {
		var e LogisticsExpense
		var linkCount int64
		if err := rows.Scan(&e.ID, &e.Code, &e.Concept, &e.AmountRD, &e.ExpenseDate,
			&e.Notes, &e.CreatedAt, &linkCount); err != nil {
			return nil, fmt.Errorf("scan order expense: %w", err)
		}
		e.OrderShareRD = e.AmountRD.Div(decimal.NewFromInt(linkCount))
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (s *expenseService) DeleteExpense(ctx context.Context, code string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM logistics_expenses WHERE code = $1", code)
	if err != nil {
		return fmt.Errorf("delete expense %s: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("expense %s: %w", code, ErrNotFound)
	}
	return nil
}
