package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PaymentInput holds the fields required to record a supplier payment.
type PaymentInput struct {
	OrderCode      string
	Amount         decimal.Decimal
	Currency       string
	ExchangeRate   decimal.Decimal
	BankCommission decimal.Decimal
	PaymentDate    string // YYYY-MM-DD
	Notes          string
}

// PaymentService records and lists payments made against orders.
type PaymentService interface {
	// RecordPayment validates and stores a payment, assigning the next PAG code.
	RecordPayment(ctx context.Context, in PaymentInput) (*Payment, error)

	// ListPayments returns all payments for an order, oldest first.
	ListPayments(ctx context.Context, orderCode string) ([]Payment, error)

	// DeletePayment removes a payment by code. Reception costs frozen while
	// the payment existed are not recomputed.
	DeletePayment(ctx context.Context, code string) error
}

type paymentService struct {
	pool *pgxpool.Pool
}

func NewPaymentService(pool *pgxpool.Pool) PaymentService {
	return &paymentService{pool: pool}
}

func (s *paymentService) RecordPayment(ctx context.Context, in PaymentInput) (*Payment, error) {
	if !in.Amount.IsPositive() {
		return nil, validationErrorf("monto", "payment amount must be > 0, got %s", in.Amount)
	}
	if !in.ExchangeRate.IsPositive() {
		return nil, validationErrorf("tasa_cambio", "exchange rate must be > 0, got %s", in.ExchangeRate)
	}
	if in.BankCommission.IsNegative() {
		return nil, validationErrorf("comision_bancaria", "bank commission cannot be negative")
	}
	if _, err := time.Parse("2006-01-02", in.PaymentDate); err != nil {
		return nil, validationErrorf("fecha_pago", "invalid payment date %q, want YYYY-MM-DD", in.PaymentDate)
	}
	if in.Currency == "" {
		in.Currency = "USD"
	}

	tx, err := beginSerialized(ctx, s.pool)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	order, err := fetchOrderByCode(ctx, tx, in.OrderCode)
	if err != nil {
		return nil, err
	}

	code, err := nextCode(ctx, tx, PrefixPayment)
	if err != nil {
		return nil, err
	}

	p := &Payment{
		Code:           code,
		OrderID:        order.ID,
		Amount:         in.Amount,
		Currency:       in.Currency,
		ExchangeRate:   in.ExchangeRate,
		BankCommission: in.BankCommission,
		PaymentDate:    in.PaymentDate,
		Notes:          in.Notes,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO payments (code, order_id, amount, currency, exchange_rate, bank_commission, payment_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, code, order.ID, in.Amount, in.Currency, in.ExchangeRate, in.BankCommission, in.PaymentDate, in.Notes).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert payment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit payment: %w", asContention(err))
	}
	return p, nil
}

func (s *paymentService) ListPayments(ctx context.Context, orderCode string) ([]Payment, error) {
	order, err := fetchOrderByCode(ctx, s.pool, orderCode)
	if err != nil {
		return nil, err
	}
	return fetchPaymentsForOrder(ctx, s.pool, order.ID)
}

func fetchPaymentsForOrder(ctx context.Context, q querier, orderID int) ([]Payment, error) {
	rows, err := q.Query(ctx, `
		SELECT id, code, order_id, amount, currency, exchange_rate, bank_commission,
		       to_char(payment_date, 'YYYY-MM-DD'), notes, created_at
		FROM payments
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.Code, &p.OrderID, &p.Amount, &p.Currency,
			&p.ExchangeRate, &p.BankCommission, &p.PaymentDate, &p.Notes, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (s *paymentService) DeletePayment(ctx context.Context, code string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM payments WHERE code = $1", code)
	if err != nil {
		return fmt.Errorf("delete payment %s: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment %s: %w", code, ErrNotFound)
	}
	return nil
}
