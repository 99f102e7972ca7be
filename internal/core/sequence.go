package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Code prefixes for the record types that carry human-readable codes.
const (
	PrefixOrder     = "ORD"
	PrefixPayment   = "PAG"
	PrefixExpense   = "GAS"
	PrefixReception = "REC"
)

// nextCode mints the next sequential code for prefix inside the caller's
// transaction. The upsert keeps the sequence gapless per committed
// transaction: two concurrent requests serialize on the sequence row, and a
// rollback returns the number with the rolled-back work.
//
// Callers opening a transaction specifically to mint a code should use
// beginSerialized so contention surfaces as ErrCodeContention instead of an
// indefinite wait.
func nextCode(ctx context.Context, tx pgx.Tx, prefix string) (string, error) {
	var n int64
	err := tx.QueryRow(ctx, `
		INSERT INTO code_sequences (prefix, last_number)
		VALUES ($1, 1)
		ON CONFLICT (prefix)
		DO UPDATE SET last_number = code_sequences.last_number + 1
		RETURNING last_number
	`, prefix).Scan(&n)
	if err != nil {
		return "", fmt.Errorf("next code for %s: %w", prefix, asContention(err))
	}
	return fmt.Sprintf("%s-%05d", prefix, n), nil
}

// beginSerialized opens a serializable transaction with a bounded lock wait,
// so a request stuck behind a long writer fails fast with a retryable error
// instead of queueing.
func beginSerialized(ctx context.Context, begin interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}) (pgx.Tx, error) {
	tx, err := begin.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	if _, err := tx.Exec(ctx, "SET LOCAL lock_timeout = '3s'"); err != nil {
		_ = tx.Rollback(ctx)
		return nil, fmt.Errorf("set lock timeout: %w", err)
	}
	return tx, nil
}

// asContention maps serialization failures (40001) and lock timeouts (55P03)
// to ErrCodeContention; anything else passes through unchanged.
func asContention(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "40001" || pgErr.Code == "55P03" {
			return fmt.Errorf("%w: %s", ErrCodeContention, pgErr.Message)
		}
	}
	return err
}
