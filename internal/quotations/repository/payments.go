package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cotizador_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RecordPayment inserts a payment inside a transaction that locks the
// quotation row. The lock serializes the read-sum-then-insert sequence, so
// two concurrent payments cannot both pass the overpayment check. When the
// payment settles the total exactly and the quotation sits in CompleteFrom,
// the status moves to CompleteTo in the same transaction.
func (r *Repository) RecordPayment(ctx context.Context, p RecordPaymentParams) (*Payment, *PaymentTotals, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status string
	var totalCents int64
	err = tx.QueryRow(ctx,
		`SELECT status, total_cents FROM quotations WHERE id = $1 FOR UPDATE`,
		p.QuotationID,
	).Scan(&status, &totalCents)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperr.NotFound(quotationNotFoundMsg)
		}
		return nil, nil, fmt.Errorf("failed to lock quotation: %w", err)
	}

	var paidCents int64
	if err := tx.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM payments WHERE quotation_id = $1`,
		p.QuotationID,
	).Scan(&paidCents); err != nil {
		return nil, nil, fmt.Errorf("failed to sum payments: %w", err)
	}

	if p.AmountCents+paidCents > totalCents {
		return nil, nil, apperr.Conflict("payment amount exceeds the remaining balance")
	}

	now := time.Now()
	payment := Payment{
		ID:          uuid.New(),
		QuotationID: p.QuotationID,
		AmountCents: p.AmountCents,
		Method:      p.Method,
		Reference:   p.Reference,
		Notes:       p.Notes,
		PaidAt:      p.PaidAt,
		CreatedAt:   now,
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO payments (id, quotation_id, amount_cents, method, reference, notes, paid_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		payment.ID, payment.QuotationID, payment.AmountCents, payment.Method,
		payment.Reference, payment.Notes, payment.PaidAt, payment.CreatedAt,
	); err != nil {
		return nil, nil, fmt.Errorf("failed to insert payment: %w", err)
	}

	totals := PaymentTotals{
		TotalCents:     totalCents,
		TotalPaidCents: paidCents + p.AmountCents,
		FromStatus:     status,
	}
	totals.RemainingCents = totalCents - totals.TotalPaidCents
	totals.FullyPaid = totals.TotalPaidCents == totalCents

	if totals.FullyPaid && p.CompleteFrom != "" && status == p.CompleteFrom {
		if _, err := tx.Exec(ctx,
			`UPDATE quotations SET status = $2, updated_at = $3 WHERE id = $1`,
			p.QuotationID, p.CompleteTo, now,
		); err != nil {
			return nil, nil, fmt.Errorf("failed to complete quotation: %w", err)
		}
		totals.StatusChanged = true
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit payment: %w", err)
	}

	return &payment, &totals, nil
}

// ListPayments returns all payments for a quotation, newest first.
func (r *Repository) ListPayments(ctx context.Context, quotationID uuid.UUID) ([]Payment, error) {
	query := `
		SELECT id, quotation_id, amount_cents, method, reference, notes, paid_at, created_at
		FROM payments WHERE quotation_id = $1
		ORDER BY paid_at DESC, created_at DESC`

	rows, err := r.pool.Query(ctx, query, quotationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(
			&p.ID, &p.QuotationID, &p.AmountCents, &p.Method,
			&p.Reference, &p.Notes, &p.PaidAt, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}
	return payments, nil
}

// SumPayments returns the total paid against a quotation.
func (r *Repository) SumPayments(ctx context.Context, quotationID uuid.UUID) (int64, error) {
	var paidCents int64
	if err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM payments WHERE quotation_id = $1`,
		quotationID,
	).Scan(&paidCents); err != nil {
		return 0, fmt.Errorf("failed to sum payments: %w", err)
	}
	return paidCents, nil
}
