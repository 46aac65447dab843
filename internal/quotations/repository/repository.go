package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cotizador_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ── Domain Models ─────────────────────────────────────────────────────────────

// Quotation is the database model for a quotation header
type Quotation struct {
	ID             uuid.UUID  `db:"id"`
	ClientID       uuid.UUID  `db:"client_id"`
	Folio          string     `db:"folio"`
	Title          string     `db:"title"`
	Status         string     `db:"status"`
	TotalCents     int64      `db:"total_cents"`
	AccessMode     string     `db:"access_mode"`
	AccessCodeHash *string    `db:"access_code_hash"`
	CodeExpiresAt  *time.Time `db:"code_expires_at"`
	IsVisible      bool       `db:"is_visible"`
	Notes          *string    `db:"notes"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

// Payment is the database model for a payment against a quotation.
// Rows are immutable once inserted.
type Payment struct {
	ID          uuid.UUID `db:"id"`
	QuotationID uuid.UUID `db:"quotation_id"`
	AmountCents int64     `db:"amount_cents"`
	Method      string    `db:"method"`
	Reference   *string   `db:"reference"`
	Notes       *string   `db:"notes"`
	PaidAt      time.Time `db:"paid_at"`
	CreatedAt   time.Time `db:"created_at"`
}

// ListParams contains parameters for listing quotations
type ListParams struct {
	Status      *string
	ClientID    *uuid.UUID
	Search      string
	VisibleOnly bool
	SortBy      string
	SortOrder   string
	Page        int
	PageSize    int
}

// ListResult contains the paginated result of listing quotations
type ListResult struct {
	Items      []Quotation
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// RecordPaymentParams carries everything the payment transaction needs.
// CompleteFrom/CompleteTo describe the automatic transition to apply when the
// payment settles the full total; the legality of that pair is the service's
// transition table, not the repository's concern.
type RecordPaymentParams struct {
	QuotationID  uuid.UUID
	AmountCents  int64
	Method       string
	Reference    *string
	Notes        *string
	PaidAt       time.Time
	CompleteFrom string
	CompleteTo   string
}

// PaymentTotals summarizes the ledger state after a recorded payment.
type PaymentTotals struct {
	TotalCents     int64
	TotalPaidCents int64
	RemainingCents int64
	FullyPaid      bool
	StatusChanged  bool
	FromStatus     string
}

// ── Repository ────────────────────────────────────────────────────────────────

const quotationNotFoundMsg = "quotation not found"

// Repository provides database operations for quotations and their payments
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new quotations repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// NextFolio atomically generates the next folio for the given year.
func (r *Repository) NextFolio(ctx context.Context, year int) (string, error) {
	var nextNum int
	query := `
		INSERT INTO folio_counters (year, last_number)
		VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET last_number = folio_counters.last_number + 1
		RETURNING last_number`

	if err := r.pool.QueryRow(ctx, query, year).Scan(&nextNum); err != nil {
		return "", fmt.Errorf("failed to generate folio: %w", err)
	}

	return fmt.Sprintf("COT-%d-%04d", year, nextNum), nil
}

// Create inserts a new quotation.
func (r *Repository) Create(ctx context.Context, q *Quotation) error {
	query := `
		INSERT INTO quotations (
			id, client_id, folio, title, status, total_cents,
			access_mode, access_code_hash, code_expires_at, is_visible,
			notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	if _, err := r.pool.Exec(ctx, query,
		q.ID, q.ClientID, q.Folio, q.Title, q.Status, q.TotalCents,
		q.AccessMode, q.AccessCodeHash, q.CodeExpiresAt, q.IsVisible,
		q.Notes, q.CreatedAt, q.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert quotation: %w", err)
	}
	return nil
}

const quotationColumns = `id, client_id, folio, title, status, total_cents,
		access_mode, access_code_hash, code_expires_at, is_visible,
		notes, created_at, updated_at`

func scanQuotation(row pgx.Row) (*Quotation, error) {
	var q Quotation
	err := row.Scan(
		&q.ID, &q.ClientID, &q.Folio, &q.Title, &q.Status, &q.TotalCents,
		&q.AccessMode, &q.AccessCodeHash, &q.CodeExpiresAt, &q.IsVisible,
		&q.Notes, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(quotationNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to scan quotation: %w", err)
	}
	return &q, nil
}

// GetByID retrieves a quotation by its ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Quotation, error) {
	query := `SELECT ` + quotationColumns + ` FROM quotations WHERE id = $1`
	return scanQuotation(r.pool.QueryRow(ctx, query, id))
}

// GetByFolio retrieves a quotation by its folio. Hidden quotations are still
// returned: a direct link keeps working after the listing hides them.
func (r *Repository) GetByFolio(ctx context.Context, folio string) (*Quotation, error) {
	query := `SELECT ` + quotationColumns + ` FROM quotations WHERE folio = $1`
	return scanQuotation(r.pool.QueryRow(ctx, query, folio))
}

// UpdateDetails updates the mutable header fields of a quotation.
func (r *Repository) UpdateDetails(ctx context.Context, q *Quotation) error {
	query := `
		UPDATE quotations SET
			client_id = $2, title = $3, total_cents = $4, notes = $5, updated_at = $6
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query,
		q.ID, q.ClientID, q.Title, q.TotalCents, q.Notes, q.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update quotation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(quotationNotFoundMsg)
	}
	return nil
}

// UpdateStatusIf performs a guarded status write: the update only lands when
// the row still holds the expected status, closing the lost-update window
// between a service-level read and the write.
func (r *Repository) UpdateStatusIf(ctx context.Context, id uuid.UUID, expected, target string, now time.Time) error {
	query := `UPDATE quotations SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`
	result, err := r.pool.Exec(ctx, query, id, expected, target, now)
	if err != nil {
		return fmt.Errorf("failed to update quotation status: %w", err)
	}
	if result.RowsAffected() == 0 {
		// Distinguish a missing row from a concurrent transition.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return apperr.Conflict("quotation status changed concurrently")
	}
	return nil
}

// SetVisibility toggles whether the quotation appears in client-facing listings.
func (r *Repository) SetVisibility(ctx context.Context, id uuid.UUID, visible bool, now time.Time) error {
	query := `UPDATE quotations SET is_visible = $2, updated_at = $3 WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id, visible, now)
	if err != nil {
		return fmt.Errorf("failed to update quotation visibility: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(quotationNotFoundMsg)
	}
	return nil
}

// SetAccess writes mode, hash and expiry in one statement so a half-applied
// access state is never observable.
func (r *Repository) SetAccess(ctx context.Context, id uuid.UUID, mode string, codeHash *string, expiresAt *time.Time, now time.Time) error {
	query := `
		UPDATE quotations SET
			access_mode = $2, access_code_hash = $3, code_expires_at = $4, updated_at = $5
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, mode, codeHash, expiresAt, now)
	if err != nil {
		return fmt.Errorf("failed to update quotation access: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(quotationNotFoundMsg)
	}
	return nil
}

// Delete removes a quotation unless payments exist for it.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var paymentCount int
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM payments WHERE quotation_id = $1`, id,
	).Scan(&paymentCount); err != nil {
		return fmt.Errorf("failed to count payments: %w", err)
	}
	if paymentCount > 0 {
		return apperr.Conflict("quotation has recorded payments and cannot be deleted")
	}

	result, err := tx.Exec(ctx, `DELETE FROM quotations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete quotation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(quotationNotFoundMsg)
	}

	return tx.Commit(ctx)
}

// ConfirmCodeExpiry reports whether the code generation scheduled with the
// given expiry is still the active one. Used by the background worker.
func (r *Repository) ConfirmCodeExpiry(ctx context.Context, id uuid.UUID, expiresAt time.Time) (string, bool, error) {
	var folio, mode string
	var current *time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT folio, access_mode, code_expires_at FROM quotations WHERE id = $1`, id,
	).Scan(&folio, &mode, &current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, apperr.NotFound(quotationNotFoundMsg)
		}
		return "", false, fmt.Errorf("failed to load quotation access state: %w", err)
	}

	active := mode == "code" && current != nil && current.Equal(expiresAt)
	return folio, active, nil
}

// List retrieves quotations with filtering and pagination
func (r *Repository) List(ctx context.Context, params ListParams) (*ListResult, error) {
	sortBy, err := resolveSortBy(params.SortBy)
	if err != nil {
		return nil, err
	}
	sortOrder, err := resolveSortOrder(params.SortOrder)
	if err != nil {
		return nil, err
	}

	var searchParam interface{}
	if params.Search != "" {
		searchParam = "%" + params.Search + "%"
	}

	var statusParam interface{}
	if params.Status != nil {
		statusParam = *params.Status
	}

	var clientParam interface{}
	if params.ClientID != nil {
		clientParam = *params.ClientID
	}

	baseQuery := `
		FROM quotations
		WHERE ($1::uuid IS NULL OR client_id = $1)
			AND ($2::text IS NULL OR status = $2)
			AND ($3::text IS NULL OR folio ILIKE $3 OR title ILIKE $3)
			AND ($4::bool = false OR is_visible)
	`
	args := []interface{}{clientParam, statusParam, searchParam, params.VisibleOnly}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count quotations: %w", err)
	}

	totalPages := (total + params.PageSize - 1) / params.PageSize
	offset := (params.Page - 1) * params.PageSize

	selectQuery := `
		SELECT ` + quotationColumns + `
		` + baseQuery + `
		ORDER BY
			CASE WHEN $5 = 'folio' AND $6 = 'asc' THEN folio END ASC,
			CASE WHEN $5 = 'folio' AND $6 = 'desc' THEN folio END DESC,
			CASE WHEN $5 = 'status' AND $6 = 'asc' THEN status END ASC,
			CASE WHEN $5 = 'status' AND $6 = 'desc' THEN status END DESC,
			CASE WHEN $5 = 'total' AND $6 = 'asc' THEN total_cents END ASC,
			CASE WHEN $5 = 'total' AND $6 = 'desc' THEN total_cents END DESC,
			CASE WHEN $5 = 'createdAt' AND $6 = 'asc' THEN created_at END ASC,
			CASE WHEN $5 = 'createdAt' AND $6 = 'desc' THEN created_at END DESC,
			created_at DESC
		LIMIT $7 OFFSET $8`

	args = append(args, sortBy, sortOrder, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotations: %w", err)
	}
	defer rows.Close()

	var items []Quotation
	for rows.Next() {
		var q Quotation
		if err := rows.Scan(
			&q.ID, &q.ClientID, &q.Folio, &q.Title, &q.Status, &q.TotalCents,
			&q.AccessMode, &q.AccessCodeHash, &q.CodeExpiresAt, &q.IsVisible,
			&q.Notes, &q.CreatedAt, &q.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan quotation: %w", err)
		}
		items = append(items, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quotations: %w", err)
	}

	return &ListResult{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	}, nil
}

func resolveSortBy(sortBy string) (string, error) {
	if sortBy == "" {
		return "createdAt", nil
	}
	switch sortBy {
	case "folio", "status", "total", "createdAt":
		return sortBy, nil
	default:
		return "", apperr.BadRequest("invalid sort field")
	}
}

func resolveSortOrder(sortOrder string) (string, error) {
	if sortOrder == "" {
		return "desc", nil
	}
	switch sortOrder {
	case "asc", "desc":
		return sortOrder, nil
	default:
		return "", apperr.BadRequest("invalid sort order")
	}
}
