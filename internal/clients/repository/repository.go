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

// Client is the database model for a client record
type Client struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	Email     *string   `db:"email"`
	Phone     *string   `db:"phone"`
	Company   *string   `db:"company"`
	Notes     *string   `db:"notes"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

const clientNotFoundMsg = "client not found"

// Repository provides database operations for clients and share grants
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new clients repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new client.
func (r *Repository) Create(ctx context.Context, c *Client) error {
	query := `
		INSERT INTO clients (id, name, email, phone, company, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if _, err := r.pool.Exec(ctx, query,
		c.ID, c.Name, c.Email, c.Phone, c.Company, c.Notes, c.CreatedAt, c.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert client: %w", err)
	}
	return nil
}

const clientColumns = `id, name, email, phone, company, notes, created_at, updated_at`

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(clientNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to scan client: %w", err)
	}
	return &c, nil
}

// GetByID retrieves a client by its ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	return scanClient(r.pool.QueryRow(ctx, query, id))
}

// Update updates a client record.
func (r *Repository) Update(ctx context.Context, c *Client) error {
	query := `
		UPDATE clients SET
			name = $2, email = $3, phone = $4, company = $5, notes = $6, updated_at = $7
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query,
		c.ID, c.Name, c.Email, c.Phone, c.Company, c.Notes, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(clientNotFoundMsg)
	}
	return nil
}

// List retrieves clients ordered by name, optionally filtered by a search term
// matched against name, email and company.
func (r *Repository) List(ctx context.Context, search string, limit, offset int) ([]Client, int, error) {
	var searchParam interface{}
	if search != "" {
		searchParam = "%" + search + "%"
	}

	baseQuery := `
		FROM clients
		WHERE ($1::text IS NULL OR name ILIKE $1 OR email ILIKE $1 OR company ILIKE $1)`

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, searchParam).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count clients: %w", err)
	}

	query := `SELECT ` + clientColumns + ` ` + baseQuery + ` ORDER BY name ASC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, searchParam, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate clients: %w", err)
	}

	return clients, total, nil
}

// Delete removes a client. Quotations referencing the client block deletion
// through the foreign key; surface that as a conflict the caller can act on.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	var quotationCount int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM quotations WHERE client_id = $1`, id,
	).Scan(&quotationCount); err != nil {
		return fmt.Errorf("failed to count client quotations: %w", err)
	}
	if quotationCount > 0 {
		return apperr.Conflict("client has quotations and cannot be deleted")
	}

	result, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(clientNotFoundMsg)
	}
	return nil
}
