package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry is one persisted audit record. Payload holds the full event as JSON.
type Entry struct {
	ID         uuid.UUID `db:"id"`
	EventName  string    `db:"event_name"`
	Payload    []byte    `db:"payload"`
	OccurredAt time.Time `db:"occurred_at"`
	CreatedAt  time.Time `db:"created_at"`
}

// Repository provides database operations for the audit trail
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new audit repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert appends an audit entry. The trail is append-only.
func (r *Repository) Insert(ctx context.Context, e *Entry) error {
	query := `
		INSERT INTO audit_events (id, event_name, payload, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.pool.Exec(ctx, query,
		e.ID, e.EventName, e.Payload, e.OccurredAt, e.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// ListRecent returns the newest audit entries, optionally filtered by event name.
func (r *Repository) ListRecent(ctx context.Context, eventName string, limit int) ([]Entry, error) {
	var nameParam interface{}
	if eventName != "" {
		nameParam = eventName
	}

	query := `
		SELECT id, event_name, payload, occurred_at, created_at
		FROM audit_events
		WHERE ($1::text IS NULL OR event_name = $1)
		ORDER BY occurred_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, nameParam, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.EventName, &e.Payload, &e.OccurredAt, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit entries: %w", err)
	}
	return entries, nil
}
