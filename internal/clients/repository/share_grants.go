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

// ShareGrant is the database model for a client share code. CodeHash is the
// SHA-256 digest of the plaintext code; the plaintext is never stored.
type ShareGrant struct {
	ID         uuid.UUID  `db:"id"`
	ClientID   uuid.UUID  `db:"client_id"`
	CodeHash   string     `db:"code_hash"`
	Permission string     `db:"permission"`
	MaxUses    int        `db:"max_uses"`
	UseCount   int        `db:"use_count"`
	ExpiresAt  *time.Time `db:"expires_at"`
	RevokedAt  *time.Time `db:"revoked_at"`
	CreatedBy  uuid.UUID  `db:"created_by"`
	CreatedAt  time.Time  `db:"created_at"`
}

// ClientAccess is an association granting a user a permission on a client.
// GrantID is cleared when the originating grant is purged; the access stays.
type ClientAccess struct {
	ClientID   uuid.UUID  `db:"client_id"`
	UserID     uuid.UUID  `db:"user_id"`
	Permission string     `db:"permission"`
	GrantID    *uuid.UUID `db:"grant_id"`
	CreatedAt  time.Time  `db:"created_at"`
}

const grantNotFoundMsg = "share code not found"

const shareGrantColumns = `id, client_id, code_hash, permission, max_uses, use_count,
		expires_at, revoked_at, created_by, created_at`

// CreateShareGrant inserts a new share grant.
func (r *Repository) CreateShareGrant(ctx context.Context, g *ShareGrant) error {
	query := `
		INSERT INTO share_grants (
			id, client_id, code_hash, permission, max_uses, use_count,
			expires_at, revoked_at, created_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	if _, err := r.pool.Exec(ctx, query,
		g.ID, g.ClientID, g.CodeHash, g.Permission, g.MaxUses, g.UseCount,
		g.ExpiresAt, g.RevokedAt, g.CreatedBy, g.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert share grant: %w", err)
	}
	return nil
}

func scanShareGrant(row pgx.Row) (*ShareGrant, error) {
	var g ShareGrant
	err := row.Scan(
		&g.ID, &g.ClientID, &g.CodeHash, &g.Permission, &g.MaxUses, &g.UseCount,
		&g.ExpiresAt, &g.RevokedAt, &g.CreatedBy, &g.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(grantNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to scan share grant: %w", err)
	}
	return &g, nil
}

// GetShareGrantByHash looks a grant up by its code digest.
func (r *Repository) GetShareGrantByHash(ctx context.Context, codeHash string) (*ShareGrant, error) {
	query := `SELECT ` + shareGrantColumns + ` FROM share_grants WHERE code_hash = $1`
	return scanShareGrant(r.pool.QueryRow(ctx, query, codeHash))
}

// ListShareGrants returns all grants for a client, newest first.
func (r *Repository) ListShareGrants(ctx context.Context, clientID uuid.UUID) ([]ShareGrant, error) {
	query := `SELECT ` + shareGrantColumns + ` FROM share_grants WHERE client_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list share grants: %w", err)
	}
	defer rows.Close()

	var grants []ShareGrant
	for rows.Next() {
		var g ShareGrant
		if err := rows.Scan(
			&g.ID, &g.ClientID, &g.CodeHash, &g.Permission, &g.MaxUses, &g.UseCount,
			&g.ExpiresAt, &g.RevokedAt, &g.CreatedBy, &g.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan share grant: %w", err)
		}
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate share grants: %w", err)
	}
	return grants, nil
}

// RevokeShareGrant marks a grant revoked. Revoking an already revoked grant
// is a no-op that still succeeds.
func (r *Repository) RevokeShareGrant(ctx context.Context, id uuid.UUID, now time.Time) error {
	query := `UPDATE share_grants SET revoked_at = COALESCE(revoked_at, $2) WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id, now)
	if err != nil {
		return fmt.Errorf("failed to revoke share grant: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(grantNotFoundMsg)
	}
	return nil
}

// RedeemShareGrant consumes one use of the grant and records the redeemer's
// access in the same transaction. The use counter is advanced with a guarded
// update, so concurrent redemptions of the last use cannot both succeed.
func (r *Repository) RedeemShareGrant(ctx context.Context, grantID, redeemerID uuid.UUID, now time.Time) (*ShareGrant, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE share_grants
		SET use_count = use_count + 1
		WHERE id = $1 AND revoked_at IS NULL AND use_count < max_uses
		RETURNING ` + shareGrantColumns

	grant, err := scanShareGrant(tx.QueryRow(ctx, query, grantID))
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			// The guarded update matched nothing: the grant is gone, revoked
			// or a concurrent redemption took the last use.
			if current, getErr := r.GetShareGrantByID(ctx, grantID); getErr == nil {
				if current.RevokedAt != nil {
					return nil, apperr.Gone("share code has been revoked")
				}
				return nil, apperr.Gone("share code has no remaining uses")
			}
			return nil, apperr.NotFound(grantNotFoundMsg)
		}
		return nil, err
	}

	accessQuery := `
		INSERT INTO client_access (client_id, user_id, permission, grant_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (client_id, user_id) DO UPDATE SET permission = $3, grant_id = $4`

	if _, err := tx.Exec(ctx, accessQuery,
		grant.ClientID, redeemerID, grant.Permission, grant.ID, now,
	); err != nil {
		return nil, fmt.Errorf("failed to record client access: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit redemption: %w", err)
	}
	return grant, nil
}

// GetShareGrantByID retrieves a grant by its ID
func (r *Repository) GetShareGrantByID(ctx context.Context, id uuid.UUID) (*ShareGrant, error) {
	query := `SELECT ` + shareGrantColumns + ` FROM share_grants WHERE id = $1`
	return scanShareGrant(r.pool.QueryRow(ctx, query, id))
}

// ListAccess returns the access associations for a client.
func (r *Repository) ListAccess(ctx context.Context, clientID uuid.UUID) ([]ClientAccess, error) {
	query := `
		SELECT client_id, user_id, permission, grant_id, created_at
		FROM client_access WHERE client_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list client access: %w", err)
	}
	defer rows.Close()

	var access []ClientAccess
	for rows.Next() {
		var a ClientAccess
		if err := rows.Scan(&a.ClientID, &a.UserID, &a.Permission, &a.GrantID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan client access: %w", err)
		}
		access = append(access, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate client access: %w", err)
	}
	return access, nil
}

// PurgeShareGrants deletes revoked or expired grants older than the cutoff.
// Redeemed access associations survive; only the codes themselves go away.
func (r *Repository) PurgeShareGrants(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM share_grants
		WHERE (revoked_at IS NOT NULL AND revoked_at < $1)
			OR (expires_at IS NOT NULL AND expires_at < $1)`

	result, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge share grants: %w", err)
	}
	return result.RowsAffected(), nil
}
