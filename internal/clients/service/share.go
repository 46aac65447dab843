package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"cotizador_backend/internal/clients/repository"
	"cotizador_backend/internal/clients/transport"
	"cotizador_backend/internal/events"
	"cotizador_backend/platform/apperr"

	"github.com/google/uuid"
)

const defaultMaxUses = 1

// shareGrantStore is the slice of the repository the redemption path uses.
type shareGrantStore interface {
	GetShareGrantByHash(ctx context.Context, codeHash string) (*repository.ShareGrant, error)
	RedeemShareGrant(ctx context.Context, grantID, redeemerID uuid.UUID, now time.Time) (*repository.ShareGrant, error)
}

// IssueShareCode creates a share grant for a client and returns the plaintext
// code exactly once. Only the SHA-256 digest is stored; the digest doubles as
// the lookup key during redemption.
func (s *Service) IssueShareCode(ctx context.Context, actorID uuid.UUID, clientID uuid.UUID, req transport.CreateShareGrantRequest) (*transport.ShareCodeIssued, error) {
	if _, err := s.repo.GetByID(ctx, clientID); err != nil {
		return nil, err
	}

	maxUses := req.MaxUses
	if maxUses == 0 {
		maxUses = defaultMaxUses
	}

	now := s.now()
	var expiresAt *time.Time
	if req.TTLHours > 0 {
		t := now.Add(time.Duration(req.TTLHours) * time.Hour)
		expiresAt = &t
	}

	plain, err := generateShareCode()
	if err != nil {
		return nil, fmt.Errorf("generate share code: %w", err)
	}

	grant := repository.ShareGrant{
		ID:         uuid.New(),
		ClientID:   clientID,
		CodeHash:   hashShareCode(plain),
		Permission: string(req.Permission),
		MaxUses:    maxUses,
		UseCount:   0,
		ExpiresAt:  expiresAt,
		CreatedBy:  actorID,
		CreatedAt:  now,
	}

	if err := s.repo.CreateShareGrant(ctx, &grant); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.ShareGrantIssued{
		BaseEvent:  events.NewBaseEvent(),
		GrantID:    grant.ID,
		ClientID:   grant.ClientID,
		Permission: grant.Permission,
		ExpiresAt:  grant.ExpiresAt,
		MaxUses:    grant.MaxUses,
		ActorID:    actorID,
	})

	return &transport.ShareCodeIssued{
		Grant:     toShareGrantResponse(&grant),
		PlainCode: plain,
	}, nil
}

// ListShareGrants returns the share grants on a client, newest first.
func (s *Service) ListShareGrants(ctx context.Context, clientID uuid.UUID) ([]transport.ShareGrantResponse, error) {
	if _, err := s.repo.GetByID(ctx, clientID); err != nil {
		return nil, err
	}

	grants, err := s.repo.ListShareGrants(ctx, clientID)
	if err != nil {
		return nil, err
	}

	out := make([]transport.ShareGrantResponse, len(grants))
	for i := range grants {
		out[i] = toShareGrantResponse(&grants[i])
	}
	return out, nil
}

// RevokeShareGrant invalidates a grant immediately. Access already redeemed
// through it is untouched.
func (s *Service) RevokeShareGrant(ctx context.Context, grantID uuid.UUID) error {
	return s.repo.RevokeShareGrant(ctx, grantID, s.now())
}

// RedeemShareCode consumes one use of a share code and grants the redeemer
// the code's permission on the client. A code matching no grant is not found;
// expired, revoked and exhausted codes are gone: the caller learns the code
// existed but no longer works.
func (s *Service) RedeemShareCode(ctx context.Context, redeemerID uuid.UUID, req transport.RedeemShareCodeRequest) (*transport.RedeemShareCodeResponse, error) {
	redeemed, err := redeemShareCode(ctx, s.repo, s.now(), redeemerID, req.Code)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.ShareGrantRedeemed{
		BaseEvent:  events.NewBaseEvent(),
		GrantID:    redeemed.ID,
		ClientID:   redeemed.ClientID,
		Permission: redeemed.Permission,
		RedeemerID: redeemerID,
		UseCount:   redeemed.UseCount,
		MaxUses:    redeemed.MaxUses,
	})

	return &transport.RedeemShareCodeResponse{
		ClientID:      redeemed.ClientID,
		Permission:    transport.Permission(redeemed.Permission),
		UsesRemaining: redeemed.MaxUses - redeemed.UseCount,
	}, nil
}

// redeemShareCode resolves the code and consumes one use. An unknown code
// surfaces the store's not-found error unchanged; expiry is checked before
// the use counter is touched.
func redeemShareCode(ctx context.Context, store shareGrantStore, now time.Time, redeemerID uuid.UUID, code string) (*repository.ShareGrant, error) {
	grant, err := store.GetShareGrantByHash(ctx, hashShareCode(code))
	if err != nil {
		return nil, err
	}

	if grant.ExpiresAt != nil && !now.Before(*grant.ExpiresAt) {
		return nil, apperr.Gone("share code has expired")
	}

	return store.RedeemShareGrant(ctx, grant.ID, redeemerID, now)
}

// generateShareCode produces a 16-character code in four dash-separated
// groups, e.g. "K7QM-9F2X-1QLZ-8T3V". Entropy comes from crypto/rand.
func generateShareCode() (string, error) {
	raw := make([]byte, 10)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}

	encoded := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(raw)
	var b strings.Builder
	for i := 0; i < 16; i += 4 {
		if i > 0 {
			b.WriteByte('-')
		}
		b.WriteString(encoded[i : i+4])
	}
	return b.String(), nil
}

// hashShareCode derives the storage digest for a share code. Codes are
// case-insensitive on input.
func hashShareCode(code string) string {
	sum := sha256.Sum256([]byte(strings.ToUpper(strings.TrimSpace(code))))
	return hex.EncodeToString(sum[:])
}

func toShareGrantResponse(g *repository.ShareGrant) transport.ShareGrantResponse {
	return transport.ShareGrantResponse{
		ID:         g.ID,
		ClientID:   g.ClientID,
		Permission: transport.Permission(g.Permission),
		MaxUses:    g.MaxUses,
		UseCount:   g.UseCount,
		ExpiresAt:  g.ExpiresAt,
		RevokedAt:  g.RevokedAt,
		CreatedAt:  g.CreatedAt,
	}
}
