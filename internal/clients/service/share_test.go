package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"cotizador_backend/internal/clients/repository"
	"cotizador_backend/platform/apperr"

	"github.com/google/uuid"
)

func TestGenerateShareCodeShape(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z2-7]{4}-[A-Z2-7]{4}-[A-Z2-7]{4}-[A-Z2-7]{4}$`)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		code, err := generateShareCode()
		if err != nil {
			t.Fatalf("generate share code: %v", err)
		}
		if !pattern.MatchString(code) {
			t.Fatalf("unexpected code shape: %q", code)
		}
		if seen[code] {
			t.Fatalf("duplicate code generated: %q", code)
		}
		seen[code] = true
	}
}

func TestHashShareCodeIsCaseInsensitive(t *testing.T) {
	upper := hashShareCode("K7QM-9F2X-1QLZ-8T3V")
	lower := hashShareCode("k7qm-9f2x-1qlz-8t3v")
	padded := hashShareCode("  K7QM-9F2X-1QLZ-8T3V  ")

	if upper != lower {
		t.Fatal("expected case-insensitive digests to match")
	}
	if upper != padded {
		t.Fatal("expected surrounding whitespace to be ignored")
	}
}

func TestHashShareCodeDistinguishesCodes(t *testing.T) {
	if hashShareCode("AAAA-BBBB-CCCC-DDDD") == hashShareCode("AAAA-BBBB-CCCC-DDDE") {
		t.Fatal("expected different codes to produce different digests")
	}
}

type fakeGrantStore struct {
	grant    *repository.ShareGrant
	redeemed *repository.ShareGrant
	calls    int
}

func (f *fakeGrantStore) GetShareGrantByHash(ctx context.Context, codeHash string) (*repository.ShareGrant, error) {
	if f.grant == nil || f.grant.CodeHash != codeHash {
		return nil, apperr.NotFound("share grant not found")
	}
	return f.grant, nil
}

func (f *fakeGrantStore) RedeemShareGrant(ctx context.Context, grantID, redeemerID uuid.UUID, now time.Time) (*repository.ShareGrant, error) {
	f.calls++
	return f.redeemed, nil
}

func TestRedeemShareCodeUnknownCodeIsNotFound(t *testing.T) {
	store := &fakeGrantStore{}

	_, err := redeemShareCode(context.Background(), store, time.Now(), uuid.New(), "AAAA-BBBB-CCCC-DDDD")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for an unknown code, got %v", err)
	}
	if store.calls != 0 {
		t.Fatal("expected no redemption attempt for an unknown code")
	}
}

func TestRedeemShareCodeExpiredIsGone(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	expiry := now.Add(-time.Minute)
	store := &fakeGrantStore{
		grant: &repository.ShareGrant{
			ID:        uuid.New(),
			CodeHash:  hashShareCode("AAAA-BBBB-CCCC-DDDD"),
			ExpiresAt: &expiry,
		},
	}

	_, err := redeemShareCode(context.Background(), store, now, uuid.New(), "AAAA-BBBB-CCCC-DDDD")
	if !apperr.Is(err, apperr.KindGone) {
		t.Fatalf("expected gone for an expired code, got %v", err)
	}
	if store.calls != 0 {
		t.Fatal("expected no redemption attempt for an expired code")
	}
}

func TestRedeemShareCodeConsumesUse(t *testing.T) {
	grant := &repository.ShareGrant{
		ID:       uuid.New(),
		CodeHash: hashShareCode("AAAA-BBBB-CCCC-DDDD"),
		MaxUses:  3,
	}
	store := &fakeGrantStore{
		grant:    grant,
		redeemed: &repository.ShareGrant{ID: grant.ID, MaxUses: 3, UseCount: 1},
	}

	redeemed, err := redeemShareCode(context.Background(), store, time.Now(), uuid.New(), "aaaa-bbbb-cccc-dddd")
	if err != nil {
		t.Fatalf("expected redemption to succeed, got %v", err)
	}
	if store.calls != 1 {
		t.Fatalf("expected exactly one redemption call, got %d", store.calls)
	}
	if redeemed.UseCount != 1 {
		t.Fatalf("expected use count 1, got %d", redeemed.UseCount)
	}
}
