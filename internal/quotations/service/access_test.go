package service

import (
	"regexp"
	"testing"
	"time"

	"cotizador_backend/internal/quotations/repository"
	"cotizador_backend/internal/quotations/transport"
	"cotizador_backend/platform/apperr"
	"cotizador_backend/platform/password"
)

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func codeProtectedQuotation(t *testing.T, plain string, expiresAt *time.Time) *repository.Quotation {
	t.Helper()
	hash, err := password.Hash(plain, password.DefaultCost)
	if err != nil {
		t.Fatalf("hash code: %v", err)
	}
	return &repository.Quotation{
		AccessMode:     string(transport.AccessModeCode),
		AccessCodeHash: &hash,
		CodeExpiresAt:  expiresAt,
	}
}

func TestVerifyAccessPublicNeedsNoCode(t *testing.T) {
	q := &repository.Quotation{AccessMode: string(transport.AccessModePublic)}
	if err := verifyAccess(q, "", testNow); err != nil {
		t.Fatalf("expected public quotation to open without a code, got %v", err)
	}
}

func TestVerifyAccessRequiresCode(t *testing.T) {
	q := codeProtectedQuotation(t, "cedar2026#a3f1", nil)
	err := verifyAccess(q, "", testNow)
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized for missing code, got %v", err)
	}
}

func TestVerifyAccessRejectsWrongCode(t *testing.T) {
	q := codeProtectedQuotation(t, "cedar2026#a3f1", nil)
	err := verifyAccess(q, "wrong-code", testNow)
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized for wrong code, got %v", err)
	}
}

func TestVerifyAccessAcceptsCorrectCode(t *testing.T) {
	expiry := testNow.Add(time.Hour)
	q := codeProtectedQuotation(t, "cedar2026#a3f1", &expiry)
	if err := verifyAccess(q, "cedar2026#a3f1", testNow); err != nil {
		t.Fatalf("expected correct code to open the quotation, got %v", err)
	}
}

func TestVerifyAccessExpiryBoundary(t *testing.T) {
	expiry := testNow
	q := codeProtectedQuotation(t, "cedar2026#a3f1", &expiry)

	// One instant before the boundary the code still works.
	if err := verifyAccess(q, "cedar2026#a3f1", testNow.Add(-time.Nanosecond)); err != nil {
		t.Fatalf("expected code to be valid just before expiry, got %v", err)
	}

	// At the boundary the code no longer opens the quotation.
	err := verifyAccess(q, "cedar2026#a3f1", testNow)
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized at expiry instant, got %v", err)
	}
}

func TestVerifyAccessExpiryWinsOverCorrectCode(t *testing.T) {
	expiry := testNow.Add(-time.Hour)
	q := codeProtectedQuotation(t, "cedar2026#a3f1", &expiry)

	err := verifyAccess(q, "cedar2026#a3f1", testNow)
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected an expired code to be rejected even when correct, got %v", err)
	}
	if err.Error() != "access code has expired" {
		t.Fatalf("expected the expiry message, got %q", err.Error())
	}
}

func TestResolveCodeExpiryDefaultsToFifteenDays(t *testing.T) {
	expiresAt := resolveCodeExpiry("", testNow)
	if expiresAt == nil || !expiresAt.Equal(testNow.Add(15*24*time.Hour)) {
		t.Fatalf("expected default 15d expiry, got %v", expiresAt)
	}
}

func TestResolveCodeExpiryTokens(t *testing.T) {
	cases := map[string]time.Duration{
		"7d":  7 * 24 * time.Hour,
		"15d": 15 * 24 * time.Hour,
		"30d": 30 * 24 * time.Hour,
	}

	for token, d := range cases {
		expiresAt := resolveCodeExpiry(token, testNow)
		if expiresAt == nil || !expiresAt.Equal(testNow.Add(d)) {
			t.Fatalf("token %q: expected %v, got %v", token, testNow.Add(d), expiresAt)
		}
	}
}

func TestResolveCodeExpiryIndefinite(t *testing.T) {
	if expiresAt := resolveCodeExpiry("indefinite", testNow); expiresAt != nil {
		t.Fatalf("expected no expiry for indefinite codes, got %v", expiresAt)
	}
}

func TestResolveCodeExpiryUnknownTokenFallsBack(t *testing.T) {
	expiresAt := resolveCodeExpiry("90d", testNow)
	if expiresAt == nil || !expiresAt.Equal(testNow.Add(15*24*time.Hour)) {
		t.Fatalf("expected unknown token to fall back to 15d, got %v", expiresAt)
	}
}

func TestGenerateAccessCodeShape(t *testing.T) {
	pattern := regexp.MustCompile(`^[a-z]+2026[!#$%&*+?@-][0-9a-f]{4}$`)

	for i := 0; i < 20; i++ {
		code, err := generateAccessCode(2026)
		if err != nil {
			t.Fatalf("generate access code: %v", err)
		}
		if !pattern.MatchString(code) {
			t.Fatalf("unexpected code shape: %q", code)
		}
	}
}
