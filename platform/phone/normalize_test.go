package phone

import "testing"

func TestNormalizeE164MexicanNumber(t *testing.T) {
	got := NormalizeE164("55 1234 5678")
	if got != "+525512345678" {
		t.Fatalf("expected +525512345678, got %q", got)
	}
}

func TestNormalizeE164KeepsInternationalPrefix(t *testing.T) {
	got := NormalizeE164("+52 55 1234 5678")
	if got != "+525512345678" {
		t.Fatalf("expected +525512345678, got %q", got)
	}
}

func TestNormalizeE164InvalidInputPassesThrough(t *testing.T) {
	got := NormalizeE164("  not-a-number  ")
	if got != "not-a-number" {
		t.Fatalf("expected trimmed input back, got %q", got)
	}
}

func TestNormalizeE164Empty(t *testing.T) {
	if got := NormalizeE164("   "); got != "" {
		t.Fatalf("expected empty result, got %q", got)
	}
}
