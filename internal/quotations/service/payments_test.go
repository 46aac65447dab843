package service

import (
	"testing"

	"cotizador_backend/internal/quotations/transport"
)

func TestBuildPaymentSummaryPartial(t *testing.T) {
	s := buildPaymentSummary(100000, 60000)
	if s.RemainingCents != 40000 {
		t.Fatalf("expected 40000 remaining, got %d", s.RemainingCents)
	}
	if s.PercentPaid != 60 {
		t.Fatalf("expected 60 percent, got %d", s.PercentPaid)
	}
	if s.IsFullyPaid {
		t.Fatal("expected partial payment not to be fully paid")
	}
}

func TestBuildPaymentSummaryFullyPaid(t *testing.T) {
	s := buildPaymentSummary(100000, 100000)
	if !s.IsFullyPaid {
		t.Fatal("expected fully paid")
	}
	if s.RemainingCents != 0 {
		t.Fatalf("expected zero remaining, got %d", s.RemainingCents)
	}
	if s.PercentPaid != 100 {
		t.Fatalf("expected 100 percent, got %d", s.PercentPaid)
	}
}

func TestBuildPaymentSummaryRoundsHalfUp(t *testing.T) {
	// 1/3 paid rounds to 33, 2/3 to 67.
	if got := buildPaymentSummary(30000, 10000).PercentPaid; got != 33 {
		t.Fatalf("expected 33 percent, got %d", got)
	}
	if got := buildPaymentSummary(30000, 20000).PercentPaid; got != 67 {
		t.Fatalf("expected 67 percent, got %d", got)
	}
}

func TestBuildPaymentSummaryCapsAtHundred(t *testing.T) {
	// 9999/10000 rounds to 100 but must never exceed it.
	if got := buildPaymentSummary(10000, 9999).PercentPaid; got != 100 {
		t.Fatalf("expected capped 100 percent, got %d", got)
	}
}

func TestBuildPaymentSummaryZeroTotal(t *testing.T) {
	s := buildPaymentSummary(0, 0)
	if s.PercentPaid != 0 {
		t.Fatalf("expected 0 percent for zero total, got %d", s.PercentPaid)
	}
	if s.IsFullyPaid {
		t.Fatal("expected zero-total quotation not to report fully paid")
	}
}

func TestAutoCompletesOnlyFromApproved(t *testing.T) {
	if !autoCompletes(transport.QuotationStatusApproved) {
		t.Fatal("expected full payment to complete an Approved quotation")
	}

	for _, status := range []transport.QuotationStatus{
		transport.QuotationStatusDraft,
		transport.QuotationStatusPending,
		transport.QuotationStatusRevision,
		transport.QuotationStatusRejected,
		transport.QuotationStatusCompleted,
	} {
		if autoCompletes(status) {
			t.Fatalf("expected a payment on a %s quotation to leave the status alone", status)
		}
	}
}

func TestIsEditable(t *testing.T) {
	if !isEditable(string(transport.QuotationStatusDraft)) {
		t.Fatal("expected Draft to be editable")
	}
	if !isEditable(string(transport.QuotationStatusRevision)) {
		t.Fatal("expected Revision to be editable")
	}
	if isEditable(string(transport.QuotationStatusApproved)) {
		t.Fatal("expected Approved to be read-only")
	}
	if isEditable(string(transport.QuotationStatusCompleted)) {
		t.Fatal("expected Completed to be read-only")
	}
}
