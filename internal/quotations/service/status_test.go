package service

import (
	"testing"

	"cotizador_backend/internal/quotations/transport"
)

func TestCanTransitionAllowsWorkflowEdges(t *testing.T) {
	allowed := []struct {
		from, to transport.QuotationStatus
	}{
		{transport.QuotationStatusDraft, transport.QuotationStatusPending},
		{transport.QuotationStatusPending, transport.QuotationStatusApproved},
		{transport.QuotationStatusPending, transport.QuotationStatusRejected},
		{transport.QuotationStatusPending, transport.QuotationStatusRevision},
		{transport.QuotationStatusRevision, transport.QuotationStatusPending},
		{transport.QuotationStatusApproved, transport.QuotationStatusCompleted},
	}

	for _, tc := range allowed {
		if !canTransition(tc.from, tc.to) {
			t.Fatalf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}
}

func TestCanTransitionRejectsIllegalEdges(t *testing.T) {
	rejected := []struct {
		from, to transport.QuotationStatus
	}{
		{transport.QuotationStatusDraft, transport.QuotationStatusApproved},
		{transport.QuotationStatusDraft, transport.QuotationStatusCompleted},
		{transport.QuotationStatusDraft, transport.QuotationStatusRejected},
		{transport.QuotationStatusPending, transport.QuotationStatusCompleted},
		{transport.QuotationStatusPending, transport.QuotationStatusDraft},
		{transport.QuotationStatusRevision, transport.QuotationStatusApproved},
		{transport.QuotationStatusApproved, transport.QuotationStatusRejected},
		{transport.QuotationStatusApproved, transport.QuotationStatusRevision},
	}

	for _, tc := range rejected {
		if canTransition(tc.from, tc.to) {
			t.Fatalf("expected %s -> %s to be rejected", tc.from, tc.to)
		}
	}
}

func TestTerminalStatusesHaveNoTransitions(t *testing.T) {
	for _, status := range []transport.QuotationStatus{
		transport.QuotationStatusRejected,
		transport.QuotationStatusCompleted,
	} {
		if next := availableTransitions(status); len(next) != 0 {
			t.Fatalf("expected %s to be terminal, got transitions %v", status, next)
		}
	}
}

func TestCanTransitionRejectsSelfLoops(t *testing.T) {
	for status := range transitions {
		if canTransition(status, status) {
			t.Fatalf("expected %s -> %s to be rejected", status, status)
		}
	}
}

func TestCanTransitionUnknownStatus(t *testing.T) {
	if canTransition("Archived", transport.QuotationStatusPending) {
		t.Fatal("expected unknown source status to have no transitions")
	}
}

func TestAvailableTransitionsReturnsCopy(t *testing.T) {
	first := availableTransitions(transport.QuotationStatusPending)
	first[0] = "Mutated"

	second := availableTransitions(transport.QuotationStatusPending)
	for _, s := range second {
		if s == "Mutated" {
			t.Fatal("availableTransitions leaked internal state")
		}
	}
}
