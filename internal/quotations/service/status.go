package service

import (
	"context"
	"fmt"

	"cotizador_backend/internal/events"
	"cotizador_backend/internal/quotations/transport"
	"cotizador_backend/platform/apperr"

	"github.com/google/uuid"
)

// transitions is the complete workflow graph. A status maps to the set of
// statuses it may move to; anything not listed is rejected. Completed and
// Rejected are terminal.
var transitions = map[transport.QuotationStatus][]transport.QuotationStatus{
	transport.QuotationStatusDraft: {
		transport.QuotationStatusPending,
	},
	transport.QuotationStatusPending: {
		transport.QuotationStatusApproved,
		transport.QuotationStatusRejected,
		transport.QuotationStatusRevision,
	},
	transport.QuotationStatusRevision: {
		transport.QuotationStatusPending,
	},
	transport.QuotationStatusApproved: {
		transport.QuotationStatusCompleted,
	},
	transport.QuotationStatusRejected:  {},
	transport.QuotationStatusCompleted: {},
}

// canTransition reports whether the move from one status to another is legal.
func canTransition(from, to transport.QuotationStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// availableTransitions returns the legal next statuses for the given status.
// Unknown statuses and terminal statuses both return an empty slice.
func availableTransitions(from transport.QuotationStatus) []transport.QuotationStatus {
	next := transitions[from]
	out := make([]transport.QuotationStatus, len(next))
	copy(out, next)
	return out
}

// AvailableTransitions returns the legal next statuses for a quotation.
func (s *Service) AvailableTransitions(ctx context.Context, id uuid.UUID) (*transport.TransitionsResponse, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	status := transport.QuotationStatus(q.Status)
	return &transport.TransitionsResponse{
		Status:    status,
		Available: availableTransitions(status),
	}, nil
}

// ChangeStatus applies a workflow transition. The write is guarded on the
// status the caller observed, so two concurrent transitions cannot both land.
func (s *Service) ChangeStatus(ctx context.Context, actorID uuid.UUID, id uuid.UUID, target transport.QuotationStatus) (*transport.StatusChangeResponse, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := transport.QuotationStatus(q.Status)
	if from == target {
		return nil, apperr.Conflict(fmt.Sprintf("quotation is already %s", target))
	}
	if !canTransition(from, target) {
		return nil, apperr.Conflict(fmt.Sprintf("cannot transition quotation from %s to %s", from, target))
	}

	now := s.now()
	if err := s.repo.UpdateStatusIf(ctx, id, string(from), string(target), now); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.QuotationStatusChanged{
		BaseEvent:   events.NewBaseEvent(),
		QuotationID: q.ID,
		Folio:       q.Folio,
		FromStatus:  string(from),
		ToStatus:    string(target),
		Automatic:   false,
		ActorID:     actorID,
	})

	return &transport.StatusChangeResponse{
		ID:        q.ID,
		Folio:     q.Folio,
		Status:    target,
		ChangedAt: now,
	}, nil
}
