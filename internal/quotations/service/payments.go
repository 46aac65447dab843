package service

import (
	"context"

	"cotizador_backend/internal/events"
	"cotizador_backend/internal/quotations/repository"
	"cotizador_backend/internal/quotations/transport"

	"github.com/google/uuid"
)

// RecordPayment appends an immutable payment to the quotation's ledger.
// Any status accepts payments; overpayment is rejected inside the repository
// transaction, and a payment that settles the full total moves an Approved
// quotation to Completed in the same transaction. Other statuses record the
// payment without a status change.
func (s *Service) RecordPayment(ctx context.Context, actorID uuid.UUID, id uuid.UUID, req transport.RecordPaymentRequest) (*transport.RecordPaymentResponse, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	status := transport.QuotationStatus(q.Status)

	now := s.now()
	paidAt := now
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}

	params := repository.RecordPaymentParams{
		QuotationID: id,
		AmountCents: req.AmountCents,
		Method:      string(req.Method),
		Reference:   nilIfEmpty(req.Reference),
		Notes:       nilIfEmpty(req.Notes),
		PaidAt:      paidAt,
	}
	if autoCompletes(status) {
		params.CompleteFrom = string(status)
		params.CompleteTo = string(transport.QuotationStatusCompleted)
	}

	payment, totals, err := s.repo.RecordPayment(ctx, params)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.PaymentRecorded{
		BaseEvent:      events.NewBaseEvent(),
		PaymentID:      payment.ID,
		QuotationID:    q.ID,
		Folio:          q.Folio,
		AmountCents:    payment.AmountCents,
		Method:         payment.Method,
		TotalPaidCents: totals.TotalPaidCents,
		RemainingCents: totals.RemainingCents,
		FullyPaid:      totals.FullyPaid,
		ActorID:        actorID,
	})

	finalStatus := status
	if totals.StatusChanged {
		finalStatus = transport.QuotationStatusCompleted
		s.bus.Publish(ctx, events.QuotationStatusChanged{
			BaseEvent:   events.NewBaseEvent(),
			QuotationID: q.ID,
			Folio:       q.Folio,
			FromStatus:  totals.FromStatus,
			ToStatus:    string(finalStatus),
			Automatic:   true,
			ActorID:     actorID,
		})
	}

	return &transport.RecordPaymentResponse{
		Payment: toPaymentResponse(payment),
		Summary: buildPaymentSummary(totals.TotalCents, totals.TotalPaidCents),
		Status:  finalStatus,
	}, nil
}

// PaymentHistory returns the ledger entries with their aggregate summary.
func (s *Service) PaymentHistory(ctx context.Context, id uuid.UUID) (*transport.PaymentHistoryResponse, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	payments, err := s.repo.ListPayments(ctx, id)
	if err != nil {
		return nil, err
	}

	items := make([]transport.PaymentResponse, len(payments))
	var paid int64
	for i := range payments {
		items[i] = toPaymentResponse(&payments[i])
		paid += payments[i].AmountCents
	}

	return &transport.PaymentHistoryResponse{
		Payments: items,
		Summary:  buildPaymentSummary(q.TotalCents, paid),
	}, nil
}

// autoCompletes reports whether full payment flips the status automatically.
// Only a status with a legal edge to Completed qualifies; every other status
// records the payment and stays put.
func autoCompletes(status transport.QuotationStatus) bool {
	return canTransition(status, transport.QuotationStatusCompleted)
}

// buildPaymentSummary derives the aggregate ledger view. The percentage is
// integer math rounded half up and capped at 100 even while a rounding
// artifact would push it over.
func buildPaymentSummary(totalCents, paidCents int64) transport.PaymentSummary {
	summary := transport.PaymentSummary{
		TotalCents:     totalCents,
		TotalPaidCents: paidCents,
		RemainingCents: totalCents - paidCents,
		IsFullyPaid:    totalCents > 0 && paidCents >= totalCents,
	}
	if summary.RemainingCents < 0 {
		summary.RemainingCents = 0
	}
	if totalCents > 0 {
		pct := (paidCents*100 + totalCents/2) / totalCents
		if pct > 100 {
			pct = 100
		}
		summary.PercentPaid = int(pct)
	}
	return summary
}

func toPaymentResponse(p *repository.Payment) transport.PaymentResponse {
	return transport.PaymentResponse{
		ID:          p.ID,
		QuotationID: p.QuotationID,
		AmountCents: p.AmountCents,
		Method:      transport.PaymentMethod(p.Method),
		Reference:   p.Reference,
		Notes:       p.Notes,
		PaidAt:      p.PaidAt,
		CreatedAt:   p.CreatedAt,
	}
}
