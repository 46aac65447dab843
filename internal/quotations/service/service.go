package service

import (
	"context"
	"fmt"
	"time"

	"cotizador_backend/internal/events"
	"cotizador_backend/internal/jobs"
	"cotizador_backend/internal/quotations/repository"
	"cotizador_backend/internal/quotations/transport"
	"cotizador_backend/platform/apperr"
	"cotizador_backend/platform/logger"
	"cotizador_backend/platform/password"

	"github.com/google/uuid"
)

// Service provides business logic for quotations
type Service struct {
	repo      *repository.Repository
	bus       events.Bus
	scheduler jobs.ExpiryScheduler // optional — nil means no scheduled expiry
	lockout   *Lockout             // optional — nil means no attempt throttling
	log       *logger.Logger       // optional — used for access-check logging

	bcryptCost int
	now        func() time.Time
}

// New creates a new quotations service
func New(repo *repository.Repository, bus events.Bus) *Service {
	return &Service{
		repo:       repo,
		bus:        bus,
		bcryptCost: password.DefaultCost,
		now:        time.Now,
	}
}

// SetExpiryScheduler injects the background scheduler for access-code expiry.
func (s *Service) SetExpiryScheduler(sched jobs.ExpiryScheduler) {
	s.scheduler = sched
}

// SetLockout injects the failed-verification throttle.
func (s *Service) SetLockout(l *Lockout) {
	s.lockout = l
}

// SetLogger injects the structured logger for access-check logging.
func (s *Service) SetLogger(log *logger.Logger) {
	s.log = log
}

// SetBcryptCost overrides the hashing cost for access codes.
func (s *Service) SetBcryptCost(cost int) {
	s.bcryptCost = cost
}

// SetClock overrides the time source. Tests use this to pin expiry boundaries.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Create creates a new quotation with an atomically generated folio.
// SubmitForReview chooses the workflow entry point.
func (s *Service) Create(ctx context.Context, actorID uuid.UUID, req transport.CreateQuotationRequest) (*transport.QuotationResponse, error) {
	now := s.now()

	folio, err := s.repo.NextFolio(ctx, now.Year())
	if err != nil {
		return nil, fmt.Errorf("generate folio: %w", err)
	}

	status := transport.QuotationStatusDraft
	if req.SubmitForReview {
		status = transport.QuotationStatusPending
	}

	q := repository.Quotation{
		ID:         uuid.New(),
		ClientID:   req.ClientID,
		Folio:      folio,
		Title:      req.Title,
		Status:     string(status),
		TotalCents: req.TotalCents,
		AccessMode: string(transport.AccessModePublic),
		IsVisible:  true,
		Notes:      nilIfEmpty(req.Notes),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, &q); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.QuotationCreated{
		BaseEvent:   events.NewBaseEvent(),
		QuotationID: q.ID,
		Folio:       q.Folio,
		Status:      q.Status,
		TotalCents:  q.TotalCents,
		ActorID:     actorID,
	})

	return toQuotationResponse(&q), nil
}

// GetByID retrieves a quotation by ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*transport.QuotationResponse, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toQuotationResponse(q), nil
}

// Update changes the mutable header fields. Only Draft and Revision
// quotations accept changes; every other status is read-only.
func (s *Service) Update(ctx context.Context, actorID uuid.UUID, id uuid.UUID, req transport.UpdateQuotationRequest) (*transport.QuotationResponse, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !isEditable(q.Status) {
		return nil, apperr.Conflict(fmt.Sprintf("quotation in status %q cannot be edited", q.Status))
	}

	if req.ClientID != nil {
		q.ClientID = *req.ClientID
	}
	if req.Title != nil {
		q.Title = *req.Title
	}
	if req.TotalCents != nil {
		q.TotalCents = *req.TotalCents
	}
	if req.Notes != nil {
		q.Notes = nilIfEmpty(*req.Notes)
	}
	q.UpdatedAt = s.now()

	if err := s.repo.UpdateDetails(ctx, q); err != nil {
		return nil, err
	}
	return toQuotationResponse(q), nil
}

// List retrieves quotations with filtering and pagination
func (s *Service) List(ctx context.Context, req transport.ListQuotationsRequest) (*transport.QuotationListResponse, error) {
	params := repository.ListParams{
		Search:      req.Search,
		VisibleOnly: req.VisibleOnly,
		SortBy:      req.SortBy,
		SortOrder:   req.SortOrder,
		Page:        req.Page,
		PageSize:    req.PageSize,
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}
	if req.Status != "" {
		params.Status = &req.Status
	}
	if req.ClientID != "" {
		clientID, err := uuid.Parse(req.ClientID)
		if err != nil {
			return nil, apperr.BadRequest("invalid client id")
		}
		params.ClientID = &clientID
	}

	result, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	items := make([]transport.QuotationResponse, len(result.Items))
	for i := range result.Items {
		items[i] = *toQuotationResponse(&result.Items[i])
	}

	return &transport.QuotationListResponse{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}, nil
}

// SetVisibility toggles listing visibility. Hiding never revokes direct-link
// access; it only removes the quotation from client-facing listings.
func (s *Service) SetVisibility(ctx context.Context, id uuid.UUID, visible bool) (*transport.QuotationResponse, error) {
	if err := s.repo.SetVisibility(ctx, id, visible, s.now()); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes a quotation. The repository refuses when payments exist.
func (s *Service) Delete(ctx context.Context, actorID uuid.UUID, id uuid.UUID) error {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.bus.Publish(ctx, events.QuotationDeleted{
		BaseEvent:   events.NewBaseEvent(),
		QuotationID: q.ID,
		Folio:       q.Folio,
		ActorID:     actorID,
	})
	return nil
}

// isEditable reports whether the quotation header accepts changes.
func isEditable(status string) bool {
	return status == string(transport.QuotationStatusDraft) ||
		status == string(transport.QuotationStatusRevision)
}

func toQuotationResponse(q *repository.Quotation) *transport.QuotationResponse {
	return &transport.QuotationResponse{
		ID:            q.ID,
		ClientID:      q.ClientID,
		Folio:         q.Folio,
		Title:         q.Title,
		Status:        transport.QuotationStatus(q.Status),
		TotalCents:    q.TotalCents,
		AccessMode:    transport.AccessMode(q.AccessMode),
		HasAccessCode: q.AccessCodeHash != nil,
		CodeExpiresAt: q.CodeExpiresAt,
		IsVisible:     q.IsVisible,
		Notes:         q.Notes,
		CreatedAt:     q.CreatedAt,
		UpdatedAt:     q.UpdatedAt,
	}
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
