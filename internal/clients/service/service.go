package service

import (
	"context"
	"time"

	"cotizador_backend/internal/clients/repository"
	"cotizador_backend/internal/clients/transport"
	"cotizador_backend/internal/events"
	"cotizador_backend/platform/phone"

	"github.com/google/uuid"
)

// Service provides business logic for clients and share codes
type Service struct {
	repo *repository.Repository
	bus  events.Bus
	now  func() time.Time
}

// New creates a new clients service
func New(repo *repository.Repository, bus events.Bus) *Service {
	return &Service{repo: repo, bus: bus, now: time.Now}
}

// SetClock overrides the time source for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Create creates a new client. Phone numbers are normalized to E.164 before
// storage; an unparseable number is kept as entered.
func (s *Service) Create(ctx context.Context, req transport.CreateClientRequest) (*transport.ClientResponse, error) {
	now := s.now()
	c := repository.Client{
		ID:        uuid.New(),
		Name:      req.Name,
		Email:     nilIfEmpty(req.Email),
		Phone:     nilIfEmpty(phone.NormalizeE164(req.Phone)),
		Company:   nilIfEmpty(req.Company),
		Notes:     nilIfEmpty(req.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, &c); err != nil {
		return nil, err
	}
	return toClientResponse(&c), nil
}

// GetByID retrieves a client by ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*transport.ClientResponse, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toClientResponse(c), nil
}

// Update applies partial changes to a client record.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateClientRequest) (*transport.ClientResponse, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Email != nil {
		c.Email = nilIfEmpty(*req.Email)
	}
	if req.Phone != nil {
		c.Phone = nilIfEmpty(phone.NormalizeE164(*req.Phone))
	}
	if req.Company != nil {
		c.Company = nilIfEmpty(*req.Company)
	}
	if req.Notes != nil {
		c.Notes = nilIfEmpty(*req.Notes)
	}
	c.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return toClientResponse(c), nil
}

// List retrieves clients with search and pagination
func (s *Service) List(ctx context.Context, req transport.ListClientsRequest) (*transport.ClientListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	clients, total, err := s.repo.List(ctx, req.Search, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	items := make([]transport.ClientResponse, len(clients))
	for i := range clients {
		items[i] = *toClientResponse(&clients[i])
	}

	return &transport.ClientListResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Delete removes a client without quotations.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// ListAccess returns the users holding access on a client.
func (s *Service) ListAccess(ctx context.Context, clientID uuid.UUID) ([]transport.ClientAccessResponse, error) {
	if _, err := s.repo.GetByID(ctx, clientID); err != nil {
		return nil, err
	}

	access, err := s.repo.ListAccess(ctx, clientID)
	if err != nil {
		return nil, err
	}

	out := make([]transport.ClientAccessResponse, len(access))
	for i, a := range access {
		out[i] = transport.ClientAccessResponse{
			UserID:     a.UserID,
			Permission: transport.Permission(a.Permission),
			GrantID:    a.GrantID,
			CreatedAt:  a.CreatedAt,
		}
	}
	return out, nil
}

func toClientResponse(c *repository.Client) *transport.ClientResponse {
	return &transport.ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Company:   c.Company,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
