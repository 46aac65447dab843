package transport

import (
	"time"

	"github.com/google/uuid"
)

// Permission is the access level a share code conveys.
type Permission string

const (
	PermissionView Permission = "view"
	PermissionEdit Permission = "edit"
	PermissionFull Permission = "full"
)

// ── Requests ──────────────────────────────────────────────────────────────────

// CreateClientRequest is the request body for creating a client.
type CreateClientRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=300"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"max=30"`
	Company string `json:"company" validate:"max=300"`
	Notes   string `json:"notes" validate:"max=5000"`
}

// UpdateClientRequest is the request body for updating a client.
type UpdateClientRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=300"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Phone   *string `json:"phone" validate:"omitempty,max=30"`
	Company *string `json:"company" validate:"omitempty,max=300"`
	Notes   *string `json:"notes" validate:"omitempty,max=5000"`
}

// ListClientsRequest defines the query parameters for listing clients
type ListClientsRequest struct {
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// CreateShareGrantRequest asks for a new share code on a client.
// MaxUses defaults to 1; zero TTL hours means the code never expires.
type CreateShareGrantRequest struct {
	Permission Permission `json:"permission" validate:"required,oneof=view edit full"`
	MaxUses    int        `json:"maxUses" validate:"omitempty,min=1,max=1000"`
	TTLHours   int        `json:"ttlHours" validate:"omitempty,min=1,max=8760"`
}

// RedeemShareCodeRequest presents a share code for redemption.
type RedeemShareCodeRequest struct {
	Code string `json:"code" validate:"required,min=8,max=100"`
}

// ── Responses ─────────────────────────────────────────────────────────────────

// ClientResponse is the API view of a client record.
type ClientResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Company   *string   `json:"company,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ClientListResponse is the paginated client listing.
type ClientListResponse struct {
	Items    []ClientResponse `json:"items"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
}

// ShareGrantResponse is the API view of a share grant. The code digest never
// leaves the repository.
type ShareGrantResponse struct {
	ID         uuid.UUID  `json:"id"`
	ClientID   uuid.UUID  `json:"clientId"`
	Permission Permission `json:"permission"`
	MaxUses    int        `json:"maxUses"`
	UseCount   int        `json:"useCount"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	RevokedAt  *time.Time `json:"revokedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// ShareCodeIssued carries the plaintext share code exactly once, from the
// creating call only.
type ShareCodeIssued struct {
	Grant     ShareGrantResponse `json:"grant"`
	PlainCode string             `json:"plainCode"`
}

// RedeemShareCodeResponse reports a successful redemption.
type RedeemShareCodeResponse struct {
	ClientID      uuid.UUID  `json:"clientId"`
	Permission    Permission `json:"permission"`
	UsesRemaining int        `json:"usesRemaining"`
}

// ClientAccessResponse is one user's access on a client.
type ClientAccessResponse struct {
	UserID     uuid.UUID  `json:"userId"`
	Permission Permission `json:"permission"`
	GrantID    *uuid.UUID `json:"grantId,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}
