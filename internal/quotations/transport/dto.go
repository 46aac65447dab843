package transport

import (
	"time"

	"github.com/google/uuid"
)

// QuotationStatus defines the lifecycle status of a quotation
type QuotationStatus string

const (
	QuotationStatusDraft     QuotationStatus = "Draft"
	QuotationStatusPending   QuotationStatus = "Pending"
	QuotationStatusRevision  QuotationStatus = "Revision"
	QuotationStatusApproved  QuotationStatus = "Approved"
	QuotationStatusRejected  QuotationStatus = "Rejected"
	QuotationStatusCompleted QuotationStatus = "Completed"
)

// AccessMode defines how the public viewer may open a quotation.
type AccessMode string

const (
	AccessModePublic AccessMode = "public"
	AccessModeCode   AccessMode = "code"
)

// PaymentMethod enumerates accepted payment channels.
type PaymentMethod string

const (
	PaymentMethodTransfer   PaymentMethod = "transfer"
	PaymentMethodCash       PaymentMethod = "cash"
	PaymentMethodCreditCard PaymentMethod = "credit_card"
	PaymentMethodDebitCard  PaymentMethod = "debit_card"
	PaymentMethodCheck      PaymentMethod = "check"
	PaymentMethodPayPal     PaymentMethod = "paypal"
	PaymentMethodCrypto     PaymentMethod = "crypto"
	PaymentMethodOther      PaymentMethod = "other"
)

// ── Requests ──────────────────────────────────────────────────────────────────

// CreateQuotationRequest is the request body for creating a new quotation.
// SubmitForReview controls the workflow entry point: false starts at Draft,
// true starts directly at Pending.
type CreateQuotationRequest struct {
	ClientID        uuid.UUID `json:"clientId" validate:"required"`
	Title           string    `json:"title" validate:"required,min=1,max=500"`
	TotalCents      int64     `json:"totalCents" validate:"min=0"`
	Notes           string    `json:"notes" validate:"max=5000"`
	SubmitForReview bool      `json:"submitForReview"`
}

// UpdateQuotationRequest is the request body for updating a quotation header.
// Only Draft and Revision quotations accept header changes.
type UpdateQuotationRequest struct {
	ClientID   *uuid.UUID `json:"clientId"`
	Title      *string    `json:"title" validate:"omitempty,min=1,max=500"`
	TotalCents *int64     `json:"totalCents" validate:"omitempty,min=0"`
	Notes      *string    `json:"notes" validate:"omitempty,max=5000"`
}

// UpdateStatusRequest is the request body for a status transition.
type UpdateStatusRequest struct {
	Status QuotationStatus `json:"status" validate:"required,oneof=Draft Pending Revision Approved Rejected Completed"`
}

// UpdateVisibilityRequest toggles listing visibility.
type UpdateVisibilityRequest struct {
	IsVisible *bool `json:"isVisible" validate:"required"`
}

// ProtectWithCodeRequest asks for a new access code. Duration is a token
// (7d, 15d, 30d, indefinite); anything unrecognized falls back to 15 days.
// Rotating an existing code invalidates the previous one, so ConfirmRotation
// must be set when the quotation is already code-protected.
type ProtectWithCodeRequest struct {
	Duration        string `json:"duration"`
	ConfirmRotation bool   `json:"confirmRotation"`
}

// RecordPaymentRequest is the request body for recording a payment.
type RecordPaymentRequest struct {
	AmountCents int64         `json:"amountCents" validate:"required,gt=0"`
	Method      PaymentMethod `json:"method" validate:"required,oneof=transfer cash credit_card debit_card check paypal crypto other"`
	Reference   string        `json:"reference" validate:"max=500"`
	Notes       string        `json:"notes" validate:"max=5000"`
	PaidAt      *time.Time    `json:"paidAt"`
}

// ListQuotationsRequest defines the query parameters for listing quotations
type ListQuotationsRequest struct {
	Status      string `form:"status" validate:"omitempty,oneof=Draft Pending Revision Approved Rejected Completed"`
	ClientID    string `form:"clientId"`
	Search      string `form:"search"`
	VisibleOnly bool   `form:"visibleOnly"`
	SortBy      string `form:"sortBy"`
	SortOrder   string `form:"sortOrder"`
	Page        int    `form:"page"`
	PageSize    int    `form:"pageSize"`
}

// ── Responses ─────────────────────────────────────────────────────────────────

// QuotationResponse is the admin-facing view of a quotation. The access-code
// hash never leaves the repository; HasAccessCode stands in for it.
type QuotationResponse struct {
	ID            uuid.UUID       `json:"id"`
	ClientID      uuid.UUID       `json:"clientId"`
	Folio         string          `json:"folio"`
	Title         string          `json:"title"`
	Status        QuotationStatus `json:"status"`
	TotalCents    int64           `json:"totalCents"`
	AccessMode    AccessMode      `json:"accessMode"`
	HasAccessCode bool            `json:"hasAccessCode"`
	CodeExpiresAt *time.Time      `json:"codeExpiresAt,omitempty"`
	IsVisible     bool            `json:"isVisible"`
	Notes         *string         `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// QuotationListResponse is the paginated listing payload.
type QuotationListResponse struct {
	Items      []QuotationResponse `json:"items"`
	Total      int                 `json:"total"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"pageSize"`
	TotalPages int                 `json:"totalPages"`
}

// TransitionsResponse lists the legal next statuses for a quotation.
type TransitionsResponse struct {
	Status    QuotationStatus   `json:"status"`
	Available []QuotationStatus `json:"available"`
}

// StatusChangeResponse confirms an applied transition.
type StatusChangeResponse struct {
	ID        uuid.UUID       `json:"id"`
	Folio     string          `json:"folio"`
	Status    QuotationStatus `json:"status"`
	ChangedAt time.Time       `json:"changedAt"`
}

// AccessCodeIssued carries the plaintext code exactly once, from the
// generating call only. No read endpoint ever returns this type.
type AccessCodeIssued struct {
	PlainCode string     `json:"plainCode"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// PaymentResponse is a single recorded payment.
type PaymentResponse struct {
	ID          uuid.UUID     `json:"id"`
	QuotationID uuid.UUID     `json:"quotationId"`
	AmountCents int64         `json:"amountCents"`
	Method      PaymentMethod `json:"method"`
	Reference   *string       `json:"reference,omitempty"`
	Notes       *string       `json:"notes,omitempty"`
	PaidAt      time.Time     `json:"paidAt"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// PaymentSummary aggregates the ledger state for a quotation.
type PaymentSummary struct {
	TotalCents     int64 `json:"totalCents"`
	TotalPaidCents int64 `json:"totalPaidCents"`
	RemainingCents int64 `json:"remainingCents"`
	PercentPaid    int   `json:"percentPaid"`
	IsFullyPaid    bool  `json:"isFullyPaid"`
}

// RecordPaymentResponse reports the outcome of a recorded payment, including
// the status transition when full payment completed the quotation.
type RecordPaymentResponse struct {
	Payment PaymentResponse `json:"payment"`
	Summary PaymentSummary  `json:"summary"`
	Status  QuotationStatus `json:"status"`
}

// PaymentHistoryResponse is the ledger listing plus its summary.
type PaymentHistoryResponse struct {
	Payments []PaymentResponse `json:"payments"`
	Summary  PaymentSummary    `json:"summary"`
}

// PublicQuotationResponse is the viewer-facing projection. It carries no
// access metadata beyond the mode, and never any hash material.
type PublicQuotationResponse struct {
	Folio      string          `json:"folio"`
	Title      string          `json:"title"`
	Status     QuotationStatus `json:"status"`
	TotalCents int64           `json:"totalCents"`
	Summary    PaymentSummary  `json:"summary"`
	CreatedAt  time.Time       `json:"createdAt"`
}
