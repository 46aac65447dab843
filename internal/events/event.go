// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"cotizador_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Quotation Domain Events
// =============================================================================

// QuotationCreated is published when a new quotation is created.
type QuotationCreated struct {
	BaseEvent
	QuotationID uuid.UUID `json:"quotationId"`
	Folio       string    `json:"folio"`
	Status      string    `json:"status"`
	TotalCents  int64     `json:"totalCents"`
	ActorID     uuid.UUID `json:"actorId"`
}

func (e QuotationCreated) EventName() string { return "quotations.created" }

// QuotationStatusChanged is published on every successful status transition,
// whether requested by an operator or driven by full payment.
type QuotationStatusChanged struct {
	BaseEvent
	QuotationID uuid.UUID `json:"quotationId"`
	Folio       string    `json:"folio"`
	FromStatus  string    `json:"fromStatus"`
	ToStatus    string    `json:"toStatus"`
	Automatic   bool      `json:"automatic"`
	ActorID     uuid.UUID `json:"actorId"`
}

func (e QuotationStatusChanged) EventName() string { return "quotations.status_changed" }

// QuotationAccessChanged is published when a quotation is made public or a
// new access code is set. The plaintext code never rides on an event.
type QuotationAccessChanged struct {
	BaseEvent
	QuotationID uuid.UUID  `json:"quotationId"`
	Folio       string     `json:"folio"`
	AccessMode  string     `json:"accessMode"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	ActorID     uuid.UUID  `json:"actorId"`
}

func (e QuotationAccessChanged) EventName() string { return "quotations.access_changed" }

// QuotationAccessCodeExpired is published by the background worker when a
// scheduled code expiry fires and the code is still the active one.
type QuotationAccessCodeExpired struct {
	BaseEvent
	QuotationID uuid.UUID `json:"quotationId"`
	Folio       string    `json:"folio"`
}

func (e QuotationAccessCodeExpired) EventName() string { return "quotations.access_code_expired" }

// QuotationDeleted is published when a quotation without payments is removed.
type QuotationDeleted struct {
	BaseEvent
	QuotationID uuid.UUID `json:"quotationId"`
	Folio       string    `json:"folio"`
	ActorID     uuid.UUID `json:"actorId"`
}

func (e QuotationDeleted) EventName() string { return "quotations.deleted" }

// PaymentRecorded is published after a payment row is committed.
type PaymentRecorded struct {
	BaseEvent
	PaymentID      uuid.UUID `json:"paymentId"`
	QuotationID    uuid.UUID `json:"quotationId"`
	Folio          string    `json:"folio"`
	AmountCents    int64     `json:"amountCents"`
	Method         string    `json:"method"`
	TotalPaidCents int64     `json:"totalPaidCents"`
	RemainingCents int64     `json:"remainingCents"`
	FullyPaid      bool      `json:"fullyPaid"`
	ActorID        uuid.UUID `json:"actorId"`
}

func (e PaymentRecorded) EventName() string { return "quotations.payment_recorded" }

// =============================================================================
// Client Sharing Events
// =============================================================================

// ShareGrantIssued is published when a client share code is generated.
// Only the grant ID is carried; the plaintext code is shown once to the caller.
type ShareGrantIssued struct {
	BaseEvent
	GrantID    uuid.UUID  `json:"grantId"`
	ClientID   uuid.UUID  `json:"clientId"`
	Permission string     `json:"permission"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	MaxUses    int        `json:"maxUses"`
	ActorID    uuid.UUID  `json:"actorId"`
}

func (e ShareGrantIssued) EventName() string { return "clients.share_grant_issued" }

// ShareGrantRedeemed is published when a share code redemption succeeds.
type ShareGrantRedeemed struct {
	BaseEvent
	GrantID    uuid.UUID `json:"grantId"`
	ClientID   uuid.UUID `json:"clientId"`
	Permission string    `json:"permission"`
	RedeemerID uuid.UUID `json:"redeemerId"`
	UseCount   int       `json:"useCount"`
	MaxUses    int       `json:"maxUses"`
}

func (e ShareGrantRedeemed) EventName() string { return "clients.share_grant_redeemed" }
