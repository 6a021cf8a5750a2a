package domain

import (
	"time"

	"github.com/google/uuid"
)

type TicketStatus string

const (
	TicketValid TicketStatus = "valid"
	TicketUsed  TicketStatus = "used"
)

type PaymentState string

const (
	PaymentNotRequired PaymentState = "not_required"
	PaymentPending     PaymentState = "pending"
	PaymentPaid        PaymentState = "paid"
)

func (p PaymentState) Valid() bool {
	switch p {
	case PaymentNotRequired, PaymentPending, PaymentPaid:
		return true
	}
	return false
}

type Ticket struct {
	ID           uuid.UUID
	EventID      uuid.UUID
	HolderID     uuid.UUID
	TicketNumber string
	Token        string
	Status       TicketStatus
	PaymentState PaymentState
	IssuedAt     time.Time
	RedeemedAt   *time.Time
	RedeemedBy   *uuid.UUID

	// ClubID is the owning club of the event, nil for campus-wide events.
	ClubID *uuid.UUID
}

func (t *Ticket) IsValid() bool {
	return t.Status == TicketValid
}

// Identity returns the token identity bound to this row.
func (t *Ticket) Identity() Identity {
	return Identity{
		TicketID:       t.ID,
		EventID:        t.EventID,
		HolderID:       t.HolderID,
		TicketNumber:   t.TicketNumber,
		IssuedAtMillis: t.IssuedAt.UnixMilli(),
	}
}

// TicketDraft carries the fields of a ticket about to be upserted.
type TicketDraft struct {
	ID           uuid.UUID
	EventID      uuid.UUID
	HolderID     uuid.UUID
	TicketNumber string
	Token        string
	PaymentState PaymentState
	IssuedAt     time.Time
}

// Identity is the portion of a ticket carried inside a token.
type Identity struct {
	TicketID       uuid.UUID
	EventID        uuid.UUID
	HolderID       uuid.UUID
	TicketNumber   string
	IssuedAtMillis int64
}

// Matches reports whether the identity refers to exactly this row.
// IssuedAtMillis is a nonce and is not compared.
func (i Identity) Matches(t *Ticket) bool {
	return i.TicketID == t.ID &&
		i.EventID == t.EventID &&
		i.HolderID == t.HolderID &&
		i.TicketNumber == t.TicketNumber
}

func (i Identity) IssuedAt() time.Time {
	return time.UnixMilli(i.IssuedAtMillis)
}
