package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/campus_ticket/internal/core/domain"
)

type TicketRepository interface {
	CreateOrUpdate(ctx context.Context, draft domain.TicketDraft) (*domain.Ticket, error)
	GetByID(ctx context.Context, ticketID uuid.UUID) (*domain.Ticket, error)
	GetByTicketNumber(ctx context.Context, ticketNumber string) (*domain.Ticket, error)
	// TryRedeem flips a valid ticket to used. When the ticket is no longer
	// valid it returns the current row together with domain.ErrAlreadyRedeemed.
	TryRedeem(ctx context.Context, ticketID uuid.UUID, operatorID uuid.UUID, at time.Time) (*domain.Ticket, error)
	ListByHolder(ctx context.Context, holderID uuid.UUID) ([]domain.Ticket, error)
	// GetEventClub returns the club owning an event, or nil when the event
	// has no owning club on record.
	GetEventClub(ctx context.Context, eventID uuid.UUID) (*uuid.UUID, error)
}

type OperatorRepository interface {
	GetOperatorScope(ctx context.Context, operatorID uuid.UUID) (domain.OperatorScope, error)
}
