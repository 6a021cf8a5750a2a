package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/srgjo27/campus_ticket/internal/core/domain"
	"github.com/srgjo27/campus_ticket/internal/core/ports"
	"github.com/srgjo27/campus_ticket/internal/platform/logger"
	"github.com/srgjo27/campus_ticket/internal/platform/metrics"
)

const maxIssueAttempts = 3

type IssueTicketRequest struct {
	EventID      string `json:"event_id"`
	HolderID     string `json:"holder_id"`
	PaymentState string `json:"payment_state"`
}

type TicketService struct {
	tickets         ports.TicketRepository
	operators       ports.OperatorRepository
	codec           ports.TokenCodec
	now             func() time.Time
	newTicketNumber func(time.Time) (string, error)
}

func NewTicketService(tickets ports.TicketRepository, operators ports.OperatorRepository, codec ports.TokenCodec) *TicketService {
	return &TicketService{
		tickets:         tickets,
		operators:       operators,
		codec:           codec,
		now:             time.Now,
		newTicketNumber: GenerateTicketNumber,
	}
}

// Issue creates the ticket for an approved registration, or refreshes the
// payment state of the one already issued for the same event and holder.
// Only global admins and admins of the event's club may issue.
func (s *TicketService) Issue(ctx context.Context, req IssueTicketRequest, operatorID uuid.UUID) (*domain.Ticket, error) {
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid event id", domain.ErrInvalidArgument)
	}

	holderID, err := uuid.Parse(req.HolderID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid holder id", domain.ErrInvalidArgument)
	}

	paymentState := domain.PaymentState(req.PaymentState)
	if req.PaymentState == "" {
		paymentState = domain.PaymentNotRequired
	}
	if !paymentState.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidPaymentState, req.PaymentState)
	}

	if err := s.authorizeIssue(ctx, operatorID, eventID); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= maxIssueAttempts; attempt++ {
		issuedAt := s.now().UTC().Truncate(time.Millisecond)

		ticketNumber, err := s.newTicketNumber(issuedAt)
		if err != nil {
			return nil, fmt.Errorf("generating ticket number: %w", err)
		}

		draft := domain.TicketDraft{
			ID:           uuid.New(),
			EventID:      eventID,
			HolderID:     holderID,
			TicketNumber: ticketNumber,
			PaymentState: paymentState,
			IssuedAt:     issuedAt,
		}

		draft.Token, err = s.codec.Encode(domain.Identity{
			TicketID:       draft.ID,
			EventID:        draft.EventID,
			HolderID:       draft.HolderID,
			TicketNumber:   draft.TicketNumber,
			IssuedAtMillis: issuedAt.UnixMilli(),
		})
		if err != nil {
			return nil, fmt.Errorf("encoding ticket token: %w", err)
		}

		ticket, err := s.tickets.CreateOrUpdate(ctx, draft)
		if errors.Is(err, domain.ErrDuplicateTicketNumber) {
			logger.Warnf(ctx, "ticket number %s collided (attempt %d/%d)", ticketNumber, attempt, maxIssueAttempts)
			continue
		}
		if err != nil {
			return nil, err
		}

		metrics.TicketsIssuedTotal.WithLabelValues(string(ticket.PaymentState)).Inc()
		logger.WithFields(ctx, logrus.Fields{
			"ticket_id":     ticket.ID,
			"event_id":      ticket.EventID,
			"holder_id":     ticket.HolderID,
			"reissued":      ticket.ID != draft.ID,
			"payment_state": ticket.PaymentState,
			"issued_by":     operatorID,
		}).Info("ticket issued")

		return ticket, nil
	}

	return nil, fmt.Errorf("%w after %d attempts", domain.ErrDuplicateTicketNumber, maxIssueAttempts)
}

func (s *TicketService) authorizeIssue(ctx context.Context, operatorID, eventID uuid.UUID) error {
	scope, err := s.operators.GetOperatorScope(ctx, operatorID)
	if err != nil {
		return fmt.Errorf("loading operator scope: %w", err)
	}

	if !scope.IsElevated() {
		logger.Warnf(ctx, "operator %s without an admin role tried to issue for event %s", operatorID, eventID)
		return domain.ErrPermissionDenied
	}

	if scope.IsGlobalAdmin {
		return nil
	}

	clubID, err := s.tickets.GetEventClub(ctx, eventID)
	if err != nil {
		return fmt.Errorf("loading event club: %w", err)
	}

	if !scope.CanIssue(clubID) {
		logger.Warnf(ctx, "club operator %s tried to issue for foreign event %s", operatorID, eventID)
		return domain.ErrPermissionDenied
	}

	return nil
}

// Token derives the display token for a ticket from its stored identity.
func (s *TicketService) Token(ctx context.Context, ticketID string) (string, error) {
	id, err := uuid.Parse(ticketID)
	if err != nil {
		return "", fmt.Errorf("%w: invalid ticket id", domain.ErrInvalidArgument)
	}

	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	return s.codec.Encode(ticket.Identity())
}

func (s *TicketService) ListForHolder(ctx context.Context, holderID string) ([]domain.Ticket, error) {
	id, err := uuid.Parse(holderID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid holder id", domain.ErrInvalidArgument)
	}

	return s.tickets.ListByHolder(ctx, id)
}
