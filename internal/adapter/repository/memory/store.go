// Package memory is an in-process row store with the same contract as the
// Postgres adapter. It backs local development and the service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/srgjo27/campus_ticket/internal/core/domain"
)

type holderKey struct {
	eventID  uuid.UUID
	holderID uuid.UUID
}

type Store struct {
	mu        sync.RWMutex
	tickets   map[uuid.UUID]*domain.Ticket
	byHolder  map[holderKey]uuid.UUID
	byNumber  map[string]uuid.UUID
	clubs     map[uuid.UUID]uuid.UUID
	operators map[uuid.UUID]domain.OperatorScope
}

func NewStore() *Store {
	return &Store{
		tickets:   make(map[uuid.UUID]*domain.Ticket),
		byHolder:  make(map[holderKey]uuid.UUID),
		byNumber:  make(map[string]uuid.UUID),
		clubs:     make(map[uuid.UUID]uuid.UUID),
		operators: make(map[uuid.UUID]domain.OperatorScope),
	}
}

// SetEventClub records the club that owns an event.
func (s *Store) SetEventClub(eventID, clubID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clubs[eventID] = clubID
}

func (s *Store) PutOperator(scope domain.OperatorScope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.operators[scope.OperatorID] = scope
}

// snapshot returns a copy so callers never share the stored row.
func (s *Store) snapshot(t *domain.Ticket) *domain.Ticket {
	c := *t
	if t.RedeemedAt != nil {
		at := *t.RedeemedAt
		c.RedeemedAt = &at
	}
	if t.RedeemedBy != nil {
		by := *t.RedeemedBy
		c.RedeemedBy = &by
	}
	c.ClubID = nil
	if club, ok := s.clubs[t.EventID]; ok {
		c.ClubID = &club
	}
	return &c
}

func (s *Store) CreateOrUpdate(ctx context.Context, draft domain.TicketDraft) (*domain.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := holderKey{eventID: draft.EventID, holderID: draft.HolderID}
	if id, ok := s.byHolder[key]; ok {
		existing := s.tickets[id]
		existing.PaymentState = draft.PaymentState
		return s.snapshot(existing), nil
	}

	if _, taken := s.byNumber[draft.TicketNumber]; taken {
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateTicketNumber, draft.TicketNumber)
	}

	ticket := &domain.Ticket{
		ID:           draft.ID,
		EventID:      draft.EventID,
		HolderID:     draft.HolderID,
		TicketNumber: draft.TicketNumber,
		Token:        draft.Token,
		Status:       domain.TicketValid,
		PaymentState: draft.PaymentState,
		IssuedAt:     draft.IssuedAt,
	}

	s.tickets[ticket.ID] = ticket
	s.byHolder[key] = ticket.ID
	s.byNumber[ticket.TicketNumber] = ticket.ID

	return s.snapshot(ticket), nil
}

func (s *Store) GetByID(ctx context.Context, ticketID uuid.UUID) (*domain.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ticket, ok := s.tickets[ticketID]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	return s.snapshot(ticket), nil
}

func (s *Store) GetByTicketNumber(ctx context.Context, ticketNumber string) (*domain.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byNumber[ticketNumber]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	return s.snapshot(s.tickets[id]), nil
}

func (s *Store) TryRedeem(ctx context.Context, ticketID uuid.UUID, operatorID uuid.UUID, at time.Time) (*domain.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, ok := s.tickets[ticketID]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}

	if ticket.Status != domain.TicketValid {
		return s.snapshot(ticket), domain.ErrAlreadyRedeemed
	}

	ticket.Status = domain.TicketUsed
	ticket.RedeemedAt = &at
	ticket.RedeemedBy = &operatorID

	return s.snapshot(ticket), nil
}

func (s *Store) ListByHolder(ctx context.Context, holderID uuid.UUID) ([]domain.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var tickets []domain.Ticket
	for _, ticket := range s.tickets {
		if ticket.HolderID == holderID {
			tickets = append(tickets, *s.snapshot(ticket))
		}
	}

	sort.Slice(tickets, func(i, j int) bool {
		return tickets[i].IssuedAt.After(tickets[j].IssuedAt)
	})

	return tickets, nil
}

func (s *Store) GetEventClub(ctx context.Context, eventID uuid.UUID) (*uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	club, ok := s.clubs[eventID]
	if !ok {
		return nil, nil
	}
	return &club, nil
}

func (s *Store) GetOperatorScope(ctx context.Context, operatorID uuid.UUID) (domain.OperatorScope, error) {
	if err := ctx.Err(); err != nil {
		return domain.OperatorScope{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	scope, ok := s.operators[operatorID]
	if !ok {
		return domain.OperatorScope{OperatorID: operatorID}, nil
	}
	return scope, nil
}
