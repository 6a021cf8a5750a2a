package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/srgjo27/campus_ticket/internal/core/domain"
)

const (
	uniqueViolation = pq.ErrorCode("23505")

	ticketNumberConstraint = "event_tickets_ticket_number_key"

	ticketColumns = `t.id, t.event_id, t.user_id, t.ticket_number, t.token, t.status,
		t.payment_state, t.created_at, t.used_at, t.validated_by, e.club_id`
)

type TicketRepository struct {
	db *sql.DB
}

func NewTicketRepository(db *sql.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*domain.Ticket, error) {
	var ticket domain.Ticket
	var usedAt sql.NullTime
	var validatedBy, clubID uuid.NullUUID

	err := row.Scan(
		&ticket.ID,
		&ticket.EventID,
		&ticket.HolderID,
		&ticket.TicketNumber,
		&ticket.Token,
		&ticket.Status,
		&ticket.PaymentState,
		&ticket.IssuedAt,
		&usedAt,
		&validatedBy,
		&clubID,
	)
	if err != nil {
		return nil, err
	}

	if usedAt.Valid {
		at := usedAt.Time
		ticket.RedeemedAt = &at
	}

	if validatedBy.Valid {
		by := validatedBy.UUID
		ticket.RedeemedBy = &by
	}

	if clubID.Valid {
		club := clubID.UUID
		ticket.ClubID = &club
	}

	return &ticket, nil
}

func (r *TicketRepository) CreateOrUpdate(ctx context.Context, draft domain.TicketDraft) (*domain.Ticket, error) {
	query := `
	WITH t AS (
		INSERT INTO event_tickets (id, event_id, user_id, ticket_number, token, status, payment_state, created_at)
		VALUES ($1, $2, $3, $4, $5, 'valid', $6, $7)
		ON CONFLICT (event_id, user_id) DO UPDATE
		SET payment_state = EXCLUDED.payment_state
		RETURNING *
	)
	SELECT ` + ticketColumns + `
	FROM t
	LEFT JOIN events e ON e.id = t.event_id
	`

	row := r.db.QueryRowContext(ctx, query,
		draft.ID, draft.EventID, draft.HolderID, draft.TicketNumber, draft.Token, draft.PaymentState, draft.IssuedAt)

	ticket, err := scanTicket(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation && pqErr.Constraint == ticketNumberConstraint {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateTicketNumber, draft.TicketNumber)
		}
		return nil, fmt.Errorf("failed to upsert ticket for event %s holder %s: %w", draft.EventID, draft.HolderID, err)
	}

	return ticket, nil
}

func (r *TicketRepository) GetByID(ctx context.Context, ticketID uuid.UUID) (*domain.Ticket, error) {
	query := `
	SELECT ` + ticketColumns + `
	FROM event_tickets t
	LEFT JOIN events e ON e.id = t.event_id
	WHERE t.id = $1
	`

	ticket, err := scanTicket(r.db.QueryRowContext(ctx, query, ticketID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to fetch ticket %s: %w", ticketID, err)
	}

	return ticket, nil
}

func (r *TicketRepository) GetByTicketNumber(ctx context.Context, ticketNumber string) (*domain.Ticket, error) {
	query := `
	SELECT ` + ticketColumns + `
	FROM event_tickets t
	LEFT JOIN events e ON e.id = t.event_id
	WHERE t.ticket_number = $1
	`

	ticket, err := scanTicket(r.db.QueryRowContext(ctx, query, ticketNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to fetch ticket number %q: %w", ticketNumber, err)
	}

	return ticket, nil
}

func (r *TicketRepository) TryRedeem(ctx context.Context, ticketID uuid.UUID, operatorID uuid.UUID, at time.Time) (*domain.Ticket, error) {
	query := `
	WITH t AS (
		UPDATE event_tickets
		SET status = 'used',
			used_at = $3,
			validated_by = $2
		WHERE id = $1 AND status = 'valid'
		RETURNING *
	)
	SELECT ` + ticketColumns + `
	FROM t
	LEFT JOIN events e ON e.id = t.event_id
	`

	ticket, err := scanTicket(r.db.QueryRowContext(ctx, query, ticketID, operatorID, at))
	if err == nil {
		return ticket, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to redeem ticket %s: %w", ticketID, err)
	}

	current, err := r.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	return current, domain.ErrAlreadyRedeemed
}

func (r *TicketRepository) ListByHolder(ctx context.Context, holderID uuid.UUID) ([]domain.Ticket, error) {
	query := `
	SELECT ` + ticketColumns + `
	FROM event_tickets t
	LEFT JOIN events e ON e.id = t.event_id
	WHERE t.user_id = $1
	ORDER BY t.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, holderID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}

		tickets = append(tickets, *ticket)
	}

	return tickets, rows.Err()
}

func (r *TicketRepository) GetEventClub(ctx context.Context, eventID uuid.UUID) (*uuid.UUID, error) {
	var clubID uuid.NullUUID
	err := r.db.QueryRowContext(ctx, `SELECT club_id FROM events WHERE id = $1`, eventID).Scan(&clubID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch club for event %s: %w", eventID, err)
	}

	if !clubID.Valid {
		return nil, nil
	}
	club := clubID.UUID
	return &club, nil
}
