package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/srgjo27/campus_ticket/internal/core/domain"
	"github.com/srgjo27/campus_ticket/internal/core/services"
)

type TicketHandler struct {
	svc *services.TicketService
}

func NewTicketHandler(svc *services.TicketService) *TicketHandler {
	return &TicketHandler{svc: svc}
}

type ticketView struct {
	ID           uuid.UUID  `json:"id"`
	EventID      uuid.UUID  `json:"event_id"`
	HolderID     uuid.UUID  `json:"holder_id"`
	TicketNumber string     `json:"ticket_number"`
	Token        string     `json:"token,omitempty"`
	Status       string     `json:"status"`
	PaymentState string     `json:"payment_state"`
	IssuedAt     time.Time  `json:"issued_at"`
	RedeemedAt   *time.Time `json:"redeemed_at,omitempty"`
	RedeemedBy   *uuid.UUID `json:"redeemed_by,omitempty"`
}

func newTicketView(t *domain.Ticket, withToken bool) *ticketView {
	if t == nil {
		return nil
	}

	v := &ticketView{
		ID:           t.ID,
		EventID:      t.EventID,
		HolderID:     t.HolderID,
		TicketNumber: t.TicketNumber,
		Status:       string(t.Status),
		PaymentState: string(t.PaymentState),
		IssuedAt:     t.IssuedAt,
		RedeemedAt:   t.RedeemedAt,
		RedeemedBy:   t.RedeemedBy,
	}
	if withToken {
		v.Token = t.Token
	}
	return v
}

func (h *TicketHandler) Issue(w http.ResponseWriter, r *http.Request) {
	operatorID, ok := operatorFrom(r)
	if !ok {
		Unauthorized().Send(r.Context(), w)
		return
	}

	var req services.IssueTicketRequest
	if errResp := decodeJSON(w, r, &req); errResp != nil {
		errResp.Send(r.Context(), w)
		return
	}

	ticket, err := h.svc.Issue(r.Context(), req, operatorID)
	if err != nil {
		ticketError(err).Send(r.Context(), w)
		return
	}

	writeJSON(w, http.StatusCreated, newTicketView(ticket, true))
}

func (h *TicketHandler) Token(w http.ResponseWriter, r *http.Request) {
	token, err := h.svc.Token(r.Context(), mux.Vars(r)["ticketID"])
	if err != nil {
		ticketError(err).Send(r.Context(), w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *TicketHandler) ListForHolder(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.svc.ListForHolder(r.Context(), mux.Vars(r)["holderID"])
	if err != nil {
		ticketError(err).Send(r.Context(), w)
		return
	}

	views := make([]*ticketView, 0, len(tickets))
	for i := range tickets {
		views = append(views, newTicketView(&tickets[i], false))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"tickets": views})
}

func ticketError(err error) ErrorResponse {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidPaymentState):
		return BadRequest("Invalid request", err.Error())
	case errors.Is(err, domain.ErrPermissionDenied):
		return Forbidden("Operator may not issue tickets for this event")
	case errors.Is(err, domain.ErrTicketNotFound):
		return ResourceNotFound("Ticket not found")
	case errors.Is(err, domain.ErrDuplicateTicketNumber):
		return ErrorResponse{
			StatusCode: http.StatusServiceUnavailable,
			Message:    "Could not allocate a ticket number, try again",
			Status:     "RETRY",
		}
	default:
		return SomethingWrong()
	}
}
