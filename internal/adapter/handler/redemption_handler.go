package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/srgjo27/campus_ticket/internal/core/domain"
	"github.com/srgjo27/campus_ticket/internal/core/services"
)

const OperatorHeader = "X-Operator-Id"

type RedemptionHandler struct {
	redeemer services.Redeemer
}

func NewRedemptionHandler(redeemer services.Redeemer) *RedemptionHandler {
	return &RedemptionHandler{redeemer: redeemer}
}

type redeemRequest struct {
	Raw string `json:"raw"`
}

type redemptionView struct {
	Outcome    string      `json:"outcome"`
	Reason     string      `json:"reason,omitempty"`
	ResolvedBy string      `json:"resolved_by,omitempty"`
	Retryable  bool        `json:"retryable"`
	Ticket     *ticketView `json:"ticket,omitempty"`
}

func newRedemptionView(result domain.RedemptionResult) redemptionView {
	return redemptionView{
		Outcome:    string(result.Outcome),
		Reason:     string(result.Reason),
		ResolvedBy: string(result.ResolvedBy),
		Retryable:  result.Retryable(),
		Ticket:     newTicketView(result.Ticket, false),
	}
}

func (h *RedemptionHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	operatorID, ok := operatorFrom(r)
	if !ok {
		Unauthorized().Send(r.Context(), w)
		return
	}

	var req redeemRequest
	if errResp := decodeJSON(w, r, &req); errResp != nil {
		errResp.Send(r.Context(), w)
		return
	}

	result := h.redeemer.Redeem(r.Context(), req.Raw, operatorID)
	writeJSON(w, redemptionStatus(result), newRedemptionView(result))
}

func operatorFrom(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.Header.Get(OperatorHeader))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

func redemptionStatus(result domain.RedemptionResult) int {
	switch result.Outcome {
	case domain.OutcomeOK:
		return http.StatusOK
	case domain.OutcomeDenied:
		return http.StatusForbidden
	case domain.OutcomeStoreError:
		return http.StatusServiceUnavailable
	}

	switch result.Reason {
	case domain.ReasonAlreadyUsed:
		return http.StatusConflict
	case domain.ReasonNotFound:
		return http.StatusNotFound
	default:
		return http.StatusUnprocessableEntity
	}
}
