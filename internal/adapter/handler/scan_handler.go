package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/srgjo27/campus_ticket/internal/adapter/capture"
	"github.com/srgjo27/campus_ticket/internal/core/domain"
	"github.com/srgjo27/campus_ticket/internal/core/services"
)

type ScanHandler struct {
	registry *services.ScanSessionRegistry
}

func NewScanHandler(registry *services.ScanSessionRegistry) *ScanHandler {
	return &ScanHandler{registry: registry}
}

type openSessionRequest struct {
	DeviceID       string `json:"device_id"`
	CloseOnSuccess bool   `json:"close_on_success"`
}

type decodedRequest struct {
	Text string `json:"text"`
}

type sessionView struct {
	ID           uuid.UUID `json:"session_id"`
	DeviceID     string    `json:"device_id"`
	State        string    `json:"state"`
	DeviceStatus string    `json:"device_status,omitempty"`
}

func newSessionView(s *services.ScanSession) sessionView {
	v := sessionView{
		ID:       s.ID(),
		DeviceID: s.DeviceID(),
		State:    string(s.State()),
	}
	if d, ok := s.Device().(*capture.RemoteDevice); ok {
		v.DeviceStatus = string(d.Status())
	}
	return v
}

func (h *ScanHandler) Open(w http.ResponseWriter, r *http.Request) {
	operatorID, ok := operatorFrom(r)
	if !ok {
		Unauthorized().Send(r.Context(), w)
		return
	}

	var req openSessionRequest
	if errResp := decodeJSON(w, r, &req); errResp != nil {
		errResp.Send(r.Context(), w)
		return
	}

	deviceID := strings.TrimSpace(req.DeviceID)
	if deviceID == "" {
		BadRequest("device_id is required", "").Send(r.Context(), w)
		return
	}

	session, err := h.registry.Open(r.Context(), operatorID, capture.NewRemoteDevice(deviceID), services.ScanSessionOptions{
		CloseOnSuccess: req.CloseOnSuccess,
	})
	if err != nil {
		sessionError(err).Send(r.Context(), w)
		return
	}

	writeJSON(w, http.StatusCreated, newSessionView(session))
}

func (h *ScanHandler) Decoded(w http.ResponseWriter, r *http.Request) {
	session, errResp := h.ownedSession(r)
	if errResp != nil {
		errResp.Send(r.Context(), w)
		return
	}

	var req decodedRequest
	if errResp := decodeJSON(w, r, &req); errResp != nil {
		errResp.Send(r.Context(), w)
		return
	}

	result, err := session.Submit(r.Context(), req.Text)
	if err != nil {
		sessionError(err).Send(r.Context(), w)
		return
	}

	writeJSON(w, redemptionStatus(result), map[string]interface{}{
		"result":  newRedemptionView(result),
		"session": newSessionView(session),
	})
}

func (h *ScanHandler) Close(w http.ResponseWriter, r *http.Request) {
	session, errResp := h.ownedSession(r)
	if errResp != nil {
		errResp.Send(r.Context(), w)
		return
	}

	if err := h.registry.Close(session.ID()); err != nil {
		sessionError(err).Send(r.Context(), w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ownedSession resolves the path session and checks it belongs to the caller.
func (h *ScanHandler) ownedSession(r *http.Request) (*services.ScanSession, *ErrorResponse) {
	operatorID, ok := operatorFrom(r)
	if !ok {
		resp := Unauthorized()
		return nil, &resp
	}

	id, err := uuid.Parse(mux.Vars(r)["sessionID"])
	if err != nil {
		resp := BadRequest("Invalid session id", err.Error())
		return nil, &resp
	}

	session, err := h.registry.Get(id)
	if err != nil {
		resp := sessionError(err)
		return nil, &resp
	}

	if session.OperatorID() != operatorID {
		resp := Forbidden("Scan session belongs to another operator")
		return nil, &resp
	}

	return session, nil
}

func sessionError(err error) ErrorResponse {
	switch {
	case errors.Is(err, domain.ErrDeviceBusy):
		return Conflict("Device already has an open scan session", "DEVICE_BUSY")
	case errors.Is(err, domain.ErrSessionBusy):
		return Conflict("Scan dropped, another code is being processed", "SESSION_BUSY")
	case errors.Is(err, domain.ErrSessionNotFound):
		return ResourceNotFound("Scan session not found")
	case errors.Is(err, domain.ErrSessionClosed):
		return Gone("Scan session closed")
	default:
		return SomethingWrong()
	}
}
