package domain

import "errors"

var (
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrDecode                = errors.New("token decode failed")
	ErrTicketNotFound        = errors.New("ticket not found")
	ErrAlreadyRedeemed       = errors.New("ticket already redeemed")
	ErrDuplicateTicketNumber = errors.New("ticket number already taken")
	ErrInvalidPaymentState   = errors.New("invalid payment state")
	ErrPermissionDenied      = errors.New("operator not permitted for this event")
	ErrDeviceBusy            = errors.New("capture device already owned by an active session")
	ErrSessionNotFound       = errors.New("scan session not found")
	ErrSessionClosed         = errors.New("scan session closed")
	ErrSessionBusy           = errors.New("scan session is processing another code")
)
