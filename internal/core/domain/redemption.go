package domain

type RedemptionOutcome string

const (
	OutcomeOK         RedemptionOutcome = "ok"
	OutcomeInvalid    RedemptionOutcome = "invalid"
	OutcomeDenied     RedemptionOutcome = "denied"
	OutcomeStoreError RedemptionOutcome = "store_error"
)

type RedemptionReason string

const (
	ReasonNone                   RedemptionReason = ""
	ReasonNotFound               RedemptionReason = "not-found"
	ReasonAlreadyUsed            RedemptionReason = "already-used"
	ReasonTamperedOrStale        RedemptionReason = "tampered-or-stale-token"
	ReasonTokenExpired           RedemptionReason = "token-expired"
	ReasonInsufficientPermission RedemptionReason = "insufficient-permission"
	ReasonStoreUnavailable       RedemptionReason = "store-unavailable"
)

// ResolvedBy records which lookup path found the ticket.
type ResolvedBy string

const (
	ResolvedNone         ResolvedBy = ""
	ResolvedByToken      ResolvedBy = "token"
	ResolvedByTicketCode ResolvedBy = "ticket_number"
)

// RedemptionResult is the tagged outcome of a redemption attempt. Ticket is
// set for OutcomeOK and for ReasonAlreadyUsed, where it carries the original
// redemption metadata. Err is set only for OutcomeStoreError.
type RedemptionResult struct {
	Outcome    RedemptionOutcome
	Reason     RedemptionReason
	ResolvedBy ResolvedBy
	Ticket     *Ticket
	Err        error
}

func (r RedemptionResult) OK() bool {
	return r.Outcome == OutcomeOK
}

// Retryable reports whether rescanning the same code may succeed.
func (r RedemptionResult) Retryable() bool {
	return r.Outcome == OutcomeStoreError
}

func Redeemed(t *Ticket, by ResolvedBy) RedemptionResult {
	return RedemptionResult{Outcome: OutcomeOK, ResolvedBy: by, Ticket: t}
}

func Invalid(reason RedemptionReason, by ResolvedBy, t *Ticket) RedemptionResult {
	return RedemptionResult{Outcome: OutcomeInvalid, Reason: reason, ResolvedBy: by, Ticket: t}
}

func Denied(by ResolvedBy) RedemptionResult {
	return RedemptionResult{Outcome: OutcomeDenied, Reason: ReasonInsufficientPermission, ResolvedBy: by}
}

func StoreFailure(err error, by ResolvedBy) RedemptionResult {
	return RedemptionResult{Outcome: OutcomeStoreError, Reason: ReasonStoreUnavailable, ResolvedBy: by, Err: err}
}
