package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/srgjo27/campus_ticket/internal/core/domain"
	"github.com/srgjo27/campus_ticket/internal/core/ports"
	"github.com/srgjo27/campus_ticket/internal/platform/logger"
	"github.com/srgjo27/campus_ticket/internal/platform/metrics"
)

// maxTicketNumberLength bounds what is worth a ticket-number lookup.
// Generated numbers are about twenty characters.
const maxTicketNumberLength = 64

// Redeemer is the single entry point for camera scans and typed ticket
// numbers alike.
type Redeemer interface {
	Redeem(ctx context.Context, raw string, operatorID uuid.UUID) domain.RedemptionResult
}

type RedemptionService struct {
	tickets     ports.TicketRepository
	operators   ports.OperatorRepository
	codec       ports.TokenCodec
	maxTokenAge time.Duration
	now         func() time.Time
}

type RedemptionOption func(*RedemptionService)

// WithMaxTokenAge rejects tokens issued longer ago than age. Zero disables it.
func WithMaxTokenAge(age time.Duration) RedemptionOption {
	return func(s *RedemptionService) {
		s.maxTokenAge = age
	}
}

func WithClock(now func() time.Time) RedemptionOption {
	return func(s *RedemptionService) {
		s.now = now
	}
}

func NewRedemptionService(tickets ports.TicketRepository, operators ports.OperatorRepository, codec ports.TokenCodec, opts ...RedemptionOption) *RedemptionService {
	s := &RedemptionService{
		tickets:   tickets,
		operators: operators,
		codec:     codec,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Redeem never returns an error: every outcome, including store failures,
// is reported in the result. It holds no locks; concurrent redemptions of
// one ticket are serialized by the store's conditional write.
func (s *RedemptionService) Redeem(ctx context.Context, raw string, operatorID uuid.UUID) domain.RedemptionResult {
	start := time.Now()

	result := s.redeem(ctx, strings.TrimSpace(raw), operatorID)

	metrics.RedemptionsTotal.WithLabelValues(string(result.Outcome), string(result.Reason), string(result.ResolvedBy)).Inc()
	metrics.RedemptionDuration.WithLabelValues(string(result.Outcome)).Observe(time.Since(start).Seconds())

	fields := logrus.Fields{
		"operator_id": operatorID,
		"outcome":     result.Outcome,
		"reason":      result.Reason,
		"resolved_by": result.ResolvedBy,
	}
	if result.Ticket != nil {
		fields["ticket_id"] = result.Ticket.ID
	}

	entry := logger.WithFields(ctx, fields)
	if result.Err != nil {
		entry.WithError(result.Err).Error("ticket redemption failed")
	} else {
		entry.Info("ticket redemption")
	}

	return result
}

func (s *RedemptionService) redeem(ctx context.Context, raw string, operatorID uuid.UUID) domain.RedemptionResult {
	if raw == "" {
		return domain.Invalid(domain.ReasonNotFound, domain.ResolvedNone, nil)
	}

	ticket, failure, resolvedBy := s.resolve(ctx, raw)
	if failure != nil {
		return *failure
	}

	scope, err := s.operators.GetOperatorScope(ctx, operatorID)
	if err != nil {
		return domain.StoreFailure(err, resolvedBy)
	}

	if !scope.CanRedeem(ticket) {
		return domain.Denied(resolvedBy)
	}

	redeemed, err := s.tickets.TryRedeem(ctx, ticket.ID, operatorID, s.now().UTC())
	switch {
	case err == nil:
		return domain.Redeemed(redeemed, resolvedBy)
	case errors.Is(err, domain.ErrAlreadyRedeemed):
		return domain.Invalid(domain.ReasonAlreadyUsed, resolvedBy, redeemed)
	case errors.Is(err, domain.ErrTicketNotFound):
		return domain.Invalid(domain.ReasonNotFound, resolvedBy, nil)
	default:
		return domain.StoreFailure(err, resolvedBy)
	}
}

// resolve tries the input as a token first and as a literal ticket number
// second.
func (s *RedemptionService) resolve(ctx context.Context, raw string) (*domain.Ticket, *domain.RedemptionResult, domain.ResolvedBy) {
	identity, err := s.codec.Decode(raw)
	if err != nil {
		if !lookupableTicketNumber(raw) {
			result := domain.Invalid(domain.ReasonNotFound, domain.ResolvedByTicketCode, nil)
			return nil, &result, domain.ResolvedByTicketCode
		}

		ticket, err := s.tickets.GetByTicketNumber(ctx, raw)
		if err != nil {
			result := lookupFailure(err, domain.ResolvedByTicketCode)
			return nil, &result, domain.ResolvedByTicketCode
		}
		return ticket, nil, domain.ResolvedByTicketCode
	}

	ticket, err := s.tickets.GetByID(ctx, identity.TicketID)
	if err != nil {
		result := lookupFailure(err, domain.ResolvedByToken)
		return nil, &result, domain.ResolvedByToken
	}

	if !identity.Matches(ticket) {
		result := domain.Invalid(domain.ReasonTamperedOrStale, domain.ResolvedByToken, nil)
		return nil, &result, domain.ResolvedByToken
	}

	if s.maxTokenAge > 0 && s.now().Sub(identity.IssuedAt()) > s.maxTokenAge {
		result := domain.Invalid(domain.ReasonTokenExpired, domain.ResolvedByToken, nil)
		return nil, &result, domain.ResolvedByToken
	}

	return ticket, nil, domain.ResolvedByToken
}

// lookupableTicketNumber rejects input no stored ticket number can equal and
// that a text column would refuse as a query parameter.
func lookupableTicketNumber(raw string) bool {
	return len(raw) <= maxTicketNumberLength &&
		utf8.ValidString(raw) &&
		!strings.ContainsRune(raw, 0)
}

func lookupFailure(err error, by domain.ResolvedBy) domain.RedemptionResult {
	if errors.Is(err, domain.ErrTicketNotFound) {
		return domain.Invalid(domain.ReasonNotFound, by, nil)
	}
	return domain.StoreFailure(err, by)
}
