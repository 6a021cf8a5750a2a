package services_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/campus_ticket/internal/core/domain"
	"github.com/srgjo27/campus_ticket/internal/core/ports/mocks"
	"github.com/srgjo27/campus_ticket/internal/core/services"
)

func TestIssue_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	eventID, holderID := uuid.New(), uuid.New()

	ticket, err := f.issuer.Issue(ctx, services.IssueTicketRequest{
		EventID:      eventID.String(),
		HolderID:     holderID.String(),
		PaymentState: "pending",
	}, f.admin)

	require.NoError(t, err)
	assert.Equal(t, domain.TicketValid, ticket.Status)
	assert.Equal(t, domain.PaymentPending, ticket.PaymentState)
	assert.Regexp(t, regexp.MustCompile(`^TKT-\d+-\d{4}$`), ticket.TicketNumber)
	assert.Nil(t, ticket.RedeemedAt)
	assert.Nil(t, ticket.RedeemedBy)

	identity, err := f.codec.Decode(ticket.Token)
	require.NoError(t, err)
	assert.Equal(t, ticket.Identity(), identity)
}

func TestIssue_IsIdempotentPerEventAndHolder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	eventID, holderID := uuid.New(), uuid.New()

	first := f.issue(t, eventID, holderID)

	again, err := f.issuer.Issue(ctx, services.IssueTicketRequest{
		EventID:      eventID.String(),
		HolderID:     holderID.String(),
		PaymentState: "paid",
	}, f.admin)
	require.NoError(t, err)

	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, first.TicketNumber, again.TicketNumber)
	assert.Equal(t, first.Token, again.Token)
	assert.Equal(t, domain.PaymentPaid, again.PaymentState)

	tickets, err := f.issuer.ListForHolder(ctx, holderID.String())
	require.NoError(t, err)
	assert.Len(t, tickets, 1)
}

func TestIssue_InvalidRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := map[string]services.IssueTicketRequest{
		"event id":      {EventID: "nope", HolderID: uuid.NewString()},
		"holder id":     {EventID: uuid.NewString(), HolderID: ""},
		"payment state": {EventID: uuid.NewString(), HolderID: uuid.NewString(), PaymentState: "refunded"},
	}

	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			ticket, err := f.issuer.Issue(ctx, req, f.admin)
			assert.Error(t, err)
			assert.Nil(t, ticket)
		})
	}

	_, err := f.issuer.Issue(ctx, cases["payment state"], f.admin)
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentState)

	_, err = f.issuer.Issue(ctx, cases["event id"], f.admin)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

// globalAdmin returns an operator repository that knows one global admin.
func globalAdmin(t *testing.T) (*mocks.OperatorRepository, uuid.UUID) {
	operators := mocks.NewOperatorRepository(t)
	admin := uuid.New()
	operators.On("GetOperatorScope", mock.Anything, admin).
		Return(domain.OperatorScope{OperatorID: admin, IsGlobalAdmin: true}, nil).Maybe()
	return operators, admin
}

func TestIssue_RetriesTicketNumberCollision(t *testing.T) {
	tickets := mocks.NewTicketRepository(t)
	operators, admin := globalAdmin(t)
	svc := services.NewTicketService(tickets, operators, newCodec(t))
	ctx := context.Background()

	eventID, holderID := uuid.New(), uuid.New()
	stored := &domain.Ticket{ID: uuid.New(), EventID: eventID, HolderID: holderID, PaymentState: domain.PaymentNotRequired}

	tickets.On("CreateOrUpdate", ctx, mock.AnythingOfType("domain.TicketDraft")).Return(nil, domain.ErrDuplicateTicketNumber).Once()
	tickets.On("CreateOrUpdate", ctx, mock.AnythingOfType("domain.TicketDraft")).Return(stored, nil).Once()

	ticket, err := svc.Issue(ctx, services.IssueTicketRequest{EventID: eventID.String(), HolderID: holderID.String()}, admin)

	require.NoError(t, err)
	assert.Equal(t, stored.ID, ticket.ID)
}

func TestIssue_GivesUpAfterRepeatedCollisions(t *testing.T) {
	tickets := mocks.NewTicketRepository(t)
	operators, admin := globalAdmin(t)
	svc := services.NewTicketService(tickets, operators, newCodec(t))
	ctx := context.Background()

	tickets.On("CreateOrUpdate", ctx, mock.AnythingOfType("domain.TicketDraft")).Return(nil, domain.ErrDuplicateTicketNumber).Times(3)

	_, err := svc.Issue(ctx, services.IssueTicketRequest{EventID: uuid.NewString(), HolderID: uuid.NewString()}, admin)
	assert.ErrorIs(t, err, domain.ErrDuplicateTicketNumber)
}

func TestIssue_StoreError(t *testing.T) {
	tickets := mocks.NewTicketRepository(t)
	operators, admin := globalAdmin(t)
	svc := services.NewTicketService(tickets, operators, newCodec(t))
	ctx := context.Background()

	tickets.On("CreateOrUpdate", ctx, mock.AnythingOfType("domain.TicketDraft")).Return(nil, errors.New("db down")).Once()

	_, err := svc.Issue(ctx, services.IssueTicketRequest{EventID: uuid.NewString(), HolderID: uuid.NewString()}, admin)
	assert.EqualError(t, err, "db down")
}

func TestIssue_RequiresAdminRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	eventID, holderID := uuid.New(), uuid.New()

	ticket, err := f.issuer.Issue(ctx, services.IssueTicketRequest{
		EventID:  eventID.String(),
		HolderID: holderID.String(),
	}, uuid.New())

	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	assert.Nil(t, ticket)

	tickets, err := f.issuer.ListForHolder(ctx, holderID.String())
	require.NoError(t, err)
	assert.Empty(t, tickets)
}

func TestIssue_ClubAdminLimitedToOwnClub(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	clubID := uuid.New()
	clubAdmin := uuid.New()
	f.store.PutOperator(domain.OperatorScope{OperatorID: clubAdmin, ScopedClubID: &clubID})

	ownEvent, foreignEvent, unownedEvent := uuid.New(), uuid.New(), uuid.New()
	f.store.SetEventClub(ownEvent, clubID)
	f.store.SetEventClub(foreignEvent, uuid.New())

	ticket, err := f.issuer.Issue(ctx, services.IssueTicketRequest{EventID: ownEvent.String(), HolderID: uuid.NewString()}, clubAdmin)
	require.NoError(t, err)
	require.NotNil(t, ticket.ClubID)
	assert.Equal(t, clubID, *ticket.ClubID)

	_, err = f.issuer.Issue(ctx, services.IssueTicketRequest{EventID: foreignEvent.String(), HolderID: uuid.NewString()}, clubAdmin)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	_, err = f.issuer.Issue(ctx, services.IssueTicketRequest{EventID: unownedEvent.String(), HolderID: uuid.NewString()}, clubAdmin)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	_, err = f.issuer.Issue(ctx, services.IssueTicketRequest{EventID: foreignEvent.String(), HolderID: uuid.NewString()}, f.admin)
	assert.NoError(t, err)
}

func TestIssue_ScopeLookupFailure(t *testing.T) {
	tickets := mocks.NewTicketRepository(t)
	operators := mocks.NewOperatorRepository(t)
	svc := services.NewTicketService(tickets, operators, newCodec(t))
	ctx := context.Background()
	operatorID := uuid.New()

	operators.On("GetOperatorScope", ctx, operatorID).Return(domain.OperatorScope{}, errors.New("db down")).Once()

	_, err := svc.Issue(ctx, services.IssueTicketRequest{EventID: uuid.NewString(), HolderID: uuid.NewString()}, operatorID)

	assert.ErrorContains(t, err, "db down")
	tickets.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
}

func TestToken_RederivesStoredToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.issue(t, uuid.New(), uuid.New())

	token, err := f.issuer.Token(ctx, ticket.ID.String())
	require.NoError(t, err)
	assert.Equal(t, ticket.Token, token)

	_, err = f.issuer.Token(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)

	_, err = f.issuer.Token(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestGenerateTicketNumber(t *testing.T) {
	at := time.UnixMilli(1760540000123)

	number, err := services.GenerateTicketNumber(at)

	require.NoError(t, err)
	assert.Regexp(t, `^TKT-1760540000123-\d{4}$`, number)
}
