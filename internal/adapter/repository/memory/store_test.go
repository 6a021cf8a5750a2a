package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/campus_ticket/internal/core/domain"
)

func draft(eventID, holderID uuid.UUID, number string) domain.TicketDraft {
	return domain.TicketDraft{
		ID:           uuid.New(),
		EventID:      eventID,
		HolderID:     holderID,
		TicketNumber: number,
		Token:        "t1." + number,
		PaymentState: domain.PaymentNotRequired,
		IssuedAt:     time.Now(),
	}
}

func TestCreateOrUpdate_IsIdempotentPerEventAndHolder(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	eventID, holderID := uuid.New(), uuid.New()

	first, err := store.CreateOrUpdate(ctx, draft(eventID, holderID, "TKT-1"))
	require.NoError(t, err)

	update := draft(eventID, holderID, "TKT-2")
	update.PaymentState = domain.PaymentPaid
	second, err := store.CreateOrUpdate(ctx, update)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "TKT-1", second.TicketNumber)
	assert.Equal(t, domain.PaymentPaid, second.PaymentState)

	_, err = store.GetByTicketNumber(ctx, "TKT-2")
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)

	tickets, err := store.ListByHolder(ctx, holderID)
	require.NoError(t, err)
	assert.Len(t, tickets, 1)
}

func TestCreateOrUpdate_RejectsDuplicateNumber(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	_, err := store.CreateOrUpdate(ctx, draft(uuid.New(), uuid.New(), "TKT-1"))
	require.NoError(t, err)

	_, err = store.CreateOrUpdate(ctx, draft(uuid.New(), uuid.New(), "TKT-1"))
	assert.ErrorIs(t, err, domain.ErrDuplicateTicketNumber)
}

func TestTryRedeem_ConcurrentCallersHaveOneWinner(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	ticket, err := store.CreateOrUpdate(ctx, draft(uuid.New(), uuid.New(), "TKT-1"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	var wins, conflicts atomic.Int32
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.TryRedeem(ctx, ticket.ID, uuid.New(), time.Now())
			if err == nil {
				wins.Add(1)
			} else if assert.ErrorIs(t, err, domain.ErrAlreadyRedeemed) {
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(31), conflicts.Load())
}

func TestTryRedeem_ConflictReturnsOriginalStamp(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	ticket, err := store.CreateOrUpdate(ctx, draft(uuid.New(), uuid.New(), "TKT-1"))
	require.NoError(t, err)

	first := uuid.New()
	at := time.Date(2026, 5, 1, 19, 0, 0, 0, time.UTC)
	_, err = store.TryRedeem(ctx, ticket.ID, first, at)
	require.NoError(t, err)

	current, err := store.TryRedeem(ctx, ticket.ID, uuid.New(), at.Add(time.Minute))
	assert.ErrorIs(t, err, domain.ErrAlreadyRedeemed)
	require.NotNil(t, current)
	assert.Equal(t, first, *current.RedeemedBy)
	assert.Equal(t, at, *current.RedeemedAt)

	_, err = store.TryRedeem(ctx, uuid.New(), first, at)
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)
}

func TestSnapshot_IsDetachedAndCarriesClub(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	eventID, clubID := uuid.New(), uuid.New()
	store.SetEventClub(eventID, clubID)

	ticket, err := store.CreateOrUpdate(ctx, draft(eventID, uuid.New(), "TKT-1"))
	require.NoError(t, err)
	require.NotNil(t, ticket.ClubID)
	assert.Equal(t, clubID, *ticket.ClubID)

	ticket.Status = domain.TicketUsed

	stored, err := store.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketValid, stored.Status)
}

func TestGetOperatorScope_UnknownIsNotElevated(t *testing.T) {
	store := NewStore()
	scope, err := store.GetOperatorScope(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, scope.IsElevated())
}

func TestGetEventClub(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	eventID, clubID := uuid.New(), uuid.New()

	club, err := store.GetEventClub(ctx, eventID)
	require.NoError(t, err)
	assert.Nil(t, club)

	store.SetEventClub(eventID, clubID)

	club, err = store.GetEventClub(ctx, eventID)
	require.NoError(t, err)
	require.NotNil(t, club)
	assert.Equal(t, clubID, *club)
}
