package cache_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/campus_ticket/internal/adapter/cache"
	"github.com/srgjo27/campus_ticket/internal/core/domain"
	"github.com/srgjo27/campus_ticket/internal/core/ports/mocks"
)

const ttl = time.Minute

func TestGetOperatorScope_MissLoadsAndStores(t *testing.T) {
	repo := mocks.NewOperatorRepository(t)
	db, mockRedis := redismock.NewClientMock()
	c := cache.NewOperatorScopeCache(repo, db, ttl)

	ctx := context.Background()
	operatorID := uuid.New()
	clubID := uuid.New()
	scope := domain.OperatorScope{OperatorID: operatorID, ScopedClubID: &clubID}
	data, err := json.Marshal(scope)
	require.NoError(t, err)

	key := "operator_scope:" + operatorID.String()
	mockRedis.ExpectGet(key).RedisNil()
	repo.On("GetOperatorScope", ctx, operatorID).Return(scope, nil).Once()
	mockRedis.ExpectSet(key, data, ttl).SetVal("OK")

	got, err := c.GetOperatorScope(ctx, operatorID)

	assert.NoError(t, err)
	assert.Equal(t, scope, got)

	if err := mockRedis.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestGetOperatorScope_HitSkipsRepository(t *testing.T) {
	repo := mocks.NewOperatorRepository(t)
	db, mockRedis := redismock.NewClientMock()
	c := cache.NewOperatorScopeCache(repo, db, ttl)

	ctx := context.Background()
	operatorID := uuid.New()
	scope := domain.OperatorScope{OperatorID: operatorID, IsGlobalAdmin: true}
	data, err := json.Marshal(scope)
	require.NoError(t, err)

	mockRedis.ExpectGet("operator_scope:" + operatorID.String()).SetVal(string(data))

	got, err := c.GetOperatorScope(ctx, operatorID)

	assert.NoError(t, err)
	assert.True(t, got.IsGlobalAdmin)
	repo.AssertNotCalled(t, "GetOperatorScope", mock.Anything, mock.Anything)

	if err := mockRedis.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestGetOperatorScope_RedisDownFallsThrough(t *testing.T) {
	repo := mocks.NewOperatorRepository(t)
	db, mockRedis := redismock.NewClientMock()
	c := cache.NewOperatorScopeCache(repo, db, ttl)

	ctx := context.Background()
	operatorID := uuid.New()
	scope := domain.OperatorScope{OperatorID: operatorID}
	data, err := json.Marshal(scope)
	require.NoError(t, err)

	key := "operator_scope:" + operatorID.String()
	mockRedis.ExpectGet(key).SetErr(errors.New("connection refused"))
	repo.On("GetOperatorScope", ctx, operatorID).Return(scope, nil).Once()
	mockRedis.ExpectSet(key, data, ttl).SetErr(errors.New("connection refused"))

	got, err := c.GetOperatorScope(ctx, operatorID)

	assert.NoError(t, err)
	assert.Equal(t, scope, got)
}

func TestGetOperatorScope_RepositoryErrorIsReturned(t *testing.T) {
	repo := mocks.NewOperatorRepository(t)
	db, mockRedis := redismock.NewClientMock()
	c := cache.NewOperatorScopeCache(repo, db, ttl)

	ctx := context.Background()
	operatorID := uuid.New()

	mockRedis.ExpectGet("operator_scope:" + operatorID.String()).RedisNil()
	repo.On("GetOperatorScope", ctx, operatorID).Return(domain.OperatorScope{}, errors.New("db down")).Once()

	_, err := c.GetOperatorScope(ctx, operatorID)
	assert.EqualError(t, err, "db down")
}
