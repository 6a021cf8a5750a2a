package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/srgjo27/campus_ticket/internal/core/domain"
	"github.com/srgjo27/campus_ticket/internal/core/ports"
	"github.com/srgjo27/campus_ticket/internal/platform/logger"
	"github.com/srgjo27/campus_ticket/internal/platform/metrics"
)

// OperatorScopeCache is a read-through cache in front of an
// OperatorRepository. Redis failures degrade to the underlying repository.
type OperatorScopeCache struct {
	next  ports.OperatorRepository
	redis *redis.Client
	ttl   time.Duration
}

func NewOperatorScopeCache(next ports.OperatorRepository, client *redis.Client, ttl time.Duration) *OperatorScopeCache {
	return &OperatorScopeCache{next: next, redis: client, ttl: ttl}
}

func operatorScopeKey(operatorID uuid.UUID) string {
	return fmt.Sprintf("operator_scope:%s", operatorID)
}

func (c *OperatorScopeCache) GetOperatorScope(ctx context.Context, operatorID uuid.UUID) (domain.OperatorScope, error) {
	key := operatorScopeKey(operatorID)

	raw, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var scope domain.OperatorScope
		if jsonErr := json.Unmarshal(raw, &scope); jsonErr == nil {
			metrics.OperatorScopeCache.WithLabelValues("hit").Inc()
			return scope, nil
		}
		logger.Warnf(ctx, "discarding corrupt cached scope for operator %s", operatorID)
	case errors.Is(err, redis.Nil):
		metrics.OperatorScopeCache.WithLabelValues("miss").Inc()
	default:
		metrics.OperatorScopeCache.WithLabelValues("error").Inc()
		logger.Warnf(ctx, "operator scope cache read failed: %v", err)
	}

	scope, err := c.next.GetOperatorScope(ctx, operatorID)
	if err != nil {
		return scope, err
	}

	data, err := json.Marshal(scope)
	if err != nil {
		return scope, nil
	}

	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logger.Warnf(ctx, "operator scope cache write failed: %v", err)
	}

	return scope, nil
}
