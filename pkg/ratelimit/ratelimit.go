package ratelimit

import (
	"context"
	"fmt"
	"time"

	"anoa.com/devconnector/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Limiter allows one action per user per window.
type Limiter interface {
	// Allow reports whether the action may proceed and, if not, how long until it may.
	Allow(ctx context.Context, userID uuid.UUID, action string, window time.Duration) (bool, time.Duration, error)
	// Reset gives the slot back, e.g. when the guarded action failed.
	Reset(ctx context.Context, userID uuid.UUID, action string) error
}

type redisLimiter struct {
	rdb *redis.Client
}

// NewRedisLimiter returns a Limiter backed by SETNX keys. A nil client allows everything.
func NewRedisLimiter(rdb *redis.Client) Limiter {
	return &redisLimiter{rdb: rdb}
}

func key(userID uuid.UUID, action string) string {
	return fmt.Sprintf("rate_limit:user:%s:%s", userID.String(), action)
}

func (l *redisLimiter) Allow(ctx context.Context, userID uuid.UUID, action string, window time.Duration) (bool, time.Duration, error) {
	if l.rdb == nil || window <= 0 {
		return true, 0, nil
	}

	k := key(userID, action)
	wasSet, err := l.rdb.SetNX(ctx, k, "locked", window).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}
	if wasSet {
		return true, 0, nil
	}

	ttl, err := l.rdb.TTL(ctx, k).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to read rate limit ttl: %w", err)
	}
	return false, ttl, nil
}

func (l *redisLimiter) Reset(ctx context.Context, userID uuid.UUID, action string) error {
	if l.rdb == nil {
		return nil
	}
	return l.rdb.Del(ctx, key(userID, action)).Err()
}

// Error is returned by services when a caller is throttled.
type Error struct {
	Message    string
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return apperror.ErrRateLimitExceeded
}
