package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SignupThrottle bounds how often a (username, email) pair can request a
// fresh confirmation code. Backed by redis SetNX with a TTL; a nil throttle
// allows everything, so the API runs without redis.
type SignupThrottle struct {
	client      *redis.Client
	keyPrefix   string
	resendAfter time.Duration
}

func NewSignupThrottle(client *redis.Client, resendAfter time.Duration) *SignupThrottle {
	if client == nil {
		return nil
	}
	return &SignupThrottle{
		client:      client,
		keyPrefix:   "reviewhub:auth:resend",
		resendAfter: resendAfter,
	}
}

func (t *SignupThrottle) Allow(ctx context.Context, username, email string) (bool, error) {
	if t == nil {
		return true, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	key := fmt.Sprintf("%s:%s:%s", t.keyPrefix, username, email)
	allowed, err := t.client.SetNX(ctx, key, "1", t.resendAfter).Result()
	if err != nil {
		return false, fmt.Errorf("signup throttle: %w", err)
	}
	return allowed, nil
}
