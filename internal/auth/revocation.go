package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "revoked_token:"

// TokenRevoker blacklists token IDs in redis until their natural expiry.
// Logout and account deletion revoke the presented token; the auth
// middleware rejects revoked tokens on every request.
//
// A nil redis client degrades to a no-op: tokens then simply live out
// their TTL, which matches the behavior when redis is unavailable.
type TokenRevoker struct {
	rdb *redis.Client
}

func NewTokenRevoker(rdb *redis.Client) *TokenRevoker {
	return &TokenRevoker{rdb: rdb}
}

func (r *TokenRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if r == nil || r.rdb == nil || jti == "" {
		return nil
	}
	if ttl <= 0 {
		return nil // already expired
	}
	return r.rdb.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err()
}

func (r *TokenRevoker) IsRevoked(ctx context.Context, jti string) bool {
	if r == nil || r.rdb == nil || jti == "" {
		return false
	}
	n, err := r.rdb.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		// Fail open: a redis outage must not lock every user out.
		return false
	}
	return n > 0
}
