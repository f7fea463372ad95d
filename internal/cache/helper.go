package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	s, err := client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, b, ttl).Err()
}

// Aside tries Redis first, on miss it calls fetch (which must populate dest),
// then stores the result in Redis with ttl. Cache write is best-effort.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := GetJSON(ctx, key, dest)
	if err != nil {
		return err
	}
	if found {
		return nil
	}

	if err := fetch(); err != nil {
		return err
	}

	_ = SetJSON(ctx, key, dest, ttl)
	return nil
}

// StoreOTP saves a one-time verification code for the email with the standard TTL.
func StoreOTP(ctx context.Context, email, code string) error {
	if client == nil {
		return nil
	}
	return client.Set(ctx, OTPKey(email), code, OTPTTL).Err()
}

// LookupOTP returns the stored code for the email, or "" if absent/expired.
func LookupOTP(ctx context.Context, email string) (string, error) {
	if client == nil {
		return "", nil
	}
	code, err := client.Get(ctx, OTPKey(email)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return code, nil
}

// ClearOTP deletes the stored code for the email.
func ClearOTP(ctx context.Context, email string) {
	Invalidate(ctx, OTPKey(email))
}

// BlacklistToken records a revoked JWT ID until its natural expiry.
func BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	return client.Set(ctx, "blacklist:"+jti, "1", ttl).Err()
}

// IsTokenBlacklisted reports whether the JWT ID has been revoked.
func IsTokenBlacklisted(ctx context.Context, jti string) bool {
	if client == nil {
		return false
	}
	n, err := client.Exists(ctx, "blacklist:"+jti).Result()
	return err == nil && n > 0
}
