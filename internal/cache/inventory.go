package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix    = "user:%d"
	BlogKeyPrefix    = "blog:%s"
	ProfileKeyPrefix = "profile:%d"
	OTPKeyPrefix     = "otp:%s"
)

const (
	UserTTL      = 5 * time.Minute
	BlogTTL      = 10 * time.Minute
	ListTTL      = 2 * time.Minute
	OTPTTL       = 10 * time.Minute
	PortfolioKey = "portfolio:public"
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func BlogKey(slug string) string {
	return fmt.Sprintf(BlogKeyPrefix, slug)
}

func ProfileKey(userID uint) string {
	return fmt.Sprintf(ProfileKeyPrefix, userID)
}

func OTPKey(email string) string {
	return fmt.Sprintf(OTPKeyPrefix, email)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
	Invalidate(ctx, ProfileKey(userID))
}

func InvalidateBlog(ctx context.Context, slug string) {
	Invalidate(ctx, BlogKey(slug))
}

func InvalidatePortfolio(ctx context.Context) {
	Invalidate(ctx, PortfolioKey)
}
