package constants

import "time"

// Session
const (
	SessionCookieName = "qid"
	ContextKeyUserID  = "user_id"
	SessionMaxAge     = 86400 * 7 // 7 days
)

// Validation limits
const (
	MinUsernameLength = 3
	MaxUsernameLength = 50
	MinPasswordLength = 6
	MaxTitleLength    = 200
)

// Feed pagination
const (
	DefaultFeedLimit = 20
	MaxFeedLimit     = 50
	SnippetLength    = 50
)

// Password reset
const (
	ForgetPasswordPrefix = "forget-password:"
	ResetTokenTTL        = 24 * time.Hour
)

// Trending feed cache
const (
	TrendingCacheKey = "posts:trending"
	TrendingCacheTTL = 60 * time.Second
	TrendingLimit    = 30
)
