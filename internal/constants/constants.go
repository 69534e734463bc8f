package constants

import "time"

// Context and session keys
const (
	ContextKeyUserID    = "user_id"
	ContextKeyActor     = "actor"
	ContextKeyRequestID = "request_id"

	SessionKeyToken   = "token"
	SessionCookieName = "okr_session"

	HeaderRequestID = "X-Request-ID"
)

// Lifetimes
const (
	InviteTTL  = 7 * 24 * time.Hour
	OTPTTL     = 5 * time.Minute
	SessionTTL = 7 * 24 * time.Hour
)

// InviteTTLDays is InviteTTL expressed in whole days for user-facing copy.
const InviteTTLDays = int(InviteTTL / (24 * time.Hour))

// Token and code sizes
const (
	InviteTokenBytes = 32
	OTPLength        = 6
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Limits
const (
	MaxInviteBatch          = 50
	DefaultMailConcurrency  = 10
	MaxSuggestionTokens     = 100
	MaxSuggestionInputChars = 2000
)
