package utils

import "time"

// Application Constants
const (
	AppName    = "PoolRide"
	AppVersion = "1.0.0"

	// Default values
	DefaultTimeZone = "UTC"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Authentication
	JWTAccessTokenTTL  = 24 * time.Hour
	JWTRefreshTokenTTL = 7 * 24 * time.Hour
	PasswordMinLength  = 6
	PasswordMaxLength  = 128
	BcryptCost         = 12

	// Pool Constants
	CreateGracePeriod   = 5 * time.Minute
	LateCancelNotice    = 60 * time.Minute
	LatePenaltyPoints   = 5
	MaxCommentLength    = 500
	CompletedPoolMaxAge = 14 * 24 * time.Hour
	PoolCacheTTL        = 10 * time.Minute
	UserCacheTTL        = 15 * time.Minute
)

// HTTP Status Messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error Messages
const (
	ErrInvalidCredentials = "invalid credentials"
	ErrUserNotFound       = "user not found"
	ErrUserExists         = "user already exists"
	ErrInvalidToken       = "invalid token"
	ErrTokenExpired       = "token expired"
	ErrInvalidInput       = "invalid input"
	ErrInternalServer     = "internal server error"
	ErrUnauthorized       = "unauthorized"
	ErrForbidden          = "forbidden"
	ErrNotFound           = "not found"
	ErrConflict           = "conflict"
	ErrValidationFailed   = "validation failed"
	ErrPoolNotFound       = "pool not found"
	ErrFeedbackNotFound   = "feedback not found"
)

// Cache Keys
const (
	CacheUserPrefix = "user:"
	CachePoolPrefix = "pool:"
)

// Event Types
const (
	EventUserRegistered = "user_registered"
	EventUserLogin      = "user_login"
	EventPoolCreated    = "pool_created"
	EventPoolJoined     = "pool_joined"
	EventPoolLeft       = "pool_left"
	EventPoolCancelled  = "pool_cancelled"
	EventPoolCompleted  = "pool_completed"
	EventFeedbackGiven  = "feedback_given"
)
