package flow_errors

import (
	"errors"
	"time"
)

// Common errors
var (
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidInput       = errors.New("invalid input")
	ErrAlreadyExists      = errors.New("already exists")
	ErrRateLimited        = errors.New("rate limited")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// Inbox core errors
var (
	ErrUnsupportedPayload = errors.New("unsupported payload shape")
	ErrInvalidSignature   = errors.New("invalid webhook signature")
	ErrNotReplyable       = errors.New("item type does not support replies")
	ErrMissingCredential  = errors.New("social account has no usable credential")
	ErrPlatformRejected   = errors.New("platform rejected the request")
	ErrAccountInactive    = errors.New("social account is not connected")
)

// NowPtr returns a pointer to current time
func NowPtr() *time.Time {
	now := time.Now()
	return &now
}
