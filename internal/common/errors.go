// Package common defines shared constants and sentinel errors used across
// gophbox layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// Storage accounting errors.
	ErrStorageLimitExceeded = errors.New("storage limit exceeded")
	ErrUploadTooLarge       = errors.New("upload too large")
	ErrEmptyUpload          = errors.New("empty upload")

	// ErrIO reports a blob store failure (write, read or remove).
	ErrIO = errors.New("blob i/o error")

	// ErrConsistency marks a ledger/blob mismatch that needs manual
	// reconciliation. It is logged, never shown to users.
	ErrConsistency = errors.New("ledger and blob store out of sync")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
