package common

const (
	// DefaultStorageLimitBytes is the quota assigned to new accounts (100 MiB).
	DefaultStorageLimitBytes int64 = 100 * 1024 * 1024

	// DefaultMaxUploadSizeBytes caps a single upload (16 MiB).
	DefaultMaxUploadSizeBytes int64 = 16 * 1024 * 1024
)

// ctxKey is unexported so that only this package can mint context keys.
type ctxKey string

// UserIDKey carries the authenticated user id (int64) in a request context.
const UserIDKey ctxKey = "userID"
