package models

import "time"

// User is an account row. StorageUsed/StorageLimit are the quota counters;
// PasswordHash belongs to the identity side and is never returned by the
// file lifecycle code.
type User struct {
	ID           int64     `db:"id"`
	UserName     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	StorageUsed  int64     `db:"storage_used"`
	StorageLimit int64     `db:"storage_limit"`
	CreatedAt    time.Time `db:"created_at"`
}

// Usage is a read-only view of a user's quota.
type Usage struct {
	StorageUsed  int64
	StorageLimit int64
	FileCount    int
}

// Percent returns used/limit in percent, 0 for a non-positive limit.
func (u Usage) Percent() float64 {
	if u.StorageLimit <= 0 {
		return 0
	}
	return float64(u.StorageUsed) / float64(u.StorageLimit) * 100
}
