// Package quota decides whether an upload fits a user's storage limit and
// applies usage changes as single conditional updates, so concurrent
// requests for the same user cannot overshoot the limit or drive usage
// below zero.
package quota

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophbox/internal/common"
	"github.com/dmitrijs2005/gophbox/internal/server/models"
)

// UsageStore applies conditional changes to a user's storage_used.
// users.Repository satisfies it; pass one bound to a transaction.
type UsageStore interface {
	ReserveUsage(ctx context.Context, userID, delta int64) (bool, error)
	ReleaseUsage(ctx context.Context, userID, delta int64) (bool, error)
}

// Admit reports whether size more bytes fit into the user's limit.
// It works on a snapshot and is advisory; Reserve is authoritative.
func Admit(user *models.User, size int64) error {
	if size < 0 {
		return fmt.Errorf("%w: negative size %d", common.ErrorValidation, size)
	}
	if user.StorageUsed+size > user.StorageLimit {
		return common.ErrStorageLimitExceeded
	}
	return nil
}

// Headroom is the number of bytes still available to the user.
func Headroom(user *models.User) int64 {
	h := user.StorageLimit - user.StorageUsed
	if h < 0 {
		return 0
	}
	return h
}

// Reserve adds size to the user's usage if the result stays within the limit.
func Reserve(ctx context.Context, usage UsageStore, userID, size int64) error {
	if size <= 0 {
		return fmt.Errorf("%w: reserve size must be positive, got %d", common.ErrorValidation, size)
	}
	ok, err := usage.ReserveUsage(ctx, userID, size)
	if err != nil {
		return fmt.Errorf("reserve usage: %w", err)
	}
	if !ok {
		return common.ErrStorageLimitExceeded
	}
	return nil
}

// Release subtracts size from the user's usage. A release that would take
// usage below zero means the ledger is already out of step.
func Release(ctx context.Context, usage UsageStore, userID, size int64) error {
	if size <= 0 {
		return fmt.Errorf("%w: release size must be positive, got %d", common.ErrorValidation, size)
	}
	ok, err := usage.ReleaseUsage(ctx, userID, size)
	if err != nil {
		return fmt.Errorf("release usage: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: release of %d bytes for user %d", common.ErrConsistency, size, userID)
	}
	return nil
}
