package users

import (
	"context"

	"github.com/dmitrijs2005/gophbox/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	ExistsByLoginOrEmail(ctx context.Context, login, email string) (bool, error)

	// ReserveUsage adds delta to storage_used only if the result stays within
	// storage_limit. It reports false when the row was left untouched.
	ReserveUsage(ctx context.Context, userID, delta int64) (bool, error)
	// ReleaseUsage subtracts delta only if storage_used stays non-negative.
	ReleaseUsage(ctx context.Context, userID, delta int64) (bool, error)
}
