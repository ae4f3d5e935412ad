package files

import (
	"context"

	"github.com/dmitrijs2005/gophbox/internal/server/models"
)

// Repository reads and writes file records. Every lookup that serves a user
// request is scoped by owner in the query itself.
type Repository interface {
	Insert(ctx context.Context, file *models.File) (int64, error)
	GetByIDAndOwner(ctx context.Context, id, userID int64) (*models.File, error)
	ListByOwner(ctx context.Context, userID int64) ([]*models.File, error)
	CountByOwner(ctx context.Context, userID int64) (int, error)
	DeleteByIDAndOwner(ctx context.Context, id, userID int64) error
	Delete(ctx context.Context, id int64) error
}
