package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophbox/internal/dbx"
	"github.com/dmitrijs2005/gophbox/internal/server/repositories/files"
	"github.com/dmitrijs2005/gophbox/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to either the pool or a
// transaction, so callers decide the atomic unit.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Files(db dbx.DBTX) files.Repository
}
