// Package repomanager provides the SQL RepositoryManager, wiring together
// repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/dmitrijs2005/gophbox/internal/dbx"
	"github.com/dmitrijs2005/gophbox/internal/server/migrations"
	"github.com/dmitrijs2005/gophbox/internal/server/repositories/files"
	"github.com/dmitrijs2005/gophbox/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// migrator is the part of *goose.Provider we use.
type migrator interface {
	Up(ctx context.Context) ([]*goose.MigrationResult, error)
}

// newMigrator is a seam for testing goose.NewProvider.
var newMigrator = func(dialect goose.Dialect, db *sql.DB, fsys fs.FS) (migrator, error) {
	return goose.NewProvider(dialect, db, fsys)
}

// SQLRepositoryManager vends SQL-backed repositories for one dialect and
// exposes a schema migration hook.
type SQLRepositoryManager struct {
	dialect string
}

// NewSQLRepositoryManager accepts DialectPostgres or DialectSQLite.
func NewSQLRepositoryManager(dialect string) (*SQLRepositoryManager, error) {
	if _, err := gooseDialect(dialect); err != nil {
		return nil, err
	}
	return &SQLRepositoryManager{dialect: dialect}, nil
}

func (m *SQLRepositoryManager) Dialect() string { return m.dialect }

// Users returns a users.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLRepository(db)
}

// Files returns a files.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Files(db dbx.DBTX) files.Repository {
	return files.NewSQLRepository(db)
}

// RunMigrations applies the embedded migrations for the manager's dialect.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	dialect, err := gooseDialect(m.dialect)
	if err != nil {
		return err
	}
	fsys, err := migrations.Dir(m.dialect)
	if err != nil {
		return err
	}

	p, err := newMigrator(dialect, db, fsys)
	if err != nil {
		return fmt.Errorf("migration provider: %w", err)
	}
	if _, err := p.Up(ctx); err != nil {
		return err
	}
	return nil
}

func gooseDialect(dialect string) (goose.Dialect, error) {
	switch dialect {
	case DialectPostgres:
		return goose.DialectPostgres, nil
	case DialectSQLite:
		return goose.DialectSQLite3, nil
	default:
		return "", fmt.Errorf("unsupported dialect %q", dialect)
	}
}
