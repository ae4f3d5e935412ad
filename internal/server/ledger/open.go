package ledger

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/gophbox/internal/server/repositories/repomanager"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Options select and tune the database behind the ledger.
// DSN (PostgreSQL) wins over Path (SQLite) when both are set.
type Options struct {
	DSN  string
	Path string

	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// Open connects to the configured database, migrates it and returns a
// ready Ledger.
func Open(ctx context.Context, opts Options) (*Ledger, error) {
	var (
		db      *sqlx.DB
		dialect string
		err     error
	)

	switch {
	case opts.DSN != "":
		dialect = repomanager.DialectPostgres
		db, err = sqlx.Open("pgx", opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if opts.MaxOpenConns > 0 {
			db.SetMaxOpenConns(opts.MaxOpenConns)
		}
		if opts.ConnMaxLifetime > 0 {
			db.SetConnMaxLifetime(opts.ConnMaxLifetime)
		}
	case opts.Path != "":
		dialect = repomanager.DialectSQLite
		if dir := filepath.Dir(opts.Path); dir != "" {
			if err := os.MkdirAll(dir, 0o770); err != nil {
				return nil, fmt.Errorf("create database dir: %w", err)
			}
		}
		db, err = sqlx.Open("sqlite", sqliteDSN(opts.Path))
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// one writer: storage_used updates serialize on the connection
		db.SetMaxOpenConns(1)
	default:
		return nil, fmt.Errorf("no database configured")
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}

	rm, err := repomanager.NewSQLRepositoryManager(dialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := rm.RunMigrations(ctx, db.DB); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", dialect, err)
	}

	return New(db, rm), nil
}

func sqliteDSN(path string) string {
	q := url.Values{}
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Set("_time_format", "sqlite")
	return "file:" + path + "?" + q.Encode()
}
