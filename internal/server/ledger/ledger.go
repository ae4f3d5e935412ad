// Package ledger keeps file records and per-user usage counters in step.
// Every change that touches both tables runs in one transaction; blob I/O
// never happens in here.
package ledger

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophbox/internal/dbx"
	"github.com/dmitrijs2005/gophbox/internal/server/models"
	"github.com/dmitrijs2005/gophbox/internal/server/quota"
	"github.com/dmitrijs2005/gophbox/internal/server/repositories/repomanager"
	"github.com/jmoiron/sqlx"
)

type Ledger struct {
	db    *sqlx.DB
	repos repomanager.RepositoryManager
}

func New(db *sqlx.DB, repos repomanager.RepositoryManager) *Ledger {
	return &Ledger{db: db, repos: repos}
}

// DB exposes the pool for services that manage accounts.
func (l *Ledger) DB() *sqlx.DB { return l.db }

func (l *Ledger) Repos() repomanager.RepositoryManager { return l.repos }

func (l *Ledger) Ping(ctx context.Context) error { return l.db.PingContext(ctx) }

func (l *Ledger) Close() error { return l.db.Close() }

func (l *Ledger) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	return l.repos.Users(l.db).GetByID(ctx, userID)
}

func (l *Ledger) ListFiles(ctx context.Context, userID int64) ([]*models.File, error) {
	return l.repos.Files(l.db).ListByOwner(ctx, userID)
}

// FindFile returns ErrorNotFound both for missing files and for files owned
// by someone else.
func (l *Ledger) FindFile(ctx context.Context, fileID, userID int64) (*models.File, error) {
	return l.repos.Files(l.db).GetByIDAndOwner(ctx, fileID, userID)
}

func (l *Ledger) CountFiles(ctx context.Context, userID int64) (int, error) {
	return l.repos.Files(l.db).CountByOwner(ctx, userID)
}

// InsertFileRecord stores a record without touching usage.
// Prefer CommitUpload.
func (l *Ledger) InsertFileRecord(ctx context.Context, rec *models.File) (int64, error) {
	id, err := l.repos.Files(l.db).Insert(ctx, rec)
	if err != nil {
		return 0, err
	}
	rec.ID = id
	return id, nil
}

// DeleteFileRecord removes a record without touching usage.
// Prefer CommitDelete.
func (l *Ledger) DeleteFileRecord(ctx context.Context, recordID int64) error {
	return l.repos.Files(l.db).Delete(ctx, recordID)
}

// AdjustUsage moves storage_used by delta. Positive deltas are bounded by the
// limit (ErrStorageLimitExceeded); negative ones by zero (ErrConsistency).
func (l *Ledger) AdjustUsage(ctx context.Context, userID, delta int64) error {
	users := l.repos.Users(l.db)
	switch {
	case delta > 0:
		return quota.Reserve(ctx, users, userID, delta)
	case delta < 0:
		return quota.Release(ctx, users, userID, -delta)
	default:
		return nil
	}
}

// CommitUpload reserves rec.SizeBytes for rec.UserID and inserts rec in one
// transaction. On ErrStorageLimitExceeded nothing was written.
func (l *Ledger) CommitUpload(ctx context.Context, rec *models.File) (int64, error) {
	var id int64
	err := dbx.WithTx(ctx, l.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := quota.Reserve(ctx, l.repos.Users(tx), rec.UserID, rec.SizeBytes); err != nil {
			return err
		}
		var err error
		id, err = l.repos.Files(tx).Insert(ctx, rec)
		if err != nil {
			return fmt.Errorf("insert file record: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	rec.ID = id
	return id, nil
}

// CommitDelete removes the owner's record and releases its size in one
// transaction. A record that is already gone yields ErrorNotFound and usage
// is left alone.
func (l *Ledger) CommitDelete(ctx context.Context, rec *models.File) error {
	return dbx.WithTx(ctx, l.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := l.repos.Files(tx).DeleteByIDAndOwner(ctx, rec.ID, rec.UserID); err != nil {
			return err
		}
		return quota.Release(ctx, l.repos.Users(tx), rec.UserID, rec.SizeBytes)
	})
}

// Usage reports the user's counters and number of files.
func (l *Ledger) Usage(ctx context.Context, userID int64) (*models.Usage, error) {
	user, err := l.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	n, err := l.CountFiles(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.Usage{
		StorageUsed:  user.StorageUsed,
		StorageLimit: user.StorageLimit,
		FileCount:    n,
	}, nil
}
