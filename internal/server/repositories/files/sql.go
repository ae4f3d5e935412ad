// Package files stores file metadata records.
package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophbox/internal/common"
	"github.com/dmitrijs2005/gophbox/internal/dbx"
	"github.com/dmitrijs2005/gophbox/internal/server/models"
	"github.com/jmoiron/sqlx"
)

const fileColumns = `id, user_id, stored_name, original_name, size_bytes, created_at`

// SQLRepository implements Repository over a dbx.DBTX (*sqlx.DB or *sqlx.Tx).
type SQLRepository struct {
	db dbx.DBTX
}

// NewSQLRepository constructs a repository bound to the given DBTX.
func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

// Insert appends a record and returns the id assigned by the database.
// A duplicate stored name yields common.ErrorAlreadyExists.
func (r *SQLRepository) Insert(ctx context.Context, file *models.File) (int64, error) {
	query := r.db.Rebind(
		`INSERT INTO files (user_id, stored_name, original_name, size_bytes, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 RETURNING id`)

	var id int64
	err := r.db.QueryRowxContext(ctx, query,
		file.UserID, file.StoredName, file.OriginalName, file.SizeBytes, file.CreatedAt).Scan(&id)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return 0, common.ErrorAlreadyExists
		}
		return 0, fmt.Errorf("db error: %w", err)
	}

	return id, nil
}

// GetByIDAndOwner returns common.ErrorNotFound both for a missing id and for
// an id owned by someone else.
func (r *SQLRepository) GetByIDAndOwner(ctx context.Context, id, userID int64) (*models.File, error) {
	query := r.db.Rebind(`SELECT ` + fileColumns + ` FROM files WHERE id = ? AND user_id = ?`)

	file := &models.File{}
	if err := sqlx.GetContext(ctx, r.db, file, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select file: %w", err)
	}

	return file, nil
}

// ListByOwner returns the user's files, newest first.
func (r *SQLRepository) ListByOwner(ctx context.Context, userID int64) ([]*models.File, error) {
	query := r.db.Rebind(`SELECT ` + fileColumns + ` FROM files WHERE user_id = ? ORDER BY created_at DESC, id DESC`)

	var result []*models.File
	if err := sqlx.SelectContext(ctx, r.db, &result, query, userID); err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}

	return result, nil
}

func (r *SQLRepository) CountByOwner(ctx context.Context, userID int64) (int, error) {
	query := r.db.Rebind(`SELECT COUNT(*) FROM files WHERE user_id = ?`)

	var n int
	if err := sqlx.GetContext(ctx, r.db, &n, query, userID); err != nil {
		return 0, fmt.Errorf("failed to count files: %w", err)
	}

	return n, nil
}

// DeleteByIDAndOwner removes the record only if userID owns it.
func (r *SQLRepository) DeleteByIDAndOwner(ctx context.Context, id, userID int64) error {
	query := r.db.Rebind(`DELETE FROM files WHERE id = ? AND user_id = ?`)
	return r.deleteOne(ctx, query, id, userID)
}

func (r *SQLRepository) Delete(ctx context.Context, id int64) error {
	query := r.db.Rebind(`DELETE FROM files WHERE id = ?`)
	return r.deleteOne(ctx, query, id)
}

func (r *SQLRepository) deleteOne(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	switch rowsAffected {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("wrong rows affected count: %d", rowsAffected)
	}
}
