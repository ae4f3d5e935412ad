// Package users stores accounts and their quota counters.
package users

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

const userColumns = `id, username, email, password_hash, storage_used, storage_limit, created_at`

// SQLRepository works on PostgreSQL and SQLite; queries use `?` and are
// rebound for the driver behind db.
type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := r.db.Rebind(
		`INSERT INTO users (username, email, password_hash, storage_used, storage_limit, created_at)
		 VALUES (?, ?, ?, 0, ?, ?)
		 RETURNING id`)

	err := r.db.QueryRowxContext(ctx, query,
		user.UserName, user.Email, user.PasswordHash, user.StorageLimit, user.CreatedAt).Scan(&user.ID)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	user.StorageUsed = 0

	return user, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *SQLRepository) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, login)
}

func (r *SQLRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	if err := sqlx.GetContext(ctx, r.db, user, r.db.Rebind(query), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *SQLRepository) ExistsByLoginOrEmail(ctx context.Context, login, email string) (bool, error) {
	query := r.db.Rebind(`SELECT COUNT(*) FROM users WHERE username = ? OR email = ?`)

	var n int
	if err := sqlx.GetContext(ctx, r.db, &n, query, login, email); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *SQLRepository) ReserveUsage(ctx context.Context, userID, delta int64) (bool, error) {
	query := r.db.Rebind(
		`UPDATE users SET storage_used = storage_used + ?
		 WHERE id = ? AND storage_used + ? <= storage_limit`)

	return r.execOne(ctx, query, delta, userID, delta)
}

func (r *SQLRepository) ReleaseUsage(ctx context.Context, userID, delta int64) (bool, error) {
	query := r.db.Rebind(
		`UPDATE users SET storage_used = storage_used - ?
		 WHERE id = ? AND storage_used >= ?`)

	return r.execOne(ctx, query, delta, userID, delta)
}

// execOne runs a single-row conditional update.
func (r *SQLRepository) execOne(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("unexpected rows affected: %d", n)
	}
}
