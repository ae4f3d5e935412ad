package files

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophbox/internal/common"
	"github.com/dmitrijs2005/gophbox/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

func newRepoWithMock(t *testing.T) (*SQLRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewSQLRepository(sqlx.NewDb(db, "pgx")), mock, db
}

var fileCols = []string{"id", "user_id", "stored_name", "original_name", "size_bytes", "created_at"}

const insertQ = `(?s)^INSERT\s+INTO\s+files\s*\(user_id,\s*stored_name,\s*original_name,\s*size_bytes,\s*created_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*RETURNING\s+id$`

func TestInsert_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(insertQ).
		WithArgs(int64(1), "1_20240102_030405_a.txt", "a.txt", int64(50), now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))

	id, err := repo.Insert(context.Background(), &models.File{
		UserID: 1, StoredName: "1_20240102_030405_a.txt", OriginalName: "a.txt", SizeBytes: 50, CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 9 {
		t.Fatalf("want id 9, got %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInsert_DuplicateStoredName(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Insert(context.Background(), &models.File{UserID: 1, StoredName: "dup", SizeBytes: 1})
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want ErrorAlreadyExists, got %v", err)
	}
}

func TestInsert_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).WillReturnError(errors.New("db down"))

	_, err := repo.Insert(context.Background(), &models.File{UserID: 1, StoredName: "x", SizeBytes: 1})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByIDAndOwner_OK(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, user_id, stored_name, original_name, size_bytes, created_at FROM files WHERE id = \$1 AND user_id = \$2`).
		WithArgs(int64(9), int64(1)).
		WillReturnRows(sqlmock.NewRows(fileCols).AddRow(int64(9), int64(1), "skey", "a.txt", int64(50), created))

	got, err := repo.GetByIDAndOwner(context.Background(), 9, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != 9 || got.UserID != 1 || got.StoredName != "skey" || got.SizeBytes != 50 || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected row: %+v", got)
	}
}

func TestGetByIDAndOwner_NotOwnedIsNotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM files WHERE id = \$1 AND user_id = \$2`).
		WithArgs(int64(9), int64(2)).
		WillReturnRows(sqlmock.NewRows(fileCols))

	_, err := repo.GetByIDAndOwner(context.Background(), 9, 2)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestGetByIDAndOwner_QueryErr(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM files WHERE id = \$1 AND user_id = \$2`).
		WillReturnError(errors.New("db err"))

	_, err := repo.GetByIDAndOwner(context.Background(), 9, 1)
	if err == nil || !regexp.MustCompile(`failed to select file: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped select error, got %v", err)
	}
}

func TestListByOwner_NewestFirstQuery(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	t1 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	t0 := t1.Add(-time.Hour)
	mock.ExpectQuery(`FROM files WHERE user_id = \$1 ORDER BY created_at DESC, id DESC`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(fileCols).
			AddRow(int64(2), int64(1), "s2", "b.txt", int64(20), t1).
			AddRow(int64(1), int64(1), "s1", "a.txt", int64(10), t0))

	got, err := repo.ListByOwner(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != 2 || got[1].ID != 1 {
		t.Fatalf("unexpected rows: %+v", got)
	}
}

func TestListByOwner_RowsErr(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(fileCols).
		AddRow(int64(2), int64(1), "s2", "b.txt", int64(20), time.Now()).
		AddRow(int64(1), int64(1), "s1", "a.txt", int64(10), time.Now()).
		RowError(1, errors.New("row-err"))
	mock.ExpectQuery(`FROM files WHERE user_id = \$1`).WillReturnRows(rows)

	_, err := repo.ListByOwner(context.Background(), 1)
	if err == nil || !regexp.MustCompile(`row-err`).MatchString(err.Error()) {
		t.Fatalf("expected rows error, got %v", err)
	}
}

func TestCountByOwner(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM files WHERE user_id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.CountByOwner(context.Background(), 1)
	if err != nil || n != 3 {
		t.Fatalf("want 3, got %d (err=%v)", n, err)
	}
}

func TestDeleteByIDAndOwner(t *testing.T) {
	tests := []struct {
		name     string
		result   driverResult
		wantErr  error
		wantText string
	}{
		{name: "deleted", result: driverResult{rows: 1}},
		{name: "missing", result: driverResult{rows: 0}, wantErr: common.ErrorNotFound},
		{name: "too many", result: driverResult{rows: 2}, wantText: "wrong rows affected count: 2"},
		{name: "rows affected error", result: driverResult{err: errors.New("rows-err")}, wantText: "failed to get rows affected: rows-err"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			exp := mock.ExpectExec(`DELETE FROM files WHERE id = \$1 AND user_id = \$2`).WithArgs(int64(9), int64(1))
			if tt.result.err != nil {
				exp.WillReturnResult(sqlmock.NewErrorResult(tt.result.err))
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, tt.result.rows))
			}

			err := repo.DeleteByIDAndOwner(context.Background(), 9, 1)
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want %v, got %v", tt.wantErr, err)
				}
			case tt.wantText != "":
				if err == nil || err.Error() != tt.wantText {
					t.Fatalf("want %q, got %v", tt.wantText, err)
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			}
		})
	}
}

func TestDelete_DBErr(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM files WHERE id = \$1$`).
		WithArgs(int64(9)).
		WillReturnError(errors.New("db err"))

	err := repo.Delete(context.Background(), 9)
	if err == nil || !regexp.MustCompile(`failed to delete file: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

type driverResult struct {
	rows int64
	err  error
}
