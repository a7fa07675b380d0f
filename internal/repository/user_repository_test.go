package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/auth-service/internal/model"
)

func newRepoWithMock(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewUserRepo(db), mock
}

var (
	insertUserQ = regexp.QuoteMeta("INSERT INTO users (name, email, password_hash) VALUES (?,?,?)")
	selectUserQ = regexp.QuoteMeta("SELECT id,name,email,password_hash,created_at FROM users WHERE email=? LIMIT 1")
	existsQ     = regexp.QuoteMeta("SELECT 1 FROM users WHERE email=? LIMIT 1")
)

func TestCreate_NormalizesEmail(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(insertUserQ).
		WithArgs("Ann", "ann@x.com", "hash").
		WillReturnResult(sqlmock.NewResult(7, 1))

	id, err := repo.Create(context.Background(), model.User{Name: "Ann", Email: "  Ann@X.com ", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(insertUserQ).
		WithArgs("Ann", "ann@x.com", "hash").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'ann@x.com'"})

	_, err := repo.Create(context.Background(), model.User{Name: "Ann", Email: "ann@x.com", PasswordHash: "hash"})
	require.ErrorIs(t, err, ErrEmailExists)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(insertUserQ).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), model.User{Name: "Ann", Email: "ann@x.com", PasswordHash: "hash"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmailExists)
	assert.Contains(t, err.Error(), "db down")
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(selectUserQ).
		WithArgs("ann@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at"}).
			AddRow(int64(3), "Ann", "ann@x.com", "hash", created))

	u, err := repo.GetByEmail(context.Background(), "ANN@x.com")
	require.NoError(t, err)
	assert.Equal(t, model.User{ID: 3, Name: "Ann", Email: "ann@x.com", PasswordHash: "hash", CreatedAt: created}, u)
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectUserQ).WithArgs("nobody@x.com").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "nobody@x.com")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestEmailExists(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(existsQ).WithArgs("ann@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(int64(1)))
	mock.ExpectQuery(existsQ).WithArgs("bob@x.com").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(existsQ).WithArgs("err@x.com").WillReturnError(errors.New("db down"))

	ok, err := repo.EmailExists(context.Background(), "ann@x.com")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.EmailExists(context.Background(), "bob@x.com")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.EmailExists(context.Background(), "err@x.com")
	require.Error(t, err)
}
