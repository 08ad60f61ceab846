package verificationcodes

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/investdesk/internal/common"
	"github.com/dmitrijs2005/investdesk/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestUpsert(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	expires := time.Now().Add(15 * time.Minute)

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+verification_codes\b.*ON\s+CONFLICT\s+\(user_id\)\s+DO\s+UPDATE\b`).
		WithArgs(int64(7), "123456", expires).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Upsert(context.Background(), &models.VerificationCode{UserID: 7, Code: "123456", ExpiresAt: expires}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+verification_codes\b`).WillReturnError(errors.New("db down"))

	err := repo.Upsert(context.Background(), &models.VerificationCode{UserID: 7})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestFind(t *testing.T) {
	q := `(?s)^SELECT\s+user_id,\s*code,\s*expires_at\s+FROM\s+verification_codes\s+WHERE\s+user_id\s*=\s*\$1$`

	t.Run("found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		expires := time.Now()
		mock.ExpectQuery(q).WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "code", "expires_at"}).AddRow(7, "123456", expires))

		got, err := repo.Find(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, &models.VerificationCode{UserID: 7, Code: "123456", ExpiresAt: expires}, got)
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WillReturnError(sql.ErrNoRows)

		_, err := repo.Find(context.Background(), 7)
		require.ErrorIs(t, err, common.ErrorNotFound)
	})
}

func TestDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectExec(`(?s)^DELETE\s+FROM\s+verification_codes\s+WHERE\s+user_id\s*=\s*\$1$`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), 7))
}
