package sqlite_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"catchup-feed/internal/infra/adapter/persistence/sqlite"
)

func TestUserStateRepo_SetRead(t *testing.T) {
	t.Parallel()
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec("INSERT INTO user_article_state").WillReturnResult(sqlmock.NewResult(0, 1))

	repo := sqlite.NewUserStateRepo(db)
	require.NoError(t, repo.SetRead(context.Background(), 1, 42, true))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStateRepo_Get_NoRowMeansUnread(t *testing.T) {
	t.Parallel()
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows(
		[]string{"user_id", "article_id", "is_read", "read_at", "is_bookmarked", "bookmarked_at"}))

	repo := sqlite.NewUserStateRepo(db)
	got, err := repo.Get(context.Background(), 1, 42)
	require.NoError(t, err)
	require.Nil(t, got)
}
