package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/infra/adapter/persistence/sqlite"
	"catchup-feed/internal/repository"
)

var articleColumnNames = []string{
	"id", "feed_id", "url", "source_url", "title", "author", "content", "content_hash",
	"published_at", "created_at", "summary_short", "summary_full", "key_points",
	"model_tier", "summarized_at", "word_count", "reading_time_mins", "featured_image",
	"has_code_blocks", "code_languages", "site_name", "categories", "paywalled",
	"extractor_used", "content_type", "file_name", "file_path", "is_read", "is_bookmarked",
}

func articleRow(a *entity.Article) *sqlmock.Rows {
	return sqlmock.NewRows(articleColumnNames).AddRow(
		a.ID, a.FeedID, a.URL, a.SourceURL, a.Title, a.Author, a.Content, a.ContentHash,
		a.PublishedAt, a.CreatedAt, a.SummaryShort, a.SummaryFull, nil,
		a.ModelTier, a.SummarizedAt, a.WordCount, a.ReadingTimeMins, a.FeaturedImage,
		a.HasCodeBlocks, nil, a.SiteName, nil, a.Paywalled,
		a.ExtractorUsed, string(a.ContentType), a.FileName, a.FilePath, a.IsRead, a.IsBookmarked,
	)
}

func TestArticleRepo_Get(t *testing.T) {
	t.Parallel()
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Date(2025, 7, 19, 0, 0, 0, 0, time.UTC)
	want := &entity.Article{ID: 1, FeedID: 2, Title: "Go 1.26 released", URL: "https://example.com", CreatedAt: now}

	mock.ExpectQuery("SELECT").WithArgs(int64(1)).WillReturnRows(articleRow(want))

	repo := sqlite.NewArticleRepo(db)
	got, err := repo.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Title, got.Title)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleRepo_Get_NotFound(t *testing.T) {
	t.Parallel()
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT").WithArgs(int64(99)).WillReturnRows(sqlmock.NewRows(articleColumnNames))

	repo := sqlite.NewArticleRepo(db)
	got, err := repo.Get(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestArticleRepo_List(t *testing.T) {
	t.Parallel()
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now()
	mock.ExpectQuery("SELECT").WillReturnRows(articleRow(&entity.Article{ID: 1, FeedID: 2, Title: "x", URL: "y", CreatedAt: now}))

	repo := sqlite.NewArticleRepo(db)
	arts, err := repo.List(context.Background(), repository.ArticleFilters{})
	require.NoError(t, err)
	assert.Len(t, arts, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleRepo_Search_EmptyQueryFallsBackToList(t *testing.T) {
	t.Parallel()
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows(articleColumnNames))

	repo := sqlite.NewArticleRepo(db)
	_, err := repo.Search(context.Background(), "   ", repository.ArticleFilters{})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleRepo_Search_UsesFTS(t *testing.T) {
	t.Parallel()
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("FROM articles_fts").
		WithArgs(`"golang"`).
		WillReturnRows(sqlmock.NewRows(articleColumnNames))

	repo := sqlite.NewArticleRepo(db)
	_, err := repo.Search(context.Background(), "golang", repository.ArticleFilters{})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleRepo_Create(t *testing.T) {
	t.Parallel()
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec("INSERT INTO articles").WillReturnResult(sqlmock.NewResult(1, 1))

	repo := sqlite.NewArticleRepo(db)
	article := &entity.Article{FeedID: 1, Title: "New", URL: "https://example.com/new", Content: "body"}
	id, err := repo.Create(context.Background(), article)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.NotEmpty(t, article.ContentHash)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleRepo_Create_DuplicateURLFailsSoft(t *testing.T) {
	t.Parallel()
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec("INSERT INTO articles").
		WillReturnError(&sqliteUniqueErr{})

	repo := sqlite.NewArticleRepo(db)
	id, err := repo.Create(context.Background(), &entity.Article{FeedID: 1, URL: "https://dup.example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), id)
}

type sqliteUniqueErr struct{}

func (e *sqliteUniqueErr) Error() string { return "UNIQUE constraint failed: articles.feed_id, articles.url" }

func TestArticleRepo_Update_NoFieldsIsNoop(t *testing.T) {
	t.Parallel()
	db, _, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	repo := sqlite.NewArticleRepo(db)
	err := repo.Update(context.Background(), 1, repository.ArticleUpdate{})
	require.NoError(t, err)
}

func TestArticleRepo_Update_MarksRead(t *testing.T) {
	t.Parallel()
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec("UPDATE articles SET is_read").WillReturnResult(sqlmock.NewResult(0, 1))

	read := true
	repo := sqlite.NewArticleRepo(db)
	err := repo.Update(context.Background(), 1, repository.ArticleUpdate{IsRead: &read})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleRepo_Delete(t *testing.T) {
	t.Parallel()
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec("DELETE FROM articles").WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))

	repo := sqlite.NewArticleRepo(db)
	require.NoError(t, repo.Delete(context.Background(), 1))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleRepo_FindDuplicates(t *testing.T) {
	t.Parallel()
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT content_hash").WillReturnRows(
		sqlmock.NewRows([]string{"content_hash", "ids"}).AddRow("abc123", "1,2"))

	repo := sqlite.NewArticleRepo(db)
	groups, err := repo.FindDuplicates(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, []int64{1, 2}, groups[0].ArticleIDs)
}

func TestArticleRepo_ArchiveOlderThan(t *testing.T) {
	t.Parallel()
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec("DELETE FROM articles WHERE published_at").WillReturnResult(sqlmock.NewResult(0, 3))

	repo := sqlite.NewArticleRepo(db)
	deleted, err := repo.ArchiveOlderThan(context.Background(), time.Now(), repository.ArchiveOptions{KeepBookmarked: true})
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
}
