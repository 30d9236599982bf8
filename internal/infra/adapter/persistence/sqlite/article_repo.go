package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/repository"
)

// articleColumnsPrefixed is articleColumns qualified with the "a." alias,
// for queries that join articles against a table with overlapping column
// names (user_article_state also has is_read/is_bookmarked).
const articleColumnsPrefixed = `
    a.id, a.feed_id, a.url, a.source_url, a.title, a.author, a.content, a.content_hash,
    a.published_at, a.created_at, a.summary_short, a.summary_full, a.key_points,
    a.model_tier, a.summarized_at, a.word_count, a.reading_time_mins, a.featured_image,
    a.has_code_blocks, a.code_languages, a.site_name, a.categories, a.paywalled,
    a.extractor_used, a.content_type, a.file_name, a.file_path, a.is_read, a.is_bookmarked`

const articleColumns = `
    id, feed_id, url, source_url, title, author, content, content_hash,
    published_at, created_at, summary_short, summary_full, key_points,
    model_tier, summarized_at, word_count, reading_time_mins, featured_image,
    has_code_blocks, code_languages, site_name, categories, paywalled,
    extractor_used, content_type, file_name, file_path, is_read, is_bookmarked`

// ArticleRepo implements repository.ArticleRepository against the
// single-file store, keeping the FTS5 shadow table in sync via triggers.
type ArticleRepo struct {
	db           *sql.DB
	queryBuilder *ArticleQueryBuilder
}

func NewArticleRepo(db *sql.DB) repository.ArticleRepository {
	return &ArticleRepo{db: db, queryBuilder: NewArticleQueryBuilder()}
}

// scanArticle scans a row in articleColumns order into an entity.Article,
// decoding the JSON-encoded slice columns.
func scanArticle(row interface{ Scan(...any) error }) (*entity.Article, error) {
	var a entity.Article
	var keyPoints, codeLanguages, categories sql.NullString

	err := row.Scan(
		&a.ID, &a.FeedID, &a.URL, &a.SourceURL, &a.Title, &a.Author, &a.Content, &a.ContentHash,
		&a.PublishedAt, &a.CreatedAt, &a.SummaryShort, &a.SummaryFull, &keyPoints,
		&a.ModelTier, &a.SummarizedAt, &a.WordCount, &a.ReadingTimeMins, &a.FeaturedImage,
		&a.HasCodeBlocks, &codeLanguages, &a.SiteName, &categories, &a.Paywalled,
		&a.ExtractorUsed, &a.ContentType, &a.FileName, &a.FilePath, &a.IsRead, &a.IsBookmarked,
	)
	if err != nil {
		return nil, err
	}
	if keyPoints.Valid && keyPoints.String != "" {
		_ = json.Unmarshal([]byte(keyPoints.String), &a.KeyPoints)
	}
	if codeLanguages.Valid && codeLanguages.String != "" {
		_ = json.Unmarshal([]byte(codeLanguages.String), &a.CodeLanguages)
	}
	if categories.Valid && categories.String != "" {
		_ = json.Unmarshal([]byte(categories.String), &a.Categories)
	}
	return &a, nil
}

func encodeJSONSlice(s []string) *string {
	if len(s) == 0 {
		return nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil
	}
	v := string(b)
	return &v
}

func (r *ArticleRepo) Create(ctx context.Context, article *entity.Article) (int64, error) {
	if article.ContentHash == "" {
		article.ContentHash = entity.ComputeContentHash(article.Content)
	}
	const query = `
INSERT INTO articles (
    feed_id, url, source_url, title, author, content, content_hash,
    published_at, created_at, summary_short, summary_full, key_points,
    model_tier, summarized_at, word_count, reading_time_mins, featured_image,
    has_code_blocks, code_languages, site_name, categories, paywalled,
    extractor_used, content_type, file_name, file_path, is_read, is_bookmarked
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		article.FeedID, article.URL, article.SourceURL, article.Title, article.Author, article.Content, article.ContentHash,
		article.PublishedAt, article.CreatedAt, article.SummaryShort, article.SummaryFull, encodeJSONSlice(article.KeyPoints),
		article.ModelTier, article.SummarizedAt, article.WordCount, article.ReadingTimeMins, article.FeaturedImage,
		article.HasCodeBlocks, encodeJSONSlice(article.CodeLanguages), article.SiteName, encodeJSONSlice(article.Categories), article.Paywalled,
		article.ExtractorUsed, article.ContentTypeOrDefault(), article.FileName, article.FilePath, article.IsRead, article.IsBookmarked,
	)
	if err != nil {
		if isUniqueConstraintErr(err) {
			// Duplicate (feed_id, url): fail soft per the store contract.
			return 0, nil
		}
		return 0, fmt.Errorf("Create: ExecContext: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("Create: LastInsertId: %w", err)
	}
	article.ID = id
	return id, nil
}

func isUniqueConstraintErr(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (r *ArticleRepo) Get(ctx context.Context, id int64) (*entity.Article, error) {
	query := "SELECT" + articleColumns + " FROM articles WHERE id = ? LIMIT 1"
	a, err := scanArticle(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return a, nil
}

func (r *ArticleRepo) GetByURL(ctx context.Context, feedID int64, url string) (*entity.Article, error) {
	query := "SELECT" + articleColumns + " FROM articles WHERE feed_id = ? AND url = ? LIMIT 1"
	a, err := scanArticle(r.db.QueryRowContext(ctx, query, feedID, url))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByURL: %w", err)
	}
	return a, nil
}

func (r *ArticleRepo) GetWithFeed(ctx context.Context, id int64) (*repository.ArticleWithFeed, error) {
	var feedName string
	rows, err := r.db.QueryContext(ctx, articleWithFeedQuery(), id)
	if err != nil {
		return nil, fmt.Errorf("GetWithFeed: %w", err)
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return nil, rows.Err()
	}
	a, err := scanArticleWithFeed(rows, &feedName)
	if err != nil {
		return nil, fmt.Errorf("GetWithFeed: Scan: %w", err)
	}
	return &repository.ArticleWithFeed{Article: a, FeedName: feedName}, nil
}

// articleWithFeedQuery builds the article+feed-name join used by
// GetWithFeed and ListWithFeed, keeping the column list in one place.
func articleWithFeedQuery() string {
	return `
SELECT a.id, a.feed_id, a.url, a.source_url, a.title, a.author, a.content, a.content_hash,
    a.published_at, a.created_at, a.summary_short, a.summary_full, a.key_points,
    a.model_tier, a.summarized_at, a.word_count, a.reading_time_mins, a.featured_image,
    a.has_code_blocks, a.code_languages, a.site_name, a.categories, a.paywalled,
    a.extractor_used, a.content_type, a.file_name, a.file_path, a.is_read, a.is_bookmarked,
    f.name
FROM articles a
JOIN feeds f ON f.id = a.feed_id
WHERE a.id = ?`
}

func scanArticleWithFeed(rows *sql.Rows, feedName *string) (*entity.Article, error) {
	var a entity.Article
	var keyPoints, codeLanguages, categories sql.NullString
	err := rows.Scan(
		&a.ID, &a.FeedID, &a.URL, &a.SourceURL, &a.Title, &a.Author, &a.Content, &a.ContentHash,
		&a.PublishedAt, &a.CreatedAt, &a.SummaryShort, &a.SummaryFull, &keyPoints,
		&a.ModelTier, &a.SummarizedAt, &a.WordCount, &a.ReadingTimeMins, &a.FeaturedImage,
		&a.HasCodeBlocks, &codeLanguages, &a.SiteName, &categories, &a.Paywalled,
		&a.ExtractorUsed, &a.ContentType, &a.FileName, &a.FilePath, &a.IsRead, &a.IsBookmarked,
		feedName,
	)
	if err != nil {
		return nil, err
	}
	if keyPoints.Valid && keyPoints.String != "" {
		_ = json.Unmarshal([]byte(keyPoints.String), &a.KeyPoints)
	}
	if codeLanguages.Valid && codeLanguages.String != "" {
		_ = json.Unmarshal([]byte(codeLanguages.String), &a.CodeLanguages)
	}
	if categories.Valid && categories.String != "" {
		_ = json.Unmarshal([]byte(categories.String), &a.Categories)
	}
	return &a, nil
}

func (r *ArticleRepo) List(ctx context.Context, filters repository.ArticleFilters) ([]*entity.Article, error) {
	where, args := r.queryBuilder.BuildWhereClause(filters)
	order := r.queryBuilder.OrderClause(filters)
	limitClause, limitArgs := r.queryBuilder.LimitClause(filters)
	args = append(args, limitArgs...)

	query := "SELECT" + articleColumns + " FROM articles " + where + " " + order + " " + limitClause
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("List: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, 50)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

func (r *ArticleRepo) ListWithFeed(ctx context.Context, filters repository.ArticleFilters) ([]repository.ArticleWithFeed, error) {
	where, args := r.queryBuilder.BuildWhereClause(filters)
	where = prefixWhereColumns(where)
	order := strings.Replace(r.queryBuilder.OrderClause(filters), "published_at", "a.published_at", 1)
	limitClause, limitArgs := r.queryBuilder.LimitClause(filters)
	args = append(args, limitArgs...)

	query := `
SELECT a.id, a.feed_id, a.url, a.source_url, a.title, a.author, a.content, a.content_hash,
    a.published_at, a.created_at, a.summary_short, a.summary_full, a.key_points,
    a.model_tier, a.summarized_at, a.word_count, a.reading_time_mins, a.featured_image,
    a.has_code_blocks, a.code_languages, a.site_name, a.categories, a.paywalled,
    a.extractor_used, a.content_type, a.file_name, a.file_path, a.is_read, a.is_bookmarked,
    f.name
FROM articles a
JOIN feeds f ON f.id = a.feed_id
` + where + " " + order + " " + limitClause

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListWithFeed: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make([]repository.ArticleWithFeed, 0, 50)
	for rows.Next() {
		var feedName string
		a, err := scanArticleWithFeed(rows, &feedName)
		if err != nil {
			return nil, fmt.Errorf("ListWithFeed: Scan: %w", err)
		}
		result = append(result, repository.ArticleWithFeed{Article: a, FeedName: feedName})
	}
	return result, rows.Err()
}

// prefixWhereColumns rewrites an unqualified WHERE clause to reference the
// "a" alias, for use in the feed-joined queries.
func prefixWhereColumns(where string) string {
	if where == "" {
		return ""
	}
	replacer := strings.NewReplacer(
		"feed_id = ?", "a.feed_id = ?",
		"published_at >= ?", "a.published_at >= ?",
		"published_at <= ?", "a.published_at <= ?",
		"is_read = 0", "a.is_read = 0",
		"is_bookmarked = 1", "a.is_bookmarked = 1",
		"summarized_at IS NOT NULL", "a.summarized_at IS NOT NULL",
		"summarized_at IS NULL", "a.summarized_at IS NULL",
	)
	return replacer.Replace(where)
}

func (r *ArticleRepo) Count(ctx context.Context, filters repository.ArticleFilters) (int64, error) {
	where, args := r.queryBuilder.BuildWhereClause(filters)
	query := "SELECT COUNT(*) FROM articles " + where
	var count int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return count, nil
}

func (r *ArticleRepo) CountUnread(ctx context.Context, feedID *int64) (int64, error) {
	var query string
	var args []interface{}
	if feedID != nil {
		query = `SELECT COUNT(*) FROM articles WHERE feed_id = ? AND is_read = 0`
		args = []interface{}{*feedID}
	} else {
		query = `SELECT COUNT(*) FROM articles WHERE is_read = 0`
	}
	var count int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("CountUnread: %w", err)
	}
	return count, nil
}

func (r *ArticleRepo) GroupByDate(ctx context.Context, filters repository.ArticleFilters) (map[string][]*entity.Article, error) {
	articles, err := r.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("GroupByDate: %w", err)
	}
	groups := make(map[string][]*entity.Article)
	for _, a := range articles {
		key := "unknown"
		if a.PublishedAt != nil {
			key = a.PublishedAt.UTC().Format("2006-01-02")
		}
		groups[key] = append(groups[key], a)
	}
	return groups, nil
}

func (r *ArticleRepo) GroupByFeed(ctx context.Context, filters repository.ArticleFilters) (map[int64][]*entity.Article, error) {
	articles, err := r.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("GroupByFeed: %w", err)
	}
	groups := make(map[int64][]*entity.Article)
	for _, a := range articles {
		groups[a.FeedID] = append(groups[a.FeedID], a)
	}
	return groups, nil
}

// Search runs an FTS5 MATCH query over title/content, joined back to the
// articles table so the remaining filters still apply.
func (r *ArticleRepo) Search(ctx context.Context, query string, filters repository.ArticleFilters) ([]*entity.Article, error) {
	if strings.TrimSpace(query) == "" {
		return r.List(ctx, filters)
	}
	where, args := r.queryBuilder.BuildWhereClause(filters)
	where = prefixWhereColumns(where)
	whereClause := "WHERE articles_fts MATCH ?"
	if where != "" {
		whereClause += " AND " + strings.TrimPrefix(where, "WHERE ")
	}
	order := strings.Replace(r.queryBuilder.OrderClause(filters), "published_at", "a.published_at", 1)
	limitClause, limitArgs := r.queryBuilder.LimitClause(filters)

	sqlQuery := `
SELECT a.id, a.feed_id, a.url, a.source_url, a.title, a.author, a.content, a.content_hash,
    a.published_at, a.created_at, a.summary_short, a.summary_full, a.key_points,
    a.model_tier, a.summarized_at, a.word_count, a.reading_time_mins, a.featured_image,
    a.has_code_blocks, a.code_languages, a.site_name, a.categories, a.paywalled,
    a.extractor_used, a.content_type, a.file_name, a.file_path, a.is_read, a.is_bookmarked
FROM articles_fts
JOIN articles a ON a.id = articles_fts.rowid
` + whereClause + " " + order + " " + limitClause

	allArgs := append([]interface{}{ftsQuery(query)}, args...)
	allArgs = append(allArgs, limitArgs...)

	rows, err := r.db.QueryContext(ctx, sqlQuery, allArgs...)
	if err != nil {
		return nil, fmt.Errorf("Search: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, 50)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("Search: Scan: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// ftsQuery wraps each whitespace-separated term in double quotes so FTS5
// treats user input as a literal phrase search rather than query syntax.
func ftsQuery(raw string) string {
	terms := strings.Fields(raw)
	for i, t := range terms {
		t = strings.ReplaceAll(t, `"`, `""`)
		terms[i] = `"` + t + `"`
	}
	return strings.Join(terms, " ")
}

func (r *ArticleRepo) Update(ctx context.Context, id int64, update repository.ArticleUpdate) error {
	var sets []string
	var args []interface{}

	if update.Content != nil {
		sets = append(sets, "content = ?", "content_hash = ?")
		args = append(args, *update.Content, entity.ComputeContentHash(*update.Content))
	}
	if update.URL != nil {
		sets = append(sets, "url = ?")
		args = append(args, *update.URL)
	}
	if update.SummaryShort != nil {
		sets = append(sets, "summary_short = ?")
		args = append(args, *update.SummaryShort)
	}
	if update.SummaryLong != nil {
		sets = append(sets, "summary_full = ?")
		args = append(args, *update.SummaryLong)
	}
	if update.KeyPoints != nil {
		sets = append(sets, "key_points = ?", "summarized_at = CURRENT_TIMESTAMP")
		args = append(args, encodeJSONSlice(update.KeyPoints))
	}
	if update.ModelTier != nil {
		sets = append(sets, "model_tier = ?")
		args = append(args, *update.ModelTier)
	}
	if update.IsRead != nil {
		sets = append(sets, "is_read = ?")
		args = append(args, *update.IsRead)
	}
	if update.IsBookmarked != nil {
		sets = append(sets, "is_bookmarked = ?")
		args = append(args, *update.IsBookmarked)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)

	query := "UPDATE articles SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("Update: ExecContext: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Update: RowsAffected: %w", err)
	}
	if n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (r *ArticleRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM articles WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: ExecContext: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Delete: RowsAffected: %w", err)
	}
	if n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (r *ArticleRepo) FindDuplicates(ctx context.Context, feedID *int64) ([]repository.DuplicateGroup, error) {
	var query string
	var args []interface{}
	if feedID != nil {
		query = `
SELECT content_hash, GROUP_CONCAT(id)
FROM articles
WHERE feed_id = ? AND content_hash != ''
GROUP BY content_hash
HAVING COUNT(*) > 1`
		args = []interface{}{*feedID}
	} else {
		query = `
SELECT content_hash, GROUP_CONCAT(id)
FROM articles
WHERE content_hash != ''
GROUP BY content_hash
HAVING COUNT(*) > 1`
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("FindDuplicates: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var groups []repository.DuplicateGroup
	for rows.Next() {
		var hash, idList string
		if err := rows.Scan(&hash, &idList); err != nil {
			return nil, fmt.Errorf("FindDuplicates: Scan: %w", err)
		}
		var ids []int64
		for _, s := range strings.Split(idList, ",") {
			var id int64
			if _, err := fmt.Sscanf(s, "%d", &id); err == nil {
				ids = append(ids, id)
			}
		}
		groups = append(groups, repository.DuplicateGroup{ContentHash: hash, ArticleIDs: ids})
	}
	return groups, rows.Err()
}

func (r *ArticleRepo) ArchiveOlderThan(ctx context.Context, cutoff time.Time, opts repository.ArchiveOptions) (int64, error) {
	query := `DELETE FROM articles WHERE published_at < ?`
	if opts.KeepBookmarked {
		query += ` AND is_bookmarked = 0`
	}
	if opts.KeepUnread {
		query += ` AND is_read = 1`
	}
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("ArchiveOlderThan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("ArchiveOlderThan: RowsAffected: %w", err)
	}
	return n, nil
}
