// Package article provides use cases for managing article entities.
// It implements business logic for creating, updating, deleting, and querying articles,
// including validation and interaction with the article repository.
package article

import (
	"context"
	"fmt"
	"time"

	"catchup-feed/internal/common/pagination"
	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/repository"
)

// CreateInput represents the input parameters for creating a new article.
type CreateInput struct {
	FeedID      int64
	Title       string
	URL         string
	Content     string
	PublishedAt *time.Time
}

// UpdateInput represents the input parameters for updating an existing article.
// Fields left nil will not be updated.
type UpdateInput struct {
	ID           int64
	Content      *string
	URL          *string
	SummaryShort *string
	SummaryLong  *string
	KeyPoints    []string
	ModelTier    *string
	IsRead       *bool
	IsBookmarked *bool
}

// Service provides article management use cases.
// It handles business logic for article operations and delegates persistence to the repository.
type Service struct {
	Repo repository.ArticleRepository
}

// PaginatedResult represents the result of a paginated query.
// It contains both the data and pagination metadata.
type PaginatedResult struct {
	Data       []repository.ArticleWithFeed
	Pagination pagination.Metadata
}

// List retrieves articles matching filters, most recent first unless
// filters.Sort overrides that.
func (s *Service) List(ctx context.Context, filters repository.ArticleFilters) ([]*entity.Article, error) {
	articles, err := s.Repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return articles, nil
}

// ListWithFeed retrieves articles paired with their feed's display name.
func (s *Service) ListWithFeed(ctx context.Context, filters repository.ArticleFilters) ([]repository.ArticleWithFeed, error) {
	articles, err := s.Repo.ListWithFeed(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("list articles with feed: %w", err)
	}
	return articles, nil
}

// ListWithFeedPaginated retrieves articles with pagination support. It
// calculates the appropriate offset, retrieves the data and total count, and
// returns a PaginatedResult with both data and metadata.
func (s *Service) ListWithFeedPaginated(ctx context.Context, filters repository.ArticleFilters, params pagination.Params) (*PaginatedResult, error) {
	filters.Offset = pagination.CalculateOffset(params.Page, params.Limit)
	filters.Limit = params.Limit

	total, err := s.Repo.Count(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("count articles: %w", err)
	}

	articles, err := s.Repo.ListWithFeed(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("list articles with feed paginated: %w", err)
	}

	return &PaginatedResult{
		Data: articles,
		Pagination: pagination.Metadata{
			Total:      total,
			Page:       params.Page,
			Limit:      params.Limit,
			TotalPages: pagination.CalculateTotalPages(total, params.Limit),
		},
	}, nil
}

// Get retrieves a single article by its ID.
// Returns ErrInvalidArticleID if the ID is not positive.
// Returns ErrArticleNotFound if the article does not exist.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Article, error) {
	if id <= 0 {
		return nil, ErrInvalidArticleID
	}

	article, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if article == nil {
		return nil, ErrArticleNotFound
	}
	return article, nil
}

// GetWithFeed retrieves a single article by its ID along with its feed's name.
// Returns ErrInvalidArticleID if the ID is not positive.
// Returns ErrArticleNotFound if the article does not exist.
func (s *Service) GetWithFeed(ctx context.Context, id int64) (*repository.ArticleWithFeed, error) {
	if id <= 0 {
		return nil, ErrInvalidArticleID
	}

	withFeed, err := s.Repo.GetWithFeed(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get article with feed: %w", err)
	}
	if withFeed == nil {
		return nil, ErrArticleNotFound
	}
	return withFeed, nil
}

// Search finds articles matching the given keyword, combined with filters.
// Returns an error if the repository operation fails.
func (s *Service) Search(ctx context.Context, query string, filters repository.ArticleFilters) ([]*entity.Article, error) {
	articles, err := s.Repo.Search(ctx, query, filters)
	if err != nil {
		return nil, fmt.Errorf("search articles: %w", err)
	}
	return articles, nil
}

// Create creates a new article with the provided input.
// It validates the input data including URL format before creating the article.
// Returns a ValidationError if any input field is invalid. A nil, nil
// return means the URL already had an article on this feed (spec §4.1's
// soft-fail-on-duplicate contract).
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Article, error) {
	if in.FeedID <= 0 {
		return nil, &entity.ValidationError{Field: "feedID", Message: "must be positive"}
	}
	if in.Title == "" {
		return nil, &entity.ValidationError{Field: "title", Message: "is required"}
	}
	if in.URL == "" {
		return nil, &entity.ValidationError{Field: "url", Message: "is required"}
	}
	if err := entity.ValidateURL(in.URL); err != nil {
		return nil, fmt.Errorf("validate URL: %w", err)
	}

	art := &entity.Article{
		FeedID:      in.FeedID,
		Title:       in.Title,
		URL:         in.URL,
		Content:     in.Content,
		ContentHash: entity.ComputeContentHash(in.Content),
		PublishedAt: in.PublishedAt,
		CreatedAt:   time.Now(),
	}

	id, err := s.Repo.Create(ctx, art)
	if err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	if id == 0 {
		return nil, nil
	}
	art.ID = id
	return art, nil
}

// Update modifies an existing article with the provided input.
// Only non-nil fields in the input will be updated.
// Returns ErrInvalidArticleID if the ID is not positive.
// Returns ErrArticleNotFound if the article does not exist.
func (s *Service) Update(ctx context.Context, in UpdateInput) error {
	if in.ID <= 0 {
		return ErrInvalidArticleID
	}

	existing, err := s.Repo.Get(ctx, in.ID)
	if err != nil {
		return fmt.Errorf("get article: %w", err)
	}
	if existing == nil {
		return ErrArticleNotFound
	}

	if in.URL != nil {
		if err := entity.ValidateURL(*in.URL); err != nil {
			return fmt.Errorf("validate URL: %w", err)
		}
	}

	update := repository.ArticleUpdate{
		Content:      in.Content,
		URL:          in.URL,
		SummaryShort: in.SummaryShort,
		SummaryLong:  in.SummaryLong,
		KeyPoints:    in.KeyPoints,
		ModelTier:    in.ModelTier,
		IsRead:       in.IsRead,
		IsBookmarked: in.IsBookmarked,
	}

	if err := s.Repo.Update(ctx, in.ID, update); err != nil {
		return fmt.Errorf("update article: %w", err)
	}
	return nil
}

// Delete removes an article by its ID.
// Returns ErrInvalidArticleID if the ID is not positive.
// Returns an error if the repository operation fails.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidArticleID
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}

// FindDuplicates returns groups of articles sharing a content hash, scoped
// to a single feed when feedID is non-nil.
func (s *Service) FindDuplicates(ctx context.Context, feedID *int64) ([]repository.DuplicateGroup, error) {
	groups, err := s.Repo.FindDuplicates(ctx, feedID)
	if err != nil {
		return nil, fmt.Errorf("find duplicate articles: %w", err)
	}
	return groups, nil
}

// ArchiveOlderThan deletes articles published before cutoff, honoring opts,
// and reports how many rows were removed.
func (s *Service) ArchiveOlderThan(ctx context.Context, cutoff time.Time, opts repository.ArchiveOptions) (int64, error) {
	deleted, err := s.Repo.ArchiveOlderThan(ctx, cutoff, opts)
	if err != nil {
		return 0, fmt.Errorf("archive articles: %w", err)
	}
	return deleted, nil
}
