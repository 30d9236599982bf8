// Package library dispatches an uploaded file to the extractor for its
// format and turns the result into a library item (spec §6: "PDF, DOCX,
// HTML, TXT, Markdown for library uploads (extractor choice by extension)").
package library

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/pkg/textutil"
	"catchup-feed/internal/repository"
)

// MaxUploadSize is the default cap on a single upload, overridable via
// MAX_UPLOAD_SIZE_MB in the environment (read by the caller, not here).
const MaxUploadSize = 50 << 20 // 50MB

// extractorFor maps a lower-cased file extension to the function that
// turns its raw bytes into plain title/content text.
var extractorFor = map[string]func([]byte) (title, content string, err error){
	".pdf":  extractPDF,
	".docx": extractDOCX,
	".html": extractHTML,
	".htm":  extractHTML,
	".txt":  extractPlainText,
	".md":   extractMarkdown,
	".eml":  extractEML,
}

// ErrUnsupportedExtension is returned for any upload whose extension has no
// registered extractor.
type ErrUnsupportedExtension struct {
	Extension string
}

func (e *ErrUnsupportedExtension) Error() string {
	return fmt.Sprintf("library: unsupported upload extension %q", e.Extension)
}

// contentTypeFor maps an extension to the entity.ContentType stored on the
// resulting article.
func contentTypeFor(ext string) entity.ContentType {
	switch ext {
	case ".pdf":
		return entity.ContentTypePDF
	case ".docx":
		return entity.ContentTypeDOCX
	case ".html", ".htm":
		return entity.ContentTypeHTML
	case ".md":
		return entity.ContentTypeMD
	case ".eml":
		return entity.ContentTypeNewsletter
	default:
		return entity.ContentTypeTXT
	}
}

// UploadStore persists the raw upload bytes under a generated name and
// returns the path the article's FilePath should record.
type UploadStore interface {
	Save(originalFilename string, data []byte) (path string, err error)
}

// Service turns uploaded files into articles attached to the reserved
// standalone (library) pseudo-feed.
type Service struct {
	FeedRepo    repository.FeedRepository
	ArticleRepo repository.ArticleRepository
	Uploads     UploadStore
}

func NewService(feedRepo repository.FeedRepository, articleRepo repository.ArticleRepository, uploads UploadStore) *Service {
	return &Service{FeedRepo: feedRepo, ArticleRepo: articleRepo, Uploads: uploads}
}

// Ingest extracts text from data per its extension, stores the raw file,
// and inserts an article under the standalone feed. A nil article with a
// nil error means the upload's synthetic URL already exists (duplicate).
func (s *Service) Ingest(ctx context.Context, originalFilename string, data []byte) (*entity.Article, error) {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	extract, ok := extractorFor[ext]
	if !ok {
		return nil, &ErrUnsupportedExtension{Extension: ext}
	}

	title, content, err := extract(data)
	if err != nil {
		return nil, fmt.Errorf("library: extract %s: %w", originalFilename, err)
	}
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(originalFilename), ext)
	}

	path, err := s.Uploads.Save(originalFilename, data)
	if err != nil {
		return nil, fmt.Errorf("library: save upload: %w", err)
	}

	feed, err := s.FeedRepo.EnsureStandaloneFeed(ctx)
	if err != nil {
		return nil, fmt.Errorf("library: ensure standalone feed: %w", err)
	}

	syntheticURL := "upload://" + uuid.NewString()
	wordCount := textutil.WordCount(content)
	readingTime := textutil.ReadingTimeMinutes(wordCount)

	article := &entity.Article{
		FeedID:          feed.ID,
		URL:             syntheticURL,
		Title:           title,
		Content:         content,
		ContentHash:     entity.ComputeContentHash(content),
		CreatedAt:       time.Now(),
		ContentType:     contentTypeFor(ext),
		FileName:        &originalFilename,
		FilePath:        &path,
		WordCount:       &wordCount,
		ReadingTimeMins: &readingTime,
	}

	id, err := s.ArticleRepo.Create(ctx, article)
	if err != nil {
		return nil, fmt.Errorf("library: create article: %w", err)
	}
	if id == 0 {
		return nil, nil
	}
	article.ID = id
	return article, nil
}
