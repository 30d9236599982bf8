package library

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FileUploadStore writes uploads to a directory, one file per upload, named
// by UUID with the original extension preserved (spec §6).
type FileUploadStore struct {
	Dir string
}

func NewFileUploadStore(dir string) *FileUploadStore {
	return &FileUploadStore{Dir: dir}
}

func (s *FileUploadStore) Save(originalFilename string, data []byte) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(originalFilename))
	name := uuid.NewString() + ext
	path := filepath.Join(s.Dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return path, nil
}
