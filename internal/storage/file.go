package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/clipcoach/backend/internal/models"
)

// FileStorage appends leads to a tab-separated file, one line per lead.
// The file is opened in append mode per write; concurrent appends of short
// lines rely on the kernel's atomic append, which is fine at this volume.
type FileStorage struct {
	path string
}

func NewFileStorage(path string) (*FileStorage, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create leads directory: %w", err)
		}
	}
	return &FileStorage{path: path}, nil
}

func (s *FileStorage) SaveLead(ctx context.Context, lead *models.Lead) error {
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open leads file: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("%s\t%s\n", lead.CreatedAt.Format(time.RFC3339), lead.Email)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("failed to append lead: %w", err)
	}
	return nil
}

func (s *FileStorage) Close() error {
	return nil
}
