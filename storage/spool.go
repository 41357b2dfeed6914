package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/Garicore01/PlayBeat-Backend/logger"

	"github.com/google/uuid"
)

// Spool is the local staging directory for multipart uploads. Files land
// here first and are promoted to object storage only after the store commit.
type Spool struct {
	dir string
}

// NewSpool creates the spool directory if needed.
func NewSpool(dir string) (*Spool, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create spool directory %s: %w", dir, err)
	}
	return &Spool{dir: dir}, nil
}

// Save writes an uploaded file into the spool and returns its local path.
func (s *Spool) Save(file multipart.File, originalName string) (string, error) {
	name := uuid.NewString() + filepath.Ext(originalName)
	path := filepath.Join(s.dir, name)

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create spool file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write spool file: %w", err)
	}
	return path, nil
}

// Discard removes a spool file, ignoring a missing one.
func (s *Spool) Discard(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn("Failed to discard spool file",
			logger.String("path", path),
			logger.ErrorField(err))
	}
}
