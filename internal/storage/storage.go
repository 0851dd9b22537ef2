// Package storage stores uploaded project images on the local filesystem.
package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/demowall/backend/internal/apperrors"
	"github.com/google/uuid"
)

// allowedExtensions is the image extension allowlist for uploads
var allowedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// localStorage writes uploaded images under a base directory and exposes them
// through a public URL prefix
type localStorage struct {
	baseDir      string
	publicPrefix string
}

// NewLocalStorage creates a new localStorage instance
func NewLocalStorage(baseDir, publicPrefix string) *localStorage {
	return &localStorage{
		baseDir:      baseDir,
		publicPrefix: strings.TrimSuffix(publicPrefix, "/"),
	}
}

// Save writes the uploaded image to disk under a collision-resistant name
// (millisecond timestamp plus random suffix) and returns its public URL path.
// The original filename is only consulted for its extension, which must be on
// the image allowlist.
func (s *localStorage) Save(reader io.Reader, originalFilename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("%w: only image files allowed (jpeg, jpg, png, gif, webp)", apperrors.ErrValidation)
	}

	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	filename := GenerateFilename(ext)
	fullPath := filepath.Join(s.baseDir, filename)

	// O_EXCL guards against a filename collision overwriting a concurrent upload
	file, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		// Cleanup: drop the partial file if the copy fails
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}

	return path.Join(s.publicPrefix, filename), nil
}

// GenerateFilename builds a collision-resistant upload filename from the
// current time and a random suffix. The extension must include the leading dot.
func GenerateFilename(ext string) string {
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.New().String(), ext)
}
