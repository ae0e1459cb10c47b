// Package local implements a local filesystem attachment store.
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/campusfolio/platform/internal/records"
)

// Config captures the parameters for the local filesystem store.
type Config struct {
	// BaseDir is the root directory where attachments will be stored.
	BaseDir string
}

// Store writes proof blobs to the local filesystem.
type Store struct {
	baseDir string
}

// New creates a local filesystem-backed attachment store.
func New(cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.BaseDir) == "" {
		return nil, fmt.Errorf("base directory is required")
	}

	info, err := os.Stat(cfg.BaseDir)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat base directory: %w", err)
		}
		if mkErr := os.MkdirAll(cfg.BaseDir, 0o750); mkErr != nil {
			return nil, fmt.Errorf("create base directory: %w", mkErr)
		}
	} else if !info.IsDir() {
		return nil, fmt.Errorf("base directory path is not a directory")
	}

	return &Store{baseDir: cfg.BaseDir}, nil
}

// Put writes data to a file under the base directory and returns a file://
// reference.
func (s *Store) Put(_ context.Context, path string, _ string, data []byte) (string, error) {
	fullPath, err := s.resolve(path)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return "", fmt.Errorf("create parent directories: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o600); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return "file://" + fullPath, nil
}

// Delete removes a stored file by its file:// reference.
func (s *Store) Delete(_ context.Context, ref string) error {
	path, ok := strings.CutPrefix(ref, "file://")
	if !ok {
		return fmt.Errorf("not a local attachment reference: %q", ref)
	}
	if !strings.HasPrefix(filepath.Clean(path), filepath.Clean(s.baseDir)+string(filepath.Separator)) {
		return fmt.Errorf("reference outside base directory")
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return records.ErrNotFound
		}
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// resolve joins path under baseDir, refusing traversal outside it.
func (s *Store) resolve(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("path is required")
	}
	fullPath := filepath.Join(s.baseDir, path)
	cleanBase := filepath.Clean(s.baseDir)
	if !strings.HasPrefix(filepath.Clean(fullPath), cleanBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal detected")
	}
	return fullPath, nil
}
