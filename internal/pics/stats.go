package pics

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

var (
	// ErrPathNotFound is returned when the media directory does not exist.
	ErrPathNotFound = errors.New("path specified does not exist")
	// ErrNotADirectory is returned when the media path is not a directory.
	ErrNotADirectory = errors.New("path specified is not a directory")
)

// FileStats defines the interface for directory checks
type FileStats interface {
	// ValidateDirectory checks that dir exists and is a directory
	ValidateDirectory(dir string) error
}

// fileStats implements the FileStats interface
type fileStats struct{}

// NewFileStats creates a new FileStats instance
func NewFileStats() FileStats {
	return &fileStats{}
}

// ValidateDirectory checks that dir exists and is a directory
func (f *fileStats) ValidateDirectory(dir string) error {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrPathNotFound, dir)
	}
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotADirectory, dir)
	}
	return nil
}
