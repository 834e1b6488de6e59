package pics

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/acm19/waexif/internal/logger"
)

// ignoredFiles are OS and export artifacts that never take part in a run.
var ignoredFiles = []string{
	".DS_Store",
	"_chat.txt",
}

// Scanner defines the interface for listing candidate files
type Scanner interface {
	// ListFiles returns the files under root, optionally walking subdirectories.
	// Files of a directory come before the files of its subdirectories, each level
	// in lexical order.
	ListFiles(root string, recursive bool) ([]MediaFile, error)
}

// scanner implements the Scanner interface
type scanner struct{}

// NewScanner creates a new Scanner instance
func NewScanner() Scanner {
	return &scanner{}
}

// isIgnored reports whether name is an artifact that is never listed.
func isIgnored(name string) bool {
	return slices.Contains(ignoredFiles, name) || strings.HasPrefix(name, "._")
}

// ListFiles returns the files under root, optionally walking subdirectories.
// Callers validate root; an unreadable root is returned as a read error.
func (s *scanner) ListFiles(root string, recursive bool) ([]MediaFile, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	var files []MediaFile
	if err := s.listDir(absRoot, recursive, true, &files); err != nil {
		return nil, err
	}
	return files, nil
}

func (s *scanner) listDir(dir string, recursive, isRoot bool, files *[]MediaFile) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if isRoot {
			return fmt.Errorf("failed to read directory %s: %w", dir, err)
		}
		logger.Debug("Skipping unreadable directory", "path", dir, "error", err)
		return nil
	}

	var subdirs []string
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			subdirs = append(subdirs, path)
			continue
		}
		if isIgnored(entry.Name()) {
			continue
		}
		// Follow symlinks so links to files count and links to directories do not
		info, err := os.Stat(path)
		if err != nil {
			logger.Debug("Skipping unreadable entry", "path", path, "error", err)
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		*files = append(*files, MediaFile{Dir: dir, Name: entry.Name()})
	}

	if !recursive {
		return nil
	}
	for _, subdir := range subdirs {
		if err := s.listDir(subdir, recursive, false, files); err != nil {
			return err
		}
	}
	return nil
}

// FileSet is the split of enumerated files by extension.
type FileSet struct {
	// Included holds files with an allowed extension, in enumeration order.
	Included []MediaFile
	// Excluded holds every other file, in enumeration order.
	Excluded []MediaFile
}

// Partition splits files into allowed and excluded extensions, preserving order.
func Partition(files []MediaFile, exts Extensions) FileSet {
	var set FileSet
	for _, f := range files {
		if exts.IsSupported(f.Name) {
			set.Included = append(set.Included, f)
		} else {
			set.Excluded = append(set.Excluded, f)
		}
	}
	return set
}
