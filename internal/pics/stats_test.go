package pics

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestFileStats_ValidateDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	if err := NewFileStats().ValidateDirectory(tmpDir); err != nil {
		t.Errorf("Expected no error for valid directory, got: %v", err)
	}
}

func TestFileStats_ValidateDirectory_Nonexistent(t *testing.T) {
	nonexistent := filepath.Join(t.TempDir(), "nonexistent")

	err := NewFileStats().ValidateDirectory(nonexistent)
	if !errors.Is(err, ErrPathNotFound) {
		t.Errorf("Expected ErrPathNotFound, got: %v", err)
	}
}

func TestFileStats_ValidateDirectory_File(t *testing.T) {
	tmpDir := t.TempDir()
	file := createTestFile(t, tmpDir, "00000015-PHOTO-2021-04-12-18-24-22.jpg")

	err := NewFileStats().ValidateDirectory(file)
	if !errors.Is(err, ErrNotADirectory) {
		t.Errorf("Expected ErrNotADirectory, got: %v", err)
	}
}
