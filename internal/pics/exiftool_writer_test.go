package pics

import (
	"errors"
	"testing"
	"time"
)

func TestExiftoolDateTagger_TagIfMissing(t *testing.T) {
	tmpDir := t.TempDir()
	modTime := time.Date(2023, 6, 15, 10, 30, 0, 0, time.UTC)
	testFile := createValidJPEG(t, tmpDir, "00000015-PHOTO-2021-04-12-18-24-22.jpg", modTime)

	et := createTestExiftool(t)
	tagger := NewExiftoolDateTagger(et)

	result, err := tagger.TagIfMissing(testFile, testExifDate)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result != TagWritten {
		t.Errorf("Expected TagWritten, got %v", result)
	}
	assertFileModTime(t, testFile, modTime)

	date, err := NewCaptureDateReader(et).ReadCaptureDate(testFile)
	if err != nil {
		t.Fatalf("Failed to read capture date: %v", err)
	}
	if date != testExifDate {
		t.Errorf("Expected %s, got %s", testExifDate, date)
	}

	result, err = tagger.TagIfMissing(testFile, "1999:01:01 00:00:00")
	if err != nil {
		t.Fatalf("Second write failed: %v", err)
	}
	if result != TagUnchanged {
		t.Errorf("Expected TagUnchanged on second call, got %v", result)
	}
}

func TestExiftoolDateTagger_InvalidImageData(t *testing.T) {
	testFile := createTestFile(t, t.TempDir(), "00000015-PHOTO-2021-04-12-18-24-22.jpg")
	tagger := NewExiftoolDateTagger(createTestExiftool(t))

	result, err := tagger.TagIfMissing(testFile, testExifDate)
	if !errors.Is(err, ErrInvalidImageData) {
		t.Errorf("Expected ErrInvalidImageData, got: %v", err)
	}
	if result != TagUnchanged {
		t.Errorf("Expected TagUnchanged, got %v", result)
	}
	if string(readTestFile(t, testFile)) != "test" {
		t.Error("Expected invalid file to be left untouched")
	}
}

func TestExiftoolDateTagger_NotInitialised(t *testing.T) {
	tagger := NewExiftoolDateTagger(nil)
	if _, err := tagger.State("any.jpg"); err == nil {
		t.Error("Expected error without exiftool, got nil")
	}
	if err := tagger.Close(); err != nil {
		t.Errorf("Expected Close to succeed, got: %v", err)
	}
}

func TestNewDateTagger_Exiftool(t *testing.T) {
	createTestExiftool(t)

	tagger, err := NewDateTagger(EngineExiftool)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if _, ok := tagger.(*exiftoolDateTagger); !ok {
		t.Errorf("Expected exiftool tagger, got %T", tagger)
	}
	if err := tagger.Close(); err != nil {
		t.Errorf("Expected Close to succeed, got: %v", err)
	}
}
