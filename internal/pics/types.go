package pics

import (
	"path/filepath"
	"time"

	"github.com/acm19/waexif/internal/whatsapp"
)

// MediaFile is a file found under the media directory.
type MediaFile struct {
	// Dir is the absolute directory containing the file.
	Dir string
	// Name is the base file name.
	Name string
}

// Path returns the full path of the file.
func (m MediaFile) Path() string {
	return filepath.Join(m.Dir, m.Name)
}

// Ext returns the file extension exactly as stored on disk.
func (m MediaFile) Ext() string {
	return filepath.Ext(m.Name)
}

// Kind returns the media kind announced by the file name.
func (m MediaFile) Kind() whatsapp.Kind {
	return whatsapp.Classify(m.Name)
}

// CaptureTime parses the capture timestamp from the file name.
func (m MediaFile) CaptureTime(loc *time.Location) (time.Time, error) {
	return whatsapp.ParseCaptureTime(m.Name, loc)
}

// RestoreOptions holds configuration options for a restore run.
type RestoreOptions struct {
	// Recursive walks the whole directory tree instead of the top level only.
	Recursive bool
	// SetModTime also sets the file modification time of tagged images.
	SetModTime bool
	// DryRun logs every decision without touching any file.
	DryRun bool
	// Verify reads DateTimeOriginal back after writing it.
	Verify bool
	// Location is the time zone the file name timestamps are read in (nil = local).
	Location *time.Location
	// ProgressChan is an optional channel for receiving progress events.
	ProgressChan chan<- ProgressEvent
}

// DefaultRestoreOptions returns the default restore options.
func DefaultRestoreOptions() RestoreOptions {
	return RestoreOptions{
		Recursive:  false,
		SetModTime: false,
		DryRun:     false,
		Verify:     false,
		Location:   time.Local,
	}
}

// ProgressEvent represents a progress update during a restore run.
type ProgressEvent struct {
	// Current is the number of files processed so far, including this one.
	Current int
	// Total is the number of files to process.
	Total int
	// File is the path of the file relative to the media directory.
	File string
	// Outcome is what happened to the file.
	Outcome ProcessingOutcome
}
