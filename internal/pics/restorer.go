package pics

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/acm19/waexif/internal/logger"
	"github.com/acm19/waexif/internal/whatsapp"
)

// Reporter receives the decisions of a restore run. *slog.Logger satisfies it.
type Reporter interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Restorer defines the interface for restoring capture dates in a media directory
type Restorer interface {
	// Restore processes every file under root. Only validation and enumeration
	// errors, or ctx cancellation, are returned; per-file problems are reported
	// and skipped.
	Restore(ctx context.Context, root string, opts RestoreOptions) (Summary, error)
}

// restorer implements the Restorer interface
type restorer struct {
	stats      FileStats
	scanner    Scanner
	extensions Extensions
	tagger     DateTagger
	reader     CaptureDateReader
	reporter   Reporter
}

// NewRestorer creates a new Restorer writing image dates with tagger and reporting
// to reporter. reader is only used when RestoreOptions.Verify is set and may be nil.
func NewRestorer(tagger DateTagger, reader CaptureDateReader, reporter Reporter) Restorer {
	if reporter == nil {
		reporter = logger.Discard()
	}
	return &restorer{
		stats:      NewFileStats(),
		scanner:    NewScanner(),
		extensions: NewExtensions(),
		tagger:     tagger,
		reader:     reader,
		reporter:   reporter,
	}
}

// Restore processes every file under root.
func (r *restorer) Restore(ctx context.Context, root string, opts RestoreOptions) (Summary, error) {
	summary := newSummary()

	r.reporter.Info("Validating arguments")
	if err := r.stats.ValidateDirectory(root); err != nil {
		return summary, err
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return summary, fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	r.reporter.Info("Listing files in target directory")
	files, err := r.scanner.ListFiles(absRoot, opts.Recursive)
	if err != nil {
		return summary, err
	}
	summary.Total = len(files)
	r.reporter.Info(fmt.Sprintf("Total files: %d", len(files)), "count", len(files))

	r.reporter.Info(fmt.Sprintf("Filtering for valid file extensions: %v", r.extensions.Allowed()), "extensions", r.extensions.Allowed())
	set := Partition(files, r.extensions)
	total := len(set.Included)
	r.reporter.Info(fmt.Sprintf("Valid files: %d", total), "count", total)

	if opts.DryRun {
		r.reporter.Info("Dry run, no file will be modified")
	}

	r.reporter.Info("Begin processing files")
	for i, file := range set.Included {
		if err := ctx.Err(); err != nil {
			r.reporter.Warn("Processing cancelled", "processed", i, "total", total)
			return summary, err
		}

		rel := relativePath(absRoot, file)
		r.reporter.Info(progressLine(i+1, total, rel))

		outcome := r.processFile(file, opts)
		summary.record(outcome)

		if opts.ProgressChan != nil {
			select {
			case opts.ProgressChan <- ProgressEvent{
				Current: i + 1,
				Total:   total,
				File:    rel,
				Outcome: outcome,
			}:
			default:
				logger.Debug("Progress event dropped (channel full)", "file", rel)
			}
		}
	}
	r.reporter.Info("Finished processing files")

	excluded := len(set.Excluded)
	r.reporter.Info(fmt.Sprintf("Excluded files: %d", excluded), "count", excluded)
	for i, file := range set.Excluded {
		rel := relativePath(absRoot, file)
		r.reporter.Info(progressLine(i+1, excluded, rel))
		summary.Excluded = append(summary.Excluded, rel)
		summary.record(OutcomeExcluded)
	}

	return summary, nil
}

// processFile dispatches a file on its extension and returns what happened to it.
func (r *restorer) processFile(file MediaFile, opts RestoreOptions) ProcessingOutcome {
	switch {
	case r.extensions.IsVideo(file.Name):
		return r.processVideo(file, opts)
	case r.extensions.IsImage(file.Name):
		return r.processImage(file, opts)
	default:
		return OutcomeExcluded
	}
}

func (r *restorer) processVideo(file MediaFile, opts RestoreOptions) ProcessingOutcome {
	if !whatsapp.IsVideo(file.Name) {
		r.reporter.Warn("File is not a valid WhatsApp video, skipping")
		return OutcomeInvalidName
	}
	captured, err := file.CaptureTime(opts.Location)
	if err != nil {
		r.reporter.Warn("File is not a valid WhatsApp video, skipping", "error", err)
		return OutcomeInvalidName
	}

	if opts.DryRun {
		r.reporter.Info("Would set file times", "time", captured)
		return OutcomeUpdated
	}
	if err := SetFileTimes(file.Path(), captured); err != nil {
		r.reporter.Warn("Failed to set file times, skipping", "error", err)
		return OutcomeFailed
	}
	return OutcomeUpdated
}

func (r *restorer) processImage(file MediaFile, opts RestoreOptions) ProcessingOutcome {
	if !whatsapp.IsImage(file.Name) {
		r.reporter.Warn("File is not a valid WhatsApp image, skipping")
		return OutcomeInvalidName
	}
	captured, err := file.CaptureTime(opts.Location)
	if err != nil {
		r.reporter.Warn("File is not a valid WhatsApp image, skipping", "error", err)
		return OutcomeInvalidName
	}
	exifDate := whatsapp.FormatExifDate(captured)
	path := file.Path()

	if opts.DryRun {
		return r.previewImage(path, exifDate)
	}

	info, err := os.Stat(path)
	if err != nil {
		r.reporter.Warn("Failed to read file, skipping", "error", err)
		return OutcomeFailed
	}

	result, err := r.tagger.TagIfMissing(path, exifDate)
	if err != nil {
		if errors.Is(err, ErrInvalidImageData) {
			r.reporter.Warn("Invalid image data, skipping")
			return OutcomeInvalidData
		}
		r.reporter.Warn("Failed to write exif, skipping", "error", err)
		return OutcomeFailed
	}

	switch result {
	case TagUnchanged:
		r.reporter.Info("Exif date already exists, skipping")
		return OutcomeAlreadyTagged
	case TagRebuilt:
		r.reporter.Warn("Invalid exif, overwriting with new exif")
	}

	if opts.SetModTime {
		err = SetFileTimes(path, captured)
	} else {
		err = restoreModTime(path, info.ModTime())
	}
	if err != nil {
		r.reporter.Warn("Exif written but file times could not be set", "error", err)
	}

	if opts.Verify {
		r.verify(path, exifDate)
	}
	return OutcomeUpdated
}

// previewImage reports what processImage would do without writing anything.
func (r *restorer) previewImage(path, exifDate string) ProcessingOutcome {
	state, err := r.tagger.State(path)
	if err != nil {
		if errors.Is(err, ErrInvalidImageData) {
			r.reporter.Warn("Invalid image data, skipping")
			return OutcomeInvalidData
		}
		r.reporter.Warn("Failed to read exif, skipping", "error", err)
		return OutcomeFailed
	}

	switch state {
	case ExifTagged:
		r.reporter.Info("Exif date already exists, skipping")
		return OutcomeAlreadyTagged
	case ExifMalformed:
		r.reporter.Warn("Invalid exif, overwriting with new exif")
	}
	r.reporter.Info("Would write exif date", "date", exifDate)
	return OutcomeUpdated
}

// verify reads DateTimeOriginal back and reports a mismatch.
func (r *restorer) verify(path, exifDate string) {
	if r.reader == nil {
		return
	}
	stored, err := r.reader.ReadCaptureDate(path)
	if err != nil {
		r.reporter.Warn("Could not verify exif date", "error", err)
		return
	}
	if stored != exifDate {
		r.reporter.Warn("Exif date verification failed", "expected", exifDate, "found", stored)
	}
}

// relativePath returns the path of file relative to root, as shown in progress lines.
func relativePath(root string, file MediaFile) string {
	rel, err := filepath.Rel(root, file.Path())
	if err != nil {
		return file.Path()
	}
	return rel
}

// progressLine renders "  i/n - path" with i right-aligned to the width of n.
func progressLine(i, n int, path string) string {
	width := len(strconv.Itoa(n))
	return fmt.Sprintf("%*d/%d - %s", width, i, n, path)
}
