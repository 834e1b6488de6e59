package pics

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/acm19/waexif/internal/logger"
	"github.com/barasher/go-exiftool"
)

// exiftoolDateTagger writes DateTimeOriginal through the exiftool binary
type exiftoolDateTagger struct {
	et    *exiftool.Exiftool
	owned bool
}

// NewExiftoolDateTagger creates a DateTagger reading metadata with et.
// The caller keeps ownership of et.
func NewExiftoolDateTagger(et *exiftool.Exiftool) DateTagger {
	return &exiftoolDateTagger{et: et}
}

// StartExiftoolDateTagger starts an exiftool process and returns a DateTagger
// that closes it on Close.
func StartExiftoolDateTagger() (DateTagger, error) {
	if _, err := exec.LookPath("exiftool"); err != nil {
		return nil, fmt.Errorf("exiftool not found in PATH: %w", err)
	}
	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil, fmt.Errorf("failed to start exiftool: %w", err)
	}
	return &exiftoolDateTagger{et: et, owned: true}, nil
}

func (w *exiftoolDateTagger) Close() error {
	if w.owned && w.et != nil {
		return w.et.Close()
	}
	return nil
}

// State inspects the capture date metadata of an image without changing it.
func (w *exiftoolDateTagger) State(filePath string) (ExifState, error) {
	if w.et == nil {
		return ExifMissing, fmt.Errorf("exiftool not initialised")
	}
	if _, err := statImageFile(filePath); err != nil {
		return ExifMissing, err
	}

	fileInfos := w.et.ExtractMetadata(filePath)
	if len(fileInfos) == 0 {
		return ExifMissing, fmt.Errorf("%w: no metadata returned", ErrInvalidImageData)
	}
	fileInfo := fileInfos[0]
	if fileInfo.Err != nil {
		return ExifMissing, fmt.Errorf("%w: %v", ErrInvalidImageData, fileInfo.Err)
	}
	if msg, err := fileInfo.GetString("Error"); err == nil {
		return ExifMissing, fmt.Errorf("%w: %s", ErrInvalidImageData, msg)
	}
	if fileType, err := fileInfo.GetString("FileType"); err == nil && fileType != "JPEG" {
		return ExifMissing, fmt.Errorf("%w: file type %s", ErrInvalidImageData, fileType)
	}

	if val, err := fileInfo.GetString(ExifDateTimeOriginal); err == nil && strings.TrimSpace(val) != "" {
		return ExifTagged, nil
	}
	if warning, err := fileInfo.GetString("Warning"); err == nil && strings.Contains(strings.ToUpper(warning), "EXIF") {
		logger.Debug("exiftool reported an EXIF warning", "file", filepath.Base(filePath), "warning", warning)
		return ExifMalformed, nil
	}
	return ExifMissing, nil
}

// TagIfMissing writes exifDate to DateTimeOriginal unless it is already set
func (w *exiftoolDateTagger) TagIfMissing(filePath, exifDate string) (TagResult, error) {
	state, err := w.State(filePath)
	if err != nil {
		return TagUnchanged, err
	}

	switch state {
	case ExifTagged:
		logger.Debug("DateTimeOriginal already exists, skipping", "file", filepath.Base(filePath))
		return TagUnchanged, nil
	case ExifMalformed:
		if err := runExiftoolWrite(filePath, exifDate, true); err != nil {
			return TagUnchanged, err
		}
		return TagRebuilt, nil
	}

	if err := runExiftoolWrite(filePath, exifDate, false); err != nil {
		// exiftool refuses to update metadata it cannot parse, so start from an empty container
		logger.Debug("exiftool write failed, rebuilding metadata", "file", filepath.Base(filePath), "error", err)
		if err := runExiftoolWrite(filePath, exifDate, true); err != nil {
			return TagUnchanged, err
		}
		return TagRebuilt, nil
	}

	logger.Debug("Wrote DateTimeOriginal to EXIF", "file", filepath.Base(filePath), "date", exifDate)
	return TagWritten, nil
}

// runExiftoolWrite sets DateTimeOriginal in place. With clear, all existing
// metadata is removed first.
func runExiftoolWrite(filePath, exifDate string, clear bool) error {
	// -overwrite_original prevents creating backup files
	// -P preserves the file modification date/time
	args := []string{"-overwrite_original", "-P"}
	if clear {
		args = append(args, "-all=")
	}
	args = append(args, "-"+ExifDateTimeOriginal+"="+exifDate, filePath)

	output, err := exec.Command("exiftool", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to write %s: %w (output: %s)", ExifDateTimeOriginal, err, strings.TrimSpace(string(output)))
	}
	return nil
}
