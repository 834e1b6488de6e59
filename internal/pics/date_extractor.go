package pics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/acm19/waexif/internal/logger"
	"github.com/barasher/go-exiftool"
	goexif "github.com/rwcarlsen/goexif/exif"
)

// captureDateExtractor defines the interface for reading DateTimeOriginal
type captureDateExtractor interface {
	getCaptureDate(filePath string) (string, error)
	name() string
}

// goexifDateExtractor reads DateTimeOriginal with a pure Go EXIF decoder
type goexifDateExtractor struct{}

func newGoexifDateExtractor() *goexifDateExtractor {
	return &goexifDateExtractor{}
}

func (e *goexifDateExtractor) name() string {
	return "goexif"
}

func (e *goexifDateExtractor) getCaptureDate(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	x, err := goexif.Decode(f)
	if err != nil {
		return "", fmt.Errorf("failed to decode EXIF: %w", err)
	}
	tag, err := x.Get(goexif.DateTimeOriginal)
	if err != nil {
		return "", err
	}
	val, err := tag.StringVal()
	if err != nil {
		return "", err
	}
	return strings.TrimRight(val, "\x00 "), nil
}

// exiftoolDateExtractor reads DateTimeOriginal through a running exiftool process
type exiftoolDateExtractor struct {
	et *exiftool.Exiftool
}

func newExiftoolDateExtractor(et *exiftool.Exiftool) *exiftoolDateExtractor {
	return &exiftoolDateExtractor{et: et}
}

func (e *exiftoolDateExtractor) name() string {
	return "exiftool"
}

func (e *exiftoolDateExtractor) getCaptureDate(filePath string) (string, error) {
	fileInfos := e.et.ExtractMetadata(filePath)
	if len(fileInfos) == 0 {
		return "", fmt.Errorf("no metadata found")
	}

	fileInfo := fileInfos[0]
	if fileInfo.Err != nil {
		return "", fileInfo.Err
	}
	return fileInfo.GetString(ExifDateTimeOriginal)
}

// CaptureDateReader defines the interface for reading the stored capture date of an image
type CaptureDateReader interface {
	// ReadCaptureDate returns the DateTimeOriginal value of the image.
	ReadCaptureDate(filePath string) (string, error)
}

// AggregatedCaptureDateReader iterates through multiple extractors until one succeeds
type AggregatedCaptureDateReader struct {
	extractors []captureDateExtractor
}

// NewCaptureDateReader creates a reader that tries goexif first and then exiftool
// when et is not nil.
func NewCaptureDateReader(et *exiftool.Exiftool) *AggregatedCaptureDateReader {
	extractors := []captureDateExtractor{newGoexifDateExtractor()}
	if et != nil {
		extractors = append(extractors, newExiftoolDateExtractor(et))
	}
	return &AggregatedCaptureDateReader{extractors: extractors}
}

// ReadCaptureDate returns the first non-empty DateTimeOriginal found by the extractors
func (r *AggregatedCaptureDateReader) ReadCaptureDate(filePath string) (string, error) {
	for _, extractor := range r.extractors {
		date, err := extractor.getCaptureDate(filePath)
		if err == nil && date != "" {
			return date, nil
		}
		if err != nil {
			logger.Debug("Extractor failed, trying next", "extractor", extractor.name(), "file", filepath.Base(filePath), "error", err)
		}
	}

	return "", fmt.Errorf("all extractors failed for file: %s", filePath)
}
