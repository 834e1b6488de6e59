// Package whatsapp understands the file names WhatsApp gives to exported chat media,
// for example 00000015-PHOTO-2021-04-12-18-24-22.jpg.
package whatsapp

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// ExifDateLayout is the layout of EXIF date fields such as DateTimeOriginal.
	ExifDateLayout = "2006:01:02 15:04:05"

	filenameDateLayout = "20060102150405"
)

// ErrInvalidFilenameFormat is returned when a file name does not carry a valid timestamp.
var ErrInvalidFilenameFormat = errors.New("invalid filename format")

var (
	imageFilenameRegex = regexp.MustCompile(`^\d{8}-PHOTO-\d{4}-\d{2}-\d{2}-\d{2}-\d{2}-\d{2}\..+$`)
	videoFilenameRegex = regexp.MustCompile(`^\d{8}-VIDEO-\d{4}-\d{2}-\d{2}-\d{2}-\d{2}-\d{2}\..+$`)
	tokenSeparators    = regexp.MustCompile(`[.-]`)
)

// Kind is the media kind a file name announces.
type Kind int

const (
	KindUnrecognized Kind = iota
	KindImage
	KindVideo
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	default:
		return "unrecognized"
	}
}

// IsImage reports whether filename follows the WhatsApp photo naming convention.
func IsImage(filename string) bool {
	return imageFilenameRegex.MatchString(filename)
}

// IsVideo reports whether filename follows the WhatsApp video naming convention.
func IsVideo(filename string) bool {
	return videoFilenameRegex.MatchString(filename)
}

// Classify returns the media kind announced by filename.
func Classify(filename string) Kind {
	switch {
	case IsImage(filename):
		return KindImage
	case IsVideo(filename):
		return KindVideo
	default:
		return KindUnrecognized
	}
}

// ParseCaptureTime extracts the capture timestamp from a WhatsApp file name.
//
// The name is split on every '.' and '-', the sequence number and media tag are
// dropped and the following six tokens are read as YYYYMMDDHHMMSS in loc. It does
// not check the media tag, callers classify the name first.
func ParseCaptureTime(filename string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	tokens := tokenSeparators.Split(filename, -1)
	if len(tokens) < 8 {
		return time.Time{}, fmt.Errorf("%w: %s: expected 8 date segments, got %d", ErrInvalidFilenameFormat, filename, len(tokens))
	}
	dateStr := strings.Join(tokens[2:8], "")
	t, err := time.ParseInLocation(filenameDateLayout, dateStr, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %v", ErrInvalidFilenameFormat, filename, err)
	}
	return t, nil
}

// FormatExifDate renders t the way EXIF date fields store it.
func FormatExifDate(t time.Time) string {
	return t.Format(ExifDateLayout)
}

// ExifDate parses filename and returns the EXIF representation of its timestamp.
func ExifDate(filename string, loc *time.Location) (string, error) {
	t, err := ParseCaptureTime(filename, loc)
	if err != nil {
		return "", err
	}
	return FormatExifDate(t), nil
}
