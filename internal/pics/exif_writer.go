package pics

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure/v2"

	"github.com/acm19/waexif/internal/logger"
)

const (
	// ExifDateTimeOriginal is the EXIF field holding the capture date
	ExifDateTimeOriginal = "DateTimeOriginal"

	exifIfdPath = "IFD/Exif"
)

const (
	// EngineNative writes EXIF in-process.
	EngineNative = "native"
	// EngineExiftool delegates to the exiftool binary.
	EngineExiftool = "exiftool"
)

// ErrInvalidImageData is returned when a file cannot be read as an image. The file is left untouched.
var ErrInvalidImageData = errors.New("invalid image data")

// ExifState describes the capture date metadata found in an image.
type ExifState int

const (
	// ExifMissing means there is no metadata container or no DateTimeOriginal in it.
	ExifMissing ExifState = iota
	// ExifTagged means DateTimeOriginal is present and non-empty.
	ExifTagged
	// ExifMalformed means the metadata container exists but cannot be parsed.
	ExifMalformed
)

// TagResult is what TagIfMissing did.
type TagResult int

const (
	// TagUnchanged means nothing was written, either because DateTimeOriginal was
	// already set or because of an error.
	TagUnchanged TagResult = iota
	// TagWritten means DateTimeOriginal was added to the existing metadata.
	TagWritten
	// TagRebuilt means malformed metadata was replaced by a container holding only DateTimeOriginal.
	TagRebuilt
)

// DateTagger defines the interface for writing the capture date into images
type DateTagger interface {
	// State inspects the capture date metadata of an image without changing it.
	State(filePath string) (ExifState, error)
	// TagIfMissing writes exifDate to DateTimeOriginal unless a non-empty value
	// already exists. Errors wrapping ErrInvalidImageData leave the file untouched.
	TagIfMissing(filePath, exifDate string) (TagResult, error)
	// Close releases any resources held by the tagger.
	Close() error
}

// NewDateTagger creates the DateTagger for engine (EngineNative or EngineExiftool).
func NewDateTagger(engine string) (DateTagger, error) {
	switch engine {
	case EngineNative, "":
		return NewNativeDateTagger(), nil
	case EngineExiftool:
		return StartExiftoolDateTagger()
	default:
		return nil, fmt.Errorf("unsupported EXIF engine: %s", engine)
	}
}

// nativeDateTagger edits the APP1 segment of JPEG files in-process
type nativeDateTagger struct {
	parser *jpegstructure.JpegMediaParser
}

// NewNativeDateTagger creates a DateTagger that needs no external tools
func NewNativeDateTagger() DateTagger {
	return &nativeDateTagger{
		parser: jpegstructure.NewJpegMediaParser(),
	}
}

func (w *nativeDateTagger) Close() error {
	return nil
}

// State inspects the capture date metadata of an image without changing it.
func (w *nativeDateTagger) State(filePath string) (ExifState, error) {
	sl, _, err := w.load(filePath)
	if err != nil {
		return ExifMissing, err
	}
	state, _ := inspectExif(sl)
	return state, nil
}

// TagIfMissing writes exifDate to DateTimeOriginal unless it is already set
func (w *nativeDateTagger) TagIfMissing(filePath, exifDate string) (TagResult, error) {
	sl, info, err := w.load(filePath)
	if err != nil {
		return TagUnchanged, err
	}

	state, rootIb := inspectExif(sl)
	result := TagWritten
	switch state {
	case ExifTagged:
		logger.Debug("DateTimeOriginal already exists, skipping", "file", filepath.Base(filePath))
		return TagUnchanged, nil
	case ExifMalformed:
		logger.Debug("Malformed EXIF, rebuilding", "file", filepath.Base(filePath))
		rootIb = nil
		result = TagRebuilt
	}

	if rootIb == nil {
		if rootIb, err = newRootIfdBuilder(); err != nil {
			return TagUnchanged, fmt.Errorf("failed to create EXIF container: %w", err)
		}
	}

	data, err := encodeWithDate(sl, rootIb, exifDate)
	if err != nil {
		return TagUnchanged, err
	}

	if err := writeFileAtomic(filePath, data, info.Mode().Perm()); err != nil {
		return TagUnchanged, fmt.Errorf("failed to write %s: %w", filePath, err)
	}

	logger.Debug("Wrote DateTimeOriginal to EXIF", "file", filepath.Base(filePath), "date", exifDate)
	return result, nil
}

// load reads and splits a JPEG into its segments.
func (w *nativeDateTagger) load(filePath string) (sl *jpegstructure.SegmentList, info os.FileInfo, err error) {
	defer recoverAs(ErrInvalidImageData, &err)

	info, err = statImageFile(filePath)
	if err != nil {
		return nil, nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}
	if !w.parser.LooksLikeFormat(data) {
		return nil, nil, fmt.Errorf("%w: not a JPEG file", ErrInvalidImageData)
	}

	mc, err := w.parser.ParseBytes(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidImageData, err)
	}
	sl, ok := mc.(*jpegstructure.SegmentList)
	if !ok {
		return nil, nil, fmt.Errorf("%w: unexpected JPEG structure", ErrInvalidImageData)
	}
	return sl, info, nil
}

// inspectExif classifies the EXIF segment and returns a builder seeded with it when it parses.
func inspectExif(sl *jpegstructure.SegmentList) (state ExifState, rootIb *exif.IfdBuilder) {
	defer func() {
		if r := recover(); r != nil {
			state, rootIb = ExifMalformed, nil
		}
	}()

	if _, _, err := sl.FindExif(); err != nil {
		if errors.Is(err, exif.ErrNoExif) {
			return ExifMissing, nil
		}
		return ExifMalformed, nil
	}

	// A segment with the EXIF prefix but no TIFF header reports ErrNoExif here
	if _, _, err := sl.Exif(); err != nil {
		return ExifMalformed, nil
	}

	rootIb, err := sl.ConstructExifBuilder()
	if err != nil {
		return ExifMalformed, nil
	}

	if dateTimeOriginal(rootIb) != "" {
		return ExifTagged, rootIb
	}
	return ExifMissing, rootIb
}

// dateTimeOriginal returns the DateTimeOriginal value held by rootIb, or "".
func dateTimeOriginal(rootIb *exif.IfdBuilder) string {
	exifIb, err := exif.GetOrCreateIbFromRootIb(rootIb, exifIfdPath)
	if err != nil {
		return ""
	}
	bt, err := exifIb.FindTagWithName(ExifDateTimeOriginal)
	if err != nil {
		return ""
	}
	return strings.TrimRight(string(bt.Value().Bytes()), "\x00 ")
}

// newRootIfdBuilder creates an empty IFD0 using the standard tag mapping.
func newRootIfdBuilder() (*exif.IfdBuilder, error) {
	im, err := exifcommon.NewIfdMappingWithStandard()
	if err != nil {
		return nil, err
	}
	ti := exif.NewTagIndex()
	return exif.NewIfdBuilder(im, ti, exifcommon.IfdStandardIfdIdentity, exifcommon.EncodeDefaultByteOrder), nil
}

// encodeWithDate sets DateTimeOriginal on rootIb, swaps it into sl and returns the new file bytes.
func encodeWithDate(sl *jpegstructure.SegmentList, rootIb *exif.IfdBuilder, exifDate string) (data []byte, err error) {
	defer recoverAs(errors.New("EXIF encoding failed"), &err)

	exifIb, err := exif.GetOrCreateIbFromRootIb(rootIb, exifIfdPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", exifIfdPath, err)
	}
	if err := exifIb.SetStandardWithName(ExifDateTimeOriginal, exifDate); err != nil {
		return nil, fmt.Errorf("failed to set %s: %w", ExifDateTimeOriginal, err)
	}
	if err := sl.SetExif(rootIb); err != nil {
		return nil, fmt.Errorf("failed to replace EXIF segment: %w", err)
	}

	var buf bytes.Buffer
	if err := sl.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// writeFileAtomic replaces path with data (temp file + rename), resolving symlinks first.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, target)
}

// recoverAs turns a panic raised by the EXIF libraries into an error wrapping target.
func recoverAs(target error, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %v", target, r)
	}
}
