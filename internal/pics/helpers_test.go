package pics

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/barasher/go-exiftool"
	exif "github.com/dsoprea/go-exif/v3"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure/v2"
)

// createTestExiftool creates an exiftool instance for testing and ensures cleanup.
// Tests are skipped when the exiftool binary is not installed.
func createTestExiftool(t *testing.T) *exiftool.Exiftool {
	t.Helper()
	if _, err := exec.LookPath("exiftool"); err != nil {
		t.Skip("exiftool binary not available")
	}
	et, err := exiftool.NewExiftool()
	if err != nil {
		t.Fatalf("Failed to create exiftool: %v", err)
	}
	t.Cleanup(func() { et.Close() })
	return et
}

func createTestDir(t *testing.T, parentDir, name string) string {
	t.Helper()
	dirPath := filepath.Join(parentDir, name)
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		t.Fatalf("Failed to create directory %s: %v", dirPath, err)
	}
	return dirPath
}

func createTestFile(t *testing.T, dir, filename string) string {
	t.Helper()
	filePath := filepath.Join(dir, filename)
	if err := os.WriteFile(filePath, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create file %s: %v", filePath, err)
	}
	return filePath
}

// jpegBytes encodes a small solid image without any metadata segments.
func jpegBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("Failed to encode JPEG: %v", err)
	}
	return buf.Bytes()
}

// createValidJPEG writes a metadata-free JPEG with the given modification time.
func createValidJPEG(t *testing.T, dir, filename string, modTime time.Time) string {
	t.Helper()
	filePath := filepath.Join(dir, filename)
	if err := os.WriteFile(filePath, jpegBytes(t), 0644); err != nil {
		t.Fatalf("Failed to create JPEG %s: %v", filePath, err)
	}
	if err := os.Chtimes(filePath, modTime, modTime); err != nil {
		t.Fatalf("Failed to set file times: %v", err)
	}
	return filePath
}

// createJPEGWithMalformedExif writes a JPEG whose APP1 segment claims to be EXIF
// but holds no valid TIFF structure.
func createJPEGWithMalformedExif(t *testing.T, dir, filename string) string {
	t.Helper()
	return createJPEGWithExifPayload(t, dir, filename, []byte("garbage that is not a tiff header"))
}

// createJPEGWithExifPayload writes a JPEG with an APP1 segment holding the EXIF
// prefix followed by payload.
func createJPEGWithExifPayload(t *testing.T, dir, filename string, payload []byte) string {
	t.Helper()
	data := jpegBytes(t)

	segment := append([]byte("Exif\x00\x00"), payload...)
	segLen := len(segment) + 2
	app1 := append([]byte{0xFF, 0xE1, byte(segLen >> 8), byte(segLen)}, segment...)

	// Insert right after SOI
	withExif := make([]byte, 0, len(data)+len(app1))
	withExif = append(withExif, data[:2]...)
	withExif = append(withExif, app1...)
	withExif = append(withExif, data[2:]...)

	filePath := filepath.Join(dir, filename)
	if err := os.WriteFile(filePath, withExif, 0644); err != nil {
		t.Fatalf("Failed to create JPEG %s: %v", filePath, err)
	}
	return filePath
}

// createJPEGWithCameraExif writes a JPEG whose EXIF holds Make in IFD0 and
// ISOSpeedRatings in the Exif IFD, without DateTimeOriginal.
func createJPEGWithCameraExif(t *testing.T, dir, filename string) string {
	t.Helper()
	mc, err := jpegstructure.NewJpegMediaParser().ParseBytes(jpegBytes(t))
	if err != nil {
		t.Fatalf("Failed to parse JPEG: %v", err)
	}
	sl := mc.(*jpegstructure.SegmentList)

	rootIb, err := newRootIfdBuilder()
	if err != nil {
		t.Fatalf("Failed to create IFD builder: %v", err)
	}
	if err := rootIb.SetStandardWithName("Make", "Acme"); err != nil {
		t.Fatalf("Failed to set Make: %v", err)
	}
	exifIb, err := exif.GetOrCreateIbFromRootIb(rootIb, exifIfdPath)
	if err != nil {
		t.Fatalf("Failed to create Exif IFD: %v", err)
	}
	if err := exifIb.SetStandardWithName("ISOSpeedRatings", []uint16{200}); err != nil {
		t.Fatalf("Failed to set ISOSpeedRatings: %v", err)
	}
	if err := sl.SetExif(rootIb); err != nil {
		t.Fatalf("Failed to set EXIF: %v", err)
	}

	var buf bytes.Buffer
	if err := sl.Write(&buf); err != nil {
		t.Fatalf("Failed to encode JPEG: %v", err)
	}
	filePath := filepath.Join(dir, filename)
	if err := os.WriteFile(filePath, buf.Bytes(), 0644); err != nil {
		t.Fatalf("Failed to create JPEG %s: %v", filePath, err)
	}
	return filePath
}

// jpegSegments splits a JPEG file into its segments.
func jpegSegments(t *testing.T, path string) []*jpegstructure.Segment {
	t.Helper()
	mc, err := jpegstructure.NewJpegMediaParser().ParseFile(path)
	if err != nil {
		t.Fatalf("Failed to parse %s: %v", path, err)
	}
	return mc.(*jpegstructure.SegmentList).Segments()
}

func readTestFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return data
}

func assertFileModTime(t *testing.T, path string, expected time.Time) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Failed to stat file %s: %v", path, err)
	}
	// File systems may not preserve sub-second precision
	if info.ModTime().Sub(expected).Abs() > time.Second {
		t.Errorf("Expected mod time %v, got %v", expected, info.ModTime())
	}
}
