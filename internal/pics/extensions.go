package pics

import (
	"path/filepath"
	"slices"
)

// Extensions defines the interface for file extension operations.
//
// Matching is exact and case-sensitive on the extension as the filesystem reports
// it: WhatsApp always exports lowercase extensions, so "photo.JPG" is not media.
type Extensions interface {
	// IsImage returns true if the file extension is a supported image format.
	IsImage(filePath string) bool
	// IsVideo returns true if the file extension is a supported video format.
	IsVideo(filePath string) bool
	// IsSupported returns true if the file extension is any supported media format.
	IsSupported(filePath string) bool
	// Allowed returns every supported extension, images first.
	Allowed() []string
}

// extensions implements the Extensions interface.
type extensions struct {
	imageExts []string
	videoExts []string
}

// NewExtensions creates the WhatsApp export allow-list: .jpg, .jpeg, .mp4 and .3gp.
func NewExtensions() Extensions {
	return &extensions{
		imageExts: []string{".jpg", ".jpeg"},
		videoExts: []string{".mp4", ".3gp"},
	}
}

// IsImage returns true if the file extension is a supported image format.
func (e *extensions) IsImage(filePath string) bool {
	return slices.Contains(e.imageExts, filepath.Ext(filePath))
}

// IsVideo returns true if the file extension is a supported video format.
func (e *extensions) IsVideo(filePath string) bool {
	return slices.Contains(e.videoExts, filepath.Ext(filePath))
}

// IsSupported returns true if the file extension is any supported media format.
func (e *extensions) IsSupported(filePath string) bool {
	return e.IsImage(filePath) || e.IsVideo(filePath)
}

func (e *extensions) Allowed() []string {
	return slices.Concat(e.imageExts, e.videoExts)
}
