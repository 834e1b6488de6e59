package pics

import (
	"fmt"
	"os"
)

// statImageFile checks that an image exists, is a regular file and is not empty.
// Empty files are reported as ErrInvalidImageData.
func statImageFile(filePath string) (os.FileInfo, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: not a regular file", ErrInvalidImageData)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("%w: file is 0 bytes", ErrInvalidImageData)
	}
	return info, nil
}
