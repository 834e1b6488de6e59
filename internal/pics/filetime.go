package pics

import (
	"fmt"
	"os"
	"time"
)

// SetFileTimes sets both the access and modification time of path to t.
func SetFileTimes(path string, t time.Time) error {
	if err := os.Chtimes(path, t, t); err != nil {
		return fmt.Errorf("failed to set file times: %w", err)
	}
	return nil
}

// restoreModTime puts back the modification time an image had before it was rewritten.
// The access time is left as the rewrite set it.
func restoreModTime(path string, modTime time.Time) error {
	if err := os.Chtimes(path, time.Time{}, modTime); err != nil {
		return fmt.Errorf("failed to restore modification time: %w", err)
	}
	return nil
}
