package download

import (
	"os"
	"path/filepath"
	"strings"

	"shellbeats/internal/textutil"
)

// LocalCopyExists scans dir for any file carrying the video id marker.
// Matching on the marker rather than the full filename keeps renamed
// files (with the marker intact) recognizable. A missing or unreadable
// directory reports false.
func LocalCopyExists(dir, videoID string) bool {
	_, ok := LocalCopyPath(dir, videoID)
	return ok
}

// LocalCopyPath returns the full path of the first file in dir carrying
// the video id marker.
func LocalCopyPath(dir, videoID string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	marker := textutil.IDMarker(videoID)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.Contains(entry.Name(), marker) {
			return filepath.Join(dir, entry.Name()), true
		}
	}
	return "", false
}
