package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteOversizeDocument writes a flat-JSON shaped file of at least size
// bytes at path, padding a single string field. Loaders bounded below
// that size reject the whole document.
func WriteOversizeDocument(t testing.TB, path string, size int64) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	written, err := f.WriteString(`{"version": 1, "padding": "`)
	if err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	chunk := strings.Repeat("a", 32*1024)
	remaining := size - int64(written)
	for remaining > 0 {
		piece := chunk
		if remaining < int64(len(piece)) {
			piece = piece[:remaining]
		}
		n, err := f.WriteString(piece)
		if err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= int64(n)
	}
	if _, err := f.WriteString(`"}`); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
