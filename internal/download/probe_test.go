package download

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLocalCopyExists(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Renamed_By_User_[abc123XYZ].mp3"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Other_[zzzzz9999].mp3"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !LocalCopyExists(dir, "abc123XYZ") {
		t.Error("marker in renamed file not recognized")
	}
	if LocalCopyExists(dir, "nosuchid1") {
		t.Error("matched an id with no file")
	}
}

func TestLocalCopyExistsMissingDir(t *testing.T) {
	if LocalCopyExists(filepath.Join(t.TempDir(), "absent"), "abc123XYZ") {
		t.Error("missing directory reported a local copy")
	}
}

func TestLocalCopyExistsIgnoresDirectories(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "folder_[abc123XYZ].mp3"), 0o755); err != nil {
		t.Fatal(err)
	}
	if LocalCopyExists(dir, "abc123XYZ") {
		t.Error("directory name treated as a local copy")
	}
}
