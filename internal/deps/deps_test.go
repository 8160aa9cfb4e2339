package deps

import (
	"os"
	"path/filepath"
	"testing"

	"shellbeats/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}

	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
}

func TestRequirementsMarksYtdlpOptionalWithAutoUpdate(t *testing.T) {
	cfg := config.Default()
	cfg.Ytdlp.AutoUpdate = true

	reqs := Requirements(&cfg)
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requirements, got %d", len(reqs))
	}
	if reqs[0].Optional {
		t.Fatal("mpv must not be optional")
	}
	if !reqs[1].Optional {
		t.Fatal("yt-dlp should be optional when auto-update is enabled")
	}

	cfg.Ytdlp.AutoUpdate = false
	reqs = Requirements(&cfg)
	if reqs[1].Optional {
		t.Fatal("yt-dlp should be required when auto-update is disabled")
	}
}

func TestMissingRequired(t *testing.T) {
	statuses := []Status{
		{Name: "mpv", Available: false},
		{Name: "yt-dlp", Available: false, Optional: true},
		{Name: "other", Available: true},
	}
	missing := MissingRequired(statuses)
	if len(missing) != 1 || missing[0] != "mpv" {
		t.Fatalf("missing = %v, want [mpv]", missing)
	}
}
