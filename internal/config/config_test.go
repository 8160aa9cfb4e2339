package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultNormalizes(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if strings.HasPrefix(cfg.Paths.ConfigRoot, "~") {
		t.Errorf("config root not expanded: %q", cfg.Paths.ConfigRoot)
	}
	if cfg.Downloads.PollIntervalMS != 500 {
		t.Errorf("poll interval = %d, want 500", cfg.Downloads.PollIntervalMS)
	}
	if cfg.Downloads.QueueCapacity != 1000 {
		t.Errorf("queue capacity = %d, want 1000", cfg.Downloads.QueueCapacity)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Error("missing config reported as existing")
	}
	if resolved != path {
		t.Errorf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Player.Binary != "mpv" {
		t.Errorf("player binary = %q, want mpv", cfg.Player.Binary)
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
config_root = "` + dir + `/state"

[downloads]
queue_capacity = 25

[logging]
format = "json"
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("config file not detected")
	}
	if cfg.Paths.ConfigRoot != filepath.Join(dir, "state") {
		t.Errorf("config root = %q", cfg.Paths.ConfigRoot)
	}
	if cfg.Paths.LogDir != filepath.Join(dir, "state", "logs") {
		t.Errorf("log dir = %q, want under config root", cfg.Paths.LogDir)
	}
	if cfg.Downloads.QueueCapacity != 25 {
		t.Errorf("queue capacity = %d, want 25", cfg.Downloads.QueueCapacity)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestLoadRejectsBadLogging(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nlevel = \"loud\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := Load(path); err == nil {
		t.Error("expected validation error for bad log level")
	}
}

func TestDerivedPaths(t *testing.T) {
	cfg := Default()
	cfg.Paths.ConfigRoot = "/tmp/sb"
	tests := []struct {
		got  string
		want string
	}{
		{cfg.SettingsPath(), "/tmp/sb/config.json"},
		{cfg.IndexPath(), "/tmp/sb/playlists.json"},
		{cfg.PlaylistsDir(), "/tmp/sb/playlists"},
		{cfg.QueuePath(), "/tmp/sb/download_queue.json"},
		{cfg.ManagedYtdlpPath(), "/tmp/sb/bin/yt-dlp"},
		{cfg.YtdlpVersionPath(), "/tmp/sb/yt-dlp.version"},
		{cfg.LockPath(), "/tmp/sb/shellbeats.lock"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("derived path = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestEnsureDirectories(t *testing.T) {
	cfg := Default()
	root := filepath.Join(t.TempDir(), "state")
	cfg.Paths.ConfigRoot = root
	cfg.Paths.LogDir = filepath.Join(root, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{root, cfg.PlaylistsDir(), cfg.BinDir(), cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("directory %q missing", dir)
		}
	}
}
