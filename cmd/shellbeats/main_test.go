package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTestConfig writes a config file whose state lives under a temp
// directory and returns its path.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	content := fmt.Sprintf(`[paths]
config_root = %q
log_dir = %q
download_path = %q

[ytdlp]
auto_update = false
`, filepath.Join(base, "state"), filepath.Join(base, "logs"), filepath.Join(base, "music"))
	path := filepath.Join(base, "shellbeats.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "shellbeats ") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestConfigInitCommand(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("output missing target path: %q", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config not written: %v", err)
	}

	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when config already exists")
	}
	if _, err := runCommand(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}

func TestPlaylistCreateAndList(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runCommand(t, "--config", cfgPath, "playlist", "create", "Road Trip")
	if err != nil {
		t.Fatalf("playlist create: %v", err)
	}
	if !strings.Contains(out, "Road Trip") {
		t.Fatalf("create output: %q", out)
	}

	out, err = runCommand(t, "--config", cfgPath, "playlist", "list")
	if err != nil {
		t.Fatalf("playlist list: %v", err)
	}
	if !strings.Contains(out, "Road Trip") || !strings.Contains(out, "local") {
		t.Fatalf("list output: %q", out)
	}
}

func TestPlaylistDeleteRequiresForce(t *testing.T) {
	cfgPath := writeTestConfig(t)

	if _, err := runCommand(t, "--config", cfgPath, "playlist", "create", "Doomed"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := runCommand(t, "--config", cfgPath, "playlist", "delete", "Doomed"); err == nil {
		t.Fatal("expected delete to demand --force")
	}
	if _, err := runCommand(t, "--config", cfgPath, "playlist", "delete", "Doomed", "--force"); err != nil {
		t.Fatalf("forced delete: %v", err)
	}

	out, err := runCommand(t, "--config", cfgPath, "playlist", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if strings.Contains(out, "Doomed") {
		t.Fatalf("playlist still listed after delete: %q", out)
	}
}

func TestQueueStatusEmpty(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runCommand(t, "--config", cfgPath, "queue", "status")
	if err != nil {
		t.Fatalf("queue status: %v", err)
	}
	if !strings.Contains(out, "pending") || !strings.Contains(out, "Download path:") {
		t.Fatalf("status output: %q", out)
	}
}

func TestQueueListEmpty(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runCommand(t, "--config", cfgPath, "queue", "list")
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	if !strings.Contains(out, "Queue is empty") {
		t.Fatalf("list output: %q", out)
	}
}
