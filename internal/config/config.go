package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	ConfigRoot   string `toml:"config_root"`
	LogDir       string `toml:"log_dir"`
	DownloadPath string `toml:"download_path"`
}

// Player contains configuration for mpv playback.
type Player struct {
	Binary    string `toml:"binary"`
	IPCSocket string `toml:"ipc_socket"`
}

// Ytdlp contains configuration for the yt-dlp integration.
type Ytdlp struct {
	Binary     string `toml:"binary"`
	AutoUpdate bool   `toml:"auto_update"`
}

// Downloads contains configuration for the download queue and worker.
type Downloads struct {
	PollIntervalMS int `toml:"poll_interval_ms"`
	QueueCapacity  int `toml:"queue_capacity"`
	SearchLimit    int `toml:"search_limit"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for shellbeats.
//
// Configuration sections by subsystem:
//   - Paths: state directory, log directory, and the download root
//   - Player: mpv binary and IPC socket
//   - Ytdlp: yt-dlp binary and self-update behavior
//   - Downloads: worker poll interval and queue capacity
//   - Logging: log format and level
//
// Paths.DownloadPath is only the bootstrap default; once the settings
// document under the config root exists, that document wins.
type Config struct {
	Paths     Paths     `toml:"paths"`
	Player    Player    `toml:"player"`
	Ytdlp     Ytdlp     `toml:"ytdlp"`
	Downloads Downloads `toml:"downloads"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/shellbeats/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. A missing file is
// not an error; defaults apply.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("shellbeats.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state directories the player needs:
// the config root, the playlists directory, the managed binary
// directory, and the log directory. The download root is created
// lazily by the worker, since it may live on storage that is not
// always mounted.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.ConfigRoot, c.PlaylistsDir(), c.BinDir(), c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SettingsPath returns the path of the persisted settings document.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Paths.ConfigRoot, "config.json")
}

// IndexPath returns the path of the playlist index document.
func (c *Config) IndexPath() string {
	return filepath.Join(c.Paths.ConfigRoot, "playlists.json")
}

// PlaylistsDir returns the directory holding per-playlist documents.
func (c *Config) PlaylistsDir() string {
	return filepath.Join(c.Paths.ConfigRoot, "playlists")
}

// QueuePath returns the path of the download queue snapshot.
func (c *Config) QueuePath() string {
	return filepath.Join(c.Paths.ConfigRoot, "download_queue.json")
}

// BinDir returns the directory for managed tool binaries.
func (c *Config) BinDir() string {
	return filepath.Join(c.Paths.ConfigRoot, "bin")
}

// ManagedYtdlpPath returns the path of the self-updated yt-dlp binary.
// When present it is preferred over Ytdlp.Binary.
func (c *Config) ManagedYtdlpPath() string {
	return filepath.Join(c.BinDir(), "yt-dlp")
}

// YtdlpVersionPath returns the path of the recorded yt-dlp version tag.
func (c *Config) YtdlpVersionPath() string {
	return filepath.Join(c.Paths.ConfigRoot, "yt-dlp.version")
}

// LockPath returns the path of the single-instance lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.ConfigRoot, "shellbeats.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
