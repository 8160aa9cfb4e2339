package ytdlp

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"shellbeats/internal/fileutil"
	"shellbeats/internal/logging"
)

const (
	defaultReleasesURL = "https://github.com/yt-dlp/yt-dlp/releases/latest"
	defaultDownloadURL = "https://github.com/yt-dlp/yt-dlp/releases/latest/download/yt-dlp"
)

// Updater keeps a managed copy of yt-dlp current. It runs once per
// session in the background: resolve the latest release tag from the
// GitHub redirect, compare it with the recorded version, and download
// the binary only when they differ.
type Updater struct {
	binPath     string
	versionPath string
	releasesURL string
	downloadURL string
	client      *http.Client
	logger      *slog.Logger

	mu       sync.Mutex
	status   string
	updating bool
	hasLocal bool
	started  bool
	done     chan struct{}
}

// UpdaterOption tunes an Updater.
type UpdaterOption func(*Updater)

// WithEndpoints overrides the release and download URLs.
func WithEndpoints(releases, download string) UpdaterOption {
	return func(u *Updater) {
		u.releasesURL = releases
		u.downloadURL = download
	}
}

// NewUpdater constructs an updater managing the binary at binPath and
// the version record at versionPath.
func NewUpdater(binPath, versionPath string, logger *slog.Logger, opts ...UpdaterOption) *Updater {
	u := &Updater{
		binPath:     binPath,
		versionPath: versionPath,
		releasesURL: defaultReleasesURL,
		downloadURL: defaultDownloadURL,
		client:      &http.Client{Timeout: 60 * time.Second},
		logger:      logging.WithComponent(logger, "ytdlp-update"),
		hasLocal:    fileutil.Exists(binPath),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Start launches the update check in the background. Extra calls are
// no-ops.
func (u *Updater) Start() {
	u.mu.Lock()
	if u.started {
		u.mu.Unlock()
		return
	}
	u.started = true
	u.updating = true
	u.status = "Checking yt-dlp version..."
	u.mu.Unlock()

	go func() {
		defer close(u.done)
		u.run()
	}()
}

// Wait blocks until a started update finishes.
func (u *Updater) Wait() {
	u.mu.Lock()
	started := u.started
	u.mu.Unlock()
	if started {
		<-u.done
	}
}

// Status returns the latest status text and whether the update is
// still in flight.
func (u *Updater) Status() (string, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.status, u.updating
}

// HasLocal reports whether a managed binary exists.
func (u *Updater) HasLocal() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.hasLocal
}

func (u *Updater) run() {
	tag, err := u.latestTag()
	if err != nil {
		u.logger.Warn("resolve latest yt-dlp version", logging.Error(err))
		u.finish("No network or failed to check version")
		return
	}
	u.logger.Debug("latest yt-dlp version", logging.String("tag", tag))

	if u.localVersion() == tag && fileutil.Exists(u.binPath) {
		u.setLocal(true)
		u.finish(fmt.Sprintf("yt-dlp is up to date (%s)", tag))
		return
	}

	u.setStatus(fmt.Sprintf("Downloading yt-dlp %s...", tag))
	if err := u.download(); err != nil {
		u.logger.Warn("download yt-dlp", logging.Error(err))
		u.finish("yt-dlp download failed")
		return
	}

	if err := os.WriteFile(u.versionPath, []byte(tag+"\n"), 0o644); err != nil {
		u.logger.Warn("record yt-dlp version", logging.Error(err))
	}
	u.setLocal(true)
	u.finish(fmt.Sprintf("yt-dlp updated to %s", tag))
	u.logger.Info("updated yt-dlp", logging.String("tag", tag))
}

// latestTag resolves the release tag from the redirect target of the
// latest-release URL, e.g. .../releases/tag/2025.08.20.
func (u *Updater) latestTag() (string, error) {
	resp, err := u.client.Get(u.releasesURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	final := resp.Request.URL.Path
	tag := strings.TrimSpace(path.Base(final))
	if tag == "" || tag == "." || tag == "/" || tag == "latest" {
		return "", fmt.Errorf("no version tag in redirect target %q", final)
	}
	return tag, nil
}

func (u *Updater) localVersion() string {
	data, err := os.ReadFile(u.versionPath)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (u *Updater) download() error {
	resp, err := u.client.Get(u.downloadURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.New(resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(u.binPath), 0o755); err != nil {
		return err
	}
	tmp := u.binPath + ".partial"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, u.binPath)
}

func (u *Updater) setStatus(text string) {
	u.mu.Lock()
	u.status = text
	u.mu.Unlock()
}

func (u *Updater) setLocal(v bool) {
	u.mu.Lock()
	u.hasLocal = v
	u.mu.Unlock()
}

func (u *Updater) finish(text string) {
	u.mu.Lock()
	u.status = text
	u.updating = false
	u.mu.Unlock()
}
