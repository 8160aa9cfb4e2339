// Package app wires configuration, storage, the download queue, and the
// external players into one shellbeats session. A session owns the single
// instance lock and every long-lived component the TUI and CLI commands
// operate on.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"shellbeats/internal/config"
	"shellbeats/internal/deps"
	"shellbeats/internal/document"
	"shellbeats/internal/download"
	"shellbeats/internal/library"
	"shellbeats/internal/logging"
	"shellbeats/internal/player"
	"shellbeats/internal/ytdlp"
)

// ErrAlreadyRunning indicates another shellbeats process holds the lock.
var ErrAlreadyRunning = errors.New("another shellbeats instance is already running")

// App owns the components of one shellbeats session.
type App struct {
	cfg       *config.Config
	logger    *slog.Logger
	logPath   string
	sessionID string
	lock      *flock.Flock

	downloadPath string

	Queue   *download.Queue
	Library *library.Library
	Ytdlp   *ytdlp.Client
	Updater *ytdlp.Updater
	Player  *player.Player
}

// Options tunes session startup.
type Options struct {
	// SkipLock disables the single instance lock, used by read-only
	// commands that only inspect state.
	SkipLock bool
	// Logger overrides the session logger; when nil a per-session log
	// file is created under the configured log directory.
	Logger *slog.Logger
}

// New builds a session from the given configuration. The caller must
// Close the returned App.
func New(cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	a := &App{
		cfg:       cfg,
		sessionID: uuid.NewString(),
	}

	if opts.Logger != nil {
		a.logger = opts.Logger
	} else {
		logger, logPath, err := logging.NewSession(cfg, a.sessionID)
		if err != nil {
			return nil, fmt.Errorf("init session logger: %w", err)
		}
		a.logger = logger
		a.logPath = logPath
		logging.CleanupOldLogs(logger, cfg.Paths.LogDir, cfg.Logging.RetentionDays)
	}

	if !opts.SkipLock {
		lock := flock.New(cfg.LockPath())
		ok, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire lock: %w", err)
		}
		if !ok {
			return nil, ErrAlreadyRunning
		}
		a.lock = lock
	}

	if err := a.loadSettings(); err != nil {
		a.releaseLock()
		return nil, err
	}

	client, err := ytdlp.New(cfg.Ytdlp.Binary, cfg.ManagedYtdlpPath(), cfg.Downloads.SearchLimit, ytdlp.WithLogger(a.logger))
	if err != nil {
		a.releaseLock()
		return nil, err
	}
	a.Ytdlp = client

	if cfg.Ytdlp.AutoUpdate {
		a.Updater = ytdlp.NewUpdater(cfg.ManagedYtdlpPath(), cfg.YtdlpVersionPath(), a.logger)
		a.Updater.Start()
	}

	a.Queue = download.New(cfg.QueuePath(), a.downloadPath, client, download.Options{
		Capacity:     cfg.Downloads.QueueCapacity,
		PollInterval: time.Duration(cfg.Downloads.PollIntervalMS) * time.Millisecond,
		Logger:       a.logger,
		ManualStart:  opts.SkipLock,
	})
	restored := a.Queue.Load()
	if restored > 0 {
		a.logger.Info("restored queued downloads", logging.Int("count", restored))
	}

	lib, err := library.Open(cfg.IndexPath(), cfg.PlaylistsDir(), a.Queue, a.logger)
	if err != nil {
		a.Queue.StopWorker()
		a.releaseLock()
		return nil, err
	}
	a.Library = lib

	a.Player = player.New(cfg.Player.Binary, cfg.Player.IPCSocket, client.Binary(), a.logger)

	a.logger.Info("session started",
		logging.String("session", a.sessionID),
		logging.String("download_path", a.downloadPath))
	return a, nil
}

func (a *App) loadSettings() error {
	settings, exists, err := document.LoadSettings(a.cfg.SettingsPath())
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	path := strings.TrimSpace(settings.DownloadPath)
	if path == "" {
		path = a.cfg.Paths.DownloadPath
	}
	a.downloadPath = path
	if !exists {
		if err := document.SaveSettings(a.cfg.SettingsPath(), document.Settings{DownloadPath: path}); err != nil {
			return fmt.Errorf("save settings: %w", err)
		}
	}
	return nil
}

// Config returns the session configuration.
func (a *App) Config() *config.Config { return a.cfg }

// Logger returns the session logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// LogPath returns the session log file, or empty when an external logger
// was supplied.
func (a *App) LogPath() string { return a.logPath }

// DownloadPath returns the directory new downloads land in.
func (a *App) DownloadPath() string { return a.downloadPath }

// SetDownloadPath persists a new download root and redirects the queue.
func (a *App) SetDownloadPath(path string) error {
	expanded, err := config.ExpandPath(strings.TrimSpace(path))
	if err != nil {
		return err
	}
	if expanded == "" {
		return errors.New("download path cannot be empty")
	}
	if err := document.SaveSettings(a.cfg.SettingsPath(), document.Settings{DownloadPath: expanded}); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	a.downloadPath = expanded
	a.Queue.SetRoot(expanded)
	a.logger.Info("download path changed", logging.String("path", expanded))
	return nil
}

// CheckDependencies reports the availability of external binaries.
func (a *App) CheckDependencies() []deps.Status {
	return deps.CheckBinaries(deps.Requirements(a.cfg))
}

// Close stops the worker, joins the updater, quits the player
// connection, and releases the session lock. Safe to call once.
func (a *App) Close() {
	if a.Queue != nil {
		a.Queue.StopWorker()
	}
	if a.Updater != nil {
		a.Updater.Wait()
	}
	if a.Player != nil {
		a.Player.Quit()
	}
	a.releaseLock()
	a.logger.Info("session closed")
}

func (a *App) releaseLock() {
	if a.lock == nil {
		return
	}
	if err := a.lock.Unlock(); err != nil {
		a.logger.Warn("release lock", logging.Error(err))
	}
	a.lock = nil
}
