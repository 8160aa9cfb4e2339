// Package ytdlp wraps the yt-dlp command line tool: searching,
// playlist metadata fetches, audio downloads, and keeping a managed
// copy of the binary up to date.
package ytdlp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	"shellbeats/internal/fileutil"
	"shellbeats/internal/library"
	"shellbeats/internal/logging"
)

// Executor abstracts command execution for testability. onStdout
// receives stdout lines only; stderr is discarded, since yt-dlp mixes
// diagnostics into it freely.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onStdout func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithLogger attaches a logger for command diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.WithComponent(logger, "ytdlp")
	}
}

// Client wraps yt-dlp CLI interactions.
type Client struct {
	binary      string
	managedPath string
	searchLimit int
	exec        Executor
	logger      *slog.Logger
}

// New constructs a yt-dlp client. managedPath, when it exists on disk,
// is preferred over binary; the self-updater keeps it current.
func New(binary, managedPath string, searchLimit int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("yt-dlp binary required")
	}
	if searchLimit <= 0 {
		searchLimit = 50
	}
	client := &Client{
		binary:      binary,
		managedPath: managedPath,
		searchLimit: searchLimit,
		exec:        commandExecutor{},
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Binary returns the executable to invoke: the managed copy when
// present, the configured binary otherwise.
func (c *Client) Binary() string {
	if c.managedPath != "" && fileutil.Exists(c.managedPath) {
		return c.managedPath
	}
	return c.binary
}

// Available reports whether some yt-dlp executable can be invoked.
func (c *Client) Available() bool {
	if c.managedPath != "" && fileutil.Exists(c.managedPath) {
		return true
	}
	_, err := exec.LookPath(c.binary)
	return err == nil
}

// Search queries for songs matching the text and returns up to the
// configured limit of results.
func (c *Client) Search(ctx context.Context, query string) ([]library.Song, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("search query required")
	}

	args := []string{
		"--flat-playlist",
		"--quiet", "--no-warnings",
		"--print", "%(title)s|||%(id)s",
		fmt.Sprintf("ytsearch%d:%s", c.searchLimit, query),
	}

	var lines []string
	err := c.exec.Run(ctx, c.Binary(), args, func(line string) {
		lines = append(lines, line)
	})
	if err != nil {
		return nil, fmt.Errorf("yt-dlp search: %w", err)
	}

	songs := parseSearchResults(lines, c.searchLimit)
	c.logger.Debug("search finished",
		logging.String("query", query), logging.Int("results", len(songs)))
	return songs, nil
}

// FetchPlaylist retrieves a playlist's title and songs. The title falls
// back to "YouTube Playlist" when unavailable.
func (c *Client) FetchPlaylist(ctx context.Context, url string, maxSongs int) (string, []library.Song, error) {
	if !ValidatePlaylistURL(url) {
		return "", nil, errors.New("not a playlist url")
	}
	if maxSongs <= 0 {
		maxSongs = library.MaxSongs
	}

	title := "YouTube Playlist"
	gotTitle := false
	titleArgs := []string{
		"--flat-playlist",
		"--quiet", "--no-warnings",
		"--print", "%(playlist_title)s",
		"--playlist-items", "1",
		url,
	}
	_ = c.exec.Run(ctx, c.Binary(), titleArgs, func(line string) {
		if trimmed := strings.TrimSpace(line); trimmed != "" && !gotTitle {
			title = trimmed
			gotTitle = true
		}
	})
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	args := []string{
		"--flat-playlist",
		"--quiet", "--no-warnings",
		"--print", "%(title)s|||%(id)s|||%(duration)s",
		url,
	}
	var lines []string
	if err := c.exec.Run(ctx, c.Binary(), args, func(line string) {
		lines = append(lines, line)
	}); err != nil {
		return "", nil, fmt.Errorf("yt-dlp playlist fetch: %w", err)
	}

	songs := parsePlaylistEntries(lines, maxSongs)
	c.logger.Info("fetched playlist",
		logging.String("title", title), logging.Int("songs", len(songs)))
	return title, songs, nil
}

// Fetch downloads a video's audio as mp3 at destPath. Implements
// download.Fetcher.
func (c *Client) Fetch(ctx context.Context, videoID, destPath string) error {
	args := []string{
		"-x", "--audio-format", "mp3",
		"--no-playlist",
		"--quiet", "--no-warnings",
		"-o", destPath,
		library.WatchURL(videoID),
	}
	if err := c.exec.Run(ctx, c.Binary(), args, nil); err != nil {
		return fmt.Errorf("yt-dlp download %s: %w", videoID, err)
	}
	return nil
}

// ValidatePlaylistURL reports whether the url looks like a playlist
// link.
func ValidatePlaylistURL(url string) bool {
	return strings.Contains(url, "youtube.com/playlist?list=") ||
		strings.Contains(url, "youtu.be/playlist?list=")
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onStdout func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var scanErr error

	wg.Add(1)
	go func() {
		defer wg.Done()
		scanErr = scanLines(stdout, onStdout)
	}()

	wg.Wait()
	if scanErr != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return fmt.Errorf("scan output: %w", scanErr)
	}
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}

func scanLines(r io.Reader, forward func(string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if forward != nil {
			forward(scanner.Text())
		}
	}
	return scanner.Err()
}
