package testsupport

import (
	"testing"
	"time"

	"shellbeats/internal/config"
	"shellbeats/internal/download"
	"shellbeats/internal/library"
	"shellbeats/internal/logging"
)

// MustOpenQueue builds a download queue backed by the test config's state
// directory and registers worker cleanup.
func MustOpenQueue(t testing.TB, cfg *config.Config, fetcher download.Fetcher) *download.Queue {
	t.Helper()

	q := download.New(cfg.QueuePath(), cfg.Paths.DownloadPath, fetcher, download.Options{
		Capacity:     cfg.Downloads.QueueCapacity,
		PollInterval: time.Duration(cfg.Downloads.PollIntervalMS) * time.Millisecond,
		Logger:       logging.NewNop(),
	})
	t.Cleanup(q.StopWorker)
	return q
}

// MustOpenLibrary opens the playlist library for tests.
func MustOpenLibrary(t testing.TB, cfg *config.Config, queue library.Enqueuer) *library.Library {
	t.Helper()

	lib, err := library.Open(cfg.IndexPath(), cfg.PlaylistsDir(), queue, logging.NewNop())
	if err != nil {
		t.Fatalf("library.Open: %v", err)
	}
	return lib
}
