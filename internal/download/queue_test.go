package download

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"shellbeats/internal/document"
)

const testPollInterval = 10 * time.Millisecond

func newTestQueue(t *testing.T, fetcher Fetcher, capacity int) (*Queue, string, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "download_queue.json")
	root := filepath.Join(dir, "music")
	q := New(path, root, fetcher, Options{
		Capacity:     capacity,
		PollInterval: testPollInterval,
	})
	t.Cleanup(q.StopWorker)
	return q, path, root
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// writingFetcher succeeds by creating the destination file.
type writingFetcher struct {
	mu    sync.Mutex
	calls int
}

func (f *writingFetcher) Fetch(_ context.Context, _ string, destPath string) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return os.WriteFile(destPath, []byte("audio"), 0o644)
}

func (f *writingFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// failingFetcher always errors without creating the file.
type failingFetcher struct {
	mu    sync.Mutex
	calls int
}

func (f *failingFetcher) Fetch(context.Context, string, string) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return errors.New("network unreachable")
}

func (f *failingFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// blockingFetcher parks every fetch until release is closed.
type blockingFetcher struct {
	started chan string
	release chan struct{}
}

func newBlockingFetcher() *blockingFetcher {
	return &blockingFetcher{
		started: make(chan string, 16),
		release: make(chan struct{}),
	}
}

func (f *blockingFetcher) Fetch(_ context.Context, videoID, destPath string) error {
	f.started <- videoID
	<-f.release
	return os.WriteFile(destPath, []byte("audio"), 0o644)
}

func (f *blockingFetcher) waitClaim(t *testing.T) string {
	t.Helper()
	select {
	case id := <-f.started:
		return id
	case <-time.After(5 * time.Second):
		t.Fatal("worker never claimed a task")
		return ""
	}
}

func TestEnqueueRejectsEmptyID(t *testing.T) {
	q, _, _ := newTestQueue(t, &writingFetcher{}, 0)
	if got := q.Enqueue("", "no id", ""); got != Rejected {
		t.Errorf("outcome = %v, want Rejected", got)
	}
	if len(q.Snapshot()) != 0 {
		t.Error("rejected request was appended")
	}
}

func TestEnqueueAlreadyPresent(t *testing.T) {
	q, _, root := newTestQueue(t, &writingFetcher{}, 0)
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	// Any filename carrying the marker counts, renames included.
	if err := os.WriteFile(filepath.Join(root, "Anything_[abc123XYZ].mp3"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := q.Enqueue("abc123XYZ", "Some Title", ""); got != AlreadyPresent {
		t.Errorf("outcome = %v, want AlreadyPresent", got)
	}
	if len(q.Snapshot()) != 0 {
		t.Error("already-present request was appended")
	}
}

func TestEnqueueDuplicatePending(t *testing.T) {
	fetcher := newBlockingFetcher()
	q, _, _ := newTestQueue(t, fetcher, 0)
	t.Cleanup(func() { close(fetcher.release) })

	// Park the worker on a first task so later ones stay pending.
	if got := q.Enqueue("blocker01", "Blocker", ""); got != Added {
		t.Fatalf("outcome = %v, want Added", got)
	}
	fetcher.waitClaim(t)

	if got := q.Enqueue("abc123XYZ", "Tune", ""); got != Added {
		t.Fatalf("outcome = %v, want Added", got)
	}
	if got := q.Enqueue("abc123XYZ", "Tune", ""); got != AlreadyQueued {
		t.Errorf("outcome = %v, want AlreadyQueued", got)
	}

	count := 0
	for _, task := range q.Snapshot() {
		if task.VideoID == "abc123XYZ" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("duplicate enqueue produced %d entries, want 1", count)
	}
}

func TestEnqueueRejectsAtCapacity(t *testing.T) {
	fetcher := newBlockingFetcher()
	q, path, _ := newTestQueue(t, fetcher, 2)
	t.Cleanup(func() { close(fetcher.release) })

	if got := q.Enqueue("aaaaa1111", "One", ""); got != Added {
		t.Fatalf("outcome = %v", got)
	}
	fetcher.waitClaim(t)
	if got := q.Enqueue("bbbbb2222", "Two", ""); got != Added {
		t.Fatalf("outcome = %v", got)
	}
	if got := q.Enqueue("ccccc3333", "Three", ""); got != Rejected {
		t.Errorf("outcome = %v, want Rejected", got)
	}

	entries, _, err := document.LoadQueue(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.VideoID == "ccccc3333" {
			t.Error("rejected task was persisted")
		}
	}
}

func TestWorkerCompletesTask(t *testing.T) {
	fetcher := &writingFetcher{}
	q, path, root := newTestQueue(t, fetcher, 0)

	if got := q.Enqueue("abc123XYZ", "Morning Coffee", "Chill"); got != Added {
		t.Fatalf("outcome = %v", got)
	}
	waitFor(t, "completion", func() bool { return q.Counts().Completed == 1 })

	dest := filepath.Join(root, "Chill", "Morning_Coffee_[abc123XYZ].mp3")
	if _, err := os.Stat(dest); err != nil {
		t.Errorf("downloaded file missing: %v", err)
	}

	counts := q.Counts()
	if counts.Pending != 0 || counts.Failed != 0 || counts.Total != 1 {
		t.Errorf("counts = %+v", counts)
	}

	// Completed tasks stay in memory but leave the snapshot.
	entries, _, err := document.LoadQueue(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("snapshot holds %d entries, want 0", len(entries))
	}
}

func TestWorkerMarksFailureWithoutRetry(t *testing.T) {
	fetcher := &failingFetcher{}
	q, path, _ := newTestQueue(t, fetcher, 0)

	q.Enqueue("abc123XYZ", "Doomed", "")
	waitFor(t, "failure", func() bool { return q.Counts().Failed == 1 })

	// Give the worker several poll cycles to prove it never retries.
	time.Sleep(10 * testPollInterval)
	if got := fetcher.callCount(); got != 1 {
		t.Errorf("fetch called %d times, want 1", got)
	}
	if counts := q.Counts(); counts.Failed != 1 || counts.Pending != 0 {
		t.Errorf("counts = %+v", counts)
	}

	entries, _, err := document.LoadQueue(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Status != "failed" {
		t.Errorf("snapshot = %+v, want one failed entry", entries)
	}
}

func TestAtMostOneActiveDownload(t *testing.T) {
	fetcher := &concurrencyFetcher{}
	q, _, _ := newTestQueue(t, fetcher, 0)

	ids := []string{"aaaaa1111", "bbbbb2222", "ccccc3333", "ddddd4444"}
	for _, id := range ids {
		q.Enqueue(id, "Track "+id, "")
	}
	waitFor(t, "all downloads", func() bool { return q.Counts().Completed == len(ids) })

	if max := fetcher.maxObserved(); max != 1 {
		t.Errorf("max concurrent fetches = %d, want 1", max)
	}
}

type concurrencyFetcher struct {
	mu       sync.Mutex
	inflight int
	max      int
}

func (f *concurrencyFetcher) Fetch(_ context.Context, _ string, destPath string) error {
	f.mu.Lock()
	f.inflight++
	if f.inflight > f.max {
		f.max = f.inflight
	}
	f.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	f.mu.Lock()
	f.inflight--
	f.mu.Unlock()
	return os.WriteFile(destPath, []byte("audio"), 0o644)
}

func (f *concurrencyFetcher) maxObserved() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.max
}

func TestLoadRestoresPendingAndFailed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "download_queue.json")
	saved := []document.TaskEntry{
		{VideoID: "aaaaa1111", Title: "First", Filename: "First_[aaaaa1111].mp3", Playlist: "Road Trip", Status: "pending"},
		{VideoID: "bbbbb2222", Title: "Second", Filename: "Second_[bbbbb2222].mp3", Playlist: "", Status: "pending"},
		{VideoID: "ccccc3333", Title: "Broken", Filename: "Broken_[ccccc3333].mp3", Playlist: "", Status: "failed"},
	}
	if err := document.SaveQueue(path, saved); err != nil {
		t.Fatal(err)
	}

	fetcher := newBlockingFetcher()
	q := New(path, filepath.Join(dir, "music"), fetcher, Options{PollInterval: testPollInterval})
	t.Cleanup(func() {
		close(fetcher.release)
		q.StopWorker()
	})

	if restored := q.Load(); restored != 3 {
		t.Fatalf("restored %d tasks, want 3", restored)
	}

	// Pending work auto-starts the worker; the first claim proves it.
	if id := fetcher.waitClaim(t); id != "aaaaa1111" {
		t.Errorf("worker claimed %q, want oldest pending first", id)
	}

	tasks := q.Snapshot()
	if len(tasks) != 3 {
		t.Fatalf("snapshot holds %d tasks, want 3", len(tasks))
	}
	for i, want := range saved {
		got := tasks[i]
		if got.VideoID != want.VideoID || got.Title != want.Title ||
			got.Filename != want.Filename || got.Playlist != want.Playlist {
			t.Errorf("task %d = %+v, want fields of %+v", i, got, want)
		}
	}
	if tasks[2].Status != StatusFailed {
		t.Errorf("failed task restored as %q", tasks[2].Status)
	}
	if counts := q.Counts(); counts.Failed != 1 {
		t.Errorf("failed count = %d, want 1", counts.Failed)
	}
}

func TestLoadWithOnlyFailedDoesNotStartWorker(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "download_queue.json")
	saved := []document.TaskEntry{
		{VideoID: "ccccc3333", Title: "Broken", Filename: "Broken_[ccccc3333].mp3", Status: "failed"},
	}
	if err := document.SaveQueue(path, saved); err != nil {
		t.Fatal(err)
	}

	fetcher := &failingFetcher{}
	q := New(path, filepath.Join(dir, "music"), fetcher, Options{PollInterval: testPollInterval})
	t.Cleanup(q.StopWorker)

	if restored := q.Load(); restored != 1 {
		t.Fatalf("restored %d tasks, want 1", restored)
	}
	time.Sleep(5 * testPollInterval)
	if got := fetcher.callCount(); got != 0 {
		t.Errorf("fetch called %d times for a failed-only queue", got)
	}
}

func TestCompletedTasksNotRestored(t *testing.T) {
	fetcher := &writingFetcher{}
	q, path, root := newTestQueue(t, fetcher, 0)

	q.Enqueue("abc123XYZ", "Ephemeral", "")
	waitFor(t, "completion", func() bool { return q.Counts().Completed == 1 })
	q.StopWorker()

	fresh := New(path, root, fetcher, Options{PollInterval: testPollInterval})
	t.Cleanup(fresh.StopWorker)
	if restored := fresh.Load(); restored != 0 {
		t.Errorf("restored %d tasks, want 0", restored)
	}
	if counts := fresh.Counts(); counts.Completed != 0 {
		t.Errorf("completed counter restored: %+v", counts)
	}
}

func TestSetRootRedirectsFutureDownloads(t *testing.T) {
	fetcher := &writingFetcher{}
	q, _, _ := newTestQueue(t, fetcher, 0)

	next := filepath.Join(t.TempDir(), "elsewhere")
	q.SetRoot(next)
	q.Enqueue("abc123XYZ", "Moved", "")
	waitFor(t, "completion", func() bool { return q.Counts().Completed == 1 })

	if _, err := os.Stat(filepath.Join(next, "Moved_[abc123XYZ].mp3")); err != nil {
		t.Errorf("file not under new root: %v", err)
	}
}

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"pending", "active", "completed", "failed"} {
		if _, ok := ParseStatus(valid); !ok {
			t.Errorf("ParseStatus(%q) not recognized", valid)
		}
	}
	if _, ok := ParseStatus("paused"); ok {
		t.Error("ParseStatus accepted unknown status")
	}
	if !StatusCompleted.Terminal() || !StatusFailed.Terminal() {
		t.Error("terminal statuses misreported")
	}
	if StatusPending.Terminal() || StatusActive.Terminal() {
		t.Error("non-terminal statuses misreported")
	}
}

func TestManualStartKeepsWorkerStopped(t *testing.T) {
	fetcher := &writingFetcher{}
	dir := t.TempDir()
	q := New(filepath.Join(dir, "download_queue.json"), filepath.Join(dir, "music"), fetcher, Options{
		Capacity:     10,
		PollInterval: testPollInterval,
		ManualStart:  true,
	})
	t.Cleanup(q.StopWorker)

	if got := q.Enqueue("abc123XYZ", "Song", ""); got != Added {
		t.Fatalf("Enqueue = %v", got)
	}
	time.Sleep(10 * testPollInterval)
	if fetcher.callCount() != 0 {
		t.Fatalf("fetcher ran %d times with manual start", fetcher.callCount())
	}

	q.StartWorker()
	waitFor(t, "download to finish", func() bool {
		return q.Counts().Completed == 1
	})
}

func TestStopWorkerClearsBusyState(t *testing.T) {
	fetcher := newBlockingFetcher()
	q, _, _ := newTestQueue(t, fetcher, 0)

	q.Enqueue("abc123XYZ", "Long Download", "")
	fetcher.waitClaim(t)

	if counts := q.Counts(); !counts.Busy || counts.CurrentTitle != "Long Download" {
		t.Fatalf("counts during fetch = %+v", counts)
	}

	stopped := make(chan struct{})
	go func() {
		q.StopWorker()
		close(stopped)
	}()
	close(fetcher.release)
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("StopWorker did not return")
	}

	counts := q.Counts()
	if counts.Busy || counts.CurrentTitle != "" {
		t.Errorf("busy markers survived the stop: %+v", counts)
	}
	if counts.Completed != 1 {
		t.Errorf("completed = %d, want 1", counts.Completed)
	}
}
