package download

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"shellbeats/internal/document"
	"shellbeats/internal/logging"
	"shellbeats/internal/textutil"
)

const (
	// DefaultCapacity bounds the number of tasks held in memory,
	// terminal ones included.
	DefaultCapacity = 1000

	// DefaultPollInterval is how long the idle worker sleeps between
	// queue checks.
	DefaultPollInterval = 500 * time.Millisecond
)

// Outcome reports what Enqueue did with a request.
type Outcome int

const (
	// Added means a new pending task was appended.
	Added Outcome = iota
	// AlreadyPresent means the destination directory already holds a
	// file for this video id; nothing was queued.
	AlreadyPresent
	// AlreadyQueued means a pending task for this video id exists.
	AlreadyQueued
	// Rejected means the request was invalid or the queue is full.
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Added:
		return "added"
	case AlreadyPresent:
		return "already present"
	case AlreadyQueued:
		return "already queued"
	default:
		return "rejected"
	}
}

// Fetcher downloads one video's audio to destPath. The file existing at
// destPath afterward is the success criterion; a nil error without the
// file still counts as a failure.
type Fetcher interface {
	Fetch(ctx context.Context, videoID, destPath string) error
}

// Counts is a point-in-time summary of the queue.
type Counts struct {
	Pending      int
	Completed    int
	Failed       int
	Total        int
	Busy         bool
	CurrentTitle string
}

// Options configures a Queue. Zero values select defaults.
type Options struct {
	Capacity     int
	PollInterval time.Duration
	Logger       *slog.Logger
	// ManualStart keeps the worker stopped until StartWorker is called
	// explicitly. Used by read-only inspectors.
	ManualStart bool
}

// Queue is the download job queue: a bounded in-memory task list with a
// single background worker and a persistent snapshot of pending and
// failed tasks. All mutating access happens under one mutex; the worker
// copies the fields it needs and releases the lock before touching the
// network or filesystem.
type Queue struct {
	mu           sync.Mutex
	tasks        []Task
	root         string
	completed    int
	failed       int
	busy         bool
	currentTitle string

	workerRunning bool
	manualStart   bool
	stopCh        chan struct{}
	doneCh        chan struct{}

	path         string
	capacity     int
	pollInterval time.Duration
	fetcher      Fetcher
	logger       *slog.Logger
}

// New creates a queue persisting to path, downloading under root.
func New(path, root string, fetcher Fetcher, opts Options) *Queue {
	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Queue{
		path:         path,
		root:         root,
		capacity:     capacity,
		pollInterval: interval,
		fetcher:      fetcher,
		manualStart:  opts.ManualStart,
		logger:       logging.WithComponent(opts.Logger, "download"),
	}
}

// Load restores pending and failed tasks from the queue snapshot and
// starts the worker when pending work survives. Completed-task counters
// are not restored; they describe the current session only. A missing
// snapshot is a clean start; a malformed one is logged and treated as
// empty.
func (q *Queue) Load() int {
	entries, exists, err := document.LoadQueue(q.path, q.capacity)
	if err != nil {
		q.logger.Warn("load queue snapshot", logging.Error(err))
		return 0
	}
	if !exists {
		return 0
	}

	q.mu.Lock()
	pending := 0
	for _, e := range entries {
		if len(q.tasks) >= q.capacity {
			break
		}
		task := Task{
			VideoID:  e.VideoID,
			Title:    e.Title,
			Filename: e.Filename,
			Playlist: e.Playlist,
			Status:   StatusPending,
		}
		// Tasks caught mid-flight by a crash restart as pending.
		if e.Status == string(StatusFailed) {
			task.Status = StatusFailed
			q.failed++
		} else {
			pending++
		}
		q.tasks = append(q.tasks, task)
	}
	restored := len(q.tasks)
	q.mu.Unlock()

	if restored > 0 {
		q.logger.Info("restored queue snapshot",
			logging.Int("tasks", restored),
			logging.Int("pending", pending))
	}
	if pending > 0 && !q.manualStart {
		q.StartWorker()
	}
	return restored
}

// Enqueue requests a download of videoID into the playlist's directory
// (or the download root when playlist is empty). Requests are dropped
// when the file already exists on disk, when a pending task for the
// same id is queued, or when the queue is full.
func (q *Queue) Enqueue(videoID, title, playlist string) Outcome {
	if strings.TrimSpace(videoID) == "" {
		return Rejected
	}

	// Probe before taking the lock; directory scans are slow.
	if LocalCopyExists(q.destDir(playlist), videoID) {
		return AlreadyPresent
	}

	q.mu.Lock()
	for i := range q.tasks {
		if q.tasks[i].Status == StatusPending && q.tasks[i].VideoID == videoID {
			q.mu.Unlock()
			return AlreadyQueued
		}
	}
	if len(q.tasks) >= q.capacity {
		q.mu.Unlock()
		q.logger.Warn("queue full, rejecting task",
			logging.String("video_id", videoID),
			logging.Int("capacity", q.capacity))
		return Rejected
	}
	q.tasks = append(q.tasks, Task{
		VideoID:  videoID,
		Title:    title,
		Filename: textutil.DownloadFileName(title, videoID),
		Playlist: playlist,
		Status:   StatusPending,
	})
	q.persistLocked()
	q.mu.Unlock()

	q.logger.Info("queued download",
		logging.String("video_id", videoID),
		logging.String("title", title))
	if !q.manualStart {
		q.StartWorker()
	}
	return Added
}

// Snapshot returns a copy of the task list, oldest first.
func (q *Queue) Snapshot() []Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Task, len(q.tasks))
	copy(out, q.tasks)
	return out
}

// Counts summarizes the queue for status displays.
func (q *Queue) Counts() Counts {
	q.mu.Lock()
	defer q.mu.Unlock()
	c := Counts{
		Completed:    q.completed,
		Failed:       q.failed,
		Total:        len(q.tasks),
		Busy:         q.busy,
		CurrentTitle: q.currentTitle,
	}
	for i := range q.tasks {
		if q.tasks[i].Status == StatusPending || q.tasks[i].Status == StatusActive {
			c.Pending++
		}
	}
	return c
}

// Root returns the current download root.
func (q *Queue) Root() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.root
}

// SetRoot redirects future downloads. In-flight tasks keep the
// destination they were claimed with.
func (q *Queue) SetRoot(root string) {
	q.mu.Lock()
	q.root = root
	q.mu.Unlock()
}

// HasLocalCopy reports whether the playlist's directory already holds a
// file for videoID.
func (q *Queue) HasLocalCopy(playlist, videoID string) bool {
	return LocalCopyExists(q.destDir(playlist), videoID)
}

// LocalCopy returns the on-disk path of the playlist's copy of videoID.
func (q *Queue) LocalCopy(playlist, videoID string) (string, bool) {
	return LocalCopyPath(q.destDir(playlist), videoID)
}

func (q *Queue) destDir(playlist string) string {
	root := q.Root()
	if playlist == "" {
		return root
	}
	return filepath.Join(root, playlist)
}

// persistLocked writes the snapshot: pending and failed tasks only.
// Active and completed tasks are dropped; the worker persists again
// when the in-flight task reaches a terminal status. Callers hold q.mu.
func (q *Queue) persistLocked() {
	var entries []document.TaskEntry
	for i := range q.tasks {
		if q.tasks[i].Status != StatusPending && q.tasks[i].Status != StatusFailed {
			continue
		}
		entries = append(entries, document.TaskEntry{
			VideoID:  q.tasks[i].VideoID,
			Title:    q.tasks[i].Title,
			Filename: q.tasks[i].Filename,
			Playlist: q.tasks[i].Playlist,
			Status:   string(q.tasks[i].Status),
		})
	}
	if err := document.SaveQueue(q.path, entries); err != nil {
		q.logger.Warn("persist queue snapshot", logging.Error(err))
	}
}
