package download

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"shellbeats/internal/fileutil"
	"shellbeats/internal/logging"
)

// StartWorker launches the background download worker. At most one
// worker runs per queue; extra calls are no-ops.
func (q *Queue) StartWorker() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.workerRunning {
		return
	}
	q.workerRunning = true
	q.stopCh = make(chan struct{})
	q.doneCh = make(chan struct{})
	go q.run(q.stopCh, q.doneCh)
}

// StopWorker asks the worker to exit and waits for it. An in-flight
// download is allowed to finish; stopping only prevents the next claim.
func (q *Queue) StopWorker() {
	q.mu.Lock()
	if !q.workerRunning {
		q.mu.Unlock()
		return
	}
	q.workerRunning = false
	stop, done := q.stopCh, q.doneCh
	q.mu.Unlock()

	close(stop)
	<-done
}

// run is the worker loop: claim the oldest pending task, mark it
// active, fetch with the lock released, then record the terminal status
// and persist. With nothing pending it naps for the poll interval.
func (q *Queue) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		default:
		}

		q.mu.Lock()
		idx := -1
		for i := range q.tasks {
			if q.tasks[i].Status == StatusPending {
				idx = i
				break
			}
		}
		if idx < 0 {
			q.busy = false
			q.currentTitle = ""
			q.mu.Unlock()
			select {
			case <-stop:
				return
			case <-time.After(q.pollInterval):
			}
			continue
		}
		q.tasks[idx].Status = StatusActive
		q.busy = true
		q.currentTitle = q.tasks[idx].Title
		task := q.tasks[idx]
		root := q.root
		q.mu.Unlock()

		ok := q.process(task, root)

		q.mu.Lock()
		if ok {
			q.tasks[idx].Status = StatusCompleted
			q.completed++
		} else {
			q.tasks[idx].Status = StatusFailed
			q.failed++
		}
		q.busy = false
		q.currentTitle = ""
		q.persistLocked()
		q.mu.Unlock()
	}
}

// process downloads one task and reports success. The destination
// existing afterward is the only success criterion; a file that showed
// up some other way since enqueue counts too.
func (q *Queue) process(task Task, root string) bool {
	destDir := root
	if task.Playlist != "" {
		destDir = filepath.Join(root, task.Playlist)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		q.logger.Warn("create download directory",
			logging.String("dir", destDir), logging.Error(err))
	}
	destPath := filepath.Join(destDir, task.Filename)

	if fileutil.Exists(destPath) {
		q.logger.Info("file already downloaded",
			logging.String("video_id", task.VideoID),
			logging.String("file", task.Filename))
		return true
	}

	q.logger.Info("starting download",
		logging.String("video_id", task.VideoID),
		logging.String("title", task.Title))
	start := time.Now()

	err := q.fetcher.Fetch(context.Background(), task.VideoID, destPath)
	if err != nil {
		q.logger.Error("download failed",
			logging.String("video_id", task.VideoID),
			logging.Error(err))
		return false
	}
	if !fileutil.Exists(destPath) {
		q.logger.Error("download produced no file",
			logging.String("video_id", task.VideoID),
			logging.String("dest", destPath))
		return false
	}

	q.logger.Info("download complete",
		logging.String("video_id", task.VideoID),
		logging.String("file", task.Filename),
		logging.Duration("elapsed", time.Since(start).Round(time.Millisecond)))
	return true
}
