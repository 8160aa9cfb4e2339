package download

// Status identifies a download task's lifecycle position.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// ParseStatus converts stored text to a Status.
func ParseStatus(value string) (Status, bool) {
	switch Status(value) {
	case StatusPending, StatusActive, StatusCompleted, StatusFailed:
		return Status(value), true
	}
	return "", false
}

// Terminal reports whether the status ends a task's lifecycle. Terminal
// tasks are never claimed by the worker.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Task is one queued download. Playlist names the destination
// subdirectory under the download root; empty means the root itself.
// Filename is fixed at enqueue time so the destination never shifts
// under a running fetch.
type Task struct {
	VideoID  string
	Title    string
	Filename string
	Playlist string
	Status   Status
}
