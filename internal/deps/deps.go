package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"shellbeats/internal/config"
)

// Requirement defines an external dependency shellbeats relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the external binaries the configured setup needs.
// yt-dlp is optional when auto-update is on, since a managed copy can be
// fetched on first run.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "mpv",
			Command:     cfg.Player.Binary,
			Description: "Audio playback and streaming",
		},
		{
			Name:        "yt-dlp",
			Command:     cfg.Ytdlp.Binary,
			Description: "Search and audio downloads",
			Optional:    cfg.Ytdlp.AutoUpdate,
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the names of required dependencies that are not
// available.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status.Name)
		}
	}
	return missing
}
