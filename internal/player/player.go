// Package player drives mpv over its JSON IPC socket.
//
// mpv runs as a detached idle process owning the audio output; this
// package only sends commands and consumes the event stream. One
// observed property delivers volume changes, and end-of-file events
// feed the caller's auto-advance logic.
package player

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os/exec"
	"sync"
	"time"

	"shellbeats/internal/logging"
)

const (
	observeEOFID    = 1
	observeVolumeID = 2

	connectTimeout = 5 * time.Second
)

// Event is one notification from mpv the UI cares about.
type Event struct {
	// TrackEnded reports natural end of playback (reason "eof");
	// stops and replacements do not count.
	TrackEnded bool
	// HasVolume marks Volume as valid.
	HasVolume bool
	Volume    float64
}

// Player manages one mpv instance and its IPC connection.
type Player struct {
	binary    string
	socket    string
	ytdlpPath string
	logger    *slog.Logger

	mu     sync.Mutex
	cmd    *exec.Cmd
	conn   net.Conn
	events chan Event
}

// New constructs a player. ytdlpPath, when non-empty, is handed to
// mpv's ytdl hook so streaming uses the same binary as downloads.
func New(binary, socketPath, ytdlpPath string, logger *slog.Logger) *Player {
	return &Player{
		binary:    binary,
		socket:    socketPath,
		ytdlpPath: ytdlpPath,
		logger:    logging.WithComponent(logger, "player"),
	}
}

// Start ensures a connected mpv instance: reuse a live socket, or
// spawn mpv and wait for its socket to appear.
func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil {
		return nil
	}
	if err := p.connectLocked(); err == nil {
		return nil
	}

	args := []string{
		"--no-video",
		"--idle=yes",
		"--force-window=no",
		"--really-quiet",
		"--input-ipc-server=" + p.socket,
	}
	if p.ytdlpPath != "" {
		args = append(args, "--script-opts=ytdl_hook-ytdl_path="+p.ytdlpPath)
	}
	cmd := exec.Command(p.binary, args...) //nolint:gosec
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}
	p.cmd = cmd
	go func() { _ = cmd.Wait() }()
	p.logger.Info("started mpv", logging.Int("pid", cmd.Process.Pid))

	deadline := time.Now().Add(connectTimeout)
	for time.Now().Before(deadline) {
		if err := p.connectLocked(); err == nil {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return errors.New("mpv socket did not come up")
}

// Connected reports whether an IPC connection is live.
func (p *Player) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn != nil
}

func (p *Player) connectLocked() error {
	conn, err := net.DialTimeout("unix", p.socket, 250*time.Millisecond)
	if err != nil {
		return err
	}
	p.conn = conn
	p.events = make(chan Event, 32)
	go p.readLoop(conn, p.events)

	p.sendLocked("observe_property", observeEOFID, "eof-reached")
	p.sendLocked("observe_property", observeVolumeID, "volume")
	p.logger.Debug("connected to mpv", logging.String("socket", p.socket))
	return nil
}

// Load starts playing the target, replacing whatever is current. The
// target may be a local file or a watch URL for streaming.
func (p *Player) Load(target string) error {
	return p.send("loadfile", target, "replace")
}

// TogglePause flips the pause state.
func (p *Player) TogglePause() error {
	return p.send("cycle", "pause")
}

// Stop ends playback and leaves mpv idle.
func (p *Player) Stop() error {
	return p.send("stop")
}

// AdjustVolume shifts the volume by delta percentage points. mpv clamps
// the result; the observed property reports the effective value.
func (p *Player) AdjustVolume(delta int) error {
	return p.send("add", "volume", delta)
}

// Poll returns a pending event without blocking.
func (p *Player) Poll() (Event, bool) {
	p.mu.Lock()
	events := p.events
	p.mu.Unlock()
	if events == nil {
		return Event{}, false
	}
	select {
	case ev, ok := <-events:
		if !ok {
			return Event{}, false
		}
		return ev, true
	default:
		return Event{}, false
	}
}

// Quit asks mpv to exit and drops the connection.
func (p *Player) Quit() {
	_ = p.send("quit")
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

func (p *Player) send(args ...any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sendLocked(args...)
}

func (p *Player) sendLocked(args ...any) error {
	if p.conn == nil {
		return errors.New("mpv not connected")
	}
	payload, err := json.Marshal(map[string]any{"command": args})
	if err != nil {
		return err
	}
	payload = append(payload, '\n')
	if _, err := p.conn.Write(payload); err != nil {
		p.logger.Warn("mpv connection lost", logging.Error(err))
		_ = p.conn.Close()
		p.conn = nil
		return err
	}
	return nil
}

func (p *Player) readLoop(conn net.Conn, events chan<- Event) {
	defer close(events)
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		ev, ok := parseEventLine(scanner.Bytes())
		if !ok {
			continue
		}
		select {
		case events <- ev:
		default:
			// UI stalled; dropping is better than blocking mpv reads.
		}
	}
	p.mu.Lock()
	if p.conn == conn {
		p.conn = nil
	}
	p.mu.Unlock()
}

type mpvMessage struct {
	Event  string          `json:"event"`
	Reason string          `json:"reason"`
	Name   string          `json:"name"`
	ID     int             `json:"id"`
	Data   json.RawMessage `json:"data"`
}

// parseEventLine converts one IPC line into an Event. Command replies
// and unobserved properties yield no event.
func parseEventLine(line []byte) (Event, bool) {
	var msg mpvMessage
	if err := json.Unmarshal(line, &msg); err != nil {
		return Event{}, false
	}
	switch {
	case msg.Event == "end-file" && msg.Reason == "eof":
		return Event{TrackEnded: true}, true
	case msg.Event == "property-change" && msg.ID == observeVolumeID:
		var volume float64
		if err := json.Unmarshal(msg.Data, &volume); err != nil {
			return Event{}, false
		}
		return Event{HasVolume: true, Volume: volume}, true
	}
	return Event{}, false
}
