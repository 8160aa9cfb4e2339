package tui

import (
	"fmt"
	"time"
)

type playSource int

const (
	sourceNone playSource = iota
	sourceSearch
	sourcePlaylist
)

// eofGracePeriod suppresses end-of-file events fired while mpv is still
// resolving a freshly loaded stream.
const eofGracePeriod = 3 * time.Second

type playbackState struct {
	source      playSource
	index       int
	playlistIdx int
	startedAt   time.Time
}

func (p playbackState) active() bool { return p.source != sourceNone }

func (m *Model) playSearchResult(idx int) {
	if idx < 0 || idx >= len(m.results) {
		return
	}
	song := m.results[idx]
	if song.URL == "" {
		return
	}
	if err := m.startPlayback(song.URL); err != nil {
		m.status = "Playback error: " + err.Error()
		return
	}
	m.playback = playbackState{source: sourceSearch, index: idx, playlistIdx: -1, startedAt: time.Now()}
	m.paused = false
	m.status = "Playing: " + song.Title
}

func (m *Model) playPlaylistSong(plIdx, songIdx int) {
	pl, err := m.app.Library.Get(plIdx)
	if err != nil {
		return
	}
	songs := pl.Songs()
	if songIdx < 0 || songIdx >= len(songs) {
		return
	}
	song := songs[songIdx]

	// Downloaded copies win over streaming, except for remote playlists
	// which always stream.
	target := song.URL
	if !pl.Remote {
		if local, ok := m.app.Queue.LocalCopy(pl.Name, song.VideoID); ok {
			target = local
		}
	}
	if target == "" {
		return
	}
	if err := m.startPlayback(target); err != nil {
		m.status = "Playback error: " + err.Error()
		return
	}
	m.playback = playbackState{source: sourcePlaylist, index: songIdx, playlistIdx: plIdx, startedAt: time.Now()}
	m.paused = false
	m.status = "Playing: " + song.Title
}

func (m *Model) startPlayback(target string) error {
	if err := m.app.Player.Start(); err != nil {
		return err
	}
	return m.app.Player.Load(target)
}

func (m *Model) playNext() {
	switch m.playback.source {
	case sourcePlaylist:
		pl, err := m.app.Library.Get(m.playback.playlistIdx)
		if err != nil {
			return
		}
		next := m.playback.index + 1
		if next < pl.Len() {
			m.playPlaylistSong(m.playback.playlistIdx, next)
			m.songSelected = next
		}
	case sourceSearch:
		next := m.playback.index + 1
		if next < len(m.results) {
			m.playSearchResult(next)
			m.searchSelected = next
		}
	}
}

func (m *Model) playPrev() {
	switch m.playback.source {
	case sourcePlaylist:
		prev := m.playback.index - 1
		if prev >= 0 {
			m.playPlaylistSong(m.playback.playlistIdx, prev)
			m.songSelected = prev
		}
	case sourceSearch:
		prev := m.playback.index - 1
		if prev >= 0 {
			m.playSearchResult(prev)
			m.searchSelected = prev
		}
	}
}

func (m *Model) stopPlayback() {
	if !m.playback.active() {
		return
	}
	_ = m.app.Player.Stop()
	m.playback = playbackState{playlistIdx: -1}
	m.paused = false
	m.status = "Playback stopped"
}

// onTrackEnded advances when the player reports a finished track. Events
// arriving inside the grace period are spurious and dropped.
func (m *Model) onTrackEnded() {
	if !m.playback.active() {
		return
	}
	if time.Since(m.playback.startedAt) < eofGracePeriod {
		return
	}
	prev := m.playback
	m.playNext()
	if m.playback == prev {
		m.playback = playbackState{playlistIdx: -1}
		m.status = "Playback finished"
	}
}

// nowPlayingTitle returns the title of the current track, if any.
func (m Model) nowPlayingTitle() string {
	switch m.playback.source {
	case sourceSearch:
		if m.playback.index < len(m.results) {
			return m.results[m.playback.index].Title
		}
	case sourcePlaylist:
		pl, err := m.app.Library.Get(m.playback.playlistIdx)
		if err == nil {
			songs := pl.Songs()
			if m.playback.index < len(songs) {
				return fmt.Sprintf("%s (%s)", songs[m.playback.index].Title, pl.Name)
			}
		}
	}
	return ""
}
