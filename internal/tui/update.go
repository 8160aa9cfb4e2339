package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"shellbeats/internal/download"
	"shellbeats/internal/library"
	"shellbeats/internal/ytdlp"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.spinner++
		m.counts = m.app.Queue.Counts()
		for {
			ev, ok := m.app.Player.Poll()
			if !ok {
				break
			}
			if ev.TrackEnded {
				m.onTrackEnded()
			}
			if ev.HasVolume {
				m.volume = int(ev.Volume)
			}
		}
		return m, tickCmd()

	case searchDoneMsg:
		m.searching = false
		switch {
		case msg.err != nil:
			m.status = "Search error: " + msg.err.Error()
		case len(msg.songs) == 0:
			m.status = "No results for: " + msg.query
		default:
			m.results = msg.songs
			m.searchSelected = 0
			m.status = fmt.Sprintf("Found %d results for: %s", len(msg.songs), msg.query)
		}
		return m, nil

	case importFetchedMsg:
		m.searching = false
		if msg.err != nil || len(msg.songs) == 0 {
			m.status = "Failed to fetch playlist"
			return m, nil
		}
		m.importURL = msg.url
		m.importTitle = msg.title
		m.importSongs = msg.songs
		m.openPrompt(promptImportName, "Playlist name: ")
		m.promptInput = msg.title
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirm != confirmNone {
		return m.handleConfirmKey(msg)
	}
	if m.prompt != promptNone {
		return m.handlePromptKey(msg)
	}
	if m.helpView {
		m.helpView = false
		return m, nil
	}
	if m.view == viewAbout {
		m.view = viewSearch
		return m, nil
	}

	// Global keys
	switch msg.String() {
	case "q", "ctrl+c":
		if m.counts.Pending > 0 || m.counts.Busy {
			m.confirm = confirmQuit
			return m, nil
		}
		m.quit = true
		return m, tea.Quit
	case " ":
		if m.playback.active() {
			if err := m.app.Player.TogglePause(); err == nil {
				m.paused = !m.paused
				if m.paused {
					m.status = "Paused"
				} else {
					m.status = "Playing"
				}
			}
		}
		return m, nil
	case "n":
		if m.playback.active() {
			m.playNext()
		}
		return m, nil
	case "p":
		if m.view != viewPlaylists && m.playback.active() {
			m.playPrev()
			return m, nil
		}
	case "-":
		_ = m.app.Player.AdjustVolume(-5)
		return m, nil
	case "=":
		_ = m.app.Player.AdjustVolume(5)
		return m, nil
	case "h", "?":
		m.helpView = true
		return m, nil
	case "i":
		m.view = viewAbout
		return m, nil
	case "esc":
		switch m.view {
		case viewPlaylists, viewSettings:
			m.view = viewSearch
			m.status = ""
		case viewSongs:
			m.view = viewPlaylists
			m.status = ""
		case viewAddToPlaylist:
			m.view = viewSearch
			m.songToAdd = nil
			m.status = "Cancelled"
		}
		return m, nil
	}

	switch m.view {
	case viewSearch:
		return m.handleSearchKey(msg)
	case viewPlaylists:
		return m.handlePlaylistsKey(msg)
	case viewSongs:
		return m.handleSongsKey(msg)
	case viewAddToPlaylist:
		return m.handleAddKey(msg)
	case viewSettings:
		return m.handleSettingsKey(msg)
	}
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.confirm {
	case confirmQuit:
		m.confirm = confirmNone
		if msg.String() == "q" {
			m.quit = true
			return m, tea.Quit
		}
		return m, nil
	case confirmDeletePlaylist:
		if s := msg.String(); s == "y" || s == "Y" {
			if err := m.app.Library.Delete(m.playlistSelected, m.app.DownloadPath()); err != nil {
				m.status = "Failed to delete: " + err.Error()
			} else {
				m.status = "Deleted playlist"
			}
			if m.playlistSelected >= m.app.Library.Count() && m.playlistSelected > 0 {
				m.playlistSelected--
			}
		} else {
			m.status = "Cancelled"
		}
		m.confirm = confirmNone
	}
	return m, nil
}

func (m *Model) openPrompt(kind promptKind, label string) {
	m.prompt = kind
	m.promptLabel = label
	m.promptInput = ""
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.prompt = promptNone
		m.promptInput = ""
		m.importSongs = nil
		m.status = "Cancelled"
		return m, nil
	case tea.KeyEnter:
		return m.submitPrompt()
	case tea.KeyBackspace:
		if len(m.promptInput) > 0 {
			runes := []rune(m.promptInput)
			m.promptInput = string(runes[:len(runes)-1])
		}
		return m, nil
	case tea.KeyCtrlU:
		m.promptInput = ""
		return m, nil
	case tea.KeySpace:
		m.promptInput += " "
		return m, nil
	case tea.KeyRunes:
		m.promptInput += string(msg.Runes)
		return m, nil
	}
	return m, nil
}

func (m Model) submitPrompt() (tea.Model, tea.Cmd) {
	kind := m.prompt
	value := strings.TrimSpace(m.promptInput)
	m.prompt = promptNone
	m.promptInput = ""

	switch kind {
	case promptSearch:
		if value == "" {
			m.status = "Search cancelled"
			return m, nil
		}
		m.searching = true
		m.status = "Searching: " + value + " ..."
		return m, m.searchCmd(value)

	case promptCreatePlaylist:
		idx, err := m.app.Library.Create(value, false)
		switch {
		case err == nil:
			if m.songToAdd != nil {
				m.addSongTo(idx)
			} else {
				m.status = "Created playlist: " + value
				m.playlistSelected = idx
			}
		case errors.Is(err, library.ErrDuplicateName):
			m.status = "Playlist already exists: " + value
		case errors.Is(err, library.ErrNameRequired):
			m.status = "Cancelled"
		default:
			m.status = "Failed to create playlist: " + err.Error()
		}
		return m, nil

	case promptImportURL:
		if value == "" {
			m.status = "Cancelled"
			return m, nil
		}
		if !ytdlp.ValidatePlaylistURL(value) {
			m.status = "Invalid URL"
			return m, nil
		}
		m.searching = true
		m.status = "Fetching playlist..."
		return m, m.fetchPlaylistCmd(value)

	case promptImportName:
		if value == "" {
			value = m.importTitle
		}
		m.importTitle = value
		m.openPrompt(promptImportMode, "Mode (s)tream or (d)ownload: ")
		return m, nil

	case promptImportMode:
		mode := strings.ToLower(value)
		if mode != "s" && mode != "d" {
			m.openPrompt(promptImportMode, "Mode (s)tream or (d)ownload: ")
			m.status = "Invalid mode. Choose 's' or 'd'"
			return m, nil
		}
		m.finishImport(mode == "s")
		return m, nil

	case promptEditPath:
		if value == "" {
			m.status = "Cancelled"
			return m, nil
		}
		if err := m.app.SetDownloadPath(value); err != nil {
			m.status = "Failed to save path: " + err.Error()
		} else {
			m.status = "Download path saved"
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) finishImport(streamOnly bool) {
	idx, err := m.app.Library.Create(m.importTitle, true)
	if err != nil {
		m.status = "Failed to create playlist: " + err.Error()
		m.importSongs = nil
		return
	}
	added, err := m.app.Library.ImportSongs(idx, m.importSongs, !streamOnly)
	if err != nil {
		m.status = "Failed to import songs: " + err.Error()
		m.importSongs = nil
		return
	}
	if streamOnly {
		m.status = fmt.Sprintf("Imported %d songs", added)
	} else {
		m.status = fmt.Sprintf("Imported %d songs, downloads queued", added)
	}
	m.importSongs = nil
	m.playlistSelected = idx
}

func (m *Model) addSongTo(idx int) {
	if m.songToAdd == nil {
		return
	}
	pl, err := m.app.Library.Get(idx)
	if err != nil {
		return
	}
	switch err := m.app.Library.AddSong(idx, *m.songToAdd); {
	case err == nil:
		m.status = "Added to: " + pl.Name
	case errors.Is(err, library.ErrSongExists):
		m.status = "Already in playlist"
	default:
		m.status = "Failed to add: " + err.Error()
	}
	m.songToAdd = nil
	m.view = viewSearch
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.searchSelected > 0 {
			m.searchSelected--
		}
	case "down", "j":
		if m.searchSelected+1 < len(m.results) {
			m.searchSelected++
		}
	case "pgup":
		m.searchSelected = clamp(m.searchSelected-m.listHeight(), 0, len(m.results)-1)
	case "pgdown":
		m.searchSelected = clamp(m.searchSelected+m.listHeight(), 0, len(m.results)-1)
	case "home", "g":
		m.searchSelected = 0
	case "end":
		m.searchSelected = clamp(len(m.results)-1, 0, len(m.results)-1)
	case "enter":
		if len(m.results) > 0 {
			m.playSearchResult(m.searchSelected)
		}
	case "/", "s":
		m.openPrompt(promptSearch, "Search: ")
	case "x":
		m.stopPlayback()
	case "f":
		m.view = viewPlaylists
		m.playlistSelected = 0
		m.status = "Playlists"
	case "a":
		if len(m.results) > 0 {
			song := m.results[m.searchSelected]
			m.songToAdd = &song
			m.addSelected = 0
			m.view = viewAddToPlaylist
			m.status = "Select playlist"
		} else {
			m.status = "No song selected"
		}
	case "c":
		m.openPrompt(promptCreatePlaylist, "New playlist name: ")
	case "S":
		m.view = viewSettings
		m.status = "Settings"
	case "d":
		if len(m.results) > 0 {
			song := m.results[m.searchSelected]
			m.status = downloadStatus(m.app.Queue.Enqueue(song.VideoID, song.Title, ""), song.Title)
		} else {
			m.status = "No song selected"
		}
	}
	return m, nil
}

func (m Model) handlePlaylistsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := m.app.Library.Count()
	switch msg.String() {
	case "up", "k":
		if m.playlistSelected > 0 {
			m.playlistSelected--
		}
	case "down", "j":
		if m.playlistSelected+1 < count {
			m.playlistSelected++
		}
	case "pgup":
		m.playlistSelected = clamp(m.playlistSelected-m.listHeight(), 0, count-1)
	case "pgdown":
		m.playlistSelected = clamp(m.playlistSelected+m.listHeight(), 0, count-1)
	case "enter":
		if count > 0 {
			if err := m.app.Library.EnsureLoaded(m.playlistSelected); err != nil {
				m.status = "Failed to open playlist: " + err.Error()
				return m, nil
			}
			m.currentPlaylist = m.playlistSelected
			m.songSelected = 0
			m.view = viewSongs
			if pl, err := m.app.Library.Get(m.currentPlaylist); err == nil {
				m.status = "Opened: " + pl.Name
			}
		}
	case "c":
		m.openPrompt(promptCreatePlaylist, "New playlist name: ")
	case "x":
		if count > 0 {
			m.confirm = confirmDeletePlaylist
		}
	case "p":
		m.openPrompt(promptImportURL, "YouTube playlist URL: ")
	case "d":
		if count > 0 {
			m.queuePlaylistDownloads(m.playlistSelected)
		}
	}
	return m, nil
}

func (m *Model) queuePlaylistDownloads(idx int) {
	if err := m.app.Library.EnsureLoaded(idx); err != nil {
		m.status = "Failed to load playlist: " + err.Error()
		return
	}
	pl, err := m.app.Library.Get(idx)
	if err != nil {
		return
	}
	added, skipped := 0, 0
	for _, song := range pl.Songs() {
		switch m.app.Queue.Enqueue(song.VideoID, song.Title, pl.Name) {
		case download.Added:
			added++
		case download.AlreadyPresent, download.AlreadyQueued:
			skipped++
		}
	}
	switch {
	case added > 0:
		m.status = fmt.Sprintf("Queued %d songs (%d already downloaded)", added, skipped)
	case skipped > 0:
		m.status = fmt.Sprintf("All %d songs already downloaded", skipped)
	default:
		m.status = "Playlist is empty"
	}
}

func (m Model) handleSongsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	pl, err := m.app.Library.Get(m.currentPlaylist)
	if err != nil {
		m.view = viewPlaylists
		return m, nil
	}
	count := pl.Len()
	switch msg.String() {
	case "up", "k":
		if m.songSelected > 0 {
			m.songSelected--
		}
	case "down", "j":
		if m.songSelected+1 < count {
			m.songSelected++
		}
	case "pgup":
		m.songSelected = clamp(m.songSelected-m.listHeight(), 0, count-1)
	case "pgdown":
		m.songSelected = clamp(m.songSelected+m.listHeight(), 0, count-1)
	case "enter":
		if count > 0 {
			m.playPlaylistSong(m.currentPlaylist, m.songSelected)
		}
	case "d":
		if count > 0 {
			song := pl.Songs()[m.songSelected]
			m.status = downloadStatus(m.app.Queue.Enqueue(song.VideoID, song.Title, pl.Name), song.Title)
		} else {
			m.status = "No song selected"
		}
	case "r":
		if count > 0 {
			title := pl.Songs()[m.songSelected].Title
			if err := m.app.Library.RemoveSong(m.currentPlaylist, m.songSelected); err != nil {
				m.status = "Failed to remove: " + err.Error()
			} else {
				m.status = "Removed: " + title
				if m.songSelected >= pl.Len() && m.songSelected > 0 {
					m.songSelected--
				}
			}
		}
	case "D":
		if pl.Remote && count > 0 {
			m.queuePlaylistDownloads(m.currentPlaylist)
		}
	case "x":
		m.stopPlayback()
	}
	return m, nil
}

func (m Model) handleAddKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := m.app.Library.Count()
	switch msg.String() {
	case "up", "k":
		if m.addSelected > 0 {
			m.addSelected--
		}
	case "down", "j":
		if m.addSelected+1 < count {
			m.addSelected++
		}
	case "enter":
		if count > 0 && m.songToAdd != nil {
			if err := m.app.Library.EnsureLoaded(m.addSelected); err == nil {
				m.addSongTo(m.addSelected)
			}
		}
	case "c":
		m.openPrompt(promptCreatePlaylist, "New playlist name: ")
	}
	return m, nil
}

func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" {
		m.openPrompt(promptEditPath, "Download path: ")
		m.promptInput = m.app.DownloadPath()
	}
	return m, nil
}

func downloadStatus(outcome download.Outcome, title string) string {
	switch outcome {
	case download.Added:
		return "Queued: " + title
	case download.AlreadyPresent, download.AlreadyQueued:
		return "Already downloaded or queued"
	default:
		return "Failed to queue download"
	}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
