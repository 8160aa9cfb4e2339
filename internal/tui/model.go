// Package tui implements the interactive terminal interface: search,
// playlist management, download tracking, and mpv-backed playback.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"shellbeats/internal/app"
	"shellbeats/internal/download"
	"shellbeats/internal/library"
)

type viewMode int

const (
	viewSearch viewMode = iota
	viewPlaylists
	viewSongs
	viewAddToPlaylist
	viewSettings
	viewAbout
)

type promptKind int

const (
	promptNone promptKind = iota
	promptSearch
	promptCreatePlaylist
	promptImportURL
	promptImportName
	promptImportMode
	promptEditPath
)

type confirmKind int

const (
	confirmNone confirmKind = iota
	confirmQuit
	confirmDeletePlaylist
)

type tickMsg time.Time

type searchDoneMsg struct {
	query string
	songs []library.Song
	err   error
}

type importFetchedMsg struct {
	url   string
	title string
	songs []library.Song
	err   error
}

// Model is the bubbletea model for a shellbeats session.
type Model struct {
	app *app.App

	view   viewMode
	status string
	width  int
	height int

	spinner int

	// Search view
	results        []library.Song
	searchSelected int
	searching      bool

	// Playlist views
	playlistSelected int
	songSelected     int
	currentPlaylist  int
	addSelected      int
	songToAdd        *library.Song

	// Playback
	playback playbackState
	volume   int
	paused   bool

	// Prompt line
	prompt      promptKind
	promptLabel string
	promptInput string
	confirm     confirmKind
	helpView    bool

	// YouTube playlist import in flight
	importURL   string
	importTitle string
	importSongs []library.Song

	counts download.Counts
	quit   bool
}

// New builds the initial model around an open session.
func New(a *app.App) Model {
	return Model{
		app:             a,
		view:            viewSearch,
		volume:          100,
		currentPlaylist: -1,
		status:          "Press / to search, d to download, f for playlists, h for help.",
		counts:          a.Queue.Counts(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), tea.EnterAltScreen)
}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) searchCmd(query string) tea.Cmd {
	client := m.app.Ytdlp
	return func() tea.Msg {
		songs, err := client.Search(context.Background(), query)
		return searchDoneMsg{query: query, songs: songs, err: err}
	}
}

func (m Model) fetchPlaylistCmd(url string) tea.Cmd {
	client := m.app.Ytdlp
	return func() tea.Msg {
		title, songs, err := client.FetchPlaylist(context.Background(), url, library.MaxSongs)
		return importFetchedMsg{url: url, title: title, songs: songs, err: err}
	}
}

// listHeight reports how many rows the active list can use.
func (m Model) listHeight() int {
	h := m.height - 7
	if h < 1 {
		return 1
	}
	return h
}
