// Package library is the in-memory model of the user's playlists,
// backed by the index and per-playlist documents under the state
// directory. Playlist song lists load lazily on first access; every
// mutation persists the affected document immediately.
package library

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"

	"shellbeats/internal/document"
	"shellbeats/internal/download"
	"shellbeats/internal/fileutil"
	"shellbeats/internal/logging"
	"shellbeats/internal/textutil"
)

const (
	// MaxPlaylists bounds the library index.
	MaxPlaylists = 50
	// MaxSongs bounds a single playlist.
	MaxSongs = 500
)

var (
	ErrNameRequired  = errors.New("playlist name required")
	ErrDuplicateName = errors.New("playlist with that name already exists")
	ErrLibraryFull   = errors.New("playlist limit reached")
	ErrPlaylistFull  = errors.New("playlist song limit reached")
	ErrSongExists    = errors.New("song already in playlist")
	ErrOutOfRange    = errors.New("index out of range")
)

// Song is one playable track. Only Title and VideoID persist; URL is
// derived and Duration is known only for freshly fetched metadata.
type Song struct {
	Title    string
	VideoID  string
	URL      string
	Duration int
}

// WatchURL returns the canonical watch URL for a video id.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// Enqueuer accepts fetch requests for songs added to playlists.
type Enqueuer interface {
	Enqueue(videoID, title, playlist string) download.Outcome
}

// Playlist is one entry of the library. Remote marks playlists imported
// from a streaming playlist URL rather than assembled locally.
type Playlist struct {
	Name     string
	Filename string
	Remote   bool

	songs  []Song
	loaded bool
}

// Len returns the number of loaded songs.
func (p *Playlist) Len() int { return len(p.songs) }

// Songs returns a copy of the song list.
func (p *Playlist) Songs() []Song {
	out := make([]Song, len(p.songs))
	copy(out, p.songs)
	return out
}

// Library owns the playlist collection and its persistence.
type Library struct {
	indexPath string
	dir       string
	queue     Enqueuer
	logger    *slog.Logger
	playlists []*Playlist
}

// Open reads the playlist index and returns the library. A missing
// index is an empty library; a malformed one is an error.
func Open(indexPath, playlistsDir string, queue Enqueuer, logger *slog.Logger) (*Library, error) {
	lib := &Library{
		indexPath: indexPath,
		dir:       playlistsDir,
		queue:     queue,
		logger:    logging.WithComponent(logger, "library"),
	}
	entries, exists, err := document.LoadIndex(indexPath, MaxPlaylists)
	if err != nil {
		return nil, fmt.Errorf("load playlist index: %w", err)
	}
	if exists {
		for _, e := range entries {
			lib.playlists = append(lib.playlists, &Playlist{Name: e.Name, Filename: e.Filename})
		}
	}
	return lib, nil
}

// Count returns the number of playlists.
func (l *Library) Count() int { return len(l.playlists) }

// Playlists returns the playlist slice in index order. The pointers are
// shared; treat them as read-only and mutate through Library methods.
func (l *Library) Playlists() []*Playlist {
	out := make([]*Playlist, len(l.playlists))
	copy(out, l.playlists)
	return out
}

// Get returns the playlist at idx.
func (l *Library) Get(idx int) (*Playlist, error) {
	if idx < 0 || idx >= len(l.playlists) {
		return nil, ErrOutOfRange
	}
	return l.playlists[idx], nil
}

// Find returns the index of the playlist with the given name, compared
// case-insensitively, or -1.
func (l *Library) Find(name string) int {
	for i, p := range l.playlists {
		if equalFold(p.Name, name) {
			return i
		}
	}
	return -1
}

// Create adds an empty playlist and persists both the index and the new
// playlist document. Names are unique case-insensitively; filenames
// that collide after slugging get a numeric prefix. Returns the new
// playlist's index.
func (l *Library) Create(name string, remote bool) (int, error) {
	if strings.TrimSpace(name) == "" {
		return -1, ErrNameRequired
	}
	if len(l.playlists) >= MaxPlaylists {
		return -1, ErrLibraryFull
	}
	if l.Find(name) >= 0 {
		return -1, ErrDuplicateName
	}

	filename := textutil.PlaylistSlug(name)
	for n := len(l.playlists); l.filenameTaken(filename); n++ {
		filename = fmt.Sprintf("%d_%s", n, textutil.PlaylistSlug(name))
	}

	p := &Playlist{Name: name, Filename: filename, Remote: remote, loaded: true}
	l.playlists = append(l.playlists, p)
	idx := len(l.playlists) - 1

	if err := l.saveIndex(); err != nil {
		return idx, err
	}
	if err := l.savePlaylist(p); err != nil {
		return idx, err
	}
	l.logger.Info("created playlist",
		logging.String("name", name), logging.String("file", filename))
	return idx, nil
}

// Delete removes the playlist at idx: its backing document, its
// download directory under downloadRoot, and its index entry. The
// playlist leaves the index even when the directory sweep is
// incomplete; the returned error reports leftovers.
func (l *Library) Delete(idx int, downloadRoot string) error {
	if idx < 0 || idx >= len(l.playlists) {
		return ErrOutOfRange
	}
	p := l.playlists[idx]

	if err := os.Remove(filepath.Join(l.dir, p.Filename)); err != nil && !os.IsNotExist(err) {
		l.logger.Warn("remove playlist document",
			logging.String("file", p.Filename), logging.Error(err))
	}

	var sweepErr error
	downloadDir := filepath.Join(downloadRoot, p.Name)
	if fileutil.DirExists(downloadDir) {
		sweepErr = fileutil.RemoveTree(downloadDir)
	}

	l.playlists = append(l.playlists[:idx], l.playlists[idx+1:]...)
	if err := l.saveIndex(); err != nil {
		return err
	}
	l.logger.Info("deleted playlist", logging.String("name", p.Name))
	return sweepErr
}

// EnsureLoaded reads the playlist's song list from disk if it has not
// been loaded yet.
func (l *Library) EnsureLoaded(idx int) error {
	if idx < 0 || idx >= len(l.playlists) {
		return ErrOutOfRange
	}
	return l.load(l.playlists[idx])
}

// AddSong appends a song to the playlist at idx, persists the document,
// and queues the song for download into the playlist's directory.
func (l *Library) AddSong(idx int, song Song) error {
	if idx < 0 || idx >= len(l.playlists) {
		return ErrOutOfRange
	}
	if strings.TrimSpace(song.VideoID) == "" {
		return errors.New("song has no video id")
	}
	p := l.playlists[idx]
	if err := l.load(p); err != nil {
		return err
	}
	if len(p.songs) >= MaxSongs {
		return ErrPlaylistFull
	}
	for i := range p.songs {
		if p.songs[i].VideoID == song.VideoID {
			return ErrSongExists
		}
	}

	if song.Title == "" {
		song.Title = "Unknown"
	}
	song.URL = WatchURL(song.VideoID)
	p.songs = append(p.songs, song)

	if err := l.savePlaylist(p); err != nil {
		return err
	}
	if l.queue != nil {
		outcome := l.queue.Enqueue(song.VideoID, song.Title, p.Name)
		l.logger.Debug("queued playlist song",
			logging.String("video_id", song.VideoID),
			logging.String("outcome", outcome.String()))
	}
	return nil
}

// ImportSongs bulk-appends fetched songs to the playlist at idx,
// persisting the document once. Songs already present and songs past
// the capacity limit are skipped. With enqueueDownloads set, every
// appended song is handed to the download queue. Returns the number of
// songs appended.
func (l *Library) ImportSongs(idx int, songs []Song, enqueueDownloads bool) (int, error) {
	if idx < 0 || idx >= len(l.playlists) {
		return 0, ErrOutOfRange
	}
	p := l.playlists[idx]
	if err := l.load(p); err != nil {
		return 0, err
	}

	known := make(map[string]struct{}, len(p.songs))
	for i := range p.songs {
		known[p.songs[i].VideoID] = struct{}{}
	}

	var appended []Song
	for _, song := range songs {
		if strings.TrimSpace(song.VideoID) == "" {
			continue
		}
		if _, dup := known[song.VideoID]; dup {
			continue
		}
		if len(p.songs)+len(appended) >= MaxSongs {
			break
		}
		if song.Title == "" {
			song.Title = "Unknown"
		}
		song.URL = WatchURL(song.VideoID)
		appended = append(appended, song)
		known[song.VideoID] = struct{}{}
	}
	if len(appended) == 0 {
		return 0, nil
	}

	p.songs = append(p.songs, appended...)
	if err := l.savePlaylist(p); err != nil {
		return 0, err
	}
	if enqueueDownloads && l.queue != nil {
		for _, song := range appended {
			l.queue.Enqueue(song.VideoID, song.Title, p.Name)
		}
	}
	l.logger.Info("imported songs",
		logging.String("playlist", p.Name), logging.Int("count", len(appended)))
	return len(appended), nil
}

// RemoveSong deletes the song at songIdx from the playlist at idx and
// persists the document. The downloaded file, if any, stays on disk.
func (l *Library) RemoveSong(idx, songIdx int) error {
	if idx < 0 || idx >= len(l.playlists) {
		return ErrOutOfRange
	}
	p := l.playlists[idx]
	if err := l.load(p); err != nil {
		return err
	}
	if songIdx < 0 || songIdx >= len(p.songs) {
		return ErrOutOfRange
	}
	p.songs = append(p.songs[:songIdx], p.songs[songIdx+1:]...)
	return l.savePlaylist(p)
}

func (l *Library) filenameTaken(filename string) bool {
	for _, p := range l.playlists {
		if p.Filename == filename {
			return true
		}
	}
	return false
}

func (l *Library) load(p *Playlist) error {
	if p.loaded {
		return nil
	}
	doc, exists, err := document.LoadPlaylist(filepath.Join(l.dir, p.Filename), MaxSongs)
	if err != nil {
		return fmt.Errorf("load playlist %s: %w", p.Filename, err)
	}
	if exists {
		p.Remote = doc.Type == document.PlaylistTypeYouTube
		for _, s := range doc.Songs {
			p.songs = append(p.songs, Song{
				Title:   s.Title,
				VideoID: s.VideoID,
				URL:     WatchURL(s.VideoID),
			})
		}
	}
	p.loaded = true
	return nil
}

func (l *Library) saveIndex() error {
	entries := make([]document.IndexEntry, len(l.playlists))
	for i, p := range l.playlists {
		entries[i] = document.IndexEntry{Name: p.Name, Filename: p.Filename}
	}
	if err := document.SaveIndex(l.indexPath, entries); err != nil {
		return fmt.Errorf("save playlist index: %w", err)
	}
	return nil
}

func (l *Library) savePlaylist(p *Playlist) error {
	doc := document.PlaylistDoc{Name: p.Name, Type: document.PlaylistTypeLocal}
	if p.Remote {
		doc.Type = document.PlaylistTypeYouTube
	}
	for _, s := range p.songs {
		doc.Songs = append(doc.Songs, document.SongEntry{Title: s.Title, VideoID: s.VideoID})
	}
	if err := document.SavePlaylist(filepath.Join(l.dir, p.Filename), doc); err != nil {
		return fmt.Errorf("save playlist %s: %w", p.Filename, err)
	}
	return nil
}

// equalFold compares names under full Unicode case folding.
func equalFold(a, b string) bool {
	return cases.Fold().String(a) == cases.Fold().String(b)
}
