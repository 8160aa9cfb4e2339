// Package document reads and writes the flat JSON documents that back
// the on-disk library: the settings document, the playlist index, the
// per-playlist song files, and the download queue snapshot.
//
// The grammar is deliberately minimal: a top-level object holding
// string fields and at most one array of flat string-keyed objects.
// Escaping covers only the quote, backslash, newline, carriage return,
// and tab; see Escape. encoding/json is not used here so that byte
// layout and escaping stay identical across versions of the files.
package document

import "strings"

// Settings is the persisted user settings document (config.json).
type Settings struct {
	DownloadPath string
}

// LoadSettings reads the settings document at path. The second return
// value reports whether the file exists.
func LoadSettings(path string) (Settings, bool, error) {
	data, exists, err := readBounded(path, MaxConfigBytes)
	if err != nil || !exists {
		return Settings{}, exists, err
	}
	var s Settings
	s.DownloadPath, _ = stringField(data, "download_path")
	return s, true, nil
}

// SaveSettings rewrites the settings document at path.
func SaveSettings(path string, s Settings) error {
	var b strings.Builder
	b.WriteString("{\n")
	b.WriteString("  \"download_path\": \"" + Escape(s.DownloadPath) + "\"\n")
	b.WriteString("}\n")
	return writeDocument(path, b.String())
}

// IndexEntry is one playlist in the library index (playlists.json).
type IndexEntry struct {
	Name     string
	Filename string
}

// LoadIndex reads the playlist index at path. Entries past limit are
// ignored. The second return value reports whether the file exists.
func LoadIndex(path string, limit int) ([]IndexEntry, bool, error) {
	data, exists, err := readBounded(path, MaxDocumentBytes)
	if err != nil || !exists {
		return nil, exists, err
	}
	arr, err := arraySection(data, "playlists")
	if err != nil {
		return nil, true, err
	}
	objects, err := splitObjects(arr, limit)
	if err != nil {
		return nil, true, err
	}
	var entries []IndexEntry
	for _, obj := range objects {
		name, _ := stringField([]byte(obj), "name")
		filename, _ := stringField([]byte(obj), "filename")
		if name == "" || filename == "" {
			continue
		}
		entries = append(entries, IndexEntry{Name: name, Filename: filename})
	}
	return entries, true, nil
}

// SaveIndex rewrites the playlist index at path.
func SaveIndex(path string, entries []IndexEntry) error {
	var b strings.Builder
	b.WriteString("{\n  \"playlists\": [\n")
	for i, e := range entries {
		b.WriteString("    {\"name\": \"" + Escape(e.Name) + "\", \"filename\": \"" + Escape(e.Filename) + "\"}")
		if i < len(entries)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("  ]\n}\n")
	return writeDocument(path, b.String())
}

// Playlist type markers stored in the per-playlist document.
const (
	PlaylistTypeLocal   = "local"
	PlaylistTypeYouTube = "youtube"
)

// PlaylistDoc is the contents of one playlist's backing file.
type PlaylistDoc struct {
	Name  string
	Type  string
	Songs []SongEntry
}

// SongEntry is one song inside a playlist document.
type SongEntry struct {
	Title   string
	VideoID string
}

// LoadPlaylist reads a playlist document. Songs past limit are
// ignored. A document without a songs array yields an empty playlist
// rather than an error, matching how partially written files are
// treated elsewhere.
func LoadPlaylist(path string, limit int) (PlaylistDoc, bool, error) {
	data, exists, err := readBounded(path, MaxDocumentBytes)
	if err != nil || !exists {
		return PlaylistDoc{}, exists, err
	}
	var doc PlaylistDoc
	doc.Name, _ = stringField(data, "name")
	doc.Type, _ = stringField(data, "type")
	if doc.Type == "" {
		doc.Type = PlaylistTypeLocal
	}
	arr, err := arraySection(data, "songs")
	if err != nil {
		return doc, true, nil
	}
	objects, err := splitObjects(arr, limit)
	if err != nil {
		return doc, true, err
	}
	for _, obj := range objects {
		title, _ := stringField([]byte(obj), "title")
		id, _ := stringField([]byte(obj), "video_id")
		if id == "" {
			continue
		}
		doc.Songs = append(doc.Songs, SongEntry{Title: title, VideoID: id})
	}
	return doc, true, nil
}

// SavePlaylist rewrites a playlist document at path.
func SavePlaylist(path string, doc PlaylistDoc) error {
	typ := doc.Type
	if typ == "" {
		typ = PlaylistTypeLocal
	}
	var b strings.Builder
	b.WriteString("{\n  \"name\": \"" + Escape(doc.Name) + "\",\n")
	b.WriteString("  \"type\": \"" + Escape(typ) + "\",\n")
	b.WriteString("  \"songs\": [\n")
	for i, s := range doc.Songs {
		b.WriteString("    {\"title\": \"" + Escape(s.Title) + "\", \"video_id\": \"" + Escape(s.VideoID) + "\"}")
		if i < len(doc.Songs)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("  ]\n}\n")
	return writeDocument(path, b.String())
}

// TaskEntry is one download task in the queue snapshot
// (download_queue.json). Status carries the task's lifecycle string;
// interpretation of unknown values is left to the caller.
type TaskEntry struct {
	VideoID  string
	Title    string
	Filename string
	Playlist string
	Status   string
}

// LoadQueue reads the queue snapshot at path. Entries past limit or
// with an empty video id are ignored.
func LoadQueue(path string, limit int) ([]TaskEntry, bool, error) {
	data, exists, err := readBounded(path, MaxDocumentBytes)
	if err != nil || !exists {
		return nil, exists, err
	}
	arr, err := arraySection(data, "tasks")
	if err != nil {
		return nil, true, err
	}
	objects, err := splitObjects(arr, limit)
	if err != nil {
		return nil, true, err
	}
	var entries []TaskEntry
	for _, obj := range objects {
		data := []byte(obj)
		var e TaskEntry
		e.VideoID, _ = stringField(data, "video_id")
		if e.VideoID == "" {
			continue
		}
		e.Title, _ = stringField(data, "title")
		e.Filename, _ = stringField(data, "filename")
		e.Playlist, _ = stringField(data, "playlist")
		e.Status, _ = stringField(data, "status")
		entries = append(entries, e)
	}
	return entries, true, nil
}

// SaveQueue rewrites the queue snapshot at path.
func SaveQueue(path string, entries []TaskEntry) error {
	var b strings.Builder
	b.WriteString("{\n  \"tasks\": [\n")
	for i, e := range entries {
		if i > 0 {
			b.WriteString(",\n")
		}
		b.WriteString("    {\"video_id\": \"" + Escape(e.VideoID) +
			"\", \"title\": \"" + Escape(e.Title) +
			"\", \"filename\": \"" + Escape(e.Filename) +
			"\", \"playlist\": \"" + Escape(e.Playlist) +
			"\", \"status\": \"" + Escape(e.Status) + "\"}")
	}
	b.WriteString("\n  ]\n}\n")
	return writeDocument(path, b.String())
}
