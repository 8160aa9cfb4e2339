package ytdlp

import (
	"strconv"
	"strings"

	"shellbeats/internal/library"
)

// fieldSeparator splits the fields of a --print template line. Chosen
// to be implausible in video titles.
const fieldSeparator = "|||"

// parseSearchResults converts "title|||id" lines into songs, skipping
// blanks, diagnostics yt-dlp printed to stdout anyway, and ids of an
// implausible length.
func parseSearchResults(lines []string, limit int) []library.Song {
	var songs []library.Song
	for _, line := range lines {
		if len(songs) >= limit {
			break
		}
		line = strings.TrimRight(line, "\r")
		if line == "" ||
			strings.HasPrefix(line, "ERROR") ||
			strings.HasPrefix(line, "WARNING") {
			continue
		}
		title, rest, found := strings.Cut(line, fieldSeparator)
		if !found {
			continue
		}
		videoID := rest
		if !plausibleVideoID(videoID) {
			continue
		}
		songs = append(songs, library.Song{
			Title:   title,
			VideoID: videoID,
			URL:     library.WatchURL(videoID),
		})
	}
	return songs
}

// parsePlaylistEntries converts "title|||id|||duration" lines into
// songs. Duration is best-effort; unparsable values yield zero.
func parsePlaylistEntries(lines []string, limit int) []library.Song {
	var songs []library.Song
	for _, line := range lines {
		if len(songs) >= limit {
			break
		}
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, "ERROR") {
			continue
		}
		title, rest, found := strings.Cut(line, fieldSeparator)
		if !found {
			continue
		}
		videoID, durationStr, found := strings.Cut(rest, fieldSeparator)
		if !found || videoID == "" {
			continue
		}
		duration, _ := strconv.Atoi(strings.TrimSpace(durationStr))
		songs = append(songs, library.Song{
			Title:    title,
			VideoID:  videoID,
			URL:      library.WatchURL(videoID),
			Duration: duration,
		})
	}
	return songs
}

func plausibleVideoID(id string) bool {
	return len(id) >= 5 && len(id) <= 20
}
