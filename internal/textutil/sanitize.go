package textutil

import "strings"

const (
	// maxTitleBytes bounds the sanitized title portion of a download
	// filename so the full name stays well inside filesystem limits.
	maxTitleBytes = 180

	fallbackBaseName = "download"
)

// SanitizeFileName converts a track title into a filesystem-safe base name.
// Path-hostile characters are dropped, runs of spaces, quotes, and backticks
// collapse to a single underscore, and multi-byte UTF-8 sequences pass
// through unchanged. Trailing underscores are trimmed and an empty result
// falls back to "download". The output is truncated to a bounded byte
// length without splitting a UTF-8 sequence.
func SanitizeFileName(title string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range title {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' ||
			r == '"' || r == '<' || r == '>' || r == '|':
			// dropped outright
		case r == ' ' || r == '\'' || r == '`':
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.', r > 127:
			b.WriteRune(r)
			lastUnderscore = false
		}
	}
	out := strings.TrimRight(b.String(), "_")
	if out == "" {
		return fallbackBaseName
	}
	return truncateUTF8(out, maxTitleBytes)
}

// DownloadFileName builds the on-disk name for a fetched track:
// "<sanitized title>_[<id>].mp3". The bracketed id marker is what the
// queue's duplicate probe looks for, so it must survive sanitization
// verbatim.
func DownloadFileName(title, id string) string {
	return SanitizeFileName(title) + "_" + IDMarker(id)
}

// IDMarker returns the filename suffix that tags a downloaded track with
// its source video id.
func IDMarker(id string) string {
	return "[" + id + "].mp3"
}

// PlaylistSlug derives the backing-file name for a playlist. Letters are
// lowercased, digits, hyphens, and underscores are kept, spaces become
// underscores, and everything else is dropped before ".json" is appended.
func PlaylistSlug(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}
	return b.String() + ".json"
}

func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}
	return s[:cut]
}
