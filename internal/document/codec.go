package document

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Size caps applied before parsing. A document over its cap is treated
// as malformed and fails wholesale rather than being truncated.
const (
	MaxConfigBytes   = 64 << 10
	MaxDocumentBytes = 1 << 20
)

var (
	// ErrTooLarge reports a document file exceeding its size cap.
	ErrTooLarge = errors.New("document exceeds size limit")
	// ErrMalformed reports a document missing its structural markers.
	ErrMalformed = errors.New("malformed document")
)

// Escape encodes s for embedding in a double-quoted document string.
// Only the quote, backslash, newline, carriage return, and tab are
// escaped; any other byte, including other control bytes, is written
// verbatim. Unescape mirrors this exactly, so values containing such
// bytes survive a save/load round trip unchanged.
func Escape(s string) string {
	if !strings.ContainsAny(s, "\"\\\n\r\t") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Unescape reverses Escape. An unrecognized escape yields the escaped
// byte itself.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// readBounded reads the file at path, enforcing the size cap. The
// second return value reports whether the file exists; a missing file
// is not an error so callers can treat it as an empty document.
func readBounded(path string, maxBytes int64) ([]byte, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > maxBytes {
		return nil, true, fmt.Errorf("%s: %w (%d bytes, limit %d)", path, ErrTooLarge, info.Size(), maxBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, true, fmt.Errorf("read %s: %w", path, err)
	}
	return data, true, nil
}

// stringField scans data for the first occurrence of `"key"` used as an
// object key and returns its unescaped string value.
func stringField(data []byte, key string) (string, bool) {
	pattern := `"` + key + `"`
	s := string(data)
	from := 0
	for {
		idx := strings.Index(s[from:], pattern)
		if idx < 0 {
			return "", false
		}
		pos := from + idx + len(pattern)
		for pos < len(s) && (s[pos] == ' ' || s[pos] == '\t' || s[pos] == '\n' || s[pos] == '\r') {
			pos++
		}
		if pos >= len(s) || s[pos] != ':' {
			from = from + idx + len(pattern)
			continue
		}
		pos++
		for pos < len(s) && (s[pos] == ' ' || s[pos] == '\t' || s[pos] == '\n' || s[pos] == '\r') {
			pos++
		}
		if pos >= len(s) || s[pos] != '"' {
			return "", false
		}
		raw, _, ok := scanQuoted(s, pos)
		if !ok {
			return "", false
		}
		return Unescape(raw), true
	}
}

// scanQuoted reads the double-quoted string starting at s[open] and
// returns its raw (still escaped) contents plus the index just past the
// closing quote.
func scanQuoted(s string, open int) (raw string, end int, ok bool) {
	i := open + 1
	for i < len(s) {
		switch s[i] {
		case '\\':
			i += 2
		case '"':
			return s[open+1 : i], i + 1, true
		default:
			i++
		}
	}
	return "", 0, false
}

// arraySection locates `"key": [ ... ]` in data and returns the content
// between the brackets. String values inside the array are respected
// when matching the closing bracket.
func arraySection(data []byte, key string) (string, error) {
	s := string(data)
	pattern := `"` + key + `"`
	idx := strings.Index(s, pattern)
	if idx < 0 {
		return "", fmt.Errorf("%w: missing %q", ErrMalformed, key)
	}
	open := strings.IndexByte(s[idx:], '[')
	if open < 0 {
		return "", fmt.Errorf("%w: missing %q array", ErrMalformed, key)
	}
	start := idx + open + 1
	i := start
	for i < len(s) {
		switch s[i] {
		case '"':
			_, next, ok := scanQuoted(s, i)
			if !ok {
				return "", fmt.Errorf("%w: unterminated string", ErrMalformed)
			}
			i = next
		case ']':
			return s[start:i], nil
		default:
			i++
		}
	}
	return "", fmt.Errorf("%w: unterminated %q array", ErrMalformed, key)
}

// splitObjects slices an array section into its flat objects. Parsing
// stops silently at limit entries, mirroring the fixed capacities of
// the documents this codec serves.
func splitObjects(arr string, limit int) ([]string, error) {
	var objects []string
	i := 0
	for i < len(arr) && (limit <= 0 || len(objects) < limit) {
		open := strings.IndexByte(arr[i:], '{')
		if open < 0 {
			break
		}
		j := i + open + 1
		for j < len(arr) {
			if arr[j] == '"' {
				_, next, ok := scanQuoted(arr, j)
				if !ok {
					return nil, fmt.Errorf("%w: unterminated string", ErrMalformed)
				}
				j = next
				continue
			}
			if arr[j] == '}' {
				break
			}
			j++
		}
		if j >= len(arr) {
			return nil, fmt.Errorf("%w: unterminated object", ErrMalformed)
		}
		objects = append(objects, arr[i+open+1:j])
		i = j + 1
	}
	return objects, nil
}

// writeDocument rewrites the file at path in full. Documents are small
// and single-writer, so a plain truncate-and-write is sufficient.
func writeDocument(path string, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
