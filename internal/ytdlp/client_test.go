package ytdlp

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

// scriptedExecutor replays canned stdout per invocation and records
// every command line.
type scriptedExecutor struct {
	outputs [][]string
	calls   [][]string
	err     error
}

func (s *scriptedExecutor) Run(_ context.Context, binary string, args []string, onStdout func(string)) error {
	s.calls = append(s.calls, append([]string{binary}, args...))
	if len(s.outputs) > 0 {
		lines := s.outputs[0]
		s.outputs = s.outputs[1:]
		if onStdout != nil {
			for _, line := range lines {
				onStdout(line)
			}
		}
	}
	return s.err
}

func TestSearchParsesResults(t *testing.T) {
	exec := &scriptedExecutor{outputs: [][]string{{
		"Morning Coffee|||abc123XYZ",
		"",
		"ERROR: some upstream problem",
		"WARNING: throttled",
		"no separator here",
		"Short ID|||abc",
		"Second Song|||def456UVW",
	}}}
	client, err := New("yt-dlp", "", 50, WithExecutor(exec))
	if err != nil {
		t.Fatal(err)
	}

	songs, err := client.Search(context.Background(), "coffee")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(songs) != 2 {
		t.Fatalf("got %d songs, want 2: %+v", len(songs), songs)
	}
	if songs[0].Title != "Morning Coffee" || songs[0].VideoID != "abc123XYZ" {
		t.Errorf("first song = %+v", songs[0])
	}
	if songs[1].URL != "https://www.youtube.com/watch?v=def456UVW" {
		t.Errorf("url = %q", songs[1].URL)
	}

	args := exec.calls[0]
	if !slices.Contains(args, "ytsearch50:coffee") {
		t.Errorf("search args missing query spec: %v", args)
	}
	if !slices.Contains(args, "--flat-playlist") || !slices.Contains(args, "--no-warnings") {
		t.Errorf("search args = %v", args)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	client, err := New("yt-dlp", "", 10, WithExecutor(&scriptedExecutor{}))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := client.Search(context.Background(), "   "); err == nil {
		t.Error("expected error for blank query")
	}
}

func TestSearchHonorsLimit(t *testing.T) {
	lines := []string{
		"One|||aaaaa1111",
		"Two|||bbbbb2222",
		"Three|||ccccc3333",
	}
	exec := &scriptedExecutor{outputs: [][]string{lines}}
	client, err := New("yt-dlp", "", 2, WithExecutor(exec))
	if err != nil {
		t.Fatal(err)
	}
	songs, err := client.Search(context.Background(), "x")
	if err != nil {
		t.Fatal(err)
	}
	if len(songs) != 2 {
		t.Errorf("got %d songs, want 2", len(songs))
	}
	if !slices.Contains(exec.calls[0], "ytsearch2:x") {
		t.Errorf("limit not in query spec: %v", exec.calls[0])
	}
}

func TestFetchBuildsAudioExtraction(t *testing.T) {
	exec := &scriptedExecutor{}
	client, err := New("yt-dlp", "", 50, WithExecutor(exec))
	if err != nil {
		t.Fatal(err)
	}

	dest := "/music/Chill/Tune_[abc123XYZ].mp3"
	if err := client.Fetch(context.Background(), "abc123XYZ", dest); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	want := []string{
		"yt-dlp",
		"-x", "--audio-format", "mp3",
		"--no-playlist",
		"--quiet", "--no-warnings",
		"-o", dest,
		"https://www.youtube.com/watch?v=abc123XYZ",
	}
	if !slices.Equal(exec.calls[0], want) {
		t.Errorf("command = %v, want %v", exec.calls[0], want)
	}
}

func TestFetchPlaylist(t *testing.T) {
	exec := &scriptedExecutor{outputs: [][]string{
		{"Summer Mix"},
		{
			"First|||aaaaa1111|||215",
			"ERROR: unavailable video",
			"Second|||bbbbb2222|||NA",
			"Third|||ccccc3333|||180",
		},
	}}
	client, err := New("yt-dlp", "", 50, WithExecutor(exec))
	if err != nil {
		t.Fatal(err)
	}

	title, songs, err := client.FetchPlaylist(context.Background(),
		"https://www.youtube.com/playlist?list=PL123", 0)
	if err != nil {
		t.Fatalf("FetchPlaylist: %v", err)
	}
	if title != "Summer Mix" {
		t.Errorf("title = %q", title)
	}
	if len(songs) != 3 {
		t.Fatalf("got %d songs, want 3", len(songs))
	}
	if songs[0].Duration != 215 || songs[1].Duration != 0 || songs[2].Duration != 180 {
		t.Errorf("durations = %d %d %d", songs[0].Duration, songs[1].Duration, songs[2].Duration)
	}
	if len(exec.calls) != 2 {
		t.Fatalf("expected 2 invocations, got %d", len(exec.calls))
	}
}

func TestFetchPlaylistRejectsNonPlaylistURL(t *testing.T) {
	client, err := New("yt-dlp", "", 50, WithExecutor(&scriptedExecutor{}))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := client.FetchPlaylist(context.Background(),
		"https://www.youtube.com/watch?v=abc123XYZ", 0); err == nil {
		t.Error("expected error for watch url")
	}
}

func TestValidatePlaylistURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.youtube.com/playlist?list=PL123", true},
		{"https://youtu.be/playlist?list=PL123", true},
		{"https://www.youtube.com/watch?v=abc123XYZ", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidatePlaylistURL(tt.url); got != tt.want {
			t.Errorf("ValidatePlaylistURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestBinaryPrefersManagedCopy(t *testing.T) {
	dir := t.TempDir()
	managed := filepath.Join(dir, "yt-dlp")

	client, err := New("yt-dlp", managed, 50, WithExecutor(&scriptedExecutor{}))
	if err != nil {
		t.Fatal(err)
	}
	if got := client.Binary(); got != "yt-dlp" {
		t.Errorf("Binary = %q before managed copy exists", got)
	}

	if err := os.WriteFile(managed, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	if got := client.Binary(); got != managed {
		t.Errorf("Binary = %q, want managed copy", got)
	}
}
