package tui

import (
	"fmt"
	"strings"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

func (m Model) View() string {
	if m.helpView {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(headerStyle.Render("shellbeats"))
	b.WriteString(dimStyle.Render("  " + m.viewTitle()))
	b.WriteString("\n\n")

	switch m.view {
	case viewSearch:
		m.renderSearch(&b)
	case viewPlaylists:
		m.renderPlaylists(&b)
	case viewSongs:
		m.renderSongs(&b)
	case viewAddToPlaylist:
		m.renderAddToPlaylist(&b)
	case viewSettings:
		m.renderSettings(&b)
	case viewAbout:
		m.renderAbout(&b)
	}

	b.WriteString("\n")
	m.renderNowPlaying(&b)
	m.renderDownloads(&b)
	m.renderFooter(&b)
	return b.String()
}

func (m Model) viewTitle() string {
	switch m.view {
	case viewSearch:
		return "Search"
	case viewPlaylists:
		return "Playlists"
	case viewSongs:
		if pl, err := m.app.Library.Get(m.currentPlaylist); err == nil {
			return "Playlist: " + pl.Name
		}
		return "Playlist"
	case viewAddToPlaylist:
		return "Add to playlist"
	case viewSettings:
		return "Settings"
	case viewAbout:
		return "About"
	}
	return ""
}

func (m Model) renderSearch(b *strings.Builder) {
	if m.searching {
		b.WriteString("  " + statusStyle.Render(spinnerFrames[m.spinner%len(spinnerFrames)]+" working...") + "\n")
		return
	}
	if len(m.results) == 0 {
		b.WriteString(helpStyle.Render("  No results yet. Press / to search.") + "\n")
		return
	}
	start, end := viewport(m.searchSelected, len(m.results), m.listHeight())
	for i := start; i < end; i++ {
		song := m.results[i]
		line := fmt.Sprintf("  %-*s %8s", contentWidth(m.width)-12, truncate(song.Title, contentWidth(m.width)-12), formatDuration(song.Duration))
		if i == m.searchSelected {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
}

func (m Model) renderPlaylists(b *strings.Builder) {
	playlists := m.app.Library.Playlists()
	if len(playlists) == 0 {
		b.WriteString(helpStyle.Render("  No playlists. Press c to create one, p to import from YouTube.") + "\n")
		return
	}
	start, end := viewport(m.playlistSelected, len(playlists), m.listHeight())
	for i := start; i < end; i++ {
		pl := playlists[i]
		kind := "local"
		if pl.Remote {
			kind = "youtube"
		}
		line := fmt.Sprintf("  %-*s %8s", contentWidth(m.width)-12, truncate(pl.Name, contentWidth(m.width)-12), kind)
		if i == m.playlistSelected {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
}

func (m Model) renderSongs(b *strings.Builder) {
	pl, err := m.app.Library.Get(m.currentPlaylist)
	if err != nil {
		return
	}
	songs := pl.Songs()
	if len(songs) == 0 {
		b.WriteString(helpStyle.Render("  Playlist is empty.") + "\n")
		return
	}
	start, end := viewport(m.songSelected, len(songs), m.listHeight())
	for i := start; i < end; i++ {
		song := songs[i]
		mark := " "
		if !pl.Remote && m.app.Queue.HasLocalCopy(pl.Name, song.VideoID) {
			mark = "*"
		}
		line := fmt.Sprintf(" %s%-*s %8s", mark, contentWidth(m.width)-12, truncate(song.Title, contentWidth(m.width)-12), formatDuration(song.Duration))
		if i == m.songSelected {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
}

func (m Model) renderAddToPlaylist(b *strings.Builder) {
	if m.songToAdd != nil {
		b.WriteString("  Adding: " + truncate(m.songToAdd.Title, contentWidth(m.width)) + "\n\n")
	}
	playlists := m.app.Library.Playlists()
	if len(playlists) == 0 {
		b.WriteString(helpStyle.Render("  No playlists. Press c to create one.") + "\n")
		return
	}
	start, end := viewport(m.addSelected, len(playlists), m.listHeight())
	for i := start; i < end; i++ {
		line := "  " + truncate(playlists[i].Name, contentWidth(m.width))
		if i == m.addSelected {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
}

func (m Model) renderSettings(b *strings.Builder) {
	b.WriteString(selectedStyle.Render("  Download path: "+m.app.DownloadPath()) + "\n\n")
	b.WriteString(helpStyle.Render("  enter edit • esc back") + "\n")
	if m.app.Updater != nil {
		if status, updating := m.app.Updater.Status(); status != "" {
			b.WriteString("\n  " + dimStyle.Render("yt-dlp: "+status) + "\n")
		} else if updating {
			b.WriteString("\n  " + dimStyle.Render("yt-dlp: checking for updates...") + "\n")
		}
	}
}

func (m Model) renderAbout(b *strings.Builder) {
	lines := []string{
		"shellbeats - a terminal music player",
		"",
		"Search YouTube, build playlists, and keep local",
		"copies of your music as mp3 files.",
		"",
		"Playback is handled by mpv, downloads by yt-dlp.",
		"",
		"Press any key to return.",
	}
	for _, line := range lines {
		b.WriteString("  " + line + "\n")
	}
}

func (m Model) renderNowPlaying(b *strings.Builder) {
	title := m.nowPlayingTitle()
	if title == "" {
		return
	}
	state := "▶"
	if m.paused {
		state = "⏸"
	}
	b.WriteString("  " + playingStyle.Render(fmt.Sprintf("%s %s  vol %d%%", state, truncate(title, contentWidth(m.width)-12), m.volume)) + "\n")
}

func (m Model) renderDownloads(b *strings.Builder) {
	c := m.counts
	if c.Total == 0 && !c.Busy {
		return
	}
	var line string
	if c.Busy {
		line = fmt.Sprintf("%s downloading %s", spinnerFrames[m.spinner%len(spinnerFrames)], truncate(c.CurrentTitle, contentWidth(m.width)-32))
	}
	line += fmt.Sprintf("  [%d pending, %d done, %d failed]", c.Pending, c.Completed, c.Failed)
	b.WriteString("  " + statusStyle.Render(strings.TrimSpace(line)) + "\n")
}

func (m Model) renderFooter(b *strings.Builder) {
	switch {
	case m.confirm == confirmQuit:
		b.WriteString("  " + confirmStyle.Render(fmt.Sprintf("%d downloads pending. Press q again to quit, any other key to stay.", m.counts.Pending)) + "\n")
	case m.confirm == confirmDeletePlaylist:
		name := ""
		if pl, err := m.app.Library.Get(m.playlistSelected); err == nil {
			name = pl.Name
		}
		b.WriteString("  " + confirmStyle.Render(fmt.Sprintf("Delete '%s'? (y/n)", name)) + "\n")
	case m.prompt != promptNone:
		b.WriteString("  " + promptStyle.Render(m.promptLabel+m.promptInput+"_") + "\n")
	case m.status != "":
		b.WriteString("  " + statusStyle.Render(truncate(m.status, contentWidth(m.width))) + "\n")
	}
	b.WriteString("  " + helpStyle.Render(m.footerHint()) + "\n")
}

func (m Model) footerHint() string {
	switch m.view {
	case viewSearch:
		return "/ search • enter play • d download • a add • f playlists • S settings • h help • q quit"
	case viewPlaylists:
		return "enter open • c create • p import • d download all • x delete • esc back"
	case viewSongs:
		return "enter play • d download • r remove • x stop • esc back"
	case viewAddToPlaylist:
		return "enter add • c new playlist • esc cancel"
	case viewSettings:
		return "enter edit • esc back"
	}
	return ""
}

func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString("\n  " + headerStyle.Render("shellbeats keys") + "\n\n")
	keys := []struct{ key, desc string }{
		{"/", "Search YouTube"},
		{"enter", "Play selection"},
		{"space", "Pause / resume"},
		{"n / p", "Next / previous track"},
		{"x", "Stop playback"},
		{"- / =", "Volume down / up"},
		{"d", "Download selection"},
		{"a", "Add song to a playlist"},
		{"f", "Open playlists"},
		{"c", "Create playlist"},
		{"S", "Settings"},
		{"i", "About"},
		{"q", "Quit"},
	}
	for _, k := range keys {
		b.WriteString(fmt.Sprintf("  %-10s %s\n", k.key, k.desc))
	}
	b.WriteString("\n  " + helpStyle.Render("Press any key to return.") + "\n")
	return b.String()
}

// viewport returns the [start, end) window keeping selected visible.
func viewport(selected, total, height int) (int, int) {
	if total <= height {
		return 0, total
	}
	start := selected - height/2
	if start < 0 {
		start = 0
	}
	if start+height > total {
		start = total - height
	}
	return start, start + height
}

func contentWidth(width int) int {
	if width <= 0 {
		return 76
	}
	if width < 20 {
		return 20
	}
	return width - 4
}
