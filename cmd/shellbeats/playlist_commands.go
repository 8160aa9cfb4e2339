package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"shellbeats/internal/app"
	"shellbeats/internal/library"
	"shellbeats/internal/ytdlp"
)

func newPlaylistCommand(ctx *commandContext) *cobra.Command {
	playlistCmd := &cobra.Command{
		Use:     "playlist",
		Aliases: []string{"pl"},
		Short:   "Manage playlists",
	}

	playlistCmd.AddCommand(newPlaylistListCommand(ctx))
	playlistCmd.AddCommand(newPlaylistShowCommand(ctx))
	playlistCmd.AddCommand(newPlaylistCreateCommand(ctx))
	playlistCmd.AddCommand(newPlaylistDeleteCommand(ctx))
	playlistCmd.AddCommand(newPlaylistImportCommand(ctx))

	return playlistCmd
}

func newPlaylistListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List playlists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(true, func(a *app.App) error {
				out := cmd.OutOrStdout()
				playlists := a.Library.Playlists()
				if len(playlists) == 0 {
					fmt.Fprintln(out, "No playlists")
					return nil
				}
				rows := make([][]string, 0, len(playlists))
				for i, pl := range playlists {
					if err := a.Library.EnsureLoaded(i); err != nil {
						return err
					}
					kind := "local"
					if pl.Remote {
						kind = "youtube"
					}
					rows = append(rows, []string{pl.Name, kind, strconv.Itoa(pl.Len())})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Name", "Type", "Songs"}, rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight}))
				return nil
			})
		},
	}
}

func newPlaylistShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "List the songs in a playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(true, func(a *app.App) error {
				idx := a.Library.Find(args[0])
				if idx < 0 {
					return fmt.Errorf("playlist %q not found", args[0])
				}
				if err := a.Library.EnsureLoaded(idx); err != nil {
					return err
				}
				pl, err := a.Library.Get(idx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				songs := pl.Songs()
				if len(songs) == 0 {
					fmt.Fprintf(out, "Playlist %q is empty\n", pl.Name)
					return nil
				}
				rows := make([][]string, 0, len(songs))
				for _, song := range songs {
					downloaded := yesNo(!pl.Remote && a.Queue.HasLocalCopy(pl.Name, song.VideoID))
					rows = append(rows, []string{song.Title, song.VideoID, downloaded})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Title", "Video ID", "Downloaded"}, rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft}))
				return nil
			})
		},
	}
}

func newPlaylistCreateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(false, func(a *app.App) error {
				if _, err := a.Library.Create(args[0], false); err != nil {
					return fmt.Errorf("create playlist: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created playlist %q\n", args[0])
				return nil
			})
		},
	}
}

func newPlaylistDeleteCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a playlist and its downloaded files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return fmt.Errorf("deleting %q also removes its downloaded files; re-run with --force", args[0])
			}
			return ctx.withApp(false, func(a *app.App) error {
				idx := a.Library.Find(args[0])
				if idx < 0 {
					return fmt.Errorf("playlist %q not found", args[0])
				}
				if err := a.Library.Delete(idx, a.DownloadPath()); err != nil {
					return fmt.Errorf("delete playlist: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted playlist %q\n", args[0])
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Delete without confirmation")
	return cmd
}

func newPlaylistImportCommand(ctx *commandContext) *cobra.Command {
	var name string
	var stream bool

	cmd := &cobra.Command{
		Use:   "import <url>",
		Short: "Import a YouTube playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := strings.TrimSpace(args[0])
			if !ytdlp.ValidatePlaylistURL(url) {
				return fmt.Errorf("%q is not a YouTube playlist URL", url)
			}
			return ctx.withApp(false, func(a *app.App) error {
				title, songs, err := a.Ytdlp.FetchPlaylist(cmd.Context(), url, library.MaxSongs)
				if err != nil {
					return fmt.Errorf("fetch playlist: %w", err)
				}
				if len(songs) == 0 {
					return fmt.Errorf("playlist has no songs")
				}
				playlistName := strings.TrimSpace(name)
				if playlistName == "" {
					playlistName = title
				}
				idx, err := a.Library.Create(playlistName, true)
				if err != nil {
					return fmt.Errorf("create playlist: %w", err)
				}
				added, err := a.Library.ImportSongs(idx, songs, !stream)
				if err != nil {
					return fmt.Errorf("import songs: %w", err)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Imported %d songs into %q\n", added, playlistName)
				if !stream {
					fmt.Fprintln(out, "Downloads queued; run `shellbeats` to watch progress")
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Playlist name (defaults to the YouTube title)")
	cmd.Flags().BoolVar(&stream, "stream", false, "Stream only, do not queue downloads")
	return cmd
}
