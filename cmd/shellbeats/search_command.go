package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"shellbeats/internal/app"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search YouTube and print the results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return ctx.withApp(true, func(a *app.App) error {
				songs, err := a.Ytdlp.Search(cmd.Context(), query)
				if err != nil {
					return fmt.Errorf("search: %w", err)
				}
				out := cmd.OutOrStdout()
				if len(songs) == 0 {
					fmt.Fprintf(out, "No results for %q\n", query)
					return nil
				}
				if stdoutIsTerminal() {
					rows := make([][]string, 0, len(songs))
					for _, song := range songs {
						rows = append(rows, []string{song.VideoID, song.Title})
					}
					fmt.Fprintln(out, renderTable([]string{"Video ID", "Title"}, rows, []columnAlignment{alignLeft, alignLeft}))
					return nil
				}
				for _, song := range songs {
					fmt.Fprintf(out, "%s\t%s\n", song.VideoID, song.Title)
				}
				return nil
			})
		},
	}
}
