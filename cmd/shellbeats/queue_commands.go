package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"shellbeats/internal/app"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect the download queue",
	}

	queueCmd.AddCommand(newQueueStatusCommand(ctx))
	queueCmd.AddCommand(newQueueListCommand(ctx))

	return queueCmd
}

func newQueueStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queued download counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(true, func(a *app.App) error {
				counts := a.Queue.Counts()
				rows := [][]string{
					{"pending", strconv.Itoa(counts.Pending)},
					{"completed", strconv.Itoa(counts.Completed)},
					{"failed", strconv.Itoa(counts.Failed)},
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
				fmt.Fprintf(out, "Download path: %s\n", a.DownloadPath())
				return nil
			})
		},
	}
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List queued downloads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(true, func(a *app.App) error {
				tasks := a.Queue.Snapshot()
				out := cmd.OutOrStdout()
				if len(tasks) == 0 {
					fmt.Fprintln(out, "Queue is empty")
					return nil
				}
				rows := make([][]string, 0, len(tasks))
				for _, task := range tasks {
					playlist := task.Playlist
					if playlist == "" {
						playlist = "-"
					}
					rows = append(rows, []string{task.Title, playlist, string(task.Status)})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Title", "Playlist", "Status"}, rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft}))
				return nil
			})
		},
	}
}
