package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"shellbeats/internal/app"
	"shellbeats/internal/deps"
	"shellbeats/internal/tui"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "shellbeats",
		Short:         "Terminal music player for YouTube audio",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInterface(ctx)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newSearchCommand(ctx))
	rootCmd.AddCommand(newPlaylistCommand(ctx))
	rootCmd.AddCommand(newQueueCommand(ctx))
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newDepsCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// runInterface starts the full-screen player. Missing required binaries
// abort before the screen is taken over.
func runInterface(ctx *commandContext) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	statuses := deps.CheckBinaries(deps.Requirements(cfg))
	if missing := deps.MissingRequired(statuses); len(missing) > 0 {
		return fmt.Errorf("missing required binaries: %s", strings.Join(missing, ", "))
	}

	a, err := app.New(cfg, app.Options{})
	if err != nil {
		if errors.Is(err, app.ErrAlreadyRunning) {
			return err
		}
		return fmt.Errorf("start session: %w", err)
	}
	defer a.Close()

	return tui.Run(a)
}
