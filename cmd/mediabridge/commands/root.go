// Copyright 2025 Mediabridge Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mediabridge/mediabridge/cmd/mediabridge/internal/format"
	"github.com/mediabridge/mediabridge/pkg/appctx"
	"github.com/mediabridge/mediabridge/pkg/cli"
	"github.com/mediabridge/mediabridge/pkg/config"
	"github.com/mediabridge/mediabridge/pkg/engine"
)

const cliExecutable = "mediabridge"

// NewCommand constructs the top-level mediabridge CLI command, wiring global
// flags and the AppManager lifecycle.
func NewCommand() *cobra.Command {
	var (
		configFile     string
		verbosityCount int
		appManager     *engine.AppManager
	)

	cmd := &cobra.Command{
		Use:   cliExecutable,
		Short: "Compress, probe and upload media files with ffmpeg",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			mode, _ := cmd.Root().PersistentFlags().GetString("output")
			if err := format.ValidateMode(mode); err != nil {
				return err
			}

			factory := &engine.DefaultAppManagerFactory{}
			mgr, err := factory.Create(cmd.Flags(), configFile)
			if err != nil {
				return fmt.Errorf("initialize AppManager: %w", err)
			}
			appManager = mgr

			ctx := appctx.WithApp(cmd.Context(), appManager)
			cmd.SetContext(ctx)
			if root := cmd.Root(); root != nil && root != cmd {
				root.SetContext(ctx)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if appManager != nil {
				appManager.Shutdown()
			}
			return nil
		},
	}

	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file path")
	cmd.PersistentFlags().CountVarP(&verbosityCount, "verbosity", "v", "Increase logging verbosity (repeatable)")
	cmd.PersistentFlags().StringP("output", "o", string(format.ModeText), "Output format: text, json or yaml")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress summaries and progress")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	config.BindFlags(cmd.PersistentFlags())

	cmd.AddGroup(&cobra.Group{ID: "media", Title: "Media Commands"})

	cmd.AddCommand(newCompressCommand())
	cmd.AddCommand(newAudioCommand())
	cmd.AddCommand(newUploadCommand())
	cmd.AddCommand(newProbeCommand())
	cmd.AddCommand(newWatchCommand())
	cmd.AddCommand(cli.NewVersionCommand(cliExecutable, checkFFmpeg))

	return cmd
}

// OutputMode returns the output mode selected on the root command.
func OutputMode(cmd *cobra.Command) format.OutputMode {
	mode, _ := cmd.Root().PersistentFlags().GetString("output")
	return format.ParseMode(mode)
}

func quiet(cmd *cobra.Command) bool {
	q, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	return q
}

func colorEnabled(cmd *cobra.Command) bool {
	noColor, _ := cmd.Root().PersistentFlags().GetBool("no-color")
	return !noColor && !color.NoColor
}

func formatter(cmd *cobra.Command) format.Formatter {
	return format.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), OutputMode(cmd), quiet(cmd), colorEnabled(cmd))
}

// progress returns a bar drawn on stderr, or nil when output must stay
// machine readable or quiet.
func progress(cmd *cobra.Command, label string) *format.Progress {
	if quiet(cmd) || OutputMode(cmd) != format.ModeText {
		return nil
	}
	return format.NewProgress(cmd.ErrOrStderr(), label, colorEnabled(cmd))
}

func app(cmd *cobra.Command) (*engine.AppManager, error) {
	mgr, ok := appctx.App(cmd.Context())
	if !ok {
		return nil, fmt.Errorf("application not initialized")
	}
	return mgr, nil
}

// structured reports whether results must be printed as json or yaml.
func structured(cmd *cobra.Command) bool {
	return OutputMode(cmd) != format.ModeText
}
