package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mediabridge/mediabridge/pkg/cache"
	"github.com/mediabridge/mediabridge/pkg/options"
	"github.com/mediabridge/mediabridge/pkg/watch"
)

func newWatchCommand() *cobra.Command {
	var (
		uploadURL  string
		debounce   time.Duration
		extensions []string
		maxSize    int
	)

	cmd := &cobra.Command{
		Use:     "watch <dir>",
		Short:   "Compress new videos dropped into a directory",
		GroupID: "media",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := app(cmd)
			if err != nil {
				return err
			}
			cfg := mgr.ConfigManager.Get()

			if !cmd.Flags().Changed("upload") {
				uploadURL = cfg.Watch.Upload
			}
			if !cmd.Flags().Changed("debounce") {
				debounce = cfg.Watch.Debounce
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if cfg.Watch.Cleanup != "" {
				cleaner, err := cache.NewCleaner(cfg.Media.CacheDir, cfg.Watch.MaxAge, cfg.Watch.Cleanup, log.Logger)
				if err != nil {
					return err
				}
				cleaner.Run()
				cleaner.Start()
				defer func() { <-cleaner.Stop().Done() }()
			}

			f := formatter(cmd)
			w, err := watch.New(watch.Config{
				Dir:        args[0],
				Extensions: extensions,
				Debounce:   debounce,
				Video:      options.VideoOptions{MaxSize: maxSize},
				UploadURL:  uploadURL,
				OnResult: func(r watch.Result) {
					if r.Err != nil {
						_ = f.PrintError(fmt.Errorf("%s: %w", r.Source, r.Err))
						return
					}
					if structured(cmd) {
						_ = f.PrintData(r)
						return
					}
					_ = f.PrintSummary(fmt.Sprintf("✓ %s -> %s", r.Source, r.Output))
				},
			}, mgr.Compressor, log.Logger)
			if err != nil {
				return err
			}

			_ = f.PrintSummary(fmt.Sprintf("Watching %s (Ctrl+C to stop)", args[0]))
			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&uploadURL, "upload", "", "Upload each compressed file to this url")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet period before a new file is processed")
	cmd.Flags().StringSliceVar(&extensions, "ext", nil, "Extensions to pick up (default: common video formats)")
	cmd.Flags().IntVar(&maxSize, "max-size", options.DefaultMaxSize, "Longest output side in pixels")

	return cmd
}
