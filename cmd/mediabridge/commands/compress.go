package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mediabridge/mediabridge/pkg/options"
)

func newCompressCommand() *cobra.Command {
	var (
		bitrate    int
		maxSize    int
		method     string
		minSize    float64
		background bool
	)

	cmd := &cobra.Command{
		Use:     "compress <file-or-url>",
		Short:   "Compress a video file",
		GroupID: "media",
		Args:    cobra.ExactArgs(1),
		Example: `  mediabridge compress ./clip.mov
  mediabridge compress https://example.com/clip.mp4 --method manual --max-size 1280
  mediabridge compress ./clip.mov --min-size 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := app(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			comp := mgr.Compressor

			if background {
				if _, err := comp.ActivateBackgroundTask(ctx, nil); err != nil {
					return err
				}
				defer func() { _ = comp.DeactivateBackgroundTask(ctx) }()
			}

			interrupt := newInterruptCanceller(comp.CancelCompression)
			defer interrupt.Stop()

			o := options.VideoOptions{
				Bitrate:           bitrate,
				MaxSize:           maxSize,
				CompressionMethod: options.CompressionMethod(method),
				GetCancellationID: interrupt.SetID,
			}
			if cmd.Flags().Changed("min-size") {
				o.MinimumFileSizeForCompress = options.Float(minSize)
			}

			var onProgress func(float64)
			if bar := progress(cmd, "compress"); bar != nil {
				defer bar.Done()
				onProgress = bar.Update
				dl := progress(cmd, "download")
				o.DownloadProgress = func(p float64) {
					dl.Update(p)
					if p >= 1 {
						dl.Done()
					}
				}
			}

			out, err := comp.Compress(ctx, args[0], o, onProgress)
			if err != nil {
				return err
			}

			f := formatter(cmd)
			if structured(cmd) {
				return f.PrintData(map[string]string{"input": args[0], "output": out})
			}
			return f.PrintSummary(fmt.Sprintf("✓ Compressed %s -> %s", args[0], out))
		},
	}

	cmd.Flags().IntVar(&bitrate, "bitrate", 0, "Target video bitrate in bits per second (manual method)")
	cmd.Flags().IntVar(&maxSize, "max-size", options.DefaultMaxSize, "Longest output side in pixels")
	cmd.Flags().StringVar(&method, "method", string(options.MethodAuto), "Compression method: auto or manual")
	cmd.Flags().Float64Var(&minSize, "min-size", 0, "Skip compression for files smaller than this many MB")
	cmd.Flags().BoolVar(&background, "background", false, "Hold a background task while compressing")

	return cmd
}
