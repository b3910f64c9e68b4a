package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mediabridge/mediabridge/pkg/options"
)

func newAudioCommand() *cobra.Command {
	o := options.DefaultAudioOptions()
	var quality string

	cmd := &cobra.Command{
		Use:     "audio <file-or-url>",
		Short:   "Compress an audio file to mp3",
		GroupID: "media",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := app(cmd)
			if err != nil {
				return err
			}
			o.Quality = options.Quality(quality)

			out, err := mgr.Compressor.CompressAudio(cmd.Context(), args[0], o)
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

	cmd.Flags().StringVar(&quality, "quality", string(o.Quality), "Quality preset: low, medium or high")
	cmd.Flags().StringVar(&o.Bitrate, "bitrate", o.Bitrate, "Audio bitrate, e.g. 128k")
	cmd.Flags().StringVar(&o.OutputFilePath, "output-file", "", "Write the result to this path")

	return cmd
}
