// pkg/cli/version.go
// Package cli provides CLI commands shared by mediabridge executables.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	v "github.com/mediabridge/mediabridge/pkg/version"
)

// FFmpegChecker reports the installed ffmpeg version, or an error when it
// is missing or does not satisfy the configured constraint.
type FFmpegChecker func(ctx context.Context) (string, error)

// NewVersionCommand builds the version command. check may be nil, in which
// case --check-ffmpeg is not offered.
func NewVersionCommand(cliExecutable string, check FFmpegChecker) *cobra.Command {
	var (
		short, checkFFmpeg bool
		latest             string
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			info := v.Get()
			fmt.Fprintf(out, "%s version: %s\n", cliExecutable, info.Version)
			if short {
				return nil
			}
			if info.Commit != "" {
				fmt.Fprintf(out, "Commit: %s\n", info.Commit)
			}
			fmt.Fprintf(out, "Build Date: %s\n", info.BuildDate)
			fmt.Fprintf(out, "Go Version: %s\n", info.GoVersion)
			fmt.Fprintf(out, "Platform: %s\n", info.Platform)

			if latest != "" {
				newer, err := v.IsNewer(latest)
				if err != nil {
					return err
				}
				if newer {
					fmt.Fprintf(out, "Update available: %s\n", latest)
				} else {
					fmt.Fprintln(out, "Up to date")
				}
			}

			if checkFFmpeg && check != nil {
				ffv, err := check(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "FFmpeg: %s\n", ffv)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only the version number")
	cmd.Flags().StringVar(&latest, "latest", "", "Compare against the latest published release version")
	if check != nil {
		cmd.Flags().BoolVar(&checkFFmpeg, "check-ffmpeg", false, "Verify the installed ffmpeg version")
	}

	return cmd
}
