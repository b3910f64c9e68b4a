package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newProbeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "probe <file-or-url>",
		Short:   "Show media details",
		GroupID: "media",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := app(cmd)
			if err != nil {
				return err
			}

			info, err := mgr.Compressor.GetDetails(cmd.Context(), args[0], nil, true)
			if err != nil {
				return err
			}

			f := formatter(cmd)
			if structured(cmd) {
				return f.PrintData(info)
			}

			remote := "unknown"
			if info.IsRemoteMedia != nil {
				remote = strconv.FormatBool(*info.IsRemoteMedia)
			}
			return f.PrintTable([]string{"field", "value"}, [][]string{
				{"filename", info.Filename},
				{"extension", info.Extension},
				{"remote", remote},
				{"size", strconv.FormatInt(info.Size, 10)},
				{"resolution", fmt.Sprintf("%dx%d", info.Width, info.Height)},
				{"duration", strconv.FormatFloat(info.Duration, 'f', 2, 64)},
				{"format", info.Format},
				{"bitrate", strconv.FormatInt(info.Bitrate, 10)},
			})
		},
	}
}
