package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mediabridge/mediabridge/pkg/job"
	"github.com/mediabridge/mediabridge/pkg/options"
)

func newUploadCommand() *cobra.Command {
	var (
		method     string
		multipart  bool
		field      string
		mime       string
		headers    map[string]string
		params     map[string]string
		foreground bool
	)

	cmd := &cobra.Command{
		Use:     "upload <url> <file>",
		Short:   "Upload a file over HTTP or to S3",
		GroupID: "media",
		Args:    cobra.ExactArgs(2),
		Example: `  mediabridge upload https://example.com/upload ./clip.mp4 --method PUT
  mediabridge upload https://example.com/form ./clip.mp4 --multipart --field video --param title=demo
  mediabridge upload s3://bucket/videos/clip.mp4 ./clip.mp4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := app(cmd)
			if err != nil {
				return err
			}

			o := options.UploadOptions{
				HTTPMethod: method,
				Headers:    headers,
				FieldName:  field,
				MimeType:   mime,
				Parameters: params,
			}
			if multipart {
				o.UploadType = options.UploadMultipart
			}
			if foreground {
				o.SessionType = options.SessionForeground
			}

			comp := mgr.Compressor

			// Upload ids are not handed out to callers, so an interrupt
			// cancels every outstanding upload of this process.
			interrupt := newInterruptCanceller(func(string) {
				for _, j := range comp.Jobs() {
					if j.Kind == job.KindUpload {
						comp.CancelCompression(j.ID)
					}
				}
			})
			defer interrupt.Stop()
			interrupt.SetID("")

			var onProgress func(written, total int64)
			if bar := progress(cmd, "upload"); bar != nil {
				defer bar.Done()
				onProgress = bar.Bytes
			}

			resp, err := comp.BackgroundUpload(cmd.Context(), args[0], args[1], o, onProgress)
			if err != nil {
				return err
			}

			f := formatter(cmd)
			if structured(cmd) {
				return f.PrintData(resp)
			}
			return f.PrintSummary(fmt.Sprintf("✓ Uploaded %s (HTTP %d)", args[1], resp.Status))
		},
	}

	cmd.Flags().StringVarP(&method, "method", "X", "POST", "HTTP method: POST, PUT or PATCH")
	cmd.Flags().BoolVar(&multipart, "multipart", false, "Send the file as a multipart form")
	cmd.Flags().StringVar(&field, "field", options.DefaultFieldName, "Multipart form field holding the file")
	cmd.Flags().StringVar(&mime, "mime", "", "Content type of the file part")
	cmd.Flags().StringToStringVarP(&headers, "header", "H", nil, "Request header as key=value (repeatable)")
	cmd.Flags().StringToStringVar(&params, "param", nil, "Multipart form parameter as key=value (repeatable)")
	cmd.Flags().BoolVar(&foreground, "foreground", false, "Use a foreground session")

	return cmd
}
