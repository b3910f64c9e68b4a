package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/mediabridge/mediabridge/pkg/native"
	"github.com/mediabridge/mediabridge/pkg/options"
	"github.com/mediabridge/mediabridge/pkg/paths"
)

// ErrInvalidS3URL is returned for destinations that are not s3://bucket/key.
var ErrInvalidS3URL = errors.New("invalid s3 url")

// PutObjectAPI is the subset of the S3 client used by S3Uploader.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config configures the S3 client built by NewS3Uploader.
type S3Config struct {
	Region   string
	Endpoint string
	// PathStyle forces bucket-in-path addressing, needed by most S3
	// compatible stores such as MinIO.
	PathStyle bool
}

// S3Uploader uploads files to s3://bucket/key destinations.
type S3Uploader struct {
	client    PutObjectAPI
	publisher native.Publisher
	logger    zerolog.Logger
	cancels   *cancelSet
}

// NewS3Uploader loads the default AWS credential chain and builds a client.
func NewS3Uploader(ctx context.Context, cfg S3Config, publisher native.Publisher, logger zerolog.Logger) (*S3Uploader, error) {
	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})
	return NewS3UploaderWithClient(client, publisher, logger), nil
}

// NewS3UploaderWithClient wraps an existing client.
func NewS3UploaderWithClient(client PutObjectAPI, publisher native.Publisher, logger zerolog.Logger) *S3Uploader {
	return &S3Uploader{
		client:    client,
		publisher: publisher,
		logger:    logger.With().Str("component", "transfer.s3").Logger(),
		cancels:   newCancelSet(),
	}
}

// ParseS3URL splits s3://bucket/key into its bucket and key.
func ParseS3URL(raw string) (bucket, key string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrInvalidS3URL, err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidS3URL, raw)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" || strings.HasSuffix(key, "/") {
		return "", "", fmt.Errorf("%w: missing object key in %s", ErrInvalidS3URL, raw)
	}
	return u.Host, key, nil
}

// Upload implements native.Uploader. Method and upload type are ignored,
// the file is always stored as the object body.
func (u *S3Uploader) Upload(ctx context.Context, path string, req options.UploadRequest) (*native.HTTPResponse, error) {
	bucket, key, err := ParseS3URL(req.URL)
	if err != nil {
		return nil, err
	}

	ctx, release, err := u.cancels.add(ctx, req.UUID)
	if err != nil {
		return nil, err
	}
	defer release()

	f, err := os.Open(paths.TrimFileScheme(path))
	if err != nil {
		return nil, fmt.Errorf("open upload file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat upload file: %w", err)
	}
	total := stat.Size()

	body := &seekingProgressReader{
		f: f,
		report: func(written int64) {
			publish(ctx, u.publisher, req.UUID, written, total)
		},
	}

	in := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(total),
		Metadata:      req.Parameters,
	}
	if req.MimeType != "" {
		in.ContentType = aws.String(req.MimeType)
	}

	u.logger.Debug().
		Str("job_id", req.UUID).
		Str("bucket", bucket).
		Str("key", key).
		Int64("bytes", total).
		Msg("Starting upload")

	out, err := u.client.PutObject(ctx, in)
	if err != nil {
		if u.cancels.requested(req.UUID) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: %w", native.ErrCancelled, err)
		}
		return nil, fmt.Errorf("put s3://%s/%s: %w", bucket, key, err)
	}

	headers := map[string]string{}
	if out != nil {
		if etag := aws.ToString(out.ETag); etag != "" {
			headers["ETag"] = etag
		}
		if v := aws.ToString(out.VersionId); v != "" {
			headers["X-Amz-Version-Id"] = v
		}
	}
	return &native.HTTPResponse{
		Status:  200,
		Headers: headers,
		Body:    fmt.Sprintf("s3://%s/%s", bucket, key),
	}, nil
}

// Cancel aborts the upload with id. Unknown ids are ignored.
func (u *S3Uploader) Cancel(id string) {
	u.cancels.cancel(id)
}

// seekingProgressReader reports progress like progressReader but stays
// seekable so the SDK can rewind the body for signing and retries.
type seekingProgressReader struct {
	f       io.ReadSeeker
	written int64
	report  func(written int64)
}

func (r *seekingProgressReader) Read(b []byte) (int, error) {
	n, err := r.f.Read(b)
	if n > 0 {
		r.written += int64(n)
		if r.report != nil {
			r.report(r.written)
		}
	}
	return n, err
}

func (r *seekingProgressReader) Seek(offset int64, whence int) (int64, error) {
	pos, err := r.f.Seek(offset, whence)
	if err == nil {
		r.written = pos
	}
	return pos, err
}
