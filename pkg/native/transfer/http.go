// Copyright 2025 Mediabridge Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package transfer implements native.Uploader for HTTP and S3 destinations
// and native.BackgroundTasks with an expiry timer.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mediabridge/mediabridge/pkg/event"
	"github.com/mediabridge/mediabridge/pkg/native"
	"github.com/mediabridge/mediabridge/pkg/options"
	"github.com/mediabridge/mediabridge/pkg/paths"
)

// HTTPUploader sends files with an HTTP request, as raw body or as a
// multipart form, publishing upload progress for the request id.
type HTTPUploader struct {
	client    *http.Client
	publisher native.Publisher
	logger    zerolog.Logger
	cancels   *cancelSet
}

// NewHTTPUploader creates an uploader. A nil client uses http.DefaultClient.
func NewHTTPUploader(client *http.Client, publisher native.Publisher, logger zerolog.Logger) *HTTPUploader {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPUploader{
		client:    client,
		publisher: publisher,
		logger:    logger.With().Str("component", "transfer.http").Logger(),
		cancels:   newCancelSet(),
	}
}

// Upload implements native.Uploader.
func (u *HTTPUploader) Upload(ctx context.Context, path string, req options.UploadRequest) (*native.HTTPResponse, error) {
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

	progress := func(written int64) {
		publish(ctx, u.publisher, req.UUID, written, total)
	}

	var (
		body        io.Reader
		contentType string
		length      int64 = -1
	)
	switch req.UploadType {
	case options.UploadMultipart:
		form := newMultipartForm(f, path, req, progress)
		// Stops the writer goroutine on every return path, including a
		// request that is never sent.
		defer form.Close()
		body, contentType = form, form.contentType
	default:
		body = &progressReader{r: f, report: progress}
		length = total
		contentType = req.MimeType
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	httpReq.ContentLength = length
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if contentType != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	u.logger.Debug().
		Str("job_id", req.UUID).
		Str("url", req.URL).
		Str("method", req.Method).
		Str("type", req.UploadType.String()).
		Int64("bytes", total).
		Msg("Starting upload")

	resp, err := u.client.Do(httpReq)
	if err != nil {
		if u.cancels.requested(req.UUID) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: %w", native.ErrCancelled, err)
		}
		return nil, fmt.Errorf("upload %s: %w", req.UUID, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upload response: %w", err)
	}

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}
	return &native.HTTPResponse{
		Status:  resp.StatusCode,
		Headers: headers,
		Body:    string(respBody),
	}, nil
}

// Cancel aborts the upload with id. Unknown ids are ignored.
func (u *HTTPUploader) Cancel(id string) {
	u.cancels.cancel(id)
}

// multipartForm streams the form through a pipe so large files are never
// buffered in memory.
type multipartForm struct {
	*io.PipeReader
	contentType string
	done        chan struct{}
}

func newMultipartForm(f *os.File, path string, req options.UploadRequest, progress func(int64)) *multipartForm {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	form := &multipartForm{
		PipeReader:  pr,
		contentType: mw.FormDataContentType(),
		done:        make(chan struct{}),
	}

	go func() {
		defer close(form.done)
		err := writeMultipart(mw, f, path, req, progress)
		if cerr := mw.Close(); err == nil {
			err = cerr
		}
		pw.CloseWithError(err)
	}()

	return form
}

// Close closes the read side and waits for the writer to exit. It is safe
// to call more than once.
func (m *multipartForm) Close() error {
	err := m.PipeReader.Close()
	<-m.done
	return err
}

func writeMultipart(mw *multipart.Writer, f *os.File, path string, req options.UploadRequest, progress func(int64)) error {
	for k, v := range req.Parameters {
		if err := mw.WriteField(k, v); err != nil {
			return err
		}
	}

	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(path))
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, req.FieldName, filepath.Base(path)))
	h.Set("Content-Type", mimeType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, &progressReader{r: f, report: progress})
	return err
}

func publish(ctx context.Context, p native.Publisher, id string, written, total int64) {
	if p == nil {
		return
	}
	p.Publish(ctx, event.Event{
		Name: native.EventUploadProgress,
		ID:   id,
		Data: map[string]any{"written": written, "total": total},
	})
}

// progressReader reports the running byte count after every read.
type progressReader struct {
	r       io.Reader
	written int64
	report  func(written int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.written += int64(n)
		if p.report != nil {
			p.report(p.written)
		}
	}
	return n, err
}

// cancelSet tracks cancel functions of in-flight transfers by id.
type cancelSet struct {
	mu        sync.Mutex
	cancels   map[string]context.CancelFunc
	cancelled map[string]bool
}

func newCancelSet() *cancelSet {
	return &cancelSet{
		cancels:   make(map[string]context.CancelFunc),
		cancelled: make(map[string]bool),
	}
}

// ErrDuplicateTransfer is returned when an upload is started with an id that
// is already in flight.
var ErrDuplicateTransfer = errors.New("transfer already running")

func (s *cancelSet) add(ctx context.Context, id string) (context.Context, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.cancels[id]; exists {
		return nil, nil, fmt.Errorf("%w: %s", ErrDuplicateTransfer, id)
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancels[id] = cancel
	return ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		cancel()
		delete(s.cancels, id)
		delete(s.cancelled, id)
	}, nil
}

func (s *cancelSet) cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.cancels[id]; ok {
		s.cancelled[id] = true
		cancel()
	}
}

func (s *cancelSet) requested(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled[id]
}
