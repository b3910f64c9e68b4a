// Copyright 2025 Mediabridge Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package options

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// UploadType selects how the file is placed in the request body.
type UploadType int

const (
	UploadBinaryContent UploadType = 0
	UploadMultipart     UploadType = 1
)

func (t UploadType) String() string {
	if t == UploadMultipart {
		return "multipart"
	}
	return "binary"
}

// SessionType mirrors the background/foreground transfer session choice.
type SessionType int

const (
	SessionBackground SessionType = 0
	SessionForeground SessionType = 1
)

// DefaultFieldName is the multipart form field used when none is given.
const DefaultFieldName = "file"

// UploadOptions are the caller facing upload options.
type UploadOptions struct {
	UploadType  UploadType
	FieldName   string
	MimeType    string
	Parameters  map[string]string
	Headers     map[string]string
	HTTPMethod  string
	SessionType SessionType
}

// UploadRequest is the normalized descriptor sent to the uploader.
type UploadRequest struct {
	UUID        string            `json:"uuid" validate:"required"`
	URL         string            `json:"url" validate:"required"`
	Method      string            `json:"method" validate:"oneof=POST PUT PATCH"`
	Headers     map[string]string `json:"headers,omitempty"`
	UploadType  UploadType        `json:"uploadType" validate:"oneof=0 1"`
	FieldName   string            `json:"fieldName,omitempty" validate:"required_if=UploadType 1"`
	MimeType    string            `json:"mimeType,omitempty"`
	Parameters  map[string]string `json:"parameters,omitempty"`
	SessionType SessionType       `json:"sessionType" validate:"oneof=0 1"`
}

// NormalizeUpload applies defaults and validates the resulting request.
func NormalizeUpload(id, url string, o UploadOptions) (UploadRequest, error) {
	req := UploadRequest{
		UUID:        id,
		URL:         strings.TrimSpace(url),
		Method:      strings.ToUpper(strings.TrimSpace(o.HTTPMethod)),
		Headers:     o.Headers,
		UploadType:  o.UploadType,
		SessionType: o.SessionType,
	}
	if req.Method == "" {
		req.Method = "POST"
	}
	if req.UploadType == UploadMultipart {
		req.FieldName = o.FieldName
		if req.FieldName == "" {
			req.FieldName = DefaultFieldName
		}
		req.MimeType = o.MimeType
		req.Parameters = o.Parameters
	}

	if err := validate.Struct(req); err != nil {
		return req, toValidationError(err)
	}
	return req, nil
}

// ValidationError reports the first invalid field of an option set.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field == "" {
		return "validation failed"
	}
	if e.Reason == "" {
		return e.Field + ": invalid"
	}
	return e.Field + ": " + e.Reason
}

func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Reason: err.Error()}
	}

	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required", "required_if":
		return &ValidationError{Field: field, Reason: "required"}
	case "oneof":
		return &ValidationError{Field: field, Reason: "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ",")}
	default:
		return &ValidationError{Field: field, Reason: "failed " + fe.Tag()}
	}
}
