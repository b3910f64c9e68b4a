package transfer

import (
	"context"
	"strings"

	"github.com/mediabridge/mediabridge/pkg/native"
	"github.com/mediabridge/mediabridge/pkg/options"
)

// Mux routes uploads to a backend by destination scheme. Destinations
// without a registered scheme go to the fallback.
type Mux struct {
	fallback native.Uploader
	schemes  map[string]native.Uploader
}

// NewMux creates a mux that sends unmatched destinations to fallback.
func NewMux(fallback native.Uploader) *Mux {
	return &Mux{fallback: fallback, schemes: make(map[string]native.Uploader)}
}

// Handle registers u for destinations with the given scheme.
func (m *Mux) Handle(scheme string, u native.Uploader) {
	m.schemes[strings.ToLower(scheme)] = u
}

func (m *Mux) route(url string) native.Uploader {
	if scheme, _, ok := strings.Cut(url, "://"); ok {
		if u, found := m.schemes[strings.ToLower(scheme)]; found {
			return u
		}
	}
	return m.fallback
}

// Upload implements native.Uploader.
func (m *Mux) Upload(ctx context.Context, path string, req options.UploadRequest) (*native.HTTPResponse, error) {
	return m.route(req.URL).Upload(ctx, path, req)
}

// Cancel forwards to every backend. Backends ignore ids they do not own.
func (m *Mux) Cancel(id string) {
	if m.fallback != nil {
		m.fallback.Cancel(id)
	}
	for _, u := range m.schemes {
		u.Cancel(id)
	}
}
