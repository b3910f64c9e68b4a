// Package appctx carries shared application state on a context.
package appctx

import (
	"context"

	"github.com/mediabridge/mediabridge/pkg/config"
	"github.com/mediabridge/mediabridge/pkg/engine"
)

type key string

const (
	configKey key = "mediabridge.config.manager"
	appKey    key = "mediabridge.app.manager"
)

// WithConfig stores the shared config manager on context.
func WithConfig(ctx context.Context, manager *config.Manager) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, configKey, manager)
}

// Config retrieves the shared config manager from context.
func Config(ctx context.Context) (*config.Manager, bool) {
	if ctx == nil {
		return nil, false
	}
	mgr, ok := ctx.Value(configKey).(*config.Manager)
	return mgr, ok && mgr != nil
}

// WithApp stores the application manager, and its config manager, on context.
func WithApp(ctx context.Context, app *engine.AppManager) context.Context {
	ctx = context.WithValue(WithConfig(ctx, app.ConfigManager), appKey, app)
	return ctx
}

// App retrieves the application manager from context.
func App(ctx context.Context) (*engine.AppManager, bool) {
	if ctx == nil {
		return nil, false
	}
	app, ok := ctx.Value(appKey).(*engine.AppManager)
	return app, ok && app != nil
}
