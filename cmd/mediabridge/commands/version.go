package commands

import (
	"context"
	"fmt"

	"github.com/mediabridge/mediabridge/pkg/appctx"
)

// checkFFmpeg verifies the ffmpeg binary configured for the running app.
func checkFFmpeg(ctx context.Context) (string, error) {
	mgr, ok := appctx.App(ctx)
	if !ok {
		return "", fmt.Errorf("application not initialized")
	}
	v, err := mgr.Media.CheckVersion(ctx)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "unknown (snapshot build)", nil
	}
	return v.String(), nil
}
