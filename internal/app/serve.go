package app

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/tweakrunner/internal/ctxlog"
	"github.com/vk/tweakrunner/internal/remote"
)

// Serve hands the host callbacks to a remote host over socket.io until ctx
// is done or the remote host disconnects. The framework is stopped on the
// way out so no override outlives the session.
func (a *App) Serve(ctx context.Context, healthcheckPort int) error {
	rc := a.config.Remote
	if rc.URL == "" {
		return fmt.Errorf("no remote URL configured: set remote.url or TWEAKRUNNER_REMOTE_URL")
	}
	ctx = ctxlog.WithLogger(ctx, a.logger)

	if healthcheckPort > 0 {
		srv := a.startHealthcheckServer(healthcheckPort)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			a.logger.Info("🩺 Shutting down health check server...")
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Error("Health check server shutdown failed", "error", err)
			}
		}()
	}
	defer a.Stop()

	bridge := remote.New(remote.Config{
		URL:                rc.URL,
		Namespace:          rc.Namespace,
		InsecureSkipVerify: rc.InsecureSkipVerify,
		Timeout:            rc.Timeout,
	}, a.game.Entry(), a.runner)
	return bridge.Run(ctx)
}
