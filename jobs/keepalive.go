// Package jobs holds the periodic housekeeping task. It has no interaction
// with the booking workflow.
package jobs

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// KeepAlive pings url on every tick until ctx is cancelled. The original
// deployment ran on a free tier that idles the process; the ping keeps it
// warm. A failed ping is logged and retried on the next tick.
func KeepAlive(ctx context.Context, url string, every time.Duration, logger zerolog.Logger) {
	if url == "" {
		return
	}
	client := &http.Client{Timeout: 10 * time.Second}

	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
				if err != nil {
					logger.Warn().Err(err).Msg("keepalive request build failed")
					continue
				}
				resp, err := client.Do(req)
				if err != nil {
					logger.Warn().Err(err).Str("url", url).Msg("keepalive ping failed")
					continue
				}
				resp.Body.Close()
				logger.Debug().Int("status", resp.StatusCode).Msg("keepalive ping")
			}
		}
	}()
}
