package mqtt

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// RunHeartbeat republishes the online status every interval until ctx is
// cancelled. Ticks while disconnected are skipped; the connect handler
// publishes the status again once the link is back.
func (c *Client) RunHeartbeat(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !c.IsConnected() {
				continue
			}
			if err := c.Publish(c.topics.Status(), []byte(StatusOnline), QoSExactlyOnce, true); err != nil {
				log.Warn().Err(err).Msg("Failed to publish heartbeat")
			}
		}
	}
}
