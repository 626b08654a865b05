package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/huemqtt/internal/bridge"
	"github.com/dokzlo13/huemqtt/internal/config"
	"github.com/dokzlo13/huemqtt/internal/mqtt"
)

// BridgeService runs the sync engine and the online heartbeat.
type BridgeService struct {
	cfg    *config.Config
	client *mqtt.Client

	Engine *bridge.Engine

	done chan struct{}
}

// NewBridgeService creates the engine between controller and the broker client.
func NewBridgeService(cfg *config.Config, controller bridge.Controller, client *mqtt.Client) *BridgeService {
	engine := bridge.New(controller, client, bridge.Options{
		BaseTopic:      cfg.MQTT.BaseTopic,
		PollInterval:   cfg.Bridge.PollInterval.Duration(),
		WriteRateLimit: cfg.Hue.WriteRateLimit(),
	})

	return &BridgeService{
		cfg:    cfg,
		client: client,
		Engine: engine,
		done:   make(chan struct{}),
	}
}

// Start launches the poll loop and the heartbeat in the background.
func (s *BridgeService) Start(ctx context.Context, onFatalError func(error)) {
	go func() {
		defer close(s.done)
		if err := s.Engine.Run(ctx); err != nil && onFatalError != nil {
			onFatalError(err)
		}
	}()

	go s.client.RunHeartbeat(ctx, s.cfg.MQTT.Heartbeat.Duration())
}

// Stop waits for the poll loop to exit, then lets queued commands finish.
// Both waits share timeout; commands still running after it are cancelled.
func (s *BridgeService) Stop(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	select {
	case <-s.done:
	case <-ctx.Done():
		log.Warn().Msg("Timed out waiting for poll loop to stop")
	}

	if err := s.Engine.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("Timed out waiting for queued commands")
	}
}
