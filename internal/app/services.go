package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/huemqtt/internal/bridge"
	"github.com/dokzlo13/huemqtt/internal/config"
	"github.com/dokzlo13/huemqtt/internal/mqtt"
)

// Services is a container for all application services.
// It manages service initialization order and dependencies.
type Services struct {
	cfg *config.Config

	// Core infrastructure
	MQTT *mqtt.Client

	// High-level services
	Hue    *HueService
	Bridge *BridgeService
	Health *HealthService
}

// NewServices connects to the broker and wires the bridge between it and the
// Hue controller.
func NewServices(cfg *config.Config) (*Services, error) {
	s := &Services{cfg: cfg}

	client, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return nil, err
	}
	s.MQTT = client

	s.Hue = NewHueService(cfg)
	s.Bridge = NewBridgeService(cfg, s.Hue.Controller, client)
	s.Health = NewHealthService(cfg, client.HealthCheck)

	return s, nil
}

// Start starts all services in the correct order.
// The onFatalError callback is called when a fatal error occurs (e.g. the
// set-topic subscriptions cannot be made).
func (s *Services) Start(ctx context.Context, onFatalError func(error)) {
	s.Hue.Start(ctx)

	s.Bridge.Start(ctx, onFatalError)
	s.Health.Start(ctx)
}

// Stop waits for in-flight commands and releases all resources.
func (s *Services) Stop() {
	if s.Bridge != nil {
		s.Bridge.Stop(s.cfg.ShutdownTimeout.Duration())
	}
	s.Close()
}

// Close releases all resources. The broker connection goes last so the
// offline status is the final message.
func (s *Services) Close() {
	if s.Hue != nil {
		s.Hue.Controller.Close()
	}
	if s.MQTT != nil {
		if err := s.MQTT.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing MQTT connection")
		}
	}
}

var _ bridge.Bus = (*mqtt.Client)(nil)
