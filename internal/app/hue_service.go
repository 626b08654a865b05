package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/huemqtt/internal/config"
	"github.com/dokzlo13/huemqtt/internal/hue"
)

// HueService owns the Hue bridge controller.
type HueService struct {
	cfg *config.Config

	Controller *hue.Controller
}

// NewHueService creates a new HueService. No request is made to the bridge.
func NewHueService(cfg *config.Config) *HueService {
	return &HueService{
		cfg:        cfg,
		Controller: hue.New(cfg.Hue),
	}
}

// Start checks the bridge is reachable. An unreachable bridge is not fatal:
// the poll loop keeps retrying every cycle.
func (s *HueService) Start(ctx context.Context) {
	if err := s.Controller.Ping(ctx); err != nil {
		log.Warn().Err(err).Str("host", s.cfg.Hue.Address()).Msg("Hue bridge not reachable, will keep polling")
	}
}
