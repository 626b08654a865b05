package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/huemqtt/internal/config"
)

// App ties the broker connection, the Hue controller and the sync engine to
// one process lifetime.
type App struct {
	cfg      *config.Config
	services *Services
}

// New connects to the broker so that a bad broker address fails before
// anything else starts.
func New(cfg *config.Config) (*App, error) {
	services, err := NewServices(cfg)
	if err != nil {
		return nil, err
	}
	return &App{cfg: cfg, services: services}, nil
}

// Run starts the services and blocks until ctx is cancelled or the engine
// fails, then drains queued commands and disconnects. The engine's error is
// returned; a plain cancellation is not an error.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	a.services.Start(ctx, func(err error) {
		log.Error().Err(err).Msg("Bridge failed, shutting down")
		cancel(err)
	})

	log.Info().
		Str("base_topic", a.cfg.MQTT.BaseTopic).
		Dur("poll_interval", a.cfg.Bridge.PollInterval.Duration()).
		Msg("huemqtt running")

	<-ctx.Done()

	log.Info().Dur("timeout", a.cfg.ShutdownTimeout.Duration()).Msg("Shutting down")
	a.services.Stop()

	if err := context.Cause(ctx); !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Warn().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	return ctx
}
