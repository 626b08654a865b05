// Command huemqtt mirrors Hue bridge lights and groups onto MQTT topics and
// applies commands published to their set topics.
package main

import (
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/huemqtt/internal/app"
	"github.com/dokzlo13/huemqtt/internal/config"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "Path to configuration file")
	flag.StringVar(&configPath, "c", "config.yaml", "Path to configuration file (shorthand)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", configPath).Msg("Failed to load configuration")
	}
	setupLogging(cfg.Log)

	log.Info().
		Str("hue", cfg.Hue.Address()).
		Str("broker", cfg.MQTT.URL).
		Str("client_id", cfg.MQTT.ClientID).
		Msg("Starting huemqtt")

	bridgeApp, err := app.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MQTT broker")
	}

	if err := bridgeApp.Run(app.SignalContext()); err != nil {
		log.Error().Err(err).Msg("huemqtt stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("huemqtt stopped")
}

// setupLogging configures the global zerolog logger. Unknown levels fall back
// to info.
func setupLogging(cfg config.LogConfig) {
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.UseJSON {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "2006-01-02T15:04:05.000Z07:00",
			NoColor:    !cfg.Colors,
		})
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}
