package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Hue             HueConfig         `yaml:"hue"`
	MQTT            MQTTConfig        `yaml:"mqtt"`
	Bridge          BridgeConfig      `yaml:"bridge"`
	Log             LogConfig         `yaml:"log"`
	Healthcheck     HealthcheckConfig `yaml:"healthcheck"`
	ShutdownTimeout Duration          `yaml:"shutdown_timeout"` // General shutdown timeout for graceful stops
}

// HueConfig contains Hue bridge connection settings
type HueConfig struct {
	Host     string   `yaml:"host"`
	Port     int      `yaml:"port"`
	Username string   `yaml:"username"`
	Timeout  Duration `yaml:"timeout"` // Per-request timeout for Hue API calls

	// Max controller writes per second; 0 disables the limit, unset means 10
	RateLimitRPS *float64 `yaml:"rate_limit_rps"`
}

// Address returns host:port for the Hue bridge
func (c HueConfig) Address() string {
	if c.Port == 0 || c.Port == 80 {
		return c.Host
	}
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// WriteRateLimit returns the configured write rate, 0 meaning unlimited.
func (c HueConfig) WriteRateLimit() float64 {
	if c.RateLimitRPS == nil {
		return 0
	}
	return *c.RateLimitRPS
}

// MQTTConfig contains MQTT broker connection settings
type MQTTConfig struct {
	URL          string `yaml:"url"` // e.g. tcp://mqtt.lan:1883
	ClientID     string `yaml:"client_id"`
	BaseTopic    string `yaml:"base_topic"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	CleanSession bool   `yaml:"clean_session"`

	Heartbeat      Duration `yaml:"heartbeat"`       // Status "1" republish interval
	ConnectTimeout Duration `yaml:"connect_timeout"` // Initial connect timeout
}

// BridgeConfig contains state synchronization settings
type BridgeConfig struct {
	PollInterval Duration `yaml:"poll_interval"` // Delay between the end of one poll and the start of the next
}

// LogConfig contains logging settings
type LogConfig struct {
	Level   string `yaml:"level"`
	UseJSON bool   `yaml:"json"`
	Colors  bool   `yaml:"colors"`
}

// HealthcheckConfig contains health check server settings
type HealthcheckConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

// Addr returns the listen address for the health check server
func (c HealthcheckConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Duration is a wrapper around time.Duration for YAML unmarshalling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse parses configuration from YAML bytes, expanding environment variables
// and applying defaults.
func Parse(data []byte) (*Config, error) {
	// Expand environment variables
	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	// Hue defaults
	if cfg.Hue.Port == 0 {
		cfg.Hue.Port = 80
	}
	if cfg.Hue.Timeout == 0 {
		cfg.Hue.Timeout = Duration(15 * time.Second)
	}
	if cfg.Hue.RateLimitRPS == nil {
		rps := 10.0 // bridge guidance: ~10 light commands per second
		cfg.Hue.RateLimitRPS = &rps
	}

	// MQTT defaults
	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = "hue-bridge"
	}
	if cfg.MQTT.BaseTopic == "" {
		cfg.MQTT.BaseTopic = "device/hue-bridge"
	}
	cfg.MQTT.BaseTopic = strings.TrimSuffix(cfg.MQTT.BaseTopic, "/")
	if cfg.MQTT.Heartbeat == 0 {
		cfg.MQTT.Heartbeat = Duration(60 * time.Second)
	}
	if cfg.MQTT.ConnectTimeout == 0 {
		cfg.MQTT.ConnectTimeout = Duration(10 * time.Second)
	}

	// Bridge defaults
	if cfg.Bridge.PollInterval == 0 {
		cfg.Bridge.PollInterval = Duration(1 * time.Second)
	}

	// Healthcheck defaults
	if cfg.Healthcheck.Port == 0 {
		cfg.Healthcheck.Port = 9090
	}
	if cfg.Healthcheck.Host == "" {
		cfg.Healthcheck.Host = "0.0.0.0"
	}

	// General shutdown timeout
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = Duration(5 * time.Second)
	}
}

// Validate checks that required settings are present.
func (cfg *Config) Validate() error {
	var errs []error
	if cfg.Hue.Host == "" {
		errs = append(errs, errors.New("hue.host is required"))
	}
	if cfg.Hue.Username == "" {
		errs = append(errs, errors.New("hue.username is required"))
	}
	if cfg.MQTT.URL == "" {
		errs = append(errs, errors.New("mqtt.url is required"))
	}
	if cfg.MQTT.BaseTopic == "" {
		errs = append(errs, errors.New("mqtt.base_topic must not be empty"))
	}
	if cfg.Hue.WriteRateLimit() < 0 {
		errs = append(errs, errors.New("hue.rate_limit_rps must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}
func expandEnvVars(input string) string {
	// Match ${VAR} or ${VAR:default}
	re := regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

	return re.ReplaceAllStringFunc(input, func(match string) string {
		parts := re.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultVal := ""
		if len(parts) >= 3 {
			defaultVal = parts[2]
		}

		if val := os.Getenv(varName); val != "" {
			return val
		}
		return defaultVal
	})
}
