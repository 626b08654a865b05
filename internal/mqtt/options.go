package mqtt

import (
	"crypto/tls"
	"net/url"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/dokzlo13/huemqtt/internal/config"
)

const (
	// defaultPublishTimeout is the maximum time to wait for publish acknowledgment.
	defaultPublishTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the time to wait for pending operations on disconnect.
	defaultDisconnectQuiesce = 1000 // milliseconds

	// defaultKeepAlive is the keepalive interval for the connection.
	defaultKeepAlive = 60 * time.Second

	// maxReconnectInterval caps the exponential reconnect backoff.
	maxReconnectInterval = time.Minute

	// maxQoS is the maximum QoS level supported.
	maxQoS = 2

	// maxPayloadSize bounds outbound payloads (1MB).
	maxPayloadSize = 1 << 20
)

// buildClientOptions creates paho options from the MQTT config, including
// the last will on the status topic.
func buildClientOptions(cfg config.MQTTConfig) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(cfg.URL)
	opts.SetClientID(cfg.ClientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	// Persistent session so QoS 2 commands queued while we were away are delivered
	opts.SetCleanSession(cfg.CleanSession)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(time.Second)
	opts.SetMaxReconnectInterval(maxReconnectInterval)
	opts.SetConnectTimeout(cfg.ConnectTimeout.Duration())
	opts.SetKeepAlive(defaultKeepAlive)

	// paho delivers messages in order on a single goroutine
	opts.SetOrderMatters(true)

	if u, err := url.Parse(cfg.URL); err == nil && (u.Scheme == "ssl" || u.Scheme == "tls" || u.Scheme == "mqtts") {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	topics := Topics{Base: cfg.BaseTopic}
	opts.SetWill(topics.Status(), StatusOffline, QoSExactlyOnce, true)

	return opts
}
