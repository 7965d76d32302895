// Package natsconn dials the discussion event bus. Connection settings come
// from config.AppConfig rather than being read from the environment here, so
// every caller sees the same policy the rest of the service was booted with.
package natsconn

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/example/tanya-platform/internal/platform/config"
)

const (
	defaultURL           = "nats://nats:4222"
	defaultMaxReconnects = 5
	defaultReconnectWait = 2 * time.Second
)

// withDefaults fills unset connection fields with the package defaults.
func withDefaults(c config.NATSConfig) config.NATSConfig {
	if c.URL == "" {
		c.URL = defaultURL
	}
	if c.MaxReconnects <= 0 {
		c.MaxReconnects = defaultMaxReconnects
	}
	if c.ReconnectWait <= 0 {
		c.ReconnectWait = defaultReconnectWait
	}
	return c
}

// Connect establishes a NATS connection with the configured retry policy.
// On failure after all retries it returns an error so the caller can decide
// whether events are optional (dev) or fatal (production).
func Connect(cfg config.NATSConfig) (*nats.Conn, error) {
	cfg = withDefaults(cfg)

	nc, err := nats.Connect(cfg.URL,
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.RetryOnFailedConnect(false),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect %s (max_reconnects=%d, wait=%s): %w",
			cfg.URL, cfg.MaxReconnects, cfg.ReconnectWait, err)
	}
	return nc, nil
}
