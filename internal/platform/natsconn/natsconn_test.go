package natsconn

import (
	"strings"
	"testing"
	"time"

	"github.com/example/tanya-platform/internal/platform/config"
)

func TestWithDefaults_FillsZeroValues(t *testing.T) {
	got := withDefaults(config.NATSConfig{})
	if got.URL != defaultURL {
		t.Fatalf("URL = %q, want %q", got.URL, defaultURL)
	}
	if got.MaxReconnects != defaultMaxReconnects {
		t.Fatalf("MaxReconnects = %d, want %d", got.MaxReconnects, defaultMaxReconnects)
	}
	if got.ReconnectWait != defaultReconnectWait {
		t.Fatalf("ReconnectWait = %s, want %s", got.ReconnectWait, defaultReconnectWait)
	}
}

func TestWithDefaults_KeepsExplicitValues(t *testing.T) {
	in := config.NATSConfig{
		URL:           "nats://bus.internal:4222",
		MaxReconnects: 12,
		ReconnectWait: 750 * time.Millisecond,
	}
	if got := withDefaults(in); got != in {
		t.Fatalf("withDefaults(%+v) = %+v, want unchanged", in, got)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := Connect(config.NATSConfig{
		URL:           "nats://127.0.0.1:19999",
		ReconnectWait: 10 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected error connecting to unreachable NATS URL")
	}
	if !strings.Contains(err.Error(), "nats connect") {
		t.Fatalf("error %q does not name the connect step", err)
	}
}
