package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
http:
  address: ":8080"
database:
  host: localhost
  port: 5432
  user: flights
  password: secret
  name: flightbooking
  ssl_mode: disable
  max_conns: 10
kafka:
  brokers: ["localhost:9092"]
  booking_events_topic: booking-events
rate_limit:
  enabled: true
  capacity: 3
  refill_interval: 2s
booking:
  pnr_attempts: 7
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, "host=localhost port=5432 user=flights password=secret dbname=flightbooking sslmode=disable pool_max_conns=10", cfg.Database.DSN())
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 7, cfg.Booking.PNRAttempts)
	assert.Equal(t, 10, cfg.Booking.SearchCacheTTL)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 3, cfg.RateLimit.Capacity)
	assert.Equal(t, 2*time.Second, cfg.RateLimit.RefillInterval)
	assert.Equal(t, 10*time.Second, cfg.RateLimit.TTL)
	assert.Equal(t, "rl", cfg.RateLimit.Prefix)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "{}"))
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Booking.PNRAttempts)
	assert.Equal(t, 20, cfg.RateLimit.Capacity)
	assert.Equal(t, 1, cfg.RateLimit.RefillTokens)
	assert.Equal(t, time.Second, cfg.RateLimit.RefillInterval)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, 15*time.Minute, cfg.Worker.AuditInterval)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "http: ["))
	assert.Error(t, err)
}
