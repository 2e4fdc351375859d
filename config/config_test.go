package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadEnvDefaults(t *testing.T) {
	cfg := LoadEnv()

	assert.Equal(t, ":8083", cfg.Server.HTTPPort)
	assert.Equal(t, "غير محدد", cfg.Allocation.PlaceholderName)
	assert.Equal(t, 3, cfg.Allocation.LockRetries)
	assert.Equal(t, 30*time.Second, cfg.Allocation.LockTTL)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ALLOCATION_PLACEHOLDER_NAME", "unspecified")
	t.Setenv("ALLOCATION_LOCK_RETRY_DELAY", "250ms")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("REDIS_DB", "4")

	cfg := LoadEnv()

	assert.Equal(t, "unspecified", cfg.Allocation.PlaceholderName)
	assert.Equal(t, 250*time.Millisecond, cfg.Allocation.LockRetryDelay)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 4, cfg.Redis.DB)
}

func TestLoadEnvIgnoresMalformedValues(t *testing.T) {
	t.Setenv("ALLOCATION_LOCK_RETRIES", "many")
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")
	t.Setenv("LOGGER_DISABLE_CALLER", "perhaps")

	cfg := LoadEnv()

	assert.Equal(t, 3, cfg.Allocation.LockRetries)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.False(t, cfg.Logger.DisableCaller)
}
