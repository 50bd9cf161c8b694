package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadEnv_Defaults(t *testing.T) {
	cfg := LoadEnv()

	assert.Equal(t, "localhost", cfg.Postgres.Host)
	assert.Equal(t, "omnipos_service", cfg.Postgres.ServiceUser)
	assert.Equal(t, "ventes.events", cfg.Kafka.Topic)
	assert.Equal(t, 12*time.Hour, cfg.JWT.TTL)
}

func TestLoadEnv_Overrides(t *testing.T) {
	t.Setenv("POSTGRES_MAX_OPEN_CONNS", "42")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("POSTGRES_MAX_IDLE_CONNS", "not-a-number")

	cfg := LoadEnv()

	assert.Equal(t, 42, cfg.Postgres.MaxOpenConns)
	assert.Equal(t, 5, cfg.Postgres.MaxIdleConns)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.False(t, cfg.Redis.Enabled)
}

func TestBusinessConfig_Location(t *testing.T) {
	assert.Equal(t, time.UTC, BusinessConfig{Timezone: "Nowhere/Invalid"}.Location())
	assert.Equal(t, "Africa/Libreville", BusinessConfig{Timezone: "Africa/Libreville"}.Location().String())
}
