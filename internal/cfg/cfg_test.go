package cfg

import (
	"testing"
	"time"

	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("POSTGRES_USER", "store")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "storefront")
	t.Setenv("JWT_SECRET", testSecret)
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load(logger.Nop())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Http.Port)
	assert.Equal(t, SessionBackendRedis, cfg.Session.Backend)
	assert.Equal(t, "storefront_session", cfg.Session.CookieName)
	assert.Equal(t, 6*time.Hour, cfg.Session.IdleTTL)
	assert.False(t, cfg.Kafka.Enabled)
	assert.False(t, cfg.Seed.Enabled)
	assert.Equal(t, 3*time.Second, cfg.Redis.Timeout)
}

func TestLoad_MissingPostgresUser(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("POSTGRES_USER", "")

	_, err := Load(logger.Nop())
	assert.Error(t, err)
}

func TestLoad_ShortJWTSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_SECRET", "short")

	_, err := Load(logger.Nop())
	assert.Error(t, err)
}

func TestLoad_InvalidSessionBackend(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SESSION_BACKEND", "badger")

	_, err := Load(logger.Nop())
	assert.Error(t, err)
}

func TestLoad_KafkaBrokersAndCORS(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://shop.example.com")
	t.Setenv("SESSION_IDLE_TTL", "30m")

	cfg, err := Load(logger.Nop())
	require.NoError(t, err)

	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, []string{"https://shop.example.com"}, cfg.Http.CORSOrigins)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTTL)
}

func TestParseIntEnv_Invalid(t *testing.T) {
	t.Setenv("SOME_INT", "ten")

	v, err := parseIntEnv("SOME_INT", 10)
	assert.Error(t, err)
	assert.Equal(t, 10, v)
}
