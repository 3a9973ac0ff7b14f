package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, ":8003", cfg.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 5*time.Second, cfg.StorageConfig.Timeout)
	assert.Equal(t, 2, cfg.StorageConfig.ReadRetries)
	assert.Equal(t, 5*time.Minute, cfg.RedisConfig.CacheTTL)
	assert.Equal(t, "0 0 * * *", cfg.ReconcileConfig.Cron)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaConfig.Brokers)
	assert.NotEmpty(t, cfg.JWTConfig.Secret)
}

func TestFromViper_EnvOverrides(t *testing.T) {
	t.Setenv("BOOKING_SERVICE_PORT", "9000")
	t.Setenv("BOOKING_APP_ENV", "production")
	t.Setenv("BOOKING_JWT_SECRET", "prod-secret")
	t.Setenv("BOOKING_KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("BOOKING_STORAGE_TIMEOUT", "750ms")
	t.Setenv("BOOKING_RECONCILE_ON_START", "true")

	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Port)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "prod-secret", cfg.JWTConfig.Secret)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaConfig.Brokers)
	assert.Equal(t, 750*time.Millisecond, cfg.StorageConfig.Timeout)
	assert.True(t, cfg.ReconcileConfig.RunOnStart)
}

func TestFromViper_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("BOOKING_APP_ENV", "production")

	_, err := FromViper(viper.New())
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestFromViper_RejectsBadTimeout(t *testing.T) {
	t.Setenv("BOOKING_STORAGE_TIMEOUT", "0s")

	_, err := FromViper(viper.New())
	assert.ErrorContains(t, err, "STORAGE_TIMEOUT")
}
