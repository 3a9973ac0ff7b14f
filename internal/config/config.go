package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "BOOKING"

// DatabaseConfig holds PostgreSQL settings.
type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
}

// JWTConfig holds token verification settings.
type JWTConfig struct {
	Secret string
}

// KafkaConfig holds broker settings.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// RedisConfig holds cache settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// StorageConfig bounds storage calls.
type StorageConfig struct {
	Timeout     time.Duration
	ReadRetries int
}

// ReconcileConfig controls the availability sweep.
type ReconcileConfig struct {
	Cron       string
	RunOnStart bool
}

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port            string
	AppEnv          string
	DBConfig        DatabaseConfig
	JWTConfig       JWTConfig
	KafkaConfig     KafkaConfig
	RedisConfig     RedisConfig
	StorageConfig   StorageConfig
	ReconcileConfig ReconcileConfig
}

// Load reads configuration from an optional .env file and BOOKING_* environment variables.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !strings.Contains(err.Error(), "no such file") {
			return nil, fmt.Errorf("failed to read .env: %w", err)
		}
	}
	return FromViper(v)
}

// FromViper builds a ServiceConfig from v after applying env bindings and defaults.
func FromViper(v *viper.Viper) (*ServiceConfig, error) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &ServiceConfig{
		Port:   normalizePort(v.GetString("SERVICE_PORT")),
		AppEnv: v.GetString("APP_ENV"),
		DBConfig: DatabaseConfig{
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetString("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			DBName:       v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSLMODE"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		},
		JWTConfig: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
		},
		KafkaConfig: KafkaConfig{
			Brokers:     splitList(v.GetString("KAFKA_BROKERS")),
			GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		},
		RedisConfig: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			CacheTTL: v.GetDuration("CACHE_TTL"),
		},
		StorageConfig: StorageConfig{
			Timeout:     v.GetDuration("STORAGE_TIMEOUT"),
			ReadRetries: v.GetInt("STORAGE_READ_RETRIES"),
		},
		ReconcileConfig: ReconcileConfig{
			Cron:       v.GetString("RECONCILE_CRON"),
			RunOnStart: v.GetBool("RECONCILE_ON_START"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *ServiceConfig) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Validate checks settings that have no safe default.
func (c *ServiceConfig) Validate() error {
	if c.JWTConfig.Secret == "" {
		if !c.IsDevelopment() {
			return fmt.Errorf("%s_JWT_SECRET is required outside development", envPrefix)
		}
		c.JWTConfig.Secret = "dev-secret-change-me"
	}
	if c.StorageConfig.Timeout <= 0 {
		return fmt.Errorf("%s_STORAGE_TIMEOUT must be positive", envPrefix)
	}
	if c.StorageConfig.ReadRetries < 0 {
		return fmt.Errorf("%s_STORAGE_READ_RETRIES must not be negative", envPrefix)
	}
	if len(c.KafkaConfig.Brokers) == 0 {
		return fmt.Errorf("%s_KAFKA_BROKERS must list at least one broker", envPrefix)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_PORT", ":8003")
	v.SetDefault("APP_ENV", "development")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "hotel_booking")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)

	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_PREFIX", "")

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", "5m")

	v.SetDefault("STORAGE_TIMEOUT", "5s")
	v.SetDefault("STORAGE_READ_RETRIES", 2)

	v.SetDefault("RECONCILE_CRON", "0 0 * * *")
	v.SetDefault("RECONCILE_ON_START", false)
}

func normalizePort(port string) string {
	if port == "" || strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
