package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hotelstay/service-booking/internal/domain/stay"
)

const (
	globalGenerationKey = "gen:global"
	hotelGenerationFmt  = "gen:hotel:%s"
)

// Config holds Redis connection settings.
type Config struct {
	Addr         string
	Password     string
	DB           int
	TTL          time.Duration
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns settings for a local Redis.
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		TTL:          5 * time.Minute,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	}
}

// Client is a JSON read cache whose keys embed generation counters. Bumping a
// counter makes every key built from the old value unreachable; stale entries
// then expire by TTL.
type Client struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewClient creates a Client. The connection is established lazily, so a Redis
// outage at startup degrades to cache misses instead of failing boot.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	def := DefaultConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = def.DialTimeout
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = def.ReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	return &Client{rdb: rdb, ttl: cfg.TTL, logger: logger}
}

// Ping checks if the Redis connection is alive.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// HotelGeneration returns the current generation of hotelID.
func (c *Client) HotelGeneration(ctx context.Context, hotelID uuid.UUID) (int64, error) {
	return c.generation(ctx, fmt.Sprintf(hotelGenerationFmt, hotelID))
}

// GlobalGeneration returns the generation shared by all cross-hotel entries.
func (c *Client) GlobalGeneration(ctx context.Context) (int64, error) {
	return c.generation(ctx, globalGenerationKey)
}

func (c *Client) generation(ctx context.Context, key string) (int64, error) {
	gen, err := c.rdb.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read generation %s: %w", key, err)
	}
	return gen, nil
}

// InvalidateHotels bumps the generation of every given hotel and the global one.
func (c *Client) InvalidateHotels(ctx context.Context, hotelIDs ...uuid.UUID) error {
	seen := make(map[uuid.UUID]struct{}, len(hotelIDs))
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range hotelIDs {
			if _, dup := seen[id]; dup || id == uuid.Nil {
				continue
			}
			seen[id] = struct{}{}
			pipe.Incr(ctx, fmt.Sprintf(hotelGenerationFmt, id))
		}
		pipe.Incr(ctx, globalGenerationKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to bump cache generations: %w", err)
	}
	return nil
}

// GetJSON decodes the value at key into dest. It reports false on a miss.
func (c *Client) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Warn("dropping undecodable cache entry", zap.String("key", key), zap.Error(err))
		_ = c.rdb.Del(ctx, key).Err()
		return false, nil
	}
	return true, nil
}

// SetJSON stores v at key with the configured TTL.
func (c *Client) SetJSON(ctx context.Context, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// FreeRoomsKey builds the key of a hotel's free-room listing.
func FreeRoomsKey(hotelID uuid.UUID, gen int64, s *stay.Stay) string {
	return fmt.Sprintf("freerooms:%s:g%d:%s", hotelID, gen, stayPart(s))
}

// SearchKey builds the key of a city search.
func SearchKey(city string, guests int, gen int64, s *stay.Stay) string {
	city = strings.ToLower(strings.TrimSpace(city))
	if city == "" {
		city = "*"
	}
	return fmt.Sprintf("search:%s:%d:g%d:%s", city, guests, gen, stayPart(s))
}

func stayPart(s *stay.Stay) string {
	if s == nil {
		return "any"
	}
	return s.Key()
}
