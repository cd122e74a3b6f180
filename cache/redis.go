package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gamecatalog/models"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheMiss   = errors.New("cache miss")
	ErrUnavailable = errors.New("redis not available")
)

const (
	GameCachePrefix = "game:"      // game:123
	GamesCacheKey   = "games:all"  // full catalog listing
	RateLimitPrefix = "ratelimit:" // ratelimit:<client ip>

	GameTTL  = time.Hour
	GamesTTL = 5 * time.Minute
)

// Cache wraps a redis client. A nil *Cache, or one built without an
// address, is a disabled cache: reads miss and writes are dropped.
type Cache struct {
	client *redis.Client
}

// New connects to addr. An empty addr returns a disabled cache.
func New(ctx context.Context, addr, password string) (*Cache, error) {
	if addr == "" {
		return &Cache{}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return &Cache{}, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// IsAvailable pings redis.
func (c *Cache) IsAvailable(ctx context.Context) bool {
	if !c.Enabled() {
		return false
	}
	return c.client.Ping(ctx).Err() == nil
}

func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// Set stores value as JSON with ttl.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.Enabled() {
		return ErrUnavailable
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

// Get decodes the JSON stored at key into dest.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	if !c.Enabled() {
		return ErrUnavailable
	}

	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("failed to get value: %w", err)
	}

	if err := json.Unmarshal(val, dest); err != nil {
		return fmt.Errorf("failed to unmarshal value: %w", err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// ==================== GAME CACHING ====================

func GameKey(id uint) string {
	return fmt.Sprintf("%s%d", GameCachePrefix, id)
}

func (c *Cache) GetGame(ctx context.Context, id uint) (models.Game, error) {
	var game models.Game
	err := c.Get(ctx, GameKey(id), &game)
	return game, err
}

func (c *Cache) SetGame(ctx context.Context, game models.Game) error {
	return c.Set(ctx, GameKey(game.ID), game, GameTTL)
}

func (c *Cache) InvalidateGame(ctx context.Context, id uint) error {
	return c.Delete(ctx, GameKey(id))
}

func (c *Cache) GetGames(ctx context.Context) ([]models.Game, error) {
	var games []models.Game
	err := c.Get(ctx, GamesCacheKey, &games)
	return games, err
}

func (c *Cache) SetGames(ctx context.Context, games []models.Game) error {
	return c.Set(ctx, GamesCacheKey, games, GamesTTL)
}

func (c *Cache) InvalidateGamesList(ctx context.Context) error {
	return c.Delete(ctx, GamesCacheKey)
}

// ==================== RATE LIMITING ====================

// CheckRateLimit counts requests for key in a fixed window. It returns
// whether the request is allowed and how many requests remain. Everything
// is allowed when redis is disabled.
func (c *Cache) CheckRateLimit(ctx context.Context, key string, maxRequests int, window time.Duration) (bool, int, error) {
	if !c.Enabled() {
		return true, maxRequests, nil
	}

	redisKey := RateLimitPrefix + key

	count, err := c.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, 0, err
	}
	if count == 1 {
		if err := c.client.Expire(ctx, redisKey, window).Err(); err != nil {
			return false, 0, err
		}
	}

	if count > int64(maxRequests) {
		return false, 0, nil
	}
	return true, maxRequests - int(count), nil
}

// ==================== CACHE STATISTICS ====================

func (c *Cache) Stats(ctx context.Context) (map[string]interface{}, error) {
	if !c.Enabled() {
		return nil, ErrUnavailable
	}

	dbSize, err := c.client.DBSize(ctx).Result()
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"db_size": dbSize,
	}, nil
}
