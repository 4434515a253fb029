package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"posbridge/internal/domain"
)

const redisKeyPrefix = "pos:config:"

// RedisConfigs конфигурации в Redis: JSON под ключом pos:config:<restaurantId>
type RedisConfigs struct {
	rdb *redis.Client
}

func NewRedisConfigs(rdb *redis.Client) *RedisConfigs { return &RedisConfigs{rdb: rdb} }

var _ ConfigRepository = (*RedisConfigs)(nil)

func RedisConfigKey(restaurantID string) string { return redisKeyPrefix + restaurantID }

func (r *RedisConfigs) ResolveConfig(ctx context.Context, restaurantID string) (*domain.RestaurantPOSConfig, error) {
	val, err := r.rdb.Get(ctx, RedisConfigKey(restaurantID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get pos config: %w", err)
	}
	return decodeRedisConfig(restaurantID, val)
}

// Save записывает конфигурацию без TTL (административный сидинг)
func (r *RedisConfigs) Save(ctx context.Context, c domain.RestaurantPOSConfig) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, RedisConfigKey(c.RestaurantID), b, 0).Err()
}

func decodeRedisConfig(restaurantID string, val []byte) (*domain.RestaurantPOSConfig, error) {
	var c domain.RestaurantPOSConfig
	if err := json.Unmarshal(val, &c); err != nil {
		return nil, fmt.Errorf("decode pos config of %s: %w", restaurantID, err)
	}
	// key is authoritative
	c.RestaurantID = restaurantID
	if c.Credentials == nil {
		c.Credentials = map[string]string{}
	}
	return &c, nil
}
