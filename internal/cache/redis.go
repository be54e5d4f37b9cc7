package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client    *redis.Client
	searchTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, searchTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}), searchTTL)
}

func NewRedisCacheWithClient(client *redis.Client, searchTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, searchTTL: searchTTL}
}

func (c *RedisCache) Client() *redis.Client {
	return c.client
}

// GetSearch returns nil, nil on a cache miss.
func (c *RedisCache) GetSearch(ctx context.Context, source, destination domain.City, date time.Time) ([]domain.Flight, error) {
	data, err := c.client.Get(ctx, searchKey(source, destination, date)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var flights []domain.Flight
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetSearch(ctx context.Context, source, destination domain.City, date time.Time, flights []domain.Flight) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, searchKey(source, destination, date), payload, c.searchTTL).Err()
}

// InvalidateFlights drops the cached search result of every route and day the
// given flights belong to.
func (c *RedisCache) InvalidateFlights(ctx context.Context, flights ...domain.Flight) error {
	if len(flights) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(flights))
	keys := make([]string, 0, len(flights))
	for _, f := range flights {
		key := searchKey(f.SourceCity, f.DestinationCity, f.DepartureDate())
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return c.client.Del(ctx, keys...).Err()
}

func searchKey(source, destination domain.City, date time.Time) string {
	return fmt.Sprintf("cache:search:%s:%s:%s", source, destination, domain.DateOf(date).Format(time.DateOnly))
}
