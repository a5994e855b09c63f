package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache хранит отметки об отправленных уведомлениях в Redis.
type RedisCache struct {
	client redis.Cmdable
}

// NewRedis создаёт кэш поверх клиента Redis.
func NewRedis(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client}
}

// Connect подключается к Redis и проверяет соединение.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	if addr == "" {
		return nil, errors.New("redis: address is required")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

// Once выполняет fn, если ключ ещё не задан, и возвращает true.
// Если fn завершилась ошибкой, ключ удаляется, чтобы следующий запуск мог повторить попытку.
func (c *RedisCache) Once(ctx context.Context, key string, ttl time.Duration, fn func() error) (bool, error) {
	ok, err := c.client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := fn(); err != nil {
		_ = c.client.Del(context.WithoutCancel(ctx), key).Err()
		return false, err
	}
	return true, nil
}
