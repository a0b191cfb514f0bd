package v1

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient is a Redis probe for test stages. Operations return errors
// instead of failing the stage directly, so a stage can hand them to the
// tolerance filter (a full engine answers SET with "OOM command not
// allowed", which IsRedisOOM recognizes).
type RedisClient struct {
	client *redis.Client
}

// ConnectRedis connects to Redis using go-redis/v9.
func ConnectRedis(addr, password string, db int) (*RedisClient, error) {
	RecordAction(fmt.Sprintf("Redis Connect: %s", addr), func() { ConnectRedis(addr, password, db) })
	if IsDryRun() {
		return &RedisClient{}, nil
	}
	Logf(LogTypeRedis, "Connecting to Redis at %s (db=%d)", addr, db)
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := c.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	Log(LogTypeRedis, "Connected to Redis", "")
	return &RedisClient{client: c}, nil
}

// MustConnectRedis connects and fails the stage on error.
func MustConnectRedis(addr, password string, db int) *RedisClient {
	c, err := ConnectRedis(addr, password, db)
	if err != nil {
		FailErr(err, "Failed to connect to Redis")
	}
	return c
}

// Set sets a key with expiration.
func (c *RedisClient) Set(key string, value interface{}, expiration time.Duration) error {
	RecordAction(fmt.Sprintf("Redis Set: %s", key), func() { c.Set(key, value, expiration) })
	if IsDryRun() {
		return nil
	}
	if c.client == nil {
		return fmt.Errorf("redis client is not connected")
	}
	Log(LogTypeRedis, fmt.Sprintf("SET %s", key), fmt.Sprintf("value=%v, ttl=%s", value, expiration))
	if err := c.client.Set(context.Background(), key, value, expiration).Err(); err != nil {
		return fmt.Errorf("set redis key %s: %w", key, err)
	}
	return nil
}

// Get retrieves a key value.
func (c *RedisClient) Get(key string) (string, error) {
	RecordAction(fmt.Sprintf("Redis Get: %s", key), func() { c.Get(key) })
	if IsDryRun() {
		return "", nil
	}
	if c.client == nil {
		return "", fmt.Errorf("redis client is not connected")
	}
	Logf(LogTypeRedis, "GET %s", key)
	val, err := c.client.Get(context.Background(), key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", fmt.Errorf("redis key %s not found: %w", key, err)
		}
		return "", fmt.Errorf("get redis key %s: %w", key, err)
	}
	return val, nil
}

// Del deletes keys.
func (c *RedisClient) Del(keys ...string) error {
	RecordAction(fmt.Sprintf("Redis Del: %v", keys), func() { c.Del(keys...) })
	if IsDryRun() {
		return nil
	}
	if c.client == nil {
		return fmt.Errorf("redis client is not connected")
	}
	Log(LogTypeRedis, "DEL keys", fmt.Sprintf("%v", keys))
	if err := c.client.Del(context.Background(), keys...).Err(); err != nil {
		return fmt.Errorf("del redis keys %v: %w", keys, err)
	}
	return nil
}

// Fill writes count values of the given size under prefix. It is the probe
// used to drive a maxmemory-bounded engine toward exhaustion; the first OOM
// answer is returned for classification.
func (c *RedisClient) Fill(prefix string, count, size int) error {
	RecordAction(fmt.Sprintf("Redis Fill: %s x%d", prefix, count), func() { c.Fill(prefix, count, size) })
	if IsDryRun() {
		return nil
	}
	if c.client == nil {
		return fmt.Errorf("redis client is not connected")
	}
	Log(LogTypeRedis, "FILL", fmt.Sprintf("prefix=%s count=%d size=%d", prefix, count, size))
	payload := strings.Repeat("x", size)
	ctx := context.Background()
	for i := 0; i < count; i++ {
		key := fmt.Sprintf("%s:%d", prefix, i)
		if err := c.client.Set(ctx, key, payload, 0).Err(); err != nil {
			return fmt.Errorf("fill redis key %s: %w", key, err)
		}
	}
	return nil
}

// ExpectValue asserts that a key has the expected value.
func (c *RedisClient) ExpectValue(key string, expected string) {
	if IsDryRun() {
		return
	}
	val, err := c.Get(key)
	if err != nil {
		FailErr(err, "Failed to read redis key %s", key)
	}
	if val != expected {
		Fail("Redis value mismatch for key %s: expected %s, got %s", key, expected, val)
	}
	Logf(LogTypeExpect, "Redis key %s == %s - PASSED", key, expected)
}

// FlushAll removes all keys from the current database.
func (c *RedisClient) FlushAll() error {
	RecordAction("Redis FlushAll", func() { c.FlushAll() })
	if IsDryRun() {
		return nil
	}
	if c.client == nil {
		return fmt.Errorf("redis client is not connected")
	}
	Log(LogTypeRedis, "FLUSHALL", "")
	if err := c.client.FlushDB(context.Background()).Err(); err != nil {
		return fmt.Errorf("flush redis db: %w", err)
	}
	return nil
}
