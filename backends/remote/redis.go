package remote

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/botirk38/embedscore/types"
	"github.com/redis/go-redis/v9"
)

const (
	defaultPrefix      = "embedscore:"
	defaultDialTimeout = 5 * time.Second
	scanCount          = 100
)

// RedisBackend implements VectorStore on plain Redis commands.
//
// Each record is a JSON string under <prefix>rec:<id>. Write order lives in
// the sorted set <prefix>order, scored by a counter at <prefix>seq.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// parseRedisURL parses a Redis URL and returns redis.Options
func parseRedisURL(connectionString string) (*redis.Options, error) {
	if !strings.HasPrefix(connectionString, "redis://") && !strings.HasPrefix(connectionString, "rediss://") {
		return &redis.Options{Addr: connectionString}, nil
	}

	parsedURL, err := url.Parse(connectionString)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}

	opts := &redis.Options{Addr: parsedURL.Host}

	if parsedURL.Scheme == "rediss" {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	if parsedURL.User != nil {
		opts.Username = parsedURL.User.Username()
		if password, ok := parsedURL.User.Password(); ok {
			opts.Password = password
		}
	}

	if dbStr := strings.TrimPrefix(parsedURL.Path, "/"); dbStr != "" {
		db, err := strconv.Atoi(dbStr)
		if err != nil {
			return nil, fmt.Errorf("invalid Redis database %q: %w", dbStr, err)
		}
		opts.DB = db
	}

	return opts, nil
}

// NewRedisBackend connects to Redis and verifies the connection.
func NewRedisBackend(ctx context.Context, config types.BackendConfig) (*RedisBackend, error) {
	if config.ConnectionString == "" {
		return nil, errors.New("redis connection string is required")
	}
	opts, err := parseRedisURL(config.ConnectionString)
	if err != nil {
		return nil, err
	}

	// Explicit values override the URL
	if config.Username != "" {
		opts.Username = config.Username
	}
	if config.Password != "" {
		opts.Password = config.Password
	}
	if config.Database != 0 {
		opts.DB = config.Database
	}

	dialTimeout := config.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = defaultDialTimeout
	}
	opts.DialTimeout = dialTimeout

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	prefix := config.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}

	return &RedisBackend{client: client, prefix: prefix}, nil
}

func (b *RedisBackend) recordKey(id string) string {
	return b.prefix + "rec:" + id
}

func (b *RedisBackend) orderKey() string {
	return b.prefix + "order"
}

func (b *RedisBackend) seqKey() string {
	return b.prefix + "seq"
}

// Set stores rec and moves it to the end of the write order.
func (b *RedisBackend) Set(ctx context.Context, rec types.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	seq, err := b.client.Incr(ctx, b.seqKey()).Result()
	if err != nil {
		return fmt.Errorf("failed to allocate sequence in Redis: %w", err)
	}

	_, err = b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, b.recordKey(rec.ID), data, 0)
		pipe.ZAdd(ctx, b.orderKey(), redis.Z{Score: float64(seq), Member: rec.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set record in Redis: %w", err)
	}
	return nil
}

func (b *RedisBackend) Get(ctx context.Context, id string) (types.Record, bool, error) {
	data, err := b.client.Get(ctx, b.recordKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return types.Record{}, false, nil
	}
	if err != nil {
		return types.Record{}, false, fmt.Errorf("failed to get record from Redis: %w", err)
	}

	var rec types.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return types.Record{}, false, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return rec, true, nil
}

func (b *RedisBackend) Delete(ctx context.Context, id string) error {
	_, err := b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, b.recordKey(id))
		pipe.ZRem(ctx, b.orderKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete record from Redis: %w", err)
	}
	return nil
}

func (b *RedisBackend) Contains(ctx context.Context, id string) (bool, error) {
	exists, err := b.client.Exists(ctx, b.recordKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check key existence in Redis: %w", err)
	}
	return exists > 0, nil
}

// Flush removes every key under the prefix.
func (b *RedisBackend) Flush(ctx context.Context) error {
	keys := []string{b.orderKey(), b.seqKey()}
	var cursor uint64

	for {
		result, next, err := b.client.Scan(ctx, cursor, b.prefix+"rec:*", scanCount).Result()
		if err != nil {
			return fmt.Errorf("failed to scan keys from Redis: %w", err)
		}
		keys = append(keys, result...)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	if err := b.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to flush Redis: %w", err)
	}
	return nil
}

func (b *RedisBackend) Len(ctx context.Context) (int, error) {
	n, err := b.client.ZCard(ctx, b.orderKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count records in Redis: %w", err)
	}
	return int(n), nil
}

// Keys returns ids in write order.
func (b *RedisBackend) Keys(ctx context.Context) ([]string, error) {
	ids, err := b.client.ZRange(ctx, b.orderKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get keys from Redis: %w", err)
	}
	return ids, nil
}

// Close closes the Redis connection
func (b *RedisBackend) Close() error {
	return b.client.Close()
}
