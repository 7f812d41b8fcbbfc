package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"denuncias/internal/observability"

	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"
)

const (
	// SyncChannel receives the list of keys refreshed by every publish.
	SyncChannel = "cache:sync"

	// ViewTTL bounds how long a published view outlives the engine.
	ViewTTL = 10 * time.Minute

	keyPrefix = "views:"
)

type metricsHook struct{}

func (h metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrorRate.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (h metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrorRate.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// NewRedisClient builds a client from a plain host:port or a redis:// URL and
// checks it answers. Maintenance notifications are disabled for servers that
// do not implement the handshake.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url %q: %w", addr, err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}
	opts.MaintNotificationsConfig = &maintnotifications.Config{Mode: maintnotifications.ModeDisabled}

	client := redis.NewClient(opts)
	client.AddHook(metricsHook{})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// RedisPublisher mirrors snapshots into Redis as JSON and announces the
// refreshed keys on SyncChannel.
type RedisPublisher struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisPublisher returns a publisher writing through rdb. A nil client
// turns Publish into a no-op.
func NewRedisPublisher(rdb *redis.Client, ttl time.Duration) *RedisPublisher {
	if ttl <= 0 {
		ttl = ViewTTL
	}
	return &RedisPublisher{rdb: rdb, ttl: ttl}
}

// RedisKey is the Redis key a view is stored under.
func RedisKey(k Key) string {
	return keyPrefix + k.String()
}

// Publish writes every view in one pipeline, then notifies subscribers.
func (p *RedisPublisher) Publish(ctx context.Context, views Views) error {
	if p.rdb == nil {
		return nil
	}

	entries := views.Entries()
	keys := make([]string, 0, len(entries))
	pipe := p.rdb.Pipeline()
	for _, e := range entries {
		data, err := json.Marshal(e.Value)
		if err != nil {
			return fmt.Errorf("encode view %s: %w", e.Key, err)
		}
		key := RedisKey(e.Key)
		pipe.Set(ctx, key, data, p.ttl)
		keys = append(keys, key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write views: %w", err)
	}

	announcement, err := json.Marshal(keys)
	if err != nil {
		return fmt.Errorf("encode sync announcement: %w", err)
	}
	if err := p.rdb.Publish(ctx, SyncChannel, announcement).Err(); err != nil {
		return fmt.Errorf("publish sync: %w", err)
	}

	observability.CachePublishes.WithLabelValues("redis").Inc()
	observability.GlobalLogger.DebugContext(ctx, "views published", slog.Int("keys", len(keys)))
	return nil
}

// GetJSON reads a published view back into dest.
func (p *RedisPublisher) GetJSON(ctx context.Context, key Key, dest any) error {
	if p.rdb == nil {
		return redis.Nil
	}
	data, err := p.rdb.Get(ctx, RedisKey(key)).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}
