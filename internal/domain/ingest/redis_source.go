package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	redis "github.com/redis/go-redis/v9"

	"github.com/cirozov-cmyk/device-logs-tile/internal/domain/devicelog"
)

// RedisSource reads the tail of a Redis list that devices push JSON lines onto.
type RedisSource struct {
	client *redis.Client
	key    string
	count  int64
}

// NewRedisSource reads the last devicelog.IngestWindow elements of key.
func NewRedisSource(client *redis.Client, key string) *RedisSource {
	return &RedisSource{client: client, key: key, count: devicelog.IngestWindow}
}

// Name implements Source.
func (s *RedisSource) Name() string {
	return "redis"
}

// Fetch implements Source.
func (s *RedisSource) Fetch(ctx context.Context) ([]devicelog.Record, error) {
	items, err := s.client.LRange(ctx, s.key, -s.count, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", s.key, err)
	}
	return decodeLines(items), nil
}

// decodeLines parses each element as a JSON object, keeping non-JSON text as the message.
func decodeLines(items []string) []devicelog.Record {
	out := make([]devicelog.Record, 0, len(items))
	for _, item := range items {
		var rec map[string]any
		if err := json.Unmarshal([]byte(item), &rec); err != nil || rec == nil {
			out = append(out, devicelog.Record{"message": item})
			continue
		}
		out = append(out, devicelog.Record(rec))
	}
	return out
}
