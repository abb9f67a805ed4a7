package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/smokyabdulrahman/prayer-times/internal/schedule"
)

// DefaultRedisKey is the hash that holds the pending triggers.
const DefaultRedisKey = "prayer-times:triggers"

// Redis keeps the pending triggers in a hash keyed by identifier.
type Redis struct {
	client *redis.Client
	key    string
}

// DialRedis creates a client for addr and checks it with PING.
func DialRedis(ctx context.Context, addr, password, key string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", addr, err)
	}
	return NewRedis(client, key), nil
}

// NewRedis wraps an existing client. An empty key uses DefaultRedisKey.
func NewRedis(client *redis.Client, key string) *Redis {
	if key == "" {
		key = DefaultRedisKey
	}
	return &Redis{client: client, key: key}
}

func (r *Redis) RemoveAll(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("failed to clear %s: %w", r.key, err)
	}
	return nil
}

func (r *Redis) Add(ctx context.Context, t schedule.Trigger) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode trigger %s: %w", t.Identifier, err)
	}
	if err := r.client.HSet(ctx, r.key, t.Identifier, payload).Err(); err != nil {
		return fmt.Errorf("failed to store trigger %s: %w", t.Identifier, err)
	}
	return nil
}

// Triggers returns the stored triggers sorted by identifier.
func (r *Redis) Triggers(ctx context.Context) ([]schedule.Trigger, error) {
	raw, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.key, err)
	}
	out := make([]schedule.Trigger, 0, len(raw))
	for id, v := range raw {
		var t schedule.Trigger
		if err := json.Unmarshal([]byte(v), &t); err != nil {
			return nil, fmt.Errorf("failed to decode trigger %s: %w", id, err)
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identifier < out[j].Identifier })
	return out, nil
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.client.Close()
}
