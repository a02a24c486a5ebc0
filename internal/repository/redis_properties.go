package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/go-redis/redis/v8"

	"github.com/absarsolarch/ab-3/internal/domain"
)

const (
	keyPrefix  = "property:"
	counterKey = "property_id_counter"
)

// RedisPropertiesRepository 物业Repository实现（ephemeral 后端）
// Records are JSON blobs under property:<id>; ids come from INCR on a shared
// counter. Redis has no native read-modify-write for the stored blob, so
// UpdateStatus is serialized with a mutex scoped to this handle.
type RedisPropertiesRepository struct {
	client *redis.Client
	mu     sync.Mutex
}

func NewRedisPropertiesRepository(client *redis.Client) *RedisPropertiesRepository {
	return &RedisPropertiesRepository{client: client}
}

var _ PropertiesRepository = (*RedisPropertiesRepository)(nil)

func (r *RedisPropertiesRepository) Create(ctx context.Context, p *domain.Property) (int64, error) {
	// INCR is atomic: concurrent creates never collide on id.
	id, err := r.client.Incr(ctx, counterKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to assign property id: %w", err)
	}
	p.ID = id
	if p.CreatedAt.IsZero() {
		p.CreatedAt = domain.Now()
	}
	data, err := json.Marshal(p)
	if err != nil {
		return 0, fmt.Errorf("failed to encode property: %w", err)
	}
	if err := r.client.Set(ctx, propertyKey(id), data, 0).Err(); err != nil {
		return 0, fmt.Errorf("failed to store property: %w", err)
	}
	return id, nil
}

func (r *RedisPropertiesRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.get(ctx, id)
	if err != nil {
		return err
	}
	p.Status = status
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode property: %w", err)
	}
	if err := r.client.Set(ctx, propertyKey(id), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store property: %w", err)
	}
	return nil
}

func (r *RedisPropertiesRepository) Delete(ctx context.Context, id int64) error {
	if err := r.client.Del(ctx, propertyKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}
	return nil
}

func (r *RedisPropertiesRepository) Get(ctx context.Context, id int64) (*domain.Property, error) {
	return r.get(ctx, id)
}

func (r *RedisPropertiesRepository) get(ctx context.Context, id int64) (*domain.Property, error) {
	data, err := r.client.Get(ctx, propertyKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	var p domain.Property
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("failed to decode property %d: %w", id, err)
	}
	return &p, nil
}

func (r *RedisPropertiesRepository) List(ctx context.Context) ([]domain.Property, error) {
	keys, err := r.scanKeys(ctx)
	if err != nil {
		return nil, err
	}
	properties := make([]domain.Property, 0, len(keys))
	for _, key := range keys {
		data, err := r.client.Get(ctx, key).Result()
		if err != nil {
			if err == redis.Nil {
				// Deleted between scan and get.
				continue
			}
			return nil, fmt.Errorf("failed to get property %s: %w", key, err)
		}
		var p domain.Property
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return nil, fmt.Errorf("failed to decode property %s: %w", key, err)
		}
		properties = append(properties, p)
	}
	sort.SliceStable(properties, func(i, j int) bool {
		return properties[i].CreatedAt.After(properties[j].CreatedAt.Time)
	})
	return properties, nil
}

func (r *RedisPropertiesRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys, err := r.scanKeys(ctx)
	if err != nil {
		return err
	}
	// Single pipeline so the deletes and the counter reset land together.
	pipe := r.client.TxPipeline()
	if len(keys) > 0 {
		pipe.Del(ctx, keys...)
	}
	pipe.Set(ctx, counterKey, 0, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear properties: %w", err)
	}
	return nil
}

// Empty reports whether the store holds no property records.
func (r *RedisPropertiesRepository) Empty(ctx context.Context) (bool, error) {
	keys, err := r.scanKeys(ctx)
	if err != nil {
		return false, err
	}
	return len(keys) == 0, nil
}

func (r *RedisPropertiesRepository) scanKeys(ctx context.Context) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		k, next, err := r.client.Scan(ctx, cursor, keyPrefix+"*", 200).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan properties: %w", err)
		}
		keys = append(keys, k...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return keys, nil
}

func propertyKey(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10)
}
