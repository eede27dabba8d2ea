package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Key layout in Redis. The index set makes ListFamilies a single SMEMBERS
// instead of a SCAN over the keyspace.
const (
	redisFamilyPrefix = "lanefold:family:"
	redisLayoutPrefix = "lanefold:layout:"
	redisFamilyIndex  = "lanefold:families"
)

// RedisConfig configures a Redis-backed store.
type RedisConfig struct {
	Addr     string `toml:"addr" json:"addr"`
	Password string `toml:"password" json:"password"`
	DB       int    `toml:"db" json:"db"`
}

// RedisStore persists records as JSON values in Redis. Suitable for
// multi-instance deployments where several runners share one store.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{client: client}, nil
}

// PutFamily registers or replaces a family record.
func (s *RedisStore) PutFamily(ctx context.Context, f FamilyRecord) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, redisFamilyPrefix+f.Hash, data, 0)
	pipe.SAdd(ctx, redisFamilyIndex, f.Hash)
	_, err = pipe.Exec(ctx)
	return err
}

// GetFamily returns the family with the given hash, or ErrNotFound.
func (s *RedisStore) GetFamily(ctx context.Context, hash string) (FamilyRecord, error) {
	var f FamilyRecord
	err := s.get(ctx, redisFamilyPrefix+hash, &f)
	return f, err
}

// ListFamilies returns all registered families.
func (s *RedisStore) ListFamilies(ctx context.Context) ([]FamilyRecord, error) {
	hashes, err := s.client.SMembers(ctx, redisFamilyIndex).Result()
	if err != nil {
		return nil, err
	}
	out := make([]FamilyRecord, 0, len(hashes))
	for _, h := range hashes {
		f, err := s.GetFamily(ctx, h)
		if errors.Is(err, ErrNotFound) {
			continue // index entry without record, self-heals on next put
		}
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// DeleteFamily removes a family and its layout.
func (s *RedisStore) DeleteFamily(ctx context.Context, hash string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, redisFamilyPrefix+hash, redisLayoutPrefix+hash)
	pipe.SRem(ctx, redisFamilyIndex, hash)
	_, err := pipe.Exec(ctx)
	return err
}

// PutLayout stores or replaces the layout for a family.
func (s *RedisStore) PutLayout(ctx context.Context, l LayoutRecord) error {
	data, err := json.Marshal(l)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisLayoutPrefix+l.FamilyHash, data, 0).Err()
}

// CompleteLayout persists an optimization result, keeping the stale flag
// and epoch of any mark that advanced the stored record past l. The write
// runs under an optimistic WATCH transaction so a concurrent MarkStale
// between read and write restarts the attempt instead of being erased.
func (s *RedisStore) CompleteLayout(ctx context.Context, l LayoutRecord) error {
	key := redisLayoutPrefix + l.FamilyHash
	txf := func(tx *redis.Tx) error {
		rec := l
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil {
			var cur LayoutRecord
			if err := json.Unmarshal(data, &cur); err != nil {
				return err
			}
			if cur.StaleEpoch > rec.StaleEpoch {
				rec.Stale = true
				rec.StaleEpoch = cur.StaleEpoch
			}
		}
		out, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			return nil
		})
		return err
	}
	for attempt := 0; attempt < 8; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("complete layout %s: too many concurrent writes", l.FamilyHash)
}

// GetLayout returns the layout for the given family hash, or ErrNotFound.
func (s *RedisStore) GetLayout(ctx context.Context, hash string) (LayoutRecord, error) {
	var l LayoutRecord
	err := s.get(ctx, redisLayoutPrefix+hash, &l)
	return l, err
}

// MarkStale flags the family's layout as stale, if one exists.
func (s *RedisStore) MarkStale(ctx context.Context, hash string) error {
	l, err := s.GetLayout(ctx, hash)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	l.Stale = true
	l.StaleEpoch++
	return s.PutLayout(ctx, l)
}

// Ping verifies the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the Redis connection pool.
func (s *RedisStore) Close() error { return s.client.Close() }

func (s *RedisStore) get(ctx context.Context, key string, v any) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// Ensure RedisStore implements Store.
var _ Store = (*RedisStore)(nil)
