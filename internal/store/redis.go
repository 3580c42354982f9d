package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"auction-engine/internal/auctionerrors"
)

// maxTxRetries bounds optimistic retries when a watched key changes
const maxTxRetries = 5

// RedisOptions configures the Redis backend
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// RedisStore keeps each document under its own key and an id set per
// collection. Transactional updates use WATCH/MULTI and retry on conflict.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to Redis and verifies the connection
func NewRedis(opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisFromClient(client, opts.Prefix), nil
}

// NewRedisFromClient wraps an existing client
func NewRedisFromClient(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) docKey(collection, id string) string {
	return fmt.Sprintf("%sdoc:%s:%s", s.prefix, collection, id)
}

func (s *RedisStore) indexKey(collection string) string {
	return fmt.Sprintf("%sidx:%s", s.prefix, collection)
}

// GetAll returns every record of a collection
func (s *RedisStore) GetAll(ctx context.Context, collection string) (map[string]json.RawMessage, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey(collection)).Result()
	if err != nil {
		return nil, fmt.Errorf("get all %s: %w", collection, err)
	}

	out := make(map[string]json.RawMessage, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.docKey(collection, id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get all %s: %w", collection, err)
	}

	for i, value := range values {
		str, ok := value.(string)
		if !ok {
			continue
		}
		out[ids[i]] = json.RawMessage(str)
	}
	return out, nil
}

// Get returns a single record or nil
func (s *RedisStore) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	return getRedisDoc(ctx, s.client, s.docKey(collection, id))
}

// TransactionalUpdate runs fn under WATCH and retries when the record changes
// between the read and the EXEC.
func (s *RedisStore) TransactionalUpdate(ctx context.Context, collection, id string, fn UpdateFunc) (bool, json.RawMessage, error) {
	key := s.docKey(collection, id)

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		var committed bool
		var result json.RawMessage

		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			current, err := getRedisDoc(ctx, tx, key)
			if err != nil {
				return err
			}

			next, commit := fn(clone(current))
			if !commit {
				result = current
				return nil
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				if next == nil {
					pipe.Del(ctx, key)
					pipe.SRem(ctx, s.indexKey(collection), id)
					return nil
				}
				pipe.Set(ctx, key, []byte(next), 0)
				pipe.SAdd(ctx, s.indexKey(collection), id)
				return nil
			})
			if err != nil {
				return err
			}
			committed, result = true, clone(next)
			return nil
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return false, nil, fmt.Errorf("transactional update %s/%s: %w", collection, id, err)
		}
		return committed, result, nil
	}

	return false, nil, fmt.Errorf("transactional update %s/%s: %w", collection, id, auctionerrors.ErrTransactionAborted)
}

// Set replaces a record
func (s *RedisStore) Set(ctx context.Context, collection, id string, record any) error {
	doc, err := encode(record)
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.docKey(collection, id), []byte(doc), 0)
		pipe.SAdd(ctx, s.indexKey(collection), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

// MultiUpdate watches every touched record and writes them in one MULTI/EXEC
func (s *RedisStore) MultiUpdate(ctx context.Context, updates map[string]any) error {
	grouped, order, err := groupUpdates(updates)
	if err != nil {
		return fmt.Errorf("multi update: %w", err)
	}

	keys := make([]string, len(order))
	for i, k := range order {
		keys[i] = s.docKey(k.collection, k.id)
	}

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			staged := make([]json.RawMessage, len(order))
			for i, k := range order {
				current, err := getRedisDoc(ctx, tx, keys[i])
				if err != nil {
					return err
				}
				doc, err := applyAll(current, grouped[k])
				if err != nil {
					return fmt.Errorf("multi update %s/%s: %w", k.collection, k.id, err)
				}
				staged[i] = doc
			}

			_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				for i, k := range order {
					pipe.Set(ctx, keys[i], []byte(staged[i]), 0)
					pipe.SAdd(ctx, s.indexKey(k.collection), k.id)
				}
				return nil
			})
			return err
		}, keys...)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("multi update: %w", err)
		}
		return nil
	}

	return fmt.Errorf("multi update: %w", auctionerrors.ErrTransactionAborted)
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getRedisDoc(ctx context.Context, c stringGetter, key string) (json.RawMessage, error) {
	data, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return json.RawMessage(data), nil
}
