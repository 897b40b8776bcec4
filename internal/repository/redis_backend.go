package repository

import (
	"context"
	"errors"
	"sort"

	"github.com/redis/go-redis/v9"
)

type redisBackend struct {
	client *redis.Client
	prefix string
}

// NewRedisBackend keeps one hash per collection under prefix+collection,
// with the document id as the hash field.
func NewRedisBackend(client *redis.Client, prefix string) Backend {
	return &redisBackend{client: client, prefix: prefix}
}

func (r *redisBackend) key(collection string) string {
	return r.prefix + collection
}

func (r *redisBackend) List(ctx context.Context, collection string) ([][]byte, error) {
	docs, err := r.client.HGetAll(ctx, r.key(collection)).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	result := make([][]byte, 0, len(ids))
	for _, id := range ids {
		result = append(result, []byte(docs[id]))
	}
	return result, nil
}

func (r *redisBackend) Get(ctx context.Context, collection, id string) ([]byte, error) {
	body, err := r.client.HGet(ctx, r.key(collection), id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return body, nil
}

func (r *redisBackend) Put(ctx context.Context, collection, id string, body []byte) error {
	return r.client.HSet(ctx, r.key(collection), id, body).Err()
}

func (r *redisBackend) Ping(ctx context.Context) error {
	if r.client == nil {
		return errors.New("redis client not configured")
	}
	return r.client.Ping(ctx).Err()
}
