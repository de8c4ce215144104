package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"bellavista/internal/repository"

	"github.com/go-redis/redis/v8"
)

const (
	fieldData    = "data"
	fieldVersion = "version"
)

// recordStore keeps every collection in a hash {data, version}; Save is a
// WATCH/MULTI transaction on that hash.
type recordStore struct {
	client *redis.Client
	prefix string
}

func NewRecordStore(client *redis.Client, prefix string) repository.Store {
	return &recordStore{client: client, prefix: prefix}
}

var _ repository.Store = (*recordStore)(nil)

func (s *recordStore) redisKey(key string) string {
	return s.prefix + key
}

func (s *recordStore) Load(ctx context.Context, key string) (*repository.Record, error) {
	fields, err := s.client.HGetAll(ctx, s.redisKey(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: load %q: %w", key, err)
	}
	data, ok := fields[fieldData]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	version, err := strconv.ParseInt(fields[fieldVersion], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("redis: load %q: bad version %q: %w", key, fields[fieldVersion], err)
	}
	return &repository.Record{Key: key, Data: []byte(data), Version: version}, nil
}

func (s *recordStore) Save(ctx context.Context, key string, data []byte, expectedVersion int64) (int64, error) {
	rk := s.redisKey(key)
	var newVersion int64

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, rk, fieldVersion).Int64()
		if errors.Is(err, redis.Nil) {
			current = 0
		} else if err != nil {
			return err
		}
		if current != expectedVersion {
			return repository.ErrVersionConflict
		}

		newVersion = current + 1
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, rk, fieldData, data, fieldVersion, newVersion)
			return nil
		})
		return err
	}, rk)

	switch {
	case errors.Is(err, repository.ErrVersionConflict), errors.Is(err, redis.TxFailedErr):
		return 0, repository.ErrVersionConflict
	case err != nil:
		return 0, fmt.Errorf("redis: save %q: %w", key, err)
	}
	return newVersion, nil
}

func (s *recordStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("redis: delete %q: %w", key, err)
	}
	return nil
}
