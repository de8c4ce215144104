package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
)

// Counter is a persisted monotonic sequence. Values handed out by Next are
// never reused, even when the records that carried them are deleted.
type Counter struct {
	store Store
	key   string
	mu    sync.Mutex
}

func NewCounter(store Store, key string) *Counter {
	return &Counter{store: store, key: key}
}

// Init stores start as the current value unless the counter already exists.
func (c *Counter) Init(ctx context.Context, start int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.store.Save(ctx, c.key, []byte(strconv.FormatInt(start, 10)), 0)
	if err != nil && !errors.Is(err, ErrVersionConflict) {
		return fmt.Errorf("counter %s: init: %w", c.key, err)
	}
	return nil
}

func (c *Counter) Current(ctx context.Context) (int64, error) {
	value, _, err := c.read(ctx)
	return value, err
}

// Next increments the counter and returns the new value.
func (c *Counter) Next(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		value, version, err := c.read(ctx)
		if err != nil {
			return 0, err
		}
		next := value + 1
		_, err = c.store.Save(ctx, c.key, []byte(strconv.FormatInt(next, 10)), version)
		if errors.Is(err, ErrVersionConflict) {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("counter %s: save: %w", c.key, err)
		}
		return next, nil
	}
	return 0, fmt.Errorf("counter %s: %w", c.key, ErrVersionConflict)
}

func (c *Counter) read(ctx context.Context) (int64, int64, error) {
	rec, err := c.store.Load(ctx, c.key)
	if errors.Is(err, ErrRecordNotFound) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("counter %s: load: %w", c.key, err)
	}
	value, err := strconv.ParseInt(string(rec.Data), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("counter %s: corrupt value %q: %w", c.key, rec.Data, err)
	}
	return value, rec.Version, nil
}
