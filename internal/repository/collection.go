package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

const maxSaveAttempts = 3

// Collection is the authoritative in-memory copy of one persisted JSON array.
// It is the only writer of its key: every mutation is written back in full
// before it becomes visible to readers.
type Collection[T any] struct {
	store Store
	key   string

	mu      sync.RWMutex
	items   []T
	version int64
	loaded  bool
}

func NewCollection[T any](store Store, key string) *Collection[T] {
	return &Collection[T]{store: store, key: key}
}

// Load reads the collection. On a miss the seed is persisted and becomes the
// collection; a value that does not decode is treated as an empty collection.
func (c *Collection[T]) Load(ctx context.Context, seed func() []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reload(ctx, seed)
}

func (c *Collection[T]) reload(ctx context.Context, seed func() []T) error {
	rec, err := c.store.Load(ctx, c.key)
	if errors.Is(err, ErrRecordNotFound) {
		rec, err = c.seed(ctx, seed)
	}
	if err != nil {
		return fmt.Errorf("collection %s: load: %w", c.key, err)
	}

	var items []T
	if err := json.Unmarshal(rec.Data, &items); err != nil {
		slog.Warn("corrupt collection treated as empty", "key", c.key, "error", err)
		items = nil
	}
	if items == nil {
		items = []T{}
	}
	c.items, c.version, c.loaded = items, rec.Version, true
	return nil
}

// seed persists the seed items at version 0. When another writer got there
// first its value wins and is read back instead.
func (c *Collection[T]) seed(ctx context.Context, seed func() []T) (*Record, error) {
	var items []T
	if seed != nil {
		items = seed()
	}
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode seed: %w", err)
	}

	version, err := c.store.Save(ctx, c.key, data, 0)
	if errors.Is(err, ErrVersionConflict) {
		slog.Info("collection seeded by another writer", "key", c.key)
		return c.store.Load(ctx, c.key)
	}
	if err != nil {
		return nil, fmt.Errorf("persist seed: %w", err)
	}
	slog.Info("collection seeded", "key", c.key, "items", len(items))
	return &Record{Key: c.key, Data: data, Version: version}, nil
}

// Reload discards the in-memory copy and reads the stored value again.
func (c *Collection[T]) Reload(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reload(ctx, nil)
}

// Snapshot returns a deep copy of the current items.
func (c *Collection[T]) Snapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items, err := c.cloneItems()
	if err != nil {
		slog.Error("collection copy failed, returning shallow copy", "key", c.key, "error", err)
		return append([]T{}, c.items...)
	}
	return items
}

func (c *Collection[T]) Version() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Mutate runs fn on a private copy of the items and persists the result.
// When the stored version moved underneath us the collection is reloaded and
// fn is applied again, so fn must be safe to re-run. An error from fn aborts
// without touching the store.
func (c *Collection[T]) Mutate(ctx context.Context, fn func(items []T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		if err := c.reload(ctx, nil); err != nil {
			return err
		}
	}

	for attempt := 1; attempt <= maxSaveAttempts; attempt++ {
		items, err := c.cloneItems()
		if err != nil {
			return fmt.Errorf("collection %s: copy: %w", c.key, err)
		}
		next, err := fn(items)
		if err != nil {
			return err
		}
		if next == nil {
			next = []T{}
		}
		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("collection %s: encode: %w", c.key, err)
		}

		version, err := c.store.Save(ctx, c.key, data, c.version)
		if errors.Is(err, ErrVersionConflict) {
			slog.Warn("collection changed concurrently, retrying", "key", c.key, "attempt", attempt)
			if err := c.reload(ctx, nil); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("collection %s: save: %w", c.key, err)
		}
		c.items, c.version = next, version
		return nil
	}
	return fmt.Errorf("collection %s: %w after %d attempts", c.key, ErrVersionConflict, maxSaveAttempts)
}

// Cloner is implemented by item types that deep-copy themselves. Collections
// of such items skip the JSON round trip on every read.
type Cloner[T any] interface {
	Clone() T
}

func (c *Collection[T]) cloneItems() ([]T, error) {
	var zero T
	if _, ok := any(zero).(Cloner[T]); ok {
		out := make([]T, len(c.items))
		for i, item := range c.items {
			out[i] = any(item).(Cloner[T]).Clone()
		}
		return out, nil
	}

	data, err := json.Marshal(c.items)
	if err != nil {
		return nil, err
	}
	out := []T{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
