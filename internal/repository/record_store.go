package repository

import (
	"context"
	"errors"
)

var (
	ErrRecordNotFound  = errors.New("record not found")
	ErrVersionConflict = errors.New("record version conflict")
)

// Record is the durable serialized form of one named collection.
type Record struct {
	Key     string
	Data    []byte
	Version int64
}

// Store persists opaque blobs under string keys with a version stamp.
//
// Save is a compare-and-swap: it only writes when the stored version equals
// expectedVersion (0 means the key must not exist yet) and returns the new
// version. A mismatch yields ErrVersionConflict.
type Store interface {
	Load(ctx context.Context, key string) (*Record, error)
	Save(ctx context.Context, key string, data []byte, expectedVersion int64) (int64, error)
	Delete(ctx context.Context, key string) error
}

// Keys of the persisted collections.
const (
	KeyUsers           = "users"
	KeyOrders          = "orders"
	KeyMenuItems       = "menuItems"
	KeyOrderSequence   = "orderSequence"
	KeySessions        = "sessions"
	KeyContactMessages = "contactMessages"
	KeyCustomMenus     = "customMenus"
)
