package mysql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bellavista/internal/repository"

	"gorm.io/gorm"
)

// RecordRow is one persisted collection in the records table.
type RecordRow struct {
	Key       string    `gorm:"column:record_key;primaryKey;size:191"`
	Data      string    `gorm:"column:data;type:longtext;not null"`
	Version   int64     `gorm:"column:version;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (RecordRow) TableName() string { return "records" }

type recordStore struct {
	db *gorm.DB
}

func NewRecordStore(db *gorm.DB) repository.Store {
	return &recordStore{db: db}
}

var _ repository.Store = (*recordStore)(nil)

func (r *recordStore) Load(ctx context.Context, key string) (*repository.Record, error) {
	var row RecordRow
	if err := r.db.WithContext(ctx).Where("record_key = ?", key).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRecordNotFound
		}
		slog.Error("records load failed", "key", key, "error", err)
		return nil, fmt.Errorf("mysql: load %q: %w", key, err)
	}
	return &repository.Record{Key: row.Key, Data: []byte(row.Data), Version: row.Version}, nil
}

// Save inserts when expectedVersion is 0 and otherwise updates guarded by the
// version column, so a concurrent writer turns into zero affected rows.
func (r *recordStore) Save(ctx context.Context, key string, data []byte, expectedVersion int64) (int64, error) {
	db := r.db.WithContext(ctx)

	if expectedVersion == 0 {
		row := RecordRow{Key: key, Data: string(data), Version: 1}
		if err := db.Create(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return 0, repository.ErrVersionConflict
			}
			slog.Error("records insert failed", "key", key, "error", err)
			return 0, fmt.Errorf("mysql: insert %q: %w", key, err)
		}
		return 1, nil
	}

	next := expectedVersion + 1
	result := db.Model(&RecordRow{}).
		Where("record_key = ? AND version = ?", key, expectedVersion).
		Updates(map[string]any{"data": string(data), "version": next})
	if result.Error != nil {
		slog.Error("records update failed", "key", key, "error", result.Error)
		return 0, fmt.Errorf("mysql: update %q: %w", key, result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, repository.ErrVersionConflict
	}
	return next, nil
}

func (r *recordStore) Delete(ctx context.Context, key string) error {
	if err := r.db.WithContext(ctx).Where("record_key = ?", key).Delete(&RecordRow{}).Error; err != nil {
		return fmt.Errorf("mysql: delete %q: %w", key, err)
	}
	return nil
}
