package mysql

import (
	"context"
	"path/filepath"
	"testing"

	"bellavista/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) repository.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "records.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&RecordRow{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return NewRecordStore(db)
}

func TestRecordStore_CompareAndSwap(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	steps := []struct {
		name            string
		data            string
		expectedVersion int64
		wantVersion     int64
		wantErr         error
		wantData        string
	}{
		{name: "insert at version 0", data: "a", expectedVersion: 0, wantVersion: 1, wantData: "a"},
		{name: "second insert conflicts", data: "b", expectedVersion: 0, wantErr: repository.ErrVersionConflict, wantData: "a"},
		{name: "guarded update", data: "c", expectedVersion: 1, wantVersion: 2, wantData: "c"},
		{name: "stale version conflicts", data: "d", expectedVersion: 1, wantErr: repository.ErrVersionConflict, wantData: "c"},
		{name: "version ahead conflicts", data: "e", expectedVersion: 7, wantErr: repository.ErrVersionConflict, wantData: "c"},
		{name: "next update", data: `[{"id":1}]`, expectedVersion: 2, wantVersion: 3, wantData: `[{"id":1}]`},
	}

	for _, tt := range steps {
		t.Run(tt.name, func(t *testing.T) {
			v, err := s.Save(ctx, "k", []byte(tt.data), tt.expectedVersion)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantVersion, v)
			}

			rec, err := s.Load(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, tt.wantData, string(rec.Data))
			assert.Equal(t, "k", rec.Key)
		})
	}
}

func TestRecordStore_LoadAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Load(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrRecordNotFound)

	_, err = s.Save(ctx, "k", []byte("a"), 0)
	require.NoError(t, err)
	_, err = s.Save(ctx, "other", []byte("b"), 0)
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Load(ctx, "k")
	assert.ErrorIs(t, err, repository.ErrRecordNotFound)

	// deleting a missing key is not an error
	require.NoError(t, s.Delete(ctx, "k"))

	rec, err := s.Load(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.Version)

	// a deleted key can be inserted again
	v, err := s.Save(ctx, "k", []byte("again"), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

type menuEntry struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestRecordStore_CollectionsShareKey(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first := repository.NewCollection[menuEntry](s, repository.KeyMenuItems)
	second := repository.NewCollection[menuEntry](s, repository.KeyMenuItems)
	require.NoError(t, first.Load(ctx, func() []menuEntry { return []menuEntry{{ID: 1, Name: "Bruschetta"}} }))
	require.NoError(t, second.Load(ctx, func() []menuEntry { return []menuEntry{{ID: 9, Name: "never stored"}} }))
	assert.Equal(t, first.Snapshot(), second.Snapshot())

	require.NoError(t, first.Mutate(ctx, func(items []menuEntry) ([]menuEntry, error) {
		return append(items, menuEntry{ID: 2, Name: "Calamari"}), nil
	}))
	require.NoError(t, second.Mutate(ctx, func(items []menuEntry) ([]menuEntry, error) {
		return append(items, menuEntry{ID: 3, Name: "Arancini"}), nil
	}))

	require.NoError(t, first.Reload(ctx))
	assert.Equal(t, []menuEntry{{ID: 1, Name: "Bruschetta"}, {ID: 2, Name: "Calamari"}, {ID: 3, Name: "Arancini"}}, first.Snapshot())
	assert.Equal(t, int64(3), first.Version())
}
