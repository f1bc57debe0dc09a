package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// kvEntry is the single table backing GormStore. One row per storage key.
type kvEntry struct {
	Key       string `gorm:"primaryKey;column:key;size:191"`
	Value     string `gorm:"column:value;type:text"`
	UpdatedAt time.Time
}

func (kvEntry) TableName() string { return "kv_entries" }

// GormStore is the production KVStore: a SQLite file on the device, accessed
// through GORM. It is the moral equivalent of the mobile framework's
// AsyncStorage, with the same flat string namespace.
type GormStore struct {
	db *gorm.DB
}

// OpenGorm opens (creating if needed) the SQLite database at path and
// migrates the kv_entries table.
func OpenGorm(path string) (*GormStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open sqlite store at %s", path)
	}
	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		return nil, errors.Wrap(err, "migrate kv_entries")
	}
	return &GormStore{db: db}, nil
}

// NewGormStore wraps an already-open GORM handle. Used by tests and DI.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		return nil, errors.Wrap(err, "migrate kv_entries")
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Get(ctx context.Context, key string) (string, error) {
	var entry kvEntry
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", errors.Wrapf(err, "get %q", key)
	}
	return entry.Value, nil
}

func (s *GormStore) Set(ctx context.Context, key, value string) error {
	entry := kvEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
	return errors.Wrapf(err, "set %q", key)
}

func (s *GormStore) Delete(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).Where("key = ?", key).Delete(&kvEntry{}).Error
	return errors.Wrapf(err, "delete %q", key)
}

func (s *GormStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	q := s.db.WithContext(ctx).Model(&kvEntry{})
	if prefix != "" {
		q = q.Where("key LIKE ?", prefix+"%")
	}
	if err := q.Order("key").Pluck("key", &keys).Error; err != nil {
		return nil, errors.Wrapf(err, "list keys with prefix %q", prefix)
	}
	return keys, nil
}

// Close closes the underlying database handle.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
