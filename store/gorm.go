package store

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type KeyValue struct {
	Key       string `gorm:"primaryKey"`
	Value     []byte
	UpdatedAt time.Time
}

func (KeyValue) TableName() string {
	return "ramp_key_values"
}

type GormKVStore struct {
	db *gorm.DB
}

func NewGormKVStore(db *gorm.DB) *GormKVStore {
	return &GormKVStore{db: db}
}

func (s *GormKVStore) Read(key string) ([]byte, error) {
	var kv KeyValue
	// Find does not log record-not-found
	result := s.db.Where("key = ?", key).Limit(1).Find(&kv)
	if result.Error != nil {
		return nil, errors.Wrapf(result.Error, "read key %s", key)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return kv.Value, nil
}

func (s *GormKVStore) Write(key string, data []byte) error {
	kv := KeyValue{Key: key, Value: data}
	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&kv)
	if result.Error != nil {
		return errors.Wrapf(result.Error, "write key %s", key)
	}
	return nil
}

func (s *GormKVStore) Delete(key string) error {
	if err := s.db.Where("key = ?", key).Delete(&KeyValue{}).Error; err != nil {
		return errors.Wrapf(err, "delete key %s", key)
	}
	return nil
}

// DeleteUpdatedBefore drops rows last written before cutoff and returns how
// many were removed.
func (s *GormKVStore) DeleteUpdatedBefore(prefix string, cutoff time.Time) (int64, error) {
	result := s.db.Where("key LIKE ? AND updated_at < ?", prefix+"%", cutoff).Delete(&KeyValue{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "prune key values")
	}
	return result.RowsAffected, nil
}
