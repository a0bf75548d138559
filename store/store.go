package store

import (
	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// KVStore is a flat byte store. Read returns nil, nil for a missing key.
type KVStore interface {
	Read(key string) ([]byte, error)
	Write(key string, data []byte) error
	Delete(key string) error
}

// Open opens the sqlite database at dsn and migrates the key/value table.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open sqlite %s", dsn)
	}
	if err := db.AutoMigrate(&KeyValue{}); err != nil {
		return nil, errors.Wrap(err, "migrate key values")
	}
	return db, nil
}
