package store

import (
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// gormRecord is the single physical table every logical table in Store maps
// onto: (TableName, ID) is the primary key, Payload is the caller's opaque
// JSON blob. A generic row shape avoids a GORM model (and a migration) per
// native/booking type, the same trade-off native/storage.Database's flat
// Put/Get makes, generalized here to add the range scan the engine's event
// replay cursor needs.
type gormRecord struct {
	TableName string `gorm:"primaryKey;column:table_name"`
	ID        uint64 `gorm:"primaryKey;column:id"`
	Payload   []byte `gorm:"column:payload"`
}

func (gormRecord) TableName() string { return "booking_records" }

// GormStore is the persisted Store implementation: gorm.io/gorm over
// glebarez/sqlite, a pure-Go SQLite driver chosen so a single-writer
// embedded engine needs no CGO toolchain to deploy (SPEC_FULL.md §2).
type GormStore struct {
	db *gorm.DB
}

// OpenGormStore opens (creating if absent) a SQLite database file at path
// and ensures the backing table exists.
func OpenGormStore(path string) (*GormStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	if err := db.AutoMigrate(&gormRecord{}); err != nil {
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Put implements Store.
func (g *GormStore) Put(table string, id uint64, payload []byte) error {
	row := gormRecord{TableName: table, ID: id, Payload: payload}
	result := g.db.Save(&row)
	return result.Error
}

// Get implements Store.
func (g *GormStore) Get(table string, id uint64) ([]byte, bool, error) {
	var row gormRecord
	result := g.db.Where("table_name = ? AND id = ?", table, id).First(&row)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if result.Error != nil {
		return nil, false, result.Error
	}
	return row.Payload, true, nil
}

// List implements Store.
func (g *GormStore) List(table string, fromID uint64) ([]Record, error) {
	var rows []gormRecord
	result := g.db.Where("table_name = ? AND id >= ?", table, fromID).Order("id asc").Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}
	records := make([]Record, len(rows))
	for i, r := range rows {
		records[i] = Record{ID: r.ID, Payload: r.Payload}
	}
	return records, nil
}

// Close implements Store.
func (g *GormStore) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
