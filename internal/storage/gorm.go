package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"trizen-careers/internal/database"
	"trizen-careers/internal/model"
)

// GormStore persists records in the client_records table through GORM.
type GormStore struct {
	DB *database.DBinstanceStruct
}

// NewGormStore creates a new instance of GormStore with the provided database connection.
func NewGormStore(db *database.DBinstanceStruct) *GormStore {
	return &GormStore{
		DB: db,
	}
}

func (s *GormStore) Get(ctx context.Context, key string) (string, error) {
	var record model.ClientRecord
	err := s.DB.WithContext(ctx).Where("key = ?", key).First(&record).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return "", ErrNotFound
	case err != nil:
		return "", err
	}
	return record.Value, nil
}

func (s *GormStore) Set(ctx context.Context, key, value string) error {
	record := model.ClientRecord{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&record).Error
}

func (s *GormStore) Delete(ctx context.Context, key string) error {
	return s.DB.WithContext(ctx).Where("key = ?", key).Delete(&model.ClientRecord{}).Error
}

// Purge drops every client record.
func (s *GormStore) Purge(ctx context.Context) error {
	return s.DB.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.ClientRecord{}).Error
}

// Health reports database health statistics.
func (s *GormStore) Health() map[string]string {
	return s.DB.Health()
}
