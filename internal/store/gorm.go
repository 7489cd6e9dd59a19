package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Record struct {
	Namespace string    `gorm:"primaryKey;column:namespace;size:64"`
	Key       string    `gorm:"primaryKey;column:record_key;size:64"`
	Value     string    `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Record) TableName() string {
	return "records"
}

// GormBackend keeps every key of one namespace (a browser profile) as a row
// of the records table.
type GormBackend struct {
	DB        *gorm.DB
	Namespace string
}

func NewGormBackend(ctx context.Context, db *gorm.DB, namespace string) (*GormBackend, error) {
	if err := db.WithContext(ctx).AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrate records: %w", err)
	}
	return &GormBackend{DB: db, Namespace: namespace}, nil
}

func (g *GormBackend) Get(ctx context.Context, key string) (string, bool, error) {
	var rec Record
	err := g.DB.WithContext(ctx).
		Where("namespace = ? AND record_key = ?", g.Namespace, key).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return rec.Value, true, nil
}

func (g *GormBackend) Set(ctx context.Context, key, value string) error {
	rec := Record{Namespace: g.Namespace, Key: key, Value: value}
	return g.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}, {Name: "record_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
}

func (g *GormBackend) Delete(ctx context.Context, key string) error {
	return g.DB.WithContext(ctx).
		Where("namespace = ? AND record_key = ?", g.Namespace, key).
		Delete(&Record{}).Error
}
