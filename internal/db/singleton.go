package db

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Singleton holds exactly one record under a fixed id inside its own table.
type Singleton[T any] struct {
	database *gorm.DB
	name     string
	id       string
}

func newSingleton[T any](database *gorm.DB, name string, id string) *Singleton[T] {
	return &Singleton[T]{database: database, name: name, id: id}
}

func (singleton *Singleton[T]) ID() string {
	return singleton.id
}

func (singleton *Singleton[T]) Load(ctx context.Context) (T, bool, error) {
	var record T
	result := singleton.database.WithContext(ctx).
		Where("id = ?", singleton.id).
		Limit(1).
		Find(&record)
	if result.Error != nil {
		var zero T
		return zero, false, storageError(singleton.name, "load", result.Error)
	}
	if result.RowsAffected == 0 {
		var zero T
		return zero, false, nil
	}
	return record, true, nil
}

// Save upserts the record. Callers must set the record's id to ID().
func (singleton *Singleton[T]) Save(ctx context.Context, record *T) error {
	if err := singleton.database.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(record).Error; err != nil {
		return storageError(singleton.name, "save", err)
	}
	return nil
}

func (singleton *Singleton[T]) Reset(ctx context.Context) error {
	if err := singleton.database.WithContext(ctx).
		Where("id = ?", singleton.id).
		Delete(new(T)).Error; err != nil {
		return storageError(singleton.name, "reset", err)
	}
	return nil
}
