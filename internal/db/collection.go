package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	IndexByDate     = "by-date"
	IndexByProfile  = "by-profile"
	IndexBySchedule = "by-schedule"
)

var ErrUnknownIndex = errors.New("unknown index")

type collectionSpec struct {
	name          string
	order         string
	dateColumn    string
	profileScoped bool
	indexes       map[string]string
}

// Collection is a named record namespace keyed by string id. Records are
// written whole; Put replaces every column of an existing row.
type Collection[T any] struct {
	database *gorm.DB
	spec     collectionSpec
}

func newCollection[T any](database *gorm.DB, spec collectionSpec) *Collection[T] {
	if spec.order == "" {
		spec.order = "created_at ASC, id ASC"
	}
	if spec.indexes == nil {
		spec.indexes = map[string]string{}
	}
	if spec.profileScoped {
		spec.indexes[IndexByProfile] = "profile_id"
	}
	if spec.dateColumn != "" {
		spec.indexes[IndexByDate] = spec.dateColumn
	}
	return &Collection[T]{database: database, spec: spec}
}

func (collection *Collection[T]) Name() string {
	return collection.spec.name
}

func (collection *Collection[T]) ProfileScoped() bool {
	return collection.spec.profileScoped
}

func (collection *Collection[T]) Get(ctx context.Context, id string) (T, bool, error) {
	var record T
	result := collection.database.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&record)
	if result.Error != nil {
		var zero T
		return zero, false, storageError(collection.spec.name, "get", result.Error)
	}
	if result.RowsAffected == 0 {
		var zero T
		return zero, false, nil
	}
	return record, true, nil
}

func (collection *Collection[T]) GetAll(ctx context.Context) ([]T, error) {
	records := make([]T, 0)
	if err := collection.database.WithContext(ctx).
		Order(collection.spec.order).
		Find(&records).Error; err != nil {
		return nil, storageError(collection.spec.name, "get all", err)
	}
	return records, nil
}

func (collection *Collection[T]) GetAllByIndex(ctx context.Context, index string, key any) ([]T, error) {
	column, ok := collection.spec.indexes[index]
	if !ok {
		return nil, fmt.Errorf("%w %q on %s", ErrUnknownIndex, index, collection.spec.name)
	}

	records := make([]T, 0)
	if err := collection.database.WithContext(ctx).
		Where(clause.Eq{Column: clause.Column{Name: column}, Value: key}).
		Order(collection.spec.order).
		Find(&records).Error; err != nil {
		return nil, storageError(collection.spec.name, "get by index "+index, err)
	}
	return records, nil
}

func (collection *Collection[T]) ByProfile(ctx context.Context, profileID string) ([]T, error) {
	return collection.GetAllByIndex(ctx, IndexByProfile, profileID)
}

// ByDateRange lists a profile's records whose date column falls in
// [from, to). Nil bounds are open.
func (collection *Collection[T]) ByDateRange(ctx context.Context, profileID string, from *time.Time, to *time.Time) ([]T, error) {
	if collection.spec.dateColumn == "" {
		return nil, fmt.Errorf("%w %q on %s", ErrUnknownIndex, IndexByDate, collection.spec.name)
	}

	query := collection.database.WithContext(ctx).Model(new(T))
	if collection.spec.profileScoped {
		query = query.Where("profile_id = ?", profileID)
	}
	if from != nil {
		query = query.Where(clause.Gte{Column: clause.Column{Name: collection.spec.dateColumn}, Value: *from})
	}
	if to != nil {
		query = query.Where(clause.Lt{Column: clause.Column{Name: collection.spec.dateColumn}, Value: *to})
	}

	records := make([]T, 0)
	if err := query.Order(collection.spec.dateColumn + " ASC, id ASC").Find(&records).Error; err != nil {
		return nil, storageError(collection.spec.name, "get by date range", err)
	}
	return records, nil
}

func (collection *Collection[T]) Put(ctx context.Context, record *T) error {
	if err := collection.database.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(record).Error; err != nil {
		return storageError(collection.spec.name, "put", err)
	}
	return nil
}

func (collection *Collection[T]) Delete(ctx context.Context, id string) error {
	if err := collection.database.WithContext(ctx).
		Where("id = ?", id).
		Delete(new(T)).Error; err != nil {
		return storageError(collection.spec.name, "delete", err)
	}
	return nil
}

func (collection *Collection[T]) Clear(ctx context.Context) error {
	if err := collection.database.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(new(T)).Error; err != nil {
		return storageError(collection.spec.name, "clear", err)
	}
	return nil
}

func (collection *Collection[T]) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := collection.database.WithContext(ctx).Model(new(T)).Count(&count).Error; err != nil {
		return 0, storageError(collection.spec.name, "count", err)
	}
	return count, nil
}

// deleteByProfile runs inside the caller's transaction.
func (collection *Collection[T]) deleteByProfile(tx *gorm.DB, profileID string) error {
	if !collection.spec.profileScoped {
		return nil
	}
	if err := tx.Where("profile_id = ?", profileID).Delete(new(T)).Error; err != nil {
		return storageError(collection.spec.name, "delete by profile", err)
	}
	return nil
}
