package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/terraincognita07/chitra/internal/models"
	"gorm.io/gorm"
)

type Store struct {
	database *gorm.DB

	Profiles          *Collection[models.Profile]
	Cycles            *Collection[models.CycleEntry]
	Weights           *Collection[models.WeightEntry]
	CheckIns          *Collection[models.DailyCheckIn]
	Vaccinations      *Collection[models.VaccinationEntry]
	MedicineSchedules *Collection[models.MedicineSchedule]
	MedicineLogs      *Collection[models.MedicineLog]
	FeedingSchedules  *Collection[models.FeedingSchedule]
	FeedingLogs       *Collection[models.FeedingLog]
	ScreenTime        *Collection[models.ScreenTimeEntry]

	Preferences *Singleton[models.Preferences]
	Security    *Singleton[models.SecuritySettings]
	CarePoints  *Singleton[models.CarePoints]
	Payment     *Singleton[models.Payment]
}

func NewStore(database *gorm.DB) *Store {
	return &Store{
		database: database,

		Profiles: newCollection[models.Profile](database, collectionSpec{name: "profiles"}),
		Cycles: newCollection[models.CycleEntry](database, collectionSpec{
			name: "cycles", dateColumn: "start_date", profileScoped: true,
		}),
		Weights: newCollection[models.WeightEntry](database, collectionSpec{
			name: "weights", dateColumn: "date", profileScoped: true,
		}),
		CheckIns: newCollection[models.DailyCheckIn](database, collectionSpec{
			name: "check_ins", dateColumn: "date", profileScoped: true,
		}),
		Vaccinations: newCollection[models.VaccinationEntry](database, collectionSpec{
			name: "vaccinations", dateColumn: "date_administered", profileScoped: true,
		}),
		MedicineSchedules: newCollection[models.MedicineSchedule](database, collectionSpec{
			name: "medicine_schedules", profileScoped: true,
		}),
		MedicineLogs: newCollection[models.MedicineLog](database, collectionSpec{
			name: "medicine_logs", dateColumn: "logged_at", profileScoped: true,
			indexes: map[string]string{IndexBySchedule: "schedule_id"},
		}),
		FeedingSchedules: newCollection[models.FeedingSchedule](database, collectionSpec{
			name: "feeding_schedules", profileScoped: true,
		}),
		FeedingLogs: newCollection[models.FeedingLog](database, collectionSpec{
			name: "feeding_logs", dateColumn: "fed_at", profileScoped: true,
			indexes: map[string]string{IndexBySchedule: "schedule_id"},
		}),
		ScreenTime: newCollection[models.ScreenTimeEntry](database, collectionSpec{
			name: "screen_time", dateColumn: "date", profileScoped: true,
		}),

		Preferences: newSingleton[models.Preferences](database, "preferences", models.PreferencesID),
		Security:    newSingleton[models.SecuritySettings](database, "security", models.SecuritySettingsID),
		CarePoints:  newSingleton[models.CarePoints](database, "care_points", models.CarePointsID),
		Payment:     newSingleton[models.Payment](database, "payment", models.PaymentID),
	}
}

// OpenStore opens the engine, upgrades the schema and backfills profile
// ownership on legacy records. A stalled open is abandoned when ctx ends.
func OpenStore(ctx context.Context, dbPath string) (*Store, error) {
	type openResult struct {
		database *gorm.DB
		err      error
	}

	opened := make(chan openResult, 1)
	go func() {
		database, err := OpenSQLite(dbPath)
		opened <- openResult{database: database, err: err}
	}()

	var database *gorm.DB
	select {
	case <-ctx.Done():
		go func() {
			if late := <-opened; late.database != nil {
				closeDatabase(late.database)
			}
		}()
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, ctx.Err())
	case result := <-opened:
		if result.err != nil {
			return nil, result.err
		}
		database = result.database
	}

	store := NewStore(database)
	report, err := store.BackfillProfileIDs(ctx, time.Now().UTC())
	if err != nil {
		// Rolled back as a unit; the next open retries it.
		log.Printf("db: profile backfill failed, will retry on next open: %v", err)
	} else if report.Changed() {
		log.Printf("db: profile backfill assigned %d legacy records to profile %s", report.Total(), report.ProfileID)
	}
	return store, nil
}

func (store *Store) Ping(ctx context.Context) error {
	return pingDatabase(ctx, store.database)
}

func (store *Store) SchemaVersion(ctx context.Context) (int, error) {
	return SchemaVersion(ctx, store.database)
}

func (store *Store) Close() error {
	sqlDB, err := store.database.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// DeleteProfileCascade removes a profile and every record it owns. Children
// go before parents: logs, then schedules, then time series, then the profile.
func (store *Store) DeleteProfileCascade(ctx context.Context, profileID string) error {
	return store.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []func(*gorm.DB, string) error{
			store.MedicineLogs.deleteByProfile,
			store.FeedingLogs.deleteByProfile,
			store.MedicineSchedules.deleteByProfile,
			store.FeedingSchedules.deleteByProfile,
			store.Vaccinations.deleteByProfile,
			store.ScreenTime.deleteByProfile,
			store.CheckIns.deleteByProfile,
			store.Weights.deleteByProfile,
			store.Cycles.deleteByProfile,
		}
		for _, step := range steps {
			if err := step(tx, profileID); err != nil {
				return err
			}
		}
		if err := tx.Where("id = ?", profileID).Delete(&models.Profile{}).Error; err != nil {
			return storageError("profiles", "delete", err)
		}
		return nil
	})
}

// ProfileOwnedCounts reports how many records each profile-scoped collection
// still holds for profileID.
func (store *Store) ProfileOwnedCounts(ctx context.Context, profileID string) (map[string]int64, error) {
	counts := make(map[string]int64, len(profileScopedTables))
	for _, table := range profileScopedTables {
		var count int64
		if err := store.database.WithContext(ctx).
			Table(table).
			Where("profile_id = ?", profileID).
			Count(&count).Error; err != nil {
			return nil, storageError(table, "count by profile", err)
		}
		counts[table] = count
	}
	return counts, nil
}

var profileScopedTables = []string{
	"cycles",
	"weights",
	"check_ins",
	"vaccinations",
	"medicine_schedules",
	"medicine_logs",
	"feeding_schedules",
	"feeding_logs",
	"screen_time",
}

func closeDatabase(database *gorm.DB) {
	if sqlDB, err := database.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
