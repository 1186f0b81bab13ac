package db

import (
	"context"
	"fmt"
	"time"

	"github.com/terraincognita07/chitra/internal/models"
	"gorm.io/gorm"
)

// Tables that existed before profiles did. Rows created back then carry an
// empty profile_id after the 002 migration adds the column.
var legacyTimeSeriesTables = []string{"cycles", "weights", "check_ins"}

type BackfillReport struct {
	ProfileID             string
	CreatedDefaultProfile bool
	ActiveProfileAssigned bool
	Updated               map[string]int64
}

func (report BackfillReport) Total() int64 {
	var total int64
	for _, count := range report.Updated {
		total += count
	}
	return total
}

func (report BackfillReport) Changed() bool {
	return report.CreatedDefaultProfile || report.Total() > 0
}

// BackfillProfileIDs assigns orphaned legacy records to a profile. With no
// profiles it synthesizes the default main profile, but only when orphans
// exist; otherwise it picks the first main profile (or the first stored one).
// Existing profiles and non-empty profile ids are never rewritten, so a second
// run is a no-op. The whole pass is one transaction.
func (store *Store) BackfillProfileIDs(ctx context.Context, now time.Time) (BackfillReport, error) {
	report := BackfillReport{Updated: map[string]int64{}}

	err := store.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		report = BackfillReport{Updated: map[string]int64{}}

		profiles := make([]models.Profile, 0)
		if err := tx.Order("rowid ASC").Find(&profiles).Error; err != nil {
			return fmt.Errorf("load profiles: %w", err)
		}

		orphans, err := countOrphans(tx)
		if err != nil {
			return err
		}
		if orphans == 0 {
			return nil
		}

		var target models.Profile
		if len(profiles) == 0 {
			target = defaultProfile(now)
			if err := tx.Create(&target).Error; err != nil {
				return fmt.Errorf("create default profile: %w", err)
			}
			report.CreatedDefaultProfile = true
		} else {
			target = pickBackfillTarget(profiles)
		}
		report.ProfileID = target.ID

		for _, table := range legacyTimeSeriesTables {
			result := tx.Exec(
				fmt.Sprintf(`UPDATE %s SET profile_id = ? WHERE profile_id = '' OR profile_id IS NULL`, table),
				target.ID,
			)
			if result.Error != nil {
				return fmt.Errorf("backfill %s: %w", table, result.Error)
			}
			report.Updated[table] = result.RowsAffected
		}

		if report.CreatedDefaultProfile {
			assigned, err := assignActiveProfileIfUnset(tx, target.ID, now)
			if err != nil {
				return err
			}
			report.ActiveProfileAssigned = assigned
		}
		return nil
	})
	if err != nil {
		return BackfillReport{}, storageError("profiles", "backfill", err)
	}
	return report, nil
}

func countOrphans(tx *gorm.DB) (int64, error) {
	var total int64
	for _, table := range legacyTimeSeriesTables {
		var count int64
		if err := tx.Table(table).
			Where("profile_id = '' OR profile_id IS NULL").
			Count(&count).Error; err != nil {
			return 0, fmt.Errorf("count orphans in %s: %w", table, err)
		}
		total += count
	}
	return total, nil
}

func pickBackfillTarget(profiles []models.Profile) models.Profile {
	for _, profile := range profiles {
		if profile.IsMain() {
			return profile
		}
	}
	return profiles[0]
}

func defaultProfile(now time.Time) models.Profile {
	return models.Profile{
		ID:        models.DefaultProfileID,
		Name:      "Me",
		Type:      models.ProfileTypeMain,
		Avatar:    models.ProfileAvatars()[0],
		Mode:      models.ProfileModeNormal,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func assignActiveProfileIfUnset(tx *gorm.DB, profileID string, now time.Time) (bool, error) {
	var preferences models.Preferences
	result := tx.Where("id = ?", models.PreferencesID).Limit(1).Find(&preferences)
	if result.Error != nil {
		return false, fmt.Errorf("load preferences: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		preferences = models.DefaultPreferences("", now)
		preferences.ActiveProfileID = profileID
		if err := tx.Create(&preferences).Error; err != nil {
			return false, fmt.Errorf("create preferences: %w", err)
		}
		return true, nil
	}

	if preferences.ActiveProfileID != "" {
		return false, nil
	}
	if err := tx.Model(&models.Preferences{}).
		Where("id = ?", models.PreferencesID).
		UpdateColumn("active_profile_id", profileID).Error; err != nil {
		return false, fmt.Errorf("set active profile: %w", err)
	}
	return true, nil
}
