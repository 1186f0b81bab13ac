package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/chitra/internal/models"
)

func TestCollectionPutReplacesWholeRecord(t *testing.T) {
	store := openStoreForTest(t, filepath.Join(t.TempDir(), "chitra-put.db"))
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	entry := models.WeightEntry{
		ID: "w1", ProfileID: "p1", Date: now, Weight: 70, Unit: models.WeightUnitKG,
		Notes: "after run", CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, store.Weights.Put(ctx, &entry))

	replacement := models.WeightEntry{
		ID: "w1", ProfileID: "p1", Date: now, Weight: 69.4, Unit: models.WeightUnitKG,
		CreatedAt: now, UpdatedAt: now.Add(time.Hour),
	}
	require.NoError(t, store.Weights.Put(ctx, &replacement))

	stored, found, err := store.Weights.Get(ctx, "w1")
	require.NoError(t, err)
	require.True(t, found)
	require.InDelta(t, 69.4, stored.Weight, 0.0001)
	require.Empty(t, stored.Notes, "put must not merge fields from the previous record")

	count, err := store.Weights.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestCollectionGetMissingRecord(t *testing.T) {
	store := openStoreForTest(t, filepath.Join(t.TempDir(), "chitra-missing.db"))

	_, found, err := store.Cycles.Get(context.Background(), "nope")
	require.NoError(t, err)
	require.False(t, found)
}

func TestCollectionIndexesAndDateRange(t *testing.T) {
	store := openStoreForTest(t, filepath.Join(t.TempDir(), "chitra-index.db"))
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	for index, profileID := range []string{"a", "a", "b", "a"} {
		day := base.AddDate(0, 0, index)
		entry := models.ScreenTimeEntry{
			ID: "st" + string(rune('0'+index)), ProfileID: profileID, Date: day,
			Minutes: 30 * (index + 1), CreatedAt: day, UpdatedAt: day,
		}
		require.NoError(t, store.ScreenTime.Put(ctx, &entry))
	}

	owned, err := store.ScreenTime.ByProfile(ctx, "a")
	require.NoError(t, err)
	require.Len(t, owned, 3)

	from := base.AddDate(0, 0, 1)
	to := base.AddDate(0, 0, 3)
	window, err := store.ScreenTime.ByDateRange(ctx, "a", &from, &to)
	require.NoError(t, err)
	require.Len(t, window, 1)
	require.Equal(t, "st1", window[0].ID)

	open, err := store.ScreenTime.ByDateRange(ctx, "a", &from, nil)
	require.NoError(t, err)
	require.Len(t, open, 2)

	_, err = store.ScreenTime.GetAllByIndex(ctx, "by-mood", "x")
	require.True(t, errors.Is(err, ErrUnknownIndex))

	_, err = store.MedicineSchedules.ByDateRange(ctx, "a", nil, nil)
	require.ErrorIs(t, err, ErrUnknownIndex)
}

func TestCollectionDeleteAndClear(t *testing.T) {
	store := openStoreForTest(t, filepath.Join(t.TempDir(), "chitra-clear.db"))
	ctx := context.Background()
	now := time.Now().UTC()

	for _, id := range []string{"c1", "c2", "c3"} {
		entry := models.CycleEntry{ID: id, ProfileID: "p", StartDate: now, FlowIntensity: models.FlowMedium, CreatedAt: now, UpdatedAt: now}
		require.NoError(t, store.Cycles.Put(ctx, &entry))
	}

	require.NoError(t, store.Cycles.Delete(ctx, "c2"))
	require.NoError(t, store.Cycles.Delete(ctx, "absent"))

	remaining, err := store.Cycles.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 2)

	require.NoError(t, store.Cycles.Clear(ctx))
	remaining, err = store.Cycles.GetAll(ctx)
	require.NoError(t, err)
	require.Empty(t, remaining)
}

func TestSingletonSaveLoadReset(t *testing.T) {
	store := openStoreForTest(t, filepath.Join(t.TempDir(), "chitra-singleton.db"))
	ctx := context.Background()

	_, found, err := store.Preferences.Load(ctx)
	require.NoError(t, err)
	require.False(t, found)

	preferences := models.DefaultPreferences("fr", time.Now().UTC())
	preferences.FeedingReminders = false
	require.NoError(t, store.Preferences.Save(ctx, &preferences))

	loaded, found, err := store.Preferences.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "fr", loaded.Locale)
	require.False(t, loaded.FeedingReminders)
	require.True(t, loaded.MedicineReminders)

	require.NoError(t, store.Preferences.Reset(ctx))
	_, found, err = store.Preferences.Load(ctx)
	require.NoError(t, err)
	require.False(t, found)
}

func TestDeleteProfileCascadeRemovesOwnedRecords(t *testing.T) {
	store := openStoreForTest(t, filepath.Join(t.TempDir(), "chitra-cascade.db"))
	ctx := context.Background()
	now := time.Now().UTC()

	for _, id := range []string{"keep", "drop"} {
		profile := models.Profile{ID: id, Name: id, Type: models.ProfileTypeDependent, Mode: models.ProfileModeNormal, CreatedAt: now, UpdatedAt: now}
		require.NoError(t, store.Profiles.Put(ctx, &profile))

		cycle := models.CycleEntry{ID: id + "-cycle", ProfileID: id, StartDate: now, FlowIntensity: models.FlowLight, CreatedAt: now, UpdatedAt: now}
		require.NoError(t, store.Cycles.Put(ctx, &cycle))
		vaccination := models.VaccinationEntry{ID: id + "-vax", ProfileID: id, VaccineName: "MMR", DateAdministered: now, CreatedAt: now, UpdatedAt: now}
		require.NoError(t, store.Vaccinations.Put(ctx, &vaccination))
		schedule := models.MedicineSchedule{ID: id + "-med", ProfileID: id, MedicineName: "Iron", TimesPerDay: 1, IntervalHours: 24, TotalDays: 3, StartDate: now, IsActive: true, CreatedAt: now, UpdatedAt: now}
		require.NoError(t, store.MedicineSchedules.Put(ctx, &schedule))
		medicineLog := models.MedicineLog{ID: id + "-medlog", ProfileID: id, ScheduleID: schedule.ID, Status: models.MedicineStatusTaken, LoggedAt: now, CreatedAt: now, UpdatedAt: now}
		require.NoError(t, store.MedicineLogs.Put(ctx, &medicineLog))
		feeding := models.FeedingLog{ID: id + "-feed", ProfileID: id, FeedingType: models.FeedingTypeBottle, AmountML: 90, FedAt: now, CreatedAt: now, UpdatedAt: now}
		require.NoError(t, store.FeedingLogs.Put(ctx, &feeding))
	}

	require.NoError(t, store.DeleteProfileCascade(ctx, "drop"))

	_, found, err := store.Profiles.Get(ctx, "drop")
	require.NoError(t, err)
	require.False(t, found)

	dropped, err := store.ProfileOwnedCounts(ctx, "drop")
	require.NoError(t, err)
	for table, count := range dropped {
		require.Zerof(t, count, "expected no %s left for deleted profile", table)
	}

	kept, err := store.ProfileOwnedCounts(ctx, "keep")
	require.NoError(t, err)
	require.EqualValues(t, 1, kept["cycles"])
	require.EqualValues(t, 1, kept["medicine_logs"])
	require.EqualValues(t, 1, kept["feeding_logs"])
}
