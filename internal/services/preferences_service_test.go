package services

import (
	"context"
	"errors"
	"testing"

	"github.com/terraincognita07/chitra/internal/models"
	"github.com/terraincognita07/chitra/internal/reminders"
)

func TestPreferencesLoadCreatesDefaults(t *testing.T) {
	store := openServiceStore(t)
	ctx := context.Background()
	service := NewPreferencesService(store.Preferences, "hi")

	loaded, err := service.Load(ctx)
	if err != nil {
		t.Fatalf("load preferences: %v", err)
	}
	if loaded.Locale != "hi" || loaded.UnitSystem != models.UnitSystemMetric || !loaded.FeedingReminders {
		t.Fatalf("unexpected defaults: %#v", loaded)
	}

	stored, found, err := store.Preferences.Load(ctx)
	if err != nil || !found {
		t.Fatalf("expected defaults persisted, found=%v err=%v", found, err)
	}
	if stored.Locale != "hi" {
		t.Fatalf("expected stored locale hi, got %q", stored.Locale)
	}
}

func TestPreferencesSaveMergesPartialUpdate(t *testing.T) {
	store := openServiceStore(t)
	ctx := context.Background()
	service := NewPreferencesService(store.Preferences, "en")
	before, err := service.Load(ctx)
	if err != nil {
		t.Fatalf("load preferences: %v", err)
	}

	imperial := models.UnitSystemImperial
	off := false
	saved, err := service.Save(ctx, PreferencesUpdate{UnitSystem: &imperial, MedicineReminders: &off})
	if err != nil {
		t.Fatalf("save preferences: %v", err)
	}
	if saved.UnitSystem != imperial || saved.MedicineReminders {
		t.Fatalf("expected update applied, got %#v", saved)
	}
	if saved.Locale != before.Locale || saved.Theme != before.Theme || !saved.FeedingReminders {
		t.Fatalf("expected untouched fields preserved, got %#v", saved)
	}
	if saved.UpdatedAt.Before(before.UpdatedAt) {
		t.Fatalf("expected updatedAt stamped, got %s before %s", saved.UpdatedAt, before.UpdatedAt)
	}
	if service.RemindersEnabled(reminders.CategoryMedicine) {
		t.Fatalf("expected medicine reminders disabled")
	}

	reloaded := NewPreferencesService(store.Preferences, "en")
	current, err := reloaded.Load(ctx)
	if err != nil {
		t.Fatalf("reload preferences: %v", err)
	}
	if current.UnitSystem != imperial || current.MedicineReminders {
		t.Fatalf("expected persisted update, got %#v", current)
	}
}

func TestPreferencesSaveRejectsInvalidValues(t *testing.T) {
	store := openServiceStore(t)
	ctx := context.Background()
	service := NewPreferencesService(store.Preferences, "en")
	if _, err := service.Load(ctx); err != nil {
		t.Fatalf("load preferences: %v", err)
	}

	theme := "neon"
	if _, err := service.Save(ctx, PreferencesUpdate{Theme: &theme}); !errors.Is(err, ErrInvalidPreferences) {
		t.Fatalf("expected ErrInvalidPreferences for theme, got %v", err)
	}
	units := "cubits"
	if _, err := service.Save(ctx, PreferencesUpdate{UnitSystem: &units}); !errors.Is(err, ErrInvalidPreferences) {
		t.Fatalf("expected ErrInvalidPreferences for units, got %v", err)
	}
	if service.Current().Theme != models.ThemeSystem {
		t.Fatalf("expected cached preferences untouched")
	}
}

func TestPreferencesCurrentReturnsCopy(t *testing.T) {
	store := openServiceStore(t)
	service := NewPreferencesService(store.Preferences, "en")
	if _, err := service.Load(context.Background()); err != nil {
		t.Fatalf("load preferences: %v", err)
	}

	snapshot := service.Current()
	snapshot.Locale = "fr"
	if service.Current().Locale != "en" {
		t.Fatalf("expected Current to return a copy")
	}
}
