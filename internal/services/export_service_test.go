package services

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/terraincognita07/chitra/internal/db"
	"github.com/terraincognita07/chitra/internal/models"
)

func exportCollectionsFor(store *db.Store) ExportCollections {
	return ExportCollections{
		Profiles:          store.Profiles,
		Cycles:            store.Cycles,
		Weights:           store.Weights,
		CheckIns:          store.CheckIns,
		Vaccinations:      store.Vaccinations,
		MedicineSchedules: store.MedicineSchedules,
		MedicineLogs:      store.MedicineLogs,
		FeedingSchedules:  store.FeedingSchedules,
		FeedingLogs:       store.FeedingLogs,
		ScreenTime:        store.ScreenTime,
	}
}

func seedExportStore(t *testing.T, store *db.Store) models.Profile {
	t.Helper()
	ctx := context.Background()

	profile := models.Profile{
		ID: "p1", Name: "Asha", Type: models.ProfileTypeMain, Avatar: "🌸", Mode: models.ProfileModeNormal,
		CreatedAt: mustTime(t, "2026-01-01T00:00:00Z"), UpdatedAt: mustTime(t, "2026-01-01T00:00:00Z"),
	}
	if err := store.Profiles.Put(ctx, &profile); err != nil {
		t.Fatalf("put profile: %v", err)
	}
	tracking := NewTrackingService(store.Cycles, store.Weights, store.CheckIns, store.ScreenTime, nil, time.UTC)
	if _, err := tracking.SaveCheckIn(ctx, profile.ID, CheckInInput{
		Date:  mustDate(t, "2026-02-01"),
		Mood:  "ok",
		Notes: `He said, "ok"`,
	}); err != nil {
		t.Fatalf("save check-in: %v", err)
	}
	if _, err := tracking.AddWeight(ctx, profile.ID, WeightInput{Date: mustDate(t, "2026-02-01"), Weight: 61.4}); err != nil {
		t.Fatalf("add weight: %v", err)
	}
	return profile
}

func TestExportCSVQuotesAndDecodes(t *testing.T) {
	store := openServiceStore(t)
	seedExportStore(t, store)
	service := NewExportService(exportCollectionsFor(store), nil)

	payload, err := service.ExportCSV(context.Background())
	if err != nil {
		t.Fatalf("export csv: %v", err)
	}
	text := string(payload)
	if !strings.HasPrefix(text, "# PROFILES\n") {
		t.Fatalf("expected profiles section first, got %q", text[:20])
	}
	if !strings.Contains(text, `"He said, ""ok"""`) {
		t.Fatalf("expected RFC 4180 quoting in %q", text)
	}

	sections, err := DecodeCSVSections(payload)
	if err != nil {
		t.Fatalf("decode csv: %v", err)
	}
	var checkIns *CSVSection
	for index := range sections {
		if sections[index].Name == "CHECK_INS" {
			checkIns = &sections[index]
		}
	}
	if checkIns == nil || len(checkIns.Rows) != 1 {
		t.Fatalf("expected one check-in row, got %#v", checkIns)
	}
	notesColumn := -1
	for index, column := range checkIns.Header {
		if column == "notes" {
			notesColumn = index
		}
	}
	if got := checkIns.Rows[0][notesColumn]; got != `He said, "ok"` {
		t.Fatalf("expected notes to survive the round trip, got %q", got)
	}
}

func TestDecodeCSVSectionsRejectsOrphanData(t *testing.T) {
	if _, err := DecodeCSVSections([]byte("id,name\n1,x\n")); !errors.Is(err, ErrInvalidImport) {
		t.Fatalf("expected ErrInvalidImport, got %v", err)
	}
}

func TestExportJSONShape(t *testing.T) {
	store := openServiceStore(t)
	seedExportStore(t, store)
	service := NewExportService(exportCollectionsFor(store), nil)
	service.now = func() time.Time { return mustTime(t, "2026-06-01T10:00:00Z") }

	payload, err := service.ExportJSON(context.Background())
	if err != nil {
		t.Fatalf("export json: %v", err)
	}
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	for _, key := range []string{"exportedAt", "version", "profiles", "cycles", "weights", "checkIns", "vaccinations", "medicineSchedules", "medicineLogs", "feedingSchedules", "feedingLogs", "screenTime"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("expected key %q in export", key)
		}
	}
	if string(decoded["exportedAt"]) != `"2026-06-01T10:00:00Z"` {
		t.Fatalf("unexpected exportedAt %s", decoded["exportedAt"])
	}
	if string(decoded["cycles"]) != "[]" {
		t.Fatalf("expected empty cycles array, got %s", decoded["cycles"])
	}
}

func TestImportJSONRoundTripAndProfileCap(t *testing.T) {
	source := openServiceStore(t)
	seedExportStore(t, source)
	payload, err := NewExportService(exportCollectionsFor(source), nil).ExportJSON(context.Background())
	if err != nil {
		t.Fatalf("export json: %v", err)
	}

	target := openServiceStore(t)
	ctx := context.Background()
	existingMain := models.Profile{ID: "other-main", Name: "Ravi", Type: models.ProfileTypeMain, Mode: models.ProfileModeNormal}
	if err := target.Profiles.Put(ctx, &existingMain); err != nil {
		t.Fatalf("put existing main: %v", err)
	}

	report, err := NewExportService(exportCollectionsFor(target), nil).ImportJSON(ctx, payload)
	if err != nil {
		t.Fatalf("import json: %v", err)
	}
	if report.SkippedProfiles != 1 {
		t.Fatalf("expected the second main profile skipped, got %#v", report)
	}
	if report.SkippedRecords != 2 {
		t.Fatalf("expected records of the skipped profile skipped, got %#v", report)
	}

	clean := openServiceStore(t)
	report, err = NewExportService(exportCollectionsFor(clean), nil).ImportJSON(ctx, payload)
	if err != nil {
		t.Fatalf("import into clean store: %v", err)
	}
	if report.Imported["profiles"] != 1 || report.Imported["checkIns"] != 1 || report.Imported["weights"] != 1 {
		t.Fatalf("unexpected import report: %#v", report)
	}
	checkIns, err := clean.CheckIns.ByProfile(ctx, "p1")
	if err != nil {
		t.Fatalf("list imported check-ins: %v", err)
	}
	if len(checkIns) != 1 || checkIns[0].Notes != `He said, "ok"` {
		t.Fatalf("unexpected imported check-ins: %#v", checkIns)
	}

	if _, err := NewExportService(exportCollectionsFor(clean), nil).ImportJSON(ctx, []byte(`{"profiles":[]}`)); !errors.Is(err, ErrInvalidImport) {
		t.Fatalf("expected missing version rejected, got %v", err)
	}
}

func TestExportToFileWritesIntoStorageFolder(t *testing.T) {
	store := openServiceStore(t)
	seedExportStore(t, store)
	root := t.TempDir()
	service := NewExportService(exportCollectionsFor(store), NewDirectorySink(func() string { return root }))

	path, err := service.ExportToFile(context.Background(), ExportFormatCSV)
	if err != nil {
		t.Fatalf("export to file: %v", err)
	}
	if !strings.HasPrefix(path, root) || !strings.HasSuffix(path, ".csv") {
		t.Fatalf("unexpected export path %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stat export: %v", err)
	}
	if _, err := service.ExportToFile(context.Background(), "xml"); !errors.Is(err, ErrInvalidRecordInput) {
		t.Fatalf("expected unknown format rejected, got %v", err)
	}
}

func TestImportJSONKeepsRecordsOwnedByAnotherProfile(t *testing.T) {
	source := openServiceStore(t)
	seedExportStore(t, source)
	ctx := context.Background()
	weights, err := source.Weights.ByProfile(ctx, "p1")
	if err != nil || len(weights) != 1 {
		t.Fatalf("load seeded weights: %v (%d)", err, len(weights))
	}
	payload, err := NewExportService(exportCollectionsFor(source), nil).ExportJSON(ctx)
	if err != nil {
		t.Fatalf("export json: %v", err)
	}

	target := openServiceStore(t)
	kid := models.Profile{ID: "kid", Name: "Mini", Type: models.ProfileTypeDependent, Mode: models.ProfileModeChildcare}
	if err := target.Profiles.Put(ctx, &kid); err != nil {
		t.Fatalf("put dependent: %v", err)
	}
	clash := models.WeightEntry{ID: weights[0].ID, ProfileID: "kid", Date: mustDate(t, "2026-03-01"), Weight: 12.5, Unit: models.WeightUnitKG}
	if err := target.Weights.Put(ctx, &clash); err != nil {
		t.Fatalf("put clashing weight: %v", err)
	}

	report, err := NewExportService(exportCollectionsFor(target), nil).ImportJSON(ctx, payload)
	if err != nil {
		t.Fatalf("import json: %v", err)
	}
	if report.SkippedRecords != 1 || report.Imported["weights"] != 0 || report.Imported["checkIns"] != 1 {
		t.Fatalf("unexpected import report: %#v", report)
	}
	kept, found, err := target.Weights.Get(ctx, clash.ID)
	if err != nil || !found {
		t.Fatalf("load weight: found=%v err=%v", found, err)
	}
	if kept.ProfileID != "kid" || kept.Weight != 12.5 {
		t.Fatalf("expected weight to stay with its owner, got %#v", kept)
	}
}
