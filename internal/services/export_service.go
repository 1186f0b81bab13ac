package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/terraincognita07/chitra/internal/models"
)

const (
	ExportFormatVersion = "2"
	ExportFormatJSON    = "json"
	ExportFormatCSV     = "csv"

	exportDateLayout = "2006-01-02"
)

// ExportCollections names every collection that takes part in export and
// import.
type ExportCollections struct {
	Profiles          RecordCollection[models.Profile]
	Cycles            RecordCollection[models.CycleEntry]
	Weights           RecordCollection[models.WeightEntry]
	CheckIns          RecordCollection[models.DailyCheckIn]
	Vaccinations      RecordCollection[models.VaccinationEntry]
	MedicineSchedules RecordCollection[models.MedicineSchedule]
	MedicineLogs      RecordCollection[models.MedicineLog]
	FeedingSchedules  RecordCollection[models.FeedingSchedule]
	FeedingLogs       RecordCollection[models.FeedingLog]
	ScreenTime        RecordCollection[models.ScreenTimeEntry]
}

type ExportData struct {
	ExportedAt        string                    `json:"exportedAt"`
	Version           string                    `json:"version"`
	Profiles          []models.Profile          `json:"profiles"`
	Cycles            []models.CycleEntry       `json:"cycles"`
	Weights           []models.WeightEntry      `json:"weights"`
	CheckIns          []models.DailyCheckIn     `json:"checkIns"`
	Vaccinations      []models.VaccinationEntry `json:"vaccinations"`
	MedicineSchedules []models.MedicineSchedule `json:"medicineSchedules"`
	MedicineLogs      []models.MedicineLog      `json:"medicineLogs"`
	FeedingSchedules  []models.FeedingSchedule  `json:"feedingSchedules"`
	FeedingLogs       []models.FeedingLog       `json:"feedingLogs"`
	ScreenTime        []models.ScreenTimeEntry  `json:"screenTime"`
}

type ImportReport struct {
	Imported        map[string]int `json:"imported"`
	SkippedProfiles int            `json:"skippedProfiles"`
	SkippedRecords  int            `json:"skippedRecords"`
}

type CSVSection struct {
	Name   string
	Header []string
	Rows   [][]string
}

type ExportService struct {
	collections ExportCollections
	files       FileSink
	reminders   *ReminderRebuilder
	now         func() time.Time
}

func NewExportService(collections ExportCollections, files FileSink) *ExportService {
	return &ExportService{
		collections: collections,
		files:       files,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// UseReminderRebuilder rebuilds the reminder schedule after every import.
func (service *ExportService) UseReminderRebuilder(rebuilder *ReminderRebuilder) {
	service.reminders = rebuilder
}

func (service *ExportService) Collect(ctx context.Context) (ExportData, error) {
	data := ExportData{
		ExportedAt: service.now().Format(time.RFC3339),
		Version:    ExportFormatVersion,
	}

	var err error
	if data.Profiles, err = service.collections.Profiles.GetAll(ctx); err != nil {
		return ExportData{}, err
	}
	sortProfiles(data.Profiles)
	if data.Cycles, err = service.collections.Cycles.GetAll(ctx); err != nil {
		return ExportData{}, err
	}
	if data.Weights, err = service.collections.Weights.GetAll(ctx); err != nil {
		return ExportData{}, err
	}
	if data.CheckIns, err = service.collections.CheckIns.GetAll(ctx); err != nil {
		return ExportData{}, err
	}
	if data.Vaccinations, err = service.collections.Vaccinations.GetAll(ctx); err != nil {
		return ExportData{}, err
	}
	if data.MedicineSchedules, err = service.collections.MedicineSchedules.GetAll(ctx); err != nil {
		return ExportData{}, err
	}
	if data.MedicineLogs, err = service.collections.MedicineLogs.GetAll(ctx); err != nil {
		return ExportData{}, err
	}
	if data.FeedingSchedules, err = service.collections.FeedingSchedules.GetAll(ctx); err != nil {
		return ExportData{}, err
	}
	if data.FeedingLogs, err = service.collections.FeedingLogs.GetAll(ctx); err != nil {
		return ExportData{}, err
	}
	if data.ScreenTime, err = service.collections.ScreenTime.GetAll(ctx); err != nil {
		return ExportData{}, err
	}
	return data, nil
}

func (service *ExportService) ExportJSON(ctx context.Context) ([]byte, error) {
	data, err := service.Collect(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

func (service *ExportService) ExportCSV(ctx context.Context) ([]byte, error) {
	data, err := service.Collect(ctx)
	if err != nil {
		return nil, err
	}
	return EncodeCSVSections(buildCSVSections(data))
}

// ExportToFile writes an export into the storage folder and returns its path.
func (service *ExportService) ExportToFile(ctx context.Context, format string) (string, error) {
	if service.files == nil {
		return "", ErrStorageFolderNotSet
	}

	var (
		payload []byte
		err     error
	)
	switch format {
	case ExportFormatJSON:
		payload, err = service.ExportJSON(ctx)
	case ExportFormatCSV:
		payload, err = service.ExportCSV(ctx)
	default:
		return "", fmt.Errorf("%w: export format %q", ErrInvalidRecordInput, format)
	}
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("exports/chitra-export-%s.%s", service.now().Format("20060102-150405"), format)
	return service.files.WriteFile(ctx, name, payload)
}

// EncodeCSVSections renders each section as "# NAME\n<csv>\n\n".
func EncodeCSVSections(sections []CSVSection) ([]byte, error) {
	var output bytes.Buffer
	for _, section := range sections {
		output.WriteString("# " + section.Name + "\n")
		writer := csv.NewWriter(&output)
		if err := writer.Write(section.Header); err != nil {
			return nil, err
		}
		if err := writer.WriteAll(section.Rows); err != nil {
			return nil, err
		}
		output.WriteString("\n")
	}
	return output.Bytes(), nil
}

// DecodeCSVSections parses the output of EncodeCSVSections. A single-field
// record starting with "# " opens a new section.
func DecodeCSVSections(payload []byte) ([]CSVSection, error) {
	reader := csv.NewReader(bytes.NewReader(payload))
	reader.FieldsPerRecord = -1

	sections := make([]CSVSection, 0)
	var current *CSVSection
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
		}

		if len(record) == 1 && strings.HasPrefix(record[0], "# ") {
			sections = append(sections, CSVSection{Name: strings.TrimPrefix(record[0], "# ")})
			current = &sections[len(sections)-1]
			continue
		}
		if current == nil {
			return nil, fmt.Errorf("%w: csv data before first section", ErrInvalidImport)
		}
		if current.Header == nil {
			current.Header = record
			continue
		}
		current.Rows = append(current.Rows, record)
	}
	return sections, nil
}

func buildCSVSections(data ExportData) []CSVSection {
	sections := []CSVSection{
		{
			Name:   "PROFILES",
			Header: []string{"id", "name", "type", "avatar", "gender", "dateOfBirth", "mode", "createdAt"},
		},
		{
			Name:   "CYCLES",
			Header: []string{"id", "profileId", "startDate", "endDate", "flowIntensity", "symptoms", "notes"},
		},
		{
			Name:   "WEIGHTS",
			Header: []string{"id", "profileId", "date", "weight", "unit", "notes"},
		},
		{
			Name:   "CHECK_INS",
			Header: []string{"id", "profileId", "date", "mood", "energy", "symptoms", "notes"},
		},
		{
			Name:   "VACCINATIONS",
			Header: []string{"id", "profileId", "vaccineName", "dateAdministered", "hospitalName", "doctorName", "nextDueDate", "reminderEnabled", "notes"},
		},
		{
			Name:   "MEDICINE_SCHEDULES",
			Header: []string{"id", "profileId", "medicineName", "dosage", "timesPerDay", "intervalHours", "totalDays", "startDate", "isActive", "isPaused", "notes"},
		},
		{
			Name:   "MEDICINE_LOGS",
			Header: []string{"id", "profileId", "scheduleId", "status", "scheduledFor", "loggedAt"},
		},
		{
			Name:   "FEEDING_SCHEDULES",
			Header: []string{"id", "profileId", "label", "feedingType", "intervalHours", "startTime", "isActive"},
		},
		{
			Name:   "FEEDING_LOGS",
			Header: []string{"id", "profileId", "scheduleId", "feedingType", "amountMl", "durationMinutes", "fedAt", "notes"},
		},
		{
			Name:   "SCREEN_TIME",
			Header: []string{"id", "profileId", "date", "minutes", "category", "notes"},
		},
	}

	for _, profile := range data.Profiles {
		sections[0].Rows = append(sections[0].Rows, []string{
			profile.ID, profile.Name, profile.Type, profile.Avatar, profile.Gender,
			csvOptionalDate(profile.DateOfBirth), profile.Mode, csvTimestamp(profile.CreatedAt),
		})
	}
	for _, entry := range data.Cycles {
		sections[1].Rows = append(sections[1].Rows, []string{
			entry.ID, entry.ProfileID, csvDate(entry.StartDate), csvOptionalDate(entry.EndDate),
			entry.FlowIntensity, strings.Join(entry.Symptoms, "; "), entry.Notes,
		})
	}
	for _, entry := range data.Weights {
		sections[2].Rows = append(sections[2].Rows, []string{
			entry.ID, entry.ProfileID, csvDate(entry.Date),
			strconv.FormatFloat(entry.Weight, 'f', -1, 64), entry.Unit, entry.Notes,
		})
	}
	for _, entry := range data.CheckIns {
		sections[3].Rows = append(sections[3].Rows, []string{
			entry.ID, entry.ProfileID, csvDate(entry.Date), entry.Mood,
			strconv.Itoa(entry.Energy), strings.Join(entry.Symptoms, "; "), entry.Notes,
		})
	}
	for _, entry := range data.Vaccinations {
		sections[4].Rows = append(sections[4].Rows, []string{
			entry.ID, entry.ProfileID, entry.VaccineName, csvDate(entry.DateAdministered),
			entry.HospitalName, entry.DoctorName, csvOptionalDate(entry.NextDueDate),
			strconv.FormatBool(entry.ReminderEnabled), entry.Notes,
		})
	}
	for _, entry := range data.MedicineSchedules {
		sections[5].Rows = append(sections[5].Rows, []string{
			entry.ID, entry.ProfileID, entry.MedicineName, entry.Dosage,
			strconv.Itoa(entry.TimesPerDay), strconv.Itoa(entry.IntervalHours), strconv.Itoa(entry.TotalDays),
			csvTimestamp(entry.StartDate), strconv.FormatBool(entry.IsActive), strconv.FormatBool(entry.IsPaused), entry.Notes,
		})
	}
	for _, entry := range data.MedicineLogs {
		sections[6].Rows = append(sections[6].Rows, []string{
			entry.ID, entry.ProfileID, entry.ScheduleID, entry.Status,
			csvTimestamp(entry.ScheduledFor), csvTimestamp(entry.LoggedAt),
		})
	}
	for _, entry := range data.FeedingSchedules {
		sections[7].Rows = append(sections[7].Rows, []string{
			entry.ID, entry.ProfileID, entry.Label, entry.FeedingType,
			strconv.Itoa(entry.IntervalHours), csvTimestamp(entry.StartTime), strconv.FormatBool(entry.IsActive),
		})
	}
	for _, entry := range data.FeedingLogs {
		sections[8].Rows = append(sections[8].Rows, []string{
			entry.ID, entry.ProfileID, entry.ScheduleID, entry.FeedingType,
			strconv.Itoa(entry.AmountML), strconv.Itoa(entry.DurationMinutes), csvTimestamp(entry.FedAt), entry.Notes,
		})
	}
	for _, entry := range data.ScreenTime {
		sections[9].Rows = append(sections[9].Rows, []string{
			entry.ID, entry.ProfileID, csvDate(entry.Date), strconv.Itoa(entry.Minutes), entry.Category, entry.Notes,
		})
	}
	return sections
}

func csvDate(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.Format(exportDateLayout)
}

func csvOptionalDate(value *time.Time) string {
	if value == nil {
		return ""
	}
	return csvDate(*value)
}

func csvTimestamp(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}

// ImportJSON upserts the records of a JSON export. Profiles beyond the
// household limits are skipped, and so are records whose profile is not
// present afterwards.
func (service *ExportService) ImportJSON(ctx context.Context, payload []byte) (ImportReport, error) {
	var data ExportData
	if err := json.Unmarshal(payload, &data); err != nil {
		return ImportReport{}, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	if strings.TrimSpace(data.Version) == "" {
		return ImportReport{}, fmt.Errorf("%w: missing version", ErrInvalidImport)
	}

	report := ImportReport{Imported: map[string]int{}}
	known, err := service.importProfiles(ctx, data.Profiles, &report)
	if err != nil {
		return ImportReport{}, err
	}

	steps := []func() error{
		func() error { return importOwned(ctx, service.collections.Cycles, data.Cycles, "cycles", known, &report) },
		func() error { return importOwned(ctx, service.collections.Weights, data.Weights, "weights", known, &report) },
		func() error { return importOwned(ctx, service.collections.CheckIns, data.CheckIns, "checkIns", known, &report) },
		func() error {
			return importOwned(ctx, service.collections.Vaccinations, data.Vaccinations, "vaccinations", known, &report)
		},
		func() error {
			return importOwned(ctx, service.collections.MedicineSchedules, data.MedicineSchedules, "medicineSchedules", known, &report)
		},
		func() error {
			return importOwned(ctx, service.collections.MedicineLogs, data.MedicineLogs, "medicineLogs", known, &report)
		},
		func() error {
			return importOwned(ctx, service.collections.FeedingSchedules, data.FeedingSchedules, "feedingSchedules", known, &report)
		},
		func() error {
			return importOwned(ctx, service.collections.FeedingLogs, data.FeedingLogs, "feedingLogs", known, &report)
		},
		func() error {
			return importOwned(ctx, service.collections.ScreenTime, data.ScreenTime, "screenTime", known, &report)
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return ImportReport{}, err
		}
	}

	if service.reminders != nil {
		if _, err := service.reminders.Rebuild(ctx); err != nil {
			log.Printf("import: rebuild reminders failed: %v", err)
		}
	}
	return report, nil
}

func (service *ExportService) importProfiles(ctx context.Context, incoming []models.Profile, report *ImportReport) (map[string]struct{}, error) {
	existing, err := service.collections.Profiles.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(existing)+len(incoming))
	current := make([]models.Profile, 0, len(existing))
	for _, profile := range existing {
		known[profile.ID] = struct{}{}
		current = append(current, profile)
	}

	sortProfiles(incoming)
	for _, profile := range incoming {
		if profile.ID == "" || !models.IsValidProfileType(profile.Type) {
			report.SkippedProfiles++
			continue
		}
		if _, ok := known[profile.ID]; ok {
			// Replacing an existing profile must not change the type balance.
			others := make([]models.Profile, 0, len(current))
			for _, candidate := range current {
				if candidate.ID != profile.ID {
					others = append(others, candidate)
				}
			}
			if err := validateProfileAddition(others, profile.Type); err != nil {
				report.SkippedProfiles++
				continue
			}
			if err := service.collections.Profiles.Put(ctx, &profile); err != nil {
				return nil, err
			}
			current = append(others, profile)
			report.Imported["profiles"]++
			continue
		}
		if err := validateProfileAddition(current, profile.Type); err != nil {
			report.SkippedProfiles++
			continue
		}
		if !models.IsValidProfileMode(profile.Mode) {
			profile.Mode = models.ProfileModeNormal
		}
		if err := service.collections.Profiles.Put(ctx, &profile); err != nil {
			return nil, err
		}
		known[profile.ID] = struct{}{}
		current = append(current, profile)
		report.Imported["profiles"]++
	}
	return known, nil
}

type profileOwned interface {
	models.CycleEntry | models.WeightEntry | models.DailyCheckIn | models.VaccinationEntry |
		models.MedicineSchedule | models.MedicineLog | models.FeedingSchedule | models.FeedingLog |
		models.ScreenTimeEntry
}

func ownerOf[T profileOwned](record T) (string, string) {
	switch value := any(record).(type) {
	case models.CycleEntry:
		return value.ID, value.ProfileID
	case models.WeightEntry:
		return value.ID, value.ProfileID
	case models.DailyCheckIn:
		return value.ID, value.ProfileID
	case models.VaccinationEntry:
		return value.ID, value.ProfileID
	case models.MedicineSchedule:
		return value.ID, value.ProfileID
	case models.MedicineLog:
		return value.ID, value.ProfileID
	case models.FeedingSchedule:
		return value.ID, value.ProfileID
	case models.FeedingLog:
		return value.ID, value.ProfileID
	case models.ScreenTimeEntry:
		return value.ID, value.ProfileID
	}
	return "", ""
}

func importOwned[T profileOwned](ctx context.Context, collection RecordCollection[T], records []T, name string, known map[string]struct{}, report *ImportReport) error {
	for index := range records {
		id, profileID := ownerOf(records[index])
		if _, ok := known[profileID]; !ok || id == "" {
			report.SkippedRecords++
			continue
		}
		// An id already owned by another profile is not moved across.
		existing, found, err := collection.Get(ctx, id)
		if err != nil {
			return err
		}
		if _, existingOwner := ownerOf(existing); found && existingOwner != profileID {
			report.SkippedRecords++
			continue
		}
		if err := collection.Put(ctx, &records[index]); err != nil {
			return err
		}
		report.Imported[name]++
	}
	return nil
}
