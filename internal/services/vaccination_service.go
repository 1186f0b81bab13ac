package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/terraincognita07/chitra/internal/models"
	"github.com/terraincognita07/chitra/internal/reminders"
)

const vaccinationReminderHour = 9

var attachmentExtensions = map[string]string{
	"jpeg": "jpg",
	"jpg":  "jpg",
	"png":  "png",
	"webp": "webp",
	"pdf":  "pdf",
}

type VaccinationInput struct {
	VaccineName      string     `json:"vaccineName"`
	DateAdministered time.Time  `json:"dateAdministered"`
	HospitalName     string     `json:"hospitalName"`
	DoctorName       string     `json:"doctorName"`
	NextDueDate      *time.Time `json:"nextDueDate"`
	ReminderEnabled  bool       `json:"reminderEnabled"`
	Notes            string     `json:"notes"`
}

type VaccinationService struct {
	vaccinations RecordCollection[models.VaccinationEntry]
	reminders    ReminderScheduler
	files        FileSink
	points       PointsAwarder
	location     *time.Location
	now          func() time.Time
	text         reminderText
}

func NewVaccinationService(
	vaccinations RecordCollection[models.VaccinationEntry],
	scheduler ReminderScheduler,
	files FileSink,
	points PointsAwarder,
	location *time.Location,
) *VaccinationService {
	if location == nil {
		location = time.UTC
	}
	return &VaccinationService{
		vaccinations: vaccinations,
		reminders:    scheduler,
		files:        files,
		points:       points,
		location:     location,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SetReminderCopy localizes reminder text using the catalog and the language
// reported at scheduling time.
func (service *VaccinationService) SetReminderCopy(catalog ReminderCopy, language func() string) {
	service.text = reminderText{catalog: catalog, language: language}
}

func (service *VaccinationService) List(ctx context.Context, profileID string) ([]models.VaccinationEntry, error) {
	return service.vaccinations.ByDateRange(ctx, profileID, nil, nil)
}

// Save creates the entry when vaccinationID is empty, otherwise replaces it.
// The due-date reminders are re-planned either way.
func (service *VaccinationService) Save(ctx context.Context, profileID string, vaccinationID string, input VaccinationInput) (models.VaccinationEntry, error) {
	if err := requireProfileID(profileID); err != nil {
		return models.VaccinationEntry{}, err
	}
	name := strings.TrimSpace(input.VaccineName)
	if name == "" {
		return models.VaccinationEntry{}, fmt.Errorf("%w: vaccine name is required", ErrInvalidRecordInput)
	}
	if input.DateAdministered.IsZero() {
		return models.VaccinationEntry{}, fmt.Errorf("%w: administration date is required", ErrInvalidRecordInput)
	}

	now := service.now()
	entry := models.VaccinationEntry{
		ID:               vaccinationID,
		ProfileID:        profileID,
		VaccineName:      name,
		DateAdministered: DateAtLocation(input.DateAdministered, service.location),
		HospitalName:     strings.TrimSpace(input.HospitalName),
		DoctorName:       strings.TrimSpace(input.DoctorName),
		ReminderEnabled:  input.ReminderEnabled,
		Notes:            strings.TrimSpace(input.Notes),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if input.NextDueDate != nil {
		due := DateAtLocation(*input.NextDueDate, service.location)
		entry.NextDueDate = &due
	}

	created := vaccinationID == ""
	if created {
		if _, err := resolveRecordIdentity(ctx, service.vaccinations, &entry.ID, &entry.CreatedAt, profileID, vaccinationOwner); err != nil {
			return models.VaccinationEntry{}, err
		}
	} else {
		existing, found, err := service.vaccinations.Get(ctx, vaccinationID)
		if err != nil {
			return models.VaccinationEntry{}, err
		}
		if !found || existing.ProfileID != profileID {
			return models.VaccinationEntry{}, ErrRecordNotFound
		}
		entry.CreatedAt = existing.CreatedAt
		entry.AttachmentPath = existing.AttachmentPath
		entry.AttachmentType = existing.AttachmentType
	}

	if err := service.vaccinations.Put(ctx, &entry); err != nil {
		return models.VaccinationEntry{}, err
	}
	service.planReminders(ctx, entry)
	if created && service.points != nil {
		service.points.Award(ctx, now)
	}
	return entry, nil
}

func vaccinationOwner(entry models.VaccinationEntry) (string, time.Time) {
	return entry.ProfileID, entry.CreatedAt
}

func (service *VaccinationService) Delete(ctx context.Context, profileID string, vaccinationID string) error {
	existing, found, err := service.vaccinations.Get(ctx, vaccinationID)
	if err != nil {
		return err
	}
	if !found || existing.ProfileID != profileID {
		return ErrRecordNotFound
	}

	cancelQuietly(ctx, service.reminders, vaccinationID, "", reminders.SuffixFollowUp)
	if err := service.vaccinations.Delete(ctx, vaccinationID); err != nil {
		return err
	}
	if existing.AttachmentPath != "" && service.files != nil {
		if err := service.files.RemoveFile(ctx, existing.AttachmentPath); err != nil {
			log.Printf("vaccinations: remove attachment %s failed: %v", existing.AttachmentPath, err)
		}
	}
	return nil
}

// SaveAttachment stores a base64 payload (photo or document of the record)
// next to the data and links it to the entry.
func (service *VaccinationService) SaveAttachment(ctx context.Context, profileID string, vaccinationID string, payload string, format string) (models.VaccinationEntry, error) {
	if service.files == nil {
		return models.VaccinationEntry{}, ErrStorageFolderNotSet
	}
	entry, found, err := service.vaccinations.Get(ctx, vaccinationID)
	if err != nil {
		return models.VaccinationEntry{}, err
	}
	if !found || entry.ProfileID != profileID {
		return models.VaccinationEntry{}, ErrRecordNotFound
	}

	extension, ok := attachmentExtensions[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		return models.VaccinationEntry{}, fmt.Errorf("%w: unsupported format %q", ErrInvalidAttachment, format)
	}
	data, err := decodeAttachment(payload)
	if err != nil {
		return models.VaccinationEntry{}, err
	}

	path, err := service.files.WriteFile(ctx, fmt.Sprintf("attachments/%s.%s", entry.ID, extension), data)
	if err != nil {
		return models.VaccinationEntry{}, err
	}
	if entry.AttachmentPath != "" && entry.AttachmentPath != path {
		if err := service.files.RemoveFile(ctx, entry.AttachmentPath); err != nil {
			log.Printf("vaccinations: remove previous attachment failed: %v", err)
		}
	}

	entry.AttachmentPath = path
	entry.AttachmentType = extension
	entry.UpdatedAt = service.now()
	if err := service.vaccinations.Put(ctx, &entry); err != nil {
		return models.VaccinationEntry{}, err
	}
	return entry, nil
}

// decodeAttachment accepts raw base64 or a data URL.
func decodeAttachment(payload string) ([]byte, error) {
	trimmed := strings.TrimSpace(payload)
	if strings.HasPrefix(trimmed, "data:") {
		if comma := strings.Index(trimmed, ","); comma >= 0 {
			trimmed = trimmed[comma+1:]
		}
	}
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidAttachment)
	}
	data, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAttachment, err)
	}
	return data, nil
}

// VaccinationReminderTimes returns when the due reminder and its follow-up
// fire: 09:00 local on the day before the due date, and 09:00 on the due day.
func VaccinationReminderTimes(due time.Time, location *time.Location) (time.Time, time.Time) {
	day := DateAtLocation(due, location)
	dueMorning := time.Date(day.Year(), day.Month(), day.Day(), vaccinationReminderHour, 0, 0, 0, location)
	return dueMorning.AddDate(0, 0, -1), dueMorning
}

func (service *VaccinationService) planReminders(ctx context.Context, entry models.VaccinationEntry) int {
	cancelQuietly(ctx, service.reminders, entry.ID, "", reminders.SuffixFollowUp)
	if !entry.ReminderEnabled || entry.NextDueDate == nil {
		return 0
	}

	dayBefore, dueDay := VaccinationReminderTimes(*entry.NextDueDate, service.location)
	metadata := map[string]string{
		reminders.MetaKind:      ReminderKindVaccination,
		reminders.MetaEntityID:  entry.ID,
		reminders.MetaProfileID: entry.ProfileID,
		reminders.MetaDueAt:     entry.NextDueDate.Format(time.RFC3339),
	}

	planned := 0
	if scheduleQuietly(ctx, service.reminders, reminders.Reminder{
		ID:       reminders.NotificationID(entry.ID, ""),
		Category: reminders.CategoryVaccination,
		Title:    service.text.render("reminder.vaccination.tomorrow.title", "Vaccination due tomorrow"),
		Body:     service.text.render("reminder.vaccination.tomorrow.body", "%s is due on %s.", entry.VaccineName, dueDay.Format("Jan 2")),
		FireAt:   dayBefore,
		Metadata: metadata,
	}) {
		planned++
	}
	if scheduleQuietly(ctx, service.reminders, reminders.Reminder{
		ID:       reminders.NotificationID(entry.ID, reminders.SuffixFollowUp),
		Category: reminders.CategoryVaccination,
		Title:    service.text.render("reminder.vaccination.today.title", "Vaccination due today"),
		Body:     service.text.render("reminder.vaccination.today.body", "%s is due today.", entry.VaccineName),
		FireAt:   dueDay,
		Metadata: metadata,
	}) {
		planned++
	}
	return planned
}

// PlanReminders re-plans every vaccination with an upcoming due date.
func (service *VaccinationService) PlanReminders(ctx context.Context) (int, error) {
	entries, err := service.vaccinations.GetAll(ctx)
	if err != nil {
		return 0, err
	}
	today := DateAtLocation(schedulerNow(service.reminders), service.location)
	planned := 0
	for _, entry := range entries {
		if entry.NextDueDate == nil || entry.NextDueDate.Before(today) {
			continue
		}
		planned += service.planReminders(ctx, entry)
	}
	return planned, nil
}

func (service *VaccinationService) CancelProfileReminders(ctx context.Context, profileID string) error {
	entries, err := service.vaccinations.ByProfile(ctx, profileID)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		cancelQuietly(ctx, service.reminders, entry.ID, "", reminders.SuffixFollowUp)
	}
	return nil
}
