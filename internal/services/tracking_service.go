package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/chitra/internal/models"
)

// RecordCollection is the slice of the record store a domain service needs
// for one profile-scoped collection.
type RecordCollection[T any] interface {
	Get(ctx context.Context, id string) (T, bool, error)
	GetAll(ctx context.Context) ([]T, error)
	GetAllByIndex(ctx context.Context, index string, key any) ([]T, error)
	ByProfile(ctx context.Context, profileID string) ([]T, error)
	ByDateRange(ctx context.Context, profileID string, from *time.Time, to *time.Time) ([]T, error)
	Put(ctx context.Context, record *T) error
	Delete(ctx context.Context, id string) error
}

type CycleInput struct {
	StartDate     time.Time  `json:"startDate"`
	EndDate       *time.Time `json:"endDate"`
	FlowIntensity string     `json:"flowIntensity"`
	Symptoms      []string   `json:"symptoms"`
	Notes         string     `json:"notes"`
}

type WeightInput struct {
	Date   time.Time `json:"date"`
	Weight float64   `json:"weight"`
	Unit   string    `json:"unit"`
	Notes  string    `json:"notes"`
}

type CheckInInput struct {
	Date     time.Time `json:"date"`
	Mood     string    `json:"mood"`
	Energy   int       `json:"energy"`
	Symptoms []string  `json:"symptoms"`
	Notes    string    `json:"notes"`
}

type ScreenTimeInput struct {
	Date     time.Time `json:"date"`
	Minutes  int       `json:"minutes"`
	Category string    `json:"category"`
	Notes    string    `json:"notes"`
}

type TrackingService struct {
	cycles     RecordCollection[models.CycleEntry]
	weights    RecordCollection[models.WeightEntry]
	checkIns   RecordCollection[models.DailyCheckIn]
	screenTime RecordCollection[models.ScreenTimeEntry]
	points     PointsAwarder
	location   *time.Location
	now        func() time.Time
}

func NewTrackingService(
	cycles RecordCollection[models.CycleEntry],
	weights RecordCollection[models.WeightEntry],
	checkIns RecordCollection[models.DailyCheckIn],
	screenTime RecordCollection[models.ScreenTimeEntry],
	points PointsAwarder,
	location *time.Location,
) *TrackingService {
	if location == nil {
		location = time.UTC
	}
	return &TrackingService{
		cycles:     cycles,
		weights:    weights,
		checkIns:   checkIns,
		screenTime: screenTime,
		points:     points,
		location:   location,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (service *TrackingService) award(ctx context.Context) {
	if service.points != nil {
		service.points.Award(ctx, service.now())
	}
}

func (service *TrackingService) ListCycles(ctx context.Context, profileID string, from *time.Time, to *time.Time) ([]models.CycleEntry, error) {
	return service.cycles.ByDateRange(ctx, profileID, from, to)
}

func (service *TrackingService) SaveCycle(ctx context.Context, profileID string, cycleID string, input CycleInput) (models.CycleEntry, error) {
	if err := requireProfileID(profileID); err != nil {
		return models.CycleEntry{}, err
	}
	if input.StartDate.IsZero() {
		return models.CycleEntry{}, fmt.Errorf("%w: start date is required", ErrInvalidRecordInput)
	}
	if input.EndDate != nil && input.EndDate.Before(input.StartDate) {
		return models.CycleEntry{}, fmt.Errorf("%w: end date before start date", ErrInvalidRecordInput)
	}
	flow := strings.TrimSpace(input.FlowIntensity)
	if flow == "" {
		flow = models.FlowNone
	}
	if !models.IsValidFlow(flow) {
		return models.CycleEntry{}, fmt.Errorf("%w: flow %q", ErrInvalidRecordInput, flow)
	}

	now := service.now()
	entry := models.CycleEntry{
		ID:            cycleID,
		ProfileID:     profileID,
		StartDate:     DateAtLocation(input.StartDate, service.location),
		FlowIntensity: flow,
		Symptoms:      normalizeTags(input.Symptoms),
		Notes:         strings.TrimSpace(input.Notes),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if input.EndDate != nil {
		endDate := DateAtLocation(*input.EndDate, service.location)
		entry.EndDate = &endDate
	}

	created, err := resolveRecordIdentity(ctx, service.cycles, &entry.ID, &entry.CreatedAt, profileID, func(existing models.CycleEntry) (string, time.Time) {
		return existing.ProfileID, existing.CreatedAt
	})
	if err != nil {
		return models.CycleEntry{}, err
	}
	if err := service.cycles.Put(ctx, &entry); err != nil {
		return models.CycleEntry{}, err
	}
	if created {
		service.award(ctx)
	}
	return entry, nil
}

func (service *TrackingService) DeleteCycle(ctx context.Context, profileID string, cycleID string) error {
	return deleteOwnedRecord(ctx, service.cycles, profileID, cycleID, func(entry models.CycleEntry) string { return entry.ProfileID })
}

func (service *TrackingService) CycleSummary(ctx context.Context, profileID string) (CycleSummary, error) {
	entries, err := service.cycles.ByProfile(ctx, profileID)
	if err != nil {
		return CycleSummary{}, err
	}
	return BuildCycleSummary(entries, service.now().In(service.location)), nil
}

func (service *TrackingService) ListWeights(ctx context.Context, profileID string, from *time.Time, to *time.Time) ([]models.WeightEntry, error) {
	return service.weights.ByDateRange(ctx, profileID, from, to)
}

func (service *TrackingService) AddWeight(ctx context.Context, profileID string, input WeightInput) (models.WeightEntry, error) {
	if err := requireProfileID(profileID); err != nil {
		return models.WeightEntry{}, err
	}
	if input.Date.IsZero() {
		return models.WeightEntry{}, fmt.Errorf("%w: date is required", ErrInvalidRecordInput)
	}
	if input.Weight <= 0 {
		return models.WeightEntry{}, fmt.Errorf("%w: weight must be positive", ErrInvalidRecordInput)
	}
	unit := strings.ToLower(strings.TrimSpace(input.Unit))
	if unit == "" {
		unit = models.WeightUnitKG
	}
	if unit != models.WeightUnitKG && unit != models.WeightUnitLB {
		return models.WeightEntry{}, fmt.Errorf("%w: unit %q", ErrInvalidRecordInput, input.Unit)
	}

	now := service.now()
	entry := models.WeightEntry{
		ID:        uuid.NewString(),
		ProfileID: profileID,
		Date:      DateAtLocation(input.Date, service.location),
		Weight:    input.Weight,
		Unit:      unit,
		Notes:     strings.TrimSpace(input.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := service.weights.Put(ctx, &entry); err != nil {
		return models.WeightEntry{}, err
	}
	service.award(ctx)
	return entry, nil
}

func (service *TrackingService) DeleteWeight(ctx context.Context, profileID string, weightID string) error {
	return deleteOwnedRecord(ctx, service.weights, profileID, weightID, func(entry models.WeightEntry) string { return entry.ProfileID })
}

func (service *TrackingService) WeightTrend(ctx context.Context, profileID string, days int, unit string) (WeightTrend, bool, error) {
	if days <= 0 {
		days = 30
	}
	entries, err := service.weights.ByProfile(ctx, profileID)
	if err != nil {
		return WeightTrend{}, false, err
	}
	trend, ok := BuildWeightTrend(entries, days, unit)
	return trend, ok, nil
}

func (service *TrackingService) ListCheckIns(ctx context.Context, profileID string, from *time.Time, to *time.Time) ([]models.DailyCheckIn, error) {
	return service.checkIns.ByDateRange(ctx, profileID, from, to)
}

// SaveCheckIn keeps at most one check-in per profile and day; saving again on
// the same day replaces the earlier record under its id.
func (service *TrackingService) SaveCheckIn(ctx context.Context, profileID string, input CheckInInput) (models.DailyCheckIn, error) {
	if err := requireProfileID(profileID); err != nil {
		return models.DailyCheckIn{}, err
	}
	if input.Date.IsZero() {
		return models.DailyCheckIn{}, fmt.Errorf("%w: date is required", ErrInvalidRecordInput)
	}
	if input.Energy < 0 || input.Energy > 5 {
		return models.DailyCheckIn{}, fmt.Errorf("%w: energy must be between 0 and 5", ErrInvalidRecordInput)
	}

	dayStart, dayEnd := DayRange(input.Date, service.location)
	existing, err := service.checkIns.ByDateRange(ctx, profileID, &dayStart, &dayEnd)
	if err != nil {
		return models.DailyCheckIn{}, err
	}

	now := service.now()
	entry := models.DailyCheckIn{
		ID:        uuid.NewString(),
		ProfileID: profileID,
		Date:      dayStart,
		Mood:      strings.TrimSpace(input.Mood),
		Energy:    input.Energy,
		Symptoms:  normalizeTags(input.Symptoms),
		Notes:     strings.TrimSpace(input.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if len(existing) > 0 {
		entry.ID = existing[0].ID
		entry.CreatedAt = existing[0].CreatedAt
	}
	if err := service.checkIns.Put(ctx, &entry); err != nil {
		return models.DailyCheckIn{}, err
	}
	if len(existing) == 0 {
		service.award(ctx)
	}
	return entry, nil
}

func (service *TrackingService) DeleteCheckIn(ctx context.Context, profileID string, checkInID string) error {
	return deleteOwnedRecord(ctx, service.checkIns, profileID, checkInID, func(entry models.DailyCheckIn) string { return entry.ProfileID })
}

func (service *TrackingService) ListScreenTime(ctx context.Context, profileID string, from *time.Time, to *time.Time) ([]models.ScreenTimeEntry, error) {
	return service.screenTime.ByDateRange(ctx, profileID, from, to)
}

func (service *TrackingService) AddScreenTime(ctx context.Context, profileID string, input ScreenTimeInput) (models.ScreenTimeEntry, error) {
	if err := requireProfileID(profileID); err != nil {
		return models.ScreenTimeEntry{}, err
	}
	if input.Date.IsZero() {
		return models.ScreenTimeEntry{}, fmt.Errorf("%w: date is required", ErrInvalidRecordInput)
	}
	if input.Minutes <= 0 || input.Minutes > 24*60 {
		return models.ScreenTimeEntry{}, fmt.Errorf("%w: minutes must be between 1 and 1440", ErrInvalidRecordInput)
	}

	now := service.now()
	entry := models.ScreenTimeEntry{
		ID:        uuid.NewString(),
		ProfileID: profileID,
		Date:      DateAtLocation(input.Date, service.location),
		Minutes:   input.Minutes,
		Category:  strings.TrimSpace(input.Category),
		Notes:     strings.TrimSpace(input.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := service.screenTime.Put(ctx, &entry); err != nil {
		return models.ScreenTimeEntry{}, err
	}
	service.award(ctx)
	return entry, nil
}

func (service *TrackingService) DeleteScreenTime(ctx context.Context, profileID string, entryID string) error {
	return deleteOwnedRecord(ctx, service.screenTime, profileID, entryID, func(entry models.ScreenTimeEntry) string { return entry.ProfileID })
}

func (service *TrackingService) DailyScreenTime(ctx context.Context, profileID string, day time.Time) (int, error) {
	dayStart, dayEnd := DayRange(day, service.location)
	entries, err := service.screenTime.ByDateRange(ctx, profileID, &dayStart, &dayEnd)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, entry := range entries {
		total += entry.Minutes
	}
	return total, nil
}

func requireProfileID(profileID string) error {
	if strings.TrimSpace(profileID) == "" {
		return fmt.Errorf("%w: profile id is required", ErrInvalidRecordInput)
	}
	return nil
}

func normalizeTags(values []string) []string {
	tags := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		tag := strings.TrimSpace(value)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// resolveRecordIdentity assigns a fresh id when id is empty, or checks that
// the existing record belongs to profileID and keeps its creation time. It
// reports whether the record is new.
func resolveRecordIdentity[T any](
	ctx context.Context,
	collection RecordCollection[T],
	id *string,
	createdAt *time.Time,
	profileID string,
	owner func(T) (string, time.Time),
) (bool, error) {
	if *id == "" {
		*id = uuid.NewString()
		return true, nil
	}
	existing, found, err := collection.Get(ctx, *id)
	if err != nil {
		return false, err
	}
	if !found {
		return false, ErrRecordNotFound
	}
	existingProfileID, existingCreatedAt := owner(existing)
	if existingProfileID != profileID {
		return false, ErrRecordNotFound
	}
	*createdAt = existingCreatedAt
	return false, nil
}

func deleteOwnedRecord[T any](ctx context.Context, collection RecordCollection[T], profileID string, id string, owner func(T) string) error {
	existing, found, err := collection.Get(ctx, id)
	if err != nil {
		return err
	}
	if !found || owner(existing) != profileID {
		return ErrRecordNotFound
	}
	return collection.Delete(ctx, id)
}
