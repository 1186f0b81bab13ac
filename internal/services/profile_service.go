package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/terraincognita07/chitra/internal/models"
	"github.com/terraincognita07/chitra/internal/security"
)

const maxProfileNameRunes = 64

type ProfileRepository interface {
	Get(ctx context.Context, id string) (models.Profile, bool, error)
	GetAll(ctx context.Context) ([]models.Profile, error)
	Put(ctx context.Context, record *models.Profile) error
}

type ProfileCascadeDeleter interface {
	DeleteProfileCascade(ctx context.Context, profileID string) error
}

type ActiveProfileStore interface {
	ActiveProfileID() string
	SetActiveProfileID(ctx context.Context, profileID string) error
}

// ProfileReminderCanceller drops the pending reminders a profile owns in one
// domain.
type ProfileReminderCanceller interface {
	CancelProfileReminders(ctx context.Context, profileID string) error
}

type ProfileInput struct {
	Name               string     `json:"name"`
	Type               string     `json:"type"`
	Avatar             string     `json:"avatar"`
	Gender             string     `json:"gender"`
	DateOfBirth        *time.Time `json:"dateOfBirth"`
	Mode               string     `json:"mode"`
	PregnancyStartDate *time.Time `json:"pregnancyStartDate"`
	ExpectedDueDate    *time.Time `json:"expectedDueDate"`
}

type ProfileUpdate struct {
	Name               *string    `json:"name"`
	Type               *string    `json:"type"`
	Avatar             *string    `json:"avatar"`
	Gender             *string    `json:"gender"`
	DateOfBirth        *time.Time `json:"dateOfBirth"`
	Mode               *string    `json:"mode"`
	PregnancyStartDate *time.Time `json:"pregnancyStartDate"`
	ExpectedDueDate    *time.Time `json:"expectedDueDate"`
}

type ProfileService struct {
	profiles   ProfileRepository
	cascade    ProfileCascadeDeleter
	active     ActiveProfileStore
	cancellers []ProfileReminderCanceller
	now        func() time.Time
}

func NewProfileService(profiles ProfileRepository, cascade ProfileCascadeDeleter, active ActiveProfileStore) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		cascade:  cascade,
		active:   active,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (service *ProfileService) AddReminderCanceller(canceller ProfileReminderCanceller) {
	service.cancellers = append(service.cancellers, canceller)
}

// ListProfiles returns the main profile first, then the rest by creation time.
func (service *ProfileService) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	profiles, err := service.profiles.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	sortProfiles(profiles)
	return profiles, nil
}

func sortProfiles(profiles []models.Profile) {
	sort.SliceStable(profiles, func(i, j int) bool {
		if profiles[i].IsMain() != profiles[j].IsMain() {
			return profiles[i].IsMain()
		}
		return profiles[i].CreatedAt.Before(profiles[j].CreatedAt)
	})
}

// GetActiveProfile resolves the stored active id, falling back to the first
// listed profile when the id is unset or dangling. It returns nil when no
// profiles exist.
func (service *ProfileService) GetActiveProfile(ctx context.Context) (*models.Profile, error) {
	profiles, err := service.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, nil
	}

	activeID := service.active.ActiveProfileID()
	for index := range profiles {
		if profiles[index].ID == activeID {
			return &profiles[index], nil
		}
	}
	return &profiles[0], nil
}

// SetActiveProfile stores the id as-is; readers re-resolve it.
func (service *ProfileService) SetActiveProfile(ctx context.Context, profileID string) error {
	return service.active.SetActiveProfileID(ctx, profileID)
}

func (service *ProfileService) ValidateAdd(ctx context.Context, profileType string) error {
	profiles, err := service.profiles.GetAll(ctx)
	if err != nil {
		return err
	}
	return validateProfileAddition(profiles, profileType)
}

func validateProfileAddition(existing []models.Profile, profileType string) error {
	if !models.IsValidProfileType(profileType) {
		return fmt.Errorf("%w: type %q", ErrInvalidProfileInput, profileType)
	}

	mains, dependents := countProfileTypes(existing)
	switch {
	case len(existing)+1 > models.MaxProfiles:
		return ErrTotalProfileLimit
	case profileType == models.ProfileTypeMain && mains > 0:
		return ErrMainProfileExists
	case profileType == models.ProfileTypeDependent && dependents >= models.MaxDependentProfiles:
		return ErrDependentLimit
	}
	return nil
}

func countProfileTypes(profiles []models.Profile) (int, int) {
	mains, dependents := 0, 0
	for _, profile := range profiles {
		if profile.IsMain() {
			mains++
		} else {
			dependents++
		}
	}
	return mains, dependents
}

func (service *ProfileService) AddProfile(ctx context.Context, input ProfileInput) (models.Profile, error) {
	name, err := normalizeProfileName(input.Name)
	if err != nil {
		return models.Profile{}, err
	}
	mode := strings.TrimSpace(input.Mode)
	if mode == "" {
		mode = models.ProfileModeNormal
	}
	if !models.IsValidProfileMode(mode) {
		return models.Profile{}, fmt.Errorf("%w: mode %q", ErrInvalidProfileInput, mode)
	}
	if err := service.ValidateAdd(ctx, input.Type); err != nil {
		return models.Profile{}, err
	}

	avatar := strings.TrimSpace(input.Avatar)
	if avatar == "" {
		avatar = randomAvatar()
	}

	now := service.now()
	profile := models.Profile{
		ID:                 uuid.NewString(),
		Name:               name,
		Type:               input.Type,
		Avatar:             avatar,
		Gender:             strings.TrimSpace(input.Gender),
		DateOfBirth:        input.DateOfBirth,
		Mode:               mode,
		PregnancyStartDate: input.PregnancyStartDate,
		ExpectedDueDate:    input.ExpectedDueDate,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := service.profiles.Put(ctx, &profile); err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

// UpdateProfile applies the non-nil fields. A type change is checked against
// the limits as if the profile were being added with its new type.
func (service *ProfileService) UpdateProfile(ctx context.Context, profileID string, update ProfileUpdate) (models.Profile, error) {
	profiles, err := service.profiles.GetAll(ctx)
	if err != nil {
		return models.Profile{}, err
	}

	var current *models.Profile
	others := make([]models.Profile, 0, len(profiles))
	for index := range profiles {
		if profiles[index].ID == profileID {
			current = &profiles[index]
			continue
		}
		others = append(others, profiles[index])
	}
	if current == nil {
		return models.Profile{}, ErrProfileNotFound
	}

	next := *current
	if update.Name != nil {
		name, err := normalizeProfileName(*update.Name)
		if err != nil {
			return models.Profile{}, err
		}
		next.Name = name
	}
	if update.Type != nil && *update.Type != current.Type {
		if err := validateProfileAddition(others, *update.Type); err != nil {
			return models.Profile{}, err
		}
		next.Type = *update.Type
	}
	if update.Mode != nil {
		if !models.IsValidProfileMode(*update.Mode) {
			return models.Profile{}, fmt.Errorf("%w: mode %q", ErrInvalidProfileInput, *update.Mode)
		}
		next.Mode = *update.Mode
	}
	if update.Avatar != nil {
		next.Avatar = strings.TrimSpace(*update.Avatar)
	}
	if update.Gender != nil {
		next.Gender = strings.TrimSpace(*update.Gender)
	}
	if update.DateOfBirth != nil {
		next.DateOfBirth = update.DateOfBirth
	}
	if update.PregnancyStartDate != nil {
		next.PregnancyStartDate = update.PregnancyStartDate
	}
	if update.ExpectedDueDate != nil {
		next.ExpectedDueDate = update.ExpectedDueDate
	}
	next.UpdatedAt = service.now()

	if err := service.profiles.Put(ctx, &next); err != nil {
		return models.Profile{}, err
	}
	return next, nil
}

// DeleteProfile removes the profile together with everything it owns. The
// last remaining profile cannot be deleted.
func (service *ProfileService) DeleteProfile(ctx context.Context, profileID string) error {
	profiles, err := service.ListProfiles(ctx)
	if err != nil {
		return err
	}

	found := false
	for _, profile := range profiles {
		if profile.ID == profileID {
			found = true
			break
		}
	}
	if !found {
		return ErrProfileNotFound
	}
	if len(profiles) <= 1 {
		return ErrLastProfile
	}

	for _, canceller := range service.cancellers {
		if err := canceller.CancelProfileReminders(ctx, profileID); err != nil {
			log.Printf("profiles: cancel reminders for %s failed: %v", profileID, err)
		}
	}

	if err := service.cascade.DeleteProfileCascade(ctx, profileID); err != nil {
		return err
	}

	if service.active.ActiveProfileID() == profileID {
		for _, profile := range profiles {
			if profile.ID != profileID {
				return service.active.SetActiveProfileID(ctx, profile.ID)
			}
		}
	}
	return nil
}

func normalizeProfileName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidProfileInput)
	}
	if utf8.RuneCountInString(name) > maxProfileNameRunes {
		return "", fmt.Errorf("%w: name longer than %d characters", ErrInvalidProfileInput, maxProfileNameRunes)
	}
	return name, nil
}

func randomAvatar() string {
	avatars := models.ProfileAvatars()
	index, err := security.RandomIndex(len(avatars))
	if err != nil {
		return avatars[0]
	}
	return avatars[index]
}
