package services

import (
	"errors"
	"fmt"

	"github.com/terraincognita07/chitra/internal/models"
)

var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrProfileLimitExceeded = errors.New("profile limit exceeded")
	ErrMainProfileExists    = fmt.Errorf("%w: a main profile already exists", ErrProfileLimitExceeded)
	ErrDependentLimit       = fmt.Errorf("%w: at most %d dependent profiles", ErrProfileLimitExceeded, models.MaxDependentProfiles)
	ErrTotalProfileLimit    = fmt.Errorf("%w: at most %d profiles", ErrProfileLimitExceeded, models.MaxProfiles)
	ErrLastProfile          = errors.New("cannot delete the last profile")
	ErrInvalidProfileInput  = errors.New("invalid profile input")

	ErrInvalidPinFormat = errors.New("pin must be exactly 6 digits")
	ErrIncorrectPin     = errors.New("incorrect pin")
	ErrPinNotEnabled    = errors.New("pin is not enabled")

	ErrRecordNotFound      = errors.New("record not found")
	ErrInvalidRecordInput  = errors.New("invalid record input")
	ErrInvalidPreferences  = errors.New("invalid preferences")
	ErrInvalidAttachment   = errors.New("invalid attachment")
	ErrStorageFolderNotSet = errors.New("storage folder not set")
	ErrInvalidImport       = errors.New("invalid import payload")
)

var validationErrors = []error{
	ErrProfileLimitExceeded,
	ErrLastProfile,
	ErrInvalidProfileInput,
	ErrInvalidPinFormat,
	ErrIncorrectPin,
	ErrPinNotEnabled,
	ErrInvalidRecordInput,
	ErrInvalidPreferences,
	ErrInvalidAttachment,
	ErrStorageFolderNotSet,
	ErrInvalidImport,
}

// IsValidationError reports whether err is a recoverable input problem the
// caller should surface as a structured failure.
func IsValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrProfileNotFound) || errors.Is(err, ErrRecordNotFound)
}

// IsConflict marks validation failures caused by current state rather than by
// malformed input.
func IsConflict(err error) bool {
	return errors.Is(err, ErrProfileLimitExceeded) || errors.Is(err, ErrLastProfile)
}
