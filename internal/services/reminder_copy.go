package services

import "fmt"

// ReminderCopy renders reminder text in a given language.
type ReminderCopy interface {
	Translatef(language string, key string, args ...any) string
}

// reminderText renders the built-in English text until a catalog is
// attached.
type reminderText struct {
	catalog  ReminderCopy
	language func() string
}

func (text reminderText) render(key string, fallback string, args ...any) string {
	if text.catalog == nil {
		return fmt.Sprintf(fallback, args...)
	}
	language := ""
	if text.language != nil {
		language = text.language()
	}
	return text.catalog.Translatef(language, key, args...)
}
