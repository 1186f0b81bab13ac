package reminders

import "unicode/utf16"

const (
	SuffixFollowUp = "_followup"
	SuffixSnooze   = "_snooze"
)

// NotificationID derives the numeric id of a reminder from its owning entity
// id and an optional suffix. The hash is the classic 31-multiplier string hash
// over UTF-16 code units, masked to a non-negative int32, so the same input
// always yields the same id on every platform.
func NotificationID(entityID string, suffix string) int32 {
	var hash int32
	for _, unit := range utf16.Encode([]rune(entityID + suffix)) {
		hash = 31*hash + int32(unit)
	}
	return hash & 0x7fffffff
}
