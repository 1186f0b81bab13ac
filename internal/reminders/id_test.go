package reminders

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestNotificationIDKnownValues(t *testing.T) {
	cases := map[string]int32{
		"":    0,
		"a":   97,
		"ab":  97*31 + 98,
		"abc": (97*31+98)*31 + 99,
	}
	for input, expected := range cases {
		if got := NotificationID(input, ""); got != expected {
			t.Fatalf("NotificationID(%q) = %d, expected %d", input, got, expected)
		}
	}
}

func TestNotificationIDSuffixDistinguishesFollowUp(t *testing.T) {
	base := NotificationID("vax-1", "")
	followUp := NotificationID("vax-1", SuffixFollowUp)
	if base == followUp {
		t.Fatalf("expected follow-up id to differ from base id %d", base)
	}
	if followUp != NotificationID("vax-1_followup", "") {
		t.Fatal("expected suffix to behave as plain concatenation")
	}
}

func TestNotificationIDProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("deterministic and non-negative", prop.ForAll(
		func(entityID string, suffix string) bool {
			first := NotificationID(entityID, suffix)
			second := NotificationID(entityID, suffix)
			return first == second && first >= 0
		},
		gen.AnyString(),
		gen.OneConstOf("", SuffixFollowUp, SuffixSnooze),
	))

	properties.TestingRun(t)
}
