package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/terraincognita07/chitra/internal/models"
	"github.com/terraincognita07/chitra/internal/reminders"
)

func TestDosePlan(t *testing.T) {
	schedule := models.MedicineSchedule{
		TimesPerDay:   3,
		IntervalHours: 6,
		TotalDays:     2,
		StartDate:     mustTime(t, "2026-06-01T08:00:00Z"),
	}

	doses := DosePlan(schedule)
	want := []string{
		"2026-06-01T08:00:00Z", "2026-06-01T14:00:00Z", "2026-06-01T20:00:00Z",
		"2026-06-02T08:00:00Z", "2026-06-02T14:00:00Z", "2026-06-02T20:00:00Z",
	}
	if len(doses) != len(want) {
		t.Fatalf("expected %d doses, got %d", len(want), len(doses))
	}
	for index, raw := range want {
		if !doses[index].Equal(mustTime(t, raw)) {
			t.Fatalf("dose %d = %s, want %s", index, doses[index], raw)
		}
	}

	next, ok := NextDose(schedule, mustTime(t, "2026-06-01T08:00:00Z"))
	if !ok || !next.Equal(mustTime(t, "2026-06-01T14:00:00Z")) {
		t.Fatalf("expected next dose strictly after 08:00, got %s ok=%v", next, ok)
	}
	if _, ok := NextDose(schedule, mustTime(t, "2026-06-02T20:00:00Z")); ok {
		t.Fatalf("expected no dose after the course ends")
	}
}

func newMedicineServiceForTest(t *testing.T, now string) (*MedicineService, *stubScheduler, *countingAwarder) {
	t.Helper()
	store := openServiceStore(t)
	scheduler := newStubScheduler(mustTime(t, now))
	awarder := &countingAwarder{}
	return NewMedicineService(store.MedicineSchedules, store.MedicineLogs, scheduler, awarder), scheduler, awarder
}

func saveTestMedicine(t *testing.T, service *MedicineService) models.MedicineSchedule {
	t.Helper()
	schedule, err := service.SaveSchedule(context.Background(), "p1", "", MedicineScheduleInput{
		MedicineName:  "Iron",
		Dosage:        "1 tablet",
		TimesPerDay:   3,
		IntervalHours: 6,
		TotalDays:     2,
		StartDate:     mustTime(t, "2026-06-01T08:00:00Z"),
	})
	if err != nil {
		t.Fatalf("save schedule: %v", err)
	}
	return schedule
}

func TestSaveSchedulePlansDoseAndFollowUp(t *testing.T) {
	service, scheduler, _ := newMedicineServiceForTest(t, "2026-06-01T07:00:00Z")
	schedule := saveTestMedicine(t, service)

	base, ok := scheduler.pendingFor(schedule.ID, "")
	if !ok || !base.FireAt.Equal(mustTime(t, "2026-06-01T08:00:00Z")) {
		t.Fatalf("expected dose reminder at 08:00, got %#v ok=%v", base, ok)
	}
	followUp, ok := scheduler.pendingFor(schedule.ID, reminders.SuffixFollowUp)
	if !ok || !followUp.FireAt.Equal(mustTime(t, "2026-06-01T08:15:00Z")) {
		t.Fatalf("expected follow-up at 08:15, got %#v ok=%v", followUp, ok)
	}
	if base.ActionType != reminders.ActionTypeMedicine || base.Metadata[reminders.MetaKind] != ReminderKindMedicine {
		t.Fatalf("unexpected reminder routing data: %#v", base)
	}

	if _, err := service.SaveSchedule(context.Background(), "p1", "", MedicineScheduleInput{
		MedicineName: "Bad", TimesPerDay: 4, IntervalHours: 8, TotalDays: 1, StartDate: mustTime(t, "2026-06-01T08:00:00Z"),
	}); !errors.Is(err, ErrInvalidRecordInput) {
		t.Fatalf("expected doses that overflow a day to be rejected, got %v", err)
	}
}

func TestApplyActionTakenPlansNextDose(t *testing.T) {
	service, scheduler, awarder := newMedicineServiceForTest(t, "2026-06-01T07:00:00Z")
	ctx := context.Background()
	schedule := saveTestMedicine(t, service)

	scheduler.setNow(mustTime(t, "2026-06-01T08:05:00Z"))
	entry, err := service.ApplyAction(ctx, "p1", schedule.ID, MedicineActionTaken, mustTime(t, "2026-06-01T08:00:00Z"))
	if err != nil {
		t.Fatalf("apply taken: %v", err)
	}
	if entry.Status != models.MedicineStatusTaken {
		t.Fatalf("expected taken log, got %#v", entry)
	}

	base, ok := scheduler.pendingFor(schedule.ID, "")
	if !ok || !base.FireAt.Equal(mustTime(t, "2026-06-01T14:00:00Z")) {
		t.Fatalf("expected next dose at 14:00, got %#v ok=%v", base, ok)
	}
	followUp, ok := scheduler.pendingFor(schedule.ID, reminders.SuffixFollowUp)
	if !ok || !followUp.FireAt.Equal(mustTime(t, "2026-06-01T14:15:00Z")) {
		t.Fatalf("expected follow-up moved to 14:15, got %#v ok=%v", followUp, ok)
	}
	if awarder.awarded() != 1 {
		t.Fatalf("expected a care point for a taken dose, got %d", awarder.awarded())
	}

	logs, err := service.ListLogs(ctx, "p1", schedule.ID)
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected one log, got %d", len(logs))
	}
	schedules, err := service.ListSchedules(ctx, "p1")
	if err != nil {
		t.Fatalf("list schedules: %v", err)
	}
	if schedules[0].RemindersSent != 1 {
		t.Fatalf("expected remindersSent 1, got %d", schedules[0].RemindersSent)
	}
}

func TestApplyActionSnoozeAndSkip(t *testing.T) {
	service, scheduler, awarder := newMedicineServiceForTest(t, "2026-06-01T07:00:00Z")
	ctx := context.Background()
	schedule := saveTestMedicine(t, service)

	scheduler.setNow(mustTime(t, "2026-06-01T08:02:00Z"))
	if _, err := service.ApplyAction(ctx, "p1", schedule.ID, MedicineActionSnooze30, mustTime(t, "2026-06-01T08:00:00Z")); err != nil {
		t.Fatalf("apply snooze: %v", err)
	}
	snoozed, ok := scheduler.pendingFor(schedule.ID, reminders.SuffixSnooze)
	if !ok || !snoozed.FireAt.Equal(mustTime(t, "2026-06-01T08:32:00Z")) {
		t.Fatalf("expected snooze at 08:32, got %#v ok=%v", snoozed, ok)
	}
	if _, ok := scheduler.pendingFor(schedule.ID, reminders.SuffixFollowUp); ok {
		t.Fatalf("expected follow-up cancelled by snooze")
	}

	scheduler.setNow(mustTime(t, "2026-06-01T08:33:00Z"))
	entry, err := service.ApplyAction(ctx, "p1", schedule.ID, MedicineActionSkip, mustTime(t, "2026-06-01T08:00:00Z"))
	if err != nil {
		t.Fatalf("apply skip: %v", err)
	}
	if entry.Status != models.MedicineStatusSkipped {
		t.Fatalf("expected skipped log, got %#v", entry)
	}
	if _, ok := scheduler.pendingFor(schedule.ID, reminders.SuffixSnooze); ok {
		t.Fatalf("expected snooze cancelled by skip")
	}
	if base, ok := scheduler.pendingFor(schedule.ID, ""); !ok || !base.FireAt.Equal(mustTime(t, "2026-06-01T14:00:00Z")) {
		t.Fatalf("expected next dose at 14:00 after skip, got %#v ok=%v", base, ok)
	}
	if awarder.awarded() != 0 {
		t.Fatalf("expected no care points for snooze or skip, got %d", awarder.awarded())
	}

	if _, err := service.ApplyAction(ctx, "p1", schedule.ID, "dance", mustTime(t, "2026-06-01T08:00:00Z")); !errors.Is(err, ErrInvalidRecordInput) {
		t.Fatalf("expected unknown action rejected, got %v", err)
	}
}

func TestHandleActionUsesReminderMetadata(t *testing.T) {
	service, scheduler, _ := newMedicineServiceForTest(t, "2026-06-01T07:00:00Z")
	schedule := saveTestMedicine(t, service)

	base, ok := scheduler.pendingFor(schedule.ID, "")
	if !ok {
		t.Fatalf("expected a pending dose reminder")
	}
	scheduler.setNow(mustTime(t, "2026-06-01T08:01:00Z"))

	router := NewActionRouter()
	router.Register(ReminderKindMedicine, service.HandleAction)
	if err := router.Handle(context.Background(), reminders.Action{
		ActionID:       MedicineActionTaken,
		NotificationID: base.ID,
		Metadata:       base.Metadata,
	}); err != nil {
		t.Fatalf("route action: %v", err)
	}

	logs, err := service.ListLogs(context.Background(), "p1", schedule.ID)
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}
	if len(logs) != 1 || !logs[0].ScheduledFor.Equal(mustTime(t, "2026-06-01T08:00:00Z")) {
		t.Fatalf("expected log for the 08:00 dose, got %#v", logs)
	}
}

func TestPlanRemindersDoesNotRepeatEarlyDose(t *testing.T) {
	service, scheduler, _ := newMedicineServiceForTest(t, "2026-06-01T07:00:00Z")
	ctx := context.Background()
	schedule := saveTestMedicine(t, service)

	scheduler.setNow(mustTime(t, "2026-06-01T07:30:00Z"))
	if _, err := service.ApplyAction(ctx, "p1", schedule.ID, MedicineActionTaken, mustTime(t, "2026-06-01T08:00:00Z")); err != nil {
		t.Fatalf("take dose early: %v", err)
	}

	scheduler.setNow(mustTime(t, "2026-06-01T07:40:00Z"))
	if _, err := service.PlanReminders(ctx); err != nil {
		t.Fatalf("plan reminders: %v", err)
	}
	base, ok := scheduler.pendingFor(schedule.ID, "")
	if !ok || !base.FireAt.Equal(mustTime(t, "2026-06-01T14:00:00Z")) {
		t.Fatalf("expected sweep to keep 14:00, got %#v ok=%v", base, ok)
	}
}

func TestPauseAndDeleteSchedule(t *testing.T) {
	service, scheduler, _ := newMedicineServiceForTest(t, "2026-06-01T07:00:00Z")
	ctx := context.Background()
	schedule := saveTestMedicine(t, service)

	if _, err := service.SetPaused(ctx, "p1", schedule.ID, true); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if scheduler.pendingCount() != 0 {
		t.Fatalf("expected pause to cancel reminders, got %d pending", scheduler.pendingCount())
	}
	if _, err := service.SetPaused(ctx, "p1", schedule.ID, false); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if _, ok := scheduler.pendingFor(schedule.ID, ""); !ok {
		t.Fatalf("expected resume to plan the next dose")
	}

	if _, err := service.ApplyAction(ctx, "p1", schedule.ID, MedicineActionTaken, mustTime(t, "2026-06-01T08:00:00Z")); err != nil {
		t.Fatalf("take dose: %v", err)
	}
	if err := service.DeleteSchedule(ctx, "p2", schedule.ID); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected foreign delete rejected, got %v", err)
	}
	if err := service.DeleteSchedule(ctx, "p1", schedule.ID); err != nil {
		t.Fatalf("delete schedule: %v", err)
	}
	if scheduler.pendingCount() != 0 {
		t.Fatalf("expected no reminders after delete, got %d", scheduler.pendingCount())
	}
	if _, err := service.ListLogs(ctx, "p1", schedule.ID); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected schedule gone, got %v", err)
	}
}

func TestSweepInsideFollowUpWindowKeepsNagForOpenDose(t *testing.T) {
	service, scheduler, _ := newMedicineServiceForTest(t, "2026-06-01T07:00:00Z")
	ctx := context.Background()
	schedule := saveTestMedicine(t, service)

	scheduler.setNow(mustTime(t, "2026-06-01T08:05:00Z"))
	if _, err := service.PlanReminders(ctx); err != nil {
		t.Fatalf("plan reminders: %v", err)
	}
	base, ok := scheduler.pendingFor(schedule.ID, "")
	if !ok || !base.FireAt.Equal(mustTime(t, "2026-06-01T14:00:00Z")) {
		t.Fatalf("expected next dose at 14:00, got %#v ok=%v", base, ok)
	}
	followUp, ok := scheduler.pendingFor(schedule.ID, reminders.SuffixFollowUp)
	if !ok || !followUp.FireAt.Equal(mustTime(t, "2026-06-01T08:15:00Z")) {
		t.Fatalf("expected follow-up kept at 08:15, got %#v ok=%v", followUp, ok)
	}
	if followUp.Metadata[reminders.MetaDueAt] != "2026-06-01T08:00:00Z" {
		t.Fatalf("expected follow-up to answer the 08:00 dose, got %q", followUp.Metadata[reminders.MetaDueAt])
	}

	if _, err := service.SetPaused(ctx, "p1", schedule.ID, true); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if _, err := service.SetPaused(ctx, "p1", schedule.ID, false); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if followUp, ok := scheduler.pendingFor(schedule.ID, reminders.SuffixFollowUp); !ok || !followUp.FireAt.Equal(mustTime(t, "2026-06-01T08:15:00Z")) {
		t.Fatalf("expected resume inside the window to keep 08:15, got %#v ok=%v", followUp, ok)
	}

	entry, err := service.ApplyAction(ctx, "p1", schedule.ID, MedicineActionTaken, time.Time{})
	if err != nil {
		t.Fatalf("apply taken without due time: %v", err)
	}
	if !entry.ScheduledFor.Equal(mustTime(t, "2026-06-01T08:00:00Z")) {
		t.Fatalf("expected taken log for the open 08:00 dose, got %s", entry.ScheduledFor)
	}
	if followUp, ok := scheduler.pendingFor(schedule.ID, reminders.SuffixFollowUp); !ok || !followUp.FireAt.Equal(mustTime(t, "2026-06-01T14:15:00Z")) {
		t.Fatalf("expected follow-up moved to 14:15 once answered, got %#v ok=%v", followUp, ok)
	}
}

func TestSweepAfterNagTimeMovesFollowUpForward(t *testing.T) {
	service, scheduler, _ := newMedicineServiceForTest(t, "2026-06-01T07:00:00Z")
	schedule := saveTestMedicine(t, service)

	scheduler.setNow(mustTime(t, "2026-06-01T08:20:00Z"))
	if _, err := service.PlanReminders(context.Background()); err != nil {
		t.Fatalf("plan reminders: %v", err)
	}
	followUp, ok := scheduler.pendingFor(schedule.ID, reminders.SuffixFollowUp)
	if !ok || !followUp.FireAt.Equal(mustTime(t, "2026-06-01T14:15:00Z")) {
		t.Fatalf("expected follow-up for the 14:00 dose, got %#v ok=%v", followUp, ok)
	}
}
