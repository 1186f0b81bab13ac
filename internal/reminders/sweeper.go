package reminders

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Planner recomputes the reminders owned by one domain and schedules them.
// It returns how many reminders it handed to the scheduler.
type Planner interface {
	PlanReminders(ctx context.Context) (int, error)
}

type namedPlanner struct {
	name    string
	planner Planner
}

// Sweeper periodically re-plans every domain's reminders. Re-planning is
// idempotent because reminder ids are derived from entity ids, and it restores
// timer-backend state after a restart.
type Sweeper struct {
	cron    *cron.Cron
	spec    string
	timeout time.Duration

	mu       sync.Mutex
	planners []namedPlanner
	entryID  cron.EntryID
	lastRun  time.Time
}

func NewSweeper(spec string) (*Sweeper, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(spec); err != nil {
		return nil, fmt.Errorf("parse reminder sweep schedule %q: %w", spec, err)
	}
	return &Sweeper{
		cron:    cron.New(cron.WithParser(parser)),
		spec:    spec,
		timeout: time.Minute,
	}, nil
}

func (sweeper *Sweeper) Add(name string, planner Planner) {
	sweeper.mu.Lock()
	defer sweeper.mu.Unlock()
	sweeper.planners = append(sweeper.planners, namedPlanner{name: name, planner: planner})
}

// RunOnce plans every registered domain. A failing planner is logged and does
// not stop the others.
func (sweeper *Sweeper) RunOnce(ctx context.Context) int {
	sweeper.mu.Lock()
	planners := append([]namedPlanner(nil), sweeper.planners...)
	sweeper.mu.Unlock()

	total := 0
	for _, entry := range planners {
		planned, err := entry.planner.PlanReminders(ctx)
		if err != nil {
			log.Printf("reminders: sweep %s failed: %v", entry.name, err)
			continue
		}
		total += planned
	}

	sweeper.mu.Lock()
	sweeper.lastRun = time.Now()
	sweeper.mu.Unlock()
	return total
}

func (sweeper *Sweeper) LastRun() time.Time {
	sweeper.mu.Lock()
	defer sweeper.mu.Unlock()
	return sweeper.lastRun
}

// Start runs one sweep immediately, then on the cron schedule until ctx ends.
func (sweeper *Sweeper) Start(ctx context.Context) error {
	entryID, err := sweeper.cron.AddFunc(sweeper.spec, func() {
		runCtx, cancel := context.WithTimeout(ctx, sweeper.timeout)
		defer cancel()
		planned := sweeper.RunOnce(runCtx)
		log.Printf("reminders: sweep planned %d reminders", planned)
	})
	if err != nil {
		return fmt.Errorf("register reminder sweep: %w", err)
	}

	sweeper.mu.Lock()
	sweeper.entryID = entryID
	sweeper.mu.Unlock()

	sweeper.RunOnce(ctx)
	sweeper.cron.Start()
	go func() {
		<-ctx.Done()
		sweeper.Stop()
	}()
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (sweeper *Sweeper) Stop() {
	<-sweeper.cron.Stop().Done()
}

func (sweeper *Sweeper) NextRun() time.Time {
	sweeper.mu.Lock()
	entryID := sweeper.entryID
	sweeper.mu.Unlock()
	if entryID == 0 {
		return time.Time{}
	}
	return sweeper.cron.Entry(entryID).Next
}
