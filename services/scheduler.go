// services/scheduler.go
package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"bounty-board/lifecycle"
	"bounty-board/models"
)

// OverdueWatcher reports bounties that are past their due date and still
// open or claimed. Each due date is reported once; moving it re-arms the
// reminder.
type OverdueWatcher struct {
	Store    BountyStore
	Notifier Notifier
	Now      func() time.Time
}

func NewOverdueWatcher(store BountyStore, notifier Notifier) *OverdueWatcher {
	return &OverdueWatcher{
		Store:    store,
		Notifier: notifier,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

// Check runs one sweep and returns how many bounties were reported.
func (w *OverdueWatcher) Check(ctx context.Context) (int, error) {
	now := w.Now()
	overdue, err := w.Store.Overdue(ctx, now)
	if err != nil {
		return 0, err
	}
	reported := 0
	for _, b := range overdue {
		if lifecycle.RemindedSince(b, b.DueAt) {
			continue
		}
		reminded := lifecycle.LogActivity(b, models.ActivityRemind, models.ClientScheduler, now)
		if err := w.Store.Update(ctx, &reminded, b.Status); err != nil {
			if errors.Is(err, ErrStaleStatus) || errors.Is(err, ErrBountyNotFound) {
				continue
			}
			return reported, err
		}
		if err := w.Notifier.BountyOverdue(ctx, reminded); err != nil {
			log.Printf("[Scheduler] notify overdue %s: %v", b.ID, err)
		}
		reported++
	}
	return reported, nil
}

// Start schedules Check every interval. The caller shuts the scheduler down.
func (w *OverdueWatcher) Start(ctx context.Context, interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			n, err := w.Check(ctx)
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}
			if n > 0 {
				log.Printf("⏰ [Scheduler] %d overdue bounties reported", n)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}

	sched.Start()
	return sched, nil
}
