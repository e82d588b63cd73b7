package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"daily-journal/internal/logging"
	"daily-journal/internal/service"
)

const (
	jobTimeout     = 30 * time.Second
	lockSweepEvery = time.Minute
)

// StartJobs registers the background jobs on scheduler. The caller starts and stops it.
func (b *Bot) StartJobs(ctx context.Context, scheduler *service.SchedulerService) error {
	b.mu.Lock()
	b.scheduler = scheduler
	b.mu.Unlock()

	cfg := b.app.Config
	if _, err := scheduler.ScheduleDaily(cfg.SnapshotRefresh, func() {
		jobCtx, cancel := context.WithTimeout(ctx, jobTimeout)
		defer cancel()
		summary, err := b.app.Streaks.Refresh(jobCtx)
		if err != nil {
			logging.CaptureError(err, "refresh streak snapshot")
			return
		}
		slog.Info("streak snapshot refreshed", "current", summary.Current, "longest", summary.Longest)
	}); err != nil {
		return fmt.Errorf("schedule snapshot refresh: %w", err)
	}

	if cfg.LockAfter > 0 {
		if _, err := scheduler.ScheduleInterval(lockSweepEvery, func() {
			if n := b.lockIdle(time.Now(), cfg.LockAfter); n > 0 {
				slog.Info("idle sessions locked", "count", n)
			}
		}); err != nil {
			return fmt.Errorf("schedule auto-lock: %w", err)
		}
	}

	return b.rescheduleReminder(ctx)
}

// rescheduleReminder replaces the reminder job with one matching the stored settings.
func (b *Bot) rescheduleReminder(ctx context.Context) error {
	b.mu.Lock()
	scheduler, previous := b.scheduler, b.reminderJob
	b.reminderJob = 0
	b.mu.Unlock()
	if scheduler == nil {
		return nil
	}
	if previous != 0 {
		scheduler.Remove(previous)
	}

	settings, err := b.app.Reminder.Settings(ctx)
	if err != nil {
		return err
	}
	if !settings.Enabled {
		slog.Info("reminder disabled")
		return nil
	}
	spec, err := service.CronSpec(settings)
	if err != nil {
		return err
	}
	id, err := scheduler.ScheduleSpec(spec, func() {
		jobCtx, cancel := context.WithTimeout(ctx, jobTimeout)
		defer cancel()
		if err := b.remindDue(jobCtx); err != nil {
			logging.CaptureError(err, "reminder job")
		}
	})
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.reminderJob = id
	b.mu.Unlock()
	slog.Info("reminder scheduled", "spec", spec, "next", scheduler.Next(id))
	return nil
}

// remindDue logs the reminder text unless today's entry already exists.
// Reminders stay local: nothing is pushed to the chat.
func (b *Bot) remindDue(ctx context.Context) error {
	entry, err := b.app.Journal.GetByDate(ctx, b.app.Journal.Today())
	if err != nil {
		return err
	}
	if entry != nil {
		slog.Debug("reminder skipped, entry exists")
		return nil
	}
	settings, err := b.app.Reminder.Settings(ctx)
	if err != nil {
		return err
	}
	slog.Info("reminder due", "message", service.PreviewMessage(settings.Style))
	return nil
}
