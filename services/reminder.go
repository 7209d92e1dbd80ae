package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/tailorworks/alterations-api/calendar"
)

// ReminderStatus is the notification kind sent ahead of an event
func ReminderStatus(t calendar.EventType) string {
	return "reminder:" + string(t)
}

// ReminderJob notifies clients the day before a pickup or an open fitting.
// Weddings are the client's own event and get no reminder.
type ReminderJob struct {
	store    *OrderStore
	notifier Notifier
	loc      *time.Location
	now      func() time.Time
}

// NewReminderJob creates a reminder job reading orders from store
func NewReminderJob(store *OrderStore, notifier Notifier, loc *time.Location) *ReminderJob {
	if loc == nil {
		loc = time.Local
	}
	return &ReminderJob{store: store, notifier: notifier, loc: loc, now: time.Now}
}

// Run sends reminders for tomorrow's events and returns how many were sent
func (j *ReminderJob) Run(ctx context.Context) (int, error) {
	orders, err := j.store.ListOrders(ctx)
	if err != nil {
		return 0, err
	}

	tomorrow := j.now().In(j.loc).AddDate(0, 0, 1)
	events := calendar.EventsBetween(calendar.DeriveEvents(orders, j.loc), tomorrow, tomorrow)

	byID := make(map[string]int, len(orders))
	for i, o := range orders {
		byID[o.ID] = i
	}

	sent := 0
	for _, ev := range events {
		if !needsReminder(ev) {
			continue
		}
		order := orders[byID[ev.OrderID]]
		if err := j.notifier.Notify(ctx, order, ReminderStatus(ev.Type)); err != nil {
			log.Printf("warning: reminder for %s failed: %v", ev.ID, err)
			continue
		}
		sent++
	}
	return sent, nil
}

func needsReminder(ev calendar.Event) bool {
	switch ev.Type {
	case calendar.EventPickup:
		return true
	case calendar.EventFitting:
		return ev.Status != calendar.FittingStatusCompleted
	}
	return false
}

// ScheduleReminders registers job on a cron scheduler in loc. The caller starts
// and stops the returned scheduler.
func ScheduleReminders(job *ReminderJob, spec string, loc *time.Location) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(loc))
	_, err := c.AddFunc(spec, func() {
		sent, err := job.Run(context.Background())
		if err != nil {
			log.Printf("Reminder run failed: %v", err)
			return
		}
		log.Printf("Reminder run sent %d reminders", sent)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}
	return c, nil
}
