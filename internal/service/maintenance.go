package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"rideboard/internal/models"
	"rideboard/internal/notify"
	"rideboard/internal/repository"
)

// Maintenance runs the periodic sweeps: stale-listing purge, orphan cleanup
// and departure reminders. Every sweep is idempotent, so overlapping or
// repeated runs are harmless.
type Maintenance struct {
	offeringRepo repository.OfferingRepository
	requestRepo  repository.RequestRepository
	memberRepo   repository.MemberRepository
	favoriteRepo repository.FavoriteRepository
	dispatcher   notify.Dispatcher

	interval     time.Duration
	reminderLead time.Duration
	retention    time.Duration
}

func NewMaintenance(
	offeringRepo repository.OfferingRepository,
	requestRepo repository.RequestRepository,
	memberRepo repository.MemberRepository,
	favoriteRepo repository.FavoriteRepository,
	dispatcher notify.Dispatcher,
	interval, reminderLead, retention time.Duration,
) *Maintenance {
	return &Maintenance{
		offeringRepo: offeringRepo,
		requestRepo:  requestRepo,
		memberRepo:   memberRepo,
		favoriteRepo: favoriteRepo,
		dispatcher:   dispatcher,
		interval:     interval,
		reminderLead: reminderLead,
		retention:    retention,
	}
}

// Start launches the sweep loop. It runs until ctx is cancelled and never
// blocks request serving.
func (m *Maintenance) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				logrus.Info("maintenance loop stopped")
				return
			case <-ticker.C:
				if err := m.RunOnce(ctx); err != nil {
					logrus.WithError(err).Warn("maintenance sweep failed")
				}
			}
		}
	}()
}

func (m *Maintenance) RunOnce(ctx context.Context) error {
	now := time.Now()

	if err := m.purgeStale(ctx, now.Add(-m.retention)); err != nil {
		return err
	}
	if err := m.cleanOrphans(ctx); err != nil {
		return err
	}
	return m.sendReminders(ctx, now.Add(m.reminderLead))
}

func (m *Maintenance) purgeStale(ctx context.Context, cutoff time.Time) error {
	offeringIDs, err := m.offeringRepo.DeleteArrivedBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	for _, id := range offeringIDs {
		if err := m.memberRepo.DeleteByOffering(ctx, nil, id); err != nil {
			return err
		}
		if err := m.favoriteRepo.PurgeItem(ctx, nil, models.FavoriteOffering, id); err != nil {
			return err
		}
	}

	requestIDs, err := m.requestRepo.DeleteArrivedBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	for _, id := range requestIDs {
		if err := m.favoriteRepo.PurgeItem(ctx, nil, models.FavoriteRequest, id); err != nil {
			return err
		}
	}

	if len(offeringIDs) > 0 || len(requestIDs) > 0 {
		logrus.WithFields(logrus.Fields{
			"offerings": len(offeringIDs),
			"requests":  len(requestIDs),
		}).Info("purged stale listings")
	}
	return nil
}

func (m *Maintenance) cleanOrphans(ctx context.Context) error {
	members, err := m.memberRepo.DeleteOrphans(ctx)
	if err != nil {
		return err
	}
	favorites, err := m.favoriteRepo.DeleteOrphans(ctx)
	if err != nil {
		return err
	}
	if members > 0 || favorites > 0 {
		logrus.WithFields(logrus.Fields{
			"members":   members,
			"favorites": favorites,
		}).Info("removed orphaned rows")
	}
	return nil
}

// sendReminders notifies riders of upcoming departures. The reminder_sent
// flag makes a second pass over the same offering a no-op.
func (m *Maintenance) sendReminders(ctx context.Context, until time.Time) error {
	due, err := m.offeringRepo.FindDueReminders(ctx, until)
	if err != nil {
		return err
	}
	for _, offering := range due {
		if m.dispatcher != nil {
			m.dispatcher.Dispatch(ctx, notify.Event{
				Kind:       notify.KindDepartureReminder,
				OfferingID: offering.ID,
				OwnerID:    offering.OwnerUserID,
			})
		}
		if err := m.offeringRepo.MarkReminderSent(ctx, offering.ID); err != nil {
			return err
		}
	}
	return nil
}
