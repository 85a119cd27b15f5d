package app

import (
	"context"
	"errors"
	"fmt"

	"kyk_meal_bot/internal/domain/menu"
	"kyk_meal_bot/internal/domain/subscriber"
	domainTelegram "kyk_meal_bot/internal/domain/telegram"
	idb "kyk_meal_bot/internal/infra/database"
	"kyk_meal_bot/internal/infra/clock"
	"kyk_meal_bot/internal/infra/metrics"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// DispatchService fans today's menu out to subscribers. Sends share a rate
// limiter enforcing the provider's minimum inter-send spacing, and one
// recipient's failure never blocks the rest.
type DispatchService struct {
	menuRepo       menu.Repository
	subscriberRepo subscriber.Repository
	telegramClient domainTelegram.Client
	limiter        *rate.Limiter
	collector      *metrics.Collector
	clock          clock.Clock
	logger         *logrus.Entry
}

func NewDispatchService(
	mr menu.Repository,
	sr subscriber.Repository,
	tc domainTelegram.Client,
	limiter *rate.Limiter,
	collector *metrics.Collector,
	clk clock.Clock,
	logger *logrus.Entry,
) *DispatchService {
	return &DispatchService{
		menuRepo:       mr,
		subscriberRepo: sr,
		telegramClient: tc,
		limiter:        limiter,
		collector:      collector,
		clock:          clk,
		logger:         logger,
	}
}

// NotifyToday sends today's menu for the given slot to every subscriber with
// notifications enabled and returns the number of successful sends. A missing
// menu is not an error: nothing is sent and nothing is broadcast about it.
func (s *DispatchService) NotifyToday(ctx context.Context, slot menu.Slot) (int, error) {
	today := menu.Day(s.clock.Now())
	tickLog := s.logger.WithFields(logrus.Fields{
		"slot": slot.String(),
		"date": today.Format("2006-01-02"),
	})

	m, err := s.menuRepo.GetByDateAndSlot(ctx, today, slot)
	if errors.Is(err, idb.ErrMenuNotFound) {
		tickLog.Info("No menu stored for this slot; skipping dispatch")
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load today's menu: %w", err)
	}

	// Snapshot at tick start: a subscriber opting out mid-tick may still
	// receive this tick's message.
	subscribers, err := s.subscriberRepo.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active subscribers: %w", err)
	}
	if len(subscribers) == 0 {
		tickLog.Info("No active subscribers; nothing to send")
		return 0, nil
	}

	text := FormatSlotNotification(today, m)
	return s.deliver(ctx, tickLog, subscribers, text)
}

// BroadcastAdminMessage sends an announcement to every known subscriber,
// regardless of the notification flag, and returns the success count.
func (s *DispatchService) BroadcastAdminMessage(ctx context.Context, text string) (int, error) {
	subscribers, err := s.subscriberRepo.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list subscribers for broadcast: %w", err)
	}

	s.collector.RecordBroadcast()
	broadcastLog := s.logger.WithField("kind", "admin_broadcast")
	return s.deliver(ctx, broadcastLog, subscribers, "📢 Duyuru\n\n"+text)
}

func (s *DispatchService) deliver(ctx context.Context, tickLog *logrus.Entry, subscribers []*subscriber.Subscriber, text string) (int, error) {
	sent := 0
	failed := 0

	for _, sub := range subscribers {
		// Pacing and cancellation in one place: Wait returns early when the
		// tick's context is cancelled.
		if err := s.limiter.Wait(ctx); err != nil {
			tickLog.WithFields(logrus.Fields{"sent": sent, "failed": failed}).
				Info("Dispatch cancelled; stopping after current recipient")
			return sent, err
		}

		err := s.telegramClient.SendText(sub.ChatID, text)
		if err == nil {
			s.collector.RecordNotificationSent()
			sent++
			continue
		}

		if errors.Is(err, domainTelegram.ErrTransportMisconfigured) {
			tickLog.WithError(err).Error("Transport misconfigured; aborting dispatch tick")
			return sent, err
		}

		// Per-recipient failure: log, skip, keep going.
		s.collector.RecordNotificationFailure()
		failed++
		tickLog.WithError(err).WithField("chat_id", sub.ChatID).Warn("Send failed; continuing with remaining recipients")
	}

	tickLog.WithFields(logrus.Fields{
		"recipients": len(subscribers),
		"sent":       sent,
		"failed":     failed,
	}).Info("Dispatch finished")
	return sent, nil
}
