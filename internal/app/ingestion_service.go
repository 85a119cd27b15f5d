package app

import (
	"context"
	"time"

	"kyk_meal_bot/internal/domain/menu"
	"kyk_meal_bot/internal/infra/clock"
	"kyk_meal_bot/internal/infra/metrics"

	"github.com/sirupsen/logrus"
)

// IngestionService pulls candidate menus from the feed, filters out provider
// noise and upserts the survivors for every remaining day of the month.
type IngestionService struct {
	menuRepo  menu.Repository
	feed      menu.Feed
	validator *menu.Validator
	collector *metrics.Collector
	clock     clock.Clock
	cityID    int
	logger    *logrus.Entry
}

func NewIngestionService(
	mr menu.Repository,
	feed menu.Feed,
	validator *menu.Validator,
	collector *metrics.Collector,
	clk clock.Clock,
	cityID int,
	logger *logrus.Entry,
) *IngestionService {
	return &IngestionService{
		menuRepo:  mr,
		feed:      feed,
		validator: validator,
		collector: collector,
		clock:     clk,
		cityID:    cityID,
		logger:    logger,
	}
}

// RunDailyIngestion fetches the provider's range once per slot and then walks
// [today, end of month], selecting the candidate for each day, validating it
// and upserting the genuine ones. Failures for one date never abort the
// remaining dates; a fetch failure abandons only the affected slot. Honors
// ctx cancellation between dates, so a shutting-down process finishes its
// current unit of work and stops.
func (s *IngestionService) RunDailyIngestion(ctx context.Context) error {
	today := menu.Day(s.clock.Now())
	firstOfNextMonth := time.Date(today.Year(), today.Month()+1, 1, 0, 0, 0, 0, today.Location())
	endOfMonth := firstOfNextMonth.AddDate(0, 0, -1)

	s.logger.WithFields(logrus.Fields{
		"from": today.Format("2006-01-02"),
		"to":   endOfMonth.Format("2006-01-02"),
	}).Info("Starting daily menu ingestion")

	for _, slot := range []menu.Slot{menu.SlotBreakfast, menu.SlotDinner} {
		slotLog := s.logger.WithField("slot", slot.String())

		// One fetch covers the whole span; a failure here is reported once
		// per slot, not once per date.
		candidates, err := s.feed.Fetch(ctx, s.cityID, slot)
		if err != nil {
			s.collector.RecordFeedFailure()
			slotLog.WithError(err).Error("Feed fetch failed; abandoning this slot for the tick")
			continue
		}
		slotLog.WithField("candidates", len(candidates)).Debug("Feed fetch succeeded")

		for date := today; !date.After(endOfMonth); date = date.AddDate(0, 0, 1) {
			if err := ctx.Err(); err != nil {
				slotLog.Info("Ingestion cancelled; stopping cleanly")
				return err
			}
			s.ingestDay(ctx, slotLog, candidates, date, slot)
		}
	}

	s.logger.Info("Daily menu ingestion finished")
	return nil
}

func (s *IngestionService) ingestDay(ctx context.Context, slotLog *logrus.Entry, candidates []*menu.Menu, date time.Time, slot menu.Slot) {
	dayLog := slotLog.WithField("date", date.Format("2006-01-02"))

	candidate := pickCandidate(candidates, date, slot)
	if candidate == nil {
		dayLog.Debug("No candidate published for this date yet")
		return
	}

	verdict := s.validator.Check(candidate)
	if !verdict.Genuine {
		// A normal filtering outcome, not an error.
		s.collector.RecordCandidateRejected(string(verdict.Reason))
		dayLog.WithFields(logrus.Fields{
			"reason":      verdict.Reason,
			"item_index":  verdict.ItemIndex,
			"valid_items": verdict.ValidItems,
		}).Info("Candidate rejected as provider noise")
		return
	}

	if err := s.menuRepo.Upsert(ctx, candidate); err != nil {
		dayLog.WithError(err).Error("Failed to upsert menu; continuing with remaining dates")
		return
	}
	s.collector.RecordMenuIngested()
	dayLog.Info("Menu stored")
}

func pickCandidate(candidates []*menu.Menu, date time.Time, slot menu.Slot) *menu.Menu {
	for _, c := range candidates {
		if c.Slot == slot && menu.Day(c.Date).Equal(date) {
			return c
		}
	}
	return nil
}
