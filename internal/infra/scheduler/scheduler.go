package scheduler

import (
	"context"
	"time"

	"kyk_meal_bot/internal/app"
	"kyk_meal_bot/internal/domain/menu"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	ingestionTickTimeout = 10 * time.Minute
	dispatchTickTimeout  = 30 * time.Minute
)

// MealScheduler drives the daily ingestion and the two notification ticks on
// independent cron entries. A tick that is still running when its next
// trigger fires is skipped, so the same job never overlaps itself; ingestion
// and dispatch may run concurrently with each other.
type MealScheduler struct {
	cronEngine *cron.Cron
	ingestion  *app.IngestionService
	dispatch   *app.DispatchService
	logger     *logrus.Entry
	baseCtx    context.Context

	specIngestion string
	specBreakfast string
	specDinner    string
}

func NewMealScheduler(
	baseCtx context.Context,
	ingestion *app.IngestionService,
	dispatch *app.DispatchService,
	logger *logrus.Entry,
	specIngestion string, // e.g. "0 6 * * *" (06:00 daily)
	specBreakfast string, // e.g. "30 6 * * *" (06:30 daily)
	specDinner string, // e.g. "0 14 * * *" (14:00 daily)
) *MealScheduler {
	cronLogger := cron.PrintfLogger(logger.Logger)
	return &MealScheduler{
		cronEngine: cron.New(
			cron.WithLocation(time.Local), // wall-clock trigger times in server local time
			cron.WithChain(cron.SkipIfStillRunning(cronLogger)),
		),
		ingestion:     ingestion,
		dispatch:      dispatch,
		logger:        logger,
		baseCtx:       baseCtx,
		specIngestion: specIngestion,
		specBreakfast: specBreakfast,
		specDinner:    specDinner,
	}
}

func (s *MealScheduler) Start() error {
	if _, err := s.cronEngine.AddFunc(s.specIngestion, s.runIngestionTick); err != nil {
		return err
	}
	if _, err := s.cronEngine.AddFunc(s.specBreakfast, func() { s.runDispatchTick(menu.SlotBreakfast) }); err != nil {
		return err
	}
	if _, err := s.cronEngine.AddFunc(s.specDinner, func() { s.runDispatchTick(menu.SlotDinner) }); err != nil {
		return err
	}

	s.cronEngine.Start()
	s.logger.WithFields(logrus.Fields{
		"ingestion": s.specIngestion,
		"breakfast": s.specBreakfast,
		"dinner":    s.specDinner,
	}).Info("Meal scheduler started")
	return nil
}

func (s *MealScheduler) runIngestionTick() {
	s.logger.Info("Cron tick: daily menu ingestion")
	ctx, cancel := context.WithTimeout(s.baseCtx, ingestionTickTimeout)
	defer cancel()
	if err := s.ingestion.RunDailyIngestion(ctx); err != nil {
		s.logger.WithError(err).Error("Ingestion tick ended early")
	}
}

func (s *MealScheduler) runDispatchTick(slot menu.Slot) {
	s.logger.WithField("slot", slot.String()).Info("Cron tick: menu notification dispatch")
	ctx, cancel := context.WithTimeout(s.baseCtx, dispatchTickTimeout)
	defer cancel()

	// Scheduled path only logs the aggregate; the count return value is for
	// interactive callers.
	sent, err := s.dispatch.NotifyToday(ctx, slot)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"slot": slot.String(),
			"sent": sent,
		}).Error("Dispatch tick ended early")
		return
	}
	s.logger.WithFields(logrus.Fields{"slot": slot.String(), "sent": sent}).Info("Dispatch tick finished")
}

func (s *MealScheduler) Stop() {
	s.logger.Info("Stopping meal scheduler...")
	ctx := s.cronEngine.Stop() // Stops triggering new jobs, waits for running jobs.
	<-ctx.Done()               // Wait for graceful shutdown
	s.logger.Info("Meal scheduler gracefully stopped")
}
