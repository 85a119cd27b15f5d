package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kyk_meal_bot/internal/app"
	"kyk_meal_bot/internal/domain/menu"
	"kyk_meal_bot/internal/infra/clock"
	"kyk_meal_bot/internal/infra/config"
	idb "kyk_meal_bot/internal/infra/database"
	"kyk_meal_bot/internal/infra/feed"
	"kyk_meal_bot/internal/infra/logger"
	"kyk_meal_bot/internal/infra/metrics"
	"kyk_meal_bot/internal/infra/scheduler"
	"kyk_meal_bot/internal/infra/telegram"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("FATAL: Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	log := logger.Get()
	log.WithField("environment", cfg.Environment).Info("KYK meal bot starting")

	// Root context for scheduled work; cancelled on shutdown so running
	// ticks finish their current unit and stop.
	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to database: %v", err)
	}
	defer db.Close()
	log.Info("Database connection established")

	menuRepo := idb.NewPostgresMenuRepository(db)
	subscriberRepo := idb.NewPostgresSubscriberRepository(db)

	// Metrics
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Metrics server stopped unexpectedly")
		}
	}()
	log.WithField("addr", cfg.MetricsAddr).Info("Metrics endpoint listening")

	// Telegram bot
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			entry := log.WithError(err)
			if c != nil && c.Sender() != nil {
				entry = entry.WithField("sender_id", c.Sender().ID)
			}
			entry.Error("Telebot handler error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		log.Fatalf("FATAL: Could not create Telegram bot: %v", err)
	}

	// Services
	systemClock := clock.System{}
	validator := menu.NewValidator(cfg.NoisePhrases)
	feedClient := feed.NewClient(cfg.FeedBaseURL, cfg.FeedTimeout, log.WithField("component", "feed_client"))
	telegramClient := telegram.NewTelebotAdapter(bot)

	ingestionService := app.NewIngestionService(
		menuRepo, feedClient, validator, collector, systemClock, cfg.FeedCityID,
		log.WithField("component", "ingestion"),
	)
	sendLimiter := rate.NewLimiter(rate.Every(cfg.SendInterval), 1)
	dispatchService := app.NewDispatchService(
		menuRepo, subscriberRepo, telegramClient, sendLimiter, collector, systemClock,
		log.WithField("component", "dispatch"),
	)
	menuQueries := app.NewMenuQueryService(menuRepo, validator, log.WithField("component", "menu_queries"))
	subscriberService := app.NewSubscriberService(subscriberRepo, log.WithField("component", "subscribers"))
	adminService := app.NewAdminService(subscriberRepo, systemClock, cfg.AdminChatID, log.WithField("component", "admin"))

	// Scheduler
	mealScheduler := scheduler.NewMealScheduler(
		rootCtx, ingestionService, dispatchService,
		log.WithField("component", "scheduler"),
		cfg.CronSpecIngestion, cfg.CronSpecBreakfast, cfg.CronSpecDinner,
	)
	if err := mealScheduler.Start(); err != nil {
		log.Fatalf("FATAL: Could not start scheduler: %v", err)
	}

	// Command handlers
	telegram.RegisterBotCommands(rootCtx, bot, subscriberService, menuQueries, adminService, systemClock, log.WithField("component", "bot_commands"))
	telegram.RegisterAdminHandlers(rootCtx, bot, adminService, subscriberService, dispatchService, log.WithField("component", "admin_commands"))
	log.Info("Command handlers registered")

	go bot.Start()
	log.Info("Application setup complete; bot and scheduler are running")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down application...")
	cancel() // running ticks stop after their current unit
	mealScheduler.Stop()
	bot.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Metrics server shutdown error")
	}
	log.Info("Application shut down gracefully")
}
