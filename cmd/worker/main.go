package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/audit"
	"github.com/Domenick1991/flightbooking/internal/email"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/go-co-op/gocron/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.WithError(err).Fatal("load config")
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.WithError(err).Fatal("connect postgres")
	}
	defer pool.Close()

	auditor := audit.NewAuditor(repository.NewSeatLedgerRepository(pool), logger)

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		logger.WithError(err).Fatal("create scheduler")
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(cfg.Worker.AuditInterval),
		gocron.NewTask(func() {
			if _, err := auditor.Run(ctx); err != nil {
				logger.WithError(err).Error("seat audit failed")
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logger.WithError(err).Fatal("schedule seat audit")
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			logger.WithError(err).Warn("scheduler shutdown")
		}
	}()

	sender, err := email.NewSender(cfg.SMTP)
	if err != nil {
		logger.WithError(err).Fatal("init mail sender")
	}

	consumer := kafka.NewConsumer(cfg.Kafka, logger)
	defer consumer.Close()

	logger.WithField("topic", cfg.Kafka.BookingEventsTopic).Info("worker started")

	err = consumer.ConsumeBookingEvents(ctx, func(ctx context.Context, event kafka.BookingEvent) error {
		if err := sender.Send(ctx, event); err != nil {
			logger.WithError(err).WithField("pnr", event.PNR).Error("send booking mail")
			return nil
		}
		logger.WithFields(logrus.Fields{"pnr": event.PNR, "type": event.Type}).Info("booking mail sent")
		return nil
	})
	if err != nil && ctx.Err() == nil {
		logger.WithError(err).Error("consumer stopped")
	}
}
