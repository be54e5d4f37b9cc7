package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/bootstrap"
	"github.com/Domenick1991/flightbooking/internal/cache"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/Domenick1991/flightbooking/internal/service/inventory"
	"github.com/Domenick1991/flightbooking/internal/service/search"
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

	if cfg.Database.AutoMigrate {
		if err := repository.Migrate(ctx, pool); err != nil {
			logger.WithError(err).Fatal("migrate database")
		}
	}

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.SearchCacheTTL)*time.Second)
	defer redisCache.Client().Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()
	if err := producer.CheckConnection(ctx); err != nil {
		logger.WithError(err).Warn("kafka unreachable, booking events will be dropped until it recovers")
	}

	flightRepo := repository.NewFlightRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	passengerRepo := repository.NewPassengerRepository(pool)
	airlineRepo := repository.NewAirlineRepository(pool)

	searchService := search.NewSearchService(flightRepo, redisCache, logger)
	inventoryService := inventory.NewInventoryService(airlineRepo, flightRepo, redisCache, logger)
	bookingService := booking.NewBookingService(
		bookingRepo,
		flightRepo,
		passengerRepo,
		logger,
		booking.WithCache(redisCache),
		booking.WithEvents(producer, cfg.Kafka.BookingEventsTopic),
		booking.WithPNRAttempts(cfg.Booking.PNRAttempts),
	)

	deps := bootstrap.Deps{
		Search:    searchService,
		Inventory: inventoryService,
		Booking:   bookingService,
		DB:        pool,
		Logger:    logger,
	}
	if cfg.RateLimit.Enabled {
		deps.Limiter = cache.NewTokenBucket(redisCache.Client(), cfg.RateLimit)
	}

	if err := bootstrap.Run(ctx, cfg, deps); err != nil {
		logger.WithError(err).Fatal("server error")
	}
}
