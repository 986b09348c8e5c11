package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mkashlan/muallim/internal/app"
	"github.com/mkashlan/muallim/internal/cache"
	"github.com/mkashlan/muallim/internal/config"
	"github.com/mkashlan/muallim/internal/handler"
	"github.com/mkashlan/muallim/internal/notify"
	"github.com/mkashlan/muallim/internal/repository"
	"github.com/mkashlan/muallim/internal/router"
	"github.com/mkashlan/muallim/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create database pool", zap.Error(err))
	}
	defer pool.Close()

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath, logger)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	migrator.Close()

	instructorRepo := repository.NewInstructorRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	reviewRepo := repository.NewReviewRepository(pool)

	var slotCache service.SlotCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis unreachable, slot caching disabled", zap.Error(err))
		} else {
			slotCache = cache.NewSlotCache(rdb, cfg.SlotCacheTTL)
		}
	}

	var publisher service.EventPublisher
	if cfg.AMQPURL != "" {
		publisher = notify.NewPublisher(cfg.AMQPURL, logger)
	}

	availabilitySvc := service.NewAvailabilityService(instructorRepo, slotCache, nil, logger)
	bookingSvc := service.NewBookingService(bookingRepo, availabilitySvc, publisher, nil, logger)
	reviewSvc := service.NewReviewService(reviewRepo, logger)

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e,
		handler.NewAvailabilityHandler(availabilitySvc),
		handler.NewBookingHandler(bookingSvc),
		handler.NewReviewHandler(reviewSvc),
	)

	go func() {
		logger.Info("Server starting",
			zap.String("port", cfg.Port),
			zap.String("environment", cfg.Environment),
		)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()

	logger.Info("Shutting down")
	if err := e.Shutdown(context.Background()); err != nil {
		logger.Error("Shutdown failed", zap.Error(err))
	}
}
