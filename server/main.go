package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"darshan/api/routes"
	"darshan/internal/bookings"
	"darshan/internal/crowd"
	"darshan/internal/emergency"
	"darshan/internal/notifications"
	"darshan/internal/parking"
	"darshan/internal/payments"
	"darshan/internal/queue"
	"darshan/internal/realtime"
	"darshan/internal/shared/config"
	"darshan/internal/shared/database"
	"darshan/internal/traffic"
	"darshan/internal/weather"
	"darshan/pkg/cache"
	"darshan/pkg/logger"
	"darshan/pkg/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	log := logger.New()
	logger.SetDefault(log)

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Error("Failed to initialize databases", "error", err.Error())
		os.Exit(1)
	}
	defer db.Close()

	// Change feed rides on Redis pub/sub
	feed := realtime.NewRedisFeed(db.GetRedisClient(), log)
	cacheService := cache.NewService(db.GetRedisClient())

	// Notification dispatch is fire-and-forget over Kafka
	var dispatcher notifications.Dispatcher
	if cfg.Kafka.Enabled {
		producer, err := notifications.NewKafkaProducer(cfg.Kafka.Brokers)
		if err != nil {
			log.Error("Failed to connect to Kafka", "error", err.Error())
			os.Exit(1)
		}
		dispatcher = notifications.NewDispatcher(producer, cfg.Kafka.NotificationTopic, log)
	} else {
		dispatcher = notifications.NewNoopDispatcher(log)
	}
	defer dispatcher.Close()

	// Repositories
	queueRepo := queue.NewRepository(db.GetPostgreSQL(), feed, log)
	crowdRepo := crowd.NewRepository(db.GetPostgreSQL(), feed, log)
	parkingRepo := parking.NewRepository(db.GetPostgreSQL(), feed, log)
	bookingRepo := bookings.NewRepository(db.GetPostgreSQL(), feed, log)
	paymentRepo := payments.NewRepository(db.GetPostgreSQL())
	trafficRepo := traffic.NewRepository(db.GetPostgreSQL(), feed, log)
	emergencyRepo := emergency.NewRepository(db.GetPostgreSQL())

	// Live queue view, hydrated from the store and kept current by the feed
	tracker := queue.NewTracker(feed, queueRepo, log)
	trackerCtx, trackerCancel := context.WithCancel(context.Background())
	defer trackerCancel()
	if err := tracker.Start(trackerCtx); err != nil {
		log.Warn("Queue tracker failed to start, serving from store", "error", err.Error())
	}
	defer tracker.Close()

	// Services
	weatherClient := weather.NewOpenMeteoClient(cfg.Weather.BaseURL, cfg.Weather.Timeout)
	queueService := queue.NewService(queueRepo, tracker, dispatcher, log, cfg.Queue.ServiceMinutesPerVisitor)
	crowdService := crowd.NewService(crowdRepo, cacheService, dispatcher, log, cfg.Redis.TempDataTTL)
	weatherService := weather.NewService(weatherClient, cacheService, log, cfg.Redis.TempDataTTL)
	parkingService := parking.NewService(parkingRepo, log)
	bookingService := bookings.NewService(bookingRepo, queueService, dispatcher, log)
	paymentService := payments.NewService(paymentRepo, bookingService, log, cfg.UPI)
	trafficService := traffic.NewService(trafficRepo, dispatcher, log)
	emergencyService := emergency.NewService(emergencyRepo, dispatcher, log)

	ctrls := routes.Controllers{
		Queue:     queue.NewController(queueService),
		Crowd:     crowd.NewController(crowdService),
		Weather:   weather.NewController(weatherService),
		Parking:   parking.NewController(parkingService),
		Bookings:  bookings.NewController(bookingService),
		Payments:  payments.NewController(paymentService),
		Traffic:   traffic.NewController(trafficService),
		Emergency: emergency.NewController(emergencyService),
	}

	limiter := ratelimit.NewRateLimiter(db.GetRedisClient(), &ratelimit.Config{
		Enabled:         cfg.RateLimit.Enabled,
		WindowDuration:  cfg.RateLimit.WindowDuration,
		DefaultRequests: cfg.RateLimit.DefaultRequests,
		PublicRequests:  cfg.RateLimit.PublicRequests,
		BookingRequests: cfg.RateLimit.BookingRequests,
		AdminRequests:   cfg.RateLimit.AdminRequests,
		WhitelistedIPs:  cfg.RateLimit.WhitelistedIPs,
	})

	router := routes.SetupRouter(cfg, db, ctrls, limiter, log)

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", "addr", cfg.GetServerAddress(), "mode", cfg.GinMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", "error", err.Error())
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", "error", err.Error())
	}

	log.Info("Server stopped")
}
