package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/chachabrian/carrental-backend/internal/config"
	"github.com/chachabrian/carrental-backend/internal/database"
	"github.com/chachabrian/carrental-backend/internal/handlers"
	"github.com/chachabrian/carrental-backend/internal/middleware"
	"github.com/chachabrian/carrental-backend/internal/services"
	"github.com/chachabrian/carrental-backend/pkg/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := utils.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	bookingRepo := database.NewBookingRepository(db, cfg.DBTimeout)
	carRepo := database.NewCarRepository(db, cfg.DBTimeout)
	userRepo := database.NewUserRepository(db, cfg.DBTimeout)
	prefRepo := database.NewPreferenceRepository(db, cfg.DBTimeout)

	hub := services.NewHub(logger)
	go hub.Run(ctx)

	channels := []services.Channel{
		services.NewEmailChannel(newMailer(cfg, logger), prefRepo, logger),
		hub,
	}

	push, err := services.InitFirebase(ctx, cfg.FirebaseServiceAccountPath, prefRepo, logger)
	if err != nil {
		logger.Warn("Firebase initialization failed, push notifications disabled", zap.Error(err))
	} else {
		channels = append(channels, push)
	}

	if sms, err := utils.NewSMSSender(cfg.ATUsername, cfg.ATAPIKey, &http.Client{Timeout: cfg.NotifyTimeout}); err == nil {
		channels = append(channels, services.NewSMSChannel(sms))
	} else {
		logger.Info("SMS notifications disabled", zap.Error(err))
	}

	// Redis is optional; without it admission is serialized per process and
	// by the database advisory lock.
	var locker services.CarLocker = services.NewKeyedMutex()
	if cfg.RedisURL != "" {
		rdb, err := services.InitRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal("Failed to initialize Redis", zap.Error(err))
		}
		defer rdb.Close()
		locker = services.NewRedisLocker(rdb, cfg.CarLockTTL)
		channels = append(channels, services.NewRedisPublisher(rdb))
	}

	dispatcher := services.NewDispatcher(userRepo, carRepo, cfg.NotifyTimeout, cfg.OwnerEmail, logger, channels...)
	checker := services.NewAvailabilityChecker(bookingRepo, carRepo, cfg.AvailabilityConcurrency)
	manager := services.NewBookingManager(bookingRepo, carRepo, checker, locker, dispatcher, logger)
	tokens := handlers.TokenIssuer{Secret: cfg.JWTSecret, TTL: cfg.JWTTTL}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Recovery(logger), middleware.RequestLogger(logger))

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins()
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := middleware.AuthMiddleware(cfg.JWTSecret, userRepo, logger)

	// Routes
	api := r.Group("/api")
	api.Use(middleware.RateLimitMiddleware(cfg.RateLimitPerMin, cfg.RateLimitBurst, logger))
	{
		user := api.Group("/user")
		{
			user.POST("/register", handlers.Register(userRepo, tokens, logger))
			user.POST("/login", handlers.Login(userRepo, tokens, logger))
			user.GET("/data", auth, handlers.GetUserData())
		}

		bookings := api.Group("/bookings")
		{
			bookings.POST("/check-availability", handlers.CheckAvailability(checker, logger))
			bookings.POST("/create", auth, handlers.CreateBooking(manager, logger))
			bookings.GET("/user", auth, handlers.GetUserBookings(manager, logger))
			bookings.GET("/owner", auth, handlers.GetOwnerBookings(manager, logger))
			bookings.POST("/change-status", auth, handlers.ChangeBookingStatus(manager, logger))
			bookings.POST("/cancel", auth, handlers.CancelBooking(manager, logger))
		}

		notifications := api.Group("/notifications", auth)
		{
			notifications.POST("/register-token", handlers.RegisterFCMToken(userRepo, logger))
			notifications.GET("/preferences", handlers.GetNotificationPreferences(prefRepo, logger))
			notifications.PUT("/preferences", handlers.UpdateNotificationPreferences(prefRepo, logger))
		}

		// WebSocket connection
		api.GET("/ws", auth, handlers.WebSocketHandler(hub))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.AppPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	// Let detached notifications finish before the process exits.
	dispatcher.Wait()
}

func newMailer(cfg *config.Config, logger *zap.Logger) utils.Mailer {
	if cfg.SESEnabled {
		m, err := utils.NewSESMailer(cfg.AWSRegion, cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, cfg.EmailFrom)
		if err == nil {
			return m
		}
		logger.Warn("SES mailer unavailable, falling back to SMTP", zap.Error(err))
	}

	m, err := utils.NewSMTPMailer(cfg.EmailFrom, cfg.EmailPassword, cfg.SMTPHost, cfg.SMTPPort)
	if err != nil {
		return nil
	}
	return m
}
