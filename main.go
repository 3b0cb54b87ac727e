// File: tutorhub/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tutorhub/config"
	"tutorhub/cron"
	"tutorhub/database"
	availabilityRepo "tutorhub/database/repository/availability"
	bookingRepo "tutorhub/database/repository/booking"
	catalogRepo "tutorhub/database/repository/catalog"
	creditRepo "tutorhub/database/repository/credit"
	"tutorhub/handlers"
	"tutorhub/middleware"
	"tutorhub/models"
	"tutorhub/routes"
	availabilitySvc "tutorhub/services/availability"
	bookingSvc "tutorhub/services/booking"
	creditSvc "tutorhub/services/credit"
	"tutorhub/services/notification"
	"tutorhub/services/payment"
	"tutorhub/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()
	utils.FirebaseInit()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	stripe.Key = config.AppConfig.StripeKey

	// repositories.
	catRepo := catalogRepo.NewMongoCatalogRepo()
	availRepo := availabilityRepo.NewMongoAvailabilityRepo()
	bkRepo := bookingRepo.NewMongoBookingRepo()
	crRepo := creditRepo.NewMongoCreditRepo()

	for name, ensure := range map[string]func() error{
		"catalog":      catRepo.EnsureIndexes,
		"availability": availRepo.EnsureIndexes,
		"bookings":     bkRepo.EnsureIndexes,
		"credits":      crRepo.EnsureIndexes,
	} {
		if err := ensure(); err != nil {
			logger.Sugar().Fatalf("main: failed to ensure %s indexes: %v", name, err)
		}
	}

	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := catRepo.Seed(seedCtx, models.DefaultCatalog()); err != nil {
		logger.Sugar().Fatalf("main: failed to seed slot catalog: %v", err)
	}
	seedCancel()

	// services.
	locker := utils.NewRedisKeyLocker(utils.GetLockClient())
	notifier := notification.NewAsynqNotifier(cron.NewQueueClient(), logger)
	payments := payment.NewStripeProcessor(logger)

	lockTTL := time.Duration(config.AppConfig.ReserveLockTTLSec) * time.Second
	gridTTL := time.Duration(config.AppConfig.SlotStatusTTLSec) * time.Second

	bookingService := &bookingSvc.DefaultBookingService{
		Bookings:  bkRepo,
		Avail:     availRepo,
		Catalog:   catRepo,
		Credits:   crRepo,
		Locker:    locker,
		Notifier:  notifier,
		Payments:  payments,
		Cache:     utils.GetCacheClient(),
		Logger:    logger,
		LockTTL:   lockTTL,
		GridTTL:   gridTTL,
		BasePrice: config.AppConfig.SlotBasePrice,
	}

	availabilityService := &availabilitySvc.DefaultAvailabilityService{
		Avail:    availRepo,
		Bookings: bkRepo,
		Catalog:  catRepo,
		Locker:   locker,
		Cache:    utils.GetCacheClient(),
		Logger:   logger,
		LockTTL:  lockTTL,
	}

	creditService := &creditSvc.DefaultCreditService{Repo: crRepo}

	// Background worker: notification delivery and the completion sweep.
	cron.InitWorker(bookingService, logger)

	// Assemble the handler bundle and register routes.
	handlerBundle := &routes.HandlerBundle{
		Booking:      handlers.NewBookingHandler(bookingService, logger),
		Availability: handlers.NewAvailabilityHandler(availabilityService, logger),
		Credit:       handlers.NewCreditHandler(creditService, logger),
	}
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
