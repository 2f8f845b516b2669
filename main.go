// File: fundigo/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fundigo/config"
	"fundigo/cron"
	"fundigo/database"
	bookingRepoPkg "fundigo/database/repository/booking"
	offerRepoPkg "fundigo/database/repository/offer"
	providerRepoPkg "fundigo/database/repository/provider"
	reviewRepoPkg "fundigo/database/repository/review"
	"fundigo/handlers"
	"fundigo/middleware"
	"fundigo/routes"
	"fundigo/services/dispatch"
	"fundigo/services/notification"
	"fundigo/services/rating"
	"fundigo/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitDispatchCache()
	utils.FirebaseInit()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	offerRepo := offerRepoPkg.NewMongoOfferRepo()
	providerRepo := providerRepoPkg.NewMongoProviderRepo()
	customerRepo := providerRepoPkg.NewMongoCustomerRepo()
	reviewRepo := reviewRepoPkg.NewMongoReviewRepo()

	// services.
	notificationService := &notification.DefaultNotificationService{
		Providers: providerRepo,
		Customers: customerRepo,
	}

	selector := &dispatch.DefaultCandidateSelector{
		ProviderRepo: providerRepo,
		Weights: dispatch.Weights{
			Distance: config.AppConfig.DispatchDistanceWeight,
			Rating:   config.AppConfig.DispatchRatingWeight,
		},
	}

	scheduler := cron.NewAsynqDeadlineScheduler()

	engine := &dispatch.DefaultDispatchService{
		BookingRepo:   bookingRepo,
		OfferRepo:     offerRepo,
		Selector:      selector,
		Scheduler:     scheduler,
		Notifier:      notificationService,
		Logger:        logger,
		BatchSize:     config.AppConfig.DispatchBatchSize,
		OfferWindow:   time.Duration(config.AppConfig.DispatchOfferWindowMin) * time.Minute,
		DefaultRadius: config.AppConfig.DispatchDefaultRadius,
	}

	ratingGate := &rating.DefaultEligibilityGate{
		BookingRepo: bookingRepo,
		ReviewRepo:  reviewRepo,
	}

	dispatchHandler := handlers.NewDispatchHandler(engine)
	ratingHandler := handlers.NewRatingHandler(ratingGate)

	// Deadline worker and restart recovery: persisted expiry deadlines are
	// re-armed before the HTTP surface opens.
	cron.InitDispatchWorker(engine)
	if err := engine.RearmPendingDeadlines(context.Background()); err != nil {
		logger.Sugar().Errorf("main: failed to re-arm pending deadlines: %v", err)
	}

	// Register routes.
	routes.RegisterRoutes(router, dispatchHandler, ratingHandler)

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
